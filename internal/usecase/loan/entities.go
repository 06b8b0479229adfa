package loan

import (
	"time"

	"github.com/shopspring/decimal"
)

type InstallmentDTO struct {
	Seq       int             `json:"seq"`
	DueDate   time.Time       `json:"due_date"`
	Amount    decimal.Decimal `json:"amount"`
	Principal decimal.Decimal `json:"principal"`
	Interest  decimal.Decimal `json:"interest"`
	State     string          `json:"state"`
	PaidAt    *time.Time      `json:"paid_at,omitempty"`
}

type LoanDTO struct {
	LoanID         string           `json:"loan_id"`
	Number         string           `json:"number"`
	BorrowerID     string           `json:"borrower_id"`
	Principal      decimal.Decimal  `json:"principal"`
	Rate           decimal.Decimal  `json:"rate"`
	TermMonths     int              `json:"term_months"`
	Modality       string           `json:"modality"`
	TotalPayable   decimal.Decimal  `json:"total_payable"`
	Balance        decimal.Decimal  `json:"balance"`
	StorageFee     decimal.Decimal  `json:"storage_fee"`
	State          string           `json:"state"`
	StartDate      time.Time        `json:"start_date"`
	DueDate        time.Time        `json:"due_date"`
	StateUpdatedAt time.Time        `json:"state_updated_at"`
	CreatedAt      time.Time        `json:"created_at"`
	PaidCount      int              `json:"paid_installments"`
	NextDue        *InstallmentDTO  `json:"next_due,omitempty"`
	Schedule       []InstallmentDTO `json:"schedule"`
}
