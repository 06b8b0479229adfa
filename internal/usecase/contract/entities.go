package contract

import (
	"time"

	domain "pawn-lending-backend/internal/domain/contract"
	"pawn-lending-backend/internal/domain/loan"

	"github.com/shopspring/decimal"
)

type Settings struct {
	StorageFeePct decimal.Decimal
	Remainder     loan.RemainderPolicy
}

type SignInput struct {
	SignatureRef string `json:"signature_ref"`
}

type LoanSummary struct {
	LoanID       string          `json:"loan_id"`
	Number       string          `json:"number"`
	State        string          `json:"state"`
	Principal    decimal.Decimal `json:"principal"`
	Rate         decimal.Decimal `json:"rate"`
	TermMonths   int             `json:"term_months"`
	TotalPayable decimal.Decimal `json:"total_payable"`
	Balance      decimal.Decimal `json:"balance"`
	StorageFee   decimal.Decimal `json:"storage_fee"`
	StartDate    time.Time       `json:"start_date"`
	DueDate      time.Time       `json:"due_date"`
}

type ContractDTO struct {
	ContractID     string      `json:"contract_id"`
	Number         string      `json:"number"`
	BorrowerID     string      `json:"borrower_id"`
	Content        string      `json:"content"`
	SignatureState string      `json:"signature_state"`
	SignedAt       *time.Time  `json:"signed_at,omitempty"`
	ScheduleRef    *string     `json:"schedule_ref,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	Loan           LoanSummary `json:"loan"`
	// Created is false when Generate returned an existing contract.
	Created bool `json:"-"`
}

func toDTO(c *domain.Contract, l *loan.Loan) *ContractDTO {
	return &ContractDTO{
		ContractID:     c.ContractID,
		Number:         c.Number,
		BorrowerID:     c.BorrowerID,
		Content:        c.Content,
		SignatureState: string(c.SignatureState),
		SignedAt:       c.SignedAt,
		ScheduleRef:    c.ScheduleRef,
		CreatedAt:      c.CreatedAt,
		Loan: LoanSummary{
			LoanID:       l.LoanID,
			Number:       l.Number,
			State:        string(l.State),
			Principal:    l.Principal,
			Rate:         l.Rate,
			TermMonths:   l.TermMonths,
			TotalPayable: l.TotalPayable,
			Balance:      l.Balance,
			StorageFee:   l.StorageFee,
			StartDate:    l.StartDate,
			DueDate:      l.DueDate,
		},
	}
}
