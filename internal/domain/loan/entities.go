package loan

import (
	"time"

	"pawn-lending-backend/internal/domain/apperr"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type State string

const (
	StatePendingSignature State = "pending_signature"
	StateActive           State = "active"
	StateOverdue          State = "overdue"
	StateDelinquent       State = "delinquent"
	StatePaid             State = "paid"
)

// AcceptsPayments reports whether borrowers may submit payments in this state.
func (s State) AcceptsPayments() bool {
	return s == StateActive || s == StateOverdue || s == StateDelinquent
}

type Modality string

const (
	ModalityMonthly  Modality = "monthly"
	ModalityBiweekly Modality = "biweekly"
	ModalityWeekly   Modality = "weekly"
)

func (m Modality) Valid() bool {
	return m == ModalityMonthly || m == ModalityBiweekly || m == ModalityWeekly
}

var (
	ErrNotFound          = apperr.NotFound("loan not found")
	ErrAlreadyActive     = apperr.Conflict("loan already active")
	ErrNotActive         = apperr.Conflict("loan is not active")
	ErrNotPayable        = apperr.Conflict("loan does not accept payments in its current state")
	ErrInvalidTransition = apperr.Conflict("invalid loan state transition")
)

// Table: loans
type Loan struct {
	ID            uint64          `gorm:"primaryKey;column:id" json:"-"`
	LoanID        string          `gorm:"column:loan_id;size:32;not null;uniqueIndex:ux_loans_loan_id" json:"loan_id"`
	Number        string          `gorm:"column:number;size:32;not null;uniqueIndex:ux_loans_number" json:"number"`
	ContractRef   uint64          `gorm:"column:contract_ref;not null;uniqueIndex:ux_loans_contract" json:"-"`
	ApplicationID uint64          `gorm:"column:application_ref;not null;index" json:"-"`
	BorrowerID    string          `gorm:"column:borrower_id;size:32;not null;index:idx_loans_borrower" json:"borrower_id"`
	Principal     decimal.Decimal `gorm:"column:principal;type:decimal(18,2);not null" json:"principal"`
	Rate          decimal.Decimal `gorm:"column:rate;type:decimal(7,4);not null" json:"rate"`
	TermMonths    int             `gorm:"column:term_months;not null" json:"term_months"`
	Modality      Modality        `gorm:"column:modality;size:16;not null" json:"modality"`
	TotalPayable  decimal.Decimal `gorm:"column:total_payable;type:decimal(18,2);not null" json:"total_payable"`
	Balance       decimal.Decimal `gorm:"column:balance;type:decimal(18,2);not null" json:"balance"`
	StorageFee    decimal.Decimal `gorm:"column:storage_fee;type:decimal(18,2);not null;default:0" json:"storage_fee"`
	// validated money not yet matched to a whole installment
	UnappliedCredit decimal.Decimal `gorm:"column:unapplied_credit;type:decimal(18,2);not null;default:0" json:"-"`
	State           State           `gorm:"column:state;size:20;not null;index" json:"state"`
	StartDate       time.Time       `gorm:"column:start_date;type:date" json:"start_date"`
	DueDate         time.Time       `gorm:"column:due_date;type:date" json:"due_date"`
	StateUpdatedAt  time.Time       `gorm:"column:state_updated_at" json:"state_updated_at"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (Loan) TableName() string { return "loans" }

type InstallmentState string

const (
	InstallmentPending InstallmentState = "pending"
	InstallmentPaid    InstallmentState = "paid"
)

// Table: installments
type Installment struct {
	ID        uint64           `gorm:"primaryKey;column:id" json:"-"`
	LoanRef   uint64           `gorm:"column:loan_ref;not null;uniqueIndex:ux_installments_loan_seq,priority:1" json:"-"`
	Seq       int              `gorm:"column:seq;not null;uniqueIndex:ux_installments_loan_seq,priority:2" json:"seq"`
	DueDate   time.Time        `gorm:"column:due_date;type:date;not null" json:"due_date"`
	Amount    decimal.Decimal  `gorm:"column:amount;type:decimal(18,2);not null" json:"amount"`
	Principal decimal.Decimal  `gorm:"column:principal;type:decimal(18,2);not null" json:"principal"`
	Interest  decimal.Decimal  `gorm:"column:interest;type:decimal(18,2);not null" json:"interest"`
	State     InstallmentState `gorm:"column:state;size:16;not null" json:"state"`
	PaidAt    *time.Time       `gorm:"column:paid_at" json:"paid_at,omitempty"`
	CreatedAt time.Time        `gorm:"autoCreateTime" json:"-"`
	UpdatedAt time.Time        `gorm:"autoUpdateTime" json:"-"`
}

func (Installment) TableName() string { return "installments" }

// Table: loan_renewals
type Renewal struct {
	ID           uint64          `gorm:"primaryKey;column:id"`
	LoanRef      uint64          `gorm:"column:loan_ref;not null;index"`
	PriorTerm    int             `gorm:"column:prior_term;not null"`
	NewTerm      int             `gorm:"column:new_term;not null"`
	PriorBalance decimal.Decimal `gorm:"column:prior_balance;type:decimal(18,2);not null"`
	NewInterest  decimal.Decimal `gorm:"column:new_interest;type:decimal(18,2);not null"`
	NewTotal     decimal.Decimal `gorm:"column:new_total;type:decimal(18,2);not null"`
	Reason       string          `gorm:"column:reason;type:text"`
	RequestedBy  string          `gorm:"column:requested_by;size:32;not null"`
	CreatedAt    time.Time       `gorm:"autoCreateTime"`
}

func (Renewal) TableName() string { return "loan_renewals" }
