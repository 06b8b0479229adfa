package payment

import (
	"time"

	"pawn-lending-backend/internal/domain/apperr"

	"github.com/shopspring/decimal"
)

type State string

const (
	StatePending   State = "pending"
	StateValidated State = "validated"
	StateRejected  State = "rejected"
)

type Method string

const (
	MethodCash     Method = "cash"
	MethodTransfer Method = "transfer"
	MethodDeposit  Method = "deposit"
	MethodCard     Method = "card"
)

func (m Method) Valid() bool {
	switch m {
	case MethodCash, MethodTransfer, MethodDeposit, MethodCard:
		return true
	}
	return false
}

type Decision string

const (
	DecisionValidate Decision = "validate"
	DecisionReject   Decision = "reject"
)

var (
	ErrNotFound             = apperr.NotFound("payment not found")
	ErrPendingExists        = apperr.Conflict("existing pending payment")
	ErrNotPending           = apperr.Conflict("payment is not pending")
	ErrAmountNotPositive    = apperr.Validation("amount must be greater than zero")
	ErrAmountExceedsBalance = apperr.Validation("amount exceeds outstanding balance")
	ErrAmountPrecision      = apperr.Validation("amount must have at most 2 decimal places")
	ErrObservationsRequired = apperr.Validation("observations are required when rejecting")
)

// Table: payments
type Payment struct {
	ID          uint64          `gorm:"primaryKey;column:id" json:"-"`
	PaymentID   string          `gorm:"column:payment_id;size:32;not null;uniqueIndex:ux_payments_payment_id" json:"payment_id"`
	LoanRef     uint64          `gorm:"column:loan_ref;not null;index" json:"-"`
	SubmittedBy string          `gorm:"column:submitted_by;size:32;not null" json:"submitted_by"`
	Amount      decimal.Decimal `gorm:"column:amount;type:decimal(18,2);not null" json:"amount"`
	PaidOn      time.Time       `gorm:"column:paid_on;type:date;not null" json:"paid_on"`
	Method      Method          `gorm:"column:method;size:16;not null" json:"method"`
	BankRef     string          `gorm:"column:bank_ref;size:64" json:"bank_ref,omitempty"`
	ReceiptRef  *string         `gorm:"column:receipt_ref;type:text" json:"receipt_ref,omitempty"`
	// rendered by us after validation
	GeneratedReceiptRef *string `gorm:"column:generated_receipt_ref;type:text" json:"generated_receipt_ref,omitempty"`
	State               State   `gorm:"column:state;size:16;not null;index" json:"state"`
	// PendingGuard holds the loan id while the payment is pending and NULL
	// afterwards; the unique index allows one pending payment per loan.
	PendingGuard *uint64    `gorm:"column:pending_guard;uniqueIndex:ux_payments_pending_guard" json:"-"`
	ValidatorID  *string    `gorm:"column:validator_id;size:32" json:"validator_id,omitempty"`
	ValidatedAt  *time.Time `gorm:"column:validated_at" json:"validated_at,omitempty"`
	Observations string     `gorm:"column:observations;type:text" json:"observations,omitempty"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Payment) TableName() string { return "payments" }

// Resolve moves a pending payment to its final state and releases the guard.
func (p *Payment) Resolve(s State, validator string, at time.Time, observations string) {
	p.State = s
	p.ValidatorID = &validator
	p.ValidatedAt = &at
	p.Observations = observations
	p.PendingGuard = nil
}
