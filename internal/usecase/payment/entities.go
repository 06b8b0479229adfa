package payment

import (
	"time"

	domain "pawn-lending-backend/internal/domain/payment"

	"github.com/shopspring/decimal"
)

type SubmitInput struct {
	Amount decimal.Decimal
	// PaidOn defaults to today when zero.
	PaidOn     time.Time
	Method     string
	BankRef    string
	ReceiptRef string
}

type ValidateInput struct {
	Decision     string
	Observations string
}

type PaymentDTO struct {
	PaymentID           string          `json:"payment_id"`
	LoanID              string          `json:"loan_id"`
	SubmittedBy         string          `json:"submitted_by"`
	Amount              decimal.Decimal `json:"amount"`
	PaidOn              time.Time       `json:"paid_on"`
	Method              string          `json:"method"`
	BankRef             string          `json:"bank_ref,omitempty"`
	ReceiptRef          *string         `json:"receipt_ref,omitempty"`
	GeneratedReceiptRef *string         `json:"generated_receipt_ref,omitempty"`
	State               string          `json:"state"`
	ValidatorID         *string         `json:"validator_id,omitempty"`
	ValidatedAt         *time.Time      `json:"validated_at,omitempty"`
	Observations        string          `json:"observations,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
}

// ValidationDTO is the payment plus the loan position after the decision.
type ValidationDTO struct {
	PaymentDTO
	LoanState        string          `json:"loan_state"`
	Balance          decimal.Decimal `json:"balance"`
	InstallmentsPaid int             `json:"installments_paid"`
}

func toDTO(p *domain.Payment, loanID string) PaymentDTO {
	return PaymentDTO{
		PaymentID:           p.PaymentID,
		LoanID:              loanID,
		SubmittedBy:         p.SubmittedBy,
		Amount:              p.Amount,
		PaidOn:              p.PaidOn,
		Method:              string(p.Method),
		BankRef:             p.BankRef,
		ReceiptRef:          p.ReceiptRef,
		GeneratedReceiptRef: p.GeneratedReceiptRef,
		State:               string(p.State),
		ValidatorID:         p.ValidatorID,
		ValidatedAt:         p.ValidatedAt,
		Observations:        p.Observations,
		CreatedAt:           p.CreatedAt,
	}
}
