package evaluation

import (
	"time"

	"github.com/shopspring/decimal"
)

type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

type Settings struct {
	MinAmount     decimal.Decimal
	MaxAmount     decimal.Decimal
	MaxTermMonths int
}

type AppraisalInput struct {
	CommercialValue   decimal.Decimal
	AppliedPercentage decimal.Decimal
}

// EvaluateInput carries the decision. Nil terms keep the submitted values.
type EvaluateInput struct {
	Decision     Decision
	Amount       *decimal.Decimal
	Rate         *decimal.Decimal
	TermMonths   *int
	Observations string
	Appraisal    *AppraisalInput
}

type EvaluationDTO struct {
	ApplicationID string           `json:"application_id"`
	State         string           `json:"state"`
	Amount        decimal.Decimal  `json:"amount"`
	Rate          decimal.Decimal  `json:"rate"`
	TermMonths    int              `json:"term_months"`
	TotalPayable  decimal.Decimal  `json:"total_payable"`
	Recomputed    bool             `json:"recomputed"`
	EvaluatorID   string           `json:"evaluator_id"`
	EvaluatedAt   time.Time        `json:"evaluated_at"`
	Observations  string           `json:"observations,omitempty"`
	LoanAmount    *decimal.Decimal `json:"appraisal_loan_amount,omitempty"`
}
