package application

import (
	"time"

	domain "pawn-lending-backend/internal/domain/application"

	"github.com/shopspring/decimal"
)

// Settings are the intake limits read from configuration.
type Settings struct {
	MinAmount           decimal.Decimal
	MaxAmount           decimal.Decimal
	DefaultRate         decimal.Decimal
	MaxTermMonths       int
	MaxOpenApplications int
}

type ItemInput struct {
	Description    string
	Category       string
	Condition      string
	EstimatedValue decimal.Decimal
	TechnicalNotes string
}

type DocumentInput struct {
	Kind        string
	ArtifactRef string
}

type SubmitInput struct {
	Item       ItemInput
	Amount     decimal.Decimal
	TermMonths int
	Modality   string
	Documents  []DocumentInput
}

type AcceptInput struct {
	Email string
	Phone string
}

type ApplicationDTO struct {
	ApplicationID   string             `json:"application_id"`
	ApplicantID     string             `json:"applicant_id"`
	State           string             `json:"state"`
	Amount          decimal.Decimal    `json:"amount"`
	TermMonths      int                `json:"term_months"`
	Modality        string             `json:"modality"`
	Rate            decimal.Decimal    `json:"rate"`
	TotalPayable    decimal.Decimal    `json:"total_payable"`
	OfferAccepted   bool               `json:"offer_accepted"`
	OfferAcceptedAt *time.Time         `json:"offer_accepted_at,omitempty"`
	EvaluatorID     *string            `json:"evaluator_id,omitempty"`
	EvaluatedAt     *time.Time         `json:"evaluated_at,omitempty"`
	Observations    string             `json:"observations,omitempty"`
	Item            *domain.PledgeItem `json:"item,omitempty"`
	Documents       []domain.Document  `json:"documents,omitempty"`
	Appraisal       *domain.Appraisal  `json:"appraisal,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
}

func toDTO(a *domain.Application) *ApplicationDTO {
	return &ApplicationDTO{
		ApplicationID:   a.ApplicationID,
		ApplicantID:     a.ApplicantID,
		State:           string(a.State),
		Amount:          a.Amount,
		TermMonths:      a.TermMonths,
		Modality:        string(a.Modality),
		Rate:            a.Rate,
		TotalPayable:    a.TotalPayable,
		OfferAccepted:   a.OfferAccepted,
		OfferAcceptedAt: a.OfferAcceptedAt,
		EvaluatorID:     a.EvaluatorID,
		EvaluatedAt:     a.EvaluatedAt,
		Observations:    a.Observations,
		Item:            a.Item,
		CreatedAt:       a.CreatedAt,
	}
}
