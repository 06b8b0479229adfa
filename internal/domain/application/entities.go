package application

import (
	"time"

	"pawn-lending-backend/internal/domain/apperr"
	"pawn-lending-backend/internal/domain/loan"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type State string

const (
	StatePending    State = "pending"
	StateEvaluating State = "evaluating"
	StateApproved   State = "approved"
	StateRejected   State = "rejected"
	StateCancelled  State = "cancelled"
)

// Evaluable reports whether an evaluator may still decide on the application.
func (s State) Evaluable() bool { return s == StatePending || s == StateEvaluating }

func (s State) Terminal() bool { return s == StateRejected || s == StateCancelled }

var (
	ErrNotFound            = apperr.NotFound("application not found")
	ErrNotEvaluable        = apperr.Conflict("application is not awaiting evaluation")
	ErrNotApproved         = apperr.Conflict("application is not approved")
	ErrNotCancellable      = apperr.Conflict("application can no longer be cancelled")
	ErrClosed              = apperr.Conflict("application is closed")
	ErrOfferNotAccepted    = apperr.Conflict("offer has not been accepted by the applicant")
	ErrIdentityDocsMissing = apperr.Conflict("at least two identity documents are required")
	ErrTooManyOpen         = apperr.LimitExceeded("applicant has too many open applications")
	ErrAmountOutOfBounds   = apperr.LimitExceeded("requested amount outside allowed bounds")
	ErrAmountOutOfCategory = apperr.LimitExceeded("requested amount outside the category's allowed share of the item value")
	ErrAboveAppraisal      = apperr.LimitExceeded("approved amount exceeds the appraisal loan amount")
	ErrAlreadyAppraised    = apperr.Conflict("application already appraised")
	ErrUnknownCategory     = apperr.Validation("unknown item category")
)

// Table: loan_applications
type Application struct {
	ID            uint64          `gorm:"primaryKey;column:id" json:"-"`
	ApplicationID string          `gorm:"column:application_id;size:32;not null;uniqueIndex:ux_applications_application_id" json:"application_id"`
	ApplicantID   string          `gorm:"column:applicant_id;size:32;not null;index:idx_applications_applicant" json:"applicant_id"`
	Amount        decimal.Decimal `gorm:"column:amount;type:decimal(18,2);not null" json:"amount"`
	TermMonths    int             `gorm:"column:term_months;not null" json:"term_months"`
	Modality      loan.Modality   `gorm:"column:modality;size:16;not null" json:"modality"`
	Rate          decimal.Decimal `gorm:"column:rate;type:decimal(7,4);not null" json:"rate"`
	TotalPayable  decimal.Decimal `gorm:"column:total_payable;type:decimal(18,2);not null" json:"total_payable"`
	State         State           `gorm:"column:state;size:16;not null;index" json:"state"`

	// as submitted, before any evaluator adjustment
	RequestedAmount decimal.Decimal `gorm:"column:requested_amount;type:decimal(18,2);not null" json:"requested_amount"`
	RequestedRate   decimal.Decimal `gorm:"column:requested_rate;type:decimal(7,4);not null" json:"requested_rate"`
	RequestedTerm   int             `gorm:"column:requested_term;not null" json:"requested_term"`

	OfferAccepted   bool       `gorm:"column:offer_accepted;not null;default:false" json:"offer_accepted"`
	OfferAcceptedAt *time.Time `gorm:"column:offer_accepted_at" json:"offer_accepted_at,omitempty"`
	ContactEmail    string     `gorm:"column:contact_email;size:255" json:"contact_email,omitempty"`
	ContactPhone    string     `gorm:"column:contact_phone;size:32" json:"contact_phone,omitempty"`

	EvaluatorID  *string    `gorm:"column:evaluator_id;size:32" json:"evaluator_id,omitempty"`
	EvaluatedAt  *time.Time `gorm:"column:evaluated_at" json:"evaluated_at,omitempty"`
	Observations string     `gorm:"column:observations;type:text" json:"observations,omitempty"`

	StateUpdatedAt time.Time      `gorm:"column:state_updated_at" json:"state_updated_at"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	Item *PledgeItem `gorm:"-" json:"item,omitempty"`
}

func (Application) TableName() string { return "loan_applications" }

// Table: pledge_items. Immutable after creation.
type PledgeItem struct {
	ID             uint64          `gorm:"primaryKey;column:id" json:"-"`
	ApplicationRef uint64          `gorm:"column:application_ref;not null;uniqueIndex:ux_pledge_items_application" json:"-"`
	Description    string          `gorm:"column:description;type:text;not null" json:"description"`
	Category       string          `gorm:"column:category;size:64;not null" json:"category"`
	Condition      string          `gorm:"column:item_condition;size:32;not null" json:"condition"`
	EstimatedValue decimal.Decimal `gorm:"column:estimated_value;type:decimal(18,2);not null" json:"estimated_value"`
	TechnicalNotes string          `gorm:"column:technical_notes;type:text" json:"technical_notes,omitempty"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"-"`
}

func (PledgeItem) TableName() string { return "pledge_items" }

type DocumentKind string

const (
	DocumentIdentity  DocumentKind = "identity"
	DocumentItemPhoto DocumentKind = "item_photo"
	DocumentOther     DocumentKind = "other"
)

func (k DocumentKind) Valid() bool {
	return k == DocumentIdentity || k == DocumentItemPhoto || k == DocumentOther
}

// Table: application_documents
type Document struct {
	ID             uint64       `gorm:"primaryKey;column:id" json:"-"`
	ApplicationRef uint64       `gorm:"column:application_ref;not null;index" json:"-"`
	Kind           DocumentKind `gorm:"column:kind;size:16;not null" json:"kind"`
	ArtifactRef    string       `gorm:"column:artifact_ref;type:text;not null" json:"artifact_ref"`
	CreatedAt      time.Time    `gorm:"autoCreateTime" json:"created_at"`
}

func (Document) TableName() string { return "application_documents" }

// Table: appraisals. At most one per application.
type Appraisal struct {
	ID                uint64          `gorm:"primaryKey;column:id" json:"-"`
	ApplicationRef    uint64          `gorm:"column:application_ref;not null;uniqueIndex:ux_appraisals_application" json:"-"`
	CommercialValue   decimal.Decimal `gorm:"column:commercial_value;type:decimal(18,2);not null" json:"commercial_value"`
	AppliedPercentage decimal.Decimal `gorm:"column:applied_percentage;type:decimal(5,2);not null" json:"applied_percentage"`
	LoanAmount        decimal.Decimal `gorm:"column:loan_amount;type:decimal(18,2);not null" json:"loan_amount"`
	EvaluatorID       string          `gorm:"column:evaluator_id;size:32;not null" json:"evaluator_id"`
	AppraisedAt       time.Time       `gorm:"column:appraised_at;not null" json:"appraised_at"`
}

func (Appraisal) TableName() string { return "appraisals" }

// Table: category_limits
type CategoryLimit struct {
	Category string          `gorm:"column:category;primaryKey;size:64"`
	MinPct   decimal.Decimal `gorm:"column:min_pct;type:decimal(5,2);not null"`
	MaxPct   decimal.Decimal `gorm:"column:max_pct;type:decimal(5,2);not null"`
}

func (CategoryLimit) TableName() string { return "category_limits" }

var hundred = decimal.NewFromInt(100)

// Bounds returns the loan amount range the category allows for an item value.
func (c CategoryLimit) Bounds(estimated decimal.Decimal) (min, max decimal.Decimal) {
	return estimated.Mul(c.MinPct).Div(hundred), estimated.Mul(c.MaxPct).Div(hundred)
}
