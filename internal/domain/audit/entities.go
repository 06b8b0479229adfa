package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindApplicationSubmitted Kind = "application_submitted"
	KindApplicationCancelled Kind = "application_cancelled"
	KindEvaluation           Kind = "evaluation"
	KindContractGenerated    Kind = "contract_generated"
	KindSigning              Kind = "signing"
	KindPaymentSubmitted     Kind = "payment_submitted"
	KindPaymentValidation    Kind = "payment_validation"
	KindRenewal              Kind = "renewal"
)

type EntityType string

const (
	EntityApplication EntityType = "application"
	EntityContract    EntityType = "contract"
	EntityLoan        EntityType = "loan"
	EntityPayment     EntityType = "payment"
)

func (t EntityType) Valid() bool {
	switch t {
	case EntityApplication, EntityContract, EntityLoan, EntityPayment:
		return true
	}
	return false
}

// Payload is one of the typed audit variants below.
type Payload interface {
	Kind() Kind
}

type ApplicationSubmitted struct {
	Amount     decimal.Decimal `json:"amount"`
	TermMonths int             `json:"term_months"`
	Category   string          `json:"category"`
}

type ApplicationCancelled struct {
	PriorState string `json:"prior_state"`
}

type Evaluation struct {
	Decision     string          `json:"decision"`
	Amount       decimal.Decimal `json:"amount"`
	Rate         decimal.Decimal `json:"rate"`
	TermMonths   int             `json:"term_months"`
	TotalPayable decimal.Decimal `json:"total_payable"`
	Recomputed   bool            `json:"recomputed"`
	Observations string          `json:"observations,omitempty"`
}

type ContractGenerated struct {
	ContractNumber string `json:"contract_number"`
	LoanNumber     string `json:"loan_number"`
	LoanID         string `json:"loan_id"`
	Installments   int    `json:"installments"`
}

type Signing struct {
	ContractNumber string          `json:"contract_number"`
	LoanID         string          `json:"loan_id"`
	Amount         decimal.Decimal `json:"amount"`
	SignatureRef   string          `json:"signature_ref"`
}

type PaymentSubmitted struct {
	LoanID string          `json:"loan_id"`
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"method"`
}

type PaymentValidation struct {
	LoanID           string          `json:"loan_id"`
	Decision         string          `json:"decision"`
	Amount           decimal.Decimal `json:"amount"`
	BalanceBefore    decimal.Decimal `json:"balance_before"`
	BalanceAfter     decimal.Decimal `json:"balance_after"`
	InstallmentsPaid int             `json:"installments_paid"`
	Observations     string          `json:"observations,omitempty"`
}

type Renewal struct {
	PriorTerm    int             `json:"prior_term"`
	NewTerm      int             `json:"new_term"`
	PriorBalance decimal.Decimal `json:"prior_balance"`
	NewInterest  decimal.Decimal `json:"new_interest"`
	NewTotal     decimal.Decimal `json:"new_total"`
	Reason       string          `json:"reason,omitempty"`
}

func (ApplicationSubmitted) Kind() Kind { return KindApplicationSubmitted }
func (ApplicationCancelled) Kind() Kind { return KindApplicationCancelled }
func (Evaluation) Kind() Kind           { return KindEvaluation }
func (ContractGenerated) Kind() Kind    { return KindContractGenerated }
func (Signing) Kind() Kind              { return KindSigning }
func (PaymentSubmitted) Kind() Kind     { return KindPaymentSubmitted }
func (PaymentValidation) Kind() Kind    { return KindPaymentValidation }
func (Renewal) Kind() Kind              { return KindRenewal }

// Table: audit_entries
type Entry struct {
	ID         uint64     `gorm:"primaryKey;column:id"`
	EntryID    string     `gorm:"column:entry_id;size:36;not null;uniqueIndex:ux_audit_entries_entry_id"`
	Kind       Kind       `gorm:"column:kind;size:32;not null"`
	EntityType EntityType `gorm:"column:entity_type;size:16;not null;index:idx_audit_entity,priority:1"`
	EntityID   string     `gorm:"column:entity_id;size:32;not null;index:idx_audit_entity,priority:2"`
	ActorID    string     `gorm:"column:actor_id;size:32;not null"`
	Payload    string     `gorm:"column:payload;type:text;not null"`
	CreatedAt  time.Time  `gorm:"column:created_at;not null"`
}

func (Entry) TableName() string { return "audit_entries" }

func NewEntry(entityType EntityType, entityID, actorID string, p Payload, at time.Time) (*Entry, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", p.Kind(), err)
	}
	return &Entry{
		EntryID:    uuid.NewString(),
		Kind:       p.Kind(),
		EntityType: entityType,
		EntityID:   entityID,
		ActorID:    actorID,
		Payload:    string(raw),
		CreatedAt:  at.UTC(),
	}, nil
}

// Decode turns the stored payload back into its typed variant.
func (e *Entry) Decode() (Payload, error) {
	var p Payload
	switch e.Kind {
	case KindApplicationSubmitted:
		p = &ApplicationSubmitted{}
	case KindApplicationCancelled:
		p = &ApplicationCancelled{}
	case KindEvaluation:
		p = &Evaluation{}
	case KindContractGenerated:
		p = &ContractGenerated{}
	case KindSigning:
		p = &Signing{}
	case KindPaymentSubmitted:
		p = &PaymentSubmitted{}
	case KindPaymentValidation:
		p = &PaymentValidation{}
	case KindRenewal:
		p = &Renewal{}
	default:
		return nil, fmt.Errorf("unknown audit kind %q", e.Kind)
	}
	if err := json.Unmarshal([]byte(e.Payload), p); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", e.Kind, err)
	}
	return p, nil
}
