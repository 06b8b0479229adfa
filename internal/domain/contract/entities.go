package contract

import (
	"time"

	"pawn-lending-backend/internal/domain/apperr"

	"gorm.io/gorm"
)

type SignatureState string

const (
	SignaturePending SignatureState = "pending"
	SignatureSigned  SignatureState = "signed"
)

var (
	ErrNotFound      = apperr.NotFound("contract not found")
	ErrAlreadySigned = apperr.Conflict("contract already signed")
)

// Table: contracts
type Contract struct {
	ID             uint64         `gorm:"primaryKey;column:id" json:"-"`
	ContractID     string         `gorm:"column:contract_id;size:32;not null;uniqueIndex:ux_contracts_contract_id" json:"contract_id"`
	Number         string         `gorm:"column:number;size:32;not null;uniqueIndex:ux_contracts_number" json:"number"`
	ApplicationRef uint64         `gorm:"column:application_ref;not null;uniqueIndex:ux_contracts_application" json:"-"`
	BorrowerID     string         `gorm:"column:borrower_id;size:32;not null;index" json:"borrower_id"`
	Content        string         `gorm:"column:content;type:text;not null" json:"content"`
	SignatureState SignatureState `gorm:"column:signature_state;size:16;not null" json:"signature_state"`
	SignatureRef   *string        `gorm:"column:signature_ref;type:text" json:"signature_ref,omitempty"`
	SignedAt       *time.Time     `gorm:"column:signed_at" json:"signed_at,omitempty"`
	ScheduleRef    *string        `gorm:"column:schedule_ref;type:text" json:"schedule_ref,omitempty"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Contract) TableName() string { return "contracts" }

func (c *Contract) Signed() bool { return c.SignatureState == SignatureSigned }
