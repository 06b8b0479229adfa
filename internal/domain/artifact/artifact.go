package artifact

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Store persists rendered documents and returns an opaque reference.
type Store interface {
	Put(ctx context.Context, key, contentType string, body []byte) (string, error)
}

func ReceiptKey(paymentID string) string { return "receipts/" + paymentID + ".xlsx" }

func ScheduleKey(contractNumber string) string { return "schedules/" + contractNumber + ".xlsx" }

type Receipt struct {
	PaymentID    string
	LoanNumber   string
	BorrowerID   string
	Amount       decimal.Decimal
	BalanceAfter decimal.Decimal
	Method       string
	BankRef      string
	PaidOn       time.Time
	ValidatedAt  time.Time
	ValidatorID  string
}

type ScheduleLine struct {
	Seq       int
	DueDate   time.Time
	Amount    decimal.Decimal
	Principal decimal.Decimal
	Interest  decimal.Decimal
	State     string
}

type Schedule struct {
	ContractNumber string
	LoanNumber     string
	BorrowerID     string
	Principal      decimal.Decimal
	Rate           decimal.Decimal
	TotalPayable   decimal.Decimal
	Lines          []ScheduleLine
}

type Renderer interface {
	Receipt(r Receipt) ([]byte, error)
	Schedule(s Schedule) ([]byte, error)
}

var ErrDisabled = errors.New("artifact publishing disabled")

// Publisher renders documents and uploads them to the store.
type Publisher struct {
	store    Store
	renderer Renderer
}

// NewPublisher returns nil when either dependency is missing; a nil
// Publisher reports ErrDisabled.
func NewPublisher(store Store, renderer Renderer) *Publisher {
	if store == nil || renderer == nil {
		return nil
	}
	return &Publisher{store: store, renderer: renderer}
}

func (p *Publisher) Receipt(ctx context.Context, r Receipt) (string, error) {
	if p == nil {
		return "", ErrDisabled
	}
	body, err := p.renderer.Receipt(r)
	if err != nil {
		return "", fmt.Errorf("render receipt: %w", err)
	}
	return p.store.Put(ctx, ReceiptKey(r.PaymentID), ContentTypeXLSX, body)
}

func (p *Publisher) Schedule(ctx context.Context, s Schedule) (string, error) {
	if p == nil {
		return "", ErrDisabled
	}
	body, err := p.renderer.Schedule(s)
	if err != nil {
		return "", fmt.Errorf("render schedule: %w", err)
	}
	return p.store.Put(ctx, ScheduleKey(s.ContractNumber), ContentTypeXLSX, body)
}
