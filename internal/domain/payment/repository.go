package payment

import "context"

type Repository interface {
	Create(ctx context.Context, p *Payment) error
	Save(ctx context.Context, p *Payment) error
	GetByPaymentID(ctx context.Context, paymentID string) (*Payment, error)
	GetByPaymentIDForUpdate(ctx context.Context, paymentID string) (*Payment, error)
	HasPending(ctx context.Context, loanRef uint64) (bool, error)
	ListByLoan(ctx context.Context, loanRef uint64) ([]Payment, error)
	SetGeneratedReceipt(ctx context.Context, paymentID, ref string) error
}
