package loan

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, l *Loan) error
	Save(ctx context.Context, l *Loan) error
	GetByLoanID(ctx context.Context, loanID string) (*Loan, error)
	// GetByLoanIDForUpdate row-locks the loan for the rest of the transaction.
	GetByLoanIDForUpdate(ctx context.Context, loanID string) (*Loan, error)
	GetByIDForUpdate(ctx context.Context, id uint64) (*Loan, error)
	GetByContractRef(ctx context.Context, contractRef uint64) (*Loan, error)
}

type InstallmentRepository interface {
	CreateBatch(ctx context.Context, rows []Installment) error
	ListByLoan(ctx context.Context, loanRef uint64) ([]Installment, error)
	ListPendingByLoan(ctx context.Context, loanRef uint64) ([]Installment, error)
	// DeletePendingByLoan removes only pending rows; paid rows are history.
	DeletePendingByLoan(ctx context.Context, loanRef uint64) (int64, error)
	MaxPaidSeq(ctx context.Context, loanRef uint64) (int, error)
	MarkPaid(ctx context.Context, ids []uint64, at time.Time) error
	CreateRenewal(ctx context.Context, r *Renewal) error
}
