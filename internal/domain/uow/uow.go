package uow

import (
	"context"

	"pawn-lending-backend/internal/domain/application"
	"pawn-lending-backend/internal/domain/audit"
	"pawn-lending-backend/internal/domain/contract"
	"pawn-lending-backend/internal/domain/loan"
	"pawn-lending-backend/internal/domain/payment"
	"pawn-lending-backend/internal/domain/sequence"
)

// Repos are bound to one transaction.
type Repos struct {
	Applications application.Repository
	Contracts    contract.Repository
	Loans        loan.Repository
	Installments loan.InstallmentRepository
	Payments     payment.Repository
	Audit        audit.Repository
	Sequences    sequence.Allocator
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// lock loan first, then pass it in
	WithinLoanTx(ctx context.Context, loanID string, fn func(r Repos, l *loan.Loan) error) error
}
