package loanmock

import (
	"context"
	"time"

	domain "pawn-lending-backend/internal/domain/loan"
)

var (
	_ domain.Repository            = (*Repo)(nil)
	_ domain.InstallmentRepository = (*InstallmentRepo)(nil)
)

// Repo is a function-backed mock that satisfies domain.Repository.
// Writes default to no-ops; reads default to domain.ErrNotFound.
type Repo struct {
	CreateFn               func(ctx context.Context, l *domain.Loan) error
	SaveFn                 func(ctx context.Context, l *domain.Loan) error
	GetByLoanIDFn          func(ctx context.Context, loanID string) (*domain.Loan, error)
	GetByLoanIDForUpdateFn func(ctx context.Context, loanID string) (*domain.Loan, error)
	GetByIDForUpdateFn     func(ctx context.Context, id uint64) (*domain.Loan, error)
	GetByContractRefFn     func(ctx context.Context, contractRef uint64) (*domain.Loan, error)
}

func (m *Repo) Create(ctx context.Context, l *domain.Loan) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}

func (m *Repo) Save(ctx context.Context, l *domain.Loan) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, l)
	}
	return nil
}

func (m *Repo) GetByLoanID(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.GetByLoanIDFn != nil {
		return m.GetByLoanIDFn(ctx, loanID)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.GetByLoanIDForUpdateFn != nil {
		return m.GetByLoanIDForUpdateFn(ctx, loanID)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) GetByIDForUpdate(ctx context.Context, id uint64) (*domain.Loan, error) {
	if m.GetByIDForUpdateFn != nil {
		return m.GetByIDForUpdateFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) GetByContractRef(ctx context.Context, contractRef uint64) (*domain.Loan, error) {
	if m.GetByContractRefFn != nil {
		return m.GetByContractRefFn(ctx, contractRef)
	}
	return nil, domain.ErrNotFound
}

// InstallmentRepo is a function-backed domain.InstallmentRepository.
// Unset functions return zero values and no error.
type InstallmentRepo struct {
	CreateBatchFn         func(ctx context.Context, rows []domain.Installment) error
	ListByLoanFn          func(ctx context.Context, loanRef uint64) ([]domain.Installment, error)
	ListPendingByLoanFn   func(ctx context.Context, loanRef uint64) ([]domain.Installment, error)
	DeletePendingByLoanFn func(ctx context.Context, loanRef uint64) (int64, error)
	MaxPaidSeqFn          func(ctx context.Context, loanRef uint64) (int, error)
	MarkPaidFn            func(ctx context.Context, ids []uint64, at time.Time) error
	CreateRenewalFn       func(ctx context.Context, r *domain.Renewal) error
}

func (m *InstallmentRepo) CreateBatch(ctx context.Context, rows []domain.Installment) error {
	if m.CreateBatchFn != nil {
		return m.CreateBatchFn(ctx, rows)
	}
	return nil
}

func (m *InstallmentRepo) ListByLoan(ctx context.Context, loanRef uint64) ([]domain.Installment, error) {
	if m.ListByLoanFn != nil {
		return m.ListByLoanFn(ctx, loanRef)
	}
	return nil, nil
}

func (m *InstallmentRepo) ListPendingByLoan(ctx context.Context, loanRef uint64) ([]domain.Installment, error) {
	if m.ListPendingByLoanFn != nil {
		return m.ListPendingByLoanFn(ctx, loanRef)
	}
	return nil, nil
}

func (m *InstallmentRepo) DeletePendingByLoan(ctx context.Context, loanRef uint64) (int64, error) {
	if m.DeletePendingByLoanFn != nil {
		return m.DeletePendingByLoanFn(ctx, loanRef)
	}
	return 0, nil
}

func (m *InstallmentRepo) MaxPaidSeq(ctx context.Context, loanRef uint64) (int, error) {
	if m.MaxPaidSeqFn != nil {
		return m.MaxPaidSeqFn(ctx, loanRef)
	}
	return 0, nil
}

func (m *InstallmentRepo) MarkPaid(ctx context.Context, ids []uint64, at time.Time) error {
	if m.MarkPaidFn != nil {
		return m.MarkPaidFn(ctx, ids, at)
	}
	return nil
}

func (m *InstallmentRepo) CreateRenewal(ctx context.Context, r *domain.Renewal) error {
	if m.CreateRenewalFn != nil {
		return m.CreateRenewalFn(ctx, r)
	}
	return nil
}
