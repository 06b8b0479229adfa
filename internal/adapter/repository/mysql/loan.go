package mysql

import (
	"context"
	"database/sql"
	"time"

	loanDomain "pawn-lending-backend/internal/domain/loan"

	"gorm.io/gorm"
)

type LoanRepository struct{ db *gorm.DB }

func NewLoanRepository(db *gorm.DB) *LoanRepository { return &LoanRepository{db: db} }

func (r *LoanRepository) Create(ctx context.Context, l *loanDomain.Loan) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *LoanRepository) Save(ctx context.Context, l *loanDomain.Loan) error {
	return r.db.WithContext(ctx).Save(l).Error
}

func (r *LoanRepository) GetByLoanID(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	if err := r.db.WithContext(ctx).Where("loan_id = ?", loanID).First(&out).Error; err != nil {
		return nil, translate(err, loanDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *LoanRepository) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	err := r.db.WithContext(ctx).Clauses(forUpdate).Where("loan_id = ?", loanID).First(&out).Error
	if err != nil {
		return nil, translate(err, loanDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *LoanRepository) GetByIDForUpdate(ctx context.Context, id uint64) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	if err := r.db.WithContext(ctx).Clauses(forUpdate).First(&out, id).Error; err != nil {
		return nil, translate(err, loanDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *LoanRepository) GetByContractRef(ctx context.Context, contractRef uint64) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	if err := r.db.WithContext(ctx).Where("contract_ref = ?", contractRef).First(&out).Error; err != nil {
		return nil, translate(err, loanDomain.ErrNotFound)
	}
	return &out, nil
}

type InstallmentRepository struct{ db *gorm.DB }

func NewInstallmentRepository(db *gorm.DB) *InstallmentRepository {
	return &InstallmentRepository{db: db}
}

func (r *InstallmentRepository) CreateBatch(ctx context.Context, rows []loanDomain.Installment) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(&rows, 100).Error
}

func (r *InstallmentRepository) ListByLoan(ctx context.Context, loanRef uint64) ([]loanDomain.Installment, error) {
	var out []loanDomain.Installment
	err := r.db.WithContext(ctx).Where("loan_ref = ?", loanRef).Order("seq").Find(&out).Error
	return out, err
}

func (r *InstallmentRepository) ListPendingByLoan(ctx context.Context, loanRef uint64) ([]loanDomain.Installment, error) {
	var out []loanDomain.Installment
	err := r.db.WithContext(ctx).
		Where("loan_ref = ? AND state = ?", loanRef, loanDomain.InstallmentPending).
		Order("seq").
		Find(&out).Error
	return out, err
}

func (r *InstallmentRepository) DeletePendingByLoan(ctx context.Context, loanRef uint64) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("loan_ref = ? AND state = ?", loanRef, loanDomain.InstallmentPending).
		Delete(&loanDomain.Installment{})
	return res.RowsAffected, res.Error
}

func (r *InstallmentRepository) MaxPaidSeq(ctx context.Context, loanRef uint64) (int, error) {
	var max sql.NullInt64
	err := r.db.WithContext(ctx).
		Model(&loanDomain.Installment{}).
		Where("loan_ref = ? AND state = ?", loanRef, loanDomain.InstallmentPaid).
		Select("MAX(seq)").
		Row().Scan(&max)
	if err != nil {
		return 0, err
	}
	return int(max.Int64), nil
}

func (r *InstallmentRepository) MarkPaid(ctx context.Context, ids []uint64, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&loanDomain.Installment{}).
		Where("id IN ?", ids).
		Updates(map[string]any{"state": loanDomain.InstallmentPaid, "paid_at": at}).Error
}

func (r *InstallmentRepository) CreateRenewal(ctx context.Context, rn *loanDomain.Renewal) error {
	return r.db.WithContext(ctx).Create(rn).Error
}
