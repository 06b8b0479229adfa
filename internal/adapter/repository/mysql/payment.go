package mysql

import (
	"context"
	"errors"

	paymentDomain "pawn-lending-backend/internal/domain/payment"

	"gorm.io/gorm"
)

type PaymentRepository struct{ db *gorm.DB }

func NewPaymentRepository(db *gorm.DB) *PaymentRepository { return &PaymentRepository{db: db} }

// Create surfaces a pending_guard collision as ErrPendingExists.
func (r *PaymentRepository) Create(ctx context.Context, p *paymentDomain.Payment) error {
	err := r.db.WithContext(ctx).Create(p).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return paymentDomain.ErrPendingExists
	}
	return err
}

func (r *PaymentRepository) Save(ctx context.Context, p *paymentDomain.Payment) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *PaymentRepository) GetByPaymentID(ctx context.Context, paymentID string) (*paymentDomain.Payment, error) {
	var out paymentDomain.Payment
	if err := r.db.WithContext(ctx).Where("payment_id = ?", paymentID).First(&out).Error; err != nil {
		return nil, translate(err, paymentDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *PaymentRepository) GetByPaymentIDForUpdate(ctx context.Context, paymentID string) (*paymentDomain.Payment, error) {
	var out paymentDomain.Payment
	err := r.db.WithContext(ctx).Clauses(forUpdate).Where("payment_id = ?", paymentID).First(&out).Error
	if err != nil {
		return nil, translate(err, paymentDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *PaymentRepository) HasPending(ctx context.Context, loanRef uint64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&paymentDomain.Payment{}).
		Where("loan_ref = ? AND state = ?", loanRef, paymentDomain.StatePending).
		Count(&n).Error
	return n > 0, err
}

func (r *PaymentRepository) ListByLoan(ctx context.Context, loanRef uint64) ([]paymentDomain.Payment, error) {
	var out []paymentDomain.Payment
	err := r.db.WithContext(ctx).Where("loan_ref = ?", loanRef).Order("id").Find(&out).Error
	return out, err
}

func (r *PaymentRepository) SetGeneratedReceipt(ctx context.Context, paymentID, ref string) error {
	return r.db.WithContext(ctx).
		Model(&paymentDomain.Payment{}).
		Where("payment_id = ?", paymentID).
		Update("generated_receipt_ref", ref).Error
}
