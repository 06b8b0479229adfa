package mysql

import (
	"context"
	"fmt"

	"pawn-lending-backend/internal/domain/application"
	"pawn-lending-backend/internal/domain/audit"
	"pawn-lending-backend/internal/domain/contract"
	"pawn-lending-backend/internal/domain/loan"
	"pawn-lending-backend/internal/domain/payment"
	"pawn-lending-backend/internal/domain/sequence"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func models() []any {
	return []any{
		&application.Application{},
		&application.PledgeItem{},
		&application.Document{},
		&application.Appraisal{},
		&application.CategoryLimit{},
		&contract.Contract{},
		&loan.Loan{},
		&loan.Installment{},
		&loan.Renewal{},
		&payment.Payment{},
		&audit.Entry{},
		&sequence.Sequence{},
	}
}

// Migrate creates the schema and seeds category limits that are not present
// yet. Existing limits are left untouched so operators can tune them in place.
func Migrate(ctx context.Context, db *gorm.DB, limits []application.CategoryLimit) error {
	if err := db.WithContext(ctx).AutoMigrate(models()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	if len(limits) == 0 {
		return nil
	}
	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&limits).Error
	if err != nil {
		return fmt.Errorf("seed category limits: %w", err)
	}
	return nil
}
