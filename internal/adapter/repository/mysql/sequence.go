package mysql

import (
	"context"
	"fmt"

	"pawn-lending-backend/internal/domain/sequence"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SequenceRepository allocates numbers from the sequences table. It must be
// bound to a transaction: the row lock is held until commit.
type SequenceRepository struct{ db *gorm.DB }

func NewSequenceRepository(db *gorm.DB) *SequenceRepository { return &SequenceRepository{db: db} }

func (r *SequenceRepository) Next(ctx context.Context, name, period string) (int64, error) {
	db := r.db.WithContext(ctx)
	seed := sequence.Sequence{Name: name, Period: period}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return 0, fmt.Errorf("seed sequence %s/%s: %w", name, period, err)
	}

	var cur sequence.Sequence
	err := db.Clauses(forUpdate).
		Where("name = ? AND period = ?", name, period).
		First(&cur).Error
	if err != nil {
		return 0, fmt.Errorf("lock sequence %s/%s: %w", name, period, err)
	}

	next := cur.Value + 1
	err = db.Model(&sequence.Sequence{}).
		Where("name = ? AND period = ?", name, period).
		Update("value", next).Error
	if err != nil {
		return 0, fmt.Errorf("bump sequence %s/%s: %w", name, period, err)
	}
	return next, nil
}
