package sequence

import (
	"context"
	"fmt"
	"time"
)

const (
	NameContract = "contract"
	NameLoan     = "loan"
)

// Table: sequences. One row per name and period.
type Sequence struct {
	Name   string `gorm:"column:name;primaryKey;size:32"`
	Period string `gorm:"column:period;primaryKey;size:16"`
	Value  int64  `gorm:"column:value;not null"`
}

func (Sequence) TableName() string { return "sequences" }

// Allocator hands out gap-free numbers; Next must run inside the caller's
// transaction so a rollback releases the number.
type Allocator interface {
	Next(ctx context.Context, name, period string) (int64, error)
}

func MonthPeriod(t time.Time) string { return t.Format("2006-01") }
func YearPeriod(t time.Time) string  { return t.Format("2006") }

// ContractNumber formats a month-scoped contract number, e.g. CTR-2026-10-000001.
func ContractNumber(period string, n int64) string {
	return fmt.Sprintf("CTR-%s-%06d", period, n)
}

// LoanNumber formats a year-scoped loan number, e.g. LN-2026-000001.
func LoanNumber(period string, n int64) string {
	return fmt.Sprintf("LN-%s-%06d", period, n)
}
