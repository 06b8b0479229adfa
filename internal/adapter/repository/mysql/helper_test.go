package mysql

import (
	"context"
	"testing"
	"time"

	appDomain "pawn-lending-backend/internal/domain/application"
	loanDomain "pawn-lending-backend/internal/domain/loan"
	"pawn-lending-backend/pkg/id"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB opens a private in-memory sqlite DB with the full schema.
// One connection keeps every statement on the same memory database.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	limits := []appDomain.CategoryLimit{
		{Category: "jewelry", MinPct: decimal.NewFromInt(20), MaxPct: decimal.NewFromInt(80)},
	}
	if err := Migrate(context.Background(), db, limits); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func seedLoan(t *testing.T, db *gorm.DB, state loanDomain.State) *loanDomain.Loan {
	t.Helper()
	now := time.Now().UTC()
	l := &loanDomain.Loan{
		LoanID:         id.NewID32(),
		Number:         "LN-" + id.NewID32()[:8],
		ContractRef:    uint64(now.UnixNano()),
		ApplicationID:  1,
		BorrowerID:     id.NewID32(),
		Principal:      dec("5000"),
		Rate:           dec("5"),
		TermMonths:     3,
		Modality:       loanDomain.ModalityMonthly,
		TotalPayable:   dec("5750"),
		Balance:        dec("5750"),
		State:          state,
		StartDate:      now,
		DueDate:        now.AddDate(0, 3, 0),
		StateUpdatedAt: now,
	}
	if err := NewLoanRepository(db).Create(context.Background(), l); err != nil {
		t.Fatalf("seed loan: %v", err)
	}
	return l
}
