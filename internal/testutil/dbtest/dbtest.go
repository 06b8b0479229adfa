// Package dbtest opens a migrated in-memory database for usecase tests.
package dbtest

import (
	"context"
	"testing"

	"pawn-lending-backend/internal/adapter/repository/mysql"
	"pawn-lending-backend/internal/domain/application"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Categories seeded by Open.
var Categories = []application.CategoryLimit{
	{Category: "jewelry", MinPct: decimal.NewFromInt(30), MaxPct: decimal.NewFromInt(80)},
	{Category: "electronics", MinPct: decimal.NewFromInt(20), MaxPct: decimal.NewFromInt(60)},
}

// Open returns a private sqlite memory database with the full schema. The
// pool is limited to one connection so every statement sees the same data.
func Open(t *testing.T) *gorm.DB {
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

	if err := mysql.Migrate(context.Background(), db, Categories); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// UoW is a GormUoW over a fresh Open database.
func UoW(t *testing.T) (*mysql.GormUoW, *gorm.DB) {
	db := Open(t)
	return mysql.NewGormUoW(db), db
}
