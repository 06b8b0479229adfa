package render

import (
	"bytes"
	"reflect"
	"testing"
	"time"

	"pawn-lending-backend/internal/domain/artifact"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

func open(t *testing.T, b []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestWorkbook_Receipt(t *testing.T) {
	b, err := NewWorkbook().Receipt(artifact.Receipt{
		PaymentID:    "0123456789abcdef0123456789abcdef",
		LoanNumber:   "LN-2026-000001",
		Amount:       decimal.RequireFromString("1916.67"),
		BalanceAfter: decimal.RequireFromString("3833.33"),
		Method:       "transfer",
		PaidOn:       time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC),
		ValidatedAt:  time.Date(2026, 2, 16, 9, 30, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Receipt: %v", err)
	}
	f := open(t, b)

	for cell, want := range map[string]string{
		"B2":  "LN-2026-000001",
		"B4":  "1916.67",
		"B10": "3833.33",
	} {
		got, err := f.GetCellValue(receiptSheet, cell)
		if err != nil || got != want {
			t.Errorf("%s = %q (%v), want %q", cell, got, err, want)
		}
	}
}

func TestWorkbook_Schedule(t *testing.T) {
	start := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	lines := make([]artifact.ScheduleLine, 3)
	for i := range lines {
		lines[i] = artifact.ScheduleLine{
			Seq:       i + 1,
			DueDate:   start.AddDate(0, i+1, 0),
			Amount:    decimal.RequireFromString("1916.67"),
			Principal: decimal.RequireFromString("1666.67"),
			Interest:  decimal.RequireFromString("250"),
			State:     "pending",
		}
	}
	b, err := NewWorkbook().Schedule(artifact.Schedule{
		ContractNumber: "CTR-2026-01-000001",
		LoanNumber:     "LN-2026-000001",
		Principal:      decimal.RequireFromString("5000"),
		Rate:           decimal.RequireFromString("5"),
		TotalPayable:   decimal.RequireFromString("5750"),
		Lines:          lines,
	})
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	rows, err := open(t, b).GetRows(scheduleSheet)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	// 6 header rows, a blank row, the table header and 3 lines
	if len(rows) != 11 {
		t.Fatalf("rows = %d, want 11", len(rows))
	}
	if want := []string{"#", "Due date", "Amount", "Principal", "Interest", "State"}; !reflect.DeepEqual(rows[7], want) {
		t.Fatalf("header %v", rows[7])
	}
	if want := []string{"3", "2026-04-15", "1916.67", "1666.67", "250.00", "pending"}; !reflect.DeepEqual(rows[10], want) {
		t.Fatalf("last line %v", rows[10])
	}
}
