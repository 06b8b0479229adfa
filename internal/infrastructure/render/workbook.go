package render

import (
	"fmt"

	"pawn-lending-backend/internal/domain/artifact"

	"github.com/xuri/excelize/v2"
)

const (
	receiptSheet  = "Receipt"
	scheduleSheet = "Schedule"
	dateLayout    = "2006-01-02"
)

// Workbook renders receipts and schedules as xlsx documents.
type Workbook struct{}

func NewWorkbook() *Workbook { return &Workbook{} }

func (Workbook) Receipt(r artifact.Receipt) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", receiptSheet); err != nil {
		return nil, err
	}
	rows := [][2]string{
		{"Payment", r.PaymentID},
		{"Loan", r.LoanNumber},
		{"Borrower", r.BorrowerID},
		{"Amount", r.Amount.StringFixed(2)},
		{"Method", r.Method},
		{"Bank reference", r.BankRef},
		{"Paid on", r.PaidOn.Format(dateLayout)},
		{"Validated at", r.ValidatedAt.UTC().Format("2006-01-02 15:04:05")},
		{"Validated by", r.ValidatorID},
		{"Balance after payment", r.BalanceAfter.StringFixed(2)},
	}
	for i, kv := range rows {
		if err := f.SetSheetRow(receiptSheet, fmt.Sprintf("A%d", i+1), &[]any{kv[0], kv[1]}); err != nil {
			return nil, fmt.Errorf("receipt row %d: %w", i+1, err)
		}
	}
	if err := boldRange(f, receiptSheet, "A1", fmt.Sprintf("A%d", len(rows))); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(receiptSheet, "A", "B", 26); err != nil {
		return nil, err
	}
	return write(f)
}

func (Workbook) Schedule(s artifact.Schedule) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", scheduleSheet); err != nil {
		return nil, err
	}
	header := [][]any{
		{"Contract", s.ContractNumber},
		{"Loan", s.LoanNumber},
		{"Borrower", s.BorrowerID},
		{"Principal", s.Principal.StringFixed(2)},
		{"Monthly rate %", s.Rate.String()},
		{"Total payable", s.TotalPayable.StringFixed(2)},
		{},
		{"#", "Due date", "Amount", "Principal", "Interest", "State"},
	}
	for i, row := range header {
		if err := f.SetSheetRow(scheduleSheet, fmt.Sprintf("A%d", i+1), &row); err != nil {
			return nil, err
		}
	}
	tableHeader := len(header)
	if err := boldRange(f, scheduleSheet, fmt.Sprintf("A%d", tableHeader), fmt.Sprintf("F%d", tableHeader)); err != nil {
		return nil, err
	}

	for i, l := range s.Lines {
		cell, err := excelize.CoordinatesToCellName(1, tableHeader+1+i)
		if err != nil {
			return nil, err
		}
		row := []any{l.Seq, l.DueDate.Format(dateLayout), l.Amount.StringFixed(2), l.Principal.StringFixed(2), l.Interest.StringFixed(2), l.State}
		if err := f.SetSheetRow(scheduleSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("schedule line %d: %w", l.Seq, err)
		}
	}
	if err := f.SetColWidth(scheduleSheet, "A", "F", 16); err != nil {
		return nil, err
	}
	return write(f)
}

func boldRange(f *excelize.File, sheet, from, to string) error {
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, from, to, style)
}

func write(f *excelize.File) ([]byte, error) {
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
