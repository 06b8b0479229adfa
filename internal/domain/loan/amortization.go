package loan

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// RemainderPolicy decides what happens to the cents lost when totals are
// divided by the term and each row is rounded on its own.
type RemainderPolicy string

const (
	// RemainderNone rounds every row independently and drops the remainder.
	RemainderNone RemainderPolicy = "none"
	// RemainderFinal lets the last row absorb the difference so sums are exact.
	RemainderFinal RemainderPolicy = "final"
)

func ParseRemainderPolicy(s string) (RemainderPolicy, bool) {
	switch RemainderPolicy(s) {
	case RemainderNone, RemainderFinal:
		return RemainderPolicy(s), true
	case "":
		return RemainderNone, true
	}
	return "", false
}

var (
	hundred = decimal.NewFromInt(100)

	ErrInvalidTerm      = errors.New("term must be at least one month")
	ErrInvalidPrincipal = errors.New("principal must be positive")
)

// Round2 rounds money to cents, half away from zero.
func Round2(d decimal.Decimal) decimal.Decimal { return d.Round(2) }

// FlatInterest is principal × rate/100 × months, rounded to cents. rate is a
// monthly percentage.
func FlatInterest(principal, rate decimal.Decimal, months int) decimal.Decimal {
	return Round2(principal.Mul(rate).Div(hundred).Mul(decimal.NewFromInt(int64(months))))
}

// TotalPayable is principal plus flat interest over the term.
func TotalPayable(principal, rate decimal.Decimal, months int) decimal.Decimal {
	return Round2(principal.Add(FlatInterest(principal, rate, months)))
}

type ScheduleRow struct {
	Seq       int
	DueDate   time.Time
	Amount    decimal.Decimal
	Principal decimal.Decimal
	Interest  decimal.Decimal
}

type ScheduleInput struct {
	Principal decimal.Decimal
	Interest  decimal.Decimal
	Months    int
	// Start is the date the first period begins; row i is due Start + i months.
	Start    time.Time
	FirstSeq int
	Policy   RemainderPolicy
}

// BuildSchedule splits principal and interest into equal monthly
// installments. Renewal seeds it with the outstanding balance as principal.
func BuildSchedule(in ScheduleInput) ([]ScheduleRow, error) {
	if in.Months < 1 {
		return nil, ErrInvalidTerm
	}
	if !in.Principal.IsPositive() {
		return nil, ErrInvalidPrincipal
	}
	if in.FirstSeq < 1 {
		in.FirstSeq = 1
	}
	n := decimal.NewFromInt(int64(in.Months))
	total := in.Principal.Add(in.Interest)

	amount := Round2(total.Div(n))
	principal := Round2(in.Principal.Div(n))
	interest := Round2(in.Interest.Div(n))

	rows := make([]ScheduleRow, in.Months)
	for i := range rows {
		rows[i] = ScheduleRow{
			Seq:       in.FirstSeq + i,
			DueDate:   AddMonths(in.Start, i+1),
			Amount:    amount,
			Principal: principal,
			Interest:  interest,
		}
	}

	if in.Policy == RemainderFinal && in.Months > 1 {
		k := decimal.NewFromInt(int64(in.Months - 1))
		last := &rows[len(rows)-1]
		last.Amount = total.Sub(amount.Mul(k))
		last.Principal = in.Principal.Sub(principal.Mul(k))
		last.Interest = in.Interest.Sub(interest.Mul(k))
	}
	return rows, nil
}

// AddMonths adds n calendar months, clamping to the last day of the target
// month (Jan 31 + 1 month = Feb 28/29).
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, t.Location())
}

// SumRows returns the totals of amount, principal and interest.
func SumRows(rows []ScheduleRow) (amount, principal, interest decimal.Decimal) {
	for _, r := range rows {
		amount = amount.Add(r.Amount)
		principal = principal.Add(r.Principal)
		interest = interest.Add(r.Interest)
	}
	return
}

// Today truncates t to midnight UTC of its calendar day.
func Today(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
