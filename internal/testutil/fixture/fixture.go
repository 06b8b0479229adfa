// Package fixture seeds domain rows directly through the repositories so
// usecase tests can start from any point of the lifecycle.
package fixture

import (
	"context"
	"testing"
	"time"

	"pawn-lending-backend/internal/adapter/repository/mysql"
	"pawn-lending-backend/internal/domain/access"
	"pawn-lending-backend/internal/domain/application"
	"pawn-lending-backend/internal/domain/contract"
	"pawn-lending-backend/internal/domain/loan"
	"pawn-lending-backend/pkg/id"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func D(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func Applicant() access.Identity {
	return access.Identity{UserID: id.NewID32(), Role: access.RoleApplicant}
}
func Evaluator() access.Identity {
	return access.Identity{UserID: id.NewID32(), Role: access.RoleEvaluator}
}
func Agent() access.Identity {
	return access.Identity{UserID: id.NewID32(), Role: access.RoleCollectionsAgent}
}
func Admin() access.Identity {
	return access.Identity{UserID: id.NewID32(), Role: access.RoleAdministrator}
}

type AppOpts struct {
	State         application.State
	Amount        string
	Rate          string
	Term          int
	Accepted      bool
	IdentityDocs  int
	Email         string
	EstimatedItem string
}

// Application inserts an application with a jewelry item.
func Application(t *testing.T, db *gorm.DB, applicantID string, o AppOpts) *application.Application {
	t.Helper()
	ctx := context.Background()
	if o.State == "" {
		o.State = application.StatePending
	}
	if o.Amount == "" {
		o.Amount = "5000"
	}
	if o.Rate == "" {
		o.Rate = "5"
	}
	if o.Term == 0 {
		o.Term = 3
	}
	if o.EstimatedItem == "" {
		o.EstimatedItem = "10000"
	}
	amount, rate := D(o.Amount), D(o.Rate)
	now := time.Now().UTC()
	app := &application.Application{
		ApplicationID:   id.NewID32(),
		ApplicantID:     applicantID,
		Amount:          amount,
		TermMonths:      o.Term,
		Modality:        loan.ModalityMonthly,
		Rate:            rate,
		TotalPayable:    loan.TotalPayable(amount, rate, o.Term),
		State:           o.State,
		RequestedAmount: amount,
		RequestedRate:   rate,
		RequestedTerm:   o.Term,
		OfferAccepted:   o.Accepted,
		ContactEmail:    o.Email,
		StateUpdatedAt:  now,
	}
	if o.Accepted {
		app.OfferAcceptedAt = &now
	}
	repo := mysql.NewApplicationRepository(db)
	if err := repo.Create(ctx, app); err != nil {
		t.Fatalf("fixture application: %v", err)
	}
	item := &application.PledgeItem{
		ApplicationRef: app.ID,
		Description:    "18k gold ring",
		Category:       "jewelry",
		Condition:      "good",
		EstimatedValue: D(o.EstimatedItem),
	}
	if err := repo.CreateItem(ctx, item); err != nil {
		t.Fatalf("fixture item: %v", err)
	}
	app.Item = item
	var docs []application.Document
	for i := 0; i < o.IdentityDocs; i++ {
		docs = append(docs, application.Document{ApplicationRef: app.ID, Kind: application.DocumentIdentity, ArtifactRef: "s3://docs/id-" + id.NewID32()})
	}
	if err := repo.AddDocuments(ctx, docs); err != nil {
		t.Fatalf("fixture docs: %v", err)
	}
	return app
}

type LoanOpts struct {
	State     loan.State
	Principal string
	Rate      string
	Term      int
	Start     time.Time
	Email     string
}

// Loan inserts a signed contract, its loan and a fresh schedule.
func Loan(t *testing.T, db *gorm.DB, borrowerID string, o LoanOpts) (*contract.Contract, *loan.Loan) {
	t.Helper()
	ctx := context.Background()
	if o.State == "" {
		o.State = loan.StateActive
	}
	if o.Principal == "" {
		o.Principal = "5000"
	}
	if o.Rate == "" {
		o.Rate = "5"
	}
	if o.Term == 0 {
		o.Term = 3
	}
	if o.Start.IsZero() {
		o.Start = time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	}
	app := Application(t, db, borrowerID, AppOpts{State: application.StateApproved, Amount: o.Principal, Rate: o.Rate, Term: o.Term, Accepted: true, IdentityDocs: 2, Email: o.Email})

	now := time.Now().UTC()
	signature := "s3://signatures/" + id.NewID32()
	state := contract.SignatureSigned
	var signedAt *time.Time
	if o.State == loan.StatePendingSignature {
		state = contract.SignaturePending
	} else {
		signedAt = &now
	}
	c := &contract.Contract{
		ContractID:     id.NewID32(),
		Number:         "CTR-" + id.NewID32()[:12],
		ApplicationRef: app.ID,
		BorrowerID:     borrowerID,
		Content:        "contract",
		SignatureState: state,
		SignedAt:       signedAt,
	}
	if state == contract.SignatureSigned {
		c.SignatureRef = &signature
	}
	if err := mysql.NewContractRepository(db).Create(ctx, c); err != nil {
		t.Fatalf("fixture contract: %v", err)
	}

	principal, rate := D(o.Principal), D(o.Rate)
	interest := loan.FlatInterest(principal, rate, o.Term)
	total := loan.TotalPayable(principal, rate, o.Term)
	l := &loan.Loan{
		LoanID:         id.NewID32(),
		Number:         "LN-" + id.NewID32()[:12],
		ContractRef:    c.ID,
		ApplicationID:  app.ID,
		BorrowerID:     borrowerID,
		Principal:      principal,
		Rate:           rate,
		TermMonths:     o.Term,
		Modality:       loan.ModalityMonthly,
		TotalPayable:   total,
		Balance:        total,
		State:          o.State,
		StartDate:      o.Start,
		DueDate:        loan.AddMonths(o.Start, o.Term),
		StateUpdatedAt: now,
	}
	if err := mysql.NewLoanRepository(db).Create(ctx, l); err != nil {
		t.Fatalf("fixture loan: %v", err)
	}

	rows, err := loan.BuildSchedule(loan.ScheduleInput{Principal: principal, Interest: interest, Months: o.Term, Start: o.Start})
	if err != nil {
		t.Fatalf("fixture schedule: %v", err)
	}
	inst := make([]loan.Installment, len(rows))
	for i, r := range rows {
		inst[i] = loan.Installment{LoanRef: l.ID, Seq: r.Seq, DueDate: r.DueDate, Amount: r.Amount, Principal: r.Principal, Interest: r.Interest, State: loan.InstallmentPending}
	}
	if err := mysql.NewInstallmentRepository(db).CreateBatch(ctx, inst); err != nil {
		t.Fatalf("fixture installments: %v", err)
	}
	return c, l
}
