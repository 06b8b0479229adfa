package evaluation

import (
	"context"
	"testing"
	"time"

	"pawn-lending-backend/internal/adapter/repository/mysql"
	"pawn-lending-backend/internal/domain/access"
	"pawn-lending-backend/internal/domain/apperr"
	"pawn-lending-backend/internal/domain/application"
	"pawn-lending-backend/internal/domain/audit"
	"pawn-lending-backend/internal/domain/notify"
	"pawn-lending-backend/internal/testutil/dbtest"
	"pawn-lending-backend/internal/testutil/fixture"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

type recorder struct{ events []notify.Event }

func (r *recorder) Notify(_ context.Context, ev notify.Event) error {
	r.events = append(r.events, ev)
	return nil
}

func newUsecase(t *testing.T) (*Usecase, *gorm.DB, *recorder) {
	t.Helper()
	tx, db := dbtest.UoW(t)
	rec := &recorder{}
	uc := NewUsecase(tx, Settings{
		MinAmount:     fixture.D("100"),
		MaxAmount:     fixture.D("100000"),
		MaxTermMonths: 24,
	}, notify.NewDispatcher(rec, nil), nil).WithClock(func() time.Time { return fixedNow })
	return uc, db, rec
}

func ptr[T any](v T) *T { return &v }

func TestEvaluate_ApproveUnchangedKeepsTotal(t *testing.T) {
	uc, db, rec := newUsecase(t)
	ctx := context.Background()
	applicant, evaluator := fixture.Applicant(), fixture.Evaluator()
	app := fixture.Application(t, db, applicant.UserID, fixture.AppOpts{Email: "a@example.com"})

	dto, err := uc.Evaluate(ctx, evaluator, app.ApplicationID, EvaluateInput{Decision: DecisionApprove})
	require.NoError(t, err)
	assert.Equal(t, string(application.StateApproved), dto.State)
	assert.False(t, dto.Recomputed)
	assert.Equal(t, "5750.00", dto.TotalPayable.StringFixed(2))

	got, err := mysql.NewApplicationRepository(db).GetByApplicationID(ctx, app.ApplicationID)
	require.NoError(t, err)
	assert.Equal(t, application.StateApproved, got.State)
	require.NotNil(t, got.EvaluatorID)
	assert.Equal(t, evaluator.UserID, *got.EvaluatorID)

	require.Len(t, rec.events, 1)
	assert.Equal(t, notify.EventApplicationEvaluated, rec.events[0].Name)
	assert.Equal(t, "a@example.com", rec.events[0].Email)
	assert.Equal(t, applicant.UserID, rec.events[0].RecipientID)

	entries, err := mysql.NewAuditRepository(db).ListByEntity(ctx, audit.EntityApplication, app.ApplicationID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	p, err := entries[0].Decode()
	require.NoError(t, err)
	ev, ok := p.(*audit.Evaluation)
	require.True(t, ok, "payload %T", p)
	assert.Equal(t, "approve", ev.Decision)
	assert.False(t, ev.Recomputed)
}

func TestEvaluate_ApproveWithNewTermsRecomputes(t *testing.T) {
	uc, db, _ := newUsecase(t)
	app := fixture.Application(t, db, fixture.Applicant().UserID, fixture.AppOpts{})

	dto, err := uc.Evaluate(context.Background(), fixture.Evaluator(), app.ApplicationID, EvaluateInput{
		Decision:   DecisionApprove,
		Amount:     ptr(fixture.D("4000")),
		TermMonths: ptr(6),
	})
	require.NoError(t, err)
	assert.True(t, dto.Recomputed)
	// 4000 + 4000 * 5% * 6
	assert.Equal(t, "5200.00", dto.TotalPayable.StringFixed(2))
	assert.Equal(t, 6, dto.TermMonths)

	got, err := mysql.NewApplicationRepository(db).GetByApplicationID(context.Background(), app.ApplicationID)
	require.NoError(t, err)
	assert.Equal(t, "5000.00", got.RequestedAmount.StringFixed(2), "requested amount overwritten")
	assert.Equal(t, 3, got.RequestedTerm, "requested term overwritten")
}

func TestEvaluate_Reject(t *testing.T) {
	uc, db, rec := newUsecase(t)
	app := fixture.Application(t, db, fixture.Applicant().UserID, fixture.AppOpts{State: application.StateEvaluating})

	dto, err := uc.Evaluate(context.Background(), fixture.Admin(), app.ApplicationID, EvaluateInput{
		Decision:     DecisionReject,
		Observations: "item is a replica",
	})
	require.NoError(t, err)
	assert.Equal(t, string(application.StateRejected), dto.State)
	assert.Equal(t, "item is a replica", dto.Observations)
	require.Len(t, rec.events, 1)
	assert.Equal(t, "reject", rec.events[0].Data["decision"])

	_, err = uc.Evaluate(context.Background(), fixture.Evaluator(), app.ApplicationID, EvaluateInput{Decision: DecisionApprove})
	assert.ErrorIs(t, err, application.ErrNotEvaluable)
}

func TestEvaluate_Appraisal(t *testing.T) {
	uc, db, _ := newUsecase(t)
	ctx := context.Background()
	apps := mysql.NewApplicationRepository(db)

	app := fixture.Application(t, db, fixture.Applicant().UserID, fixture.AppOpts{})
	dto, err := uc.Evaluate(ctx, fixture.Evaluator(), app.ApplicationID, EvaluateInput{
		Decision:  DecisionApprove,
		Appraisal: &AppraisalInput{CommercialValue: fixture.D("9000"), AppliedPercentage: fixture.D("60")},
	})
	require.NoError(t, err)
	require.NotNil(t, dto.LoanAmount)
	assert.Equal(t, "5400.00", dto.LoanAmount.StringFixed(2))
	ap, err := apps.GetAppraisal(ctx, app.ID)
	require.NoError(t, err)
	assert.NotNil(t, ap)

	other := fixture.Application(t, db, fixture.Applicant().UserID, fixture.AppOpts{})
	_, err = uc.Evaluate(ctx, fixture.Evaluator(), other.ApplicationID, EvaluateInput{
		Decision:  DecisionApprove,
		Appraisal: &AppraisalInput{CommercialValue: fixture.D("9000"), AppliedPercentage: fixture.D("50")},
	})
	assert.ErrorIs(t, err, application.ErrAboveAppraisal)
	got, err := apps.GetByApplicationID(ctx, other.ApplicationID)
	require.NoError(t, err)
	assert.Equal(t, application.StatePending, got.State, "state changed on failure")
}

func TestEvaluate_SecondAppraisalConflicts(t *testing.T) {
	uc, db, rec := newUsecase(t)
	ctx := context.Background()
	apps := mysql.NewApplicationRepository(db)
	app := fixture.Application(t, db, fixture.Applicant().UserID, fixture.AppOpts{})
	require.NoError(t, apps.CreateAppraisal(ctx, &application.Appraisal{
		ApplicationRef:    app.ID,
		CommercialValue:   fixture.D("9000"),
		AppliedPercentage: fixture.D("60"),
		LoanAmount:        fixture.D("5400"),
		EvaluatorID:       fixture.Evaluator().UserID,
		AppraisedAt:       fixedNow,
	}))

	_, err := uc.Evaluate(ctx, fixture.Evaluator(), app.ApplicationID, EvaluateInput{
		Decision:  DecisionApprove,
		Appraisal: &AppraisalInput{CommercialValue: fixture.D("10000"), AppliedPercentage: fixture.D("60")},
	})
	require.ErrorIs(t, err, application.ErrAlreadyAppraised)
	assert.Equal(t, apperr.CodeStateConflict, apperr.CodeOf(err))
	assert.Empty(t, rec.events)

	got, err := apps.GetByApplicationID(ctx, app.ApplicationID)
	require.NoError(t, err)
	assert.Equal(t, application.StatePending, got.State, "evaluation committed despite the conflict")
}

func TestEvaluate_Rejections(t *testing.T) {
	uc, db, _ := newUsecase(t)
	app := fixture.Application(t, db, fixture.Applicant().UserID, fixture.AppOpts{})

	cases := []struct {
		name   string
		caller access.Identity
		in     EvaluateInput
		code   apperr.Code
	}{
		{"applicant", fixture.Applicant(), EvaluateInput{Decision: DecisionApprove}, apperr.CodeForbidden},
		{"agent", fixture.Agent(), EvaluateInput{Decision: DecisionApprove}, apperr.CodeForbidden},
		{"bad decision", fixture.Evaluator(), EvaluateInput{Decision: "maybe"}, apperr.CodeValidation},
		{"zero amount", fixture.Evaluator(), EvaluateInput{Decision: DecisionApprove, Amount: ptr(decimal.Zero)}, apperr.CodeValidation},
		{"term too long", fixture.Evaluator(), EvaluateInput{Decision: DecisionApprove, TermMonths: ptr(25)}, apperr.CodeValidation},
		{"pct over 100", fixture.Evaluator(), EvaluateInput{Decision: DecisionApprove, Appraisal: &AppraisalInput{CommercialValue: fixture.D("1"), AppliedPercentage: fixture.D("101")}}, apperr.CodeValidation},
		{"amount over max", fixture.Evaluator(), EvaluateInput{Decision: DecisionApprove, Amount: ptr(fixture.D("100000.01"))}, apperr.CodeLimitExceeded},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := uc.Evaluate(context.Background(), c.caller, app.ApplicationID, c.in)
			assert.Equal(t, c.code, apperr.CodeOf(err), "%v", err)
		})
	}

	_, err := uc.Evaluate(context.Background(), fixture.Evaluator(), "ffffffffffffffffffffffffffffffff", EvaluateInput{Decision: DecisionApprove})
	assert.ErrorIs(t, err, application.ErrNotFound)
}
