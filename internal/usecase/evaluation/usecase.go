package evaluation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pawn-lending-backend/internal/domain/access"
	"pawn-lending-backend/internal/domain/apperr"
	"pawn-lending-backend/internal/domain/application"
	"pawn-lending-backend/internal/domain/audit"
	"pawn-lending-backend/internal/domain/loan"
	"pawn-lending-backend/internal/domain/notify"
	"pawn-lending-backend/internal/domain/uow"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var hundred = decimal.NewFromInt(100)

type Usecase struct {
	uow      uow.UnitOfWork
	cfg      Settings
	notifier *notify.Dispatcher
	log      *zap.Logger
	now      func() time.Time
}

func NewUsecase(tx uow.UnitOfWork, cfg Settings, notifier *notify.Dispatcher, log *zap.Logger) *Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &Usecase{uow: tx, cfg: cfg, notifier: notifier, log: log, now: time.Now}
}

func (u *Usecase) WithClock(now func() time.Time) *Usecase {
	u.now = now
	return u
}

func (u *Usecase) validate(in EvaluateInput) error {
	switch in.Decision {
	case DecisionApprove, DecisionReject:
	default:
		return apperr.Validation("decision must be approve or reject")
	}
	if in.Amount != nil && !in.Amount.IsPositive() {
		return apperr.Validation("amount must be greater than zero")
	}
	if in.Rate != nil && in.Rate.IsNegative() {
		return apperr.Validation("rate must not be negative")
	}
	if in.TermMonths != nil && (*in.TermMonths < 1 || *in.TermMonths > u.cfg.MaxTermMonths) {
		return apperr.Newf(apperr.CodeValidation, "term must be between 1 and %d months", u.cfg.MaxTermMonths)
	}
	if ap := in.Appraisal; ap != nil {
		if !ap.CommercialValue.IsPositive() {
			return apperr.Validation("appraisal commercial value must be greater than zero")
		}
		if !ap.AppliedPercentage.IsPositive() || ap.AppliedPercentage.GreaterThan(hundred) {
			return apperr.Validation("appraisal percentage must be within (0, 100]")
		}
	}
	return nil
}

// Evaluate approves or rejects an application that is awaiting a decision.
// Approval recomputes the total payable only when the terms changed.
func (u *Usecase) Evaluate(ctx context.Context, caller access.Identity, applicationID string, in EvaluateInput) (*EvaluationDTO, error) {
	if err := caller.Require(access.CanEvaluate); err != nil {
		return nil, err
	}
	if err := u.validate(in); err != nil {
		return nil, err
	}

	var (
		dto   *EvaluationDTO
		app   *application.Application
		now   = u.now().UTC()
		actor = caller.UserID
	)
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		var err error
		app, err = r.Applications.GetByApplicationIDForUpdate(ctx, applicationID)
		if err != nil {
			return err
		}
		if !app.State.Evaluable() {
			return application.ErrNotEvaluable
		}

		app.EvaluatorID = &actor
		app.EvaluatedAt = &now
		app.Observations = in.Observations
		app.StateUpdatedAt = now

		entry := audit.Evaluation{Decision: string(in.Decision), Observations: in.Observations}
		dto = &EvaluationDTO{ApplicationID: app.ApplicationID, EvaluatorID: actor, EvaluatedAt: now, Observations: in.Observations}

		if in.Decision == DecisionReject {
			app.State = application.StateRejected
		} else {
			recomputed, err := u.applyTerms(app, in)
			if err != nil {
				return err
			}
			if in.Appraisal != nil {
				ap, err := u.appraise(ctx, r, app, *in.Appraisal, actor, now)
				if err != nil {
					return err
				}
				dto.LoanAmount = &ap.LoanAmount
			}
			app.State = application.StateApproved
			dto.Recomputed = recomputed
			entry.Recomputed = recomputed
		}

		if err := r.Applications.Save(ctx, app); err != nil {
			return fmt.Errorf("save application: %w", err)
		}

		entry.Amount, entry.Rate, entry.TermMonths, entry.TotalPayable = app.Amount, app.Rate, app.TermMonths, app.TotalPayable
		e, err := audit.NewEntry(audit.EntityApplication, app.ApplicationID, actor, entry, now)
		if err != nil {
			return err
		}
		return r.Audit.Append(ctx, e)
	})
	if err != nil {
		return nil, err
	}

	dto.State = string(app.State)
	dto.Amount, dto.Rate, dto.TermMonths, dto.TotalPayable = app.Amount, app.Rate, app.TermMonths, app.TotalPayable

	u.log.Info("application evaluated",
		zap.String("application_id", app.ApplicationID),
		zap.String("decision", string(in.Decision)),
		zap.String("evaluator_id", actor))

	ev := notify.NewEvent(notify.EventApplicationEvaluated, app.ApplicantID, app.ApplicationID, now, map[string]string{
		"decision":      string(in.Decision),
		"total_payable": app.TotalPayable.StringFixed(2),
	})
	ev.Email = app.ContactEmail
	u.notifier.Dispatch(ctx, ev)
	return dto, nil
}

// applyTerms sets the approved terms on app and reports whether the total
// payable had to be recomputed.
func (u *Usecase) applyTerms(app *application.Application, in EvaluateInput) (bool, error) {
	amount, rate, term := app.Amount, app.Rate, app.TermMonths
	if in.Amount != nil {
		amount = loan.Round2(*in.Amount)
	}
	if in.Rate != nil {
		rate = *in.Rate
	}
	if in.TermMonths != nil {
		term = *in.TermMonths
	}
	if amount.LessThan(u.cfg.MinAmount) || amount.GreaterThan(u.cfg.MaxAmount) {
		return false, application.ErrAmountOutOfBounds
	}
	if amount.Equal(app.Amount) && rate.Equal(app.Rate) && term == app.TermMonths {
		return false, nil
	}
	app.Amount, app.Rate, app.TermMonths = amount, rate, term
	app.TotalPayable = loan.TotalPayable(amount, rate, term)
	return true, nil
}

func (u *Usecase) appraise(ctx context.Context, r uow.Repos, app *application.Application, in AppraisalInput, evaluator string, at time.Time) (*application.Appraisal, error) {
	loanAmount := loan.Round2(in.CommercialValue.Mul(in.AppliedPercentage).Div(hundred))
	if app.Amount.GreaterThan(loanAmount) {
		return nil, apperr.Wrap(apperr.CodeLimitExceeded, application.ErrAboveAppraisal.Msg,
			fmt.Errorf("approved %s, appraisal allows %s", app.Amount.StringFixed(2), loanAmount.StringFixed(2)))
	}
	ap := &application.Appraisal{
		ApplicationRef:    app.ID,
		CommercialValue:   loan.Round2(in.CommercialValue),
		AppliedPercentage: in.AppliedPercentage,
		LoanAmount:        loanAmount,
		EvaluatorID:       evaluator,
		AppraisedAt:       at,
	}
	if err := r.Applications.CreateAppraisal(ctx, ap); err != nil {
		if errors.Is(err, application.ErrAlreadyAppraised) {
			return nil, err
		}
		return nil, fmt.Errorf("create appraisal: %w", err)
	}
	return ap, nil
}
