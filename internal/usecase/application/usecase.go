package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pawn-lending-backend/internal/domain/access"
	"pawn-lending-backend/internal/domain/apperr"
	domain "pawn-lending-backend/internal/domain/application"
	"pawn-lending-backend/internal/domain/audit"
	"pawn-lending-backend/internal/domain/loan"
	"pawn-lending-backend/internal/domain/uow"
	"pawn-lending-backend/pkg/id"

	"go.uber.org/zap"
)

type Usecase struct {
	uow uow.UnitOfWork
	cfg Settings
	log *zap.Logger
	now func() time.Time
}

func NewUsecase(tx uow.UnitOfWork, cfg Settings, log *zap.Logger) *Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &Usecase{uow: tx, cfg: cfg, log: log, now: time.Now}
}

// WithClock replaces the wall clock, mainly for tests.
func (u *Usecase) WithClock(now func() time.Time) *Usecase {
	u.now = now
	return u
}

func (u *Usecase) validateSubmit(in SubmitInput) error {
	switch {
	case strings.TrimSpace(in.Item.Description) == "":
		return apperr.Validation("item description is required")
	case strings.TrimSpace(in.Item.Category) == "":
		return apperr.Validation("item category is required")
	case strings.TrimSpace(in.Item.Condition) == "":
		return apperr.Validation("item condition is required")
	case !in.Item.EstimatedValue.IsPositive():
		return apperr.Validation("item estimated value must be greater than zero")
	case !in.Amount.IsPositive():
		return apperr.Validation("amount must be greater than zero")
	case in.TermMonths < 1 || in.TermMonths > u.cfg.MaxTermMonths:
		return apperr.Newf(apperr.CodeValidation, "term must be between 1 and %d months", u.cfg.MaxTermMonths)
	case !loan.Modality(in.Modality).Valid():
		return apperr.Validation("modality must be monthly, biweekly or weekly")
	}
	for _, d := range in.Documents {
		if err := validateDocument(d); err != nil {
			return err
		}
	}
	return nil
}

func validateDocument(d DocumentInput) error {
	if !domain.DocumentKind(d.Kind).Valid() {
		return apperr.Validation("document kind must be identity, item_photo or other")
	}
	if strings.TrimSpace(d.ArtifactRef) == "" {
		return apperr.Validation("document artifact reference is required")
	}
	return nil
}

// Submit records a new application with its pledge item and documents.
func (u *Usecase) Submit(ctx context.Context, caller access.Identity, in SubmitInput) (*ApplicationDTO, error) {
	if caller.UserID == "" {
		return nil, access.ErrForbidden
	}
	if err := u.validateSubmit(in); err != nil {
		return nil, err
	}
	amount := loan.Round2(in.Amount)
	if amount.LessThan(u.cfg.MinAmount) || amount.GreaterThan(u.cfg.MaxAmount) {
		return nil, apperr.Wrap(apperr.CodeLimitExceeded, domain.ErrAmountOutOfBounds.Msg,
			fmt.Errorf("amount %s outside [%s, %s]", amount, u.cfg.MinAmount, u.cfg.MaxAmount))
	}

	now := u.now().UTC()
	rate := u.cfg.DefaultRate
	app := &domain.Application{
		ApplicationID:   id.NewID32(),
		ApplicantID:     caller.UserID,
		Amount:          amount,
		TermMonths:      in.TermMonths,
		Modality:        loan.Modality(in.Modality),
		Rate:            rate,
		TotalPayable:    loan.TotalPayable(amount, rate, in.TermMonths),
		State:           domain.StatePending,
		RequestedAmount: amount,
		RequestedRate:   rate,
		RequestedTerm:   in.TermMonths,
		StateUpdatedAt:  now,
	}

	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		category := strings.ToLower(strings.TrimSpace(in.Item.Category))
		limit, err := r.Applications.GetCategoryLimit(ctx, category)
		if err != nil {
			return err
		}
		min, max := limit.Bounds(in.Item.EstimatedValue)
		if amount.LessThan(min) || amount.GreaterThan(max) {
			return apperr.Wrap(apperr.CodeLimitExceeded, domain.ErrAmountOutOfCategory.Msg,
				fmt.Errorf("%s allows %s..%s for this item", category, min.StringFixed(2), max.StringFixed(2)))
		}

		open, err := r.Applications.CountOpenByApplicant(ctx, caller.UserID)
		if err != nil {
			return fmt.Errorf("count open applications: %w", err)
		}
		if open >= int64(u.cfg.MaxOpenApplications) {
			return domain.ErrTooManyOpen
		}

		if err := r.Applications.Create(ctx, app); err != nil {
			return fmt.Errorf("create application: %w", err)
		}
		item := &domain.PledgeItem{
			ApplicationRef: app.ID,
			Description:    strings.TrimSpace(in.Item.Description),
			Category:       category,
			Condition:      strings.TrimSpace(in.Item.Condition),
			EstimatedValue: loan.Round2(in.Item.EstimatedValue),
			TechnicalNotes: in.Item.TechnicalNotes,
		}
		if err := r.Applications.CreateItem(ctx, item); err != nil {
			return fmt.Errorf("create pledge item: %w", err)
		}
		app.Item = item

		docs := make([]domain.Document, 0, len(in.Documents))
		for _, d := range in.Documents {
			docs = append(docs, domain.Document{ApplicationRef: app.ID, Kind: domain.DocumentKind(d.Kind), ArtifactRef: d.ArtifactRef})
		}
		if err := r.Applications.AddDocuments(ctx, docs); err != nil {
			return fmt.Errorf("add documents: %w", err)
		}

		return appendAudit(ctx, r, app.ApplicationID, caller.UserID, audit.ApplicationSubmitted{
			Amount:     amount,
			TermMonths: in.TermMonths,
			Category:   category,
		}, now)
	})
	if err != nil {
		return nil, err
	}

	u.log.Info("application submitted",
		zap.String("application_id", app.ApplicationID),
		zap.String("applicant_id", app.ApplicantID),
		zap.String("amount", amount.String()))

	return toDTO(app), nil
}

// AttachDocument adds a document to an open application owned by the caller.
func (u *Usecase) AttachDocument(ctx context.Context, caller access.Identity, applicationID string, in DocumentInput) (*ApplicationDTO, error) {
	if err := validateDocument(in); err != nil {
		return nil, err
	}
	var dto *ApplicationDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		app, err := r.Applications.GetByApplicationIDForUpdate(ctx, applicationID)
		if err != nil {
			return err
		}
		if !caller.Owns(app.ApplicantID) {
			return domain.ErrNotFound
		}
		if app.State.Terminal() {
			return domain.ErrClosed
		}
		doc := domain.Document{ApplicationRef: app.ID, Kind: domain.DocumentKind(in.Kind), ArtifactRef: in.ArtifactRef}
		if err := r.Applications.AddDocuments(ctx, []domain.Document{doc}); err != nil {
			return fmt.Errorf("add document: %w", err)
		}
		dto, err = u.load(ctx, r, app)
		return err
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// StartEvaluation moves a pending application to evaluating.
func (u *Usecase) StartEvaluation(ctx context.Context, caller access.Identity, applicationID string) (*ApplicationDTO, error) {
	if err := caller.Require(access.CanEvaluate); err != nil {
		return nil, err
	}
	var dto *ApplicationDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		app, err := r.Applications.GetByApplicationIDForUpdate(ctx, applicationID)
		if err != nil {
			return err
		}
		if app.State != domain.StatePending {
			return domain.ErrNotEvaluable
		}
		evaluator := caller.UserID
		app.State = domain.StateEvaluating
		app.EvaluatorID = &evaluator
		app.StateUpdatedAt = u.now().UTC()
		if err := r.Applications.Save(ctx, app); err != nil {
			return fmt.Errorf("save application: %w", err)
		}
		dto = toDTO(app)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// AcceptOffer records the applicant's acceptance of the approved terms.
// Accepting twice is a no-op.
func (u *Usecase) AcceptOffer(ctx context.Context, caller access.Identity, applicationID string, in AcceptInput) (*ApplicationDTO, error) {
	var dto *ApplicationDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		app, err := r.Applications.GetByApplicationIDForUpdate(ctx, applicationID)
		if err != nil {
			return err
		}
		if !caller.Owns(app.ApplicantID) {
			return domain.ErrNotFound
		}
		if app.State != domain.StateApproved {
			return domain.ErrNotApproved
		}
		if !app.OfferAccepted {
			now := u.now().UTC()
			app.OfferAccepted = true
			app.OfferAcceptedAt = &now
			app.ContactEmail = strings.TrimSpace(in.Email)
			app.ContactPhone = strings.TrimSpace(in.Phone)
			if err := r.Applications.Save(ctx, app); err != nil {
				return fmt.Errorf("save application: %w", err)
			}
		}
		dto = toDTO(app)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// Cancel withdraws an application that has not been decided yet.
func (u *Usecase) Cancel(ctx context.Context, caller access.Identity, applicationID string) (*ApplicationDTO, error) {
	var dto *ApplicationDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		app, err := r.Applications.GetByApplicationIDForUpdate(ctx, applicationID)
		if err != nil {
			return err
		}
		if !caller.Owns(app.ApplicantID) {
			return domain.ErrNotFound
		}
		if !app.State.Evaluable() {
			return domain.ErrNotCancellable
		}
		prior := app.State
		now := u.now().UTC()
		app.State = domain.StateCancelled
		app.StateUpdatedAt = now
		if err := r.Applications.Save(ctx, app); err != nil {
			return fmt.Errorf("save application: %w", err)
		}
		dto = toDTO(app)
		return appendAudit(ctx, r, app.ApplicationID, caller.UserID, audit.ApplicationCancelled{PriorState: string(prior)}, now)
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// Get returns the application to its applicant or to staff.
func (u *Usecase) Get(ctx context.Context, caller access.Identity, applicationID string) (*ApplicationDTO, error) {
	var dto *ApplicationDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		app, err := r.Applications.GetByApplicationID(ctx, applicationID)
		if err != nil {
			return err
		}
		if !caller.Owns(app.ApplicantID) && !caller.Has(access.CanEvaluate) {
			return domain.ErrNotFound
		}
		dto, err = u.load(ctx, r, app)
		return err
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func (u *Usecase) load(ctx context.Context, r uow.Repos, app *domain.Application) (*ApplicationDTO, error) {
	item, err := r.Applications.GetItem(ctx, app.ID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	app.Item = item
	docs, err := r.Applications.ListDocuments(ctx, app.ID)
	if err != nil {
		return nil, err
	}
	ap, err := r.Applications.GetAppraisal(ctx, app.ID)
	if err != nil {
		return nil, err
	}
	dto := toDTO(app)
	dto.Documents = docs
	dto.Appraisal = ap
	return dto, nil
}

func appendAudit(ctx context.Context, r uow.Repos, applicationID, actor string, p audit.Payload, at time.Time) error {
	e, err := audit.NewEntry(audit.EntityApplication, applicationID, actor, p, at)
	if err != nil {
		return err
	}
	if err := r.Audit.Append(ctx, e); err != nil {
		return fmt.Errorf("append audit: %w", err)
	}
	return nil
}
