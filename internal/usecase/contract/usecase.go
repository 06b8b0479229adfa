package contract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pawn-lending-backend/internal/domain/access"
	"pawn-lending-backend/internal/domain/apperr"
	"pawn-lending-backend/internal/domain/application"
	"pawn-lending-backend/internal/domain/artifact"
	"pawn-lending-backend/internal/domain/audit"
	domain "pawn-lending-backend/internal/domain/contract"
	"pawn-lending-backend/internal/domain/loan"
	"pawn-lending-backend/internal/domain/notify"
	"pawn-lending-backend/internal/domain/sequence"
	"pawn-lending-backend/internal/domain/uow"
	"pawn-lending-backend/pkg/id"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const minIdentityDocs = 2

var (
	hundred = decimal.NewFromInt(100)

	ErrSignatureRequired = apperr.Validation("signature_ref is required")
)

type Usecase struct {
	uow       uow.UnitOfWork
	cfg       Settings
	notifier  *notify.Dispatcher
	publisher *artifact.Publisher
	log       *zap.Logger
	now       func() time.Time
}

func NewUsecase(tx uow.UnitOfWork, cfg Settings, notifier *notify.Dispatcher, publisher *artifact.Publisher, log *zap.Logger) *Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Remainder == "" {
		cfg.Remainder = loan.RemainderNone
	}
	return &Usecase{uow: tx, cfg: cfg, notifier: notifier, publisher: publisher, log: log, now: time.Now}
}

func (u *Usecase) WithClock(now func() time.Time) *Usecase {
	u.now = now
	return u
}

// Generate creates the contract, the loan awaiting signature and its
// installment schedule for an approved application. Calling it again
// returns the existing pair.
func (u *Usecase) Generate(ctx context.Context, caller access.Identity, applicationID string) (*ContractDTO, error) {
	if err := caller.Require(access.CanEvaluate); err != nil {
		return nil, err
	}

	var (
		dto   *ContractDTO
		app   *application.Application
		lines []artifact.ScheduleLine
		now   = u.now().UTC()
	)
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		var err error
		app, err = r.Applications.GetByApplicationIDForUpdate(ctx, applicationID)
		if err != nil {
			return err
		}

		existing, err := r.Contracts.GetByApplicationRef(ctx, app.ID)
		switch {
		case err == nil:
			l, err := r.Loans.GetByContractRef(ctx, existing.ID)
			if err != nil {
				return err
			}
			dto = toDTO(existing, l)
			return nil
		case !errors.Is(err, domain.ErrNotFound):
			return err
		}

		if app.State != application.StateApproved {
			return application.ErrNotApproved
		}
		if !app.OfferAccepted {
			return application.ErrOfferNotAccepted
		}
		n, err := r.Applications.CountDocuments(ctx, app.ID, application.DocumentIdentity)
		if err != nil {
			return fmt.Errorf("count identity documents: %w", err)
		}
		if n < minIdentityDocs {
			return application.ErrIdentityDocsMissing
		}
		item, err := r.Applications.GetItem(ctx, app.ID)
		if err != nil {
			return fmt.Errorf("load pledge item: %w", err)
		}

		c, l, rows, err := u.create(ctx, r, caller.UserID, app, item, now)
		if err != nil {
			return err
		}
		lines = scheduleLines(rows)
		dto = toDTO(c, l)
		dto.Created = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !dto.Created {
		return dto, nil
	}

	u.log.Info("contract generated",
		zap.String("contract_id", dto.ContractID),
		zap.String("contract_number", dto.Number),
		zap.String("loan_id", dto.Loan.LoanID),
		zap.String("evaluator_id", caller.UserID))

	ev := notify.NewEvent(notify.EventContractReady, app.ApplicantID, dto.ContractID, now, map[string]string{
		"contract_number": dto.Number,
		"loan_number":     dto.Loan.Number,
		"total_payable":   dto.Loan.TotalPayable.StringFixed(2),
	})
	ev.Email = app.ContactEmail
	u.notifier.Dispatch(ctx, ev)

	if ref, ok := u.publishSchedule(ctx, dto, lines); ok {
		dto.ScheduleRef = &ref
	}
	return dto, nil
}

func (u *Usecase) create(ctx context.Context, r uow.Repos, actor string, app *application.Application, item *application.PledgeItem, now time.Time) (*domain.Contract, *loan.Loan, []loan.ScheduleRow, error) {
	month, year := sequence.MonthPeriod(now), sequence.YearPeriod(now)
	cn, err := r.Sequences.Next(ctx, sequence.NameContract, month)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("allocate contract number: %w", err)
	}
	ln, err := r.Sequences.Next(ctx, sequence.NameLoan, year)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("allocate loan number: %w", err)
	}

	start := loan.Today(now)
	interest := loan.FlatInterest(app.Amount, app.Rate, app.TermMonths)
	rows, err := loan.BuildSchedule(loan.ScheduleInput{
		Principal: app.Amount,
		Interest:  interest,
		Months:    app.TermMonths,
		Start:     start,
		Policy:    u.cfg.Remainder,
	})
	if err != nil {
		return nil, nil, nil, apperr.Wrap(apperr.CodeValidation, "cannot build schedule", err)
	}

	l := &loan.Loan{
		LoanID:         id.NewID32(),
		Number:         sequence.LoanNumber(year, ln),
		ApplicationID:  app.ID,
		BorrowerID:     app.ApplicantID,
		Principal:      app.Amount,
		Rate:           app.Rate,
		TermMonths:     app.TermMonths,
		Modality:       app.Modality,
		TotalPayable:   app.TotalPayable,
		Balance:        app.TotalPayable,
		StorageFee:     loan.Round2(app.Amount.Mul(u.cfg.StorageFeePct).Div(hundred)),
		State:          loan.StatePendingSignature,
		StartDate:      start,
		DueDate:        loan.AddMonths(start, app.TermMonths),
		StateUpdatedAt: now,
	}

	content, err := renderContent(contentData{
		ContractNumber:  sequence.ContractNumber(month, cn),
		LoanNumber:      l.Number,
		Date:            day(now),
		BorrowerID:      app.ApplicantID,
		ItemDescription: item.Description,
		ItemCategory:    item.Category,
		ItemCondition:   item.Condition,
		EstimatedValue:  money(item.EstimatedValue),
		Principal:       money(l.Principal),
		Rate:            l.Rate.String(),
		TermMonths:      l.TermMonths,
		TotalPayable:    money(l.TotalPayable),
		StorageFee:      money(l.StorageFee),
		DueDate:         day(l.DueDate),
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("render contract: %w", err)
	}

	c := &domain.Contract{
		ContractID:     id.NewID32(),
		Number:         sequence.ContractNumber(month, cn),
		ApplicationRef: app.ID,
		BorrowerID:     app.ApplicantID,
		Content:        content,
		SignatureState: domain.SignaturePending,
	}
	if err := r.Contracts.Create(ctx, c); err != nil {
		return nil, nil, nil, fmt.Errorf("create contract: %w", err)
	}

	l.ContractRef = c.ID
	if err := r.Loans.Create(ctx, l); err != nil {
		return nil, nil, nil, fmt.Errorf("create loan: %w", err)
	}

	inst := make([]loan.Installment, len(rows))
	for i, row := range rows {
		inst[i] = loan.Installment{
			LoanRef:   l.ID,
			Seq:       row.Seq,
			DueDate:   row.DueDate,
			Amount:    row.Amount,
			Principal: row.Principal,
			Interest:  row.Interest,
			State:     loan.InstallmentPending,
		}
	}
	if err := r.Installments.CreateBatch(ctx, inst); err != nil {
		return nil, nil, nil, fmt.Errorf("create installments: %w", err)
	}

	e, err := audit.NewEntry(audit.EntityContract, c.ContractID, actor, audit.ContractGenerated{
		ContractNumber: c.Number,
		LoanNumber:     l.Number,
		LoanID:         l.LoanID,
		Installments:   len(inst),
	}, now)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := r.Audit.Append(ctx, e); err != nil {
		return nil, nil, nil, fmt.Errorf("append audit: %w", err)
	}
	return c, l, rows, nil
}

// Sign records the borrower's signature and activates the loan. It is the
// only way a loan becomes active.
func (u *Usecase) Sign(ctx context.Context, caller access.Identity, contractID string, in SignInput) (*ContractDTO, error) {
	if caller.UserID == "" {
		return nil, access.ErrForbidden
	}
	ref := strings.TrimSpace(in.SignatureRef)
	if ref == "" {
		return nil, ErrSignatureRequired
	}

	var (
		dto *ContractDTO
		now = u.now().UTC()
	)
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		c, err := r.Contracts.GetByContractIDForUpdate(ctx, contractID)
		if err != nil {
			return err
		}
		if c.BorrowerID != caller.UserID {
			return domain.ErrNotFound
		}
		if c.Signed() {
			return domain.ErrAlreadySigned
		}
		l, err := r.Loans.GetByContractRef(ctx, c.ID)
		if err != nil {
			return err
		}
		if l, err = r.Loans.GetByIDForUpdate(ctx, l.ID); err != nil {
			return err
		}
		switch l.State {
		case loan.StatePendingSignature:
		case loan.StateActive:
			return loan.ErrAlreadyActive
		default:
			return loan.ErrInvalidTransition
		}

		c.SignatureState = domain.SignatureSigned
		c.SignatureRef = &ref
		c.SignedAt = &now
		if err := r.Contracts.Save(ctx, c); err != nil {
			return fmt.Errorf("save contract: %w", err)
		}
		l.State = loan.StateActive
		l.StateUpdatedAt = now
		if err := r.Loans.Save(ctx, l); err != nil {
			return fmt.Errorf("save loan: %w", err)
		}

		e, err := audit.NewEntry(audit.EntityContract, c.ContractID, caller.UserID, audit.Signing{
			ContractNumber: c.Number,
			LoanID:         l.LoanID,
			Amount:         l.Principal,
			SignatureRef:   ref,
		}, now)
		if err != nil {
			return err
		}
		if err := r.Audit.Append(ctx, e); err != nil {
			return fmt.Errorf("append audit: %w", err)
		}
		dto = toDTO(c, l)
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.log.Info("contract signed",
		zap.String("contract_id", dto.ContractID),
		zap.String("loan_id", dto.Loan.LoanID),
		zap.String("borrower_id", caller.UserID))
	return dto, nil
}

// Get returns the contract to its borrower or to staff.
func (u *Usecase) Get(ctx context.Context, caller access.Identity, contractID string) (*ContractDTO, error) {
	var dto *ContractDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		c, err := r.Contracts.GetByContractID(ctx, contractID)
		if err != nil {
			return err
		}
		if !caller.Owns(c.BorrowerID) && !caller.Staff() {
			return domain.ErrNotFound
		}
		l, err := r.Loans.GetByContractRef(ctx, c.ID)
		if err != nil {
			return err
		}
		dto = toDTO(c, l)
		return nil
	})
	return dto, err
}

func (u *Usecase) publishSchedule(ctx context.Context, dto *ContractDTO, lines []artifact.ScheduleLine) (string, bool) {
	ref, err := u.publisher.Schedule(ctx, artifact.Schedule{
		ContractNumber: dto.Number,
		LoanNumber:     dto.Loan.Number,
		BorrowerID:     dto.BorrowerID,
		Principal:      dto.Loan.Principal,
		Rate:           dto.Loan.Rate,
		TotalPayable:   dto.Loan.TotalPayable,
		Lines:          lines,
	})
	if errors.Is(err, artifact.ErrDisabled) {
		return "", false
	}
	if err != nil {
		u.log.Warn("schedule artifact failed", zap.String("contract_id", dto.ContractID), zap.Error(err))
		return "", false
	}
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		return r.Contracts.SetScheduleRef(ctx, dto.ContractID, ref)
	})
	if err != nil {
		u.log.Warn("schedule ref not stored", zap.String("contract_id", dto.ContractID), zap.Error(err))
		return "", false
	}
	return ref, true
}

func scheduleLines(rows []loan.ScheduleRow) []artifact.ScheduleLine {
	out := make([]artifact.ScheduleLine, len(rows))
	for i, r := range rows {
		out[i] = artifact.ScheduleLine{
			Seq:       r.Seq,
			DueDate:   r.DueDate,
			Amount:    r.Amount,
			Principal: r.Principal,
			Interest:  r.Interest,
			State:     string(loan.InstallmentPending),
		}
	}
	return out
}
