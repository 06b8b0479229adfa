package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pawn-lending-backend/internal/domain/access"
	"pawn-lending-backend/internal/domain/apperr"
	"pawn-lending-backend/internal/domain/artifact"
	"pawn-lending-backend/internal/domain/audit"
	"pawn-lending-backend/internal/domain/loan"
	"pawn-lending-backend/internal/domain/notify"
	domain "pawn-lending-backend/internal/domain/payment"
	"pawn-lending-backend/internal/domain/uow"
	"pawn-lending-backend/pkg/id"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Usecase struct {
	uow       uow.UnitOfWork
	notifier  *notify.Dispatcher
	publisher *artifact.Publisher
	log       *zap.Logger
	now       func() time.Time
}

func NewUsecase(tx uow.UnitOfWork, notifier *notify.Dispatcher, publisher *artifact.Publisher, log *zap.Logger) *Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &Usecase{uow: tx, notifier: notifier, publisher: publisher, log: log, now: time.Now}
}

func (u *Usecase) WithClock(now func() time.Time) *Usecase {
	u.now = now
	return u
}

// Submit records a payment awaiting validation. The balance is not touched
// until a collections agent validates it.
func (u *Usecase) Submit(ctx context.Context, caller access.Identity, loanID string, in SubmitInput) (*PaymentDTO, error) {
	if caller.UserID == "" {
		return nil, access.ErrForbidden
	}
	method := domain.Method(strings.ToLower(strings.TrimSpace(in.Method)))
	if !method.Valid() {
		return nil, apperr.Validation("method must be cash, transfer, deposit or card")
	}
	if !in.Amount.IsPositive() {
		return nil, domain.ErrAmountNotPositive
	}
	if !in.Amount.Equal(loan.Round2(in.Amount)) {
		return nil, domain.ErrAmountPrecision
	}
	amount := in.Amount

	var (
		dto   *PaymentDTO
		l     *loan.Loan
		email string
		now   = u.now().UTC()
	)
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, locked *loan.Loan) error {
		l = locked
		if !caller.Owns(l.BorrowerID) {
			return loan.ErrNotFound
		}
		if !l.State.AcceptsPayments() {
			return loan.ErrNotPayable
		}
		if amount.GreaterThan(l.Balance) {
			return domain.ErrAmountExceedsBalance
		}
		pending, err := r.Payments.HasPending(ctx, l.ID)
		if err != nil {
			return fmt.Errorf("check pending payment: %w", err)
		}
		if pending {
			return domain.ErrPendingExists
		}
		if email, err = contactEmail(ctx, r, l); err != nil {
			return err
		}

		paidOn := in.PaidOn
		if paidOn.IsZero() {
			paidOn = now
		}
		guard := l.ID
		p := &domain.Payment{
			PaymentID:    id.NewID32(),
			LoanRef:      l.ID,
			SubmittedBy:  caller.UserID,
			Amount:       amount,
			PaidOn:       loan.Today(paidOn),
			Method:       method,
			BankRef:      strings.TrimSpace(in.BankRef),
			State:        domain.StatePending,
			PendingGuard: &guard,
		}
		if ref := strings.TrimSpace(in.ReceiptRef); ref != "" {
			p.ReceiptRef = &ref
		}
		if err := r.Payments.Create(ctx, p); err != nil {
			return err
		}

		e, err := audit.NewEntry(audit.EntityPayment, p.PaymentID, caller.UserID, audit.PaymentSubmitted{
			LoanID: l.LoanID,
			Amount: amount,
			Method: string(method),
		}, now)
		if err != nil {
			return err
		}
		if err := r.Audit.Append(ctx, e); err != nil {
			return fmt.Errorf("append audit: %w", err)
		}
		out := toDTO(p, l.LoanID)
		dto = &out
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.log.Info("payment submitted",
		zap.String("payment_id", dto.PaymentID),
		zap.String("loan_id", l.LoanID),
		zap.String("amount", amount.StringFixed(2)))

	ev := notify.NewEvent(notify.EventPaymentReceived, l.BorrowerID, dto.PaymentID, now, map[string]string{
		"loan_number": l.Number,
		"amount":      amount.StringFixed(2),
	})
	ev.Email = email
	u.notifier.Dispatch(ctx, ev)
	return dto, nil
}

// Validate resolves a pending payment. A validated payment reduces the
// balance, settles whole installments in sequence order and closes the loan
// when nothing is owed.
func (u *Usecase) Validate(ctx context.Context, caller access.Identity, paymentID string, in ValidateInput) (*ValidationDTO, error) {
	if err := caller.Require(access.CanValidatePayment); err != nil {
		return nil, err
	}
	decision := domain.Decision(strings.ToLower(strings.TrimSpace(in.Decision)))
	switch decision {
	case domain.DecisionValidate:
	case domain.DecisionReject:
		if strings.TrimSpace(in.Observations) == "" {
			return nil, domain.ErrObservationsRequired
		}
	default:
		return nil, apperr.Validation("decision must be validate or reject")
	}

	var (
		dto   *ValidationDTO
		l     *loan.Loan
		email string
		now   = u.now().UTC()
	)
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		p, err := r.Payments.GetByPaymentID(ctx, paymentID)
		if err != nil {
			return err
		}
		// loan first, then payment, the same order submission uses
		if l, err = r.Loans.GetByIDForUpdate(ctx, p.LoanRef); err != nil {
			return err
		}
		if p, err = r.Payments.GetByPaymentIDForUpdate(ctx, paymentID); err != nil {
			return err
		}
		if p.State != domain.StatePending {
			return domain.ErrNotPending
		}
		if email, err = contactEmail(ctx, r, l); err != nil {
			return err
		}

		before := l.Balance
		paid := 0
		if decision == domain.DecisionValidate {
			if paid, err = applyPayment(ctx, r, l, p.Amount, now); err != nil {
				return err
			}
			p.Resolve(domain.StateValidated, caller.UserID, now, in.Observations)
		} else {
			p.Resolve(domain.StateRejected, caller.UserID, now, in.Observations)
		}
		if err := r.Payments.Save(ctx, p); err != nil {
			return fmt.Errorf("save payment: %w", err)
		}

		e, err := audit.NewEntry(audit.EntityPayment, p.PaymentID, caller.UserID, audit.PaymentValidation{
			LoanID:           l.LoanID,
			Decision:         string(decision),
			Amount:           p.Amount,
			BalanceBefore:    before,
			BalanceAfter:     l.Balance,
			InstallmentsPaid: paid,
			Observations:     in.Observations,
		}, now)
		if err != nil {
			return err
		}
		if err := r.Audit.Append(ctx, e); err != nil {
			return fmt.Errorf("append audit: %w", err)
		}

		dto = &ValidationDTO{
			PaymentDTO:       toDTO(p, l.LoanID),
			LoanState:        string(l.State),
			Balance:          l.Balance,
			InstallmentsPaid: paid,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.log.Info("payment resolved",
		zap.String("payment_id", dto.PaymentID),
		zap.String("decision", string(decision)),
		zap.String("loan_id", l.LoanID),
		zap.String("balance", l.Balance.StringFixed(2)),
		zap.String("validator_id", caller.UserID))

	name := notify.EventPaymentValidated
	if decision == domain.DecisionReject {
		name = notify.EventPaymentRejected
	}
	ev := notify.NewEvent(name, l.BorrowerID, dto.PaymentID, now, map[string]string{
		"loan_number": l.Number,
		"amount":      dto.Amount.StringFixed(2),
		"balance":     l.Balance.StringFixed(2),
	})
	ev.Email = email
	u.notifier.Dispatch(ctx, ev)

	if decision == domain.DecisionValidate {
		if ref, ok := u.publishReceipt(ctx, dto, l, caller.UserID, now); ok {
			dto.GeneratedReceiptRef = &ref
		}
	}
	return dto, nil
}

// contactEmail is the address the borrower left when accepting the offer.
func contactEmail(ctx context.Context, r uow.Repos, l *loan.Loan) (string, error) {
	app, err := r.Applications.GetByID(ctx, l.ApplicationID)
	if err != nil {
		return "", fmt.Errorf("load application: %w", err)
	}
	return app.ContactEmail, nil
}

// applyPayment lowers the balance, never below zero, and marks installments
// paid while the accumulated credit covers them.
func applyPayment(ctx context.Context, r uow.Repos, l *loan.Loan, amount decimal.Decimal, at time.Time) (int, error) {
	l.Balance = decimal.Max(decimal.Zero, l.Balance.Sub(amount))
	credit := l.UnappliedCredit.Add(amount)

	pending, err := r.Installments.ListPendingByLoan(ctx, l.ID)
	if err != nil {
		return 0, fmt.Errorf("list installments: %w", err)
	}
	var ids []uint64
	for _, inst := range pending {
		if l.Balance.IsZero() {
			ids = append(ids, inst.ID)
			continue
		}
		if credit.LessThan(inst.Amount) {
			break
		}
		credit = credit.Sub(inst.Amount)
		ids = append(ids, inst.ID)
	}
	if err := r.Installments.MarkPaid(ctx, ids, at); err != nil {
		return 0, fmt.Errorf("mark installments paid: %w", err)
	}

	if l.Balance.IsZero() {
		credit = decimal.Zero
		l.State = loan.StatePaid
		l.StateUpdatedAt = at
	}
	l.UnappliedCredit = credit
	if err := r.Loans.Save(ctx, l); err != nil {
		return 0, fmt.Errorf("save loan: %w", err)
	}
	return len(ids), nil
}

// List returns the loan's payments in submission order to the borrower or staff.
func (u *Usecase) List(ctx context.Context, caller access.Identity, loanID string) ([]PaymentDTO, error) {
	var out []PaymentDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.GetByLoanID(ctx, loanID)
		if err != nil {
			return err
		}
		if !caller.Owns(l.BorrowerID) && !caller.Staff() {
			return loan.ErrNotFound
		}
		rows, err := r.Payments.ListByLoan(ctx, l.ID)
		if err != nil {
			return fmt.Errorf("list payments: %w", err)
		}
		out = make([]PaymentDTO, len(rows))
		for i := range rows {
			out[i] = toDTO(&rows[i], l.LoanID)
		}
		return nil
	})
	return out, err
}

func (u *Usecase) publishReceipt(ctx context.Context, dto *ValidationDTO, l *loan.Loan, validator string, at time.Time) (string, bool) {
	ref, err := u.publisher.Receipt(ctx, artifact.Receipt{
		PaymentID:    dto.PaymentID,
		LoanNumber:   l.Number,
		BorrowerID:   l.BorrowerID,
		Amount:       dto.Amount,
		BalanceAfter: l.Balance,
		Method:       dto.Method,
		BankRef:      dto.BankRef,
		PaidOn:       dto.PaidOn,
		ValidatedAt:  at,
		ValidatorID:  validator,
	})
	if errors.Is(err, artifact.ErrDisabled) {
		return "", false
	}
	if err != nil {
		u.log.Warn("receipt artifact failed", zap.String("payment_id", dto.PaymentID), zap.Error(err))
		return "", false
	}
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		return r.Payments.SetGeneratedReceipt(ctx, dto.PaymentID, ref)
	})
	if err != nil {
		u.log.Warn("receipt ref not stored", zap.String("payment_id", dto.PaymentID), zap.Error(err))
		return "", false
	}
	return ref, true
}
