package renewal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pawn-lending-backend/internal/domain/access"
	"pawn-lending-backend/internal/domain/apperr"
	"pawn-lending-backend/internal/domain/audit"
	"pawn-lending-backend/internal/domain/loan"
	"pawn-lending-backend/internal/domain/uow"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Settings struct {
	MaxTermMonths int
	Remainder     loan.RemainderPolicy
}

type RenewInput struct {
	TermMonths int
	Reason     string
}

type RenewalDTO struct {
	LoanID       string           `json:"loan_id"`
	PriorTerm    int              `json:"prior_term"`
	NewTerm      int              `json:"new_term"`
	PriorBalance decimal.Decimal  `json:"prior_balance"`
	NewInterest  decimal.Decimal  `json:"new_interest"`
	NewTotal     decimal.Decimal  `json:"new_total"`
	Balance      decimal.Decimal  `json:"balance"`
	DueDate      time.Time        `json:"due_date"`
	Installments int              `json:"installments"`
	FirstSeq     int              `json:"first_seq"`
	Schedule     []InstallmentDTO `json:"schedule"`
}

// InstallmentDTO is one row of the regenerated schedule.
type InstallmentDTO struct {
	Seq       int             `json:"seq"`
	DueDate   time.Time       `json:"due_date"`
	Amount    decimal.Decimal `json:"amount"`
	Principal decimal.Decimal `json:"principal"`
	Interest  decimal.Decimal `json:"interest"`
	State     string          `json:"state"`
}

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
	if cfg.Remainder == "" {
		cfg.Remainder = loan.RemainderNone
	}
	return &Usecase{uow: tx, cfg: cfg, log: log, now: time.Now}
}

func (u *Usecase) WithClock(now func() time.Time) *Usecase {
	u.now = now
	return u
}

// Renew re-terms an active loan over its outstanding balance. Pending
// installments are replaced; paid ones stay as history and the new rows
// continue their numbering.
func (u *Usecase) Renew(ctx context.Context, caller access.Identity, loanID string, in RenewInput) (*RenewalDTO, error) {
	if caller.UserID == "" {
		return nil, access.ErrForbidden
	}
	if in.TermMonths < 1 || in.TermMonths > u.cfg.MaxTermMonths {
		return nil, apperr.Newf(apperr.CodeValidation, "term must be between 1 and %d months", u.cfg.MaxTermMonths)
	}
	reason := strings.TrimSpace(in.Reason)

	var (
		dto *RenewalDTO
		now = u.now().UTC()
	)
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		if !caller.Owns(l.BorrowerID) {
			return loan.ErrNotFound
		}
		if l.State != loan.StateActive {
			return loan.ErrNotActive
		}

		balance := l.Balance
		interest := loan.FlatInterest(balance, l.Rate, in.TermMonths)
		total := loan.Round2(balance.Add(interest))

		lastPaid, err := r.Installments.MaxPaidSeq(ctx, l.ID)
		if err != nil {
			return fmt.Errorf("last paid installment: %w", err)
		}
		start := loan.Today(now)
		rows, err := loan.BuildSchedule(loan.ScheduleInput{
			Principal: balance,
			Interest:  interest,
			Months:    in.TermMonths,
			Start:     start,
			FirstSeq:  lastPaid + 1,
			Policy:    u.cfg.Remainder,
		})
		if err != nil {
			return apperr.Wrap(apperr.CodeStateConflict, "loan cannot be renewed", err)
		}

		if _, err := r.Installments.DeletePendingByLoan(ctx, l.ID); err != nil {
			return fmt.Errorf("drop pending installments: %w", err)
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
			return fmt.Errorf("create installments: %w", err)
		}

		priorTerm := l.TermMonths
		l.TermMonths = in.TermMonths
		l.Balance = total
		l.TotalPayable = total
		l.UnappliedCredit = decimal.Zero
		l.DueDate = loan.AddMonths(start, in.TermMonths)
		if err := r.Loans.Save(ctx, l); err != nil {
			return fmt.Errorf("save loan: %w", err)
		}

		if err := r.Installments.CreateRenewal(ctx, &loan.Renewal{
			LoanRef:      l.ID,
			PriorTerm:    priorTerm,
			NewTerm:      in.TermMonths,
			PriorBalance: balance,
			NewInterest:  interest,
			NewTotal:     total,
			Reason:       reason,
			RequestedBy:  caller.UserID,
		}); err != nil {
			return fmt.Errorf("record renewal: %w", err)
		}

		e, err := audit.NewEntry(audit.EntityLoan, l.LoanID, caller.UserID, audit.Renewal{
			PriorTerm:    priorTerm,
			NewTerm:      in.TermMonths,
			PriorBalance: balance,
			NewInterest:  interest,
			NewTotal:     total,
			Reason:       reason,
		}, now)
		if err != nil {
			return err
		}
		if err := r.Audit.Append(ctx, e); err != nil {
			return fmt.Errorf("append audit: %w", err)
		}

		dto = &RenewalDTO{
			LoanID:       l.LoanID,
			PriorTerm:    priorTerm,
			NewTerm:      in.TermMonths,
			PriorBalance: balance,
			NewInterest:  interest,
			NewTotal:     total,
			Balance:      l.Balance,
			DueDate:      l.DueDate,
			Installments: len(inst),
			FirstSeq:     lastPaid + 1,
			Schedule:     make([]InstallmentDTO, len(inst)),
		}
		for i, row := range inst {
			dto.Schedule[i] = InstallmentDTO{
				Seq:       row.Seq,
				DueDate:   row.DueDate,
				Amount:    row.Amount,
				Principal: row.Principal,
				Interest:  row.Interest,
				State:     string(row.State),
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.log.Info("loan renewed",
		zap.String("loan_id", dto.LoanID),
		zap.Int("prior_term", dto.PriorTerm),
		zap.Int("new_term", dto.NewTerm),
		zap.String("new_total", dto.NewTotal.StringFixed(2)))
	return dto, nil
}
