package loan

import (
	"context"
	"fmt"

	"pawn-lending-backend/internal/domain/access"
	"pawn-lending-backend/internal/domain/loan"
	"pawn-lending-backend/internal/domain/uow"
)

type Usecase struct{ uow uow.UnitOfWork }

func NewUsecase(tx uow.UnitOfWork) *Usecase { return &Usecase{uow: tx} }

// Get returns the loan with its full installment schedule. Borrowers only
// see their own loans.
func (u *Usecase) Get(ctx context.Context, caller access.Identity, loanID string) (*LoanDTO, error) {
	var dto *LoanDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.GetByLoanID(ctx, loanID)
		if err != nil {
			return err
		}
		if !caller.Owns(l.BorrowerID) && !caller.Staff() {
			return loan.ErrNotFound
		}
		rows, err := r.Installments.ListByLoan(ctx, l.ID)
		if err != nil {
			return fmt.Errorf("list installments: %w", err)
		}
		dto = toDTO(l, rows)
		return nil
	})
	return dto, err
}

func toDTO(l *loan.Loan, rows []loan.Installment) *LoanDTO {
	dto := &LoanDTO{
		LoanID:         l.LoanID,
		Number:         l.Number,
		BorrowerID:     l.BorrowerID,
		Principal:      l.Principal,
		Rate:           l.Rate,
		TermMonths:     l.TermMonths,
		Modality:       string(l.Modality),
		TotalPayable:   l.TotalPayable,
		Balance:        l.Balance,
		StorageFee:     l.StorageFee,
		State:          string(l.State),
		StartDate:      l.StartDate,
		DueDate:        l.DueDate,
		StateUpdatedAt: l.StateUpdatedAt,
		CreatedAt:      l.CreatedAt,
		Schedule:       make([]InstallmentDTO, len(rows)),
	}
	for i, r := range rows {
		dto.Schedule[i] = InstallmentDTO{
			Seq:       r.Seq,
			DueDate:   r.DueDate,
			Amount:    r.Amount,
			Principal: r.Principal,
			Interest:  r.Interest,
			State:     string(r.State),
			PaidAt:    r.PaidAt,
		}
		if r.State == loan.InstallmentPaid {
			dto.PaidCount++
		} else if dto.NextDue == nil {
			next := dto.Schedule[i]
			dto.NextDue = &next
		}
	}
	return dto
}
