package mysql

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	appDomain "pawn-lending-backend/internal/domain/application"
	"pawn-lending-backend/internal/domain/audit"
	contractDomain "pawn-lending-backend/internal/domain/contract"
	loanDomain "pawn-lending-backend/internal/domain/loan"
	paymentDomain "pawn-lending-backend/internal/domain/payment"
	"pawn-lending-backend/internal/domain/sequence"
	"pawn-lending-backend/internal/domain/uow"
	"pawn-lending-backend/pkg/id"
)

func TestLoan_CreateAndGetByLoanID(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	l := seedLoan(t, db, loanDomain.StatePendingSignature)
	if l.ID == 0 {
		t.Fatalf("Create did not set auto-increment ID")
	}

	got, err := NewLoanRepository(db).GetByLoanID(ctx, l.LoanID)
	if err != nil {
		t.Fatalf("GetByLoanID: %v", err)
	}
	if got.BorrowerID != l.BorrowerID || !got.Balance.Equal(dec("5750")) {
		t.Errorf("unexpected loan: %+v", got)
	}
}

func TestNotFoundIsTranslated(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	missing := id.NewID32()

	if _, err := NewLoanRepository(db).GetByLoanIDForUpdate(ctx, missing); !errors.Is(err, loanDomain.ErrNotFound) {
		t.Fatalf("loan: got %v", err)
	}
	if _, err := NewApplicationRepository(db).GetByApplicationID(ctx, missing); !errors.Is(err, appDomain.ErrNotFound) {
		t.Fatalf("application: got %v", err)
	}
	if _, err := NewContractRepository(db).GetByContractID(ctx, missing); !errors.Is(err, contractDomain.ErrNotFound) {
		t.Fatalf("contract: got %v", err)
	}
	if _, err := NewPaymentRepository(db).GetByPaymentID(ctx, missing); !errors.Is(err, paymentDomain.ErrNotFound) {
		t.Fatalf("payment: got %v", err)
	}
	if _, err := NewApplicationRepository(db).GetCategoryLimit(ctx, "spaceship"); !errors.Is(err, appDomain.ErrUnknownCategory) {
		t.Fatalf("category: got %v", err)
	}
	ap, err := NewApplicationRepository(db).GetAppraisal(ctx, 42)
	if err != nil || ap != nil {
		t.Fatalf("appraisal: got %v, %v", ap, err)
	}
}

func TestMigrate_SeedsCategoriesOnce(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	// operator tuned the limit; a second migrate must not reset it
	if err := db.Model(&appDomain.CategoryLimit{}).Where("category = ?", "jewelry").Update("max_pct", dec("70")).Error; err != nil {
		t.Fatal(err)
	}
	if err := Migrate(ctx, db, []appDomain.CategoryLimit{{Category: "jewelry", MinPct: dec("20"), MaxPct: dec("80")}}); err != nil {
		t.Fatalf("re-migrate: %v", err)
	}
	got, err := NewApplicationRepository(db).GetCategoryLimit(ctx, "jewelry")
	if err != nil {
		t.Fatalf("GetCategoryLimit: %v", err)
	}
	if !got.MaxPct.Equal(dec("70")) {
		t.Fatalf("max pct overwritten: %s", got.MaxPct)
	}
}

func TestSequence_NextIsMonotonicPerPeriod(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	seq := NewSequenceRepository(db)

	for want := int64(1); want <= 3; want++ {
		got, err := seq.Next(ctx, sequence.NameContract, "2026-10")
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if got != want {
			t.Fatalf("got %d want %d", got, want)
		}
	}
	got, err := seq.Next(ctx, sequence.NameContract, "2026-11")
	if err != nil || got != 1 {
		t.Fatalf("new period should restart at 1: %d %v", got, err)
	}
	got, err = seq.Next(ctx, sequence.NameLoan, "2026")
	if err != nil || got != 1 {
		t.Fatalf("names are independent: %d %v", got, err)
	}
}

func TestSequence_ConcurrentAllocationsAreUnique(t *testing.T) {
	db := openTestDB(t)
	u := NewGormUoW(db)
	ctx := context.Background()

	const workers = 8
	var (
		mu   sync.Mutex
		seen = map[int64]bool{}
		wg   sync.WaitGroup
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = u.WithinTx(ctx, func(r uow.Repos) error {
				n, err := r.Sequences.Next(ctx, sequence.NameLoan, "2026")
				if err != nil {
					return err
				}
				mu.Lock()
				seen[n] = true
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()
	if len(seen) != workers {
		t.Fatalf("expected %d distinct numbers, got %v", workers, seen)
	}
	for n := int64(1); n <= workers; n++ {
		if !seen[n] {
			t.Fatalf("gap at %d: %v", n, seen)
		}
	}
}

func TestPayment_PendingGuardAllowsOnePendingPerLoan(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewPaymentRepository(db)
	l := seedLoan(t, db, loanDomain.StateActive)

	newPending := func() *paymentDomain.Payment {
		guard := l.ID
		return &paymentDomain.Payment{
			PaymentID:    id.NewID32(),
			LoanRef:      l.ID,
			SubmittedBy:  l.BorrowerID,
			Amount:       dec("100"),
			PaidOn:       time.Now().UTC(),
			Method:       paymentDomain.MethodTransfer,
			State:        paymentDomain.StatePending,
			PendingGuard: &guard,
		}
	}

	first := newPending()
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if err := repo.Create(ctx, newPending()); !errors.Is(err, paymentDomain.ErrPendingExists) {
		t.Fatalf("expected ErrPendingExists, got %v", err)
	}
	pending, err := repo.HasPending(ctx, l.ID)
	if err != nil || !pending {
		t.Fatalf("HasPending: %v %v", pending, err)
	}

	first.Resolve(paymentDomain.StateRejected, id.NewID32(), time.Now().UTC(), "blurry receipt")
	if err := repo.Save(ctx, first); err != nil {
		t.Fatalf("save resolved: %v", err)
	}
	if err := repo.Create(ctx, newPending()); err != nil {
		t.Fatalf("create after resolve: %v", err)
	}

	list, err := repo.ListByLoan(ctx, l.ID)
	if err != nil || len(list) != 2 {
		t.Fatalf("ListByLoan: %d %v", len(list), err)
	}
	if list[0].PendingGuard != nil {
		t.Fatalf("resolved payment kept its guard")
	}
}

func TestInstallments_RenewalHelpers(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewInstallmentRepository(db)
	l := seedLoan(t, db, loanDomain.StateActive)

	if seq, err := repo.MaxPaidSeq(ctx, l.ID); err != nil || seq != 0 {
		t.Fatalf("MaxPaidSeq on empty: %d %v", seq, err)
	}

	rows := make([]loanDomain.Installment, 3)
	for i := range rows {
		rows[i] = loanDomain.Installment{
			LoanRef:   l.ID,
			Seq:       i + 1,
			DueDate:   loanDomain.AddMonths(l.StartDate, i+1),
			Amount:    dec("1916.67"),
			Principal: dec("1666.67"),
			Interest:  dec("250"),
			State:     loanDomain.InstallmentPending,
		}
	}
	if err := repo.CreateBatch(ctx, rows); err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}

	pending, err := repo.ListPendingByLoan(ctx, l.ID)
	if err != nil || len(pending) != 3 {
		t.Fatalf("ListPendingByLoan: %d %v", len(pending), err)
	}
	if err := repo.MarkPaid(ctx, []uint64{pending[0].ID}, time.Now().UTC()); err != nil {
		t.Fatalf("MarkPaid: %v", err)
	}
	if seq, err := repo.MaxPaidSeq(ctx, l.ID); err != nil || seq != 1 {
		t.Fatalf("MaxPaidSeq: %d %v", seq, err)
	}

	n, err := repo.DeletePendingByLoan(ctx, l.ID)
	if err != nil || n != 2 {
		t.Fatalf("DeletePendingByLoan: %d %v", n, err)
	}
	all, err := repo.ListByLoan(ctx, l.ID)
	if err != nil || len(all) != 1 || all[0].State != loanDomain.InstallmentPaid || all[0].PaidAt == nil {
		t.Fatalf("paid history not preserved: %+v %v", all, err)
	}
	if !all[0].Amount.Equal(dec("1916.67")) {
		t.Fatalf("amount round trip: %s", all[0].Amount)
	}
}

func TestApplication_CountOpenByApplicant(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewApplicationRepository(db)
	applicant := id.NewID32()

	mk := func(state appDomain.State) *appDomain.Application {
		a := &appDomain.Application{
			ApplicationID:   id.NewID32(),
			ApplicantID:     applicant,
			Amount:          dec("1000"),
			RequestedAmount: dec("1000"),
			TermMonths:      3,
			RequestedTerm:   3,
			Modality:        loanDomain.ModalityMonthly,
			Rate:            dec("5"),
			RequestedRate:   dec("5"),
			TotalPayable:    dec("1150"),
			State:           state,
			StateUpdatedAt:  time.Now().UTC(),
		}
		if err := repo.Create(ctx, a); err != nil {
			t.Fatalf("create: %v", err)
		}
		return a
	}
	mk(appDomain.StatePending)
	mk(appDomain.StateEvaluating)
	mk(appDomain.StateRejected)
	mk(appDomain.StateApproved)
	contracted := mk(appDomain.StateApproved)

	err := NewContractRepository(db).Create(ctx, &contractDomain.Contract{
		ContractID:     id.NewID32(),
		Number:         "CTR-2026-10-000001",
		ApplicationRef: contracted.ID,
		BorrowerID:     applicant,
		Content:        "x",
		SignatureState: contractDomain.SignaturePending,
	})
	if err != nil {
		t.Fatalf("contract: %v", err)
	}

	n, err := repo.CountOpenByApplicant(ctx, applicant)
	if err != nil {
		t.Fatalf("CountOpenByApplicant: %v", err)
	}
	if n != 3 {
		t.Fatalf("open = %d, want 3", n)
	}
}

func TestGormUoW_WithinTx_Rollback(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	sentinel := errors.New("boom")
	entityID := id.NewID32()

	err := NewGormUoW(db).WithinTx(ctx, func(r uow.Repos) error {
		e, err := audit.NewEntry(audit.EntityLoan, entityID, id.NewID32(), audit.Signing{ContractNumber: "CTR"}, time.Now())
		if err != nil {
			return err
		}
		if err := r.Audit.Append(ctx, e); err != nil {
			return err
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel, got %v", err)
	}
	got, err := NewAuditRepository(db).ListByEntity(ctx, audit.EntityLoan, entityID)
	if err != nil || len(got) != 0 {
		t.Fatalf("audit entry survived rollback: %v %v", got, err)
	}
}

func TestGormUoW_WithinLoanTx(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	l := seedLoan(t, db, loanDomain.StatePendingSignature)

	err := NewGormUoW(db).WithinLoanTx(ctx, l.LoanID, func(r uow.Repos, locked *loanDomain.Loan) error {
		locked.State = loanDomain.StateActive
		return r.Loans.Save(ctx, locked)
	})
	if err != nil {
		t.Fatalf("WithinLoanTx: %v", err)
	}
	got, _ := NewLoanRepository(db).GetByLoanID(ctx, l.LoanID)
	if got.State != loanDomain.StateActive {
		t.Fatalf("state = %s", got.State)
	}

	err = NewGormUoW(db).WithinLoanTx(ctx, id.NewID32(), func(uow.Repos, *loanDomain.Loan) error {
		t.Fatal("fn must not run for a missing loan")
		return nil
	})
	if !errors.Is(err, loanDomain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestApplication_SecondAppraisalIsConflict(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewApplicationRepository(db)
	const ref uint64 = 42

	mk := func() *appDomain.Appraisal {
		return &appDomain.Appraisal{
			ApplicationRef:    ref,
			CommercialValue:   dec("2000"),
			AppliedPercentage: dec("50"),
			LoanAmount:        dec("1000"),
			EvaluatorID:       id.NewID32(),
			AppraisedAt:       time.Now().UTC(),
		}
	}
	if err := repo.CreateAppraisal(ctx, mk()); err != nil {
		t.Fatalf("first appraisal: %v", err)
	}
	if err := repo.CreateAppraisal(ctx, mk()); !errors.Is(err, appDomain.ErrAlreadyAppraised) {
		t.Fatalf("expected ErrAlreadyAppraised, got %v", err)
	}
	got, err := repo.GetAppraisal(ctx, ref)
	if err != nil || !got.LoanAmount.Equal(dec("1000")) {
		t.Fatalf("GetAppraisal: %+v %v", got, err)
	}
}
