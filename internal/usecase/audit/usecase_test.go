package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"pawn-lending-backend/internal/domain/access"
	"pawn-lending-backend/internal/domain/apperr"
	domain "pawn-lending-backend/internal/domain/audit"
	"pawn-lending-backend/internal/domain/uow"
	"pawn-lending-backend/internal/testutil/auditmock"
	"pawn-lending-backend/internal/testutil/uowmock"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var agent = access.Identity{UserID: "c1", Role: access.RoleCollectionsAgent}

func entry(t *testing.T, p domain.Payload) domain.Entry {
	t.Helper()
	e, err := domain.NewEntry(domain.EntityLoan, "L1", "u1", p, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return *e
}

func TestList_DecodesPayloads(t *testing.T) {
	entries := []domain.Entry{
		entry(t, domain.Renewal{PriorTerm: 3, NewTerm: 6, NewTotal: decimal.NewFromInt(7000)}),
	}
	uc := NewUsecase(uowmock.Over(uow.Repos{Audit: &auditmock.Repo{
		ListByEntityFn: func(_ context.Context, et domain.EntityType, id string) ([]domain.Entry, error) {
			assert.Equal(t, domain.EntityLoan, et)
			assert.Equal(t, "L1", id)
			return entries, nil
		},
	}}))

	out, err := uc.List(context.Background(), agent, "loan", "L1")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, string(domain.KindRenewal), out[0].Kind)
	rn, ok := out[0].Payload.(*domain.Renewal)
	require.True(t, ok, "payload %T", out[0].Payload)
	assert.Equal(t, 6, rn.NewTerm)
}

func TestList_Rejections(t *testing.T) {
	uc := NewUsecase(uowmock.Over(uow.Repos{Audit: &auditmock.Repo{}}))

	_, err := uc.List(context.Background(), access.Identity{UserID: "a1", Role: access.RoleApplicant}, "loan", "L1")
	assert.True(t, apperr.HasCode(err, apperr.CodeForbidden))

	_, err = uc.List(context.Background(), agent, "borrower", "L1")
	assert.ErrorIs(t, err, ErrUnknownEntity)
}

func TestList_RepositoryError(t *testing.T) {
	boom := errors.New("boom")
	uc := NewUsecase(uowmock.Over(uow.Repos{Audit: &auditmock.Repo{
		ListByEntityFn: func(context.Context, domain.EntityType, string) ([]domain.Entry, error) { return nil, boom },
	}}))
	_, err := uc.List(context.Background(), agent, "payment", "P1")
	assert.ErrorIs(t, err, boom)
}
