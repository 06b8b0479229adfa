package audit

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntry_DecodeReturnsTypedVariant(t *testing.T) {
	at := time.Date(2026, 10, 1, 9, 0, 0, 0, time.FixedZone("WIB", 7*3600))
	in := Renewal{
		PriorTerm:    3,
		NewTerm:      6,
		PriorBalance: decimal.RequireFromString("3000"),
		NewInterest:  decimal.RequireFromString("900"),
		NewTotal:     decimal.RequireFromString("3900"),
		Reason:       "hardship",
	}
	e, err := NewEntry(EntityLoan, "0123456789abcdef0123456789abcdef", "fedcba9876543210fedcba9876543210", in, at)
	require.NoError(t, err)
	assert.Equal(t, KindRenewal, e.Kind)
	assert.Len(t, e.EntryID, 36)
	assert.Equal(t, time.UTC, e.CreatedAt.Location())

	p, err := e.Decode()
	require.NoError(t, err)
	got, ok := p.(*Renewal)
	require.True(t, ok, "got %T", p)
	assert.True(t, got.NewTotal.Equal(in.NewTotal))
	assert.Equal(t, 6, got.NewTerm)
	assert.Equal(t, "hardship", got.Reason)
}

func TestEntry_DecodeUnknownKind(t *testing.T) {
	e := &Entry{Kind: "teleport", Payload: "{}"}
	_, err := e.Decode()
	assert.Error(t, err)
}

func TestEntry_DecodeCorruptPayload(t *testing.T) {
	e := &Entry{Kind: KindSigning, Payload: "{not json"}
	_, err := e.Decode()
	assert.Error(t, err)
}

func TestEntityType_Valid(t *testing.T) {
	assert.True(t, EntityPayment.Valid())
	assert.False(t, EntityType("borrower").Valid())
}
