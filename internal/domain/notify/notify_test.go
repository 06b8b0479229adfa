package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type failingNotifier struct{ calls int }

func (f *failingNotifier) Notify(context.Context, Event) error {
	f.calls++
	return errors.New("smtp down")
}

func TestDispatcher_LogsFailuresAsWarnings(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	n := &failingNotifier{}
	d := NewDispatcher(n, zap.New(core))

	d.Dispatch(context.Background(), NewEvent(EventPaymentReceived, "u1", "p1", time.Now(), nil))

	assert.Equal(t, 1, n.calls)
	entries := logs.FilterMessage("notification delivery failed").All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, EventPaymentReceived, entries[0].ContextMap()["event"])
	}
}

func TestDispatcher_NilIsNoop(t *testing.T) {
	var d *Dispatcher
	d.Dispatch(context.Background(), Event{})
}

func TestNewEvent(t *testing.T) {
	ev := NewEvent(EventContractReady, "u1", "c1", time.Date(2026, 1, 1, 12, 0, 0, 0, time.FixedZone("X", 3600)), map[string]string{"number": "CTR-2026-01-000001"})
	assert.Len(t, ev.ID, 36)
	assert.Equal(t, time.UTC, ev.At.Location())
	assert.Equal(t, "CTR-2026-01-000001", ev.Data["number"])
}
