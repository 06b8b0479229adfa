package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	EventApplicationEvaluated = "application.evaluated"
	EventContractReady        = "contract.ready"
	EventPaymentReceived      = "payment.received"
	EventPaymentValidated     = "payment.validated"
	EventPaymentRejected      = "payment.rejected"
)

type Event struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	RecipientID string            `json:"recipient_id"`
	Email       string            `json:"email,omitempty"`
	EntityID    string            `json:"entity_id"`
	Data        map[string]string `json:"data,omitempty"`
	At          time.Time         `json:"at"`
}

func NewEvent(name, recipientID, entityID string, at time.Time, data map[string]string) Event {
	return Event{
		ID:          uuid.NewString(),
		Name:        name,
		RecipientID: recipientID,
		EntityID:    entityID,
		Data:        data,
		At:          at.UTC(),
	}
}

type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

// LogNotifier only writes events to the log.
type LogNotifier struct{ Log *zap.Logger }

func (n LogNotifier) Notify(_ context.Context, ev Event) error {
	n.Log.Info("notification",
		zap.String("event_id", ev.ID),
		zap.String("event", ev.Name),
		zap.String("recipient_id", ev.RecipientID),
		zap.String("entity_id", ev.EntityID),
	)
	return nil
}

// Dispatcher delivers events after commit. Delivery failures are logged and
// never reach the caller.
type Dispatcher struct {
	notifier Notifier
	log      *zap.Logger
}

func NewDispatcher(n Notifier, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	if n == nil {
		n = LogNotifier{Log: log}
	}
	return &Dispatcher{notifier: n, log: log}
}

func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) {
	if d == nil {
		return
	}
	if err := d.notifier.Notify(ctx, ev); err != nil {
		d.log.Warn("notification delivery failed",
			zap.String("event", ev.Name),
			zap.String("entity_id", ev.EntityID),
			zap.Error(err),
		)
	}
}
