package mail

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"pawn-lending-backend/internal/domain/notify"

	"gopkg.in/gomail.v2"
)

type Config struct {
	Host   string
	Port   int
	User   string
	Pass   string
	Sender string
}

type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Notifier emails events to their recipient. Events without an address go
// to the fallback notifier.
type Notifier struct {
	dialer   sender
	from     string
	fallback notify.Notifier
}

func NewNotifier(cfg Config, fallback notify.Notifier) *Notifier {
	return &Notifier{
		dialer:   gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Pass),
		from:     cfg.Sender,
		fallback: fallback,
	}
}

var subjects = map[string]string{
	notify.EventApplicationEvaluated: "Your loan application has been evaluated",
	notify.EventContractReady:        "Your contract is ready to sign",
	notify.EventPaymentReceived:      "We received your payment",
	notify.EventPaymentValidated:     "Your payment was validated",
	notify.EventPaymentRejected:      "Your payment was rejected",
}

func (n *Notifier) Notify(ctx context.Context, ev notify.Event) error {
	if ev.Email == "" {
		if n.fallback != nil {
			return n.fallback.Notify(ctx, ev)
		}
		return nil
	}
	if err := n.dialer.DialAndSend(n.message(ev)); err != nil {
		return fmt.Errorf("send %s to %s: %w", ev.Name, ev.Email, err)
	}
	return nil
}

func (n *Notifier) message(ev notify.Event) *gomail.Message {
	subject, ok := subjects[ev.Name]
	if !ok {
		subject = ev.Name
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Reference: %s\n", ev.EntityID)
	keys := make([]string, 0, len(ev.Data))
	for k := range ev.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %s\n", k, ev.Data[k])
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", ev.Email)
	m.SetHeader("Subject", subject)
	m.SetHeader("X-Event-Id", ev.ID)
	m.SetBody("text/plain", b.String())
	return m
}
