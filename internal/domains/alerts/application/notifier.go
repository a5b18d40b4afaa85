package application

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/Apurer/roopet-api/internal/domains/alerts/domain"
	"github.com/Apurer/roopet-api/internal/domains/alerts/ports"
	petsdomain "github.com/Apurer/roopet-api/internal/domains/pets/domain"
	petsports "github.com/Apurer/roopet-api/internal/domains/pets/ports"
)

const (
	// DefaultDeliveryTimeout bounds one batch of notifications, retries included.
	DefaultDeliveryTimeout = 30 * time.Second
	// DefaultMaxInFlight caps concurrent delivery batches; extra batches are dropped.
	DefaultMaxInFlight = 32
)

var _ petsports.EventPublisher = (*Notifier)(nil)

// Notifier turns pet events into owner notifications. Delivery runs in the
// background so the mutation that raised the events never waits on the gateway.
type Notifier struct {
	gateway ports.Gateway
	timeout time.Duration
	logger  *slog.Logger
	slots   chan struct{}
	wg      sync.WaitGroup
}

// NotifierOption customises a Notifier.
type NotifierOption func(*Notifier)

func WithDeliveryTimeout(d time.Duration) NotifierOption {
	return func(n *Notifier) {
		if d > 0 {
			n.timeout = d
		}
	}
}

func WithMaxInFlight(max int) NotifierOption {
	return func(n *Notifier) {
		if max > 0 {
			n.slots = make(chan struct{}, max)
		}
	}
}

func WithNotifierLogger(logger *slog.Logger) NotifierOption {
	return func(n *Notifier) {
		if logger != nil {
			n.logger = logger
		}
	}
}

func NewNotifier(gateway ports.Gateway, opts ...NotifierOption) *Notifier {
	n := &Notifier{
		gateway: gateway,
		timeout: DefaultDeliveryTimeout,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		slots:   make(chan struct{}, DefaultMaxInFlight),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(n)
		}
	}
	return n
}

// Publish queues a confirmation for actions and purchases and returns at once.
// Other events are ignored. The delivery context outlives the caller's request.
func (n *Notifier) Publish(ctx context.Context, events ...petsdomain.Event) error {
	if n == nil || n.gateway == nil {
		return nil
	}
	notes := notificationsFor(events)
	if len(notes) == 0 {
		return nil
	}
	select {
	case n.slots <- struct{}{}:
	default:
		n.logger.LogAttrs(ctx, slog.LevelWarn, "notification dropped, delivery queue full",
			slog.String("pet.code", notes[0].PetCode),
			slog.Int("count", len(notes)),
		)
		return nil
	}
	deliveryCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.timeout)
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		defer func() { <-n.slots }()
		defer cancel()
		n.deliver(deliveryCtx, notes)
	}()
	return nil
}

// Wait blocks until every queued delivery has finished.
func (n *Notifier) Wait() {
	n.wg.Wait()
}

func (n *Notifier) deliver(ctx context.Context, notes []domain.Notification) {
	for _, note := range notes {
		if _, err := n.gateway.Show(ctx, note); err != nil {
			n.logger.LogAttrs(ctx, slog.LevelError, "failed to deliver notification",
				slog.String("pet.code", note.PetCode),
				slog.String("tag", note.Tag),
				slog.String("error", err.Error()),
			)
		}
	}
}

func notificationsFor(events []petsdomain.Event) []domain.Notification {
	var notes []domain.Notification
	for _, event := range events {
		switch e := event.(type) {
		case petsdomain.ActionApplied:
			notes = append(notes, domain.ActionNotification(e.Code, e.Name, e.Action, e.CoinsEarned))
		case petsdomain.AccessoryPurchased:
			notes = append(notes, domain.PurchaseNotification(e.Code, e.Accessory.Name))
		}
	}
	return notes
}
