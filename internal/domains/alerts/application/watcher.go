package application

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/Apurer/roopet-api/internal/domains/alerts/ports"
)

// DefaultPollInterval matches how often an open pet screen re-fetches the pet.
const DefaultPollInterval = 5 * time.Second

// Watcher polls a pet and feeds every fresh view into a Tracker.
type Watcher struct {
	reader   ports.PetReader
	gateway  ports.Gateway
	tracker  *Tracker
	code     string
	interval time.Duration
	now      func() time.Time
	logger   *slog.Logger
	fired    metric.Int64Counter
	polls    metric.Int64Counter
}

// WatcherOption customises a Watcher.
type WatcherOption func(*Watcher)

func WithPollInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

func WithWatcherClock(now func() time.Time) WatcherOption {
	return func(w *Watcher) {
		if now != nil {
			w.now = now
		}
	}
}

func WithLogger(logger *slog.Logger) WatcherOption {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithMeter registers the alerts.fired and alerts.polls counters.
func WithMeter(m metric.Meter) WatcherOption {
	return func(w *Watcher) {
		if m == nil {
			return
		}
		w.fired, _ = m.Int64Counter("alerts.fired", metric.WithDescription("Low-stat alerts shown"))
		w.polls, _ = m.Int64Counter("alerts.polls", metric.WithDescription("Pet fetches by outcome"))
	}
}

// NewWatcher builds a watcher for the pet identified by code.
func NewWatcher(reader ports.PetReader, gateway ports.Gateway, code string, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		reader:   reader,
		gateway:  gateway,
		tracker:  NewTracker(gateway),
		code:     code,
		interval: DefaultPollInterval,
		now:      time.Now,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	return w
}

// Run polls until ctx is cancelled. Fetch and delivery failures are logged and polling continues.
func (w *Watcher) Run(ctx context.Context) error {
	if w.reader == nil {
		return errors.New("watcher has no pet reader")
	}
	if w.gateway != nil {
		permission, err := w.gateway.RequestPermission(ctx)
		if err != nil {
			w.logger.LogAttrs(ctx, slog.LevelWarn, "notification permission request failed", slog.String("error", err.Error()))
		} else {
			w.logger.LogAttrs(ctx, slog.LevelInfo, "notification permission", slog.String("permission", string(permission)))
		}
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	w.Poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.Poll(ctx)
		}
	}
}

// Poll performs one fetch and evaluation.
func (w *Watcher) Poll(ctx context.Context) {
	view, err := w.reader.GetPet(ctx, w.code)
	if err != nil {
		if ctx.Err() == nil {
			w.count(ctx, w.polls, attribute.Bool("poll.success", false))
			w.logger.LogAttrs(ctx, slog.LevelError, "failed to fetch pet",
				slog.String("pet.code", w.code),
				slog.String("error", err.Error()),
			)
		}
		return
	}
	w.count(ctx, w.polls, attribute.Bool("poll.success", true))
	if view == nil || view.Pet == nil {
		return
	}
	fired, err := w.tracker.Evaluate(ctx, view.Pet, w.now())
	if fired {
		w.count(ctx, w.fired)
		w.logger.LogAttrs(ctx, slog.LevelInfo, "low stats alert",
			slog.String("pet.code", w.code),
			slog.Int("hunger", view.Pet.Stats.Hunger),
			slog.Int("happiness", view.Pet.Stats.Happiness),
			slog.Int("cleanliness", view.Pet.Stats.Cleanliness),
		)
	}
	if err != nil {
		w.logger.LogAttrs(ctx, slog.LevelError, "failed to show alert", slog.String("pet.code", w.code), slog.String("error", err.Error()))
	}
}

func (w *Watcher) count(ctx context.Context, counter metric.Int64Counter, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, 1, metric.WithAttributes(attrs...))
}
