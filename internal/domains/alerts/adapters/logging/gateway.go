package logging

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Apurer/roopet-api/internal/domains/alerts/domain"
	"github.com/Apurer/roopet-api/internal/domains/alerts/ports"
)

var _ ports.Gateway = (*Gateway)(nil)

// Gateway writes notifications to a structured log. Notifications that do not
// require interaction are dismissed after a delay, which is logged too.
type Gateway struct {
	logger  *slog.Logger
	dismiss time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// Option customises the gateway.
type Option func(*Gateway)

// WithDismissAfter overrides domain.DefaultDismiss.
func WithDismissAfter(d time.Duration) Option {
	return func(g *Gateway) {
		if d > 0 {
			g.dismiss = d
		}
	}
}

func NewGateway(logger *slog.Logger, opts ...Option) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	g := &Gateway{logger: logger, dismiss: domain.DefaultDismiss, timers: make(map[string]*time.Timer)}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// RequestPermission always grants; a log has no consent prompt.
func (g *Gateway) RequestPermission(context.Context) (ports.Permission, error) {
	return ports.PermissionGranted, nil
}

func (g *Gateway) Show(ctx context.Context, n domain.Notification) (ports.Delivery, error) {
	g.logger.LogAttrs(ctx, slog.LevelInfo, "notification",
		slog.String("pet.code", n.PetCode),
		slog.String("title", n.Title),
		slog.String("body", n.Body),
		slog.String("tag", n.Tag),
		slog.Bool("require_interaction", n.RequireInteraction),
	)
	if !n.RequireInteraction {
		g.scheduleDismiss(n)
	}
	return ports.Delivered, nil
}

// A newer notification with the same tag replaces the pending one.
func (g *Gateway) scheduleDismiss(n domain.Notification) {
	key := n.PetCode + "/" + n.Tag
	g.mu.Lock()
	defer g.mu.Unlock()
	if t, ok := g.timers[key]; ok {
		t.Stop()
	}
	g.timers[key] = time.AfterFunc(g.dismiss, func() {
		g.mu.Lock()
		delete(g.timers, key)
		g.mu.Unlock()
		g.logger.LogAttrs(context.Background(), slog.LevelDebug, "notification dismissed",
			slog.String("pet.code", n.PetCode),
			slog.String("tag", n.Tag),
		)
	})
}

// Close cancels pending dismissals.
func (g *Gateway) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for key, t := range g.timers {
		t.Stop()
		delete(g.timers, key)
	}
}
