package memory

import (
	"context"
	"sync"

	"github.com/Apurer/roopet-api/internal/domains/alerts/domain"
	"github.com/Apurer/roopet-api/internal/domains/alerts/ports"
)

var _ ports.Gateway = (*Gateway)(nil)

// Gateway records shown notifications.
type Gateway struct {
	mu         sync.Mutex
	permission ports.Permission
	shown      []domain.Notification
}

// NewGateway returns a gateway that will grant permission when asked.
func NewGateway() *Gateway {
	return &Gateway{permission: ports.PermissionGranted}
}

// Deny makes later permission requests and shows fail closed.
func (g *Gateway) Deny() {
	g.mu.Lock()
	g.permission = ports.PermissionDenied
	g.mu.Unlock()
}

func (g *Gateway) RequestPermission(context.Context) (ports.Permission, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.permission, nil
}

func (g *Gateway) Show(_ context.Context, n domain.Notification) (ports.Delivery, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.permission != ports.PermissionGranted {
		return ports.Suppressed, nil
	}
	g.shown = append(g.shown, n)
	return ports.Delivered, nil
}

// Shown returns a copy of the delivered notifications.
func (g *Gateway) Shown() []domain.Notification {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]domain.Notification(nil), g.shown...)
}
