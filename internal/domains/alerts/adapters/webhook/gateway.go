package webhook

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/Apurer/roopet-api/internal/clients/http/push"
	"github.com/Apurer/roopet-api/internal/domains/alerts/domain"
	"github.com/Apurer/roopet-api/internal/domains/alerts/ports"
)

var _ ports.Gateway = (*Gateway)(nil)

// Sender delivers a push message; *push.Client implements it.
type Sender interface {
	Send(ctx context.Context, msg push.Message, opts ...push.SendOption) error
}

// Gateway forwards notifications to a push webhook.
type Gateway struct {
	sender Sender
	now    func() time.Time
}

func NewGateway(sender Sender) *Gateway {
	return &Gateway{sender: sender, now: time.Now}
}

// RequestPermission grants when a webhook is configured.
func (g *Gateway) RequestPermission(context.Context) (ports.Permission, error) {
	if g == nil || g.sender == nil {
		return ports.PermissionDenied, nil
	}
	return ports.PermissionGranted, nil
}

func (g *Gateway) Show(ctx context.Context, n domain.Notification) (ports.Delivery, error) {
	if g == nil || g.sender == nil {
		return ports.Suppressed, nil
	}
	sentAt := g.now().UTC()
	msg := push.Message{
		PetCode:            n.PetCode,
		Title:              n.Title,
		Body:               n.Body,
		Tag:                n.Tag,
		RequireInteraction: n.RequireInteraction,
		SentAt:             sentAt,
	}
	if err := g.sender.Send(ctx, msg, push.WithIdempotencyKey(deliveryKey(n, sentAt))); err != nil {
		return "", errors.Join(errors.New("push notification failed"), err)
	}
	return ports.Delivered, nil
}

func deliveryKey(n domain.Notification, sentAt time.Time) string {
	sum := sha256.Sum256([]byte(n.PetCode + "|" + n.Tag + "|" + n.Body + "|" + sentAt.Format(time.RFC3339Nano)))
	return hex.EncodeToString(sum[:12])
}
