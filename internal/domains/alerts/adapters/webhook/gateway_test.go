package webhook

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/roopet-api/internal/clients/http/push"
	"github.com/Apurer/roopet-api/internal/domains/alerts/domain"
	"github.com/Apurer/roopet-api/internal/domains/alerts/ports"
)

type recordingSender struct {
	msgs []push.Message
	err  error
}

func (s *recordingSender) Send(_ context.Context, msg push.Message, _ ...push.SendOption) error {
	s.msgs = append(s.msgs, msg)
	return s.err
}

func TestGateway_Show(t *testing.T) {
	sender := &recordingSender{}
	gateway := NewGateway(sender)

	permission, err := gateway.RequestPermission(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ports.PermissionGranted, permission)

	note := domain.LowStatsNotification("ABC123", "Mochi", []string{"dirty"})
	delivery, err := gateway.Show(context.Background(), note)
	require.NoError(t, err)
	assert.Equal(t, ports.Delivered, delivery)
	require.Len(t, sender.msgs, 1)
	assert.Equal(t, "Mochi is dirty! Please take care of your pet!", sender.msgs[0].Body)
	assert.True(t, sender.msgs[0].RequireInteraction)
}

func TestGateway_ShowFailure(t *testing.T) {
	gateway := NewGateway(&recordingSender{err: errors.New("boom")})
	_, err := gateway.Show(context.Background(), domain.PurchaseNotification("ABC123", "Hat"))
	assert.Error(t, err)
}

func TestGateway_WithoutSenderSuppresses(t *testing.T) {
	gateway := NewGateway(nil)
	delivery, err := gateway.Show(context.Background(), domain.PurchaseNotification("ABC123", "Hat"))
	require.NoError(t, err)
	assert.Equal(t, ports.Suppressed, delivery)
}
