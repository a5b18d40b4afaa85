package ports

import (
	"context"

	"github.com/Apurer/roopet-api/internal/domains/pets/domain"
)

// EventPublisher receives domain events after the mutation that raised them was persisted.
// Publishing is best effort; failures never roll back the mutation.
type EventPublisher interface {
	Publish(ctx context.Context, events ...domain.Event) error
}
