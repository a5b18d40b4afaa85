package ports

import (
	"context"

	"github.com/Apurer/roopet-api/internal/domains/alerts/domain"
)

// Permission mirrors the user's notification consent.
type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// Delivery reports what happened to a notification.
type Delivery string

const (
	Delivered  Delivery = "delivered"
	Suppressed Delivery = "suppressed"
)

// Gateway shows notifications to the owners of a pet.
type Gateway interface {
	RequestPermission(ctx context.Context) (Permission, error)
	// Show never blocks on user interaction; without permission it returns Suppressed.
	Show(ctx context.Context, n domain.Notification) (Delivery, error)
}
