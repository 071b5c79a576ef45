package webhook

import (
	"context"
	"time"
)

// Event types delivered by LicenseChain.
const (
	EventLicenseCreated   = "license.created"
	EventLicenseUpdated   = "license.updated"
	EventLicenseRevoked   = "license.revoked"
	EventLicenseExpired   = "license.expired"
	EventUserCreated      = "user.created"
	EventUserUpdated      = "user.updated"
	EventUserDeleted      = "user.deleted"
	EventProductCreated   = "product.created"
	EventProductUpdated   = "product.updated"
	EventProductDeleted   = "product.deleted"
	EventPaymentCompleted = "payment.completed"
	EventPaymentFailed    = "payment.failed"
	EventPaymentRefunded  = "payment.refunded"
)

// knownEvents maps each known event type to the message logged by the
// built-in handler.
var knownEvents = map[string]string{
	EventLicenseCreated:   "License created",
	EventLicenseUpdated:   "License updated",
	EventLicenseRevoked:   "License revoked",
	EventLicenseExpired:   "License expired",
	EventUserCreated:      "User created",
	EventUserUpdated:      "User updated",
	EventUserDeleted:      "User deleted",
	EventProductCreated:   "Product created",
	EventProductUpdated:   "Product updated",
	EventProductDeleted:   "Product deleted",
	EventPaymentCompleted: "Payment completed",
	EventPaymentFailed:    "Payment failed",
	EventPaymentRefunded:  "Payment refunded",
}

// KnownEventTypes returns every event type with a built-in handler.
func KnownEventTypes() []string {
	return []string{
		EventLicenseCreated, EventLicenseUpdated, EventLicenseRevoked, EventLicenseExpired,
		EventUserCreated, EventUserUpdated, EventUserDeleted,
		EventProductCreated, EventProductUpdated, EventProductDeleted,
		EventPaymentCompleted, EventPaymentFailed, EventPaymentRefunded,
	}
}

// IsKnownEventType reports whether eventType has a built-in handler.
func IsKnownEventType(eventType string) bool {
	_, ok := knownEvents[eventType]
	return ok
}

// Event is a verified webhook delivery.
type Event struct {
	// ID is the delivery's "id", falling back to data.id, or "unknown".
	ID   string
	Type string
	// Timestamp is the parsed delivery timestamp.
	Timestamp time.Time
	// Data is the signed "data" object.
	Data map[string]any
	// Raw is the whole delivery as received.
	Raw map[string]any
}

// Handler processes one verified event. A returned error fails the delivery.
type Handler func(ctx context.Context, event Event) error
