package ports

import (
	"context"

	"github.com/jsamuelsen/autoshop-quotes/internal/domain"
)

// Catalog is the read-only lookup of the shop's registries.
// Returns domain.ErrUnavailable when the backing service cannot be reached.
type Catalog interface {
	Clients(ctx context.Context) ([]domain.Client, error)

	// VehiclesByClient returns only the vehicles owned by clientID.
	VehiclesByClient(ctx context.Context, clientID string) ([]domain.Vehicle, error)

	Parts(ctx context.Context) ([]domain.Part, error)

	Services(ctx context.Context) ([]domain.Service, error)
}

// EventPublisher hands quote events to the message broker.
type EventPublisher interface {
	// Publish sends an event to the configured destination.
	// Returns domain.ErrUnavailable if the broker is unreachable.
	Publish(ctx context.Context, event Event) error
}

// Event is a domain event that can be published.
type Event interface {
	// EventType is the routing name, e.g. "quote.created".
	EventType() string

	// Key groups events of the same aggregate on one partition.
	Key() string

	// Payload is the event body, serialized by the publisher.
	Payload() any
}

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get returns domain.ErrNotFound on a miss.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value. A TTL of 0 means no expiration.
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error

	// Delete is a no-op for missing keys.
	Delete(ctx context.Context, key string) error
}

// DocumentRenderer produces the printable version of a quote.
type DocumentRenderer interface {
	// ContentType is the MIME type of the rendered bytes.
	ContentType() string

	Render(ctx context.Context, q *domain.Quote) ([]byte, error)
}
