package app

import (
	"time"

	"github.com/jsamuelsen/autoshop-quotes/internal/domain"
)

// Quote event types.
const (
	EventQuoteCreated            = "quote.created"
	EventQuoteUpdated            = "quote.updated"
	EventQuoteStatusChanged      = "quote.status_changed"
	EventQuoteDeleted            = "quote.deleted"
	EventQuoteWorkOrderRequested = "quote.work_order_requested"
)

// QuoteEvent is the body of every quote event. Fields that do not apply to
// an event type are left empty.
type QuoteEvent struct {
	Type           string    `json:"type"`
	QuoteID        string    `json:"quoteId"`
	Number         string    `json:"number,omitempty"`
	ClientID       string    `json:"clientId,omitempty"`
	VehicleID      string    `json:"vehicleId,omitempty"`
	Status         string    `json:"status,omitempty"`
	PreviousStatus string    `json:"previousStatus,omitempty"`
	Total          string    `json:"total,omitempty"`
	OccurredAt     time.Time `json:"occurredAt"`
}

func newQuoteEvent(eventType string, q *domain.Quote, now time.Time) QuoteEvent {
	return QuoteEvent{
		Type:       eventType,
		QuoteID:    q.ID,
		Number:     q.Number,
		ClientID:   q.ClientID,
		VehicleID:  q.VehicleID,
		Status:     string(q.Status),
		Total:      q.Total().String(),
		OccurredAt: now.UTC(),
	}
}

// EventType implements ports.Event.
func (e QuoteEvent) EventType() string { return e.Type }

// Key implements ports.Event. Events of one quote share a partition.
func (e QuoteEvent) Key() string { return e.QuoteID }

// Payload implements ports.Event.
func (e QuoteEvent) Payload() any { return e }
