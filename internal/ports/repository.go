// Package ports declares the contracts the quote service needs from the
// outside world. Adapters implement them; the app layer depends only on
// these interfaces and on domain types.
//
// Every method takes a context first and reports failures with domain
// errors (domain.ErrNotFound, domain.ErrRepository, domain.ErrUnavailable).
package ports

import (
	"context"

	"github.com/jsamuelsen/autoshop-quotes/internal/domain"
)

// QuoteRepository is the remote store that owns quotes once they are saved.
type QuoteRepository interface {
	// List returns every quote with Client and Vehicle populated when the
	// store can resolve them. Order is newest first.
	List(ctx context.Context) ([]*domain.Quote, error)

	// Get returns one quote or domain.ErrNotFound.
	Get(ctx context.Context, id string) (*domain.Quote, error)

	// Create stores a draft and returns it with ID, Number and timestamps
	// assigned. Numbers are unique and never change afterwards.
	Create(ctx context.Context, draft *domain.Quote) (*domain.Quote, error)

	// Update applies patch to the stored quote and returns the result.
	// A patch that replaces lines also replaces the stored total.
	Update(ctx context.Context, id string, patch domain.QuotePatch) (*domain.Quote, error)

	// Delete removes the quote and its lines, or returns domain.ErrNotFound.
	Delete(ctx context.Context, id string) error
}
