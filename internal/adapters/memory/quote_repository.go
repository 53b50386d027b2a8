// Package memory keeps quotes and catalog data in process memory. It backs
// the local and test profiles and the BDD suite.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jsamuelsen/autoshop-quotes/internal/domain"
)

// QuoteRepository implements ports.QuoteRepository in memory. Stored quotes
// are cloned on the way in and out so callers never share state with it.
type QuoteRepository struct {
	mu     sync.RWMutex
	quotes map[string]*domain.Quote
	order  []string
	seq    int
	now    func() time.Time
}

// NewQuoteRepository creates an empty repository.
func NewQuoteRepository() *QuoteRepository {
	return &QuoteRepository{
		quotes: make(map[string]*domain.Quote),
		now:    time.Now,
	}
}

// List implements ports.QuoteRepository. Newest first.
func (r *QuoteRepository) List(ctx context.Context) ([]*domain.Quote, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.NewRepositoryError("list", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Quote, 0, len(r.order))
	for _, id := range slices.Backward(r.order) {
		out = append(out, r.quotes[id].Clone())
	}

	return out, nil
}

// Get implements ports.QuoteRepository.
func (r *QuoteRepository) Get(ctx context.Context, id string) (*domain.Quote, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.NewRepositoryError("get", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	q, ok := r.quotes[id]
	if !ok {
		return nil, domain.NewNotFoundError(domain.EntityQuote, id)
	}

	return q.Clone(), nil
}

// Create implements ports.QuoteRepository. Numbers run ORC-001, ORC-002, ...
// and are never reused, even after a delete.
func (r *QuoteRepository) Create(ctx context.Context, draft *domain.Quote) (*domain.Quote, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.NewRepositoryError("create", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++

	q := draft.Clone()
	q.ID = uuid.NewString()
	q.Number = fmt.Sprintf("ORC-%03d", r.seq)
	q.Status = domain.StatusPending
	q.Client = nil
	q.Vehicle = nil
	q.CreatedAt = r.now().UTC()
	q.UpdatedAt = q.CreatedAt

	if err := q.ReplaceLines(q.PartsLines(), q.LaborLines()); err != nil {
		return nil, err
	}

	r.quotes[q.ID] = q
	r.order = append(r.order, q.ID)

	return q.Clone(), nil
}

// Update implements ports.QuoteRepository.
func (r *QuoteRepository) Update(ctx context.Context, id string, patch domain.QuotePatch) (*domain.Quote, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.NewRepositoryError("update", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.quotes[id]
	if !ok {
		return nil, domain.NewNotFoundError(domain.EntityQuote, id)
	}

	q := stored.Clone()
	if err := q.Apply(patch); err != nil {
		return nil, err
	}

	q.UpdatedAt = r.now().UTC()
	r.quotes[id] = q

	return q.Clone(), nil
}

// Delete implements ports.QuoteRepository.
func (r *QuoteRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return domain.NewRepositoryError("delete", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.quotes[id]; !ok {
		return domain.NewNotFoundError(domain.EntityQuote, id)
	}

	delete(r.quotes, id)
	r.order = slices.DeleteFunc(r.order, func(s string) bool { return s == id })

	return nil
}

// Name implements ports.HealthChecker.
func (r *QuoteRepository) Name() string {
	return "quote-store"
}

// Check implements ports.HealthChecker. Memory is always reachable.
func (r *QuoteRepository) Check(context.Context) error {
	return nil
}
