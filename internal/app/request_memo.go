package app

import (
	"context"
	"sync"

	"github.com/jsamuelsen/autoshop-quotes/internal/domain"
	"github.com/jsamuelsen/autoshop-quotes/internal/ports"
)

type memoKey struct{}

// requestMemo remembers catalog lookups for the lifetime of one request.
// Failed lookups are not remembered.
type requestMemo struct {
	values sync.Map
}

// WithRequestMemo returns a context under which catalog lookups made by the
// quote service and editor are fetched at most once.
func WithRequestMemo(ctx context.Context) context.Context {
	if _, ok := ctx.Value(memoKey{}).(*requestMemo); ok {
		return ctx
	}

	return context.WithValue(ctx, memoKey{}, &requestMemo{})
}

// memoize returns the value remembered under key, or fetches and remembers
// it. Without a memo on ctx it always fetches.
func memoize[T any](ctx context.Context, key string, fetch func(context.Context) (T, error)) (T, error) {
	memo, ok := ctx.Value(memoKey{}).(*requestMemo)
	if !ok {
		return fetch(ctx)
	}

	if cached, ok := memo.values.Load(key); ok {
		return cached.(T), nil
	}

	value, err := fetch(ctx)
	if err != nil {
		return value, err
	}

	actual, _ := memo.values.LoadOrStore(key, value)

	return actual.(T), nil
}

// memoCatalog routes catalog calls through the request memo.
type memoCatalog struct {
	next ports.Catalog
}

func newMemoCatalog(next ports.Catalog) ports.Catalog {
	if m, ok := next.(memoCatalog); ok {
		return m
	}

	return memoCatalog{next: next}
}

func (c memoCatalog) Clients(ctx context.Context) ([]domain.Client, error) {
	return memoize(ctx, "clients", c.next.Clients)
}

func (c memoCatalog) VehiclesByClient(ctx context.Context, clientID string) ([]domain.Vehicle, error) {
	return memoize(ctx, "vehicles:"+clientID, func(ctx context.Context) ([]domain.Vehicle, error) {
		return c.next.VehiclesByClient(ctx, clientID)
	})
}

func (c memoCatalog) Parts(ctx context.Context) ([]domain.Part, error) {
	return memoize(ctx, "parts", c.next.Parts)
}

func (c memoCatalog) Services(ctx context.Context) ([]domain.Service, error) {
	return memoize(ctx, "services", c.next.Services)
}
