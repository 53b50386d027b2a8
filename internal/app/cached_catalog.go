package app

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/jsamuelsen/autoshop-quotes/internal/domain"
	"github.com/jsamuelsen/autoshop-quotes/internal/platform/logging"
	"github.com/jsamuelsen/autoshop-quotes/internal/platform/metrics"
	"github.com/jsamuelsen/autoshop-quotes/internal/ports"
)

// Cache lookup outcomes recorded in metrics.
const (
	cacheHit   = "hit"
	cacheMiss  = "miss"
	cacheError = "error"
)

// CachedCatalog keeps catalog lists in a shared cache for TTL. A cache that
// fails is bypassed; the catalog answer is still returned.
type CachedCatalog struct {
	next    ports.Catalog
	cache   ports.Cache
	ttl     time.Duration
	metrics *metrics.Quotes
	logger  *slog.Logger
}

// CachedCatalogConfig wires a CachedCatalog.
type CachedCatalogConfig struct {
	Catalog ports.Catalog
	Cache   ports.Cache
	TTL     time.Duration
	Metrics *metrics.Quotes
	Logger  *slog.Logger
}

// NewCachedCatalog decorates cfg.Catalog with cfg.Cache.
func NewCachedCatalog(cfg CachedCatalogConfig) *CachedCatalog {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &CachedCatalog{
		next:    cfg.Catalog,
		cache:   cfg.Cache,
		ttl:     cfg.TTL,
		metrics: cfg.Metrics,
		logger:  cfg.Logger,
	}
}

// Clients implements ports.Catalog.
func (c *CachedCatalog) Clients(ctx context.Context) ([]domain.Client, error) {
	return cached(ctx, c, "clients", c.next.Clients)
}

// VehiclesByClient implements ports.Catalog.
func (c *CachedCatalog) VehiclesByClient(ctx context.Context, clientID string) ([]domain.Vehicle, error) {
	return cached(ctx, c, "vehicles:"+clientID, func(ctx context.Context) ([]domain.Vehicle, error) {
		return c.next.VehiclesByClient(ctx, clientID)
	})
}

// Parts implements ports.Catalog.
func (c *CachedCatalog) Parts(ctx context.Context) ([]domain.Part, error) {
	return cached(ctx, c, "parts", c.next.Parts)
}

// Services implements ports.Catalog.
func (c *CachedCatalog) Services(ctx context.Context) ([]domain.Service, error) {
	return cached(ctx, c, "services", c.next.Services)
}

// Invalidate drops every cached list for the given keys.
func (c *CachedCatalog) Invalidate(ctx context.Context, keys ...string) error {
	var errs []error
	for _, key := range keys {
		errs = append(errs, c.cache.Delete(ctx, key))
	}

	return errors.Join(errs...)
}

func cached[T any](ctx context.Context, c *CachedCatalog, key string, fetch func(context.Context) ([]T, error)) ([]T, error) {
	logger := logging.FromContextOr(ctx, c.logger).With(slog.String("cache_key", key))

	data, err := c.cache.Get(ctx, key)

	switch {
	case err == nil:
		var out []T
		if jsonErr := json.Unmarshal(data, &out); jsonErr == nil {
			c.metrics.CatalogCache(cacheHit)
			return out, nil
		}

		logger.WarnContext(ctx, "discarding unreadable catalog cache entry")
		_ = c.cache.Delete(ctx, key)
		c.metrics.CatalogCache(cacheError)
	case errors.Is(err, domain.ErrNotFound):
		c.metrics.CatalogCache(cacheMiss)
	default:
		logger.WarnContext(ctx, "catalog cache unavailable", slog.String("error", err.Error()))
		c.metrics.CatalogCache(cacheError)
	}

	out, err := fetch(ctx)
	if err != nil {
		return nil, err
	}

	data, err = json.Marshal(out)
	if err != nil {
		return out, nil
	}

	if err := c.cache.Set(ctx, key, data, int(c.ttl/time.Second)); err != nil {
		logger.WarnContext(ctx, "storing catalog list in cache failed", slog.String("error", err.Error()))
	}

	return out, nil
}
