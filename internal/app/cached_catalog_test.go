package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/autoshop-quotes/internal/domain"
	"github.com/jsamuelsen/autoshop-quotes/internal/mocks"
	"github.com/jsamuelsen/autoshop-quotes/internal/platform/metrics"
)

func newTestCachedCatalog(t *testing.T) (*CachedCatalog, *mocks.MockCatalog, *mocks.MockCache, *prometheus.Registry) {
	t.Helper()

	catalog := mocks.NewMockCatalog(t)
	cache := mocks.NewMockCache(t)
	reg := prometheus.NewRegistry()

	return NewCachedCatalog(CachedCatalogConfig{
		Catalog: catalog,
		Cache:   cache,
		TTL:     5 * time.Minute,
		Metrics: metrics.NewQuotes(reg),
		Logger:  discardLogger(),
	}), catalog, cache, reg
}

func assertCacheResults(t *testing.T, reg *prometheus.Registry, lines ...string) {
	t.Helper()

	expected := "# HELP quotes_catalog_cache_requests_total Catalog cache lookups by result (hit, miss, error).\n" +
		"# TYPE quotes_catalog_cache_requests_total counter\n" +
		strings.Join(lines, "\n") + "\n"

	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "quotes_catalog_cache_requests_total"))
}

func TestCachedCatalog_Hit(t *testing.T) {
	c, _, cache, reg := newTestCachedCatalog(t)

	cache.EXPECT().Get(mock.Anything, "clients").Return([]byte(`[{"ID":"c1","Name":"Maria"}]`), nil)

	clients, err := c.Clients(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.Client{{ID: "c1", Name: "Maria"}}, clients)
	assertCacheResults(t, reg, `quotes_catalog_cache_requests_total{result="hit"} 1`)
}

func TestCachedCatalog_MissFillsCache(t *testing.T) {
	c, catalog, cache, reg := newTestCachedCatalog(t)

	vehicles := []domain.Vehicle{{ID: "v1", ClientID: "c1", Make: "Fiat", Model: "Uno", Year: 2015, Plate: "ABC-1234"}}

	cache.EXPECT().Get(mock.Anything, "vehicles:c1").Return(nil, domain.ErrNotFound)
	catalog.EXPECT().VehiclesByClient(mock.Anything, "c1").Return(vehicles, nil)
	cache.EXPECT().Set(mock.Anything, "vehicles:c1", mock.Anything, 300).
		RunAndReturn(func(_ context.Context, _ string, value []byte, _ int) error {
			assert.Contains(t, string(value), "ABC-1234")
			return nil
		})

	got, err := c.VehiclesByClient(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, vehicles, got)
	assertCacheResults(t, reg, `quotes_catalog_cache_requests_total{result="miss"} 1`)
}

func TestCachedCatalog_CacheDownFallsThrough(t *testing.T) {
	c, catalog, cache, reg := newTestCachedCatalog(t)

	cache.EXPECT().Get(mock.Anything, "parts").Return(nil, domain.NewUnavailableError("redis", "connection refused"))
	catalog.EXPECT().Parts(mock.Anything).Return([]domain.Part{{ID: "p1", Name: "Filtro"}}, nil)
	cache.EXPECT().Set(mock.Anything, "parts", mock.Anything, 300).Return(domain.NewUnavailableError("redis", "connection refused"))

	parts, err := c.Parts(context.Background())
	require.NoError(t, err)
	assert.Len(t, parts, 1)
	assertCacheResults(t, reg, `quotes_catalog_cache_requests_total{result="error"} 1`)
}

func TestCachedCatalog_CorruptEntryIsDropped(t *testing.T) {
	c, catalog, cache, _ := newTestCachedCatalog(t)

	cache.EXPECT().Get(mock.Anything, "services").Return([]byte("{not json"), nil)
	cache.EXPECT().Delete(mock.Anything, "services").Return(nil)
	catalog.EXPECT().Services(mock.Anything).Return([]domain.Service{{ID: "s1", Name: "Alinhamento"}}, nil)
	cache.EXPECT().Set(mock.Anything, "services", mock.Anything, 300).Return(nil)

	services, err := c.Services(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Alinhamento", services[0].Name)
}

func TestCachedCatalog_CatalogErrorIsNotCached(t *testing.T) {
	c, catalog, cache, _ := newTestCachedCatalog(t)

	cache.EXPECT().Get(mock.Anything, "clients").Return(nil, domain.ErrNotFound)
	catalog.EXPECT().Clients(mock.Anything).Return(nil, domain.NewUnavailableError("catalog", "timeout"))

	_, err := c.Clients(context.Background())
	assert.True(t, domain.IsUnavailable(err))
}

func TestCachedCatalog_Invalidate(t *testing.T) {
	c, _, cache, _ := newTestCachedCatalog(t)

	boom := errors.New("boom")

	cache.EXPECT().Delete(mock.Anything, "clients").Return(nil)
	cache.EXPECT().Delete(mock.Anything, "parts").Return(boom)

	assert.ErrorIs(t, c.Invalidate(context.Background(), "clients", "parts"), boom)
}
