//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/autoshop-quotes/internal/adapters/clients"
	"github.com/jsamuelsen/autoshop-quotes/internal/adapters/clients/acl"
	"github.com/jsamuelsen/autoshop-quotes/internal/adapters/memory"
	"github.com/jsamuelsen/autoshop-quotes/internal/app"
	"github.com/jsamuelsen/autoshop-quotes/internal/domain"
	"github.com/jsamuelsen/autoshop-quotes/internal/platform/config"
)

// fakeCatalogAPI answers the catalog's REST tables from fixed rows.
func fakeCatalogAPI(t *testing.T, calls *atomic.Int32) *httptest.Server {
	t.Helper()

	rows := map[string]any{
		"/clientes": []map[string]any{{"id": "c1", "nome": "Maria Souza"}},
		"/veiculos": []map[string]any{{
			"id": "v1", "cliente_id": "c1", "marca": "Fiat", "modelo": "Uno", "ano": 2015, "placa": "ABC-1234",
		}},
		"/pecas":    []map[string]any{{"id": "p1", "nome": "Filtro de óleo"}},
		"/servicos": []map[string]any{{"id": "s1", "nome": "Troca de óleo"}},
	}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)

		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "secret", r.Header.Get("apikey"))

		body, ok := rows[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		if r.URL.Path == "/veiculos" && r.URL.Query().Get("cliente_id") != "eq.c1" {
			body = []any{}
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	}))
}

func testClientConfig(baseURL string) clients.Config {
	return clients.Config{
		ServiceName: "catalog",
		BaseURL:     baseURL,
		Timeout:     time.Second,
		Retry: config.RetryConfig{
			MaxAttempts:     2,
			InitialInterval: 10 * time.Millisecond,
			MaxInterval:     50 * time.Millisecond,
			Multiplier:      2.0,
		},
		Circuit: config.CircuitBreakerConfig{
			MaxFailures:   2,
			Timeout:       time.Minute,
			HalfOpenLimit: 1,
		},
		AuthFunc: acl.APIKeyAuth("secret"),
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// TestCatalogClient_QuoteFlow_Integration drives the quote service against
// the catalog API through the anti-corruption layer.
func TestCatalogClient_QuoteFlow_Integration(t *testing.T) {
	var calls atomic.Int32

	server := fakeCatalogAPI(t, &calls)
	defer server.Close()

	client, err := clients.New(testClientConfig(server.URL))
	require.NoError(t, err)

	catalog := acl.NewCatalogClient(client, "catalog")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	svc := app.NewQuoteService(app.QuoteServiceConfig{
		Repo:    memory.NewQuoteRepository(),
		Catalog: catalog,
		Logger:  logger,
	})

	ctx := app.WithRequestMemo(context.Background())

	opts, err := svc.FormOptions(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, []domain.Client{{ID: "c1", Name: "Maria Souza"}}, opts.Clients)
	require.Len(t, opts.Vehicles, 1)
	assert.Equal(t, "Fiat Uno 2015 - ABC-1234", opts.Vehicles[0].Label())

	editor := app.NewQuoteEditor(app.EditorConfig{Store: svc, Catalog: catalog, Logger: logger})
	editor.SelectClient("c1")
	editor.SelectVehicle("v1")
	editor.SetQuoteDate(domain.NewDate(2024, time.March, 5))
	editor.SetValidUntil(domain.NewDate(2024, time.April, 4))

	_, err = editor.AddPart(ctx, app.PartsLineInput{PartID: "p1", Quantity: 3, UnitPrice: domain.MustMoney("10.50")})
	require.NoError(t, err)

	saved, err := editor.Submit(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "ORC-001", saved.Number)
	assert.Equal(t, "R$ 31,50", saved.Total().Display())

	page, err := svc.List(ctx, app.ListQuery{Filter: domain.QuoteFilter{Search: "maria"}})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Maria Souza", page.Items[0].ClientName())

	assert.Positive(t, calls.Load())
}

// TestCatalogClient_Unavailable_Integration checks that a failing catalog
// surfaces as a domain unavailable error and trips the breaker.
func TestCatalogClient_Unavailable_Integration(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client, err := clients.New(testClientConfig(server.URL))
	require.NoError(t, err)

	catalog := acl.NewCatalogClient(client, "catalog")

	_, err = catalog.Clients(context.Background())
	require.Error(t, err)
	assert.True(t, domain.IsUnavailable(err))

	_, _ = catalog.Parts(context.Background())

	before := calls.Load()

	_, err = catalog.Services(context.Background())
	require.Error(t, err)
	assert.True(t, domain.IsUnavailable(err))
	assert.True(t, strings.Contains(err.Error(), "circuit breaker open"), err.Error())
	assert.Equal(t, before, calls.Load(), "an open circuit sends nothing")
}
