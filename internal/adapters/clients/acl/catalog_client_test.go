package acl

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/autoshop-quotes/internal/adapters/clients"
	"github.com/jsamuelsen/autoshop-quotes/internal/domain"
	"github.com/jsamuelsen/autoshop-quotes/internal/platform/config"
	"github.com/jsamuelsen/autoshop-quotes/internal/ports"
)

var _ ports.Catalog = (*CatalogClient)(nil)

func newTestCatalog(t *testing.T, handler http.HandlerFunc) *CatalogClient {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := clients.New(clients.Config{
		BaseURL:     server.URL + "/rest/v1",
		ServiceName: "catalog",
		Timeout:     time.Second,
		Retry:       config.RetryConfig{MaxAttempts: 1, InitialInterval: time.Millisecond, Multiplier: 2},
		Circuit:     config.CircuitBreakerConfig{MaxFailures: 10, Timeout: time.Second, HalfOpenLimit: 1},
		AuthFunc:    APIKeyAuth("anon-key"),
	})
	require.NoError(t, err)

	return NewCatalogClient(client, "catalog")
}

func TestCatalogClient_Clients(t *testing.T) {
	c := newTestCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/clientes", r.URL.Path)
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer anon-key", r.Header.Get("Authorization"))
		assert.Equal(t, "nome", r.URL.Query().Get("order"))

		_, _ = w.Write([]byte(`[{"id":"c1","nome":"Maria Souza"},{"id":"c2","nome":"João Lima"}]`))
	})

	got, err := c.Clients(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.Client{{ID: "c1", Name: "Maria Souza"}, {ID: "c2", Name: "João Lima"}}, got)
}

func TestCatalogClient_VehiclesByClient(t *testing.T) {
	c := newTestCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/veiculos", r.URL.Path)
		assert.Equal(t, "eq.c1", r.URL.Query().Get("cliente_id"))

		_, _ = w.Write([]byte(`[{"id":"v1","cliente_id":"c1","marca":"Fiat","modelo":"Uno","ano":2015,"placa":"ABC-1234"}]`))
	})

	got, err := c.VehiclesByClient(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Fiat Uno 2015 - ABC-1234", got[0].Label())
	assert.Equal(t, "c1", got[0].ClientID)
}

func TestCatalogClient_PartsAndServices(t *testing.T) {
	c := newTestCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/rest/v1/pecas":
			_, _ = w.Write([]byte(`[{"id":"p1","nome":"Filtro de óleo"}]`))
		case "/rest/v1/servicos":
			_, _ = w.Write([]byte(`[{"id":"s1","nome":"Troca de óleo"}]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	ctx := context.Background()

	parts, err := c.Parts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Part{{ID: "p1", Name: "Filtro de óleo"}}, parts)

	services, err := c.Services(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Service{{ID: "s1", Name: "Troca de óleo"}}, services)
}

func TestCatalogClient_MalformedItem(t *testing.T) {
	c := newTestCatalog(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"v1","marca":"Fiat"}]`))
	})

	_, err := c.VehiclesByClient(context.Background(), "c1")
	require.Error(t, err)
	assert.True(t, domain.IsUnavailable(err))
	assert.Contains(t, err.Error(), "cliente_id")
}

func TestCatalogClient_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(error) bool
	}{
		{name: "server error", status: http.StatusInternalServerError, check: domain.IsUnavailable},
		{name: "not found", status: http.StatusNotFound, check: domain.IsNotFound},
		{name: "bad api key", status: http.StatusUnauthorized, body: `{"message":"Invalid API key"}`, check: domain.IsForbidden},
		{name: "bad filter", status: http.StatusBadRequest, body: `{"code":"PGRST100","message":"failed to parse filter","details":"unexpected \"x\""}`, check: domain.IsValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCatalog(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := c.Clients(context.Background())
			require.Error(t, err)
			assert.True(t, tt.check(err), "got %v", err)
		})
	}
}

func TestMapError(t *testing.T) {
	assert.NoError(t, MapError(nil, "catalog", "list clients"))

	err := MapError(clients.ErrCircuitOpen, "catalog", "list clients")
	assert.True(t, domain.IsUnavailable(err))
	assert.Contains(t, err.Error(), "circuit breaker open")

	assert.True(t, domain.IsUnavailable(MapError(errors.New("dial tcp: refused"), "catalog", "list parts")))

	err = MapError(&clients.StatusError{StatusCode: http.StatusBadRequest, Body: `{"message":"bad","details":"order"}`}, "catalog", "list parts")
	assert.True(t, domain.IsValidation(err))
	assert.Contains(t, err.Error(), "bad (order)")
}
