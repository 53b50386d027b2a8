package acl

import (
	"context"
	"net/http"
	"net/url"

	"github.com/jsamuelsen/autoshop-quotes/internal/adapters/clients"
	"github.com/jsamuelsen/autoshop-quotes/internal/domain"
)

// getter is the part of clients.Client the catalog needs.
type getter interface {
	GetJSON(ctx context.Context, path string, query url.Values, out any) error
}

// CatalogClient implements ports.Catalog against the catalog REST API.
type CatalogClient struct {
	client  getter
	service string
}

// NewCatalogClient wraps client. service names the catalog in errors.
func NewCatalogClient(client *clients.Client, service string) *CatalogClient {
	return &CatalogClient{client: client, service: service}
}

// APIKeyAuth sets the headers the catalog expects on every request.
func APIKeyAuth(key string) func(*http.Request) {
	return func(r *http.Request) {
		if key == "" {
			return
		}

		r.Header.Set("apikey", key)
		r.Header.Set("Authorization", "Bearer "+key)
	}
}

// Clients implements ports.Catalog. Ordered by name.
func (c *CatalogClient) Clients(ctx context.Context) ([]domain.Client, error) {
	return fetch(ctx, c, "/clientes", url.Values{"select": {"id,nome"}, "order": {"nome"}}, "list clients", translateClient)
}

// VehiclesByClient implements ports.Catalog.
func (c *CatalogClient) VehiclesByClient(ctx context.Context, clientID string) ([]domain.Vehicle, error) {
	query := url.Values{
		"select":     {"id,cliente_id,marca,modelo,ano,placa"},
		"cliente_id": {"eq." + clientID},
		"order":      {"marca,modelo"},
	}

	return fetch(ctx, c, "/veiculos", query, "list vehicles", translateVehicle)
}

// Parts implements ports.Catalog.
func (c *CatalogClient) Parts(ctx context.Context) ([]domain.Part, error) {
	return fetch(ctx, c, "/pecas", url.Values{"select": {"id,nome"}, "order": {"nome"}}, "list parts", translatePart)
}

// Services implements ports.Catalog.
func (c *CatalogClient) Services(ctx context.Context) ([]domain.Service, error) {
	return fetch(ctx, c, "/servicos", url.Values{"select": {"id,nome"}, "order": {"nome"}}, "list services", translateService)
}

func fetch[E, D any](ctx context.Context, c *CatalogClient, path string, query url.Values, operation string, translate func(E) (D, error)) ([]D, error) {
	var items []E
	if err := c.client.GetJSON(ctx, path, query, &items); err != nil {
		return nil, MapError(err, c.service, operation)
	}

	out, err := translateAll(items, translate)
	if err != nil {
		return nil, domain.NewUnavailableError(c.service, operation+": malformed response: "+err.Error())
	}

	return out, nil
}
