package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/jsamuelsen/autoshop-quotes/internal/domain"
)

// CatalogSeed is the YAML layout of a fixed catalog.
type CatalogSeed struct {
	Clients []struct {
		ID   string `koanf:"id"`
		Name string `koanf:"name"`
	} `koanf:"clients"`
	Vehicles []struct {
		ID       string `koanf:"id"`
		ClientID string `koanf:"client_id"`
		Make     string `koanf:"make"`
		Model    string `koanf:"model"`
		Year     int    `koanf:"year"`
		Plate    string `koanf:"plate"`
	} `koanf:"vehicles"`
	Parts []struct {
		ID   string `koanf:"id"`
		Name string `koanf:"name"`
	} `koanf:"parts"`
	Services []struct {
		ID   string `koanf:"id"`
		Name string `koanf:"name"`
	} `koanf:"services"`
}

// Catalog implements ports.Catalog over fixed data.
type Catalog struct {
	mu       sync.RWMutex
	clients  []domain.Client
	vehicles []domain.Vehicle
	parts    []domain.Part
	services []domain.Service
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{}
}

// LoadCatalog reads a catalog seed file.
func LoadCatalog(path string) (*Catalog, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("loading catalog seed %s: %w", path, err)
	}

	var seed CatalogSeed
	if err := k.Unmarshal("", &seed); err != nil {
		return nil, fmt.Errorf("decoding catalog seed %s: %w", path, err)
	}

	c := NewCatalog()

	for _, s := range seed.Clients {
		c.AddClient(domain.Client{ID: s.ID, Name: s.Name})
	}

	for _, s := range seed.Vehicles {
		c.AddVehicle(domain.Vehicle{ID: s.ID, ClientID: s.ClientID, Make: s.Make, Model: s.Model, Year: s.Year, Plate: s.Plate})
	}

	for _, s := range seed.Parts {
		c.AddPart(domain.Part{ID: s.ID, Name: s.Name})
	}

	for _, s := range seed.Services {
		c.AddService(domain.Service{ID: s.ID, Name: s.Name})
	}

	return c, nil
}

func (c *Catalog) AddClient(client domain.Client) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.clients = append(c.clients, client)
}

func (c *Catalog) AddVehicle(vehicle domain.Vehicle) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.vehicles = append(c.vehicles, vehicle)
}

func (c *Catalog) AddPart(part domain.Part) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.parts = append(c.parts, part)
}

func (c *Catalog) AddService(service domain.Service) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.services = append(c.services, service)
}

// Clients implements ports.Catalog.
func (c *Catalog) Clients(context.Context) ([]domain.Client, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return slices.Clone(c.clients), nil
}

// VehiclesByClient implements ports.Catalog.
func (c *Catalog) VehiclesByClient(_ context.Context, clientID string) ([]domain.Vehicle, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []domain.Vehicle

	for _, v := range c.vehicles {
		if v.ClientID == clientID {
			out = append(out, v)
		}
	}

	return out, nil
}

// Parts implements ports.Catalog.
func (c *Catalog) Parts(context.Context) ([]domain.Part, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return slices.Clone(c.parts), nil
}

// Services implements ports.Catalog.
func (c *Catalog) Services(context.Context) ([]domain.Service, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return slices.Clone(c.services), nil
}
