package acl

import (
	"fmt"

	"github.com/jsamuelsen/autoshop-quotes/internal/domain"
)

type clienteDTO struct {
	ID   string `json:"id"`
	Nome string `json:"nome"`
}

type veiculoDTO struct {
	ID        string `json:"id"`
	ClienteID string `json:"cliente_id"`
	Marca     string `json:"marca"`
	Modelo    string `json:"modelo"`
	Ano       int    `json:"ano"`
	Placa     string `json:"placa"`
}

type pecaDTO struct {
	ID   string `json:"id"`
	Nome string `json:"nome"`
}

type servicoDTO struct {
	ID   string `json:"id"`
	Nome string `json:"nome"`
}

func translateClient(c clienteDTO) (domain.Client, error) {
	if c.ID == "" {
		return domain.Client{}, domain.NewValidationError("id", "is required")
	}

	return domain.Client{ID: c.ID, Name: c.Nome}, nil
}

func translateVehicle(v veiculoDTO) (domain.Vehicle, error) {
	if v.ID == "" {
		return domain.Vehicle{}, domain.NewValidationError("id", "is required")
	}

	if v.ClienteID == "" {
		return domain.Vehicle{}, domain.NewValidationError("cliente_id", "is required")
	}

	return domain.Vehicle{
		ID:       v.ID,
		ClientID: v.ClienteID,
		Make:     v.Marca,
		Model:    v.Modelo,
		Year:     v.Ano,
		Plate:    v.Placa,
	}, nil
}

func translatePart(p pecaDTO) (domain.Part, error) {
	if p.ID == "" {
		return domain.Part{}, domain.NewValidationError("id", "is required")
	}

	return domain.Part{ID: p.ID, Name: p.Nome}, nil
}

func translateService(s servicoDTO) (domain.Service, error) {
	if s.ID == "" {
		return domain.Service{}, domain.NewValidationError("id", "is required")
	}

	return domain.Service{ID: s.ID, Name: s.Nome}, nil
}

// translateAll translates every item or reports the first bad one.
func translateAll[E, D any](items []E, translate func(E) (D, error)) ([]D, error) {
	out := make([]D, 0, len(items))

	for i, item := range items {
		d, err := translate(item)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}

		out = append(out, d)
	}

	return out, nil
}
