package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jsamuelsen/autoshop-quotes/internal/app"
	"github.com/jsamuelsen/autoshop-quotes/internal/domain"
)

// ListQuotesRequest is the list screen's query: search box, status selector
// and page position.
type ListQuotesRequest struct {
	PaginationRequest

	Search string `form:"search" json:"search" validate:"max=100"`
	Status string `form:"status" json:"status" validate:"omitempty,statusfilter"`
}

// Filter converts the query to the domain filter.
func (r *ListQuotesRequest) Filter() domain.QuoteFilter {
	return domain.QuoteFilter{Search: r.Search, Status: r.Status}
}

// PartsLineRequest is one parts line in a create or update body.
type PartsLineRequest struct {
	PartID    string       `json:"partId" validate:"required"`
	Quantity  int          `json:"quantity"`
	UnitPrice domain.Money `json:"unitPrice"`
}

// LaborLineRequest is one labor line in a create or update body.
type LaborLineRequest struct {
	ServiceID  string          `json:"serviceId" validate:"required"`
	Hours      decimal.Decimal `json:"hours"`
	HourlyRate domain.Money    `json:"hourlyRate"`
}

// CreateQuoteRequest is the body of POST /quotes. Header fields are checked
// by the editor so every missing field is reported together.
type CreateQuoteRequest struct {
	ClientID   string             `json:"clientId"`
	VehicleID  string             `json:"vehicleId"`
	QuoteDate  domain.Date        `json:"quoteDate"`
	ValidUntil domain.Date        `json:"validUntil"`
	PartsLines []PartsLineRequest `json:"partsLines" validate:"dive"`
	LaborLines []LaborLineRequest `json:"laborLines" validate:"dive"`
}

// UpdateQuoteRequest is the body of PATCH /quotes/:id. Absent fields are
// kept. Sending either line list replaces that list; the other is kept.
type UpdateQuoteRequest struct {
	ClientID   *string             `json:"clientId"`
	VehicleID  *string             `json:"vehicleId"`
	QuoteDate  *domain.Date        `json:"quoteDate"`
	ValidUntil *domain.Date        `json:"validUntil"`
	PartsLines *[]PartsLineRequest `json:"partsLines" validate:"omitempty,dive"`
	LaborLines *[]LaborLineRequest `json:"laborLines" validate:"omitempty,dive"`
}

// Validate rejects a body that changes nothing.
func (r *UpdateQuoteRequest) Validate() error {
	if r.ClientID == nil && r.VehicleID == nil && r.QuoteDate == nil && r.ValidUntil == nil &&
		r.PartsLines == nil && r.LaborLines == nil {
		return domain.NewValidationError("body", "nothing to update")
	}

	return nil
}

// ChangeStatusRequest is the body of PUT /quotes/:id/status.
type ChangeStatusRequest struct {
	Status domain.Status `json:"status" validate:"required,quotestatus"`
}

// DeleteQuoteRequest carries the confirmation flag of DELETE /quotes/:id.
type DeleteQuoteRequest struct {
	Confirm bool `form:"confirm"`
}

// FormOptionsRequest selects the client whose vehicles are listed.
type FormOptionsRequest struct {
	ClientID string `form:"clientId"`
}

// PartsInputs converts request lines to editor input.
func PartsInputs(lines []PartsLineRequest) []app.PartsLineInput {
	out := make([]app.PartsLineInput, 0, len(lines))
	for _, l := range lines {
		out = append(out, app.PartsLineInput{PartID: l.PartID, Quantity: l.Quantity, UnitPrice: l.UnitPrice})
	}

	return out
}

// LaborInputs converts request lines to editor input.
func LaborInputs(lines []LaborLineRequest) []app.LaborLineInput {
	out := make([]app.LaborLineInput, 0, len(lines))
	for _, l := range lines {
		out = append(out, app.LaborLineInput{ServiceID: l.ServiceID, Hours: l.Hours, HourlyRate: l.HourlyRate})
	}

	return out
}

// ClientResponse is a catalog client.
type ClientResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// VehicleResponse is a catalog vehicle with its display label.
type VehicleResponse struct {
	ID       string `json:"id"`
	ClientID string `json:"clientId"`
	Make     string `json:"make"`
	Model    string `json:"model"`
	Year     int    `json:"year"`
	Plate    string `json:"plate"`
	Label    string `json:"label"`
}

// CatalogItemResponse is a part or a service.
type CatalogItemResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// QuoteDisplay holds the values as people read them.
type QuoteDisplay struct {
	ClientName   string `json:"clientName"`
	VehicleLabel string `json:"vehicleLabel"`
	QuoteDate    string `json:"quoteDate"`
	ValidUntil   string `json:"validUntil"`
	Total        string `json:"total"`
}

// QuoteSummary is one row of the quote list.
type QuoteSummary struct {
	ID                   string           `json:"id"`
	Number               string           `json:"number"`
	ClientID             string           `json:"clientId"`
	VehicleID            string           `json:"vehicleId"`
	Client               *ClientResponse  `json:"client,omitempty"`
	Vehicle              *VehicleResponse `json:"vehicle,omitempty"`
	QuoteDate            domain.Date      `json:"quoteDate"`
	ValidUntil           domain.Date      `json:"validUntil"`
	Status               domain.Status    `json:"status"`
	Badge                domain.Badge     `json:"badge"`
	Total                domain.Money     `json:"total"`
	CanGenerateWorkOrder bool             `json:"canGenerateWorkOrder"`
	Display              QuoteDisplay     `json:"display"`
	CreatedAt            time.Time        `json:"createdAt,omitzero"`
	UpdatedAt            time.Time        `json:"updatedAt,omitzero"`
}

// LineDisplay holds a line's formatted amounts.
type LineDisplay struct {
	UnitPrice string `json:"unitPrice"`
	Subtotal  string `json:"subtotal"`
}

// PartsLineResponse is a stored parts line.
type PartsLineResponse struct {
	ID        string       `json:"id"`
	PartID    string       `json:"partId"`
	PartName  string       `json:"partName"`
	Quantity  int          `json:"quantity"`
	UnitPrice domain.Money `json:"unitPrice"`
	Subtotal  domain.Money `json:"subtotal"`
	Display   LineDisplay  `json:"display"`
}

// LaborLineResponse is a stored labor line.
type LaborLineResponse struct {
	ID          string          `json:"id"`
	ServiceID   string          `json:"serviceId"`
	ServiceName string          `json:"serviceName"`
	Hours       decimal.Decimal `json:"hours"`
	HourlyRate  domain.Money    `json:"hourlyRate"`
	Subtotal    domain.Money    `json:"subtotal"`
	Display     LineDisplay     `json:"display"`
}

// QuoteResponse is a full quote with its lines.
type QuoteResponse struct {
	QuoteSummary

	PartsLines []PartsLineResponse `json:"partsLines"`
	LaborLines []LaborLineResponse `json:"laborLines"`
}

// ToQuoteSummary converts a quote to a list row.
func ToQuoteSummary(q *domain.Quote) QuoteSummary {
	s := QuoteSummary{
		ID:                   q.ID,
		Number:               q.Number,
		ClientID:             q.ClientID,
		VehicleID:            q.VehicleID,
		QuoteDate:            q.QuoteDate,
		ValidUntil:           q.ValidUntil,
		Status:               q.Status,
		Badge:                q.Status.Badge(),
		Total:                q.Total(),
		CanGenerateWorkOrder: q.CanGenerateWorkOrder(),
		CreatedAt:            q.CreatedAt,
		UpdatedAt:            q.UpdatedAt,
		Display: QuoteDisplay{
			ClientName: q.ClientName(),
			QuoteDate:  q.QuoteDate.Display(),
			ValidUntil: q.ValidUntil.Display(),
			Total:      q.Total().Display(),
		},
	}

	if q.Client != nil {
		s.Client = &ClientResponse{ID: q.Client.ID, Name: q.Client.Name}
	}

	if q.Vehicle != nil {
		v := ToVehicleResponse(*q.Vehicle)
		s.Vehicle = &v
		s.Display.VehicleLabel = v.Label
	}

	return s
}

// ToQuoteSummaries converts a page of quotes.
func ToQuoteSummaries(quotes []*domain.Quote) []QuoteSummary {
	out := make([]QuoteSummary, 0, len(quotes))
	for _, q := range quotes {
		out = append(out, ToQuoteSummary(q))
	}

	return out
}

// ToQuoteResponse converts a quote with its lines.
func ToQuoteResponse(q *domain.Quote) *QuoteResponse {
	resp := &QuoteResponse{
		QuoteSummary: ToQuoteSummary(q),
		PartsLines:   make([]PartsLineResponse, 0, len(q.PartsLines())),
		LaborLines:   make([]LaborLineResponse, 0, len(q.LaborLines())),
	}

	for _, l := range q.PartsLines() {
		subtotal := l.Subtotal()
		resp.PartsLines = append(resp.PartsLines, PartsLineResponse{
			ID:        l.ID,
			PartID:    l.Part.ID,
			PartName:  l.Part.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Subtotal:  subtotal,
			Display:   LineDisplay{UnitPrice: l.UnitPrice.Display(), Subtotal: subtotal.Display()},
		})
	}

	for _, l := range q.LaborLines() {
		subtotal := l.Subtotal()
		resp.LaborLines = append(resp.LaborLines, LaborLineResponse{
			ID:          l.ID,
			ServiceID:   l.Service.ID,
			ServiceName: l.Service.Name,
			Hours:       l.Hours,
			HourlyRate:  l.HourlyRate,
			Subtotal:    subtotal,
			Display:     LineDisplay{UnitPrice: l.HourlyRate.Display(), Subtotal: subtotal.Display()},
		})
	}

	return resp
}

// ToVehicleResponse converts a catalog vehicle.
func ToVehicleResponse(v domain.Vehicle) VehicleResponse {
	return VehicleResponse{
		ID:       v.ID,
		ClientID: v.ClientID,
		Make:     v.Make,
		Model:    v.Model,
		Year:     v.Year,
		Plate:    v.Plate,
		Label:    v.Label(),
	}
}

// StatusOption is one entry of the status selector.
type StatusOption struct {
	Value domain.Status `json:"value"`
	Badge domain.Badge  `json:"badge"`
}

// FormOptionsResponse lists the editor choices.
type FormOptionsResponse struct {
	Clients     []ClientResponse      `json:"clients"`
	Vehicles    []VehicleResponse     `json:"vehicles"`
	VehicleHint string                `json:"vehicleHint,omitempty"`
	Parts       []CatalogItemResponse `json:"parts"`
	Services    []CatalogItemResponse `json:"services"`
	Statuses    []StatusOption        `json:"statuses"`
}

// ToFormOptionsResponse converts the editor choices.
func ToFormOptionsResponse(opts *app.FormOptions) *FormOptionsResponse {
	resp := &FormOptionsResponse{
		Clients:     make([]ClientResponse, 0, len(opts.Clients)),
		Vehicles:    make([]VehicleResponse, 0, len(opts.Vehicles)),
		VehicleHint: opts.VehicleHint,
		Parts:       make([]CatalogItemResponse, 0, len(opts.Parts)),
		Services:    make([]CatalogItemResponse, 0, len(opts.Services)),
		Statuses:    make([]StatusOption, 0, len(domain.Statuses)),
	}

	for _, c := range opts.Clients {
		resp.Clients = append(resp.Clients, ClientResponse{ID: c.ID, Name: c.Name})
	}

	for _, v := range opts.Vehicles {
		resp.Vehicles = append(resp.Vehicles, ToVehicleResponse(v))
	}

	for _, p := range opts.Parts {
		resp.Parts = append(resp.Parts, CatalogItemResponse{ID: p.ID, Name: p.Name})
	}

	for _, s := range opts.Services {
		resp.Services = append(resp.Services, CatalogItemResponse{ID: s.ID, Name: s.Name})
	}

	for _, s := range domain.Statuses {
		resp.Statuses = append(resp.Statuses, StatusOption{Value: s, Badge: s.Badge()})
	}

	return resp
}

// WorkOrderResponse acknowledges a work order request.
type WorkOrderResponse struct {
	QuoteID     string    `json:"quoteId"`
	Number      string    `json:"number"`
	RequestedAt time.Time `json:"requestedAt"`
}

// ToWorkOrderResponse converts the acknowledgement.
func ToWorkOrderResponse(req *app.WorkOrderRequest) *WorkOrderResponse {
	return &WorkOrderResponse{QuoteID: req.QuoteID, Number: req.Number, RequestedAt: req.RequestedAt}
}
