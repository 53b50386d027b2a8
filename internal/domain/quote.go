package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntityQuote is the entity name used in quote errors.
const EntityQuote = "quote"

// PartsLine quotes a quantity of a catalog part at a unit price.
type PartsLine struct {
	ID        string
	Part      Part
	Quantity  int
	UnitPrice Money
}

// Subtotal is quantity * unitPrice rounded to cents.
func (l PartsLine) Subtotal() Money {
	return l.UnitPrice.Times(decimal.NewFromInt(int64(l.Quantity))).Rounded()
}

func (l PartsLine) validate() error {
	var errs ValidationErrors

	if l.Part.ID == "" {
		errs = append(errs, &ValidationError{Field: "partId", Message: "part is required"})
	}

	if l.Quantity <= 0 {
		errs = append(errs, &ValidationError{Field: "quantity", Message: "must be a positive integer", Value: l.Quantity})
	}

	if l.UnitPrice.IsNegative() {
		errs = append(errs, &ValidationError{Field: "unitPrice", Message: "must not be negative", Value: l.UnitPrice.String()})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// LaborLine quotes hours of a catalog service at an hourly rate.
type LaborLine struct {
	ID         string
	Service    Service
	Hours      decimal.Decimal
	HourlyRate Money
}

// Subtotal is hours * hourlyRate rounded to cents.
func (l LaborLine) Subtotal() Money {
	return l.HourlyRate.Times(l.Hours).Rounded()
}

func (l LaborLine) validate() error {
	var errs ValidationErrors

	if l.Service.ID == "" {
		errs = append(errs, &ValidationError{Field: "serviceId", Message: "service is required"})
	}

	if l.Hours.IsNegative() {
		errs = append(errs, &ValidationError{Field: "hours", Message: "must not be negative", Value: l.Hours.String()})
	}

	if l.HourlyRate.IsNegative() {
		errs = append(errs, &ValidationError{Field: "hourlyRate", Message: "must not be negative", Value: l.HourlyRate.String()})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Quote is a priced proposal of parts and labor for one client's vehicle.
//
// Lines and the total are only reachable through methods so the total always
// equals the sum of the line subtotals. Number and ID are assigned by the
// repository; a quote that has not been stored has neither.
type Quote struct {
	ID         string
	Number     string
	ClientID   string
	VehicleID  string
	QuoteDate  Date
	ValidUntil Date
	Status     Status
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// Client and Vehicle are filled in on read for display and search.
	Client  *Client
	Vehicle *Vehicle

	partsLines []PartsLine
	laborLines []LaborLine
	total      Money
}

// QuoteHeader carries the fields a caller chooses when opening a quote.
type QuoteHeader struct {
	ClientID   string
	VehicleID  string
	QuoteDate  Date
	ValidUntil Date
}

// NewQuote opens a pending quote with no lines, a zero total and no number.
func NewQuote(h QuoteHeader) *Quote {
	return &Quote{
		ClientID:   h.ClientID,
		VehicleID:  h.VehicleID,
		QuoteDate:  h.QuoteDate,
		ValidUntil: h.ValidUntil,
		Status:     StatusPending,
		total:      Zero,
	}
}

// Total is the stored sum of line subtotals.
func (q *Quote) Total() Money {
	return q.total
}

// PartsLines returns a copy of the parts lines in insertion order.
func (q *Quote) PartsLines() []PartsLine {
	return slices.Clone(q.partsLines)
}

// LaborLines returns a copy of the labor lines in insertion order.
func (q *Quote) LaborLines() []LaborLine {
	return slices.Clone(q.laborLines)
}

// AddPartsLine appends a parts line and returns its identity.
func (q *Quote) AddPartsLine(part Part, quantity int, unitPrice Money) (string, error) {
	line := PartsLine{ID: uuid.NewString(), Part: part, Quantity: quantity, UnitPrice: unitPrice}
	if err := line.validate(); err != nil {
		return "", err
	}

	q.partsLines = append(q.partsLines, line)
	q.total = q.ComputeTotal()

	return line.ID, nil
}

// AddLaborLine appends a labor line and returns its identity.
func (q *Quote) AddLaborLine(service Service, hours decimal.Decimal, hourlyRate Money) (string, error) {
	line := LaborLine{ID: uuid.NewString(), Service: service, Hours: hours, HourlyRate: hourlyRate}
	if err := line.validate(); err != nil {
		return "", err
	}

	q.laborLines = append(q.laborLines, line)
	q.total = q.ComputeTotal()

	return line.ID, nil
}

// RemoveLine drops the parts or labor line with the given identity.
func (q *Quote) RemoveLine(lineID string) error {
	if i := slices.IndexFunc(q.partsLines, func(l PartsLine) bool { return l.ID == lineID }); i >= 0 {
		q.partsLines = slices.Delete(q.partsLines, i, i+1)
		q.total = q.ComputeTotal()

		return nil
	}

	if i := slices.IndexFunc(q.laborLines, func(l LaborLine) bool { return l.ID == lineID }); i >= 0 {
		q.laborLines = slices.Delete(q.laborLines, i, i+1)
		q.total = q.ComputeTotal()

		return nil
	}

	return NewNotFoundError("quote line", lineID)
}

// ReplaceLines swaps both line sets at once. Every line is validated before
// anything changes; lines without an identity are given one.
func (q *Quote) ReplaceLines(parts []PartsLine, labor []LaborLine) error {
	parts = slices.Clone(parts)
	labor = slices.Clone(labor)

	for i := range parts {
		if err := parts[i].validate(); err != nil {
			return err
		}

		if parts[i].ID == "" {
			parts[i].ID = uuid.NewString()
		}
	}

	for i := range labor {
		if err := labor[i].validate(); err != nil {
			return err
		}

		if labor[i].ID == "" {
			labor[i].ID = uuid.NewString()
		}
	}

	q.partsLines = parts
	q.laborLines = labor
	q.total = q.ComputeTotal()

	return nil
}

// ComputeTotal sums the rounded subtotals of every line. It does not modify q.
func (q *Quote) ComputeTotal() Money {
	return LinesTotal(q.partsLines, q.laborLines)
}

// LinesTotal is the total a quote holding exactly these lines would carry.
func LinesTotal(parts []PartsLine, labor []LaborLine) Money {
	total := Zero
	for _, l := range parts {
		total = total.Add(l.Subtotal())
	}

	for _, l := range labor {
		total = total.Add(l.Subtotal())
	}

	return total
}

// CanGenerateWorkOrder reports whether the work order action is offered.
func (q *Quote) CanGenerateWorkOrder() bool {
	return q.Status.CanGenerateWorkOrder()
}

// ClientName is the populated client's name, or "".
func (q *Quote) ClientName() string {
	if q.Client == nil {
		return ""
	}

	return q.Client.Name
}

// QuoteLines is a complete replacement for a quote's lines.
type QuoteLines struct {
	Parts []PartsLine
	Labor []LaborLine
}

// Total is the sum of the line subtotals.
func (l QuoteLines) Total() Money {
	return LinesTotal(l.Parts, l.Labor)
}

// QuotePatch lists the fields an update changes; nil fields are left alone.
// The number is immutable and the total follows Lines, so neither appears here.
type QuotePatch struct {
	ClientID   *string
	VehicleID  *string
	QuoteDate  *Date
	ValidUntil *Date
	Status     *Status
	Lines      *QuoteLines
}

// IsEmpty reports whether the patch changes nothing.
func (p QuotePatch) IsEmpty() bool {
	return p.ClientID == nil && p.VehicleID == nil && p.QuoteDate == nil &&
		p.ValidUntil == nil && p.Status == nil && p.Lines == nil
}

// Apply writes the patch onto q. Status changes must satisfy the lifecycle.
func (q *Quote) Apply(p QuotePatch) error {
	if p.Status != nil && !q.Status.CanTransitionTo(*p.Status) {
		return NewConflictError(EntityQuote,
			"cannot move from "+string(q.Status)+" to "+string(*p.Status))
	}

	if p.Lines != nil {
		if err := q.ReplaceLines(p.Lines.Parts, p.Lines.Labor); err != nil {
			return err
		}
	}

	if p.ClientID != nil {
		q.ClientID = *p.ClientID
	}

	if p.VehicleID != nil {
		q.VehicleID = *p.VehicleID
	}

	if p.QuoteDate != nil {
		q.QuoteDate = *p.QuoteDate
	}

	if p.ValidUntil != nil {
		q.ValidUntil = *p.ValidUntil
	}

	if p.Status != nil {
		q.Status = *p.Status
	}

	return nil
}

// Clone returns a deep copy of q.
func (q *Quote) Clone() *Quote {
	c := *q
	c.partsLines = slices.Clone(q.partsLines)
	c.laborLines = slices.Clone(q.laborLines)

	if q.Client != nil {
		client := *q.Client
		c.Client = &client
	}

	if q.Vehicle != nil {
		vehicle := *q.Vehicle
		c.Vehicle = &vehicle
	}

	return &c
}
