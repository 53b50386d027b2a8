package app

import (
	"context"
	"errors"
	"log/slog"
	"reflect"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/jsamuelsen/autoshop-quotes/internal/domain"
	"github.com/jsamuelsen/autoshop-quotes/internal/platform/metrics"
	"github.com/jsamuelsen/autoshop-quotes/internal/ports"
)

// QuoteForm is the header the editor collects before a quote can be saved.
type QuoteForm struct {
	ClientID   string      `json:"clientId" validate:"required"`
	VehicleID  string      `json:"vehicleId" validate:"required"`
	QuoteDate  domain.Date `json:"quoteDate" validate:"required"`
	ValidUntil domain.Date `json:"validUntil" validate:"required"`
}

// requiredMessages are shown when a required field is left empty.
var requiredMessages = map[string]string{
	"clientId":   "Cliente é obrigatório",
	"vehicleId":  "Veículo é obrigatório",
	"quoteDate":  "Data do orçamento é obrigatória",
	"validUntil": "Validade é obrigatória",
}

const validityWindowMessage = "Validade deve ser igual ou posterior à data do orçamento"

var (
	formValidator     *validator.Validate
	formValidatorOnce sync.Once
)

// quoteFormValidator reports fields by their JSON names and treats an unset
// domain.Date as empty.
func quoteFormValidator() *validator.Validate {
	formValidatorOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}

			return name
		})
		v.RegisterCustomTypeFunc(func(field reflect.Value) any {
			if d, ok := field.Interface().(domain.Date); ok {
				return d.String()
			}

			return nil
		}, domain.Date{})

		formValidator = v
	})

	return formValidator
}

// QuoteStore is what the editor saves through. *QuoteService satisfies it.
type QuoteStore interface {
	Create(ctx context.Context, draft *domain.Quote) (*domain.Quote, error)
	Update(ctx context.Context, id string, patch domain.QuotePatch) (*domain.Quote, error)
}

// EditorConfig contains the editor dependencies. Store and Catalog are
// required.
type EditorConfig struct {
	Store   QuoteStore
	Catalog ports.Catalog
	Flags   ports.FeatureFlags
	Metrics *metrics.Quotes
	Logger  *slog.Logger
}

// PartsLineInput is a parts line as entered in the editor.
type PartsLineInput struct {
	PartID    string
	Quantity  int
	UnitPrice domain.Money
}

// LaborLineInput is a labor line as entered in the editor.
type LaborLineInput struct {
	ServiceID  string
	Hours      decimal.Decimal
	HourlyRate domain.Money
}

// QuoteEditor creates a new quote or edits an existing one. It is not safe
// for concurrent use except for Submit, which rejects overlapping calls.
type QuoteEditor struct {
	store   QuoteStore
	catalog ports.Catalog
	flags   ports.FeatureFlags
	metrics *metrics.Quotes
	logger  *slog.Logger

	form         QuoteForm
	draft        *domain.Quote
	existing     *domain.Quote
	linesChanged bool

	submitting atomic.Bool
}

// NewQuoteEditor opens an editor for a quote that has not been saved yet.
func NewQuoteEditor(cfg EditorConfig) *QuoteEditor {
	e := newEditor(cfg)
	e.draft = domain.NewQuote(domain.QuoteHeader{})

	return e
}

// EditQuote opens an editor on a stored quote. The quote itself is not
// modified; edits apply to a copy.
func EditQuote(cfg EditorConfig, q *domain.Quote) *QuoteEditor {
	e := newEditor(cfg)
	e.load(q)

	return e
}

func newEditor(cfg EditorConfig) *QuoteEditor {
	if cfg.Store == nil {
		panic("app: EditorConfig.Store is required")
	}

	if cfg.Catalog == nil {
		panic("app: EditorConfig.Catalog is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &QuoteEditor{
		store:   cfg.Store,
		catalog: newMemoCatalog(cfg.Catalog),
		flags:   cfg.Flags,
		metrics: cfg.Metrics,
		logger:  logger,
	}
}

func (e *QuoteEditor) load(q *domain.Quote) {
	e.existing = q
	e.draft = q.Clone()
	e.linesChanged = false
	e.form = QuoteForm{
		ClientID:   q.ClientID,
		VehicleID:  q.VehicleID,
		QuoteDate:  q.QuoteDate,
		ValidUntil: q.ValidUntil,
	}
}

// IsNew reports whether Submit will create rather than update.
func (e *QuoteEditor) IsNew() bool {
	return e.existing == nil
}

// Form returns the current header values.
func (e *QuoteEditor) Form() QuoteForm {
	return e.form
}

// Submitting reports whether a submit is in flight.
func (e *QuoteEditor) Submitting() bool {
	return e.submitting.Load()
}

// SelectClient sets the client and clears the vehicle, which belonged to
// the previous client.
func (e *QuoteEditor) SelectClient(clientID string) {
	if clientID != e.form.ClientID {
		e.form.VehicleID = ""
	}

	e.form.ClientID = clientID
}

// SelectVehicle sets the vehicle.
func (e *QuoteEditor) SelectVehicle(vehicleID string) {
	e.form.VehicleID = vehicleID
}

// SetQuoteDate sets the date the quote was issued.
func (e *QuoteEditor) SetQuoteDate(d domain.Date) {
	e.form.QuoteDate = d
}

// SetValidUntil sets the last day the quote is valid.
func (e *QuoteEditor) SetValidUntil(d domain.Date) {
	e.form.ValidUntil = d
}

// PartsLines returns the draft's parts lines.
func (e *QuoteEditor) PartsLines() []domain.PartsLine {
	return e.draft.PartsLines()
}

// LaborLines returns the draft's labor lines.
func (e *QuoteEditor) LaborLines() []domain.LaborLine {
	return e.draft.LaborLines()
}

// Total is the draft total as lines stand now.
func (e *QuoteEditor) Total() domain.Money {
	return e.draft.Total()
}

// AddPart appends a parts line for a catalog part and returns its line ID.
func (e *QuoteEditor) AddPart(ctx context.Context, in PartsLineInput) (string, error) {
	part, err := e.findPart(ctx, in.PartID)
	if err != nil {
		return "", err
	}

	id, err := e.draft.AddPartsLine(part, in.Quantity, in.UnitPrice)
	if err != nil {
		return "", err
	}

	e.linesChanged = true

	return id, nil
}

// AddService appends a labor line for a catalog service and returns its
// line ID.
func (e *QuoteEditor) AddService(ctx context.Context, in LaborLineInput) (string, error) {
	service, err := e.findService(ctx, in.ServiceID)
	if err != nil {
		return "", err
	}

	id, err := e.draft.AddLaborLine(service, in.Hours, in.HourlyRate)
	if err != nil {
		return "", err
	}

	e.linesChanged = true

	return id, nil
}

// RemoveLine drops a parts or labor line from the draft.
func (e *QuoteEditor) RemoveLine(lineID string) error {
	if err := e.draft.RemoveLine(lineID); err != nil {
		return err
	}

	e.linesChanged = true

	return nil
}

// SetLines replaces every line at once. Nothing changes if any line is
// rejected.
func (e *QuoteEditor) SetLines(ctx context.Context, parts []PartsLineInput, labor []LaborLineInput) error {
	partsLines, err := e.resolveParts(ctx, parts)
	if err != nil {
		return err
	}

	laborLines, err := e.resolveLabor(ctx, labor)
	if err != nil {
		return err
	}

	return e.replaceLines(partsLines, laborLines)
}

// SetPartsLines replaces the parts lines and keeps the labor lines as they
// are. Only the given parts are looked up in the catalog.
func (e *QuoteEditor) SetPartsLines(ctx context.Context, parts []PartsLineInput) error {
	partsLines, err := e.resolveParts(ctx, parts)
	if err != nil {
		return err
	}

	return e.replaceLines(partsLines, e.draft.LaborLines())
}

// SetLaborLines replaces the labor lines and keeps the parts lines as they
// are. Only the given services are looked up in the catalog.
func (e *QuoteEditor) SetLaborLines(ctx context.Context, labor []LaborLineInput) error {
	laborLines, err := e.resolveLabor(ctx, labor)
	if err != nil {
		return err
	}

	return e.replaceLines(e.draft.PartsLines(), laborLines)
}

func (e *QuoteEditor) replaceLines(parts []domain.PartsLine, labor []domain.LaborLine) error {
	if err := e.draft.ReplaceLines(parts, labor); err != nil {
		return err
	}

	e.linesChanged = true

	return nil
}

func (e *QuoteEditor) resolveParts(ctx context.Context, parts []PartsLineInput) ([]domain.PartsLine, error) {
	lines := make([]domain.PartsLine, 0, len(parts))
	if len(parts) == 0 {
		return lines, nil
	}

	catalogParts, err := e.catalog.Parts(ctx)
	if err != nil {
		return nil, err
	}

	for _, in := range parts {
		part, err := pickPart(catalogParts, in.PartID)
		if err != nil {
			return nil, err
		}

		lines = append(lines, domain.PartsLine{Part: part, Quantity: in.Quantity, UnitPrice: in.UnitPrice})
	}

	return lines, nil
}

func (e *QuoteEditor) resolveLabor(ctx context.Context, labor []LaborLineInput) ([]domain.LaborLine, error) {
	lines := make([]domain.LaborLine, 0, len(labor))
	if len(labor) == 0 {
		return lines, nil
	}

	catalogServices, err := e.catalog.Services(ctx)
	if err != nil {
		return nil, err
	}

	for _, in := range labor {
		service, err := pickService(catalogServices, in.ServiceID)
		if err != nil {
			return nil, err
		}

		lines = append(lines, domain.LaborLine{Service: service, Hours: in.Hours, HourlyRate: in.HourlyRate})
	}

	return lines, nil
}

func (e *QuoteEditor) findPart(ctx context.Context, id string) (domain.Part, error) {
	parts, err := e.catalog.Parts(ctx)
	if err != nil {
		return domain.Part{}, err
	}

	return pickPart(parts, id)
}

func (e *QuoteEditor) findService(ctx context.Context, id string) (domain.Service, error) {
	services, err := e.catalog.Services(ctx)
	if err != nil {
		return domain.Service{}, err
	}

	return pickService(services, id)
}

func pickPart(parts []domain.Part, id string) (domain.Part, error) {
	if id == "" {
		return domain.Part{}, domain.NewValidationError("partId", "part is required")
	}

	i := slices.IndexFunc(parts, func(p domain.Part) bool { return p.ID == id })
	if i < 0 {
		return domain.Part{}, domain.NewValidationErrorWithValue("partId", "unknown part", id)
	}

	return parts[i], nil
}

func pickService(services []domain.Service, id string) (domain.Service, error) {
	if id == "" {
		return domain.Service{}, domain.NewValidationError("serviceId", "service is required")
	}

	i := slices.IndexFunc(services, func(s domain.Service) bool { return s.ID == id })
	if i < 0 {
		return domain.Service{}, domain.NewValidationErrorWithValue("serviceId", "unknown service", id)
	}

	return services[i], nil
}

// Validate checks the header. Every missing required field is reported.
func (e *QuoteEditor) Validate(ctx context.Context) error {
	var errs domain.ValidationErrors

	if err := quoteFormValidator().Struct(e.form); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}

		for _, fe := range fieldErrs {
			msg, ok := requiredMessages[fe.Field()]
			if !ok || fe.Tag() != "required" {
				msg = "failed validation: " + fe.Tag()
			}

			errs = append(errs, &domain.ValidationError{Field: fe.Field(), Message: msg})
		}
	}

	if e.enforceValidityWindow(ctx) && !e.form.QuoteDate.IsZero() && !e.form.ValidUntil.IsZero() &&
		e.form.ValidUntil.Before(e.form.QuoteDate) {
		errs = append(errs, &domain.ValidationError{
			Field:   "validUntil",
			Message: validityWindowMessage,
			Value:   e.form.ValidUntil.String(),
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

func (e *QuoteEditor) enforceValidityWindow(ctx context.Context) bool {
	return e.flags != nil && e.flags.IsEnabled(ctx, ports.FlagEnforceValidityWindow, false)
}

// Submit validates and saves the quote. A new quote is created; an existing
// one is updated with the header and, if they changed, the lines. On
// success onSuccess (if set) receives the saved quote and the editor
// switches to editing it. On failure the error is logged and returned, and
// onSuccess is not called. A call made while another is in flight fails
// with a conflict.
func (e *QuoteEditor) Submit(ctx context.Context, onSuccess func(*domain.Quote)) (*domain.Quote, error) {
	if !e.submitting.CompareAndSwap(false, true) {
		return nil, domain.NewConflictError(domain.EntityQuote, "a submit is already in progress")
	}
	defer e.submitting.Store(false)

	saved, err := e.save(ctx)
	if err != nil {
		e.metrics.SubmitFailed(failureKind(err))
		e.logger.ErrorContext(ctx, "quote submit failed",
			slog.Bool("new", e.IsNew()),
			slog.Any("error", err),
		)

		return nil, err
	}

	e.load(saved)

	if onSuccess != nil {
		onSuccess(saved)
	}

	return saved, nil
}

func (e *QuoteEditor) save(ctx context.Context) (*domain.Quote, error) {
	if err := e.Validate(ctx); err != nil {
		return nil, err
	}

	if e.IsNew() {
		draft := domain.NewQuote(domain.QuoteHeader{
			ClientID:   e.form.ClientID,
			VehicleID:  e.form.VehicleID,
			QuoteDate:  e.form.QuoteDate,
			ValidUntil: e.form.ValidUntil,
		})

		if err := draft.ReplaceLines(e.draft.PartsLines(), e.draft.LaborLines()); err != nil {
			return nil, err
		}

		return e.store.Create(ctx, draft)
	}

	return e.store.Update(ctx, e.existing.ID, e.patch())
}

func (e *QuoteEditor) patch() domain.QuotePatch {
	form := e.form
	patch := domain.QuotePatch{
		ClientID:   &form.ClientID,
		VehicleID:  &form.VehicleID,
		QuoteDate:  &form.QuoteDate,
		ValidUntil: &form.ValidUntil,
	}

	if e.linesChanged {
		patch.Lines = &domain.QuoteLines{
			Parts: e.draft.PartsLines(),
			Labor: e.draft.LaborLines(),
		}
	}

	return patch
}

func failureKind(err error) string {
	switch {
	case domain.IsValidation(err):
		return "validation"
	case domain.IsConflict(err):
		return "conflict"
	case domain.IsRepository(err):
		return "repository"
	case domain.IsNotFound(err):
		return "not_found"
	case domain.IsUnavailable(err):
		return "unavailable"
	default:
		return "other"
	}
}
