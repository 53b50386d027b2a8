// Package app contains the quote use cases. It orchestrates the repository,
// the catalog and the event publisher through port interfaces only.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jsamuelsen/autoshop-quotes/internal/domain"
	"github.com/jsamuelsen/autoshop-quotes/internal/platform/metrics"
	"github.com/jsamuelsen/autoshop-quotes/internal/ports"
)

// VehicleHintNoClient is shown in place of the vehicle list until a client
// is chosen.
const VehicleHintNoClient = "Selecione um cliente primeiro"

const (
	defaultPageSize = 20
	maxPageSize     = 100

	// vehicleLookupLimit caps concurrent per-client vehicle lookups.
	vehicleLookupLimit = 4
)

// QuoteService orchestrates quote use cases.
type QuoteService struct {
	repo      ports.QuoteRepository
	catalog   ports.Catalog
	publisher ports.EventPublisher
	flags     ports.FeatureFlags
	metrics   *metrics.Quotes
	renderer  ports.DocumentRenderer
	exec      *Executor
	logger    *slog.Logger
	now       func() time.Time

	defaultPageSize int
	maxPageSize     int
}

// QuoteServiceConfig contains the quote service dependencies. Repo and
// Catalog are required; everything else is optional.
type QuoteServiceConfig struct {
	Repo      ports.QuoteRepository
	Catalog   ports.Catalog
	Publisher ports.EventPublisher
	Flags     ports.FeatureFlags
	Metrics   *metrics.Quotes
	Renderer  ports.DocumentRenderer
	Logger    *slog.Logger

	DefaultPageSize int
	MaxPageSize     int

	// Now overrides the event clock in tests.
	Now func() time.Time
}

// NewQuoteService creates a quote service. It panics if a required
// dependency is missing.
func NewQuoteService(cfg QuoteServiceConfig) *QuoteService {
	if cfg.Repo == nil {
		panic("app: QuoteServiceConfig.Repo is required")
	}

	if cfg.Catalog == nil {
		panic("app: QuoteServiceConfig.Catalog is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	s := &QuoteService{
		repo:            cfg.Repo,
		catalog:         newMemoCatalog(cfg.Catalog),
		publisher:       cfg.Publisher,
		flags:           cfg.Flags,
		metrics:         cfg.Metrics,
		renderer:        cfg.Renderer,
		exec:            NewExecutor(logger),
		logger:          logger,
		now:             now,
		defaultPageSize: cfg.DefaultPageSize,
		maxPageSize:     cfg.MaxPageSize,
	}

	if s.defaultPageSize <= 0 {
		s.defaultPageSize = defaultPageSize
	}

	if s.maxPageSize <= 0 {
		s.maxPageSize = maxPageSize
	}

	return s
}

// ListQuery selects one page of the filtered quote list.
type ListQuery struct {
	Filter domain.QuoteFilter

	// Limit is clamped to the configured maximum. Zero uses the default.
	Limit int

	// After is the ID of the last quote of the previous page.
	After string
}

// QuotePage is one page of the filtered list.
type QuotePage struct {
	Items   []*domain.Quote
	HasMore bool
}

// List returns the quotes matching the query's filter, newest first, with
// Client and Vehicle populated where the catalog knows them. A catalog
// outage degrades to a list without names rather than failing.
func (s *QuoteService) List(ctx context.Context, query ListQuery) (*QuotePage, error) {
	quotes, clients, err := Parallel2(ctx,
		s.repo.List,
		s.lenientClients,
	)
	if err != nil {
		return nil, err
	}

	attachClients(quotes, clients)

	limit := s.pageSize(ctx, query.Limit)
	items := make([]*domain.Quote, 0, limit+1)
	skipping := query.After != ""

	for q := range query.Filter.Apply(quotes) {
		if skipping {
			skipping = q.ID != query.After
			continue
		}

		items = append(items, q)
		if len(items) > limit {
			break
		}
	}

	if skipping {
		return nil, domain.NewValidationErrorWithValue("cursor", "does not point into this listing", query.After)
	}

	page := &QuotePage{Items: items, HasMore: len(items) > limit}
	if page.HasMore {
		page.Items = items[:limit]
	}

	s.attachVehicles(ctx, page.Items)

	s.logger.DebugContext(ctx, "listed quotes",
		slog.Int("matched", len(page.Items)),
		slog.Bool("has_more", page.HasMore),
	)

	return page, nil
}

func (s *QuoteService) pageSize(ctx context.Context, requested int) int {
	maxSize := s.maxPageSize
	if s.flags != nil {
		maxSize = s.flags.GetInt(ctx, ports.FlagMaxPageSize, maxSize)
	}

	size := requested
	if size <= 0 {
		size = s.defaultPageSize
	}

	return max(1, min(size, maxSize))
}

// Get returns one quote with its client and vehicle populated.
func (s *QuoteService) Get(ctx context.Context, id string) (*domain.Quote, error) {
	q, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.enrich(ctx, q)

	return q, nil
}

// Create stores a new quote drafted by the editor.
func (s *QuoteService) Create(ctx context.Context, draft *domain.Quote) (*domain.Quote, error) {
	return Execute(ctx, s.exec, Operation[*domain.Quote, *domain.Quote, *domain.Quote, *domain.Quote]{
		Name:     "create_quote",
		Validate: validateDraft,
		Perform: func(ctx context.Context, draft *domain.Quote) (*domain.Quote, error) {
			return s.repo.Create(ctx, draft)
		},
		Verify: func(_ context.Context, draft *domain.Quote, saved *domain.Quote) (*domain.Quote, error) {
			if saved == nil || saved.ID == "" || saved.Number == "" {
				return nil, domain.NewRepositoryError("create", errors.New("store did not assign an id and number"))
			}

			if saved.Status != domain.StatusPending {
				return nil, domain.NewRepositoryError("create", fmt.Errorf("store returned status %q", saved.Status))
			}

			if !saved.Total().Equal(draft.ComputeTotal()) {
				return nil, domain.NewRepositoryError("create",
					fmt.Errorf("stored total %s does not match lines total %s", saved.Total(), draft.ComputeTotal()))
			}

			return saved, nil
		},
		Archive: func(ctx context.Context, _ *domain.Quote, saved *domain.Quote) error {
			s.metrics.QuoteCreated(saved.Total().Decimal().InexactFloat64())
			s.announce(ctx, newQuoteEvent(EventQuoteCreated, saved, s.now()))

			return nil
		},
		Respond: func(ctx context.Context, _ *domain.Quote, saved *domain.Quote) (*domain.Quote, error) {
			s.enrich(ctx, saved)
			return saved, nil
		},
	}, draft)
}

func validateDraft(_ context.Context, draft *domain.Quote) error {
	if draft == nil {
		return domain.NewValidationError("quote", "is required")
	}

	var errs domain.ValidationErrors

	if draft.ID != "" || draft.Number != "" {
		errs = append(errs, &domain.ValidationError{Field: "number", Message: "is assigned when the quote is stored"})
	}

	if draft.Status != domain.StatusPending {
		errs = append(errs, &domain.ValidationError{Field: "status", Message: "new quotes start as " + string(domain.StatusPending), Value: draft.Status})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// updateInput pairs a quote ID with the patch to apply.
type updateInput struct {
	id    string
	patch domain.QuotePatch
}

// updateResult keeps the state before and after an update for archiving.
type updateResult struct {
	before *domain.Quote
	after  *domain.Quote
}

// Update applies a patch of mutable fields to a stored quote. The patch is
// checked against the current state before it is sent to the store.
func (s *QuoteService) Update(ctx context.Context, id string, patch domain.QuotePatch) (*domain.Quote, error) {
	return s.update(ctx, "update_quote", id, patch)
}

// ChangeStatus moves a quote through its lifecycle. Re-applying the current
// status returns the quote unchanged and announces nothing.
func (s *QuoteService) ChangeStatus(ctx context.Context, id string, status domain.Status) (*domain.Quote, error) {
	if !status.Valid() {
		return nil, domain.NewValidationErrorWithValue("status", "unknown status", string(status))
	}

	return s.update(ctx, "change_quote_status", id, domain.QuotePatch{Status: &status})
}

func (s *QuoteService) update(ctx context.Context, name, id string, patch domain.QuotePatch) (*domain.Quote, error) {
	return Execute(ctx, s.exec, Operation[updateInput, updateResult, updateResult, *domain.Quote]{
		Name: name,
		Validate: func(_ context.Context, in updateInput) error {
			if in.id == "" {
				return domain.NewValidationError("id", "is required")
			}

			if in.patch.IsEmpty() {
				return domain.NewValidationError("patch", "nothing to update")
			}

			return nil
		},
		Perform: func(ctx context.Context, in updateInput) (updateResult, error) {
			current, err := s.repo.Get(ctx, in.id)
			if err != nil {
				return updateResult{}, err
			}

			next := current.Clone()
			if err := next.Apply(in.patch); err != nil {
				return updateResult{}, err
			}

			if reappliesStatus(in.patch, current) {
				return updateResult{before: current, after: current}, nil
			}

			saved, err := s.repo.Update(ctx, in.id, in.patch)
			if err != nil {
				return updateResult{}, err
			}

			return updateResult{before: current, after: saved}, nil
		},
		Verify: func(_ context.Context, in updateInput, res updateResult) (updateResult, error) {
			if res.after == nil {
				return res, domain.NewRepositoryError("update", errors.New("store returned no quote"))
			}

			if res.after.Number != res.before.Number {
				return res, domain.NewRepositoryError("update",
					fmt.Errorf("quote number changed from %s to %s", res.before.Number, res.after.Number))
			}

			if in.patch.Lines != nil && !res.after.Total().Equal(in.patch.Lines.Total()) {
				return res, domain.NewRepositoryError("update",
					fmt.Errorf("stored total %s does not match lines total %s", res.after.Total(), in.patch.Lines.Total()))
			}

			return res, nil
		},
		Archive: func(ctx context.Context, _ updateInput, res updateResult) error {
			if res.after == res.before {
				return nil
			}

			if res.after.Status != res.before.Status {
				s.metrics.StatusChanged(string(res.after.Status))

				event := newQuoteEvent(EventQuoteStatusChanged, res.after, s.now())
				event.PreviousStatus = string(res.before.Status)
				s.announce(ctx, event)

				return nil
			}

			s.metrics.QuoteUpdated()
			s.announce(ctx, newQuoteEvent(EventQuoteUpdated, res.after, s.now()))

			return nil
		},
		Respond: func(ctx context.Context, _ updateInput, res updateResult) (*domain.Quote, error) {
			s.enrich(ctx, res.after)
			return res.after, nil
		},
	}, updateInput{id: id, patch: patch})
}

// reappliesStatus reports a patch that only sets the status the quote
// already has.
func reappliesStatus(p domain.QuotePatch, current *domain.Quote) bool {
	if p.Status == nil || *p.Status != current.Status {
		return false
	}

	p.Status = nil

	return p.IsEmpty()
}

// Delete removes a quote. Callers must pass confirmed=true; without it the
// request is rejected and nothing is removed.
func (s *QuoteService) Delete(ctx context.Context, id string, confirmed bool) error {
	_, err := Execute(ctx, s.exec, Operation[string, *domain.Quote, *domain.Quote, struct{}]{
		Name: "delete_quote",
		Validate: func(_ context.Context, id string) error {
			if id == "" {
				return domain.NewValidationError("id", "is required")
			}

			if !confirmed {
				return domain.NewValidationError("confirm", "deleting a quote must be confirmed")
			}

			return nil
		},
		Perform: func(ctx context.Context, id string) (*domain.Quote, error) {
			current, err := s.repo.Get(ctx, id)
			if err != nil {
				return nil, err
			}

			if err := s.repo.Delete(ctx, id); err != nil {
				return nil, err
			}

			return current, nil
		},
		Verify: func(_ context.Context, id string, deleted *domain.Quote) (*domain.Quote, error) {
			if deleted == nil {
				return nil, domain.NewNotFoundError(domain.EntityQuote, id)
			}

			return deleted, nil
		},
		Archive: func(ctx context.Context, _ string, deleted *domain.Quote) error {
			s.metrics.QuoteDeleted()
			s.announce(ctx, newQuoteEvent(EventQuoteDeleted, deleted, s.now()))

			return nil
		},
	}, id)

	return err
}

// WorkOrderRequest acknowledges a work order request for an approved quote.
type WorkOrderRequest struct {
	QuoteID     string
	Number      string
	RequestedAt time.Time
}

// GenerateWorkOrder requests a work order for an approved quote. The request
// is handed to the event publisher; when publishing is off it is only logged.
func (s *QuoteService) GenerateWorkOrder(ctx context.Context, id string) (*WorkOrderRequest, error) {
	q, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !q.CanGenerateWorkOrder() {
		return nil, domain.NewForbiddenError("generate work order",
			"quote "+q.Number+" is "+string(q.Status)+", not "+string(domain.StatusApproved))
	}

	req := &WorkOrderRequest{QuoteID: q.ID, Number: q.Number, RequestedAt: s.now().UTC()}
	event := newQuoteEvent(EventQuoteWorkOrderRequested, q, req.RequestedAt)

	if err := s.publish(ctx, event); err != nil {
		return nil, err
	}

	s.metrics.WorkOrderRequested()
	s.logger.InfoContext(ctx, "work order requested",
		slog.String("quote_id", q.ID),
		slog.String("number", q.Number),
	)

	return req, nil
}

// RenderDocument produces the printable quote and its MIME type.
func (s *QuoteService) RenderDocument(ctx context.Context, id string) ([]byte, string, error) {
	if s.renderer == nil {
		return nil, "", domain.NewUnavailableError("documents", "no renderer configured")
	}

	q, err := s.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}

	doc, err := s.renderer.Render(ctx, q)
	if err != nil {
		return nil, "", fmt.Errorf("rendering quote %s: %w", q.Number, err)
	}

	return doc, s.renderer.ContentType(), nil
}

// FormOptions are the choices offered by the quote editor.
type FormOptions struct {
	Clients  []domain.Client
	Vehicles []domain.Vehicle

	// VehicleHint replaces the vehicle list when no client is selected.
	VehicleHint string

	Parts    []domain.Part
	Services []domain.Service
}

// FormOptions loads the editor choices. Vehicles are only listed for the
// selected client.
func (s *QuoteService) FormOptions(ctx context.Context, clientID string) (*FormOptions, error) {
	clients, parts, services, err := Parallel3(ctx,
		s.catalog.Clients,
		s.catalog.Parts,
		s.catalog.Services,
	)
	if err != nil {
		return nil, err
	}

	opts := &FormOptions{
		Clients:  clients,
		Vehicles: []domain.Vehicle{},
		Parts:    parts,
		Services: services,
	}

	if clientID == "" {
		opts.VehicleHint = VehicleHintNoClient
		return opts, nil
	}

	vehicles, err := s.catalog.VehiclesByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}

	opts.Vehicles = vehicles

	return opts, nil
}

// announce publishes event and only logs a failure. The write it describes
// has already been stored.
func (s *QuoteService) announce(ctx context.Context, event QuoteEvent) {
	if err := s.publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "quote event not published",
			slog.String("event", event.Type),
			slog.String("quote_id", event.QuoteID),
			slog.Any("error", err),
		)
	}
}

func (s *QuoteService) publish(ctx context.Context, event QuoteEvent) error {
	if s.publisher == nil || (s.flags != nil && !s.flags.IsEnabled(ctx, ports.FlagPublishEvents, true)) {
		s.metrics.EventPublished(event.Type, "skipped")
		return nil
	}

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.metrics.EventPublished(event.Type, "error")
		return fmt.Errorf("publishing %s: %w", event.Type, err)
	}

	s.metrics.EventPublished(event.Type, "ok")

	return nil
}

// lenientClients loads the client list for name lookups. Failures are logged
// and yield no clients so listing still works.
func (s *QuoteService) lenientClients(ctx context.Context) ([]domain.Client, error) {
	clients, err := s.catalog.Clients(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "client names unavailable", slog.Any("error", err))
		return nil, nil
	}

	return clients, nil
}

func attachClients(quotes []*domain.Quote, clients []domain.Client) {
	if len(clients) == 0 {
		return
	}

	byID := make(map[string]domain.Client, len(clients))
	for _, c := range clients {
		byID[c.ID] = c
	}

	for _, q := range quotes {
		if q.Client != nil {
			continue
		}

		if c, ok := byID[q.ClientID]; ok {
			q.Client = &c
		}
	}
}

// attachVehicles looks up the vehicles of every client on the page, one
// catalog call per distinct client.
func (s *QuoteService) attachVehicles(ctx context.Context, quotes []*domain.Quote) {
	clientIDs := make([]string, 0, len(quotes))
	for _, q := range quotes {
		if q.Vehicle == nil && q.ClientID != "" {
			clientIDs = append(clientIDs, q.ClientID)
		}
	}

	if len(clientIDs) == 0 {
		return
	}

	results := LookupEach(ctx, vehicleLookupLimit, clientIDs, s.catalog.VehiclesByClient)

	for _, q := range quotes {
		if q.Vehicle != nil {
			continue
		}

		res, ok := results[q.ClientID]
		if !ok {
			continue
		}

		if res.Err != nil {
			s.logger.WarnContext(ctx, "vehicles unavailable",
				slog.String("client_id", q.ClientID),
				slog.Any("error", res.Err),
			)

			continue
		}

		for _, v := range res.Value {
			if v.ID == q.VehicleID {
				q.Vehicle = &v
				break
			}
		}
	}
}

func (s *QuoteService) enrich(ctx context.Context, q *domain.Quote) {
	if q == nil {
		return
	}

	clients, _ := s.lenientClients(ctx)
	attachClients([]*domain.Quote{q}, clients)
	s.attachVehicles(ctx, []*domain.Quote{q})
}
