// Package metrics exposes the quote service's business counters to
// Prometheus. HTTP-level metrics are exported by the telemetry package.
package metrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Quotes records what happens to quotes. A nil *Quotes records nothing.
type Quotes struct {
	created       prometheus.Counter
	updated       prometheus.Counter
	deleted       prometheus.Counter
	statusChanges *prometheus.CounterVec
	workOrders    prometheus.Counter
	totals        prometheus.Histogram
	submitErrors  *prometheus.CounterVec
	catalogCache  *prometheus.CounterVec
	events        *prometheus.CounterVec
}

// NewQuotes registers the quote collectors with reg, or with the default
// registerer when reg is nil. Registering twice reuses the collectors.
func NewQuotes(reg prometheus.Registerer) *Quotes {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	return &Quotes{
		created: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quotes_created_total",
			Help: "Quotes stored by the repository.",
		})),
		updated: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quotes_updated_total",
			Help: "Quote edits saved.",
		})),
		deleted: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quotes_deleted_total",
			Help: "Quotes deleted after confirmation.",
		})),
		statusChanges: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quotes_status_changes_total",
			Help: "Quote status changes by target status.",
		}, []string{"status"})),
		workOrders: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quotes_work_orders_requested_total",
			Help: "Work orders requested from approved quotes.",
		})),
		totals: register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "quotes_total_amount_brl",
			Help:    "Total amount of saved quotes in BRL.",
			Buckets: []float64{100, 250, 500, 1000, 2500, 5000, 10000, 25000},
		})),
		submitErrors: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quotes_submit_errors_total",
			Help: "Failed editor submissions by error kind.",
		}, []string{"kind"})),
		catalogCache: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quotes_catalog_cache_requests_total",
			Help: "Catalog cache lookups by result (hit, miss, error).",
		}, []string{"result"})),
		events: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quotes_events_published_total",
			Help: "Quote events handed to the broker by type and outcome.",
		}, []string{"type", "outcome"})),
	}
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing
			}
		}

		panic(fmt.Sprintf("registering quote metric: %v", err))
	}

	return c
}

// QuoteCreated counts a stored quote and observes its total.
func (m *Quotes) QuoteCreated(total float64) {
	if m == nil {
		return
	}

	m.created.Inc()
	m.totals.Observe(total)
}

// QuoteUpdated counts a saved edit.
func (m *Quotes) QuoteUpdated() {
	if m == nil {
		return
	}

	m.updated.Inc()
}

// QuoteDeleted counts a deletion.
func (m *Quotes) QuoteDeleted() {
	if m == nil {
		return
	}

	m.deleted.Inc()
}

// StatusChanged counts a move to status.
func (m *Quotes) StatusChanged(status string) {
	if m == nil {
		return
	}

	m.statusChanges.WithLabelValues(status).Inc()
}

// WorkOrderRequested counts a work order hand-off.
func (m *Quotes) WorkOrderRequested() {
	if m == nil {
		return
	}

	m.workOrders.Inc()
}

// SubmitFailed counts a failed editor submit; kind is validation,
// conflict, repository or other.
func (m *Quotes) SubmitFailed(kind string) {
	if m == nil {
		return
	}

	m.submitErrors.WithLabelValues(kind).Inc()
}

// CatalogCache counts a cache lookup with result hit, miss or error.
func (m *Quotes) CatalogCache(result string) {
	if m == nil {
		return
	}

	m.catalogCache.WithLabelValues(result).Inc()
}

// EventPublished counts a publish attempt with outcome ok or error.
func (m *Quotes) EventPublished(eventType, outcome string) {
	if m == nil {
		return
	}

	m.events.WithLabelValues(eventType, outcome).Inc()
}
