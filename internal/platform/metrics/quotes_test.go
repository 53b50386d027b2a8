package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestQuotes_Record(t *testing.T) {
	m := NewQuotes(prometheus.NewRegistry())

	m.QuoteCreated(350)
	m.QuoteCreated(0)
	m.QuoteUpdated()
	m.QuoteDeleted()
	m.StatusChanged("Aprovado")
	m.StatusChanged("Aprovado")
	m.WorkOrderRequested()
	m.SubmitFailed("validation")
	m.CatalogCache("hit")
	m.CatalogCache("miss")
	m.EventPublished("quote.created", "ok")

	assert.InDelta(t, 2, testutil.ToFloat64(m.created), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.updated), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.deleted), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.statusChanges.WithLabelValues("Aprovado")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.workOrders), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.submitErrors.WithLabelValues("validation")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.catalogCache.WithLabelValues("hit")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.events.WithLabelValues("quote.created", "ok")), 0)
	assert.Equal(t, 1, testutil.CollectAndCount(m.totals))
}

func TestNewQuotes_RegisterTwiceReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()

	first := NewQuotes(reg)
	second := NewQuotes(reg)

	first.QuoteDeleted()

	assert.InDelta(t, 1, testutil.ToFloat64(second.deleted), 0)
}

func TestQuotes_NilIsNoop(t *testing.T) {
	var m *Quotes

	assert.NotPanics(t, func() {
		m.QuoteCreated(1)
		m.QuoteUpdated()
		m.QuoteDeleted()
		m.StatusChanged("Pendente")
		m.WorkOrderRequested()
		m.SubmitFailed("other")
		m.CatalogCache("error")
		m.EventPublished("quote.deleted", "error")
	})
}
