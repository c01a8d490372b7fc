package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMetrics(t *testing.T) *Metrics {
	t.Helper()
	reg := prometheus.NewRegistry()
	return New("storefront", reg, reg)
}

func TestCounters(t *testing.T) {
	m := newTestMetrics(t)

	m.OrderCreated("combo_individual")
	m.OrderCreated("combo_individual")
	m.OrderCancelled()
	m.Checkin("checked_in")
	m.Checkin("already_used")
	m.SetTicketsSold(16)
	m.Published("storefront.order.created", nil)
	m.Published("storefront.order.created", errors.New("down"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.OrdersCreated.WithLabelValues("combo_individual")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OrdersCancelled))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Checkins.WithLabelValues("already_used")))
	assert.Equal(t, 16.0, testutil.ToFloat64(m.TicketsSold))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.KafkaPublish.WithLabelValues("storefront.order.created", "error")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.OrderCreated("x")
		m.OrderCancelled()
		m.Checkin("x")
		m.SetTicketsSold(1)
		m.Published("t", nil)
		m.Error("x")
	})
}

func TestMiddlewareAndHandler(t *testing.T) {
	m := newTestMetrics(t)

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/tickets/{orderId}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Handle("/metrics", m.Handler())

	req := httptest.NewRequest(http.MethodGet, "/api/tickets/abc", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/api/tickets/{orderId}", "404")))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "storefront_http_requests_total"))
}
