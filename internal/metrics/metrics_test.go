package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/coffee-order/internal/core/domain"
	"github.com/rl1809/coffee-order/internal/core/dto"
)

func TestObserveRegistration(t *testing.T) {
	m := NewServerMetrics("order")

	m.ObserveRegistration(nil)
	m.ObserveRegistration(nil)
	m.ObserveRegistration(&domain.NotFoundError{Entity: "product"})
	m.ObserveRegistration(errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.OrdersRegistered))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RegistrationFailures.WithLabelValues("product_not_found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RegistrationFailures.WithLabelValues("internal")))
}

func TestObserveRegistration_NilReceiver(t *testing.T) {
	var m *ServerMetrics
	assert.NotPanics(t, func() { m.ObserveRegistration(nil) })
}

func TestReason(t *testing.T) {
	assert.Equal(t, "invalid_request", Reason(dto.ErrInvalidRequest))
	assert.Equal(t, "product_not_found", Reason(domain.ErrNotFound))
	assert.Equal(t, "internal", Reason(errors.New("x")))
}

func TestObserveDuplicate(t *testing.T) {
	m := NewServerMetrics("order")
	m.ObserveDuplicate()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RegistrationFailures.WithLabelValues("duplicate_request")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.OrdersRegistered))

	var nilMetrics *ServerMetrics
	assert.NotPanics(t, nilMetrics.ObserveDuplicate)
}

func TestMiddleware_RecordsRoutePattern(t *testing.T) {
	m := NewServerMetrics("order")

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/v1/orders/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	r.Method(http.MethodGet, "/metrics", m.Handler())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/orders/123", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("/api/v1/orders/{id}", "418")))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "coffee_order_http_requests_total"))
}
