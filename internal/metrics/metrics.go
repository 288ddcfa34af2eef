package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rl1809/coffee-order/internal/core/domain"
	"github.com/rl1809/coffee-order/internal/core/dto"
)

const namespace = "coffee"

type ServerMetrics struct {
	Requests             *prometheus.CounterVec
	LatencyMS            *prometheus.HistogramVec
	OrdersRegistered     prometheus.Counter
	RegistrationFailures *prometheus.CounterVec

	registry *prometheus.Registry
}

func NewServerMetrics(service string) *ServerMetrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: service,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"handler", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: service,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"handler"})
	registered := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: service,
		Name:      "orders_registered_total",
		Help:      "Orders registered successfully.",
	})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: service,
		Name:      "order_registration_failures_total",
		Help:      "Order registrations that failed, by reason.",
	}, []string{"reason"})

	registry := prometheus.NewRegistry()
	registry.MustRegister(requests, latency, registered, failures)

	return &ServerMetrics{
		Requests:             requests,
		LatencyMS:            latency,
		OrdersRegistered:     registered,
		RegistrationFailures: failures,
		registry:             registry,
	}
}

func (m *ServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request count and latency per chi route pattern.
func (m *ServerMetrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.Requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
		m.LatencyMS.WithLabelValues(route).Observe(float64(time.Since(start).Microseconds()) / 1000)
	})
}

// ObserveRegistration counts the outcome of one registration attempt.
// It is safe to call on a nil receiver.
func (m *ServerMetrics) ObserveRegistration(err error) {
	if m == nil {
		return
	}
	if err == nil {
		m.OrdersRegistered.Inc()
		return
	}
	m.RegistrationFailures.WithLabelValues(Reason(err)).Inc()
}

// ObserveDuplicate counts a registration rejected for a reused
// idempotency key. It is safe to call on a nil receiver.
func (m *ServerMetrics) ObserveDuplicate() {
	if m == nil {
		return
	}
	m.RegistrationFailures.WithLabelValues("duplicate_request").Inc()
}

func Reason(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return "product_not_found"
	case errors.Is(err, dto.ErrInvalidRequest):
		return "invalid_request"
	default:
		return "internal"
	}
}
