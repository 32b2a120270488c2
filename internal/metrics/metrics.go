package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "notepad"

// Metrics holds Prometheus metrics for the server
type Metrics struct {
	registry *prometheus.Registry

	RequestCounter  *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	NotesMigrated   prometheus.Counter
	NotesSkipped    prometheus.Counter
	MigrationErrors prometheus.Counter
	GuestSessions   prometheus.Gauge
}

// New registers all collectors on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		RequestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		NotesMigrated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notes_migrated_total",
			Help:      "Guest notes copied into accounts",
		}),
		NotesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notes_migration_skipped_total",
			Help:      "Guest notes skipped because the account already had them",
		}),
		MigrationErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "note_migration_errors_total",
			Help:      "Guest notes dropped because they could not be copied",
		}),
		GuestSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "guest_sessions_active",
			Help:      "Guest sessions held in memory",
		}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.RequestCounter,
		m.RequestDuration,
		m.NotesMigrated,
		m.NotesSkipped,
		m.MigrationErrors,
		m.GuestSessions,
	)
	return m
}

func (m *Metrics) ObserveMigration(migrated, skipped, failed int) {
	m.NotesMigrated.Add(float64(migrated))
	m.NotesSkipped.Add(float64(skipped))
	m.MigrationErrors.Add(float64(failed))
}

func (m *Metrics) SetGuestSessions(n int) {
	m.GuestSessions.Set(float64(n))
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request count and latency, labelled by chi route
// pattern so that note ids do not explode cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		m.RequestCounter.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.RequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
