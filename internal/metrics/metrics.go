package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/serroba/shortlink/internal/shortener"
)

const namespace = "shortlink"

// Shortener records allocation and resolution outcomes as Prometheus counters.
type Shortener struct {
	registry    *prometheus.Registry
	allocations *prometheus.CounterVec
	collisions  prometheus.Counter
	resolutions *prometheus.CounterVec
}

// New creates the shortener metrics and registers them, along with Go runtime
// and process collectors, on a fresh registry.
func New() *Shortener {
	m := &Shortener{
		registry: prometheus.NewRegistry(),
		allocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shorten_total",
			Help:      "Shorten calls by outcome (created, deduplicated, exhausted).",
		}, []string{"outcome"}),
		collisions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "code_collisions_total",
			Help:      "Candidate codes rejected because they were already allocated.",
		}),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolve_total",
			Help:      "Resolve calls by result (hit, miss).",
		}, []string{"result"}),
	}

	m.registry.MustRegister(
		m.allocations,
		m.collisions,
		m.resolutions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

func (m *Shortener) Allocated()    { m.allocations.WithLabelValues("created").Inc() }
func (m *Shortener) Deduplicated() { m.allocations.WithLabelValues("deduplicated").Inc() }
func (m *Shortener) Exhausted()    { m.allocations.WithLabelValues("exhausted").Inc() }
func (m *Shortener) Collision()    { m.collisions.Inc() }

func (m *Shortener) Resolved(found bool) {
	result := "miss"
	if found {
		result = "hit"
	}

	m.resolutions.WithLabelValues(result).Inc()
}

// Registry exposes the underlying registry.
func (m *Shortener) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Shortener) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

var _ shortener.Observer = (*Shortener)(nil)
