// Package metrics holds the Prometheus instruments shared by the curation services.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "kmu_curator"

// Label values
const (
	ResultHit      = "hit"
	ResultMiss     = "miss"
	ResultError    = "error"
	ResultOK       = "ok"
	ResultApplied  = "applied"
	ResultRefused  = "refused"
	OutcomeCurated = "curated"
	OutcomeNoData  = "no_data"
	OutcomeCached  = "cached"
)

type Metrics struct {
	gatherer prometheus.Gatherer

	CacheLookups *prometheus.CounterVec
	CacheWrites        *prometheus.CounterVec
	CacheInvalidations *prometheus.CounterVec
	Transitions        *prometheus.CounterVec
	Ingested           *prometheus.CounterVec
	Answers            *prometheus.CounterVec
	ToolCalls          *prometheus.CounterVec
	ToolDuration       *prometheus.HistogramVec
}

// New registers all instruments on reg. Tests pass a fresh prometheus.NewRegistry().
func New(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		gatherer: reg,
		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "answer_cache_lookups_total",
			Help:      "Answer cache lookups by result.",
		}, []string{"result"}),
		CacheWrites: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "answer_cache_writes_total",
			Help:      "Answer cache writes by result.",
		}, []string{"result"}),
		CacheInvalidations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "answer_cache_invalidations_total",
			Help:      "Department-wide answer cache invalidations by result.",
		}, []string{"result"}),
		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "moderation_transitions_total",
			Help:      "Moderation transition attempts by action and result.",
		}, []string{"action", "result"}),
		Ingested: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "candidates_ingested_total",
			Help:      "Tool candidates created in pending status by department.",
		}, []string{"department"}),
		Answers: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "answers_total",
			Help:      "Answers served by department and outcome.",
		}, []string{"department", "outcome"}),
		ToolCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_calls_total",
			Help:      "MCP tool invocations by tool and result.",
		}, []string{"tool", "result"}),
		ToolDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tool_call_duration_seconds",
			Help:      "MCP tool handler latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"tool"}),
	}
}

// Handler serves the registry for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) CacheLookup(result string) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) CacheWrite(result string) {
	if m == nil {
		return
	}
	m.CacheWrites.WithLabelValues(result).Inc()
}

func (m *Metrics) CacheInvalidation(result string) {
	if m == nil {
		return
	}
	m.CacheInvalidations.WithLabelValues(result).Inc()
}

func (m *Metrics) Transition(action, result string) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(action, result).Inc()
}

func (m *Metrics) Ingest(department string) {
	if m == nil {
		return
	}
	m.Ingested.WithLabelValues(department).Inc()
}

func (m *Metrics) Answer(department, outcome string) {
	if m == nil {
		return
	}
	m.Answers.WithLabelValues(department, outcome).Inc()
}

func (m *Metrics) ToolCall(tool string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	m.ToolCalls.WithLabelValues(tool, result).Inc()
	m.ToolDuration.WithLabelValues(tool).Observe(elapsed.Seconds())
}
