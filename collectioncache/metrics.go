package collectioncache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts proxy activity. A nil *Metrics records nothing.
type Metrics struct {
	// Requests by mode ("fetch", "count") and state ("hit", "miss", "forced", "degraded").
	Requests *prometheus.CounterVec
	// Computations by mode.
	Computations *prometheus.CounterVec
	// ComputationErrors by mode.
	ComputationErrors *prometheus.CounterVec
	// Writes by entry shape ("scalar", "reference_set", "count_only").
	Writes *prometheus.CounterVec
	// StoreErrors by operation ("read", "write", "delete").
	StoreErrors *prometheus.CounterVec
	// Invalidations by scope ("all", "class", "instance").
	Invalidations *prometheus.CounterVec
}

// NewMetrics registers the proxy counters on reg. A nil reg uses the default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "collection_cache_requests_total",
			Help: "Total number of collection cache requests",
		}, []string{"mode", "state"}),
		Computations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "collection_cache_computations_total",
			Help: "Total number of collection computations run on miss or refresh",
		}, []string{"mode"}),
		ComputationErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "collection_cache_computation_errors_total",
			Help: "Total number of failed collection computations",
		}, []string{"mode"}),
		Writes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "collection_cache_writes_total",
			Help: "Total number of entries written to the backing store",
		}, []string{"shape"}),
		StoreErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "collection_cache_store_errors_total",
			Help: "Total number of backing store errors",
		}, []string{"operation"}),
		Invalidations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "collection_cache_invalidations_total",
			Help: "Total number of bulk invalidations",
		}, []string{"scope"}),
	}
}

func (m *Metrics) request(mode Mode, state string) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(mode.String(), state).Inc()
}

func (m *Metrics) computation(mode Mode, err error) {
	if m == nil {
		return
	}
	m.Computations.WithLabelValues(mode.String()).Inc()
	if err != nil {
		m.ComputationErrors.WithLabelValues(mode.String()).Inc()
	}
}

func (m *Metrics) write(entry Entry) {
	if m == nil {
		return
	}
	m.Writes.WithLabelValues(shapeOf(entry)).Inc()
}

func (m *Metrics) storeError(operation string) {
	if m == nil {
		return
	}
	m.StoreErrors.WithLabelValues(operation).Inc()
}

func (m *Metrics) invalidation(scope string) {
	if m == nil {
		return
	}
	m.Invalidations.WithLabelValues(scope).Inc()
}

func shapeOf(entry Entry) string {
	set, ok := entry.(*ReferenceSet)
	if !ok {
		return "scalar"
	}
	if _, hasIDs := set.IDs(); !hasIDs {
		return "count_only"
	}
	return "reference_set"
}
