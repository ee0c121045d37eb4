package engine

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Query outcome label values.
const (
	outcomeOK            = "ok"
	outcomeDivergent     = "divergent"
	outcomeDepthExceeded = "depth_exceeded"
	outcomeStepsExceeded = "steps_exceeded"
	outcomeError         = "error"
)

// Metrics holds the engine's prometheus collectors in a private registry.
// A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	queries    *prometheus.CounterVec
	rules      *prometheus.CounterVec
	ruleByOp   map[Op]prometheus.Counter
	memoHits   prometheus.Counter
	queryDepth prometheus.Histogram
}

// NewMetrics creates the collectors and registers them, together with the
// Go runtime collector, on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		queries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "peano_queries_total",
				Help: "top-level queries resolved, by outcome",
			},
			[]string{"outcome"},
		),
		rules: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "peano_rule_applications_total",
				Help: "rule applications, by operation",
			},
			[]string{"op"},
		),
		memoHits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "peano_memo_hits_total",
				Help: "sub-queries answered from the memo table",
			},
		),
		queryDepth: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "peano_query_depth",
				Help:    "deepest derivation reached by a run when a query finishes",
				Buckets: prometheus.ExponentialBuckets(1, 4, 8),
			},
		),
	}

	// Per-op children are resolved once; rule applications are the hot path.
	m.ruleByOp = make(map[Op]prometheus.Counter, len(allOps))
	for _, op := range allOps {
		m.ruleByOp[op] = m.rules.WithLabelValues(string(op))
	}

	m.registry = prometheus.NewPedanticRegistry()
	reg := m.registry
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(m.queries)
	reg.MustRegister(m.rules)
	reg.MustRegister(m.memoHits)
	reg.MustRegister(m.queryDepth)
	return m
}

// Registry returns the registry holding the engine collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Queries returns the query counter, labelled by outcome.
func (m *Metrics) Queries() *prometheus.CounterVec {
	return m.queries
}

// RuleApplications returns the rule counter, labelled by op.
func (m *Metrics) RuleApplications() *prometheus.CounterVec {
	return m.rules
}

// MemoHits returns the memo hit counter.
func (m *Metrics) MemoHits() prometheus.Counter {
	return m.memoHits
}

func (m *Metrics) observeQuery(outcome string, depth int) {
	if m == nil {
		return
	}
	m.queries.WithLabelValues(outcome).Inc()
	m.queryDepth.Observe(float64(depth))
}

func (m *Metrics) ruleApplied(op Op) {
	if m == nil {
		return
	}
	m.ruleByOp[op].Inc()
}

func (m *Metrics) memoHit() {
	if m == nil {
		return
	}
	m.memoHits.Inc()
}

func outcomeOf(err error) string {
	var (
		de *DepthExceededError
		se *StepsExceededError
		ve *DivergenceError
	)
	switch {
	case errors.As(err, &ve):
		return outcomeDivergent
	case errors.As(err, &de):
		return outcomeDepthExceeded
	case errors.As(err, &se):
		return outcomeStepsExceeded
	default:
		return outcomeError
	}
}
