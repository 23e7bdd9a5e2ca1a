package pipes

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig places the runtime's collectors. Every collector is named
// <Namespace>_<Subsystem>_<name> and carries ConstLabels, which lets several
// Systems share one registry.
type MetricsConfig struct {
	Namespace   string
	Subsystem   string
	ConstLabels prometheus.Labels
	Registry    prometheus.Registerer
}

type MetricsOption func(*MetricsConfig)

// WithNamespace replaces the default "signalflow" namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) { c.Namespace = namespace }
}

// WithSubsystem names the graph, e.g. "ingest" gives signalflow_ingest_updates_total.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) { c.Subsystem = subsystem }
}

// WithConstLabels tells apart Systems sharing a subsystem.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) { c.ConstLabels = labels }
}

// WithRegistry registers the collectors with registry instead of
// prometheus.DefaultRegisterer.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) { c.Registry = registry }
}

// Metrics counts what the workers of a System do. Counters are labelled with
// the node kind ("lift", "merge2", ...). A nil *Metrics records nothing, which
// is the default.
type Metrics struct {
	workersActive   prometheus.Gauge
	mailboxesActive prometheus.Gauge
	updates         *prometheus.CounterVec
	filtered        *prometheus.CounterVec
	broadcasts      *prometheus.CounterVec
	dropped         *prometheus.CounterVec
	failures        *prometheus.CounterVec
}

func NewMetrics(opts ...MetricsOption) *Metrics {
	config := MetricsConfig{
		Namespace: "signalflow",
		Registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	gauge := func(name, help string) prometheus.Gauge {
		return factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		})
	}
	perKind := func(name, help string) *prometheus.CounterVec {
		return factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		}, []string{"kind"})
	}

	return &Metrics{
		workersActive:   gauge("workers_active", "Node workers currently running."),
		mailboxesActive: gauge("mailboxes_active", "Subscription mailboxes still delivering."),
		updates:         perKind("updates_total", "Updates received by nodes."),
		filtered:        perKind("filtered_total", "Updates rejected by a node filter."),
		broadcasts:      perKind("broadcasts_total", "Recomputed values broadcast to subscribers."),
		dropped:         perKind("subscribers_dropped_total", "Subscribers removed after a failed delivery."),
		failures:        perKind("worker_failures_total", "Workers that terminated with a failure."),
	}
}

func (m *Metrics) workerStarted() {
	if m != nil {
		m.workersActive.Inc()
	}
}

func (m *Metrics) workerStopped() {
	if m != nil {
		m.workersActive.Dec()
	}
}

func (m *Metrics) mailboxStarted() {
	if m != nil {
		m.mailboxesActive.Inc()
	}
}

func (m *Metrics) mailboxStopped() {
	if m != nil {
		m.mailboxesActive.Dec()
	}
}

func (m *Metrics) count(vec *prometheus.CounterVec, kind string) {
	if m != nil {
		vec.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) update(kind string) {
	if m != nil {
		m.count(m.updates, kind)
	}
}

func (m *Metrics) filter(kind string) {
	if m != nil {
		m.count(m.filtered, kind)
	}
}

func (m *Metrics) broadcast(kind string) {
	if m != nil {
		m.count(m.broadcasts, kind)
	}
}

func (m *Metrics) drop(kind string) {
	if m != nil {
		m.count(m.dropped, kind)
	}
}

func (m *Metrics) failure(kind string) {
	if m != nil {
		m.count(m.failures, kind)
	}
}
