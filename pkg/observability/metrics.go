// Package observability records client operation metrics and traces.
//
// Metrics live on a package registry the host can expose through Registry.
// Traces go to the global OpenTelemetry tracer provider unless one is given.
// No exporter is configured here. Recording never fails a call: a panic in a
// collector is logged and swallowed.
package observability

import (
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/ajitpratap0/kvbridge/pkg/kverrors"
)

// SystemName is the db.system.name of every measurement.
const SystemName = "aerospike"

// DurationBuckets are the buckets of the operation duration histogram.
var DurationBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0}

// Metrics holds the client collectors.
type Metrics struct {
	duration  *prometheus.HistogramVec
	batchSize *prometheus.HistogramVec
	inFlight  prometheus.Gauge
}

// NewMetrics registers the client collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		duration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "db_client_operation_duration_seconds",
				Help:    "Duration of database client operations in seconds",
				Buckets: DurationBuckets,
			},
			[]string{"db_system_name", "db_namespace", "db_collection_name", "db_operation_name", "error_type"},
		),
		batchSize: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "db_client_operation_batch_size",
				Help:    "Number of keys of database client batch operations",
				Buckets: []float64{1, 10, 50, 100, 500, 1000, 5000, 10000},
			},
			[]string{"db_system_name", "db_namespace", "db_operation_name"},
		),
		inFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: "db_client_operations_in_flight",
			Help: "Number of database client operations currently running",
		}),
	}
}

var (
	registry     *prometheus.Registry
	defaultOnce  sync.Once
	defaultStore *Metrics
)

// Registry returns the package registry holding the default metrics.
func Registry() *prometheus.Registry {
	defaultMetrics()
	return registry
}

func defaultMetrics() *Metrics {
	defaultOnce.Do(func() {
		registry = prometheus.NewRegistry()
		defaultStore = NewMetrics(registry)
	})
	return defaultStore
}

// ErrorType is the error_type label of err: the error kind name, "other" for
// foreign errors and empty on success.
func ErrorType(err error) string {
	if err == nil {
		return ""
	}
	var e *kverrors.Error
	if errors.As(err, &e) {
		return e.Kind.Name()
	}
	return "other"
}

// OpTimer measures one operation.
type OpTimer struct {
	m         *Metrics
	logger    *zap.Logger
	start     time.Time
	namespace string
	set       string
	operation string
}

// Start begins timing an operation.
func (m *Metrics) Start(logger *zap.Logger, operation, namespace, set string) *OpTimer {
	t := &OpTimer{m: m, logger: logger, start: time.Now(), namespace: namespace, set: set, operation: operation}
	t.safely(func() { m.inFlight.Inc() })
	return t
}

// BatchSize records the number of keys of a batch operation.
func (t *OpTimer) BatchSize(n int) {
	t.safely(func() {
		t.m.batchSize.WithLabelValues(SystemName, t.namespace, t.operation).Observe(float64(n))
	})
}

// Finish records the duration and outcome and returns the elapsed time.
func (t *OpTimer) Finish(err error) time.Duration {
	elapsed := time.Since(t.start)
	t.safely(func() {
		t.m.inFlight.Dec()
		t.m.duration.WithLabelValues(SystemName, t.namespace, t.set, t.operation, ErrorType(err)).
			Observe(elapsed.Seconds())
	})
	return elapsed
}

func (t *OpTimer) safely(fn func()) {
	defer func() {
		if p := recover(); p != nil {
			t.logger.Warn("failed to record metrics", zap.String("operation", t.operation), zap.Any("panic", p))
		}
	}()
	fn()
}
