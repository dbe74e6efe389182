package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap/zaptest"

	"github.com/ajitpratap0/kvbridge/pkg/kverrors"
)

func newTestInstrumentation(t *testing.T) (*Instrumentation, *prometheus.Registry, *tracetest.SpanRecorder) {
	t.Helper()
	reg := prometheus.NewRegistry()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return New(
		WithMetrics(NewMetrics(reg)),
		WithTracerProvider(tp),
		WithLogger(zaptest.NewLogger(t)),
	), reg, sr
}

func attrMap(kvs []attribute.KeyValue) map[attribute.Key]attribute.Value {
	m := make(map[attribute.Key]attribute.Value, len(kvs))
	for _, kv := range kvs {
		m[kv.Key] = kv.Value
	}
	return m
}

func TestOperationSuccess(t *testing.T) {
	inst, reg, sr := newTestInstrumentation(t)

	_, op := inst.Begin(context.Background(), "put", "test", "demo")
	op.End(nil)

	assert.Equal(t, 1, mustCount(t, reg, "db_client_operation_duration_seconds"))
	assert.Equal(t, 0.0, testutil.ToFloat64(inst.metrics.inFlight))

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "put", spans[0].Name())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	attrs := attrMap(spans[0].Attributes())
	assert.Equal(t, "aerospike", attrs[AttrSystemName].AsString())
	assert.Equal(t, "test", attrs[AttrNamespace].AsString())
	assert.Equal(t, "demo", attrs[AttrCollectionName].AsString())
	assert.Equal(t, "put", attrs[AttrOperationName].AsString())
}

func TestOperationFailure(t *testing.T) {
	inst, reg, sr := newTestInstrumentation(t)

	_, op := inst.Begin(context.Background(), "get", "test", "")
	op.End(kverrors.FromCode(kverrors.CodeKeyNotFound, "missing"))

	families, err := reg.Gather()
	require.NoError(t, err)
	var errorType string
	for _, f := range families {
		if f.GetName() != "db_client_operation_duration_seconds" {
			continue
		}
		for _, l := range f.GetMetric()[0].GetLabel() {
			if l.GetName() == "error_type" {
				errorType = l.GetValue()
			}
		}
	}
	assert.Equal(t, "RecordNotFound", errorType)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	attrs := attrMap(spans[0].Attributes())
	assert.Equal(t, int64(kverrors.CodeKeyNotFound), attrs[AttrResultCode].AsInt64())
	_, hasSet := attrs[AttrCollectionName]
	assert.False(t, hasSet)
}

func TestBatchSize(t *testing.T) {
	inst, reg, _ := newTestInstrumentation(t)
	_, op := inst.Begin(context.Background(), "batch_read", "test", "")
	op.BatchSize(10)
	op.End(nil)
	assert.Equal(t, 1, mustCount(t, reg, "db_client_operation_batch_size"))
}

func TestErrorType(t *testing.T) {
	assert.Empty(t, ErrorType(nil))
	assert.Equal(t, "other", ErrorType(errors.New("boom")))
	assert.Equal(t, "TimeoutError", ErrorType(kverrors.New(kverrors.TimeoutError, "slow")))
}

func TestRecordingPanicsAreSwallowed(t *testing.T) {
	timer := (&Metrics{}).Start(zaptest.NewLogger(t), "put", "test", "demo")
	assert.NotPanics(t, func() { timer.Finish(nil) })
}

func TestRegistryIsShared(t *testing.T) {
	assert.Same(t, Registry(), Registry())
	assert.Same(t, defaultMetrics(), New().metrics)
}

func mustCount(t *testing.T, reg *prometheus.Registry, name string) int {
	t.Helper()
	n, err := testutil.GatherAndCount(reg, name)
	require.NoError(t, err)
	return n
}
