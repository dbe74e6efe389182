package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/ajitpratap0/kvbridge/pkg/kverrors"
	"github.com/ajitpratap0/kvbridge/pkg/logger"
)

// InstrumentationName names the tracer.
const InstrumentationName = "github.com/ajitpratap0/kvbridge"

// Span attribute keys.
const (
	AttrSystemName     = attribute.Key("db.system.name")
	AttrNamespace      = attribute.Key("db.namespace")
	AttrCollectionName = attribute.Key("db.collection.name")
	AttrOperationName  = attribute.Key("db.operation.name")
	AttrErrorType      = attribute.Key("error.type")
	AttrResultCode     = attribute.Key("db.response.status_code")
)

// Instrumentation combines metrics, tracing and operation logging.
type Instrumentation struct {
	metrics *Metrics
	tracer  trace.Tracer
	logger  *zap.Logger
}

// Option configures an Instrumentation.
type Option func(*Instrumentation)

// WithMetrics records to m instead of the package metrics.
func WithMetrics(m *Metrics) Option {
	return func(i *Instrumentation) { i.metrics = m }
}

// WithTracerProvider takes spans from tp instead of the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(i *Instrumentation) { i.tracer = tp.Tracer(InstrumentationName) }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(i *Instrumentation) { i.logger = l }
}

// New creates an Instrumentation.
func New(opts ...Option) *Instrumentation {
	i := &Instrumentation{}
	for _, opt := range opts {
		opt(i)
	}
	if i.metrics == nil {
		i.metrics = defaultMetrics()
	}
	if i.tracer == nil {
		i.tracer = otel.Tracer(InstrumentationName)
	}
	if i.logger == nil {
		i.logger = logger.Get()
	}
	return i
}

// Op is one instrumented operation.
type Op struct {
	span  trace.Span
	timer *OpTimer
	log   *zap.Logger
	name  string
}

// Begin starts the span and timer of an operation on namespace and set.
func (i *Instrumentation) Begin(ctx context.Context, operation, namespace, set string) (context.Context, *Op) {
	attrs := []attribute.KeyValue{
		AttrSystemName.String(SystemName),
		AttrOperationName.String(operation),
	}
	if namespace != "" {
		attrs = append(attrs, AttrNamespace.String(namespace))
	}
	if set != "" {
		attrs = append(attrs, AttrCollectionName.String(set))
	}
	ctx, span := i.tracer.Start(ctx, operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
	return ctx, &Op{
		span:  span,
		timer: i.metrics.Start(i.logger, operation, namespace, set),
		log:   i.logger,
		name:  operation,
	}
}

// BatchSize records the key count of a batch operation.
func (o *Op) BatchSize(n int) {
	o.timer.BatchSize(n)
	o.span.SetAttributes(attribute.Int("db.operation.batch.size", n))
}

// End finishes the operation with its outcome.
func (o *Op) End(err error) {
	elapsed := o.timer.Finish(err)
	if err != nil {
		o.span.SetAttributes(
			AttrErrorType.String(ErrorType(err)),
			AttrResultCode.Int(int(kverrors.CodeOf(err))),
		)
		o.span.RecordError(err)
		o.span.SetStatus(codes.Error, err.Error())
		o.log.Debug("operation failed", zap.String("operation", o.name), zap.Duration("duration", elapsed), zap.Error(err))
	} else {
		o.log.Debug("operation completed", zap.String("operation", o.name), zap.Duration("duration", elapsed))
	}
	o.span.End()
}

