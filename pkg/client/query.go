package client

import (
	"context"
	"sync"
	"time"

	"github.com/ajitpratap0/kvbridge/pkg/cluster"
	"github.com/ajitpratap0/kvbridge/pkg/kverrors"
	"github.com/ajitpratap0/kvbridge/pkg/predicate"
	"github.com/ajitpratap0/kvbridge/pkg/record"
	"github.com/ajitpratap0/kvbridge/pkg/value"
)

// statement is the shared state of the Query and AsyncQuery builders.
type statement struct {
	b    *bridge
	scan bool
	stmt cluster.Statement
	opts []CallOption
	err  error
}

func newStatement(b *bridge, scan bool, namespace, set string) statement {
	s := statement{b: b, scan: scan, stmt: cluster.Statement{Namespace: namespace, Set: set}}
	if namespace == "" {
		s.err = kverrors.New(kverrors.InvalidArgError, "namespace must not be empty")
	}
	return s
}

func (s statement) op() string {
	if s.scan {
		return "scan"
	}
	return "query"
}

func (s statement) selectBins(bins []string) statement {
	for _, name := range bins {
		if err := value.CheckBinName(name); err != nil && s.err == nil {
			s.err = err
		}
	}
	s.stmt.Bins = append([]string(nil), bins...)
	return s
}

func (s statement) where(f predicate.Filter) statement {
	switch {
	case s.err != nil:
	case s.scan:
		s.err = kverrors.New(kverrors.InvalidArgError, "a scan does not take a filter")
	case f.Err() != nil:
		s.err = f.Err()
	default:
		s.stmt.Filter = &f
	}
	return s
}

func (s statement) open(ctx context.Context) (cluster.Recordset, error) {
	p, err := s.b.queryPolicy(collect(s.opts))
	if err != nil {
		return nil, err
	}
	if s.scan {
		return s.b.cluster.Scan(ctx, p, s.stmt)
	}
	return s.b.cluster.Query(ctx, p, s.stmt)
}

// results drains the stream into memory.
func (s statement) results() invocation[[]*Record] {
	if s.err != nil {
		return failed[[]*Record](s.op(), s.err)
	}
	if _, err := s.b.queryPolicy(collect(s.opts)); err != nil {
		return failed[[]*Record](s.op(), err)
	}
	return invoke(s.op(), s.stmt.Namespace, s.stmt.Set, func(ctx context.Context) ([]*record.Record, error) {
		rs, err := s.open(ctx)
		if err != nil {
			return nil, err
		}
		defer rs.Close()

		var out []*record.Record
		for res := range rs.Results() {
			if res.Err != nil {
				return nil, res.Err
			}
			out = append(out, res.Record)
		}
		return out, nil
	}, func(recs []*record.Record) ([]*Record, error) {
		out := make([]*Record, len(recs))
		for i, r := range recs {
			out[i] = toRecord(r)
		}
		return out, nil
	})
}

// foreach streams records to fn, which runs with the execution lock held.
// Returning false from fn stops the stream.
func (s statement) foreach(fn func(*Record) bool) invocation[none] {
	if s.err != nil {
		return failed[none](s.op(), s.err)
	}
	if fn == nil {
		return failed[none](s.op(), kverrors.New(kverrors.InvalidArgError, "callback must not be nil"))
	}
	if _, err := s.b.queryPolicy(collect(s.opts)); err != nil {
		return failed[none](s.op(), err)
	}
	lock := s.b.lock
	return invoke(s.op(), s.stmt.Namespace, s.stmt.Set, func(ctx context.Context) (none, error) {
		rs, err := s.open(ctx)
		if err != nil {
			return none{}, err
		}
		defer rs.Close()

		for res := range rs.Results() {
			if res.Err != nil {
				return none{}, res.Err
			}
			more, err := callLocked(lock, fn, toRecord(res.Record))
			if err != nil || !more {
				return none{}, err
			}
		}
		return none{}, nil
	}, same[none])
}

// callLocked runs fn under lock. A panic in fn releases the lock and fails
// the stream.
func callLocked(lock sync.Locker, fn func(*Record) bool, rec *Record) (more bool, err error) {
	lock.Lock()
	defer lock.Unlock()
	defer func() {
		if p := recover(); p != nil {
			err = kverrors.Newf(kverrors.ClientError, "foreach callback panicked: %v", p)
		}
	}()
	return fn(rec), nil
}

// Query builds a secondary-index query, or a scan. Builder methods return a
// modified copy.
type Query struct {
	s statement
}

// Select restricts the returned bins.
func (q *Query) Select(bins ...string) *Query {
	return &Query{s: q.s.selectBins(bins)}
}

// Where sets the index filter. Without a filter a query reads the whole set.
func (q *Query) Where(f predicate.Filter) *Query {
	return &Query{s: q.s.where(f)}
}

// WithOptions sets the call options, typically WithPolicy.
func (q *Query) WithOptions(opts ...CallOption) *Query {
	s := q.s
	s.opts = append(append([]CallOption(nil), s.opts...), opts...)
	return &Query{s: s}
}

// Results returns every matching record.
func (q *Query) Results(ctx context.Context) ([]*Record, error) {
	return block(ctx, q.s.b, q.s.results())
}

// Foreach calls fn for each matching record until fn returns false.
func (q *Query) Foreach(ctx context.Context, fn func(*Record) bool) error {
	_, err := block(ctx, q.s.b, q.s.foreach(fn))
	return err
}

// AsyncQuery is the non-blocking form of Query.
type AsyncQuery struct {
	s statement
}

func (q *AsyncQuery) Select(bins ...string) *AsyncQuery {
	return &AsyncQuery{s: q.s.selectBins(bins)}
}

func (q *AsyncQuery) Where(f predicate.Filter) *AsyncQuery {
	return &AsyncQuery{s: q.s.where(f)}
}

func (q *AsyncQuery) WithOptions(opts ...CallOption) *AsyncQuery {
	s := q.s
	s.opts = append(append([]CallOption(nil), s.opts...), opts...)
	return &AsyncQuery{s: s}
}

func (q *AsyncQuery) Results(ctx context.Context) *Future[[]*Record] {
	return submit(ctx, q.s.b, q.s.results())
}

// Foreach streams records to fn on the task goroutine. fn runs with the
// execution lock held.
func (q *AsyncQuery) Foreach(ctx context.Context, fn func(*Record) bool) *Future[struct{}] {
	return submit(ctx, q.s.b, q.s.foreach(fn))
}

func (b *bridge) createIndex(idx predicate.Index, o callOptions) invocation[none] {
	if err := idx.Validate(); err != nil {
		return failed[none]("index_create", err)
	}
	p, err := b.infoPolicy(o)
	if err != nil {
		return failed[none]("index_create", err)
	}
	return invoke("index_create", idx.Namespace, idx.Set, func(ctx context.Context) (none, error) {
		return none{}, b.cluster.CreateIndex(ctx, p, idx)
	}, same[none])
}

func (b *bridge) removeIndex(namespace, name string, o callOptions) invocation[none] {
	if namespace == "" || name == "" {
		return failed[none]("index_remove", kverrors.New(kverrors.InvalidArgError, "namespace and index name are required"))
	}
	p, err := b.infoPolicy(o)
	if err != nil {
		return failed[none]("index_remove", err)
	}
	return invoke("index_remove", namespace, "", func(ctx context.Context) (none, error) {
		return none{}, b.cluster.DropIndex(ctx, p, namespace, "", name)
	}, same[none])
}

func (b *bridge) truncate(namespace, set string, before time.Time, o callOptions) invocation[none] {
	if namespace == "" {
		return failed[none]("truncate", kverrors.New(kverrors.InvalidArgError, "namespace must not be empty"))
	}
	if !before.IsZero() && before.After(time.Now()) {
		return failed[none]("truncate", kverrors.New(kverrors.InvalidArgError, "truncate cut-off is in the future"))
	}
	p, err := b.infoPolicy(o)
	if err != nil {
		return failed[none]("truncate", err)
	}
	return invoke("truncate", namespace, set, func(ctx context.Context) (none, error) {
		return none{}, b.cluster.Truncate(ctx, p, namespace, set, before)
	}, same[none])
}

func index(namespace, set, bin, name string, t predicate.IndexType) predicate.Index {
	return predicate.Index{Namespace: namespace, Set: set, Bin: bin, Name: name, Type: t}
}
