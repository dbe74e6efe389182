package local

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ajitpratap0/kvbridge/pkg/cluster"
	"github.com/ajitpratap0/kvbridge/pkg/expression"
	"github.com/ajitpratap0/kvbridge/pkg/kverrors"
	"github.com/ajitpratap0/kvbridge/pkg/policy"
	"github.com/ajitpratap0/kvbridge/pkg/predicate"
	"github.com/ajitpratap0/kvbridge/pkg/ratelimit"
	"github.com/ajitpratap0/kvbridge/pkg/record"
)

// Query streams the records matching the statement's filter. A filter needs a
// secondary index on its bin; without a filter the query scans the set.
func (c *Cluster) Query(ctx context.Context, p *policy.Query, stmt cluster.Statement) (cluster.Recordset, error) {
	if stmt.Filter != nil {
		if err := stmt.Filter.Err(); err != nil {
			return nil, err
		}
		if !c.hasIndexFor(stmt) {
			return nil, kverrors.FromCode(kverrors.CodeIndexNotFound, "no index covers the filter on bin "+stmt.Filter.Bin).
				WithDetail("namespace", stmt.Namespace).
				WithDetail("bin", stmt.Filter.Bin)
		}
	}
	return c.stream(ctx, p, stmt)
}

// Scan streams every record of the set, or of the namespace when the set is
// empty. The statement's filter is ignored.
func (c *Cluster) Scan(ctx context.Context, p *policy.Query, stmt cluster.Statement) (cluster.Recordset, error) {
	stmt.Filter = nil
	return c.stream(ctx, p, stmt)
}

func (c *Cluster) hasIndexFor(stmt cluster.Statement) bool {
	c.metaMu.RLock()
	defer c.metaMu.RUnlock()

	for _, idx := range c.indexes {
		if idx.Namespace != stmt.Namespace || (idx.Set != "" && idx.Set != stmt.Set) {
			continue
		}
		if stmt.Filter.Covers(idx) {
			return true
		}
	}
	return false
}

func (c *Cluster) stream(ctx context.Context, p *policy.Query, stmt cluster.Statement) (cluster.Recordset, error) {
	if err := c.ready(ctx); err != nil {
		return nil, err
	}
	if err := c.checkNamespace(stmt.Namespace); err != nil {
		return nil, err
	}
	if p == nil {
		p = policy.DefaultQuery()
	}

	matches, err := c.collect(stmt, p)
	if err != nil {
		return nil, err
	}

	queue := p.RecordQueueSize
	if queue <= 0 {
		queue = 1
	}
	ctx, stop := withTimeout(ctx, p.TotalTimeout)
	ctx, cancel := context.WithCancel(ctx)
	rs := &recordset{
		results: make(chan cluster.Result, queue),
		done:    make(chan struct{}),
		cancel:  func() { cancel(); stop() },
	}
	go rs.produce(ctx, matches, ratelimit.New(p.RecordsPerSecond))

	c.logger.Debug("query started",
		zap.String("namespace", stmt.Namespace),
		zap.String("set", stmt.Set),
		zap.Int("matches", len(matches)))
	return rs, nil
}

// collect snapshots the matching records so the stream never holds the
// record lock.
func (c *Cluster) collect(stmt cluster.Statement, p *policy.Query) ([]*record.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	var out []*record.Record
	var filterErr error
	err := c.store.Scan(stmt.Namespace, func(rec *StoredRecord) bool {
		if rec.expired(now) || (stmt.Set != "" && rec.Set != stmt.Set) {
			return true
		}
		if stmt.Filter != nil && !stmt.Filter.Match(rec.Bins[stmt.Filter.Bin]) {
			return true
		}
		if p.FilterExpression != nil {
			ok, err := expression.Matches(p.FilterExpression, c.envOf(rec))
			if err != nil {
				filterErr = err
				return false
			}
			if !ok {
				return true
			}
		}
		r := &record.Record{Key: storedKey(stmt.Namespace, rec), Meta: c.metaOf(rec)}
		if p.IncludeBinData {
			r.Bins = c.toRecord(*r.Key, rec, stmt.Bins).Bins
		}
		out = append(out, r)
		return p.MaxRecords <= 0 || int64(len(out)) < p.MaxRecords
	})
	if err != nil {
		return nil, storeErr(err)
	}
	if filterErr != nil {
		return nil, filterErr
	}
	return out, nil
}

type recordset struct {
	results chan cluster.Result
	done    chan struct{}
	once    sync.Once
	cancel  context.CancelFunc
}

func (rs *recordset) Results() <-chan cluster.Result { return rs.results }

func (rs *recordset) Close() error {
	rs.once.Do(func() {
		close(rs.done)
		rs.cancel()
	})
	return nil
}

func (rs *recordset) produce(ctx context.Context, recs []*record.Record, limiter ratelimit.Limiter) {
	defer close(rs.results)
	defer rs.cancel()

	for _, r := range recs {
		if err := limiter.Wait(ctx); err != nil {
			rs.fail(ctx)
			return
		}
		select {
		case rs.results <- cluster.Result{Record: r}:
		case <-rs.done:
			return
		case <-ctx.Done():
			rs.fail(ctx)
			return
		}
	}
}

func (rs *recordset) fail(ctx context.Context) {
	select {
	case <-rs.done:
		return
	default:
	}
	var err error = kverrors.FromCode(kverrors.CodeQueryAborted, "")
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		err = kverrors.FromCode(kverrors.CodeQueryTimeout, "")
	}
	select {
	case rs.results <- cluster.Result{Err: err}:
	case <-rs.done:
	}
}

func (c *Cluster) CreateIndex(ctx context.Context, _ *policy.Info, idx predicate.Index) error {
	if err := c.ready(ctx); err != nil {
		return err
	}
	if err := idx.Validate(); err != nil {
		return err
	}
	if err := c.checkNamespace(idx.Namespace); err != nil {
		return err
	}
	c.metaMu.Lock()
	defer c.metaMu.Unlock()

	name := indexKey(idx.Namespace, idx.Name)
	if _, ok := c.indexes[name]; ok {
		return kverrors.FromCode(kverrors.CodeIndexFound, "").WithDetail("index", idx.Name)
	}
	c.indexes[name] = idx
	c.logger.Info("index created",
		zap.String("namespace", idx.Namespace),
		zap.String("index", idx.Name),
		zap.String("bin", idx.Bin),
		zap.Stringer("type", idx.Type))
	return nil
}

// DropIndex removes an index by name. The set is informational; index names
// are unique per namespace.
func (c *Cluster) DropIndex(ctx context.Context, _ *policy.Info, namespace, _ string, name string) error {
	if err := c.ready(ctx); err != nil {
		return err
	}
	c.metaMu.Lock()
	defer c.metaMu.Unlock()

	key := indexKey(namespace, name)
	if _, ok := c.indexes[key]; !ok {
		return kverrors.FromCode(kverrors.CodeIndexNotFound, "").WithDetail("index", name)
	}
	delete(c.indexes, key)
	return nil
}

func indexKey(namespace, name string) string {
	return namespace + "/" + name
}

func (c *Cluster) sortedIndexes() []predicate.Index {
	c.metaMu.RLock()
	defer c.metaMu.RUnlock()

	out := make([]predicate.Index, 0, len(c.indexes))
	for _, idx := range c.indexes {
		out = append(out, idx)
	}
	sort.Slice(out, func(i, j int) bool {
		return indexKey(out[i].Namespace, out[i].Name) < indexKey(out[j].Namespace, out[j].Name)
	})
	return out
}

func (c *Cluster) Truncate(ctx context.Context, _ *policy.Info, namespace, set string, before time.Time) error {
	if err := c.ready(ctx); err != nil {
		return err
	}
	if err := c.checkNamespace(namespace); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	var doomed []*StoredRecord
	err := c.store.Scan(namespace, func(rec *StoredRecord) bool {
		if set != "" && rec.Set != set {
			return true
		}
		if before.IsZero() || rec.LastUpdate.Before(before) {
			doomed = append(doomed, rec)
		}
		return true
	})
	if err != nil {
		return storeErr(err)
	}
	for _, rec := range doomed {
		if _, err := c.store.Delete(namespace, rec.Digest); err != nil {
			return storeErr(err)
		}
	}
	c.logger.Info("truncated",
		zap.String("namespace", namespace),
		zap.String("set", set),
		zap.Int("records", len(doomed)))
	return nil
}
