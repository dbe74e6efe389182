package aerospike

import (
	"context"
	"sync"
	"time"

	aero "github.com/aerospike/aerospike-client-go/v7"
	"go.uber.org/zap"

	"github.com/ajitpratap0/kvbridge/pkg/cluster"
	"github.com/ajitpratap0/kvbridge/pkg/kverrors"
	"github.com/ajitpratap0/kvbridge/pkg/policy"
	"github.com/ajitpratap0/kvbridge/pkg/predicate"
	"github.com/ajitpratap0/kvbridge/pkg/record"
)

// Query streams the records matching the statement's filter. Without a
// filter the server reads the whole set.
func (c *Cluster) Query(ctx context.Context, p *policy.Query, stmt cluster.Statement) (cluster.Recordset, error) {
	client, err := c.conn(ctx)
	if err != nil {
		return nil, err
	}
	if p == nil {
		p = policy.DefaultQuery()
	}
	qp, err := queryPolicy(ctx, p)
	if err != nil {
		return nil, err
	}
	st := aero.NewStatement(stmt.Namespace, stmt.Set, stmt.Bins...)
	if stmt.Filter != nil {
		f, err := toAeroFilter(*stmt.Filter)
		if err != nil {
			return nil, err
		}
		if aerr := st.SetFilter(f); aerr != nil {
			return nil, mapError(aerr, kverrors.OpGeneric)
		}
	}
	rs, aerr := client.Query(qp, st)
	if aerr != nil {
		return nil, mapError(aerr, kverrors.OpGeneric)
	}
	c.logger.Debug("query started",
		zap.String("namespace", stmt.Namespace),
		zap.String("set", stmt.Set),
		zap.Bool("filtered", stmt.Filter != nil))
	return newRecordset(ctx, rs, stmt.Namespace, p.RecordQueueSize), nil
}

// Scan streams every record of the set. The statement's filter is ignored.
func (c *Cluster) Scan(ctx context.Context, p *policy.Query, stmt cluster.Statement) (cluster.Recordset, error) {
	client, err := c.conn(ctx)
	if err != nil {
		return nil, err
	}
	if p == nil {
		p = policy.DefaultQuery()
	}
	sp, err := scanPolicy(ctx, p)
	if err != nil {
		return nil, err
	}
	rs, aerr := client.ScanAll(sp, stmt.Namespace, stmt.Set, stmt.Bins...)
	if aerr != nil {
		return nil, mapError(aerr, kverrors.OpGeneric)
	}
	return newRecordset(ctx, rs, stmt.Namespace, p.RecordQueueSize), nil
}

func toAeroFilter(f predicate.Filter) (*aero.Filter, error) {
	if err := f.Err(); err != nil {
		return nil, err
	}
	switch f.Kind {
	case predicate.KindEquals:
		v, err := toAero(f.Value)
		if err != nil {
			return nil, err
		}
		return aero.NewEqualFilter(f.Bin, v), nil
	case predicate.KindBetween:
		return aero.NewRangeFilter(f.Bin, f.Begin, f.End), nil
	case predicate.KindContains:
		v, err := toAero(f.Value)
		if err != nil {
			return nil, err
		}
		return aero.NewContainsFilter(f.Bin, collectionType(f.Collection), v), nil
	case predicate.KindGeoWithinRegion:
		return aero.NewGeoWithinRegionFilter(f.Bin, string(f.Region)), nil
	case predicate.KindGeoWithinRadius:
		return aero.NewGeoWithinRadiusFilter(f.Bin, f.Lng, f.Lat, f.Radius), nil
	case predicate.KindGeoContainsPoint:
		return aero.NewGeoRegionsContainingPointFilter(f.Bin, string(f.Region)), nil
	}
	return nil, kverrors.Newf(kverrors.InvalidArgError, "unsupported filter %s", f.Kind)
}

func collectionType(c predicate.Collection) aero.IndexCollectionType {
	switch c {
	case predicate.CollectionList:
		return aero.ICT_LIST
	case predicate.CollectionMapKeys:
		return aero.ICT_MAPKEYS
	case predicate.CollectionMapValues:
		return aero.ICT_MAPVALUES
	default:
		return aero.ICT_DEFAULT
	}
}

func indexType(t predicate.IndexType) aero.IndexType {
	switch t {
	case predicate.IndexString:
		return aero.STRING
	case predicate.IndexBlob:
		return aero.BLOB
	case predicate.IndexGeo2DSphere:
		return aero.GEO2DSPHERE
	default:
		return aero.NUMERIC
	}
}

// resultSource is the part of *aero.Recordset the relay reads from.
type resultSource interface {
	Results() <-chan *aero.Result
	Close() aero.Error
}

// recordset relays the client's result stream, converting every element.
type recordset struct {
	src     resultSource
	results chan cluster.Result
	done    chan struct{}
	once    sync.Once
}

func newRecordset(ctx context.Context, src resultSource, namespace string, queue int) *recordset {
	if queue <= 0 {
		queue = 1
	}
	rs := &recordset{
		src:     src,
		results: make(chan cluster.Result, queue),
		done:    make(chan struct{}),
	}
	go rs.relay(ctx, namespace)
	return rs
}

func (rs *recordset) Results() <-chan cluster.Result { return rs.results }

func (rs *recordset) Close() error {
	rs.once.Do(func() {
		close(rs.done)
		rs.src.Close()
	})
	return nil
}

func (rs *recordset) relay(ctx context.Context, namespace string) {
	defer close(rs.results)
	fallback := record.Key{Namespace: namespace}

	for res := range rs.src.Results() {
		var out cluster.Result
		if res.Err != nil {
			out.Err = mapError(res.Err, kverrors.OpGeneric)
		} else {
			out.Record = fromAeroRecord(res.Record, fallback)
		}
		select {
		case rs.results <- out:
		case <-rs.done:
			return
		case <-ctx.Done():
			rs.src.Close()
			rs.send(cluster.Result{Err: queryAborted(ctx)})
			return
		}
		if out.Err != nil {
			rs.src.Close()
			return
		}
	}
}

func (rs *recordset) send(r cluster.Result) {
	select {
	case rs.results <- r:
	case <-rs.done:
	}
}

func queryAborted(ctx context.Context) error {
	if ctx.Err() == context.DeadlineExceeded {
		return kverrors.FromCode(kverrors.CodeQueryTimeout, "")
	}
	return kverrors.FromCode(kverrors.CodeQueryAborted, "")
}

// CreateIndex creates the index and waits until every node has built it.
func (c *Cluster) CreateIndex(ctx context.Context, p *policy.Info, idx predicate.Index) error {
	client, err := c.conn(ctx)
	if err != nil {
		return err
	}
	if err := idx.Validate(); err != nil {
		return err
	}
	wp, err := infoWritePolicy(ctx, p)
	if err != nil {
		return err
	}
	task, aerr := client.CreateComplexIndex(wp, idx.Namespace, idx.Set, idx.Name, idx.Bin,
		indexType(idx.Type), collectionType(idx.Collection))
	if aerr != nil {
		return mapError(aerr, kverrors.OpGeneric)
	}
	select {
	case aerr := <-task.OnComplete():
		if aerr != nil {
			return mapError(aerr, kverrors.OpGeneric)
		}
	case <-ctx.Done():
		return ctxErr(ctx)
	}
	c.logger.Info("index created",
		zap.String("namespace", idx.Namespace),
		zap.String("index", idx.Name),
		zap.String("bin", idx.Bin),
		zap.Stringer("type", idx.Type))
	return nil
}

func (c *Cluster) DropIndex(ctx context.Context, p *policy.Info, namespace, set, name string) error {
	client, err := c.conn(ctx)
	if err != nil {
		return err
	}
	wp, err := infoWritePolicy(ctx, p)
	if err != nil {
		return err
	}
	return mapError(client.DropIndex(wp, namespace, set, name), kverrors.OpGeneric)
}

func (c *Cluster) Truncate(ctx context.Context, p *policy.Info, namespace, set string, before time.Time) error {
	client, err := c.conn(ctx)
	if err != nil {
		return err
	}
	ip, err := infoPolicy(ctx, p)
	if err != nil {
		return err
	}
	var cutoff *time.Time
	if !before.IsZero() {
		cutoff = &before
	}
	if aerr := client.Truncate(ip, namespace, set, cutoff); aerr != nil {
		return mapError(aerr, kverrors.OpGeneric)
	}
	c.logger.Info("truncated", zap.String("namespace", namespace), zap.String("set", set))
	return nil
}
