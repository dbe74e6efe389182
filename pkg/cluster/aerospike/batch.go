package aerospike

import (
	"context"
	"sort"

	aero "github.com/aerospike/aerospike-client-go/v7"
	"github.com/aerospike/aerospike-client-go/v7/types"
	"go.uber.org/zap"

	"github.com/ajitpratap0/kvbridge/pkg/kverrors"
	"github.com/ajitpratap0/kvbridge/pkg/operation"
	"github.com/ajitpratap0/kvbridge/pkg/policy"
	"github.com/ajitpratap0/kvbridge/pkg/record"
	"github.com/ajitpratap0/kvbridge/pkg/value"
)

// batchConvert turns a returned batch record into the entry's record.
type batchConvert func(i int, key record.Key, r *aero.Record) *record.Record

// runBatch sends the batch and records the per-key outcome. The batch fails
// as a whole only when no key got an answer.
func (c *Cluster) runBatch(ctx context.Context, client *aero.Client, p *policy.Batch, keys []record.Key, recs []aero.BatchRecordIfc, convert batchConvert) ([]record.BatchEntry, error) {
	bp, err := batchPolicy(ctx, p)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return []record.BatchEntry{}, nil
	}

	var batchErr error
	if aerr := client.BatchOperate(bp, recs); aerr != nil {
		batchErr = mapError(aerr, kverrors.OpGeneric)
	}

	entries := make([]record.BatchEntry, len(recs))
	answered := false
	for i, r := range recs {
		br := r.BatchRec()
		entries[i].Key = keys[i]
		entries[i].InDoubt = br.InDoubt
		if br.ResultCode == types.NO_RESPONSE {
			entries[i].ResultCode = kverrors.CodeClient
			if batchErr != nil {
				entries[i].ResultCode = kverrors.CodeOf(batchErr)
			}
			continue
		}
		answered = true
		entries[i].ResultCode = resultCode(br.ResultCode)
		if entries[i].ResultCode == kverrors.CodeOK {
			entries[i].Record = convert(i, keys[i], br.Record)
		}
	}
	if batchErr != nil && !answered {
		return nil, batchErr
	}
	if batchErr != nil {
		c.logger.Debug("batch partially failed", zap.Error(batchErr))
	}
	return entries, nil
}

func (c *Cluster) BatchGet(ctx context.Context, p *policy.Batch, keys []record.Key, bins []string) ([]record.BatchEntry, error) {
	client, err := c.conn(ctx)
	if err != nil {
		return nil, err
	}
	recs := make([]aero.BatchRecordIfc, len(keys))
	for i, key := range keys {
		k, err := toAeroKey(key)
		if err != nil {
			return nil, err
		}
		if bins != nil && len(bins) == 0 {
			recs[i] = aero.NewBatchReadHeader(nil, k)
		} else {
			recs[i] = aero.NewBatchRead(nil, k, bins)
		}
	}
	return c.runBatch(ctx, client, p, keys, recs, func(_ int, key record.Key, r *aero.Record) *record.Record {
		return fromAeroRecord(r, key)
	})
}

func (c *Cluster) BatchOperate(ctx context.Context, p *policy.Batch, wp *policy.Write, keys []record.Key, ops []operation.Operation) ([]record.BatchEntry, error) {
	client, err := c.conn(ctx)
	if err != nil {
		return nil, err
	}
	if len(ops) == 0 {
		return nil, kverrors.New(kverrors.InvalidArgError, "batch operate requires at least one operation")
	}
	if wp == nil {
		wp = policy.DefaultWrite()
	}
	aops, err := toAeroOps(ops)
	if err != nil {
		return nil, err
	}
	modifies := false
	for _, op := range ops {
		modifies = modifies || op.Code.Modifies()
	}

	bwp, err := batchWritePolicy(wp)
	if err != nil {
		return nil, err
	}
	recs := make([]aero.BatchRecordIfc, len(keys))
	for i, key := range keys {
		k, err := toAeroKey(key)
		if err != nil {
			return nil, err
		}
		if modifies {
			recs[i] = aero.NewBatchWrite(bwp, k, aops...)
		} else {
			recs[i] = aero.NewBatchReadOps(nil, k, aops...)
		}
	}
	return c.runBatch(ctx, client, p, keys, recs, func(_ int, key record.Key, r *aero.Record) *record.Record {
		if r == nil {
			k := key
			return &record.Record{Key: &k}
		}
		ordered := &record.OrderedRecord{
			Key:  fromAeroKey(nil, key),
			Meta: metaOf(r),
			Bins: orderResults(ops, r.Bins, wp.RespondAllOps),
		}
		return ordered.Collapse()
	})
}

func (c *Cluster) BatchRemove(ctx context.Context, p *policy.Batch, wp *policy.Write, keys []record.Key) ([]record.BatchEntry, error) {
	client, err := c.conn(ctx)
	if err != nil {
		return nil, err
	}
	bdp, err := batchDeletePolicy(wp)
	if err != nil {
		return nil, err
	}
	recs := make([]aero.BatchRecordIfc, len(keys))
	for i, key := range keys {
		k, err := toAeroKey(key)
		if err != nil {
			return nil, err
		}
		recs[i] = aero.NewBatchDelete(bdp, k)
	}
	return c.runBatch(ctx, client, p, keys, recs, func(_ int, key record.Key, _ *aero.Record) *record.Record {
		k := key
		return &record.Record{Key: &k}
	})
}

// BatchWrite stores each row with one put operation per bin.
func (c *Cluster) BatchWrite(ctx context.Context, p *policy.Batch, wp *policy.Write, rows []record.BatchWrite) ([]record.BatchEntry, error) {
	client, err := c.conn(ctx)
	if err != nil {
		return nil, err
	}
	bwp, err := batchWritePolicy(wp)
	if err != nil {
		return nil, err
	}
	keys := make([]record.Key, len(rows))
	recs := make([]aero.BatchRecordIfc, len(rows))
	for i, row := range rows {
		keys[i] = row.Key
		k, err := toAeroKey(row.Key)
		if err != nil {
			return nil, err
		}
		ops, err := putOps(row.Bins)
		if err != nil {
			return nil, kverrors.Wrap(err, kverrors.InvalidArgError, "row "+row.Key.String())
		}
		recs[i] = aero.NewBatchWrite(bwp, k, ops...)
	}
	return c.runBatch(ctx, client, p, keys, recs, func(_ int, key record.Key, r *aero.Record) *record.Record {
		k := key
		out := &record.Record{Key: &k}
		if r != nil {
			out.Meta = metaOf(r)
		}
		return out
	})
}

func putOps(bins value.BinMap) ([]*aero.Operation, error) {
	names := make([]string, 0, len(bins))
	for name := range bins {
		names = append(names, name)
	}
	sort.Strings(names)
	ops := make([]*aero.Operation, 0, len(names))
	for _, name := range names {
		if err := value.CheckBinName(name); err != nil {
			return nil, err
		}
		v, err := toAero(bins[name])
		if err != nil {
			return nil, err
		}
		ops = append(ops, aero.PutOp(aero.NewBin(name, v)))
	}
	return ops, nil
}
