package local

import (
	"context"

	"github.com/ajitpratap0/kvbridge/pkg/kverrors"
	"github.com/ajitpratap0/kvbridge/pkg/operation"
	"github.com/ajitpratap0/kvbridge/pkg/policy"
	"github.com/ajitpratap0/kvbridge/pkg/record"
	"github.com/ajitpratap0/kvbridge/pkg/value"
)

// batch runs fn for every key and records the per-key outcome. Only a
// cancelled context or a disconnected cluster fails the whole batch.
func (c *Cluster) batch(ctx context.Context, p *policy.Batch, keys []record.Key, fn func(i int, key record.Key) (*record.Record, error)) ([]record.BatchEntry, error) {
	if err := c.ready(ctx); err != nil {
		return nil, err
	}
	if p == nil {
		p = policy.DefaultBatch()
	}
	ctx, cancel := withTimeout(ctx, p.TotalTimeout)
	defer cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	entries := make([]record.BatchEntry, len(keys))
	for i, key := range keys {
		if err := ctxErr(ctx); err != nil {
			return nil, err
		}
		entries[i].Key = key
		if err := c.checkNamespace(key.Namespace); err != nil {
			entries[i].ResultCode = kverrors.CodeOf(err)
			continue
		}
		if err := c.batchFilter(p, key); err != nil {
			entries[i].ResultCode = kverrors.CodeOf(err)
			continue
		}
		rec, err := fn(i, key)
		if err != nil {
			entries[i].ResultCode = kverrors.CodeOf(err)
			continue
		}
		entries[i].Record = rec
	}
	return entries, nil
}

// batchFilter applies the batch policy's filter expression to one entry.
func (c *Cluster) batchFilter(p *policy.Batch, key record.Key) error {
	if p.FilterExpression == nil {
		return nil
	}
	rec, err := c.load(key)
	if err != nil {
		return err
	}
	return c.filter(p.FilterExpression, key, rec)
}

func (c *Cluster) BatchGet(ctx context.Context, p *policy.Batch, keys []record.Key, bins []string) ([]record.BatchEntry, error) {
	return c.batch(ctx, p, keys, func(_ int, key record.Key) (*record.Record, error) {
		rec, err := c.load(key)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			return nil, kverrors.FromCode(kverrors.CodeKeyNotFound, "")
		}
		return c.toRecord(key, rec, bins), nil
	})
}

func (c *Cluster) BatchOperate(ctx context.Context, p *policy.Batch, wp *policy.Write, keys []record.Key, ops []operation.Operation) ([]record.BatchEntry, error) {
	if len(ops) == 0 {
		return nil, kverrors.New(kverrors.InvalidArgError, "batch operate requires at least one operation")
	}
	return c.batch(ctx, p, keys, func(_ int, key record.Key) (*record.Record, error) {
		res, err := c.operate(wp, key, ops)
		if err != nil {
			return nil, err
		}
		return res.Collapse(), nil
	})
}

func (c *Cluster) BatchRemove(ctx context.Context, p *policy.Batch, wp *policy.Write, keys []record.Key) ([]record.BatchEntry, error) {
	return c.batch(ctx, p, keys, func(_ int, key record.Key) (*record.Record, error) {
		rec, err := c.load(key)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			return nil, kverrors.FromCode(kverrors.CodeKeyNotFound, "")
		}
		if err := checkGeneration(rec, wp); err != nil {
			return nil, err
		}
		if wp != nil {
			if err := c.filter(wp.FilterExpression, key, rec); err != nil {
				return nil, err
			}
		}
		if _, err := c.store.Delete(key.Namespace, key.Digest); err != nil {
			return nil, storeErr(err)
		}
		k := key
		return &record.Record{Key: &k}, nil
	})
}

func (c *Cluster) BatchWrite(ctx context.Context, p *policy.Batch, wp *policy.Write, rows []record.BatchWrite) ([]record.BatchEntry, error) {
	keys := make([]record.Key, len(rows))
	for i, row := range rows {
		keys[i] = row.Key
	}
	return c.batch(ctx, p, keys, func(i int, key record.Key) (*record.Record, error) {
		for name := range rows[i].Bins {
			if err := value.CheckBinName(name); err != nil {
				return nil, err
			}
		}
		rec, err := c.write(key, wp, func(rec *StoredRecord) error {
			for name, v := range rows[i].Bins {
				setBin(rec, name, v)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		k := key
		return &record.Record{Key: &k, Meta: c.metaOf(rec)}, nil
	})
}
