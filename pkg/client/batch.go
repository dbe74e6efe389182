package client

import (
	"context"

	"github.com/ajitpratap0/kvbridge/pkg/columnar"
	"github.com/ajitpratap0/kvbridge/pkg/kverrors"
	"github.com/ajitpratap0/kvbridge/pkg/operation"
	"github.com/ajitpratap0/kvbridge/pkg/record"
	"github.com/ajitpratap0/kvbridge/pkg/value"
)

func checkKeys(op string, keys []record.Key) error {
	if len(keys) == 0 {
		return kverrors.Newf(kverrors.InvalidArgError, "%s requires at least one key", op)
	}
	return nil
}

// batchRead reads many records. A nil bins slice reads every bin; an empty
// non-nil slice only checks existence.
func (b *bridge) batchRead(keys []record.Key, bins []string, o callOptions) invocation[[]BatchRecord] {
	if err := checkKeys("batch_read", keys); err != nil {
		return failed[[]BatchRecord]("batch_read", err)
	}
	for _, name := range bins {
		if err := value.CheckBinName(name); err != nil {
			return failed[[]BatchRecord]("batch_read", err)
		}
	}
	p, _, err := b.batchPolicies(o)
	if err != nil {
		return failed[[]BatchRecord]("batch_read", err)
	}
	return invoke("batch_read", keys[0].Namespace, keys[0].Set, func(ctx context.Context) ([]record.BatchEntry, error) {
		return b.cluster.BatchGet(ctx, p, keys, bins)
	}, decodeBatch).withBatch(len(keys))
}

func (b *bridge) batchOperate(keys []record.Key, specs []operation.Spec, o callOptions) invocation[[]BatchRecord] {
	if err := checkKeys("batch_operate", keys); err != nil {
		return failed[[]BatchRecord]("batch_operate", err)
	}
	ops, err := b.parseOps("batch_operate", specs)
	if err != nil {
		return failed[[]BatchRecord]("batch_operate", err)
	}
	p, wp, err := b.batchPolicies(o)
	if err != nil {
		return failed[[]BatchRecord]("batch_operate", err)
	}
	return invoke("batch_operate", keys[0].Namespace, keys[0].Set, func(ctx context.Context) ([]record.BatchEntry, error) {
		return b.cluster.BatchOperate(ctx, p, wp, keys, ops)
	}, decodeBatch).withBatch(len(keys))
}

func (b *bridge) batchRemove(keys []record.Key, o callOptions) invocation[[]BatchRecord] {
	if err := checkKeys("batch_remove", keys); err != nil {
		return failed[[]BatchRecord]("batch_remove", err)
	}
	p, wp, err := b.batchPolicies(o)
	if err != nil {
		return failed[[]BatchRecord]("batch_remove", err)
	}
	return invoke("batch_remove", keys[0].Namespace, keys[0].Set, func(ctx context.Context) ([]record.BatchEntry, error) {
		return b.cluster.BatchRemove(ctx, p, wp, keys)
	}, decodeBatch).withBatch(len(keys))
}

// batchReadColumnar reads the non-reserved fields of desc for every key and
// packs them into one buffer.
func (b *bridge) batchReadColumnar(keys []record.Key, desc *columnar.Descriptor, o callOptions) invocation[*columnar.ReadResult] {
	const op = "batch_read_columnar"
	if err := desc.Validate(); err != nil {
		return failed[*columnar.ReadResult](op, err)
	}
	if err := checkKeys(op, keys); err != nil {
		return failed[*columnar.ReadResult](op, err)
	}
	bins := make([]string, 0, len(desc.Fields))
	for _, f := range desc.Fields {
		if !f.Reserved() {
			bins = append(bins, f.Name)
		}
	}
	p, _, err := b.batchPolicies(o)
	if err != nil {
		return failed[*columnar.ReadResult](op, err)
	}
	strict := o.strict
	return invoke(op, keys[0].Namespace, keys[0].Set, func(ctx context.Context) ([]record.BatchEntry, error) {
		return b.cluster.BatchGet(ctx, p, keys, bins)
	}, func(entries []record.BatchEntry) (*columnar.ReadResult, error) {
		return columnar.Decode(entries, desc, columnar.WithStrict(strict), columnar.WithLogger(b.logger))
	}).withBatch(len(keys))
}

// batchWriteColumnar writes one record per row of buf in a single batch.
func (b *bridge) batchWriteColumnar(buf []byte, desc *columnar.Descriptor, namespace, set, keyField string, o callOptions) invocation[[]BatchRecord] {
	const op = "batch_write_columnar"
	rows, err := columnar.Encode(buf, desc, namespace, set, keyField)
	if err != nil {
		return failed[[]BatchRecord](op, err)
	}
	if len(rows) == 0 {
		return invoke(op, namespace, set, func(context.Context) ([]BatchRecord, error) {
			return []BatchRecord{}, nil
		}, same[[]BatchRecord])
	}
	p, wp, err := b.batchPolicies(o)
	if err != nil {
		return failed[[]BatchRecord](op, err)
	}
	return invoke(op, namespace, set, func(ctx context.Context) ([]record.BatchEntry, error) {
		return b.cluster.BatchWrite(ctx, p, wp, rows)
	}, decodeBatch).withBatch(len(rows))
}

func decodeBatch(entries []record.BatchEntry) ([]BatchRecord, error) {
	return toBatchRecords(entries), nil
}
