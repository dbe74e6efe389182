package local

import (
	"context"
	"sort"

	"github.com/ajitpratap0/kvbridge/pkg/kverrors"
	"github.com/ajitpratap0/kvbridge/pkg/operation"
	"github.com/ajitpratap0/kvbridge/pkg/policy"
	"github.com/ajitpratap0/kvbridge/pkg/record"
	"github.com/ajitpratap0/kvbridge/pkg/value"
)

func (c *Cluster) Operate(ctx context.Context, p *policy.Write, key record.Key, ops []operation.Operation) (*record.OrderedRecord, error) {
	if err := c.ready(ctx); err != nil {
		return nil, err
	}
	if err := c.checkNamespace(key.Namespace); err != nil {
		return nil, err
	}
	if len(ops) == 0 {
		return nil, kverrors.New(kverrors.InvalidArgError, "operate requires at least one operation")
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.operate(p, key, ops)
}

// operate runs ops atomically. The caller holds c.mu.
func (c *Cluster) operate(p *policy.Write, key record.Key, ops []operation.Operation) (*record.OrderedRecord, error) {
	if p == nil {
		p = policy.DefaultWrite()
	}
	modifies := false
	for _, op := range ops {
		if !op.Code.Known() {
			return nil, kverrors.Newf(kverrors.InvalidArgError, "unsupported operation code %d", op.Code)
		}
		modifies = modifies || op.Code.Modifies()
	}
	k := key

	if !modifies {
		rec, err := c.load(key)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			return nil, kverrors.FromCode(kverrors.CodeKeyNotFound, "").WithDetail("key", key.String())
		}
		if err := c.filter(p.FilterExpression, key, rec); err != nil {
			return nil, err
		}
		bins, err := applyOps(rec, ops, p.RespondAllOps)
		if err != nil {
			return nil, err
		}
		return &record.OrderedRecord{Key: &k, Meta: c.metaOf(rec), Bins: bins}, nil
	}

	var bins []record.Bin
	rec, err := c.write(key, p, func(rec *StoredRecord) error {
		var err error
		bins, err = applyOps(rec, ops, p.RespondAllOps)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &record.OrderedRecord{Key: &k, Meta: c.metaOf(rec), Bins: bins}, nil
}

// applyOps executes ops in order against rec and collects their results.
// Operations without a value report Nil only when respondAll is set.
func applyOps(rec *StoredRecord, ops []operation.Operation, respondAll bool) ([]record.Bin, error) {
	var out []record.Bin
	emit := func(name string, v value.Value) {
		if v == nil {
			if !respondAll {
				return
			}
			v = value.Nil{}
		}
		out = append(out, record.Bin{Name: name, Value: v})
	}

	for _, op := range ops {
		switch {
		case op.Code == operation.OpRead:
			if op.ReadsAllBins() {
				names := make([]string, 0, len(rec.Bins))
				for name := range rec.Bins {
					names = append(names, name)
				}
				sort.Strings(names)
				for _, name := range names {
					emit(name, rec.Bins[name])
				}
				continue
			}
			v, ok := rec.Bins[op.Bin]
			if !ok {
				v = value.Nil{}
			}
			emit(op.Bin, v)

		case op.Code == operation.OpWrite:
			setBin(rec, op.Bin, op.Value)
			emit(op.Bin, op.Value)

		case op.Code == operation.OpIncr:
			next, err := addNumbers(op, rec.Bins[op.Bin], op.Value)
			if err != nil {
				return nil, err
			}
			setBin(rec, op.Bin, next)
			emit(op.Bin, next)

		case op.Code == operation.OpAppend || op.Code == operation.OpPrepend:
			next, err := concat(op, rec.Bins[op.Bin])
			if err != nil {
				return nil, err
			}
			setBin(rec, op.Bin, next)
			emit(op.Bin, next)

		case op.Code == operation.OpTouch:
			// the write itself refreshes generation and TTL

		case op.Code == operation.OpDelete:
			rec.Bins = value.BinMap{}
			rec.Orders = nil

		case op.Code.IsList():
			v, err := applyList(rec, op)
			if err != nil {
				return nil, err
			}
			emit(op.Bin, v)

		case op.Code.IsMap():
			v, err := applyMap(rec, op)
			if err != nil {
				return nil, err
			}
			emit(op.Bin, v)
		}
	}
	return out, nil
}

func concat(op operation.Operation, cur value.Value) (value.Value, error) {
	if value.IsNil(cur) {
		return op.Value, nil
	}
	prepend := op.Code == operation.OpPrepend
	switch c := cur.(type) {
	case value.String:
		if s, ok := op.Value.(value.String); ok {
			if prepend {
				return s + c, nil
			}
			return c + s, nil
		}
	case value.Blob:
		if b, ok := op.Value.(value.Blob); ok {
			if prepend {
				return append(append(value.Blob{}, b...), c...), nil
			}
			return append(append(value.Blob{}, c...), b...), nil
		}
	}
	return nil, binTypeError(op, cur)
}
