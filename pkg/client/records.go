package client

import (
	"context"

	"go.uber.org/zap"

	"github.com/ajitpratap0/kvbridge/pkg/kverrors"
	"github.com/ajitpratap0/kvbridge/pkg/operation"
	"github.com/ajitpratap0/kvbridge/pkg/policy"
	"github.com/ajitpratap0/kvbridge/pkg/record"
	"github.com/ajitpratap0/kvbridge/pkg/value"
)

type none = struct{}

func (b *bridge) connect() invocation[none] {
	return invoke("connect", "", "", func(ctx context.Context) (none, error) {
		if err := b.cluster.Connect(ctx); err != nil {
			return none{}, err
		}
		b.logger.Info("client connected", zap.Int("seed_hosts", len(b.cfg.Hosts)))
		return none{}, nil
	}, same[none])
}

func (b *bridge) nodeNames() invocation[[]string] {
	return invoke("node_names", "", "", func(ctx context.Context) ([]string, error) {
		return b.cluster.NodeNames(ctx)
	}, same[[]string])
}

func (b *bridge) put(key record.Key, bins map[string]any, o callOptions) invocation[none] {
	enc, err := value.EncodeBins(bins)
	if err != nil {
		return failed[none]("put", err)
	}
	p, err := b.writePolicy(o)
	if err != nil {
		return failed[none]("put", err)
	}
	return invoke("put", key.Namespace, key.Set, func(ctx context.Context) (none, error) {
		return none{}, b.cluster.Put(ctx, p, key, enc)
	}, same[none])
}

func (b *bridge) get(op string, key record.Key, bins []string, o callOptions) invocation[*Record] {
	if op == "select" && len(bins) == 0 {
		return failed[*Record](op, kverrors.New(kverrors.InvalidArgError, "select requires at least one bin"))
	}
	for _, name := range bins {
		if err := value.CheckBinName(name); err != nil {
			return failed[*Record](op, err)
		}
	}
	p, err := b.readPolicy(o)
	if err != nil {
		return failed[*Record](op, err)
	}
	return invoke(op, key.Namespace, key.Set, func(ctx context.Context) (*record.Record, error) {
		return b.cluster.Get(ctx, p, key, bins)
	}, func(r *record.Record) (*Record, error) {
		return toRecord(r), nil
	})
}

func (b *bridge) exists(key record.Key, o callOptions) invocation[*ExistsResult] {
	p, err := b.readPolicy(o)
	if err != nil {
		return failed[*ExistsResult]("exists", err)
	}
	return invoke("exists", key.Namespace, key.Set, func(ctx context.Context) (*record.Meta, error) {
		meta, err := b.cluster.Exists(ctx, p, key)
		if err != nil && kverrors.Map(kverrors.CodeOf(err), kverrors.OpExists) == nil {
			return nil, nil
		}
		return meta, err
	}, func(meta *record.Meta) (*ExistsResult, error) {
		return &ExistsResult{Key: key, Meta: meta}, nil
	})
}

func (b *bridge) remove(key record.Key, o callOptions) invocation[none] {
	p, err := b.writePolicy(o)
	if err != nil {
		return failed[none]("remove", err)
	}
	return invoke("remove", key.Namespace, key.Set, func(ctx context.Context) (none, error) {
		_, err := b.cluster.Delete(ctx, p, key)
		return none{}, err
	}, same[none])
}

// touch resets the TTL of a record; ttl 0 keeps the policy TTL.
func (b *bridge) touch(key record.Key, ttl uint32, o callOptions) invocation[none] {
	p, err := b.writePolicy(o)
	if err != nil {
		return failed[none]("touch", err)
	}
	if ttl > 0 {
		if ttl > 1<<31-1 {
			return failed[none]("touch", kverrors.Newf(kverrors.OutOfRange, "ttl %d is too large", ttl))
		}
		cp := *p
		cp.TTL = policy.TTL(ttl)
		p = &cp
	}
	return invoke("touch", key.Namespace, key.Set, func(ctx context.Context) (none, error) {
		return none{}, b.cluster.Touch(ctx, p, key)
	}, same[none])
}

// single runs one write operation through operate and discards its result.
func (b *bridge) single(name string, key record.Key, spec operation.Spec, o callOptions) invocation[none] {
	op, err := operation.Parse(spec)
	if err != nil {
		return failed[none](name, err)
	}
	p, err := b.writePolicy(o)
	if err != nil {
		return failed[none](name, err)
	}
	return invoke(name, key.Namespace, key.Set, func(ctx context.Context) (none, error) {
		_, err := b.cluster.Operate(ctx, p, key, []operation.Operation{op})
		return none{}, err
	}, same[none])
}

// removeBin deletes bins by writing nil to them.
func (b *bridge) removeBin(key record.Key, bins []string, o callOptions) invocation[none] {
	if len(bins) == 0 {
		return failed[none]("remove_bin", kverrors.New(kverrors.InvalidArgError, "remove_bin requires at least one bin"))
	}
	nils := make(map[string]any, len(bins))
	for _, name := range bins {
		nils[name] = nil
	}
	inv := b.put(key, nils, o)
	inv.op = "remove_bin"
	return inv
}

func (b *bridge) parseOps(name string, specs []operation.Spec) ([]operation.Operation, error) {
	if len(specs) == 0 {
		return nil, kverrors.Newf(kverrors.InvalidArgError, "%s requires at least one operation", name)
	}
	return operation.ParseAll(specs)
}

func (b *bridge) operate(key record.Key, specs []operation.Spec, o callOptions) invocation[*Record] {
	ops, err := b.parseOps("operate", specs)
	if err != nil {
		return failed[*Record]("operate", err)
	}
	p, err := b.writePolicy(o)
	if err != nil {
		return failed[*Record]("operate", err)
	}
	return invoke("operate", key.Namespace, key.Set, func(ctx context.Context) (*record.OrderedRecord, error) {
		return b.cluster.Operate(ctx, p, key, ops)
	}, func(r *record.OrderedRecord) (*Record, error) {
		if r == nil {
			return nil, nil
		}
		return toRecord(r.Collapse()), nil
	})
}

func (b *bridge) operateOrdered(key record.Key, specs []operation.Spec, o callOptions) invocation[*OrderedRecord] {
	ops, err := b.parseOps("operate_ordered", specs)
	if err != nil {
		return failed[*OrderedRecord]("operate_ordered", err)
	}
	p, err := b.writePolicy(o)
	if err != nil {
		return failed[*OrderedRecord]("operate_ordered", err)
	}
	return invoke("operate_ordered", key.Namespace, key.Set, func(ctx context.Context) (*record.OrderedRecord, error) {
		return b.cluster.Operate(ctx, p, key, ops)
	}, func(r *record.OrderedRecord) (*OrderedRecord, error) {
		return toOrdered(r), nil
	})
}
