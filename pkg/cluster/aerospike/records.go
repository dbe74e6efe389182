package aerospike

import (
	"context"

	aero "github.com/aerospike/aerospike-client-go/v7"

	"github.com/ajitpratap0/kvbridge/pkg/kverrors"
	"github.com/ajitpratap0/kvbridge/pkg/operation"
	"github.com/ajitpratap0/kvbridge/pkg/policy"
	"github.com/ajitpratap0/kvbridge/pkg/record"
	"github.com/ajitpratap0/kvbridge/pkg/value"
)

func (c *Cluster) Get(ctx context.Context, p *policy.Read, key record.Key, bins []string) (*record.Record, error) {
	client, err := c.conn(ctx)
	if err != nil {
		return nil, err
	}
	rp, err := readPolicy(ctx, p)
	if err != nil {
		return nil, err
	}
	k, err := toAeroKey(key)
	if err != nil {
		return nil, err
	}

	var rec *aero.Record
	var aerr aero.Error
	if bins != nil && len(bins) == 0 {
		rec, aerr = client.GetHeader(rp, k)
	} else {
		rec, aerr = client.Get(rp, k, bins...)
	}
	if aerr != nil {
		return nil, mapError(aerr, kverrors.OpGeneric)
	}
	if rec == nil {
		return nil, kverrors.FromCode(kverrors.CodeKeyNotFound, "").WithDetail("key", key.String())
	}
	return fromAeroRecord(rec, key), nil
}

func (c *Cluster) Exists(ctx context.Context, p *policy.Read, key record.Key) (*record.Meta, error) {
	client, err := c.conn(ctx)
	if err != nil {
		return nil, err
	}
	rp, err := readPolicy(ctx, p)
	if err != nil {
		return nil, err
	}
	k, err := toAeroKey(key)
	if err != nil {
		return nil, err
	}
	rec, aerr := client.GetHeader(rp, k)
	if aerr != nil {
		if err := mapError(aerr, kverrors.OpExists); err != nil {
			return nil, err
		}
		rec = nil
	}
	if rec == nil {
		return nil, kverrors.FromCode(kverrors.CodeKeyNotFound, "").WithDetail("key", key.String())
	}
	return metaOf(rec), nil
}

func (c *Cluster) Put(ctx context.Context, p *policy.Write, key record.Key, bins value.BinMap) error {
	client, err := c.conn(ctx)
	if err != nil {
		return err
	}
	for name := range bins {
		if err := value.CheckBinName(name); err != nil {
			return err
		}
	}
	wp, err := writePolicy(ctx, p)
	if err != nil {
		return err
	}
	k, err := toAeroKey(key)
	if err != nil {
		return err
	}
	b, err := toAeroBins(bins)
	if err != nil {
		return err
	}
	return mapError(client.Put(wp, k, b), kverrors.OpGeneric)
}

func (c *Cluster) Delete(ctx context.Context, p *policy.Write, key record.Key) (bool, error) {
	client, err := c.conn(ctx)
	if err != nil {
		return false, err
	}
	wp, err := writePolicy(ctx, p)
	if err != nil {
		return false, err
	}
	k, err := toAeroKey(key)
	if err != nil {
		return false, err
	}
	existed, aerr := client.Delete(wp, k)
	if aerr != nil {
		return false, mapError(aerr, kverrors.OpGeneric)
	}
	return existed, nil
}

func (c *Cluster) Touch(ctx context.Context, p *policy.Write, key record.Key) error {
	client, err := c.conn(ctx)
	if err != nil {
		return err
	}
	wp, err := writePolicy(ctx, p)
	if err != nil {
		return err
	}
	k, err := toAeroKey(key)
	if err != nil {
		return err
	}
	return mapError(client.Touch(wp, k), kverrors.OpGeneric)
}

func (c *Cluster) Operate(ctx context.Context, p *policy.Write, key record.Key, ops []operation.Operation) (*record.OrderedRecord, error) {
	client, err := c.conn(ctx)
	if err != nil {
		return nil, err
	}
	if len(ops) == 0 {
		return nil, kverrors.New(kverrors.InvalidArgError, "operate requires at least one operation")
	}
	if p == nil {
		p = policy.DefaultWrite()
	}
	wp, err := writePolicy(ctx, p)
	if err != nil {
		return nil, err
	}
	k, err := toAeroKey(key)
	if err != nil {
		return nil, err
	}
	aops, err := toAeroOps(ops)
	if err != nil {
		return nil, err
	}

	rec, aerr := client.Operate(wp, k, aops...)
	if aerr != nil {
		return nil, mapError(aerr, kverrors.OpGeneric)
	}
	out := &record.OrderedRecord{Key: fromAeroKey(nil, key)}
	if rec == nil {
		return out, nil
	}
	out.Meta = metaOf(rec)
	out.Bins = orderResults(ops, rec.Bins, p.RespondAllOps)
	return out, nil
}
