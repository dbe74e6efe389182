package local

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/ajitpratap0/kvbridge/pkg/kverrors"
	"github.com/ajitpratap0/kvbridge/pkg/policy"
	"github.com/ajitpratap0/kvbridge/pkg/record"
	"github.com/ajitpratap0/kvbridge/pkg/value"
)

func (c *Cluster) Get(ctx context.Context, p *policy.Read, key record.Key, bins []string) (*record.Record, error) {
	if err := c.ready(ctx); err != nil {
		return nil, err
	}
	if err := c.checkNamespace(key.Namespace); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, err := c.load(key)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, kverrors.FromCode(kverrors.CodeKeyNotFound, "").WithDetail("key", key.String())
	}
	if p != nil {
		if err := c.filter(p.FilterExpression, key, rec); err != nil {
			return nil, err
		}
	}
	if err := c.touchOnRead(key.Namespace, rec, p); err != nil {
		return nil, err
	}
	return c.toRecord(key, rec, bins), nil
}

func (c *Cluster) Exists(ctx context.Context, p *policy.Read, key record.Key) (*record.Meta, error) {
	r, err := c.Get(ctx, p, key, []string{})
	if err != nil {
		return nil, err
	}
	return r.Meta, nil
}

func (c *Cluster) Put(ctx context.Context, p *policy.Write, key record.Key, bins value.BinMap) error {
	if err := c.ready(ctx); err != nil {
		return err
	}
	if err := c.checkNamespace(key.Namespace); err != nil {
		return err
	}
	for name := range bins {
		if err := value.CheckBinName(name); err != nil {
			return err
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.write(key, p, func(rec *StoredRecord) error {
		for name, v := range bins {
			setBin(rec, name, v)
		}
		return nil
	})
	return err
}

func (c *Cluster) Delete(ctx context.Context, p *policy.Write, key record.Key) (bool, error) {
	if err := c.ready(ctx); err != nil {
		return false, err
	}
	if err := c.checkNamespace(key.Namespace); err != nil {
		return false, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, err := c.load(key)
	if err != nil {
		return false, err
	}
	if rec == nil {
		return false, nil
	}
	if err := checkGeneration(rec, p); err != nil {
		return false, err
	}
	if p != nil {
		if err := c.filter(p.FilterExpression, key, rec); err != nil {
			return false, err
		}
	}
	if _, err := c.store.Delete(key.Namespace, key.Digest); err != nil {
		return false, storeErr(err)
	}
	c.logger.Debug("record deleted", zap.String("key", key.String()))
	return true, nil
}

func (c *Cluster) Touch(ctx context.Context, p *policy.Write, key record.Key) error {
	if err := c.ready(ctx); err != nil {
		return err
	}
	if err := c.checkNamespace(key.Namespace); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	existing, err := c.load(key)
	if err != nil {
		return err
	}
	if existing == nil {
		return kverrors.FromCode(kverrors.CodeKeyNotFound, "").WithDetail("key", key.String())
	}
	_, err = c.write(key, p, func(*StoredRecord) error { return nil })
	return err
}

// load returns the live record or nil. Expired records are removed.
func (c *Cluster) load(key record.Key) (*StoredRecord, error) {
	rec, err := c.store.Get(key.Namespace, key.Digest)
	if err != nil {
		return nil, storeErr(err)
	}
	if rec == nil {
		return nil, nil
	}
	if rec.expired(c.now()) {
		if _, err := c.store.Delete(key.Namespace, key.Digest); err != nil {
			return nil, storeErr(err)
		}
		return nil, nil
	}
	return rec, nil
}

// write runs mutate against the current record under the write policy and
// stores the result. A record left without bins is deleted. The caller holds
// c.mu.
func (c *Cluster) write(key record.Key, p *policy.Write, mutate func(*StoredRecord) error) (*StoredRecord, error) {
	if p == nil {
		p = policy.DefaultWrite()
	}
	existing, err := c.load(key)
	if err != nil {
		return nil, err
	}
	if err := checkExists(existing, p, key); err != nil {
		return nil, err
	}
	if err := checkGeneration(existing, p); err != nil {
		return nil, err
	}
	if err := c.filter(p.FilterExpression, key, existing); err != nil {
		return nil, err
	}

	rec := existing
	if rec == nil {
		rec = &StoredRecord{Digest: key.Digest, Set: key.Set, Bins: value.BinMap{}}
	}
	if p.Exists == policy.ExistsReplace || p.Exists == policy.ExistsReplaceOnly {
		rec.Bins = value.BinMap{}
		rec.Orders = nil
	}
	if err := mutate(rec); err != nil {
		return nil, err
	}

	if len(rec.Bins) == 0 {
		if existing != nil {
			if _, err := c.store.Delete(key.Namespace, key.Digest); err != nil {
				return nil, storeErr(err)
			}
		}
		return rec, nil
	}

	now := c.now()
	rec.Generation++
	rec.LastUpdate = now
	if p.Key == policy.KeySend && key.HasUserKey() {
		rec.UserKey = key.UserKey
	}
	c.applyTTL(rec, p.TTL, existing == nil, now)

	if err := c.store.Put(key.Namespace, rec); err != nil {
		return nil, storeErr(err)
	}
	return rec, nil
}

func checkExists(existing *StoredRecord, p *policy.Write, key record.Key) error {
	switch p.Exists {
	case policy.ExistsCreateOnly:
		if existing != nil {
			return kverrors.FromCode(kverrors.CodeKeyExists, "").WithDetail("key", key.String())
		}
	case policy.ExistsUpdateOnly, policy.ExistsReplaceOnly:
		if existing == nil {
			return kverrors.FromCode(kverrors.CodeKeyNotFound, "").WithDetail("key", key.String())
		}
	}
	return nil
}

// checkGeneration applies the generation policy. Records that do not exist yet
// are not checked.
func checkGeneration(existing *StoredRecord, p *policy.Write) error {
	if existing == nil || p == nil {
		return nil
	}
	switch p.Gen {
	case policy.GenEQ:
		if existing.Generation != p.Generation {
			return kverrors.FromCode(kverrors.CodeGeneration, "").
				WithDetail("expected", p.Generation).
				WithDetail("actual", existing.Generation)
		}
	case policy.GenGT:
		if p.Generation <= existing.Generation {
			return kverrors.FromCode(kverrors.CodeGeneration, "").
				WithDetail("expected_above", existing.Generation).
				WithDetail("actual", p.Generation)
		}
	}
	return nil
}

func (c *Cluster) applyTTL(rec *StoredRecord, ttl policy.TTL, created bool, now time.Time) {
	switch {
	case ttl > 0:
		rec.TTL = int32(ttl)
	case ttl == policy.TTLNeverExpire:
		rec.TTL = 0
	case ttl == policy.TTLDontUpdate && !created:
		return
	default:
		rec.TTL = c.defaultTTL
	}
	if rec.TTL > 0 {
		rec.ExpiresAt = now.Add(time.Duration(rec.TTL) * time.Second)
	} else {
		rec.ExpiresAt = time.Time{}
	}
}

// touchOnRead resets the TTL of a record read after the given percentage of
// its lifetime has elapsed.
func (c *Cluster) touchOnRead(ns string, rec *StoredRecord, p *policy.Read) error {
	if p == nil || p.ReadTouchTTLPercent <= 0 || rec.TTL <= 0 || rec.ExpiresAt.IsZero() {
		return nil
	}
	now := c.now()
	lifetime := time.Duration(rec.TTL) * time.Second
	elapsed := lifetime - rec.ExpiresAt.Sub(now)
	if elapsed*100 < lifetime*time.Duration(p.ReadTouchTTLPercent) {
		return nil
	}
	rec.ExpiresAt = now.Add(lifetime)
	if err := c.store.Put(ns, rec); err != nil {
		return storeErr(err)
	}
	return nil
}

func (c *Cluster) metaOf(rec *StoredRecord) *record.Meta {
	meta := &record.Meta{Generation: rec.Generation, TTL: record.TTLNeverExpires}
	if !rec.ExpiresAt.IsZero() {
		remaining := math.Ceil(rec.ExpiresAt.Sub(c.now()).Seconds())
		meta.TTL = int32(math.Max(remaining, 1))
	}
	return meta
}

// toRecord builds the result of a read. A nil bins slice selects every bin and
// an empty one selects none.
func (c *Cluster) toRecord(key record.Key, rec *StoredRecord, bins []string) *record.Record {
	k := key
	out := &record.Record{Key: &k, Meta: c.metaOf(rec)}
	switch {
	case bins == nil:
		out.Bins = rec.Bins.Clone()
	case len(bins) > 0:
		out.Bins = make(value.BinMap, len(bins))
		for _, name := range bins {
			if v, ok := rec.Bins[name]; ok {
				out.Bins[name] = v
			}
		}
	}
	return out
}

// storedKey rebuilds the key of a scanned record.
func storedKey(ns string, rec *StoredRecord) *record.Key {
	return &record.Key{Namespace: ns, Set: rec.Set, UserKey: rec.UserKey, Digest: rec.Digest}
}

// setBin writes v to a bin; Nil removes it.
func setBin(rec *StoredRecord, name string, v value.Value) {
	delete(rec.Orders, name)
	if value.IsNil(v) {
		delete(rec.Bins, name)
		return
	}
	rec.Bins[name] = v
}
