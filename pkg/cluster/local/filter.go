package local

import (
	"github.com/ajitpratap0/kvbridge/pkg/expression"
	"github.com/ajitpratap0/kvbridge/pkg/kverrors"
	"github.com/ajitpratap0/kvbridge/pkg/record"
)

// filter fails with FilteredOut when rec exists and exp does not hold for
// it. Missing records are left to the command.
func (c *Cluster) filter(exp *expression.Expr, key record.Key, rec *StoredRecord) error {
	if exp == nil || rec == nil {
		return nil
	}
	ok, err := expression.Matches(exp, c.envOf(rec))
	if err != nil {
		return err
	}
	if !ok {
		return kverrors.FromCode(kverrors.CodeFilteredOut, "").WithDetail("key", key.String())
	}
	return nil
}

func (c *Cluster) envOf(rec *StoredRecord) expression.Env {
	env := expression.Env{
		Bins:       rec.Bins,
		UserKey:    rec.UserKey,
		Set:        rec.Set,
		Digest:     rec.Digest[:],
		LastUpdate: rec.LastUpdate,
		ExpiresAt:  rec.ExpiresAt,
		Now:        c.now(),
	}
	if data, err := marshalRecord(rec); err == nil {
		env.Size = int64(len(data))
	}
	return env
}
