package local

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/kvbridge/pkg/cluster"
	"github.com/ajitpratap0/kvbridge/pkg/expression"
	"github.com/ajitpratap0/kvbridge/pkg/kverrors"
	"github.com/ajitpratap0/kvbridge/pkg/operation"
	"github.com/ajitpratap0/kvbridge/pkg/policy"
	"github.com/ajitpratap0/kvbridge/pkg/record"
	"github.com/ajitpratap0/kvbridge/pkg/value"
)

var adults = expression.Ge(expression.IntBin("age"), expression.IntVal(18))

func filteredRead(exp *expression.Expr) *policy.Read {
	p := *policy.DefaultRead()
	p.FilterExpression = exp
	return &p
}

func filteredBatch(exp *expression.Expr) *policy.Batch {
	p := *policy.DefaultBatch()
	p.FilterExpression = exp
	return &p
}

func TestFilteredOutSingleRecordCommands(t *testing.T) {
	ctx := context.Background()
	c := newTestCluster(t)
	child := record.MustKey("test", "people", "child")
	adult := record.MustKey("test", "people", "adult")
	require.NoError(t, c.Put(ctx, nil, child, value.BinMap{"age": value.Int(9)}))
	require.NoError(t, c.Put(ctx, nil, adult, value.BinMap{"age": value.Int(40)}))
	wp := writePolicy(func(p *policy.Write) { p.FilterExpression = adults })

	rec, err := c.Get(ctx, filteredRead(adults), adult, nil)
	require.NoError(t, err)
	assert.Equal(t, value.Int(40), rec.Bins["age"])

	tests := []struct {
		name string
		call func() error
	}{
		{"get", func() error { _, err := c.Get(ctx, filteredRead(adults), child, nil); return err }},
		{"exists", func() error { _, err := c.Exists(ctx, filteredRead(adults), child); return err }},
		{"put", func() error { return c.Put(ctx, wp, child, value.BinMap{"age": value.Int(10)}) }},
		{"touch", func() error { return c.Touch(ctx, wp, child) }},
		{"delete", func() error { _, err := c.Delete(ctx, wp, child); return err }},
		{"operate", func() error {
			_, err := c.Operate(ctx, wp, child, parseOps(t, operation.Read("age")))
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			assert.Equal(t, kverrors.CodeFilteredOut, kverrors.CodeOf(err))
			assert.True(t, kverrors.IsKind(err, kverrors.FilteredOut), "got %v", err)
		})
	}

	rec, err = c.Get(ctx, nil, child, nil)
	require.NoError(t, err)
	assert.Equal(t, value.Int(9), rec.Bins["age"], "filtered writes leave the record alone")
	assert.Equal(t, uint32(1), rec.Meta.Generation)

	// A filter never applies to a record that does not exist yet.
	require.NoError(t, c.Put(ctx, wp, record.MustKey("test", "people", "new"), value.BinMap{"age": value.Int(1)}))
	_, err = c.Get(ctx, filteredRead(adults), record.MustKey("test", "people", "nobody"), nil)
	assert.Equal(t, kverrors.CodeKeyNotFound, kverrors.CodeOf(err))
}

func TestFilteredOutBatchEntries(t *testing.T) {
	ctx := context.Background()
	c := newTestCluster(t)
	keys := []record.Key{
		record.MustKey("test", "people", 1),
		record.MustKey("test", "people", 2),
		record.MustKey("test", "people", 3),
	}
	require.NoError(t, c.Put(ctx, nil, keys[0], value.BinMap{"age": value.Int(30)}))
	require.NoError(t, c.Put(ctx, nil, keys[1], value.BinMap{"age": value.Int(12)}))

	entries, err := c.BatchGet(ctx, filteredBatch(adults), keys, nil)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.True(t, entries[0].OK())
	assert.Equal(t, kverrors.CodeFilteredOut, entries[1].ResultCode)
	assert.Nil(t, entries[1].Record)
	assert.Equal(t, kverrors.CodeKeyNotFound, entries[2].ResultCode)

	entries, err = c.BatchOperate(ctx, filteredBatch(adults), nil, keys[:2], parseOps(t, operation.Increment("age", 1)))
	require.NoError(t, err)
	assert.True(t, entries[0].OK())
	assert.Equal(t, kverrors.CodeFilteredOut, entries[1].ResultCode)

	rec, err := c.Get(ctx, nil, keys[1], nil)
	require.NoError(t, err)
	assert.Equal(t, value.Int(12), rec.Bins["age"])
}

func TestScanSkipsFilteredRecords(t *testing.T) {
	ctx := context.Background()
	c := newTestCluster(t)
	for i := 0; i < 10; i++ {
		require.NoError(t, c.Put(ctx, nil, record.MustKey("test", "scan", i), value.BinMap{"age": value.Int(10 + i)}))
	}
	require.NoError(t, c.Put(ctx, nil, record.MustKey("test", "scan", "noage"), value.BinMap{"name": value.String("x")}))

	qp := *policy.DefaultQuery()
	qp.FilterExpression = expression.And(adults, expression.Lt(expression.IntBin("age"), expression.IntVal(20)))
	rs, err := c.Scan(ctx, &qp, cluster.Statement{Namespace: "test", Set: "scan"})
	require.NoError(t, err)
	recs := drain(t, rs)
	assert.Len(t, recs, 2)

	qp.FilterExpression = expression.Eq(expression.Var("undefined"), expression.IntVal(1))
	_, err = c.Scan(ctx, &qp, cluster.Statement{Namespace: "test", Set: "scan"})
	assert.True(t, kverrors.IsKind(err, kverrors.InvalidArgError))
}

func TestFilterOnRecordMetadata(t *testing.T) {
	ctx := context.Background()
	c := newTestCluster(t)
	sendKey := writePolicy(func(p *policy.Write) { p.Key = policy.KeySend })
	key := record.MustKey("test", "meta", "k1")
	require.NoError(t, c.Put(ctx, sendKey, key, value.BinMap{"a": value.Int(1)}))

	tests := []struct {
		name  string
		exp   *expression.Expr
		match bool
	}{
		{"set name", expression.Eq(expression.SetName(), expression.StringVal("meta")), true},
		{"key exists", expression.KeyExists(), true},
		{"string key", expression.Eq(expression.Key(expression.TypeString), expression.StringVal("k1")), true},
		{"int key of a string key", expression.Eq(expression.Key(expression.TypeInt), expression.IntVal(1)), false},
		{"never expires", expression.Eq(expression.TTL(), expression.IntVal(-1)), true},
		{"record size", expression.Gt(expression.RecordSize(), expression.IntVal(0)), true},
		{"bin type", expression.Eq(expression.BinType("a"), expression.IntVal(1)), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Get(ctx, filteredRead(tt.exp), key, nil)
			if tt.match {
				assert.NoError(t, err)
			} else {
				assert.Equal(t, kverrors.CodeFilteredOut, kverrors.CodeOf(err))
			}
		})
	}
}
