package client

import (
	"context"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ajitpratap0/kvbridge/internal/concurrency"
	"github.com/ajitpratap0/kvbridge/pkg/cluster"
	"github.com/ajitpratap0/kvbridge/pkg/cluster/local"
	"github.com/ajitpratap0/kvbridge/pkg/columnar"
	"github.com/ajitpratap0/kvbridge/pkg/config"
	"github.com/ajitpratap0/kvbridge/pkg/expression"
	"github.com/ajitpratap0/kvbridge/pkg/kverrors"
	"github.com/ajitpratap0/kvbridge/pkg/observability"
	"github.com/ajitpratap0/kvbridge/pkg/operation"
	"github.com/ajitpratap0/kvbridge/pkg/policy"
	"github.com/ajitpratap0/kvbridge/pkg/predicate"
	"github.com/ajitpratap0/kvbridge/pkg/record"
	"github.com/ajitpratap0/kvbridge/pkg/value"
)

// testOptions wires a client to c with isolated metrics and runtime.
func testOptions(t *testing.T, c cluster.Cluster, reg *prometheus.Registry) []Option {
	t.Helper()
	l := zaptest.NewLogger(t)
	return []Option{
		WithCluster(c),
		WithLogger(l),
		WithRuntime(concurrency.NewRuntime(64, concurrency.WithLogger(l))),
		WithInstrumentation(observability.New(
			observability.WithMetrics(observability.NewMetrics(reg)),
			observability.WithLogger(l),
		)),
	}
}

func newTestClient(t *testing.T, opts ...Option) (*Client, *local.Cluster) {
	t.Helper()
	lc := local.New(local.WithLogger(zaptest.NewLogger(t)))
	c, err := New(config.NewClientConfig(), append(testOptions(t, lc, prometheus.NewRegistry()), opts...)...)
	require.NoError(t, err)
	require.NoError(t, c.Connect(context.Background()))
	t.Cleanup(func() { _ = c.Close() })
	return c, lc
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	_, err := New(nil)
	assert.True(t, kverrors.IsKind(err, kverrors.InvalidArgError))

	_, err = New(config.NewClientConfig())
	assert.True(t, kverrors.IsKind(err, kverrors.InvalidArgError), "no hosts")
}

func TestNewLocalBackend(t *testing.T) {
	cfg := config.NewClientConfig(config.Host{Name: "127.0.0.1", Port: 3000})
	cfg.Backend.Type = config.BackendLocal
	cfg.Backend.Path = filepath.Join(t.TempDir(), "records.db")
	cfg.Backend.Namespaces = []string{"test"}

	c, err := New(cfg, WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, c.Connect(ctx))
	defer c.Close()
	assert.True(t, c.IsConnected())

	require.NoError(t, c.Put(ctx, record.MustKey("test", "demo", 1), map[string]any{"a": 1}))
	err = c.Put(ctx, record.MustKey("other", "demo", 1), map[string]any{"a": 1})
	assert.Equal(t, kverrors.CodeInvalidNamespace, kverrors.CodeOf(err))
}

func TestValuesSurviveRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t)
	key := record.MustKey("test", "demo", "values")

	nested := []any{int64(1), []any{int64(2), []any{int64(3), []any{int64(4), []any{int64(5)}}}}}
	bins := map[string]any{
		"min":    int64(math.MinInt64),
		"max":    int64(math.MaxInt64),
		"zero":   int64(0),
		"float":  -1.25,
		"text":   "héllo",
		"blob":   []byte{0, 1, 2},
		"empty":  "",
		"eblob":  []byte{},
		"list":   nested,
		"elist":  []any{},
		"map":    map[string]any{"k": "v", "n": map[string]any{"deep": true}},
		"emap":   map[string]any{},
		"intmap": map[any]any{int64(1): "one"},
		"flag":   true,
	}
	require.NoError(t, c.Put(ctx, key, bins))

	rec, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, bins, rec.Bins)
	assert.IsType(t, "", rec.Bins["text"])
	assert.IsType(t, []byte{}, rec.Bins["blob"])
}

func TestPutRejectsUnsupportedValues(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t)
	key := record.MustKey("test", "demo", "bad")

	err := c.Put(ctx, key, map[string]any{"a": uint64(math.MaxUint64)})
	assert.True(t, kverrors.IsKind(err, kverrors.OutOfRange))

	err = c.Put(ctx, key, map[string]any{"a": make(chan int)})
	assert.True(t, kverrors.IsKind(err, kverrors.UnsupportedType))

	_, err = c.Get(ctx, key)
	assert.True(t, kverrors.IsKind(err, kverrors.RecordNotFound), "nothing was written")
}

func TestGenerationGrowsWithEveryPut(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t)
	key := record.MustKey("test", "demo", "gen")

	var last uint32
	for i := 0; i < 5; i++ {
		require.NoError(t, c.Put(ctx, key, map[string]any{"i": i}))
		rec, err := c.Get(ctx, key)
		require.NoError(t, err)
		assert.Greater(t, rec.Meta.Generation, last)
		last = rec.Meta.Generation
	}
}

func TestCreateOnlyConflict(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t)
	key := record.MustKey("test", "demo", "create")
	createOnly := WithPolicy(map[string]any{"exists": policy.ExistsCreateOnly})

	require.NoError(t, c.Put(ctx, key, map[string]any{"x": 1}, createOnly))
	err := c.Put(ctx, key, map[string]any{"x": 2}, createOnly)
	require.Error(t, err)
	assert.True(t, errors.Is(err, kverrors.RecordExistsError))
	assert.Equal(t, kverrors.CodeKeyExists, kverrors.CodeOf(err))

	rec, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"x": int64(1)}, rec.Bins)
}

func TestOptimisticLock(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t)
	key := record.MustKey("test", "demo", "lock")
	require.NoError(t, c.Put(ctx, key, map[string]any{"v": 1}))

	rec, err := c.Get(ctx, key)
	require.NoError(t, err)
	g := rec.Meta.Generation

	genEQ := WithPolicy(map[string]any{"gen": policy.GenEQ})
	require.NoError(t, c.Put(ctx, key, map[string]any{"v": 2}, WithMeta(map[string]any{"gen": g}), genEQ))

	rec, err = c.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, g+1, rec.Meta.Generation)

	err = c.Put(ctx, key, map[string]any{"v": 3}, WithMeta(map[string]any{"gen": g}), genEQ)
	assert.True(t, errors.Is(err, kverrors.RecordGenerationError))
}

func TestPolicyOverridesAreIsolated(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t)

	_, err := c.Get(ctx, record.MustKey("test", "demo", "x"), WithPolicy(map[string]any{"no_such_field": 1}))
	assert.True(t, kverrors.IsKind(err, kverrors.InvalidArgError))

	overrides := map[string]any{"total_timeout": 5000}
	p1, err := c.b.readPolicy(collect([]CallOption{WithPolicy(overrides)}))
	require.NoError(t, err)
	p2, err := c.b.readPolicy(callOptions{})
	require.NoError(t, err)
	p3, err := c.b.readPolicy(callOptions{})
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, p1.TotalTimeout)
	assert.Equal(t, time.Second, p2.TotalTimeout)
	assert.Same(t, p2, p3, "calls without overrides share the cached default")
}

func TestExists(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t)
	key := record.MustKey("test", "demo", "exists")

	res, err := c.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, res.Found())
	assert.Nil(t, res.Meta)
	assert.Equal(t, key, res.Key)

	require.NoError(t, c.Put(ctx, key, map[string]any{"a": 1}))
	res, err = c.Exists(ctx, key)
	require.NoError(t, err)
	require.True(t, res.Found())
	assert.Equal(t, uint32(1), res.Meta.Generation)
}

func TestSingleRecordOperations(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t)
	key := record.MustKey("test", "demo", "ops")
	require.NoError(t, c.Put(ctx, key, map[string]any{"n": 1, "s": "b", "x": "gone"}))

	require.NoError(t, c.Increment(ctx, key, "n", 4))
	require.NoError(t, c.Append(ctx, key, "s", "c"))
	require.NoError(t, c.Prepend(ctx, key, "s", "a"))
	require.NoError(t, c.RemoveBin(ctx, key, []string{"x"}))
	require.NoError(t, c.Touch(ctx, key, 300))

	rec, err := c.Select(ctx, key, []string{"n", "s", "x"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"n": int64(5), "s": "abc"}, rec.Bins)
	assert.Equal(t, int32(300), rec.Meta.TTL)

	_, err = c.Select(ctx, key, nil)
	assert.True(t, kverrors.IsKind(err, kverrors.InvalidArgError))
	assert.True(t, kverrors.IsKind(c.RemoveBin(ctx, key, nil), kverrors.InvalidArgError))

	require.NoError(t, c.Remove(ctx, key))
	_, err = c.Get(ctx, key)
	assert.True(t, errors.Is(err, kverrors.RecordNotFound))
	require.NoError(t, c.Remove(ctx, key), "removing a missing record is not an error")
}

func TestOperateOrdered(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t)
	key := record.MustKey("test", "demo", "ordered")
	require.NoError(t, c.Put(ctx, key, map[string]any{"a": "prior"}))

	ops := []operation.Spec{operation.Read("a"), operation.Write("b", 1), operation.Read("b")}
	ordered, err := c.OperateOrdered(ctx, key, ops)
	require.NoError(t, err)
	assert.Equal(t, []Bin{
		{Name: "a", Value: "prior"},
		{Name: "b", Value: int64(1)},
		{Name: "b", Value: int64(1)},
	}, ordered.Bins)

	collapsed, err := c.Operate(ctx, key, ops)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": "prior", "b": int64(1)}, collapsed.Bins)
	assert.Equal(t, ordered.Meta.Generation+1, collapsed.Meta.Generation)

	_, err = c.Operate(ctx, key, nil)
	assert.True(t, kverrors.IsKind(err, kverrors.InvalidArgError))
	_, err = c.Operate(ctx, key, []operation.Spec{{"op": 999}})
	assert.True(t, kverrors.IsKind(err, kverrors.InvalidArgError))
}

func TestBatchPartialFailure(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t)

	keys := make([]record.Key, 10)
	for i := range keys {
		keys[i] = record.MustKey("test", "batch", i)
		if i%3 != 2 {
			require.NoError(t, c.Put(ctx, keys[i], map[string]any{"i": i}))
		}
	}

	entries, err := c.BatchRead(ctx, keys, nil)
	require.NoError(t, err)
	require.Len(t, entries, 10)

	missing := 0
	for i, e := range entries {
		assert.Equal(t, keys[i], e.Key)
		if !e.OK() {
			missing++
			assert.Equal(t, kverrors.CodeKeyNotFound, e.ResultCode)
			assert.Nil(t, e.Record)
			assert.True(t, errors.Is(e.Err(), kverrors.RecordNotFound))
			continue
		}
		assert.NoError(t, e.Err())
		assert.Equal(t, int64(i), e.Record.Bins["i"])
	}
	assert.Equal(t, 3, missing)

	headers, err := c.BatchRead(ctx, keys[:2], []string{})
	require.NoError(t, err)
	for _, e := range headers {
		require.True(t, e.OK())
		assert.Empty(t, e.Record.Bins)
		assert.NotNil(t, e.Record.Meta)
	}

	_, err = c.BatchRead(ctx, nil, nil)
	assert.True(t, kverrors.IsKind(err, kverrors.InvalidArgError))
}

func TestBatchOperateAndRemove(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t)
	keys := []record.Key{record.MustKey("test", "batch", "a"), record.MustKey("test", "batch", "b")}

	entries, err := c.BatchOperate(ctx, keys, []operation.Spec{operation.Increment("n", 2), operation.Read("n")})
	require.NoError(t, err)
	for _, e := range entries {
		require.True(t, e.OK())
		assert.Equal(t, int64(2), e.Record.Bins["n"])
	}

	entries, err = c.BatchRemove(ctx, keys)
	require.NoError(t, err)
	for _, e := range entries {
		assert.True(t, e.OK())
	}

	res, err := c.Exists(ctx, keys[0])
	require.NoError(t, err)
	assert.False(t, res.Found())
}

func TestBatchOperateWritePolicyOverrides(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t)
	existing := record.MustKey("test", "batchwp", "a")
	missing := record.MustKey("test", "batchwp", "b")
	require.NoError(t, c.Put(ctx, existing, map[string]any{"n": 1}))
	specs := []operation.Spec{operation.Increment("n", 1)}

	_, err := c.BatchOperate(ctx, []record.Key{existing, missing}, specs,
		WithPolicy(map[string]any{"exists": policy.ExistsUpdateOnly}))
	assert.True(t, kverrors.IsKind(err, kverrors.InvalidArgError), "write fields are not batch fields")

	entries, err := c.BatchOperate(ctx, []record.Key{existing, missing}, specs,
		WithWritePolicy(map[string]any{"exists": policy.ExistsUpdateOnly}))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[0].OK())
	assert.Equal(t, kverrors.CodeKeyNotFound, entries[1].ResultCode)

	_, err = c.BatchOperate(ctx, []record.Key{existing}, specs,
		WithWritePolicy(map[string]any{"no_such_field": 1}))
	assert.True(t, kverrors.IsKind(err, kverrors.InvalidArgError))
}

func columnarDesc() *columnar.Descriptor {
	return columnar.Layout(
		columnar.Field{Name: columnar.DefaultKeyField, Kind: columnar.SignedInt, Width: 8},
		columnar.Field{Name: "score", Kind: columnar.Float, Width: 8},
		columnar.Field{Name: "small", Kind: columnar.Float, Width: 4},
		columnar.Field{Name: "count", Kind: columnar.UnsignedInt, Width: 2},
		columnar.Field{Name: "delta", Kind: columnar.SignedInt, Width: 1},
		columnar.Field{Name: "tag", Kind: columnar.FixedBytes, Width: 4},
	)
}

func TestColumnarWriteThenRead(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t)
	desc := columnarDesc()

	const rows = 20
	buf := make([]byte, rows*desc.Stride)
	for i := 0; i < rows; i++ {
		row := buf[i*desc.Stride:]
		binary.LittleEndian.PutUint64(row[0:], uint64(i+100))
		binary.LittleEndian.PutUint64(row[8:], math.Float64bits(float64(i)/3))
		binary.LittleEndian.PutUint32(row[16:], math.Float32bits(float32(i)*1.5))
		binary.LittleEndian.PutUint16(row[20:], uint16(60000+i))
		row[22] = byte(int8(-i))
		copy(row[23:27], []byte{'t', byte('a' + i)})
	}

	written, err := c.BatchWriteColumnar(ctx, buf, desc, "test", "cols", "")
	require.NoError(t, err)
	require.Len(t, written, rows)
	for _, e := range written {
		require.True(t, e.OK(), e.ResultCode.String())
	}

	keys := make([]record.Key, rows+1)
	for i := 0; i < rows; i++ {
		keys[i] = record.MustKey("test", "cols", i+100)
	}
	keys[rows] = record.MustKey("test", "cols", 999)

	res, err := c.BatchReadColumnar(ctx, keys, desc.Without(columnar.DefaultKeyField))
	require.NoError(t, err)
	require.Equal(t, rows+1, res.Len())
	assert.Equal(t, int32(kverrors.CodeKeyNotFound), res.ResultCodes[rows])

	read := desc.Without(columnar.DefaultKeyField)
	for i := 0; i < rows; i++ {
		got := res.Row(i)
		require.Equal(t, kverrors.CodeOK, got.ResultCode())
		for _, f := range read.Fields {
			src, _ := desc.Field(f.Name)
			want := buf[i*desc.Stride+src.Offset : i*desc.Stride+src.Offset+src.Width]
			have := res.Buffer[i*read.Stride+f.Offset : i*read.Stride+f.Offset+f.Width]
			assert.Equal(t, want, have, "row %d field %s", i, f.Name)
		}
		byKey, ok := res.Lookup(i + 100)
		require.True(t, ok)
		assert.Equal(t, i, byKey.Index())
		assert.Equal(t, uint32(1), byKey.Meta().Gen)
	}
}

func TestColumnarRejectsTextFields(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t)
	desc := columnar.Layout(
		columnar.Field{Name: "_key", Kind: columnar.SignedInt, Width: 8},
		columnar.Field{Name: "name", Kind: columnar.Text, Width: 8},
	)

	_, err := c.BatchWriteColumnar(ctx, make([]byte, desc.Stride), desc, "test", "cols", "")
	assert.True(t, kverrors.IsKind(err, kverrors.UnsupportedColumnType))
	_, err = c.BatchReadColumnar(ctx, []record.Key{record.MustKey("test", "cols", 1)}, desc)
	assert.True(t, kverrors.IsKind(err, kverrors.UnsupportedColumnType))
}

func TestQueryAndScan(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t)
	for i := 0; i < 6; i++ {
		require.NoError(t, c.Put(ctx, record.MustKey("test", "people", i), map[string]any{"age": i * 10, "name": "p"}))
	}

	_, err := c.Query("test", "people").Where(predicate.Between("age", 20, 40)).Results(ctx)
	assert.True(t, kverrors.IsKind(err, kverrors.IndexNotFound))

	require.NoError(t, c.IndexIntegerCreate(ctx, "test", "people", "age", "age_idx"))
	err = c.IndexIntegerCreate(ctx, "test", "people", "age", "age_idx")
	assert.True(t, kverrors.IsKind(err, kverrors.IndexFoundError))

	recs, err := c.Query("test", "people").Select("age").Where(predicate.Between("age", 20, 40)).Results(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	for _, r := range recs {
		assert.NotContains(t, r.Bins, "name")
	}

	all, err := c.Scan("test", "people").Results(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 6)

	seen := 0
	err = c.Scan("test", "people").Foreach(ctx, func(*Record) bool {
		seen++
		return seen < 2
	})
	require.NoError(t, err)
	assert.Equal(t, 2, seen)

	_, err = c.Scan("test", "people").Where(predicate.Equals("age", 10)).Results(ctx)
	assert.True(t, kverrors.IsKind(err, kverrors.InvalidArgError))

	require.NoError(t, c.IndexRemove(ctx, "test", "age_idx"))
	require.NoError(t, c.Truncate(ctx, "test", "people", time.Time{}))
	all, err = c.Scan("test", "people").Results(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestUDF(t *testing.T) {
	ctx := context.Background()
	c, lc := newTestClient(t)
	lc.RegisterFunction("counter", "bump", func(rec *local.UDFRecord, args []value.Value) (value.Value, error) {
		n, _ := rec.Get("n").(value.Int)
		n += args[0].(value.Int)
		rec.Set("n", n)
		return n, nil
	})

	dir := t.TempDir()
	path := filepath.Join(dir, "counter.lua")
	require.NoError(t, os.WriteFile(path, []byte("function bump(rec, n) end"), 0o600))
	assert.True(t, kverrors.IsKind(c.UDFPut(ctx, filepath.Join(dir, "counter.py")), kverrors.InvalidArgError))
	require.NoError(t, c.UDFPut(ctx, path))

	key := record.MustKey("test", "udf", "k")
	got, err := c.Apply(ctx, key, "counter", "bump", []any{3})
	require.NoError(t, err)
	assert.Equal(t, int64(3), got)

	require.NoError(t, c.UDFRemove(ctx, "counter"))
	_, err = c.Apply(ctx, key, "counter", "bump", []any{1})
	assert.True(t, errors.Is(err, kverrors.UDFError))
}

func TestInfoAndNodes(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t)

	names, err := c.NodeNames(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, names)

	results, err := c.InfoAll(ctx, "build")
	require.NoError(t, err)
	require.Len(t, results, len(names))
	assert.Equal(t, names[0], results[0].Node)

	_, err = c.InfoRandomNode(ctx, "build")
	require.NoError(t, err)
	_, err = c.InfoAll(ctx, "")
	assert.True(t, kverrors.IsKind(err, kverrors.InvalidArgError))
}

func TestAdmin(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t)

	require.NoError(t, c.AdminCreateRole(ctx, RoleInfo{
		Name:       "reporting",
		Privileges: []Privilege{{Code: cluster.PrivRead, Namespace: "test"}},
	}))
	require.NoError(t, c.AdminGrantPrivileges(ctx, "reporting", []Privilege{{Code: cluster.PrivWrite}}))
	require.NoError(t, c.AdminRevokePrivileges(ctx, "reporting", []Privilege{{Code: cluster.PrivWrite}}))
	require.NoError(t, c.AdminSetWhitelist(ctx, "reporting", []string{"10.0.0.0/8"}))
	require.NoError(t, c.AdminSetQuotas(ctx, "reporting", 100, 10))

	role, err := c.AdminQueryRole(ctx, "reporting")
	require.NoError(t, err)
	assert.Equal(t, []Privilege{{Code: cluster.PrivRead, Namespace: "test"}}, role.Privileges)
	assert.Equal(t, uint32(100), role.ReadQuota)

	require.NoError(t, c.AdminCreateUser(ctx, "ada", "secret", []string{"read"}))
	require.NoError(t, c.AdminGrantRoles(ctx, "ada", []string{"reporting"}))
	require.NoError(t, c.AdminRevokeRoles(ctx, "ada", []string{"read"}))
	require.NoError(t, c.AdminChangePassword(ctx, "ada", "newer"))

	u, err := c.AdminQueryUser(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, []string{"reporting"}, u.Roles)

	users, err := c.AdminQueryUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
	roles, err := c.AdminQueryRoles(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, roles)

	require.NoError(t, c.AdminDropUser(ctx, "ada"))
	require.NoError(t, c.AdminDropRole(ctx, "reporting"))
	_, err = c.AdminQueryUser(ctx, "ada")
	assert.True(t, errors.Is(err, kverrors.AdminError))

	err = c.AdminGrantPrivileges(ctx, "x", []Privilege{{Code: 99}})
	assert.True(t, kverrors.IsKind(err, kverrors.InvalidArgError))
}

// trackingLock records whether it is held while a remote call runs.
type trackingLock struct {
	mu   sync.Mutex
	held bool
}

func (l *trackingLock) Lock()   { l.mu.Lock(); l.held = true }
func (l *trackingLock) Unlock() { l.held = false; l.mu.Unlock() }

func TestExecutionLockReleasedDuringCalls(t *testing.T) {
	ctx := context.Background()
	lock := &trackingLock{}
	lc := local.New(local.WithLogger(zaptest.NewLogger(t)))
	spy := &spyCluster{Cluster: lc, lock: lock}

	lock.Lock()
	defer lock.Unlock()
	c, err := New(config.NewClientConfig(), append(testOptions(t, spy, prometheus.NewRegistry()), WithExecutionLock(lock))...)
	require.NoError(t, err)
	require.NoError(t, c.Connect(ctx))

	key := record.MustKey("test", "demo", "lock")
	require.NoError(t, c.Put(ctx, key, map[string]any{"a": 1}))
	_, err = c.Get(ctx, key)
	require.NoError(t, err)

	assert.True(t, lock.held, "held again after the call")
	require.Len(t, spy.heldInCall, 2)
	assert.Equal(t, []bool{false, false}, spy.heldInCall)
}

// spyCluster reports whether the execution lock was free during Put and
// Get.
type spyCluster struct {
	cluster.Cluster
	lock       *trackingLock
	heldInCall []bool
}

func (p *spyCluster) free() bool {
	if p.lock.mu.TryLock() {
		p.lock.mu.Unlock()
		return true
	}
	return false
}

func (p *spyCluster) Put(ctx context.Context, wp *policy.Write, key record.Key, bins value.BinMap) error {
	p.heldInCall = append(p.heldInCall, !p.free())
	return p.Cluster.Put(ctx, wp, key, bins)
}

func (p *spyCluster) Get(ctx context.Context, rp *policy.Read, key record.Key, bins []string) (*record.Record, error) {
	p.heldInCall = append(p.heldInCall, !p.free())
	return p.Cluster.Get(ctx, rp, key, bins)
}

func TestForeachPanicReleasesExecutionLock(t *testing.T) {
	ctx := context.Background()
	var mu sync.Mutex
	mu.Lock()
	defer mu.Unlock()

	c, _ := newTestClient(t, WithExecutionLock(&mu))
	for i := 0; i < 3; i++ {
		require.NoError(t, c.Put(ctx, record.MustKey("test", "boom", i), map[string]any{"i": i}))
	}

	done := make(chan error, 1)
	go func() {
		// The goroutine stands in for the lock's owner; Block hands the
		// lock back to it on return.
		done <- c.Scan("test", "boom").Foreach(ctx, func(*Record) bool {
			panic("callback failed")
		})
	}()

	select {
	case err := <-done:
		assert.True(t, kverrors.IsKind(err, kverrors.ClientError), "got %v", err)
		assert.Contains(t, err.Error(), "callback failed")
	case <-time.After(5 * time.Second):
		t.Fatal("Foreach did not return after the callback panicked")
	}
	assert.False(t, mu.TryLock(), "lock is held again after the call")
}

func TestFilterExpressionPolicy(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t)
	adult := record.MustKey("test", "filter", "adult")
	child := record.MustKey("test", "filter", "child")
	require.NoError(t, c.Put(ctx, adult, map[string]any{"age": 40}))
	require.NoError(t, c.Put(ctx, child, map[string]any{"age": 9}))
	onlyAdults := WithPolicy(map[string]any{
		"filter_expression": expression.Ge(expression.IntBin("age"), expression.IntVal(18)),
	})

	rec, err := c.Get(ctx, adult, onlyAdults)
	require.NoError(t, err)
	assert.Equal(t, int64(40), rec.Bins["age"])

	_, err = c.Get(ctx, child, onlyAdults)
	assert.True(t, kverrors.IsKind(err, kverrors.FilteredOut), "got %v", err)
	assert.Equal(t, kverrors.CodeFilteredOut, kverrors.CodeOf(err))

	entries, err := c.BatchRead(ctx, []record.Key{adult, child}, nil, onlyAdults)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[0].OK())
	assert.Equal(t, kverrors.CodeFilteredOut, entries[1].ResultCode)

	_, err = c.Get(ctx, adult, WithPolicy(map[string]any{"filter_expression": expression.And()}))
	assert.True(t, kverrors.IsKind(err, kverrors.InvalidArgError))
}
