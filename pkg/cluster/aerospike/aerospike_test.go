package aerospike

import (
	"context"
	"errors"
	"testing"
	"time"

	aero "github.com/aerospike/aerospike-client-go/v7"
	"github.com/aerospike/aerospike-client-go/v7/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ajitpratap0/kvbridge/pkg/cluster"
	"github.com/ajitpratap0/kvbridge/pkg/config"
	"github.com/ajitpratap0/kvbridge/pkg/kverrors"
	"github.com/ajitpratap0/kvbridge/pkg/operation"
	"github.com/ajitpratap0/kvbridge/pkg/policy"
	"github.com/ajitpratap0/kvbridge/pkg/record"
	"github.com/ajitpratap0/kvbridge/pkg/value"
)

func parseOps(t *testing.T, specs ...operation.Spec) []operation.Operation {
	t.Helper()
	ops, err := operation.ParseAll(specs)
	require.NoError(t, err)
	return ops
}

func TestCommandsBeforeConnect(t *testing.T) {
	c := New(config.NewClientConfig(config.Host{Name: "127.0.0.1", Port: 3000}), WithLogger(zaptest.NewLogger(t)))
	key := record.MustKey("test", "demo", "k1")
	ctx := context.Background()

	assert.False(t, c.IsConnected())
	_, err := c.Get(ctx, nil, key, nil)
	assert.Equal(t, kverrors.CodeNotConnected, kverrors.CodeOf(err))
	assert.Equal(t, kverrors.CodeNotConnected, kverrors.CodeOf(c.Put(ctx, nil, key, value.BinMap{"a": value.Int(1)})))
	_, err = c.QueryUsers(ctx, nil)
	assert.Equal(t, kverrors.CodeNotConnected, kverrors.CodeOf(err))
	assert.NoError(t, c.Close())
}

func TestCancelledContextWinsOverConnection(t *testing.T) {
	c := New(config.NewClientConfig(config.Host{Name: "127.0.0.1", Port: 3000}), WithLogger(zaptest.NewLogger(t)))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Connect(ctx)
	assert.Equal(t, kverrors.CodeCancelled, kverrors.CodeOf(err))
	_, err = c.NodeNames(ctx)
	assert.Equal(t, kverrors.CodeCancelled, kverrors.CodeOf(err))
}

func TestClientPolicy(t *testing.T) {
	cfg := config.NewClientConfig(config.Host{Name: "db1", Port: 3000})
	cfg.User = "admin"
	cfg.Password = "secret"
	cfg.AuthMode = config.AuthExternal
	cfg.ClusterName = "prod"
	cfg.MaxConnsPerNode = 50

	p := clientPolicy(cfg)
	assert.Equal(t, "admin", p.User)
	assert.Equal(t, "secret", p.Password)
	assert.Equal(t, aero.AuthModeExternal, p.AuthMode)
	assert.Equal(t, "prod", p.ClusterName)
	assert.Equal(t, 50, p.ConnectionQueueSize)
	assert.Equal(t, cfg.Timeout, p.Timeout)
}

func TestExpiration(t *testing.T) {
	tests := []struct {
		name string
		ttl  policy.TTL
		want uint32
	}{
		{"namespace default", policy.TTLNamespaceDefault, aero.TTLServerDefault},
		{"never expire", policy.TTLNeverExpire, aero.TTLDontExpire},
		{"dont update", policy.TTLDontUpdate, aero.TTLDontUpdate},
		{"client default", policy.TTLClientDefault, aero.TTLServerDefault},
		{"seconds", 3600, 3600},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, expiration(tt.ttl))
		})
	}
}

func TestWritePolicy(t *testing.T) {
	p := *policy.DefaultWrite()
	p.Key = policy.KeySend
	p.Exists = policy.ExistsCreateOnly
	p.Gen = policy.GenEQ
	p.Generation = 7
	p.CommitLevel = policy.CommitMaster
	p.TTL = 60
	p.DurableDelete = true

	wp, err := writePolicy(context.Background(), &p)
	require.NoError(t, err)
	assert.True(t, wp.SendKey)
	assert.Equal(t, aero.CREATE_ONLY, wp.RecordExistsAction)
	assert.Equal(t, aero.EXPECT_GEN_EQUAL, wp.GenerationPolicy)
	assert.Equal(t, uint32(7), wp.Generation)
	assert.Equal(t, aero.COMMIT_MASTER, wp.CommitLevel)
	assert.Equal(t, uint32(60), wp.Expiration)
	assert.True(t, wp.DurableDelete)
	assert.True(t, wp.RespondPerEachOp)
}

func TestCapDeadline(t *testing.T) {
	t.Run("no deadline keeps timeouts", func(t *testing.T) {
		total, socket := 2*time.Second, time.Second
		require.NoError(t, capDeadline(context.Background(), &total, &socket))
		assert.Equal(t, 2*time.Second, total)
		assert.Equal(t, time.Second, socket)
	})
	t.Run("deadline shortens total and socket", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()
		total, socket := 5*time.Second, 5*time.Second
		require.NoError(t, capDeadline(ctx, &total, &socket))
		assert.LessOrEqual(t, total, 100*time.Millisecond)
		assert.Equal(t, total, socket)
	})
	t.Run("expired deadline is a timeout", func(t *testing.T) {
		ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
		defer cancel()
		var total, socket time.Duration
		err := capDeadline(ctx, &total, &socket)
		assert.True(t, kverrors.IsKind(err, kverrors.TimeoutError))
	})
}

func TestResultCode(t *testing.T) {
	tests := []struct {
		in   types.ResultCode
		want kverrors.ResultCode
	}{
		{types.OK, kverrors.CodeOK},
		{types.KEY_NOT_FOUND_ERROR, kverrors.CodeKeyNotFound},
		{types.GENERATION_ERROR, kverrors.CodeGeneration},
		{types.SERVER_NOT_AVAILABLE, kverrors.CodeNotConnected},
		{types.NO_AVAILABLE_CONNECTIONS_TO_NODE, kverrors.CodeNoMoreConnections},
		{types.NETWORK_ERROR, kverrors.CodeConnection},
		{types.PARSE_ERROR, kverrors.CodeParse},
		{types.SERIALIZE_ERROR, kverrors.CodeSerialize},
	}
	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, resultCode(tt.in))
		})
	}
}

func TestMapErrorWithoutClientError(t *testing.T) {
	own := kverrors.FromCode(kverrors.CodeKeyExists, "")
	assert.Same(t, own, mapError(own, kverrors.OpGeneric))

	assert.Equal(t, kverrors.CodeCancelled, kverrors.CodeOf(mapError(context.Canceled, kverrors.OpGeneric)))
	assert.True(t, kverrors.IsKind(mapError(context.DeadlineExceeded, kverrors.OpGeneric), kverrors.TimeoutError))

	err := mapError(errors.New("boom"), kverrors.OpGeneric)
	assert.True(t, kverrors.IsKind(err, kverrors.ClientError))
	assert.Nil(t, mapError(nil, kverrors.OpGeneric))
}

func TestToAeroConvertsNestedValues(t *testing.T) {
	in := value.Map{
		{Key: value.String("tags"), Value: value.List{value.Int(1), value.String("x")}},
		{Key: value.Int(2), Value: value.Float(1.5)},
	}
	out, err := toAero(in)
	require.NoError(t, err)
	assert.Equal(t, map[interface{}]interface{}{
		"tags":   []interface{}{int64(1), "x"},
		int64(2): 1.5,
	}, out)

	back := fromAero(out)
	assert.True(t, value.Equal(value.SortMap(in), back))
}

func TestToAeroRejectsBlobMapKeys(t *testing.T) {
	_, err := toAero(value.Map{{Key: value.Blob{1}, Value: value.Int(1)}})
	assert.True(t, kverrors.IsKind(err, kverrors.UnsupportedType))
}

func TestFromAero(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want value.Value
	}{
		{"nil", nil, value.Nil{}},
		{"int", 7, value.Int(7)},
		{"uint8", uint8(3), value.Int(3)},
		{"geojson", aero.GeoJSONValue(`{"type":"Point"}`), value.GeoJSON(`{"type":"Point"}`)},
		{"op results", aero.OpResults{1, "a"}, value.List{value.Int(1), value.String("a")}},
		{"ordered pairs", []aero.MapPair{{Key: "b", Value: 1}, {Key: "a", Value: 2}},
			value.Map{{Key: value.String("b"), Value: value.Int(1)}, {Key: value.String("a"), Value: value.Int(2)}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fromAero(tt.in))
		})
	}
}

func TestMetaOf(t *testing.T) {
	assert.Equal(t, &record.Meta{Generation: 2, TTL: 30}, metaOf(&aero.Record{Generation: 2, Expiration: 30}))
	assert.Equal(t, record.TTLNeverExpires, metaOf(&aero.Record{Expiration: ^uint32(0)}).TTL)
}

func TestToAeroOpsReadsBackConcatenation(t *testing.T) {
	ops := parseOps(t,
		operation.Increment("n", 1),
		operation.Write("s", "x"),
		operation.Append("s", "y"),
		operation.ListAppend("l", 1),
	)
	aops, err := toAeroOps(ops)
	require.NoError(t, err)
	assert.Len(t, aops, 6)
}

func TestOrderResults(t *testing.T) {
	ops := parseOps(t,
		operation.Write("s", "x"),
		operation.Increment("n", 2),
		operation.ListAppend("l", 5),
		operation.Read("s"),
		operation.Touch(),
		operation.Read("missing"),
	)
	bins := aero.BinMap{
		"s": aero.OpResults{nil, "x"},
		"n": aero.OpResults{nil, 12},
		"l": 3,
	}

	got := orderResults(ops, bins, false)
	assert.Equal(t, []record.Bin{
		{Name: "s", Value: value.String("x")},
		{Name: "n", Value: value.Int(12)},
		{Name: "l", Value: value.Int(3)},
		{Name: "s", Value: value.String("x")},
		{Name: "missing", Value: value.Nil{}},
	}, got)
}

func TestOrderResultsRespondAll(t *testing.T) {
	ops := parseOps(t, operation.ListClear("l"), operation.ListSize("l"))
	bins := aero.BinMap{"l": aero.OpResults{nil, 0}}

	assert.Equal(t, []record.Bin{{Name: "l", Value: value.Int(0)}}, orderResults(ops, bins, false))
	assert.Equal(t, []record.Bin{
		{Name: "l", Value: value.Nil{}},
		{Name: "l", Value: value.Int(0)},
	}, orderResults(ops, bins, true))
}

func TestOrderResultsReadAll(t *testing.T) {
	ops := parseOps(t, operation.ReadAll())
	bins := aero.BinMap{"b": 2, "a": "x"}
	assert.Equal(t, []record.Bin{
		{Name: "a", Value: value.String("x")},
		{Name: "b", Value: value.Int(2)},
	}, orderResults(ops, bins, false))
}

func TestPrivilegeTranslation(t *testing.T) {
	codes := []cluster.PrivilegeCode{
		cluster.PrivUserAdmin, cluster.PrivSysAdmin, cluster.PrivDataAdmin, cluster.PrivUDFAdmin,
		cluster.PrivSIndexAdmin, cluster.PrivRead, cluster.PrivReadWrite, cluster.PrivReadWriteUDF,
		cluster.PrivWrite, cluster.PrivTruncate,
	}
	for _, code := range codes {
		in := cluster.Privilege{Code: code, Namespace: "test", Set: "demo"}
		p, err := toAeroPrivilege(in)
		require.NoError(t, err)
		out, ok := fromAeroPrivilege(p)
		require.True(t, ok)
		assert.Equal(t, in, out)
	}

	_, err := toAeroPrivilege(cluster.Privilege{Code: 99})
	assert.Equal(t, kverrors.CodeInvalidPrivilege, kverrors.CodeOf(err))
}

func TestIndexTranslation(t *testing.T) {
	assert.Equal(t, aero.GEO2DSPHERE, indexType(3))
	assert.Equal(t, aero.ICT_MAPKEYS, collectionType(2))
	assert.Equal(t, aero.ICT_DEFAULT, collectionType(0))
}

func TestKeyDigestMatchesClient(t *testing.T) {
	tests := []struct {
		name    string
		set     string
		userKey any
	}{
		{"string", "users", "alice"},
		{"int", "users", 1},
		{"negative int", "users", -7},
		{"blob", "users", []byte{1, 2}},
		{"empty set", "", "alice"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ours := record.MustKey("test", tt.set, tt.userKey)
			theirs, err := aero.NewKey("test", tt.set, tt.userKey)
			require.NoError(t, err)
			assert.Equal(t, theirs.Digest(), ours.Digest[:])
		})
	}
}
