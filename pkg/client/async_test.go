package client

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap/zaptest"

	"github.com/ajitpratap0/kvbridge/pkg/cluster"
	"github.com/ajitpratap0/kvbridge/pkg/cluster/local"
	"github.com/ajitpratap0/kvbridge/pkg/config"
	"github.com/ajitpratap0/kvbridge/pkg/kverrors"
	"github.com/ajitpratap0/kvbridge/pkg/operation"
	"github.com/ajitpratap0/kvbridge/pkg/policy"
	"github.com/ajitpratap0/kvbridge/pkg/record"
	"github.com/ajitpratap0/kvbridge/pkg/value"
)

func newTestAsyncClient(t *testing.T, c cluster.Cluster, opts ...Option) *AsyncClient {
	t.Helper()
	a, err := NewAsync(config.NewClientConfig(), append(testOptions(t, c, prometheus.NewRegistry()), opts...)...)
	require.NoError(t, err)
	return a
}

func TestAsyncCRUD(t *testing.T) {
	ctx := context.Background()
	a := newTestAsyncClient(t, local.New(local.WithLogger(zaptest.NewLogger(t))))
	_, err := a.Connect(ctx).Await(ctx)
	require.NoError(t, err)
	defer a.Close()
	assert.True(t, a.IsConnected())

	keys := make([]record.Key, 5)
	puts := make([]*Future[struct{}], len(keys))
	for i := range keys {
		keys[i] = record.MustKey("test", "async", i)
		puts[i] = a.Put(ctx, keys[i], map[string]any{"i": i})
	}
	_, err = AwaitAll(ctx, puts...)
	require.NoError(t, err)

	gets := make([]*Future[*Record], len(keys))
	for i, k := range keys {
		gets[i] = a.Get(ctx, k)
	}
	recs, err := AwaitAll(ctx, gets...)
	require.NoError(t, err)
	for i, r := range recs {
		assert.Equal(t, int64(i), r.Bins["i"])
	}

	ordered, err := a.OperateOrdered(ctx, keys[0], []operation.Spec{
		operation.Increment("i", 10),
		operation.Read("i"),
	}).Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Bin{{Name: "i", Value: int64(10)}, {Name: "i", Value: int64(10)}}, ordered.Bins)

	exists, err := a.Exists(ctx, record.MustKey("test", "async", "none")).Await(ctx)
	require.NoError(t, err)
	assert.False(t, exists.Found())

	entries, err := a.BatchRead(ctx, keys, []string{"i"}).Await(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, len(keys))

	all, err := a.Scan("test", "async").Results(ctx).Await(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(keys))
}

func TestAsyncPrepareFailureIsImmediate(t *testing.T) {
	ctx := context.Background()
	a := newTestAsyncClient(t, cluster.NewMockCluster(gomock.NewController(t)))

	f := a.Select(ctx, record.MustKey("test", "demo", 1), nil)
	select {
	case <-f.Done():
	default:
		t.Fatal("a rejected call is done at once")
	}
	_, err := f.Await(ctx)
	assert.True(t, kverrors.IsKind(err, kverrors.InvalidArgError))

	_, err = AwaitAll(ctx, a.Put(ctx, record.MustKey("test", "demo", 1), map[string]any{"a_bin_name_that_is_too_long": 1}))
	assert.True(t, kverrors.IsKind(err, kverrors.BinNameError))
}

func TestAsyncCancel(t *testing.T) {
	ctx := context.Background()
	mc := cluster.NewMockCluster(gomock.NewController(t))
	release := make(chan struct{})
	started := make(chan struct{})
	mc.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Nil()).
		DoAndReturn(func(context.Context, *policy.Read, record.Key, []string) (*record.Record, error) {
			close(started)
			<-release
			return &record.Record{Bins: value.BinMap{"a": value.Int(1)}}, nil
		})

	a := newTestAsyncClient(t, mc)
	f := a.Get(ctx, record.MustKey("test", "demo", 1))
	<-started
	f.Cancel()
	close(release)
	<-f.Done()

	_, err := f.Await(ctx)
	assert.Equal(t, kverrors.CodeCancelled, kverrors.CodeOf(err))
}

func TestAsyncAwaitHonoursContext(t *testing.T) {
	mc := cluster.NewMockCluster(gomock.NewController(t))
	release := make(chan struct{})
	mc.EXPECT().NodeNames(gomock.Any()).DoAndReturn(func(context.Context) ([]string, error) {
		<-release
		return []string{"A"}, nil
	})
	a := newTestAsyncClient(t, mc)

	f := a.NodeNames(context.Background())
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := f.Await(ctx)
	assert.True(t, kverrors.IsKind(err, kverrors.TimeoutError))

	close(release)
	names, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, names)
}

func TestAsyncForeachRunsCallbackUnderLock(t *testing.T) {
	ctx := context.Background()
	lc := local.New(local.WithLogger(zaptest.NewLogger(t)))
	var mu sync.Mutex
	mu.Lock()
	defer mu.Unlock()

	a := newTestAsyncClient(t, lc, WithExecutionLock(&mu))
	_, err := a.Connect(ctx).Await(ctx)
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		_, err := a.Put(ctx, record.MustKey("test", "each", i), map[string]any{"i": i}).Await(ctx)
		require.NoError(t, err)
	}

	var held []bool
	f := a.Scan("test", "each").Foreach(ctx, func(*Record) bool {
		held = append(held, !mu.TryLock())
		return true
	})
	_, err = f.Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, true, true, true}, held)
}
