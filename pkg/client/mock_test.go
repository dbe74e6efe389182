package client

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ajitpratap0/kvbridge/pkg/cluster"
	"github.com/ajitpratap0/kvbridge/pkg/config"
	"github.com/ajitpratap0/kvbridge/pkg/kverrors"
	"github.com/ajitpratap0/kvbridge/pkg/record"
)

func newMockClient(t *testing.T) (*Client, *cluster.MockCluster, *prometheus.Registry) {
	t.Helper()
	mc := cluster.NewMockCluster(gomock.NewController(t))
	reg := prometheus.NewRegistry()
	c, err := New(config.NewClientConfig(), testOptions(t, mc, reg)...)
	require.NoError(t, err)
	return c, mc, reg
}

// errorTypes collects the error_type label of every duration series of op.
func errorTypes(t *testing.T, reg *prometheus.Registry, op string) []string {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	var out []string
	for _, f := range families {
		if f.GetName() != "db_client_operation_duration_seconds" {
			continue
		}
		for _, m := range f.GetMetric() {
			labels := map[string]string{}
			for _, l := range m.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			if labels["db_operation_name"] == op {
				out = append(out, labels["error_type"])
			}
		}
	}
	return out
}

func TestBatchWideFailurePropagates(t *testing.T) {
	ctx := context.Background()
	c, mc, reg := newMockClient(t)
	mc.EXPECT().BatchGet(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Nil()).
		Return(nil, kverrors.New(kverrors.ClusterError, "no nodes"))

	keys := []record.Key{record.MustKey("test", "demo", 1), record.MustKey("test", "demo", 2)}
	entries, err := c.BatchRead(ctx, keys, nil)
	assert.Nil(t, entries)
	assert.True(t, kverrors.IsKind(err, kverrors.ClusterError))
	assert.Equal(t, []string{"ClusterError"}, errorTypes(t, reg, "batch_read"))
}

func TestRejectedCallsNeverReachTheCluster(t *testing.T) {
	ctx := context.Background()
	// No expectations: any cluster call fails the test.
	c, _, reg := newMockClient(t)
	key := record.MustKey("test", "demo", 1)

	tests := []struct {
		name string
		call func() error
		kind *kverrors.Kind
	}{
		{"unsupported value", func() error {
			return c.Put(ctx, key, map[string]any{"ch": make(chan int)})
		}, kverrors.UnsupportedType},
		{"long bin name", func() error {
			return c.Put(ctx, key, map[string]any{"a_bin_name_that_is_too_long": 1})
		}, kverrors.BinNameError},
		{"unknown policy field", func() error {
			_, err := c.Get(ctx, key, WithPolicy(map[string]any{"no_such_field": 1}))
			return err
		}, kverrors.InvalidArgError},
		{"empty batch", func() error {
			_, err := c.BatchRead(ctx, nil, nil)
			return err
		}, kverrors.InvalidArgError},
		{"empty user", func() error {
			return c.AdminDropUser(ctx, "")
		}, kverrors.InvalidArgError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			assert.True(t, kverrors.IsKind(err, tt.kind), "got %v", err)
		})
	}
	assert.NotEmpty(t, errorTypes(t, reg, "put"))
}

func TestExistsPassesThroughOtherFailures(t *testing.T) {
	ctx := context.Background()
	c, mc, _ := newMockClient(t)
	key := record.MustKey("test", "demo", 1)

	gomock.InOrder(
		mc.EXPECT().Exists(gomock.Any(), gomock.Any(), key).
			Return(nil, kverrors.FromCode(kverrors.CodeKeyNotFound, "")),
		mc.EXPECT().Exists(gomock.Any(), gomock.Any(), key).
			Return(nil, kverrors.FromCode(kverrors.CodeTimeout, "")),
	)

	res, err := c.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, res.Found())

	_, err = c.Exists(ctx, key)
	assert.True(t, kverrors.IsKind(err, kverrors.TimeoutError))
	assert.Equal(t, kverrors.CodeTimeout, kverrors.CodeOf(err))
}

func TestInfoRandomNodeReturnsNodeError(t *testing.T) {
	ctx := context.Background()
	c, mc, _ := newMockClient(t)
	mc.EXPECT().Info(gomock.Any(), gomock.Any(), "statistics").Return(InfoResult{
		Node: "BB9",
		Err:  kverrors.FromCode(kverrors.CodeInvalidNode, "node gone"),
	}, nil)

	_, err := c.InfoRandomNode(ctx, "statistics")
	assert.Equal(t, kverrors.CodeInvalidNode, kverrors.CodeOf(err))

	_, err = c.InfoRandomNode(ctx, "")
	assert.True(t, kverrors.IsKind(err, kverrors.InvalidArgError))
}
