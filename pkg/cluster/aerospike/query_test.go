package aerospike

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	aero "github.com/aerospike/aerospike-client-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/kvbridge/pkg/kverrors"
	"github.com/ajitpratap0/kvbridge/pkg/value"
)

type fakeSource struct {
	ch     chan *aero.Result
	closed atomic.Int32
}

func newFakeSource(recs ...*aero.Record) *fakeSource {
	src := &fakeSource{ch: make(chan *aero.Result, len(recs))}
	for _, r := range recs {
		src.ch <- &aero.Result{Record: r}
	}
	return src
}

func (f *fakeSource) Results() <-chan *aero.Result { return f.ch }

func (f *fakeSource) Close() aero.Error {
	f.closed.Add(1)
	return nil
}

func aeroRecord(t *testing.T, n int) *aero.Record {
	t.Helper()
	k, err := aero.NewKey("test", "demo", n)
	require.NoError(t, err)
	return &aero.Record{Key: k, Bins: aero.BinMap{"n": n}, Generation: 1}
}

// stopCtx ends with a chosen error once stop is called.
type stopCtx struct {
	context.Context
	done chan struct{}
	err  error
}

func newStopCtx() *stopCtx {
	return &stopCtx{Context: context.Background(), done: make(chan struct{})}
}

func (c *stopCtx) Done() <-chan struct{} { return c.done }

func (c *stopCtx) Err() error {
	select {
	case <-c.done:
		return c.err
	default:
		return nil
	}
}

func (c *stopCtx) stop(err error) {
	c.err = err
	close(c.done)
}

func TestRelayStopsOnContextEnd(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code kverrors.ResultCode
	}{
		{"cancelled", context.Canceled, kverrors.CodeQueryAborted},
		{"deadline", context.DeadlineExceeded, kverrors.CodeQueryTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newFakeSource(aeroRecord(t, 1), aeroRecord(t, 2))
			ctx := newStopCtx()

			// A queue of one leaves the relay blocked on the second record.
			rs := newRecordset(ctx, src, "test", 1)
			defer rs.Close()
			require.Eventually(t, func() bool { return len(src.ch) == 0 }, time.Second, time.Millisecond)

			ctx.stop(tt.err)
			require.Eventually(t, func() bool { return src.closed.Load() > 0 }, time.Second, time.Millisecond)

			first := <-rs.Results()
			require.NoError(t, first.Err)
			require.NotNil(t, first.Record)
			assert.Equal(t, value.Int(1), first.Record.Bins["n"])

			aborted, ok := <-rs.Results()
			require.True(t, ok)
			assert.Nil(t, aborted.Record)
			assert.True(t, kverrors.IsKind(aborted.Err, kverrors.QueryError), "got %v", aborted.Err)
			assert.Equal(t, tt.code, kverrors.CodeOf(aborted.Err))

			_, ok = <-rs.Results()
			assert.False(t, ok)
		})
	}
}
