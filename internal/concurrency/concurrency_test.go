package concurrency

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ajitpratap0/kvbridge/pkg/kverrors"
)

type phaseLog struct {
	mu     sync.Mutex
	phases map[string][]Phase
}

func newPhaseLog() *phaseLog {
	return &phaseLog{phases: make(map[string][]Phase)}
}

func (l *phaseLog) observe(id string, p Phase) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.phases[id] = append(l.phases[id], p)
}

func (l *phaseLog) only(t *testing.T) []Phase {
	t.Helper()
	l.mu.Lock()
	defer l.mu.Unlock()
	require.Len(t, l.phases, 1)
	for _, p := range l.phases {
		return p
	}
	return nil
}

var allPhases = []Phase{Entered, LockReleased, RemoteInFlight, LockReacquired, Returned}

func newTestRuntime(t *testing.T, max int64, opts ...Option) *Runtime {
	t.Helper()
	return NewRuntime(max, append([]Option{WithLogger(zaptest.NewLogger(t))}, opts...)...)
}

func TestBlockReleasesLockDuringCall(t *testing.T) {
	log := newPhaseLog()
	r := newTestRuntime(t, 4, WithObserver(log.observe))
	var mu sync.Mutex
	mu.Lock()

	v, err := Block(context.Background(), r, &mu, func(context.Context) (int, error) {
		if !mu.TryLock() {
			return 0, errors.New("lock held during the call")
		}
		mu.Unlock()
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.False(t, mu.TryLock(), "lock must be held again after Block")
	mu.Unlock()
	assert.Equal(t, allPhases, log.only(t))
}

func TestBlockPassesErrorsThrough(t *testing.T) {
	r := newTestRuntime(t, 1)
	want := kverrors.FromCode(kverrors.CodeKeyNotFound, "")
	_, err := Block(context.Background(), r, nil, func(context.Context) (struct{}, error) {
		return struct{}{}, want
	})
	assert.Same(t, want, err)
}

func TestBlockRecoversPanics(t *testing.T) {
	r := newTestRuntime(t, 1)
	_, err := Block(context.Background(), r, nil, func(context.Context) (int, error) {
		panic("boom")
	})
	assert.True(t, kverrors.IsKind(err, kverrors.ClientError))
	assert.Zero(t, r.InFlight())

	v, err := Block(context.Background(), r, nil, func(context.Context) (int, error) { return 1, nil })
	require.NoError(t, err, "the slot must be released after a panic")
	assert.Equal(t, 1, v)
}

func TestRuntimeBoundsInFlightCalls(t *testing.T) {
	r := newTestRuntime(t, 1)
	release := make(chan struct{})
	started := make(chan struct{})

	first := Submit(context.Background(), r, nil, func(context.Context) (int, error) {
		close(started)
		<-release
		return 1, nil
	})
	<-started
	assert.Equal(t, int64(1), r.InFlight())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := Block(ctx, r, nil, func(context.Context) (int, error) { return 2, nil })
	assert.True(t, kverrors.IsKind(err, kverrors.TimeoutError))

	close(release)
	v, err := first.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestSubmitReturnsImmediately(t *testing.T) {
	log := newPhaseLog()
	r := newTestRuntime(t, 4, WithObserver(log.observe))
	release := make(chan struct{})
	var mu sync.Mutex
	mu.Lock()

	f := Submit(context.Background(), r, &mu, func(context.Context) (string, error) {
		<-release
		return "done", nil
	})
	select {
	case <-f.Done():
		t.Fatal("future completed before the call returned")
	default:
	}
	close(release)

	v, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "done", v)
	assert.False(t, mu.TryLock(), "lock must be held again after Await")
	mu.Unlock()
	assert.Equal(t, allPhases, log.only(t))
}

func TestFutureCancelDropsResult(t *testing.T) {
	r := newTestRuntime(t, 4)
	release := make(chan struct{})
	f := Submit(context.Background(), r, nil, func(ctx context.Context) (int, error) {
		<-release
		return 7, nil
	})
	f.Cancel()
	close(release)
	<-f.Done()

	_, err := f.Await(context.Background())
	assert.Equal(t, kverrors.CodeCancelled, kverrors.CodeOf(err))
}

func TestAwaitHonoursContext(t *testing.T) {
	r := newTestRuntime(t, 4)
	release := make(chan struct{})
	defer close(release)
	var mu sync.Mutex
	mu.Lock()
	defer mu.Unlock()

	f := Submit(context.Background(), r, &mu, func(context.Context) (int, error) {
		<-release
		return 1, nil
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.Await(ctx)
	assert.Equal(t, kverrors.CodeCancelled, kverrors.CodeOf(err))
	assert.False(t, mu.TryLock())
}

func TestAwaitReportsReturnOnContextEnd(t *testing.T) {
	log := newPhaseLog()
	r := newTestRuntime(t, 4, WithObserver(log.observe))
	release := make(chan struct{})
	defer close(release)
	var mu sync.Mutex
	mu.Lock()
	defer mu.Unlock()

	f := Submit(context.Background(), r, &mu, func(context.Context) (int, error) {
		<-release
		return 1, nil
	})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := f.Await(ctx)
	require.Error(t, err)

	// The task goroutine still reports its own phases concurrently.
	phases := log.only(t)
	assert.Equal(t, Entered, phases[0])
	reacquired, returned := -1, -1
	for i, p := range phases {
		switch p {
		case LockReacquired:
			reacquired = i
		case Returned:
			returned = i
		}
	}
	require.NotEqual(t, -1, reacquired, "phases %v", phases)
	require.NotEqual(t, -1, returned, "phases %v", phases)
	assert.Less(t, reacquired, returned)
}

func TestAwaitAll(t *testing.T) {
	r := newTestRuntime(t, 4)
	ctx := context.Background()

	t.Run("results in order", func(t *testing.T) {
		var futures []*Future[int]
		for i := 0; i < 5; i++ {
			futures = append(futures, Submit(ctx, r, nil, func(context.Context) (int, error) {
				time.Sleep(time.Duration(5-i) * time.Millisecond)
				return i * i, nil
			}))
		}
		got, err := AwaitAll(ctx, futures...)
		require.NoError(t, err)
		assert.Equal(t, []int{0, 1, 4, 9, 16}, got)
	})

	t.Run("first failure wins", func(t *testing.T) {
		want := kverrors.FromCode(kverrors.CodeGeneration, "")
		ok := Submit(ctx, r, nil, func(context.Context) (int, error) { return 1, nil })
		bad := Submit(ctx, r, nil, func(context.Context) (int, error) { return 0, want })
		_, err := AwaitAll(ctx, ok, bad)
		assert.Same(t, want, err)
	})

	t.Run("empty", func(t *testing.T) {
		got, err := AwaitAll[int](ctx)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestSharedIsCreatedOnce(t *testing.T) {
	a := Shared()
	b := InitShared(3)
	assert.Same(t, a, b)
	assert.Equal(t, DefaultMaxInFlight, a.MaxInFlight())
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "remote_in_flight", RemoteInFlight.String())
	assert.Equal(t, "unknown", Phase(99).String())
}
