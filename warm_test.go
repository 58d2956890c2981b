package loom

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gburgyan/go-timing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Warm_ConstructsAllSingletons(t *testing.T) {
	var singletonA, singletonB, transientC int64
	keyA := NewKey[string]("a")
	keyB := NewKey[string]("b")
	keyC := NewKey[string]("c")

	counted := func(counter *int64, v string) InitFunc[string] {
		return func(ctx context.Context, deps Deps) (string, error) {
			atomic.AddInt64(counter, 1)
			return v, nil
		}
	}

	m, err := From(
		Singleton(keyA, counted(&singletonA, "a")),
		Singleton(keyB, counted(&singletonB, "b")),
		Transient(keyC, counted(&transientC, "c")),
	)
	require.NoError(t, err)

	require.NoError(t, m.Warm(context.Background()))

	assert.Equal(t, int64(1), atomic.LoadInt64(&singletonA))
	assert.Equal(t, int64(1), atomic.LoadInt64(&singletonB))
	assert.Equal(t, int64(0), atomic.LoadInt64(&transientC))

	// Serving after the warm-up hits settled cells.
	v, err := Get(context.Background(), m, keyA)
	require.NoError(t, err)
	assert.Equal(t, "a", v)
	assert.Equal(t, int64(1), atomic.LoadInt64(&singletonA))
}

func Test_Warm_Idempotent(t *testing.T) {
	var calls int64
	key := NewKey[string]("once")

	m, err := From(Singleton(key, func(ctx context.Context, deps Deps) (string, error) {
		atomic.AddInt64(&calls, 1)
		return "v", nil
	}))
	require.NoError(t, err)

	require.NoError(t, m.Warm(context.Background()))
	require.NoError(t, m.Warm(context.Background()))
	assert.Equal(t, int64(1), atomic.LoadInt64(&calls))
}

func Test_Warm_RunsConcurrently(t *testing.T) {
	slow := func(v string) InitFunc[string] {
		return func(ctx context.Context, deps Deps) (string, error) {
			time.Sleep(100 * time.Millisecond)
			return v, nil
		}
	}

	m, err := From(
		Singleton(NewKey[string]("slow1"), slow("1")),
		Singleton(NewKey[string]("slow2"), slow("2")),
		Singleton(NewKey[string]("slow3"), slow("3")),
	)
	require.NoError(t, err)

	start := time.Now()
	require.NoError(t, m.Warm(context.Background()))
	d := time.Since(start)

	// Serial warming would take 300ms.
	assert.InEpsilon(t, 100*time.Millisecond, d, .25)
}

func Test_Warm_ReportsFirstErrorAfterSettling(t *testing.T) {
	var goodCalls int64
	bad := NewKey[string]("bad")
	good := NewKey[string]("good")

	m, err := From(
		Singleton(bad, func(ctx context.Context, deps Deps) (string, error) {
			return "", fmt.Errorf("warm failure")
		}),
		Singleton(good, func(ctx context.Context, deps Deps) (string, error) {
			atomic.AddInt64(&goodCalls, 1)
			return "good", nil
		}),
	)
	require.NoError(t, err)

	err = m.Warm(context.Background())
	assert.EqualError(t, err, "warm failure")

	// The healthy singleton still settled.
	assert.Equal(t, int64(1), atomic.LoadInt64(&goodCalls))
	v, err := Get(context.Background(), m, good)
	require.NoError(t, err)
	assert.Equal(t, "good", v)
	assert.Equal(t, int64(1), atomic.LoadInt64(&goodCalls))
}

func Test_Warm_Timed(t *testing.T) {
	EnableTiming = TimingWarm
	defer func() { EnableTiming = TimingDisable }()

	var calls int64
	m, err := From(Singleton(NewKey[string]("timed"), func(ctx context.Context, deps Deps) (string, error) {
		atomic.AddInt64(&calls, 1)
		time.Sleep(50 * time.Millisecond)
		return "v", nil
	}))
	require.NoError(t, err)

	tCtx := timing.Root(context.Background())

	start := time.Now()
	require.NoError(t, m.Warm(tCtx))
	d := time.Since(start)

	assert.Equal(t, int64(1), atomic.LoadInt64(&calls))
	assert.InEpsilon(t, 50*time.Millisecond, d, .25)

	// The warm pass shows up as a completed timing location.
	assert.Contains(t, tCtx.String(), "warm")
}
