package refresher_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-auth-client/auth/refresher"
)

func TestNewRequiresRefreshFunc(t *testing.T) {
	_, err := refresher.New(nil, zerolog.Nop())
	require.Error(t, err)
}

func TestTimerDrivenRefresh(t *testing.T) {
	var calls atomic.Int32
	c, err := refresher.New(func(ctx context.Context) error {
		calls.Add(1)
		return nil
	}, zerolog.Nop(), refresher.WithInterval(50*time.Millisecond))
	require.NoError(t, err)

	c.Start()
	time.Sleep(75 * time.Millisecond) // one tick elapses
	c.Stop()

	assert.Equal(t, int32(1), calls.Load(), "exactly one refresh within one interval")
	assert.False(t, c.IsRefreshing())
}

func TestStopPreventsFurtherTicks(t *testing.T) {
	var calls atomic.Int32
	c, err := refresher.New(func(ctx context.Context) error {
		calls.Add(1)
		return nil
	}, zerolog.Nop(), refresher.WithInterval(30*time.Millisecond))
	require.NoError(t, err)

	c.Start()
	time.Sleep(45 * time.Millisecond)
	c.Stop()

	settled := calls.Load()
	time.Sleep(90 * time.Millisecond)
	assert.Equal(t, settled, calls.Load(), "no ticks after Stop")
}

func TestStopWhenNeverStartedIsSafe(t *testing.T) {
	c, err := refresher.New(func(ctx context.Context) error { return nil }, zerolog.Nop())
	require.NoError(t, err)

	c.Stop()
	c.Stop()
}

func TestStartIsIdempotentRestart(t *testing.T) {
	var calls atomic.Int32
	c, err := refresher.New(func(ctx context.Context) error {
		calls.Add(1)
		return nil
	}, zerolog.Nop(), refresher.WithInterval(40*time.Millisecond))
	require.NoError(t, err)

	c.Start()
	c.Start() // disarms the first timer
	time.Sleep(60 * time.Millisecond)
	c.Stop()

	assert.Equal(t, int32(1), calls.Load(), "restart must not double the tick rate")
}

func TestForceCheckAndRefreshRunsSynchronously(t *testing.T) {
	var calls atomic.Int32
	c, err := refresher.New(func(ctx context.Context) error {
		calls.Add(1)
		return nil
	}, zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, c.ForceCheckAndRefresh(context.Background()))
	assert.Equal(t, int32(1), calls.Load(), "runs without the timer being armed")
}

func TestForceCheckReturnsRefreshError(t *testing.T) {
	boom := errors.New("refresh exploded")
	c, err := refresher.New(func(ctx context.Context) error { return boom }, zerolog.Nop())
	require.NoError(t, err)

	assert.True(t, errors.Is(c.ForceCheckAndRefresh(context.Background()), boom))
	assert.False(t, c.IsRefreshing(), "flag resets even on failure")
}

func TestOverlappingChecksAreNoOps(t *testing.T) {
	release := make(chan struct{})
	var calls atomic.Int32
	c, err := refresher.New(func(ctx context.Context) error {
		calls.Add(1)
		<-release
		return nil
	}, zerolog.Nop())
	require.NoError(t, err)

	firstDone := make(chan struct{})
	go func() {
		defer close(firstDone)
		_ = c.ForceCheckAndRefresh(context.Background())
	}()

	require.Eventually(t, c.IsRefreshing, time.Second, 5*time.Millisecond)

	// Second check while the first is in flight: at-most-one-concurrent-refresh.
	require.NoError(t, c.ForceCheckAndRefresh(context.Background()))
	assert.Equal(t, int32(1), calls.Load())

	close(release)
	<-firstDone
	assert.False(t, c.IsRefreshing())
}

func TestTimerSurvivesFailingRefreshes(t *testing.T) {
	var calls atomic.Int32
	c, err := refresher.New(func(ctx context.Context) error {
		calls.Add(1)
		return errors.New("still broken")
	}, zerolog.Nop(), refresher.WithInterval(25*time.Millisecond))
	require.NoError(t, err)

	c.Start()
	defer c.Stop()

	require.Eventually(t, func() bool { return calls.Load() >= 2 }, time.Second, 10*time.Millisecond,
		"errors are logged, the schedule keeps firing")
}
