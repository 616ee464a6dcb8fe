// Package refresher drives proactive token renewal on a timer, independent
// of caller-driven requests.
package refresher

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// DefaultInterval is how often the coordinator checks whether the token
// needs renewal.
const DefaultInterval = 300 * time.Second

// RefreshFunc runs one refresh check. It must be a no-op when the token is
// outside the skew window.
type RefreshFunc func(ctx context.Context) error

// Coordinator arms a repeating timer and runs at most one refresh at a time.
// Tick errors are logged, never propagated: a failing refresh must not
// destabilize the scheduler.
type Coordinator struct {
	interval time.Duration
	refresh  RefreshFunc
	logger   zerolog.Logger

	isRefreshing atomic.Bool

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// CoordinatorOption defines a function type to modify the Coordinator.
type CoordinatorOption func(*Coordinator)

// WithInterval overrides the tick interval.
func WithInterval(interval time.Duration) CoordinatorOption {
	return func(c *Coordinator) {
		if interval > 0 {
			c.interval = interval
		}
	}
}

// New creates a Coordinator around the given refresh function.
func New(refresh RefreshFunc, logger zerolog.Logger, options ...CoordinatorOption) (*Coordinator, error) {
	if refresh == nil {
		return nil, errors.New("[refresher.New] refresh function is required")
	}
	c := &Coordinator{
		interval: DefaultInterval,
		refresh:  refresh,
		logger:   logger,
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// Start arms the repeating timer. Calling Start while armed disarms the
// previous timer first, so restarts are idempotent.
func (c *Coordinator) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	c.cancel = cancel
	c.done = done

	go c.run(ctx, done)
	c.logger.Debug().Dur("interval", c.interval).Msg("auto refresh started")
}

// Stop disarms the timer and waits for the tick goroutine to exit. Safe to
// call when already stopped.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

// IsRefreshing reports whether a refresh check is currently in flight.
func (c *Coordinator) IsRefreshing() bool {
	return c.isRefreshing.Load()
}

// ForceCheckAndRefresh runs the check once, synchronously, independent of the
// timer. When a timer-driven check is already in flight, the call is a no-op
// rather than a second concurrent refresh.
func (c *Coordinator) ForceCheckAndRefresh(ctx context.Context) error {
	return c.tick(ctx)
}

func (c *Coordinator) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.tick(ctx); err != nil {
				c.logger.Warn().Err(err).Msg("auto refresh tick failed")
			}
		}
	}
}

// tick runs one refresh check under the at-most-one-concurrent-refresh
// guard. Overlapping calls return immediately.
func (c *Coordinator) tick(ctx context.Context) error {
	if !c.isRefreshing.CompareAndSwap(false, true) {
		c.logger.Debug().Msg("refresh already in flight, skipping tick")
		return nil
	}
	defer c.isRefreshing.Store(false)

	return c.refresh(ctx)
}

// stopLocked cancels the running timer goroutine. Callers must hold c.mu.
func (c *Coordinator) stopLocked() {
	if c.cancel == nil {
		return
	}
	c.cancel()
	<-c.done
	c.cancel = nil
	c.done = nil
	c.logger.Debug().Msg("auto refresh stopped")
}
