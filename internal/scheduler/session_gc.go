package scheduler

import (
	"context"
	"time"

	"github.com/pelajarin/kelas/internal/logger"
	"github.com/pelajarin/kelas/internal/session"
)

const (
	// DefaultMaxIdle is how long a course session may sit untouched before eviction
	DefaultMaxIdle = 30 * time.Minute
)

// SessionGC evicts course sessions abandoned without an explicit discard,
// such as a closed browser tab.
type SessionGC struct {
	registry *session.Registry
	logger   logger.Logger
	interval time.Duration
	maxIdle  time.Duration
	stopCh   chan struct{}
}

// NewSessionGC creates a new session garbage collector
func NewSessionGC(
	registry *session.Registry,
	log logger.Logger,
	interval time.Duration,
	maxIdle time.Duration,
) *SessionGC {
	if maxIdle <= 0 {
		maxIdle = DefaultMaxIdle
	}
	return &SessionGC{
		registry: registry,
		logger:   log,
		interval: interval,
		maxIdle:  maxIdle,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic eviction process
func (gc *SessionGC) Start(ctx context.Context) {
	ticker := time.NewTicker(gc.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				gc.Collect()
			case <-gc.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	gc.logger.Info("session garbage collector started",
		logger.Duration("interval", gc.interval),
		logger.Duration("max_idle", gc.maxIdle))
}

// Stop stops the garbage collector
func (gc *SessionGC) Stop() {
	close(gc.stopCh)
}

// Collect runs a single eviction pass
func (gc *SessionGC) Collect() {
	if evicted := gc.registry.EvictIdle(gc.maxIdle); evicted > 0 {
		gc.logger.Info("evicted idle course sessions",
			logger.Int("count", evicted),
			logger.Int("remaining", gc.registry.Count()))
	}
}
