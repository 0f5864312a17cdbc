package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/pelajarin/kelas/internal/bus"
	"github.com/pelajarin/kelas/internal/logger"
	"github.com/pelajarin/kelas/internal/session"
	redisstore "github.com/pelajarin/kelas/internal/store/redis"
)

// CompletedSyncer periodically asks the course service to reconcile the
// completed-courses rollup for every known credential. It also runs on
// demand: a manual trigger (the resync endpoint) or a progress notification
// on the bus schedules an immediate pass.
type CompletedSyncer struct {
	api           session.API
	store         *redisstore.Store
	busSub        *bus.Subscription
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

// NewCompletedSyncer creates a new completed-courses syncer
func NewCompletedSyncer(
	api session.API,
	store *redisstore.Store,
	b *bus.Bus,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *CompletedSyncer {
	cs := &CompletedSyncer{
		api:           api,
		store:         store,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}

	// A progress mutation anywhere schedules a sync pass. Non-blocking: if
	// a trigger is already pending one pass covers both.
	cs.busSub = b.Subscribe(func() {
		select {
		case manualTrigger <- struct{}{}:
		default:
		}
	})

	return cs
}

// Start begins the periodic sync process
func (cs *CompletedSyncer) Start(ctx context.Context) {
	ticker := time.NewTicker(cs.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				cs.Sync(ctx)
			case <-cs.manualTrigger:
				cs.logger.Info("manual completed-courses sync triggered")
				cs.Sync(ctx)
			case <-cs.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	cs.logger.Info("completed-courses syncer started",
		logger.Duration("interval", cs.interval))
}

// Stop stops the syncer
func (cs *CompletedSyncer) Stop() {
	cs.busSub.Unsubscribe()
	close(cs.stopCh)
}

// Sync runs a single pass over every stored credential. Failures are
// per-credential and never abort the pass.
func (cs *CompletedSyncer) Sync(ctx context.Context) {
	keys, err := cs.store.ListSessionKeys(ctx)
	if err != nil {
		cs.logger.Warn("failed to list session keys for sync",
			logger.Error(err))
		return
	}

	synced := 0
	for _, key := range keys {
		cred, err := cs.store.GetCredential(ctx, key)
		if err != nil {
			if !errors.Is(err, redisstore.ErrCredentialNotFound) {
				cs.logger.Warn("failed to load credential for sync",
					logger.String("session_key", key),
					logger.Error(err))
			}
			continue
		}
		if err := cs.api.SyncCompletedCourses(ctx, cred.Bearer); err != nil {
			cs.logger.Warn("completed-courses sync failed for credential",
				logger.String("session_key", key),
				logger.Error(err))
			continue
		}
		synced++
	}

	if len(keys) > 0 {
		cs.logger.Info("completed-courses sync pass done",
			logger.Int("credentials", len(keys)),
			logger.Int("synced", synced))
	}
}
