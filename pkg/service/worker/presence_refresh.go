package worker

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/robfig/cron/v3"
	"github.com/secmon-lab/vitalmap/pkg/utils/errutil"
	"github.com/secmon-lab/vitalmap/pkg/utils/logging"
)

// PresenceRefresher rebroadcasts the presence snapshot to every peer
type PresenceRefresher interface {
	RefreshPresence(ctx context.Context) error
}

// PresenceRefreshWorker periodically rebroadcasts presence so that peers see users
// drop out of the active window even when nothing else changes.
//
// Every instance runs its own schedule and only reaches its own peers. Refreshes
// are never relayed.
type PresenceRefreshWorker struct {
	refresher PresenceRefresher
	schedule  string
	cron      *cron.Cron
}

// ValidateSchedule checks a standard cron spec or a descriptor such as "@every 1m"
func ValidateSchedule(schedule string) error {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return goerr.Wrap(err, "invalid presence refresh schedule", goerr.V("schedule", schedule))
	}
	return nil
}

// NewPresenceRefreshWorker creates a new worker for refreshing presence
func NewPresenceRefreshWorker(refresher PresenceRefresher, schedule string) (*PresenceRefreshWorker, error) {
	if err := ValidateSchedule(schedule); err != nil {
		return nil, err
	}

	return &PresenceRefreshWorker{
		refresher: refresher,
		schedule:  schedule,
		cron:      cron.New(),
	}, nil
}

// Start registers the refresh job and starts the scheduler. It does not block.
func (w *PresenceRefreshWorker) Start(ctx context.Context) error {
	if _, err := w.cron.AddFunc(w.schedule, func() { w.refresh(ctx) }); err != nil {
		return goerr.Wrap(err, "failed to schedule presence refresh", goerr.V("schedule", w.schedule))
	}

	logging.From(ctx).Info("Presence refresh worker starting", "schedule", w.schedule)
	w.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running refresh to complete
func (w *PresenceRefreshWorker) Stop() {
	logging.Default().Info("Presence refresh worker stopping")
	<-w.cron.Stop().Done()
	logging.Default().Info("Presence refresh worker stopped")
}

func (w *PresenceRefreshWorker) refresh(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	startTime := time.Now()
	if err := w.refresher.RefreshPresence(ctx); err != nil {
		// Next tick retries
		_ = errutil.Handle(ctx, err, "presence refresh failed")
		return
	}

	logging.From(ctx).Debug("Presence refreshed", "duration", time.Since(startTime).String())
}
