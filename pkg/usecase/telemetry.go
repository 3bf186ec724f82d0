package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vitalmap/pkg/domain/interfaces"
	"github.com/secmon-lab/vitalmap/pkg/domain/model"
	"github.com/secmon-lab/vitalmap/pkg/utils/async"
	"github.com/secmon-lab/vitalmap/pkg/utils/logging"
)

// TelemetryUseCase stores health samples and watch syncs and raises alerts on them
type TelemetryUseCase struct {
	repo     interfaces.Repository
	clock    func() time.Time
	notifier interfaces.AlertNotifier
}

func NewTelemetryUseCase(repo interfaces.Repository, clock func() time.Time, notifier interfaces.AlertNotifier) *TelemetryUseCase {
	if clock == nil {
		clock = time.Now
	}
	return &TelemetryUseCase{
		repo:     repo,
		clock:    clock,
		notifier: notifier,
	}
}

// RecordHealthSample appends the sample and returns the alerts it raises. A sample
// without a timestamp is stamped with the receive time.
func (uc *TelemetryUseCase) RecordHealthSample(ctx context.Context, sample *model.HealthSample) (*model.HealthSample, []model.Alert, error) {
	s := sample.Copy()
	if s.Timestamp.IsZero() {
		s.Timestamp = model.NewTimestamp(uc.clock().UTC())
	}

	if err := uc.repo.Health().Append(ctx, s); err != nil {
		return nil, nil, goerr.Wrap(err, "failed to record health sample", goerr.V(UserIDKey, s.UserID))
	}

	alerts := EvaluateHealthAlerts(s)
	uc.notify(ctx, alerts)
	return s, alerts, nil
}

// RecordWatchSample appends the watch sync and the health sample derived from it,
// then returns the derived sample and the alerts the sync raises.
func (uc *TelemetryUseCase) RecordWatchSample(ctx context.Context, sample *model.WatchSample) (*model.HealthSample, []model.Alert, error) {
	s := sample.Copy()
	if s.Timestamp.IsZero() {
		s.Timestamp = model.NewTimestamp(uc.clock().UTC())
	}

	if err := uc.repo.Watch().Append(ctx, s); err != nil {
		return nil, nil, goerr.Wrap(err, "failed to record watch sample", goerr.V(UserIDKey, s.UserID), goerr.V("watchID", s.WatchID))
	}

	derived := s.DeriveHealthSample()
	if err := uc.repo.Health().Append(ctx, derived); err != nil {
		return nil, nil, goerr.Wrap(err, "failed to record derived health sample", goerr.V(UserIDKey, s.UserID), goerr.V("watchID", s.WatchID))
	}

	alerts := EvaluateWatchAlerts(s)
	uc.notify(ctx, alerts)
	return derived, alerts, nil
}

// HealthHistory returns every stored health sample of the user, oldest first
func (uc *TelemetryUseCase) HealthHistory(ctx context.Context, id model.UserID) ([]*model.HealthSample, error) {
	if id == "" {
		return nil, goerr.Wrap(ErrMissingUserID, "failed to list health samples")
	}

	samples, err := uc.repo.Health().ListByUser(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list health samples", goerr.V(UserIDKey, id))
	}
	if samples == nil {
		samples = []*model.HealthSample{}
	}
	return samples, nil
}

// WatchHistory returns every stored watch sync of the user, oldest first
func (uc *TelemetryUseCase) WatchHistory(ctx context.Context, id model.UserID) ([]*model.WatchSample, error) {
	if id == "" {
		return nil, goerr.Wrap(ErrMissingUserID, "failed to list watch samples")
	}

	samples, err := uc.repo.Watch().ListByUser(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list watch samples", goerr.V(UserIDKey, id))
	}
	if samples == nil {
		samples = []*model.WatchSample{}
	}
	return samples, nil
}

func (uc *TelemetryUseCase) notify(ctx context.Context, alerts []model.Alert) {
	if uc.notifier == nil || len(alerts) == 0 {
		return
	}

	logging.From(ctx).Debug("dispatching alerts to notifier", "count", len(alerts))
	async.Dispatch(ctx, func(ctx context.Context) error {
		return uc.notifier.Notify(ctx, alerts)
	})
}
