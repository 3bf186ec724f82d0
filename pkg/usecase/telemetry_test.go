package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/vitalmap/pkg/domain/interfaces"
	"github.com/secmon-lab/vitalmap/pkg/domain/model"
	"github.com/secmon-lab/vitalmap/pkg/domain/types"
	"github.com/secmon-lab/vitalmap/pkg/repository/memory"
	"github.com/secmon-lab/vitalmap/pkg/usecase"
)

type recordingNotifier struct {
	mu     sync.Mutex
	alerts []model.Alert
	done   chan struct{}
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{done: make(chan struct{}, 16)}
}

func (n *recordingNotifier) Notify(ctx context.Context, alerts []model.Alert) error {
	n.mu.Lock()
	n.alerts = append(n.alerts, alerts...)
	n.mu.Unlock()
	n.done <- struct{}{}
	return nil
}

var errStoreDown = errors.New("store down")

type failingHealth struct {
	interfaces.HealthRepository
}

func (failingHealth) Append(ctx context.Context, sample *model.HealthSample) error {
	return errStoreDown
}

type failingRepository struct {
	*memory.Memory
}

func (r failingRepository) Health() interfaces.HealthRepository {
	return failingHealth{HealthRepository: r.Memory.Health()}
}

func TestTelemetryUseCase_RecordHealthSample(t *testing.T) {
	ctx := context.Background()

	t.Run("stores the sample and returns alerts", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.New(repo)

		stored, alerts, err := uc.Telemetry.RecordHealthSample(ctx, &model.HealthSample{
			UserID:    "u1",
			HeartRate: ptr(45),
			StepCount: ptr(16000),
			Timestamp: model.TimestampFromMillis(1741944413589),
		})
		gt.NoError(t, err).Required()
		gt.Value(t, *stored.HeartRate).Equal(45)
		gt.Array(t, alerts).Length(2)
		gt.Value(t, alerts[0].Type).Equal(types.AlertTypeCritical)
		gt.Value(t, alerts[1].Type).Equal(types.AlertTypeInfo)

		samples, err := repo.Health().ListByUser(ctx, "u1")
		gt.NoError(t, err).Required()
		gt.Array(t, samples).Length(1)
	})

	t.Run("stamps samples without timestamp", func(t *testing.T) {
		clock := newClock()
		uc := usecase.New(memory.New(), usecase.WithClock(clock.Now))

		stored, _, err := uc.Telemetry.RecordHealthSample(ctx, &model.HealthSample{UserID: "u1", HeartRate: ptr(70)})
		gt.NoError(t, err).Required()
		gt.Bool(t, stored.Timestamp.Equal(clock.now)).True()
	})

	t.Run("unknown users are accepted", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.New(repo)

		_, _, err := uc.Telemetry.RecordHealthSample(ctx, &model.HealthSample{UserID: "nobody", HeartRate: ptr(70)})
		gt.NoError(t, err)
	})

	t.Run("store failure aborts", func(t *testing.T) {
		uc := usecase.New(failingRepository{Memory: memory.New()})

		_, alerts, err := uc.Telemetry.RecordHealthSample(ctx, &model.HealthSample{UserID: "u1", HeartRate: ptr(30)})
		gt.Error(t, err).Is(errStoreDown)
		gt.Array(t, alerts).Length(0)
	})

	t.Run("alerts are forwarded to the notifier", func(t *testing.T) {
		notifier := newRecordingNotifier()
		uc := usecase.New(memory.New(), usecase.WithAlertNotifier(notifier))

		_, _, err := uc.Telemetry.RecordHealthSample(ctx, &model.HealthSample{UserID: "u1", HeartRate: ptr(130)})
		gt.NoError(t, err).Required()

		select {
		case <-notifier.done:
		case <-time.After(time.Second):
			t.Fatal("notifier was not called")
		}

		notifier.mu.Lock()
		defer notifier.mu.Unlock()
		gt.Array(t, notifier.alerts).Length(1)
		gt.Value(t, notifier.alerts[0].Reason).Equal(types.AlertReasonHighHeartRate)
	})
}

func TestTelemetryUseCase_RecordWatchSample(t *testing.T) {
	ctx := context.Background()

	t.Run("derives sleep quality from sleep hours", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.New(repo)

		derived, alerts, err := uc.Telemetry.RecordWatchSample(ctx, &model.WatchSample{
			UserID:       "u1",
			WatchID:      "w1",
			HeartRate:    ptr(72),
			StepCount:    ptr(5000),
			Calories:     ptr(300),
			SleepHours:   ptr(5.5),
			BatteryLevel: ptr(80),
			Timestamp:    model.TimestampFromMillis(1741944413589),
		})
		gt.NoError(t, err).Required()
		gt.Value(t, *derived.SleepQuality).Equal(55)
		gt.Array(t, alerts).Length(1)
		gt.Value(t, alerts[0].Reason).Equal(types.AlertReasonLowSleep)

		watch, err := repo.Watch().ListByUser(ctx, "u1")
		gt.NoError(t, err).Required()
		gt.Array(t, watch).Length(1)

		latest, err := repo.Health().Latest(ctx, []model.UserID{"u1"})
		gt.NoError(t, err).Required()
		gt.Value(t, *latest["u1"].SleepQuality).Equal(55)
		gt.Value(t, *latest["u1"].Calories).Equal(300)
	})

	t.Run("three warnings in one pass", func(t *testing.T) {
		uc := usecase.New(memory.New())

		_, alerts, err := uc.Telemetry.RecordWatchSample(ctx, &model.WatchSample{
			UserID:       "u1",
			BatteryLevel: ptr(15),
			HeartRate:    ptr(130),
			SleepHours:   ptr(5.0),
		})
		gt.NoError(t, err).Required()
		gt.Array(t, alerts).Length(3)
		for _, a := range alerts {
			gt.Value(t, a.Type).Equal(types.AlertTypeWarning)
		}
	})

	t.Run("derived health failure aborts", func(t *testing.T) {
		uc := usecase.New(failingRepository{Memory: memory.New()})

		_, _, err := uc.Telemetry.RecordWatchSample(ctx, &model.WatchSample{UserID: "u1", BatteryLevel: ptr(5)})
		gt.Error(t, err).Is(errStoreDown)
	})
}

func TestTelemetryUseCase_History(t *testing.T) {
	ctx := context.Background()
	uc := usecase.New(memory.New())

	hr := 72
	_, _, err := uc.Telemetry.RecordHealthSample(ctx, &model.HealthSample{UserID: "u1", HeartRate: &hr})
	gt.NoError(t, err).Required()
	sleep := 7.0
	_, _, err = uc.Telemetry.RecordWatchSample(ctx, &model.WatchSample{UserID: "u1", WatchID: "w1", SleepHours: &sleep})
	gt.NoError(t, err).Required()

	health, err := uc.Telemetry.HealthHistory(ctx, "u1")
	gt.NoError(t, err).Required()
	gt.Array(t, health).Length(2)
	gt.Value(t, *health[0].HeartRate).Equal(72)
	gt.Value(t, *health[1].SleepQuality).Equal(70)

	watch, err := uc.Telemetry.WatchHistory(ctx, "u1")
	gt.NoError(t, err).Required()
	gt.Array(t, watch).Length(1)
	gt.Value(t, watch[0].WatchID).Equal(model.WatchID("w1"))

	empty, err := uc.Telemetry.WatchHistory(ctx, "nobody")
	gt.NoError(t, err).Required()
	gt.Array(t, empty).Length(0)

	_, err = uc.Telemetry.HealthHistory(ctx, "")
	gt.Error(t, err).Is(usecase.ErrMissingUserID)
}
