package repository_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/vitalmap/pkg/domain/interfaces"
	"github.com/secmon-lab/vitalmap/pkg/domain/model"
)

func runWatchRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Append and ListByUser keep every reading", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		id := model.UserID(uniqueID("alice"))

		gt.NoError(t, repo.Watch().Append(ctx, &model.WatchSample{
			UserID:       id,
			WatchID:      "watch-1",
			HeartRate:    ptr(130),
			StepCount:    ptr(4000),
			Calories:     ptr(210),
			SleepHours:   ptr(5.5),
			BatteryLevel: ptr(15),
			Timestamp:    model.TimestampFromMillis(1741944413589),
		})).Required()
		gt.NoError(t, repo.Watch().Append(ctx, &model.WatchSample{
			UserID:    id,
			WatchID:   "watch-1",
			Timestamp: model.TimestampFromMillis(1741944473589),
		})).Required()

		samples, err := repo.Watch().ListByUser(ctx, id)
		gt.NoError(t, err).Required()
		gt.Array(t, samples).Length(2)

		first := samples[0]
		gt.Value(t, first.WatchID).Equal(model.WatchID("watch-1"))
		gt.Value(t, *first.HeartRate).Equal(130)
		gt.Value(t, *first.StepCount).Equal(4000)
		gt.Value(t, *first.Calories).Equal(210)
		gt.Value(t, *first.SleepHours).Equal(5.5)
		gt.Value(t, *first.BatteryLevel).Equal(15)
		gt.Value(t, first.Timestamp.Millis()).Equal(int64(1741944413589))

		second := samples[1]
		gt.Value(t, second.HeartRate).Nil()
		gt.Value(t, second.SleepHours).Nil()
		gt.Value(t, second.BatteryLevel).Nil()
	})

	t.Run("ListByUser returns empty for unknown user", func(t *testing.T) {
		repo := newRepo(t)
		samples, err := repo.Watch().ListByUser(context.Background(), model.UserID(uniqueID("nobody")))
		gt.NoError(t, err).Required()
		gt.Array(t, samples).Length(0)
	})
}
