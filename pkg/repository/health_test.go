package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/vitalmap/pkg/domain/interfaces"
	"github.com/secmon-lab/vitalmap/pkg/domain/model"
)

func runHealthRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t1 := model.TimestampFromMillis(1741944413589)
	t2 := model.TimestampFromMillis(1741944473589)

	t.Run("Latest returns the sample with the greatest timestamp", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		id := model.UserID(uniqueID("alice"))

		gt.NoError(t, repo.Health().Append(ctx, &model.HealthSample{UserID: id, HeartRate: ptr(70), Timestamp: t2})).Required()
		gt.NoError(t, repo.Health().Append(ctx, &model.HealthSample{UserID: id, HeartRate: ptr(60), Timestamp: t1})).Required()

		latest, err := repo.Health().Latest(ctx, []model.UserID{id})
		gt.NoError(t, err).Required()
		gt.Value(t, latest[id]).NotNil()
		gt.Value(t, *latest[id].HeartRate).Equal(70)
		gt.Bool(t, latest[id].Timestamp.Equal(t2.Time)).True()
	})

	t.Run("Latest favors the later insert on equal timestamps", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		id := model.UserID(uniqueID("bob"))

		gt.NoError(t, repo.Health().Append(ctx, &model.HealthSample{UserID: id, HeartRate: ptr(80), Timestamp: t1})).Required()
		gt.NoError(t, repo.Health().Append(ctx, &model.HealthSample{UserID: id, HeartRate: ptr(90), Timestamp: t1})).Required()

		latest, err := repo.Health().Latest(ctx, []model.UserID{id})
		gt.NoError(t, err).Required()
		gt.Value(t, *latest[id].HeartRate).Equal(90)
	})

	t.Run("Latest keeps nil readings and omits users without samples", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		id := model.UserID(uniqueID("carol"))
		none := model.UserID(uniqueID("none"))

		gt.NoError(t, repo.Health().Append(ctx, &model.HealthSample{
			UserID:       id,
			StepCount:    ptr(1200),
			SleepQuality: ptr(55),
			Timestamp:    t1,
		})).Required()

		latest, err := repo.Health().Latest(ctx, []model.UserID{id, none})
		gt.NoError(t, err).Required()
		gt.Value(t, len(latest)).Equal(1)
		gt.Value(t, latest[id].HeartRate).Nil()
		gt.Value(t, latest[id].Calories).Nil()
		gt.Value(t, *latest[id].StepCount).Equal(1200)
		gt.Value(t, *latest[id].SleepQuality).Equal(55)

		empty, err := repo.Health().Latest(ctx, nil)
		gt.NoError(t, err).Required()
		gt.Value(t, len(empty)).Equal(0)
	})

	t.Run("ListByUser returns samples in insertion order", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		id := model.UserID(uniqueID("dave"))
		other := model.UserID(uniqueID("other"))

		for i, hr := range []int{72, 65, 88} {
			gt.NoError(t, repo.Health().Append(ctx, &model.HealthSample{
				UserID:    id,
				HeartRate: ptr(hr),
				Timestamp: model.NewTimestamp(t2.Add(-time.Duration(i) * time.Second)),
			})).Required()
		}
		gt.NoError(t, repo.Health().Append(ctx, &model.HealthSample{UserID: other, HeartRate: ptr(100), Timestamp: t1})).Required()

		samples, err := repo.Health().ListByUser(ctx, id)
		gt.NoError(t, err).Required()
		gt.Array(t, samples).Length(3)
		gt.Value(t, *samples[0].HeartRate).Equal(72)
		gt.Value(t, *samples[1].HeartRate).Equal(65)
		gt.Value(t, *samples[2].HeartRate).Equal(88)
	})

	t.Run("samples outlive their user", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		id := model.UserID(uniqueID("erin"))

		gt.NoError(t, repo.User().Upsert(ctx, &model.User{ID: id, Name: "Erin", LastSeen: time.Now()})).Required()
		gt.NoError(t, repo.Health().Append(ctx, &model.HealthSample{UserID: id, HeartRate: ptr(75), Timestamp: t1})).Required()
		gt.NoError(t, repo.User().Delete(ctx, id)).Required()

		samples, err := repo.Health().ListByUser(ctx, id)
		gt.NoError(t, err).Required()
		gt.Array(t, samples).Length(1)
	})
}
