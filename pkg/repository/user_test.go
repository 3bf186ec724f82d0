package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/vitalmap/pkg/domain/interfaces"
	"github.com/secmon-lab/vitalmap/pkg/domain/model"
	"github.com/secmon-lab/vitalmap/pkg/domain/types"
	"github.com/secmon-lab/vitalmap/pkg/repository/firestore"
	"github.com/secmon-lab/vitalmap/pkg/repository/memory"
	"github.com/secmon-lab/vitalmap/pkg/repository/sqldb"
)

func isNotFound(err error) bool {
	return errors.Is(err, memory.ErrNotFound) ||
		errors.Is(err, sqldb.ErrNotFound) ||
		errors.Is(err, firestore.ErrNotFound)
}

func runUserRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	// Millisecond precision is the common denominator of all backends
	now := time.Now().UTC().Truncate(time.Millisecond)

	t.Run("Upsert inserts and Get returns the user", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		id := model.UserID(uniqueID("alice"))

		gt.NoError(t, repo.User().Upsert(ctx, &model.User{
			ID:       id,
			Name:     "Alice",
			Email:    "alice@example.com",
			Status:   types.UserStatusOnline,
			Location: &model.Location{Lat: 35.68, Lng: 139.76, Accuracy: 10, Speed: ptr(1.5)},
			Bio:      "hello",
			LastSeen: now,
		})).Required()

		got, err := repo.User().Get(ctx, id)
		gt.NoError(t, err).Required()
		gt.Value(t, got.ID).Equal(id)
		gt.Value(t, got.Name).Equal("Alice")
		gt.Value(t, got.Email).Equal("alice@example.com")
		gt.Value(t, got.Status).Equal(types.UserStatusOnline)
		gt.Value(t, got.Bio).Equal("hello")
		gt.Value(t, got.Location).NotNil()
		gt.Value(t, got.Location.Lat).Equal(35.68)
		gt.Value(t, got.Location.Lng).Equal(139.76)
		gt.Value(t, *got.Location.Speed).Equal(1.5)
		gt.Value(t, got.Location.Altitude).Nil()
		gt.Bool(t, got.LastSeen.Equal(now)).True()
	})

	t.Run("Upsert replaces every field of an existing user", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		id := model.UserID(uniqueID("bob"))

		gt.NoError(t, repo.User().Upsert(ctx, &model.User{
			ID:       id,
			Name:     "Bob",
			Email:    "bob@example.com",
			Status:   types.UserStatusOffline,
			Location: &model.Location{Lat: 1, Lng: 2},
			Bio:      "bio",
			LastSeen: now,
		})).Required()

		gt.NoError(t, repo.User().Upsert(ctx, &model.User{
			ID:       id,
			Name:     "Bobby",
			Status:   types.UserStatusOnline,
			LastSeen: now.Add(time.Second),
		})).Required()

		got, err := repo.User().Get(ctx, id)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Name).Equal("Bobby")
		gt.Value(t, got.Email).Equal("")
		gt.Value(t, got.Status).Equal(types.UserStatusOnline)
		gt.Value(t, got.Location).Nil()
		gt.Value(t, got.Bio).Equal("")
		gt.Bool(t, got.LastSeen.Equal(now.Add(time.Second))).True()
	})

	t.Run("Get returns not found for unknown user", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.User().Get(context.Background(), model.UserID(uniqueID("nobody")))
		gt.Error(t, err)
		gt.Bool(t, isNotFound(err)).True()
	})

	t.Run("UpdateProfile overwrites an existing user", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		id := model.UserID(uniqueID("carol"))

		gt.NoError(t, repo.User().Upsert(ctx, &model.User{
			ID: id, Name: "Carol", Status: types.UserStatusOnline, LastSeen: now,
		})).Required()

		gt.NoError(t, repo.User().UpdateProfile(ctx, &model.User{
			ID:       id,
			Name:     "Caroline",
			Email:    "carol@example.com",
			Status:   types.UserStatusOffline,
			Bio:      "updated",
			LastSeen: now.Add(2 * time.Second),
		})).Required()

		got, err := repo.User().Get(ctx, id)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Name).Equal("Caroline")
		gt.Value(t, got.Email).Equal("carol@example.com")
		gt.Value(t, got.Status).Equal(types.UserStatusOffline)
		gt.Value(t, got.Bio).Equal("updated")
		gt.Bool(t, got.LastSeen.Equal(now.Add(2*time.Second))).True()
	})

	t.Run("UpdateProfile ignores unknown user", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		id := model.UserID(uniqueID("ghost"))

		gt.NoError(t, repo.User().UpdateProfile(ctx, &model.User{ID: id, Name: "Ghost", LastSeen: now}))

		_, err := repo.User().Get(ctx, id)
		gt.Bool(t, isNotFound(err)).True()
	})

	t.Run("SetLocation updates only location and last seen", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		id := model.UserID(uniqueID("dave"))

		gt.NoError(t, repo.User().Upsert(ctx, &model.User{
			ID: id, Name: "Dave", Bio: "keep", Status: types.UserStatusOnline, LastSeen: now,
		})).Required()

		later := now.Add(3 * time.Second)
		gt.NoError(t, repo.User().SetLocation(ctx, id, &model.Location{Lat: 10, Lng: 20, Heading: ptr(90.0)}, later)).Required()

		got, err := repo.User().Get(ctx, id)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Name).Equal("Dave")
		gt.Value(t, got.Bio).Equal("keep")
		gt.Value(t, got.Location.Lat).Equal(10.0)
		gt.Value(t, *got.Location.Heading).Equal(90.0)
		gt.Bool(t, got.LastSeen.Equal(later)).True()

		gt.NoError(t, repo.User().SetLocation(ctx, id, nil, later)).Required()
		got, err = repo.User().Get(ctx, id)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Location).Nil()
	})

	t.Run("SetLocation ignores unknown user", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		id := model.UserID(uniqueID("ghost"))

		gt.NoError(t, repo.User().SetLocation(ctx, id, &model.Location{Lat: 1}, now))
		_, err := repo.User().Get(ctx, id)
		gt.Bool(t, isNotFound(err)).True()
	})

	t.Run("SetStatus keeps last seen", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		id := model.UserID(uniqueID("erin"))

		gt.NoError(t, repo.User().Upsert(ctx, &model.User{
			ID: id, Name: "Erin", Status: types.UserStatusOnline, LastSeen: now,
		})).Required()
		gt.NoError(t, repo.User().SetStatus(ctx, id, types.UserStatusOffline)).Required()

		got, err := repo.User().Get(ctx, id)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Status).Equal(types.UserStatusOffline)
		gt.Bool(t, got.LastSeen.Equal(now)).True()

		gt.NoError(t, repo.User().SetStatus(ctx, model.UserID(uniqueID("ghost")), types.UserStatusOffline))
	})

	t.Run("Delete is idempotent", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		id := model.UserID(uniqueID("frank"))

		gt.NoError(t, repo.User().Upsert(ctx, &model.User{ID: id, Name: "Frank", LastSeen: now})).Required()
		gt.NoError(t, repo.User().Delete(ctx, id)).Required()
		gt.NoError(t, repo.User().Delete(ctx, id)).Required()

		_, err := repo.User().Get(ctx, id)
		gt.Bool(t, isNotFound(err)).True()
	})

	t.Run("ListActive filters by last seen regardless of status", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		// Far future timestamps keep other runs against shared databases out of the result
		base := now.Add(24 * time.Hour)
		fresh := model.UserID(uniqueID("fresh"))
		offline := model.UserID(uniqueID("offline"))
		stale := model.UserID(uniqueID("stale"))
		edge := model.UserID(uniqueID("edge"))
		since := base.Add(-5 * time.Minute)

		gt.NoError(t, repo.User().Upsert(ctx, &model.User{ID: fresh, Status: types.UserStatusOnline, LastSeen: base})).Required()
		gt.NoError(t, repo.User().Upsert(ctx, &model.User{ID: offline, Status: types.UserStatusOffline, LastSeen: base.Add(-time.Minute)})).Required()
		gt.NoError(t, repo.User().Upsert(ctx, &model.User{ID: stale, Status: types.UserStatusOnline, LastSeen: base.Add(-6 * time.Minute)})).Required()
		gt.NoError(t, repo.User().Upsert(ctx, &model.User{ID: edge, Status: types.UserStatusOnline, LastSeen: since})).Required()

		users, err := repo.User().ListActive(ctx, since)
		gt.NoError(t, err).Required()

		found := map[model.UserID]bool{}
		for _, u := range users {
			found[u.ID] = true
		}
		gt.Bool(t, found[fresh]).True()
		gt.Bool(t, found[offline]).True()
		gt.Bool(t, found[stale]).False()
		gt.Bool(t, found[edge]).False()
	})
}
