package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vitalmap/pkg/domain/interfaces"
	"github.com/secmon-lab/vitalmap/pkg/domain/model"
	"github.com/secmon-lab/vitalmap/pkg/domain/types"
)

// PresenceUseCase maintains the user registry and builds presence snapshots
type PresenceUseCase struct {
	repo   interfaces.Repository
	clock  func() time.Time
	window time.Duration
}

func NewPresenceUseCase(repo interfaces.Repository, clock func() time.Time, window time.Duration) *PresenceUseCase {
	if clock == nil {
		clock = time.Now
	}
	if window <= 0 {
		window = DefaultPresenceWindow
	}
	return &PresenceUseCase{
		repo:   repo,
		clock:  clock,
		window: window,
	}
}

// Window returns how long users stay in presence snapshots after they were last seen
func (uc *PresenceUseCase) Window() time.Duration {
	return uc.window
}

func (uc *PresenceUseCase) now() time.Time {
	return uc.clock().UTC()
}

// Join registers a user that opened the map. Any previous profile is replaced.
func (uc *PresenceUseCase) Join(ctx context.Context, id model.UserID, name string) error {
	if id == "" {
		return goerr.Wrap(ErrMissingUserID, "failed to join")
	}

	user := &model.User{
		ID:       id,
		Name:     name,
		Status:   types.UserStatusOnline,
		LastSeen: uc.now(),
	}
	if err := uc.repo.User().Upsert(ctx, user); err != nil {
		return goerr.Wrap(err, "failed to join", goerr.V(UserIDKey, id))
	}
	return nil
}

// Connect registers a user that opened the user panel with its full profile
func (uc *PresenceUseCase) Connect(ctx context.Context, user *model.User) error {
	if user.ID == "" {
		return goerr.Wrap(ErrMissingUserID, "failed to connect")
	}

	u := user.Copy()
	u.Status = u.Status.Normalize()
	u.LastSeen = uc.now()
	if err := uc.repo.User().Upsert(ctx, u); err != nil {
		return goerr.Wrap(err, "failed to connect", goerr.V(UserIDKey, user.ID))
	}
	return nil
}

// ShareLocation records the latest location of a user
func (uc *PresenceUseCase) ShareLocation(ctx context.Context, id model.UserID, location *model.Location) error {
	if err := uc.repo.User().SetLocation(ctx, id, location, uc.now()); err != nil {
		return goerr.Wrap(err, "failed to share location", goerr.V(UserIDKey, id))
	}
	return nil
}

// UpdateProfile overwrites the profile of a registered user. Unknown users are ignored.
func (uc *PresenceUseCase) UpdateProfile(ctx context.Context, user *model.User) error {
	u := user.Copy()
	u.Status = u.Status.Normalize()
	u.LastSeen = uc.now()
	if err := uc.repo.User().UpdateProfile(ctx, u); err != nil {
		return goerr.Wrap(err, "failed to update profile", goerr.V(UserIDKey, user.ID))
	}
	return nil
}

// Leave removes a user that closed the map
func (uc *PresenceUseCase) Leave(ctx context.Context, id model.UserID) error {
	if err := uc.repo.User().Delete(ctx, id); err != nil {
		return goerr.Wrap(err, "failed to leave", goerr.V(UserIDKey, id))
	}
	return nil
}

// Logout marks a user offline. The user stays in snapshots until it goes stale.
func (uc *PresenceUseCase) Logout(ctx context.Context, id model.UserID) error {
	if err := uc.repo.User().SetStatus(ctx, id, types.UserStatusOffline); err != nil {
		return goerr.Wrap(err, "failed to logout", goerr.V(UserIDKey, id))
	}
	return nil
}

// DeleteAccount removes a user. Telemetry of the user is kept.
func (uc *PresenceUseCase) DeleteAccount(ctx context.Context, id model.UserID) error {
	if err := uc.repo.User().Delete(ctx, id); err != nil {
		return goerr.Wrap(err, "failed to delete account", goerr.V(UserIDKey, id))
	}
	return nil
}

// Snapshot returns every user seen within the presence window with its latest health sample
func (uc *PresenceUseCase) Snapshot(ctx context.Context) (model.Presence, error) {
	since := uc.now().Add(-uc.window)

	users, err := uc.repo.User().ListActive(ctx, since)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list active users", goerr.V("since", since))
	}

	ids := make([]model.UserID, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}

	latest, err := uc.repo.Health().Latest(ctx, ids)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get latest health samples", goerr.V("count", len(ids)))
	}

	return model.NewPresence(users, latest), nil
}

// Lookup returns the profile and latest health sample of one user, whether or not
// it is inside the presence window. A missing user is reported as interfaces.ErrNotFound.
func (uc *PresenceUseCase) Lookup(ctx context.Context, id model.UserID) (*model.PresenceEntry, error) {
	if id == "" {
		return nil, goerr.Wrap(ErrMissingUserID, "failed to look up user")
	}

	user, err := uc.repo.User().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get user", goerr.V(UserIDKey, id))
	}

	latest, err := uc.repo.Health().Latest(ctx, []model.UserID{id})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get latest health sample", goerr.V(UserIDKey, id))
	}

	return model.NewPresence([]*model.User{user}, latest)[id], nil
}
