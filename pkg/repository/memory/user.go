package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vitalmap/pkg/domain/model"
	"github.com/secmon-lab/vitalmap/pkg/domain/types"
)

type userRepository struct {
	mu    sync.RWMutex
	users map[model.UserID]*model.User
}

func newUserRepository() *userRepository {
	return &userRepository{
		users: make(map[model.UserID]*model.User),
	}
}

func (r *userRepository) Upsert(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.users[user.ID] = user.Copy()
	return nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; !ok {
		return nil
	}
	r.users[user.ID] = user.Copy()
	return nil
}

func (r *userRepository) SetLocation(ctx context.Context, id model.UserID, location *model.Location, seenAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil
	}
	user.Location = location.Copy()
	user.LastSeen = seenAt
	return nil
}

func (r *userRepository) SetStatus(ctx context.Context, id model.UserID, status types.UserStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user, ok := r.users[id]; ok {
		user.Status = status
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id model.UserID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.users, id)
	return nil
}

func (r *userRepository) Get(ctx context.Context, id model.UserID) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "user not found", goerr.V("id", id))
	}
	return user.Copy(), nil
}

func (r *userRepository) ListActive(ctx context.Context, since time.Time) ([]*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]*model.User, 0, len(r.users))
	for _, user := range r.users {
		if user.IsActive(since) {
			users = append(users, user.Copy())
		}
	}
	return users, nil
}
