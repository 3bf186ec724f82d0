package interfaces

import (
	"context"
	"time"

	"github.com/secmon-lab/vitalmap/pkg/domain/model"
	"github.com/secmon-lab/vitalmap/pkg/domain/types"
)

// UserRepository is the user registry.
//
// Writes against an unknown id (UpdateProfile, SetLocation, SetStatus) are silent
// no-ops and Delete is idempotent; none of them report a missing user as an error.
type UserRepository interface {
	// Upsert inserts the user or replaces every field of an existing one
	Upsert(ctx context.Context, user *model.User) error

	// UpdateProfile overwrites name, email, status, location, bio and last seen of an existing user
	UpdateProfile(ctx context.Context, user *model.User) error

	// SetLocation updates only location and last seen
	SetLocation(ctx context.Context, id model.UserID, location *model.Location, seenAt time.Time) error

	// SetStatus updates only the status
	SetStatus(ctx context.Context, id model.UserID, status types.UserStatus) error

	// Delete removes the user. Telemetry samples are kept.
	Delete(ctx context.Context, id model.UserID) error

	// Get returns ErrNotFound when the user does not exist
	Get(ctx context.Context, id model.UserID) (*model.User, error)

	// ListActive returns all users last seen strictly after since, regardless of status
	ListActive(ctx context.Context, since time.Time) ([]*model.User, error)
}
