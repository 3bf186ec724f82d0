package interfaces

import (
	"context"

	"github.com/secmon-lab/vitalmap/pkg/domain/model"
)

// HealthRepository is the append-only health sample log
type HealthRepository interface {
	// Append stores the sample and moves the latest-sample index of its user forward
	// when the sample is not older than the indexed one
	Append(ctx context.Context, sample *model.HealthSample) error

	// Latest looks up the latest sample of each user. Users without samples are not
	// included in the map.
	Latest(ctx context.Context, ids []model.UserID) (map[model.UserID]*model.HealthSample, error)

	// ListByUser returns all samples of the user in insertion order
	ListByUser(ctx context.Context, id model.UserID) ([]*model.HealthSample, error)
}

// WatchRepository is the append-only smartwatch sync log
type WatchRepository interface {
	Append(ctx context.Context, sample *model.WatchSample) error
	ListByUser(ctx context.Context, id model.UserID) ([]*model.WatchSample, error)
}
