package memory

import (
	"context"
	"sync"

	"github.com/secmon-lab/vitalmap/pkg/domain/model"
)

type watchRepository struct {
	mu      sync.RWMutex
	samples map[model.UserID][]*model.WatchSample
}

func newWatchRepository() *watchRepository {
	return &watchRepository{
		samples: make(map[model.UserID][]*model.WatchSample),
	}
}

func (r *watchRepository) Append(ctx context.Context, sample *model.WatchSample) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := sample.Copy()
	r.samples[stored.UserID] = append(r.samples[stored.UserID], stored)
	return nil
}

func (r *watchRepository) ListByUser(ctx context.Context, id model.UserID) ([]*model.WatchSample, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	samples := make([]*model.WatchSample, 0, len(r.samples[id]))
	for _, s := range r.samples[id] {
		samples = append(samples, s.Copy())
	}
	return samples, nil
}
