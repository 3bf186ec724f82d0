package memory

import (
	"context"
	"sync"

	"github.com/secmon-lab/vitalmap/pkg/domain/model"
)

type healthRepository struct {
	mu      sync.RWMutex
	samples map[model.UserID][]*model.HealthSample
	latest  map[model.UserID]*model.HealthSample
}

func newHealthRepository() *healthRepository {
	return &healthRepository{
		samples: make(map[model.UserID][]*model.HealthSample),
		latest:  make(map[model.UserID]*model.HealthSample),
	}
}

func (r *healthRepository) Append(ctx context.Context, sample *model.HealthSample) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := sample.Copy()
	r.samples[stored.UserID] = append(r.samples[stored.UserID], stored)
	if stored.NewerThan(r.latest[stored.UserID]) {
		r.latest[stored.UserID] = stored
	}
	return nil
}

func (r *healthRepository) Latest(ctx context.Context, ids []model.UserID) (map[model.UserID]*model.HealthSample, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[model.UserID]*model.HealthSample, len(ids))
	for _, id := range ids {
		if s, ok := r.latest[id]; ok {
			result[id] = s.Copy()
		}
	}
	return result, nil
}

func (r *healthRepository) ListByUser(ctx context.Context, id model.UserID) ([]*model.HealthSample, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	samples := make([]*model.HealthSample, 0, len(r.samples[id]))
	for _, s := range r.samples[id] {
		samples = append(samples, s.Copy())
	}
	return samples, nil
}
