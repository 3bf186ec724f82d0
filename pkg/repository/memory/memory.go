package memory

import (
	"github.com/secmon-lab/vitalmap/pkg/domain/interfaces"
)

// Memory keeps everything in process memory. Data is lost on restart.
type Memory struct {
	user   *userRepository
	health *healthRepository
	watch  *watchRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		user:   newUserRepository(),
		health: newHealthRepository(),
		watch:  newWatchRepository(),
	}
}

func (m *Memory) User() interfaces.UserRepository {
	return m.user
}

func (m *Memory) Health() interfaces.HealthRepository {
	return m.health
}

func (m *Memory) Watch() interfaces.WatchRepository {
	return m.watch
}

func (m *Memory) Close() error {
	return nil
}
