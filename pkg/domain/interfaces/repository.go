package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	User() UserRepository
	Health() HealthRepository
	Watch() WatchRepository

	Close() error
}
