package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vitalmap/pkg/domain/interfaces"
)

const (
	usersCollection        = "users"
	healthDataCollection   = "health_data"
	healthLatestCollection = "health_latest"
	watchDataCollection    = "watch_data"
	watchCounterCollection = "watch_counters"

	// Maximum document references per GetAll
	firestoreGetAllLimit = 30
)

type Firestore struct {
	client *firestore.Client
	user   *userRepository
	health *healthRepository
	watch  *watchRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.user.collectionPrefix = prefix
		f.health.collectionPrefix = prefix
		f.watch.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID),
			goerr.V("databaseID", databaseID),
		)
	}

	f := &Firestore{
		client: client,
		user:   newUserRepository(client),
		health: newHealthRepository(client),
		watch:  newWatchRepository(client),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) User() interfaces.UserRepository {
	return f.user
}

func (f *Firestore) Health() interfaces.HealthRepository {
	return f.health
}

func (f *Firestore) Watch() interfaces.WatchRepository {
	return f.watch
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

func collectionName(prefix, name string) string {
	if prefix != "" {
		return prefix + "_" + name
	}
	return name
}
