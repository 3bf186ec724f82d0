package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vitalmap/pkg/domain/interfaces"
	"github.com/secmon-lab/vitalmap/pkg/repository/firestore"
	"github.com/secmon-lab/vitalmap/pkg/repository/memory"
	"github.com/secmon-lab/vitalmap/pkg/repository/sqldb"
	"github.com/secmon-lab/vitalmap/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Repository backend names
const (
	BackendMemory    = "memory"
	BackendSQLite    = "sqlite"
	BackendPostgres  = "postgres"
	BackendFirestore = "firestore"
)

// Repository holds CLI flags for repository backend configuration
type Repository struct {
	backend          string
	sqliteDSN        string
	postgresDSN      string
	projectID        string
	databaseID       string
	collectionPrefix string
}

// Flags returns CLI flags for repository configuration
func (r *Repository) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "repository-backend",
			Usage:       "Repository backend type (memory, sqlite, postgres or firestore)",
			Category:    "Repository",
			Value:       BackendSQLite,
			Sources:     cli.EnvVars("VITALMAP_REPOSITORY_BACKEND"),
			Destination: &r.backend,
		},
		&cli.StringFlag{
			Name:        "sqlite-dsn",
			Usage:       "SQLite database file or DSN",
			Category:    "Repository",
			Value:       "vitalmap.db",
			Sources:     cli.EnvVars("VITALMAP_SQLITE_DSN"),
			Destination: &r.sqliteDSN,
		},
		&cli.StringFlag{
			Name:        "postgres-dsn",
			Usage:       "PostgreSQL connection string (required when using postgres backend)",
			Category:    "Repository",
			Sources:     cli.EnvVars("VITALMAP_POSTGRES_DSN"),
			Destination: &r.postgresDSN,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Firestore Project ID (required when using firestore backend)",
			Category:    "Repository",
			Sources:     cli.EnvVars("VITALMAP_FIRESTORE_PROJECT_ID"),
			Destination: &r.projectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore Database ID",
			Category:    "Repository",
			Sources:     cli.EnvVars("VITALMAP_FIRESTORE_DATABASE_ID"),
			Destination: &r.databaseID,
		},
		&cli.StringFlag{
			Name:        "firestore-collection-prefix",
			Usage:       "Prefix prepended to every Firestore collection name",
			Category:    "Repository",
			Sources:     cli.EnvVars("VITALMAP_FIRESTORE_COLLECTION_PREFIX"),
			Destination: &r.collectionPrefix,
		},
	}
}

// Backend returns the configured backend type
func (r *Repository) Backend() string {
	return r.backend
}

// Shared reports whether the backend is reachable from every instance
func (r *Repository) Shared() bool {
	return r.backend == BackendPostgres || r.backend == BackendFirestore
}

func (r Repository) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("backend", r.backend),
		slog.String("sqlite_dsn", r.sqliteDSN),
		slog.Int("postgres_dsn.len", len(r.postgresDSN)),
		slog.String("firestore_project_id", r.projectID),
		slog.String("firestore_database_id", r.databaseID),
	)
}

// SQL returns the dialect and DSN of a SQL backend
func (r *Repository) SQL() (sqldb.Dialect, string, error) {
	switch r.backend {
	case BackendSQLite:
		if r.sqliteDSN == "" {
			return "", "", goerr.Wrap(ErrMissingOption, "sqlite-dsn is required when using sqlite backend",
				goerr.V(OptionKey, "sqlite-dsn"))
		}
		return sqldb.DialectSQLite, r.sqliteDSN, nil

	case BackendPostgres:
		if r.postgresDSN == "" {
			return "", "", goerr.Wrap(ErrMissingOption, "postgres-dsn is required when using postgres backend",
				goerr.V(OptionKey, "postgres-dsn"))
		}
		return sqldb.DialectPostgres, r.postgresDSN, nil

	default:
		return "", "", goerr.Wrap(ErrInvalidBackend, "backend is not a SQL database", goerr.V(BackendKey, r.backend))
	}
}

// Configure initializes and returns a repository based on the configured backend.
// The caller is responsible for calling Close() on the returned repository.
func (r *Repository) Configure(ctx context.Context) (interfaces.Repository, error) {
	switch r.backend {
	case BackendFirestore:
		if r.projectID == "" {
			return nil, goerr.Wrap(ErrMissingOption, "firestore-project-id is required when using firestore backend",
				goerr.V(OptionKey, "firestore-project-id"))
		}
		repo, err := firestore.New(ctx, r.projectID, r.databaseID, firestore.WithCollectionPrefix(r.collectionPrefix))
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize firestore repository")
		}
		logging.Default().Info("Using Firestore repository",
			"project_id", r.projectID,
			"database_id", r.databaseID,
		)
		return repo, nil

	case BackendSQLite, BackendPostgres:
		dialect, dsn, err := r.SQL()
		if err != nil {
			return nil, err
		}
		repo, err := sqldb.New(ctx, dialect, dsn)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize SQL repository", goerr.V(BackendKey, r.backend))
		}
		logging.Default().Info("Using SQL repository", "dialect", dialect)
		return repo, nil

	case BackendMemory:
		logging.Default().Info("Using in-memory repository (development mode)")
		return memory.New(), nil

	default:
		return nil, goerr.Wrap(ErrInvalidBackend, "unknown repository backend", goerr.V(BackendKey, r.backend))
	}
}
