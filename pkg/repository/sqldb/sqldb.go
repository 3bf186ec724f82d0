package sqldb

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vitalmap/pkg/domain/interfaces"
	_ "modernc.org/sqlite"
)

// Dialect selects the SQL flavor and the database/sql driver
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// driverName returns the database/sql driver registered for the dialect
func (d Dialect) driverName() string {
	switch d {
	case DialectPostgres:
		return "pgx"
	default:
		return "sqlite"
	}
}

// ParseDialect parses a dialect name
func ParseDialect(s string) (Dialect, error) {
	switch Dialect(s) {
	case DialectSQLite, DialectPostgres:
		return Dialect(s), nil
	}
	return "", goerr.Wrap(ErrUnsupportedDialect, "unknown SQL dialect", goerr.V("dialect", s))
}

// DB implements interfaces.Repository on top of database/sql
type DB struct {
	db      *sql.DB
	dialect Dialect

	user   *userRepository
	health *healthRepository
	watch  *watchRepository
}

var _ interfaces.Repository = &DB{}

type Option func(*DB)

// WithMaxOpenConns overrides the connection pool size
func WithMaxOpenConns(n int) Option {
	return func(d *DB) {
		d.db.SetMaxOpenConns(n)
	}
}

// New opens the database and creates the tables when they do not exist yet
func New(ctx context.Context, dialect Dialect, dsn string, opts ...Option) (*DB, error) {
	if _, err := ParseDialect(string(dialect)); err != nil {
		return nil, err
	}

	db, err := sql.Open(dialect.driverName(), dsn)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open database", goerr.V("dialect", dialect))
	}

	// An in-memory sqlite database lives and dies with its connection
	if dialect == DialectSQLite {
		db.SetMaxOpenConns(1)
	}

	d := &DB{
		db:      db,
		dialect: dialect,
	}
	d.user = &userRepository{db: d}
	d.health = &healthRepository{db: d}
	d.watch = &watchRepository{db: d}

	for _, opt := range opts {
		opt(d)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, goerr.Wrap(err, "failed to connect database", goerr.V("dialect", dialect))
	}

	if err := d.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return d, nil
}

func (d *DB) User() interfaces.UserRepository {
	return d.user
}

func (d *DB) Health() interfaces.HealthRepository {
	return d.health
}

func (d *DB) Watch() interfaces.WatchRepository {
	return d.watch
}

func (d *DB) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

// Migrate applies the schema. Every statement is idempotent.
func (d *DB) Migrate(ctx context.Context) error {
	for _, stmt := range Schema(d.dialect) {
		if _, err := d.db.ExecContext(ctx, stmt); err != nil {
			return goerr.Wrap(err, "failed to apply schema", goerr.V("statement", stmt))
		}
	}
	return nil
}

// rebind converts ? placeholders into the positional form of the dialect
func (d *DB) rebind(query string) string {
	if d.dialect != DialectPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

func (d *DB) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return d.db.ExecContext(ctx, d.rebind(query), args...)
}

func (d *DB) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return d.db.QueryContext(ctx, d.rebind(query), args...)
}

func (d *DB) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return d.db.QueryRowContext(ctx, d.rebind(query), args...)
}
