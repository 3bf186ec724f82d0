package sqldb

import "strings"

const schemaTemplate = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'online',
	location TEXT NOT NULL DEFAULT '',
	bio TEXT NOT NULL DEFAULT '',
	last_seen BIGINT NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_users_last_seen ON users (last_seen);

CREATE TABLE IF NOT EXISTS health_data (
	id {{serial}},
	user_id TEXT NOT NULL,
	heart_rate INTEGER,
	step_count INTEGER,
	calories INTEGER,
	sleep_quality INTEGER,
	recorded_at BIGINT NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_health_data_user ON health_data (user_id, id);

CREATE TABLE IF NOT EXISTS health_latest (
	user_id TEXT PRIMARY KEY,
	health_id BIGINT NOT NULL,
	heart_rate INTEGER,
	step_count INTEGER,
	calories INTEGER,
	sleep_quality INTEGER,
	recorded_at BIGINT NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS watch_data (
	id {{serial}},
	user_id TEXT NOT NULL,
	watch_id TEXT NOT NULL DEFAULT '',
	heart_rate INTEGER,
	step_count INTEGER,
	calories INTEGER,
	sleep_hours {{float}},
	battery_level INTEGER,
	recorded_at BIGINT NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_watch_data_user ON watch_data (user_id, id)
`

// Schema returns the DDL statements for the dialect in execution order
func Schema(dialect Dialect) []string {
	serial := "INTEGER PRIMARY KEY AUTOINCREMENT"
	float := "REAL"
	if dialect == DialectPostgres {
		serial = "BIGSERIAL PRIMARY KEY"
		float = "DOUBLE PRECISION"
	}

	ddl := strings.NewReplacer("{{serial}}", serial, "{{float}}", float).Replace(schemaTemplate)

	var stmts []string
	for _, stmt := range strings.Split(ddl, ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}
