package config

import "time"

// NewSlackForTest creates a Slack config for testing purposes
func NewSlackForTest(botToken, routesPath, apiURL string) *Slack {
	return &Slack{
		botToken:   botToken,
		routesPath: routesPath,
		apiURL:     apiURL,
	}
}

// NewRepositoryForTest creates a Repository config for testing purposes
func NewRepositoryForTest(backend, sqliteDSN, postgresDSN, projectID string) *Repository {
	return &Repository{
		backend:     backend,
		sqliteDSN:   sqliteDSN,
		postgresDSN: postgresDSN,
		projectID:   projectID,
	}
}

// NewPresenceForTest creates a Presence config for testing purposes
func NewPresenceForTest(window time.Duration, schedule string) *Presence {
	return &Presence{
		window:   window,
		schedule: schedule,
	}
}

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{
		level:  level,
		format: format,
		output: output,
	}
}

// NewRelayForTest creates a Relay config for testing purposes
func NewRelayForTest(redisURL, channel string) *Relay {
	return &Relay{
		redisURL: redisURL,
		channel:  channel,
	}
}
