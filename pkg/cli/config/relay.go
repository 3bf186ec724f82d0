package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vitalmap/pkg/domain/interfaces"
	"github.com/secmon-lab/vitalmap/pkg/service/relay"
	"github.com/secmon-lab/vitalmap/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Relay holds CLI flags for sharing broadcasts between instances
type Relay struct {
	redisURL string
	channel  string
}

func (x *Relay) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "redis-url",
			Usage:       "Redis URL used to relay broadcasts between instances (e.g. redis://localhost:6379/0). Single instance mode when empty.",
			Category:    "Relay",
			Sources:     cli.EnvVars("VITALMAP_REDIS_URL"),
			Destination: &x.redisURL,
		},
		&cli.StringFlag{
			Name:        "redis-channel",
			Usage:       "Redis pub/sub channel for relayed broadcasts",
			Category:    "Relay",
			Value:       relay.DefaultChannel,
			Sources:     cli.EnvVars("VITALMAP_REDIS_CHANNEL"),
			Destination: &x.channel,
		},
	}
}

func (x Relay) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("enabled", x.redisURL != ""),
		slog.String("channel", x.channel),
	)
}

// Validate rejects a relay in front of a backend that only the local instance can
// see, because peers on other instances would be missing from every snapshot.
func (x *Relay) Validate(repo *Repository) error {
	if x.redisURL == "" || repo.Shared() {
		return nil
	}
	return goerr.Wrap(ErrRelayWithoutShared, "redis-url needs the postgres or firestore backend",
		goerr.V(BackendKey, repo.Backend()))
}

// Configure connects the relay. It returns nil when no Redis URL is configured.
func (x *Relay) Configure(ctx context.Context) (interfaces.Relay, error) {
	if x.redisURL == "" {
		logging.Default().Info("Redis URL not configured, running as a single instance")
		return nil, nil
	}

	r, err := relay.NewRedis(ctx, x.redisURL, relay.WithChannel(x.channel))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize relay")
	}
	logging.Default().Info("Relay enabled", "channel", x.channel, "origin", r.Origin())
	return r, nil
}
