package config

import (
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vitalmap/pkg/service/worker"
	"github.com/secmon-lab/vitalmap/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// Presence holds CLI flags for the presence snapshot
type Presence struct {
	window   time.Duration
	schedule string
}

func (x *Presence) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.DurationFlag{
			Name:        "presence-window",
			Usage:       "Users last seen within this window are listed as active",
			Category:    "Presence",
			Value:       usecase.DefaultPresenceWindow,
			Sources:     cli.EnvVars("VITALMAP_PRESENCE_WINDOW"),
			Destination: &x.window,
		},
		&cli.StringFlag{
			Name:        "presence-refresh",
			Usage:       "Cron schedule for rebroadcasting presence (e.g. \"@every 1m\"). Disabled when empty.",
			Category:    "Presence",
			Sources:     cli.EnvVars("VITALMAP_PRESENCE_REFRESH"),
			Destination: &x.schedule,
		},
	}
}

func (x Presence) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("window", x.window.String()),
		slog.String("refresh", x.schedule),
	)
}

// Validate checks if the presence options are valid
func (x *Presence) Validate() error {
	if x.window <= 0 {
		return goerr.Wrap(ErrInvalidConfig, "presence-window must be positive", goerr.V(OptionKey, "presence-window"))
	}
	if x.schedule != "" {
		if err := worker.ValidateSchedule(x.schedule); err != nil {
			return goerr.Wrap(err, "invalid presence-refresh", goerr.V(OptionKey, "presence-refresh"))
		}
	}
	return nil
}

// Window returns the presence window
func (x *Presence) Window() time.Duration {
	return x.window
}

// RefreshSchedule returns the cron schedule, empty when refresh is disabled
func (x *Presence) RefreshSchedule() string {
	return x.schedule
}
