package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vitalmap/pkg/domain/interfaces"
	"github.com/secmon-lab/vitalmap/pkg/service/slack"
	"github.com/secmon-lab/vitalmap/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Slack holds CLI flags for posting alerts to Slack
type Slack struct {
	botToken   string
	routesPath string
	apiURL     string
}

func (x *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack Bot User OAuth Token (for posting alerts)",
			Category:    "Slack",
			Sources:     cli.EnvVars("VITALMAP_SLACK_BOT_TOKEN"),
			Destination: &x.botToken,
		},
		&cli.StringFlag{
			Name:        "slack-alert-routes",
			Usage:       "TOML file routing alert types to Slack channels",
			Category:    "Slack",
			Sources:     cli.EnvVars("VITALMAP_SLACK_ALERT_ROUTES"),
			Destination: &x.routesPath,
		},
	}
}

func (x Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("bot-token.len", len(x.botToken)),
		slog.String("alert-routes", x.routesPath),
	)
}

// IsConfigured checks if alerts should be posted to Slack
func (x *Slack) IsConfigured() bool {
	return x.botToken != "" && x.routesPath != ""
}

// Configure creates the alert notifier. It returns nil when Slack is not configured.
func (x *Slack) Configure() (interfaces.AlertNotifier, error) {
	if x.botToken == "" {
		if x.routesPath != "" {
			return nil, goerr.Wrap(ErrRoutesWithoutToken, "slack-alert-routes is set without slack-bot-token",
				goerr.V(ConfigPathKey, x.routesPath))
		}
		logging.Default().Info("Slack bot token not configured, alerts are not posted to Slack")
		return nil, nil
	}
	if x.routesPath == "" {
		logging.Default().Warn("Slack bot token is set without slack-alert-routes, alerts are not posted to Slack")
		return nil, nil
	}

	routes, err := LoadAlertRoutes(x.routesPath)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load Slack alert routes")
	}

	var opts []slack.Option
	if x.apiURL != "" {
		opts = append(opts, slack.WithAPIURL(x.apiURL))
	}

	notifier, err := slack.New(x.botToken, routes.Channels(), opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize Slack notifier")
	}
	logging.Default().Info("Slack alert notifier enabled", "routes", len(routes.Routes))
	return notifier, nil
}
