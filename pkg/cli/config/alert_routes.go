package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/vitalmap/pkg/domain/types"
)

// AlertRoutes maps alert types to Slack channels.
//
//	[[route]]
//	types = ["critical"]
//	channel = "C0123ONCALL"
type AlertRoutes struct {
	Routes []AlertRoute `toml:"route"`
}

// AlertRoute sends alerts of the listed types to one channel
type AlertRoute struct {
	Types   []string `toml:"types"`
	Channel string   `toml:"channel"`
}

// Validate checks if the AlertRoute is valid
func (r *AlertRoute) Validate() error {
	if r.Channel == "" {
		return goerr.Wrap(ErrMissingChannel, "route has no channel")
	}
	if len(r.Types) == 0 {
		return goerr.Wrap(ErrInvalidConfig, "route has no alert types", goerr.V(ChannelKey, r.Channel))
	}
	for _, t := range r.Types {
		if !types.AlertType(t).IsValid() {
			return goerr.Wrap(ErrInvalidAlertType, "unknown alert type in route",
				goerr.V(AlertTypeKey, t),
				goerr.V(ChannelKey, r.Channel),
			)
		}
	}
	return nil
}

// Validate checks if the AlertRoutes are valid
func (a *AlertRoutes) Validate() error {
	seen := make(map[types.AlertType]map[string]bool)
	for i, route := range a.Routes {
		if err := route.Validate(); err != nil {
			return goerr.Wrap(err, "invalid route", goerr.V(RouteIndexKey, i))
		}

		for _, t := range route.Types {
			alertType := types.AlertType(t)
			if seen[alertType] == nil {
				seen[alertType] = make(map[string]bool)
			}
			if seen[alertType][route.Channel] {
				return goerr.Wrap(ErrDuplicateRoute, "alert type is routed to the same channel twice",
					goerr.V(RouteIndexKey, i),
					goerr.V(AlertTypeKey, t),
					goerr.V(ChannelKey, route.Channel),
				)
			}
			seen[alertType][route.Channel] = true
		}
	}
	return nil
}

// Channels returns the channels of each alert type in file order
func (a *AlertRoutes) Channels() map[types.AlertType][]string {
	result := make(map[types.AlertType][]string)
	for _, route := range a.Routes {
		for _, t := range route.Types {
			alertType := types.AlertType(t)
			result[alertType] = append(result[alertType], route.Channel)
		}
	}
	return result
}

// LoadAlertRoutes loads the alert routes from a TOML file
func LoadAlertRoutes(path string) (*AlertRoutes, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read alert routes file", goerr.V(ConfigPathKey, path))
	}

	var routes AlertRoutes
	if err := toml.Unmarshal(data, &routes); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse alert routes TOML",
			goerr.V(ConfigPathKey, path),
			goerr.V("error", err.Error()),
		)
	}

	if err := routes.Validate(); err != nil {
		return nil, goerr.Wrap(err, "alert routes validation failed", goerr.V(ConfigPathKey, path))
	}

	return &routes, nil
}
