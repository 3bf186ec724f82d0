package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrInvalidConfig      = goerr.New("invalid configuration")
	ErrInvalidBackend     = goerr.New("invalid repository backend")
	ErrMissingOption      = goerr.New("required option is missing")
	ErrInvalidAlertType   = goerr.New("invalid alert type")
	ErrMissingChannel     = goerr.New("route channel is required")
	ErrDuplicateRoute     = goerr.New("duplicate alert route")
	ErrRoutesWithoutToken = goerr.New("alert routes require a Slack bot token")
	ErrRelayWithoutShared = goerr.New("relay requires a repository shared between instances")
)

// Context keys for error values
const (
	ConfigPathKey = "config_path"
	RouteIndexKey = "route_index"
	AlertTypeKey  = "alert_type"
	ChannelKey    = "channel"
	BackendKey    = "backend"
	OptionKey     = "option"
)
