package config_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/vitalmap/pkg/cli/config"
)

func TestSlackConfigure(t *testing.T) {
	routesPath := func(t *testing.T) string {
		return writeFile(t, "routes.toml", `
[[route]]
types = ["critical"]
channel = "C-ONCALL"
`)
	}

	t.Run("disabled without token", func(t *testing.T) {
		cfg := config.NewSlackForTest("", "", "")
		gt.Bool(t, cfg.IsConfigured()).False()

		notifier, err := cfg.Configure()
		gt.NoError(t, err)
		gt.Value(t, notifier).Nil()
	})

	t.Run("routes without token is an error", func(t *testing.T) {
		cfg := config.NewSlackForTest("", routesPath(t), "")

		_, err := cfg.Configure()
		gt.Error(t, err).Is(config.ErrRoutesWithoutToken)
	})

	t.Run("token without routes is disabled", func(t *testing.T) {
		cfg := config.NewSlackForTest("xoxb-test", "", "")

		notifier, err := cfg.Configure()
		gt.NoError(t, err)
		gt.Value(t, notifier).Nil()
	})

	t.Run("token and routes create a notifier", func(t *testing.T) {
		cfg := config.NewSlackForTest("xoxb-test", routesPath(t), "http://127.0.0.1:1/")
		gt.Bool(t, cfg.IsConfigured()).True()

		notifier, err := cfg.Configure()
		gt.NoError(t, err).Required()
		gt.Value(t, notifier).NotNil()
	})

	t.Run("invalid routes file", func(t *testing.T) {
		path := writeFile(t, "routes.toml", `
[[route]]
types = ["bogus"]
channel = "C-ONCALL"
`)
		cfg := config.NewSlackForTest("xoxb-test", path, "")

		_, err := cfg.Configure()
		gt.Error(t, err).Is(config.ErrInvalidAlertType)
	})
}
