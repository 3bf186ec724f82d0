package cli

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vitalmap/pkg/cli/config"
	"github.com/secmon-lab/vitalmap/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

func cmdValidate() *cli.Command {
	var routesPath string

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate a Slack alert routes file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "slack-alert-routes",
				Usage:       "TOML file routing alert types to Slack channels",
				Required:    true,
				Sources:     cli.EnvVars("VITALMAP_SLACK_ALERT_ROUTES"),
				Destination: &routesPath,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			w := c.Root().Writer

			routes, err := config.LoadAlertRoutes(routesPath)
			if err != nil {
				printResult(w, false, "%s", routesPath)
				return goerr.Wrap(err, "alert routes validation failed")
			}

			printResult(w, true, "%s (%d routes)", routesPath, len(routes.Routes))

			channels := routes.Channels()
			for _, alertType := range types.AllAlertTypes() {
				routed := channels[alertType]
				if len(routed) == 0 {
					_, _ = fmt.Fprintf(w, "  %-8s %s\n", alertType, color.YellowString("not routed"))
					continue
				}
				sorted := slices.Clone(routed)
				slices.Sort(sorted)
				_, _ = fmt.Fprintf(w, "  %-8s %s\n", alertType, strings.Join(sorted, ", "))
			}
			return nil
		},
	}
}

func printResult(w io.Writer, ok bool, format string, args ...any) {
	mark := color.GreenString("OK")
	if !ok {
		mark = color.RedString("NG")
	}
	_, _ = fmt.Fprintf(w, "[%s] %s\n", mark, fmt.Sprintf(format, args...))
}
