package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vitalmap/pkg/cli/config"
	"github.com/secmon-lab/vitalmap/pkg/repository/sqldb"
	"github.com/secmon-lab/vitalmap/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdMigrate() *cli.Command {
	var repoCfg config.Repository
	var dryRun bool

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "dry-run",
			Usage:       "Print the schema without applying it",
			Destination: &dryRun,
		},
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:    "migrate",
		Aliases: []string{"m"},
		Usage:   "Create the SQL schema on a sqlite or postgres database",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			dialect, dsn, err := repoCfg.SQL()
			if err != nil {
				return goerr.Wrap(err, "migrate supports only SQL backends")
			}

			logger.Info("Migrate configuration",
				"dialect", dialect,
				"dryRun", dryRun)

			if dryRun {
				logger.Info("Dry run mode - printing schema")
				for _, stmt := range sqldb.Schema(dialect) {
					if _, err := fmt.Fprintln(c.Root().Writer, strings.TrimSpace(stmt)+";"); err != nil {
						return goerr.Wrap(err, "failed to print schema")
					}
				}
				return nil
			}

			// Opening the database applies the schema
			db, err := sqldb.New(ctx, dialect, dsn)
			if err != nil {
				return goerr.Wrap(err, "failed to apply migrations", goerr.V("dialect", dialect))
			}
			if err := db.Close(); err != nil {
				logger.Error("failed to close database", "error", err.Error())
			}

			logger.Info("Migrations applied successfully", "dialect", dialect)
			return nil
		},
	}
}
