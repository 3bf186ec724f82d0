package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vitalmap/pkg/cli/config"
	httpctrl "github.com/secmon-lab/vitalmap/pkg/controller/http"
	"github.com/secmon-lab/vitalmap/pkg/controller/ws"
	"github.com/secmon-lab/vitalmap/pkg/service/worker"
	"github.com/secmon-lab/vitalmap/pkg/usecase"
	"github.com/secmon-lab/vitalmap/pkg/utils/logging"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func cmdServe(version string) *cli.Command {
	var addr string
	var port string
	var staticDir string
	var repoCfg config.Repository
	var relayCfg config.Relay
	var slackCfg config.Slack
	var sentryCfg config.Sentry
	var presenceCfg config.Presence

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address. Overrides --port when set.",
			Sources:     cli.EnvVars("VITALMAP_ADDR"),
			Destination: &addr,
		},
		&cli.StringFlag{
			Name:        "port",
			Usage:       "HTTP server port",
			Value:       "3000",
			Sources:     cli.EnvVars("PORT"),
			Destination: &port,
		},
		&cli.StringFlag{
			Name:        "static-dir",
			Usage:       "Directory holding index.html, user-panel.html and other assets",
			Value:       ".",
			Sources:     cli.EnvVars("VITALMAP_STATIC_DIR"),
			Destination: &staticDir,
		},
	}

	// Add shared config flags
	flags = append(flags, presenceCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, relayCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP and websocket server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if addr == "" {
				addr = net.JoinHostPort("", port)
			}

			if err := presenceCfg.Validate(); err != nil {
				return goerr.Wrap(err, "invalid presence configuration")
			}

			flushSentry, err := sentryCfg.Configure(version)
			if err != nil {
				return err
			}
			defer flushSentry()

			logging.Default().Info("Serve configuration",
				"addr", addr,
				"static_dir", staticDir,
				"presence", presenceCfg,
				"repository", repoCfg,
				"relay", relayCfg,
				"slack", slackCfg,
				"sentry", sentryCfg,
			)

			if err := relayCfg.Validate(&repoCfg); err != nil {
				return err
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			ucOpts := []usecase.Option{
				usecase.WithPresenceWindow(presenceCfg.Window()),
			}

			notifier, err := slackCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to configure Slack")
			}
			if notifier != nil {
				ucOpts = append(ucOpts, usecase.WithAlertNotifier(notifier))
			}

			uc := usecase.New(repo, ucOpts...)

			var gwOpts []ws.Option
			relay, err := relayCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure relay")
			}
			if relay != nil {
				defer func() {
					if err := relay.Close(); err != nil {
						logging.Default().Error("failed to close relay", "error", err.Error())
					}
				}()
				gwOpts = append(gwOpts, ws.WithRelay(relay))
			}

			gateway := ws.New(uc, gwOpts...)

			server := &http.Server{
				Addr: addr,
				Handler: httpctrl.New(gateway,
					httpctrl.WithStaticDir(staticDir),
					httpctrl.WithPresence(uc.Presence),
					httpctrl.WithTelemetry(uc.Telemetry),
				),
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			if schedule := presenceCfg.RefreshSchedule(); schedule != "" {
				refreshWorker, err := worker.NewPresenceRefreshWorker(gateway, schedule)
				if err != nil {
					return goerr.Wrap(err, "failed to create presence refresh worker")
				}
				if err := refreshWorker.Start(ctx); err != nil {
					return goerr.Wrap(err, "failed to start presence refresh worker")
				}
				defer refreshWorker.Stop()
			}

			eg, ctx := errgroup.WithContext(ctx)

			eg.Go(func() error {
				return gateway.Run(ctx)
			})

			eg.Go(func() error {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return goerr.Wrap(err, "failed to start server", goerr.V("addr", addr))
				}
				return nil
			})

			eg.Go(func() error {
				<-ctx.Done()
				logging.Default().Info("Shutting down server")

				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}
				logging.Default().Info("Server shutdown completed")
				return nil
			})

			return eg.Wait()
		},
	}
}
