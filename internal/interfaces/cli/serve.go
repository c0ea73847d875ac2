package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/turtacn/perm-tracker/internal/bootstrap"
	"github.com/turtacn/perm-tracker/internal/config"
	"github.com/turtacn/perm-tracker/internal/infrastructure/monitoring/logging"
)

func newServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the evaluation API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			cfg := *cc.Config
			if port > 0 {
				cfg.Server.Port = port
			}

			logger, err := bootstrap.NewLogger(cfg.Log)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			logging.SetDefault(logger)

			infra, err := bootstrap.NewInfrastructure(&cfg, buildInfo(), logger)
			if err != nil {
				return err
			}
			defer infra.Close()

			if cc.ConfigPath != "" {
				watchLogLevel(cc.ConfigPath, logger)
			}

			svc := bootstrap.NewEvaluationService(&cfg, infra, cc.Clock, logger)
			srv := bootstrap.NewHTTPServer(&cfg, buildInfo(), infra, svc, logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return bootstrap.Serve(ctx, srv)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides server.port)")
	return cmd
}

// watchLogLevel applies log level changes from the config file without a
// restart.  Other settings need one.
func watchLogLevel(path string, logger logging.Logger) {
	err := config.Watch(path, func(cfg *config.Config) {
		logging.SetLevel(cfg.Log.Level)
		logger.Info("log level reloaded", logging.String("level", cfg.Log.Level))
	}, func(err error) {
		logger.Warn("ignoring invalid config change", logging.Err(err))
	})
	if err != nil {
		logger.Warn("config watch disabled", logging.Err(err))
	}
}
