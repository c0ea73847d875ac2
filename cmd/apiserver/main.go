// Command apiserver serves the PERM case evaluation API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/turtacn/perm-tracker/internal/bootstrap"
	"github.com/turtacn/perm-tracker/internal/config"
	"github.com/turtacn/perm-tracker/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/perm-tracker/pkg/clock"
)

const defaultConfigPath = "configs/config.yaml"

// Build-time variables injected via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	httpPort := flag.Int("http-port", 0, "HTTP server port (overrides config)")
	flag.Parse()

	if err := run(*configPath, *httpPort); err != nil {
		fmt.Fprintf(os.Stderr, "apiserver: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, httpPort int) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if httpPort > 0 {
		cfg.Server.Port = httpPort
	}

	logger, err := bootstrap.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	logging.SetDefault(logger)

	build := bootstrap.BuildInfo{Version: version, Commit: commit, BuildDate: buildDate}
	logger.Info("starting permtrack API server",
		logging.String("version", version),
		logging.String("commit", commit),
		logging.Int("http_port", cfg.Server.Port),
	)

	infra, err := bootstrap.NewInfrastructure(cfg, build, logger)
	if err != nil {
		return err
	}
	defer infra.Close()

	svc := bootstrap.NewEvaluationService(cfg, infra, clock.NewReal(), logger)
	srv := bootstrap.NewHTTPServer(cfg, build, infra, svc, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := bootstrap.Serve(ctx, srv); err != nil {
		logger.Error("HTTP server error", logging.Err(err))
		return err
	}
	logger.Info("server stopped")
	return nil
}

// loadConfig reads path when it exists and falls back to the environment and
// defaults otherwise.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "warning: config file %s not found, using environment and defaults\n", path)
		return config.LoadFromEnv()
	}
	return config.Load(path)
}
