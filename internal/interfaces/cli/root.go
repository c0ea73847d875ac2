// Package cli implements the permtrack command line.  Every command reads
// case documents from disk and evaluates them locally; serve exposes the same
// operations over HTTP.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/perm-tracker/internal/application/lifecycle"
	"github.com/turtacn/perm-tracker/internal/bootstrap"
	"github.com/turtacn/perm-tracker/internal/config"
	domainLifecycle "github.com/turtacn/perm-tracker/internal/domain/lifecycle"
	"github.com/turtacn/perm-tracker/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/perm-tracker/pkg/clock"
	"github.com/turtacn/perm-tracker/pkg/errors"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// cliContextKey is the context key for CLIContext.
type cliContextKey struct{}

// RootOptions holds global CLI flags.
type RootOptions struct {
	ConfigPath   string
	LogLevel     string
	OutputFormat string
	Today        string
	Verbose      bool
}

// CLIContext carries initialized dependencies through the command tree.
type CLIContext struct {
	Config       *config.Config
	ConfigPath   string
	Logger       logging.Logger
	Clock        clock.Clock
	OutputFormat string
	// Today overrides the evaluation date of every command.
	Today string

	service lifecycle.EvaluationService
	infra   *bootstrap.Infrastructure
}

// Service returns the evaluation service, connecting the configured cache on
// first use.
func (c *CLIContext) Service() (lifecycle.EvaluationService, error) {
	if c.service != nil {
		return c.service, nil
	}
	cfg := *c.Config
	cfg.Metrics.Enabled = false
	infra, err := bootstrap.NewInfrastructure(&cfg, buildInfo(), c.Logger)
	if err != nil {
		return nil, err
	}
	c.infra = infra
	c.service = bootstrap.NewEvaluationService(&cfg, infra, c.Clock, c.Logger)
	return c.service, nil
}

// Close releases resources opened by Service.
func (c *CLIContext) Close() {
	if c.infra != nil {
		c.infra.Close()
	}
}

// Option customizes the dependencies of NewRootCommand.
type Option func(*rootDeps)

type rootDeps struct {
	config  *config.Config
	logger  logging.Logger
	clock   clock.Clock
	service lifecycle.EvaluationService
}

// WithConfig skips config file discovery.
func WithConfig(cfg *config.Config) Option { return func(d *rootDeps) { d.config = cfg } }

// WithLogger replaces the stderr logger.
func WithLogger(l logging.Logger) Option { return func(d *rootDeps) { d.logger = l } }

// WithClock sets the clock used when --today is not given.
func WithClock(c clock.Clock) Option { return func(d *rootDeps) { d.clock = c } }

// WithService replaces the evaluation service.
func WithService(s lifecycle.EvaluationService) Option { return func(d *rootDeps) { d.service = s } }

func buildInfo() bootstrap.BuildInfo {
	return bootstrap.BuildInfo{Version: Version, Commit: GitCommit, BuildDate: BuildDate}
}

// NewRootCommand creates the root command with its global flags and
// subcommands.
func NewRootCommand(options ...Option) *cobra.Command {
	opts := &RootOptions{}
	deps := &rootDeps{}
	for _, o := range options {
		o(deps)
	}

	cmd := &cobra.Command{
		Use:   "permtrack",
		Short: "PERM case deadline tracker",
		Long: `permtrack evaluates PERM labor certification cases: recruitment and filing
windows, readiness, the next required action, outstanding deadlines and
validation findings.  Cases are YAML or JSON documents.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return persistentPreRun(cmd, opts, deps)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if cc, err := GetCLIContext(cmd); err == nil {
				cc.Close()
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: ./permtrack.yaml)")
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level (debug, info, warn, error); overrides the config")
	pf.StringVarP(&opts.OutputFormat, "output", "o", "text", "output format (text, json, table)")
	pf.StringVar(&opts.Today, "today", "", "evaluation date YYYY-MM-DD (default: today, UTC)")
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(
		newEvaluateCmd(),
		newValidateCmd(),
		newActionCmd(),
		newDeadlinesCmd(),
		newWindowsCmd(),
		newCalendarCmd(),
		newRequestCmd(),
		newServeCmd(),
		newVersionCmd(),
	)
	return cmd
}

// persistentPreRun initializes config and logger, then stores CLIContext.
func persistentPreRun(cmd *cobra.Command, opts *RootOptions, deps *rootDeps) error {
	switch strings.ToLower(opts.OutputFormat) {
	case "text", "json", "table":
	default:
		return errors.InvalidParam("output must be one of text, json, table").WithDetail(opts.OutputFormat)
	}
	if opts.Today != "" {
		if _, err := domainLifecycle.ParseDate(opts.Today); err != nil {
			return errors.Wrap(err, errors.ErrCodeDateInvalid, "invalid --today").WithDetail(opts.Today)
		}
	}

	cfg, path := deps.config, opts.ConfigPath
	if cfg == nil {
		var err error
		cfg, path, err = initConfig(opts)
		if err != nil {
			return err
		}
	}

	logger := deps.logger
	if logger == nil {
		var err error
		logger, err = initLogger(cfg, opts)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeConfigInvalid, "logger initialization failed")
		}
	}

	clk := deps.clock
	if clk == nil {
		clk = clock.NewReal()
	}

	cliCtx := &CLIContext{
		Config:       cfg,
		ConfigPath:   path,
		Logger:       logger,
		Clock:        clk,
		OutputFormat: strings.ToLower(opts.OutputFormat),
		Today:        opts.Today,
		service:      deps.service,
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, cliContextKey{}, cliCtx))
	return nil
}

// initConfig resolves the config file: the --config flag, then
// ./permtrack.yaml, ~/.permtrack/config.yaml and /etc/permtrack/config.yaml.
// Without a file the configuration comes from PERM_* variables and defaults.
func initConfig(opts *RootOptions) (*config.Config, string, error) {
	if opts.ConfigPath != "" {
		cfg, err := config.Load(opts.ConfigPath)
		return cfg, opts.ConfigPath, err
	}

	searchPaths := []string{"./permtrack.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(home, ".permtrack", "config.yaml"))
	}
	searchPaths = append(searchPaths, "/etc/permtrack/config.yaml")

	for _, p := range searchPaths {
		if _, err := os.Stat(p); err == nil {
			cfg, err := config.Load(p)
			return cfg, p, err
		}
	}
	cfg, err := config.LoadFromEnv()
	return cfg, "", err
}

// initLogger creates a console logger on stderr so stdout carries only
// command output.
func initLogger(cfg *config.Config, opts *RootOptions) (logging.Logger, error) {
	lc := cfg.Log
	lc.Format = "console"
	if lc.Level == "" || strings.EqualFold(lc.Level, "info") {
		lc.Level = "warn"
	}
	if opts.LogLevel != "" {
		lc.Level = opts.LogLevel
	}
	if opts.Verbose {
		lc.Level = "debug"
	}
	return bootstrap.NewLogger(lc, "stderr")
}

// GetCLIContext extracts CLIContext from a cobra command's context.
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, errors.Internal("command context is nil")
	}
	cliCtx, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok || cliCtx == nil {
		return nil, errors.Internal("CLIContext not found in command context")
	}
	return cliCtx, nil
}

// Execute is the main entry point for the CLI application.
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		PrintError(rootCmd, err)
		return err
	}
	return nil
}

// PrintResult outputs data in the format specified by CLIContext.
func PrintResult(cmd *cobra.Command, data interface{}) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return printJSON(cmd, data)
	}

	switch cliCtx.OutputFormat {
	case "json":
		return printJSON(cmd, data)
	case "table":
		return printTable(cmd, data)
	default:
		return printText(cmd, data)
	}
}

// printJSON outputs data as indented JSON to stdout.
func printJSON(cmd *cobra.Command, data interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// printText outputs data as a simple string representation to stdout.
func printText(cmd *cobra.Command, data interface{}) error {
	switch v := data.(type) {
	case string:
		fmt.Fprintln(cmd.OutOrStdout(), v)
	case fmt.Stringer:
		fmt.Fprint(cmd.OutOrStdout(), v.String())
	default:
		fmt.Fprintf(cmd.OutOrStdout(), "%+v\n", v)
	}
	return nil
}

// printTable outputs data as a table if it provides rows, otherwise falls
// back to text.
func printTable(cmd *cobra.Command, data interface{}) error {
	type tableProvider interface {
		TableHeaders() []string
		TableRows() [][]string
	}

	if tp, ok := data.(tableProvider); ok {
		fmt.Fprint(cmd.OutOrStdout(), FormatTable(tp.TableHeaders(), tp.TableRows()))
		return nil
	}
	return printText(cmd, data)
}

// PrintError writes a formatted error message to stderr.
func PrintError(cmd *cobra.Command, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", err.Error())
}

// PrintSuccess writes a formatted success message to stdout.
func PrintSuccess(cmd *cobra.Command, msg string) {
	fmt.Fprintf(cmd.OutOrStdout(), "OK: %s\n", msg)
}

// FormatTable renders headers and rows as an aligned ASCII table.
func FormatTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}

	colWidths := make([]int, len(headers))
	for i, h := range headers {
		colWidths[i] = len(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(colWidths); i++ {
			if len(row[i]) > colWidths[i] {
				colWidths[i] = len(row[i])
			}
		}
	}

	var sb strings.Builder
	writeRow := func(cells []string) {
		for i := range headers {
			if i > 0 {
				sb.WriteString("  ")
			}
			val := ""
			if i < len(cells) {
				val = cells[i]
			}
			if i == len(headers)-1 {
				sb.WriteString(val)
			} else {
				sb.WriteString(padRight(val, colWidths[i]))
			}
		}
		sb.WriteString("\n")
	}

	writeRow(headers)
	sep := make([]string, len(colWidths))
	for i, w := range colWidths {
		sep[i] = strings.Repeat("-", w)
	}
	writeRow(sep)
	for _, row := range rows {
		writeRow(row)
	}
	return sb.String()
}

// padRight pads s with spaces to the given width.
func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "permtrack %s (commit: %s, built: %s)\n", Version, GitCommit, BuildDate)
			return nil
		},
	}
}
