package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/lgbarn/pgn-scan/internal/config"
	"github.com/lgbarn/pgn-scan/internal/metrics"
	"github.com/lgbarn/pgn-scan/internal/reader"
)

// programVersion is set via ldflags at build time.
var programVersion = "dev"

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	configPath  string
	logLevel    string
	metricsFile string
	maxGames    int
}

// app carries what a command needs once the persistent flags are applied.
type app struct {
	opts     globalOptions
	cfg      *config.Config
	logger   log.Logger
	registry *prometheus.Registry
	metrics  *metrics.Scan

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// execute runs the command line and returns the process exit code.
func execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}
	root := newRootCommand(a)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	// Metrics are written even when the command failed, so scan failures
	// reach the textfile.
	if terr := a.teardown(); err == nil {
		err = terr
	}
	if err != nil {
		// SilenceErrors keeps cobra from printing it twice.
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// newRootCommand builds the command tree around a.
func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "pgn-scan",
		Short: "Extract and select games from PGN dumps",
		Long: `pgn-scan splits PGN game dumps into records without parsing moves.

Each record is cut at its result token (1-0, 0-1, 1/2-1/2 or *). Header
tags are captured and comments are checked for clock and evaluation
annotations. Inputs ending in .zst are decompressed on the fly.

Commands mirror a dataset pipeline:
  data      print records
  players   find players with enough matching games
  games     save matching games for a list of players
  stats     summarize tempos and time controls`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.Context())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.opts.configPath, "config", "c", "", "YAML configuration file")
	flags.StringVar(&a.opts.logLevel, "log-level", "info", "Log level (debug|info|warn|error)")
	flags.StringVar(&a.opts.metricsFile, "metrics-file", "", "Write Prometheus metrics to this file on exit")
	flags.IntVar(&a.opts.maxGames, "max-games", -1, "Read at most N games per input (0 = all; default from config)")

	root.AddCommand(newDataCommand(a))
	root.AddCommand(newPlayersCommand(a))
	root.AddCommand(newGamesCommand(a))
	root.AddCommand(newStatsCommand(a))
	root.AddCommand(newVersionCommand(a))

	return root
}

// setup loads the configuration and builds the logger and metrics.
func (a *app) setup(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	logger, err := newLogger(a.stderr, a.opts.logLevel)
	if err != nil {
		return err
	}
	a.logger = logger

	cfg, err := config.LoadOrDefault(ctx, a.opts.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if a.opts.maxGames >= 0 {
		cfg.MaxGames = a.opts.maxGames
	}
	a.cfg = cfg

	a.registry = prometheus.NewRegistry()
	a.metrics = metrics.NewScan(a.registry)
	return nil
}

// teardown writes the metrics textfile if one was requested.
func (a *app) teardown() error {
	if a.opts.metricsFile == "" || a.registry == nil {
		return nil
	}
	if err := metrics.WriteTextfile(a.opts.metricsFile, a.registry); err != nil {
		return fmt.Errorf("writing metrics: %w", err)
	}
	level.Debug(a.logger).Log("msg", "metrics written", "path", a.opts.metricsFile)
	return nil
}

// newLogger creates a logfmt logger filtered at the named level.
func newLogger(w io.Writer, name string) (log.Logger, error) {
	var allow level.Option
	switch strings.ToLower(name) {
	case "debug":
		allow = level.AllowDebug()
	case "info":
		allow = level.AllowInfo()
	case "warn":
		allow = level.AllowWarn()
	case "error":
		allow = level.AllowError()
	default:
		return nil, fmt.Errorf("invalid log level %q (want debug, info, warn or error)", name)
	}

	logger := log.NewLogfmtLogger(log.NewSyncWriter(w))
	logger = level.NewFilter(logger, allow)
	return log.With(logger, "ts", log.DefaultTimestampUTC), nil
}

// open opens an input with the configured scanner settings. Standard input
// is read from a.stdin.
func (a *app) open(name string) (*reader.GameReader, error) {
	opts := []reader.Option{
		reader.WithLogger(a.logger),
		reader.WithMetrics(a.metrics),
		reader.WithMaxGames(a.cfg.MaxGames),
		reader.WithScannerConfig(a.cfg.Scanner),
	}
	if name == "" || name == reader.StdinName {
		return reader.New(a.stdin, "stdin", opts...), nil
	}
	return reader.Open(name, opts...)
}

// createOutput creates (or truncates) an output file.
func createOutput(path string) (*os.File, error) {
	f, err := os.Create(path) //nolint:gosec // G304: CLI tool writes user-specified files
	if err != nil {
		return nil, fmt.Errorf("creating output: %w", err)
	}
	return f, nil
}
