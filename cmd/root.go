// Package cmd wires configuration, logging, metrics and the backend client into
// the auditor command tree.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"auditor/internal/client"
	"auditor/internal/config"
	"auditor/internal/logging"
	"auditor/internal/metrics"
	"auditor/internal/session"
	"auditor/internal/version"
)

type app struct {
	apiURL  string
	timeout time.Duration
	verbose bool

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	cfg      config.Config
	logger   *zap.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	client   *client.Client
}

func Execute(args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp(os.Stdin, os.Stdout, os.Stderr)
	defer a.close()
	root := a.rootCommand()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func newApp(in io.Reader, out, errOut io.Writer) *app {
	return &app{stdin: in, stdout: out, stderr: errOut, logger: logging.Nop()}
}

func (a *app) rootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "auditor",
		Short:         "AI ethics risk audits from the terminal or the browser",
		Long:          "auditor submits project descriptions to the audit backend, renders the returned risk report, and browses past audits.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Version,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !isTerminal(a.stdin) || !isTerminal(a.stdout) {
				return cmd.Help()
			}
			return a.runTUI(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&a.apiURL, "api-url", "", "audit backend base URL (overrides AUDITOR_API_URL and config)")
	cmd.PersistentFlags().DurationVar(&a.timeout, "timeout", 0, "per-request timeout, 0 waits indefinitely")
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging, mirrored to stderr outside the TUI")

	cmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		// the TUI owns the terminal, so its logs only go to the file
		console := cmd.Name() != "tui" && cmd != cmd.Root()
		return a.setup(cmd, console)
	}

	cmd.AddCommand(
		newAnalyzeCmd(a),
		newHistoryCmd(a),
		newBadgeCmd(a),
		newTUICmd(a),
		newServeCmd(a),
		newDoctorCmd(a),
		newVersionCmd(a),
	)

	cmd.SetVersionTemplate("auditor {{.Version}}\n")
	cmd.SetIn(a.stdin)
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)
	return cmd
}

// setup resolves config, then builds the logger, metrics and backend client from it.
func (a *app) setup(cmd *cobra.Command, console bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("api-url") {
		cfg.APIURL = config.NormalizeAPIURL(a.apiURL)
	}
	if cmd.Flags().Changed("timeout") {
		if a.timeout < 0 {
			return fmt.Errorf("--timeout must be >= 0")
		}
		cfg.RequestTimeout = a.timeout
	}
	if a.verbose {
		cfg.Log.Level = "debug"
	}
	a.cfg = cfg

	logOpts := logging.Options{
		File:       cfg.Log.File,
		Level:      cfg.Log.Level,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   true,
	}
	if a.verbose && console {
		logOpts.Console = a.stderr
	}
	logger, err := logging.New(logOpts)
	if err != nil {
		return err
	}
	a.logger = logger.With(zap.String("command", cmd.CommandPath()))

	a.registry = prometheus.NewRegistry()
	a.metrics = metrics.New(a.registry)
	a.client = client.New(client.Options{
		BaseURL: cfg.APIURL,
		Timeout: cfg.RequestTimeout,
		Logger:  a.logger,
		Metrics: a.metrics,
	})
	a.logger.Debug("configured",
		zap.String("api_url", cfg.APIURL),
		zap.Duration("request_timeout", cfg.RequestTimeout),
	)
	return nil
}

func (a *app) sessionOptions() session.Options {
	return session.Options{Logger: a.logger, Observer: a.metrics}
}

func (a *app) close() {
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the auditor version",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return nil
		},
		RunE: func(*cobra.Command, []string) error {
			_, err := fmt.Fprintf(a.stdout, "auditor %s\n", strings.TrimSpace(version.Version))
			return err
		},
	}
}
