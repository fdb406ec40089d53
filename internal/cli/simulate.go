package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/uisync/internal/engine"
	"github.com/roach88/uisync/internal/metrics"
	"github.com/roach88/uisync/internal/store"
	"github.com/roach88/uisync/internal/ui"
)

// SimulateOptions holds flags for the simulate command.
type SimulateOptions struct {
	*RootOptions
	Database    string
	MetricsAddr string
	Settle      time.Duration

	// SessionGenerator overrides the session token generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	SessionGenerator engine.SessionGenerator
}

// SimulateResult summarizes a simulation run.
type SimulateResult struct {
	Session   string `json:"session"`
	Script    string `json:"script"`
	Snapshots int    `json:"snapshots"`
	Executed  int64  `json:"executed"`
	Failed    int64  `json:"failed"`
	Skipped   int64  `json:"skipped"`
	Journal   string `json:"journal,omitempty"`
}

func (r SimulateResult) String() string {
	s := fmt.Sprintf("Session %s: %d snapshots, %d effects executed, %d failed, %d skipped",
		r.Session, r.Snapshots, r.Executed, r.Failed, r.Skipped)
	if r.Journal != "" {
		s += "\nJournal: " + r.Journal
	}
	return s
}

// NewSimulateCommand creates the simulate command.
func NewSimulateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SimulateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "simulate <script>",
		Short: "Run a snapshot script against console UI primitives",
		Long: `Feed a snapshot script through the engine and print every navigation,
overlay and menu call the console primitives receive.

With --db the session is journaled to SQLite (snapshots, planned effects
and outcomes) for later replay and trace. With --metrics-addr the
Prometheus metrics are served at /metrics while the script runs.

Examples:
  uisync simulate ./scripts/checkout.yaml
  uisync simulate ./scripts/checkout.cue --db ./uisync.db
  uisync simulate ./scripts/checkout.yaml --settle 200ms --metrics-addr :9464`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal (overrides journal.path)")
	cmd.Flags().StringVar(&opts.MetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (overrides metrics.addr)")
	cmd.Flags().DurationVar(&opts.Settle, "settle", -1, "simulated transition time (overrides console.settle)")

	return cmd
}

func runSimulate(opts *SimulateOptions, path string, cmd *cobra.Command) error {
	cfg := opts.settings()
	script, ropts, err := opts.loadScript(path)
	if err != nil {
		return err
	}

	translator, err := ui.NewTranslator(cfg.I18n.Language, cfg.I18n.MessageFiles...)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load translations", err)
	}

	settle := cfg.Console.Settle
	if opts.Settle >= 0 {
		settle = opts.Settle
	}

	// Console lines are the command's output in text mode; in JSON mode
	// they move to stderr so stdout stays a single JSON document.
	var consoleOut io.Writer = cmd.OutOrStdout()
	if opts.Format == "json" {
		consoleOut = cmd.ErrOrStderr()
	}
	console := ui.NewConsole(consoleOut, ui.ConsoleOptions{
		Settle:        settle,
		ToastPosition: cfg.Toast.Position,
		ToastDuration: cfg.Toast.Duration,
		Translator:    translator,
	})
	prims := console.Primitives()
	if !ropts.Menu {
		prims.Menu = nil
	}

	rec := metrics.New()
	engineOpts := []engine.Option{engine.WithOptions(ropts), engine.WithMetrics(rec)}
	if opts.SessionGenerator != nil {
		engineOpts = append(engineOpts, engine.WithSessionGenerator(opts.SessionGenerator))
	}

	dbPath := cfg.Journal.Path
	if opts.Database != "" {
		dbPath = opts.Database
	}
	if dbPath != "" {
		st, err := store.Open(dbPath)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				slog.Error("error closing database", "error", closeErr)
			}
		}()
		engineOpts = append(engineOpts, engine.WithJournal(st))
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	metricsAddr := opts.MetricsAddr
	if metricsAddr == "" && cfg.Metrics.Enabled {
		metricsAddr = cfg.Metrics.Addr
	}
	if metricsAddr != "" {
		stop, err := serveMetrics(metricsAddr, rec)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to start metrics server", err)
		}
		defer stop()
	}

	exec := engine.NewExecutor(prims)
	eng := engine.New(engine.SliceSource(script.States()), exec, engineOpts...)
	if err := eng.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return WrapExitError(ExitFailure, "engine error", err)
	}

	executed, failed, skipped := exec.Stats()
	return newFormatter(opts.RootOptions, cmd).Success(SimulateResult{
		Session:   eng.Session(),
		Script:    path,
		Snapshots: len(script.Snapshots),
		Executed:  executed,
		Failed:    failed,
		Skipped:   skipped,
		Journal:   dbPath,
	})
}

// signalContext cancels on SIGINT/SIGTERM or when cmd's context ends.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// serveMetrics starts an HTTP server exposing rec at /metrics.
// The returned stop function shuts it down.
func serveMetrics(addr string, rec *metrics.Recorder) (stop func(), err error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", rec.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server failed", "error", err)
		}
	}()
	slog.Info("serving metrics", "addr", ln.Addr().String())

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			slog.Warn("metrics server shutdown", "error", err)
		}
	}, nil
}
