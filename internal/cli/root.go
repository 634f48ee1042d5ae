// Package cli is the clublocker command line: it fetches the three Club
// Locker datasets into the day's snapshots and prints tables over them.
package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/riskibarqy/clublocker/internal/app"
	"github.com/riskibarqy/clublocker/internal/config"
	"github.com/riskibarqy/clublocker/internal/platform/logging"
)

// Options are the injection points of the command tree. Zero fields fall
// back to the process environment and the real services.
type Options struct {
	Out          io.Writer
	Err          io.Writer
	LoadConfig   func() (config.Config, error)
	OpenServices func(ctx context.Context, cfg config.Config, logger *logging.Logger) (*app.Services, error)
}

type runtime struct {
	opts        Options
	snapshotDir string
	backend     string
	verbose     bool
}

// NewRootCommand builds the clublocker command tree.
func NewRootCommand(opts Options) *cobra.Command {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}
	if opts.LoadConfig == nil {
		opts.LoadConfig = config.Load
	}
	if opts.OpenServices == nil {
		opts.OpenServices = app.NewServices
	}
	rt := &runtime{opts: opts}

	root := &cobra.Command{
		Use:           "clublocker",
		Short:         "Club Locker squash tournament, match and ranking datasets",
		Long:          "Fetch the Club Locker tournament, match and ranking datasets once per day, keep them as snapshots, and print summaries and player statistics.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(opts.Out)
	root.SetErr(opts.Err)

	flags := root.PersistentFlags()
	flags.StringVar(&rt.snapshotDir, "snapshot-dir", "", "directory of the file snapshot backend (overrides SNAPSHOT_DIR)")
	flags.StringVar(&rt.backend, "backend", "", "snapshot backend: file, sqlite or postgres (overrides SNAPSHOT_BACKEND)")
	flags.BoolVarP(&rt.verbose, "verbose", "v", false, "log at debug level")

	root.AddCommand(
		newFetchCommand(rt),
		newSummaryCommand(rt),
		newPlayersCommand(rt),
		newMatchupsCommand(rt),
		newCleanCommand(rt),
	)
	return root
}

// Execute runs the command tree against the process environment.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := NewRootCommand(Options{}).ExecuteContext(ctx); err != nil {
		_, _ = io.WriteString(os.Stderr, "error: "+err.Error()+"\n")
		return 1
	}
	return 0
}

// withServices loads the configuration, applies the flag overrides and runs
// fn against freshly opened services.
func (rt *runtime) withServices(ctx context.Context, fn func(*app.Services) error) error {
	cfg, err := rt.opts.LoadConfig()
	if err != nil {
		return err
	}
	if rt.snapshotDir != "" {
		cfg.SnapshotDir = rt.snapshotDir
	}
	if rt.backend != "" {
		cfg.SnapshotBackend = rt.backend
	}

	level := cfg.LogLevel
	if rt.verbose {
		level = logging.LevelDebug
	}
	logger := logging.NewConsole(rt.opts.Err, level)
	defer func() { _ = logger.Sync() }()

	services, err := rt.opts.OpenServices(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = services.Close() }()

	return fn(services)
}
