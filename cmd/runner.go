package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/s2yt/internal/services"
	"github.com/desertthunder/s2yt/internal/shared"
	"github.com/desertthunder/s2yt/internal/snapshot"
	"github.com/desertthunder/s2yt/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	spotify    services.Source
	youtube    services.Target
	api        *services.APIService
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Spotify    services.Source
	YouTube    services.Target
	API        *services.APIService
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		spotify:    opts.Spotify,
		youtube:    opts.YouTube,
		api:        opts.API,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

// SetLogger replaces the logger, used when the TUI takes over the terminal.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

const defaultConfigPath = "config.toml"

// app builds the root command.
func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:    "s2yt",
		Usage:   "Transfer a Spotify library snapshot to YouTube Music",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   defaultConfigPath,
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
		},
		Writer:   r.output,
		Before:   r.before,
		Commands: r.register(),
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, spotifyCommand, snapshotCommand, ytmusicCommand, transferCommand, apiCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// before applies the global flags: a --config file replaces the startup config, --verbose enables debug logs.
func (r *Runner) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	path := cmd.String("config")
	if !cmd.IsSet("config") || path == "" || path == r.configPath {
		return ctx, nil
	}

	config, err := shared.LoadConfig(path)
	if err != nil {
		return ctx, err
	}
	config.ApplyEnv()
	if err := config.Validate(); err != nil {
		return ctx, err
	}
	r.config, r.configPath = config, path
	return ctx, nil
}

func (r *Runner) requireTarget() error {
	if r.youtube == nil {
		return fmt.Errorf("%w: YouTube Music service not initialized", shared.ErrServiceUnavailable)
	}
	return nil
}

// snapshotPath returns the --file flag, falling back to the configured snapshot path.
func (r *Runner) snapshotPath(cmd *cli.Command) string {
	if p := cmd.String("file"); p != "" {
		return p
	}
	if r.config.Snapshot.Path != "" {
		return r.config.Snapshot.Path
	}
	return snapshot.DefaultPath
}

func (r *Runner) loadSnapshot(cmd *cli.Command) (*snapshot.Snapshot, error) {
	path := r.snapshotPath(cmd)
	r.logger.Debug("loading snapshot", "path", path)
	return snapshot.Load(path)
}

// copyOpts builds the copier options from the transfer config overridden by any flags that were set.
func (r *Runner) copyOpts(cmd *cli.Command) (tasks.CopyOpts, error) {
	cfg := r.config.Transfer
	if cmd.IsSet("algo") {
		cfg.Algo = cmd.Int("algo")
	}
	if cmd.IsSet("dry-run") {
		cfg.DryRun = cmd.Bool("dry-run")
	}
	if cmd.IsSet("track-sleep") {
		cfg.TrackSleep = cmd.Duration("track-sleep")
	}
	if cmd.IsSet("reverse") {
		cfg.Reverse = cmd.Bool("reverse")
	}
	if cmd.IsSet("privacy") {
		cfg.Privacy = cmd.String("privacy")
	}
	if cmd.IsSet("verify") {
		cfg.Verify = cmd.Bool("verify")
	}
	return tasks.OptsFromConfig(cfg)
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return err
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

// watchProgress logs updates from progress until it is closed, then closes done.
func (r *Runner) watchProgress(progress <-chan tasks.ProgressUpdate, done chan<- struct{}) {
	defer close(done)
	for update := range progress {
		if update.Total > 0 {
			r.logger.Debug(update.Message, "phase", update.Phase, "step", update.Step, "total", update.Total)
		} else {
			r.logger.Debug(update.Message, "phase", update.Phase)
		}
	}
}

// withProgress runs fn with a progress channel drained by [Runner.watchProgress].
func withProgress[T any](r *Runner, fn func(chan<- tasks.ProgressUpdate) (T, error)) (T, error) {
	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go r.watchProgress(progress, done)

	result, err := fn(progress)
	close(progress)
	<-done
	return result, err
}
