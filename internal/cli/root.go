// Package cli wires the cardboard commands: the TUI, scriptable item
// commands, the API server and token management.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Makepad-fr/cardboard/internal/config"
	"github.com/Makepad-fr/cardboard/internal/logging"
	"github.com/Makepad-fr/cardboard/internal/model"
	"github.com/Makepad-fr/cardboard/internal/store"
	"github.com/Makepad-fr/cardboard/internal/ui"
)

// Exit codes.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

type App struct {
	ConfigPath string
	Backend    string
	DataDir    string
	APIURL     string
	Theme      string
	Verbose    bool
	NoColor    bool

	cfg *config.Config
	log *zap.Logger

	stdin          io.Reader
	stdout, stderr io.Writer
}

// usageError marks errors caused by how the command was invoked.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return usageError{err: fmt.Errorf(format, args...)}
}

func NewRootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "cardboard",
		Short:         "Tasks, links, assignments and job applications as cards",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: strings.TrimSpace(`
  # Start the interactive dashboard
  cardboard

  # Scriptable commands
  cardboard add todo --set title="Buy milk"
  cardboard ls todo
  cardboard toggle 1
  cardboard rm links 3

  # Serve the HTTP API and HTML dashboard
  cardboard serve --addr :5001
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return usagef("unknown command %q", args[0])
			}
			return runTUI(cmd.Context(), app)
		},
	}
	cmd.Args = cobra.ArbitraryArgs

	cmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		return app.setup(cmd)
	}
	cmd.PersistentPostRun = func(*cobra.Command, []string) {
		if app.log != nil {
			_ = app.log.Sync()
		}
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error { return usageError{err: err} })

	f := cmd.PersistentFlags()
	f.StringVar(&app.ConfigPath, "config", config.DefaultPath(), "config file")
	f.StringVar(&app.Backend, "backend", "", "storage backend (file|sqlite|memory|api)")
	f.StringVar(&app.DataDir, "data-dir", "", "directory of the file and sqlite backends")
	f.StringVar(&app.APIURL, "api-url", "", "base URL of the api backend")
	f.StringVar(&app.Theme, "theme", "classic", "output theme ("+strings.Join(ui.Themes, "|")+")")
	f.BoolVarP(&app.Verbose, "verbose", "v", false, "debug logging")
	f.BoolVar(&app.NoColor, "no-color", false, "disable colored output")

	cmd.AddCommand(newListCmd(app))
	cmd.AddCommand(newShowCmd(app))
	cmd.AddCommand(newAddCmd(app))
	cmd.AddCommand(newEditCmd(app))
	cmd.AddCommand(newRemoveCmd(app))
	cmd.AddCommand(newToggleCmd(app))
	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newAuthCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	return cmd
}

// setup loads the config, applies flag overrides and builds the logger.
func (app *App) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(app.ConfigPath)
	if err != nil {
		return err
	}
	if app.Backend != "" {
		cfg.Backend = app.Backend
	}
	if app.DataDir != "" {
		cfg.DataDir = app.DataDir
	}
	if app.APIURL != "" {
		cfg.API.URL = app.APIURL
	}
	if err := cfg.Validate(); err != nil {
		return usageError{err: err}
	}
	app.cfg = cfg

	if err := ui.SetTheme(app.Theme); err != nil {
		return usageError{err: err}
	}
	ui.SetColorForcing(false, app.NoColor || os.Getenv("NO_COLOR") != "")

	opts := logging.Options{Mode: logging.Console, Level: cfg.Log.Level, Verbose: app.Verbose}
	switch {
	case cmd.Name() == "serve":
		opts.Mode = logging.JSON
	case !cmd.HasParent():
		opts.Mode, opts.File = logging.File, cfg.Log.File
	}
	log, err := logging.New(opts)
	if err != nil {
		return err
	}
	app.log = log.With(zap.String("backend", cfg.Backend))
	return nil
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	app := &App{stdin: stdin, stdout: stdout, stderr: stderr}
	cmd := NewRootCmd(app)
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}
	ui.Fail(stderr, err.Error())
	if errors.Is(err, store.ErrNotFound) {
		ui.Hint(stderr, "run `cardboard ls <section>` to see valid ids")
	}
	return exitCode(err)
}

func exitCode(err error) int {
	var (
		uerr usageError
		verr *model.ValidationError
		ferr *model.UnknownFieldError
	)
	// A missing or untoggleable item is a store failure, not bad usage.
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrNotToggleable):
		return ExitError
	case errors.As(err, &uerr), errors.As(err, &verr), errors.As(err, &ferr),
		errors.Is(err, model.ErrUnknownSection):
		return ExitUsage
	case strings.HasPrefix(err.Error(), "unknown command"),
		strings.HasPrefix(err.Error(), "unknown flag"),
		strings.Contains(err.Error(), "arg(s)"):
		return ExitUsage
	}
	return ExitError
}
