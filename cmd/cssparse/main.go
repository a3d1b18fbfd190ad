package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/vibraphone/pegtl-css/common"
	"github.com/vibraphone/pegtl-css/config"
	"github.com/vibraphone/pegtl-css/css"
	"github.com/vibraphone/pegtl-css/state"
)

// initializeAppContext prepares logging and configuration before the
// command body runs, grounded on the teacher's cmd/fbc initializeAppContext.
func initializeAppContext(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	env := state.EnvFromContext(ctx)

	cfg, err := config.LoadConfiguration(cmd.String("config"))
	if err != nil {
		return ctx, fmt.Errorf("unable to prepare configuration: %w", err)
	}
	if cmd.Bool("debug") {
		cfg.Logging.Console.Level = "debug"
	}
	env.Cfg = cfg

	var closer io.Closer
	if env.Log, closer, err = cfg.Logging.Prepare(); err != nil {
		return ctx, fmt.Errorf("unable to prepare logs: %w", err)
	}
	env.SetLogCloser(closer)
	env.RedirectStdLog()
	env.Log.Debug("program started", zap.Strings("args", os.Args), zap.String("ver", common.GetVersion()))
	return ctx, nil
}

func destroyAppContext(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	if env.Log != nil {
		env.Log.Debug("program ended", zap.Duration("elapsed", env.Uptime()))
	}
	if err := env.Shutdown(); err != nil {
		return fmt.Errorf("unable to close logging cleanly: %w", err)
	}
	return nil
}

var errWasHandled bool

func exitErrHandler(ctx context.Context, _ *cli.Command, err error) {
	env := state.EnvFromContext(ctx)
	if env.Log != nil {
		env.Log.Error("program ended with error", zap.Error(err))
		errWasHandled = true
	}
}

func usageErrorHandler(_ context.Context, _ *cli.Command, err error, _ bool) error {
	return err
}

// runParse is the CLI collaborator spec.md §6 describes: it reads a
// file, hands it to the core parser, and maps the result to stdout and
// an exit code. It never re-implements or second-guesses core grammar
// decisions.
func runParse(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)

	filename := cmd.Args().Get(0)
	if filename == "" {
		filename = env.Cfg.DefaultInput
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("unable to read %q: %w", filename, err)
	}

	sheet := css.NewParser(env.Log).Parse(data, filename)

	for _, w := range sheet.Warnings {
		env.Log.Warn(w, zap.String("file", filename))
	}

	if !sheet.Valid {
		fmt.Fprintln(os.Stderr, sheet.Err)
		errWasHandled = true
		return fmt.Errorf("invalid stylesheet")
	}

	if _, err := sheet.WriteTo(os.Stdout); err != nil {
		return fmt.Errorf("unable to write result: %w", err)
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(state.ContextWithEnv(context.Background()), os.Interrupt, syscall.SIGTERM)

	app := &cli.Command{
		Name:            common.GetAppName(),
		Usage:           "a CSS 2.1/Media-Queries grammar engine",
		Version:         common.GetVersion(),
		HideHelpCommand: true,
		Before:          initializeAppContext,
		After:           destroyAppContext,
		OnUsageError:    usageErrorHandler,
		ExitErrHandler:  exitErrHandler,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "load configuration from `FILE` (YAML)"},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "raise console logging to debug level"},
		},
		ArgsUsage: "[FILENAME]",
		Action:    runParse,
	}

	var err error
	defer func() {
		stop()
		if err != nil {
			if !errWasHandled {
				fmt.Fprintf(os.Stderr, "program ended with error: %v\n", err)
			}
			os.Exit(1)
		}
	}()
	err = app.Run(ctx, os.Args)
}
