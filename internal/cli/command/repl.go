package command

import (
	"context"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/webstash-go/internal/cli/config"
	"github.com/yndnr/webstash-go/internal/cli/repl"
	"github.com/yndnr/webstash-go/internal/infra/confloader"
	"github.com/yndnr/webstash-go/internal/telemetry/logger"
)

// ReplCommand returns the interactive shell command.
func ReplCommand() *cli.Command {
	return &cli.Command{
		Name:    "repl",
		Aliases: []string{"shell"},
		Usage:   "Start an interactive shell",
		Description: "Runs commands against one runtime, so session-scoped entries " +
			"live until the shell exits. Edits to the configuration file are " +
			"applied without restarting, except storage settings.",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "no-history",
				Usage: "Do not load or save command history",
			},
		},
		Action: replAction,
	}
}

func replAction(c *cli.Context) error {
	rt, err := runtimeFrom(c)
	if err != nil {
		return err
	}
	if _, err := rt.Config(); err != nil {
		return err
	}

	out := writer(c)
	in := c.App.Reader
	if in == nil {
		in = os.Stdin
	}

	var names []string
	for _, cmd := range lineCommands() {
		names = append(names, cmd.Name)
	}

	history := repl.NewHistory(config.DefaultHistoryPath())
	if c.Bool("no-history") {
		history = repl.NewHistory("")
	}

	stop := watchConfig(c.Context, rt)
	defer stop()

	exec := func(ctx context.Context, args []string) error {
		defer func() {
			if err := rt.Flush(); err != nil {
				logger.L(ctx).Warn("write metrics failed", "error", err)
			}
		}()
		return lineApp(rt, out).RunContext(ctx, append([]string{c.App.Name}, args...))
	}

	shell := repl.New(exec,
		repl.WithIO(in, out),
		repl.WithHistory(history),
		repl.WithCommands(names...),
	)
	return shell.Run(c.Context)
}

// lineCommands returns the commands available inside the shell.
func lineCommands() []*cli.Command {
	var cmds []*cli.Command
	for _, cmd := range commands() {
		if cmd.Name != "repl" {
			cmds = append(cmds, cmd)
		}
	}
	return cmds
}

// lineApp builds a fresh application for one shell line. Flag state in
// urfave/cli commands is not reset between runs, so apps are not reused.
func lineApp(rt *Runtime, out io.Writer) *cli.App {
	return &cli.App{
		Name:            "webstash",
		HideVersion:     true,
		HideHelpCommand: true,
		Commands:        lineCommands(),
		Metadata:        map[string]any{runtimeKey: rt},
		Writer:          out,
		ErrWriter:       out,
		// Errors are printed by the shell; never exit the process.
		ExitErrHandler: func(*cli.Context, error) {},
	}
}

// watchConfig reloads rt whenever its configuration file changes. The
// returned function stops watching.
func watchConfig(ctx context.Context, rt *Runtime) func() {
	log := logger.L(ctx)

	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(log.Slog()))
	if err != nil {
		log.Debug("config watcher unavailable", "error", err)
		return func() {}
	}
	if err := w.Watch(rt.ConfigPath()); err != nil {
		_ = w.Stop()
		return func() {}
	}

	w.OnChange(func(path string) {
		if err := rt.Reload(ctx); err != nil {
			log.Warn("configuration reload failed", "path", path, "error", err)
		}
	})
	w.StartAsync()

	return func() { _ = w.Stop() }
}
