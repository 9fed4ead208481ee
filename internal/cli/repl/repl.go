package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
)

// DefaultPrompt is printed before each line.
const DefaultPrompt = "webstash> "

// Executor runs one parsed command line.
type Executor func(ctx context.Context, args []string) error

// REPL represents the Read-Eval-Print Loop.
type REPL struct {
	input     io.Reader
	output    io.Writer
	prompt    string
	completer *Completer
	history   *History
	execute   Executor
}

// Option configures a REPL.
type Option func(*REPL)

// WithIO sets the input and output streams.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(r *REPL) {
		r.input = in
		r.output = out
	}
}

// WithPrompt sets the prompt.
func WithPrompt(prompt string) Option {
	return func(r *REPL) {
		r.prompt = prompt
	}
}

// WithHistory sets the history store.
func WithHistory(h *History) Option {
	return func(r *REPL) {
		r.history = h
	}
}

// WithCommands sets the command names offered by help and suggestions.
func WithCommands(names ...string) Option {
	return func(r *REPL) {
		r.completer = NewCompleter(names...)
	}
}

// New creates a new REPL that hands each line to execute.
func New(execute Executor, opts ...Option) *REPL {
	r := &REPL{
		input:     os.Stdin,
		output:    os.Stdout,
		prompt:    DefaultPrompt,
		completer: NewCompleter(),
		history:   NewHistory(""),
		execute:   execute,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run starts the REPL loop. It returns nil on exit, quit, end of input or
// context cancellation.
func (r *REPL) Run(ctx context.Context) error {
	if err := r.history.Load(); err != nil {
		fmt.Fprintf(r.output, "warning: load history: %v\n", err)
	}
	defer func() {
		if err := r.history.Save(); err != nil {
			fmt.Fprintf(r.output, "warning: save history: %v\n", err)
		}
	}()

	reader := bufio.NewReader(r.input)

	for {
		if ctx.Err() != nil {
			return nil
		}

		fmt.Fprint(r.output, r.prompt)

		line, err := reader.ReadString('\n')
		if errors.Is(err, io.EOF) && line == "" {
			fmt.Fprintln(r.output)
			return nil
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		r.history.Add(line)

		if done := r.handle(ctx, line); done {
			return nil
		}
	}
}

// handle runs one line and reports whether the loop should stop.
func (r *REPL) handle(ctx context.Context, line string) bool {
	args, err := Split(line)
	if err != nil {
		fmt.Fprintf(r.output, "Error: %v\n", err)
		return false
	}
	if len(args) == 0 {
		return false
	}

	switch args[0] {
	case "exit", "quit":
		return true
	case "help":
		r.help(ctx, args[1:])
		return false
	case "history":
		for i, entry := range r.history.Entries() {
			fmt.Fprintf(r.output, "%4d  %s\n", i+1, entry)
		}
		return false
	}

	if !r.completer.Known(args[0]) {
		fmt.Fprintf(r.output, "Error: unknown command %q\n", args[0])
		if s := r.completer.Suggest(args[0]); len(s) > 0 {
			fmt.Fprintf(r.output, "Did you mean: %s\n", strings.Join(s, ", "))
		}
		return false
	}

	if err := r.execute(ctx, args); err != nil {
		fmt.Fprintf(r.output, "Error: %v\n", err)
	}
	return false
}

func (r *REPL) help(ctx context.Context, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(r.output, "Commands:")
		for _, name := range r.completer.Commands() {
			fmt.Fprintf(r.output, "  %s\n", name)
		}
		return
	}

	name := args[0]
	switch {
	case slices.Contains(Builtins, name):
		fmt.Fprintf(r.output, "%s is a REPL built-in\n", name)
	case r.completer.Known(name):
		if err := r.execute(ctx, []string{name, "--help"}); err != nil {
			fmt.Fprintf(r.output, "Error: %v\n", err)
		}
	default:
		fmt.Fprintln(r.output, strings.Join(r.completer.Complete(name), "\n"))
	}
}
