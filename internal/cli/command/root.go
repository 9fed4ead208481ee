package command

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/webstash-go/internal/cli/output"
	"github.com/yndnr/webstash-go/internal/infra/buildinfo"
	"github.com/yndnr/webstash-go/internal/infra/shutdown"
)

const runtimeKey = "runtime"

// Option configures the application.
type Option func(*appOptions)

type appOptions struct {
	shutdown *shutdown.Handler
}

// WithShutdown closes the runtime from h when a signal forces the process
// to end.
func WithShutdown(h *shutdown.Handler) Option {
	return func(o *appOptions) {
		o.shutdown = h
	}
}

// App creates the CLI application.
func App(opts ...Option) *cli.App {
	var o appOptions
	for _, opt := range opts {
		opt(&o)
	}

	return &cli.App{
		Name:                 "webstash",
		Usage:                "Key/value storage with expiration, encryption and compression",
		Version:              buildinfo.String(),
		Flags:                globalFlags(),
		Commands:             commands(),
		EnableBashCompletion: true,
		Metadata:             map[string]any{},
		Before: func(c *cli.Context) error {
			rt := NewRuntime(c.String("config"), overridesFromFlags(c))
			c.App.Metadata[runtimeKey] = rt
			if o.shutdown != nil {
				o.shutdown.OnShutdown(func(context.Context) error { return rt.Close() })
			}
			return nil
		},
		After: func(c *cli.Context) error {
			if rt, ok := c.App.Metadata[runtimeKey].(*Runtime); ok {
				return rt.Close()
			}
			return nil
		},
	}
}

// commands returns the commands that work on a runtime. The REPL reuses
// them with its own runtime.
func commands() []*cli.Command {
	return []*cli.Command{
		ProbeCommand(),
		SetCommand(),
		GetCommand(),
		RemoveCommand(),
		KeysCommand(),
		ConfigCommand(),
		VersionCommand(),
		ReplCommand(),
	}
}

// flagBinding maps a global flag to its configuration key.
type flagBinding struct {
	flag string
	key  string
}

var flagBindings = []flagBinding{
	{"data-dir", "data_dir"},
	{"scope", "entry.scope"},
	{"encrypt", "entry.encrypt"},
	{"encryption-key", "entry.encryption_key"},
	{"cipher", "entry.cipher"},
	{"expire", "entry.expire"},
	{"compress", "entry.compress"},
	{"compression", "entry.compression"},
	{"capacity", "entry.capacity_bytes"},
	{"engine", "storage.engine"},
	{"path", "storage.path"},
	{"namespace", "storage.namespace"},
	{"output", "output"},
	{"log-level", "log.level"},
	{"metrics-file", "metrics.file"},
}

// globalFlags returns the global CLI flags. Flags only override the
// configuration when given explicitly.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Configuration file (default ~/.webstash/config.yaml)",
			EnvVars: []string{"WEBSTASH_CONFIG"},
		},
		&cli.StringFlag{
			Name:  "data-dir",
			Usage: "Directory for file-backed engines",
		},
		&cli.StringFlag{
			Name:    "scope",
			Aliases: []string{"s"},
			Usage:   "Storage scope: persistent or session",
		},
		&cli.BoolFlag{
			Name:  "encrypt",
			Usage: "Encrypt values at rest",
		},
		&cli.StringFlag{
			Name:  "encryption-key",
			Usage: "Encryption passphrase",
		},
		&cli.StringFlag{
			Name:  "cipher",
			Usage: "Cipher: aes-gcm, chacha20-poly1305, cryptojs",
		},
		&cli.BoolFlag{
			Name:  "expire",
			Usage: "Honor --ttl on set and drop expired entries on get",
		},
		&cli.BoolFlag{
			Name:  "compress",
			Usage: "Encode values before storing",
		},
		&cli.StringFlag{
			Name:  "compression",
			Usage: "Codec: base64, snappy, zstd",
		},
		&cli.Int64Flag{
			Name:  "capacity",
			Usage: "Capacity budget in bytes (default 5 MiB)",
		},
		&cli.StringFlag{
			Name:    "engine",
			Aliases: []string{"e"},
			Usage:   "Persistent engine: badger, sqlite, leveldb, redis, memory",
		},
		&cli.StringFlag{
			Name:  "path",
			Usage: "Engine data directory or database file",
		},
		&cli.StringFlag{
			Name:  "namespace",
			Usage: "Key namespace inside shared engines",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn, error",
		},
		&cli.StringFlag{
			Name:  "metrics-file",
			Usage: "Write Prometheus metrics to this file after each command",
		},
	}
}

// overridesFromFlags collects the explicitly set global flags as
// configuration overrides.
func overridesFromFlags(c *cli.Context) map[string]any {
	overrides := make(map[string]any)
	for _, b := range flagBindings {
		if c.IsSet(b.flag) {
			overrides[b.key] = c.Value(b.flag)
		}
	}
	return overrides
}

// runtimeFrom retrieves the shared runtime from context.
func runtimeFrom(c *cli.Context) (*Runtime, error) {
	if rt, ok := c.App.Metadata[runtimeKey].(*Runtime); ok {
		return rt, nil
	}
	return nil, fmt.Errorf("internal error: runtime not initialized")
}

// formatterFor returns the formatter for the configured output format.
func formatterFor(rt *Runtime) (output.Formatter, output.Format, error) {
	cfg, err := rt.Config()
	if err != nil {
		return nil, "", err
	}
	format, err := output.ParseFormat(cfg.Output)
	if err != nil {
		return nil, "", err
	}
	return output.NewFormatter(format), format, nil
}

// writer returns the application's output stream.
func writer(c *cli.Context) io.Writer {
	if c.App.Writer != nil {
		return c.App.Writer
	}
	return os.Stdout
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
