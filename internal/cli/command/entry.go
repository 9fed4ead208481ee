package command

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/webstash-go/internal/cli/output"
	"github.com/yndnr/webstash-go/internal/storage"
	"github.com/yndnr/webstash-go/internal/telemetry/logger"
	"github.com/yndnr/webstash-go/pkg/entry"
)

// ProbeCommand returns the probe command.
func ProbeCommand() *cli.Command {
	return &cli.Command{
		Name:   "probe",
		Usage:  "Check that the selected scope accepts writes and report its capacity",
		Action: probeAction,
	}
}

// SetCommand returns the set command.
func SetCommand() *cli.Command {
	return &cli.Command{
		Name:      "set",
		Usage:     "Store a value",
		ArgsUsage: "KEY VALUE",
		Description: "VALUE is parsed as JSON when it is valid JSON and stored as a string " +
			"otherwise. Use --string to always store the raw text.",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:    "ttl",
				Aliases: []string{"t"},
				Usage:   "Time to live (e.g., 30s, 12h); needs --expire",
			},
			&cli.BoolFlag{
				Name:  "string",
				Usage: "Store VALUE as a string without JSON parsing",
			},
		},
		Action: setAction,
	}
}

// GetCommand returns the get command.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Read a value",
		ArgsUsage: "KEY",
		Action:    getAction,
	}
}

// RemoveCommand returns the rm command.
func RemoveCommand() *cli.Command {
	return &cli.Command{
		Name:      "rm",
		Aliases:   []string{"remove", "del"},
		Usage:     "Remove values",
		ArgsUsage: "KEY [KEY...]",
		Action:    removeAction,
	}
}

// KeysCommand returns the keys command.
func KeysCommand() *cli.Command {
	return &cli.Command{
		Name:   "keys",
		Usage:  "List stored keys",
		Action: keysAction,
	}
}

// probeResult is the output of probe.
type probeResult struct {
	Scope          string `json:"scope" yaml:"scope"`
	Engine         string `json:"engine" yaml:"engine"`
	Supported      bool   `json:"supported" yaml:"supported"`
	UsedBytes      int64  `json:"used_bytes" yaml:"used_bytes"`
	RemainingBytes int64  `json:"remaining_bytes" yaml:"remaining_bytes"`
	CapacityBytes  int64  `json:"capacity_bytes" yaml:"capacity_bytes"`
}

// setResult is the output of set.
type setResult struct {
	Key       string     `json:"key" yaml:"key"`
	Outcome   string     `json:"outcome" yaml:"outcome"`
	ExpiresAt *time.Time `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
}

// session bundles what an entry command needs.
type session struct {
	ctx     context.Context
	rt      *Runtime
	manager *entry.Manager
	log     logger.Logger
}

// openSession resolves the runtime and manager and tags the context with
// a fresh request id.
func openSession(c *cli.Context) (*session, error) {
	rt, err := runtimeFrom(c)
	if err != nil {
		return nil, err
	}

	ctx := logger.WithRequestID(c.Context, logger.NewRequestID())
	m, err := rt.Manager(ctx)
	if err != nil {
		return nil, err
	}

	l := logger.L(ctx).With("command", c.Command.Name)
	l.Debug("command started", "args", c.Args().Len())
	return &session{ctx: ctx, rt: rt, manager: m, log: l}, nil
}

func probeAction(c *cli.Context) error {
	s, err := openSession(c)
	if err != nil {
		return err
	}
	cfg, err := s.rt.Config()
	if err != nil {
		return err
	}

	result := probeResult{
		Scope:     string(s.manager.Scope()),
		Engine:    storage.EngineMemory,
		Supported: s.manager.IsSupported(s.ctx),
	}
	if s.manager.Scope() == entry.ScopePersistent {
		result.Engine = engineName(cfg.Storage.Engine)
	}
	if used, remaining, ok := s.manager.Usage(s.ctx); ok {
		result.UsedBytes = used
		result.RemainingBytes = remaining
		result.CapacityBytes = used + remaining
	}

	if err := render(c, s.rt, result); err != nil {
		return err
	}
	if !result.Supported {
		return cli.Exit("storage is not supported", 1)
	}
	return nil
}

func setAction(c *cli.Context) error {
	if c.NArg() != 2 {
		return fmt.Errorf("usage: set KEY VALUE")
	}
	key, raw := c.Args().Get(0), c.Args().Get(1)

	s, err := openSession(c)
	if err != nil {
		return err
	}

	value := parseValue(raw, c.Bool("string"))
	ttl := c.Duration("ttl")
	s.manager.Set(s.ctx, key, value, ttl)

	outcome := s.rt.LastSet()
	s.log.Debug("set finished", "entry", key, "outcome", string(outcome))
	if outcome != entry.SetStored {
		return cli.Exit(fmt.Sprintf("set %q: %s", key, outcome), 1)
	}

	result := setResult{Key: key, Outcome: string(outcome)}
	if cfg, err := s.rt.Config(); err == nil && cfg.Entry.Expire && ttl != 0 {
		at := time.Now().Add(ttl).Truncate(time.Millisecond)
		result.ExpiresAt = &at
	}
	return render(c, s.rt, result)
}

// parseValue decodes raw as JSON unless asString is set or raw is not
// valid JSON.
func parseValue(raw string, asString bool) any {
	if asString {
		return raw
	}
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}
	return v
}

func getAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("usage: get KEY")
	}
	key := c.Args().First()

	s, err := openSession(c)
	if err != nil {
		return err
	}

	var value any
	if !s.manager.Get(s.ctx, key, &value) {
		switch outcome := s.rt.LastGet(); outcome {
		case entry.GetMiss:
			return cli.Exit(fmt.Sprintf("key %q not found", key), 1)
		case entry.GetExpired:
			return cli.Exit(fmt.Sprintf("key %q has expired", key), 1)
		default:
			return cli.Exit(fmt.Sprintf("key %q could not be read: %s", key, outcome), 1)
		}
	}

	formatter, format, err := formatterFor(s.rt)
	if err != nil {
		return err
	}
	if format == output.FormatTable {
		if str, ok := value.(string); ok {
			_, err := fmt.Fprintln(writer(c), str)
			return err
		}
		data, err := json.Marshal(value)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(writer(c), string(data))
		return err
	}
	return formatter.Format(writer(c), value)
}

func removeAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("usage: rm KEY [KEY...]")
	}

	s, err := openSession(c)
	if err != nil {
		return err
	}
	for _, key := range c.Args().Slice() {
		s.manager.Remove(s.ctx, key)
	}
	return nil
}

func keysAction(c *cli.Context) error {
	s, err := openSession(c)
	if err != nil {
		return err
	}

	keys := s.manager.Keys(s.ctx)
	if keys == nil {
		keys = []string{}
	}

	_, format, err := formatterFor(s.rt)
	if err != nil {
		return err
	}
	if format == output.FormatTable {
		table := &output.Table{Headers: []string{"KEY"}}
		for _, k := range keys {
			table.AddRow(k)
		}
		return render(c, s.rt, table)
	}
	return render(c, s.rt, keys)
}

// render formats data with the configured formatter.
func render(c *cli.Context, rt *Runtime, data any) error {
	formatter, _, err := formatterFor(rt)
	if err != nil {
		return err
	}
	return formatter.Format(writer(c), data)
}
