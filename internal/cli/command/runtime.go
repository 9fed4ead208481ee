package command

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/yndnr/webstash-go/internal/cli/config"
	"github.com/yndnr/webstash-go/internal/storage"
	"github.com/yndnr/webstash-go/internal/storage/memory"
	"github.com/yndnr/webstash-go/internal/telemetry/logger"
	"github.com/yndnr/webstash-go/internal/telemetry/metric"
	"github.com/yndnr/webstash-go/pkg/entry"
)

// Runtime holds what commands share during one process: the loaded
// configuration, the host stores, the entry manager and the metrics.
// Everything is built on first use, so version and help never touch
// storage.
type Runtime struct {
	configPath string
	overrides  map[string]any

	mu         sync.RWMutex
	cfg        *config.Config
	log        logger.Logger
	metrics    *metric.Registry
	outcomes   *outcomeRecorder
	session    *memory.Store
	persistent storage.Store
	manager    *entry.Manager
}

// NewRuntime creates a runtime reading configuration from configPath
// (empty selects the default file) with flag overrides applied on top.
func NewRuntime(configPath string, overrides map[string]any) *Runtime {
	return &Runtime{
		configPath: configPath,
		overrides:  overrides,
		session:    memory.New(),
	}
}

// ConfigPath returns the configuration file in use.
func (rt *Runtime) ConfigPath() string {
	if rt.configPath != "" {
		return rt.configPath
	}
	return config.DefaultConfigPath()
}

// Config loads and verifies the configuration once.
func (rt *Runtime) Config() (*config.Config, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.loadLocked()
}

func (rt *Runtime) loadLocked() (*config.Config, error) {
	if rt.cfg != nil {
		return rt.cfg, nil
	}

	cfg, err := config.LoadVerified(rt.configPath, rt.overrides)
	if err != nil {
		return nil, err
	}

	l, err := logger.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	logger.SetDefault(l)

	rt.cfg = cfg
	rt.log = l.With("run_id", logger.NewRequestID())
	rt.metrics = metric.NewRegistry()
	rt.outcomes = newOutcomeRecorder(rt.metrics)
	return cfg, nil
}

// Manager returns the entry manager, opening the persistent store when the
// configured scope needs it.
func (rt *Runtime) Manager(ctx context.Context) (*entry.Manager, error) {
	rt.mu.RLock()
	m := rt.manager
	rt.mu.RUnlock()
	if m != nil {
		return m, nil
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.manager != nil {
		return rt.manager, nil
	}
	cfg, err := rt.loadLocked()
	if err != nil {
		return nil, err
	}
	if err := rt.applyLocked(ctx, cfg); err != nil {
		return nil, err
	}
	return rt.manager, nil
}

// applyLocked builds a manager for cfg over the existing stores.
func (rt *Runtime) applyLocked(ctx context.Context, cfg *config.Config) error {
	ecfg, err := cfg.EntryConfig()
	if err != nil {
		return err
	}

	if ecfg.Scope == entry.ScopePersistent && rt.persistent == nil {
		kv := cfg.StorageConfig()
		st, err := storage.Open(ctx, kv, rt.log.Slog())
		if err != nil {
			return fmt.Errorf("open %s store: %w", engineName(kv.Engine), err)
		}
		rt.persistent = st
		if sizer, ok := st.(metric.Sizer); ok {
			if err := rt.metrics.Register(metric.NewStoreCollector(engineName(kv.Engine), sizer)); err != nil {
				rt.log.Warn("store metrics unavailable", "error", err)
			}
		}
	}

	host := entry.Host{Session: rt.session, Persistent: rt.persistent}
	m, err := entry.New(ecfg, host, entry.WithLogger(rt.log), entry.WithRecorder(rt.outcomes))
	if err != nil {
		return err
	}
	rt.manager = m
	return nil
}

// Reload re-reads the configuration file and rebuilds the manager. The
// storage engine stays open; changes to storage settings need a restart.
// On error the previous configuration stays in effect.
func (rt *Runtime) Reload(ctx context.Context) error {
	cfg, err := config.LoadVerified(rt.configPath, rt.overrides)
	if err != nil {
		return err
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()

	if rt.cfg == nil {
		// Nothing built yet; the next command loads cfg itself.
		return nil
	}
	if rt.persistent != nil && cfg.StorageConfig() != rt.cfg.StorageConfig() {
		rt.log.Warn("storage settings changed; restart to apply them")
		cfg.Storage = rt.cfg.Storage
		cfg.DataDir = rt.cfg.DataDir
	}
	logger.SetLevel(cfg.Log.Level)

	if rt.manager != nil {
		if err := rt.applyLocked(ctx, cfg); err != nil {
			return err
		}
	}
	rt.cfg = cfg
	rt.log.Info("configuration reloaded", "path", rt.ConfigPath())
	return nil
}

// LastSet returns the outcome of the most recent Set.
func (rt *Runtime) LastSet() entry.Outcome {
	if rt.outcomes == nil {
		return ""
	}
	return rt.outcomes.lastSet()
}

// LastGet returns the outcome of the most recent Get.
func (rt *Runtime) LastGet() entry.Outcome {
	if rt.outcomes == nil {
		return ""
	}
	return rt.outcomes.lastGet()
}

// Flush writes the metrics file when one is configured.
func (rt *Runtime) Flush() error {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	if rt.cfg == nil || rt.cfg.Metrics.File == "" {
		return nil
	}
	return rt.metrics.WriteFile(rt.cfg.Metrics.File)
}

// Close flushes metrics and releases the stores.
func (rt *Runtime) Close() error {
	errs := []error{rt.Flush()}

	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.persistent != nil {
		errs = append(errs, rt.persistent.Close())
		rt.persistent = nil
	}
	errs = append(errs, rt.session.Close())
	rt.manager = nil
	return errors.Join(errs...)
}

func engineName(engine string) string {
	if engine == "" {
		return storage.EngineBadger
	}
	return engine
}

// outcomeRecorder forwards outcomes to the metrics registry and remembers
// the latest ones so commands can report them.
type outcomeRecorder struct {
	next entry.Recorder

	mu  sync.Mutex
	set entry.Outcome
	get entry.Outcome
}

func newOutcomeRecorder(next entry.Recorder) *outcomeRecorder {
	return &outcomeRecorder{next: next}
}

func (r *outcomeRecorder) RecordSet(o entry.Outcome) {
	r.mu.Lock()
	r.set = o
	r.mu.Unlock()
	r.next.RecordSet(o)
}

func (r *outcomeRecorder) RecordGet(o entry.Outcome) {
	r.mu.Lock()
	r.get = o
	r.mu.Unlock()
	r.next.RecordGet(o)
}

func (r *outcomeRecorder) RecordUsage(scope entry.Scope, used int64) {
	r.next.RecordUsage(scope, used)
}

func (r *outcomeRecorder) lastSet() entry.Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.set
}

func (r *outcomeRecorder) lastGet() entry.Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.get
}
