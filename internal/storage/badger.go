package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v3"

	"github.com/yndnr/webstash-go/pkg/entry"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("storage: store closed")

// keyPrefix is prepended to every namespace so webstash data can share a
// Badger directory.
const keyPrefix = "webstash/"

// BadgerStore implements entry.Store on Badger v3.
//
// Keys are ordered lexicographically, so Key(i) indexes are stable
// between writes only.
type BadgerStore struct {
	db     *badger.DB
	cfg    BadgerConfig
	prefix []byte
	logger *slog.Logger

	lastGCTime atomic.Int64 // Unix milliseconds
	closed     atomic.Bool

	// Shutdown
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewBadgerStore opens a Badger-backed store under cfg.Path. An empty path
// opens an in-memory database.
func NewBadgerStore(cfg KVConfig, logger *slog.Logger) (*BadgerStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = DefaultNamespace
	}

	badgerCfg := cfg.Badger
	defaults := DefaultBadgerConfig()
	if badgerCfg.GCInterval == "" {
		badgerCfg.GCInterval = defaults.GCInterval
	}
	if badgerCfg.GCThreshold <= 0 || badgerCfg.GCThreshold >= 1 {
		badgerCfg.GCThreshold = defaults.GCThreshold
	}
	if badgerCfg.CacheSize <= 0 {
		badgerCfg.CacheSize = defaults.CacheSize
	}
	if badgerCfg.ValueLogFileSize <= 0 {
		badgerCfg.ValueLogFileSize = defaults.ValueLogFileSize
	}

	// Build Badger options
	opts := badger.DefaultOptions(cfg.Path)
	if cfg.Path == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = &badgerLogger{logger: logger}
	opts.BlockCacheSize = badgerCfg.CacheSize
	opts.ValueLogFileSize = badgerCfg.ValueLogFileSize
	opts.SyncWrites = badgerCfg.SyncWrites

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: open db: %w", err)
	}

	s := &BadgerStore{
		db:     db,
		cfg:    badgerCfg,
		prefix: []byte(keyPrefix + cfg.Namespace + "/"),
		logger: logger,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}

	// Start background GC loop
	go s.gcLoop()

	logger.Debug("badger store opened",
		"path", cfg.Path,
		"namespace", cfg.Namespace,
		"cache_size", badgerCfg.CacheSize,
		"gc_interval", badgerCfg.GCInterval)

	return s, nil
}

func (s *BadgerStore) key(k string) []byte {
	out := make([]byte, 0, len(s.prefix)+len(k))
	out = append(out, s.prefix...)
	return append(out, k...)
}

// GetItem retrieves the value stored under key.
func (s *BadgerStore) GetItem(_ context.Context, key string) (string, bool, error) {
	if s.closed.Load() {
		return "", false, ErrClosed
	}

	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(s.key(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("badger: get: %w", err)
	}
	return string(value), true, nil
}

// SetItem stores a key-value pair. Writes larger than a single transaction
// can hold report entry.ErrQuotaExceeded.
func (s *BadgerStore) SetItem(_ context.Context, key, value string) error {
	if s.closed.Load() {
		return ErrClosed
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(s.key(key), []byte(value))
	})
	if errors.Is(err, badger.ErrTxnTooBig) {
		return fmt.Errorf("badger: %w: %v", entry.ErrQuotaExceeded, err)
	}
	if err != nil {
		return fmt.Errorf("badger: set: %w", err)
	}
	return nil
}

// RemoveItem deletes key.
func (s *BadgerStore) RemoveItem(_ context.Context, key string) error {
	if s.closed.Load() {
		return ErrClosed
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(s.key(key))
	})
	if err != nil {
		return fmt.Errorf("badger: delete: %w", err)
	}
	return nil
}

// Len counts the keys in the namespace.
func (s *BadgerStore) Len(ctx context.Context) (int, error) {
	n := 0
	err := s.scan(ctx, false, func(_ []byte, _ *badger.Item) (bool, error) {
		n++
		return true, nil
	})
	return n, err
}

// Key returns the index-th key in lexicographic order.
func (s *BadgerStore) Key(ctx context.Context, index int) (string, bool, error) {
	if index < 0 {
		return "", false, nil
	}

	var (
		found string
		ok    bool
		i     int
	)
	err := s.scan(ctx, false, func(k []byte, _ *badger.Item) (bool, error) {
		if i == index {
			found, ok = string(k), true
			return false, nil
		}
		i++
		return true, nil
	})
	return found, ok, err
}

// Range calls fn for every entry in key order until fn returns false.
func (s *BadgerStore) Range(ctx context.Context, fn func(key, value string) bool) error {
	return s.scan(ctx, true, func(k []byte, item *badger.Item) (bool, error) {
		value, err := item.ValueCopy(nil)
		if err != nil {
			return false, err
		}
		return fn(string(k), string(value)), nil
	})
}

// scan iterates over the namespace. The key passed to fn has the prefix
// removed.
func (s *BadgerStore) scan(ctx context.Context, values bool, fn func(key []byte, item *badger.Item) (bool, error)) error {
	if s.closed.Load() {
		return ErrClosed
	}

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = s.prefix
		opts.PrefetchValues = values
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			key := bytes.TrimPrefix(item.Key(), s.prefix)
			more, err := fn(key, item)
			if err != nil {
				return err
			}
			if !more {
				break
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("badger: scan: %w", err)
	}
	return nil
}

// GC runs value log garbage collection until nothing is left to rewrite.
// It returns the number of value log files rewritten.
func (s *BadgerStore) GC(_ context.Context) (int, error) {
	if s.closed.Load() {
		return 0, ErrClosed
	}

	startTime := time.Now()
	rewrites := 0
	for {
		err := s.db.RunValueLogGC(s.cfg.GCThreshold)
		if err != nil {
			if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrGCInMemoryMode) {
				break
			}
			return rewrites, fmt.Errorf("gc: %w", err)
		}
		rewrites++
	}

	s.lastGCTime.Store(time.Now().UnixMilli())
	s.logger.Debug("gc completed",
		"rewrites", rewrites,
		"elapsed", time.Since(startTime))

	return rewrites, nil
}

// Size returns the on-disk LSM and value log sizes in bytes.
func (s *BadgerStore) Size() (lsm, vlog int64) {
	return s.db.Size()
}

// Close stops the GC loop and closes the database.
func (s *BadgerStore) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}

	// Stop GC loop
	close(s.stopCh)
	<-s.doneCh

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}
	return nil
}

// gcLoop runs periodic garbage collection.
func (s *BadgerStore) gcLoop() {
	defer close(s.doneCh)

	interval, err := time.ParseDuration(s.cfg.GCInterval)
	if err != nil || interval <= 0 {
		s.logger.Error("invalid gc_interval, using default 10m", "value", s.cfg.GCInterval, "error", err)
		interval = 10 * time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			if _, err := s.GC(ctx); err != nil {
				s.logger.Error("auto gc failed", "error", err)
			}
			cancel()

		case <-s.stopCh:
			return
		}
	}
}

// badgerLogger adapts slog.Logger to Badger's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

// Badger is chatty at info level; route it to debug.
func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

var (
	_ entry.Store  = (*BadgerStore)(nil)
	_ entry.Ranger = (*BadgerStore)(nil)
)
