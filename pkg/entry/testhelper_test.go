package entry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/yndnr/webstash-go/pkg/crypto/adaptive"
)

// fastKDF keeps Argon2id cheap in tests.
var fastKDF = adaptive.KDFParams{Time: 1, MemoryKiB: 64, Threads: 1}

// mapStore is an insertion-ordered Store with failure hooks.
type mapStore struct {
	mu     sync.Mutex
	keys   []string
	values map[string]string

	// failSet, when set, is consulted before every SetItem.
	failSet func(key, value string) error
	getErr  error
	lenErr  error

	sets     int
	removes  int
	keyCalls int
}

func newMapStore() *mapStore {
	return &mapStore{values: make(map[string]string)}
}

func (s *mapStore) GetItem(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return "", false, s.getErr
	}
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *mapStore) SetItem(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSet != nil {
		if err := s.failSet(key, value); err != nil {
			return err
		}
	}
	if _, ok := s.values[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.values[key] = value
	s.sets++
	return nil
}

func (s *mapStore) RemoveItem(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[key]; !ok {
		return nil
	}
	delete(s.values, key)
	for i, k := range s.keys {
		if k == key {
			s.keys = append(s.keys[:i], s.keys[i+1:]...)
			break
		}
	}
	s.removes++
	return nil
}

func (s *mapStore) Len(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lenErr != nil {
		return 0, s.lenErr
	}
	return len(s.keys), nil
}

func (s *mapStore) Key(_ context.Context, index int) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keyCalls++
	if index < 0 || index >= len(s.keys) {
		return "", false, nil
	}
	return s.keys[index], true, nil
}

// raw returns the stored text for key, bypassing any Manager.
func (s *mapStore) raw(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

// put writes directly, as another program sharing the host store would.
func (s *mapStore) put(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.values[key] = value
}

// rangeStore adds single-pass enumeration to mapStore.
type rangeStore struct {
	*mapStore
	ranges   int
	rangeErr error
}

func (s *rangeStore) Range(_ context.Context, fn func(key, value string) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ranges++
	if s.rangeErr != nil {
		return s.rangeErr
	}
	for _, k := range s.keys {
		if !fn(k, s.values[k]) {
			break
		}
	}
	return nil
}

type logRecord struct {
	level string
	msg   string
	args  []any
}

// recordingLogger captures everything the Manager reports.
type recordingLogger struct {
	mu      sync.Mutex
	records []logRecord
}

func (l *recordingLogger) Warn(msg string, args ...any) {
	l.add("WARN", msg, args)
}

func (l *recordingLogger) Error(msg string, args ...any) {
	l.add("ERROR", msg, args)
}

func (l *recordingLogger) add(level, msg string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, logRecord{level: level, msg: msg, args: args})
}

func (l *recordingLogger) messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.records))
	for i, r := range l.records {
		out[i] = r.msg
	}
	return out
}

// attr returns the value logged under name in the first record with msg.
func (l *recordingLogger) attr(msg, name string) (any, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, r := range l.records {
		if r.msg != msg {
			continue
		}
		for i := 0; i+1 < len(r.args); i += 2 {
			if r.args[i] == name {
				return r.args[i+1], true
			}
		}
	}
	return nil, false
}

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.UnixMilli(1_700_000_000_000)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// countingRecorder tallies outcomes.
type countingRecorder struct {
	mu   sync.Mutex
	sets map[Outcome]int
	gets map[Outcome]int
	used int64
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{sets: map[Outcome]int{}, gets: map[Outcome]int{}}
}

func (r *countingRecorder) RecordSet(o Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sets[o]++
}

func (r *countingRecorder) RecordGet(o Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gets[o]++
}

func (r *countingRecorder) RecordUsage(_ Scope, used int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.used = used
}

// failingCipher always fails to encrypt.
type failingCipher struct{}

func (failingCipher) Encrypt(string) (string, error) {
	return "", fmt.Errorf("cipher unavailable")
}

func (failingCipher) Decrypt(string) (string, error) {
	return "", fmt.Errorf("cipher unavailable")
}

// newTestManager builds a persistent-scope Manager over store.
func newTestManager(t interface{ Fatalf(string, ...any) }, cfg Config, store Store, opts ...Option) (*Manager, *recordingLogger) {
	log := &recordingLogger{}
	if cfg.KDF == (adaptive.KDFParams{}) {
		cfg.KDF = fastKDF
	}
	opts = append([]Option{WithLogger(log)}, opts...)
	m, err := New(cfg, Host{Persistent: store, Session: store}, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return m, log
}
