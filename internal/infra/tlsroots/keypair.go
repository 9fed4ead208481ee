package tlsroots

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce groups the events of one certificate rotation into a
// single reload.
const DefaultDebounce = 200 * time.Millisecond

// KeyPair serves a client certificate loaded from disk and reloads it when
// the files change. A failed reload keeps the previous certificate.
type KeyPair struct {
	certFile string
	keyFile  string
	logger   *slog.Logger
	debounce time.Duration

	mu   sync.RWMutex
	cert *tls.Certificate

	watcher   *fsnotify.Watcher
	done      chan struct{}
	closeOnce sync.Once

	timerMu sync.Mutex
	timer   *time.Timer
}

// KeyPairOption configures a KeyPair.
type KeyPairOption func(*KeyPair)

// WithLogger sets the logger for reload events.
func WithLogger(logger *slog.Logger) KeyPairOption {
	return func(k *KeyPair) {
		k.logger = logger
	}
}

// WithDebounce sets how long to wait for more file events before reloading.
func WithDebounce(d time.Duration) KeyPairOption {
	return func(k *KeyPair) {
		k.debounce = d
	}
}

// NewKeyPair loads the key pair from certFile and keyFile.
func NewKeyPair(certFile, keyFile string, opts ...KeyPairOption) (*KeyPair, error) {
	k := &KeyPair{
		certFile: filepath.Clean(certFile),
		keyFile:  filepath.Clean(keyFile),
		logger:   slog.Default(),
		debounce: DefaultDebounce,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(k)
	}

	if err := k.reload(); err != nil {
		return nil, err
	}
	return k, nil
}

// Watch starts reloading the key pair on file changes until Close.
func (k *KeyPair) Watch() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("tlsroots: create watcher: %w", err)
	}

	dirs := []string{filepath.Dir(k.certFile)}
	if d := filepath.Dir(k.keyFile); d != dirs[0] {
		dirs = append(dirs, d)
	}
	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return fmt.Errorf("tlsroots: watch %s: %w", dir, err)
		}
	}

	k.watcher = w
	go k.loop(w)
	return nil
}

func (k *KeyPair) loop(w *fsnotify.Watcher) {
	for {
		select {
		case event, ok := <-w.Events:
			if !ok {
				return
			}
			name := filepath.Clean(event.Name)
			if name != k.certFile && name != k.keyFile {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			k.scheduleReload()

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			k.logger.Error("certificate watcher error", "error", err)

		case <-k.done:
			return
		}
	}
}

func (k *KeyPair) scheduleReload() {
	k.timerMu.Lock()
	defer k.timerMu.Unlock()

	if k.timer != nil {
		k.timer.Stop()
	}
	k.timer = time.AfterFunc(k.debounce, func() {
		if err := k.reload(); err != nil {
			k.logger.Error("certificate reload failed", "cert_file", k.certFile, "error", err)
		}
	})
}

func (k *KeyPair) reload() error {
	cert, err := tls.LoadX509KeyPair(k.certFile, k.keyFile)
	if err != nil {
		return fmt.Errorf("tlsroots: load key pair: %w", err)
	}

	k.mu.Lock()
	k.cert = &cert
	k.mu.Unlock()

	k.logger.Debug("client certificate loaded", "cert_file", k.certFile)
	return nil
}

// Certificate returns the current certificate.
func (k *KeyPair) Certificate() *tls.Certificate {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.cert
}

// GetClientCertificate implements tls.Config.GetClientCertificate.
func (k *KeyPair) GetClientCertificate(*tls.CertificateRequestInfo) (*tls.Certificate, error) {
	return k.Certificate(), nil
}

// Close stops watching. It is safe to call more than once.
func (k *KeyPair) Close() error {
	var err error
	k.closeOnce.Do(func() {
		close(k.done)

		k.timerMu.Lock()
		if k.timer != nil {
			k.timer.Stop()
		}
		k.timerMu.Unlock()

		if k.watcher != nil {
			err = k.watcher.Close()
		}
	})
	return err
}
