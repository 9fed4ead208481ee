package shutdown

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// ExitCode is the process status after a forced shutdown.
const ExitCode = 130

// Handler turns SIGINT and SIGTERM into context cancellation. A program that
// does not finish within the timeout after the first signal, or that gets a
// second signal, is shut down by force: the hooks run in reverse order of
// registration and the process exits with ExitCode.
type Handler struct {
	timeout time.Duration
	hooks   []func(context.Context) error
	mu      sync.Mutex
	done    chan struct{}
	exit    func(code int)
	logger  *slog.Logger
}

// NewHandler creates a shutdown handler.
func NewHandler(timeout time.Duration) *Handler {
	return &Handler{
		timeout: timeout,
		hooks:   make([]func(context.Context) error, 0),
		done:    make(chan struct{}),
		exit:    os.Exit,
		logger:  slog.Default(),
	}
}

// OnShutdown registers a hook for a forced shutdown.
func (h *Handler) OnShutdown(hook func(context.Context) error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hooks = append(h.hooks, hook)
}

// Context returns a context that is cancelled by the first signal. Call
// stop when the program has finished; it also releases the signal handler.
func (h *Handler) Context(parent context.Context) (ctx context.Context, stop func()) {
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	finished := make(chan struct{})
	var once sync.Once
	stop = func() {
		once.Do(func() {
			signal.Stop(sigCh)
			close(finished)
			cancel()
		})
	}

	go func() {
		select {
		case <-finished:
			return
		case sig := <-sigCh:
			h.logger.Debug("shutdown requested", "signal", sig.String())
		}
		cancel()

		timer := time.NewTimer(h.timeout)
		defer timer.Stop()
		select {
		case <-finished:
			return
		case <-sigCh:
		case <-timer.C:
		}
		h.force()
	}()

	return ctx, stop
}

// Done is closed after a forced shutdown ran the hooks.
func (h *Handler) Done() <-chan struct{} {
	return h.done
}

func (h *Handler) force() {
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	if err := h.runHooks(ctx); err != nil {
		h.logger.Error("shutdown hooks failed", "error", err)
	}
	close(h.done)
	h.exit(ExitCode)
}

func (h *Handler) runHooks(ctx context.Context) error {
	h.mu.Lock()
	hooks := make([]func(context.Context) error, len(h.hooks))
	copy(hooks, h.hooks)
	h.mu.Unlock()

	var errs []error
	for i := len(hooks) - 1; i >= 0; i-- {
		if err := hooks[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
