// Package shutdown handles termination signals for the CLI.
//
// The first SIGINT or SIGTERM cancels the command's context so it can
// finish cleanly. A command that is still running after the timeout, or a
// second signal, triggers the registered hooks and ends the process.
//
// Usage:
//
//	h := shutdown.NewHandler(5 * time.Second)
//	ctx, stop := h.Context(context.Background())
//	defer stop()
//	h.OnShutdown(func(ctx context.Context) error { return store.Close() })
package shutdown
