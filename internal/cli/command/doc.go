// Package command defines the webstash CLI on top of urfave/cli/v2.
//
// Every command shares one Runtime per process. The runtime loads the
// configuration lazily, so version and help work without storage, and
// opens the persistent engine only when the persistent scope is used.
// The repl command runs the same commands line by line against a single
// runtime, which keeps session-scoped entries alive until it exits.
package command
