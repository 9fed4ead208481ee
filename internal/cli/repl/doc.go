// Package repl runs webstash commands interactively so the session scope
// survives between commands.
//
//   - repl.go: read-eval-print loop and built-ins (help, history, exit)
//   - completer.go: command name completion and suggestions
//   - history.go: command history persistence
//   - split.go: shell-style argument splitting
package repl
