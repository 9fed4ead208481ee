package command

import (
	"bytes"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"
)

// testEnv isolates a test from the user's home directory and environment.
type testEnv struct {
	home    string
	dataDir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("WEBSTASH_CONFIG", "")
	return &testEnv{home: home, dataDir: t.TempDir()}
}

// run executes the CLI with args against a sqlite store in the test's data
// directory and returns everything written to stdout.
func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	base := []string{"webstash", "--engine", "sqlite", "--data-dir", e.dataDir}
	return runApp(t, nil, append(base, args...)...)
}

// runApp runs a fresh application. stdin may be nil.
func runApp(t *testing.T, stdin *strings.Reader, args ...string) (string, error) {
	t.Helper()

	var buf bytes.Buffer
	app := App()
	app.Writer = &buf
	app.ErrWriter = &buf
	app.ExitErrHandler = func(*cli.Context, error) {}
	if stdin != nil {
		app.Reader = stdin
	}

	err := app.Run(args)
	return buf.String(), err
}

// runWithInput is run with stdin attached.
func (e *testEnv) runWithInput(t *testing.T, stdin *strings.Reader, args ...string) (string, error) {
	t.Helper()
	base := []string{"webstash", "--engine", "sqlite", "--data-dir", e.dataDir}
	return runApp(t, stdin, append(base, args...)...)
}
