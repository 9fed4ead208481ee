package command

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"
)

func TestApp(t *testing.T) {
	app := App()
	if app == nil {
		t.Fatal("App() returned nil")
	}

	if app.Name != "webstash" {
		t.Errorf("Name = %q, want %q", app.Name, "webstash")
	}
	if app.Usage == "" {
		t.Error("Usage should not be empty")
	}

	commandNames := make(map[string]bool)
	for _, cmd := range app.Commands {
		commandNames[cmd.Name] = true
	}

	requiredCommands := []string{"probe", "set", "get", "rm", "keys", "config", "version", "repl"}
	for _, name := range requiredCommands {
		if !commandNames[name] {
			t.Errorf("missing required command: %s", name)
		}
	}
}

func TestGlobalFlags(t *testing.T) {
	names := make(map[string]bool)
	for _, flag := range globalFlags() {
		if len(flag.Names()) == 0 {
			t.Fatal("flag should have at least one name")
		}
		names[flag.Names()[0]] = true
	}

	if !names["config"] {
		t.Error("missing config flag")
	}
	for _, b := range flagBindings {
		if !names[b.flag] {
			t.Errorf("binding %q has no flag", b.flag)
		}
	}
}

func TestOverridesFromFlags(t *testing.T) {
	var got map[string]any
	app := &cli.App{
		Flags: globalFlags(),
		Action: func(c *cli.Context) error {
			got = overridesFromFlags(c)
			return nil
		},
	}

	args := []string{
		"test",
		"--engine", "redis",
		"--encrypt",
		"--capacity", "1024",
		"-o", "json",
	}
	if err := app.Run(args); err != nil {
		t.Fatalf("app.Run failed: %v", err)
	}

	want := map[string]any{
		"storage.engine":       "redis",
		"entry.encrypt":        true,
		"entry.capacity_bytes": int64(1024),
		"output":               "json",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("overrides = %#v, want %#v", got, want)
	}
}

func TestOverridesFromFlags_NoneSet(t *testing.T) {
	var got map[string]any
	app := &cli.App{
		Flags: globalFlags(),
		Action: func(c *cli.Context) error {
			got = overridesFromFlags(c)
			return nil
		},
	}
	if err := app.Run([]string{"test"}); err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("overrides = %v, want none", got)
	}
}

func TestRuntimeFrom_Missing(t *testing.T) {
	app := &cli.App{Metadata: map[string]any{}}
	if _, err := runtimeFrom(cli.NewContext(app, nil, nil)); err == nil {
		t.Error("runtimeFrom() should fail without a runtime")
	}
}

func TestApp_InvalidConfig(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "--engine", "floppy", "keys")
	if err == nil || !strings.Contains(err.Error(), "invalid configuration") {
		t.Errorf("error = %v, want invalid configuration", err)
	}
}

func TestVersion(t *testing.T) {
	newTestEnv(t)

	out, err := runApp(t, nil, "webstash", "-o", "json", "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	var info map[string]any
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatalf("version output: %v\n%s", err, out)
	}
	if info["version"] == "" || info["go_version"] == nil {
		t.Errorf("version = %v", info)
	}
}

func TestVersion_BrokenConfig(t *testing.T) {
	newTestEnv(t)

	out, err := runApp(t, nil, "webstash", "--engine", "floppy", "version")
	if err != nil {
		t.Fatalf("version should ignore configuration errors: %v", err)
	}
	if !strings.Contains(out, "version") {
		t.Errorf("version =\n%s", out)
	}
}
