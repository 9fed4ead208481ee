package repl

import (
	"reflect"
	"testing"
)

func TestCompleter_Complete(t *testing.T) {
	c := NewCompleter("set", "get", "keys", "config")

	tests := []struct {
		prefix string
		want   []string
	}{
		{"", []string{"config", "exit", "get", "help", "history", "keys", "quit", "set"}},
		{"h", []string{"help", "history"}},
		{"co", []string{"config"}},
		{"zz", nil},
	}

	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			if got := c.Complete(tt.prefix); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Complete(%q) = %v, want %v", tt.prefix, got, tt.want)
			}
		})
	}
}

func TestCompleter_Known(t *testing.T) {
	c := NewCompleter("get")

	for name, want := range map[string]bool{"get": true, "exit": true, "ge": false, "set": false} {
		if got := c.Known(name); got != want {
			t.Errorf("Known(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestCompleter_Suggest(t *testing.T) {
	c := NewCompleter("get", "keys")

	if got := c.Suggest("gte"); !reflect.DeepEqual(got, []string{"get"}) {
		t.Errorf("Suggest(gte) = %v", got)
	}
	if got := c.Suggest(""); got != nil {
		t.Errorf("Suggest(\"\") = %v, want nil", got)
	}
}

func TestCompleter_CommandsIsCopy(t *testing.T) {
	c := NewCompleter("get")
	cmds := c.Commands()
	cmds[0] = "mutated"
	if c.Commands()[0] == "mutated" {
		t.Error("Commands() should return a copy")
	}
}
