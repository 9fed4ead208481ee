package repl

import (
	"sort"
	"strings"
)

// Builtins are handled by the REPL itself.
var Builtins = []string{"help", "history", "exit", "quit"}

// Completer provides command completion for the REPL.
type Completer struct {
	commands []string
}

// NewCompleter creates a Completer over the given command names plus the
// built-ins.
func NewCompleter(commands ...string) *Completer {
	all := append(append([]string{}, commands...), Builtins...)
	sort.Strings(all)
	return &Completer{commands: all}
}

// Complete returns completion suggestions for the given prefix.
func (c *Completer) Complete(prefix string) []string {
	var suggestions []string
	for _, cmd := range c.commands {
		if strings.HasPrefix(cmd, prefix) {
			suggestions = append(suggestions, cmd)
		}
	}
	return suggestions
}

// Known reports whether name is a command or a built-in.
func (c *Completer) Known(name string) bool {
	i := sort.SearchStrings(c.commands, name)
	return i < len(c.commands) && c.commands[i] == name
}

// Suggest returns commands sharing the first letter of an unknown word.
func (c *Completer) Suggest(word string) []string {
	if word == "" {
		return nil
	}
	return c.Complete(word[:1])
}

// Commands returns all command names in order.
func (c *Completer) Commands() []string {
	return append([]string(nil), c.commands...)
}
