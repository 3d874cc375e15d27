package bot

import (
	"context"
	"sort"
	"strings"
)

// HandlerFunc processes one parsed command message.
type HandlerFunc func(ctx context.Context, msg *MessageContext) error

// Command describes a chat command and its handler. Feature packages build
// these and register them at startup.
type Command struct {
	Name        string
	Aliases     []string
	Description string
	Usage       string
	AdminOnly   bool
	OwnerOnly   bool
	Handler     HandlerFunc
}

// Registry maps command names and aliases to handlers. Registration
// happens once during wiring; lookups after that are read-only.
type Registry struct {
	byName  map[string]*Command
	ordered []*Command
}

// NewRegistry creates an empty command registry
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Command)}
}

// Register adds a command and its aliases. Duplicate names panic: that is
// a wiring bug, not a runtime condition.
func (r *Registry) Register(cmd *Command) {
	names := append([]string{cmd.Name}, cmd.Aliases...)
	for _, name := range names {
		key := strings.ToLower(name)
		if _, exists := r.byName[key]; exists {
			panic("duplicate command registration: " + key)
		}
		r.byName[key] = cmd
	}
	r.ordered = append(r.ordered, cmd)
}

// Resolve returns the command for a name or alias, or nil
func (r *Registry) Resolve(name string) *Command {
	return r.byName[strings.ToLower(name)]
}

// Commands returns all registered commands sorted by name, for help output
func (r *Registry) Commands() []*Command {
	out := make([]*Command, len(r.ordered))
	copy(out, r.ordered)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ParseCommand splits a message body into a command name and arguments.
// Returns ok=false for anything that is not a prefixed command.
func ParseCommand(body, prefix string) (name string, args []string, ok bool) {
	body = strings.TrimSpace(body)
	if !strings.HasPrefix(body, prefix) {
		return "", nil, false
	}
	fields := strings.Fields(body[len(prefix):])
	if len(fields) == 0 {
		return "", nil, false
	}
	return strings.ToLower(fields[0]), fields[1:], true
}
