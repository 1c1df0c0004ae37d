package commands

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"MudraBuilder/internal/builder"
	"MudraBuilder/internal/console"
)

// CommandGroup buckets commands for the help listing.
type CommandGroup string

const (
	GroupSelect  CommandGroup = "Selection"
	GroupEdit    CommandGroup = "Editing"
	GroupView    CommandGroup = "Viewing"
	GroupSession CommandGroup = "Session"
	GroupAdmin   CommandGroup = "Admin"
)

var groupOrder = []CommandGroup{GroupSelect, GroupEdit, GroupView, GroupSession, GroupAdmin}

// Definition describes a single command's metadata.
type Definition struct {
	Name        string
	Aliases     []string
	Usage       string
	Description string
	Group       CommandGroup
	AdminOnly   bool
}

// Handler executes a command.
// Returning true indicates the connection should terminate.
type Handler func(*Context) bool

// Command couples metadata with the executable handler.
type Command struct {
	Definition
	Handler Handler
}

// Context provides the runtime data available to a command handler.
type Context struct {
	Ctx      context.Context
	Designer *console.Designer
	Raw      string
	Arg      string
	Input    string
	Command  *Command
}

// Editor is the designer's editing session.
func (c *Context) Editor() *builder.Editor {
	return c.Designer.Editor
}

// Reply sends a plain line to the designer.
func (c *Context) Reply(format string, args ...any) {
	c.Designer.Send("\r\n" + fmt.Sprintf(format, args...))
}

// Warn sends a highlighted problem line.
func (c *Context) Warn(format string, args ...any) {
	c.Designer.Send("\r\n" + console.Style(fmt.Sprintf(format, args...), console.AnsiYellow))
}

// Usage repeats the command's usage string as a warning.
func (c *Context) Usage() bool {
	c.Warn("Usage: %s", c.Command.Usage)
	return false
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]*Command)
	ordered    []*Command
)

// Define registers a new command using the provided definition and handler.
// It panics when metadata is incomplete or duplicates an existing command.
func Define(def Definition, handler Handler) *Command {
	if handler == nil {
		panic("commands: handler must not be nil")
	}
	if strings.TrimSpace(def.Name) == "" {
		panic("commands: command must have a name")
	}
	if def.Group == "" {
		def.Group = GroupSession
	}

	cmd := &Command{Definition: def, Handler: handler}

	registryMu.Lock()
	defer registryMu.Unlock()

	registerName := func(name string) {
		key := strings.ToLower(name)
		if _, exists := registry[key]; exists {
			panic(fmt.Sprintf("commands: duplicate registration for %q", name))
		}
		registry[key] = cmd
	}
	registerName(def.Name)
	for _, alias := range def.Aliases {
		if strings.TrimSpace(alias) == "" {
			continue
		}
		registerName(alias)
	}

	ordered = append(ordered, cmd)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Name < ordered[j].Name
	})
	return cmd
}

// All returns the registered commands sorted by primary name.
func All() []*Command {
	registryMu.RLock()
	defer registryMu.RUnlock()

	out := make([]*Command, len(ordered))
	copy(out, ordered)
	return out
}

// Find resolves a name or alias, falling back to the single command whose
// primary name starts with the given prefix.
func Find(name string) (*Command, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return nil, false
	}
	registryMu.RLock()
	defer registryMu.RUnlock()
	if cmd, ok := registry[key]; ok {
		return cmd, true
	}
	var match *Command
	for _, cmd := range ordered {
		if !strings.HasPrefix(cmd.Name, key) {
			continue
		}
		if match != nil {
			return nil, false
		}
		match = cmd
	}
	return match, match != nil
}

// Dispatch parses the input line, looks up the command, and executes it.
func Dispatch(ctx context.Context, designer *console.Designer, line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false
	}
	cmd, ok := Find(parts[0])
	if !ok {
		designer.Send("\r\nUnknown command. Type 'help'.")
		return false
	}
	if cmd.AdminOnly && !designer.Admin {
		designer.Send("\r\n" + console.Style("Only admins may use "+cmd.Name+".", console.AnsiYellow))
		return false
	}

	arg := strings.TrimSpace(strings.TrimPrefix(line, parts[0]))
	return cmd.Handler(&Context{
		Ctx:      ctx,
		Designer: designer,
		Raw:      line,
		Arg:      arg,
		Input:    parts[0],
		Command:  cmd,
	})
}
