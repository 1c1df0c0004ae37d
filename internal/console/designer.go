package console

import (
	"log/slog"

	"MudraBuilder/internal/builder"
)

const outputBuffer = 128

// Terminal is the connection detail a designer's commands can inspect.
type Terminal interface {
	Charset() string
	SetCharset(name string) error
	Size() (int, int)
}

// Designer is one logged-in editing session: its own editor, selection and
// undo log over the shared store.
type Designer struct {
	Name     string
	Admin    bool
	Editor   *builder.Editor
	View     *View
	Output   chan string
	Terminal Terminal
}

// NewDesigner builds a session editor whose render hooks are the console
// view followed by extra.
func NewDesigner(name string, admin bool, store builder.Store, logger *slog.Logger, extra ...builder.Hooks) *Designer {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Designer{
		Name:   name,
		Admin:  admin,
		Output: make(chan string, outputBuffer),
	}
	d.View = NewView(d.Send)
	hooks := builder.MultiHooks{d.View}
	for _, h := range extra {
		if h != nil {
			hooks = append(hooks, h)
		}
	}
	d.Editor = builder.NewEditor(store,
		builder.WithHooks(hooks),
		builder.WithLogger(logger.With("designer", name)),
	)
	return d
}

// Send queues msg for the session writer.
func (d *Designer) Send(msg string) {
	d.Output <- Ansi(msg)
}
