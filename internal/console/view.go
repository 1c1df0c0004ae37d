package console

import (
	"fmt"
	"strings"

	"MudraBuilder/internal/builder"
)

// View is the console side of the editor's render hooks. It keeps the most
// recent frame and writes the map at most once per command (Flush), while
// notices go out as soon as they arrive.
type View struct {
	out       func(string)
	automap   bool
	width     int
	mapView   builder.MapView
	selection builder.SelectionView
	status    string
	dirty     bool
}

// NewView writes through out. Automap starts enabled.
func NewView(out func(string)) *View {
	return &View{out: out, automap: true, width: 80}
}

func (v *View) RedrawMap(view builder.MapView) {
	v.mapView = view
	v.dirty = true
}

func (v *View) RefreshSelection(view builder.SelectionView) {
	v.selection = view
}

func (v *View) UpdateStatus(status string) {
	v.status = status
}

func (v *View) Notify(n builder.Notice) {
	v.out(formatNotice(n))
}

func formatNotice(n builder.Notice) string {
	switch n.Level {
	case builder.NoticeError:
		return Ansi("\r\n" + Style(n.Message, AnsiRed, AnsiBold))
	case builder.NoticeWarning:
		return Ansi("\r\n" + Style(n.Message, AnsiYellow))
	}
	return Ansi("\r\n" + Style(n.Message, AnsiGreen))
}

// Flush writes the map if it changed since the last flush and automap is on.
func (v *View) Flush() {
	if !v.dirty {
		return
	}
	v.dirty = false
	if v.automap {
		v.out("\r\n" + RenderMap(v.mapView, v.width))
	}
}

// Map renders the latest frame regardless of automap.
func (v *View) Map() string {
	v.dirty = false
	return RenderMap(v.mapView, v.width)
}

func (v *View) Status() string {
	return v.status
}

func (v *View) Selection() builder.SelectionView {
	return v.selection
}

// Controls describes which selection commands are currently usable.
func (v *View) Controls() string {
	c := v.selection.Controls
	flag := func(name string, on bool) string {
		if on {
			return Style(name, AnsiGreen)
		}
		return Style(name, AnsiDim)
	}
	parts := []string{
		flag("copy", c.Copy),
		flag("delete", c.Delete),
		flag("autoexit", c.AutoExit),
		flag("walk", c.AutoWalk),
		flag("undo", c.Undo),
	}
	return fmt.Sprintf("Controls: %s", strings.Join(parts, " "))
}

func (v *View) SetAutomap(on bool) {
	v.automap = on
}

func (v *View) Automap() bool {
	return v.automap
}

// SetWidth bounds rendered map lines; values below 20 are ignored.
func (v *View) SetWidth(width int) {
	if width >= 20 {
		v.width = width
	}
}
