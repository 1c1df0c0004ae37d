package commands

import (
	"strings"

	"MudraBuilder/internal/builder"
)

// roomUnder finds the shown room drawn in grid cell (x, y).
func roomUnder(ed *builder.Editor, x, y int) (builder.Room, bool) {
	for _, r := range ed.Shown() {
		if r.X == x && r.Y == y {
			return r, true
		}
	}
	return builder.Room{}, false
}

func cellArgs(ctx *Context, fields []string) (int, int, bool) {
	if len(fields) != 2 {
		ctx.Usage()
		return 0, 0, false
	}
	nums, err := parseInts(fields)
	if err != nil {
		ctx.Warn("%v", err)
		return 0, 0, false
	}
	return nums[0], nums[1], true
}

var Press = Define(Definition{
	Name:        "press",
	Usage:       "press <x> <y> [+ctrl] [+shift]",
	Description: "pointer down on a grid cell; +ctrl on a room starts a drag",
	Group:       GroupSelect,
}, func(ctx *Context) bool {
	fields, mods := splitModifiers(strings.Fields(ctx.Arg))
	x, y, ok := cellArgs(ctx, fields)
	if !ok {
		return false
	}
	ed := ctx.Editor()
	var target builder.RoomID
	if r, found := roomUnder(ed, x, y); found {
		target = r.RoomID
	}
	if err := ed.PointerDown(cellCenter(x, y), target, mods); err != nil {
		return false
	}
	switch {
	case ed.Dragging():
		ctx.Reply("Dragging %s. Use 'drag <x> <y>' then 'release'.", target)
	case target == "":
		ctx.Reply("Box started at (%d, %d). Use 'drag <x> <y>' then 'release'.", x, y)
	}
	return false
})

var Drag = Define(Definition{
	Name:        "drag",
	Usage:       "drag <x> <y>",
	Description: "move the pointer to a grid cell while pressed",
	Group:       GroupSelect,
}, func(ctx *Context) bool {
	x, y, ok := cellArgs(ctx, strings.Fields(ctx.Arg))
	if !ok {
		return false
	}
	ctx.Editor().PointerMove(cellCenter(x, y))
	return false
})

var Release = Define(Definition{
	Name:        "release",
	Usage:       "release [<x> <y>]",
	Description: "pointer up: drop a drag, finish a box, or click the canvas",
	Group:       GroupSelect,
}, func(ctx *Context) bool {
	ed := ctx.Editor()
	at := ed.Pointer()
	if fields := strings.Fields(ctx.Arg); len(fields) > 0 {
		x, y, ok := cellArgs(ctx, fields)
		if !ok {
			return false
		}
		at = cellCenter(x, y)
	}
	_ = ed.PointerUp(ctx.Ctx, at)
	return false
})

var Canvas = Define(Definition{
	Name:        "canvas",
	Usage:       "canvas <x> <y>",
	Description: "click an empty grid cell; creates a room when autocreate is on",
	Group:       GroupEdit,
}, func(ctx *Context) bool {
	x, y, ok := cellArgs(ctx, strings.Fields(ctx.Arg))
	if !ok {
		return false
	}
	ed := ctx.Editor()
	if r, found := roomUnder(ed, x, y); found {
		ctx.Warn("%s is drawn there; use 'click %s'.", r.RoomID, r.RoomID)
		return false
	}
	p := cellCenter(x, y)
	if err := ed.PointerDown(p, "", builder.Modifiers{}); err != nil {
		return false
	}
	_ = ed.PointerUp(ctx.Ctx, p)
	return false
})

var AutoCreate = Define(Definition{
	Name:        "autocreate",
	Usage:       "autocreate <on|off>",
	Description: "toggle room creation on empty canvas clicks",
	Group:       GroupEdit,
}, func(ctx *Context) bool {
	on, ok := parseToggle(ctx.Arg)
	if !ok {
		ctx.Reply("Autocreate is %s.", onOff(ctx.Editor().ClickToCreate()))
		return false
	}
	ctx.Editor().SetClickToCreate(on)
	ctx.Reply("Autocreate is now %s.", onOff(on))
	return false
})
