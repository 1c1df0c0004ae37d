package commands

import (
	"strings"

	"MudraBuilder/internal/builder"
)

var Create = Define(Definition{
	Name:        "create",
	Aliases:     []string{"dig"},
	Usage:       "create <x> <y> [z]",
	Description: "create a room at grid coordinates (z defaults to the shown level)",
	Group:       GroupEdit,
}, func(ctx *Context) bool {
	ed := ctx.Editor()
	c, err := parseCoord(strings.Fields(ctx.Arg), ed.Level().CreateZ())
	if err != nil {
		ctx.Warn("%v. Usage: %s", err, ctx.Command.Usage)
		return false
	}
	room, err := ed.CreateRoomAt(ctx.Ctx, c)
	if err != nil {
		return false
	}
	ctx.Reply("Created %s.", roomLine(room))
	return false
})

var Delete = Define(Definition{
	Name:        "delete",
	Aliases:     []string{"del"},
	Usage:       "delete",
	Description: "delete the selected rooms (or the active room)",
	Group:       GroupEdit,
}, func(ctx *Context) bool {
	ed := ctx.Editor()
	before := len(ed.Rooms())
	_ = ed.DeleteSelected(ctx.Ctx)
	if removed := before - len(ed.Rooms()); removed > 0 {
		ctx.Reply("Deleted %d room(s).", removed)
	}
	return false
})

var Copy = Define(Definition{
	Name:        "copy",
	Aliases:     []string{"clone"},
	Usage:       "copy <dx> <dy> [dz]",
	Description: "duplicate the selected rooms at an offset",
	Group:       GroupEdit,
}, func(ctx *Context) bool {
	offset, err := parseCoord(strings.Fields(ctx.Arg), 0)
	if err != nil {
		ctx.Warn("%v. Usage: %s", err, ctx.Command.Usage)
		return false
	}
	ed := ctx.Editor()
	before := len(ed.Rooms())
	_ = ed.CopySelected(ctx.Ctx, offset)
	if added := len(ed.Rooms()) - before; added > 0 {
		ctx.Reply("Copied %d room(s) by %s.", added, offset)
	}
	return false
})

var Rename = Define(Definition{
	Name:        "rename",
	Aliases:     []string{"name"},
	Usage:       "rename <name>",
	Description: "rename the selected rooms",
	Group:       GroupEdit,
}, func(ctx *Context) bool {
	if ctx.Arg == "" {
		return ctx.Usage()
	}
	if err := ctx.Editor().RenameSelected(ctx.Ctx, ctx.Arg); err == nil {
		ctx.Reply("Renamed to %q.", ctx.Arg)
	}
	return false
})

var Move = Define(Definition{
	Name:        "move",
	Usage:       "move <dx> <dy> [dz]",
	Description: "shift the selected rooms together, as a ctrl-drag does",
	Group:       GroupEdit,
}, func(ctx *Context) bool {
	delta, err := parseCoord(strings.Fields(ctx.Arg), 0)
	if err != nil {
		ctx.Warn("%v. Usage: %s", err, ctx.Command.Usage)
		return false
	}
	if err := ctx.Editor().MoveSelected(ctx.Ctx, delta); err == nil && !delta.IsZero() {
		ctx.Reply("Moved by %s.", delta)
	}
	return false
})

var AutoExit = Define(Definition{
	Name:        "autoexit",
	Aliases:     []string{"link"},
	Usage:       "autoexit",
	Description: "add missing exits between adjacent selected rooms",
	Group:       GroupEdit,
}, func(ctx *Context) bool {
	_, _ = ctx.Editor().AutoExitSelected(ctx.Ctx)
	return false
})

var Undo = Define(Definition{
	Name:        "undo",
	Usage:       "undo",
	Description: "revert the last change (up to 3 are kept)",
	Group:       GroupEdit,
}, func(ctx *Context) bool {
	ed := ctx.Editor()
	if err := ed.Undo(ctx.Ctx); err == nil {
		ctx.Reply("Undone. %d more step(s) available.", ed.UndoDepth())
	}
	return false
})

func walk(ctx *Context, dir builder.Direction) bool {
	room, err := ctx.Editor().AutoWalk(ctx.Ctx, dir)
	if err != nil {
		return false
	}
	ctx.Reply("Walked %s to %s.", dir, roomLine(room))
	return false
}

var Walk = Define(Definition{
	Name:        "walk",
	Usage:       "walk <direction>",
	Description: "step from the active room, creating and linking the next room",
	Group:       GroupEdit,
}, func(ctx *Context) bool {
	dir, err := parseDirection(ctx.Arg)
	if err != nil {
		ctx.Warn("%v", err)
		return false
	}
	return walk(ctx, dir)
})

func defineWalk(dir builder.Direction, alias string) *Command {
	return Define(Definition{
		Name:        string(dir),
		Aliases:     []string{alias},
		Usage:       string(dir),
		Description: "walk " + string(dir),
		Group:       GroupEdit,
	}, func(ctx *Context) bool {
		return walk(ctx, dir)
	})
}

var (
	North     = defineWalk(builder.North, "n")
	South     = defineWalk(builder.South, "s")
	East      = defineWalk(builder.East, "e")
	West      = defineWalk(builder.West, "w")
	Up        = defineWalk(builder.Up, "u")
	Down      = defineWalk(builder.Down, "d")
	Northeast = defineWalk(builder.Northeast, "ne")
	Northwest = defineWalk(builder.Northwest, "nw")
	Southeast = defineWalk(builder.Southeast, "se")
	Southwest = defineWalk(builder.Southwest, "sw")
)
