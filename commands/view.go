package commands

import (
	"fmt"
	"strings"

	"MudraBuilder/internal/builder"
	"MudraBuilder/internal/console"
)

var Map = Define(Definition{
	Name:        "map",
	Aliases:     []string{"look", "l"},
	Usage:       "map",
	Description: "draw the map for the shown level",
	Group:       GroupView,
}, func(ctx *Context) bool {
	ctx.Designer.Send("\r\n" + ctx.Designer.View.Map())
	return false
})

var Automap = Define(Definition{
	Name:        "automap",
	Usage:       "automap <on|off>",
	Description: "redraw the map after every change",
	Group:       GroupView,
}, func(ctx *Context) bool {
	view := ctx.Designer.View
	on, ok := parseToggle(ctx.Arg)
	if !ok {
		ctx.Reply("Automap is %s.", onOff(view.Automap()))
		return false
	}
	view.SetAutomap(on)
	ctx.Reply("Automap is now %s.", onOff(on))
	return false
})

var LevelCmd = Define(Definition{
	Name:        "level",
	Aliases:     []string{"z"},
	Usage:       "level <z|all>",
	Description: "show one z-plane or every level",
	Group:       GroupView,
}, func(ctx *Context) bool {
	ed := ctx.Editor()
	if ctx.Arg == "" {
		levels := make([]string, 0)
		for _, z := range ed.MapView().ZLevels {
			levels = append(levels, fmt.Sprint(z))
		}
		ctx.Reply("Showing level %s. Levels in use: %s.", ed.Level(), strings.Join(levels, ", "))
		return false
	}
	level, err := builder.ParseLevel(ctx.Arg)
	if err != nil {
		ctx.Warn("%v", err)
		return false
	}
	ed.SetLevel(level)
	ctx.Reply("Showing level %s.", level)
	return false
})

var AreaFilter = Define(Definition{
	Name:        "areafilter",
	Aliases:     []string{"filter"},
	Usage:       "areafilter <area_id|none>",
	Description: "restrict the map to one area",
	Group:       GroupView,
}, func(ctx *Context) bool {
	if ctx.Arg == "" {
		return ctx.Usage()
	}
	key := ctx.Arg
	if strings.EqualFold(key, "none") || strings.EqualFold(key, "all") {
		key = ""
	}
	if err := ctx.Editor().SetAreaFilter(key); err != nil {
		return false
	}
	if key == "" {
		ctx.Reply("Area filter cleared.")
	} else {
		ctx.Reply("Showing area %s.", key)
	}
	return false
})

var Surrounding = Define(Definition{
	Name:        "surrounding",
	Aliases:     []string{"nearby"},
	Usage:       "surrounding <on|off>",
	Description: "also draw rooms just outside the filtered area",
	Group:       GroupView,
}, func(ctx *Context) bool {
	ed := ctx.Editor()
	on, ok := parseToggle(ctx.Arg)
	if !ok {
		ctx.Reply("Surrounding rooms are %s.", onOff(ed.Surrounding()))
		return false
	}
	ed.SetSurrounding(on)
	ctx.Reply("Surrounding rooms are now %s.", onOff(on))
	return false
})

var RoomsCmd = Define(Definition{
	Name:        "rooms",
	Usage:       "rooms",
	Description: "list the rooms on the shown level",
	Group:       GroupView,
}, func(ctx *Context) bool {
	shown := ctx.Editor().Shown()
	if len(shown) == 0 {
		ctx.Reply("No rooms shown.")
		return false
	}
	var b strings.Builder
	b.WriteString(console.Style(fmt.Sprintf("%d room(s):", len(shown)), console.AnsiBold))
	for _, r := range shown {
		b.WriteString("\r\n  " + roomLine(r))
	}
	ctx.Reply("%s", b.String())
	return false
})

var RoomCmd = Define(Definition{
	Name:        "room",
	Aliases:     []string{"examine", "exa"},
	Usage:       "room <room_id>",
	Description: "show every field of a room",
	Group:       GroupView,
}, func(ctx *Context) bool {
	id := builder.RoomID(ctx.Arg)
	if id == "" {
		if active := ctx.Editor().SelectionView().Active; active != "" {
			id = active
		} else {
			return ctx.Usage()
		}
	}
	room, ok := ctx.Editor().Room(id)
	if !ok {
		ctx.Warn("Unknown room %s.", id)
		return false
	}
	ctx.Reply("%s", describeRoom(ctx.Editor(), room))
	return false
})

func describeRoom(ed *builder.Editor, r builder.Room) string {
	var b strings.Builder
	b.WriteString(roomLine(r))
	if r.Description != "" {
		fmt.Fprintf(&b, "\r\n  %s", r.Description)
	}
	area := "none"
	for _, a := range ed.Areas() {
		if a.ID == r.AreaID {
			area = fmt.Sprintf("%s (%s)", a.AreaID, a.Name)
		}
	}
	fmt.Fprintf(&b, "\r\n  area: %s", area)
	lighting := r.Lighting
	if lighting == "" {
		lighting = builder.LightingNormal
	}
	fmt.Fprintf(&b, "\r\n  lighting: %s", lighting)
	exits := r.SortedExits()
	if len(exits) == 0 {
		b.WriteString("\r\n  exits: none")
	}
	for _, dir := range exits {
		line := fmt.Sprintf("\r\n  %-9s -> %s", dir, r.Exits[dir])
		if d, ok := r.Doors[dir]; ok {
			line += fmt.Sprintf(" [door %s]", d.DoorID)
		}
		b.WriteString(line)
	}
	return b.String()
}

var Areas = Define(Definition{
	Name:        "areas",
	Usage:       "areas",
	Description: "list the areas",
	Group:       GroupView,
}, func(ctx *Context) bool {
	areas := ctx.Editor().Areas()
	if len(areas) == 0 {
		ctx.Reply("No areas yet. Use 'area create <area_id> <name>'.")
		return false
	}
	var b strings.Builder
	b.WriteString(console.Style("Areas:", console.AnsiBold))
	filter := ctx.Editor().AreaFilter()
	for _, a := range areas {
		marker := " "
		if a.ID == filter {
			marker = "*"
		}
		fmt.Fprintf(&b, "\r\n %s %-16s %s", marker, a.AreaID, a.Name)
	}
	ctx.Reply("%s", b.String())
	return false
})

var AreaCmd = Define(Definition{
	Name:        "area",
	Usage:       "area create <area_id> <name>",
	Description: "register a new area",
	Group:       GroupEdit,
}, func(ctx *Context) bool {
	parts := strings.SplitN(ctx.Arg, " ", 3)
	if len(parts) < 3 || !strings.EqualFold(parts[0], "create") {
		return ctx.Usage()
	}
	area, err := ctx.Editor().CreateArea(ctx.Ctx, builder.Area{AreaID: parts[1], Name: parts[2]})
	if err == nil {
		ctx.Reply("Created area %s (%s).", console.Highlight(area.AreaID), area.Name)
	}
	return false
})

var Status = Define(Definition{
	Name:        "status",
	Aliases:     []string{"st"},
	Usage:       "status",
	Description: "show the pointer readout, selection and available controls",
	Group:       GroupView,
}, func(ctx *Context) bool {
	view := ctx.Designer.View
	sel := view.Selection()
	var b strings.Builder
	b.WriteString(ctx.Editor().Status())
	if len(sel.Members) > 0 {
		ids := make([]string, len(sel.Members))
		for i, id := range sel.Members {
			ids[i] = string(id)
		}
		fmt.Fprintf(&b, "\r\nSelected: %s", strings.Join(ids, ", "))
	}
	if sel.Active != "" {
		fmt.Fprintf(&b, "\r\nActive: %s", sel.Active)
	}
	fmt.Fprintf(&b, "\r\n%s", view.Controls())
	fmt.Fprintf(&b, "\r\nUndo steps: %d/%d", ctx.Editor().UndoDepth(), builder.UndoCapacity)
	ctx.Reply("%s", b.String())
	return false
})
