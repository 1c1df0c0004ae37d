package commands

import (
	"strconv"
	"strings"

	"MudraBuilder/internal/builder"
)

var Edit = Define(Definition{
	Name:        "edit",
	Aliases:     []string{"set"},
	Usage:       "edit <room_id> name|desc|area|lighting <value>",
	Description: "change one field of a room",
	Group:       GroupEdit,
}, func(ctx *Context) bool {
	parts := strings.SplitN(ctx.Arg, " ", 3)
	if len(parts) < 2 {
		return ctx.Usage()
	}
	id := builder.RoomID(parts[0])
	value := ""
	if len(parts) == 3 {
		value = strings.TrimSpace(parts[2])
	}

	var edit builder.RoomEdit
	switch strings.ToLower(parts[1]) {
	case "name":
		edit.Name = &value
	case "desc", "description":
		edit.Description = &value
	case "area":
		areaID, ok := resolveArea(ctx, value)
		if !ok {
			return false
		}
		edit.AreaID = &areaID
	case "lighting", "light":
		lighting := builder.Lighting(value)
		edit.Lighting = &lighting
	default:
		return ctx.Usage()
	}
	room, err := ctx.Editor().EditRoom(ctx.Ctx, id, edit)
	if err == nil {
		ctx.Reply("Updated %s.", roomLine(room))
	}
	return false
})

// resolveArea accepts an area_id key, a numeric id, or "none".
func resolveArea(ctx *Context, value string) (int, bool) {
	if value == "" || strings.EqualFold(value, "none") {
		return 0, true
	}
	for _, a := range ctx.Editor().Areas() {
		if strings.EqualFold(a.AreaID, value) {
			return a.ID, true
		}
	}
	if n, err := strconv.Atoi(value); err == nil {
		return n, true
	}
	ctx.Warn("Unknown area %q. Type 'areas' to list them.", value)
	return 0, false
}

var Exit = Define(Definition{
	Name:        "exit",
	Usage:       "exit <room_id> <direction> <room_id|none>",
	Description: "set or clear a single exit",
	Group:       GroupEdit,
}, func(ctx *Context) bool {
	fields := strings.Fields(ctx.Arg)
	if len(fields) != 3 {
		return ctx.Usage()
	}
	dir, err := parseDirection(fields[1])
	if err != nil {
		ctx.Warn("%v", err)
		return false
	}
	var edit builder.RoomEdit
	if strings.EqualFold(fields[2], "none") {
		edit.ClearExits = []builder.Direction{dir}
	} else {
		edit.SetExits = map[builder.Direction]builder.RoomID{dir: builder.RoomID(fields[2])}
	}
	if _, err := ctx.Editor().EditRoom(ctx.Ctx, builder.RoomID(fields[0]), edit); err == nil {
		if edit.ClearExits != nil {
			ctx.Reply("Cleared the %s exit of %s.", dir, fields[0])
		} else {
			ctx.Reply("%s now leads %s to %s.", fields[0], dir, fields[2])
		}
	}
	return false
})

var MoveTo = Define(Definition{
	Name:        "moveto",
	Usage:       "moveto <room_id> <x> <y> [z]",
	Description: "place one room at absolute coordinates",
	Group:       GroupEdit,
}, func(ctx *Context) bool {
	fields := strings.Fields(ctx.Arg)
	if len(fields) < 3 {
		return ctx.Usage()
	}
	id := builder.RoomID(fields[0])
	room, ok := ctx.Editor().Room(id)
	if !ok {
		ctx.Warn("Unknown room %s.", id)
		return false
	}
	to, err := parseCoord(fields[1:], room.Z)
	if err != nil {
		ctx.Warn("%v. Usage: %s", err, ctx.Command.Usage)
		return false
	}
	if updated, err := ctx.Editor().EditRoom(ctx.Ctx, id, builder.RoomEdit{Coord: &to}); err == nil {
		ctx.Reply("Moved %s.", roomLine(updated))
	}
	return false
})
