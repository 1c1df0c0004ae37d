package commands

import (
	"strings"

	"MudraBuilder/internal/builder"
)

var Click = Define(Definition{
	Name:        "click",
	Usage:       "click <room_id> [+ctrl] [+shift]",
	Description: "click a room: plain selects it, +ctrl toggles, +shift adds",
	Group:       GroupSelect,
}, func(ctx *Context) bool {
	fields, mods := splitModifiers(strings.Fields(ctx.Arg))
	if len(fields) != 1 {
		return ctx.Usage()
	}
	_ = ctx.Editor().Click(builder.RoomID(fields[0]), mods)
	return false
})

var Select = Define(Definition{
	Name:        "select",
	Aliases:     []string{"sel"},
	Usage:       "select <room_id>... | select all",
	Description: "replace the multi-selection",
	Group:       GroupSelect,
}, func(ctx *Context) bool {
	fields := strings.Fields(ctx.Arg)
	if len(fields) == 0 {
		return ctx.Usage()
	}
	var ids []builder.RoomID
	if len(fields) == 1 && strings.EqualFold(fields[0], "all") {
		for _, r := range ctx.Editor().Shown() {
			ids = append(ids, r.RoomID)
		}
	} else {
		for _, f := range fields {
			ids = append(ids, builder.RoomID(f))
		}
	}
	if err := ctx.Editor().SelectRooms(ids); err == nil {
		ctx.Reply("%d room(s) selected.", len(ids))
	}
	return false
})

var Clear = Define(Definition{
	Name:        "clear",
	Aliases:     []string{"escape", "esc"},
	Usage:       "clear",
	Description: "clear the selection and cancel any drag",
	Group:       GroupSelect,
}, func(ctx *Context) bool {
	ctx.Editor().ClearSelection()
	ctx.Reply("Selection cleared.")
	return false
})

var Box = Define(Definition{
	Name:        "box",
	Usage:       "box <x1> <y1> <x2> <y2> [+shift]",
	Description: "rubber-band select every room between two grid cells",
	Group:       GroupSelect,
}, func(ctx *Context) bool {
	fields, mods := splitModifiers(strings.Fields(ctx.Arg))
	if len(fields) != 4 {
		return ctx.Usage()
	}
	nums, err := parseInts(fields)
	if err != nil {
		ctx.Warn("%v", err)
		return false
	}
	x1, x2 := min(nums[0], nums[2]), max(nums[0], nums[2])
	y1, y2 := max(nums[1], nums[3]), min(nums[1], nums[3])
	// Corners sit just inside the outer nodes so edge rooms overlap.
	inset := builder.Point{X: 1, Y: 1}
	start := builder.GridToPixel(x1, y1).Add(inset)
	end := builder.GridToPixel(x2, y2).Add(builder.Point{X: builder.NodeSize - 1, Y: builder.NodeSize - 1})

	ed := ctx.Editor()
	before := ed.SelectionView().Members
	if err := ed.PointerDown(start, "", mods); err != nil {
		return false
	}
	ed.PointerMove(end)
	if err := ed.PointerUp(ctx.Ctx, end); err != nil {
		return false
	}
	after := ed.SelectionView().Members
	added := len(after)
	if mods.Shift {
		added = len(after) - len(before)
	}
	ctx.Reply("Box selected %d room(s); %d in selection.", added, len(after))
	return false
})
