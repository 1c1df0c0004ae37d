package commands

import (
	"fmt"
	"strconv"
	"strings"

	"MudraBuilder/internal/builder"
)

var DoorCmd = Define(Definition{
	Name:        "door",
	Usage:       "door <room_id> <direction> [set key=value... | remove]",
	Description: "show, save or remove the door on an exit (keys: id name desc key difficulty flags)",
	Group:       GroupEdit,
}, func(ctx *Context) bool {
	fields := strings.Fields(ctx.Arg)
	if len(fields) < 2 {
		return ctx.Usage()
	}
	ed := ctx.Editor()
	id := builder.RoomID(fields[0])
	room, ok := ed.Room(id)
	if !ok {
		ctx.Warn("Unknown room %s.", id)
		return false
	}
	dir, err := parseDirection(fields[1])
	if err != nil {
		ctx.Warn("%v", err)
		return false
	}
	existing, hasDoor := room.Doors[dir]

	if len(fields) == 2 {
		if !hasDoor {
			ctx.Reply("%s has no door to the %s.", id, dir)
			return false
		}
		ctx.Reply("%s", describeDoor(existing))
		return false
	}

	switch strings.ToLower(fields[2]) {
	case "remove", "delete", "rm":
		if err := ed.RemoveDoor(ctx.Ctx, id, dir); err == nil {
			ctx.Reply("Removed the %s door of %s.", dir, id)
		}
		return false
	case "set":
	default:
		return ctx.Usage()
	}

	rest := ctx.Arg
	if i := strings.Index(strings.ToLower(rest), " set"); i >= 0 {
		rest = rest[i+len(" set"):]
	}
	values, err := parseKeyValues(rest)
	if err != nil {
		ctx.Warn("%v", err)
		return false
	}
	door := existing.Clone()
	if err := applyDoorValues(&door, values); err != nil {
		ctx.Warn("%v", err)
		return false
	}
	if err := ed.SaveDoor(ctx.Ctx, id, dir, door); err == nil {
		ctx.Reply("Saved door %s on the %s exit of %s.", door.DoorID, dir, id)
	}
	return false
})

func applyDoorValues(door *builder.Door, values map[string]string) error {
	for key, value := range values {
		switch key {
		case "id", "door_id":
			door.DoorID = value
		case "name":
			door.Name = value
		case "desc", "description":
			door.Description = value
		case "key", "key_id":
			door.KeyID = value
		case "difficulty", "lock_difficulty":
			n, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("difficulty must be a number")
			}
			door.LockDifficulty = n
		case "flags":
			door.Flags = builder.ParseDoorFlags(value)
		default:
			return fmt.Errorf("unknown door field %q", key)
		}
	}
	return nil
}

func describeDoor(d builder.Door) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Door %s: %s", d.DoorID, d.Name)
	if d.Description != "" {
		fmt.Fprintf(&b, "\r\n  %s", d.Description)
	}
	if d.KeyID != "" {
		fmt.Fprintf(&b, "\r\n  key: %s", d.KeyID)
	}
	fmt.Fprintf(&b, "\r\n  difficulty: %d", d.LockDifficulty)
	if len(d.Flags) > 0 {
		flags := make([]string, len(d.Flags))
		for i, f := range d.Flags {
			flags[i] = string(f)
		}
		fmt.Fprintf(&b, "\r\n  flags: %s", strings.Join(flags, ", "))
	}
	return b.String()
}
