package commands

import (
	"fmt"
	"strconv"
	"strings"

	"MudraBuilder/internal/builder"
	"MudraBuilder/internal/console"
)

// splitModifiers pulls +ctrl and +shift tokens out of fields.
func splitModifiers(fields []string) ([]string, builder.Modifiers) {
	var mods builder.Modifiers
	rest := make([]string, 0, len(fields))
	for _, f := range fields {
		switch strings.ToLower(f) {
		case "+ctrl", "+c":
			mods.Ctrl = true
		case "+shift", "+s":
			mods.Shift = true
		default:
			rest = append(rest, f)
		}
	}
	return rest, mods
}

// maxOperand allows a delta spanning the whole grid; the editor bounds the
// resulting positions.
const maxOperand = 2 * builder.MaxCoord

func parseInts(fields []string) ([]int, error) {
	out := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", f)
		}
		if n < -maxOperand || n > maxOperand {
			return nil, fmt.Errorf("%q is out of range", f)
		}
		out[i] = n
	}
	return out, nil
}

// parseCoord reads "x y" or "x y z"; z defaults to defaultZ.
func parseCoord(fields []string, defaultZ int) (builder.Coord, error) {
	if len(fields) != 2 && len(fields) != 3 {
		return builder.Coord{}, fmt.Errorf("expected x y [z]")
	}
	nums, err := parseInts(fields)
	if err != nil {
		return builder.Coord{}, err
	}
	c := builder.Coord{X: nums[0], Y: nums[1], Z: defaultZ}
	if len(nums) == 3 {
		c.Z = nums[2]
	}
	return c, nil
}

func parseToggle(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "yes", "true", "enable", "enabled":
		return true, true
	case "off", "no", "false", "disable", "disabled":
		return false, true
	}
	return false, false
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// cellCenter is the pixel at the middle of a room node in grid cell (x, y).
func cellCenter(x, y int) builder.Point {
	return builder.GridToPixel(x, y).Add(builder.Point{X: builder.NodeSize / 2, Y: builder.NodeSize / 2})
}

func roomLine(r builder.Room) string {
	return fmt.Sprintf("%s %s (%d, %d, %d)", console.Highlight(string(r.RoomID)), r.Name, r.X, r.Y, r.Z)
}

// parseKeyValues reads key=value pairs; values may be double-quoted to
// include spaces.
func parseKeyValues(s string) (map[string]string, error) {
	out := make(map[string]string)
	s = strings.TrimSpace(s)
	for s != "" {
		eq := strings.IndexByte(s, '=')
		if eq <= 0 {
			return nil, fmt.Errorf("expected key=value near %q", s)
		}
		key := strings.ToLower(strings.TrimSpace(s[:eq]))
		if strings.ContainsAny(key, " \t") {
			return nil, fmt.Errorf("expected key=value near %q", s)
		}
		s = s[eq+1:]
		var value string
		if strings.HasPrefix(s, `"`) {
			end := strings.IndexByte(s[1:], '"')
			if end < 0 {
				return nil, fmt.Errorf("unterminated quote for %s", key)
			}
			value = s[1 : end+1]
			s = s[end+2:]
		} else if sp := strings.IndexAny(s, " \t"); sp >= 0 {
			value, s = s[:sp], s[sp:]
		} else {
			value, s = s, ""
		}
		out[key] = value
		s = strings.TrimSpace(s)
	}
	return out, nil
}

// parseDirection wraps builder.ParseDirection with a designer-facing error.
func parseDirection(s string) (builder.Direction, error) {
	dir, ok := builder.ParseDirection(s)
	if !ok {
		return "", fmt.Errorf("unknown direction %q", s)
	}
	return dir, nil
}
