package builder

import (
	"fmt"
	"sort"
	"strings"
)

// RoomID is the stable string identity of a room (for example "room_007").
type RoomID string

// Direction names an exit slot on a room.
type Direction string

const (
	North     Direction = "north"
	South     Direction = "south"
	East      Direction = "east"
	West      Direction = "west"
	Up        Direction = "up"
	Down      Direction = "down"
	Northeast Direction = "northeast"
	Northwest Direction = "northwest"
	Southeast Direction = "southeast"
	Southwest Direction = "southwest"
)

// CardinalDirections are the axis-aligned directions considered by auto-exit.
var CardinalDirections = []Direction{North, South, East, West, Up, Down}

// AllDirections includes the diagonals used when walking new rooms into place.
var AllDirections = []Direction{North, South, East, West, Northeast, Northwest, Southeast, Southwest, Up, Down}

var directionOffsets = map[Direction]Coord{
	North:     {X: 0, Y: 1, Z: 0},
	South:     {X: 0, Y: -1, Z: 0},
	East:      {X: 1, Y: 0, Z: 0},
	West:      {X: -1, Y: 0, Z: 0},
	Up:        {X: 0, Y: 0, Z: 1},
	Down:      {X: 0, Y: 0, Z: -1},
	Northeast: {X: 1, Y: 1, Z: 0},
	Northwest: {X: -1, Y: 1, Z: 0},
	Southeast: {X: 1, Y: -1, Z: 0},
	Southwest: {X: -1, Y: -1, Z: 0},
}

var directionOpposites = map[Direction]Direction{
	North:     South,
	South:     North,
	East:      West,
	West:      East,
	Up:        Down,
	Down:      Up,
	Northeast: Southwest,
	Northwest: Southeast,
	Southeast: Northwest,
	Southwest: Northeast,
}

var directionAliases = map[string]Direction{
	"n":  North,
	"s":  South,
	"e":  East,
	"w":  West,
	"u":  Up,
	"d":  Down,
	"ne": Northeast,
	"nw": Northwest,
	"se": Southeast,
	"sw": Southwest,
}

// ParseDirection accepts a full direction name or its short form.
func ParseDirection(s string) (Direction, bool) {
	token := strings.ToLower(strings.TrimSpace(s))
	if dir, ok := directionAliases[token]; ok {
		return dir, true
	}
	dir := Direction(token)
	if _, ok := directionOffsets[dir]; ok {
		return dir, true
	}
	return "", false
}

// Valid reports whether d is one of the known directions.
func (d Direction) Valid() bool {
	_, ok := directionOffsets[d]
	return ok
}

// Opposite returns the reverse direction, or "" for unknown values.
func (d Direction) Opposite() Direction {
	return directionOpposites[d]
}

// Offset returns the unit grid step for the direction.
func (d Direction) Offset() Coord {
	return directionOffsets[d]
}

// MaxCoord bounds every axis of a room's position.
const MaxCoord = 100_000

// Coord is a logical grid position.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// Add returns c translated by o.
func (c Coord) Add(o Coord) Coord {
	return Coord{X: c.X + o.X, Y: c.Y + o.Y, Z: c.Z + o.Z}
}

// Sub returns the delta from o to c.
func (c Coord) Sub(o Coord) Coord {
	return Coord{X: c.X - o.X, Y: c.Y - o.Y, Z: c.Z - o.Z}
}

// IsZero reports whether the coordinate is the origin.
func (c Coord) IsZero() bool {
	return c == Coord{}
}

// InBounds reports whether every axis lies within plus or minus MaxCoord.
func (c Coord) InBounds() bool {
	for _, v := range [...]int{c.X, c.Y, c.Z} {
		if v < -MaxCoord || v > MaxCoord {
			return false
		}
	}
	return true
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d, %d, %d)", c.X, c.Y, c.Z)
}

// Lighting describes a room's ambient light level.
type Lighting string

const (
	LightingDark   Lighting = "dark"
	LightingDim    Lighting = "dim"
	LightingNormal Lighting = "normal"
	LightingBright Lighting = "bright"
)

// ParseLighting normalises a lighting name. The empty string maps to normal.
func ParseLighting(s string) (Lighting, bool) {
	switch Lighting(strings.ToLower(strings.TrimSpace(s))) {
	case "", LightingNormal:
		return LightingNormal, true
	case LightingDark:
		return LightingDark, true
	case LightingDim:
		return LightingDim, true
	case LightingBright:
		return LightingBright, true
	}
	return "", false
}

// Room is a placeable node on the map grid.
type Room struct {
	RoomID      RoomID               `json:"room_id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	AreaID      int                  `json:"area_id,omitempty"`
	X           int                  `json:"x"`
	Y           int                  `json:"y"`
	Z           int                  `json:"z"`
	Exits       map[Direction]RoomID `json:"exits"`
	Doors       map[Direction]Door   `json:"doors,omitempty"`
	Lighting    Lighting             `json:"lighting,omitempty"`
}

// Coord returns the room's grid position.
func (r Room) Coord() Coord {
	return Coord{X: r.X, Y: r.Y, Z: r.Z}
}

// MoveTo returns a copy of the room placed at c.
func (r Room) MoveTo(c Coord) Room {
	moved := r.Clone()
	moved.X, moved.Y, moved.Z = c.X, c.Y, c.Z
	return moved
}

// Clone deep-copies the room so snapshots never share exit or door maps.
func (r Room) Clone() Room {
	out := r
	out.Exits = cloneExits(r.Exits)
	if out.Exits == nil {
		out.Exits = make(map[Direction]RoomID)
	}
	if r.Doors != nil {
		out.Doors = make(map[Direction]Door, len(r.Doors))
		for dir, door := range r.Doors {
			out.Doors[dir] = door.Clone()
		}
	}
	return out
}

// HasExit reports whether an exit is recorded in the direction.
func (r Room) HasExit(dir Direction) bool {
	target, ok := r.Exits[dir]
	return ok && target != ""
}

// SortedExits lists the room's exit directions in a deterministic order.
func (r Room) SortedExits() []Direction {
	dirs := make([]Direction, 0, len(r.Exits))
	for dir := range r.Exits {
		dirs = append(dirs, dir)
	}
	sort.Slice(dirs, func(i, j int) bool { return dirs[i] < dirs[j] })
	return dirs
}

// Validate checks the shape of a room received from or sent to the API.
func (r Room) Validate() error {
	var problems []string
	if strings.TrimSpace(string(r.RoomID)) == "" {
		problems = append(problems, "room_id is required")
	}
	for dir, target := range r.Exits {
		if !dir.Valid() {
			problems = append(problems, fmt.Sprintf("unknown exit direction %q", dir))
		}
		if target == "" {
			problems = append(problems, fmt.Sprintf("exit %s has no destination", dir))
		}
	}
	if r.Lighting != "" {
		if _, ok := ParseLighting(string(r.Lighting)); !ok {
			problems = append(problems, fmt.Sprintf("unknown lighting %q", r.Lighting))
		}
	}
	for dir, door := range r.Doors {
		if !dir.Valid() {
			problems = append(problems, fmt.Sprintf("unknown door direction %q", dir))
			continue
		}
		if err := door.Validate(); err != nil {
			problems = append(problems, fmt.Sprintf("door %s: %v", dir, err))
		}
	}
	if len(problems) > 0 {
		sort.Strings(problems)
		return &ValidationError{Subject: "room " + string(r.RoomID), Problems: problems}
	}
	return nil
}

func cloneExits(exits map[Direction]RoomID) map[Direction]RoomID {
	if exits == nil {
		return nil
	}
	clone := make(map[Direction]RoomID, len(exits))
	for dir, dest := range exits {
		clone[dir] = dest
	}
	return clone
}

// Area groups rooms into a named zone. ID is the server-side key rooms refer to.
type Area struct {
	ID          int    `json:"id,omitempty"`
	AreaID      string `json:"area_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}
