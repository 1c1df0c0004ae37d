package builder

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

const (
	// CellSize is the pixel pitch of one grid cell.
	CellSize = 50
	// OriginOffset is the pixel position of grid (0, 0): canvas centre plus padding.
	OriginOffset = 1010
	// NodeSize is the pixel footprint of a rendered room node.
	NodeSize = 40
	// SurroundingRadius bounds rooms shown around the filtered area, in cells.
	SurroundingRadius = 30
)

// Point is a pixel position on the map canvas.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sub returns the vector from o to p.
func (p Point) Sub(o Point) Point {
	return Point{X: p.X - o.X, Y: p.Y - o.Y}
}

// Add returns p translated by o.
func (p Point) Add(o Point) Point {
	return Point{X: p.X + o.X, Y: p.Y + o.Y}
}

// GridToPixel maps a grid cell to the top-left pixel of its node. The Y axis
// is inverted: north is up on screen.
func GridToPixel(x, y int) Point {
	return Point{
		X: float64(x*CellSize + OriginOffset),
		Y: float64(-y*CellSize + OriginOffset),
	}
}

// PixelToGrid is the exact inverse of GridToPixel, rounding to the nearest cell.
func PixelToGrid(p Point) (int, int) {
	gx := roundHalfUp((p.X - OriginOffset) / CellSize)
	gy := roundHalfUp(-(p.Y - OriginOffset) / CellSize)
	return gx, gy
}

// ClickToGrid resolves a canvas click to the cell a new room is created in.
// X floors and Y ceils so the cell matches the rendered grid lines.
func ClickToGrid(p Point) (int, int) {
	gx := int(math.Floor((p.X - OriginOffset) / CellSize))
	gy := int(math.Ceil(-(p.Y - OriginOffset) / CellSize))
	return gx, gy
}

// roundHalfUp rounds .5 towards positive infinity, matching canvas maths.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

// Rect is an axis-aligned pixel rectangle.
type Rect struct {
	Left, Top, Right, Bottom float64
}

// RectFromPoints normalises two corners into a rectangle.
func RectFromPoints(a, b Point) Rect {
	return Rect{
		Left:   math.Min(a.X, b.X),
		Top:    math.Min(a.Y, b.Y),
		Right:  math.Max(a.X, b.X),
		Bottom: math.Max(a.Y, b.Y),
	}
}

// Width returns the horizontal extent.
func (r Rect) Width() float64 { return r.Right - r.Left }

// Height returns the vertical extent.
func (r Rect) Height() float64 { return r.Bottom - r.Top }

// Overlaps reports strict overlap; touching edges do not count.
func (r Rect) Overlaps(o Rect) bool {
	return r.Left < o.Right && r.Right > o.Left && r.Top < o.Bottom && r.Bottom > o.Top
}

// Footprint returns the pixel bbox of a room node.
func Footprint(r Room) Rect {
	p := GridToPixel(r.X, r.Y)
	return Rect{Left: p.X, Top: p.Y, Right: p.X + NodeSize, Bottom: p.Y + NodeSize}
}

// Level selects which z-plane is shown.
type Level struct {
	All bool
	Z   int
}

// AllLevels shows every z-plane at once.
var AllLevels = Level{All: true}

// AtLevel shows a single z-plane.
func AtLevel(z int) Level {
	return Level{Z: z}
}

// ParseLevel accepts "all" or an integer.
func ParseLevel(s string) (Level, error) {
	token := strings.ToLower(strings.TrimSpace(s))
	if token == "all" || token == "*" {
		return AllLevels, nil
	}
	z, err := strconv.Atoi(token)
	if err != nil {
		return Level{}, fmt.Errorf("level must be a number or 'all'")
	}
	return AtLevel(z), nil
}

// Contains reports whether a room on plane z is shown.
func (l Level) Contains(z int) bool {
	return l.All || l.Z == z
}

// CreateZ is the plane new rooms land on; showing all levels creates on 0.
func (l Level) CreateZ() int {
	if l.All {
		return 0
	}
	return l.Z
}

func (l Level) String() string {
	if l.All {
		return "all"
	}
	return strconv.Itoa(l.Z)
}

// Model is the in-memory room collection. Order is the order rooms were loaded
// or added, which keeps selection and rendering stable between reloads.
type Model struct {
	rooms []Room
	index map[RoomID]int
	areas []Area
}

// NewModel builds a model from the provided rooms.
func NewModel(rooms []Room, areas []Area) *Model {
	m := &Model{}
	m.Replace(rooms, areas)
	return m
}

// Replace swaps in a freshly loaded room and area list.
func (m *Model) Replace(rooms []Room, areas []Area) {
	m.rooms = make([]Room, 0, len(rooms))
	m.index = make(map[RoomID]int, len(rooms))
	for _, r := range rooms {
		m.put(r)
	}
	m.areas = append([]Area(nil), areas...)
}

func (m *Model) put(r Room) {
	r = r.Clone()
	if idx, ok := m.index[r.RoomID]; ok {
		m.rooms[idx] = r
		return
	}
	m.index[r.RoomID] = len(m.rooms)
	m.rooms = append(m.rooms, r)
}

// Put inserts or replaces a room.
func (m *Model) Put(r Room) {
	if m.index == nil {
		m.index = make(map[RoomID]int)
	}
	m.put(r)
}

// Remove deletes a room by id.
func (m *Model) Remove(id RoomID) {
	idx, ok := m.index[id]
	if !ok {
		return
	}
	m.rooms = append(m.rooms[:idx], m.rooms[idx+1:]...)
	delete(m.index, id)
	for i := idx; i < len(m.rooms); i++ {
		m.index[m.rooms[i].RoomID] = i
	}
}

// Len returns the number of rooms.
func (m *Model) Len() int {
	return len(m.rooms)
}

// Room returns a copy of the room with the given id.
func (m *Model) Room(id RoomID) (Room, bool) {
	idx, ok := m.index[id]
	if !ok {
		return Room{}, false
	}
	return m.rooms[idx].Clone(), true
}

// Rooms returns copies of every room in model order.
func (m *Model) Rooms() []Room {
	out := make([]Room, len(m.rooms))
	for i, r := range m.rooms {
		out[i] = r.Clone()
	}
	return out
}

// Areas returns the loaded areas.
func (m *Model) Areas() []Area {
	return append([]Area(nil), m.areas...)
}

// Area resolves an area by its internal id.
func (m *Model) Area(id int) (Area, bool) {
	for _, a := range m.areas {
		if a.ID == id {
			return a, true
		}
	}
	return Area{}, false
}

// AreaByKey resolves an area by its string area_id.
func (m *Model) AreaByKey(key string) (Area, bool) {
	for _, a := range m.areas {
		if strings.EqualFold(a.AreaID, key) {
			return a, true
		}
	}
	return Area{}, false
}

// FindAt returns the room occupying the cell, if any. A linear scan is fine
// for maps of a few hundred rooms.
func (m *Model) FindAt(c Coord) (Room, bool) {
	for _, r := range m.rooms {
		if r.X == c.X && r.Y == c.Y && r.Z == c.Z {
			return r.Clone(), true
		}
	}
	return Room{}, false
}

// OccupantOutside returns a room at c that is not in the excluded set.
func (m *Model) OccupantOutside(c Coord, excluded map[RoomID]bool) (Room, bool) {
	for _, r := range m.rooms {
		if excluded[r.RoomID] {
			continue
		}
		if r.X == c.X && r.Y == c.Y && r.Z == c.Z {
			return r.Clone(), true
		}
	}
	return Room{}, false
}

// ZLevels lists the distinct z values present, ascending.
func (m *Model) ZLevels() []int {
	seen := make(map[int]bool)
	levels := make([]int, 0)
	for _, r := range m.rooms {
		if seen[r.Z] {
			continue
		}
		seen[r.Z] = true
		levels = append(levels, r.Z)
	}
	sort.Ints(levels)
	return levels
}

// Filter returns the rooms shown for a level and optional area (0 = any).
func (m *Model) Filter(level Level, areaID int) []Room {
	out := make([]Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		if !level.Contains(r.Z) {
			continue
		}
		if areaID != 0 && r.AreaID != areaID {
			continue
		}
		out = append(out, r.Clone())
	}
	return out
}

// Surrounding returns rooms outside shown that sit on the level and within
// SurroundingRadius cells of any shown room.
func (m *Model) Surrounding(shown []Room, level Level) []Room {
	if len(shown) == 0 {
		return nil
	}
	inShown := make(map[RoomID]bool, len(shown))
	for _, r := range shown {
		inShown[r.RoomID] = true
	}
	out := make([]Room, 0)
	for _, r := range m.rooms {
		if inShown[r.RoomID] || !level.Contains(r.Z) {
			continue
		}
		for _, s := range shown {
			dx := float64(r.X - s.X)
			dy := float64(r.Y - s.Y)
			dz := float64(r.Z - s.Z)
			if math.Sqrt(dx*dx+dy*dy+dz*dz) <= SurroundingRadius {
				out = append(out, r.Clone())
				break
			}
		}
	}
	return out
}

// NextRoomID returns the first unused room_NNN identifier, filling gaps from 1.
func (m *Model) NextRoomID() RoomID {
	return nextRoomID(m.rooms, nil)
}

func nextRoomID(rooms []Room, reserved map[RoomID]bool) RoomID {
	used := make(map[int]bool, len(rooms))
	for _, r := range rooms {
		if n, ok := roomNumber(r.RoomID); ok {
			used[n] = true
		}
	}
	for id := range reserved {
		if n, ok := roomNumber(id); ok {
			used[n] = true
		}
	}
	for n := 1; ; n++ {
		if !used[n] {
			return RoomID(fmt.Sprintf("room_%03d", n))
		}
	}
}

func roomNumber(id RoomID) (int, bool) {
	s := string(id)
	if !strings.HasPrefix(s, "room_") {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(s, "room_"))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
