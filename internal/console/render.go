package console

import (
	"fmt"
	"strings"

	"MudraBuilder/internal/builder"
)

// A room occupies three columns ("[#]") and one row; the gaps between rooms
// hold exit connectors.
const (
	cellCols   = 4
	cellRows   = 2
	axisMargin = 5

	maxWindowCols = 40
	maxWindowRows = 20
)

type gridKey struct{ x, y int }

type mapCell struct {
	room     builder.Room
	stacked  int
	surround bool
}

// RenderMap draws view as an ASCII grid, north up. Wide maps are cut to a
// window around the active room, and lines are cut at width columns when
// width is positive.
func RenderMap(view builder.MapView, width int) string {
	var out []string
	out = append(out, Style(mapHeader(view), AnsiBold, AnsiUnderline))

	cells := make(map[gridKey]*mapCell)
	byID := make(map[builder.RoomID]builder.Room)
	place := func(r builder.Room, surround bool) {
		byID[r.RoomID] = r
		key := gridKey{r.X, r.Y}
		if c, ok := cells[key]; ok {
			c.stacked++
			return
		}
		cells[key] = &mapCell{room: r, stacked: 1, surround: surround}
	}
	for _, r := range view.Rooms {
		place(r, false)
	}
	for _, r := range view.Surrounding {
		place(r, true)
	}
	lifted := make(map[gridKey]bool)
	for _, n := range view.Lifted {
		gx, gy := builder.PixelToGrid(n.Pixel)
		lifted[gridKey{gx, gy}] = true
	}
	if len(cells) == 0 && len(lifted) == 0 {
		out = append(out, "(no rooms to show)")
		return strings.Join(out, "\r\n")
	}

	first := true
	var minX, maxX, minY, maxY int
	grow := func(k gridKey) {
		if first {
			minX, maxX, minY, maxY = k.x, k.x, k.y, k.y
			first = false
			return
		}
		minX, maxX = min(minX, k.x), max(maxX, k.x)
		minY, maxY = min(minY, k.y), max(maxY, k.y)
	}
	for k := range cells {
		grow(k)
	}
	for k := range lifted {
		grow(k)
	}

	spanX := maxWindowCols
	if width > 0 {
		spanX = max(1, min(spanX, (width-axisMargin-3)/cellCols+1))
	}
	fx, fy := mapFocus(view, byID)
	minX, maxX = window(minX, maxX, fx, spanX)
	minY, maxY = window(minY, maxY, fy, maxWindowRows)
	inside := func(x, y int) bool {
		return x >= minX && x <= maxX && y >= minY && y <= maxY
	}
	clipped := false
	for k := range cells {
		if !inside(k.x, k.y) {
			delete(cells, k)
			clipped = true
		}
	}
	for k := range lifted {
		if !inside(k.x, k.y) {
			delete(lifted, k)
			clipped = true
		}
	}

	rows := (maxY-minY)*cellRows + 1
	cols := (maxX-minX)*cellCols + 3
	grid := make([][]byte, rows)
	for i := range grid {
		grid[i] = []byte(strings.Repeat(" ", cols))
	}
	set := func(row, col int, c byte) {
		if row < 0 || row >= rows || col < 0 || col >= cols {
			return
		}
		prev := grid[row][col]
		if (prev == '/' && c == '\\') || (prev == '\\' && c == '/') {
			c = 'X'
		}
		grid[row][col] = c
	}
	position := func(x, y int) (int, int) {
		return (maxY - y) * cellRows, (x - minX) * cellCols
	}

	selected := make(map[builder.RoomID]bool, len(view.Selected))
	for _, id := range view.Selected {
		selected[id] = true
	}
	for k, c := range cells {
		row, col := position(k.x, k.y)
		open, shut := byte('['), byte(']')
		if c.surround {
			open, shut = '(', ')'
		}
		set(row, col, open)
		set(row, col+1, roomGlyph(c, view.Active, selected))
		set(row, col+2, shut)
	}
	for _, conn := range view.Connections {
		from, okFrom := byID[conn.From]
		to, okTo := byID[conn.To]
		if !okFrom || !okTo {
			continue
		}
		if !inside(from.X, from.Y) {
			continue
		}
		off := conn.Direction.Offset()
		if to.X != from.X+off.X || to.Y != from.Y+off.Y {
			continue
		}
		row, col := position(from.X, from.Y)
		set(row-off.Y, col+1+off.X*2, connectorGlyph(conn.Direction))
	}
	for k := range lifted {
		row, col := position(k.x, k.y)
		set(row, col, '<')
		set(row, col+1, 'o')
		set(row, col+2, '>')
	}

	for i, line := range grid {
		label := strings.Repeat(" ", axisMargin)
		if i%cellRows == 0 {
			label = fmt.Sprintf("%4d ", maxY-i/cellRows)
		}
		out = append(out, crop(label+strings.TrimRight(string(line), " "), width))
	}
	axis := fmt.Sprintf("%sx: %d .. %d", strings.Repeat(" ", axisMargin), minX, maxX)
	if clipped {
		axis += ", more rooms beyond this window"
	}
	out = append(out, crop(axis, width))
	if view.Box != nil {
		x1, y1 := builder.PixelToGrid(builder.Point{X: view.Box.Left, Y: view.Box.Top})
		x2, y2 := builder.PixelToGrid(builder.Point{X: view.Box.Right, Y: view.Box.Bottom})
		out = append(out, fmt.Sprintf("Selecting box (%d,%d) to (%d,%d)", x1, y1, x2, y2))
	}
	out = append(out, Style("@ active  * selected  ^ up  v down  % both  + stacked  ( ) nearby area  <o> dragging", AnsiDim))
	return strings.Join(out, "\r\n")
}

// mapFocus picks the cell a clipped window centres on: the active room, then
// the dragged nodes, then the first room shown.
func mapFocus(view builder.MapView, byID map[builder.RoomID]builder.Room) (int, int) {
	if r, ok := byID[view.Active]; ok {
		return r.X, r.Y
	}
	if len(view.Lifted) > 0 {
		return builder.PixelToGrid(view.Lifted[0].Pixel)
	}
	if len(view.Rooms) > 0 {
		return view.Rooms[0].X, view.Rooms[0].Y
	}
	if len(view.Surrounding) > 0 {
		return view.Surrounding[0].X, view.Surrounding[0].Y
	}
	return 0, 0
}

// window narrows lo..hi to at most span cells around focus, which must lie in
// lo..hi. Differences are taken unsigned so extreme coordinates cannot wrap.
func window(lo, hi, focus, span int) (int, int) {
	if uint64(hi)-uint64(lo) < uint64(span) {
		return lo, hi
	}
	start := lo
	if uint64(focus)-uint64(lo) > uint64(span/2) {
		start = focus - span/2
	}
	if uint64(hi)-uint64(start) < uint64(span-1) {
		start = hi - (span - 1)
	}
	return start, start + span - 1
}

func mapHeader(view builder.MapView) string {
	level := fmt.Sprintf("Level %d", view.Level)
	if view.AllLevels {
		level = "All levels"
	}
	header := fmt.Sprintf("%s, %d room(s)", level, len(view.Rooms))
	if view.AreaID != 0 {
		header += fmt.Sprintf(", area #%d", view.AreaID)
	}
	if len(view.Surrounding) > 0 {
		header += fmt.Sprintf(", %d nearby", len(view.Surrounding))
	}
	return header
}

func roomGlyph(c *mapCell, active builder.RoomID, selected map[builder.RoomID]bool) byte {
	r := c.room
	switch {
	case r.RoomID == active:
		return '@'
	case selected[r.RoomID]:
		return '*'
	case c.stacked > 1:
		return '+'
	}
	up, down := r.HasExit(builder.Up), r.HasExit(builder.Down)
	switch {
	case up && down:
		return '%'
	case up:
		return '^'
	case down:
		return 'v'
	}
	return '#'
}

func connectorGlyph(dir builder.Direction) byte {
	switch dir {
	case builder.North, builder.South:
		return '|'
	case builder.East, builder.West:
		return '-'
	case builder.Northeast, builder.Southwest:
		return '/'
	default:
		return '\\'
	}
}

func crop(line string, width int) string {
	if width <= 0 || len(line) <= width {
		return line
	}
	return line[:width]
}
