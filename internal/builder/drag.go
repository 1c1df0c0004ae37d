package builder

// Lifted node affordance while a drag is in progress.
const (
	LiftedOpacity = 0.6
	LiftedStack   = 1000
)

// NodePosition is the on-canvas placement of a room node.
type NodePosition struct {
	RoomID  RoomID  `json:"room_id"`
	Pixel   Point   `json:"pixel"`
	Opacity float64 `json:"opacity"`
	Stack   int     `json:"stack"`
}

// Move is one room's committed translation.
type Move struct {
	RoomID RoomID
	From   Coord
	To     Coord
}

// MovePlan is a validated rigid translation of the dragged rooms.
type MovePlan struct {
	Delta Coord
	Moves []Move
}

// Empty reports whether the plan moves nothing.
func (p MovePlan) Empty() bool {
	return p.Delta.IsZero() || len(p.Moves) == 0
}

// Drag is the ctrl-drag state machine: idle until Begin, dragging until Drop
// or Cancel.
type Drag struct {
	dragging bool
	primary  RoomID
	captured []RoomID
	origins  map[RoomID]Coord
	grab     Point
	pointer  Point
	start    Point
}

// Dragging reports whether a drag is in progress.
func (d *Drag) Dragging() bool {
	return d.dragging
}

// Captured returns the ids being dragged.
func (d *Drag) Captured() []RoomID {
	return append([]RoomID(nil), d.captured...)
}

// Begin starts a drag from room when Ctrl is held. The whole multi-selection
// is captured when the pressed room belongs to it.
func (d *Drag) Begin(room Room, pointer Point, mods Modifiers, sel *Selection, m *Model) bool {
	if !mods.Ctrl || d.dragging {
		return false
	}
	ids := []RoomID{room.RoomID}
	if sel != nil && sel.Contains(room.RoomID) {
		ids = sel.Members()
	}
	d.origins = make(map[RoomID]Coord, len(ids))
	d.captured = d.captured[:0]
	for _, id := range ids {
		r, ok := m.Room(id)
		if !ok {
			continue
		}
		d.captured = append(d.captured, id)
		d.origins[id] = r.Coord()
	}
	if _, ok := d.origins[room.RoomID]; !ok {
		d.captured = append(d.captured, room.RoomID)
		d.origins[room.RoomID] = room.Coord()
	}
	d.primary = room.RoomID
	d.grab = pointer.Sub(GridToPixel(room.X, room.Y))
	d.pointer = pointer
	d.start = pointer
	d.dragging = true
	return true
}

// Update follows the pointer. No room data changes until Drop.
func (d *Drag) Update(pointer Point) {
	if d.dragging {
		d.pointer = pointer
	}
}

// Nodes returns the lifted node positions for rendering.
func (d *Drag) Nodes() []NodePosition {
	if !d.dragging {
		return nil
	}
	delta := d.pointer.Sub(d.start)
	out := make([]NodePosition, 0, len(d.captured))
	for _, id := range d.captured {
		origin := d.origins[id]
		base := GridToPixel(origin.X, origin.Y)
		out = append(out, NodePosition{
			RoomID:  id,
			Pixel:   base.Add(delta),
			Opacity: LiftedOpacity,
			Stack:   LiftedStack,
		})
	}
	return out
}

// Drop ends the drag at pointer and returns the validated plan. Any target
// cell held by a room outside the dragged set aborts the whole move.
func (d *Drag) Drop(pointer Point, m *Model) (MovePlan, error) {
	if !d.dragging {
		return MovePlan{}, nil
	}
	defer d.Cancel()
	d.pointer = pointer
	origin := d.origins[d.primary]
	gx, gy := PixelToGrid(pointer.Sub(d.grab))
	delta := Coord{X: gx - origin.X, Y: gy - origin.Y}
	if delta.IsZero() {
		return MovePlan{}, nil
	}
	excluded := make(map[RoomID]bool, len(d.captured))
	for _, id := range d.captured {
		excluded[id] = true
	}
	plan := MovePlan{Delta: delta, Moves: make([]Move, 0, len(d.captured))}
	for _, id := range d.captured {
		from := d.origins[id]
		to := from.Add(delta)
		if occupant, taken := m.OccupantOutside(to, excluded); taken {
			return MovePlan{}, &OccupiedError{Coord: to, Occupant: occupant}
		}
		plan.Moves = append(plan.Moves, Move{RoomID: id, From: from, To: to})
	}
	return plan, nil
}

// Cancel returns to idle and restores visual state.
func (d *Drag) Cancel() {
	d.dragging = false
	d.primary = ""
	d.captured = nil
	d.origins = nil
}

// PlanTranslation validates moving ids by delta without a pointer gesture.
func PlanTranslation(m *Model, ids []RoomID, delta Coord) (MovePlan, error) {
	if delta.IsZero() || len(ids) == 0 {
		return MovePlan{}, nil
	}
	excluded := make(map[RoomID]bool, len(ids))
	for _, id := range ids {
		excluded[id] = true
	}
	plan := MovePlan{Delta: delta, Moves: make([]Move, 0, len(ids))}
	for _, id := range ids {
		r, ok := m.Room(id)
		if !ok {
			return MovePlan{}, ErrUnknownRoom
		}
		to := r.Coord().Add(delta)
		if occupant, taken := m.OccupantOutside(to, excluded); taken {
			return MovePlan{}, &OccupiedError{Coord: to, Occupant: occupant}
		}
		plan.Moves = append(plan.Moves, Move{RoomID: id, From: r.Coord(), To: to})
	}
	return plan, nil
}
