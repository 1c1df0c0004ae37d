package builder

// Modifiers carries the keyboard state of a pointer gesture.
type Modifiers struct {
	Ctrl  bool
	Shift bool
}

// BoxThreshold is the pixel extent a selection box must exceed on either axis
// to count as a drag rather than a click.
const BoxThreshold = 5

// Selection tracks the active room and the multi-selection by id only; ids are
// resolved against the Model whenever a room is needed.
type Selection struct {
	active   RoomID
	multi    []RoomID
	boxing   bool
	boxStart Point
	boxEnd   Point
}

// Active returns the active room id.
func (s *Selection) Active() (RoomID, bool) {
	return s.active, s.active != ""
}

// Members returns a copy of the multi-selection in selection order.
func (s *Selection) Members() []RoomID {
	return append([]RoomID(nil), s.multi...)
}

// Len returns the size of the multi-selection.
func (s *Selection) Len() int {
	return len(s.multi)
}

// Contains reports multi-selection membership.
func (s *Selection) Contains(id RoomID) bool {
	return s.indexOf(id) >= 0
}

func (s *Selection) indexOf(id RoomID) int {
	for i, m := range s.multi {
		if m == id {
			return i
		}
	}
	return -1
}

func (s *Selection) add(id RoomID) bool {
	if s.Contains(id) {
		return false
	}
	s.multi = append(s.multi, id)
	return true
}

// Click applies a click on a room with the given modifiers.
func (s *Selection) Click(id RoomID, mods Modifiers) {
	switch {
	case mods.Ctrl:
		if idx := s.indexOf(id); idx >= 0 {
			s.multi = append(s.multi[:idx], s.multi[idx+1:]...)
			if s.active == id {
				s.active = ""
				if len(s.multi) > 0 {
					s.active = s.multi[0]
				}
			}
			return
		}
		s.multi = append(s.multi, id)
		s.active = id
	case mods.Shift:
		s.add(id)
		s.active = id
	default:
		s.multi = nil
		s.active = id
	}
}

// Select makes id the only selected room.
func (s *Selection) Select(id RoomID) {
	s.Click(id, Modifiers{})
}

// SelectAll replaces the multi-selection with ids; the first becomes active.
func (s *Selection) SelectAll(ids []RoomID) {
	s.multi = nil
	s.active = ""
	for _, id := range ids {
		s.add(id)
	}
	if len(s.multi) > 0 {
		s.active = s.multi[0]
	}
}

// Clear drops every selection, including an in-progress box.
func (s *Selection) Clear() {
	s.active = ""
	s.multi = nil
	s.boxing = false
}

// Boxing reports whether a selection box is being dragged.
func (s *Selection) Boxing() bool {
	return s.boxing
}

// Box returns the current selection box rectangle.
func (s *Selection) Box() (Rect, bool) {
	if !s.boxing {
		return Rect{}, false
	}
	return RectFromPoints(s.boxStart, s.boxEnd), true
}

// BeginBox starts a box at p. Without Shift the existing selection is dropped.
func (s *Selection) BeginBox(p Point, mods Modifiers) {
	if !mods.Shift {
		s.active = ""
		s.multi = nil
	}
	s.boxing = true
	s.boxStart = p
	s.boxEnd = p
}

// UpdateBox stretches the box to p.
func (s *Selection) UpdateBox(p Point) {
	if s.boxing {
		s.boxEnd = p
	}
}

// BoxResult describes how a box gesture ended.
type BoxResult struct {
	// Click is true when the box stayed under BoxThreshold and should be
	// treated as a plain canvas click.
	Click bool
	Added []RoomID
}

// EndBox finishes the box at p and appends every shown room whose footprint
// overlaps it.
func (s *Selection) EndBox(p Point, rooms []Room, level Level) BoxResult {
	if !s.boxing {
		return BoxResult{}
	}
	s.boxing = false
	s.boxEnd = p
	box := RectFromPoints(s.boxStart, s.boxEnd)
	if box.Width() <= BoxThreshold && box.Height() <= BoxThreshold {
		return BoxResult{Click: true}
	}
	var added []RoomID
	for _, r := range rooms {
		if !level.Contains(r.Z) {
			continue
		}
		if !Footprint(r).Overlaps(box) {
			continue
		}
		if s.add(r.RoomID) {
			added = append(added, r.RoomID)
		}
	}
	return BoxResult{Added: added}
}

// Prune drops ids that no longer exist in the model.
func (s *Selection) Prune(m *Model) {
	if s.active != "" {
		if _, ok := m.Room(s.active); !ok {
			s.active = ""
		}
	}
	kept := s.multi[:0]
	for _, id := range s.multi {
		if _, ok := m.Room(id); ok {
			kept = append(kept, id)
		}
	}
	s.multi = kept
	if len(s.multi) == 0 {
		s.multi = nil
	}
}

// Targets returns the rooms a batch command applies to: the multi-selection,
// or the active room when nothing is multi-selected.
func (s *Selection) Targets() []RoomID {
	if len(s.multi) > 0 {
		return s.Members()
	}
	if s.active != "" {
		return []RoomID{s.active}
	}
	return nil
}

// Controls summarises which selection-dependent commands are available.
type Controls struct {
	Copy     bool `json:"copy"`
	Delete   bool `json:"delete"`
	AutoExit bool `json:"auto_exit"`
	AutoWalk bool `json:"auto_walk"`
	Undo     bool `json:"undo"`
}

// Controls computes control enablement; undoAvailable comes from the undo log.
func (s *Selection) Controls(undoAvailable bool) Controls {
	hasMulti := len(s.multi) > 0
	return Controls{
		Copy:     hasMulti,
		Delete:   hasMulti || s.active != "",
		AutoExit: hasMulti,
		AutoWalk: s.active != "" && len(s.multi) <= 1,
		Undo:     undoAvailable,
	}
}
