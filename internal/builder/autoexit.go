package builder

// AutoExitResult holds the rooms changed by AutoExit and how many exits were added.
type AutoExitResult struct {
	Changed []Room
	Added   int
}

// AutoExit fills missing north/south/east/west/up/down exits between each
// selected room and its spatial neighbours. Existing exits are never replaced,
// so hand-made one-way or non-adjacent exits survive. Diagonals are not linked.
func AutoExit(m *Model, selected []RoomID) AutoExitResult {
	working := make(map[RoomID]Room)
	order := make([]RoomID, 0)
	load := func(id RoomID) (Room, bool) {
		if r, ok := working[id]; ok {
			return r, true
		}
		r, ok := m.Room(id)
		return r, ok
	}
	changed := make(map[RoomID]bool)
	store := func(r Room) {
		if !changed[r.RoomID] {
			changed[r.RoomID] = true
			order = append(order, r.RoomID)
		}
		working[r.RoomID] = r
	}

	added := 0
	for _, id := range selected {
		room, ok := load(id)
		if !ok {
			continue
		}
		for _, dir := range CardinalDirections {
			neighbour, found := m.FindAt(room.Coord().Add(dir.Offset()))
			if !found || neighbour.RoomID == room.RoomID {
				continue
			}
			if !room.HasExit(dir) {
				room.Exits[dir] = neighbour.RoomID
				store(room)
				added++
			}
			neighbour, _ = load(neighbour.RoomID)
			back := dir.Opposite()
			if !neighbour.HasExit(back) {
				neighbour.Exits[back] = room.RoomID
				store(neighbour)
				added++
			}
		}
	}

	out := AutoExitResult{Added: added, Changed: make([]Room, 0, len(order))}
	for _, id := range order {
		out.Changed = append(out.Changed, working[id])
	}
	return out
}
