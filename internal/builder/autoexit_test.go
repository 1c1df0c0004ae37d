package builder

import "testing"

func TestAutoExitLinksNeighbours(t *testing.T) {
	m := NewModel([]Room{
		{RoomID: "room_001", Name: "A"},
		{RoomID: "room_002", Name: "B", X: 1},
	}, nil)
	result := AutoExit(m, []RoomID{"room_001", "room_002"})
	if result.Added != 2 {
		t.Fatalf("expected 2 exits added, got %d", result.Added)
	}
	byID := make(map[RoomID]Room)
	for _, r := range result.Changed {
		byID[r.RoomID] = r
	}
	if byID["room_001"].Exits[East] != "room_002" {
		t.Fatalf("A should lead east to B: %+v", byID["room_001"].Exits)
	}
	if byID["room_002"].Exits[West] != "room_001" {
		t.Fatalf("B should lead west to A: %+v", byID["room_002"].Exits)
	}
}

func TestAutoExitIsIdempotent(t *testing.T) {
	m := NewModel([]Room{
		{RoomID: "a"},
		{RoomID: "b", X: 1},
		{RoomID: "c", Y: 1},
		{RoomID: "d", Z: 1},
	}, nil)
	ids := []RoomID{"a", "b", "c", "d"}
	first := AutoExit(m, ids)
	if first.Added != 6 {
		t.Fatalf("expected 6 exits, got %d", first.Added)
	}
	for _, r := range first.Changed {
		m.Put(r)
	}
	second := AutoExit(m, ids)
	if second.Added != 0 || len(second.Changed) != 0 {
		t.Fatalf("second run should add nothing, got %+v", second)
	}
}

func TestAutoExitNeverOverwrites(t *testing.T) {
	m := NewModel([]Room{
		{RoomID: "a", Exits: map[Direction]RoomID{East: "far"}},
		{RoomID: "b", X: 1},
		{RoomID: "far", X: 9},
	}, nil)
	result := AutoExit(m, []RoomID{"a"})
	if result.Added != 1 {
		t.Fatalf("only the reciprocal should be added, got %d", result.Added)
	}
	for _, r := range result.Changed {
		if r.RoomID == "a" {
			t.Fatalf("a should not change: %+v", r.Exits)
		}
		if r.RoomID == "b" && r.Exits[West] != "a" {
			t.Fatalf("b should gain a west exit to a: %+v", r.Exits)
		}
	}
}

func TestAutoExitSkipsDiagonals(t *testing.T) {
	m := NewModel([]Room{
		{RoomID: "a"},
		{RoomID: "b", X: 1, Y: 1},
	}, nil)
	if result := AutoExit(m, []RoomID{"a", "b"}); result.Added != 0 {
		t.Fatalf("diagonal neighbours should not be linked, got %d", result.Added)
	}
}

func TestAutoExitDoesNotMutateModel(t *testing.T) {
	m := NewModel([]Room{{RoomID: "a"}, {RoomID: "b", X: 1}}, nil)
	AutoExit(m, []RoomID{"a"})
	if a, _ := m.Room("a"); len(a.Exits) != 0 {
		t.Fatalf("model should be untouched until the store confirms")
	}
}
