package builder

import "testing"

func TestGridPixelRoundTrip(t *testing.T) {
	for x := -25; x <= 25; x++ {
		for y := -25; y <= 25; y++ {
			gx, gy := PixelToGrid(GridToPixel(x, y))
			if gx != x || gy != y {
				t.Fatalf("round trip of (%d, %d) gave (%d, %d)", x, y, gx, gy)
			}
		}
	}
}

func TestGridToPixelInvertsY(t *testing.T) {
	origin := GridToPixel(0, 0)
	if origin.X != OriginOffset || origin.Y != OriginOffset {
		t.Fatalf("unexpected origin pixel: %+v", origin)
	}
	north := GridToPixel(0, 1)
	if north.Y != OriginOffset-CellSize {
		t.Fatalf("north should be drawn above the origin, got %+v", north)
	}
	east := GridToPixel(1, 0)
	if east.X != OriginOffset+CellSize {
		t.Fatalf("east should be drawn right of the origin, got %+v", east)
	}
}

func TestPixelToGridRoundsHalfUp(t *testing.T) {
	if gx, _ := PixelToGrid(Point{X: OriginOffset + 24, Y: OriginOffset}); gx != 0 {
		t.Fatalf("24px right of origin should round to 0, got %d", gx)
	}
	if gx, _ := PixelToGrid(Point{X: OriginOffset + 25, Y: OriginOffset}); gx != 1 {
		t.Fatalf("25px right of origin should round to 1, got %d", gx)
	}
	if _, gy := PixelToGrid(Point{X: OriginOffset, Y: OriginOffset + 25}); gy != 0 {
		t.Fatalf("25px below origin should round to 0, got %d", gy)
	}
	if _, gy := PixelToGrid(Point{X: OriginOffset, Y: OriginOffset + 26}); gy != -1 {
		t.Fatalf("26px below origin should round to -1, got %d", gy)
	}
}

func TestClickToGridFixtures(t *testing.T) {
	cases := []struct {
		name  string
		click Point
		wantX int
		wantY int
	}{
		{name: "origin", click: Point{X: 1010, Y: 1010}, wantX: 0, wantY: 0},
		{name: "inside origin cell", click: Point{X: 1035, Y: 1035}, wantX: 0, wantY: 0},
		{name: "left of origin", click: Point{X: 1009, Y: 1070}, wantX: -1, wantY: -1},
		{name: "north east", click: Point{X: 1085, Y: 935}, wantX: 1, wantY: 2},
		{name: "far south west", click: Point{X: 860, Y: 1160}, wantX: -3, wantY: -3},
	}
	for _, tc := range cases {
		gx, gy := ClickToGrid(tc.click)
		if gx != tc.wantX || gy != tc.wantY {
			t.Fatalf("%s: ClickToGrid(%+v) = (%d, %d), want (%d, %d)", tc.name, tc.click, gx, gy, tc.wantX, tc.wantY)
		}
	}
}

func TestRectOverlapIsStrict(t *testing.T) {
	a := Rect{Left: 0, Top: 0, Right: 10, Bottom: 10}
	touching := Rect{Left: 10, Top: 0, Right: 20, Bottom: 10}
	if a.Overlaps(touching) {
		t.Fatalf("touching rectangles should not overlap")
	}
	inside := Rect{Left: 9, Top: 9, Right: 12, Bottom: 12}
	if !a.Overlaps(inside) {
		t.Fatalf("expected overlap")
	}
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("all")
	if err != nil || !level.All {
		t.Fatalf("expected all levels, got %+v, %v", level, err)
	}
	level, err = ParseLevel(" -2 ")
	if err != nil || level.All || level.Z != -2 {
		t.Fatalf("expected level -2, got %+v, %v", level, err)
	}
	if _, err := ParseLevel("upstairs"); err == nil {
		t.Fatalf("expected error for non-numeric level")
	}
	if AllLevels.CreateZ() != 0 {
		t.Fatalf("all levels should create on z=0")
	}
}

func TestModelFindAtAndRemove(t *testing.T) {
	m := NewModel([]Room{
		{RoomID: "room_001", Name: "A"},
		{RoomID: "room_002", Name: "B", X: 1},
		{RoomID: "room_003", Name: "C", Z: 1},
	}, nil)
	r, ok := m.FindAt(Coord{X: 1})
	if !ok || r.RoomID != "room_002" {
		t.Fatalf("expected room_002 at (1, 0, 0), got %+v", r)
	}
	if _, ok := m.FindAt(Coord{X: 2}); ok {
		t.Fatalf("expected empty cell")
	}
	m.Remove("room_002")
	if _, ok := m.FindAt(Coord{X: 1}); ok {
		t.Fatalf("removed room should not be found")
	}
	if r, ok := m.Room("room_003"); !ok || r.Name != "C" {
		t.Fatalf("index should survive removal, got %+v", r)
	}
	if got := m.ZLevels(); len(got) != 2 || got[0] != 0 || got[1] != 1 {
		t.Fatalf("unexpected z levels: %v", got)
	}
}

func TestModelRoomReturnsCopy(t *testing.T) {
	m := NewModel([]Room{{RoomID: "room_001", Exits: map[Direction]RoomID{North: "room_002"}}}, nil)
	r, _ := m.Room("room_001")
	r.Exits[North] = "elsewhere"
	again, _ := m.Room("room_001")
	if again.Exits[North] != "room_002" {
		t.Fatalf("model room mutated through a copy")
	}
}

func TestNextRoomIDFillsGaps(t *testing.T) {
	if id := NewModel(nil, nil).NextRoomID(); id != "room_001" {
		t.Fatalf("empty model should start at room_001, got %s", id)
	}
	m := NewModel([]Room{
		{RoomID: "room_001"},
		{RoomID: "room_003"},
		{RoomID: "lobby"},
	}, nil)
	if id := m.NextRoomID(); id != "room_002" {
		t.Fatalf("expected gap room_002, got %s", id)
	}
	reserved := map[RoomID]bool{"room_002": true}
	if id := nextRoomID(m.Rooms(), reserved); id != "room_004" {
		t.Fatalf("expected room_004 after reservation, got %s", id)
	}
}

func TestModelFilterAndSurrounding(t *testing.T) {
	m := NewModel([]Room{
		{RoomID: "room_001", AreaID: 1},
		{RoomID: "room_002", AreaID: 2, X: 5},
		{RoomID: "room_003", AreaID: 2, X: 40},
		{RoomID: "room_004", AreaID: 2, X: 2, Z: 1},
	}, []Area{{ID: 1, AreaID: "town"}, {ID: 2, AreaID: "forest"}})

	shown := m.Filter(AtLevel(0), 1)
	if len(shown) != 1 || shown[0].RoomID != "room_001" {
		t.Fatalf("unexpected filtered rooms: %+v", shown)
	}
	around := m.Surrounding(shown, AtLevel(0))
	if len(around) != 1 || around[0].RoomID != "room_002" {
		t.Fatalf("expected only room_002 nearby, got %+v", around)
	}
	if area, ok := m.AreaByKey("FOREST"); !ok || area.ID != 2 {
		t.Fatalf("area lookup should ignore case, got %+v", area)
	}
	if all := m.Filter(AllLevels, 2); len(all) != 3 {
		t.Fatalf("expected three forest rooms on all levels, got %d", len(all))
	}
}
