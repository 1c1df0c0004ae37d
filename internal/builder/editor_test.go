package builder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"testing"
)

// memStore is an in-memory Store that counts calls and can fail on demand.
type memStore struct {
	rooms  map[RoomID]Room
	order  []RoomID
	areas  []Area
	calls  map[string]int
	failOn map[string]map[RoomID]bool
}

func newMemStore(rooms ...Room) *memStore {
	s := &memStore{
		rooms:  make(map[RoomID]Room),
		calls:  make(map[string]int),
		failOn: make(map[string]map[RoomID]bool),
	}
	for _, r := range rooms {
		s.rooms[r.RoomID] = r.Clone()
		s.order = append(s.order, r.RoomID)
	}
	return s
}

func (s *memStore) fail(op string, id RoomID) {
	if s.failOn[op] == nil {
		s.failOn[op] = make(map[RoomID]bool)
	}
	s.failOn[op][id] = true
}

func (s *memStore) failing(op string, id RoomID) error {
	s.calls[op]++
	if s.failOn[op][id] {
		return fmt.Errorf("%s %s: server unavailable", op, id)
	}
	return nil
}

func (s *memStore) writes() int {
	return s.calls["create"] + s.calls["update"] + s.calls["delete"] + s.calls["area"] + s.calls["door"] + s.calls["undoor"]
}

func (s *memStore) ListAreas(context.Context) ([]Area, error) {
	s.calls["areas"]++
	return append([]Area(nil), s.areas...), nil
}

func (s *memStore) ListRooms(context.Context) ([]Room, error) {
	s.calls["rooms"]++
	out := make([]Room, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.rooms[id].Clone())
	}
	return out, nil
}

func (s *memStore) CreateRoom(_ context.Context, r Room) (Room, error) {
	if err := s.failing("create", r.RoomID); err != nil {
		return Room{}, err
	}
	if _, exists := s.rooms[r.RoomID]; exists {
		return Room{}, fmt.Errorf("room %s already exists", r.RoomID)
	}
	s.rooms[r.RoomID] = r.Clone()
	s.order = append(s.order, r.RoomID)
	return r.Clone(), nil
}

func (s *memStore) UpdateRoom(_ context.Context, id RoomID, r Room) (Room, error) {
	if err := s.failing("update", id); err != nil {
		return Room{}, err
	}
	if _, exists := s.rooms[id]; !exists {
		return Room{}, fmt.Errorf("room %s not found", id)
	}
	s.rooms[id] = r.Clone()
	return r.Clone(), nil
}

func (s *memStore) DeleteRoom(_ context.Context, id RoomID) error {
	if err := s.failing("delete", id); err != nil {
		return err
	}
	if _, exists := s.rooms[id]; !exists {
		return fmt.Errorf("room %s not found", id)
	}
	delete(s.rooms, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *memStore) CreateArea(_ context.Context, a Area) (Area, error) {
	s.calls["area"]++
	a.ID = len(s.areas) + 1
	s.areas = append(s.areas, a)
	return a, nil
}

func (s *memStore) UpsertDoor(_ context.Context, id RoomID, dir Direction, d Door) error {
	if err := s.failing("door", id); err != nil {
		return err
	}
	r := s.rooms[id]
	if r.Doors == nil {
		r.Doors = make(map[Direction]Door)
	}
	r.Doors[dir] = d.Clone()
	s.rooms[id] = r
	return nil
}

func (s *memStore) DeleteDoor(_ context.Context, id RoomID, dir Direction) error {
	if err := s.failing("undoor", id); err != nil {
		return err
	}
	r := s.rooms[id]
	delete(r.Doors, dir)
	s.rooms[id] = r
	return nil
}

// recordingHooks keeps the last render state and every notice.
type recordingHooks struct {
	redraws   int
	lastMap   MapView
	selection SelectionView
	status    string
	notices   []Notice
}

func (h *recordingHooks) RedrawMap(v MapView) {
	h.redraws++
	h.lastMap = v
}

func (h *recordingHooks) RefreshSelection(v SelectionView) { h.selection = v }
func (h *recordingHooks) UpdateStatus(s string)            { h.status = s }
func (h *recordingHooks) Notify(n Notice)                  { h.notices = append(h.notices, n) }

func (h *recordingHooks) lastNotice() string {
	if len(h.notices) == 0 {
		return ""
	}
	return h.notices[len(h.notices)-1].Message
}

func newTestEditor(t *testing.T, rooms ...Room) (*Editor, *memStore, *recordingHooks) {
	t.Helper()
	store := newMemStore(rooms...)
	hooks := &recordingHooks{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	e := NewEditor(store, WithHooks(hooks), WithLogger(logger))
	if err := e.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return e, store, hooks
}

func cellCenter(x, y int) Point {
	return GridToPixel(x, y).Add(Point{X: NodeSize / 2, Y: NodeSize / 2})
}

func TestEditorCreateDeleteUndoScenario(t *testing.T) {
	ctx := context.Background()
	e, store, _ := newTestEditor(t)

	created, err := e.CreateRoomAt(ctx, Coord{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.RoomID != "room_001" || created.Name != "Room room_001" {
		t.Fatalf("unexpected created room: %+v", created)
	}
	created, err = e.EditRoom(ctx, created.RoomID, RoomEdit{Description: ptr("A dusty hall.")})
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if err := e.DeleteSelected(ctx); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := store.rooms["room_001"]; ok {
		t.Fatalf("room should be deleted")
	}
	if e.UndoDepth() != 3 {
		t.Fatalf("expected 3 undo entries, got %d", e.UndoDepth())
	}

	if err := e.Undo(ctx); err != nil {
		t.Fatalf("undo delete: %v", err)
	}
	restored, ok := e.Room("room_001")
	if !ok || restored.Description != "A dusty hall." {
		t.Fatalf("undo should restore the pre-delete snapshot, got %+v", restored)
	}
	if err := e.Undo(ctx); err != nil {
		t.Fatalf("undo edit: %v", err)
	}
	if r, _ := e.Room("room_001"); r.Description != "" {
		t.Fatalf("undo should restore the previous description, got %q", r.Description)
	}
	if err := e.Undo(ctx); err != nil {
		t.Fatalf("undo create: %v", err)
	}
	if _, ok := e.Room("room_001"); ok {
		t.Fatalf("undoing the create should remove the room")
	}
	if err := e.Undo(ctx); !errors.Is(err, ErrNothingToUndo) {
		t.Fatalf("expected nothing to undo, got %v", err)
	}
}

func ptr[T any](v T) *T {
	return &v
}

func TestEditorUndoCapacity(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEditor(t)
	for x := 0; x < 4; x++ {
		if _, err := e.CreateRoomAt(ctx, Coord{X: x}); err != nil {
			t.Fatalf("create %d: %v", x, err)
		}
	}
	if e.UndoDepth() != UndoCapacity {
		t.Fatalf("undo depth should cap at %d, got %d", UndoCapacity, e.UndoDepth())
	}
	for i := 0; i < UndoCapacity; i++ {
		if err := e.Undo(ctx); err != nil {
			t.Fatalf("undo %d: %v", i, err)
		}
	}
	rooms := e.Rooms()
	if len(rooms) != 1 || rooms[0].RoomID != "room_001" {
		t.Fatalf("only the evicted first create should remain, got %+v", rooms)
	}
}

func TestEditorAutoExitScenario(t *testing.T) {
	ctx := context.Background()
	e, _, hooks := newTestEditor(t)
	a, _ := e.CreateRoomAt(ctx, Coord{})
	b, _ := e.CreateRoomAt(ctx, Coord{X: 1})
	if err := e.SelectRooms([]RoomID{a.RoomID, b.RoomID}); err != nil {
		t.Fatalf("select: %v", err)
	}
	added, err := e.AutoExitSelected(ctx)
	if err != nil || added != 2 {
		t.Fatalf("expected 2 exits, got %d, %v", added, err)
	}
	if !strings.Contains(hooks.lastNotice(), "Added 2 new exit(s)") {
		t.Fatalf("unexpected notice: %q", hooks.lastNotice())
	}
	a, _ = e.Room(a.RoomID)
	b, _ = e.Room(b.RoomID)
	if a.Exits[East] != b.RoomID || b.Exits[West] != a.RoomID {
		t.Fatalf("rooms not linked: %+v %+v", a.Exits, b.Exits)
	}

	added, err = e.AutoExitSelected(ctx)
	if err != nil || added != 0 {
		t.Fatalf("second run should add nothing, got %d, %v", added, err)
	}
	if !strings.HasPrefix(hooks.lastNotice(), "No new exits added") {
		t.Fatalf("expected the no-new-exits notice, got %q", hooks.lastNotice())
	}
	if hooks.notices[len(hooks.notices)-1].Level == NoticeError {
		t.Fatalf("no new exits is not an error")
	}

	if err := e.Undo(ctx); err != nil {
		t.Fatalf("undo: %v", err)
	}
	a, _ = e.Room(a.RoomID)
	if len(a.Exits) != 0 {
		t.Fatalf("undo should remove the auto exits, got %+v", a.Exits)
	}
}

func TestEditorAutoExitNeedsSelection(t *testing.T) {
	e, store, hooks := newTestEditor(t, Room{RoomID: "room_001"})
	if _, err := e.AutoExitSelected(context.Background()); !errors.Is(err, ErrNoSelection) {
		t.Fatalf("expected ErrNoSelection, got %v", err)
	}
	if hooks.lastNotice() != "No rooms selected" || store.writes() != 0 {
		t.Fatalf("unexpected notice %q or writes %d", hooks.lastNotice(), store.writes())
	}
}

func TestEditorDragGroupMove(t *testing.T) {
	ctx := context.Background()
	e, store, _ := newTestEditor(t,
		Room{RoomID: "room_001", Name: "A"},
		Room{RoomID: "room_002", Name: "B", X: 1},
	)
	if err := e.SelectRooms([]RoomID{"room_001", "room_002"}); err != nil {
		t.Fatalf("select: %v", err)
	}
	if err := e.PointerDown(cellCenter(0, 0), "room_001", Modifiers{Ctrl: true}); err != nil {
		t.Fatalf("pointer down: %v", err)
	}
	if !e.Dragging() {
		t.Fatalf("ctrl press should start a drag")
	}
	e.PointerMove(cellCenter(0, 1))
	if err := e.PointerUp(ctx, cellCenter(0, 1)); err != nil {
		t.Fatalf("drop: %v", err)
	}
	if got := store.rooms["room_001"].Coord(); got != (Coord{Y: 1}) {
		t.Fatalf("A should be at (0, 1, 0), got %v", got)
	}
	if got := store.rooms["room_002"].Coord(); got != (Coord{X: 1, Y: 1}) {
		t.Fatalf("B should be at (1, 1, 0), got %v", got)
	}
	if e.UndoDepth() != 1 {
		t.Fatalf("group move should be one undo entry, got %d", e.UndoDepth())
	}
	if err := e.Undo(ctx); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if got := store.rooms["room_002"].Coord(); got != (Coord{X: 1}) {
		t.Fatalf("undo should put B back, got %v", got)
	}
}

func TestEditorDragConflictAborts(t *testing.T) {
	ctx := context.Background()
	e, store, hooks := newTestEditor(t,
		Room{RoomID: "room_001", Name: "A"},
		Room{RoomID: "room_002", Name: "B", X: 1},
		Room{RoomID: "room_003", Name: "C", Y: 1},
	)
	_ = e.SelectRooms([]RoomID{"room_001", "room_002"})
	_ = e.PointerDown(cellCenter(0, 0), "room_001", Modifiers{Ctrl: true})
	err := e.PointerUp(ctx, cellCenter(0, 1))
	var occupied *OccupiedError
	if !errors.As(err, &occupied) {
		t.Fatalf("expected occupied error, got %v", err)
	}
	if !strings.Contains(hooks.lastNotice(), "occupied by C") {
		t.Fatalf("notice should name the occupant: %q", hooks.lastNotice())
	}
	if store.calls["update"] != 0 {
		t.Fatalf("aborted move must not write, got %d updates", store.calls["update"])
	}
	if store.rooms["room_001"].Coord() != (Coord{}) || store.rooms["room_002"].Coord() != (Coord{X: 1}) {
		t.Fatalf("rooms should keep their coordinates")
	}
	if len(hooks.lastMap.Lifted) != 0 {
		t.Fatalf("visual state should be restored")
	}
}

func TestEditorCtrlClickWithoutMoveToggles(t *testing.T) {
	ctx := context.Background()
	e, store, _ := newTestEditor(t, Room{RoomID: "room_001"}, Room{RoomID: "room_002", X: 1})
	_ = e.PointerDown(cellCenter(0, 0), "room_001", Modifiers{Ctrl: true})
	_ = e.PointerUp(ctx, cellCenter(0, 0))
	_ = e.PointerDown(cellCenter(1, 0), "room_002", Modifiers{Ctrl: true})
	_ = e.PointerUp(ctx, cellCenter(1, 0))
	view := e.SelectionView()
	if len(view.Members) != 2 || view.Active != "room_002" {
		t.Fatalf("ctrl clicks should build a multi-selection, got %+v", view)
	}
	if store.calls["update"] != 0 {
		t.Fatalf("ctrl clicks should not move rooms")
	}
}

func TestEditorPartialMoveFailureKeepsSuccesses(t *testing.T) {
	ctx := context.Background()
	e, store, hooks := newTestEditor(t,
		Room{RoomID: "room_001", Name: "A"},
		Room{RoomID: "room_002", Name: "B", X: 1},
	)
	store.fail("update", "room_002")
	_ = e.SelectRooms([]RoomID{"room_001", "room_002"})
	err := e.MoveSelected(ctx, Coord{Y: 1})
	if err == nil {
		t.Fatalf("expected persistence error")
	}
	if store.rooms["room_001"].Coord() != (Coord{Y: 1}) {
		t.Fatalf("successful write should stick")
	}
	if store.rooms["room_002"].Coord() != (Coord{X: 1}) {
		t.Fatalf("failed write should leave B in place")
	}
	if hooks.notices[len(hooks.notices)-1].Level != NoticeError {
		t.Fatalf("persistence failures should be surfaced as errors")
	}
	if e.UndoDepth() != 1 {
		t.Fatalf("the successful part should be undoable")
	}
}

func TestEditorSaveDoorValidationMakesNoCalls(t *testing.T) {
	ctx := context.Background()
	e, store, hooks := newTestEditor(t, Room{RoomID: "room_001"})
	before := store.writes()
	err := e.SaveDoor(ctx, "room_001", North, Door{DoorID: "gate", Name: "gate", Flags: []DoorFlag{DoorLocked}})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if store.writes() != before || store.calls["door"] != 0 {
		t.Fatalf("validation failure must not reach the store")
	}
	if len(hooks.notices) == 0 {
		t.Fatalf("validation failure should be surfaced")
	}
}

func TestEditorSaveAndRemoveDoor(t *testing.T) {
	ctx := context.Background()
	e, store, _ := newTestEditor(t, Room{RoomID: "room_001"})
	door := Door{DoorID: "gate", Name: "gate", KeyID: "key", Flags: []DoorFlag{DoorClosed, DoorLocked}}
	if err := e.SaveDoor(ctx, "room_001", North, door); err != nil {
		t.Fatalf("save door: %v", err)
	}
	if r, _ := e.Room("room_001"); r.Doors[North].DoorID != "gate" {
		t.Fatalf("door not stored: %+v", r.Doors)
	}
	if err := e.RemoveDoor(ctx, "room_001", North); err != nil {
		t.Fatalf("remove door: %v", err)
	}
	if len(store.rooms["room_001"].Doors) != 0 {
		t.Fatalf("door should be removed")
	}
	if err := e.RemoveDoor(ctx, "room_001", North); err == nil {
		t.Fatalf("removing a missing door should fail")
	}
}

func TestEditorCopySelected(t *testing.T) {
	ctx := context.Background()
	e, store, _ := newTestEditor(t,
		Room{RoomID: "room_001", Name: "A", Exits: map[Direction]RoomID{East: "room_002"}},
		Room{RoomID: "room_002", Name: "B", X: 1, Exits: map[Direction]RoomID{West: "room_001"}},
	)
	_ = e.SelectRooms([]RoomID{"room_001", "room_002"})
	if err := e.CopySelected(ctx, Coord{Y: 2}); err != nil {
		t.Fatalf("copy: %v", err)
	}
	copyA, ok := store.rooms["room_003"]
	if !ok || copyA.Name != "A (Copy)" || copyA.Coord() != (Coord{Y: 2}) || len(copyA.Exits) != 0 {
		t.Fatalf("unexpected copy of A: %+v", copyA)
	}
	if copyB := store.rooms["room_004"]; copyB.Name != "B (Copy)" || copyB.Coord() != (Coord{X: 1, Y: 2}) {
		t.Fatalf("unexpected copy of B: %+v", copyB)
	}

	_ = e.SelectRooms([]RoomID{"room_001", "room_002"})
	creates := store.calls["create"]
	if err := e.CopySelected(ctx, Coord{Y: 2}); err == nil {
		t.Fatalf("copy onto occupied cells should fail")
	}
	if store.calls["create"] != creates {
		t.Fatalf("occupied copy must not create anything")
	}
}

func TestEditorCanvasClickCreatesRoom(t *testing.T) {
	ctx := context.Background()
	e, store, hooks := newTestEditor(t, Room{RoomID: "room_001", Name: "A"})
	click := Point{X: 1085, Y: 935}
	if err := e.PointerDown(click, "", Modifiers{}); err != nil {
		t.Fatalf("pointer down: %v", err)
	}
	if err := e.PointerUp(ctx, click.Add(Point{X: 2, Y: 2})); err != nil {
		t.Fatalf("pointer up: %v", err)
	}
	created, ok := store.rooms["room_002"]
	if !ok || created.Coord() != (Coord{X: 1, Y: 2}) {
		t.Fatalf("expected new room at (1, 2, 0), got %+v", created)
	}
	if hooks.selection.Active != "room_002" {
		t.Fatalf("new room should become active, got %q", hooks.selection.Active)
	}

	e.SetClickToCreate(false)
	_ = e.PointerDown(Point{X: 1200, Y: 1200}, "", Modifiers{})
	_ = e.PointerUp(ctx, Point{X: 1200, Y: 1200})
	if len(store.rooms) != 2 {
		t.Fatalf("click to create disabled should not create rooms")
	}
}

func TestEditorBoxSelect(t *testing.T) {
	ctx := context.Background()
	e, store, hooks := newTestEditor(t,
		Room{RoomID: "room_001"},
		Room{RoomID: "room_002", X: 1},
		Room{RoomID: "room_003", X: 1, Z: 1},
	)
	_ = e.PointerDown(Point{X: 1000, Y: 1000}, "", Modifiers{})
	e.PointerMove(Point{X: 1070, Y: 1030})
	if hooks.lastMap.Box == nil {
		t.Fatalf("box should be drawn while dragging")
	}
	_ = e.PointerUp(ctx, Point{X: 1070, Y: 1030})
	if got := e.SelectionView().Members; len(got) != 2 {
		t.Fatalf("expected two boxed rooms, got %v", got)
	}
	if store.calls["create"] != 0 {
		t.Fatalf("box select should not create rooms")
	}
	if !strings.HasSuffix(hooks.status, "| 2 Rooms Selected") {
		t.Fatalf("unexpected status %q", hooks.status)
	}
	e.ClearSelection()
	if len(e.SelectionView().Members) != 0 {
		t.Fatalf("escape should clear the selection")
	}
}

func TestEditorAutoWalk(t *testing.T) {
	ctx := context.Background()
	e, store, _ := newTestEditor(t,
		Room{RoomID: "room_001", Name: "A", AreaID: 1, Exits: map[Direction]RoomID{North: "room_009"}},
		Room{RoomID: "room_002", Name: "B", X: 1, Y: 1},
	)
	if _, err := e.AutoWalk(ctx, North); !errors.Is(err, ErrAutoWalkDisabled) {
		t.Fatalf("auto walk needs an active room, got %v", err)
	}
	_ = e.Click("room_001", Modifiers{})

	to, err := e.AutoWalk(ctx, Northeast)
	if err != nil {
		t.Fatalf("walk northeast: %v", err)
	}
	if to.RoomID != "room_002" || to.Exits[Southwest] != "room_001" {
		t.Fatalf("walking onto an existing room should link it: %+v", to)
	}

	to, err = e.AutoWalk(ctx, North)
	if err != nil {
		t.Fatalf("walk north: %v", err)
	}
	if to.RoomID != "room_003" || to.Coord() != (Coord{X: 1, Y: 2}) || to.AreaID != 0 {
		t.Fatalf("expected new room north of B: %+v", to)
	}
	if store.rooms["room_002"].Exits[North] != "room_003" {
		t.Fatalf("B should lead north to the new room")
	}
	if view := e.SelectionView(); view.Active != "room_003" {
		t.Fatalf("walk should select the destination, got %q", view.Active)
	}

	_ = e.Click("room_001", Modifiers{})
	if _, err := e.AutoWalk(ctx, North); err != nil {
		t.Fatalf("walk north from A: %v", err)
	}
	if a := store.rooms["room_001"]; a.Exits[North] == "room_009" {
		t.Fatalf("auto walk overwrites the existing exit")
	}
	if r := store.rooms["room_004"]; r.AreaID != 1 {
		t.Fatalf("new room should inherit the area, got %d", r.AreaID)
	}
}

func TestEditorRenameAndEdit(t *testing.T) {
	ctx := context.Background()
	e, store, _ := newTestEditor(t,
		Room{RoomID: "room_001", Name: "A"},
		Room{RoomID: "room_002", Name: "B", X: 1},
	)
	_ = e.SelectRooms([]RoomID{"room_001", "room_002"})
	if err := e.RenameSelected(ctx, "  Hall "); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if store.rooms["room_001"].Name != "Hall" || store.rooms["room_002"].Name != "Hall" {
		t.Fatalf("rename should apply to every selected room")
	}
	if err := e.RenameSelected(ctx, " "); err == nil {
		t.Fatalf("blank names should be rejected")
	}

	if _, err := e.EditRoom(ctx, "room_001", RoomEdit{Coord: &Coord{X: 1}}); err == nil {
		t.Fatalf("moving onto B should fail")
	}
	dark := LightingDark
	edited, err := e.EditRoom(ctx, "room_001", RoomEdit{
		Lighting: &dark,
		Coord:    &Coord{Z: 2},
		SetExits: map[Direction]RoomID{East: "room_002"},
	})
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if edited.Lighting != LightingDark || edited.Z != 2 || edited.Exits[East] != "room_002" {
		t.Fatalf("unexpected edit result: %+v", edited)
	}
	if _, err := e.EditRoom(ctx, "room_001", RoomEdit{SetExits: map[Direction]RoomID{West: "nowhere"}}); err == nil {
		t.Fatalf("exits to unknown rooms should be rejected")
	}
	if _, err := e.EditRoom(ctx, "room_001", RoomEdit{ClearExits: []Direction{East}}); err != nil {
		t.Fatalf("clear exit: %v", err)
	}
	if store.rooms["room_001"].HasExit(East) {
		t.Fatalf("east exit should be cleared")
	}
}

func TestEditorAreasAndFilters(t *testing.T) {
	ctx := context.Background()
	e, _, hooks := newTestEditor(t,
		Room{RoomID: "room_001", Name: "A"},
		Room{RoomID: "room_002", Name: "B", X: 3, Z: 1},
	)
	area, err := e.CreateArea(ctx, Area{AreaID: "crypt", Name: "The Crypt"})
	if err != nil {
		t.Fatalf("create area: %v", err)
	}
	if _, err := e.CreateArea(ctx, Area{AreaID: "crypt", Name: "Again"}); err == nil {
		t.Fatalf("duplicate area should be rejected")
	}
	if _, err := e.EditRoom(ctx, "room_002", RoomEdit{AreaID: &area.ID}); err != nil {
		t.Fatalf("assign area: %v", err)
	}
	if err := e.SetAreaFilter("crypt"); err != nil {
		t.Fatalf("filter: %v", err)
	}
	e.SetLevel(AllLevels)
	if got := e.Shown(); len(got) != 1 || got[0].RoomID != "room_002" {
		t.Fatalf("unexpected shown rooms: %+v", got)
	}
	e.SetSurrounding(true)
	if len(hooks.lastMap.Surrounding) != 1 {
		t.Fatalf("room A should be drawn as surrounding, got %+v", hooks.lastMap.Surrounding)
	}
	if err := e.SetAreaFilter("nowhere"); err == nil {
		t.Fatalf("unknown area should be rejected")
	}
	_ = e.SetAreaFilter("")
	if e.AreaFilter() != 0 {
		t.Fatalf("empty key should clear the filter")
	}
}

func TestEditorStatusReadout(t *testing.T) {
	e, _, hooks := newTestEditor(t, Room{RoomID: "room_001", Name: "Hall", X: 2, Y: -1})
	e.PointerMove(GridToPixel(3, 4))
	if hooks.status != "X: 3, Y: 4, Z: 0" {
		t.Fatalf("unexpected status %q", hooks.status)
	}
	_ = e.Click("room_001", Modifiers{})
	if hooks.status != "X: 3, Y: 4, Z: 0 | Selected: Hall (X: 2, Y: -1, Z: 0)" {
		t.Fatalf("unexpected status %q", hooks.status)
	}
}

func TestEditorConnectionsSkipVertical(t *testing.T) {
	e, _, _ := newTestEditor(t,
		Room{RoomID: "room_001", Exits: map[Direction]RoomID{East: "room_002", Up: "room_003"}},
		Room{RoomID: "room_002", X: 1},
		Room{RoomID: "room_003", Z: 1},
	)
	view := e.MapView()
	if len(view.Connections) != 1 || view.Connections[0].To != "room_002" {
		t.Fatalf("expected one horizontal connection, got %+v", view.Connections)
	}
	ids := make([]string, 0, len(view.Rooms))
	for _, r := range view.Rooms {
		ids = append(ids, string(r.RoomID))
	}
	sort.Strings(ids)
	if strings.Join(ids, ",") != "room_001,room_002" {
		t.Fatalf("level 0 should show two rooms, got %v", ids)
	}
}

func TestEditorFailedUndoStaysPopped(t *testing.T) {
	ctx := context.Background()
	e, store, hooks := newTestEditor(t)
	room, err := e.CreateRoomAt(ctx, Coord{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if e.UndoDepth() != 1 {
		t.Fatalf("expected one undo step, got %d", e.UndoDepth())
	}
	store.fail("delete", room.RoomID)
	before := len(hooks.notices)

	if err := e.Undo(ctx); err == nil {
		t.Fatalf("expected the undo to fail")
	}
	if e.UndoDepth() != 0 {
		t.Fatalf("failed undo should stay popped, depth %d", e.UndoDepth())
	}
	if len(hooks.notices) == before || hooks.notices[len(hooks.notices)-1].Level != NoticeError {
		t.Fatalf("failed undo should raise an error notice, got %v", hooks.notices)
	}
	if _, ok := store.rooms[room.RoomID]; !ok {
		t.Fatalf("room should survive the failed delete")
	}
	if err := e.Undo(ctx); !errors.Is(err, ErrNothingToUndo) {
		t.Fatalf("expected nothing left to undo, got %v", err)
	}
}

func TestEditorRejectsOutOfBoundsPositions(t *testing.T) {
	ctx := context.Background()
	e, store, hooks := newTestEditor(t, Room{RoomID: "room_001", Name: "A", X: MaxCoord})
	before := store.writes()

	if _, err := e.CreateRoomAt(ctx, Coord{X: MaxCoord + 1}); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("expected a bounds error, got %v", err)
	}
	if hooks.notices[len(hooks.notices)-1].Level != NoticeWarning {
		t.Fatalf("bounds errors should be surfaced as warnings")
	}

	_ = e.SelectRooms([]RoomID{"room_001"})
	if err := e.MoveSelected(ctx, Coord{X: 1}); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("expected move past the edge to fail, got %v", err)
	}
	if err := e.CopySelected(ctx, Coord{X: 1}); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("expected copy past the edge to fail, got %v", err)
	}
	to := Coord{Y: -MaxCoord - 1}
	if _, err := e.EditRoom(ctx, "room_001", RoomEdit{Coord: &to}); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("expected moveto past the edge to fail, got %v", err)
	}
	if store.writes() != before {
		t.Fatalf("out of bounds positions must not reach the store")
	}
	if e.UndoDepth() != 0 {
		t.Fatalf("rejected edits should not be undoable")
	}
}
