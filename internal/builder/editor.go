package builder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// CopySuffix is appended to the names of copied rooms.
const CopySuffix = " (Copy)"

// Editor owns the editing state of one designer session: the spatial model,
// the selection, the drag controller and the undo log. It is not safe for
// concurrent use; every call comes from the session's event loop.
type Editor struct {
	store  Store
	hooks  Hooks
	logger *slog.Logger

	model *Model
	sel   Selection
	drag  Drag
	undo  *UndoLog

	level         Level
	areaFilter    int
	surrounding   bool
	clickToCreate bool
	pointer       Point
	pressed       RoomID
	pressedMods   Modifiers
}

// Option configures an Editor.
type Option func(*Editor)

// WithHooks sets the render collaborators.
func WithHooks(h Hooks) Option {
	return func(e *Editor) {
		if h != nil {
			e.hooks = h
		}
	}
}

// WithLogger sets the structured logger used for persistence failures.
func WithLogger(l *slog.Logger) Option {
	return func(e *Editor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithClickToCreate controls whether a plain click on empty canvas creates a room.
func WithClickToCreate(enabled bool) Option {
	return func(e *Editor) {
		e.clickToCreate = enabled
	}
}

// NewEditor creates an editor backed by store. Call Load before use.
func NewEditor(store Store, opts ...Option) *Editor {
	e := &Editor{
		store:         store,
		hooks:         NopHooks{},
		logger:        slog.Default(),
		model:         NewModel(nil, nil),
		undo:          NewUndoLog(UndoCapacity),
		level:         AtLevel(0),
		clickToCreate: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.pointer = GridToPixel(0, 0)
	return e
}

// Load fetches areas and rooms from the store and redraws.
func (e *Editor) Load(ctx context.Context) error {
	return e.reload(ctx)
}

func (e *Editor) reload(ctx context.Context) error {
	areas, err := e.store.ListAreas(ctx)
	if err != nil {
		return e.fail("Failed to load areas", fmt.Errorf("list areas: %w", err))
	}
	rooms, err := e.store.ListRooms(ctx)
	if err != nil {
		return e.fail("Failed to load rooms", fmt.Errorf("list rooms: %w", err))
	}
	e.model.Replace(rooms, areas)
	if e.areaFilter != 0 {
		if _, ok := e.model.Area(e.areaFilter); !ok {
			e.areaFilter = 0
		}
	}
	e.sel.Prune(e.model)
	e.selectionChanged()
	return nil
}

func (e *Editor) fail(msg string, err error) error {
	e.logger.Error(msg, "err", err)
	e.hooks.Notify(Notice{Level: NoticeError, Message: msg + ": " + err.Error()})
	return err
}

func (e *Editor) warn(err error) error {
	e.hooks.Notify(Notice{Level: NoticeWarning, Message: err.Error()})
	return err
}

func (e *Editor) info(format string, args ...any) {
	e.hooks.Notify(Notice{Level: NoticeInfo, Message: fmt.Sprintf(format, args...)})
}

func (e *Editor) redraw() {
	e.hooks.RedrawMap(e.MapView())
}

func (e *Editor) selectionChanged() {
	e.redraw()
	e.hooks.RefreshSelection(e.SelectionView())
	e.hooks.UpdateStatus(e.Status())
}

// Room returns a copy of a loaded room.
func (e *Editor) Room(id RoomID) (Room, bool) {
	return e.model.Room(id)
}

// Rooms returns every loaded room.
func (e *Editor) Rooms() []Room {
	return e.model.Rooms()
}

// Areas returns every loaded area.
func (e *Editor) Areas() []Area {
	return e.model.Areas()
}

// RoomAt returns the room occupying c.
func (e *Editor) RoomAt(c Coord) (Room, bool) {
	return e.model.FindAt(c)
}

// Level returns the shown z-plane.
func (e *Editor) Level() Level {
	return e.level
}

// AreaFilter returns the filtered area id, 0 when unfiltered.
func (e *Editor) AreaFilter() int {
	return e.areaFilter
}

// UndoDepth returns the number of undoable actions.
func (e *Editor) UndoDepth() int {
	return e.undo.Len()
}

// Dragging reports whether a ctrl-drag is in progress.
func (e *Editor) Dragging() bool {
	return e.drag.Dragging()
}

// Pointer is the last pointer position seen.
func (e *Editor) Pointer() Point {
	return e.pointer
}

// Shown returns the rooms visible under the level and area filters.
func (e *Editor) Shown() []Room {
	return e.model.Filter(e.level, e.areaFilter)
}

// MapView snapshots the drawable state.
func (e *Editor) MapView() MapView {
	shown := e.Shown()
	view := MapView{
		Level:     e.level.Z,
		AllLevels: e.level.All,
		ZLevels:   e.model.ZLevels(),
		AreaID:    e.areaFilter,
		Rooms:     shown,
		Lifted:    e.drag.Nodes(),
		Selected:  e.sel.Members(),
	}
	if e.level.All {
		view.Level = 0
	}
	if e.surrounding && e.areaFilter != 0 {
		view.Surrounding = e.model.Surrounding(shown, e.level)
	}
	if box, ok := e.sel.Box(); ok {
		view.Box = &box
	}
	if active, ok := e.sel.Active(); ok {
		view.Active = active
	}
	drawn := make([]Room, 0, len(shown)+len(view.Surrounding))
	drawn = append(drawn, shown...)
	drawn = append(drawn, view.Surrounding...)
	visible := make(map[RoomID]Room, len(drawn))
	for _, r := range drawn {
		visible[r.RoomID] = r
	}
	half := Point{X: NodeSize / 2, Y: NodeSize / 2}
	for _, r := range drawn {
		for _, dir := range r.SortedExits() {
			if dir == Up || dir == Down {
				continue
			}
			target, ok := visible[r.Exits[dir]]
			if !ok {
				continue
			}
			view.Connections = append(view.Connections, Connection{
				From:      r.RoomID,
				To:        target.RoomID,
				Direction: dir,
				FromPixel: GridToPixel(r.X, r.Y).Add(half),
				ToPixel:   GridToPixel(target.X, target.Y).Add(half),
			})
		}
	}
	return view
}

// SelectionView snapshots the selection and control enablement.
func (e *Editor) SelectionView() SelectionView {
	view := SelectionView{
		Members:  e.sel.Members(),
		Controls: e.sel.Controls(e.undo.Len() > 0),
	}
	if active, ok := e.sel.Active(); ok {
		view.Active = active
	}
	return view
}

// Status renders the coordinate readout for the last pointer position plus a
// selection summary.
func (e *Editor) Status() string {
	gx, gy := PixelToGrid(e.pointer)
	var b strings.Builder
	fmt.Fprintf(&b, "X: %d, Y: %d, Z: %d", gx, gy, e.level.CreateZ())
	if n := e.sel.Len(); n > 1 {
		fmt.Fprintf(&b, " | %d Rooms Selected", n)
		return b.String()
	}
	if active, ok := e.sel.Active(); ok {
		if r, found := e.model.Room(active); found {
			fmt.Fprintf(&b, " | Selected: %s (X: %d, Y: %d, Z: %d)", r.Name, r.X, r.Y, r.Z)
		}
	}
	return b.String()
}

// Click applies a room click with modifiers to the selection.
func (e *Editor) Click(id RoomID, mods Modifiers) error {
	if _, ok := e.model.Room(id); !ok {
		return e.warn(fmt.Errorf("%w: %s", ErrUnknownRoom, id))
	}
	e.sel.Click(id, mods)
	e.selectionChanged()
	return nil
}

// SelectRooms replaces the multi-selection.
func (e *Editor) SelectRooms(ids []RoomID) error {
	for _, id := range ids {
		if _, ok := e.model.Room(id); !ok {
			return e.warn(fmt.Errorf("%w: %s", ErrUnknownRoom, id))
		}
	}
	e.sel.SelectAll(ids)
	e.selectionChanged()
	return nil
}

// ClearSelection drops the selection and cancels any drag, as Escape does.
func (e *Editor) ClearSelection() {
	e.drag.Cancel()
	e.pressed = ""
	e.sel.Clear()
	e.selectionChanged()
}

// PointerDown starts a gesture at p. target is the room under the pointer,
// or empty for bare canvas.
func (e *Editor) PointerDown(p Point, target RoomID, mods Modifiers) error {
	e.pointer = p
	if target == "" {
		e.sel.BeginBox(p, mods)
		e.selectionChanged()
		return nil
	}
	room, ok := e.model.Room(target)
	if !ok {
		return e.warn(fmt.Errorf("%w: %s", ErrUnknownRoom, target))
	}
	if e.drag.Begin(room, p, mods, &e.sel, e.model) {
		e.pressed = target
		e.pressedMods = mods
		e.redraw()
		return nil
	}
	e.sel.Click(target, mods)
	e.selectionChanged()
	return nil
}

// PointerMove follows the pointer for drags, boxes and the coordinate readout.
func (e *Editor) PointerMove(p Point) {
	e.pointer = p
	switch {
	case e.drag.Dragging():
		e.drag.Update(p)
		e.redraw()
	case e.sel.Boxing():
		e.sel.UpdateBox(p)
		e.redraw()
	}
	e.hooks.UpdateStatus(e.Status())
}

// PointerUp finishes the gesture at p: a drop commits a move, a box selects,
// a tiny box counts as a canvas click.
func (e *Editor) PointerUp(ctx context.Context, p Point) error {
	e.pointer = p
	switch {
	case e.drag.Dragging():
		pressed, mods := e.pressed, e.pressedMods
		e.pressed = ""
		plan, err := e.drag.Drop(p, e.model)
		if err != nil {
			e.redraw()
			return e.warn(fmt.Errorf("cannot move rooms: %w", err))
		}
		if plan.Empty() {
			// A ctrl press released in place is a ctrl-click.
			e.sel.Click(pressed, mods)
			e.selectionChanged()
			return nil
		}
		return e.commitMove(ctx, plan)
	case e.sel.Boxing():
		result := e.sel.EndBox(p, e.model.Rooms(), e.level)
		if result.Click {
			e.selectionChanged()
			if !e.clickToCreate {
				return nil
			}
			return e.ClickCanvas(ctx, p)
		}
		e.selectionChanged()
	}
	return nil
}

// ClickCanvas creates a room in the clicked cell unless it is occupied.
func (e *Editor) ClickCanvas(ctx context.Context, p Point) error {
	gx, gy := ClickToGrid(p)
	c := Coord{X: gx, Y: gy, Z: e.level.CreateZ()}
	if _, taken := e.model.FindAt(c); taken {
		return nil
	}
	_, err := e.CreateRoomAt(ctx, c)
	return err
}

// CreateRoomAt creates a room with the next free id at c and makes it active.
func (e *Editor) CreateRoomAt(ctx context.Context, c Coord) (Room, error) {
	if !c.InBounds() {
		return Room{}, e.warn(boundsError(c))
	}
	if occupant, taken := e.model.FindAt(c); taken {
		return Room{}, e.warn(&OccupiedError{Coord: c, Occupant: occupant})
	}
	id := e.model.NextRoomID()
	room := Room{
		RoomID:   id,
		Name:     "Room " + string(id),
		AreaID:   e.areaFilter,
		X:        c.X,
		Y:        c.Y,
		Z:        c.Z,
		Exits:    make(map[Direction]RoomID),
		Lighting: LightingNormal,
	}
	created, err := e.store.CreateRoom(ctx, room)
	if err != nil {
		return Room{}, e.fail("Failed to create room", fmt.Errorf("create room %s: %w", id, err))
	}
	e.undo.Push(CreateAction(created))
	e.sel.Select(created.RoomID)
	if err := e.reload(ctx); err != nil {
		return created, err
	}
	return created, nil
}

func (e *Editor) commitMove(ctx context.Context, plan MovePlan) error {
	for _, mv := range plan.Moves {
		if !mv.To.InBounds() {
			e.redraw()
			return e.warn(fmt.Errorf("cannot move rooms: %w", boundsError(mv.To)))
		}
	}
	var (
		actions []Action
		errs    []error
	)
	for _, mv := range plan.Moves {
		previous, ok := e.model.Room(mv.RoomID)
		if !ok {
			continue
		}
		updated, err := e.store.UpdateRoom(ctx, mv.RoomID, previous.MoveTo(mv.To))
		if err != nil {
			err = fmt.Errorf("move room %s: %w", mv.RoomID, err)
			e.logger.Error("room move failed", "room", mv.RoomID, "err", err)
			errs = append(errs, err)
			continue
		}
		actions = append(actions, UpdateAction(updated, previous))
	}
	return e.finishBatch(ctx, "Failed to move rooms", actions, errs)
}

// finishBatch records the successful part of a multi-room commit, reloads and
// reports the failures. Partial failures are not rolled back.
func (e *Editor) finishBatch(ctx context.Context, msg string, actions []Action, errs []error) error {
	if len(actions) > 0 {
		e.undo.Push(BulkAction(actions))
	}
	reloadErr := e.reload(ctx)
	if len(errs) > 0 {
		err := errors.Join(errs...)
		e.hooks.Notify(Notice{Level: NoticeError, Message: msg + ": " + err.Error()})
		return err
	}
	return reloadErr
}

func (e *Editor) targets() ([]RoomID, error) {
	ids := e.sel.Targets()
	if len(ids) == 0 {
		e.info("No rooms selected")
		return nil, ErrNoSelection
	}
	return ids, nil
}

// DeleteSelected deletes the multi-selection, or the active room.
func (e *Editor) DeleteSelected(ctx context.Context) error {
	ids, err := e.targets()
	if err != nil {
		return err
	}
	var (
		actions []Action
		errs    []error
	)
	for _, id := range ids {
		snapshot, ok := e.model.Room(id)
		if !ok {
			continue
		}
		if err := e.store.DeleteRoom(ctx, id); err != nil {
			err = fmt.Errorf("delete room %s: %w", id, err)
			e.logger.Error("room delete failed", "room", id, "err", err)
			errs = append(errs, err)
			continue
		}
		actions = append(actions, DeleteAction(snapshot))
	}
	e.sel.Clear()
	return e.finishBatch(ctx, "Failed to delete rooms", actions, errs)
}

// CopySelected duplicates the multi-selection shifted by offset. Every target
// cell is checked before anything is created.
func (e *Editor) CopySelected(ctx context.Context, offset Coord) error {
	ids := e.sel.Members()
	if len(ids) == 0 {
		e.info("No rooms selected")
		return ErrNoSelection
	}
	if offset.IsZero() {
		return e.warn(fmt.Errorf("copy offset must not be zero"))
	}
	sources := make([]Room, 0, len(ids))
	for _, id := range ids {
		r, ok := e.model.Room(id)
		if !ok {
			continue
		}
		to := r.Coord().Add(offset)
		if !to.InBounds() {
			return e.warn(fmt.Errorf("cannot copy rooms: %w", boundsError(to)))
		}
		if occupant, taken := e.model.FindAt(to); taken {
			return e.warn(fmt.Errorf("cannot copy rooms: %w", &OccupiedError{Coord: to, Occupant: occupant}))
		}
		sources = append(sources, r)
	}

	reserved := make(map[RoomID]bool, len(sources))
	rooms := e.model.Rooms()
	var (
		actions []Action
		errs    []error
	)
	for _, src := range sources {
		id := nextRoomID(rooms, reserved)
		reserved[id] = true
		copied := src.MoveTo(src.Coord().Add(offset))
		copied.RoomID = id
		copied.Name = src.Name + CopySuffix
		copied.Exits = make(map[Direction]RoomID)
		copied.Doors = nil
		created, err := e.store.CreateRoom(ctx, copied)
		if err != nil {
			err = fmt.Errorf("copy room %s: %w", src.RoomID, err)
			e.logger.Error("room copy failed", "room", src.RoomID, "err", err)
			errs = append(errs, err)
			continue
		}
		actions = append(actions, CreateAction(created))
	}
	e.sel.Clear()
	return e.finishBatch(ctx, "Failed to copy rooms", actions, errs)
}

// RenameSelected gives every targeted room the same name.
func (e *Editor) RenameSelected(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return e.warn(&ValidationError{Subject: "rename", Problems: []string{"name is required"}})
	}
	ids, err := e.targets()
	if err != nil {
		return err
	}
	var (
		actions []Action
		errs    []error
	)
	for _, id := range ids {
		previous, ok := e.model.Room(id)
		if !ok {
			continue
		}
		next := previous.Clone()
		next.Name = name
		updated, err := e.store.UpdateRoom(ctx, id, next)
		if err != nil {
			err = fmt.Errorf("rename room %s: %w", id, err)
			e.logger.Error("room rename failed", "room", id, "err", err)
			errs = append(errs, err)
			continue
		}
		actions = append(actions, UpdateAction(updated, previous))
	}
	return e.finishBatch(ctx, "Failed to rename rooms", actions, errs)
}

// RoomEdit lists the fields to change on one room; nil fields stay as they are.
type RoomEdit struct {
	Name        *string
	Description *string
	AreaID      *int
	Lighting    *Lighting
	Coord       *Coord
	SetExits    map[Direction]RoomID
	ClearExits  []Direction
}

// EditRoom applies edit to room id after validating it locally.
func (e *Editor) EditRoom(ctx context.Context, id RoomID, edit RoomEdit) (Room, error) {
	previous, ok := e.model.Room(id)
	if !ok {
		return Room{}, e.warn(fmt.Errorf("%w: %s", ErrUnknownRoom, id))
	}
	next := previous.Clone()
	var problems []string
	if edit.Name != nil {
		next.Name = strings.TrimSpace(*edit.Name)
		if next.Name == "" {
			problems = append(problems, "name is required")
		}
	}
	if edit.Description != nil {
		next.Description = *edit.Description
	}
	if edit.AreaID != nil {
		if *edit.AreaID != 0 {
			if _, ok := e.model.Area(*edit.AreaID); !ok {
				problems = append(problems, fmt.Sprintf("unknown area %d", *edit.AreaID))
			}
		}
		next.AreaID = *edit.AreaID
	}
	if edit.Lighting != nil {
		lighting, ok := ParseLighting(string(*edit.Lighting))
		if !ok {
			problems = append(problems, fmt.Sprintf("unknown lighting %q", *edit.Lighting))
		}
		next.Lighting = lighting
	}
	for _, dir := range edit.ClearExits {
		delete(next.Exits, dir)
	}
	for dir, target := range edit.SetExits {
		if _, ok := e.model.Room(target); !ok {
			problems = append(problems, fmt.Sprintf("exit %s leads to unknown room %s", dir, target))
		}
		next.Exits[dir] = target
	}
	if len(problems) > 0 {
		return Room{}, e.warn(&ValidationError{Subject: "room " + string(id), Problems: problems})
	}
	if err := next.Validate(); err != nil {
		return Room{}, e.warn(err)
	}
	if edit.Coord != nil && *edit.Coord != previous.Coord() {
		to := *edit.Coord
		if !to.InBounds() {
			return Room{}, e.warn(boundsError(to))
		}
		if occupant, taken := e.model.OccupantOutside(to, map[RoomID]bool{id: true}); taken {
			return Room{}, e.warn(&OccupiedError{Coord: to, Occupant: occupant})
		}
		next = next.MoveTo(to)
	}
	updated, err := e.store.UpdateRoom(ctx, id, next)
	if err != nil {
		return Room{}, e.fail("Failed to update room", fmt.Errorf("update room %s: %w", id, err))
	}
	e.undo.Push(UpdateAction(updated, previous))
	if err := e.reload(ctx); err != nil {
		return updated, err
	}
	return updated, nil
}

// MoveSelected translates the targeted rooms by delta, the same commit a
// ctrl-drag drop performs.
func (e *Editor) MoveSelected(ctx context.Context, delta Coord) error {
	ids, err := e.targets()
	if err != nil {
		return err
	}
	plan, err := PlanTranslation(e.model, ids, delta)
	if err != nil {
		return e.warn(fmt.Errorf("cannot move rooms: %w", err))
	}
	if plan.Empty() {
		return nil
	}
	return e.commitMove(ctx, plan)
}

// AutoExitSelected links the multi-selection to its spatial neighbours and
// returns the number of exits added.
func (e *Editor) AutoExitSelected(ctx context.Context) (int, error) {
	ids := e.sel.Members()
	if len(ids) == 0 {
		e.info("No rooms selected")
		return 0, ErrNoSelection
	}
	result := AutoExit(e.model, ids)
	if result.Added == 0 {
		e.info("No new exits added. Rooms are already connected or not adjacent.")
		return 0, nil
	}
	var (
		actions []Action
		errs    []error
	)
	for _, next := range result.Changed {
		previous, ok := e.model.Room(next.RoomID)
		if !ok {
			continue
		}
		updated, err := e.store.UpdateRoom(ctx, next.RoomID, next)
		if err != nil {
			err = fmt.Errorf("link room %s: %w", next.RoomID, err)
			e.logger.Error("auto-exit update failed", "room", next.RoomID, "err", err)
			errs = append(errs, err)
			continue
		}
		actions = append(actions, UpdateAction(updated, previous))
	}
	if err := e.finishBatch(ctx, "Failed to add exits", actions, errs); err != nil {
		return result.Added, err
	}
	e.info("Added %d new exit(s) between selected rooms.", result.Added)
	return result.Added, nil
}

// Undo reverts the newest action. The entry stays popped even when replaying
// it fails.
func (e *Editor) Undo(ctx context.Context) error {
	action, ok := e.undo.Pop()
	if !ok {
		e.info("Nothing to undo")
		return ErrNothingToUndo
	}
	replayErr := e.revert(ctx, action)
	reloadErr := e.reload(ctx)
	if replayErr != nil {
		return e.fail("Failed to undo", replayErr)
	}
	return reloadErr
}

func (e *Editor) revert(ctx context.Context, a Action) error {
	switch a.Kind {
	case ActionCreate:
		if err := e.store.DeleteRoom(ctx, a.Room.RoomID); err != nil {
			return fmt.Errorf("undo create %s: %w", a.Room.RoomID, err)
		}
	case ActionDelete:
		if _, err := e.store.CreateRoom(ctx, a.Room); err != nil {
			return fmt.Errorf("undo delete %s: %w", a.Room.RoomID, err)
		}
	case ActionUpdate:
		if _, err := e.store.UpdateRoom(ctx, a.Previous.RoomID, a.Previous); err != nil {
			return fmt.Errorf("undo update %s: %w", a.Previous.RoomID, err)
		}
	case ActionBulk:
		var errs []error
		for i := len(a.Actions) - 1; i >= 0; i-- {
			if err := e.revert(ctx, a.Actions[i]); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	default:
		return fmt.Errorf("unknown action kind %q", a.Kind)
	}
	return nil
}

// AutoWalk steps from the active room in dir, creating a room there when the
// cell is empty, links both rooms and makes the destination active.
func (e *Editor) AutoWalk(ctx context.Context, dir Direction) (Room, error) {
	if !dir.Valid() {
		return Room{}, e.warn(fmt.Errorf("unknown direction %q", dir))
	}
	if !e.sel.Controls(false).AutoWalk {
		return Room{}, e.warn(ErrAutoWalkDisabled)
	}
	activeID, _ := e.sel.Active()
	from, ok := e.model.Room(activeID)
	if !ok {
		return Room{}, e.warn(fmt.Errorf("%w: %s", ErrUnknownRoom, activeID))
	}

	var actions []Action
	to, exists := e.model.FindAt(from.Coord().Add(dir.Offset()))
	if !exists {
		c := from.Coord().Add(dir.Offset())
		if !c.InBounds() {
			return Room{}, e.warn(boundsError(c))
		}
		id := e.model.NextRoomID()
		created, err := e.store.CreateRoom(ctx, Room{
			RoomID:   id,
			Name:     "Room " + string(id),
			AreaID:   from.AreaID,
			X:        c.X,
			Y:        c.Y,
			Z:        c.Z,
			Exits:    make(map[Direction]RoomID),
			Lighting: LightingNormal,
		})
		if err != nil {
			return Room{}, e.fail("Failed to create room", fmt.Errorf("create room %s: %w", id, err))
		}
		actions = append(actions, CreateAction(created))
		to = created.Clone()
	}

	link := func(previous Room, d Direction, target RoomID) error {
		next := previous.Clone()
		next.Exits[d] = target
		updated, err := e.store.UpdateRoom(ctx, previous.RoomID, next)
		if err != nil {
			return fmt.Errorf("link room %s %s: %w", previous.RoomID, d, err)
		}
		actions = append(actions, UpdateAction(updated, previous))
		return nil
	}
	var errs []error
	if err := link(from, dir, to.RoomID); err != nil {
		errs = append(errs, err)
	}
	if err := link(to, dir.Opposite(), from.RoomID); err != nil {
		errs = append(errs, err)
	}
	e.sel.Select(to.RoomID)
	if err := e.finishBatch(ctx, "Failed to link rooms", actions, errs); err != nil {
		return to, err
	}
	if r, ok := e.model.Room(to.RoomID); ok {
		to = r
	}
	return to, nil
}

// SaveDoor validates door and stores it on the room's exit in dir. Nothing is
// sent when validation fails.
func (e *Editor) SaveDoor(ctx context.Context, id RoomID, dir Direction, door Door) error {
	if !dir.Valid() {
		return e.warn(&ValidationError{Subject: "door", Problems: []string{fmt.Sprintf("unknown direction %q", dir)}})
	}
	if err := door.Validate(); err != nil {
		return e.warn(err)
	}
	previous, ok := e.model.Room(id)
	if !ok {
		return e.warn(fmt.Errorf("%w: %s", ErrUnknownRoom, id))
	}
	if err := e.store.UpsertDoor(ctx, id, dir, door); err != nil {
		return e.fail("Failed to save door", fmt.Errorf("save door %s %s: %w", id, dir, err))
	}
	next := previous.Clone()
	if next.Doors == nil {
		next.Doors = make(map[Direction]Door)
	}
	next.Doors[dir] = door.Clone()
	e.undo.Push(UpdateAction(next, previous))
	return e.reload(ctx)
}

// RemoveDoor deletes the door on the room's exit in dir.
func (e *Editor) RemoveDoor(ctx context.Context, id RoomID, dir Direction) error {
	previous, ok := e.model.Room(id)
	if !ok {
		return e.warn(fmt.Errorf("%w: %s", ErrUnknownRoom, id))
	}
	if _, has := previous.Doors[dir]; !has {
		return e.warn(fmt.Errorf("%s has no door to the %s", id, dir))
	}
	if err := e.store.DeleteDoor(ctx, id, dir); err != nil {
		return e.fail("Failed to remove door", fmt.Errorf("remove door %s %s: %w", id, dir, err))
	}
	next := previous.Clone()
	delete(next.Doors, dir)
	if len(next.Doors) == 0 {
		next.Doors = nil
	}
	e.undo.Push(UpdateAction(next, previous))
	return e.reload(ctx)
}

// CreateArea registers a new area.
func (e *Editor) CreateArea(ctx context.Context, area Area) (Area, error) {
	area.AreaID = strings.TrimSpace(area.AreaID)
	area.Name = strings.TrimSpace(area.Name)
	var problems []string
	if area.AreaID == "" {
		problems = append(problems, "area_id is required")
	}
	if area.Name == "" {
		problems = append(problems, "name is required")
	}
	if _, exists := e.model.AreaByKey(area.AreaID); exists && area.AreaID != "" {
		problems = append(problems, fmt.Sprintf("area %s already exists", area.AreaID))
	}
	if len(problems) > 0 {
		return Area{}, e.warn(&ValidationError{Subject: "area", Problems: problems})
	}
	created, err := e.store.CreateArea(ctx, area)
	if err != nil {
		return Area{}, e.fail("Failed to create area", fmt.Errorf("create area %s: %w", area.AreaID, err))
	}
	if err := e.reload(ctx); err != nil {
		return created, err
	}
	return created, nil
}

// SetLevel changes the shown z-plane.
func (e *Editor) SetLevel(level Level) {
	e.level = level
	e.selectionChanged()
}

// SetAreaFilter restricts the map to one area by its area_id; an empty key
// clears the filter.
func (e *Editor) SetAreaFilter(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		e.areaFilter = 0
		e.selectionChanged()
		return nil
	}
	area, ok := e.model.AreaByKey(key)
	if !ok {
		return e.warn(fmt.Errorf("unknown area %q", key))
	}
	e.areaFilter = area.ID
	e.selectionChanged()
	return nil
}

// SetSurrounding toggles drawing rooms near the filtered area.
func (e *Editor) SetSurrounding(enabled bool) {
	e.surrounding = enabled
	e.redraw()
}

// Surrounding reports whether nearby rooms are drawn.
func (e *Editor) Surrounding() bool {
	return e.surrounding
}

// SetClickToCreate toggles room creation on empty-canvas clicks.
func (e *Editor) SetClickToCreate(enabled bool) {
	e.clickToCreate = enabled
}

// ClickToCreate reports whether empty-canvas clicks create rooms.
func (e *Editor) ClickToCreate() bool {
	return e.clickToCreate
}
