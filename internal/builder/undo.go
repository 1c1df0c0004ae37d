package builder

// UndoCapacity is the number of actions kept in the undo log.
const UndoCapacity = 3

// ActionKind tags an undo entry.
type ActionKind string

const (
	ActionCreate ActionKind = "create"
	ActionDelete ActionKind = "delete"
	ActionUpdate ActionKind = "update"
	ActionBulk   ActionKind = "bulk"
)

// Action records one committed mutation.
//
// For create, Room is the created room. For delete, Room is the snapshot taken
// before deletion. For update, Room is the new state and Previous the old one.
// For bulk, Actions holds the sub-actions in the order they were applied.
type Action struct {
	Kind     ActionKind
	Room     Room
	Previous Room
	Actions  []Action
}

// CreateAction records a room creation.
func CreateAction(created Room) Action {
	return Action{Kind: ActionCreate, Room: created.Clone()}
}

// DeleteAction records a deletion with the room's final snapshot.
func DeleteAction(snapshot Room) Action {
	return Action{Kind: ActionDelete, Room: snapshot.Clone()}
}

// UpdateAction records an overwrite of previous by next.
func UpdateAction(next, previous Room) Action {
	return Action{Kind: ActionUpdate, Room: next.Clone(), Previous: previous.Clone()}
}

// BulkAction groups several actions. A single action is returned unwrapped.
func BulkAction(actions []Action) Action {
	if len(actions) == 1 {
		return actions[0]
	}
	return Action{Kind: ActionBulk, Actions: append([]Action(nil), actions...)}
}

// UndoLog is a fixed-capacity stack: pushes past capacity evict the oldest
// entry, pops return the newest.
type UndoLog struct {
	entries  []Action
	capacity int
}

// NewUndoLog creates an undo log holding at most capacity entries.
func NewUndoLog(capacity int) *UndoLog {
	if capacity <= 0 {
		capacity = UndoCapacity
	}
	return &UndoLog{entries: make([]Action, 0, capacity), capacity: capacity}
}

// Push records an action, evicting the oldest when full. Empty bulk actions
// are ignored.
func (l *UndoLog) Push(a Action) {
	if a.Kind == ActionBulk && len(a.Actions) == 0 {
		return
	}
	if len(l.entries) >= l.capacity {
		copy(l.entries, l.entries[1:])
		l.entries = l.entries[:len(l.entries)-1]
	}
	l.entries = append(l.entries, a)
}

// Pop removes and returns the newest action.
func (l *UndoLog) Pop() (Action, bool) {
	if len(l.entries) == 0 {
		return Action{}, false
	}
	last := l.entries[len(l.entries)-1]
	l.entries = l.entries[:len(l.entries)-1]
	return last, true
}

// Peek returns the newest action without removing it.
func (l *UndoLog) Peek() (Action, bool) {
	if len(l.entries) == 0 {
		return Action{}, false
	}
	return l.entries[len(l.entries)-1], true
}

// Len returns the number of stored actions.
func (l *UndoLog) Len() int {
	return len(l.entries)
}

// Capacity returns the maximum number of stored actions.
func (l *UndoLog) Capacity() int {
	return l.capacity
}
