package builder

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoSelection indicates a batch command ran with nothing selected.
	ErrNoSelection = errors.New("no rooms selected")
	// ErrUnknownRoom indicates a room id is not present in the loaded map.
	ErrUnknownRoom = errors.New("unknown room")
	// ErrNothingToUndo indicates the undo log is empty.
	ErrNothingToUndo = errors.New("nothing to undo")
	// ErrAutoWalkDisabled indicates auto-walk needs exactly one active room.
	ErrAutoWalkDisabled = errors.New("auto walk needs a single active room")
	// ErrOutOfBounds indicates a position beyond MaxCoord on some axis.
	ErrOutOfBounds = errors.New("position out of bounds")
)

func boundsError(c Coord) error {
	return fmt.Errorf("%w: %s is beyond %d", ErrOutOfBounds, c, MaxCoord)
}

// ValidationError lists everything wrong with a room or door before it is sent.
type ValidationError struct {
	Subject  string
	Problems []string
}

func (e *ValidationError) Error() string {
	subject := strings.TrimSpace(e.Subject)
	if subject == "" {
		subject = "invalid data"
	}
	return fmt.Sprintf("%s: %s", subject, strings.Join(e.Problems, "; "))
}

// OccupiedError reports a target cell that already holds another room.
type OccupiedError struct {
	Coord    Coord
	Occupant Room
}

func (e *OccupiedError) Error() string {
	return fmt.Sprintf("position %s is occupied by %s", e.Coord, e.Occupant.Name)
}
