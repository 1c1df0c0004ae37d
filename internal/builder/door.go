package builder

import (
	"fmt"
	"strings"
)

// DoorFlag is a single door behaviour switch.
type DoorFlag string

const (
	DoorClosed    DoorFlag = "closed"
	DoorLocked    DoorFlag = "locked"
	DoorPickProof DoorFlag = "pick_proof"
	DoorPassProof DoorFlag = "pass_proof"
	DoorSecret    DoorFlag = "secret"
	DoorHidden    DoorFlag = "hidden"
	DoorNoLock    DoorFlag = "no_lock"
	DoorNoKnock   DoorFlag = "no_knock"
	DoorNoClose   DoorFlag = "no_close"
)

var knownDoorFlags = map[DoorFlag]bool{
	DoorClosed:    true,
	DoorLocked:    true,
	DoorPickProof: true,
	DoorPassProof: true,
	DoorSecret:    true,
	DoorHidden:    true,
	DoorNoLock:    true,
	DoorNoKnock:   true,
	DoorNoClose:   true,
}

// MaxLockDifficulty bounds Door.LockDifficulty. Values above 100 are magical locks.
const MaxLockDifficulty = 255

// Door overlays one exit direction of a room.
type Door struct {
	DoorID         string     `json:"door_id"`
	Name           string     `json:"name"`
	Description    string     `json:"description,omitempty"`
	KeyID          string     `json:"key_id,omitempty"`
	LockDifficulty int        `json:"lock_difficulty"`
	Flags          []DoorFlag `json:"flags"`
}

// Clone copies the door including its flag slice.
func (d Door) Clone() Door {
	out := d
	if d.Flags != nil {
		out.Flags = append([]DoorFlag(nil), d.Flags...)
	}
	return out
}

// Has reports whether the flag is set.
func (d Door) Has(flag DoorFlag) bool {
	for _, f := range d.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// ParseDoorFlags splits a comma or space separated flag list.
func ParseDoorFlags(s string) []DoorFlag {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '|'
	})
	flags := make([]DoorFlag, 0, len(fields))
	seen := make(map[DoorFlag]bool, len(fields))
	for _, field := range fields {
		flag := DoorFlag(strings.ToLower(strings.TrimSpace(field)))
		if flag == "" || seen[flag] {
			continue
		}
		seen[flag] = true
		flags = append(flags, flag)
	}
	return flags
}

// Validate applies the door rules and reports every problem found.
func (d Door) Validate() error {
	var problems []string
	if strings.TrimSpace(d.DoorID) == "" {
		problems = append(problems, "door_id is required")
	}
	if strings.TrimSpace(d.Name) == "" {
		problems = append(problems, "name is required")
	}
	for _, flag := range d.Flags {
		if !knownDoorFlags[flag] {
			problems = append(problems, fmt.Sprintf("unknown flag %q", flag))
		}
	}
	if d.Has(DoorLocked) && strings.TrimSpace(d.KeyID) == "" {
		problems = append(problems, "locked doors must have a key_id")
	}
	if d.Has(DoorNoLock) && d.Has(DoorLocked) {
		problems = append(problems, "door cannot be both no_lock and locked")
	}
	if d.Has(DoorNoClose) && d.Has(DoorClosed) {
		problems = append(problems, "door cannot be both no_close and closed")
	}
	if d.LockDifficulty < 0 || d.LockDifficulty > MaxLockDifficulty {
		problems = append(problems, fmt.Sprintf("lock_difficulty must be between 0 and %d", MaxLockDifficulty))
	}
	if len(problems) > 0 {
		return &ValidationError{Subject: "door " + d.DoorID, Problems: problems}
	}
	return nil
}
