package mapserver

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"MudraBuilder/internal/builder"
)

// Seed is the on-disk area file format: the areas and rooms a server starts
// with, and what the export command writes back out.
type Seed struct {
	Name  string         `json:"name,omitempty"`
	Areas []builder.Area `json:"areas"`
	Rooms []builder.Room `json:"rooms"`
}

// LoadSeedFile reads and validates an area file.
func LoadSeedFile(path string) (Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("read seed %s: %w", path, err)
	}
	var seed Seed
	if err := json.Unmarshal(data, &seed); err != nil {
		return Seed{}, fmt.Errorf("decode seed %s: %w", path, err)
	}
	if err := seed.Validate(); err != nil {
		return Seed{}, fmt.Errorf("seed %s: %w", path, err)
	}
	return seed, nil
}

// Validate rejects rooms without ids, duplicate ids and malformed rooms.
func (s Seed) Validate() error {
	areaIDs := make(map[int]bool, len(s.Areas))
	areaKeys := make(map[string]bool, len(s.Areas))
	for _, a := range s.Areas {
		if a.AreaID == "" {
			return fmt.Errorf("area without an area_id")
		}
		if areaKeys[a.AreaID] {
			return fmt.Errorf("duplicate area %s", a.AreaID)
		}
		areaKeys[a.AreaID] = true
		if a.ID != 0 {
			if areaIDs[a.ID] {
				return fmt.Errorf("duplicate area id %d", a.ID)
			}
			areaIDs[a.ID] = true
		}
	}
	seen := make(map[builder.RoomID]bool, len(s.Rooms))
	for _, r := range s.Rooms {
		if r.RoomID == "" {
			return fmt.Errorf("room without a room_id")
		}
		if seen[r.RoomID] {
			return fmt.Errorf("duplicate room id %s", r.RoomID)
		}
		seen[r.RoomID] = true
		if err := r.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// WriteSeedFile writes seed to path atomically via a temp file and rename.
// Rooms are written sorted by id so exports diff cleanly.
func WriteSeedFile(path string, seed Seed) error {
	rooms := make([]builder.Room, len(seed.Rooms))
	for i, r := range seed.Rooms {
		rooms[i] = r.Clone()
	}
	sort.Slice(rooms, func(i, j int) bool {
		return rooms[i].RoomID < rooms[j].RoomID
	})
	seed.Rooms = rooms

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create seed directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "seed-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp seed file: %w", err)
	}
	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(seed); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write seed: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close seed: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace seed: %w", err)
	}
	return nil
}
