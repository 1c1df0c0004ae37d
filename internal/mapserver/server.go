// Package mapserver serves the map REST API from memory. It backs offline
// editing sessions and stands in for the real API in tests.
package mapserver

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"MudraBuilder/internal/builder"
)

// Server holds the room and area catalogue behind the REST routes.
type Server struct {
	mu         sync.RWMutex
	rooms      map[builder.RoomID]builder.Room
	order      []builder.RoomID
	areas      []builder.Area
	nextAreaID int
	failing    map[builder.RoomID]int

	requests atomic.Int64
	writes   atomic.Int64

	logger      *slog.Logger
	logRequests bool
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for rejected writes.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRequestLogging enables chi's request logger.
func WithRequestLogging() Option {
	return func(s *Server) {
		s.logRequests = true
	}
}

// New creates a server holding the seed's areas and rooms.
func New(seed Seed, opts ...Option) (*Server, error) {
	if err := seed.Validate(); err != nil {
		return nil, err
	}
	s := &Server{
		rooms:   make(map[builder.RoomID]builder.Room, len(seed.Rooms)),
		failing: make(map[builder.RoomID]int),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, a := range seed.Areas {
		if a.ID > s.nextAreaID {
			s.nextAreaID = a.ID
		}
	}
	for _, a := range seed.Areas {
		if a.ID == 0 {
			s.nextAreaID++
			a.ID = s.nextAreaID
		}
		s.areas = append(s.areas, a)
	}
	for _, r := range seed.Rooms {
		s.putLocked(normalizeRoom(r))
	}
	return s, nil
}

func normalizeRoom(r builder.Room) builder.Room {
	r = r.Clone()
	if r.Lighting == "" {
		r.Lighting = builder.LightingNormal
	}
	if len(r.Doors) == 0 {
		r.Doors = nil
	}
	return r
}

func (s *Server) putLocked(r builder.Room) {
	if _, exists := s.rooms[r.RoomID]; !exists {
		s.order = append(s.order, r.RoomID)
	}
	s.rooms[r.RoomID] = r
}

// Handler returns the full router with middleware.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if s.logRequests {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(s.count)
	s.RegisterRoutes(r)
	return r
}

// RegisterRoutes mounts the REST routes on r.
func (s *Server) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/areas", s.listAreas)
		r.Post("/areas", s.createArea)
		r.Get("/rooms", s.listRooms)
		r.Post("/rooms", s.createRoom)
		r.Route("/rooms/{roomID}", func(r chi.Router) {
			r.Put("/", s.updateRoom)
			r.Delete("/", s.deleteRoom)
			r.Put("/doors/{direction}", s.upsertDoor)
			r.Delete("/doors/{direction}", s.deleteDoor)
		})
	})
}

func (s *Server) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			s.writes.Add(1)
		}
		next.ServeHTTP(w, r)
	})
}

// Requests returns the number of requests served.
func (s *Server) Requests() int64 {
	return s.requests.Load()
}

// Writes returns the number of non-GET requests served.
func (s *Server) Writes() int64 {
	return s.writes.Load()
}

// FailRoom makes every write touching id answer with status until RecoverRoom.
func (s *Server) FailRoom(id builder.RoomID, status int) {
	s.mu.Lock()
	s.failing[id] = status
	s.mu.Unlock()
}

// RecoverRoom clears a failure set by FailRoom.
func (s *Server) RecoverRoom(id builder.RoomID) {
	s.mu.Lock()
	delete(s.failing, id)
	s.mu.Unlock()
}

// Snapshot returns the current catalogue as a seed.
func (s *Server) Snapshot() Seed {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seed := Seed{Areas: append([]builder.Area(nil), s.areas...)}
	for _, id := range s.order {
		seed.Rooms = append(seed.Rooms, s.rooms[id].Clone())
	}
	return seed
}

// Room returns a stored room.
func (s *Server) Room(id builder.RoomID) (builder.Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[id]
	if !ok {
		return builder.Room{}, false
	}
	return r.Clone(), true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

type doorResult struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

func (s *Server) injected(id builder.RoomID) (int, bool) {
	status, ok := s.failing[id]
	return status, ok
}

func (s *Server) listAreas(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	areas := append([]builder.Area{}, s.areas...)
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, areas)
}

func (s *Server) createArea(w http.ResponseWriter, r *http.Request) {
	var area builder.Area
	if err := json.NewDecoder(r.Body).Decode(&area); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	area.AreaID = strings.TrimSpace(area.AreaID)
	area.Name = strings.TrimSpace(area.Name)
	if area.AreaID == "" || area.Name == "" {
		writeError(w, http.StatusBadRequest, "area_id and name are required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.areas {
		if strings.EqualFold(existing.AreaID, area.AreaID) {
			writeError(w, http.StatusConflict, fmt.Sprintf("area %s already exists", area.AreaID))
			return
		}
	}
	s.nextAreaID++
	area.ID = s.nextAreaID
	s.areas = append(s.areas, area)
	writeJSON(w, http.StatusCreated, area)
}

func (s *Server) listRooms(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	rooms := make([]builder.Room, 0, len(s.order))
	for _, id := range s.order {
		rooms = append(rooms, s.rooms[id].Clone())
	}
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, rooms)
}

func (s *Server) createRoom(w http.ResponseWriter, r *http.Request) {
	var room builder.Room
	if err := json.NewDecoder(r.Body).Decode(&room); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	room = normalizeRoom(room)
	if err := room.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if status, fail := s.injected(room.RoomID); fail {
		s.logger.Warn("rejecting room create", "room", room.RoomID, "status", status)
		writeError(w, status, "room unavailable")
		return
	}
	if _, exists := s.rooms[room.RoomID]; exists {
		writeError(w, http.StatusConflict, fmt.Sprintf("room %s already exists", room.RoomID))
		return
	}
	s.putLocked(room)
	writeJSON(w, http.StatusCreated, room)
}

func (s *Server) updateRoom(w http.ResponseWriter, r *http.Request) {
	id := builder.RoomID(chi.URLParam(r, "roomID"))
	var room builder.Room
	if err := json.NewDecoder(r.Body).Decode(&room); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if room.RoomID != "" && room.RoomID != id {
		writeError(w, http.StatusBadRequest, "room_id cannot be changed")
		return
	}
	room.RoomID = id
	room = normalizeRoom(room)
	if err := room.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if status, fail := s.injected(id); fail {
		s.logger.Warn("rejecting room update", "room", id, "status", status)
		writeError(w, status, "room unavailable")
		return
	}
	if _, exists := s.rooms[id]; !exists {
		writeError(w, http.StatusNotFound, fmt.Sprintf("room %s not found", id))
		return
	}
	s.putLocked(room)
	writeJSON(w, http.StatusOK, room)
}

func (s *Server) deleteRoom(w http.ResponseWriter, r *http.Request) {
	id := builder.RoomID(chi.URLParam(r, "roomID"))
	s.mu.Lock()
	defer s.mu.Unlock()
	if status, fail := s.injected(id); fail {
		s.logger.Warn("rejecting room delete", "room", id, "status", status)
		writeError(w, status, "room unavailable")
		return
	}
	if _, exists := s.rooms[id]; !exists {
		writeError(w, http.StatusNotFound, fmt.Sprintf("room %s not found", id))
		return
	}
	delete(s.rooms, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) upsertDoor(w http.ResponseWriter, r *http.Request) {
	id := builder.RoomID(chi.URLParam(r, "roomID"))
	dir, ok := builder.ParseDirection(chi.URLParam(r, "direction"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, doorResult{Error: "unknown direction"})
		return
	}
	var door builder.Door
	if err := json.NewDecoder(r.Body).Decode(&door); err != nil {
		writeJSON(w, http.StatusBadRequest, doorResult{Error: "invalid json"})
		return
	}
	if err := door.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, doorResult{Error: err.Error()})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if status, fail := s.injected(id); fail {
		s.logger.Warn("rejecting door save", "room", id, "status", status)
		writeJSON(w, status, doorResult{Error: "room unavailable"})
		return
	}
	room, exists := s.rooms[id]
	if !exists {
		writeJSON(w, http.StatusNotFound, doorResult{Error: fmt.Sprintf("room %s not found", id)})
		return
	}
	room = room.Clone()
	if room.Doors == nil {
		room.Doors = make(map[builder.Direction]builder.Door)
	}
	room.Doors[dir] = door.Clone()
	s.putLocked(room)
	writeJSON(w, http.StatusOK, doorResult{OK: true})
}

func (s *Server) deleteDoor(w http.ResponseWriter, r *http.Request) {
	id := builder.RoomID(chi.URLParam(r, "roomID"))
	dir, ok := builder.ParseDirection(chi.URLParam(r, "direction"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, doorResult{Error: "unknown direction"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if status, fail := s.injected(id); fail {
		s.logger.Warn("rejecting door removal", "room", id, "status", status)
		writeJSON(w, status, doorResult{Error: "room unavailable"})
		return
	}
	room, exists := s.rooms[id]
	if !exists {
		writeJSON(w, http.StatusNotFound, doorResult{Error: fmt.Sprintf("room %s not found", id)})
		return
	}
	if _, has := room.Doors[dir]; !has {
		writeJSON(w, http.StatusNotFound, doorResult{Error: fmt.Sprintf("no door to the %s", dir)})
		return
	}
	room = room.Clone()
	delete(room.Doors, dir)
	s.putLocked(normalizeRoom(room))
	writeJSON(w, http.StatusOK, doorResult{OK: true})
}
