package viewer

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

const writeTimeout = 5 * time.Second

// Server exposes the broadcaster over HTTP: a websocket feed plus a JSON
// snapshot of each designer's latest map.
type Server struct {
	b      *Broadcaster
	logger *slog.Logger
	// OriginPatterns is passed to websocket.Accept for cross-origin viewers.
	OriginPatterns []string
}

// NewServer serves b. A nil logger uses slog.Default.
func NewServer(b *Broadcaster, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{b: b, logger: logger}
}

// Handler returns the viewer routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.healthz)
	r.Get("/frames", s.frames)
	r.Get("/ws", s.feed)
	return r
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"subscribers": s.b.Subscribers(),
	})
}

func (s *Server) frames(w http.ResponseWriter, r *http.Request) {
	latest := s.b.Latest()
	if name := r.URL.Query().Get("designer"); name != "" {
		ev, ok := latest[name]
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "no frames for " + name})
			return
		}
		writeJSON(w, http.StatusOK, ev)
		return
	}
	writeJSON(w, http.StatusOK, latest)
}

// feed streams events, optionally only one designer's, starting with a hello
// frame and then the cached maps.
func (s *Server) feed(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: s.OriginPatterns})
	if err != nil {
		s.logger.Warn("viewer accept failed", "err", err)
		return
	}
	defer conn.CloseNow()

	id := uuid.NewString()
	only := r.URL.Query().Get("designer")
	logger := s.logger.With("viewer", id, "remote", r.RemoteAddr)

	events := s.b.Subscribe()
	defer s.b.Unsubscribe(events)

	// Viewers never send; CloseRead handles their close frame and pings.
	ctx := conn.CloseRead(r.Context())

	hello, _ := json.Marshal(map[string]string{"viewer": id, "designer": only})
	if err := s.write(ctx, conn, Event{Type: EventHello, Time: time.Now().UTC(), Payload: hello}); err != nil {
		return
	}
	for _, ev := range s.b.Frames() {
		if only != "" && ev.Designer != only {
			continue
		}
		if err := s.write(ctx, conn, ev); err != nil {
			return
		}
	}
	logger.Info("viewer attached", "designer", only)

	for {
		select {
		case <-ctx.Done():
			logger.Info("viewer detached")
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if only != "" && ev.Designer != only {
				continue
			}
			if err := s.write(ctx, conn, ev); err != nil {
				if status := websocket.CloseStatus(err); status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway && !errors.Is(err, context.Canceled) {
					logger.Warn("viewer write failed", "err", err)
				}
				return
			}
		}
	}
}

func (s *Server) write(ctx context.Context, conn *websocket.Conn, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, data)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ListenAndServe serves the viewer on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves the viewer on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	s.logger.Info("viewer listening", "addr", ln.Addr().String())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
