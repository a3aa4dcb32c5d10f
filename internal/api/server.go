// Package api exposes a small read-only HTTP surface over a running
// Simulation for an external renderer: status, a forward-only event
// cursor, a bearer-token-gated speed control, and a websocket push
// channel. See design doc Section 3.6.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/atlasforge/chronicle/internal/engine"
)

// Server serves the read-only HTTP API for a Simulation.
type Server struct {
	Sim      *engine.Simulation
	AdminKey string // Bearer token required for POST endpoints. Empty disables them.

	stream *streamHub
}

// NewServer wires a Server around sim. AdminKey may be empty, which
// disables every write endpoint (POST /speed) but leaves the read-only
// surface serving.
func NewServer(sim *engine.Simulation, adminKey string) *Server {
	return &Server{
		Sim:      sim,
		AdminKey: adminKey,
		stream:   newStreamHub(),
	}
}

// Handler builds the request router. Kept separate from Start so tests can
// exercise routes with httptest without opening a real listener.
func (s *Server) Handler() http.Handler {
	speedLimiter := NewRateLimiter(30, time.Minute)
	streamLimiter := NewRateLimiter(10, time.Minute)

	mux := http.NewServeMux()
	mux.HandleFunc("/status", s.withTrace(s.handleStatus))
	mux.HandleFunc("/events", s.withTrace(s.handleEvents))
	mux.HandleFunc("/speed", s.withTrace(RateLimitMiddleware(speedLimiter, s.adminOnly(s.handleSpeed))))
	mux.HandleFunc("/stream", s.withTrace(RateLimitMiddleware(streamLimiter, s.handleStream)))
	return mux
}

// Start runs the HTTP API on addr until ctx is cancelled, then shuts down
// gracefully. Grounded on the teacher's Start-in-a-goroutine shape, but
// blocking here so cmd/worldsim can tie its lifetime to the same context
// that drives graceful shutdown.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler()}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// BroadcastEvent pushes an event to every connected stream client. Called
// by the tick driver right after EventLog.Emit, per spec §3.6's
// push-on-tick model.
func (s *Server) BroadcastEvent(e engine.Event) {
	s.stream.broadcast(e)
}

// withTrace attaches a per-request google/uuid trace id to the logger used
// for that request — log correlation only, never a simulation entity id
// (entity ids come from entities.IDGenerator).
func (s *Server) withTrace(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		traceID := uuid.NewString()
		w.Header().Set("X-Trace-Id", traceID)
		logger := slog.With("trace_id", traceID, "path", r.URL.Path, "method", r.Method)
		logger.Debug("request received")
		next(w, r)
	}
}

func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	return len(auth) > len(prefix) && auth[:len(prefix)] == prefix && auth[len(prefix):] == s.AdminKey
}

// adminOnly rejects POST requests without a valid bearer token. GET
// requests pass through unchanged.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no admin token configured)", http.StatusForbidden)
				return
			}
			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response failed", "error", err)
	}
}

// handleStatus reports the current simulation snapshot.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.GetState())
}

// handleEvents implements the forward-only cursor read of spec §3.6:
// GET /events?since=<cursor> returns every latent event appended after
// cursor, plus the cursor to pass next time.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	cursor := engine.Cursor(0)
	if raw := r.URL.Query().Get("since"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			http.Error(w, "invalid since cursor", http.StatusBadRequest)
			return
		}
		cursor = engine.Cursor(n)
	}

	events, next := s.Sim.Events.Since(cursor)
	writeJSON(w, map[string]any{
		"events": events,
		"cursor": int(next),
	})
}

// handleSpeed reports the current tick speed on GET, and on an
// admin-authorized POST applies a new one.
func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var req struct {
			Speed int `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Speed < int(engine.SpeedPaused) || req.Speed > int(engine.Speed4) {
			http.Error(w, "speed out of range", http.StatusBadRequest)
			return
		}
		s.Sim.SetSpeed(engine.Speed(req.Speed))
		slog.Info("speed changed via API", "speed", req.Speed)
	}

	writeJSON(w, map[string]int{"speed": int(s.Sim.Speed)})
}
