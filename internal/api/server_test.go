package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/atlasforge/chronicle/internal/engine"
	"github.com/atlasforge/chronicle/internal/world"
)

func newTestServer(t *testing.T, adminKey string) *Server {
	t.Helper()
	w, err := world.Generate(world.GenConfig{Seed: 3})
	if err != nil {
		t.Fatalf("world.Generate: %v", err)
	}
	sim := engine.NewSimulation(3, w)
	if err := sim.Initialize(); err != nil {
		t.Fatalf("sim.Initialize: %v", err)
	}
	return NewServer(sim, adminKey)
}

func TestHandleStatusReportsState(t *testing.T) {
	s := newTestServer(t, "")
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got engine.State
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Tribes != len(s.Sim.Tribes) {
		t.Fatalf("Tribes = %d, want %d", got.Tribes, len(s.Sim.Tribes))
	}
}

func TestHandleEventsForwardCursor(t *testing.T) {
	s := newTestServer(t, "")
	if len(s.Sim.Tribes) == 0 {
		t.Fatal("expected at least one tribe from Initialize")
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/events?since=0", nil)
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Events []engine.Event `json:"events"`
		Cursor int            `json:"cursor"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Events) == 0 {
		t.Fatal("expected tribeFormed events emitted during Initialize")
	}

	rec2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/events?since="+strconv.Itoa(body.Cursor), nil)
	s.Handler().ServeHTTP(rec2, req2)
	var body2 struct {
		Events []engine.Event `json:"events"`
	}
	if err := json.NewDecoder(rec2.Body).Decode(&body2); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body2.Events) != 0 {
		t.Fatalf("re-querying at the returned cursor should yield no events, got %d", len(body2.Events))
	}
}

func TestHandleEventsRejectsInvalidCursor(t *testing.T) {
	s := newTestServer(t, "")
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/events?since=notanumber", nil)
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleSpeedGet(t *testing.T) {
	s := newTestServer(t, "")
	s.Sim.SetSpeed(engine.Speed3)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/speed", nil)
	s.Handler().ServeHTTP(rec, req)

	var body struct {
		Speed int `json:"speed"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Speed != int(engine.Speed3) {
		t.Fatalf("speed = %d, want %d", body.Speed, int(engine.Speed3))
	}
}

func TestHandleSpeedPostWithoutAdminKeyForbidden(t *testing.T) {
	s := newTestServer(t, "")
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/speed", strings.NewReader(`{"speed":2}`))
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403 when no admin key is configured", rec.Code)
	}
}

func TestHandleSpeedPostRequiresBearerToken(t *testing.T) {
	s := newTestServer(t, "secret")
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/speed", strings.NewReader(`{"speed":2}`))
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 without a bearer token", rec.Code)
	}
}

func TestHandleSpeedPostAppliesNewSpeed(t *testing.T) {
	s := newTestServer(t, "secret")
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/speed", strings.NewReader(`{"speed":3}`))
	req.Header.Set("Authorization", "Bearer secret")
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if s.Sim.Speed != engine.Speed3 {
		t.Fatalf("Speed = %v, want Speed3", s.Sim.Speed)
	}
}

func TestHandleSpeedPostRejectsOutOfRange(t *testing.T) {
	s := newTestServer(t, "secret")
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/speed", strings.NewReader(`{"speed":99}`))
	req.Header.Set("Authorization", "Bearer secret")
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for an out-of-range speed", rec.Code)
	}
}
