package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vovakirdan/tui-platformer/internal/metrics"
	"github.com/vovakirdan/tui-platformer/internal/ratelimit"
	"github.com/vovakirdan/tui-platformer/internal/sim"
	"github.com/vovakirdan/tui-platformer/internal/spectate"
	"github.com/vovakirdan/tui-platformer/internal/storage"
)

type fakeRuns struct {
	top    map[string][]storage.Run
	recent []storage.Run
}

func (f *fakeRuns) TopRuns(mapID string, limit int) ([]storage.Run, error) {
	runs := f.top[mapID]
	if len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

func (f *fakeRuns) RecentRuns(limit int) ([]storage.Run, error) {
	if len(f.recent) > limit {
		return f.recent[:limit], nil
	}
	return f.recent, nil
}

func (f *fakeRuns) GetMapStats(mapID string) (*storage.MapStats, error) {
	return &storage.MapStats{MapID: mapID, Runs: len(f.top[mapID])}, nil
}

func (f *fakeRuns) BestRun(mapID string) (*storage.Run, error) {
	if runs := f.top[mapID]; len(runs) > 0 {
		return &runs[0], nil
	}
	return nil, nil
}

type fakeMaps []string

func (f fakeMaps) ListIDs() ([]string, error) { return f, nil }

func newTestRouter(t *testing.T, hub *spectate.Hub, rl ratelimit.Config) (http.Handler, *metrics.Metrics) {
	t.Helper()
	limiter := ratelimit.NewIPRateLimiter(rl)
	t.Cleanup(limiter.Stop)
	m := metrics.New()
	runs := &fakeRuns{
		top: map[string][]storage.Run{
			"meadow": {{ID: 1, MapID: "meadow", Score: 900}, {ID: 2, MapID: "meadow", Score: 500}},
		},
		recent: []storage.Run{{ID: 3, MapID: "caverns"}},
	}
	return NewRouter(RouterConfig{
		Hub:         hub,
		Runs:        runs,
		Maps:        fakeMaps{"meadow", "caverns"},
		Metrics:     m,
		RateLimiter: limiter,
	}), m
}

var generous = ratelimit.Config{RequestsPerSecond: 1000, Burst: 1000}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRoutes(t *testing.T) {
	hub := spectate.NewHub()
	id := hub.Register("meadow", "ann")
	r, _ := newTestRouter(t, hub, generous)

	tests := []struct {
		target   string
		status   int
		contains string
	}{
		{"/health", http.StatusOK, `"status":"ok"`},
		{"/api/sessions", http.StatusOK, string(id)},
		{"/api/sessions/" + string(id), http.StatusOK, `"map_id":"meadow"`},
		{"/api/sessions/nope", http.StatusNotFound, "session not found"},
		{"/api/runs?map=meadow&limit=1", http.StatusOK, `"score":900`},
		{"/api/runs", http.StatusOK, `"map_id":"caverns"`},
		{"/api/runs?limit=zero", http.StatusBadRequest, "invalid limit"},
		{"/api/maps", http.StatusOK, `["meadow","caverns"]`},
		{"/api/maps/meadow/stats", http.StatusOK, `"runs":2`},
		{"/api/maps/caverns/stats", http.StatusOK, `"best":null`},
		{"/health", http.StatusOK, `"rate_limit":{`},
		{"/metrics", http.StatusOK, "platformer_sessions_active"},
	}

	for _, tc := range tests {
		rec := get(t, r, tc.target)
		if rec.Code != tc.status {
			t.Errorf("GET %s status = %d, expected %d", tc.target, rec.Code, tc.status)
		}
		if !strings.Contains(rec.Body.String(), tc.contains) {
			t.Errorf("GET %s body = %q, expected to contain %q", tc.target, rec.Body.String(), tc.contains)
		}
	}
}

func TestRunsLimitApplied(t *testing.T) {
	r, _ := newTestRouter(t, spectate.NewHub(), generous)
	rec := get(t, r, "/api/runs?map=meadow&limit=1")

	var body struct {
		Map  string        `json:"map"`
		Runs []storage.Run `json:"runs"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if body.Map != "meadow" || len(body.Runs) != 1 {
		t.Errorf("runs = %+v, expected one meadow run", body)
	}
}

func TestRateLimited(t *testing.T) {
	r, _ := newTestRouter(t, spectate.NewHub(), ratelimit.Config{RequestsPerSecond: 0.001, Burst: 2})

	codes := make([]int, 3)
	for i := range codes {
		codes[i] = get(t, r, "/health").Code
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Errorf("first requests = %v, expected 200s", codes[:2])
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Errorf("third request = %d, expected %d", codes[2], http.StatusTooManyRequests)
	}
}

func TestSpectateWebsocket(t *testing.T) {
	hub := spectate.NewHub()
	id := hub.Register("meadow", "ann")
	hub.Publish(id, sim.Snapshot{Status: sim.StatusRunning, Tick: 7})

	r, _ := newTestRouter(t, hub, generous)
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/spectate/" + string(id)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var f spectate.Frame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("ReadJSON failed: %v", err)
	}
	if f.Tick != 7 || f.Session != id {
		t.Errorf("frame = %+v, expected tick 7 of %s", f, id)
	}

	hub.Unregister(id)
	_, _, err = conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Errorf("ReadMessage after end = %v, expected normal closure", err)
	}
}

func TestSpectateUnknownSession(t *testing.T) {
	r, _ := newTestRouter(t, spectate.NewHub(), generous)
	rec := get(t, r, "/ws/spectate/missing")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, expected %d", rec.Code, http.StatusNotFound)
	}
}
