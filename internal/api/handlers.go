package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vovakirdan/tui-platformer/internal/spectate"
	"github.com/vovakirdan/tui-platformer/internal/storage"
)

const (
	defaultRunsLimit = 10
	maxRunsLimit     = 100
)

func (h *handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"sessions":    h.hub.Count(),
		"rate_limit":  h.limiter.Stats(),
		"tracked_ips": h.limiter.Tracked(),
	})
}

func (h *handlers) handleSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"sessions": h.hub.Sessions(),
	})
}

func (h *handlers) handleSession(w http.ResponseWriter, r *http.Request) {
	info, ok := h.hub.Get(spectate.SessionID(chi.URLParam(r, "id")))
	if !ok {
		writeError(w, "session not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// handleRuns returns the top runs for ?map=, or the most recent runs overall.
func (h *handlers) handleRuns(w http.ResponseWriter, r *http.Request) {
	if h.runs == nil {
		writeError(w, "run storage disabled", http.StatusServiceUnavailable)
		return
	}

	limit := defaultRunsLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			writeError(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = min(n, maxRunsLimit)
	}

	var (
		runs []storage.Run
		err  error
	)
	mapID := r.URL.Query().Get("map")
	if mapID != "" {
		runs, err = h.runs.TopRuns(mapID, limit)
	} else {
		runs, err = h.runs.RecentRuns(limit)
	}
	if err != nil {
		h.logger.Error("runs query failed", "err", err)
		writeError(w, "runs unavailable", http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []storage.Run{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"map": mapID, "runs": runs})
}

func (h *handlers) handleMaps(w http.ResponseWriter, r *http.Request) {
	if h.maps == nil {
		writeJSON(w, http.StatusOK, map[string]any{"maps": []string{}})
		return
	}
	ids, err := h.maps.ListIDs()
	if err != nil {
		h.logger.Error("map listing failed", "err", err)
		writeError(w, "maps unavailable", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"maps": ids})
}

func (h *handlers) handleMapStats(w http.ResponseWriter, r *http.Request) {
	if h.runs == nil {
		writeError(w, "run storage disabled", http.StatusServiceUnavailable)
		return
	}
	stats, err := h.runs.GetMapStats(chi.URLParam(r, "id"))
	if err != nil {
		h.logger.Error("map stats failed", "err", err)
		writeError(w, "stats unavailable", http.StatusInternalServerError)
		return
	}
	best, err := h.runs.BestRun(stats.MapID)
	if err != nil {
		h.logger.Error("best run failed", "err", err)
		writeError(w, "stats unavailable", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"stats": stats, "best": best})
}

func writeJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, code int) {
	writeJSON(w, code, map[string]string{"error": message})
}
