// Package api provides the HTTP API for observing a running simulation.
// All endpoints are GET, read-only; the API never mutates the model.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/aldemir/schelling-explorer/internal/engine"
	"github.com/aldemir/schelling-explorer/internal/persistence"
)

// Server serves simulation state over HTTP. The engine pushes a fresh
// snapshot every tick through Publish; handlers only read the latest
// published state, never the live model, so the stepping goroutine and the
// HTTP goroutines share nothing mutable.
type Server struct {
	DB   *persistence.DB // optional; history endpoints 503 without it
	Port int

	mu       sync.RWMutex
	snapshot *engine.Snapshot
	density  float64
	unhappy  []float64
	runID    string
}

// Publish installs the statistics of the just-completed tick. Call it from
// the model's observer. Each publish installs a fresh slice: handlers may
// still be reading the previous one after latest releases the lock.
func (s *Server) Publish(snap *engine.Snapshot, runID string, density float64, percentUnhappy []float64) {
	unhappy := make([]float64, len(percentUnhappy))
	copy(unhappy, percentUnhappy)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = snap
	s.runID = runID
	s.density = density
	s.unhappy = unhappy
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	historyLimiter := NewRateLimiter(120, defaultWindow)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/grid", s.handleGrid)
	mux.HandleFunc("/api/v1/groups", s.handleGroups)
	mux.HandleFunc("/api/v1/stats", s.handleStats)
	mux.HandleFunc("/api/v1/runs", RateLimitMiddleware(historyLimiter, s.handleRuns))
	mux.HandleFunc("/api/v1/runs/", RateLimitMiddleware(historyLimiter, s.handleRunRoutes))

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr)

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// latest returns the last published tick state, or a nil snapshot before the
// first tick.
func (s *Server) latest() (*engine.Snapshot, string, float64, []float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot, s.runID, s.density, s.unhappy
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap, runID, _, _ := s.latest()
	if snap == nil {
		http.Error(w, "no tick published yet", http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, map[string]any{
		"run_id":  runID,
		"tick":    snap.Tick,
		"width":   snap.Width,
		"height":  snap.Height,
		"groups":  len(snap.Groups),
		"running": snap.Running,
	})
}

func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	snap, _, _, _ := s.latest()
	if snap == nil {
		http.Error(w, "no tick published yet", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, snap)
}

func (s *Server) handleGroups(w http.ResponseWriter, r *http.Request) {
	snap, _, _, _ := s.latest()
	if snap == nil {
		http.Error(w, "no tick published yet", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, snap.Groups)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	snap, runID, density, unhappy := s.latest()
	if snap == nil {
		http.Error(w, "no tick published yet", http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, map[string]any{
		"run_id":            runID,
		"tick":              snap.Tick,
		"interface_density": density,
		"percent_unhappy":   unhappy,
	})
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}

	limit := 30
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	rows, err := s.DB.ListRuns(limit)
	if err != nil {
		slog.Error("run list query failed", "error", err)
		http.Error(w, "query failed", http.StatusInternalServerError)
		return
	}
	if rows == nil {
		rows = []persistence.RunRow{}
	}
	writeJSON(w, rows)
}

// handleRunRoutes dispatches /api/v1/runs/:id and /api/v1/runs/:id/stats.
func (s *Server) handleRunRoutes(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}

	// /api/v1/runs/:id/stats -> parts[0]="" [1]="api" [2]="v1" [3]="runs" [4]=id [5]="stats"
	parts := strings.Split(r.URL.Path, "/")
	if len(parts) < 5 || parts[4] == "" {
		http.Error(w, "missing run id", http.StatusBadRequest)
		return
	}
	runID := parts[4]

	if len(parts) >= 6 && parts[5] == "stats" {
		s.handleRunStats(w, r, runID)
		return
	}

	row, err := s.DB.GetRun(runID)
	if errors.Is(err, persistence.ErrNoSuchRun) {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("run query failed", "error", err, "run_id", runID)
		http.Error(w, "query failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, row)
}

func (s *Server) handleRunStats(w http.ResponseWriter, r *http.Request, runID string) {
	fromTick := 0
	toTick := int(^uint(0) >> 1)
	limit := 1000

	if f := r.URL.Query().Get("from"); f != "" {
		if v, err := strconv.Atoi(f); err == nil {
			fromTick = v
		}
	}
	if t := r.URL.Query().Get("to"); t != "" {
		if v, err := strconv.Atoi(t); err == nil {
			toTick = v
		}
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 10000 {
			limit = v
		}
	}

	rows, err := s.DB.RunStats(runID, fromTick, toTick, limit)
	if errors.Is(err, persistence.ErrNoSuchRun) {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("stats query failed", "error", err, "run_id", runID)
		http.Error(w, "query failed", http.StatusInternalServerError)
		return
	}
	if rows == nil {
		rows = []persistence.StatsRow{}
	}
	writeJSON(w, rows)
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
