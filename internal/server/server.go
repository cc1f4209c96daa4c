// Package server exposes the simulation over HTTP: a small control API for
// launch/pause/reset, read endpoints for state and summaries, and a
// WebSocket stream pushing snapshots and rescue events to operator consoles.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/perbrage/flood-rescue-swarm/internal/swarm"
)

// eventBufferCap bounds the in-memory rescue event history served by
// /api/events. Oldest entries are dropped first.
const eventBufferCap = 256

// Server owns one simulation and its network surface.
type Server struct {
	sim    *swarm.Simulation
	hub    *Hub
	router *mux.Router
	http   *http.Server
	logger *log.Logger

	mu     sync.Mutex
	events []swarm.RescueEvent

	pushOnce sync.Once
	pushStop chan struct{}
}

// New builds a server and its simulation. The server itself is the
// simulation's event sink so rescues land in the /api/events buffer and on
// the WebSocket stream.
func New(cfg swarm.Config, addr string, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		hub:      NewHub(logger),
		router:   mux.NewRouter(),
		logger:   logger,
		pushStop: make(chan struct{}),
	}
	s.sim = swarm.New(
		swarm.WithConfig(cfg),
		swarm.WithEventSink(s),
		swarm.WithGuidanceSink(s),
	)
	s.http = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	s.routes()
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() {
	s.router.HandleFunc("/api/flood-center", s.handleFloodCenter).Methods("POST")
	s.router.HandleFunc("/api/launch", s.handleLaunch).Methods("POST")
	s.router.HandleFunc("/api/pause", s.handlePause).Methods("POST")
	s.router.HandleFunc("/api/resume", s.handleResume).Methods("POST")
	s.router.HandleFunc("/api/reset", s.handleReset).Methods("POST")
	s.router.HandleFunc("/api/state", s.handleState).Methods("GET")
	s.router.HandleFunc("/api/summary", s.handleSummary).Methods("GET")
	s.router.HandleFunc("/api/events", s.handleEvents).Methods("GET")
	s.router.HandleFunc("/api/regions", s.handleRegions).Methods("GET")
	s.router.HandleFunc("/api/config", s.handleConfig).Methods("GET")
	s.router.HandleFunc("/ws", s.hub.HandleWebSocket)
}

// Start serves HTTP in the background and begins the snapshot push loop.
func (s *Server) Start() {
	go func() {
		s.logger.Printf("listening on %s", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Printf("http server: %v", err)
		}
	}()
	s.pushOnce.Do(func() { go s.pushLoop() })
}

// Shutdown pauses the simulation and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	close(s.pushStop)
	s.sim.Pause()
	s.hub.CloseAll()
	return s.http.Shutdown(ctx)
}

// pushLoop broadcasts a snapshot frame at the simulation tick interval while
// a run exists. Idle periods cost one timer wake-up, no frames.
func (s *Server) pushLoop() {
	ticker := time.NewTicker(s.sim.Config().TickPeriod())
	defer ticker.Stop()
	for {
		select {
		case <-s.pushStop:
			return
		case <-ticker.C:
			if !s.sim.Launched() || s.hub.ClientCount() == 0 {
				continue
			}
			s.broadcast("snapshot", s.sim.Snapshot())
		}
	}
}

// Rescue implements swarm.EventSink: buffer the event and push it out.
func (s *Server) Rescue(ev swarm.RescueEvent) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > eventBufferCap {
		s.events = s.events[len(s.events)-eventBufferCap:]
	}
	s.mu.Unlock()
	s.broadcast("rescue", ev)
}

// Announce implements swarm.GuidanceSink: guidance text goes to the log and
// to connected consoles.
func (s *Server) Announce(msg string) {
	s.logger.Printf("GUIDANCE %s", msg)
	s.broadcast("guidance", msg)
}

func (s *Server) broadcast(kind string, payload any) {
	frame, err := json.Marshal(map[string]any{"type": kind, "data": payload})
	if err != nil {
		s.logger.Printf("broadcast marshal: %v", err)
		return
	}
	s.hub.Broadcast(frame)
}

type centerRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (s *Server) handleFloodCenter(w http.ResponseWriter, r *http.Request) {
	var req centerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body: "+err.Error())
		return
	}
	if s.sim.Launched() {
		writeError(w, http.StatusConflict, "flood center is fixed while a run is active")
		return
	}
	s.sim.SetFloodCenter(orb.Point{req.Lng, req.Lat})
	writeJSON(w, http.StatusOK, map[string]string{"status": "center set"})
}

// handleLaunch builds a fresh run and starts the clock. An optional body
// sets the flood centre in the same call.
func (s *Server) handleLaunch(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > 0 {
		var req centerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid body: "+err.Error())
			return
		}
		s.sim.SetFloodCenter(orb.Point{req.Lng, req.Lat})
	}
	if err := s.sim.Launch(); err != nil {
		if errors.Is(err, swarm.ErrNoFloodCenter) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.sim.Resume()
	writeJSON(w, http.StatusAccepted, s.sim.Snapshot())
}

func (s *Server) handlePause(w http.ResponseWriter, _ *http.Request) {
	s.sim.Pause()
	writeJSON(w, http.StatusOK, map[string]bool{"running": s.sim.Running()})
}

func (s *Server) handleResume(w http.ResponseWriter, _ *http.Request) {
	if !s.sim.Launched() {
		writeError(w, http.StatusConflict, "nothing to resume: launch first")
		return
	}
	s.sim.Resume()
	writeJSON(w, http.StatusOK, map[string]bool{"running": s.sim.Running()})
}

func (s *Server) handleReset(w http.ResponseWriter, _ *http.Request) {
	s.sim.Reset()
	s.mu.Lock()
	s.events = nil
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.sim.Snapshot())
}

func (s *Server) handleSummary(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.sim.Summary())
}

func (s *Server) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	events := make([]swarm.RescueEvent, len(s.events))
	copy(events, s.events)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, events)
}

// handleRegions serves the current partition as a GeoJSON FeatureCollection,
// directly loadable by map clients.
func (s *Server) handleRegions(w http.ResponseWriter, _ *http.Request) {
	snap := s.sim.Snapshot()
	fc := geojson.NewFeatureCollection()
	for _, reg := range snap.Regions {
		f := geojson.NewFeature(reg.Polygon)
		f.Properties["drone_id"] = reg.DroneID
		f.Properties["label"] = reg.Label
		fc.Append(f)
	}
	writeJSON(w, http.StatusOK, fc)
}

func (s *Server) handleConfig(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.sim.Config())
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
