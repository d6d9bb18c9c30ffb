package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/strandlab/foldsim/internal/kinetics"
	"github.com/strandlab/foldsim/internal/kinetics/notifiers"
)

var errSystemNotFound = errors.New("system not found")

// extractPathID extracts the ID from a path like "/{prefix}/{id}/..."
// Returns the ID and the remaining path, or empty strings if not found.
func extractPathID(path, prefix string) (string, string) {
	if !strings.HasPrefix(path, prefix) {
		return "", ""
	}
	rest := strings.TrimPrefix(path, prefix)

	idx := strings.Index(rest, "/")
	if idx == -1 {
		// No more path segments, the whole thing is the ID
		return rest, ""
	}
	return rest[:idx], rest[idx:]
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "cannot encode: "+err.Error(), http.StatusInternalServerError)
	}
}

// handleSystemRoutes routes /systems and /systems/{name}/trajectories.
func (s *Server) handleSystemRoutes(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/systems" {
		switch r.Method {
		case http.MethodPost:
			s.handleRegisterSystem(w, r)
		case http.MethodGet:
			s.handleListSystems(w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	name, remaining := extractPathID(r.URL.Path, "/systems/")
	if name == "" {
		http.Error(w, "system name is required in path: /systems/{name}/...", http.StatusBadRequest)
		return
	}

	switch {
	case remaining == "/trajectories" && r.Method == http.MethodPost:
		s.handleStartTrajectory(w, r, name)
	case remaining == "" && r.Method == http.MethodGet:
		s.handleGetSystem(w, r, name)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

// POST /systems
// Body: SystemConfig JSON
func (s *Server) handleRegisterSystem(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var cfg kinetics.SystemConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		http.Error(w, "invalid system json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.RegisterSystem(cfg); err != nil {
		http.Error(w, "cannot register system: "+err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("system registered"))
}

// GET /systems
func (s *Server) handleListSystems(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string][]string{"systems": s.listSystems()})
}

// GET /systems/{name}
func (s *Server) handleGetSystem(w http.ResponseWriter, _ *http.Request, name string) {
	cfg, ok := s.getSystem(name)
	if !ok {
		http.Error(w, "system not found", http.StatusNotFound)
		return
	}
	writeJSON(w, cfg)
}

// POST /systems/{name}/trajectories
// Query param: seed (optional, falls back to the system config seed)
func (s *Server) handleStartTrajectory(w http.ResponseWriter, r *http.Request, name string) {
	var seed int64
	if seedStr := r.URL.Query().Get("seed"); seedStr != "" {
		val, err := strconv.ParseInt(seedStr, 10, 64)
		if err != nil {
			http.Error(w, "invalid seed: must be an integer", http.StatusBadRequest)
			return
		}
		seed = val
	}

	id, err := s.startTrajectory(name, seed)
	if errors.Is(err, errSystemNotFound) {
		http.Error(w, "system not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.logger.Errorf("Failed to start trajectory: system=%s error=%v", name, err)
		http.Error(w, "cannot start trajectory: "+err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusCreated)
	writeJSON(w, map[string]string{"trajectory_id": id})
}

// trajectoryStatus is the wire shape of GET /trajectories/{id}.
type trajectoryStatus struct {
	ID      string                     `json:"id"`
	Running bool                       `json:"running"`
	Result  *kinetics.TrajectoryResult `json:"result,omitempty"`
}

// handleTrajectoryRoutes routes /trajectories and /trajectories/{id}/...
func (s *Server) handleTrajectoryRoutes(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/trajectories" {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, map[string][]string{"trajectories": s.trajectories.List()})
		return
	}

	id, remaining := extractPathID(r.URL.Path, "/trajectories/")
	if id == "" {
		http.Error(w, "trajectory ID is required in path: /trajectories/{id}/...", http.StatusBadRequest)
		return
	}

	switch {
	case remaining == "" && r.Method == http.MethodGet:
		s.handleGetTrajectory(w, r, id)
	case remaining == "" && r.Method == http.MethodDelete:
		s.handleDeleteTrajectory(w, r, id)
	case remaining == "/stop" && r.Method == http.MethodPost:
		s.handleStopTrajectory(w, r, id)
	case remaining == "/moves" && r.Method == http.MethodGet:
		s.handleDumpMoves(w, r, id)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

// GET /trajectories/{id}
func (s *Server) handleGetTrajectory(w http.ResponseWriter, _ *http.Request, id string) {
	sim, ok := s.trajectories.Get(id)
	if !ok {
		http.Error(w, "trajectory not found", http.StatusNotFound)
		return
	}

	status := trajectoryStatus{ID: id, Running: sim.Running()}
	if res, done := sim.Result(); done {
		status.Result = &res
	}
	writeJSON(w, status)
}

// POST /trajectories/{id}/stop
func (s *Server) handleStopTrajectory(w http.ResponseWriter, _ *http.Request, id string) {
	sim, ok := s.trajectories.Get(id)
	if !ok {
		http.Error(w, "trajectory not found", http.StatusNotFound)
		return
	}

	sim.Stop()
	s.logger.Infof("Trajectory stop requested: id=%s", id)

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("trajectory stopped"))
}

// DELETE /trajectories/{id}
func (s *Server) handleDeleteTrajectory(w http.ResponseWriter, _ *http.Request, id string) {
	if err := s.trajectories.Delete(id); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("trajectory deleted"))
}

// GET /trajectories/{id}/moves
// Dumps the currently enumerated moves, for debugging a stuck trajectory.
func (s *Server) handleDumpMoves(w http.ResponseWriter, _ *http.Request, id string) {
	sim, ok := s.trajectories.Get(id)
	if !ok {
		http.Error(w, "trajectory not found", http.StatusNotFound)
		return
	}

	moves := sim.Moves()
	writeJSON(w, map[string]any{
		"count":      moves.Count(),
		"total_rate": moves.Rate(),
		"moves":      moves.DumpMoves(true),
	})
}

// GET /results?system={name}
// Lists persisted trajectory results, newest first.
func (s *Server) handleListResults(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.store == nil {
		http.Error(w, "result store not configured", http.StatusInternalServerError)
		return
	}

	results, err := s.store.ListBySystem(r.URL.Query().Get("system"))
	if err != nil {
		s.logger.Errorf("Failed to list results: %v", err)
		http.Error(w, "cannot list results: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if results == nil {
		results = []kinetics.TrajectoryResult{}
	}
	writeJSON(w, map[string][]kinetics.TrajectoryResult{"results": results})
}

// handleNotifiersRoutes handles notifier management endpoints
func (s *Server) handleNotifiersRoutes(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/notifiers" && r.Method == http.MethodGet:
		s.handleListNotifiers(w, r)
	case r.URL.Path == "/notifiers" && r.Method == http.MethodPost:
		s.handleRegisterNotifier(w, r)
	case strings.HasPrefix(r.URL.Path, "/notifiers/") && r.Method == http.MethodDelete:
		s.handleUnregisterNotifier(w, r)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

// GET /notifiers
// List all registered notifiers
func (s *Server) handleListNotifiers(w http.ResponseWriter, _ *http.Request) {
	notifierIDs := s.notifyMgr.ListNotifiers()

	list := make([]map[string]string, 0, len(notifierIDs))
	for _, id := range notifierIDs {
		notifier, exists := s.notifyMgr.GetNotifier(id)
		if exists {
			list = append(list, map[string]string{
				"id":   id,
				"type": notifier.Type(),
			})
		}
	}
	writeJSON(w, map[string]any{"notifiers": list})
}

// POST /notifiers
// Register a new notifier
// Body: { "type": "webhook", "id": "my-webhook", "config": { "url": "http://..." } }
type registerNotifierRequest struct {
	Type   string         `json:"type"`
	ID     string         `json:"id"`
	Config map[string]any `json:"config"`
}

func (s *Server) handleRegisterNotifier(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req registerNotifierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.ID == "" {
		http.Error(w, "notifier ID is required", http.StatusBadRequest)
		return
	}

	var notifier kinetics.Notifier

	switch req.Type {
	case "webhook":
		url, ok := req.Config["url"].(string)
		if !ok || url == "" {
			http.Error(w, "webhook URL is required", http.StatusBadRequest)
			return
		}
		wh := notifiers.NewWebhookNotifier(req.ID, url)

		// Set custom headers if provided
		if headers, ok := req.Config["headers"].(map[string]any); ok {
			for k, v := range headers {
				if vStr, ok := v.(string); ok {
					wh.SetHeader(k, vStr)
				}
			}
		}

		notifier = wh
	default:
		http.Error(w, "unknown notifier type: "+req.Type, http.StatusBadRequest)
		return
	}

	if err := s.notifyMgr.RegisterNotifier(notifier); err != nil {
		http.Error(w, "cannot register notifier: "+err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("notifier registered"))
}

// DELETE /notifiers/{id}
// Unregister a notifier
func (s *Server) handleUnregisterNotifier(w http.ResponseWriter, r *http.Request) {
	notifierID := strings.TrimPrefix(r.URL.Path, "/notifiers/")
	if notifierID == "" {
		http.Error(w, "notifier ID is required", http.StatusBadRequest)
		return
	}
	if notifierID == wsNotifierID {
		http.Error(w, "built-in websocket notifier cannot be removed", http.StatusBadRequest)
		return
	}

	if err := s.notifyMgr.UnregisterNotifier(notifierID); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("notifier unregistered"))
}

// GET /ws
// Upgrades the connection and subscribes it to trajectory event broadcasts.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := s.wsNotifier.Upgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warnf("WebSocket upgrade failed: %v", err)
		return
	}
	s.wsNotifier.RegisterClient(conn)
	s.logger.Debugf("WebSocket client connected: remote=%s", conn.RemoteAddr())
}
