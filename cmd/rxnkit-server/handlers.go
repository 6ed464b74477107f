package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rxnkit/rxnkit/internal/rxn"
)

// extractSessionID extracts the session ID from a path like
// "/session/{id}/...". Returns the session ID and the remaining path, or an
// empty ID if not found.
func extractSessionID(path string) (rxn.SessionID, string) {
	if !strings.HasPrefix(path, "/session/") {
		return "", ""
	}

	rest := path[len("/session/"):]
	idx := strings.Index(rest, "/")
	if idx == -1 {
		return rxn.SessionID(rest), ""
	}
	return rxn.SessionID(rest[:idx]), rest[idx:]
}

// statusFromError maps core error kinds onto HTTP statuses.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, rxn.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, rxn.ErrInvalidArgument),
		errors.Is(err, rxn.ErrUndefinedSymbol),
		errors.Is(err, rxn.ErrAmbiguousName):
		return http.StatusBadRequest
	default:
		return http.StatusUnprocessableEntity
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// POST /session/{id}/model
// Body: ModelConfig JSON
// Creates a new session with the given ID and model, or updates an existing
// one.
func (s *Server) handleModel(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	sessID, _ := extractSessionID(r.URL.Path)
	if sessID == "" {
		http.Error(w, "session ID is required in path: /session/{id}/model", http.StatusBadRequest)
		return
	}

	if r.Method == http.MethodGet {
		s.handleModelInfo(w, r, sessID)
		return
	}

	var cfg rxn.ModelConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		http.Error(w, "invalid model json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := rxn.ValidateModelConfig(cfg); err != nil {
		http.Error(w, "invalid model: "+err.Error(), http.StatusBadRequest)
		return
	}
	model, err := rxn.BuildModelFromConfigWithLogger(cfg, s.logger)
	if err != nil {
		http.Error(w, "cannot build model: "+err.Error(), http.StatusBadRequest)
		return
	}
	model.SetNotificationManager(s.notify)

	if err := s.manager.CreateSession(sessID, model); err != nil {
		// Session already exists, replace its model.
		if err := s.manager.UpdateSessionModel(sessID, model); err != nil {
			s.logger.Errorf("Failed to update session model: session_id=%s error=%v", sessID, err)
			http.Error(w, "cannot update session: "+err.Error(), statusFromError(err))
			return
		}
		s.logger.Infof("Session model updated: session_id=%s model=%s", sessID, cfg.Name)
	} else {
		s.logger.Infof("Session created: session_id=%s model=%s", sessID, cfg.Name)
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("model loaded"))
}

// modelInfo is the GET /session/{id}/model response.
type modelInfo struct {
	Name        string   `json:"name"`
	NbSpecies   int      `json:"nb_species"`
	NbReactions int      `json:"nb_reactions"`
	Species     []string `json:"species"`
	Listing     string   `json:"listing"`
}

func (s *Server) handleModelInfo(w http.ResponseWriter, r *http.Request, sessID rxn.SessionID) {
	sess, ok := s.manager.GetSession(sessID)
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	model := sess.Model()
	info := modelInfo{
		Name:        model.Name,
		NbSpecies:   model.NbSpecies(),
		NbReactions: model.NbReactions(),
		Species:     model.SpeciesNames(),
		Listing:     model.String(),
	}
	writeJSON(w, s.logger, info)
}

// runRequest is the POST /session/{id}/run body. Fields left out fall back
// to the zero value. The model file's run section and init map are not
// applied: Init alone gives the initial counts, and species it omits start
// at zero.
type runRequest struct {
	Tmax   float64          `json:"tmax"`
	Steps  int              `json:"steps"`
	Seed   *uint64          `json:"seed,omitempty"`
	Sparse bool             `json:"sparse,omitempty"`
	Record []string         `json:"record,omitempty"`
	Events bool             `json:"events,omitempty"`
	Init   map[string]int64 `json:"init,omitempty"`
}

// POST /session/{id}/run
// Runs the session's model and returns the recorded table.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	sessID, _ := extractSessionID(r.URL.Path)
	if sessID == "" {
		http.Error(w, "session ID is required in path: /session/{id}/run", http.StatusBadRequest)
		return
	}
	sess, ok := s.manager.GetSession(sessID)
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid run request: "+err.Error(), http.StatusBadRequest)
		return
	}

	opts := rxn.RunOptions{
		Init:     req.Init,
		Tmax:     req.Tmax,
		Steps:    req.Steps,
		Seed:     req.Seed,
		Sparse:   req.Sparse,
		VarNames: req.Record,
	}

	var (
		res *rxn.Result
		err error
	)
	if req.Events {
		res, err = sess.RunEvents(opts)
	} else {
		res, err = sess.Run(opts)
	}
	if err != nil {
		s.logger.Errorf("Run failed: session_id=%s error=%v", sessID, err)
		http.Error(w, "run failed: "+err.Error(), statusFromError(err))
		return
	}

	s.logger.Infof("Run completed: session_id=%s samples=%d", sessID, res.NbSamples())
	writeJSON(w, s.logger, res)
}

// GET /session/{id}/result
// Returns the table of the most recent run.
func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	sessID, _ := extractSessionID(r.URL.Path)
	sess, ok := s.manager.GetSession(sessID)
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	res := sess.LastResult()
	if res == nil {
		http.Error(w, "no run has completed yet", http.StatusNotFound)
		return
	}
	writeJSON(w, s.logger, res)
}

// GET /session/{id}/state
// Returns the final state of the most recent run as a checkpoint document.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	sessID, _ := extractSessionID(r.URL.Path)
	sess, ok := s.manager.GetSession(sessID)
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	res := sess.LastResult()
	if res == nil || res.NbSamples() == 0 {
		http.Error(w, "no run has completed yet", http.StatusNotFound)
		return
	}

	last := res.NbSamples() - 1
	cp := rxn.Checkpoint{
		Model:  sess.Model().Name,
		Time:   res.Times[last],
		Counts: make(map[string]int64, len(res.Names)),
	}
	for i, name := range res.Names {
		cp.Counts[name] = res.Counts[i][last]
	}
	data, err := rxn.EncodeCheckpointJSON(cp)
	if err != nil {
		http.Error(w, "cannot encode checkpoint: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

// GET /sessions
// Lists the session IDs.
func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.logger, s.manager.ListSessions())
}

// DELETE /session/{id}
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessID, _ := extractSessionID(r.URL.Path)
	if err := s.manager.DeleteSession(sessID); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("session deleted"))
}

// handleSession routes /session/{id} and /session/{id}/... by subpath and
// method.
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	_, rest := extractSessionID(r.URL.Path)
	switch {
	case rest == "" && r.Method == http.MethodDelete:
		s.handleDeleteSession(w, r)
	case rest == "/model":
		s.handleModel(w, r)
	case rest == "/run" && r.Method == http.MethodPost:
		s.handleRun(w, r)
	case rest == "/result" && r.Method == http.MethodGet:
		s.handleResult(w, r)
	case rest == "/state" && r.Method == http.MethodGet:
		s.handleState(w, r)
	default:
		http.NotFound(w, r)
	}
}

func writeJSON(w http.ResponseWriter, logger *Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Errorf("encoding response: %v", err)
	}
}
