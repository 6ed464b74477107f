package rxn

import (
	"fmt"
	"sync"
)

// SessionID identifies one simulation session held by a host.
type SessionID string

// Session holds a model together with the result of its most recent run.
// Sessions serialize access with their own lock; the model itself is
// single-threaded.
type Session struct {
	mu         sync.Mutex
	model      *Model
	lastResult *Result
}

// Model returns the session's model. The caller must not use it
// concurrently with Run.
func (s *Session) Model() *Model {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model
}

// Run runs the session's model on the uniform sample grid and stores the
// result.
func (s *Session) Run(opts RunOptions) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.model.Run(opts)
	if err != nil {
		return nil, err
	}
	s.lastResult = res
	return res, nil
}

// RunEvents runs the session's model recording every firing and stores the
// result.
func (s *Session) RunEvents(opts RunOptions) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.model.RunEvents(opts)
	if err != nil {
		return nil, err
	}
	s.lastResult = res
	return res, nil
}

// LastResult returns the most recent run result, or nil before any run.
func (s *Session) LastResult() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastResult
}

// SessionManager manages multiple named sessions, each isolated from the
// others.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[SessionID]*Session
	logger   Logger
}

// NewSessionManager creates an empty session manager.
func NewSessionManager() *SessionManager {
	return NewSessionManagerWithLogger(NewNoOpLogger())
}

// NewSessionManagerWithLogger creates a session manager with an injected
// logger.
func NewSessionManagerWithLogger(logger Logger) *SessionManager {
	if logger == nil {
		logger = NewNoOpLogger()
	}
	return &SessionManager{
		sessions: make(map[SessionID]*Session),
		logger:   logger,
	}
}

// CreateSession creates a new session with the given ID and model. It
// errors if the ID is taken.
func (sm *SessionManager) CreateSession(id SessionID, model *Model) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if _, exists := sm.sessions[id]; exists {
		return fmt.Errorf("%w: session %q already exists", ErrInvalidArgument, id)
	}
	sm.sessions[id] = &Session{model: model}
	sm.logger.Infof("session created: id=%s model=%s", id, model.Name)
	return nil
}

// GetSession retrieves a session by ID.
func (sm *SessionManager) GetSession(id SessionID) (*Session, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	s, ok := sm.sessions[id]
	return s, ok
}

// UpdateSessionModel replaces the model of an existing session. The
// previous result is discarded. Replacement is refused while the current
// model has a running engine.
func (sm *SessionManager) UpdateSessionModel(id SessionID, model *Model) error {
	sm.mu.RLock()
	s, ok := sm.sessions[id]
	sm.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: session %q does not exist", ErrInvalidArgument, id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.model.running {
		return fmt.Errorf("%w: session %q has a run in progress", ErrInvalidState, id)
	}
	s.model = model
	s.lastResult = nil
	sm.logger.Infof("session model updated: id=%s model=%s", id, model.Name)
	return nil
}

// DeleteSession removes a session by ID.
func (sm *SessionManager) DeleteSession(id SessionID) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if _, exists := sm.sessions[id]; !exists {
		return fmt.Errorf("%w: session %q does not exist", ErrInvalidArgument, id)
	}
	delete(sm.sessions, id)
	sm.logger.Infof("session deleted: id=%s", id)
	return nil
}

// ListSessions returns all session IDs.
func (sm *SessionManager) ListSessions() []SessionID {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	ids := make([]SessionID, 0, len(sm.sessions))
	for id := range sm.sessions {
		ids = append(ids, id)
	}
	return ids
}
