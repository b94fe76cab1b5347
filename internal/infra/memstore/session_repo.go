// Package memstore keeps session histories in process memory. Entries are
// lost on restart; that is the accepted baseline, not a bug.
package memstore

import (
	"context"
	"sync"

	"map-ai-relay/internal/domain/model"
	"map-ai-relay/internal/domain/ports/repository"
	"map-ai-relay/internal/infra/metrics"
)

var _ repository.SessionRepository = (*SessionRepo)(nil)

type SessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*model.Session
}

func NewSessionRepo() *SessionRepo {
	return &SessionRepo{sessions: make(map[string]*model.Session)}
}

func (r *SessionRepo) Get(_ context.Context, sessionID string) ([]model.Turn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	// Copy so callers never see later mutations.
	out := make([]model.Turn, len(s.Turns))
	copy(out, s.Turns)
	return out, nil
}

func (r *SessionRepo) Append(_ context.Context, sessionID string, turns ...model.Turn) error {
	if len(turns) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		s = model.NewSession(sessionID)
		r.sessions[sessionID] = s
	}
	before := len(s.Turns) + len(turns)
	s.Append(turns...)
	if dropped := before - len(s.Turns); dropped > 0 {
		metrics.SessionTurnsDropped(dropped)
	}
	return nil
}

func (r *SessionRepo) Clear(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
	return nil
}

// Len reports the number of live sessions, for tests and stats.
func (r *SessionRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
