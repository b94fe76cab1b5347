package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"map-ai-relay/internal/domain/model"
	"map-ai-relay/internal/domain/ports/repository"
	"map-ai-relay/internal/infra/metrics"
)

var _ repository.SessionRepository = (*SessionRepo)(nil)

// SessionRepo keeps session histories in Redis as JSON turn lists with a TTL,
// so idle conversations age out on their own. Read-modify-write per key is
// serialized in-process; the relay owns its sessions exclusively, so that is
// enough for the append atomicity contract.
type SessionRepo struct {
	client RedisClient
	ttl    time.Duration

	mu   sync.Mutex
	keys map[string]*sync.Mutex
}

func NewSessionRepo(client RedisClient, ttl time.Duration) *SessionRepo {
	return &SessionRepo{
		client: client,
		ttl:    ttl,
		keys:   make(map[string]*sync.Mutex),
	}
}

func (r *SessionRepo) sessionKey(id string) string {
	return fmt.Sprintf("relay_session:%s", id)
}

func (r *SessionRepo) lock(id string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.keys[id]
	if !ok {
		m = &sync.Mutex{}
		r.keys[id] = m
	}
	return m
}

func (r *SessionRepo) Get(ctx context.Context, sessionID string) ([]model.Turn, error) {
	data, err := r.client.Get(ctx, r.sessionKey(sessionID))
	if err != nil {
		if IsNil(err) {
			return nil, nil
		}
		return nil, err
	}

	var turns []model.Turn
	if err := json.Unmarshal([]byte(data), &turns); err != nil {
		return nil, err
	}
	return turns, nil
}

func (r *SessionRepo) Append(ctx context.Context, sessionID string, turns ...model.Turn) error {
	if len(turns) == 0 {
		return nil
	}

	m := r.lock(sessionID)
	m.Lock()
	defer m.Unlock()

	existing, err := r.Get(ctx, sessionID)
	if err != nil {
		return err
	}

	merged := model.TrimTurns(append(existing, turns...))
	if dropped := len(existing) + len(turns) - len(merged); dropped > 0 {
		metrics.SessionTurnsDropped(dropped)
	}

	data, err := json.Marshal(merged)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.sessionKey(sessionID), data, r.ttl)
}

func (r *SessionRepo) Clear(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, r.sessionKey(sessionID))
}
