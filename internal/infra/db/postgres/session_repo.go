package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"map-ai-relay/internal/domain/model"
	"map-ai-relay/internal/domain/ports/repository"
)

var _ repository.SessionRepository = (*SessionRepo)(nil)

// SessionRepo persists session histories durably.
//
// Schema:
//
//	CREATE TABLE sessions (
//	    id         TEXT PRIMARY KEY,
//	    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
//	    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
//	CREATE TABLE session_turns (
//	    session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
//	    seq        BIGSERIAL,
//	    role       TEXT NOT NULL,
//	    content    TEXT NOT NULL,
//	    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
//	    PRIMARY KEY (session_id, seq)
//	);
type SessionRepo struct {
	pool *pgxpool.Pool
}

func NewSessionRepo(pool *pgxpool.Pool) *SessionRepo {
	return &SessionRepo{pool: pool}
}

func (r *SessionRepo) Get(ctx context.Context, sessionID string) ([]model.Turn, error) {
	const q = `
SELECT role, content, created_at
FROM session_turns
WHERE session_id = $1
ORDER BY seq;`
	rows, err := r.pool.Query(ctx, q, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load turns: %w", err)
	}
	defer rows.Close()

	var turns []model.Turn
	for rows.Next() {
		var t model.Turn
		if err := rows.Scan(&t.Role, &t.Content, &t.Timestamp); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

// Append inserts the turns and trims beyond the history window in one
// transaction, so a concurrent append for the same session cannot lose turns.
func (r *SessionRepo) Append(ctx context.Context, sessionID string, turns ...model.Turn) error {
	if len(turns) == 0 {
		return nil
	}

	return r.pool.BeginTxFunc(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		const upsert = `
INSERT INTO sessions (id) VALUES ($1)
ON CONFLICT (id) DO UPDATE SET updated_at = NOW();`
		if _, err := tx.Exec(ctx, upsert, sessionID); err != nil {
			return fmt.Errorf("upsert session: %w", err)
		}

		const ins = `
INSERT INTO session_turns (session_id, role, content, created_at)
VALUES ($1, $2, $3, COALESCE($4, NOW()));`
		for _, t := range turns {
			if _, err := tx.Exec(ctx, ins, sessionID, t.Role, t.Content, t.Timestamp); err != nil {
				return fmt.Errorf("insert turn: %w", err)
			}
		}

		const trim = `
DELETE FROM session_turns
WHERE session_id = $1
  AND seq NOT IN (
      SELECT seq FROM session_turns
      WHERE session_id = $1
      ORDER BY seq DESC
      LIMIT $2
  );`
		if _, err := tx.Exec(ctx, trim, sessionID, model.HistoryWindow); err != nil {
			return fmt.Errorf("trim turns: %w", err)
		}
		return nil
	})
}

func (r *SessionRepo) Clear(ctx context.Context, sessionID string) error {
	const q = `DELETE FROM session_turns WHERE session_id = $1;`
	if _, err := r.pool.Exec(ctx, q, sessionID); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
