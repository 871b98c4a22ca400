package sessions

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"diagnostics-backend/internal/flows/engine"
)

// PGRepo implements Repo using Postgres. Traversal state and result are
// stored as JSONB snapshots.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a session.
func (r *PGRepo) Create(ctx context.Context, session Session) error {
	state, result, err := encodeDocuments(session)
	if err != nil {
		return err
	}

	const query = `
INSERT INTO diagnostic_sessions (
    id, user_id, flow_id, service_category, problem_name, state, status, result, created_at, updated_at, completed_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err = r.DB.ExecContext(ctx, query,
		session.ID,
		session.UserID,
		session.FlowID,
		session.ServiceCategory,
		session.ProblemName,
		state,
		session.Status,
		result,
		session.CreatedAt,
		session.UpdatedAt,
		session.CompletedAt,
	)
	return err
}

// Update replaces the stored traversal state and result.
func (r *PGRepo) Update(ctx context.Context, session Session) error {
	state, result, err := encodeDocuments(session)
	if err != nil {
		return err
	}

	const query = `
UPDATE diagnostic_sessions
SET state = $2, status = $3, result = $4, updated_at = $5, completed_at = $6
WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query,
		session.ID,
		state,
		session.Status,
		result,
		session.UpdatedAt,
		session.CompletedAt,
	)
	if err != nil {
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID returns a session by ID.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Session, error) {
	const query = `
SELECT id, user_id, flow_id, service_category, problem_name, state, status, result, created_at, updated_at, completed_at
FROM diagnostic_sessions
WHERE id = $1
LIMIT 1`
	session, err := scanSession(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, ErrNotFound
		}
		return Session{}, err
	}
	return session, nil
}

// ListByUser returns a user's sessions, newest first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Session, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
SELECT id, user_id, flow_id, service_category, problem_name, state, status, result, created_at, updated_at, completed_at
FROM diagnostic_sessions
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, session)
	}
	return out, rows.Err()
}

func encodeDocuments(session Session) ([]byte, []byte, error) {
	state, err := json.Marshal(session.State)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal state: %w", err)
	}
	var result []byte
	if session.Result != nil {
		result, err = json.Marshal(session.Result)
		if err != nil {
			return nil, nil, fmt.Errorf("marshal result: %w", err)
		}
	}
	return state, result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (Session, error) {
	var session Session
	var state, result []byte
	if err := row.Scan(
		&session.ID,
		&session.UserID,
		&session.FlowID,
		&session.ServiceCategory,
		&session.ProblemName,
		&state,
		&session.Status,
		&result,
		&session.CreatedAt,
		&session.UpdatedAt,
		&session.CompletedAt,
	); err != nil {
		return Session{}, err
	}
	if err := json.Unmarshal(state, &session.State); err != nil {
		return Session{}, fmt.Errorf("unmarshal state: %w", err)
	}
	if len(result) > 0 {
		var r engine.Result
		if err := json.Unmarshal(result, &r); err != nil {
			return Session{}, fmt.Errorf("unmarshal result: %w", err)
		}
		session.Result = &r
	}
	return session, nil
}

var _ Repo = (*PGRepo)(nil)
