package flows

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// PGRepo implements Repo using Postgres. The tree document is stored as JSONB.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a flow.
func (r *PGRepo) Create(ctx context.Context, flow Flow) error {
	tree, err := json.Marshal(flow.Tree)
	if err != nil {
		return fmt.Errorf("marshal tree: %w", err)
	}

	const query = `
INSERT INTO flows (
    id, service_category, problem_name, tree, active, created_by, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err = r.DB.ExecContext(ctx, query,
		flow.ID,
		flow.Tree.ServiceCategory,
		flow.Tree.ProblemName,
		tree,
		flow.Active,
		flow.CreatedBy,
		flow.CreatedAt,
		flow.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

// isUniqueViolation reports whether the error is a Postgres unique-index
// violation (SQLSTATE 23505), raised by flows_category_problem_active when a
// second active flow targets the same problem.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Update replaces the stored tree document.
func (r *PGRepo) Update(ctx context.Context, flow Flow) error {
	tree, err := json.Marshal(flow.Tree)
	if err != nil {
		return fmt.Errorf("marshal tree: %w", err)
	}

	const query = `
UPDATE flows
SET service_category = $2, problem_name = $3, tree = $4, updated_at = $5
WHERE id = $1 AND deleted_at IS NULL`
	res, err := r.DB.ExecContext(ctx, query,
		flow.ID,
		flow.Tree.ServiceCategory,
		flow.Tree.ProblemName,
		tree,
		flow.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID returns a flow by ID.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Flow, error) {
	const query = `
SELECT id, tree, active, created_by, created_at, updated_at
FROM flows
WHERE id = $1 AND deleted_at IS NULL
LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, id))
}

// GetByProblem returns the active flow for a category/problem pair.
func (r *PGRepo) GetByProblem(ctx context.Context, serviceCategory, problemName string) (Flow, error) {
	const query = `
SELECT id, tree, active, created_by, created_at, updated_at
FROM flows
WHERE service_category = $1 AND problem_name = $2 AND active AND deleted_at IS NULL
ORDER BY created_at DESC
LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, serviceCategory, problemName))
}

// List returns active flows, optionally filtered by category, newest first.
func (r *PGRepo) List(ctx context.Context, serviceCategory string, limit, offset int) ([]Flow, error) {
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
SELECT id, tree, active, created_by, created_at, updated_at
FROM flows
WHERE active AND deleted_at IS NULL AND ($1 = '' OR service_category = $1)
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, serviceCategory, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Flow
	for rows.Next() {
		flow, err := scanFlow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, flow)
	}
	return out, rows.Err()
}

// Delete soft-deletes a flow.
func (r *PGRepo) Delete(ctx context.Context, id string) error {
	const query = `
UPDATE flows
SET active = FALSE, deleted_at = NOW()
WHERE id = $1 AND deleted_at IS NULL`
	res, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PGRepo) scanOne(row rowScanner) (Flow, error) {
	flow, err := scanFlow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Flow{}, ErrNotFound
		}
		return Flow{}, err
	}
	return flow, nil
}

func scanFlow(row rowScanner) (Flow, error) {
	var flow Flow
	var tree []byte
	if err := row.Scan(
		&flow.ID,
		&tree,
		&flow.Active,
		&flow.CreatedBy,
		&flow.CreatedAt,
		&flow.UpdatedAt,
	); err != nil {
		return Flow{}, err
	}
	if err := json.Unmarshal(tree, &flow.Tree); err != nil {
		return Flow{}, fmt.Errorf("unmarshal tree: %w", err)
	}
	return flow, nil
}

var _ Repo = (*PGRepo)(nil)
