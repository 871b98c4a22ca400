package flows

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestPGRepoCreateWritesTreeDocument(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	flow := Flow{
		ID:        "flow-1",
		Tree:      faucetTree(),
		Active:    true,
		CreatedBy: "user-1",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO flows").
		WithArgs(
			flow.ID,
			"plumbing",
			"Dripping faucet",
			sqlmock.AnyArg(), // tree JSONB
			true,
			"user-1",
			flow.CreatedAt,
			flow.UpdatedAt,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), flow); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDRoundTripsTree(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	tree := faucetTree()
	raw, err := json.Marshal(tree)
	if err != nil {
		t.Fatalf("marshal tree: %v", err)
	}
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{"id", "tree", "active", "created_by", "created_at", "updated_at"}).
		AddRow("flow-1", raw, true, "user-1", now, now)
	mock.ExpectQuery("SELECT id, tree, active, created_by, created_at, updated_at").
		WithArgs("flow-1").
		WillReturnRows(rows)

	flow, err := repo.GetByID(context.Background(), "flow-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if flow.Tree.ProblemName != tree.ProblemName {
		t.Fatalf("expected problem %q, got %q", tree.ProblemName, flow.Tree.ProblemName)
	}
	if len(flow.Tree.Questions) != len(tree.Questions) {
		t.Fatalf("expected %d questions, got %d", len(tree.Questions), len(flow.Tree.Questions))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoDeleteReportsMissingFlow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}

	mock.ExpectExec("UPDATE flows").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoCreateMapsUniqueViolationToConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	flow := Flow{
		ID:        "flow-2",
		Tree:      faucetTree(),
		Active:    true,
		CreatedBy: "user-1",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO flows").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "flows_category_problem_active"})

	if err := repo.Create(context.Background(), flow); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
