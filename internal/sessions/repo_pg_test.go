package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"diagnostics-backend/internal/flows/engine"
)

func sessionFixture(t *testing.T) Session {
	t.Helper()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return Session{
		ID:              "sess-1",
		UserID:          "user-1",
		FlowID:          "flow-1",
		ServiceCategory: "plumbing",
		ProblemName:     "Dripping faucet",
		State: engine.Session{
			Answers:           map[string][]string{"q1": {"no"}},
			CurrentQuestionID: "q2",
			Visited:           []string{"q1", "q2"},
		},
		Status:    StatusInProgress,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestPGRepoCreateStoresStateDocument(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	session := sessionFixture(t)
	mock.ExpectExec("INSERT INTO diagnostic_sessions").
		WithArgs(
			session.ID,
			session.UserID,
			session.FlowID,
			session.ServiceCategory,
			session.ProblemName,
			sqlmock.AnyArg(),
			session.Status,
			[]byte(nil),
			session.CreatedAt,
			session.UpdatedAt,
			nil,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := &PGRepo{DB: db}
	if err := repo.Create(context.Background(), session); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGRepoGetByIDRoundTripsState(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	session := sessionFixture(t)
	state, err := json.Marshal(session.State)
	if err != nil {
		t.Fatalf("marshal state: %v", err)
	}
	result, err := json.Marshal(engine.Result{Outcome: engine.OutcomeDIY, Urgency: engine.UrgencyRoutine})
	if err != nil {
		t.Fatalf("marshal result: %v", err)
	}

	rows := sqlmock.NewRows([]string{
		"id", "user_id", "flow_id", "service_category", "problem_name",
		"state", "status", "result", "created_at", "updated_at", "completed_at",
	}).AddRow(
		session.ID, session.UserID, session.FlowID, session.ServiceCategory, session.ProblemName,
		state, string(StatusCompleted), result, session.CreatedAt, session.UpdatedAt, nil,
	)
	mock.ExpectQuery("SELECT id, user_id, flow_id, service_category, problem_name, state, status, result, created_at, updated_at, completed_at").
		WithArgs(session.ID).
		WillReturnRows(rows)

	repo := &PGRepo{DB: db}
	got, err := repo.GetByID(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.State.CurrentQuestionID != "q2" {
		t.Fatalf("expected current question q2, got %q", got.State.CurrentQuestionID)
	}
	if got.State.Answers["q1"][0] != "no" {
		t.Fatalf("unexpected answers %v", got.State.Answers)
	}
	if got.Result == nil || got.Result.Outcome != engine.OutcomeDIY {
		t.Fatalf("expected DIY result, got %+v", got.Result)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGRepoUpdateReportsMissingSession(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	session := sessionFixture(t)
	mock.ExpectExec("UPDATE diagnostic_sessions").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := &PGRepo{DB: db}
	if err := repo.Update(context.Background(), session); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
