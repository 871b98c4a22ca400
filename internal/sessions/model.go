package sessions

import (
	"time"

	"diagnostics-backend/internal/flows/engine"
)

// Status tracks the lifecycle of a diagnostic session.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Session is one user's diagnostic interaction against a stored flow. State
// is the engine-owned traversal record; Result is set once resolved.
type Session struct {
	ID              string
	UserID          string
	FlowID          string
	ServiceCategory string
	ProblemName     string
	State           engine.Session
	Status          Status
	Result          *engine.Result
	CreatedAt       time.Time
	UpdatedAt       time.Time
	CompletedAt     *time.Time
}
