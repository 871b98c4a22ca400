package sessions

import (
	"time"

	"diagnostics-backend/internal/flows/engine"
)

// SessionResponse is the outward-facing representation of a session.
type SessionResponse struct {
	SessionID       string           `json:"sessionId"`
	ServiceCategory string           `json:"serviceCategory"`
	ProblemName     string           `json:"problemName"`
	Status          Status           `json:"status"`
	Question        *engine.Question `json:"question,omitempty"`
	Result          *engine.Result   `json:"result,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
	CompletedAt     *time.Time       `json:"completedAt,omitempty"`
}

func toResponse(session Session, question *engine.Question) SessionResponse {
	return SessionResponse{
		SessionID:       session.ID,
		ServiceCategory: session.ServiceCategory,
		ProblemName:     session.ProblemName,
		Status:          session.Status,
		Question:        question,
		Result:          session.Result,
		CreatedAt:       session.CreatedAt,
		CompletedAt:     session.CompletedAt,
	}
}
