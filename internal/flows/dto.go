package flows

import (
	"time"

	"diagnostics-backend/internal/flows/engine"
)

// FlowResponse is the outward-facing representation of a flow.
type FlowResponse struct {
	FlowID          string      `json:"flowId"`
	ServiceCategory string      `json:"serviceCategory"`
	ProblemName     string      `json:"problemName"`
	Tree            engine.Tree `json:"tree"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// FlowSummary is the list representation without the full tree document.
type FlowSummary struct {
	FlowID          string    `json:"flowId"`
	ServiceCategory string    `json:"serviceCategory"`
	ProblemName     string    `json:"problemName"`
	QuestionCount   int       `json:"questionCount"`
	SolutionCount   int       `json:"solutionCount"`
	CreatedAt       time.Time `json:"createdAt"`
}

func toResponse(flow Flow) FlowResponse {
	return FlowResponse{
		FlowID:          flow.ID,
		ServiceCategory: flow.Tree.ServiceCategory,
		ProblemName:     flow.Tree.ProblemName,
		Tree:            flow.Tree,
		CreatedAt:       flow.CreatedAt,
		UpdatedAt:       flow.UpdatedAt,
	}
}

func toSummary(flow Flow) FlowSummary {
	return FlowSummary{
		FlowID:          flow.ID,
		ServiceCategory: flow.Tree.ServiceCategory,
		ProblemName:     flow.Tree.ProblemName,
		QuestionCount:   len(flow.Tree.Questions),
		SolutionCount:   len(flow.Tree.DIYSolutions),
		CreatedAt:       flow.CreatedAt,
	}
}
