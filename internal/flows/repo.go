package flows

import "context"

// Repo defines persistence operations for diagnostic flows.
type Repo interface {
	Create(ctx context.Context, flow Flow) error
	Update(ctx context.Context, flow Flow) error
	GetByID(ctx context.Context, id string) (Flow, error)
	GetByProblem(ctx context.Context, serviceCategory, problemName string) (Flow, error)
	List(ctx context.Context, serviceCategory string, limit, offset int) ([]Flow, error)
	Delete(ctx context.Context, id string) error
}
