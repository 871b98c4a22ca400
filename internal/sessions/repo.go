package sessions

import "context"

// Repo defines persistence operations for diagnostic sessions.
type Repo interface {
	Create(ctx context.Context, session Session) error
	Update(ctx context.Context, session Session) error
	GetByID(ctx context.Context, id string) (Session, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Session, error)
}
