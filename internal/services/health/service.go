package health

import (
	"context"
	"database/sql"
	"time"
)

// Service encapsulates health-related checks.
type Service struct {
	DB *sql.DB
}

// NewService constructs a new health service.
func NewService(db *sql.DB) *Service {
	return &Service{DB: db}
}

// Status reports liveness plus the state of the backing database. With no
// database configured the API runs on in-memory repositories, which is
// healthy in dev.
func (s *Service) Status(ctx context.Context) map[string]any {
	out := map[string]any{"ok": true}

	if s.DB == nil {
		out["database"] = "memory"
		return out
	}

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := s.DB.PingContext(pingCtx); err != nil {
		out["ok"] = false
		out["database"] = "unreachable"
		return out
	}
	out["database"] = "postgres"
	return out
}
