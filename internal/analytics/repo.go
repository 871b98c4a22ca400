package analytics

import (
	"context"
	"time"
)

// Repo defines persistence for raw events and daily snapshots.
type Repo interface {
	InsertEvent(ctx context.Context, ev Event) error
	ListEventsByDay(ctx context.Context, day time.Time) ([]Event, error)
	UpsertSnapshot(ctx context.Context, snap Snapshot) error
	ListSnapshots(ctx context.Context, from, to time.Time) ([]Snapshot, error)
}
