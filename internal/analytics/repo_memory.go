package analytics

import (
	"context"
	"sort"
	"sync"
	"time"
)

type snapshotKey struct {
	day      string
	category string
}

// MemoryRepo stores events and snapshots in memory and is safe for
// concurrent use.
type MemoryRepo struct {
	mu        sync.RWMutex
	events    []Event
	snapshots map[snapshotKey]Snapshot
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{snapshots: make(map[snapshotKey]Snapshot)}
}

// InsertEvent appends a raw event.
func (r *MemoryRepo) InsertEvent(ctx context.Context, ev Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
	return nil
}

// ListEventsByDay returns events that occurred on the given UTC day.
func (r *MemoryRepo) ListEventsByDay(ctx context.Context, day time.Time) ([]Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := day.UTC().Truncate(24 * time.Hour)
	end := start.Add(24 * time.Hour)

	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Event
	for _, ev := range r.events {
		if !ev.OccurredAt.Before(start) && ev.OccurredAt.Before(end) {
			out = append(out, ev)
		}
	}
	return out, nil
}

// UpsertSnapshot stores the snapshot keyed by day and category.
func (r *MemoryRepo) UpsertSnapshot(ctx context.Context, snap Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := snapshotKey{
		day:      snap.Day.UTC().Format("2006-01-02"),
		category: snap.ServiceCategory,
	}
	r.mu.Lock()
	r.snapshots[key] = snap
	r.mu.Unlock()
	return nil
}

// ListSnapshots returns snapshots within [from, to], oldest first.
func (r *MemoryRepo) ListSnapshots(ctx context.Context, from, to time.Time) ([]Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Snapshot
	for _, snap := range r.snapshots {
		if snap.Day.Before(from) || snap.Day.After(to) {
			continue
		}
		out = append(out, snap)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Day.Equal(out[j].Day) {
			return out[i].Day.Before(out[j].Day)
		}
		return out[i].ServiceCategory < out[j].ServiceCategory
	})
	return out, nil
}

var _ Repo = (*MemoryRepo)(nil)
