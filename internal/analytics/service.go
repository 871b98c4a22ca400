package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"

	"diagnostics-backend/internal/flows/engine"
	"diagnostics-backend/internal/shared/telemetry"
)

// Service records diagnostic events and builds the daily snapshots the
// dashboard reads.
type Service struct {
	Repo Repo
}

// NewService constructs a Service.
func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// RecordStarted records a session start. Failures are logged, not surfaced;
// analytics must never break the diagnostic path.
func (s *Service) RecordStarted(ctx context.Context, serviceCategory string) {
	ev := Event{
		ID:              uuid.NewString(),
		Kind:            EventSessionStarted,
		ServiceCategory: serviceCategory,
		OccurredAt:      time.Now().UTC(),
	}
	if err := s.Repo.InsertEvent(ctx, ev); err != nil {
		telemetry.Error("analytics.record_started", map[string]any{
			"service_category": serviceCategory,
			"error":            err.Error(),
		})
	}
}

// RecordResolved records a session resolution with its outcome.
func (s *Service) RecordResolved(ctx context.Context, serviceCategory string, result engine.Result) {
	ev := Event{
		ID:              uuid.NewString(),
		Kind:            EventSessionResolved,
		ServiceCategory: serviceCategory,
		Outcome:         result.Outcome,
		Urgency:         result.Urgency,
		CycleDetected:   result.CycleDetected,
		OccurredAt:      time.Now().UTC(),
	}
	if err := s.Repo.InsertEvent(ctx, ev); err != nil {
		telemetry.Error("analytics.record_resolved", map[string]any{
			"service_category": serviceCategory,
			"error":            err.Error(),
		})
	}
}

// BuildDailySnapshots folds the day's events into per-category snapshot rows.
// Rebuilding the same day overwrites the previous aggregate.
func (s *Service) BuildDailySnapshots(ctx context.Context, day time.Time) (int, error) {
	day = day.UTC().Truncate(24 * time.Hour)
	events, err := s.Repo.ListEventsByDay(ctx, day)
	if err != nil {
		return 0, err
	}

	byCategory := make(map[string]*Snapshot)
	order := make([]string, 0)
	for _, ev := range events {
		snap, ok := byCategory[ev.ServiceCategory]
		if !ok {
			snap = &Snapshot{Day: day, ServiceCategory: ev.ServiceCategory}
			byCategory[ev.ServiceCategory] = snap
			order = append(order, ev.ServiceCategory)
		}
		snap.absorb(ev)
	}

	now := time.Now().UTC()
	for _, category := range order {
		snap := byCategory[category]
		snap.UpdatedAt = now
		if err := s.Repo.UpsertSnapshot(ctx, *snap); err != nil {
			return 0, err
		}
	}
	return len(order), nil
}

// Summary returns the snapshots covering the trailing number of days.
func (s *Service) Summary(ctx context.Context, days int) ([]Snapshot, error) {
	if days <= 0 {
		days = 7
	}
	if days > 90 {
		days = 90
	}
	to := time.Now().UTC().Truncate(24 * time.Hour)
	from := to.AddDate(0, 0, -(days - 1))
	return s.Repo.ListSnapshots(ctx, from, to)
}
