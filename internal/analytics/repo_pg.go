package analytics

import (
	"context"
	"database/sql"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// InsertEvent appends a raw event.
func (r *PGRepo) InsertEvent(ctx context.Context, ev Event) error {
	const query = `
INSERT INTO analytics_events (
    id, kind, service_category, outcome, urgency, cycle_detected, occurred_at
) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.DB.ExecContext(ctx, query,
		ev.ID,
		ev.Kind,
		ev.ServiceCategory,
		ev.Outcome,
		ev.Urgency,
		ev.CycleDetected,
		ev.OccurredAt,
	)
	return err
}

// ListEventsByDay returns events that occurred on the given UTC day.
func (r *PGRepo) ListEventsByDay(ctx context.Context, day time.Time) ([]Event, error) {
	start := day.UTC().Truncate(24 * time.Hour)
	end := start.Add(24 * time.Hour)

	const query = `
SELECT id, kind, service_category, outcome, urgency, cycle_detected, occurred_at
FROM analytics_events
WHERE occurred_at >= $1 AND occurred_at < $2
ORDER BY occurred_at`

	rows, err := r.DB.QueryContext(ctx, query, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var ev Event
		if err := rows.Scan(
			&ev.ID,
			&ev.Kind,
			&ev.ServiceCategory,
			&ev.Outcome,
			&ev.Urgency,
			&ev.CycleDetected,
			&ev.OccurredAt,
		); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// UpsertSnapshot writes the daily aggregate, replacing counters on conflict
// so rebuilding a day is idempotent.
func (r *PGRepo) UpsertSnapshot(ctx context.Context, snap Snapshot) error {
	const query = `
INSERT INTO analytics_snapshots (
    day, service_category, sessions_started, sessions_resolved, diy_resolved,
    technician_routed, routine_count, urgent_count, emergency_count, cycle_fallbacks, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (day, service_category) DO UPDATE SET
    sessions_started = EXCLUDED.sessions_started,
    sessions_resolved = EXCLUDED.sessions_resolved,
    diy_resolved = EXCLUDED.diy_resolved,
    technician_routed = EXCLUDED.technician_routed,
    routine_count = EXCLUDED.routine_count,
    urgent_count = EXCLUDED.urgent_count,
    emergency_count = EXCLUDED.emergency_count,
    cycle_fallbacks = EXCLUDED.cycle_fallbacks,
    updated_at = EXCLUDED.updated_at`
	_, err := r.DB.ExecContext(ctx, query,
		snap.Day.UTC().Truncate(24*time.Hour),
		snap.ServiceCategory,
		snap.SessionsStarted,
		snap.SessionsResolved,
		snap.DIYResolved,
		snap.TechnicianRouted,
		snap.RoutineCount,
		snap.UrgentCount,
		snap.EmergencyCount,
		snap.CycleFallbacks,
		snap.UpdatedAt,
	)
	return err
}

// ListSnapshots returns snapshots within [from, to], oldest first.
func (r *PGRepo) ListSnapshots(ctx context.Context, from, to time.Time) ([]Snapshot, error) {
	const query = `
SELECT day, service_category, sessions_started, sessions_resolved, diy_resolved,
       technician_routed, routine_count, urgent_count, emergency_count, cycle_fallbacks, updated_at
FROM analytics_snapshots
WHERE day >= $1 AND day <= $2
ORDER BY day, service_category`

	rows, err := r.DB.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var snap Snapshot
		if err := rows.Scan(
			&snap.Day,
			&snap.ServiceCategory,
			&snap.SessionsStarted,
			&snap.SessionsResolved,
			&snap.DIYResolved,
			&snap.TechnicianRouted,
			&snap.RoutineCount,
			&snap.UrgentCount,
			&snap.EmergencyCount,
			&snap.CycleFallbacks,
			&snap.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

var _ Repo = (*PGRepo)(nil)
