package analytics

import (
	"time"

	"diagnostics-backend/internal/flows/engine"
)

// EventKind labels the raw events folded into daily snapshots.
type EventKind string

const (
	EventSessionStarted  EventKind = "session_started"
	EventSessionResolved EventKind = "session_resolved"
)

// Event is one raw diagnostic occurrence. Events are append-only; reporting
// reads the pre-aggregated snapshots instead.
type Event struct {
	ID              string
	Kind            EventKind
	ServiceCategory string
	Outcome         engine.Outcome
	Urgency         engine.Urgency
	CycleDetected   bool
	OccurredAt      time.Time
}

// Snapshot is the daily pre-aggregation for one service category.
type Snapshot struct {
	Day              time.Time
	ServiceCategory  string
	SessionsStarted  int
	SessionsResolved int
	DIYResolved      int
	TechnicianRouted int
	RoutineCount     int
	UrgentCount      int
	EmergencyCount   int
	CycleFallbacks   int
	UpdatedAt        time.Time
}

// absorb folds one resolved event into the snapshot counters.
func (s *Snapshot) absorb(ev Event) {
	switch ev.Kind {
	case EventSessionStarted:
		s.SessionsStarted++
		return
	case EventSessionResolved:
		s.SessionsResolved++
	default:
		return
	}

	switch ev.Outcome {
	case engine.OutcomeDIY:
		s.DIYResolved++
	case engine.OutcomeTechnician:
		s.TechnicianRouted++
	}

	switch ev.Urgency {
	case engine.UrgencyEmergency:
		s.EmergencyCount++
	case engine.UrgencyUrgent:
		s.UrgentCount++
	case engine.UrgencyRoutine:
		s.RoutineCount++
	}

	if ev.CycleDetected {
		s.CycleFallbacks++
	}
}
