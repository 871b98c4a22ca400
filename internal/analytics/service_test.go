package analytics

import (
	"context"
	"testing"
	"time"

	"diagnostics-backend/internal/flows/engine"
)

func TestBuildDailySnapshotsFoldsEvents(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	ctx := context.Background()

	svc.RecordStarted(ctx, "plumbing")
	svc.RecordStarted(ctx, "plumbing")
	svc.RecordStarted(ctx, "electrical")

	svc.RecordResolved(ctx, "plumbing", engine.Result{
		Outcome: engine.OutcomeDIY,
		Urgency: engine.UrgencyRoutine,
	})
	svc.RecordResolved(ctx, "plumbing", engine.Result{
		Outcome:       engine.OutcomeTechnician,
		Urgency:       engine.UrgencyEmergency,
		CycleDetected: true,
	})

	today := time.Now().UTC()
	count, err := svc.BuildDailySnapshots(ctx, today)
	if err != nil {
		t.Fatalf("BuildDailySnapshots: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 category snapshots, got %d", count)
	}

	snaps, err := svc.Summary(ctx, 1)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	byCategory := make(map[string]Snapshot, len(snaps))
	for _, s := range snaps {
		byCategory[s.ServiceCategory] = s
	}

	plumbing, ok := byCategory["plumbing"]
	if !ok {
		t.Fatal("missing plumbing snapshot")
	}
	if plumbing.SessionsStarted != 2 || plumbing.SessionsResolved != 2 {
		t.Fatalf("unexpected plumbing counts: %+v", plumbing)
	}
	if plumbing.DIYResolved != 1 || plumbing.TechnicianRouted != 1 {
		t.Fatalf("unexpected plumbing outcomes: %+v", plumbing)
	}
	if plumbing.RoutineCount != 1 || plumbing.EmergencyCount != 1 || plumbing.UrgentCount != 0 {
		t.Fatalf("unexpected plumbing urgencies: %+v", plumbing)
	}
	if plumbing.CycleFallbacks != 1 {
		t.Fatalf("expected 1 cycle fallback, got %d", plumbing.CycleFallbacks)
	}

	electrical, ok := byCategory["electrical"]
	if !ok {
		t.Fatal("missing electrical snapshot")
	}
	if electrical.SessionsStarted != 1 || electrical.SessionsResolved != 0 {
		t.Fatalf("unexpected electrical counts: %+v", electrical)
	}
}

func TestBuildDailySnapshotsIsIdempotentPerDay(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	ctx := context.Background()

	svc.RecordStarted(ctx, "hvac")

	today := time.Now().UTC()
	if _, err := svc.BuildDailySnapshots(ctx, today); err != nil {
		t.Fatalf("first build: %v", err)
	}
	if _, err := svc.BuildDailySnapshots(ctx, today); err != nil {
		t.Fatalf("second build: %v", err)
	}

	snaps, err := svc.Summary(ctx, 1)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if len(snaps) != 1 {
		t.Fatalf("expected 1 snapshot after rebuild, got %d", len(snaps))
	}
	if snaps[0].SessionsStarted != 1 {
		t.Fatalf("expected counts overwritten, got %+v", snaps[0])
	}
}

func TestSummaryClampsWindow(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	today := time.Now().UTC().Truncate(24 * time.Hour)
	old := today.AddDate(0, 0, -120)
	for _, day := range []time.Time{today, old} {
		if err := repo.UpsertSnapshot(ctx, Snapshot{Day: day, ServiceCategory: "plumbing", SessionsStarted: 1}); err != nil {
			t.Fatalf("UpsertSnapshot: %v", err)
		}
	}

	snaps, err := svc.Summary(ctx, 500)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if len(snaps) != 1 {
		t.Fatalf("expected old snapshot excluded, got %d", len(snaps))
	}
	if !snaps[0].Day.Equal(today) {
		t.Fatalf("unexpected snapshot day %v", snaps[0].Day)
	}
}
