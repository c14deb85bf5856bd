package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/schoolrun/bus-tracking/internal/core/domain"
)

func seededRunRepo(status domain.RunStatus) *stubRunRepo {
	repo := newStubRunRepo()
	repo.runs["run1"] = &domain.Run{ID: "run1", DriverID: "drv1", Status: status}
	return repo
}

func TestStartRun_ActivatesAndStampsStart(t *testing.T) {
	repo := seededRunRepo(domain.StatusScheduled)
	svc := NewRunService(repo, nil, zerolog.Nop())

	run, err := svc.StartRun(context.Background(), "run1", "drv1")
	if err != nil {
		t.Fatalf("StartRun error: %v", err)
	}
	if run.Status != domain.StatusActive {
		t.Fatalf("status = %s, want active", run.Status)
	}
	if run.StartedAt == nil {
		t.Fatalf("started_at not set")
	}
	if run.EndedAt != nil {
		t.Fatalf("ended_at should be cleared on start")
	}
}

func TestStartRun_KeepsOriginalStartOnRestart(t *testing.T) {
	repo := seededRunRepo(domain.StatusCompleted)
	firstStart := time.Date(2026, 3, 2, 7, 30, 0, 0, time.UTC)
	repo.runs["run1"].StartedAt = &firstStart
	svc := NewRunService(repo, nil, zerolog.Nop())

	run, err := svc.StartRun(context.Background(), "run1", "drv1")
	if err != nil {
		t.Fatalf("StartRun error: %v", err)
	}
	if run.StartedAt == nil || !run.StartedAt.Equal(firstStart) {
		t.Fatalf("started_at = %v, want original %v", run.StartedAt, firstStart)
	}
}

func TestStartRun_WrongDriverIsForbidden(t *testing.T) {
	repo := seededRunRepo(domain.StatusScheduled)
	svc := NewRunService(repo, nil, zerolog.Nop())

	_, err := svc.StartRun(context.Background(), "run1", "someone-else")
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if repo.statusCalls != 0 {
		t.Fatalf("status must not change for a foreign driver")
	}
}

func TestFinishRun_CompletesAndStampsEnd(t *testing.T) {
	repo := seededRunRepo(domain.StatusActive)
	svc := NewRunService(repo, nil, zerolog.Nop())

	run, err := svc.FinishRun(context.Background(), "run1", "drv1")
	if err != nil {
		t.Fatalf("FinishRun error: %v", err)
	}
	if run.Status != domain.StatusCompleted {
		t.Fatalf("status = %s, want completed", run.Status)
	}
	if run.EndedAt == nil {
		t.Fatalf("ended_at not set")
	}
}

func TestFinishRun_MissingRun(t *testing.T) {
	svc := NewRunService(newStubRunRepo(), nil, zerolog.Nop())

	_, err := svc.FinishRun(context.Background(), "ghost", "drv1")
	if !errors.Is(err, domain.ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
}

func TestLastPosition_PrefersCache(t *testing.T) {
	repo := seededRunRepo(domain.StatusActive)
	cache := newStubCache()
	cache.stored["run1"] = &domain.ProgressUpdate{
		RunID:     "run1",
		Latitude:  40.71,
		Longitude: -74.0,
		Timestamp: time.Now().UTC(),
	}
	svc := NewRunService(repo, cache, zerolog.Nop())

	pos, err := svc.LastPosition(context.Background(), "run1")
	if err != nil {
		t.Fatalf("LastPosition error: %v", err)
	}
	if pos.Source != "live" || pos.Latitude != 40.71 {
		t.Fatalf("expected live cache hit, got %+v", pos)
	}
}

func TestLastPosition_FallsBackToStore(t *testing.T) {
	repo := seededRunRepo(domain.StatusActive)
	lat, lon := 40.72, -74.01
	ts := time.Now().UTC()
	repo.runs["run1"].LastLatitude = &lat
	repo.runs["run1"].LastLongitude = &lon
	repo.runs["run1"].LastUpdated = &ts
	svc := NewRunService(repo, newStubCache(), zerolog.Nop())

	pos, err := svc.LastPosition(context.Background(), "run1")
	if err != nil {
		t.Fatalf("LastPosition error: %v", err)
	}
	if pos.Source != "store" || pos.Latitude != lat {
		t.Fatalf("expected store fallback, got %+v", pos)
	}
}

func TestLastPosition_NoPositionYet(t *testing.T) {
	repo := seededRunRepo(domain.StatusScheduled)
	svc := NewRunService(repo, newStubCache(), zerolog.Nop())

	_, err := svc.LastPosition(context.Background(), "run1")
	if !errors.Is(err, domain.ErrNoPosition) {
		t.Fatalf("expected ErrNoPosition, got %v", err)
	}
}
