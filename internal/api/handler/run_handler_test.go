package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/schoolrun/bus-tracking/internal/core/domain"
	"github.com/schoolrun/bus-tracking/internal/core/ports"
)

type stubRunService struct {
	run      *domain.Run
	pos      *ports.RunPosition
	err      error
	startArg struct{ runID, driverID string }
}

func (s *stubRunService) GetRun(context.Context, string) (*domain.Run, error) {
	return s.run, s.err
}

func (s *stubRunService) StartRun(_ context.Context, runID, driverID string) (*domain.Run, error) {
	s.startArg.runID = runID
	s.startArg.driverID = driverID
	return s.run, s.err
}

func (s *stubRunService) FinishRun(_ context.Context, runID, driverID string) (*domain.Run, error) {
	return s.run, s.err
}

func (s *stubRunService) LastPosition(context.Context, string) (*ports.RunPosition, error) {
	return s.pos, s.err
}

func runContext(t *testing.T, method, path string, claims bool) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath(path)
	c.SetParamNames("id")
	c.SetParamValues("run1")
	if claims {
		c.Set("driver_id", "drv1")
		c.Set("role", domain.RoleDriver)
	}
	return c, rec
}

func TestRunHandler_Get(t *testing.T) {
	svc := &stubRunService{run: &domain.Run{ID: "run1", RouteID: "route7", Status: domain.StatusActive}}
	h := NewRunHandler(svc)

	c, rec := runContext(t, http.MethodGet, "/v1/runs/:id", false)
	if err := h.Get(c); err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var got domain.Run
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.ID != "run1" || got.Status != domain.StatusActive {
		t.Fatalf("unexpected body: %+v", got)
	}
}

func TestRunHandler_GetNotFound(t *testing.T) {
	svc := &stubRunService{err: domain.ErrRunNotFound}
	h := NewRunHandler(svc)

	c, _ := runContext(t, http.MethodGet, "/v1/runs/:id", false)
	err := h.Get(c)
	if !errors.Is(err, domain.ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound to propagate, got %v", err)
	}
}

func TestRunHandler_StartUsesCallerIdentity(t *testing.T) {
	svc := &stubRunService{run: &domain.Run{ID: "run1", Status: domain.StatusActive}}
	h := NewRunHandler(svc)

	c, rec := runContext(t, http.MethodPost, "/v1/runs/:id/start", true)
	if err := h.Start(c); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.startArg.runID != "run1" || svc.startArg.driverID != "drv1" {
		t.Fatalf("unexpected service args: %+v", svc.startArg)
	}
}

func TestRunHandler_StartWithoutClaims(t *testing.T) {
	h := NewRunHandler(&stubRunService{})

	c, _ := runContext(t, http.MethodPost, "/v1/runs/:id/start", false)
	err := h.Start(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
}

func TestRunHandler_Position(t *testing.T) {
	svc := &stubRunService{pos: &ports.RunPosition{
		RunID:     "run1",
		Latitude:  40.71,
		Longitude: -74.0,
		Timestamp: time.Now().UTC(),
		Source:    "live",
	}}
	h := NewRunHandler(svc)

	c, rec := runContext(t, http.MethodGet, "/v1/runs/:id/position", false)
	if err := h.Position(c); err != nil {
		t.Fatalf("Position error: %v", err)
	}

	var got ports.RunPosition
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Source != "live" || got.Latitude != 40.71 {
		t.Fatalf("unexpected body: %+v", got)
	}
}
