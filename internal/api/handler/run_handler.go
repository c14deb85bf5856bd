package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/schoolrun/bus-tracking/internal/core/ports"
)

// RunHandler exposes the run lifecycle endpoints consumed by driver devices
// and dispatcher dashboards.
type RunHandler struct {
	runService ports.RunService
}

func NewRunHandler(runService ports.RunService) *RunHandler {
	return &RunHandler{runService: runService}
}

// Get handles GET /v1/runs/:id.
func (h *RunHandler) Get(c echo.Context) error {
	run, err := h.runService.GetRun(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, run)
}

// Start handles POST /v1/runs/:id/start — activates the run for the assigned
// driver so the tracking session begins accepting fixes.
func (h *RunHandler) Start(c echo.Context) error {
	driverID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	run, err := h.runService.StartRun(c.Request().Context(), c.Param("id"), driverID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, run)
}

// Finish handles POST /v1/runs/:id/finish — marks the run completed.
func (h *RunHandler) Finish(c echo.Context) error {
	driverID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	run, err := h.runService.FinishRun(c.Request().Context(), c.Param("id"), driverID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, run)
}

// Position handles GET /v1/runs/:id/position — the run's most recent
// position, served from the live cache when available.
func (h *RunHandler) Position(c echo.Context) error {
	pos, err := h.runService.LastPosition(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pos)
}
