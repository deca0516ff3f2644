package http

import (
	"net/http"

	"golang-market-intel/internal/api/dto"
	"golang-market-intel/internal/api/service"
	"golang-market-intel/pkg/logger"

	"github.com/labstack/echo/v4"
)

// RunHandler handles HTTP requests for job runs.
type RunHandler struct {
	runService service.RunService
	logger     *logger.Logger
}

// NewRunHandler creates a new RunHandler.
func NewRunHandler(runService service.RunService, logger *logger.Logger) *RunHandler {
	return &RunHandler{runService: runService, logger: logger}
}

// RegisterRoutes registers the run routes to the Echo group.
func (h *RunHandler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.GetRecentRuns)
	g.GET("/:id", h.GetRunByID)
}

// GetRecentRuns returns the latest runs.
func (h *RunHandler) GetRecentRuns(c echo.Context) error {
	var limit int
	if err := echo.QueryParamsBinder(c).Int("limit", &limit).BindError(); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid limit"})
	}

	runs, err := h.runService.GetRecentRuns(c.Request().Context(), limit)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, runs)
}

// GetRunByID returns a single run.
func (h *RunHandler) GetRunByID(c echo.Context) error {
	run, err := h.runService.GetRunByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, run)
}
