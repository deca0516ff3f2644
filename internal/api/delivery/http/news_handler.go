package http

import (
	"errors"
	"net/http"

	"golang-market-intel/internal/api/dto"
	"golang-market-intel/internal/api/service"
	"golang-market-intel/internal/executor/repository"
	"golang-market-intel/pkg/logger"

	"github.com/labstack/echo/v4"
)

// NewsHandler handles HTTP requests for archived news.
type NewsHandler struct {
	newsService service.NewsService
	logger      *logger.Logger
}

// NewNewsHandler creates a new NewsHandler.
func NewNewsHandler(newsService service.NewsService, logger *logger.Logger) *NewsHandler {
	return &NewsHandler{newsService: newsService, logger: logger}
}

// RegisterRoutes registers the news routes to the Echo group.
func (h *NewsHandler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.ListNews)
	g.GET("/stats", h.GetStats)
	g.GET("/:id", h.GetNewsByID)
}

// ListNews returns one page of news filtered by status and category.
func (h *NewsHandler) ListNews(c echo.Context) error {
	var req dto.NewsListRequest
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid query parameters"})
	}

	resp, err := h.newsService.ListNews(c.Request().Context(), req)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// GetNewsByID returns a single news item.
func (h *NewsHandler) GetNewsByID(c echo.Context) error {
	resp, err := h.newsService.GetNewsByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// GetStats returns the number of news items per status.
func (h *NewsHandler) GetStats(c echo.Context) error {
	resp, err := h.newsService.GetStats(c.Request().Context())
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

func errorResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidFilter):
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "Not found"})
	default:
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Internal server error"})
	}
}
