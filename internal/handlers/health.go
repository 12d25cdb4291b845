package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/camwillm/Cenarium/internal/repository"
	"github.com/camwillm/Cenarium/internal/service"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// HealthHandler provides health check endpoint
type HealthHandler struct {
	service *service.CatalogService
	logger  *slog.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(service *service.CatalogService, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		service: service,
		logger:  logger,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	DataFile  string    `json:"data_file"`
}

// ServeHTTP handles health check requests. It always answers 200 while the
// process is up; a bad data file only marks the service degraded. The check
// goes through the catalog service, so it applies the same validation as
// GET /api/items.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   Version,
		DataFile:  "ok",
	}

	if _, err := h.service.ListItems(r.Context()); err != nil {
		response.Status = "degraded"
		switch {
		case errors.Is(err, repository.ErrDataUnavailable):
			response.DataFile = "unavailable"
		case errors.Is(err, repository.ErrMalformedData):
			response.DataFile = "malformed"
		default:
			response.DataFile = "unknown"
		}
		h.logger.Warn("health check degraded", "data_file", response.DataFile, "error", err)
	}

	WriteJSON(w, http.StatusOK, response, h.logger)
}
