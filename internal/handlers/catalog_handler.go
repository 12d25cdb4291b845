package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/camwillm/Cenarium/internal/repository"
	"github.com/camwillm/Cenarium/internal/service"
	"github.com/go-chi/chi/v5"
)

// CatalogHandler handles catalog-related HTTP requests
type CatalogHandler struct {
	service *service.CatalogService
	logger  *slog.Logger
}

// CategoriesResponse is the body of GET /api/categories
type CategoriesResponse struct {
	Categories []string `json:"categories"`
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(service *service.CatalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: service,
		logger:  logger,
	}
}

// ListItems handles GET /api/items
// Returns the full catalog as an object keyed by category:
// - 200: catalog
// - 500: MalformedData
// - 503: DataUnavailable
func (h *CatalogHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.service.ListItems(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, catalog, h.logger)
}

// ListCategories handles GET /api/categories
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, CategoriesResponse{Categories: categories}, h.logger)
}

// GetCategory handles GET /api/items/{category}
// Returns the items of one category, or 404 CategoryNotFound
func (h *CatalogHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	category, err := categoryParam(r)
	if err != nil {
		h.logger.Info("invalid category escape", "category", chi.URLParam(r, "category"), "error", err)
		WriteError(w, http.StatusNotFound, ErrKindCategoryNotFound, h.logger)
		return
	}

	items, err := h.service.GetCategory(r.Context(), category)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, items, h.logger)
}

// categoryParam returns the decoded {category} segment. chi matches against
// RawPath when the request carries one, leaving the parameter escaped
// (e.g. "fruit%2Fveg"); otherwise the parameter is already decoded.
func categoryParam(r *http.Request) (string, error) {
	category := chi.URLParam(r, "category")
	if r.URL.RawPath == "" {
		return category, nil
	}
	return url.PathUnescape(category)
}

// writeServiceError maps service errors to a status and error kind.
// Details stay in the log; the body carries only the kind.
func (h *CatalogHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrCategoryNotFound):
		category, _ := categoryParam(r)
		h.logger.Info("category not found", "category", category)
		WriteError(w, http.StatusNotFound, ErrKindCategoryNotFound, h.logger)
	case errors.Is(err, repository.ErrDataUnavailable):
		h.logger.Error("catalog data unavailable", "path", r.URL.Path, "error", err)
		WriteError(w, http.StatusServiceUnavailable, ErrKindDataUnavailable, h.logger)
	case errors.Is(err, repository.ErrMalformedData):
		h.logger.Error("catalog data malformed", "path", r.URL.Path, "error", err)
		WriteError(w, http.StatusInternalServerError, ErrKindMalformedData, h.logger)
	default:
		h.logger.Error("failed to load catalog", "path", r.URL.Path, "error", err)
		WriteError(w, http.StatusInternalServerError, ErrKindInternal, h.logger)
	}
}
