package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/camwillm/Cenarium/internal/models"
	"github.com/camwillm/Cenarium/internal/repository"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
)

// CatalogService handles business logic for the item catalog
type CatalogService struct {
	repo   repository.CatalogRepository
	strict bool
	logger *slog.Logger
}

// Option configures a CatalogService
type Option func(*CatalogService)

// WithStrictValidation rejects catalogs that break the producer invariants
// (category mismatch, non-finite numbers, duplicate item ids) as malformed.
func WithStrictValidation(strict bool) Option {
	return func(s *CatalogService) {
		s.strict = strict
	}
}

// NewCatalogService creates a new catalog service
func NewCatalogService(repo repository.CatalogRepository, logger *slog.Logger, opts ...Option) *CatalogService {
	s := &CatalogService{
		repo:   repo,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListItems returns the whole catalog grouped by category
func (s *CatalogService) ListItems(ctx context.Context) (models.ItemsByCategory, error) {
	catalog, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}

	if s.strict {
		if err := catalog.Validate(); err != nil {
			s.logger.Warn("catalog failed validation", "error", err)
			return nil, fmt.Errorf("%w: %w", repository.ErrMalformedData, err)
		}
	}

	s.logger.Debug("catalog loaded", "categories", len(catalog), "items", catalog.ItemCount())
	return catalog, nil
}

// ListCategories returns the sorted category names
func (s *CatalogService) ListCategories(ctx context.Context) ([]string, error) {
	catalog, err := s.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.Categories(), nil
}

// GetCategory returns the items of a single category
func (s *CatalogService) GetCategory(ctx context.Context, category string) ([]models.Item, error) {
	catalog, err := s.ListItems(ctx)
	if err != nil {
		return nil, err
	}

	items, ok := catalog[category]
	if !ok {
		return nil, ErrCategoryNotFound
	}
	return items, nil
}
