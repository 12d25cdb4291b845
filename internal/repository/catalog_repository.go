package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/camwillm/Cenarium/internal/models"
)

var (
	// ErrDataUnavailable means the data file could not be opened or read.
	ErrDataUnavailable = errors.New("catalog data unavailable")
	// ErrMalformedData means the data file is not a valid catalog document.
	ErrMalformedData = errors.New("catalog data malformed")
)

// CatalogRepository defines the interface for catalog data access
type CatalogRepository interface {
	Load(ctx context.Context) (models.ItemsByCategory, error)
}

// FileCatalogRepository reads the catalog from a JSON file on every call
type FileCatalogRepository struct {
	path string
}

// NewFileCatalogRepository creates a repository backed by the file at path
func NewFileCatalogRepository(path string) *FileCatalogRepository {
	return &FileCatalogRepository{path: path}
}

// Path returns the backing file path
func (r *FileCatalogRepository) Path() string {
	return r.path
}

// Load opens, reads and parses the data file. The file handle is closed on
// every return path.
func (r *FileCatalogRepository) Load(ctx context.Context) (models.ItemsByCategory, error) {
	data, err := r.Read(ctx)
	if err != nil {
		return nil, err
	}

	return Decode(data)
}

// Read returns the raw contents of the data file. Failures wrap ErrDataUnavailable.
func (r *FileCatalogRepository) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDataUnavailable, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrDataUnavailable, r.path, err)
	}
	return data, nil
}

// Decode parses a catalog document. Any failure wraps ErrMalformedData.
func Decode(data []byte) (models.ItemsByCategory, error) {
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: document is not valid UTF-8", ErrMalformedData)
	}

	var catalog models.ItemsByCategory
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedData, err)
	}
	if catalog == nil {
		return nil, fmt.Errorf("%w: document is null", ErrMalformedData)
	}

	return catalog, nil
}
