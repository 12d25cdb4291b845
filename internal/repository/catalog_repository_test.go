package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/camwillm/Cenarium/internal/models"
)

const appleDoc = `{"produce": [{"item_id":"p1","name":"Apple","store":"A","unit":"each","price":0.5,"serving_size_g":150,"nutrition":{"calories":95,"protein_g":0.5,"fat_g":0.3,"carbs_g":25},"category":"produce","price_per_gram":0.0033,"price_per_serving":0.5,"last_updated":"2024-01-01T00:00:00Z"}]}`

// writeDataFile writes content to a fresh file and returns its path
func writeDataFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "all-items.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write data file: %v", err)
	}
	return path
}

func TestFileCatalogRepository_Load(t *testing.T) {
	repo := NewFileCatalogRepository(writeDataFile(t, appleDoc))

	catalog, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	items := catalog["produce"]
	if len(items) != 1 {
		t.Fatalf("expected 1 produce item, got %d", len(items))
	}
	if items[0].Name != "Apple" || items[0].Nutrition.Calories != 95 {
		t.Errorf("unexpected item: %+v", items[0])
	}
}

func TestFileCatalogRepository_EmptyCatalog(t *testing.T) {
	repo := NewFileCatalogRepository(writeDataFile(t, "{}"))

	catalog, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if catalog == nil || len(catalog) != 0 {
		t.Errorf("expected empty catalog, got %#v", catalog)
	}
}

func TestFileCatalogRepository_Errors(t *testing.T) {
	tests := []struct {
		name    string
		path    func(t *testing.T) string
		wantErr error
	}{
		{
			name:    "missing file",
			path:    func(t *testing.T) string { return filepath.Join(t.TempDir(), "missing.json") },
			wantErr: ErrDataUnavailable,
		},
		{
			name:    "directory instead of file",
			path:    func(t *testing.T) string { return t.TempDir() },
			wantErr: ErrDataUnavailable,
		},
		{
			name:    "truncated json",
			path:    func(t *testing.T) string { return writeDataFile(t, appleDoc[:40]) },
			wantErr: ErrMalformedData,
		},
		{
			name: "item without price",
			path: func(t *testing.T) string {
				return writeDataFile(t, strings.Replace(appleDoc, `"price":0.5,`, "", 1))
			},
			wantErr: ErrMalformedData,
		},
		{
			name:    "null document",
			path:    func(t *testing.T) string { return writeDataFile(t, "null") },
			wantErr: ErrMalformedData,
		},
		{
			name:    "empty file",
			path:    func(t *testing.T) string { return writeDataFile(t, "") },
			wantErr: ErrMalformedData,
		},
		{
			name:    "invalid utf-8",
			path:    func(t *testing.T) string { return writeDataFile(t, "{\"caf\xe9\": []}") },
			wantErr: ErrMalformedData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewFileCatalogRepository(tt.path(t))

			catalog, err := repo.Load(context.Background())
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Load() error = %v, want %v", err, tt.wantErr)
			}
			if catalog != nil {
				t.Errorf("expected nil catalog on error, got %v", catalog)
			}
		})
	}
}

func TestFileCatalogRepository_MissingFieldIsReported(t *testing.T) {
	repo := NewFileCatalogRepository(writeDataFile(t, strings.Replace(appleDoc, `"price":0.5,`, "", 1)))

	_, err := repo.Load(context.Background())

	var mfe *models.MissingFieldError
	if !errors.As(err, &mfe) {
		t.Fatalf("expected MissingFieldError in chain, got %v", err)
	}
	if mfe.Field != "price" {
		t.Errorf("missing field = %s, want price", mfe.Field)
	}
}

func TestFileCatalogRepository_CancelledContext(t *testing.T) {
	repo := NewFileCatalogRepository(writeDataFile(t, appleDoc))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := repo.Load(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Load() error = %v, want context.Canceled", err)
	}
}

func TestFileCatalogRepository_RecoversAfterFix(t *testing.T) {
	path := filepath.Join(t.TempDir(), "all-items.json")
	repo := NewFileCatalogRepository(path)

	if _, err := repo.Load(context.Background()); !errors.Is(err, ErrDataUnavailable) {
		t.Fatalf("expected ErrDataUnavailable before file exists, got %v", err)
	}

	if err := os.WriteFile(path, []byte(appleDoc), 0644); err != nil {
		t.Fatalf("failed to write data file: %v", err)
	}

	if _, err := repo.Load(context.Background()); err != nil {
		t.Errorf("expected success after file appears, got %v", err)
	}
}
