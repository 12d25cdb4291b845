package service

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/camwillm/Cenarium/internal/models"
	"github.com/camwillm/Cenarium/internal/repository"
	"github.com/camwillm/Cenarium/pkg/logger"
)

// Mock CatalogRepository
type mockCatalogRepo struct {
	catalog models.ItemsByCategory
	err     error

	mu    sync.Mutex
	calls int
}

func (m *mockCatalogRepo) Load(ctx context.Context) (models.ItemsByCategory, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	return m.catalog.Clone(), nil
}

func testCatalog() models.ItemsByCategory {
	return models.ItemsByCategory{
		"fruit": {
			{ItemID: "f1", Name: "Banana", Store: "A", Unit: "lb", Price: 0.59, ServingSizeG: 118,
				Nutrition: models.Nutrition{Calories: 105, ProteinG: 1.3, FatG: 0.4, CarbsG: 27},
				Category: "fruit", PricePerGram: 0.0013, PricePerServing: 0.15, LastUpdated: "2024-03-01T00:00:00Z"},
		},
		"protein": {
			{ItemID: "p1", Name: "Eggs", Store: "B", Unit: "dozen", Price: 3.2, ServingSizeG: 50,
				Nutrition: models.Nutrition{Calories: 70, ProteinG: 6, FatG: 5, CarbsG: 0.6},
				Category: "protein", PricePerGram: 0.0053, PricePerServing: 0.27, LastUpdated: "2024-03-01T00:00:00Z"},
		},
	}
}

func TestCatalogService_ListItems(t *testing.T) {
	repo := &mockCatalogRepo{catalog: testCatalog()}
	svc := NewCatalogService(repo, logger.New("error"))

	catalog, err := svc.ListItems(context.Background())
	if err != nil {
		t.Fatalf("ListItems() error = %v", err)
	}
	if !reflect.DeepEqual(catalog, testCatalog()) {
		t.Errorf("ListItems() = %+v, want %+v", catalog, testCatalog())
	}
}

func TestCatalogService_ReloadsOnEveryCall(t *testing.T) {
	repo := &mockCatalogRepo{catalog: testCatalog()}
	svc := NewCatalogService(repo, logger.New("error"))

	for i := 0; i < 3; i++ {
		if _, err := svc.ListItems(context.Background()); err != nil {
			t.Fatalf("ListItems() error = %v", err)
		}
	}
	if repo.calls != 3 {
		t.Errorf("expected 3 repository loads, got %d", repo.calls)
	}
}

func TestCatalogService_PropagatesRepositoryErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{"unavailable", repository.ErrDataUnavailable, repository.ErrDataUnavailable},
		{"malformed", repository.ErrMalformedData, repository.ErrMalformedData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewCatalogService(&mockCatalogRepo{err: tt.err}, logger.New("error"))

			if _, err := svc.ListItems(context.Background()); !errors.Is(err, tt.wantErr) {
				t.Errorf("ListItems() error = %v, want %v", err, tt.wantErr)
			}
			if _, err := svc.ListCategories(context.Background()); !errors.Is(err, tt.wantErr) {
				t.Errorf("ListCategories() error = %v, want %v", err, tt.wantErr)
			}
			if _, err := svc.GetCategory(context.Background(), "fruit"); !errors.Is(err, tt.wantErr) {
				t.Errorf("GetCategory() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCatalogService_StrictValidation(t *testing.T) {
	mismatched := testCatalog()
	mismatched["fruit"][0].Category = "vegetables"

	tests := []struct {
		name    string
		strict  bool
		wantErr error
	}{
		{"lenient accepts mismatch", false, nil},
		{"strict rejects mismatch", true, repository.ErrMalformedData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockCatalogRepo{catalog: mismatched}
			svc := NewCatalogService(repo, logger.New("error"), WithStrictValidation(tt.strict))

			_, err := svc.ListItems(context.Background())
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ListItems() error = %v, want %v", err, tt.wantErr)
			}

			if tt.wantErr != nil {
				var verr *models.ValidationError
				if !errors.As(err, &verr) {
					t.Errorf("expected ValidationError in chain, got %v", err)
				}
			}
		})
	}
}

func TestCatalogService_ListCategories(t *testing.T) {
	svc := NewCatalogService(&mockCatalogRepo{catalog: testCatalog()}, logger.New("error"))

	categories, err := svc.ListCategories(context.Background())
	if err != nil {
		t.Fatalf("ListCategories() error = %v", err)
	}

	want := []string{"fruit", "protein"}
	if !reflect.DeepEqual(categories, want) {
		t.Errorf("ListCategories() = %v, want %v", categories, want)
	}
}

func TestCatalogService_GetCategory(t *testing.T) {
	svc := NewCatalogService(&mockCatalogRepo{catalog: testCatalog()}, logger.New("error"))

	items, err := svc.GetCategory(context.Background(), "protein")
	if err != nil {
		t.Fatalf("GetCategory() error = %v", err)
	}
	if len(items) != 1 || items[0].ItemID != "p1" {
		t.Errorf("GetCategory() = %+v", items)
	}

	if _, err := svc.GetCategory(context.Background(), "candy"); !errors.Is(err, ErrCategoryNotFound) {
		t.Errorf("GetCategory(unknown) error = %v, want ErrCategoryNotFound", err)
	}
}
