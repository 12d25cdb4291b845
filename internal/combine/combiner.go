// Package combine merges per-category item files into the catalog document
// served by the API.
package combine

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/camwillm/Cenarium/internal/models"
	"github.com/google/uuid"
)

// DefaultCategories are the groups the scraping pipeline produces
var DefaultCategories = []string{"dairy", "fruit", "vegetables", "protein", "fat", "grains"}

var (
	// ErrSourceMissing marks a source that does not exist and is skipped
	ErrSourceMissing = errors.New("source missing")
	// ErrNoSources is returned when Combine is called without sources
	ErrNoSources = errors.New("no sources provided")
)

// Source is one category file, either a local path or an http(s) URL.
// Locations ending in .gz are gunzipped.
type Source struct {
	Category string
	Location string
}

// Options controls normalization applied before items are validated
type Options struct {
	FillCategory bool // set an absent category to the group key
	AssignIDs    bool // give items without an item_id a random UUID
}

// Combiner loads category sources concurrently and merges them
type Combiner struct {
	client *http.Client
	logger *slog.Logger
	opts   Options
}

// sourceResult holds the result of loading a single source
type sourceResult struct {
	index int
	items []models.Item
	err   error
}

// NewCombiner creates a new combiner
func NewCombiner(logger *slog.Logger, opts Options) *Combiner {
	return &Combiner{
		client: &http.Client{Timeout: 2 * time.Minute},
		logger: logger,
		opts:   opts,
	}
}

// SourcesFromDir maps each category to <dir>/<category>.json, falling back to
// <category>.json.gz when only the compressed file exists.
func SourcesFromDir(dir string, categories []string) []Source {
	sources := make([]Source, 0, len(categories))
	for _, category := range categories {
		location := filepath.Join(dir, category+".json")
		if _, err := os.Stat(location); errors.Is(err, fs.ErrNotExist) {
			if _, err := os.Stat(location + ".gz"); err == nil {
				location += ".gz"
			}
		}
		sources = append(sources, Source{Category: category, Location: location})
	}
	return sources
}

// Combine loads all sources concurrently and returns the merged catalog.
// Missing sources are skipped with a warning; any other failure aborts.
func (c *Combiner) Combine(ctx context.Context, sources []Source) (models.ItemsByCategory, error) {
	if len(sources) == 0 {
		return nil, ErrNoSources
	}

	resultChan := make(chan sourceResult, len(sources))

	var wg sync.WaitGroup
	for i, src := range sources {
		wg.Add(1)
		go func(index int, src Source) {
			defer wg.Done()

			items, err := c.loadSource(ctx, src)
			resultChan <- sourceResult{
				index: index,
				items: items,
				err:   err,
			}
		}(i, src)
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	// Collect results maintaining source order
	results := make([]sourceResult, len(sources))
	for result := range resultChan {
		results[result.index] = result
	}

	catalog := make(models.ItemsByCategory, len(sources))
	for i, result := range results {
		src := sources[i]
		if errors.Is(result.err, ErrSourceMissing) {
			c.logger.Warn("skipping category", "category", src.Category, "location", src.Location, "reason", result.err)
			continue
		}
		if result.err != nil {
			return nil, fmt.Errorf("category %q (%s): %w", src.Category, src.Location, result.err)
		}
		if _, dup := catalog[src.Category]; dup {
			return nil, fmt.Errorf("category %q listed more than once", src.Category)
		}
		catalog[src.Category] = result.items
	}

	return catalog, nil
}

// loadSource reads and parses one source
func (c *Combiner) loadSource(ctx context.Context, src Source) ([]models.Item, error) {
	rc, err := c.open(ctx, src.Location)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var r io.Reader = rc
	if strings.HasSuffix(src.Location, ".gz") {
		gzReader, err := gzip.NewReader(rc)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gzReader.Close()
		r = gzReader
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading source: %w", err)
	}

	return c.parseGroup(data, src.Category)
}

func (c *Combiner) open(ctx context.Context, location string) (io.ReadCloser, error) {
	if !strings.HasPrefix(location, "http://") && !strings.HasPrefix(location, "https://") {
		f, err := os.Open(location)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: file not found", ErrSourceMissing)
		}
		return f, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download source: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		resp.Body.Close()
		return nil, fmt.Errorf("%w: remote returned 404", ErrSourceMissing)
	case resp.StatusCode != http.StatusOK:
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return resp.Body, nil
}

// parseGroup accepts either a bare item array or an object holding the array
// under the category key.
func (c *Combiner) parseGroup(data []byte, category string) ([]models.Item, error) {
	trimmed := bytes.TrimSpace(data)

	group := trimmed
	if !bytes.HasPrefix(trimmed, []byte("[")) {
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &wrapper); err != nil {
			return nil, fmt.Errorf("source is neither an item array nor an object: %w", err)
		}
		raw, ok := wrapper[category]
		if !ok {
			return nil, fmt.Errorf("%w: no %q key in source object", ErrSourceMissing, category)
		}
		group = raw
	}

	var rawItems []map[string]json.RawMessage
	if err := json.Unmarshal(group, &rawItems); err != nil {
		return nil, fmt.Errorf("items must be an array of objects: %w", err)
	}
	if rawItems == nil {
		return nil, fmt.Errorf("items must be an array, got null")
	}

	for _, raw := range rawItems {
		if raw == nil {
			continue
		}
		c.normalize(raw, category)
	}

	normalized, err := json.Marshal(rawItems)
	if err != nil {
		return nil, err
	}

	items := []models.Item{}
	if err := json.Unmarshal(normalized, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Combiner) normalize(raw map[string]json.RawMessage, category string) {
	if c.opts.FillCategory && isAbsent(raw, "category") {
		raw["category"], _ = json.Marshal(category)
	}
	if c.opts.AssignIDs && isAbsent(raw, "item_id") {
		raw["item_id"], _ = json.Marshal(uuid.New().String())
	}
}

func isAbsent(raw map[string]json.RawMessage, key string) bool {
	v, ok := raw[key]
	if !ok {
		return true
	}
	s := string(bytes.TrimSpace(v))
	return s == "null" || s == `""`
}

// WriteFile writes the catalog as indented JSON. The document is written to a
// temp file in the same directory and renamed over path, so readers never see
// a partially written catalog.
func WriteFile(path string, catalog models.ItemsByCategory) error {
	data, err := json.MarshalIndent(catalog, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".all-items-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	return os.Rename(tmpName, path)
}
