package repository

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/camwillm/Cenarium/internal/models"
	"github.com/camwillm/Cenarium/internal/watcher"
	"github.com/cespare/xxhash/v2"
)

// CachedCatalogRepository keeps the last successful parse of the data file.
//
// While a watcher feeds InvalidateOn, the cache is reused as long as the file's
// modification time and size are unchanged. Without a watcher a same-size
// rewrite inside one mtime tick would go unnoticed, so the file is read on every
// call and only the parse is skipped when the content hash matches.
// Failures are never cached. Every caller gets its own copy of the catalog.
type CachedCatalogRepository struct {
	source  *FileCatalogRepository
	logger  *slog.Logger
	watched atomic.Bool

	mu      sync.RWMutex
	catalog models.ItemsByCategory
	stamp   fileStamp
	sum     uint64
	valid   bool
}

type fileStamp struct {
	modTime time.Time
	size    int64
}

func (s fileStamp) equal(o fileStamp) bool {
	return s.size == o.size && s.modTime.Equal(o.modTime)
}

// NewCachedCatalogRepository wraps source with a cache of the parsed catalog
func NewCachedCatalogRepository(source *FileCatalogRepository, logger *slog.Logger) *CachedCatalogRepository {
	return &CachedCatalogRepository{
		source: source,
		logger: logger,
	}
}

// Load returns the cached catalog when the file is unchanged, otherwise reloads it
func (r *CachedCatalogRepository) Load(ctx context.Context) (models.ItemsByCategory, error) {
	info, err := os.Stat(r.source.Path())
	if err != nil {
		r.Invalidate()
		return nil, fmt.Errorf("%w: %w", ErrDataUnavailable, err)
	}
	// The stamp is taken before the read, so a write racing the load leaves a
	// stale stamp and forces another reload on the next call.
	current := fileStamp{modTime: info.ModTime(), size: info.Size()}

	if r.watched.Load() {
		if catalog, ok := r.lookup(func() bool { return r.stamp.equal(current) }); ok {
			return catalog, nil
		}
	}

	data, err := r.source.Read(ctx)
	if err != nil {
		r.Invalidate()
		return nil, err
	}
	sum := xxhash.Sum64(data)

	if catalog, ok := r.lookup(func() bool { return r.sum == sum }); ok {
		r.mu.Lock()
		r.stamp = current
		r.mu.Unlock()
		return catalog, nil
	}

	catalog, err := Decode(data)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.catalog = catalog
	r.stamp = current
	r.sum = sum
	r.valid = true
	r.mu.Unlock()

	r.logger.Debug("catalog cache refreshed",
		"categories", len(catalog),
		"items", catalog.ItemCount(),
	)

	return catalog.Clone(), nil
}

// lookup returns a copy of the cached catalog if it is valid and fresh reports true
func (r *CachedCatalogRepository) lookup(fresh func() bool) (models.ItemsByCategory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.valid || !fresh() {
		return nil, false
	}
	return r.catalog.Clone(), true
}

// Invalidate drops the cached catalog
func (r *CachedCatalogRepository) Invalidate() {
	r.mu.Lock()
	r.catalog = nil
	r.sum = 0
	r.valid = false
	r.mu.Unlock()
}

// InvalidateOn drops the cache whenever an event arrives, until events is closed
// or ctx is done. It blocks; run it in its own goroutine. While it runs, Load
// trusts the file stamp instead of re-reading the file.
func (r *CachedCatalogRepository) InvalidateOn(ctx context.Context, events <-chan watcher.Event) {
	r.watched.Store(true)
	defer func() {
		r.watched.Store(false)
		r.Invalidate()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			r.Invalidate()
			r.logger.Info("catalog data file changed", "operation", event.Operation.String())
		}
	}
}
