package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"sleep-quiz-service/internal/domain"
)

// CatalogLoader fetches catalog documents from a backing store (e.g., Postgres).
type CatalogLoader interface {
	LoadCatalog(ctx context.Context, version string) (domain.CatalogDocument, error)
}

// CatalogRepository caches validated catalogs with TTL to avoid repeated DB hits.
type CatalogRepository struct {
	loader CatalogLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex

	mu    sync.RWMutex
	cache map[string]cachedCatalog
}

type cachedCatalog struct {
	catalog   *domain.Catalog
	expiresAt time.Time
}

func NewCatalogRepository(loader CatalogLoader, ttl time.Duration) *CatalogRepository {
	return &CatalogRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedCatalog),
	}
}

func (r *CatalogRepository) GetCatalog(ctx context.Context, version string) (*domain.Catalog, error) {
	if c, ok := r.cached(version); ok {
		return c, nil
	}

	result, err, _ := r.sf.Do(version, func() (interface{}, error) {
		if c, ok := r.cached(version); ok {
			return c, nil
		}

		doc, err := r.loader.LoadCatalog(ctx, version)
		if err != nil {
			return nil, err
		}
		catalog, err := domain.NewCatalog(doc)
		if err != nil {
			return nil, err
		}

		expiresAt := r.clock().Add(r.ttlWithJitter())
		r.mu.Lock()
		r.cache[version] = cachedCatalog{catalog: catalog, expiresAt: expiresAt}
		r.mu.Unlock()
		return catalog, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*domain.Catalog), nil
}

func (r *CatalogRepository) cached(version string) (*domain.Catalog, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.cache[version]
	if !ok || !entry.expiresAt.After(r.clock()) {
		return nil, false
	}
	return entry.catalog, true
}

// StaticCatalogLoader serves documents from an in-memory map (useful for tests and
// for running without Postgres).
type StaticCatalogLoader struct {
	docs map[string]domain.CatalogDocument
}

func NewStaticCatalogLoader(docs ...domain.CatalogDocument) *StaticCatalogLoader {
	l := &StaticCatalogLoader{docs: make(map[string]domain.CatalogDocument, len(docs))}
	for _, d := range docs {
		l.docs[d.Version] = d
	}
	return l
}

func (l *StaticCatalogLoader) LoadCatalog(_ context.Context, version string) (domain.CatalogDocument, error) {
	if doc, ok := l.docs[version]; ok {
		return doc, nil
	}
	return domain.CatalogDocument{}, domain.ErrCatalogNotFound
}

func (r *CatalogRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
