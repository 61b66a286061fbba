package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"sleep-quiz-service/internal/domain"
)

// CatalogLoader fetches catalog documents from a backing store (e.g., Postgres).
type CatalogLoader interface {
	LoadCatalog(ctx context.Context, version string) (domain.CatalogDocument, error)
}

// CatalogRepository caches catalog documents in Redis and falls back to a loader on cache miss.
// Documents are stored as JSON: SET quiz:catalog:{version} {document} EX ttl
type CatalogRepository struct {
	client *redis.Client
	loader CatalogLoader
	ttl    time.Duration
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewCatalogRepository(client *redis.Client, loader CatalogLoader, ttl time.Duration) *CatalogRepository {
	return &CatalogRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *CatalogRepository) GetCatalog(ctx context.Context, version string) (*domain.Catalog, error) {
	if catalog, ok := r.fromCache(ctx, version); ok {
		return catalog, nil
	}

	result, err, _ := r.sf.Do(version, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if catalog, ok := r.fromCache(ctx, version); ok {
			return catalog, nil
		}

		doc, err := r.loader.LoadCatalog(ctx, version)
		if err != nil {
			return nil, err
		}
		catalog, err := domain.NewCatalog(doc)
		if err != nil {
			return nil, err
		}

		if raw, err := json.Marshal(doc); err == nil {
			// best-effort; a failed write only costs another load
			_ = r.client.Set(ctx, r.key(version), raw, r.ttlWithJitter()).Err()
		}
		return catalog, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*domain.Catalog), nil
}

// Invalidate drops the cached document so the next read goes to the loader.
func (r *CatalogRepository) Invalidate(ctx context.Context, version string) error {
	return r.client.Del(ctx, r.key(version)).Err()
}

func (r *CatalogRepository) fromCache(ctx context.Context, version string) (*domain.Catalog, bool) {
	raw, err := r.client.Get(ctx, r.key(version)).Bytes()
	if err != nil {
		return nil, false
	}
	var doc domain.CatalogDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, false
	}
	catalog, err := domain.NewCatalog(doc)
	if err != nil {
		return nil, false
	}
	return catalog, true
}

func (r *CatalogRepository) key(version string) string {
	return "quiz:catalog:" + version
}

func (r *CatalogRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

