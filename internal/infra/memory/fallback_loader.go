package memory

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"sleep-quiz-service/internal/domain"
)

// FallbackCatalogLoader asks primary first and serves fallback documents for
// versions primary has never stored (e.g. Postgres before `seed` has run).
// Any other primary error is returned as is.
type FallbackCatalogLoader struct {
	primary  CatalogLoader
	fallback CatalogLoader
	logger   zerolog.Logger
}

func NewFallbackCatalogLoader(primary, fallback CatalogLoader, logger zerolog.Logger) *FallbackCatalogLoader {
	return &FallbackCatalogLoader{primary: primary, fallback: fallback, logger: logger}
}

func (l *FallbackCatalogLoader) LoadCatalog(ctx context.Context, version string) (domain.CatalogDocument, error) {
	doc, err := l.primary.LoadCatalog(ctx, version)
	if !errors.Is(err, domain.ErrCatalogNotFound) {
		return doc, err
	}
	l.logger.Warn().Str("version", version).Msg("catalog not stored, serving built-in copy; run `seed` to persist it")
	return l.fallback.LoadCatalog(ctx, version)
}
