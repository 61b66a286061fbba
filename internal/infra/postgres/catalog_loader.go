package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"sleep-quiz-service/internal/domain"
)

// CatalogLoader loads catalog JSONB from Postgres.
type CatalogLoader struct {
	pool *pgxpool.Pool
}

func NewCatalogLoader(pool *pgxpool.Pool) *CatalogLoader {
	return &CatalogLoader{pool: pool}
}

func (l *CatalogLoader) LoadCatalog(ctx context.Context, version string) (domain.CatalogDocument, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT document FROM quiz_catalogs WHERE version=$1`, version).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.CatalogDocument{}, fmt.Errorf("load catalog %s: %w", version, domain.ErrCatalogNotFound)
	}
	if err != nil {
		return domain.CatalogDocument{}, fmt.Errorf("load catalog: %w", err)
	}
	var doc domain.CatalogDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return domain.CatalogDocument{}, fmt.Errorf("unmarshal catalog: %w", err)
	}
	return doc, nil
}

// SaveCatalog upserts a catalog document under its version.
func (l *CatalogLoader) SaveCatalog(ctx context.Context, doc domain.CatalogDocument) error {
	if _, err := domain.NewCatalog(doc); err != nil {
		return fmt.Errorf("validate catalog: %w", err)
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}
	_, err = l.pool.Exec(ctx, `
		INSERT INTO quiz_catalogs (version, document, updated_at)
		VALUES ($1, $2::jsonb, now())
		ON CONFLICT (version) DO UPDATE SET document = EXCLUDED.document, updated_at = now()`,
		doc.Version, string(data))
	if err != nil {
		return fmt.Errorf("save catalog: %w", err)
	}
	return nil
}
