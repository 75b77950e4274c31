// Package postgres persists the source registry: which URLs were
// submitted, what was fetched, and how far each got through the
// pipeline. The chunk vectors themselves live in the vector index, not
// here.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/lyyyylyllll123-dotcom/sg-rental-rag/internal/core/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS sources (
    url           TEXT PRIMARY KEY,
    title         TEXT NOT NULL DEFAULT '',
    category      TEXT NOT NULL DEFAULT '',
    source_domain TEXT NOT NULL DEFAULT '',
    fetch_date    TIMESTAMPTZ,
    raw_text      TEXT NOT NULL DEFAULT '',
    status        TEXT NOT NULL,
    chunk_count   INTEGER NOT NULL DEFAULT 0,
    error         TEXT NOT NULL DEFAULT '',
    created_at    TIMESTAMPTZ NOT NULL,
    updated_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS sources_status_idx ON sources (status);
`

// schemaLockID serializes concurrent schema creation across processes.
const schemaLockID = 7341002

type SourceRepository struct {
	db *sql.DB
}

func Open(dsn string) (*SourceRepository, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	return &SourceRepository{db: db}, nil
}

func NewWithDB(db *sql.DB) *SourceRepository {
	return &SourceRepository{db: db}
}

func (r *SourceRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "SELECT pg_advisory_lock($1)", schemaLockID); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}
	defer r.db.ExecContext(ctx, "SELECT pg_advisory_unlock($1)", schemaLockID)

	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (r *SourceRepository) Create(ctx context.Context, doc *domain.SourceDocument) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sources (url, title, category, source_domain, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		doc.URL, doc.Title, doc.Category, doc.SourceDomain, string(doc.Status), doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert source: %w", err)
	}
	return nil
}

func (r *SourceRepository) GetByURL(ctx context.Context, url string) (*domain.SourceDocument, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT url, title, category, source_domain, fetch_date, status, chunk_count, error, created_at, updated_at
		FROM sources WHERE url = $1`, url)

	var doc domain.SourceDocument
	var status string
	var fetchDate sql.NullTime
	err := row.Scan(&doc.URL, &doc.Title, &doc.Category, &doc.SourceDomain, &fetchDate, &status, &doc.ChunkCount, &doc.Error, &doc.CreatedAt, &doc.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.WrapError(domain.ErrSourceNotFound, "get source", fmt.Errorf("url %q", url))
	}
	if err != nil {
		return nil, fmt.Errorf("scan source: %w", err)
	}
	doc.Status = domain.SourceStatus(status)
	if fetchDate.Valid {
		doc.FetchDate = fetchDate.Time
	}
	return &doc, nil
}

func (r *SourceRepository) UpdateStatus(ctx context.Context, url string, status domain.SourceStatus, errMessage string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE sources SET status = $2, error = $3, updated_at = $4 WHERE url = $1`,
		url, string(status), errMessage, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update status rows: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrSourceNotFound, "update status", fmt.Errorf("url %q", url))
	}
	return nil
}

// SaveFetchResult stores everything the fetch and chunk stages produced
// for the document, including its current status.
func (r *SourceRepository) SaveFetchResult(ctx context.Context, doc *domain.SourceDocument) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE sources
		SET title = $2, source_domain = $3, fetch_date = $4, raw_text = $5,
		    status = $6, chunk_count = $7, error = '', updated_at = $8
		WHERE url = $1`,
		doc.URL, doc.Title, doc.SourceDomain, doc.FetchDate, doc.RawText,
		string(doc.Status), doc.ChunkCount, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save fetch result: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("save fetch result rows: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrSourceNotFound, "save fetch result", fmt.Errorf("url %q", doc.URL))
	}
	return nil
}

func (r *SourceRepository) List(ctx context.Context) ([]domain.SourceDocument, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT url, title, category, source_domain, fetch_date, status, chunk_count, error, created_at, updated_at
		FROM sources ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	defer rows.Close()

	var docs []domain.SourceDocument
	for rows.Next() {
		var doc domain.SourceDocument
		var status string
		var fetchDate sql.NullTime
		if err := rows.Scan(&doc.URL, &doc.Title, &doc.Category, &doc.SourceDomain, &fetchDate, &status, &doc.ChunkCount, &doc.Error, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan source row: %w", err)
		}
		doc.Status = domain.SourceStatus(status)
		if fetchDate.Valid {
			doc.FetchDate = fetchDate.Time
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sources: %w", err)
	}
	return docs, nil
}

func (r *SourceRepository) Close() error {
	return r.db.Close()
}
