// Package pgpassage retrieves passages from PostgreSQL with pgvector, as an
// alternative to the Valkey/Redis index.
package pgpassage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	pgxvector "github.com/pgvector/pgvector-go/pgx"

	"github.com/kailas-cloud/sommelier/internal/domain"
	"github.com/kailas-cloud/sommelier/internal/domain/passage"
)

// DefaultTable holds one row per passage:
//
//	source_id text, content text, content_type text, available boolean null,
//	created_at timestamptz null, embedding vector(n)
const DefaultTable = "passages"

// PoolConfig tunes the connection pool.
type PoolConfig struct {
	MaxConns int32
	MinConns int32
}

// Open connects a pool with pgvector types registered on every connection.
func Open(ctx context.Context, dsn string, cfg PoolConfig) (*pgxpool.Pool, error) {
	pc, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	pc.MaxConns = 10
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	pc.MinConns = 1
	if cfg.MinConns > 0 {
		pc.MinConns = cfg.MinConns
	}
	pc.MaxConnLifetime = time.Hour
	pc.MaxConnIdleTime = 30 * time.Minute
	pc.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvector.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

// querier is the consumer interface over *pgxpool.Pool (ISP).
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Repo implements the pipeline's passage retriever over pgvector.
type Repo struct {
	db    querier
	embed domain.Embedder
	sql   string
}

// New creates a repository reading from table (DefaultTable when empty).
func New(db querier, embed domain.Embedder, table string) *Repo {
	if table == "" {
		table = DefaultTable
	}
	return &Repo{
		db:    db,
		embed: embed,
		sql: "SELECT source_id, content, content_type, available, created_at FROM " +
			pgx.Identifier{table}.Sanitize() +
			" ORDER BY embedding <=> $1 LIMIT $2",
	}
}

// Search returns the k passages nearest to text by cosine distance.
func (r *Repo) Search(ctx context.Context, text string, k int) ([]passage.Passage, error) {
	if k <= 0 {
		return nil, nil
	}
	emb, err := r.embed.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %w", domain.ErrRetrieval, err)
	}

	rows, err := r.db.Query(ctx, r.sql, pgvector.NewVector(emb.Embedding), k)
	if err != nil {
		return nil, fmt.Errorf("%w: query passages: %w", domain.ErrRetrieval, err)
	}
	defer rows.Close()

	out := make([]passage.Passage, 0, k)
	for rows.Next() {
		var (
			p           passage.Passage
			contentType *string
			available   *bool
			createdAt   *time.Time
		)
		if err := rows.Scan(&p.SourceID, &p.Content, &contentType, &available, &createdAt); err != nil {
			return nil, fmt.Errorf("%w: scan passage: %w", domain.ErrRetrieval, err)
		}
		if contentType != nil {
			p.Metadata.ContentType = *contentType
		}
		p.Metadata.Availability = available
		if createdAt != nil {
			p.Metadata.CreatedAt = createdAt.UTC()
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read passages: %w", domain.ErrRetrieval, err)
	}
	return out, nil
}
