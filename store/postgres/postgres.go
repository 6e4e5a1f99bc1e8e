// Package postgres implements advisor.VectorStore using PostgreSQL with
// pgvector for native vector similarity search.
//
// Store accepts an externally-owned *pgxpool.Pool via constructor
// injection. The caller creates and closes the pool.
package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	advisor "github.com/shridharrathore/advisor-gpt-mvp"
)

// Store implements advisor.VectorStore backed by PostgreSQL with pgvector.
// Vector search uses HNSW indexes with cosine distance.
type Store struct {
	pool *pgxpool.Pool
	cfg  pgConfig
}

// pgConfig holds store configuration set via Option functions.
type pgConfig struct {
	embeddingDimension int // 0 = untyped vector
	hnswM              int // 0 = pgvector default (16)
	hnswEFConstruction int // 0 = pgvector default (64)
	hnswEFSearch       int // 0 = pgvector default (40)
}

// Option configures a PostgreSQL Store.
type Option func(*pgConfig)

// WithEmbeddingDimension sets the vector column dimension (e.g. 1536, 768).
// When set, CREATE TABLE uses vector(N) instead of untyped vector, enabling
// better index optimization and catching dimension mismatches at insert time.
// Only affects new table creation (no ALTER on existing tables).
func WithEmbeddingDimension(dim int) Option {
	return func(c *pgConfig) { c.embeddingDimension = dim }
}

// WithHNSWM sets the HNSW m parameter (max connections per node).
// Higher values improve recall at the cost of memory. Default: pgvector's 16.
// Only affects index creation (CREATE INDEX IF NOT EXISTS).
func WithHNSWM(m int) Option {
	return func(c *pgConfig) { c.hnswM = m }
}

// WithEFConstruction sets the HNSW ef_construction parameter (build-time
// candidate list size). Higher values improve index quality at the cost of
// slower builds. Default: pgvector's 64.
// Only affects index creation (CREATE INDEX IF NOT EXISTS).
func WithEFConstruction(ef int) Option {
	return func(c *pgConfig) { c.hnswEFConstruction = ef }
}

// WithEFSearch sets the HNSW ef_search parameter (query-time candidate list
// size). Higher values improve recall at the cost of latency. Default:
// pgvector's 40. Applied via SET during Init().
func WithEFSearch(ef int) Option {
	return func(c *pgConfig) { c.hnswEFSearch = ef }
}

var _ advisor.VectorStore = (*Store)(nil)

// New creates a Store using an existing pgxpool.Pool.
// The caller owns the pool and is responsible for closing it.
func New(pool *pgxpool.Pool, opts ...Option) *Store {
	var cfg pgConfig
	for _, o := range opts {
		o(&cfg)
	}
	return &Store{pool: pool, cfg: cfg}
}

// vectorType returns "vector" or "vector(N)" depending on config.
func (s *Store) vectorType() string {
	if s.cfg.embeddingDimension > 0 {
		return fmt.Sprintf("vector(%d)", s.cfg.embeddingDimension)
	}
	return "vector"
}

// hnswWithClause returns the WITH (...) clause for HNSW index creation,
// or an empty string if no tuning params are set.
func (s *Store) hnswWithClause() string {
	var parts []string
	if s.cfg.hnswM > 0 {
		parts = append(parts, fmt.Sprintf("m = %d", s.cfg.hnswM))
	}
	if s.cfg.hnswEFConstruction > 0 {
		parts = append(parts, fmt.Sprintf("ef_construction = %d", s.cfg.hnswEFConstruction))
	}
	if len(parts) == 0 {
		return ""
	}
	return " WITH (" + strings.Join(parts, ", ") + ")"
}

// Init creates the pgvector extension, all required tables, and indexes.
// Safe to call multiple times (all statements are idempotent).
func (s *Store) Init(ctx context.Context) error {
	vtype := s.vectorType()
	hnswWith := s.hnswWithClause()

	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS passages (
			id TEXT PRIMARY KEY,
			text TEXT NOT NULL,
			product TEXT NOT NULL,
			product_category TEXT NOT NULL,
			doc_type TEXT NOT NULL,
			applicable_models TEXT[],
			source_file TEXT NOT NULL,
			section_id TEXT NOT NULL,
			severity TEXT NOT NULL DEFAULT '',
			chunk_size INTEGER NOT NULL,
			chunk_overlap INTEGER NOT NULL,
			embedding %s,
			created_at BIGINT NOT NULL
		)`, vtype),
		`CREATE INDEX IF NOT EXISTS passages_source_idx ON passages(source_file)`,
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS passages_embedding_idx ON passages USING hnsw (embedding vector_cosine_ops)%s`, hnswWith),

		`CREATE TABLE IF NOT EXISTS feedback (
			id TEXT PRIMARY KEY,
			response_id TEXT NOT NULL,
			case_id TEXT NOT NULL DEFAULT '',
			agent_id TEXT NOT NULL DEFAULT '',
			feedback_type TEXT NOT NULL,
			comment TEXT NOT NULL DEFAULT '',
			created_at BIGINT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS feedback_response_idx ON feedback(response_id)`,
	}

	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("postgres: init: %w", err)
		}
	}

	if s.cfg.hnswEFSearch > 0 {
		if _, err := s.pool.Exec(ctx, fmt.Sprintf("SET hnsw.ef_search = %d", s.cfg.hnswEFSearch)); err != nil {
			return fmt.Errorf("postgres: set ef_search: %w", err)
		}
	}
	return nil
}

// StorePassages inserts or replaces passages in a single transaction.
func (s *Store) StorePassages(ctx context.Context, passages []advisor.Passage) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for _, p := range passages {
		if len(p.Embedding) > 0 {
			embStr := serializeEmbedding(p.Embedding)
			_, err = tx.Exec(ctx,
				`INSERT INTO passages (id, text, product, product_category, doc_type, applicable_models,
				   source_file, section_id, severity, chunk_size, chunk_overlap, embedding, created_at)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12::vector, $13)
				 ON CONFLICT (id) DO UPDATE SET
				   text = EXCLUDED.text,
				   product = EXCLUDED.product,
				   product_category = EXCLUDED.product_category,
				   doc_type = EXCLUDED.doc_type,
				   applicable_models = EXCLUDED.applicable_models,
				   source_file = EXCLUDED.source_file,
				   section_id = EXCLUDED.section_id,
				   severity = EXCLUDED.severity,
				   chunk_size = EXCLUDED.chunk_size,
				   chunk_overlap = EXCLUDED.chunk_overlap,
				   embedding = EXCLUDED.embedding,
				   created_at = EXCLUDED.created_at`,
				p.ID, p.Text, p.Product, p.ProductCategory, p.DocType, p.ApplicableModels,
				p.SourceFile, p.SectionID, p.Severity, p.ChunkSize, p.ChunkOverlap, embStr, p.CreatedAt)
		} else {
			_, err = tx.Exec(ctx,
				`INSERT INTO passages (id, text, product, product_category, doc_type, applicable_models,
				   source_file, section_id, severity, chunk_size, chunk_overlap, embedding, created_at)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NULL, $12)
				 ON CONFLICT (id) DO UPDATE SET
				   text = EXCLUDED.text,
				   product = EXCLUDED.product,
				   product_category = EXCLUDED.product_category,
				   doc_type = EXCLUDED.doc_type,
				   applicable_models = EXCLUDED.applicable_models,
				   source_file = EXCLUDED.source_file,
				   section_id = EXCLUDED.section_id,
				   severity = EXCLUDED.severity,
				   chunk_size = EXCLUDED.chunk_size,
				   chunk_overlap = EXCLUDED.chunk_overlap,
				   embedding = NULL,
				   created_at = EXCLUDED.created_at`,
				p.ID, p.Text, p.Product, p.ProductCategory, p.DocType, p.ApplicableModels,
				p.SourceFile, p.SectionID, p.Severity, p.ChunkSize, p.ChunkOverlap, p.CreatedAt)
		}
		if err != nil {
			return fmt.Errorf("postgres: insert passage: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: commit tx: %w", err)
	}
	return nil
}

// SearchPassages performs native pgvector cosine similarity search.
func (s *Store) SearchPassages(ctx context.Context, embedding []float32, topK int) ([]advisor.ScoredPassage, error) {
	embStr := serializeEmbedding(embedding)

	rows, err := s.pool.Query(ctx,
		`SELECT id, text, product, product_category, doc_type, applicable_models,
		        source_file, section_id, severity, chunk_size, chunk_overlap, created_at,
		        1 - (embedding <=> $1::vector) AS score
		 FROM passages
		 WHERE embedding IS NOT NULL
		 ORDER BY embedding <=> $1::vector
		 LIMIT $2`,
		embStr, topK)
	if err != nil {
		return nil, fmt.Errorf("postgres: search passages: %w", err)
	}
	defer rows.Close()

	var results []advisor.ScoredPassage
	for rows.Next() {
		var p advisor.Passage
		var score float32
		if err := rows.Scan(&p.ID, &p.Text, &p.Product, &p.ProductCategory, &p.DocType, &p.ApplicableModels,
			&p.SourceFile, &p.SectionID, &p.Severity, &p.ChunkSize, &p.ChunkOverlap, &p.CreatedAt, &score); err != nil {
			return nil, fmt.Errorf("postgres: scan passage: %w", err)
		}
		results = append(results, advisor.ScoredPassage{Passage: p, Score: score})
	}
	return results, rows.Err()
}

// CountPassages returns the number of stored passages.
func (s *Store) CountPassages(ctx context.Context) (int, error) {
	var count int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM passages`).Scan(&count); err != nil {
		return 0, fmt.Errorf("postgres: count passages: %w", err)
	}
	return count, nil
}

// StoreFeedback inserts a feedback record.
func (s *Store) StoreFeedback(ctx context.Context, fb advisor.Feedback) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO feedback (id, response_id, case_id, agent_id, feedback_type, comment, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO UPDATE SET
		   response_id = EXCLUDED.response_id,
		   case_id = EXCLUDED.case_id,
		   agent_id = EXCLUDED.agent_id,
		   feedback_type = EXCLUDED.feedback_type,
		   comment = EXCLUDED.comment,
		   created_at = EXCLUDED.created_at`,
		fb.ID, fb.ResponseID, fb.CaseID, fb.AgentID, fb.Type, fb.Comment, fb.CreatedAt)
	if err != nil {
		return fmt.Errorf("postgres: store feedback: %w", err)
	}
	return nil
}

// ListFeedback returns all feedback ordered by creation time (newest first).
func (s *Store) ListFeedback(ctx context.Context) ([]advisor.Feedback, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, response_id, case_id, agent_id, feedback_type, comment, created_at
		 FROM feedback ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list feedback: %w", err)
	}
	defer rows.Close()

	var items []advisor.Feedback
	for rows.Next() {
		var fb advisor.Feedback
		if err := rows.Scan(&fb.ID, &fb.ResponseID, &fb.CaseID, &fb.AgentID, &fb.Type, &fb.Comment, &fb.CreatedAt); err != nil {
			return nil, fmt.Errorf("postgres: scan feedback: %w", err)
		}
		items = append(items, fb)
	}
	return items, rows.Err()
}

// Close is a no-op: the pool is owned by the caller.
func (s *Store) Close() error {
	return nil
}

// serializeEmbedding renders a []float32 as a pgvector literal.
func serializeEmbedding(embedding []float32) string {
	parts := make([]string, len(embedding))
	for i, v := range embedding {
		parts[i] = strconv.FormatFloat(float64(v), 'f', -1, 32)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
