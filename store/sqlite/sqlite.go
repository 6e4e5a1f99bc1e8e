// Package sqlite implements advisor.VectorStore using pure-Go SQLite
// with in-process brute-force vector search. Zero CGO required.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	advisor "github.com/shridharrathore/advisor-gpt-mvp"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// StoreOption configures a SQLite Store.
type StoreOption func(*Store)

// WithLogger sets a structured logger for the store.
// When set, the store emits debug logs for every operation including
// timing, row counts, and key parameters. If not set, no logs are emitted.
func WithLogger(l *slog.Logger) StoreOption {
	return func(s *Store) { s.logger = l }
}

// Store implements advisor.VectorStore backed by a local SQLite file.
// Embeddings are stored as JSON text and vector search is done
// in-process using brute-force cosine similarity.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ advisor.VectorStore = (*Store)(nil)

// nopLogger is a logger that discards all output.
var nopLogger = slog.New(discardHandler{})

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }

// New creates a Store using a local SQLite file at dbPath.
// It opens a single shared connection pool with SetMaxOpenConns(1) so that
// all goroutines serialize through one connection, eliminating SQLITE_BUSY
// errors caused by concurrent writers opening independent connections.
func New(dbPath string, opts ...StoreOption) *Store {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		// sql.Open only fails when the driver is not registered; with the
		// blank import above that never happens.
		panic(fmt.Sprintf("sqlite: open driver: %v", err))
	}
	db.SetMaxOpenConns(1)
	s := &Store{db: db, logger: nopLogger}
	for _, o := range opts {
		o(s)
	}
	s.logger.Debug("sqlite: store opened", "path", dbPath)
	return s
}

// Init creates all required tables.
func (s *Store) Init(ctx context.Context) error {
	start := time.Now()
	s.logger.Debug("sqlite: init started")
	tables := []string{
		`CREATE TABLE IF NOT EXISTS passages (
			id TEXT PRIMARY KEY,
			text TEXT NOT NULL,
			product TEXT NOT NULL,
			product_category TEXT NOT NULL,
			doc_type TEXT NOT NULL,
			applicable_models TEXT,
			source_file TEXT NOT NULL,
			section_id TEXT NOT NULL,
			severity TEXT,
			chunk_size INTEGER NOT NULL,
			chunk_overlap INTEGER NOT NULL,
			embedding TEXT,
			created_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS feedback (
			id TEXT PRIMARY KEY,
			response_id TEXT NOT NULL,
			case_id TEXT,
			agent_id TEXT,
			feedback_type TEXT NOT NULL,
			comment TEXT,
			created_at INTEGER NOT NULL
		)`,
	}

	for _, ddl := range tables {
		if _, err := s.db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}

	// Indexes on frequently queried columns.
	_, _ = s.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_passages_source ON passages(source_file)`)
	_, _ = s.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_feedback_response ON feedback(response_id)`)

	s.logger.Info("sqlite: init completed", "duration", time.Since(start))
	return nil
}

// StorePassages inserts or replaces passages in a single transaction.
func (s *Store) StorePassages(ctx context.Context, passages []advisor.Passage) error {
	start := time.Now()
	s.logger.Debug("sqlite: store passages", "count", len(passages))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, p := range passages {
		var embJSON *string
		if len(p.Embedding) > 0 {
			v := serializeEmbedding(p.Embedding)
			embJSON = &v
		}
		var models *string
		if len(p.ApplicableModels) > 0 {
			v := strings.Join(p.ApplicableModels, ",")
			models = &v
		}
		_, err = tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO passages
			 (id, text, product, product_category, doc_type, applicable_models,
			  source_file, section_id, severity, chunk_size, chunk_overlap, embedding, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.Text, p.Product, p.ProductCategory, p.DocType, models,
			p.SourceFile, p.SectionID, p.Severity, p.ChunkSize, p.ChunkOverlap, embJSON, p.CreatedAt,
		)
		if err != nil {
			s.logger.Error("sqlite: insert passage failed", "id", p.ID, "error", err)
			return fmt.Errorf("insert passage: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("sqlite: store passages commit failed", "error", err)
		return fmt.Errorf("commit tx: %w", err)
	}
	s.logger.Debug("sqlite: store passages ok", "count", len(passages), "duration", time.Since(start))
	return nil
}

// SearchPassages performs brute-force cosine similarity search over passages.
func (s *Store) SearchPassages(ctx context.Context, embedding []float32, topK int) ([]advisor.ScoredPassage, error) {
	start := time.Now()
	s.logger.Debug("sqlite: search passages", "top_k", topK, "embedding_dim", len(embedding))

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, text, product, product_category, doc_type, applicable_models,
		        source_file, section_id, severity, chunk_size, chunk_overlap, embedding, created_at
		 FROM passages WHERE embedding IS NOT NULL`,
	)
	if err != nil {
		s.logger.Error("sqlite: search passages failed", "error", err, "duration", time.Since(start))
		return nil, fmt.Errorf("search passages: %w", err)
	}
	defer rows.Close()

	var results []advisor.ScoredPassage
	scanned := 0

	for rows.Next() {
		p, embJSON, err := scanPassage(rows)
		if err != nil {
			return nil, err
		}
		scanned++
		stored, err := deserializeEmbedding(embJSON)
		if err != nil {
			continue
		}
		p.Embedding = stored
		results = append(results, advisor.ScoredPassage{Passage: p, Score: cosineSimilarity(embedding, stored)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate passages: %w", err)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > topK {
		results = results[:topK]
	}
	s.logger.Debug("sqlite: search passages ok", "scanned", scanned, "returned", len(results), "duration", time.Since(start))
	return results, nil
}

// CountPassages returns the number of stored passages.
func (s *Store) CountPassages(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM passages`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count passages: %w", err)
	}
	return count, nil
}

// StoreFeedback inserts a feedback record.
func (s *Store) StoreFeedback(ctx context.Context, fb advisor.Feedback) error {
	start := time.Now()
	s.logger.Debug("sqlite: store feedback", "id", fb.ID, "response_id", fb.ResponseID, "type", fb.Type)

	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO feedback (id, response_id, case_id, agent_id, feedback_type, comment, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		fb.ID, fb.ResponseID, fb.CaseID, fb.AgentID, fb.Type, fb.Comment, fb.CreatedAt,
	)
	if err != nil {
		s.logger.Error("sqlite: store feedback failed", "id", fb.ID, "error", err, "duration", time.Since(start))
		return fmt.Errorf("store feedback: %w", err)
	}
	s.logger.Debug("sqlite: store feedback ok", "id", fb.ID, "duration", time.Since(start))
	return nil
}

// ListFeedback returns all feedback ordered by creation time (newest first).
func (s *Store) ListFeedback(ctx context.Context) ([]advisor.Feedback, error) {
	start := time.Now()
	s.logger.Debug("sqlite: list feedback")

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, response_id, case_id, agent_id, feedback_type, comment, created_at
		 FROM feedback ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		s.logger.Error("sqlite: list feedback failed", "error", err)
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	defer rows.Close()

	var items []advisor.Feedback
	for rows.Next() {
		var fb advisor.Feedback
		var caseID, agentID, comment sql.NullString
		if err := rows.Scan(&fb.ID, &fb.ResponseID, &caseID, &agentID, &fb.Type, &comment, &fb.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan feedback: %w", err)
		}
		fb.CaseID = caseID.String
		fb.AgentID = agentID.String
		fb.Comment = comment.String
		items = append(items, fb)
	}
	s.logger.Debug("sqlite: list feedback ok", "count", len(items), "duration", time.Since(start))
	return items, rows.Err()
}

// DB exposes the underlying database for migrations and diagnostics.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	s.logger.Debug("sqlite: closing store")
	err := s.db.Close()
	if err != nil {
		s.logger.Error("sqlite: close failed", "error", err)
	}
	return err
}

func scanPassage(rows *sql.Rows) (advisor.Passage, string, error) {
	var p advisor.Passage
	var models, severity, embJSON sql.NullString
	if err := rows.Scan(&p.ID, &p.Text, &p.Product, &p.ProductCategory, &p.DocType, &models,
		&p.SourceFile, &p.SectionID, &severity, &p.ChunkSize, &p.ChunkOverlap, &embJSON, &p.CreatedAt); err != nil {
		return advisor.Passage{}, "", fmt.Errorf("scan passage: %w", err)
	}
	if models.Valid && models.String != "" {
		p.ApplicableModels = strings.Split(models.String, ",")
	}
	p.Severity = severity.String
	return p, embJSON.String, nil
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}
	return float32(dot / denom)
}

// serializeEmbedding converts []float32 to a JSON array string.
func serializeEmbedding(embedding []float32) string {
	data, _ := json.Marshal(embedding)
	return string(data)
}

// deserializeEmbedding parses a JSON array string back to []float32.
func deserializeEmbedding(s string) ([]float32, error) {
	var v []float32
	err := json.Unmarshal([]byte(s), &v)
	return v, err
}
