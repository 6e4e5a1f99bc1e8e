package advisor

import (
	"context"
	"fmt"
	"log/slog"
)

// Retriever searches the knowledge base and returns passages relevant to
// a query, ordered best-first and already filtered by similarity
// threshold. An empty index yields an empty slice, not an error.
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]RetrievedPassage, error)
}

// RetrieverOption configures a VectorRetriever.
type RetrieverOption func(*retrieverConfig)

type retrieverConfig struct {
	topK     int
	minScore float32
	logger   *slog.Logger
}

// WithTopK sets how many passages to retrieve. Default is 4.
func WithTopK(k int) RetrieverOption {
	return func(c *retrieverConfig) { c.topK = k }
}

// WithMinScore sets the minimum cosine similarity for a passage to be
// considered relevant. Results below it are dropped. Default is 0.6.
func WithMinScore(score float32) RetrieverOption {
	return func(c *retrieverConfig) { c.minScore = score }
}

// WithRetrieverLogger sets a structured logger. If not set, no logs are
// emitted.
func WithRetrieverLogger(l *slog.Logger) RetrieverOption {
	return func(c *retrieverConfig) { c.logger = l }
}

// VectorRetriever embeds the query and runs vector search against a
// VectorStore, keeping results above the similarity threshold in store
// order (best-first). Each result carries the passage's chunk ID so
// citations can be traced back to their source.
type VectorRetriever struct {
	store     VectorStore
	embedding EmbeddingProvider
	cfg       retrieverConfig
}

var _ Retriever = (*VectorRetriever)(nil)

// NewVectorRetriever creates a Retriever over the given store and
// embedding provider.
func NewVectorRetriever(store VectorStore, embedding EmbeddingProvider, opts ...RetrieverOption) *VectorRetriever {
	cfg := retrieverConfig{topK: 4, minScore: 0.6, logger: nopLogger}
	for _, o := range opts {
		o(&cfg)
	}
	return &VectorRetriever{store: store, embedding: embedding, cfg: cfg}
}

// Retrieve embeds the query, searches the store, and returns passages
// whose similarity clears the threshold, best-first.
func (r *VectorRetriever) Retrieve(ctx context.Context, query string) ([]RetrievedPassage, error) {
	count, err := r.store.CountPassages(ctx)
	if err != nil {
		return nil, fmt.Errorf("count passages: %w", err)
	}
	if count == 0 {
		r.cfg.logger.Debug("retrieve: index empty", "query", query)
		return nil, nil
	}

	embs, err := r.embedding.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(embs) == 0 {
		return nil, fmt.Errorf("embed query: no embedding returned")
	}

	scored, err := r.store.SearchPassages(ctx, embs[0], r.cfg.topK)
	if err != nil {
		return nil, fmt.Errorf("search passages: %w", err)
	}

	var results []RetrievedPassage
	for _, sp := range scored {
		if sp.Score < r.cfg.minScore {
			continue
		}
		results = append(results, RetrievedPassage{
			ChunkID: sp.ID,
			Content: sp.Text,
			Score:   sp.Score,
		})
	}

	r.cfg.logger.Debug("retrieve completed", "query", query, "candidates", len(scored), "kept", len(results))
	return results, nil
}
