package advisor

import "context"

// ScoredPassage pairs a stored passage with a similarity score against
// a query embedding. Score is cosine similarity in [0, 1].
type ScoredPassage struct {
	Passage
	Score float32
}

// VectorStore abstracts passage persistence with vector search, plus the
// feedback ledger. Implementations must be safe for concurrent use.
type VectorStore interface {
	// --- Passages ---
	StorePassages(ctx context.Context, passages []Passage) error
	SearchPassages(ctx context.Context, embedding []float32, topK int) ([]ScoredPassage, error)
	CountPassages(ctx context.Context) (int, error)

	// --- Feedback ---
	StoreFeedback(ctx context.Context, fb Feedback) error
	ListFeedback(ctx context.Context) ([]Feedback, error)

	// --- Lifecycle ---
	Init(ctx context.Context) error
	Close() error
}
