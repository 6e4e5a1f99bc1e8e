package ingest

import (
	"strings"

	advisor "github.com/shridharrathore/advisor-gpt-mvp"
)

// Chunker splits text into passages suitable for embedding.
type Chunker interface {
	Chunk(text string) []string
	// Overlap returns the configured overlap length in bytes, recorded
	// on every non-first passage of a section.
	Overlap() int
}

// DefaultSeparators is the standard cascade, coarsest to finest. The
// trailing empty string splits by individual character and guarantees
// termination.
var DefaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// ChunkerOption configures a SeparatorChunker.
type ChunkerOption func(*SeparatorChunker)

// WithSeparators replaces the separator cascade. The list must end with
// the empty string; if it does not, one is appended.
func WithSeparators(seps []string) ChunkerOption {
	return func(c *SeparatorChunker) { c.separators = seps }
}

// SeparatorChunker splits text into size-bounded chunks by cascading
// through an ordered separator list, then stitches adjacent chunks
// together with a forward overlap. Deterministic and pure: the same text
// and configuration always produce the same chunks.
type SeparatorChunker struct {
	maxSize    int
	overlap    int
	separators []string
}

var _ Chunker = (*SeparatorChunker)(nil)

// NewSeparatorChunker creates a SeparatorChunker. maxSize is the chunk
// size bound in bytes and must be positive; overlap is the forward
// overlap length and must not be negative.
func NewSeparatorChunker(maxSize, overlap int, opts ...ChunkerOption) (*SeparatorChunker, error) {
	if maxSize <= 0 {
		return nil, &advisor.ErrConfig{Field: "chunk_size", Message: "must be positive"}
	}
	if overlap < 0 {
		return nil, &advisor.ErrConfig{Field: "chunk_overlap", Message: "must not be negative"}
	}
	c := &SeparatorChunker{
		maxSize:    maxSize,
		overlap:    overlap,
		separators: DefaultSeparators,
	}
	for _, o := range opts {
		o(c)
	}
	if n := len(c.separators); n == 0 || c.separators[n-1] != "" {
		c.separators = append(c.separators, "")
	}
	return c, nil
}

// Overlap returns the configured overlap length.
func (c *SeparatorChunker) Overlap() int { return c.overlap }

// Chunk splits text and applies the overlap pass. An empty input yields
// no chunks.
func (c *SeparatorChunker) Chunk(text string) []string {
	return overlapForward(c.split(text, c.separators), c.overlap)
}

// split recursively divides text on the first separator, descending into
// the finer separators for any part that still exceeds maxSize. Emission
// is depth-first, preserving left-to-right text order. Whitespace-only
// parts are dropped.
func (c *SeparatorChunker) split(text string, separators []string) []string {
	if len(separators) == 0 {
		// Nothing finer to split on (a single rune wider than maxSize).
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			return []string{trimmed}
		}
		return nil
	}

	var chunks []string
	for _, part := range strings.Split(text, separators[0]) {
		if len(part) > c.maxSize {
			chunks = append(chunks, c.split(part, separators[1:])...)
		} else if trimmed := strings.TrimSpace(part); trimmed != "" {
			chunks = append(chunks, trimmed)
		}
	}
	return chunks
}

// overlapForward appends the first overlap bytes of each chunk's
// successor onto the chunk itself. The direction matters: overlap is
// pulled forward from the next chunk's start, never backward from the
// previous chunk's tail, and the last chunk is emitted verbatim. When
// the next chunk is shorter than the overlap it is absorbed whole.
func overlapForward(chunks []string, overlap int) []string {
	if len(chunks) == 0 {
		return nil
	}
	out := make([]string, len(chunks))
	for i := 0; i < len(chunks)-1; i++ {
		next := chunks[i+1]
		n := min(overlap, len(next))
		out[i] = chunks[i] + next[:n]
	}
	out[len(chunks)-1] = chunks[len(chunks)-1]
	return out
}
