package sqlite

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"sync"
	"testing"

	advisor "github.com/shridharrathore/advisor-gpt-mvp"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s := New(filepath.Join(t.TempDir(), "test.db"))
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testPassage(text string, embedding []float32) advisor.Passage {
	return advisor.Passage{
		ID:               advisor.NewID(),
		Text:             text,
		Product:          "HydroMax 2000",
		ProductCategory:  "pumps",
		DocType:          "troubleshooting_guide",
		ApplicableModels: []string{"HM-2000", "HM-2500"},
		SourceFile:       "hydromax_guide.md",
		SectionID:        "low_flow",
		Severity:         "moderate",
		ChunkSize:        len(text),
		ChunkOverlap:     120,
		Embedding:        embedding,
		CreatedAt:        advisor.NowUnix(),
	}
}

func TestInitIdempotent(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "init.db"))
	defer s.Close()
	ctx := context.Background()
	if err := s.Init(ctx); err != nil {
		t.Fatalf("first Init: %v", err)
	}
	if err := s.Init(ctx); err != nil {
		t.Fatalf("second Init: %v", err)
	}
}

func TestStoreAndCountPassages(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	passages := []advisor.Passage{
		testPassage("Check the inlet strainer.", []float32{1, 0, 0}),
		testPassage("Replace the mechanical seal.", []float32{0, 1, 0}),
	}
	if err := s.StorePassages(ctx, passages); err != nil {
		t.Fatalf("StorePassages: %v", err)
	}

	count, err := s.CountPassages(ctx)
	if err != nil {
		t.Fatalf("CountPassages: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 passages, got %d", count)
	}

	// Re-storing the same IDs replaces rather than duplicates.
	if err := s.StorePassages(ctx, passages); err != nil {
		t.Fatalf("StorePassages again: %v", err)
	}
	count, _ = s.CountPassages(ctx)
	if count != 2 {
		t.Errorf("expected 2 passages after replace, got %d", count)
	}
}

func TestSearchPassagesRanking(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	exact := testPassage("exact match", []float32{1, 0, 0})
	near := testPassage("close match", []float32{0.9, 0.1, 0})
	far := testPassage("far away", []float32{0, 0, 1})
	if err := s.StorePassages(ctx, []advisor.Passage{far, near, exact}); err != nil {
		t.Fatalf("StorePassages: %v", err)
	}

	results, err := s.SearchPassages(ctx, []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("SearchPassages: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Text != "exact match" {
		t.Errorf("expected exact match first, got %q (score %f)", results[0].Text, results[0].Score)
	}
	if results[1].Text != "close match" {
		t.Errorf("expected close match second, got %q", results[1].Text)
	}
	if results[0].Score < results[1].Score {
		t.Error("results not sorted by descending score")
	}
	if math.Abs(float64(results[0].Score)-1.0) > 1e-6 {
		t.Errorf("identical vectors should score ~1.0, got %f", results[0].Score)
	}
}

func TestSearchPassagesRoundTripsMetadata(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	p := testPassage("Prime the pump before restarting.", []float32{0.5, 0.5, 0})
	if err := s.StorePassages(ctx, []advisor.Passage{p}); err != nil {
		t.Fatalf("StorePassages: %v", err)
	}

	results, err := s.SearchPassages(ctx, []float32{0.5, 0.5, 0}, 4)
	if err != nil {
		t.Fatalf("SearchPassages: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	got := results[0].Passage
	if got.Product != p.Product || got.SectionID != p.SectionID || got.Severity != p.Severity {
		t.Errorf("metadata mismatch: %+v", got)
	}
	if len(got.ApplicableModels) != 2 || got.ApplicableModels[1] != "HM-2500" {
		t.Errorf("applicable models = %v", got.ApplicableModels)
	}
	if got.ChunkOverlap != 120 {
		t.Errorf("chunk overlap = %d", got.ChunkOverlap)
	}
	if got.CreatedAt == 0 {
		t.Error("created_at not round-tripped")
	}
}

func TestSearchPassagesSkipsMissingEmbeddings(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	withEmb := testPassage("has embedding", []float32{1, 0, 0})
	noEmb := testPassage("no embedding", nil)
	if err := s.StorePassages(ctx, []advisor.Passage{withEmb, noEmb}); err != nil {
		t.Fatalf("StorePassages: %v", err)
	}

	results, err := s.SearchPassages(ctx, []float32{1, 0, 0}, 10)
	if err != nil {
		t.Fatalf("SearchPassages: %v", err)
	}
	if len(results) != 1 || results[0].Text != "has embedding" {
		t.Errorf("expected only embedded passage, got %+v", results)
	}
}

func TestSearchPassagesEmptyStore(t *testing.T) {
	s := testStore(t)
	results, err := s.SearchPassages(context.Background(), []float32{1, 0, 0}, 4)
	if err != nil {
		t.Fatalf("SearchPassages: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestFeedbackRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	fb := advisor.Feedback{
		ID:         advisor.NewID(),
		ResponseID: advisor.NewID(),
		CaseID:     "case-42",
		AgentID:    "agent-7",
		Type:       "helpful",
		Comment:    "resolved on first try",
		CreatedAt:  advisor.NowUnix(),
	}
	if err := s.StoreFeedback(ctx, fb); err != nil {
		t.Fatalf("StoreFeedback: %v", err)
	}

	items, err := s.ListFeedback(ctx)
	if err != nil {
		t.Fatalf("ListFeedback: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 feedback, got %d", len(items))
	}
	got := items[0]
	if got.ResponseID != fb.ResponseID || got.Type != "helpful" || got.Comment != fb.Comment {
		t.Errorf("unexpected feedback: %+v", got)
	}
	if got.CaseID != "case-42" || got.AgentID != "agent-7" {
		t.Errorf("identifiers not round-tripped: %+v", got)
	}
}

func TestListFeedbackNewestFirst(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	for i, typ := range []string{"helpful", "not_helpful", "helpful"} {
		fb := advisor.Feedback{
			ID:         advisor.NewID(),
			ResponseID: fmt.Sprintf("resp-%d", i),
			Type:       typ,
			CreatedAt:  int64(1000 + i),
		}
		if err := s.StoreFeedback(ctx, fb); err != nil {
			t.Fatalf("StoreFeedback: %v", err)
		}
	}

	items, err := s.ListFeedback(ctx)
	if err != nil {
		t.Fatalf("ListFeedback: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 feedback items, got %d", len(items))
	}
	if items[0].ResponseID != "resp-2" || items[2].ResponseID != "resp-0" {
		t.Errorf("feedback not newest first: %v", items)
	}
}

func TestConcurrentWrites(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := range 20 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			p := testPassage(fmt.Sprintf("passage %d", n), []float32{float32(n), 1, 0})
			if err := s.StorePassages(ctx, []advisor.Passage{p}); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent StorePassages: %v", err)
	}

	count, err := s.CountPassages(ctx)
	if err != nil {
		t.Fatalf("CountPassages: %v", err)
	}
	if count != 20 {
		t.Errorf("expected 20 passages, got %d", count)
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float32
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1.0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1.0},
		{"mismatched length", []float32{1, 2}, []float32{1, 2, 3}, 0},
		{"empty", nil, nil, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cosineSimilarity(tt.a, tt.b)
			if math.Abs(float64(got-tt.want)) > 1e-6 {
				t.Errorf("cosineSimilarity = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestEmbeddingSerializationRoundTrip(t *testing.T) {
	original := []float32{0.1, -0.5, 3.25, 0}
	got, err := deserializeEmbedding(serializeEmbedding(original))
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	if len(got) != len(original) {
		t.Fatalf("length mismatch: %d vs %d", len(got), len(original))
	}
	for i := range original {
		if got[i] != original[i] {
			t.Errorf("index %d: %f != %f", i, got[i], original[i])
		}
	}
}
