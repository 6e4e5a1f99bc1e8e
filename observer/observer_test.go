package observer

import (
	"context"
	"errors"
	"testing"

	advisor "github.com/shridharrathore/advisor-gpt-mvp"
)

// ---------------------------------------------------------------------------
// Mock implementations
// ---------------------------------------------------------------------------

// mockProvider for observer tests.
type mockProvider struct {
	name     string
	chatResp advisor.ChatResponse
	chatErr  error
	lastReq  advisor.ChatRequest
}

func (m *mockProvider) Name() string { return m.name }
func (m *mockProvider) Chat(_ context.Context, req advisor.ChatRequest) (advisor.ChatResponse, error) {
	m.lastReq = req
	return m.chatResp, m.chatErr
}

// mockEmbedding for observer tests.
type mockEmbedding struct {
	name string
	dims int
	vecs [][]float32
	err  error
}

func (m *mockEmbedding) Name() string    { return m.name }
func (m *mockEmbedding) Dimensions() int { return m.dims }
func (m *mockEmbedding) Embed(_ context.Context, _ []string) ([][]float32, error) {
	return m.vecs, m.err
}

// mockRetriever for observer tests.
type mockRetriever struct {
	passages []advisor.RetrievedPassage
	err      error
	lastQ    string
}

func (m *mockRetriever) Retrieve(_ context.Context, query string) ([]advisor.RetrievedPassage, error) {
	m.lastQ = query
	return m.passages, m.err
}

// testInstruments creates a no-op Instruments using the global OTEL providers
// (which are no-ops by default). This is safe for testing delegation behavior
// without any real OTEL backend.
func testInstruments(t *testing.T) *Instruments {
	t.Helper()
	inst, err := newInstruments(nil)
	if err != nil {
		t.Fatalf("newInstruments: %v", err)
	}
	return inst
}

// ---------------------------------------------------------------------------
// ObservedProvider tests
// ---------------------------------------------------------------------------

func TestObservedProviderName(t *testing.T) {
	inner := &mockProvider{name: "test-provider"}
	op := WrapProvider(inner, "test-model", testInstruments(t))

	got := op.Name()
	if got != "test-provider" {
		t.Errorf("Name() = %q, want %q", got, "test-provider")
	}
}

func TestObservedProviderChat(t *testing.T) {
	want := advisor.ChatResponse{
		Content: "hello from LLM",
		Usage:   advisor.Usage{InputTokens: 10, OutputTokens: 5},
	}
	inner := &mockProvider{name: "p", chatResp: want}
	op := WrapProvider(inner, "m", testInstruments(t))

	got, err := op.Chat(context.Background(), advisor.ChatRequest{})
	if err != nil {
		t.Fatalf("Chat returned unexpected error: %v", err)
	}
	if got.Content != want.Content {
		t.Errorf("Content = %q, want %q", got.Content, want.Content)
	}
	if got.Usage != want.Usage {
		t.Errorf("Usage = %+v, want %+v", got.Usage, want.Usage)
	}
}

func TestObservedProviderChatError(t *testing.T) {
	wantErr := errors.New("provider unavailable")
	inner := &mockProvider{name: "p", chatErr: wantErr}
	op := WrapProvider(inner, "m", testInstruments(t))

	_, err := op.Chat(context.Background(), advisor.ChatRequest{})
	if !errors.Is(err, wantErr) {
		t.Errorf("Chat error = %v, want %v", err, wantErr)
	}
}

func TestObservedProviderPassesRequestThrough(t *testing.T) {
	inner := &mockProvider{name: "p"}
	op := WrapProvider(inner, "m", testInstruments(t))

	req := advisor.ChatRequest{
		Messages:   []advisor.ChatMessage{advisor.UserMessage("pump won't start")},
		JSONObject: true,
	}
	if _, err := op.Chat(context.Background(), req); err != nil {
		t.Fatalf("Chat returned unexpected error: %v", err)
	}
	if len(inner.lastReq.Messages) != 1 || inner.lastReq.Messages[0].Content != "pump won't start" {
		t.Errorf("inner request messages = %+v", inner.lastReq.Messages)
	}
	if !inner.lastReq.JSONObject {
		t.Error("JSONObject flag not passed through")
	}
}

// ---------------------------------------------------------------------------
// ObservedEmbedding tests
// ---------------------------------------------------------------------------

func TestObservedEmbedding(t *testing.T) {
	want := [][]float32{{0.1, 0.2}, {0.3, 0.4}}
	inner := &mockEmbedding{name: "e", dims: 2, vecs: want}
	oe := WrapEmbedding(inner, "embed-model", testInstruments(t))

	if oe.Name() != "e" {
		t.Errorf("Name() = %q, want %q", oe.Name(), "e")
	}
	if oe.Dimensions() != 2 {
		t.Errorf("Dimensions() = %d, want 2", oe.Dimensions())
	}

	got, err := oe.Embed(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("Embed returned unexpected error: %v", err)
	}
	if len(got) != 2 || got[0][0] != 0.1 || got[1][1] != 0.4 {
		t.Errorf("Embed = %v, want %v", got, want)
	}
}

func TestObservedEmbeddingError(t *testing.T) {
	wantErr := errors.New("embed backend down")
	inner := &mockEmbedding{name: "e", dims: 2, err: wantErr}
	oe := WrapEmbedding(inner, "embed-model", testInstruments(t))

	_, err := oe.Embed(context.Background(), []string{"a"})
	if !errors.Is(err, wantErr) {
		t.Errorf("Embed error = %v, want %v", err, wantErr)
	}
}

// ---------------------------------------------------------------------------
// ObservedRetriever tests
// ---------------------------------------------------------------------------

func TestObservedRetriever(t *testing.T) {
	want := []advisor.RetrievedPassage{
		{ChunkID: "c1", Content: "check the seal", Score: 0.91},
		{ChunkID: "c2", Content: "inspect the impeller", Score: 0.72},
	}
	inner := &mockRetriever{passages: want}
	or := WrapRetriever(inner, testInstruments(t))

	got, err := or.Retrieve(context.Background(), "pump leaking")
	if err != nil {
		t.Fatalf("Retrieve returned unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].ChunkID != "c1" || got[1].Score != 0.72 {
		t.Errorf("Retrieve = %+v, want %+v", got, want)
	}
	if inner.lastQ != "pump leaking" {
		t.Errorf("inner query = %q, want %q", inner.lastQ, "pump leaking")
	}
}

func TestObservedRetrieverEmpty(t *testing.T) {
	inner := &mockRetriever{}
	or := WrapRetriever(inner, testInstruments(t))

	got, err := or.Retrieve(context.Background(), "nothing indexed")
	if err != nil {
		t.Fatalf("Retrieve returned unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Retrieve returned %d passages, want 0", len(got))
	}
}

func TestObservedRetrieverError(t *testing.T) {
	wantErr := errors.New("store unreachable")
	inner := &mockRetriever{err: wantErr}
	or := WrapRetriever(inner, testInstruments(t))

	_, err := or.Retrieve(context.Background(), "q")
	if !errors.Is(err, wantErr) {
		t.Errorf("Retrieve error = %v, want %v", err, wantErr)
	}
}
