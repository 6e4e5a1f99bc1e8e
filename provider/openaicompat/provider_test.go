package openaicompat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	advisor "github.com/shridharrathore/advisor-gpt-mvp"
)

func TestProvider_Chat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Verify request.
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/chat/completions" {
			t.Errorf("expected path /chat/completions, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("unexpected content-type: %s", r.Header.Get("Content-Type"))
		}

		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "gpt-4o-mini" {
			t.Errorf("expected model gpt-4o-mini, got %s", req.Model)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}
		if req.ResponseFormat != nil {
			t.Errorf("response_format set for plain request: %+v", req.ResponseFormat)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(ChatResponse{
			ID: "chatcmpl-1",
			Choices: []Choice{{
				Index:   0,
				Message: &ChoiceMessage{Role: "assistant", Content: "Check the strainer."},
			}},
			Usage: &Usage{PromptTokens: 5, CompletionTokens: 2},
		})
	}))
	defer srv.Close()

	p := NewProvider("test-key", "gpt-4o-mini", srv.URL)

	resp, err := p.Chat(context.Background(), advisor.ChatRequest{
		Messages: []advisor.ChatMessage{
			advisor.SystemMessage("You are a support advisor."),
			advisor.UserMessage("Why is flow low?"),
		},
	})
	if err != nil {
		t.Fatalf("Chat returned error: %v", err)
	}

	if resp.Content != "Check the strainer." {
		t.Errorf("expected advisory content, got %q", resp.Content)
	}
	if resp.Usage.InputTokens != 5 || resp.Usage.OutputTokens != 2 {
		t.Errorf("unexpected usage: %+v", resp.Usage)
	}
}

func TestProvider_ChatJSONObject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.ResponseFormat == nil || req.ResponseFormat.Type != "json_object" {
			t.Errorf("expected response_format json_object, got %+v", req.ResponseFormat)
		}
		json.NewEncoder(w).Encode(ChatResponse{
			Choices: []Choice{{Message: &ChoiceMessage{Content: `{"answer":"ok"}`}}},
		})
	}))
	defer srv.Close()

	p := NewProvider("", "gpt-4o-mini", srv.URL)
	resp, err := p.Chat(context.Background(), advisor.ChatRequest{
		Messages:   []advisor.ChatMessage{advisor.UserMessage("Hi")},
		JSONObject: true,
	})
	if err != nil {
		t.Fatalf("Chat returned error: %v", err)
	}
	if resp.Content != `{"answer":"ok"}` {
		t.Errorf("unexpected content: %q", resp.Content)
	}
}

func TestProvider_ChatHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": "rate limited"}`))
	}))
	defer srv.Close()

	p := NewProvider("key", "gpt-4o-mini", srv.URL)
	_, err := p.Chat(context.Background(), advisor.ChatRequest{
		Messages: []advisor.ChatMessage{advisor.UserMessage("Hi")},
	})
	if err == nil {
		t.Fatal("expected error")
	}
	var httpErr *advisor.ErrHTTP
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected ErrHTTP, got %T: %v", err, err)
	}
	if httpErr.Status != http.StatusTooManyRequests {
		t.Errorf("status = %d", httpErr.Status)
	}
}

func TestProvider_ChatMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	p := NewProvider("key", "gpt-4o-mini", srv.URL)
	_, err := p.Chat(context.Background(), advisor.ChatRequest{
		Messages: []advisor.ChatMessage{advisor.UserMessage("Hi")},
	})
	var llmErr *advisor.ErrLLM
	if !errors.As(err, &llmErr) {
		t.Fatalf("expected ErrLLM, got %T: %v", err, err)
	}
}

func TestProvider_ChatEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ChatResponse{ID: "chatcmpl-2"})
	}))
	defer srv.Close()

	p := NewProvider("key", "gpt-4o-mini", srv.URL)
	resp, err := p.Chat(context.Background(), advisor.ChatRequest{
		Messages: []advisor.ChatMessage{advisor.UserMessage("Hi")},
	})
	if err != nil {
		t.Fatalf("Chat returned error: %v", err)
	}
	if resp.Content != "" {
		t.Errorf("expected empty content, got %q", resp.Content)
	}
}

func TestProvider_Name(t *testing.T) {
	p := NewProvider("key", "m", "http://x")
	if p.Name() != "openai" {
		t.Errorf("default name = %q", p.Name())
	}
	p = NewProvider("key", "m", "http://x", WithName("groq"))
	if p.Name() != "groq" {
		t.Errorf("name = %q", p.Name())
	}
}

func TestProvider_RequestOptions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Temperature == nil || *req.Temperature != 0.2 {
			t.Errorf("temperature = %v", req.Temperature)
		}
		if req.MaxTokens != 1024 {
			t.Errorf("max_tokens = %d", req.MaxTokens)
		}
		json.NewEncoder(w).Encode(ChatResponse{
			Choices: []Choice{{Message: &ChoiceMessage{Content: "ok"}}},
		})
	}))
	defer srv.Close()

	p := NewProvider("key", "gpt-4o-mini", srv.URL,
		WithOptions(WithTemperature(0.2), WithMaxTokens(1024)))
	if _, err := p.Chat(context.Background(), advisor.ChatRequest{
		Messages: []advisor.ChatMessage{advisor.UserMessage("Hi")},
	}); err != nil {
		t.Fatalf("Chat returned error: %v", err)
	}
}
