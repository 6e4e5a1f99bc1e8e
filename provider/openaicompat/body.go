package openaicompat

import (
	advisor "github.com/shridharrathore/advisor-gpt-mvp"
)

// BuildBody converts advisor ChatMessages and a model name into an
// OpenAI-format ChatRequest. System messages are kept in the messages
// array as role:"system". When jsonObject is set, response_format asks
// the model for a single JSON object; providers that ignore the switch
// still reply with plain text, which callers must handle.
func BuildBody(messages []advisor.ChatMessage, model string, jsonObject bool, opts ...Option) ChatRequest {
	msgs := make([]Message, 0, len(messages))
	for _, m := range messages {
		msgs = append(msgs, Message{Role: m.Role, Content: m.Content})
	}

	req := ChatRequest{
		Model:    model,
		Messages: msgs,
	}
	if jsonObject {
		req.ResponseFormat = &ResponseFormat{Type: "json_object"}
	}
	for _, opt := range opts {
		opt(&req)
	}
	return req
}
