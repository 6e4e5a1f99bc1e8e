package openaicompat

import (
	advisor "github.com/shridharrathore/advisor-gpt-mvp"
)

// ParseResponse converts an OpenAI-format ChatResponse to an advisor
// ChatResponse. It extracts content and usage from choices[0].
func ParseResponse(resp ChatResponse) (advisor.ChatResponse, error) {
	var out advisor.ChatResponse

	if len(resp.Choices) == 0 {
		return out, nil
	}

	choice := resp.Choices[0]
	if choice.Message != nil {
		out.Content = choice.Message.Content
	}

	if resp.Usage != nil {
		out.Usage = advisor.Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		}
	}

	return out, nil
}
