package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

// DefaultSystemPrompt is the fixed system instruction sent with every
// grounded query. A response-format directive is appended to it.
const DefaultSystemPrompt = "You are a helpful assistant that helps customer support agents of a " +
	"large B2B manufacturing company answer customer queries about troubleshooting " +
	"of parts and warranty claims. You will be provided with relevant information related to the query if found. " +
	"Please respond in JSON format in this structure: "

// DefaultResponseFormat is the directive describing the structured reply
// the LLM should produce.
const DefaultResponseFormat = `{"answer": "...", "steps": ["..."], "confidence": 0.0, "disclaimers": ["..."]}`

// llmErrorNotice is the degraded answer substituted when the LLM call
// fails. It flows through normalization like any plain-string reply.
const llmErrorNotice = "I was unable to generate an answer for this query due to a temporary problem. " +
	"Please retry, or escalate to Level 2 technical support if the problem persists."

// plainConfidence is the fixed confidence percentage assigned to
// unstructured LLM replies.
const plainConfidence = 80

// fallbackConfidence is the fixed low confidence percentage assigned to
// fallback responses.
const fallbackConfidence = 10

const maxCitations = 3
const excerptLen = 200

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithSystemPrompt overrides the fixed system instruction.
func WithSystemPrompt(prompt string) OrchestratorOption {
	return func(o *Orchestrator) { o.systemPrompt = prompt }
}

// WithResponseFormat overrides the response-format directive appended to
// the system instruction.
func WithResponseFormat(format string) OrchestratorOption {
	return func(o *Orchestrator) { o.responseFormat = format }
}

// WithOrchestratorLogger sets a structured logger. If not set, no logs
// are emitted.
func WithOrchestratorLogger(l *slog.Logger) OrchestratorOption {
	return func(o *Orchestrator) { o.logger = l }
}

// Orchestrator turns a raw query into a normalized Response. Each Answer
// call is an independent transaction with two terminal outcomes: a
// grounded answer built from retrieved passages, or a fallback answer
// when retrieval comes back empty. The orchestrator holds no mutable
// state and is safe for concurrent use.
type Orchestrator struct {
	retriever      Retriever
	llm            Provider
	systemPrompt   string
	responseFormat string
	logger         *slog.Logger
}

// NewOrchestrator creates an Orchestrator over the given retriever and
// LLM provider.
func NewOrchestrator(retriever Retriever, llm Provider, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		retriever:      retriever,
		llm:            llm,
		systemPrompt:   DefaultSystemPrompt,
		responseFormat: DefaultResponseFormat,
		logger:         nopLogger,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Answer retrieves passages for the query and produces a normalized
// response. An empty retrieval yields the fallback response without
// calling the LLM. An LLM failure degrades to a plain-string notice
// rather than surfacing the fault. A retriever failure is returned as an
// error: it is not the same thing as "no documents found", and the
// caller decides how to degrade it.
func (o *Orchestrator) Answer(ctx context.Context, query string) (Response, error) {
	passages, err := o.retriever.Retrieve(ctx, query)
	if err != nil {
		return Response{}, fmt.Errorf("retrieve: %w", err)
	}

	if len(passages) == 0 {
		o.logger.Info("no relevant passages, using fallback response", "query", query)
		return o.fallbackResponse(query), nil
	}

	resp, err := o.llm.Chat(ctx, ChatRequest{
		Messages: []ChatMessage{
			SystemMessage(o.systemPrompt + "\n\n" + o.responseFormat),
			UserMessage(buildUserPrompt(query, passages)),
		},
		JSONObject: true,
	})
	content := resp.Content
	if err != nil {
		o.logger.Error("llm call failed, degrading to error notice", "query", query, "error", err)
		content = llmErrorNotice
	}

	return o.normalize(content, passages), nil
}

// buildUserPrompt concatenates the query and the retrieved passage texts
// in retrieval order, blank-line separated, with no truncation.
func buildUserPrompt(query string, passages []RetrievedPassage) string {
	var b strings.Builder
	b.WriteString(query)
	for _, p := range passages {
		b.WriteString("\n\n")
		b.WriteString(p.Content)
	}
	return b.String()
}

// structuredReply mirrors the JSON shape the LLM is instructed to
// produce. Response is a legacy key some prompts still emit.
type structuredReply struct {
	Answer      string   `json:"answer"`
	Response    string   `json:"response"`
	Steps       []string `json:"steps"`
	Confidence  *float64 `json:"confidence"`
	Disclaimers []string `json:"disclaimers"`
}

// normalize converts a raw LLM reply, structured or plain, into the
// response contract.
func (o *Orchestrator) normalize(content string, passages []RetrievedPassage) Response {
	var reply structuredReply
	if err := json.Unmarshal([]byte(content), &reply); err != nil {
		// Plain text reply.
		return Response{
			ID:         NewID(),
			Answer:     content,
			Citations:  buildCitations(passages),
			Confidence: plainConfidence,
		}
	}

	answer := reply.Answer
	if answer == "" {
		answer = reply.Response
	}
	if answer == "" {
		answer = "No response available"
	}

	confidence := plainConfidence
	if reply.Confidence != nil {
		confidence = int(*reply.Confidence * 100)
	}

	return Response{
		ID:          NewID(),
		Answer:      answer,
		Steps:       reply.Steps,
		Citations:   buildCitations(passages),
		Confidence:  confidence,
		Disclaimers: reply.Disclaimers,
	}
}

// buildCitations takes the top retrieved passages in retrieval order,
// labels them sequentially, and truncates each excerpt with a trailing
// ellipsis marker.
func buildCitations(passages []RetrievedPassage) []Citation {
	n := min(len(passages), maxCitations)
	citations := make([]Citation, n)
	for i := 0; i < n; i++ {
		excerpt := passages[i].Content
		if len(excerpt) > excerptLen {
			excerpt = excerpt[:excerptLen]
		}
		citations[i] = Citation{
			Label:   fmt.Sprintf("Technical Document %d", i+1),
			ChunkID: passages[i].ChunkID,
			Excerpt: excerpt + "...",
		}
	}
	return citations
}

// fallbackResponse is the fixed guidance template used when retrieval
// yields nothing. It embeds the original query verbatim, carries no
// citations, and never involves the LLM.
func (o *Orchestrator) fallbackResponse(query string) Response {
	message := fmt.Sprintf(`I apologize, but I couldn't find specific information in our technical documentation to answer your question about: %q

However, I can provide some general guidance:

**For Manufacturing Equipment Issues:**
1. Check the equipment manual for troubleshooting steps
2. Verify all connections and power supply
3. Review recent maintenance logs
4. Contact technical support with specific error codes

**For HydroMax Pump Issues:**
1. Check inlet/outlet pressures
2. Inspect for blockages or leaks
3. Verify electrical connections
4. Review pump specifications vs. operating conditions

**Next Steps:**
- Please provide more specific details about the issue
- Include any error codes or symptoms
- Consider escalating to Level 2 technical support

Would you like to rephrase your question or provide additional details?`, query)

	return Response{
		ID:         NewID(),
		Answer:     message,
		Citations:  []Citation{},
		Confidence: fallbackConfidence,
	}
}
