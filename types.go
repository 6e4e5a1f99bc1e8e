package advisor

// --- Domain types ---

// Severity levels extracted from section annotations.
const (
	SeverityCritical = "critical"
	SeverityModerate = "moderate"
	SeverityMinor    = "minor"
)

// DocMeta is document-level metadata, usually parsed from YAML front
// matter. Zero-value fields are substituted with defaults by the
// assembler rather than failing the document.
type DocMeta struct {
	Product          string   `json:"product"`
	ProductCategory  string   `json:"product_category"`
	DocType          string   `json:"doc_type"`
	ApplicableModels []string `json:"applicable_models"`
	SourceFile       string   `json:"source_file"`
}

// Document is a parsed input file: front matter plus markdown body.
// Immutable once parsed; discarded after chunking.
type Document struct {
	ID          string         `json:"id"`
	FrontMatter map[string]any `json:"front_matter"`
	Body        string         `json:"body"`
	SourceFile  string         `json:"source_file"`
}

// Section is a titled slice of a document body, delimited by level-2
// headers. Severity is one of the Severity* constants or "" when the
// section carries no annotation.
type Section struct {
	Title     string `json:"title"`
	SectionID string `json:"section_id"`
	Content   string `json:"content"`
	Severity  string `json:"severity_level,omitempty"`
}

// Passage is a retrieval-sized span of document text with full provenance
// metadata. ChunkSize equals len(Text) at creation; ChunkOverlap is 0 for
// the first passage of a section and the configured overlap length for
// the rest.
type Passage struct {
	ID               string    `json:"chunk_id"`
	Text             string    `json:"text"`
	Product          string    `json:"product"`
	ProductCategory  string    `json:"product_category"`
	DocType          string    `json:"doc_type"`
	ApplicableModels []string  `json:"applicable_models"`
	SourceFile       string    `json:"source_file"`
	SectionID        string    `json:"section_id"`
	Severity         string    `json:"severity_level,omitempty"`
	ChunkSize        int       `json:"chunk_size"`
	ChunkOverlap     int       `json:"chunk_overlap"`
	Embedding        []float32 `json:"-"`
	CreatedAt        int64     `json:"timestamp"`
}

// RetrievedPassage is a scored passage returned by a Retriever.
// Score is cosine similarity in [0, 1]; higher means closer.
type RetrievedPassage struct {
	ChunkID string  `json:"chunk_id"`
	Content string  `json:"content"`
	Score   float32 `json:"score"`
}

// Citation points a response back at a retrieved passage. Label is
// positional ("Technical Document N"); ChunkID carries the passage
// identity so the source can be traced.
type Citation struct {
	Label   string `json:"document"`
	ChunkID string `json:"chunk_id,omitempty"`
	Excerpt string `json:"content"`
}

// Response is the normalized answer contract returned for every query,
// grounded or fallback. Confidence is an integer percentage in [0, 100].
// Never mutated after construction.
type Response struct {
	ID          string     `json:"response_id"`
	Answer      string     `json:"response"`
	Steps       []string   `json:"steps,omitempty"`
	Citations   []Citation `json:"sources"`
	Confidence  int        `json:"confidence"`
	Disclaimers []string   `json:"disclaimers,omitempty"`
}

// --- Feedback ---

// Feedback types.
const (
	FeedbackLike    = "like"
	FeedbackDislike = "dislike"
)

// Feedback is an agent's rating of a response.
type Feedback struct {
	ID         string `json:"id"`
	ResponseID string `json:"response_id"`
	CaseID     string `json:"case_id"`
	AgentID    string `json:"agent_id"`
	Type       string `json:"feedback_type"`
	Comment    string `json:"comment,omitempty"`
	CreatedAt  int64  `json:"created_at"`
}

// PerformanceReport aggregates feedback into response-quality metrics.
type PerformanceReport struct {
	TotalResponses   int        `json:"total_responses"`
	HelpfulResponses int        `json:"helpful_responses"`
	SatisfactionRate float64    `json:"satisfaction_rate"`
	RecentFeedback   []Feedback `json:"recent_feedback"`
}

// --- LLM protocol types ---

type ChatMessage struct {
	Role    string `json:"role"` // "system" or "user"
	Content string `json:"content"`
}

type ChatRequest struct {
	Messages []ChatMessage `json:"messages"`
	// JSONObject requests a structured JSON reply from providers that
	// support a response-format switch. The reply may still come back as
	// plain text; callers must handle both.
	JSONObject bool `json:"-"`
}

type ChatResponse struct {
	Content string `json:"content"`
	Usage   Usage  `json:"usage"`
}

type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// --- ChatMessage constructors ---

func UserMessage(text string) ChatMessage {
	return ChatMessage{Role: "user", Content: text}
}

func SystemMessage(text string) ChatMessage {
	return ChatMessage{Role: "system", Content: text}
}
