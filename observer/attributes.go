package observer

import "go.opentelemetry.io/otel/attribute"

// Attribute keys for LLM and retrieval observability spans and metrics.
var (
	AttrLLMModel    = attribute.Key("llm.model")
	AttrLLMProvider = attribute.Key("llm.provider")
	AttrLLMMethod   = attribute.Key("llm.method")

	AttrTokensInput  = attribute.Key("llm.tokens.input")
	AttrTokensOutput = attribute.Key("llm.tokens.output")
	AttrCostUSD      = attribute.Key("llm.cost_usd")

	AttrEmbedTextCount  = attribute.Key("llm.embed.text_count")
	AttrEmbedDimensions = attribute.Key("llm.embed.dimensions")

	AttrQueryLength       = attribute.Key("retrieval.query_length")
	AttrRetrievedCount    = attribute.Key("retrieval.result_count")
	AttrRetrievalTopScore = attribute.Key("retrieval.top_score")
)
