// Package advisor is the core of a retrieval-augmented support assistant
// for technical troubleshooting documentation.
//
// The ingestion side (package ingest) splits documents into overlapping,
// metadata-annotated passages and stores them, with embeddings, in a
// VectorStore. The query side retrieves relevant passages, asks an LLM
// Provider for a grounded answer, and normalizes whatever comes back into
// a stable Response with citations. When retrieval finds nothing useful,
// the Orchestrator answers from a fixed fallback template without touching
// the LLM at all.
//
// The root package holds domain types and the collaborator interfaces
// (Provider, EmbeddingProvider, VectorStore, Retriever) plus the
// Orchestrator. Concrete implementations live in subpackages:
// store/sqlite, store/postgres, provider/openaicompat.
package advisor
