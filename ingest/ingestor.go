package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	advisor "github.com/shridharrathore/advisor-gpt-mvp"
)

// IngestResult holds the outcome of ingesting one document.
type IngestResult struct {
	DocumentID   string
	SourceFile   string
	SectionCount int
	PassageCount int
}

// FileFailure records a document that failed during batch ingestion.
type FileFailure struct {
	File string
	Err  error
}

// IngestReport summarizes a batch run. Partial success is the norm: a
// failing document never aborts the rest of the batch.
type IngestReport struct {
	Results  []IngestResult
	Failures []FileFailure
}

// Passages returns the total passage count across all ingested documents.
func (r IngestReport) Passages() int {
	total := 0
	for _, res := range r.Results {
		total += res.PassageCount
	}
	return total
}

// Option configures an Ingestor.
type Option func(*Ingestor)

// WithBatchSize sets the embedding batch size. Default is 64.
func WithBatchSize(n int) Option {
	return func(ing *Ingestor) { ing.batchSize = n }
}

// WithLogger sets a structured logger. If not set, no logs are emitted.
func WithLogger(l *slog.Logger) Option {
	return func(ing *Ingestor) { ing.logger = l }
}

// Ingestor runs the full ingestion pipeline: parse → sections →
// passages → embed → store.
type Ingestor struct {
	store      advisor.VectorStore
	embedding  advisor.EmbeddingProvider
	chunker    Chunker
	extractors map[ContentType]Extractor
	batchSize  int
	logger     *slog.Logger
}

// NewIngestor creates an Ingestor with the given collaborators.
func NewIngestor(store advisor.VectorStore, emb advisor.EmbeddingProvider, chunker Chunker, opts ...Option) *Ingestor {
	ing := &Ingestor{
		store:     store,
		embedding: emb,
		chunker:   chunker,
		extractors: map[ContentType]Extractor{
			TypePlainText: PlainTextExtractor{},
			TypePDF:       PDFExtractor{},
			TypeCSV:       CSVExtractor{},
			TypeJSON:      JSONExtractor{},
			TypeDOCX:      DOCXExtractor{},
		},
		batchSize: 64,
		logger:    nopLogger,
	}
	for _, o := range opts {
		o(ing)
	}
	return ing
}

// IngestFile ingests one document, detecting its kind from the filename
// extension. Markdown goes through front matter parsing and section
// extraction; PDF and plain text become a single-section document.
func (ing *Ingestor) IngestFile(ctx context.Context, content []byte, filename string) (IngestResult, error) {
	ext := strings.TrimPrefix(filepath.Ext(filename), ".")
	ct := ContentTypeFromExtension(ext)

	var doc advisor.Document
	switch ct {
	case TypeMarkdown:
		var err error
		doc, err = ParseDocument(content, filename)
		if err != nil {
			return IngestResult{}, fmt.Errorf("parse %s: %w", filename, err)
		}
	default:
		extractor, ok := ing.extractors[ct]
		if !ok {
			extractor = PlainTextExtractor{}
		}
		text, err := extractor.Extract(content)
		if err != nil {
			return IngestResult{}, fmt.Errorf("extract %s: %w", filename, err)
		}
		doc = advisor.Document{
			ID:          advisor.NewID(),
			FrontMatter: map[string]any{},
			Body:        text,
			SourceFile:  filepath.Base(filename),
		}
	}

	sections := ExtractSections(doc.Body)
	passages := Assemble(sections, MetaFromDocument(doc), ing.chunker)
	if len(passages) == 0 {
		ing.logger.Warn("document produced no passages", "file", filename)
		return IngestResult{DocumentID: doc.ID, SourceFile: doc.SourceFile}, nil
	}

	if err := ing.batchEmbed(ctx, passages); err != nil {
		return IngestResult{}, err
	}
	if err := ing.store.StorePassages(ctx, passages); err != nil {
		return IngestResult{}, fmt.Errorf("store: %w", err)
	}

	ing.logger.Info("document ingested", "file", filename, "sections", len(sections), "passages", len(passages))
	return IngestResult{
		DocumentID:   doc.ID,
		SourceFile:   doc.SourceFile,
		SectionCount: len(sections),
		PassageCount: len(passages),
	}, nil
}

// IngestDir ingests every supported file in dir. Document order carries
// no dependency, and a failure is recorded and skipped: the report
// lists both successes and failures.
func (ing *Ingestor) IngestDir(ctx context.Context, dir string) (IngestReport, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return IngestReport{}, fmt.Errorf("read dir: %w", err)
	}

	var report IngestReport
	for _, entry := range entries {
		if entry.IsDir() || !supportedFile(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		content, err := os.ReadFile(path)
		if err != nil {
			ing.logger.Error("read failed", "file", path, "error", err)
			report.Failures = append(report.Failures, FileFailure{File: entry.Name(), Err: err})
			continue
		}
		result, err := ing.IngestFile(ctx, content, entry.Name())
		if err != nil {
			ing.logger.Error("ingest failed", "file", path, "error", err)
			report.Failures = append(report.Failures, FileFailure{File: entry.Name(), Err: err})
			continue
		}
		report.Results = append(report.Results, result)
	}
	return report, nil
}

func supportedFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown", ".txt", ".pdf", ".csv", ".json", ".docx":
		return true
	}
	return false
}

// batchEmbed embeds passages in batches of batchSize.
func (ing *Ingestor) batchEmbed(ctx context.Context, passages []advisor.Passage) error {
	for i := 0; i < len(passages); i += ing.batchSize {
		end := min(i+ing.batchSize, len(passages))

		batch := passages[i:end]
		texts := make([]string, len(batch))
		for j, p := range batch {
			texts[j] = p.Text
		}

		embeddings, err := ing.embedding.Embed(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed batch %d-%d: %w", i, end, err)
		}
		for j := range batch {
			if j < len(embeddings) {
				passages[i+j].Embedding = embeddings[j]
			}
		}
	}
	return nil
}

// nopLogger discards all output. Used when WithLogger is not set.
var nopLogger = slog.New(discardHandler{})

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }
