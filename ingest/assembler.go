package ingest

import (
	advisor "github.com/shridharrathore/advisor-gpt-mvp"
)

// Default metadata substituted for missing document-level fields. A
// document with an incomplete front matter block still assembles; it
// does not fail the batch.
const (
	defaultProduct         = "Unknown"
	defaultProductCategory = "unknown"
	defaultDocType         = "unknown"
	defaultSourceFile      = "unknown.md"
)

// Assemble chunks each section and wraps every fragment in a Passage
// carrying document-level and section-level metadata, a fresh unique ID,
// and the overlap bookkeeping: the first passage of a section records
// zero overlap, all later ones record the configured overlap length.
// Passage order follows chunk order within a section and section order
// across sections.
func Assemble(sections []advisor.Section, meta advisor.DocMeta, chunker Chunker) []advisor.Passage {
	meta = withDefaults(meta)
	now := advisor.NowUnix()

	var passages []advisor.Passage
	for _, section := range sections {
		for i, text := range chunker.Chunk(section.Content) {
			overlap := 0
			if i > 0 {
				overlap = chunker.Overlap()
			}
			passages = append(passages, advisor.Passage{
				ID:               advisor.NewID(),
				Text:             text,
				Product:          meta.Product,
				ProductCategory:  meta.ProductCategory,
				DocType:          meta.DocType,
				ApplicableModels: meta.ApplicableModels,
				SourceFile:       meta.SourceFile,
				SectionID:        section.SectionID,
				Severity:         section.Severity,
				ChunkSize:        len(text),
				ChunkOverlap:     overlap,
				CreatedAt:        now,
			})
		}
	}
	return passages
}

// withDefaults fills missing document-level fields so a sparse front
// matter block degrades instead of failing.
func withDefaults(meta advisor.DocMeta) advisor.DocMeta {
	if meta.Product == "" {
		meta.Product = defaultProduct
	}
	if meta.ProductCategory == "" {
		meta.ProductCategory = defaultProductCategory
	}
	if meta.DocType == "" {
		meta.DocType = defaultDocType
	}
	if meta.SourceFile == "" {
		meta.SourceFile = defaultSourceFile
	}
	return meta
}
