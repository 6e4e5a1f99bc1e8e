package ingest

import (
	"strings"
	"testing"

	advisor "github.com/shridharrathore/advisor-gpt-mvp"
)

func testMeta() advisor.DocMeta {
	return advisor.DocMeta{
		Product:          "HydroMax 2000",
		ProductCategory:  "pumps",
		DocType:          "troubleshooting_guide",
		ApplicableModels: []string{"HM-2000", "HM-2500"},
		SourceFile:       "hydromax_guide.md",
	}
}

func TestAssembleMetadata(t *testing.T) {
	chunker := mustChunker(t, 800, 120)
	sections := []advisor.Section{
		{Title: "Low Flow", SectionID: "low_flow", Content: "Check the strainer.", Severity: "moderate"},
	}

	passages := Assemble(sections, testMeta(), chunker)
	if len(passages) != 1 {
		t.Fatalf("passages = %d, want 1", len(passages))
	}
	p := passages[0]
	if p.Product != "HydroMax 2000" || p.ProductCategory != "pumps" || p.DocType != "troubleshooting_guide" {
		t.Errorf("document metadata not copied: %+v", p)
	}
	if p.SectionID != "low_flow" || p.Severity != "moderate" {
		t.Errorf("section metadata not copied: %+v", p)
	}
	if p.SourceFile != "hydromax_guide.md" {
		t.Errorf("source file = %q", p.SourceFile)
	}
	if len(p.ApplicableModels) != 2 {
		t.Errorf("applicable models = %v", p.ApplicableModels)
	}
	if p.ChunkSize != len(p.Text) {
		t.Errorf("chunk size = %d, want len(text) = %d", p.ChunkSize, len(p.Text))
	}
	if p.CreatedAt == 0 {
		t.Error("timestamp not set")
	}
}

func TestAssembleFirstChunkZeroOverlap(t *testing.T) {
	chunker := mustChunker(t, 30, 8)
	sections := []advisor.Section{
		{Title: "A", SectionID: "a", Content: strings.Repeat("Flush the seal chamber. ", 10)},
		{Title: "B", SectionID: "b", Content: strings.Repeat("Replace worn gaskets. ", 10)},
	}

	passages := Assemble(sections, testMeta(), chunker)
	if len(passages) < 4 {
		t.Fatalf("passages = %d, want several per section", len(passages))
	}
	lastSection := ""
	for i, p := range passages {
		first := p.SectionID != lastSection
		lastSection = p.SectionID
		if first && p.ChunkOverlap != 0 {
			t.Errorf("passage %d: first chunk of section %q has overlap %d, want 0", i, p.SectionID, p.ChunkOverlap)
		}
		if !first && p.ChunkOverlap != 8 {
			t.Errorf("passage %d: overlap = %d, want configured 8", i, p.ChunkOverlap)
		}
	}
}

func TestAssembleUniqueIDs(t *testing.T) {
	chunker := mustChunker(t, 20, 4)
	sections := []advisor.Section{
		{Title: "A", SectionID: "a", Content: strings.Repeat("Torque the bolts. ", 8)},
	}
	passages := Assemble(sections, testMeta(), chunker)
	seen := map[string]bool{}
	for _, p := range passages {
		if seen[p.ID] {
			t.Errorf("duplicate chunk id %q", p.ID)
		}
		seen[p.ID] = true
	}
}

func TestAssembleSubstitutesDefaults(t *testing.T) {
	chunker := mustChunker(t, 800, 120)
	sections := []advisor.Section{
		{Title: "X", SectionID: "x", Content: "Some content."},
	}
	passages := Assemble(sections, advisor.DocMeta{}, chunker)
	if len(passages) != 1 {
		t.Fatalf("passages = %d", len(passages))
	}
	p := passages[0]
	if p.Product != "Unknown" || p.ProductCategory != "unknown" || p.DocType != "unknown" {
		t.Errorf("defaults not applied: %+v", p)
	}
	if p.SourceFile != "unknown.md" {
		t.Errorf("source file default = %q", p.SourceFile)
	}
}

func TestAssembleSectionOrder(t *testing.T) {
	chunker := mustChunker(t, 800, 0)
	sections := []advisor.Section{
		{Title: "First", SectionID: "first", Content: "first content"},
		{Title: "Second", SectionID: "second", Content: "second content"},
	}
	passages := Assemble(sections, testMeta(), chunker)
	if len(passages) != 2 {
		t.Fatalf("passages = %d", len(passages))
	}
	if passages[0].SectionID != "first" || passages[1].SectionID != "second" {
		t.Errorf("section order not preserved: %v, %v", passages[0].SectionID, passages[1].SectionID)
	}
}

func TestAssembleEmptySectionYieldsNoPassages(t *testing.T) {
	chunker := mustChunker(t, 800, 120)
	sections := []advisor.Section{{Title: "Empty", SectionID: "empty", Content: "   "}}
	if passages := Assemble(sections, testMeta(), chunker); len(passages) != 0 {
		t.Errorf("passages = %d, want 0", len(passages))
	}
}
