package ingest

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	advisor "github.com/shridharrathore/advisor-gpt-mvp"
)

// frontMatterMarkdown is a goldmark instance used only for YAML front
// matter extraction. Parsing is stateless; per-call state lives in the
// parser context.
var frontMatterMarkdown = goldmark.New(goldmark.WithExtensions(meta.Meta))

// ParseDocument parses a markdown file into a Document: YAML front
// matter as metadata, the remaining markdown as the body. A file with no
// front matter parses to an empty metadata map.
func ParseDocument(content []byte, sourceFile string) (advisor.Document, error) {
	ctx := parser.NewContext()
	frontMatterMarkdown.Parser().Parse(text.NewReader(content), parser.WithContext(ctx))

	fm := meta.Get(ctx)
	if fm == nil {
		fm = map[string]any{}
	}

	return advisor.Document{
		ID:          advisor.NewID(),
		FrontMatter: fm,
		Body:        stripFrontMatter(string(content)),
		SourceFile:  filepath.Base(sourceFile),
	}, nil
}

// MetaFromDocument maps front matter keys onto DocMeta. Unset fields stay
// zero; the assembler substitutes defaults. SourceFile prefers an
// explicit front matter value over the file name.
func MetaFromDocument(doc advisor.Document) advisor.DocMeta {
	m := advisor.DocMeta{
		Product:          stringValue(doc.FrontMatter["product"]),
		ProductCategory:  stringValue(doc.FrontMatter["product_category"]),
		DocType:          stringValue(doc.FrontMatter["doc_type"]),
		ApplicableModels: stringSlice(doc.FrontMatter["applicable_models"]),
		SourceFile:       stringValue(doc.FrontMatter["source_file"]),
	}
	if m.SourceFile == "" {
		m.SourceFile = doc.SourceFile
	}
	return m
}

// stripFrontMatter removes a leading YAML front matter block delimited
// by "---" lines. Returns the body trimmed of leading whitespace.
func stripFrontMatter(content string) string {
	rest, ok := strings.CutPrefix(content, "---")
	if !ok {
		return content
	}
	// Delimiter line must end here; "---something" is body text.
	if !strings.HasPrefix(rest, "\n") && !strings.HasPrefix(rest, "\r\n") {
		return content
	}
	for _, marker := range []string{"\n---\n", "\n---\r\n"} {
		if idx := strings.Index(rest, marker); idx >= 0 {
			return strings.TrimLeft(rest[idx+len(marker):], "\r\n")
		}
	}
	if idx := strings.Index(rest, "\n---"); idx >= 0 && strings.TrimSpace(rest[idx+4:]) == "" {
		return ""
	}
	return content
}

func stringValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprintf("%v", t)
	}
}

func stringSlice(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			out = append(out, stringValue(item))
		}
		return out
	case string:
		// Comma-separated fallback, the format some older documents use.
		parts := strings.Split(t, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	default:
		return nil
	}
}
