package ingest

import "testing"

func TestContentTypeFromExtension(t *testing.T) {
	tests := []struct {
		ext  string
		want ContentType
	}{
		{"md", TypeMarkdown},
		{"markdown", TypeMarkdown},
		{"MD", TypeMarkdown},
		{"pdf", TypePDF},
		{"PDF", TypePDF},
		{"csv", TypeCSV},
		{"json", TypeJSON},
		{"docx", TypeDOCX},
		{"txt", TypePlainText},
		{"log", TypePlainText},
		{"", TypePlainText},
	}
	for _, tt := range tests {
		if got := ContentTypeFromExtension(tt.ext); got != tt.want {
			t.Errorf("ContentTypeFromExtension(%q) = %v, want %v", tt.ext, got, tt.want)
		}
	}
}

func TestPlainTextExtractor(t *testing.T) {
	text, err := PlainTextExtractor{}.Extract([]byte("Inspect the impeller.\n"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if text != "Inspect the impeller.\n" {
		t.Errorf("text = %q", text)
	}
}

func TestPDFExtractorRejectsEmptyContent(t *testing.T) {
	if _, err := (PDFExtractor{}).Extract(nil); err == nil {
		t.Error("expected error for empty content")
	}
}

func TestPDFExtractorRejectsGarbage(t *testing.T) {
	if _, err := (PDFExtractor{}).Extract([]byte("not a pdf")); err == nil {
		t.Error("expected error for malformed content")
	}
}
