package importer

import (
	"strings"
	"testing"
)

func TestTextParagraphs(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", nil},
		{"whitespace only", " \n\n \t\n", nil},
		{"wrapped lines join", "line one\nwrapped", []string{"<p>line one wrapped</p>"}},
		{"blank line splits", "one\n\ntwo", []string{"<p>one</p>", "<p>two</p>"}},
		{"extra blank lines", "line one\nwrapped\n\n\n  second  para \n", []string{"<p>line one wrapped</p>", "<p>second para</p>"}},
		{"crlf", "a\r\nb\r\n\r\nc", []string{"<p>a b</p>", "<p>c</p>"}},
		{"escaped", "5 < 6 & 7", []string{"<p>5 &lt; 6 &amp; 7</p>"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := textParagraphs(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d paragraphs, got %d: %q", len(tt.want), len(got), got)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("paragraph[%d]: expected %q, got %q", i, tt.want[i], got[i])
				}
			}
		})
	}
}

func TestPDFImporter_InvalidData(t *testing.T) {
	p := &PDFImporter{}
	_, err := p.Import(strings.NewReader("not a pdf"), "broken.pdf")
	if err == nil {
		t.Fatal("expected error for invalid pdf")
	}
	if !strings.Contains(err.Error(), "extract pdf text") {
		t.Errorf("expected extraction error, got %v", err)
	}
}

func TestForFile_PDF(t *testing.T) {
	imp, err := ForFile("report.PDF")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := imp.(*PDFImporter); !ok {
		t.Errorf("expected *PDFImporter, got %T", imp)
	}
}
