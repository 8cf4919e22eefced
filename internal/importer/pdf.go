package importer

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"os/exec"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// PDFImporter reads the text layer of a PDF into paragraphs. Layout, images
// and fonts are lost. When the pure-Go reader fails and FallbackPdftotext is
// set, the poppler pdftotext binary is tried instead.
type PDFImporter struct {
	FallbackPdftotext bool
}

func (p *PDFImporter) Import(r io.Reader, filename string) (*Draft, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}

	pages, err := pdfPages(data)
	if err != nil && p.FallbackPdftotext {
		pages, err = pdftotextPages(data)
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}

	draft := &Draft{Title: baseTitle(filename)}
	for _, page := range pages {
		draft.Blocks = append(draft.Blocks, textParagraphs(page)...)
	}
	return draft, nil
}

// textParagraphs turns extracted text into <p> blocks, splitting on blank
// lines and joining wrapped lines with spaces.
func textParagraphs(text string) []string {
	var out []string
	for _, para := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n") {
		joined := strings.Join(strings.Fields(para), " ")
		if joined == "" {
			continue
		}
		out = append(out, "<p>"+html.EscapeString(joined)+"</p>")
	}
	return out
}

// pdfPages returns the plain text of each page. Pages without a text layer
// are skipped.
func pdfPages(data []byte) ([]string, error) {
	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		pages = append(pages, text)
	}
	return pages, nil
}

// pdftotextPages pipes data through pdftotext, which separates pages with
// form feeds.
func pdftotextPages(data []byte) ([]string, error) {
	cmd := exec.Command("pdftotext", "-layout", "-", "-")
	cmd.Stdin = bytes.NewReader(data)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w", err)
	}
	return strings.Split(string(out), "\f"), nil
}
