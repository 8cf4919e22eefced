package export

import (
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/dgallion1/folio/internal/store"
)

// PageSeparator is written between pages in Markdown output.
const PageSeparator = "\n\n---\n\n"

// Markdown converts a document to Markdown: the title as a level-one heading
// followed by every page, separated by horizontal rules.
func Markdown(doc *store.Document) (string, error) {
	var b strings.Builder
	b.WriteString("# " + doc.Title + "\n\n")
	for i, c := range doc.Chunks {
		md, err := htmltomarkdown.ConvertString(c.Content)
		if err != nil {
			return "", fmt.Errorf("convert page %d: %w", c.PageNumber, err)
		}
		if i > 0 {
			b.WriteString(PageSeparator)
		}
		b.WriteString(strings.TrimSpace(md))
	}
	b.WriteString("\n")
	return b.String(), nil
}
