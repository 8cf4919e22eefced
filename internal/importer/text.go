package importer

import (
	"bufio"
	"html"
	"io"
	"strings"
)

// TextImporter handles plain text files. Blank lines separate paragraphs and
// single newlines become line breaks.
type TextImporter struct{}

func (p *TextImporter) Import(r io.Reader, filename string) (*Draft, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var paragraphs [][]string
	var current []string

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			if len(current) > 0 {
				paragraphs = append(paragraphs, current)
				current = nil
			}
			continue
		}
		current = append(current, html.EscapeString(line))
	}
	if len(current) > 0 {
		paragraphs = append(paragraphs, current)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	draft := &Draft{Title: baseTitle(filename)}
	for _, lines := range paragraphs {
		draft.Blocks = append(draft.Blocks, "<p>"+strings.Join(lines, "<br/>")+"</p>")
	}
	return draft, nil
}
