package importer

import (
	"encoding/csv"
	"fmt"
	"html"
	"io"
	"strings"
)

// CSVImporter writes one paragraph per data row, labelling each cell with its
// column header.
type CSVImporter struct{}

func (p *CSVImporter) Import(r io.Reader, filename string) (*Draft, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	draft := &Draft{Title: baseTitle(filename)}
	if len(records) == 0 {
		return draft, nil
	}

	// First row is headers.
	headers := records[0]
	for _, row := range records[1:] {
		cells := make([]string, 0, len(row))
		for j, cell := range row {
			if j < len(headers) {
				cells = append(cells, headers[j]+": "+cell)
			} else {
				cells = append(cells, cell)
			}
		}
		line := strings.Join(cells, ", ")
		if strings.TrimSpace(line) == "" {
			continue
		}
		draft.Blocks = append(draft.Blocks, "<p>"+html.EscapeString(line)+"</p>")
	}
	return draft, nil
}
