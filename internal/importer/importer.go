package importer

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/folio/internal/layout"
)

// Draft is imported content ready to be paginated: a title and top-level
// HTML blocks in reading order.
type Draft struct {
	Title  string
	Blocks []string
}

// HTML joins the blocks into one fragment.
func (d *Draft) HTML() string {
	return strings.Join(d.Blocks, "")
}

// Importer converts raw file bytes into a Draft.
type Importer interface {
	Import(r io.Reader, filename string) (*Draft, error)
}

// SupportedExtensions lists file extensions that can seed an editor session.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the importer for a filename.
func ForFile(filename string) (Importer, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextImporter{}, nil
	case ".md", ".markdown":
		return &MarkdownImporter{}, nil
	case ".csv":
		return &CSVImporter{}, nil
	case ".html", ".htm":
		return &HTMLImporter{}, nil
	case ".pdf":
		return &PDFImporter{}, nil
	case ".docx":
		return &DOCXImporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

func baseTitle(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// splitBlocks breaks an HTML fragment into top-level block strings.
func splitBlocks(fragment string) ([]string, error) {
	blocks, err := layout.Parse(fragment)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if b.IsBlank() {
			continue
		}
		s, err := b.HTML()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
