package importer

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"strconv"
	"strings"

	"github.com/fumiama/go-docx"
)

// DOCXImporter maps Word paragraphs to headings and paragraphs, keeping
// bold, italic and underline runs.
type DOCXImporter struct{}

func (p *DOCXImporter) Import(r io.Reader, filename string) (*Draft, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	draft := &Draft{Title: baseTitle(filename)}
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		inner := docxParagraphHTML(para)
		if strings.TrimSpace(inner) == "" {
			continue
		}
		tag := "p"
		if level := docxHeadingLevel(para); level > 0 {
			tag = "h" + strconv.Itoa(level)
		}
		draft.Blocks = append(draft.Blocks, "<"+tag+">"+inner+"</"+tag+">")
	}
	return draft, nil
}

func docxHeadingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
	if !strings.HasPrefix(style, "heading") {
		return 0
	}
	level, err := strconv.Atoi(strings.TrimPrefix(style, "heading"))
	if err != nil || level < 1 || level > 6 {
		return 0
	}
	return level
}

func docxParagraphHTML(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		var text strings.Builder
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				text.WriteString(t.Text)
			}
		}
		if text.Len() == 0 {
			continue
		}
		s := html.EscapeString(text.String())
		if props := run.RunProperties; props != nil {
			if props.Underline != nil && props.Underline.Val != "none" {
				s = "<u>" + s + "</u>"
			}
			if props.Italic != nil {
				s = "<em>" + s + "</em>"
			}
			if props.Bold != nil {
				s = "<strong>" + s + "</strong>"
			}
		}
		buf.WriteString(s)
	}
	return strings.TrimSpace(buf.String())
}
