package importer

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/dgallion1/folio/internal/layout"
)

// HTMLImporter keeps the block elements of an HTML page's body and drops
// page chrome. The <title> element, when present, names the draft.
type HTMLImporter struct{}

var skipTags = map[string]bool{
	"script": true, "style": true, "nav": true, "footer": true,
	"header": true, "noscript": true, "template": true, "iframe": true,
}

// containerTags are walked into rather than kept as a block.
var containerTags = map[string]bool{
	"div": true, "main": true, "article": true, "section": true,
	"aside": true, "figure": true, "form": true, "body": true,
}

func (p *HTMLImporter) Import(r io.Reader, filename string) (*Draft, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	draft := &Draft{Title: baseTitle(filename)}
	if title := findTitle(doc); title != "" {
		draft.Title = title
	}

	root := findBody(doc)
	if root == nil {
		root = doc
	}

	var inline bytes.Buffer
	flush := func() error {
		fragment := strings.TrimSpace(inline.String())
		inline.Reset()
		if fragment == "" {
			return nil
		}
		blocks, err := splitBlocks(fragment)
		if err != nil {
			return err
		}
		draft.Blocks = append(draft.Blocks, blocks...)
		return nil
	}

	var walk func(*html.Node) error
	walk = func(n *html.Node) error {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.TextNode:
				inline.WriteString(html.EscapeString(c.Data))
			case html.ElementNode:
				tag := strings.ToLower(c.Data)
				switch {
				case skipTags[tag]:
				case containerTags[tag]:
					if err := flush(); err != nil {
						return err
					}
					if err := walk(c); err != nil {
						return err
					}
				case layout.IsBlockTag(tag):
					if err := flush(); err != nil {
						return err
					}
					stripSkipped(c)
					var buf bytes.Buffer
					if err := html.Render(&buf, c); err != nil {
						return fmt.Errorf("render <%s>: %w", tag, err)
					}
					if layout.IsBlankHTML(buf.String()) {
						continue
					}
					draft.Blocks = append(draft.Blocks, buf.String())
				default:
					stripSkipped(c)
					if err := html.Render(&inline, c); err != nil {
						return fmt.Errorf("render <%s>: %w", tag, err)
					}
				}
			}
		}
		return nil
	}

	if err := walk(root); err != nil {
		return nil, err
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return draft, nil
}

// stripSkipped removes script-like descendants of n in place.
func stripSkipped(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.ElementNode && skipTags[strings.ToLower(c.Data)] {
			n.RemoveChild(c)
		} else {
			stripSkipped(c)
		}
		c = next
	}
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return strings.TrimSpace(layout.TextContent(n))
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
