package layout

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Block is one top-level block element of a page.
type Block struct {
	Node *html.Node
}

var blockTags = map[string]bool{
	"p":          true,
	"h1":         true,
	"h2":         true,
	"h3":         true,
	"h4":         true,
	"h5":         true,
	"h6":         true,
	"ul":         true,
	"ol":         true,
	"blockquote": true,
	"pre":        true,
	"hr":         true,
	"div":        true,
	"table":      true,
}

// IsBlockTag reports whether tag starts a new block at the top level of a page.
func IsBlockTag(tag string) bool {
	return blockTags[strings.ToLower(tag)]
}

// Parse splits an HTML fragment into its top-level blocks, in document order.
// Inline content that is not inside a block is wrapped in a <p>.
func Parse(content string) ([]*Block, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(content), body)
	if err != nil {
		return nil, fmt.Errorf("parse html fragment: %w", err)
	}

	var blocks []*Block
	var pending *html.Node
	for _, n := range nodes {
		switch {
		case n.Type == html.CommentNode:
			continue
		case n.Type == html.TextNode && strings.TrimSpace(n.Data) == "":
			if pending != nil {
				pending.AppendChild(n)
			}
		case n.Type == html.ElementNode && IsBlockTag(n.Data):
			pending = nil
			blocks = append(blocks, &Block{Node: n})
		default:
			if pending == nil {
				pending = &html.Node{Type: html.ElementNode, Data: "p", DataAtom: atom.P}
				blocks = append(blocks, &Block{Node: pending})
			}
			pending.AppendChild(n)
		}
	}
	return blocks, nil
}

// Render serializes blocks back into a single HTML fragment.
func Render(blocks []*Block) (string, error) {
	var buf bytes.Buffer
	for _, b := range blocks {
		if err := html.Render(&buf, b.Node); err != nil {
			return "", fmt.Errorf("render <%s>: %w", b.Tag(), err)
		}
	}
	return buf.String(), nil
}

// Tag returns the lower-cased element name of the block.
func (b *Block) Tag() string {
	return strings.ToLower(b.Node.Data)
}

// HTML returns the outer HTML of the block.
func (b *Block) HTML() (string, error) {
	return Render([]*Block{b})
}

// Text returns the concatenated text content of the block.
func (b *Block) Text() string {
	return TextContent(b.Node)
}

// IsBlank reports whether the block carries no visible text. Rules count as content.
func (b *Block) IsBlank() bool {
	if b.Tag() == "hr" {
		return false
	}
	return strings.TrimSpace(b.Text()) == ""
}

// TextContent returns the text of n and all of its descendants.
func TextContent(n *html.Node) string {
	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return buf.String()
}

// IsBlankHTML reports whether an HTML fragment has no visible content.
func IsBlankHTML(content string) bool {
	if strings.TrimSpace(content) == "" {
		return true
	}
	blocks, err := Parse(content)
	if err != nil {
		return false
	}
	for _, b := range blocks {
		if !b.IsBlank() {
			return false
		}
	}
	return true
}
