package layout

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Elements that only ever appear nested inside a top-level block but still
// hold their own inline content.
var nestedBlockTags = map[string]bool{
	"li":      true,
	"dl":      true,
	"dt":      true,
	"dd":      true,
	"thead":   true,
	"tbody":   true,
	"tfoot":   true,
	"tr":      true,
	"td":      true,
	"th":      true,
	"caption": true,
}

// Elements whose text content is only reachable through block children.
var structuralTags = map[string]bool{
	"ul":    true,
	"ol":    true,
	"dl":    true,
	"table": true,
	"thead": true,
	"tbody": true,
	"tfoot": true,
	"tr":    true,
}

func isBlockElement(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	return IsBlockTag(n.Data) || nestedBlockTags[strings.ToLower(n.Data)]
}

// inlineSpan is a run of consecutive inline children of parent. A mark is
// only ever wrapped around a span, so it never contains a block element.
type inlineSpan struct {
	parent *html.Node
	nodes  []*html.Node
}

// inlineSpans collects the spans of n that carry text. Block children are
// descended into, so a table yields one span per cell and a blockquote one
// span per paragraph. Any other element without block children is a single
// span, even when empty.
func inlineSpans(n *html.Node) []inlineSpan {
	if strings.EqualFold(n.Data, "hr") {
		return nil
	}

	hasBlock := false
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if isBlockElement(c) {
			hasBlock = true
			break
		}
	}
	if !hasBlock {
		if structuralTags[strings.ToLower(n.Data)] {
			return nil
		}
		sp := inlineSpan{parent: n}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			sp.nodes = append(sp.nodes, c)
		}
		return []inlineSpan{sp}
	}

	var spans []inlineSpan
	var run []*html.Node
	flush := func() {
		for _, c := range run {
			if c.Type != html.TextNode || strings.TrimSpace(c.Data) != "" {
				spans = append(spans, inlineSpan{parent: n, nodes: run})
				break
			}
		}
		run = nil
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if isBlockElement(c) {
			flush()
			spans = append(spans, inlineSpans(c)...)
			continue
		}
		run = append(run, c)
	}
	flush()
	return spans
}

// markElement returns the only non-whitespace node of the span if it is a tag
// element.
func (sp inlineSpan) markElement(tag string) *html.Node {
	var found *html.Node
	for _, c := range sp.nodes {
		if c.Type == html.TextNode && strings.TrimSpace(c.Data) == "" {
			continue
		}
		if found != nil || c.Type != html.ElementNode || !strings.EqualFold(c.Data, tag) {
			return nil
		}
		found = c
	}
	return found
}

func (sp inlineSpan) wrap(tag string) {
	el := &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
	if len(sp.nodes) == 0 {
		sp.parent.AppendChild(el)
		return
	}
	sp.parent.InsertBefore(el, sp.nodes[0])
	for _, c := range sp.nodes {
		sp.parent.RemoveChild(c)
		el.AppendChild(c)
	}
}

func unwrap(el *html.Node) {
	parent := el.Parent
	for c := el.FirstChild; c != nil; {
		next := c.NextSibling
		el.RemoveChild(c)
		parent.InsertBefore(c, el)
		c = next
	}
	parent.RemoveChild(el)
}

// HasMark reports whether every inline span of the block is wrapped in a
// single tag element. For lists that means every item, for tables every cell.
func (b *Block) HasMark(tag string) bool {
	spans := inlineSpans(b.Node)
	if len(spans) == 0 {
		return false
	}
	for _, sp := range spans {
		if sp.markElement(tag) == nil {
			return false
		}
	}
	return true
}

// ToggleMark wraps every inline span of the block in tag, or unwraps them all
// when HasMark is already true. Rules are left alone.
func (b *Block) ToggleMark(tag string) {
	spans := inlineSpans(b.Node)
	marked := b.HasMark(tag)
	for _, sp := range spans {
		el := sp.markElement(tag)
		switch {
		case marked:
			unwrap(el)
		case el == nil:
			sp.wrap(tag)
		}
	}
}
