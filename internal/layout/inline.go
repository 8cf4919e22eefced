package layout

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

// Run is a span of text that shares one inline style.
type Run struct {
	Text      string
	Bold      bool
	Italic    bool
	Underline bool
	Mono      bool
}

// FontStyle returns the fpdf style string for the run.
func (r Run) FontStyle() string {
	out := ""
	if r.Bold {
		out += "B"
	}
	if r.Italic {
		out += "I"
	}
	if r.Underline {
		out += "U"
	}
	return out
}

// Family returns the fpdf core font family for the run.
func (r Run) Family() string {
	if r.Mono {
		return FamilyMono
	}
	return FamilySans
}

// lineGroupTags always start on a fresh line inside a block.
var lineGroupTags = map[string]bool{
	"p": true, "div": true, "li": true, "blockquote": true, "pre": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"ul": true, "ol": true, "table": true, "thead": true, "tbody": true, "tr": true,
}

// Segments flattens the inline content of n into line groups. A group ends at
// every <br> and at every nested block element. The result is never empty.
func Segments(n *html.Node, base Style) [][]Run {
	c := &collector{preserve: strings.EqualFold(n.Data, "pre")}
	c.walk(n, Run{Bold: base.Bold, Italic: base.Italic, Mono: base.Mono})
	c.flush()
	if len(c.segs) == 0 {
		c.segs = [][]Run{nil}
	}
	return c.segs
}

type collector struct {
	segs     [][]Run
	cur      []Run
	preserve bool
}

func (c *collector) walk(n *html.Node, st Run) {
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		switch ch.Type {
		case html.TextNode:
			c.text(ch.Data, st)
		case html.ElementNode:
			tag := strings.ToLower(ch.Data)
			switch {
			case tag == "br":
				c.breakLine()
			case tag == "script" || tag == "style":
			case tag == "td" || tag == "th":
				c.cur = append(c.cur, Run{Text: " "})
				c.walk(ch, withTag(st, tag))
			case lineGroupTags[tag]:
				c.flush()
				c.walk(ch, withTag(st, tag))
				c.flush()
			default:
				c.walk(ch, withTag(st, tag))
			}
		}
	}
}

func (c *collector) text(s string, st Run) {
	if !c.preserve {
		st.Text = s
		c.cur = append(c.cur, st)
		return
	}
	for i, part := range strings.Split(s, "\n") {
		if i > 0 {
			c.breakLine()
		}
		if part != "" {
			st.Text = part
			c.cur = append(c.cur, st)
		}
	}
}

func (c *collector) breakLine() {
	c.segs = append(c.segs, c.cur)
	c.cur = nil
}

func (c *collector) flush() {
	if len(c.cur) > 0 {
		c.segs = append(c.segs, c.cur)
		c.cur = nil
	}
}

func withTag(st Run, tag string) Run {
	switch tag {
	case "strong", "b", "th":
		st.Bold = true
	case "em", "i", "cite":
		st.Italic = true
	case "u", "ins":
		st.Underline = true
	case "code", "kbd", "samp", "pre":
		st.Mono = true
	}
	return st
}

// words splits s into words, with a single " " token standing in for every
// run of whitespace.
func words(s string) []string {
	var out []string
	start := -1
	for i, r := range s {
		if unicode.IsSpace(r) {
			if start >= 0 {
				out = append(out, s[start:i])
				start = -1
			}
			if len(out) == 0 || out[len(out)-1] != " " {
				out = append(out, " ")
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, s[start:])
	}
	return out
}
