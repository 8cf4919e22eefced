package layout

import (
	"math"
	"sync"

	"codeberg.org/go-pdf/fpdf"
)

// pxToPt converts CSS pixels (96 DPI) to PDF points (72 DPI).
const pxToPt = 0.75

// Measurer reports the vertical space a block occupies when laid out at the
// given content width. Heights include the block's own margins.
type Measurer interface {
	Height(b *Block, width float64) float64
}

// MeasureFunc adapts a plain function to the Measurer interface.
type MeasureFunc func(b *Block, width float64) float64

func (f MeasureFunc) Height(b *Block, width float64) float64 {
	return f(b, width)
}

// FontMeasurer lays text out with fpdf core font metrics. It is safe for
// concurrent use; calls are serialized on one fpdf instance.
type FontMeasurer struct {
	mu  sync.Mutex
	pdf *fpdf.Fpdf
	tr  func(string) string
}

// NewFontMeasurer creates a measurer backed by fpdf's built-in fonts.
func NewFontMeasurer() *FontMeasurer {
	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetFont(FamilySans, "", 12)
	return &FontMeasurer{
		pdf: pdf,
		tr:  pdf.UnicodeTranslatorFromDescriptor(""),
	}
}

// Height returns margin-top + wrapped line count * line height + margin-bottom.
func (m *FontMeasurer) Height(b *Block, width float64) float64 {
	tag := b.Tag()
	st := StyleFor(tag)
	if tag == "hr" {
		return st.MarginTop + st.LineHeight + st.MarginBottom
	}

	inner := width - st.Indent
	m.mu.Lock()
	defer m.mu.Unlock()

	lines := 0
	for _, seg := range Segments(b.Node, st) {
		lines += m.wrap(seg, st.FontSize, inner)
	}
	return st.MarginTop + float64(lines)*st.LineHeight + st.MarginBottom
}

// TextWidth returns the rendered width of text in pixels for a run at size px.
func (m *FontMeasurer) TextWidth(text string, run Run, size float64) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.textWidth(text, run, size)
}

func (m *FontMeasurer) textWidth(text string, run Run, size float64) float64 {
	if text == "" || size <= 0 {
		return 0
	}
	style := ""
	if run.Bold {
		style += "B"
	}
	if run.Italic {
		style += "I"
	}
	m.pdf.SetFont(run.Family(), style, size*pxToPt)
	return m.pdf.GetStringWidth(m.tr(text)) / pxToPt
}

// wrap greedily fills lines of the given width and returns how many it used.
// Words wider than a line are broken across as many lines as they need.
func (m *FontMeasurer) wrap(seg []Run, size, width float64) int {
	if width <= 0 {
		return 1
	}
	lines := 1
	x := 0.0
	space := false
	for _, r := range seg {
		for _, w := range words(r.Text) {
			if w == " " {
				space = true
				continue
			}
			ww := m.textWidth(w, r, size)
			gap := 0.0
			if x > 0 && space {
				gap = m.textWidth(" ", r, size)
			}
			space = false
			if x > 0 && x+gap+ww > width {
				lines++
				x = 0
				gap = 0
			}
			if ww > width {
				extra := int(math.Ceil(ww/width)) - 1
				lines += extra
				x = ww - float64(extra)*width
				continue
			}
			x += gap + ww
		}
	}
	return lines
}
