package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"codeberg.org/go-pdf/fpdf"
	"golang.org/x/net/html"

	"github.com/dgallion1/folio/internal/layout"
	"github.com/dgallion1/folio/internal/pagination"
	"github.com/dgallion1/folio/internal/store"
)

// pxToPt converts CSS pixels (96 DPI) to PDF points.
const pxToPt = 0.75

// PDF writes doc as a PDF with one page per chunk, using the same page
// geometry and typography as the editor.
func PDF(w io.Writer, doc *store.Document, opts pagination.Options) error {
	size := opts.PageSize
	pdf := fpdf.NewCustom(&fpdf.InitType{
		UnitStr: "pt",
		Size:    fpdf.SizeType{Wd: size.Width * pxToPt, Ht: size.Height * pxToPt},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(doc.Title, true)
	pdf.SetCreator("folio", true)
	pdf.SetFont(layout.FamilySans, "", 12)

	r := &renderer{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor(""), opts: opts}
	for _, c := range doc.Chunks {
		pdf.AddPage()
		if err := r.page(c.Content); err != nil {
			return fmt.Errorf("render page %d: %w", c.PageNumber, err)
		}
	}
	if len(doc.Chunks) == 0 {
		pdf.AddPage()
	}
	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}

type renderer struct {
	pdf  *fpdf.Fpdf
	tr   func(string) string
	opts pagination.Options
}

func (r *renderer) page(content string) error {
	blocks, err := layout.Parse(content)
	if err != nil {
		return err
	}
	left := r.opts.Padding
	right := r.opts.PageSize.Width - r.opts.Padding
	y := r.opts.Padding

	for _, b := range blocks {
		tag := b.Tag()
		st := layout.StyleFor(tag)
		y += st.MarginTop
		switch tag {
		case "hr":
			r.pdf.SetLineWidth(st.LineHeight * pxToPt)
			r.pdf.SetDrawColor(180, 180, 180)
			r.pdf.Line(left*pxToPt, y*pxToPt, right*pxToPt, y*pxToPt)
			y += st.LineHeight
		case "ul", "ol":
			n := 0
			for li := b.Node.FirstChild; li != nil; li = li.NextSibling {
				if li.Type != html.ElementNode || li.Data != "li" {
					continue
				}
				n++
				marker := "•"
				if tag == "ol" {
					marker = strconv.Itoa(n) + "."
				}
				r.setFont(layout.Run{}, st.FontSize)
				r.pdf.Text((left+st.Indent/4)*pxToPt, (y+baseline(st))*pxToPt, r.tr(marker))
				y = r.segments(layout.Segments(li, st), st, left+st.Indent, right, y)
			}
		default:
			y = r.segments(layout.Segments(b.Node, st), st, left+st.Indent, right, y)
		}
		y += st.MarginBottom
	}
	return nil
}

// segments writes line groups as flowing text between left and right and
// returns the y position below the last line.
func (r *renderer) segments(segs [][]layout.Run, st layout.Style, left, right, y float64) float64 {
	lh := st.LineHeight * pxToPt
	r.pdf.SetLeftMargin(left * pxToPt)
	r.pdf.SetRightMargin((r.opts.PageSize.Width - right) * pxToPt)
	for _, seg := range segs {
		r.pdf.SetXY(left*pxToPt, y*pxToPt)
		for _, run := range seg {
			text := run.Text
			if !st.Mono {
				text = collapseSpace(text)
			}
			if text == "" {
				continue
			}
			r.setFont(run, st.FontSize)
			r.pdf.Write(lh, r.tr(text))
		}
		y = r.pdf.GetY()/pxToPt + st.LineHeight
	}
	return y
}

func (r *renderer) setFont(run layout.Run, size float64) {
	r.pdf.SetFont(run.Family(), run.FontStyle(), size*pxToPt)
}

// baseline is the offset from the top of a line box to the text baseline.
func baseline(st layout.Style) float64 {
	return (st.LineHeight-st.FontSize)/2 + st.FontSize*0.8
}

// collapseSpace replaces every whitespace run with a single space.
func collapseSpace(s string) string {
	var b strings.Builder
	space := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !space {
				b.WriteByte(' ')
			}
			space = true
			continue
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}
