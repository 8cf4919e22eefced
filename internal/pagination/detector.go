package pagination

import (
	"fmt"

	"github.com/dgallion1/folio/internal/layout"
)

// Measurement is the result of an overflow check over a page's blocks.
type Measurement struct {
	Heights    []float64
	Total      float64
	Overflow   bool
	SplitIndex int
}

// Result describes how a page's content was partitioned.
type Result struct {
	Kept       string
	Overflow   string
	Split      bool
	SplitIndex int
}

// Detector decides where page content has to be split.
type Detector struct {
	measurer layout.Measurer
	options  Options
}

// NewDetector creates a detector that measures with m.
func NewDetector(m layout.Measurer, opts Options) *Detector {
	return &Detector{measurer: m, options: opts}
}

// Options returns the page geometry the detector was built with.
func (d *Detector) Options() Options {
	return d.options
}

// Check measures blocks against the content height. On overflow, SplitIndex is
// the first block that no longer fits, but never less than 1 so the current
// page always keeps something. A single oversized block yields SplitIndex 0.
func (d *Detector) Check(blocks []*layout.Block) Measurement {
	width := d.options.ContentWidth()
	budget := d.options.ContentHeight()

	m := Measurement{Heights: make([]float64, len(blocks))}
	for i, b := range blocks {
		h := d.measurer.Height(b, width)
		m.Heights[i] = h
		m.Total += h
	}
	if m.Total <= budget {
		return m
	}
	m.Overflow = true
	if len(blocks) <= 1 {
		return m
	}

	acc := 0.0
	for i, h := range m.Heights {
		if acc+h > budget {
			m.SplitIndex = max(1, i)
			break
		}
		acc += h
	}
	return m
}

// Split partitions content at the overflow point. Only whole blocks move.
func (d *Detector) Split(content string) (Result, error) {
	blocks, err := layout.Parse(content)
	if err != nil {
		return Result{}, err
	}
	m := d.Check(blocks)
	if !m.Overflow || m.SplitIndex <= 0 || m.SplitIndex >= len(blocks) {
		return Result{Kept: content}, nil
	}

	kept, err := layout.Render(blocks[:m.SplitIndex])
	if err != nil {
		return Result{}, fmt.Errorf("render kept blocks: %w", err)
	}
	overflow, err := layout.Render(blocks[m.SplitIndex:])
	if err != nil {
		return Result{}, fmt.Errorf("render overflow blocks: %w", err)
	}
	return Result{Kept: kept, Overflow: overflow, Split: true, SplitIndex: m.SplitIndex}, nil
}

// Reflow splits content repeatedly until every page fits or holds a single
// block that cannot be split further. It always returns at least one page.
func (d *Detector) Reflow(content string) ([]string, error) {
	var pages []string
	rest := content
	for {
		res, err := d.Split(rest)
		if err != nil {
			return nil, err
		}
		if !res.Split {
			if len(pages) == 0 || !layout.IsBlankHTML(res.Kept) {
				pages = append(pages, res.Kept)
			}
			return pages, nil
		}
		pages = append(pages, res.Kept)
		rest = res.Overflow
	}
}
