package pagination

import (
	"strconv"
	"strings"
	"testing"

	"github.com/dgallion1/folio/internal/layout"
)

// fixedHeights measures a block by the number in its data-h attribute.
var fixedHeights = layout.MeasureFunc(func(b *layout.Block, _ float64) float64 {
	for _, a := range b.Node.Attr {
		if a.Key == "data-h" {
			h, _ := strconv.ParseFloat(a.Val, 64)
			return h
		}
	}
	return 0
})

func blocksOf(heights ...int) string {
	var sb strings.Builder
	for i, h := range heights {
		sb.WriteString(`<p data-h="` + strconv.Itoa(h) + `">b` + strconv.Itoa(i) + `</p>`)
	}
	return sb.String()
}

func newTestDetector() *Detector {
	return NewDetector(fixedHeights, DefaultOptions())
}

func TestOptions_ContentArea(t *testing.T) {
	opts := DefaultOptions()
	if got := opts.ContentHeight(); got != 864 {
		t.Errorf("expected content height 864, got %v", got)
	}
	if got := opts.ContentWidth(); got != 624 {
		t.Errorf("expected content width 624, got %v", got)
	}
}

func TestCheck_NoOverflow(t *testing.T) {
	blocks, _ := layout.Parse(blocksOf(400, 464))
	m := newTestDetector().Check(blocks)
	if m.Overflow {
		t.Error("expected content of exactly 864 to fit")
	}
	if m.Total != 864 {
		t.Errorf("expected total 864, got %v", m.Total)
	}
}

func TestCheck_SplitIndex(t *testing.T) {
	tests := []struct {
		name    string
		heights []int
		want    int
	}{
		{"third block crosses", []int{400, 400, 100}, 2},
		{"first block alone overflows", []int{900, 10}, 1},
		{"single oversized block", []int{2000}, 0},
		{"last block crosses", []int{800, 60, 10}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocks, _ := layout.Parse(blocksOf(tt.heights...))
			m := newTestDetector().Check(blocks)
			if !m.Overflow {
				t.Fatal("expected overflow")
			}
			if m.SplitIndex != tt.want {
				t.Errorf("expected split index %d, got %d", tt.want, m.SplitIndex)
			}
		})
	}
}

func TestSplit_MovesTrailingBlocks(t *testing.T) {
	res, err := newTestDetector().Split(blocksOf(400, 400, 100, 50))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Split {
		t.Fatal("expected a split")
	}
	if !strings.Contains(res.Kept, ">b1<") || strings.Contains(res.Kept, ">b2<") {
		t.Errorf("unexpected kept content %q", res.Kept)
	}
	if !strings.HasPrefix(res.Overflow, `<p data-h="100">b2</p>`) {
		t.Errorf("unexpected overflow content %q", res.Overflow)
	}
}

func TestSplit_KeptNeverEmpty(t *testing.T) {
	res, err := newTestDetector().Split(blocksOf(1000, 1000, 1000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Split || res.SplitIndex != 1 {
		t.Fatalf("expected split at 1, got split=%v index=%d", res.Split, res.SplitIndex)
	}
	if res.Kept == "" {
		t.Error("kept partition must not be empty")
	}
}

func TestSplit_SingleBlockStays(t *testing.T) {
	content := blocksOf(5000)
	res, err := newTestDetector().Split(content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Split {
		t.Error("a single block must never be split")
	}
	if res.Kept != content {
		t.Errorf("expected content unchanged, got %q", res.Kept)
	}
}

func TestReflow(t *testing.T) {
	pages, err := newTestDetector().Reflow(blocksOf(500, 500, 500, 500, 3000, 10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 500 | 500 | 500 | 500 | 3000 | 10
	if len(pages) != 6 {
		t.Fatalf("expected 6 pages, got %d: %q", len(pages), pages)
	}
	if !strings.Contains(pages[4], `data-h="3000"`) {
		t.Errorf("expected oversized block on its own page, got %q", pages[4])
	}
}

func TestReflow_PacksSmallBlocks(t *testing.T) {
	pages, err := newTestDetector().Reflow(blocksOf(280, 280, 280, 280, 280))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(pages))
	}
	if strings.Count(pages[0], "<p") != 3 || strings.Count(pages[1], "<p") != 2 {
		t.Errorf("unexpected page distribution %q", pages)
	}
}

func TestReflow_EmptyContent(t *testing.T) {
	pages, err := newTestDetector().Reflow("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pages) != 1 || pages[0] != "" {
		t.Errorf("expected a single empty page, got %q", pages)
	}
}

func TestDetector_WithFontMeasurer(t *testing.T) {
	d := NewDetector(layout.NewFontMeasurer(), DefaultOptions())
	content := strings.Repeat("<p>"+strings.Repeat("lorem ipsum ", 40)+"</p>", 12)
	pages, err := d.Reflow(content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pages) < 2 {
		t.Fatalf("expected long content to span pages, got %d", len(pages))
	}
	for i, p := range pages {
		blocks, _ := layout.Parse(p)
		if m := d.Check(blocks); m.Overflow && len(blocks) > 1 {
			t.Errorf("page %d still overflows: %v", i+1, m.Total)
		}
	}
}
