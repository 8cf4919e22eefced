package pagination

// PageSize is a page's outer dimensions in CSS pixels (96 DPI).
type PageSize struct {
	Width  float64
	Height float64
	Name   string
}

// PageSizeLetter is US Letter, 8.5x11in.
var PageSizeLetter = PageSize{Width: 816, Height: 1056, Name: "Letter"}

// Options represents the page geometry used for overflow detection.
type Options struct {
	PageSize PageSize
	Padding  float64
}

// DefaultOptions returns a Letter page with one-inch padding on every side.
func DefaultOptions() Options {
	return Options{PageSize: PageSizeLetter, Padding: 96}
}

// ContentHeight is the vertical space available to blocks.
func (o Options) ContentHeight() float64 {
	return o.PageSize.Height - 2*o.Padding
}

// ContentWidth is the line width available to blocks.
func (o Options) ContentWidth() float64 {
	return o.PageSize.Width - 2*o.Padding
}
