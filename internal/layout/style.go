package layout

// Style is the resolved typography of a block, in CSS pixels at 96 DPI.
type Style struct {
	FontSize     float64
	LineHeight   float64
	MarginTop    float64
	MarginBottom float64
	Indent       float64
	Bold         bool
	Italic       bool
	Mono         bool
}

// Font family names understood by fpdf without loading font files.
const (
	FamilySans = "Helvetica"
	FamilyMono = "Courier"
	listIndent = 24
	ruleHeight = 1
)

var styles = map[string]Style{
	"p":          {FontSize: 16, LineHeight: 24, MarginBottom: 16},
	"div":        {FontSize: 16, LineHeight: 24, MarginBottom: 16},
	"h1":         {FontSize: 32, LineHeight: 40, MarginTop: 16, MarginBottom: 16, Bold: true},
	"h2":         {FontSize: 24, LineHeight: 32, MarginTop: 14, MarginBottom: 14, Bold: true},
	"h3":         {FontSize: 19, LineHeight: 28, MarginTop: 12, MarginBottom: 12, Bold: true},
	"h4":         {FontSize: 16, LineHeight: 24, MarginTop: 12, MarginBottom: 12, Bold: true},
	"h5":         {FontSize: 16, LineHeight: 24, MarginTop: 12, MarginBottom: 12, Bold: true},
	"h6":         {FontSize: 16, LineHeight: 24, MarginTop: 12, MarginBottom: 12, Bold: true},
	"ul":         {FontSize: 16, LineHeight: 24, MarginBottom: 16, Indent: listIndent},
	"ol":         {FontSize: 16, LineHeight: 24, MarginBottom: 16, Indent: listIndent},
	"blockquote": {FontSize: 16, LineHeight: 24, MarginBottom: 16, Indent: 40, Italic: true},
	"pre":        {FontSize: 14, LineHeight: 20, MarginBottom: 16, Mono: true},
	"table":      {FontSize: 16, LineHeight: 24, MarginBottom: 16},
	"hr":         {LineHeight: ruleHeight, MarginTop: 8, MarginBottom: 8},
}

// StyleFor returns the typography for a block tag. Unknown tags get paragraph styling.
func StyleFor(tag string) Style {
	if st, ok := styles[tag]; ok {
		return st
	}
	return styles["p"]
}

// Family returns the fpdf core font family for the style.
func (s Style) Family() string {
	if s.Mono {
		return FamilyMono
	}
	return FamilySans
}

// FontStyle returns the fpdf style string ("", "B", "I", "BI").
func (s Style) FontStyle() string {
	out := ""
	if s.Bold {
		out += "B"
	}
	if s.Italic {
		out += "I"
	}
	return out
}
