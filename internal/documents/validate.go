package documents

import (
	"encoding/json"
	"strings"

	"github.com/dgallion1/folio/internal/layout"
)

// Input is a document submission: a title and the HTML of every page in order.
type Input struct {
	Title string   `json:"title"`
	Pages []string `json:"pages"`
}

// ValidationError reports a submission problem in a user-facing message.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ParseForm builds an Input from the form fields of a submission. pagesJSON
// is a JSON array of strings; an empty value means no pages.
func ParseForm(title, pagesJSON string) (Input, error) {
	in := Input{Title: title}
	if strings.TrimSpace(pagesJSON) == "" {
		return in, nil
	}
	if err := json.Unmarshal([]byte(pagesJSON), &in.Pages); err != nil {
		return in, &ValidationError{Field: "pages", Message: "Pages must be a JSON array of strings"}
	}
	return in, nil
}

// Validate checks in and returns the first problem found.
func Validate(in Input) error {
	if strings.TrimSpace(in.Title) == "" {
		return &ValidationError{Field: "title", Message: "Title is required"}
	}
	if len(in.Pages) == 0 {
		return &ValidationError{Field: "pages", Message: "At least one page is required"}
	}
	for _, p := range in.Pages {
		if !layout.IsBlankHTML(p) {
			return nil
		}
	}
	return &ValidationError{Field: "pages", Message: "Please add content to at least one page."}
}
