package editor

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dgallion1/folio/internal/layout"
	"github.com/dgallion1/folio/internal/pagination"
)

// Mark is an inline format the toolbar can toggle.
type Mark string

const (
	MarkBold      Mark = "bold"
	MarkItalic    Mark = "italic"
	MarkUnderline Mark = "underline"
)

var markTags = map[Mark]string{
	MarkBold:      "strong",
	MarkItalic:    "em",
	MarkUnderline: "u",
}

// Notice is a short user-facing message about an automatic change.
type Notice struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Change reports what an edit did to the page list.
type Change struct {
	Split   bool    `json:"split"`
	NewPage int     `json:"new_page,omitempty"`
	Notice  *Notice `json:"notice,omitempty"`
}

// Session holds the pages of one document while it is being written.
// Only the last page accepts edits once there is more than one.
type Session struct {
	mu sync.Mutex

	ID        string
	title     string
	pages     []string
	current   int
	createdAt time.Time
	updatedAt time.Time

	detector *pagination.Detector
}

func newSession(id, title string, pages []string, d *pagination.Detector) *Session {
	if len(pages) == 0 {
		pages = []string{""}
	}
	now := time.Now()
	return &Session{
		ID:        id,
		title:     title,
		pages:     pages,
		current:   len(pages) - 1,
		createdAt: now,
		updatedAt: now,
		detector:  d,
	}
}

func (s *Session) touch() {
	s.updatedAt = time.Now()
}

// UpdatedAt returns the time of the last change.
func (s *Session) UpdatedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}

// ReadOnly reports whether page i (0-based) rejects edits.
func (s *Session) ReadOnly(i int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readOnly(i)
}

func (s *Session) readOnly(i int) bool {
	return len(s.pages) > 1 && i < len(s.pages)-1
}

// SetTitle replaces the document title.
func (s *Session) SetTitle(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.title = title
	s.touch()
}

// Update stores new content for the current page and moves whatever no
// longer fits onto new pages.
func (s *Session) Update(content string) (Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readOnly(s.current) {
		return Change{}, ErrReadOnly
	}
	s.pages[s.current] = content
	s.touch()
	return s.overflow()
}

// overflow splits the current page until it fits. Each overflow partition is
// appended as a new page that becomes current.
func (s *Session) overflow() (Change, error) {
	var ch Change
	for {
		res, err := s.detector.Split(s.pages[s.current])
		if err != nil {
			return ch, fmt.Errorf("split page %d: %w", s.current+1, err)
		}
		if !res.Split {
			break
		}
		ch.Split = true
		s.pages[s.current] = res.Kept
		// Only markup-free overflow is dropped. An empty <p> still moves.
		if strings.TrimSpace(res.Overflow) == "" {
			break
		}
		s.pages = append(s.pages, res.Overflow)
		s.current = len(s.pages) - 1
		ch.NewPage = len(s.pages)
	}
	if ch.NewPage > 0 {
		ch.Notice = &Notice{
			Title:       "New page created",
			Description: fmt.Sprintf("Content moved to page %d", ch.NewPage),
		}
	}
	return ch, nil
}

// AddPage appends an empty page, selects it and returns its 1-based number.
func (s *Session) AddPage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages = append(s.pages, "")
	s.current = len(s.pages) - 1
	s.touch()
	return len(s.pages)
}

// GoTo selects page i (0-based).
func (s *Session) GoTo(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.pages) {
		return ErrPageOutOfRange
	}
	s.current = i
	return nil
}

func (s *Session) Next() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current >= len(s.pages)-1 {
		return ErrPageOutOfRange
	}
	s.current++
	return nil
}

func (s *Session) Prev() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == 0 {
		return ErrPageOutOfRange
	}
	s.current--
	return nil
}

// DeletePage removes page i (0-based). The selection follows the page that
// was selected before, or falls back to the new last page.
func (s *Session) DeletePage(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pages) <= 1 {
		return ErrLastPage
	}
	if i < 0 || i >= len(s.pages) {
		return ErrPageOutOfRange
	}
	s.pages = append(s.pages[:i], s.pages[i+1:]...)
	switch {
	case i < s.current:
		s.current--
	case s.current >= len(s.pages):
		s.current = len(s.pages) - 1
	}
	s.touch()
	return nil
}

// ToggleMark toggles mark over the whole inline content of block (0-based)
// on the current page, then re-runs the overflow check.
func (s *Session) ToggleMark(block int, mark Mark) (Change, error) {
	tag, ok := markTags[mark]
	if !ok {
		return Change{}, fmt.Errorf("%w: %q", ErrUnknownMark, mark)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readOnly(s.current) {
		return Change{}, ErrReadOnly
	}
	blocks, err := layout.Parse(s.pages[s.current])
	if err != nil {
		return Change{}, err
	}
	if block < 0 || block >= len(blocks) {
		return Change{}, ErrBlockOutOfRange
	}
	blocks[block].ToggleMark(tag)
	content, err := layout.Render(blocks)
	if err != nil {
		return Change{}, err
	}
	s.pages[s.current] = content
	s.touch()
	return s.overflow()
}

// Submission returns the title and the pages that carry visible content.
func (s *Session) Submission() (string, []string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var pages []string
	for _, p := range s.pages {
		if layout.IsBlankHTML(p) {
			continue
		}
		pages = append(pages, strings.TrimSpace(p))
	}
	if len(pages) == 0 {
		return s.title, nil, ErrNoContent
	}
	return s.title, pages, nil
}

// PageView is one page as presented to the client.
type PageView struct {
	Number   int    `json:"number"`
	Content  string `json:"content"`
	ReadOnly bool   `json:"read_only"`
}

// SessionSnapshot is a read-only, JSON-safe copy of session state.
type SessionSnapshot struct {
	ID          string     `json:"session_id"`
	Title       string     `json:"title"`
	Pages       []PageView `json:"pages"`
	CurrentPage int        `json:"current_page"`
	TotalPages  int        `json:"total_pages"`
	Label       string     `json:"label"`
	ReadOnly    bool       `json:"read_only"`
	HasPrev     bool       `json:"has_prev"`
	HasNext     bool       `json:"has_next"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the session state.
func (s *Session) Snapshot() SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	views := make([]PageView, len(s.pages))
	for i, p := range s.pages {
		views[i] = PageView{Number: i + 1, Content: p, ReadOnly: s.readOnly(i)}
	}
	return SessionSnapshot{
		ID:          s.ID,
		Title:       s.title,
		Pages:       views,
		CurrentPage: s.current + 1,
		TotalPages:  len(s.pages),
		Label:       fmt.Sprintf("Page %d of %d", s.current+1, len(s.pages)),
		ReadOnly:    s.readOnly(s.current),
		HasPrev:     s.current > 0,
		HasNext:     s.current < len(s.pages)-1,
		CreatedAt:   s.createdAt,
		UpdatedAt:   s.updatedAt,
	}
}
