package documents

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/folio/internal/store"
)

// Repository is the persistence the service needs. *store.Store satisfies it.
type Repository interface {
	CreateDocument(ctx context.Context, doc *store.Document) error
	ListDocuments(ctx context.Context) ([]*store.Document, error)
	GetDocument(ctx context.Context, id string) (*store.Document, error)
}

// Summary is a document as shown in listings.
type Summary struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Slug       string    `json:"slug"`
	TotalPages int       `json:"total_pages"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Service validates submissions and reads documents back.
type Service struct {
	repo Repository
	log  *slog.Logger
	now  func() time.Time
}

func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Create validates in and stores it as one document with a chunk per page.
// Chunks are numbered from 1 in input order.
func (s *Service) Create(ctx context.Context, in Input) (*store.Document, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	now := s.now()
	doc := &store.Document{
		ID:         uuid.NewString(),
		Title:      title,
		Slug:       Slugify(title),
		TotalPages: len(in.Pages),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for i, content := range in.Pages {
		doc.Chunks = append(doc.Chunks, &store.DocumentChunk{
			ID:         uuid.NewString(),
			DocumentID: doc.ID,
			PageNumber: i + 1,
			Content:    content,
			CreatedAt:  now,
		})
	}

	if err := s.repo.CreateDocument(ctx, doc); err != nil {
		s.log.Error("create document failed", "title", title, "pages", len(in.Pages), "error", err)
		return nil, fmt.Errorf("create document: %w", err)
	}
	s.log.Info("document created", "doc_id", doc.ID, "slug", doc.Slug, "pages", doc.TotalPages)
	return doc, nil
}

// List returns summaries of all documents, newest first.
func (s *Service) List(ctx context.Context) ([]Summary, error) {
	docs, err := s.repo.ListDocuments(ctx)
	if err != nil {
		s.log.Error("list documents failed", "error", err)
		return nil, err
	}
	out := make([]Summary, 0, len(docs))
	for _, d := range docs {
		out = append(out, Summary{
			ID:         d.ID,
			Title:      d.Title,
			Slug:       d.Slug,
			TotalPages: d.TotalPages,
			CreatedAt:  d.CreatedAt,
			UpdatedAt:  d.UpdatedAt,
		})
	}
	return out, nil
}

// Get returns a document with its chunks in page order.
func (s *Service) Get(ctx context.Context, id string) (*store.Document, error) {
	return s.repo.GetDocument(ctx, id)
}
