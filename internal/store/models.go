package store

import (
	"time"

	"github.com/uptrace/bun"
)

// Document is a submitted document. TotalPages equals the number of chunks
// written with it.
type Document struct {
	bun.BaseModel `bun:"table:documents,alias:d"`

	ID         string    `bun:"id,pk" json:"id"`
	Title      string    `bun:"title,notnull" json:"title"`
	Slug       string    `bun:"slug,notnull" json:"slug"`
	TotalPages int       `bun:"total_pages,notnull" json:"total_pages"`
	CreatedAt  time.Time `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt  time.Time `bun:"updated_at,notnull" json:"updated_at"`

	Chunks []*DocumentChunk `bun:"rel:has-many,join:id=document_id" json:"chunks,omitempty"`
}

// DocumentChunk is one page of a document. PageNumber is 1-based and unique
// within the document.
type DocumentChunk struct {
	bun.BaseModel `bun:"table:document_chunks,alias:dc"`

	ID         string    `bun:"id,pk" json:"id"`
	DocumentID string    `bun:"document_id,notnull" json:"document_id"`
	PageNumber int       `bun:"page_number,notnull" json:"page_number"`
	Content    string    `bun:"content,notnull" json:"content"`
	CreatedAt  time.Time `bun:"created_at,notnull" json:"created_at"`
}
