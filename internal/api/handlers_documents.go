package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/folio/internal/documents"
	"github.com/dgallion1/folio/internal/export"
	"github.com/dgallion1/folio/internal/store"
)

const createFailedMessage = "Failed to create document. Please try again."

// handleListDocuments lists document summaries, newest first.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	list, err := s.docs.List(r.Context())
	if err != nil {
		jsonError(w, "failed to list documents", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": list})
}

// handleCreateDocument accepts the form fields title and pages (a JSON array
// of page HTML) and redirects to the gallery.
func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseForm(); err != nil {
		jsonError(w, "invalid form: "+err.Error(), http.StatusBadRequest)
		return
	}

	in, err := documents.ParseForm(r.FormValue("title"), r.FormValue("pages"))
	if err != nil {
		s.createError(w, err)
		return
	}
	if _, err := s.docs.Create(r.Context(), in); err != nil {
		s.createError(w, err)
		return
	}
	http.Redirect(w, r, "/documents", http.StatusSeeOther)
}

// createError reports validation problems verbatim and hides everything else
// behind a generic message.
func (s *Server) createError(w http.ResponseWriter, err error) {
	var verr *documents.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": verr.Message, "field": verr.Field})
		return
	}
	jsonError(w, createFailedMessage, http.StatusInternalServerError)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.document(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.document(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := export.PDF(&buf, doc, s.page); err != nil {
		s.log.Error("pdf export failed", "doc_id", doc.ID, "error", err)
		jsonError(w, "failed to export pdf", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.pdf"`, doc.Slug))
	w.Write(buf.Bytes())
}

func (s *Server) handleExportMarkdown(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.document(w, r)
	if !ok {
		return
	}
	md, err := export.Markdown(doc)
	if err != nil {
		s.log.Error("markdown export failed", "doc_id", doc.ID, "error", err)
		jsonError(w, "failed to export markdown", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.md"`, doc.Slug))
	w.Write([]byte(md))
}

// document loads the document named by the id URL parameter, writing the
// error response itself when it cannot.
func (s *Server) document(w http.ResponseWriter, r *http.Request) (*store.Document, bool) {
	doc, err := s.docs.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, "document not found", http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		s.log.Error("get document failed", "error", err)
		jsonError(w, "failed to load document", http.StatusInternalServerError)
		return nil, false
	}
	return doc, true
}
