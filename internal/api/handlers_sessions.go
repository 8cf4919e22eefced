package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/folio/internal/documents"
	"github.com/dgallion1/folio/internal/editor"
	"github.com/dgallion1/folio/internal/importer"
)

const readOnlyMessage = "This page is read-only. Only the last page can be edited."

// sessionResponse is returned by every session endpoint.
type sessionResponse struct {
	Session editor.SessionSnapshot `json:"session"`
	Change  *editor.Change         `json:"change,omitempty"`
}

func (s *Server) respondSession(w http.ResponseWriter, code int, sess *editor.Session, ch *editor.Change) {
	writeJSON(w, code, sessionResponse{Session: sess.Snapshot(), Change: ch})
}

// session loads the session named by the id URL parameter.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *editor.Session {
	sess := s.sessions.Get(chi.URLParam(r, "id"))
	if sess == nil {
		jsonError(w, "session not found", http.StatusNotFound)
	}
	return sess
}

func (s *Server) sessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, editor.ErrReadOnly):
		jsonError(w, readOnlyMessage, http.StatusConflict)
	case errors.Is(err, editor.ErrLastPage),
		errors.Is(err, editor.ErrNoContent),
		errors.Is(err, editor.ErrPageOutOfRange),
		errors.Is(err, editor.ErrBlockOutOfRange),
		errors.Is(err, editor.ErrUnknownMark):
		jsonError(w, err.Error(), http.StatusBadRequest)
	default:
		s.log.Error("session update failed", "error", err)
		jsonError(w, "failed to update session", http.StatusInternalServerError)
	}
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title"`
	}
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	sess := s.sessions.Create(req.Title)
	s.log.Info("session created", "session_id", sess.ID)
	s.respondSession(w, http.StatusCreated, sess, nil)
}

// handleImportSession seeds a session from an uploaded file, paginated to fit.
func (s *Server) handleImportSession(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !importer.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	imp, err := importer.ForFile(filename)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if p, ok := imp.(*importer.PDFImporter); ok {
		p.FallbackPdftotext = s.cfg.PDFFallbackPdftotext
	}

	lr := &io.LimitedReader{R: file, N: s.cfg.MaxUploadBytes + 1}
	draft, err := imp.Import(lr, filename)
	if lr.N <= 0 {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}
	if err != nil {
		s.log.Warn("import failed", "filename", filename, "error", err)
		jsonError(w, "failed to import file: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}

	title := draft.Title
	if t := r.FormValue("title"); t != "" {
		title = t
	}
	sess, err := s.sessions.CreateFromContent(title, draft.HTML())
	if err != nil {
		s.sessionError(w, err)
		return
	}
	s.log.Info("session imported", "session_id", sess.ID, "filename", filename, "blocks", len(draft.Blocks))
	s.respondSession(w, http.StatusCreated, sess, nil)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	s.respondSession(w, http.StatusOK, sess, nil)
}

func (s *Server) handleDiscardSession(w http.ResponseWriter, r *http.Request) {
	if sess := s.session(w, r); sess == nil {
		return
	}
	s.sessions.Delete(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetTitle(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	var req struct {
		Title string `json:"title"`
	}
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	sess.SetTitle(req.Title)
	s.respondSession(w, http.StatusOK, sess, nil)
}

func (s *Server) handleUpdateContent(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	var req struct {
		Content string `json:"content"`
	}
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	ch, err := sess.Update(req.Content)
	if err != nil {
		s.sessionError(w, err)
		return
	}
	s.respondSession(w, http.StatusOK, sess, &ch)
}

func (s *Server) handleAddPage(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	sess.AddPage()
	s.respondSession(w, http.StatusOK, sess, nil)
}

// pageIndex converts the 1-based {n} URL parameter to a page index.
func pageIndex(r *http.Request) (int, error) {
	n, err := strconv.Atoi(chi.URLParam(r, "n"))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", editor.ErrPageOutOfRange, chi.URLParam(r, "n"))
	}
	return n - 1, nil
}

func (s *Server) handleSelectPage(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	i, err := pageIndex(r)
	if err == nil {
		err = sess.GoTo(i)
	}
	if err != nil {
		s.sessionError(w, err)
		return
	}
	s.respondSession(w, http.StatusOK, sess, nil)
}

func (s *Server) handleDeletePage(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	i, err := pageIndex(r)
	if err == nil {
		err = sess.DeletePage(i)
	}
	if err != nil {
		s.sessionError(w, err)
		return
	}
	s.respondSession(w, http.StatusOK, sess, nil)
}

func (s *Server) handleNextPage(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	if err := sess.Next(); err != nil {
		s.sessionError(w, err)
		return
	}
	s.respondSession(w, http.StatusOK, sess, nil)
}

func (s *Server) handlePrevPage(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	if err := sess.Prev(); err != nil {
		s.sessionError(w, err)
		return
	}
	s.respondSession(w, http.StatusOK, sess, nil)
}

// handleFormat toggles a mark on one block of the current page. Blocks are
// numbered from 0.
func (s *Server) handleFormat(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	var req struct {
		Block int         `json:"block"`
		Mark  editor.Mark `json:"mark"`
	}
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	ch, err := sess.ToggleMark(req.Block, req.Mark)
	if err != nil {
		s.sessionError(w, err)
		return
	}
	s.respondSession(w, http.StatusOK, sess, &ch)
}

// handleSubmit persists the session's non-empty pages as a document and
// discards the session. The session is claimed up front so concurrent
// submits store it once; it is put back when nothing was stored.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Take(chi.URLParam(r, "id"))
	if sess == nil {
		jsonError(w, "session not found", http.StatusNotFound)
		return
	}
	title, pages, err := sess.Submission()
	if err != nil {
		s.sessions.Restore(sess)
		s.sessionError(w, err)
		return
	}
	doc, err := s.docs.Create(r.Context(), documents.Input{Title: title, Pages: pages})
	if err != nil {
		s.sessions.Restore(sess)
		s.createError(w, err)
		return
	}
	s.log.Info("session submitted", "session_id", sess.ID, "doc_id", doc.ID)
	http.Redirect(w, r, "/documents", http.StatusSeeOther)
}
