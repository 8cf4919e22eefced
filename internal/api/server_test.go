package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/folio/internal/config"
	"github.com/dgallion1/folio/internal/documents"
	"github.com/dgallion1/folio/internal/editor"
	"github.com/dgallion1/folio/internal/layout"
	"github.com/dgallion1/folio/internal/pagination"
	"github.com/dgallion1/folio/internal/store"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// Every block is 300px tall, so two fit on a page and a third overflows.
var fixedMeasurer = layout.MeasureFunc(func(*layout.Block, float64) float64 { return 300 })

type testEnv struct {
	handler  http.Handler
	sessions *editor.Store
}

func newTestEnv(t *testing.T, apiKey string) *testEnv {
	t.Helper()
	ctx := context.Background()
	st, err := store.Open(ctx, store.Config{Driver: store.DriverSQLite, DSN: ":memory:", ConnectTimeout: time.Second}, discard)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate(ctx))

	return newEnvWith(t, documents.NewService(st, discard), st, apiKey)
}

func newEnvWith(t *testing.T, docs *documents.Service, db HealthChecker, apiKey string) *testEnv {
	t.Helper()
	opts := pagination.DefaultOptions()
	sessions := editor.NewStore(pagination.NewDetector(fixedMeasurer, opts), time.Hour, discard)
	cfg := config.Defaults().Server
	cfg.APIKey = apiKey
	return &testEnv{
		handler:  NewServer(docs, sessions, db, opts, discard, cfg),
		sessions: sessions,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) doJSON(t *testing.T, method, path string, v any) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if v != nil {
		b, err := json.Marshal(v)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	}
	return e.do(t, method, path, body, "application/json")
}

func (e *testEnv) postForm(t *testing.T, title, pages string) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{"title": {title}, "pages": {pages}}
	return e.do(t, http.MethodPost, "/api/documents", strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field"`
}

type listBody struct {
	Documents []documents.Summary `json:"documents"`
}

type sessionBody struct {
	Session editor.SessionSnapshot `json:"session"`
	Change  *editor.Change         `json:"change"`
}

type failingRepo struct{}

func (failingRepo) CreateDocument(context.Context, *store.Document) error {
	return errors.New("connection refused")
}

func (failingRepo) ListDocuments(context.Context) ([]*store.Document, error) {
	return nil, errors.New("connection refused")
}

func (failingRepo) GetDocument(context.Context, string) (*store.Document, error) {
	return nil, errors.New("connection refused")
}

type downDB struct{}

func (downDB) Health(context.Context) error { return errors.New("ping: connection refused") }

func TestHealth(t *testing.T) {
	env := newTestEnv(t, "")
	rec := env.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHealth_Unavailable(t *testing.T) {
	env := newEnvWith(t, documents.NewService(failingRepo{}, discard), downDB{}, "")
	rec := env.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCreateDocument_RedirectsToGallery(t *testing.T) {
	env := newTestEnv(t, "")

	rec := env.postForm(t, "My Doc", `["<p>a</p>","<p>b</p>"]`)
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	assert.Equal(t, "/documents", rec.Header().Get("Location"))

	list := decode[listBody](t, env.do(t, http.MethodGet, "/api/documents", nil, ""))
	require.Len(t, list.Documents, 1)
	doc := list.Documents[0]
	assert.Equal(t, "My Doc", doc.Title)
	assert.Equal(t, "my-doc", doc.Slug)
	assert.Equal(t, 2, doc.TotalPages)

	rec = env.do(t, http.MethodGet, "/api/documents/"+doc.ID, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[store.Document](t, rec)
	require.Len(t, got.Chunks, 2)
	assert.Equal(t, 1, got.Chunks[0].PageNumber)
	assert.Equal(t, "<p>b</p>", got.Chunks[1].Content)
}

func TestCreateDocument_Validation(t *testing.T) {
	env := newTestEnv(t, "")

	tests := []struct {
		name    string
		title   string
		pages   string
		field   string
		message string
	}{
		{"missing title", "", `["<p>a</p>"]`, "title", "Title is required"},
		{"no pages", "t", `[]`, "pages", "At least one page is required"},
		{"blank pages", "t", `["", "<p> </p>"]`, "pages", "Please add content to at least one page."},
		{"malformed pages", "t", `not json`, "pages", "Pages must be a JSON array of strings"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.postForm(t, tt.title, tt.pages)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			body := decode[errorBody](t, rec)
			assert.Equal(t, tt.field, body.Field)
			assert.Equal(t, tt.message, body.Error)
		})
	}
}

func TestCreateDocument_DatabaseFailure(t *testing.T) {
	env := newEnvWith(t, documents.NewService(failingRepo{}, discard), downDB{}, "")
	rec := env.postForm(t, "t", `["<p>a</p>"]`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, createFailedMessage, decode[errorBody](t, rec).Error)
}

func TestGetDocument_NotFound(t *testing.T) {
	env := newTestEnv(t, "")
	rec := env.do(t, http.MethodGet, "/api/documents/missing", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExport(t *testing.T) {
	env := newTestEnv(t, "")
	require.Equal(t, http.StatusSeeOther, env.postForm(t, "Report", `["<h1>One</h1>","<p><strong>Two</strong></p>"]`).Code)
	id := decode[listBody](t, env.do(t, http.MethodGet, "/api/documents", nil, "")).Documents[0].ID

	rec := env.do(t, http.MethodGet, "/api/documents/"+id+"/export.md", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "# Report\n"))
	assert.Contains(t, rec.Body.String(), "**Two**")

	rec = env.do(t, http.MethodGet, "/api/documents/"+id+"/export.pdf", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "report.pdf")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))
}

func TestGallery(t *testing.T) {
	env := newTestEnv(t, "")
	require.Equal(t, http.StatusSeeOther, env.postForm(t, "Single", `["<p>a</p>"]`).Code)
	require.Equal(t, http.StatusSeeOther, env.postForm(t, "Double <b>", `["<p>a</p>","<p>b</p>"]`).Code)

	rec := env.do(t, http.MethodGet, "/documents", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Title : Single")
	assert.Contains(t, body, "Title : Double &lt;b&gt;")
	assert.Contains(t, body, "1 page<")
	assert.Contains(t, body, "2 pages")
	assert.Contains(t, body, "Created At: ")
}

func TestSessionFlow(t *testing.T) {
	env := newTestEnv(t, "")

	rec := env.doJSON(t, http.MethodPost, "/api/sessions", map[string]string{"title": "Draft"})
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode[sessionBody](t, rec).Session.ID
	base := "/api/sessions/" + id

	// Three blocks overflow onto a second page.
	rec = env.doJSON(t, http.MethodPut, base+"/content", map[string]string{"content": "<p>one</p><p>two</p><p>three</p>"})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[sessionBody](t, rec)
	require.NotNil(t, body.Change)
	require.NotNil(t, body.Change.Notice)
	assert.Equal(t, "New page created", body.Change.Notice.Title)
	assert.Equal(t, "Content moved to page 2", body.Change.Notice.Description)
	assert.Equal(t, 2, body.Session.TotalPages)
	assert.Equal(t, "Page 2 of 2", body.Session.Label)
	assert.Equal(t, "<p>three</p>", body.Session.Pages[1].Content)

	// Earlier pages are read-only.
	rec = env.do(t, http.MethodPost, base+"/pages/1/select", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[sessionBody](t, rec).Session.ReadOnly)
	rec = env.doJSON(t, http.MethodPut, base+"/content", map[string]string{"content": "<p>x</p>"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodPost, base+"/next", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodPost, base+"/next", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.doJSON(t, http.MethodPost, base+"/format", map[string]any{"block": 0, "mark": "bold"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<p><strong>three</strong></p>", decode[sessionBody](t, rec).Session.Pages[1].Content)

	rec = env.do(t, http.MethodDelete, base+"/pages/2", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[sessionBody](t, rec).Session.TotalPages)

	rec = env.do(t, http.MethodDelete, base+"/pages/1", nil, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Document must have at least one page.", decode[errorBody](t, rec).Error)

	rec = env.do(t, http.MethodPost, base+"/submit", nil, "")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/documents", rec.Header().Get("Location"))

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, base, nil, "").Code)

	list := decode[listBody](t, env.do(t, http.MethodGet, "/api/documents", nil, ""))
	require.Len(t, list.Documents, 1)
	assert.Equal(t, "Draft", list.Documents[0].Title)
	assert.Equal(t, 1, list.Documents[0].TotalPages)
}

func TestSubmit_NoContent(t *testing.T) {
	env := newTestEnv(t, "")
	id := decode[sessionBody](t, env.doJSON(t, http.MethodPost, "/api/sessions", nil)).Session.ID

	rec := env.do(t, http.MethodPost, "/api/sessions/"+id+"/submit", nil, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Please add content to at least one page.", decode[errorBody](t, rec).Error)
}

func TestSubmit_ConcurrentStoresOnce(t *testing.T) {
	env := newTestEnv(t, "")
	id := decode[sessionBody](t, env.doJSON(t, http.MethodPost, "/api/sessions", map[string]string{"title": "Race"})).Session.ID
	require.Equal(t, http.StatusOK, env.doJSON(t, http.MethodPut, "/api/sessions/"+id+"/content", map[string]string{"content": "<p>x</p>"}).Code)

	const n = 4
	codes := make(chan int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			codes <- env.do(t, http.MethodPost, "/api/sessions/"+id+"/submit", nil, "").Code
		}()
	}
	wg.Wait()
	close(codes)

	counts := map[int]int{}
	for c := range codes {
		counts[c]++
	}
	assert.Equal(t, 1, counts[http.StatusSeeOther])
	assert.Equal(t, n-1, counts[http.StatusNotFound])

	list := decode[listBody](t, env.do(t, http.MethodGet, "/api/documents", nil, ""))
	assert.Len(t, list.Documents, 1)
	assert.Equal(t, 0, env.sessions.Len())
}

func TestSubmit_FailureKeepsSession(t *testing.T) {
	env := newEnvWith(t, documents.NewService(failingRepo{}, discard), downDB{}, "")
	id := decode[sessionBody](t, env.doJSON(t, http.MethodPost, "/api/sessions", map[string]string{"title": "Keep"})).Session.ID
	require.Equal(t, http.StatusOK, env.doJSON(t, http.MethodPut, "/api/sessions/"+id+"/content", map[string]string{"content": "<p>x</p>"}).Code)

	rec := env.do(t, http.MethodPost, "/api/sessions/"+id+"/submit", nil, "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, createFailedMessage, decode[errorBody](t, rec).Error)

	rec = env.do(t, http.MethodGet, "/api/sessions/"+id, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<p>x</p>", decode[sessionBody](t, rec).Session.Pages[0].Content)
}

func TestSession_NotFound(t *testing.T) {
	env := newTestEnv(t, "")
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/sessions/nope", nil, "").Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodPost, "/api/sessions/nope/pages", nil, "").Code)
}

func multipartFile(t *testing.T, filename, content string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestImportSession(t *testing.T) {
	env := newTestEnv(t, "")
	body, ct := multipartFile(t, "notes.txt", "one\n\ntwo\n\nthree\n\nfour\n\nfive\n")

	rec := env.do(t, http.MethodPost, "/api/sessions/import", body, ct)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	snap := decode[sessionBody](t, rec).Session
	assert.Equal(t, "notes", snap.Title)
	assert.Equal(t, 3, snap.TotalPages)
	assert.Equal(t, 3, snap.CurrentPage)
	assert.Equal(t, 1, env.sessions.Len())
}

func TestImportSession_Unsupported(t *testing.T) {
	env := newTestEnv(t, "")
	body, ct := multipartFile(t, "tool.exe", "MZ")
	rec := env.do(t, http.MethodPost, "/api/sessions/import", body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuth(t *testing.T) {
	env := newTestEnv(t, "secret")

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/health", nil, "").Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/documents", nil, "").Code)

	req := httptest.NewRequest(http.MethodGet, "/api/documents", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/documents", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStats(t *testing.T) {
	env := newTestEnv(t, "")
	require.Equal(t, http.StatusSeeOther, env.postForm(t, "a", `["<p>a</p>","<p>b</p>"]`).Code)
	env.doJSON(t, http.MethodPost, "/api/sessions", nil)

	body := decode[map[string]int](t, env.do(t, http.MethodGet, "/api/stats", nil, ""))
	assert.Equal(t, 1, body["documents"])
	assert.Equal(t, 2, body["pages"])
	assert.Equal(t, 1, body["active_sessions"])
}
