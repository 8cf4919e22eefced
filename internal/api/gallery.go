package api

import (
	"html/template"
	"net/http"
	"strconv"
	"time"
)

var galleryTemplate = template.Must(template.New("gallery").Funcs(template.FuncMap{
	"created": func(t time.Time) string { return t.Format("02 Jan 2006") },
	"pages": func(n int) string {
		if n == 1 {
			return "1 page"
		}
		return strconv.Itoa(n) + " pages"
	},
}).Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>All Documents</title>
<style>
body{font-family:Helvetica,Arial,sans-serif;margin:0;padding:24px;background:#fafafa}
.grid{display:grid;gap:24px;grid-template-columns:repeat(auto-fill,minmax(280px,1fr))}
.card{border:1px solid #e5e5e5;border-radius:8px;background:#fff;padding:24px}
.meta{color:#737373;font-size:14px}
h3{margin:12px 0}
</style>
</head>
<body>
<h1>All Documents</h1>
<div class="grid">
{{- range .}}
<div class="card">
<span class="meta">{{pages .TotalPages}}</span>
<h3><a href="/api/documents/{{.ID}}">Title : {{.Title}}</a></h3>
<span class="meta">Created At: {{created .CreatedAt}}</span>
</div>
{{- else}}
<p class="meta">No documents yet.</p>
{{- end}}
</div>
</body>
</html>
`))

// handleGallery renders every document as a card, newest first.
func (s *Server) handleGallery(w http.ResponseWriter, r *http.Request) {
	list, err := s.docs.List(r.Context())
	if err != nil {
		http.Error(w, "Failed to load documents.", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := galleryTemplate.Execute(w, list); err != nil {
		s.log.Error("render gallery failed", "error", err)
	}
}
