package api

import (
	"net/http"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	list, err := s.docs.List(r.Context())
	if err != nil {
		jsonError(w, "stats unavailable", http.StatusServiceUnavailable)
		return
	}
	pages := 0
	for _, d := range list {
		pages += d.TotalPages
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"documents":       len(list),
		"pages":           pages,
		"active_sessions": s.sessions.Len(),
	})
}
