package api

import (
	"io"
	"net/http"

	"markdoc/internal/preview"
)

// handlePreview renders a Markdown document (typically one this service just
// produced) to an HTML fragment with heading anchors.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	markdown, err := io.ReadAll(r.Body)
	if err != nil {
		jsonError(w, "failed to read request body", http.StatusRequestEntityTooLarge)
		return
	}
	if len(markdown) == 0 {
		jsonError(w, "request body is empty", http.StatusBadRequest)
		return
	}

	html, err := preview.HTML(markdown)
	if err != nil {
		jsonError(w, "preview failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(html)
}
