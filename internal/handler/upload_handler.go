package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ServeUpload hands back a stored file (profile image or KYC document) by
// its relative path. The storage layer refuses paths that escape the root.
func (h *Handler) ServeUpload(w http.ResponseWriter, r *http.Request) {
	rel := chi.URLParam(r, "*")
	f, err := h.store.Open(rel)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}
