package upload

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Handler serves stored objects read-only.
type Handler struct{ root string }

func NewHandler(root string) *Handler { return &Handler{root: root} }

func (h *Handler) RegisterRoutes(r chi.Router) {
	files := http.StripPrefix("/uploads/", http.FileServer(http.Dir(h.root)))
	r.Get("/uploads/*", func(w http.ResponseWriter, r *http.Request) { // GET /uploads/payment-proofs/{name}
		if strings.HasSuffix(r.URL.Path, "/") || strings.Contains(r.URL.Path, "/.") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("X-Content-Type-Options", "nosniff")
		files.ServeHTTP(w, r)
	})
}
