package catalog

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Handler exposes catalog HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/catalog", func(r chi.Router) {
		r.Get("/products", h.listProducts)              // GET /api/v1/catalog/products?q=bpc&sort=price
		r.Get("/products/{id}", h.getProduct)           // GET /api/v1/catalog/products/{id}
		r.Get("/payment-methods", h.listPaymentMethods) // GET /api/v1/catalog/payment-methods
	})
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := ListQuery{
		Search: r.URL.Query().Get("q"),
		Sort:   SortBy(strings.ToLower(r.URL.Query().Get("sort"))),
	}
	products, err := h.service.ListProducts(r.Context(), q)
	if err != nil {
		code := http.StatusInternalServerError
		if strings.Contains(err.Error(), "invalid sort") {
			code = http.StatusBadRequest
		}
		respond(w, code, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, products)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, ErrNotFound) {
			code = http.StatusNotFound
		}
		respond(w, code, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, p)
}

func (h *Handler) listPaymentMethods(w http.ResponseWriter, r *http.Request) {
	methods, err := h.service.ListPaymentMethods(r.Context())
	if err != nil {
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, methods)
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
