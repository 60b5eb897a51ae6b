package cart

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hpglow/storefront-backend/internal/modules/catalog"
)

// Carts resolves the cart of the session carried by ctx.
type Carts interface {
	Get(ctx context.Context) (*Manager, error)
}

// Products looks up the catalog entry a shopper asks to add.
type Products interface {
	GetProduct(ctx context.Context, id string) (*catalog.Product, error)
}

// Handler exposes cart HTTP endpoints.
type Handler struct {
	carts    Carts
	products Products
}

func NewHandler(carts Carts, products Products) *Handler {
	return &Handler{carts: carts, products: products}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Get("/", h.getCart)                       // GET    /api/v1/cart
		r.Post("/items", h.addItem)                 // POST   /api/v1/cart/items
		r.Patch("/items/{index}", h.updateQuantity) // PATCH  /api/v1/cart/items/{index}
		r.Delete("/items/{index}", h.removeItem)    // DELETE /api/v1/cart/items/{index}
		r.Delete("/", h.clearCart)                  // DELETE /api/v1/cart
		r.Post("/requests", h.requestAdd)           // POST   /api/v1/cart/requests
	})
}

// AddItemRequest is the payload for adding a catalog product to the cart.
type AddItemRequest struct {
	ProductID   string `json:"product_id"`
	VariationID string `json:"variation_id,omitempty"`
	Quantity    int    `json:"quantity"`
}

// UpdateQuantityRequest is the payload for changing a line item's quantity.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type mutationResponse struct {
	Cart   Snapshot    `json:"cart"`
	Result interface{} `json:"result,omitempty"`
	Notice string      `json:"notice,omitempty"`
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	m, ok := h.cart(w, r)
	if !ok {
		return
	}
	respond(w, http.StatusOK, m.Snapshot())
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	m, ok := h.cart(w, r)
	if !ok {
		return
	}
	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if req.ProductID == "" {
		respond(w, http.StatusBadRequest, map[string]string{"error": "product_id is required"})
		return
	}
	p, err := h.products.GetProduct(r.Context(), req.ProductID)
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, catalog.ErrNotFound) {
			code = http.StatusNotFound
		}
		respond(w, code, map[string]string{"error": err.Error()})
		return
	}
	var v *catalog.Variation
	if req.VariationID != "" {
		for i := range p.Variations {
			if p.Variations[i].ID == req.VariationID {
				v = &p.Variations[i]
				break
			}
		}
		if v == nil {
			respond(w, http.StatusNotFound, map[string]string{"error": "variation not found: " + req.VariationID})
			return
		}
	}

	res, err := m.AddToCart(r.Context(), *p, v, req.Quantity)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, mutationResponse{Cart: m.Snapshot(), Result: res, Notice: res.Notice})
}

func (h *Handler) updateQuantity(w http.ResponseWriter, r *http.Request) {
	m, ok := h.cart(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid index"})
		return
	}
	var req UpdateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	res, err := m.UpdateQuantity(r.Context(), index, req.Quantity)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, mutationResponse{Cart: m.Snapshot(), Result: res, Notice: res.Notice})
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	m, ok := h.cart(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid index"})
		return
	}
	m.RemoveFromCart(r.Context(), index)
	respond(w, http.StatusOK, mutationResponse{Cart: m.Snapshot()})
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	m, ok := h.cart(w, r)
	if !ok {
		return
	}
	m.ClearCart(r.Context())
	respond(w, http.StatusOK, mutationResponse{Cart: m.Snapshot()})
}

func (h *Handler) requestAdd(w http.ResponseWriter, r *http.Request) {
	m, ok := h.cart(w, r)
	if !ok {
		return
	}
	var req AddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	res, err := m.RequestAdd(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, mutationResponse{Cart: m.Snapshot(), Result: res})
}

func (h *Handler) cart(w http.ResponseWriter, r *http.Request) (*Manager, bool) {
	m, err := h.carts.Get(r.Context())
	if err != nil {
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return nil, false
	}
	return m, true
}

func respondError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrOutOfStock), errors.Is(err, ErrMaxQuantityReached):
		code = http.StatusConflict
	case errors.Is(err, ErrItemNotFound):
		code = http.StatusNotFound
	case errors.Is(err, ErrInvalidRequest):
		code = http.StatusBadRequest
	}
	respond(w, code, map[string]string{"error": err.Error()})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
