package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpglow/storefront-backend/internal/modules/catalog"
)

type singleCart struct{ m *Manager }

func (c singleCart) Get(context.Context) (*Manager, error) { return c.m, nil }

type productTable map[string]catalog.Product

func (t productTable) GetProduct(_ context.Context, id string) (*catalog.Product, error) {
	p, ok := t[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", catalog.ErrNotFound, id)
	}
	return &p, nil
}

type downCatalog struct{}

func (downCatalog) GetProduct(context.Context, string) (*catalog.Product, error) {
	return nil, errors.New("dial tcp: connection refused")
}

func newTestRouter(t *testing.T) (*chi.Mux, *Manager) {
	t.Helper()
	m := openManager(t, &recordingStore{})
	p := product("p1", 1000, 5)
	p.Variations = []catalog.Variation{{ID: "v1", ProductID: "p1", Name: "5mg", Price: 1500, StockQuantity: 1}}
	r := chi.NewRouter()
	NewHandler(singleCart{m: m}, productTable{"p1": p}).RegisterRoutes(r)
	return r, m
}

func do(t *testing.T, r http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return rec, out
}

func TestHandlerAddItemWithNotice(t *testing.T) {
	r, m := newTestRouter(t)

	rec, _ := do(t, r, http.MethodPost, "/api/v1/cart/items", `{"product_id":"p1","quantity":2}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, out := do(t, r, http.MethodPost, "/api/v1/cart/items", `{"product_id":"p1","quantity":4}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Only 3 item(s) available in stock. Added 3 to your cart.", out["notice"])
	assert.Equal(t, 5, m.TotalItems())
}

func TestHandlerAddVariation(t *testing.T) {
	r, m := newTestRouter(t)

	rec, _ := do(t, r, http.MethodPost, "/api/v1/cart/items", `{"product_id":"p1","variation_id":"v1","quantity":1}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1500.0, m.TotalPrice())

	rec, out := do(t, r, http.MethodPost, "/api/v1/cart/items", `{"product_id":"p1","variation_id":"v1","quantity":1}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, out["error"], "maximum available quantity")

	rec, _ = do(t, r, http.MethodPost, "/api/v1/cart/items", `{"product_id":"p1","variation_id":"nope"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerUpdateAndRemove(t *testing.T) {
	r, m := newTestRouter(t)
	do(t, r, http.MethodPost, "/api/v1/cart/items", `{"product_id":"p1","quantity":1}`)

	rec, out := do(t, r, http.MethodPatch, "/api/v1/cart/items/0", `{"quantity":8}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Only 5 item(s) available in stock.", out["notice"])

	rec, _ = do(t, r, http.MethodPatch, "/api/v1/cart/items/4", `{"quantity":1}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = do(t, r, http.MethodPatch, "/api/v1/cart/items/x", `{"quantity":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, r, http.MethodDelete, "/api/v1/cart/items/0", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, m.Count())
}

func TestHandlerRequestAddAndClear(t *testing.T) {
	r, m := newTestRouter(t)

	rec, _ := do(t, r, http.MethodPost, "/api/v1/cart/requests",
		`{"product":{"id":"x9","name":"GHK-Cu","base_price":800},"quantity":2}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1600.0, m.TotalPrice())

	rec, _ = do(t, r, http.MethodPost, "/api/v1/cart/requests", `{"product":{"name":"no id"}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, out := do(t, r, http.MethodDelete, "/api/v1/cart", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0.0, out["cart"].(map[string]interface{})["total_items"])
}

func TestHandlerAddItemProductLookupErrors(t *testing.T) {
	r, _ := newTestRouter(t)
	rec, _ := do(t, r, http.MethodPost, "/api/v1/cart/items", `{"product_id":"missing"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	down := chi.NewRouter()
	NewHandler(singleCart{m: openManager(t, &recordingStore{})}, downCatalog{}).RegisterRoutes(down)
	rec, out := do(t, down, http.MethodPost, "/api/v1/cart/items", `{"product_id":"p1"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, out["error"], "connection refused")
}
