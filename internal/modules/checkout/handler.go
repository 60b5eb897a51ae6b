package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/hpglow/storefront-backend/internal/modules/order"
	"github.com/hpglow/storefront-backend/internal/modules/pricing"
	"github.com/hpglow/storefront-backend/internal/modules/upload"
)

// Controllers resolves the checkout of the session carried by ctx.
type Controllers interface {
	Get(ctx context.Context) (*Controller, error)
}

// Handler exposes checkout HTTP endpoints.
type Handler struct {
	controllers Controllers
	submitGuard func(http.Handler) http.Handler
}

// NewHandler wires the checkout routes. submitGuard wraps order submission
// (duplicate-submit protection) and may be nil.
func NewHandler(controllers Controllers, submitGuard func(http.Handler) http.Handler) *Handler {
	return &Handler{controllers: controllers, submitGuard: submitGuard}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/checkout", func(r chi.Router) {
		r.Get("/", h.getState)                           // GET    /api/v1/checkout
		r.Delete("/", h.reset)                           // DELETE /api/v1/checkout
		r.Put("/details", h.updateDetails)               // PUT    /api/v1/checkout/details
		r.Post("/payment", h.proceedToPayment)           // POST   /api/v1/checkout/payment
		r.Post("/back", h.backToDetails)                 // POST   /api/v1/checkout/back
		r.Put("/payment", h.updatePayment)               // PUT    /api/v1/checkout/payment
		r.Post("/proof", h.uploadProof)                  // POST   /api/v1/checkout/proof (multipart "file")
		r.Delete("/proof", h.removeProof)                // DELETE /api/v1/checkout/proof
		r.Get("/confirmation", h.getConfirmation)        // GET    /api/v1/checkout/confirmation
		r.Get("/confirmation/summary", h.getSummaryText) // GET    /api/v1/checkout/confirmation/summary
		r.With(h.guard).Post("/order", h.placeOrder)     // POST   /api/v1/checkout/order
	})
}

// DetailsRequest is the payload of PUT /details.
type DetailsRequest struct {
	FullName         string `json:"full_name"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	Address          string `json:"address"`
	City             string `json:"city"`
	State            string `json:"state"`
	ZipCode          string `json:"zip_code"`
	Country          string `json:"country"`
	ShippingLocation string `json:"shipping_location"`
}

func (h *Handler) guard(next http.Handler) http.Handler {
	if h.submitGuard == nil {
		return next
	}
	return h.submitGuard(next)
}

func (h *Handler) getState(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	respond(w, http.StatusOK, c.View())
}

func (h *Handler) reset(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	if err := c.Reset(); err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, c.View())
}

func (h *Handler) updateDetails(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	var req DetailsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	region, err := pricing.ParseRegion(req.ShippingLocation)
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	err = c.UpdateDetails(Details{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		Address:  req.Address,
		City:     req.City,
		State:    req.State,
		ZipCode:  req.ZipCode,
		Country:  req.Country,
		Region:   region,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, c.View())
}

func (h *Handler) proceedToPayment(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	if err := c.ProceedToPayment(r.Context()); err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, c.View())
}

func (h *Handler) backToDetails(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	if err := c.BackToDetails(); err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, c.View())
}

func (h *Handler) updatePayment(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	var req PaymentUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := c.UpdatePayment(req); err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, c.View())
}

func (h *Handler) uploadProof(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, upload.MaxSize+1<<20)

	var body io.Reader = r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, _, err := r.FormFile("file")
		if err != nil {
			respond(w, http.StatusBadRequest, map[string]string{"error": "multipart field \"file\" is required"})
			return
		}
		defer file.Close()
		body = file
	}

	url, err := c.UploadProof(r.Context(), body)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{"payment_proof_url": url})
}

func (h *Handler) removeProof(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	if err := c.RemoveProof(); err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, c.View())
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("storefront/checkout").Start(r.Context(), "checkout.PlaceOrder")
	defer span.End()

	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	conf, err := c.PlaceOrder(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		respondError(w, err)
		return
	}
	span.SetAttributes(
		attribute.String("order.id", conf.OrderID),
		attribute.Float64("order.grand_total", conf.GrandTotal),
		attribute.Bool("order.contact_opened", conf.ContactOpened),
	)
	respond(w, http.StatusCreated, conf)
}

func (h *Handler) getConfirmation(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	conf, err := c.Confirmation()
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, conf)
}

// getSummaryText serves the order message as plain text for manual copying.
func (h *Handler) getSummaryText(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	conf, err := c.Confirmation()
	if err != nil {
		respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, conf.Summary)
}

func (h *Handler) controller(w http.ResponseWriter, r *http.Request) (*Controller, bool) {
	c, err := h.controllers.Get(r.Context())
	if err != nil {
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return nil, false
	}
	return c, true
}

func respondError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	var maxBytes *http.MaxBytesError
	switch {
	case errors.Is(err, ErrDetailsIncomplete), errors.Is(err, ErrProofMissing),
		errors.Is(err, ErrContactMissing), errors.Is(err, ErrRegionMissing),
		errors.Is(err, ErrEmptyCart), errors.Is(err, ErrUnknownPayment),
		errors.Is(err, ErrInvalidContact):
		code = http.StatusUnprocessableEntity
	case errors.Is(err, ErrWrongStep), errors.Is(err, ErrSubmissionInFlight),
		errors.Is(err, ErrUploadInFlight):
		code = http.StatusConflict
	case errors.Is(err, upload.ErrTooLarge), errors.As(err, &maxBytes):
		code = http.StatusRequestEntityTooLarge
	case errors.Is(err, upload.ErrNotImage), errors.Is(err, upload.ErrEmpty):
		code = http.StatusBadRequest
	case errors.Is(err, order.ErrOrdersTableMissing):
		code = http.StatusServiceUnavailable
	}
	respond(w, code, map[string]string{"error": err.Error()})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
