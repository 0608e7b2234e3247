package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/fjod/go_storefront/internal/checkout"
	"github.com/fjod/go_storefront/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/schema"
	"github.com/shopspring/decimal"
)

const maxFormMemory = 1 << 20

type CheckoutService interface {
	Submit(ctx context.Context, sessionID string, form checkout.Form, lines []domain.CartLine) (checkout.Result, error)
	Confirmation(ctx context.Context, orderID string) (*domain.Order, error)
}

type CartReader interface {
	Lines(ctx context.Context, sessionID string) ([]domain.CartLine, error)
}

type CheckoutHandler struct {
	checkout CheckoutService
	cart     CartReader
	decoder  *schema.Decoder
	timeout  time.Duration
	log      *slog.Logger
}

func NewCheckoutHandler(svc CheckoutService, cart CartReader, timeout time.Duration, log *slog.Logger) *CheckoutHandler {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)

	return &CheckoutHandler{
		checkout: svc,
		cart:     cart,
		decoder:  decoder,
		timeout:  timeout,
		log:      log,
	}
}

type OrderResponse struct {
	*domain.Order
	Total decimal.Decimal `json:"total"`
}

// PlaceOrder accepts the checkout form as JSON or urlencoded and places an
// order for the session's current cart.
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	form, ok := h.decodeForm(w, r)
	if !ok {
		return
	}

	sessionID := getSessionID(r.Context())
	lines, err := h.cart.Lines(ctx, sessionID)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	result, err := h.checkout.Submit(ctx, sessionID, form, lines)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	w.Header().Set("Location", result.ConfirmationPath)
	respondJSON(w, http.StatusCreated, result)
}

func (h *CheckoutHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	order, err := h.checkout.Confirmation(ctx, chi.URLParam(r, "order_id"))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	respondJSON(w, http.StatusOK, OrderResponse{Order: order, Total: order.Total()})
}

func (h *CheckoutHandler) decodeForm(w http.ResponseWriter, r *http.Request) (checkout.Form, bool) {
	var form checkout.Form

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/x-www-form-urlencoded") || strings.HasPrefix(contentType, "multipart/form-data") {
		var err error
		if strings.HasPrefix(contentType, "multipart/form-data") {
			err = r.ParseMultipartForm(maxFormMemory)
		} else {
			err = r.ParseForm()
		}
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_request", "invalid form body")
			return form, false
		}
		if err := h.decoder.Decode(&form, r.PostForm); err != nil {
			respondError(w, http.StatusBadRequest, "invalid_request", "invalid form fields")
			return form, false
		}
		return form, true
	}

	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return form, false
	}
	return form, true
}
