package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type CartStore interface {
	Lines(ctx context.Context, sessionID string) ([]domain.CartLine, error)
	Add(ctx context.Context, sessionID string, p domain.Product) ([]domain.CartLine, domain.Notice, error)
	Remove(ctx context.Context, sessionID, productID string) ([]domain.CartLine, domain.Notice, error)
	SetQuantity(ctx context.Context, sessionID, productID string, quantity int) ([]domain.CartLine, error)
}

// ProductGetter resolves the product being added so that its display fields
// can be copied into the cart line.
type ProductGetter interface {
	Get(ctx context.Context, id string) (domain.Product, error)
}

type CartHandler struct {
	cart     CartStore
	products ProductGetter
	timeout  time.Duration
	log      *slog.Logger
}

func NewCartHandler(cart CartStore, products ProductGetter, timeout time.Duration, log *slog.Logger) *CartHandler {
	return &CartHandler{
		cart:     cart,
		products: products,
		timeout:  timeout,
		log:      log,
	}
}

type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
}

type UpdateQuantityRequestDTO struct {
	Quantity *int `json:"quantity"`
}

type CartResponse struct {
	Items  []domain.CartLine `json:"items"`
	Count  int               `json:"count"`
	Total  decimal.Decimal   `json:"total"`
	Notice *domain.Notice    `json:"notice,omitempty"`
}

func newCartResponse(lines []domain.CartLine, notice *domain.Notice) CartResponse {
	resp := CartResponse{Items: lines, Total: decimal.Zero, Notice: notice}
	for _, l := range lines {
		resp.Count += l.Quantity
		resp.Total = resp.Total.Add(l.Subtotal())
	}
	return resp
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	lines, err := h.cart.Lines(ctx, getSessionID(r.Context()))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	respondJSON(w, http.StatusOK, newCartResponse(lines, nil))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	product, err := h.products.Get(ctx, req.ProductID)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	lines, notice, err := h.cart.Add(ctx, getSessionID(r.Context()), product)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	respondJSON(w, http.StatusCreated, newCartResponse(lines, &notice))
}

// UpdateQuantity stores the given quantity as-is, including zero and
// negative values.
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity == nil {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity is required")
		return
	}

	lines, err := h.cart.SetQuantity(ctx, getSessionID(r.Context()), chi.URLParam(r, "product_id"), *req.Quantity)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	respondJSON(w, http.StatusOK, newCartResponse(lines, nil))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	lines, notice, err := h.cart.Remove(ctx, getSessionID(r.Context()), chi.URLParam(r, "product_id"))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	respondJSON(w, http.StatusOK, newCartResponse(lines, &notice))
}
