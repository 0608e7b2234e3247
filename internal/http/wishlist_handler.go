package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
)

type WishlistStore interface {
	Entries(ctx context.Context, sessionID string) ([]domain.WishlistEntry, error)
	Toggle(ctx context.Context, sessionID string, p domain.Product) ([]domain.WishlistEntry, domain.Notice, error)
}

type WishlistHandler struct {
	wishlist WishlistStore
	products ProductGetter
	timeout  time.Duration
	log      *slog.Logger
}

func NewWishlistHandler(wishlist WishlistStore, products ProductGetter, timeout time.Duration, log *slog.Logger) *WishlistHandler {
	return &WishlistHandler{
		wishlist: wishlist,
		products: products,
		timeout:  timeout,
		log:      log,
	}
}

type WishlistResponse struct {
	Items  []domain.WishlistEntry `json:"items"`
	Notice *domain.Notice         `json:"notice,omitempty"`
}

func (h *WishlistHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	entries, err := h.wishlist.Entries(ctx, getSessionID(r.Context()))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	respondJSON(w, http.StatusOK, WishlistResponse{Items: entries})
}

func (h *WishlistHandler) Toggle(w http.ResponseWriter, r *http.Request) {
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

	entries, notice, err := h.wishlist.Toggle(ctx, getSessionID(r.Context()), product)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	respondJSON(w, http.StatusOK, WishlistResponse{Items: entries, Notice: &notice})
}
