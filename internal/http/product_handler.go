package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fjod/go_storefront/internal/catalog"
	"github.com/fjod/go_storefront/internal/domain"
	"github.com/go-chi/chi/v5"
)

type CatalogService interface {
	List(ctx context.Context, search string, page int) (catalog.Page, error)
	Get(ctx context.Context, id string) (domain.Product, error)
	Related(ctx context.Context, id string) ([]domain.Product, error)
	Compare(ctx context.Context, ids []string) ([]domain.Product, error)
}

type ProductHandler struct {
	catalog CatalogService
	timeout time.Duration
	log     *slog.Logger
}

func NewProductHandler(catalog CatalogService, timeout time.Duration, log *slog.Logger) *ProductHandler {
	return &ProductHandler{
		catalog: catalog,
		timeout: timeout,
		log:     log,
	}
}

// ListProducts serves GET /products?search=&page=.
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_page", "page must be an integer")
			return
		}
		page = p
	}

	result, err := h.catalog.List(ctx, r.URL.Query().Get("search"), page)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	p, err := h.catalog.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	respondJSON(w, http.StatusOK, p)
}

func (h *ProductHandler) RelatedProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	related, err := h.catalog.Related(ctx, chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	respondJSON(w, http.StatusOK, related)
}

// CompareProducts serves GET /products/compare?ids=a,b,c.
func (h *ProductHandler) CompareProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var ids []string
	for _, id := range strings.Split(r.URL.Query().Get("ids"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		respondError(w, http.StatusBadRequest, "invalid_ids", "ids must list at least one product id")
		return
	}

	products, err := h.catalog.Compare(ctx, ids)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	respondJSON(w, http.StatusOK, products)
}
