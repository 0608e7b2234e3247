package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/fjod/go_storefront/internal/catalog"
	"github.com/fjod/go_storefront/internal/checkout"
	"github.com/fjod/go_storefront/internal/content"
	"github.com/fjod/go_storefront/internal/orders"
	"github.com/fjod/go_storefront/internal/profile"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// NotFoundResponse is the terminal page shown for an unknown order.
type NotFoundResponse struct {
	ErrorResponse
	ReturnPath string `json:"returnPath"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error:   message,
		Code:    code,
		Details: "",
	})
}

// handleError converts a service error into a JSON error response. Unknown
// errors become a generic 500 and are logged with the request context.
func handleError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	var validation *checkout.ValidationError

	switch {
	case errors.As(err, &validation):
		respondJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "Please fill in all required fields.",
			Code:    "invalid_form",
			Details: strings.Join(validation.Fields, ","),
		})
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, "empty_cart", "Your cart is empty.")
	case errors.Is(err, catalog.ErrProductNotFound):
		respondError(w, http.StatusNotFound, "product_not_found", "Product not found.")
	case errors.Is(err, orders.ErrOrderNotFound):
		respondJSON(w, http.StatusNotFound, NotFoundResponse{
			ErrorResponse: ErrorResponse{Error: "Order not found.", Code: "order_not_found"},
			ReturnPath:    "/",
		})
	case errors.Is(err, profile.ErrProfileNotFound):
		respondError(w, http.StatusNotFound, "profile_not_found", "No user profile found. Please register to view your profile.")
	case errors.Is(err, profile.ErrInvalidProfile):
		respondError(w, http.StatusBadRequest, "invalid_profile", "Name and email are required.")
	case errors.Is(err, content.ErrUnavailable):
		respondError(w, http.StatusServiceUnavailable, "service_unavailable", "The store is temporarily unavailable. Please try again later.")
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusGatewayTimeout, "timeout", "The request took too long. Please try again.")
	default:
		log.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", getRequestID(r.Context()),
			"error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "Something went wrong. Please try again.")
	}
}
