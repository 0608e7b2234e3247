package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Handlers struct {
	Products *ProductHandler
	Cart     *CartHandler
	Wishlist *WishlistHandler
	Checkout *CheckoutHandler
	Profile  *ProfileHandler
	Events   *EventsHandler
}

type RouterOptions struct {
	RequestTimeout     time.Duration
	MaxRequestBodySize int64
	ServiceName        string
}

func NewRouter(h Handlers, opts RouterOptions, log *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(RequestIDMiddleware)
	r.Use(RequestLogger(log))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(SessionMiddleware)

		// long-lived, so no timeout or compression
		r.Get("/events", h.Events.Stream)

		r.Group(func(r chi.Router) {
			if opts.RequestTimeout > 0 {
				r.Use(middleware.Timeout(opts.RequestTimeout))
			}
			if opts.MaxRequestBodySize > 0 {
				r.Use(middleware.RequestSize(opts.MaxRequestBodySize))
			}
			r.Use(middleware.Compress(5))

			r.Route("/products", func(r chi.Router) {
				r.Get("/", h.Products.ListProducts)
				r.Get("/compare", h.Products.CompareProducts)
				r.Get("/{id}", h.Products.GetProduct)
				r.Get("/{id}/related", h.Products.RelatedProducts)
			})

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", h.Cart.GetCart)
				r.Post("/items", h.Cart.AddItem)
				r.Put("/items/{product_id}", h.Cart.UpdateQuantity)
				r.Delete("/items/{product_id}", h.Cart.RemoveItem)
			})

			r.Route("/wishlist", func(r chi.Router) {
				r.Get("/", h.Wishlist.GetWishlist)
				r.Post("/toggle", h.Wishlist.Toggle)
			})

			r.Post("/checkout", h.Checkout.PlaceOrder)
			r.Get("/orders/{order_id}", h.Checkout.GetOrder)

			r.Route("/profile", func(r chi.Router) {
				r.Get("/", h.Profile.GetProfile)
				r.Post("/", h.Profile.Register)
				r.Put("/", h.Profile.Save)
				r.Delete("/", h.Profile.Logout)
			})
		})
	})

	return otelhttp.NewHandler(r, opts.ServiceName)
}
