package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires the storefront's HTTP surface.
func NewRouter(cartH *CartHandler, checkoutH *CheckoutHandler, catalogH *CatalogHandler, timeout time.Duration) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(timeout))
	r.Use(middleware.Compress(5))
	r.Use(SessionMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartH.GetCart)
			r.Post("/items", cartH.AddItem)
			r.Delete("/items/{id}", cartH.RemoveItem)
			r.Delete("/", cartH.ClearCart)
		})

		r.Post("/orders", checkoutH.CreateOrder)

		r.Get("/products", catalogH.ListProducts)
		r.Get("/products/{slug}", catalogH.GetProduct)
		r.Get("/categories", catalogH.ListCategories)
		r.Get("/search", catalogH.Search)
	})

	return r
}
