package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dimabalawov/wallpaper-imp/internal/cart"
	"github.com/dimabalawov/wallpaper-imp/internal/catalog"
	"github.com/dimabalawov/wallpaper-imp/internal/pricing"
)

// Catalog is the slice of the catalog client the cart handler needs.
type Catalog interface {
	BySlug(ctx context.Context, slug string) (catalog.Product, error)
}

type CartHandler struct {
	stores  *cart.Manager
	catalog Catalog
	timeout time.Duration
}

func NewCartHandler(stores *cart.Manager, catalog Catalog, timeout time.Duration) *CartHandler {
	return &CartHandler{
		stores:  stores,
		catalog: catalog,
		timeout: timeout,
	}
}

// AddItemRequestDTO is one configured product the visitor wants in the cart.
// The server looks the product up, prices the configuration and only then
// lets the store validate and append it.
type AddItemRequestDTO struct {
	Slug     string   `json:"slug"`
	Material string   `json:"material"`
	Features []string `json:"features"`
	Width    int      `json:"width"`
	Height   int      `json:"height"`
}

type CartResponseDTO struct {
	Items      []cart.LineItem `json:"items"`
	TotalPrice float64         `json:"totalPrice"`
	ItemCount  int             `json:"itemCount"`
	Loaded     bool            `json:"loaded"`
}

func (h *CartHandler) store(w http.ResponseWriter, r *http.Request) (*cart.Store, bool) {
	store, err := h.stores.Store(r.Context(), sessionFromContext(r.Context()))
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "cart_unavailable", "cart storage is unavailable")
		return nil, false
	}
	return store, true
}

func cartResponse(store *cart.Store) CartResponseDTO {
	return CartResponseDTO{
		Items:      store.Items(),
		TotalPrice: store.TotalPrice(),
		ItemCount:  store.ItemCount(),
		Loaded:     store.Loaded(),
	}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, cartResponse(store))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Slug == "" {
		respondError(w, http.StatusBadRequest, "invalid_slug", "slug is required")
		return
	}

	product, err := h.catalog.BySlug(ctx, req.Slug)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "product not found")
			return
		}
		respondError(w, http.StatusBadGateway, "catalog_unavailable", "could not load the product")
		return
	}

	quote, err := pricing.Calculate(pricing.Configuration{
		RegularPrice: product.RegularPrice,
		SalePrice:    product.SalePrice,
		Material:     product.MaterialBySlug(req.Material),
		Features:     product.FeaturesBySlug(req.Features),
		WidthCm:      req.Width,
		HeightCm:     req.Height,
	})
	if err != nil {
		if errors.Is(err, pricing.ErrNoMaterial) {
			respondError(w, http.StatusBadRequest, "invalid_material", "please choose a material")
			return
		}
		respondError(w, http.StatusBadRequest, "pricing_failed", "the configuration could not be priced")
		return
	}

	store, ok := h.store(w, r)
	if !ok {
		return
	}

	material := product.MaterialBySlug(req.Material)
	candidate := cart.LineItem{
		ProductID:         product.SKU,
		ProductDatabaseID: product.ID,
		Name:              product.Name,
		Price:             quote.Price,
		Width:             req.Width,
		Height:            req.Height,
		Material:          material.Name,
		Premium:           hasSlug(req.Features, "premium_print"),
		Laminate:          hasSlug(req.Features, "laminuvannya"),
		Glue:              hasSlug(req.Features, "glue"),
		ImageURL:          product.ImageURL,
	}

	if _, err := store.AddItem(ctx, candidate); err != nil {
		switch {
		case errors.Is(err, cart.ErrInvalidDimensions):
			respondError(w, http.StatusBadRequest, "invalid_dimensions", err.Error())
		case errors.Is(err, cart.ErrInvalidPrice):
			respondError(w, http.StatusBadRequest, "invalid_price", err.Error())
		default:
			respondError(w, http.StatusInternalServerError, "internal_error", "could not add the item")
		}
		return
	}

	respondJSON(w, http.StatusCreated, cartResponse(store))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "invalid_id", "item id is required")
		return
	}

	store, ok := h.store(w, r)
	if !ok {
		return
	}
	store.RemoveItem(r.Context(), id)
	respondJSON(w, http.StatusOK, cartResponse(store))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}
	store.Clear(r.Context())
	respondJSON(w, http.StatusOK, cartResponse(store))
}

func hasSlug(slugs []string, want string) bool {
	for _, s := range slugs {
		if s == want {
			return true
		}
	}
	return false
}
