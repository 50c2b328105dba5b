package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dimabalawov/wallpaper-imp/internal/catalog"
)

const (
	defaultPageSize = 12
	maxPageSize     = 48
)

// CatalogReader is the read-only collaborator serving category and product
// queries.
type CatalogReader interface {
	Categories(ctx context.Context) ([]catalog.Category, error)
	Products(ctx context.Context, limit int, cursor string) (catalog.Page, error)
	BySlug(ctx context.Context, slug string) (catalog.Product, error)
	Search(ctx context.Context, term string) ([]catalog.Product, error)
}

type CatalogHandler struct {
	catalog CatalogReader
	timeout time.Duration
}

func NewCatalogHandler(catalog CatalogReader, timeout time.Duration) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		timeout: timeout,
	}
}

func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	limit := defaultPageSize
	if raw := r.URL.Query().Get("per_page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxPageSize {
			respondError(w, http.StatusBadRequest, "invalid_per_page", "per_page must be between 1 and 48")
			return
		}
		limit = parsed
	}

	page, err := h.catalog.Products(ctx, limit, r.URL.Query().Get("cursor"))
	if err != nil {
		respondError(w, http.StatusBadGateway, "catalog_unavailable", "could not load products")
		return
	}
	respondJSON(w, http.StatusOK, page)
}

func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	product, err := h.catalog.BySlug(ctx, chi.URLParam(r, "slug"))
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "product not found")
			return
		}
		respondError(w, http.StatusBadGateway, "catalog_unavailable", "could not load the product")
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	categories, err := h.catalog.Categories(ctx)
	if err != nil {
		respondError(w, http.StatusBadGateway, "catalog_unavailable", "could not load categories")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"categories": categories})
}

func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	term := r.URL.Query().Get("term")
	if term == "" {
		respondError(w, http.StatusBadRequest, "invalid_term", "term is required")
		return
	}

	products, err := h.catalog.Search(ctx, term)
	if err != nil {
		respondError(w, http.StatusBadGateway, "catalog_unavailable", "search failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"products": products})
}
