package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dimabalawov/wallpaper-imp/internal/pricing"
)

const productJSON = `{
	"id": 42,
	"name": "Forest Mural",
	"slug": "forest-mural",
	"sku": "WP-001",
	"regular_price": "250",
	"sale_price": "",
	"image_url": "https://cdn.example.com/forest.jpg",
	"materials": [
		{"database_id": 7, "slug": "vinyl", "name": "Vinyl", "price_modifier": 50}
	],
	"extra_features": [
		{"database_id": 9, "slug": "premium_print", "name": "Premium print", "price_type": "sqm", "price": 30},
		{"database_id": 10, "slug": "glue", "name": "Glue", "price_type": "fixed", "price": 129}
	]
}`

func TestBySlug(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/slug/forest-mural", r.URL.Path)
		w.Write([]byte(productJSON))
	}))
	defer server.Close()

	c := NewClient(server.URL, server.Client())

	product, err := c.BySlug(context.Background(), "forest-mural")
	require.NoError(t, err)

	assert.Equal(t, int64(42), product.ID)
	assert.Equal(t, "WP-001", product.SKU)
	assert.InDelta(t, 250.0, product.RegularPrice, 1e-9)
	assert.Zero(t, product.SalePrice)

	require.Len(t, product.Materials, 1)
	assert.Equal(t, "vinyl", product.Materials[0].Slug)
	assert.InDelta(t, 50.0, product.Materials[0].PriceModifier, 1e-9)

	require.Len(t, product.Features, 2)
	assert.Equal(t, pricing.FeaturePerSqm, product.Features[0].Kind)
	assert.Equal(t, pricing.FeatureFlat, product.Features[1].Kind)
}

func TestBySlug_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := NewClient(server.URL, server.Client())

	_, err := c.BySlug(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestBySlug_CollapsesConcurrentLookups(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		time.Sleep(50 * time.Millisecond)
		w.Write([]byte(productJSON))
	}))
	defer server.Close()

	c := NewClient(server.URL, server.Client())

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.BySlug(context.Background(), "forest-mural")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestProducts_CursorPagination(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products", r.URL.Path)
		assert.Equal(t, "12", r.URL.Query().Get("per_page"))
		assert.Equal(t, "abc123", r.URL.Query().Get("cursor"))
		w.Write([]byte(`{"products": [` + productJSON + `], "end_cursor": "def456", "has_more": true}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, server.Client())

	page, err := c.Products(context.Background(), 12, "abc123")
	require.NoError(t, err)
	require.Len(t, page.Products, 1)
	assert.Equal(t, "def456", page.EndCursor)
	assert.True(t, page.HasMore)
}

func TestProducts_FirstPageOmitsCursor(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, present := r.URL.Query()["cursor"]
		assert.False(t, present)
		w.Write([]byte(`{"products": [], "end_cursor": "", "has_more": false}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, server.Client())

	page, err := c.Products(context.Background(), 12, "")
	require.NoError(t, err)
	assert.Empty(t, page.Products)
	assert.False(t, page.HasMore)
}

func TestCategories(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/categories", r.URL.Path)
		w.Write([]byte(`{"categories": [{"id": 1, "name": "Nature", "slug": "nature", "count": 14}]}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, server.Client())

	categories, err := c.Categories(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, "nature", categories[0].Slug)
}

func TestSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "forest", r.URL.Query().Get("term"))
		w.Write([]byte(`{"products": [` + productJSON + `]}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, server.Client())

	products, err := c.Search(context.Background(), "forest")
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "forest-mural", products[0].Slug)
}

func TestBackendFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := NewClient(server.URL, server.Client())

	_, err := c.Products(context.Background(), 12, "")
	assert.Error(t, err)
}

func TestParsePrice(t *testing.T) {
	assert.InDelta(t, 250.0, parsePrice("250"), 1e-9)
	assert.InDelta(t, 199.99, parsePrice("199.99"), 1e-9)
	assert.Zero(t, parsePrice(""))
	assert.Zero(t, parsePrice("not a number"))
}

func TestMaterialAndFeatureLookups(t *testing.T) {
	p := Product{
		Materials: []pricing.Material{{Slug: "vinyl", Name: "Vinyl"}},
		Features: []pricing.Feature{
			{Slug: "glue", Kind: pricing.FeatureFlat, Price: 129},
			{Slug: "premium_print", Kind: pricing.FeaturePerSqm, Price: 30},
		},
	}

	require.NotNil(t, p.MaterialBySlug("vinyl"))
	assert.Nil(t, p.MaterialBySlug("paper"))

	features := p.FeaturesBySlug([]string{"premium_print", "unknown", "glue"})
	require.Len(t, features, 2)
	assert.Equal(t, "premium_print", features[0].Slug)
	assert.Equal(t, "glue", features[1].Slug)
}
