package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dimabalawov/wallpaper-imp/internal/pricing"
)

var ErrProductNotFound = errors.New("product not found")

// Client is the read-only catalog collaborator. Results are never cached;
// singleflight only collapses concurrent lookups of the same slug.
type Client struct {
	baseURL    string
	httpClient *http.Client
	sfg        singleflight.Group
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Wire shapes of the commerce backend's catalog API.

type wireMaterial struct {
	DatabaseID    int64   `json:"database_id"`
	Slug          string  `json:"slug"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	PriceModifier float64 `json:"price_modifier"`
	ImageURL      string  `json:"image_url"`
}

type wireFeature struct {
	DatabaseID  int64   `json:"database_id"`
	Slug        string  `json:"slug"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	PriceType   string  `json:"price_type"`
	Price       float64 `json:"price"`
}

type wireProduct struct {
	ID           int64          `json:"id"`
	Name         string         `json:"name"`
	Slug         string         `json:"slug"`
	SKU          string         `json:"sku"`
	Description  string         `json:"description"`
	RegularPrice string         `json:"regular_price"`
	SalePrice    string         `json:"sale_price"`
	ImageURL     string         `json:"image_url"`
	Materials    []wireMaterial `json:"materials"`
	Features     []wireFeature  `json:"extra_features"`
}

type wirePage struct {
	Products  []wireProduct `json:"products"`
	EndCursor string        `json:"end_cursor"`
	HasMore   bool          `json:"has_more"`
}

func (w wireProduct) toProduct() Product {
	p := Product{
		ID:           w.ID,
		Name:         w.Name,
		Slug:         w.Slug,
		SKU:          w.SKU,
		Description:  w.Description,
		RegularPrice: parsePrice(w.RegularPrice),
		SalePrice:    parsePrice(w.SalePrice),
		ImageURL:     w.ImageURL,
	}
	for _, m := range w.Materials {
		p.Materials = append(p.Materials, pricing.Material{
			DatabaseID:    m.DatabaseID,
			Slug:          m.Slug,
			Name:          m.Name,
			Description:   m.Description,
			PriceModifier: m.PriceModifier,
			ImageURL:      m.ImageURL,
		})
	}
	for _, f := range w.Features {
		kind := pricing.FeatureFlat
		if f.PriceType == string(pricing.FeaturePerSqm) {
			kind = pricing.FeaturePerSqm
		}
		p.Features = append(p.Features, pricing.Feature{
			DatabaseID:  f.DatabaseID,
			Slug:        f.Slug,
			Name:        f.Name,
			Description: f.Description,
			Kind:        kind,
			Price:       f.Price,
		})
	}
	return p
}

// Categories lists the catalog's category tree, flattened.
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	var out struct {
		Categories []Category `json:"categories"`
	}
	if err := c.get(ctx, "/categories", nil, &out); err != nil {
		return nil, err
	}
	return out.Categories, nil
}

// Products returns one page of the listing. cursor is the opaque
// continuation token from a previous page, empty for the first page.
func (c *Client) Products(ctx context.Context, limit int, cursor string) (Page, error) {
	query := url.Values{}
	query.Set("per_page", strconv.Itoa(limit))
	if cursor != "" {
		query.Set("cursor", cursor)
	}

	var wire wirePage
	if err := c.get(ctx, "/products", query, &wire); err != nil {
		return Page{}, err
	}

	page := Page{EndCursor: wire.EndCursor, HasMore: wire.HasMore}
	for _, wp := range wire.Products {
		page.Products = append(page.Products, wp.toProduct())
	}
	return page, nil
}

// BySlug fetches a single product. Concurrent lookups of the same slug are
// collapsed into one backend call.
func (c *Client) BySlug(ctx context.Context, slug string) (Product, error) {
	v, err, _ := c.sfg.Do(slug, func() (interface{}, error) {
		var wire wireProduct
		if err := c.get(ctx, "/products/slug/"+url.PathEscape(slug), nil, &wire); err != nil {
			return Product{}, err
		}
		return wire.toProduct(), nil
	})
	if err != nil {
		return Product{}, err
	}
	return v.(Product), nil
}

// Search runs a free-text product search.
func (c *Client) Search(ctx context.Context, term string) ([]Product, error) {
	query := url.Values{}
	query.Set("term", term)

	var wire wirePage
	if err := c.get(ctx, "/search", query, &wire); err != nil {
		return nil, err
	}

	products := make([]Product, 0, len(wire.Products))
	for _, wp := range wire.Products {
		products = append(products, wp.toProduct())
	}
	return products, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build catalog request failed: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("catalog request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrProductNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("catalog request failed: status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode catalog response failed: %w", err)
	}
	return nil
}
