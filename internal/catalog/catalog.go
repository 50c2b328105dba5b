package catalog

import (
	"strconv"

	"github.com/dimabalawov/wallpaper-imp/internal/pricing"
)

type Category struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Count int    `json:"count"`
}

// Product is the typed shape the storefront consumes from the commerce
// backend. Prices are per square meter; Materials and Features feed straight
// into a pricing.Configuration.
type Product struct {
	ID           int64              `json:"id"`
	Name         string             `json:"name"`
	Slug         string             `json:"slug"`
	SKU          string             `json:"sku"`
	Description  string             `json:"description,omitempty"`
	RegularPrice float64            `json:"regular_price"`
	SalePrice    float64            `json:"sale_price"`
	ImageURL     string             `json:"image_url,omitempty"`
	Materials    []pricing.Material `json:"materials,omitempty"`
	Features     []pricing.Feature  `json:"extra_features,omitempty"`
}

// Page is one slice of a cursor-paginated product listing.
type Page struct {
	Products  []Product `json:"products"`
	EndCursor string    `json:"end_cursor"`
	HasMore   bool      `json:"has_more"`
}

// MaterialBySlug finds a product's material option, nil when absent.
func (p *Product) MaterialBySlug(slug string) *pricing.Material {
	for i := range p.Materials {
		if p.Materials[i].Slug == slug {
			return &p.Materials[i]
		}
	}
	return nil
}

// FeaturesBySlug maps selected feature slugs to the product's feature
// options, skipping slugs the product does not offer.
func (p *Product) FeaturesBySlug(slugs []string) []pricing.Feature {
	var out []pricing.Feature
	for _, slug := range slugs {
		for _, f := range p.Features {
			if f.Slug == slug {
				out = append(out, f)
				break
			}
		}
	}
	return out
}

// parsePrice turns the backend's string price into a number, 0 when empty or
// unparsable.
func parsePrice(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
