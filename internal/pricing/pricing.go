package pricing

import (
	"errors"
	"fmt"
)

var ErrNoMaterial = errors.New("no material selected")

// FeatureKind tells how an extra feature is charged.
type FeatureKind string

const (
	// FeatureFlat is charged once per item, independent of wall area.
	FeatureFlat FeatureKind = "fixed"
	// FeaturePerSqm is added to the per-square-meter rate before multiplication.
	FeaturePerSqm FeatureKind = "sqm"
)

type Material struct {
	DatabaseID    int64   `json:"database_id"`
	Slug          string  `json:"slug"`
	Name          string  `json:"name"`
	Description   string  `json:"description,omitempty"`
	PriceModifier float64 `json:"price_modifier"`
	ImageURL      string  `json:"image_url,omitempty"`
}

type Feature struct {
	DatabaseID  int64       `json:"database_id"`
	Slug        string      `json:"slug"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Kind        FeatureKind `json:"kind"`
	Price       float64     `json:"price"`
}

// Configuration is one configured product instance, not yet in the cart.
type Configuration struct {
	RegularPrice float64
	SalePrice    float64
	Material     *Material
	Features     []Feature
	WidthCm      int
	HeightCm     int
}

// Quote is the priced result. OldPrice is the pre-sale equivalent for
// display, zero when no sale is active; it never feeds into Price.
type Quote struct {
	Price    float64 `json:"price"`
	OldPrice float64 `json:"old_price,omitempty"`
	HasSale  bool    `json:"has_sale"`
}

// HasSale reports whether the sale price wins over the regular one.
func (c Configuration) HasSale() bool {
	return c.SalePrice > 0 && c.SalePrice < c.RegularPrice
}

// Area returns the wall area in square meters.
func (c Configuration) Area() float64 {
	return float64(c.WidthCm) / 100 * (float64(c.HeightCm) / 100)
}

// Calculate derives the price of a configured item:
// (base + material modifier + per-sqm features) * area + flat features.
// The base is the sale price when a sale is active, the regular price
// otherwise. A configuration with no material cannot be priced.
func Calculate(cfg Configuration) (Quote, error) {
	if cfg.Material == nil {
		return Quote{}, fmt.Errorf("cannot price configuration: %w", ErrNoMaterial)
	}

	base := cfg.RegularPrice
	hasSale := cfg.HasSale()
	if hasSale {
		base = cfg.SalePrice
	}

	var perSqm, flat float64
	for _, f := range cfg.Features {
		switch f.Kind {
		case FeaturePerSqm:
			perSqm += f.Price
		default:
			flat += f.Price
		}
	}

	area := cfg.Area()
	price := (base + cfg.Material.PriceModifier + perSqm) * area + flat

	quote := Quote{Price: price, HasSale: hasSale}
	if hasSale {
		quote.OldPrice = (cfg.RegularPrice + cfg.Material.PriceModifier + perSqm) * area + flat
	}
	return quote, nil
}
