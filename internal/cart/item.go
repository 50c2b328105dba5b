package cart

// LineItem is one configured, priced product instance held in the cart.
// ProductID is the catalog SKU shown to the customer; ProductDatabaseID is
// the backend's numeric key and is required for checkout to succeed.
type LineItem struct {
	ID                string  `json:"id"`
	ProductID         string  `json:"productId"`
	ProductDatabaseID int64   `json:"productDatabaseId,omitempty"`
	Name              string  `json:"name"`
	Price             float64 `json:"price"`
	Width             int     `json:"width"`
	Height            int     `json:"height"`
	Material          string  `json:"material"`
	Premium           bool    `json:"premium"`
	Laminate          bool    `json:"laminate"`
	Glue              bool    `json:"glue"`
	ImageURL          string  `json:"imageUrl,omitempty"`
}
