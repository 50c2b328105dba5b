package cart

import "encoding/json"

// rawItem mirrors LineItem with pointers on the required scalar fields so a
// missing field can be told apart from a zero value.
type rawItem struct {
	ID                *string  `json:"id"`
	ProductID         *string  `json:"productId"`
	ProductDatabaseID int64    `json:"productDatabaseId"`
	Name              *string  `json:"name"`
	Price             *float64 `json:"price"`
	Width             int      `json:"width"`
	Height            int      `json:"height"`
	Material          string   `json:"material"`
	Premium           bool     `json:"premium"`
	Laminate          bool     `json:"laminate"`
	Glue              bool     `json:"glue"`
	ImageURL          string   `json:"imageUrl"`
}

// sanitizeItems decodes a persisted cart blob. Entries that are not
// well-formed items are dropped. The second return value is false when the
// blob itself is not a JSON array, which callers treat as a corrupted slot.
func sanitizeItems(data []byte) ([]LineItem, bool) {
	var elements []json.RawMessage
	if err := json.Unmarshal(data, &elements); err != nil {
		return nil, false
	}

	items := make([]LineItem, 0, len(elements))
	for _, el := range elements {
		var raw rawItem
		if err := json.Unmarshal(el, &raw); err != nil {
			continue
		}
		if raw.ID == nil || raw.ProductID == nil || raw.Name == nil || raw.Price == nil {
			continue
		}
		items = append(items, LineItem{
			ID:                *raw.ID,
			ProductID:         *raw.ProductID,
			ProductDatabaseID: raw.ProductDatabaseID,
			Name:              *raw.Name,
			Price:             *raw.Price,
			Width:             raw.Width,
			Height:            raw.Height,
			Material:          raw.Material,
			Premium:           raw.Premium,
			Laminate:          raw.Laminate,
			Glue:              raw.Glue,
			ImageURL:          raw.ImageURL,
		})
	}
	return items, true
}
