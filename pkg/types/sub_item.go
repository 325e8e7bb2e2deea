package types

// SubItem is one component of a composite/custom cart line. Sub-items are
// opaque to the merge engine and travel with their parent line as a unit.
type SubItem struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Image      string `json:"image,omitempty"`
	PriceCents int64  `json:"priceCents"`
}

// SubItems is stored as a JSONB column via the gorm json serializer.
type SubItems []SubItem
