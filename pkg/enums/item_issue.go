package enums

import "fmt"

// ItemIssue tags a per-item validation outcome reported back to the client
// after catalog validation.
type ItemIssue string

const (
	ItemIssueProductNotFound   ItemIssue = "PRODUCT_NOT_FOUND"
	ItemIssueProductOutOfStock ItemIssue = "PRODUCT_OUT_OF_STOCK"
	ItemIssuePriceMismatch     ItemIssue = "PRICE_MISMATCH"
)

var validItemIssues = []ItemIssue{
	ItemIssueProductNotFound,
	ItemIssueProductOutOfStock,
	ItemIssuePriceMismatch,
}

// IsValid reports whether the value matches the canonical item issue enum.
func (i ItemIssue) IsValid() bool {
	for _, candidate := range validItemIssues {
		if candidate == i {
			return true
		}
	}
	return false
}

// Drops reports whether the issue removes the item from the merged cart.
// PRICE_MISMATCH is informational only; the item survives with a refreshed
// snapshot price.
func (i ItemIssue) Drops() bool {
	return i == ItemIssueProductNotFound || i == ItemIssueProductOutOfStock
}

// ParseItemIssue converts the raw string to ItemIssue.
func ParseItemIssue(value string) (ItemIssue, error) {
	for _, candidate := range validItemIssues {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid item issue %q", value)
}
