package recommendation

import "foodiedelight/internal/models"

const (
	// MinRating is the lowest rating an item needs to be suggested
	MinRating = 4.5
	// MaxResults caps the number of suggestions
	MaxResults = 3
)

// Cart is the part of the cart the filter looks at
type Cart interface {
	Contains(id string) bool
}

// Recommend returns up to MaxResults catalog items rated at least MinRating
// that are not already in the cart, in catalog order. An empty result means
// the recommendations section should not be shown.
func Recommend(catalog []models.MenuItem, cart Cart) []models.MenuItem {
	out := make([]models.MenuItem, 0, MaxResults)
	for _, item := range catalog {
		if len(out) == MaxResults {
			break
		}
		if item.Rating < MinRating {
			continue
		}
		if cart != nil && cart.Contains(item.ID) {
			continue
		}
		out = append(out, item)
	}
	return out
}
