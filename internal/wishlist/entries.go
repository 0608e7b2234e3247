package wishlist

import "github.com/fjod/go_storefront/internal/domain"

// ToggleEntry removes the entry for p when present and appends one otherwise.
// added reports which branch was taken.
func ToggleEntry(entries []domain.WishlistEntry, p domain.Product) (out []domain.WishlistEntry, added bool) {
	for i := range entries {
		if entries[i].ProductID == p.ID {
			return append(entries[:i], entries[i+1:]...), false
		}
	}
	return append(entries, domain.NewWishlistEntry(p)), true
}
