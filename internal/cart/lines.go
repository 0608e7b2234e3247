package cart

import "github.com/fjod/go_storefront/internal/domain"

// AddLine merges p into lines by product id: an existing line gains one unit,
// otherwise a new line with quantity 1 is appended.
func AddLine(lines []domain.CartLine, p domain.Product) []domain.CartLine {
	for i := range lines {
		if lines[i].ProductID == p.ID {
			lines[i].Quantity++
			return lines
		}
	}
	return append(lines, domain.NewCartLine(p))
}

func RemoveLine(lines []domain.CartLine, productID string) []domain.CartLine {
	out := lines[:0]
	for _, l := range lines {
		if l.ProductID != productID {
			out = append(out, l)
		}
	}
	return out
}

// SetLineQuantity overwrites the quantity of the matching line as given.
// Zero and negative values are kept; removal is a separate operation.
func SetLineQuantity(lines []domain.CartLine, productID string, quantity int) []domain.CartLine {
	for i := range lines {
		if lines[i].ProductID == productID {
			lines[i].Quantity = quantity
		}
	}
	return lines
}
