package domain

import "github.com/shopspring/decimal"

// CartLine holds a product reference plus display fields copied from the
// product when it was first added. The copy is never re-synced with the catalog.
type CartLine struct {
	ProductID    string          `json:"_id"`
	Title        string          `json:"title"`
	ProductImage string          `json:"productImage"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
}

func NewCartLine(p Product) CartLine {
	return CartLine{
		ProductID:    p.ID,
		Title:        p.Title,
		ProductImage: p.ProductImage,
		Price:        p.Price,
		Quantity:     1,
	}
}

func (l CartLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type WishlistEntry struct {
	ProductID     string          `json:"_id"`
	Title         string          `json:"title"`
	ProductImage  string          `json:"productImage"`
	Price         decimal.Decimal `json:"price"`
	OriginalPrice decimal.Decimal `json:"originalPrice"`
}

func NewWishlistEntry(p Product) WishlistEntry {
	return WishlistEntry{
		ProductID:     p.ID,
		Title:         p.Title,
		ProductImage:  p.ProductImage,
		Price:         p.Price,
		OriginalPrice: p.OriginalPrice,
	}
}
