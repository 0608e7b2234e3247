package domain

import "github.com/shopspring/decimal"

// Product is a catalog record as served by the content store. It is read-only
// from the storefront's point of view.
type Product struct {
	ID                 string          `json:"_id"`
	Title              string          `json:"title"`
	ProductImage       string          `json:"productImage"`
	Price              decimal.Decimal `json:"price"`
	OriginalPrice      decimal.Decimal `json:"originalPrice"`
	DiscountPercentage float64         `json:"discountPercentage"`
	IsNew              bool            `json:"isNew"`
	Tags               []string        `json:"tags"`
	Description        string          `json:"description,omitempty"`
	Quantity           int             `json:"quantity"`
}
