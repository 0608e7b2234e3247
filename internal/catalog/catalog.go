// Package catalog reads products from a catalog backend and derives the
// storefront views over them: search, paging, related products and the
// comparison list.
package catalog

import (
	"context"
	"errors"

	"github.com/fjod/go_storefront/internal/domain"
)

var ErrProductNotFound = errors.New("product not found")

// Fetcher is a read-only product source.
type Fetcher interface {
	AllProducts(ctx context.Context) ([]domain.Product, error)
	ProductByID(ctx context.Context, id string) (domain.Product, error)
}
