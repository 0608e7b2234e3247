package catalog

import (
	"context"
	"fmt"

	"github.com/fjod/go_storefront/internal/domain"
)

const productProjection = `{
  _id,
  title,
  "productImage": productImage.asset->url,
  price,
  originalPrice,
  discountPercentage,
  isNew,
  tags,
  description
}`

const (
	allProductsQuery = `*[_type == "product"]` + productProjection
	productByIDQuery = `*[_type == "product" && _id == $id][0]` + productProjection
)

// Querier is the read side of the content store client.
type Querier interface {
	Query(ctx context.Context, query string, params map[string]any, out any) (bool, error)
}

type CMSFetcher struct {
	client Querier
}

func NewCMSFetcher(client Querier) *CMSFetcher {
	return &CMSFetcher{client: client}
}

func (f *CMSFetcher) AllProducts(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	if _, err := f.client.Query(ctx, allProductsQuery, nil, &products); err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	if products == nil {
		products = []domain.Product{}
	}
	for i := range products {
		withDefaultQuantity(&products[i])
	}
	return products, nil
}

func (f *CMSFetcher) ProductByID(ctx context.Context, id string) (domain.Product, error) {
	var p domain.Product
	found, err := f.client.Query(ctx, productByIDQuery, map[string]any{"id": id}, &p)
	if err != nil {
		return domain.Product{}, fmt.Errorf("failed to query product %s: %w", id, err)
	}
	if !found {
		return domain.Product{}, ErrProductNotFound
	}
	withDefaultQuantity(&p)
	return p, nil
}

func withDefaultQuantity(p *domain.Product) {
	if p.Quantity == 0 {
		p.Quantity = 1
	}
}
