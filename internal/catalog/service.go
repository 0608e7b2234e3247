package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fjod/go_storefront/internal/domain"
)

type Service struct {
	fetcher Fetcher
	log     *slog.Logger
}

func NewService(f Fetcher, log *slog.Logger) *Service {
	return &Service{fetcher: f, log: log}
}

func (s *Service) List(ctx context.Context, search string, page int) (Page, error) {
	products, err := s.fetcher.AllProducts(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "failed to fetch products", "error", err)
		return Page{}, fmt.Errorf("fetch products: %w", err)
	}
	return Paginate(products, search, page, PageSize), nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.Product, error) {
	p, err := s.fetcher.ProductByID(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrProductNotFound) {
			s.log.ErrorContext(ctx, "failed to fetch product", "product_id", id, "error", err)
		}
		return domain.Product{}, err
	}
	return p, nil
}

func (s *Service) Related(ctx context.Context, id string) ([]domain.Product, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	products, err := s.fetcher.AllProducts(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "failed to fetch products", "error", err)
		return nil, fmt.Errorf("fetch products: %w", err)
	}
	return Related(products, p, RelatedLimit), nil
}

// Compare returns the requested products in request order. Unknown ids are
// skipped.
func (s *Service) Compare(ctx context.Context, ids []string) ([]domain.Product, error) {
	products, err := s.fetcher.AllProducts(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "failed to fetch products", "error", err)
		return nil, fmt.Errorf("fetch products: %w", err)
	}

	byID := make(map[string]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	out := make([]domain.Product, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		p, ok := byID[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, p)
	}
	return out, nil
}
