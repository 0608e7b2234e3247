package catalog_test

import (
	"context"
	"testing"
	"time"

	"github.com/fjod/go_storefront/internal/catalog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *catalog.SQLiteFetcher {
	// Use in-memory database for tests
	repo, err := catalog.NewSQLiteFetcher(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	require.NoError(t, repo.RunMigrations())
	return repo
}

func TestAllProducts_SeededCatalog(t *testing.T) {
	repo := setupTestDB(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	products, err := repo.AllProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 17)
	assert.Equal(t, "Syltherine", products[0].Title)
	assert.Equal(t, []string{"chair", "cafe", "stylish"}, products[0].Tags)
	assert.Equal(t, 1, products[0].Quantity)
}

func TestProductByID(t *testing.T) {
	repo := setupTestDB(t)

	p, err := repo.ProductByID(context.Background(), "prod-lolito")
	require.NoError(t, err)
	assert.Equal(t, "Lolito", p.Title)
	assert.True(t, decimal.NewFromInt(7000000).Equal(p.Price))
	assert.True(t, decimal.NewFromInt(14000000).Equal(p.OriginalPrice))
	assert.Equal(t, 50.0, p.DiscountPercentage)
}

func TestProductByID_NotFound(t *testing.T) {
	repo := setupTestDB(t)

	_, err := repo.ProductByID(context.Background(), "missing")
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)
}

func TestRunMigrations_Idempotent(t *testing.T) {
	repo := setupTestDB(t)
	assert.NoError(t, repo.RunMigrations())
}

func TestSeededCatalog_Paginates(t *testing.T) {
	repo := setupTestDB(t)

	products, err := repo.AllProducts(context.Background())
	require.NoError(t, err)

	assert.Len(t, catalog.Paginate(products, "", 1, catalog.PageSize).Items, 8)
	assert.Len(t, catalog.Paginate(products, "", 3, catalog.PageSize).Items, 1)
	assert.Empty(t, catalog.Paginate(products, "", 4, catalog.PageSize).Items)
}
