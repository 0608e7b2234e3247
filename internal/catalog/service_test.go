package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) AllProducts(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *MockFetcher) ProductByID(ctx context.Context, id string) (domain.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Product), args.Error(1)
}

var sample = []domain.Product{
	{ID: "p1", Title: "Syltherine", Tags: []string{"chair"}},
	{ID: "p2", Title: "Leviosa", Tags: []string{"chair"}},
	{ID: "p3", Title: "Lolito", Tags: []string{"sofa"}},
}

func TestService_List(t *testing.T) {
	f := new(MockFetcher)
	f.On("AllProducts", mock.Anything).Return(sample, nil)
	s := NewService(f, logger.Discard())

	pg, err := s.List(context.Background(), "chair", 1)
	require.NoError(t, err)
	assert.Len(t, pg.Items, 2)
	f.AssertExpectations(t)
}

func TestService_ListFetchError(t *testing.T) {
	f := new(MockFetcher)
	f.On("AllProducts", mock.Anything).Return(nil, errors.New("timeout"))
	s := NewService(f, logger.Discard())

	_, err := s.List(context.Background(), "", 1)
	assert.Error(t, err)
}

func TestService_RelatedNotFound(t *testing.T) {
	f := new(MockFetcher)
	f.On("ProductByID", mock.Anything, "nope").Return(domain.Product{}, ErrProductNotFound)
	s := NewService(f, logger.Discard())

	_, err := s.Related(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrProductNotFound)
	f.AssertNotCalled(t, "AllProducts", mock.Anything)
}

func TestService_Related(t *testing.T) {
	f := new(MockFetcher)
	f.On("ProductByID", mock.Anything, "p1").Return(sample[0], nil)
	f.On("AllProducts", mock.Anything).Return(sample, nil)
	s := NewService(f, logger.Discard())

	got, err := s.Related(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "p2", got[0].ID)
}

func TestService_CompareKeepsRequestOrder(t *testing.T) {
	f := new(MockFetcher)
	f.On("AllProducts", mock.Anything).Return(sample, nil)
	s := NewService(f, logger.Discard())

	got, err := s.Compare(context.Background(), []string{"p3", "missing", "p1", "p3"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "p3", got[0].ID)
	assert.Equal(t, "p1", got[1].ID)
}
