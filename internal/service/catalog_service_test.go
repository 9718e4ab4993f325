package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/monterra-as/installer-api/internal/domain"
	"github.com/monterra-as/installer-api/internal/repository"
	"github.com/monterra-as/installer-api/internal/service"
	"github.com/monterra-as/installer-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newCatalogService(t *testing.T) (*service.CatalogService, *testEnv) {
	t.Helper()
	env := newTestEnv(t)
	return service.NewCatalogService(repository.NewCatalogRepository(env.db), zap.NewNop()), env
}

func TestCatalogService_Categories(t *testing.T) {
	catalog, _ := newCatalogService(t)
	ctx := context.Background()

	created, err := catalog.CreateCategory(ctx, &domain.CreateCategoryRequest{
		Name:        "Solar panels",
		Description: "Panels and accessories",
	})
	require.NoError(t, err)
	assert.True(t, created.Active)

	got, err := catalog.GetCategory(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Solar panels", got.Name)

	listed, err := catalog.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	inactive := false
	updated, err := catalog.UpdateCategory(ctx, created.ID, &domain.UpdateCategoryRequest{
		Name:   "Solar panels",
		Active: &inactive,
	})
	require.NoError(t, err)
	assert.False(t, updated.Active)

	// Inactive categories fall out of the listing
	listed, err = catalog.ListCategories(ctx)
	require.NoError(t, err)
	assert.Empty(t, listed)

	_, err = catalog.GetCategory(ctx, uuid.New())
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestCatalogService_Products(t *testing.T) {
	catalog, env := newCatalogService(t)
	ctx := context.Background()

	category := testutil.CreateTestCategory(t, env.db, "Inverters")
	other := testutil.CreateTestCategory(t, env.db, "Cabling")

	created, err := catalog.CreateProduct(ctx, &domain.CreateProductRequest{
		CategoryID: category.ID,
		Name:       "Hybrid inverter 10kW",
		UnitPrice:  18500,
		Unit:       "pcs",
	})
	require.NoError(t, err)
	assert.Equal(t, 18500.0, created.UnitPrice)

	_, err = catalog.CreateProduct(ctx, &domain.CreateProductRequest{
		CategoryID: other.ID,
		Name:       "Solar cable 6mm",
		UnitPrice:  22,
		Unit:       "m",
	})
	require.NoError(t, err)

	all, err := catalog.ListProducts(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	scoped, err := catalog.ListProducts(ctx, &category.ID)
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, "Hybrid inverter 10kW", scoped[0].Name)

	_, err = catalog.CreateProduct(ctx, &domain.CreateProductRequest{
		CategoryID: uuid.New(),
		Name:       "Orphan product",
	})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}
