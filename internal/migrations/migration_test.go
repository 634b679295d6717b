package migrations

import (
	"context"
	"testing"

	"webstore/internal/repository/memory"
	"webstore/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestSeedDefaultsIsIdempotent(t *testing.T) {
	ctx := context.Background()
	logger := zaptest.NewLogger(t)
	store := memory.NewStore()
	stock := services.NewStockService(store)
	users := services.NewUserService(store, logger)
	catalog := services.NewCatalogService(store, stock, nil, logger)

	require.NoError(t, SeedDefaults(ctx, users, catalog, logger))
	require.NoError(t, SeedDefaults(ctx, users, catalog, logger))

	all, err := users.GetAllUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(DefaultUsers))

	admin, err := users.Authenticate(ctx, "admin", "admin123")
	require.NoError(t, err)
	assert.Equal(t, "admin", admin.Role)

	products, err := catalog.GetAllProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, len(sampleProducts))
	assert.Equal(t, "Air Runner", products[0].Name)
	assert.Len(t, products[0].Sizes, 3)
	require.NotNil(t, products[0].Category)
	assert.Equal(t, "Shoes", products[0].Category.Name)
	assert.Equal(t, "108", products[0].DiscountedPrice.String())

	tote := products[len(products)-1]
	require.NotNil(t, tote.InStock)
	assert.False(t, *tote.InStock)

	categories, err := catalog.GetCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, len(defaultCategories))
}
