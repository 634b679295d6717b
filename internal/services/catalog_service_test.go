package services_test

import (
	"context"
	"testing"

	"webstore/internal/models"
	"webstore/internal/repository"
	"webstore/internal/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProductDerivesPriceAndStock(t *testing.T) {
	f := newFixture(t, nil, nil)

	view := f.product(t, "Runner", 10, "100", "10")

	assert.True(t, money("90.00").Equal(view.DiscountedPrice))
	require.NotNil(t, view.CurrentQuantity)
	assert.Equal(t, 10, *view.CurrentQuantity)
	require.NotNil(t, view.InStock)
	assert.True(t, *view.InStock)
	require.NotNil(t, view.Category)
	assert.Equal(t, "Shoes", view.Category.Name)
}

func TestCreateProductValidation(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()
	qty := 5
	negative := -1

	tests := []struct {
		name  string
		input services.ProductInput
		want  error
	}{
		{"missing name", services.ProductInput{Price: money("1"), Gender: "men", InitialQuantity: &qty, CategoryID: f.category.ID, BrandID: f.brand.ID}, services.ErrInvalidArgument},
		{"missing initial quantity", services.ProductInput{Name: "x", Price: money("1"), Gender: "men", CategoryID: f.category.ID, BrandID: f.brand.ID}, services.ErrInvalidArgument},
		{"negative initial quantity", services.ProductInput{Name: "x", Price: money("1"), Gender: "men", InitialQuantity: &negative, CategoryID: f.category.ID, BrandID: f.brand.ID}, services.ErrInvalidArgument},
		{"discount above 100", services.ProductInput{Name: "x", Price: money("1"), DiscountPercentage: money("101"), Gender: "men", InitialQuantity: &qty, CategoryID: f.category.ID, BrandID: f.brand.ID}, services.ErrInvalidArgument},
		{"unknown category", services.ProductInput{Name: "x", Price: money("1"), Gender: "men", InitialQuantity: &qty, CategoryID: 999, BrandID: f.brand.ID}, services.ErrNotFound},
		{"unknown size", services.ProductInput{Name: "x", Price: money("1"), Gender: "men", InitialQuantity: &qty, CategoryID: f.category.ID, BrandID: f.brand.ID, SizeIDs: []uint{42}}, services.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.catalog.CreateProduct(ctx, tt.input)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestUpdateProductKeepsInitialQuantity(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()
	p := f.product(t, "Runner", 10, "100", "0")

	changed := 50
	_, err := f.catalog.UpdateProduct(ctx, p.ID, services.ProductUpdate{InitialQuantity: &changed})
	assert.ErrorIs(t, err, services.ErrInvalidArgument)

	same := 10
	name := "Runner II"
	price := money("120")
	updated, err := f.catalog.UpdateProduct(ctx, p.ID, services.ProductUpdate{Name: &name, Price: &price, InitialQuantity: &same})
	require.NoError(t, err)
	assert.Equal(t, "Runner II", updated.Name)
	assert.True(t, money("120").Equal(updated.Price))
	assert.Equal(t, 10, updated.InitialQuantity)

	_, err = f.catalog.UpdateProduct(ctx, 999, services.ProductUpdate{Name: &name})
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestUpdateProductReplacesSizes(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()
	small := models.Size{Name: "S"}
	large := models.Size{Name: "L"}
	require.NoError(t, f.catalog.CreateSize(ctx, &small))
	require.NoError(t, f.catalog.CreateSize(ctx, &large))

	qty := 3
	p, err := f.catalog.CreateProduct(ctx, services.ProductInput{
		Name: "Tee", Price: money("10"), Gender: "women", InitialQuantity: &qty,
		CategoryID: f.category.ID, BrandID: f.brand.ID, SizeIDs: []uint{small.ID},
	})
	require.NoError(t, err)
	require.Len(t, p.Sizes, 1)

	updated, err := f.catalog.UpdateProduct(ctx, p.ID, services.ProductUpdate{SizeIDs: []uint{large.ID}})
	require.NoError(t, err)
	require.Len(t, updated.Sizes, 1)
	assert.Equal(t, "L", updated.Sizes[0].Name)

	cleared, err := f.catalog.UpdateProduct(ctx, p.ID, services.ProductUpdate{SizeIDs: []uint{}})
	require.NoError(t, err)
	assert.Empty(t, cleared.Sizes)
}

func TestApplyDiscount(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()
	p := f.product(t, "Runner", 10, "80", "0")

	view, err := f.catalog.ApplyDiscount(ctx, p.ID, money("25"))
	require.NoError(t, err)
	assert.True(t, money("60.00").Equal(view.DiscountedPrice))

	_, err = f.catalog.ApplyDiscount(ctx, p.ID, money("100.01"))
	assert.ErrorIs(t, err, services.ErrInvalidArgument)
	_, err = f.catalog.ApplyDiscount(ctx, p.ID, money("-1"))
	assert.ErrorIs(t, err, services.ErrInvalidArgument)
	_, err = f.catalog.ApplyDiscount(ctx, 999, money("5"))
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestDeleteProduct(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()
	unused := f.product(t, "Unused", 1, "10", "0")
	ordered := f.product(t, "Ordered", 5, "10", "0")

	order, err := f.orders.CreateOrder(ctx, orderFor("jane@example.com", line(ordered.ID, 1)))
	require.NoError(t, err)
	_, err = f.orders.SetOrderStatus(ctx, order.ID, "cancelled")
	require.NoError(t, err)

	assert.ErrorIs(t, f.catalog.DeleteProduct(ctx, ordered.ID), services.ErrConflict)
	require.NoError(t, f.catalog.DeleteProduct(ctx, unused.ID))
	_, err = f.catalog.GetProduct(ctx, unused.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)
	assert.ErrorIs(t, f.catalog.DeleteProduct(ctx, unused.ID), services.ErrNotFound)
}

func TestSearchProducts(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()
	red := models.Color{Name: "Red"}
	require.NoError(t, f.catalog.CreateColor(ctx, &red))

	qty := 1
	redShoe, err := f.catalog.CreateProduct(ctx, services.ProductInput{
		Name: "Red Runner", Price: money("50"), Gender: "women", InitialQuantity: &qty,
		CategoryID: f.category.ID, BrandID: f.brand.ID, ColorIDs: []uint{red.ID},
	})
	require.NoError(t, err)
	cheap := f.product(t, "Flat", 4, "15", "0")
	soldOut := f.product(t, "Boot", 0, "200", "0")

	search := func(s services.ProductSearch) []uint {
		t.Helper()
		views, err := f.catalog.SearchProducts(ctx, s)
		require.NoError(t, err)
		ids := []uint{}
		for _, v := range views {
			ids = append(ids, v.ID)
		}
		return ids
	}
	price := func(s string) *decimal.Decimal {
		d := money(s)
		return &d
	}

	assert.Equal(t, []uint{redShoe.ID, cheap.ID, soldOut.ID}, search(services.ProductSearch{}))
	assert.Equal(t, []uint{redShoe.ID}, search(services.ProductSearch{ProductFilter: repository.ProductFilter{Color: "red"}}))
	assert.Equal(t, []uint{redShoe.ID}, search(services.ProductSearch{ProductFilter: repository.ProductFilter{Gender: "women"}}))
	assert.Equal(t, []uint{cheap.ID}, search(services.ProductSearch{ProductFilter: repository.ProductFilter{PriceMax: price("20")}}))
	assert.Equal(t, []uint{soldOut.ID}, search(services.ProductSearch{ProductFilter: repository.ProductFilter{PriceMin: price("100")}}))
	assert.Equal(t, []uint{redShoe.ID, cheap.ID}, search(services.ProductSearch{Availability: services.AvailabilityInStock}))
	assert.Equal(t, []uint{soldOut.ID}, search(services.ProductSearch{Availability: services.AvailabilityOutOfStock}))
	assert.Empty(t, search(services.ProductSearch{ProductFilter: repository.ProductFilter{Brand: "Nobody"}}))

	// A confirmed order for the only red runner takes it out of stock.
	order, err := f.orders.CreateOrder(ctx, orderFor("jane@example.com", line(redShoe.ID, 1)))
	require.NoError(t, err)
	_, err = f.orders.SetOrderStatus(ctx, order.ID, "confirmed")
	require.NoError(t, err)
	assert.Equal(t, []uint{redShoe.ID, soldOut.ID}, search(services.ProductSearch{Availability: services.AvailabilityOutOfStock}))
}

func TestSearchProductsValidation(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()

	_, err := f.catalog.SearchProducts(ctx, services.ProductSearch{Availability: "maybe"})
	assert.ErrorIs(t, err, services.ErrInvalidArgument)

	low, high := money("10"), money("5")
	_, err = f.catalog.SearchProducts(ctx, services.ProductSearch{ProductFilter: repository.ProductFilter{PriceMin: &low, PriceMax: &high}})
	assert.ErrorIs(t, err, services.ErrInvalidArgument)
}

func TestCatalogDimensions(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()

	assert.ErrorIs(t, f.catalog.CreateCategory(ctx, &models.Category{Name: "Shoes"}), services.ErrConflict)
	assert.ErrorIs(t, f.catalog.CreateBrand(ctx, &models.Brand{Name: " "}), services.ErrInvalidArgument)

	require.NoError(t, f.catalog.CreateColor(ctx, &models.Color{Name: "Blue"}))
	colors, err := f.catalog.GetColors(ctx)
	require.NoError(t, err)
	require.Len(t, colors, 1)
	assert.Equal(t, "Blue", colors[0].Name)

	sizes, err := f.catalog.GetSizes(ctx)
	require.NoError(t, err)
	assert.NotNil(t, sizes)
	assert.Empty(t, sizes)

	categories, err := f.catalog.GetCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 1)
}
