package services_test

import (
	"context"
	"testing"
	"time"

	"webstore/internal/models"
	"webstore/internal/repository/memory"
	"webstore/internal/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fixture struct {
	store    *memory.Store
	stock    services.StockService
	orders   services.OrderService
	catalog  services.CatalogService
	reports  services.ReportService
	category models.Category
	brand    models.Brand
}

func newFixture(t *testing.T, cache services.ReportCache, events services.EventPublisher) *fixture {
	t.Helper()
	logger := zaptest.NewLogger(t)
	store := memory.NewStore()
	stock := services.NewStockService(store)

	f := &fixture{
		store:   store,
		stock:   stock,
		orders:  services.NewOrderService(store, cache, events, logger),
		catalog: services.NewCatalogService(store, stock, cache, logger),
		reports: services.NewReportService(store, cache, time.UTC, logger),
	}
	f.category = models.Category{Name: "Shoes"}
	require.NoError(t, f.catalog.CreateCategory(context.Background(), &f.category))
	f.brand = models.Brand{Name: "Acme"}
	require.NoError(t, f.catalog.CreateBrand(context.Background(), &f.brand))
	return f
}

func (f *fixture) product(t *testing.T, name string, quantity int, price, discount string) *models.ProductView {
	t.Helper()
	view, err := f.catalog.CreateProduct(context.Background(), services.ProductInput{
		Name:               name,
		Price:              decimal.RequireFromString(price),
		DiscountPercentage: decimal.RequireFromString(discount),
		Gender:             "unisex",
		InitialQuantity:    &quantity,
		CategoryID:         f.category.ID,
		BrandID:            f.brand.ID,
	})
	require.NoError(t, err)
	return view
}

func (f *fixture) currentQuantity(t *testing.T, productID uint) int {
	t.Helper()
	level, err := f.stock.GetCurrentQuantity(context.Background(), productID)
	require.NoError(t, err)
	return level.CurrentQuantity
}

func orderFor(email string, lines ...services.OrderLine) services.CreateOrderRequest {
	return services.CreateOrderRequest{
		Client: services.ClientInfo{Name: "Jane Doe", Email: email},
		Items:  lines,
	}
}

func line(productID uint, quantity int) services.OrderLine {
	return services.OrderLine{ProductID: productID, Quantity: quantity}
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
