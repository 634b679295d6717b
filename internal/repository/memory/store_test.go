package memory

import (
	"context"
	"errors"
	"testing"

	"webstore/internal/models"
	"webstore/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedProduct(t *testing.T, s *Store, quantity int) models.Product {
	t.Helper()
	ctx := context.Background()
	category := models.Category{Name: "Shoes"}
	require.NoError(t, s.Catalog().CreateCategory(ctx, &category))
	brand := models.Brand{Name: "Acme"}
	require.NoError(t, s.Catalog().CreateBrand(ctx, &brand))

	product := models.Product{
		Name: "Runner", Price: decimal.NewFromInt(10), Gender: "unisex",
		InitialQuantity: quantity, CategoryID: category.ID, BrandID: brand.ID,
	}
	require.NoError(t, s.Products().Create(ctx, &product))
	return product
}

func TestWithinTransactionRollsBackOnError(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	product := seedProduct(t, s, 5)
	boom := errors.New("boom")

	err := s.WithinTransaction(ctx, func(tx repository.Store) error {
		client, err := tx.Clients().FirstOrCreate(ctx, &models.Client{Name: "Jane", Email: "jane@example.com"})
		require.NoError(t, err)
		order := &models.Order{
			OrderNumber: "ORD-1", ClientID: client.ID, Status: models.OrderConfirmed,
			TotalAmount: decimal.NewFromInt(20),
			Items:       []models.OrderItem{{ProductID: product.ID, Quantity: 2, PriceAtPurchase: decimal.NewFromInt(10)}},
		}
		require.NoError(t, tx.Orders().Create(ctx, order))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = s.Clients().GetByEmail(ctx, "jane@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	orders, err := s.Orders().GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, orders)
	levels, err := s.Stock().Levels(ctx, models.CommittedStatuses, []uint{product.ID})
	require.NoError(t, err)
	require.Len(t, levels, 1)
	assert.Equal(t, 5, levels[0].CurrentQuantity)
}

func TestWithinTransactionRollsBackOnPanic(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	assert.Panics(t, func() {
		_ = s.WithinTransaction(ctx, func(tx repository.Store) error {
			require.NoError(t, tx.Catalog().CreateSize(ctx, &models.Size{Name: "M"}))
			panic("unexpected")
		})
	})

	sizes, err := s.Catalog().GetSizes(ctx)
	require.NoError(t, err)
	assert.Empty(t, sizes)
}

func TestStockLevelsCountOnlyRequestedStatuses(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	product := seedProduct(t, s, 10)
	client, err := s.Clients().FirstOrCreate(ctx, &models.Client{Name: "Jane", Email: "jane@example.com"})
	require.NoError(t, err)

	for i, status := range []models.OrderStatus{models.OrderPending, models.OrderConfirmed, models.OrderCancelled} {
		require.NoError(t, s.Orders().Create(ctx, &models.Order{
			OrderNumber: string(status), ClientID: client.ID, Status: status,
			Items: []models.OrderItem{{ProductID: product.ID, Quantity: i + 1, PriceAtPurchase: decimal.NewFromInt(10)}},
		}))
	}

	committed, err := s.Stock().Levels(ctx, models.CommittedStatuses, nil)
	require.NoError(t, err)
	require.Len(t, committed, 1)
	assert.Equal(t, 2, committed[0].SoldQuantity)
	assert.Equal(t, 8, committed[0].CurrentQuantity)
	assert.True(t, committed[0].InStock)

	outstanding, err := s.Stock().Levels(ctx, models.OutstandingStatuses, []uint{product.ID})
	require.NoError(t, err)
	assert.Equal(t, 7, outstanding[0].CurrentQuantity)
}

func TestProductDeleteRefusedWhenReferenced(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	product := seedProduct(t, s, 1)
	client, err := s.Clients().FirstOrCreate(ctx, &models.Client{Name: "Jane", Email: "jane@example.com"})
	require.NoError(t, err)
	require.NoError(t, s.Orders().Create(ctx, &models.Order{
		OrderNumber: "ORD-1", ClientID: client.ID,
		Items: []models.OrderItem{{ProductID: product.ID, Quantity: 1, PriceAtPurchase: decimal.NewFromInt(10)}},
	}))

	assert.ErrorIs(t, s.Products().Delete(ctx, product.ID), repository.ErrInUse)
	assert.ErrorIs(t, s.Products().Delete(ctx, 999), repository.ErrNotFound)
}

func TestOrderNumbersAreUnique(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	client, err := s.Clients().FirstOrCreate(ctx, &models.Client{Name: "Jane", Email: "jane@example.com"})
	require.NoError(t, err)

	require.NoError(t, s.Orders().Create(ctx, &models.Order{OrderNumber: "ORD-1", ClientID: client.ID}))
	assert.ErrorIs(t, s.Orders().Create(ctx, &models.Order{OrderNumber: "ORD-1", ClientID: client.ID}), repository.ErrDuplicate)
	assert.ErrorIs(t, s.Orders().Create(ctx, &models.Order{OrderNumber: "ORD-2", ClientID: 99}), repository.ErrNotFound)
}
