package repository

import (
	"context"

	"webstore/internal/models"

	"gorm.io/gorm"
)

// StockRepository derives inventory positions from order items. Nothing here
// writes; the quantities are always computed from the order history.
type StockRepository interface {
	// Levels returns the stock level of every product in productIDs (all
	// products when productIDs is empty), counting as sold the items of orders
	// whose status is in statuses. Missing products are simply absent from the
	// result.
	Levels(ctx context.Context, statuses []models.OrderStatus, productIDs []uint) ([]models.StockLevel, error)
}

type stockRepository struct {
	db *gorm.DB
}

func NewStockRepository(db *gorm.DB) StockRepository {
	return &stockRepository{db: db}
}

func (r *stockRepository) Levels(ctx context.Context, statuses []models.OrderStatus, productIDs []uint) ([]models.StockLevel, error) {
	db := r.db.WithContext(ctx)

	sold := db.Table("order_items").
		Select("order_items.product_id, SUM(order_items.quantity) AS sold_quantity").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.status IN ?", models.StatusStrings(statuses)).
		Group("order_items.product_id")

	query := db.Table("products").
		Select("products.id AS product_id, products.name AS product_name, products.initial_quantity, COALESCE(sold.sold_quantity, 0) AS sold_quantity").
		Joins("LEFT JOIN (?) AS sold ON sold.product_id = products.id", sold)
	if len(productIDs) > 0 {
		query = query.Where("products.id IN ?", productIDs)
	}

	var levels []models.StockLevel
	if err := query.Order("products.id").Scan(&levels).Error; err != nil {
		return nil, err
	}
	for i := range levels {
		levels[i].Derive()
	}
	return levels, nil
}
