package repository

import (
	"context"
	"time"

	"webstore/internal/models"

	"gorm.io/gorm"
)

type ReportRepository interface {
	GetOrdersBetween(ctx context.Context, start, end time.Time, statuses []models.OrderStatus) ([]models.Order, error)
	GetEarningsBetween(ctx context.Context, start, end time.Time, statuses []models.OrderStatus) (models.EarningsTotals, error)
	GetTopSellingProducts(ctx context.Context, statuses []models.OrderStatus, limit int) ([]models.ProductSales, error)
	GetSalesByCategory(ctx context.Context, statuses []models.OrderStatus) ([]models.DimensionSales, error)
	GetSalesByBrand(ctx context.Context, statuses []models.OrderStatus) ([]models.DimensionSales, error)
	GetStatusSummary(ctx context.Context) ([]models.StatusTotals, error)
}

type reportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

// GetOrdersBetween returns orders created in [start, end], oldest first,
// with their client but without items.
func (r *reportRepository) GetOrdersBetween(ctx context.Context, start, end time.Time, statuses []models.OrderStatus) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("Client").
		Where("created_at BETWEEN ? AND ?", start, end).
		Where("status IN ?", models.StatusStrings(statuses)).
		Order("created_at, id").
		Find(&orders).Error
	return orders, err
}

func (r *reportRepository) GetEarningsBetween(ctx context.Context, start, end time.Time, statuses []models.OrderStatus) (models.EarningsTotals, error) {
	var totals models.EarningsTotals
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("COALESCE(SUM(total_amount), 0) AS total_earnings, COUNT(*) AS total_orders").
		Where("created_at BETWEEN ? AND ?", start, end).
		Where("status IN ?", models.StatusStrings(statuses)).
		Scan(&totals).Error
	return totals, err
}

func (r *reportRepository) GetTopSellingProducts(ctx context.Context, statuses []models.OrderStatus, limit int) ([]models.ProductSales, error) {
	var rows []models.ProductSales
	err := r.committedItems(ctx, statuses).
		Select("products.id AS product_id, products.name AS product_name, SUM(order_items.quantity) AS total_sold, SUM(order_items.quantity * order_items.price_at_purchase) AS total_revenue").
		Group("products.id, products.name").
		Order("total_sold DESC, products.id").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *reportRepository) GetSalesByCategory(ctx context.Context, statuses []models.OrderStatus) ([]models.DimensionSales, error) {
	var rows []models.DimensionSales
	err := r.committedItems(ctx, statuses).
		Joins("JOIN categories ON categories.id = products.category_id").
		Select("categories.name AS name, SUM(order_items.quantity) AS total_quantity, SUM(order_items.quantity * order_items.price_at_purchase) AS total_revenue").
		Group("categories.name").
		Order("total_revenue DESC, categories.name").
		Scan(&rows).Error
	return rows, err
}

func (r *reportRepository) GetSalesByBrand(ctx context.Context, statuses []models.OrderStatus) ([]models.DimensionSales, error) {
	var rows []models.DimensionSales
	err := r.committedItems(ctx, statuses).
		Joins("JOIN brands ON brands.id = products.brand_id").
		Select("brands.name AS name, SUM(order_items.quantity) AS total_quantity, SUM(order_items.quantity * order_items.price_at_purchase) AS total_revenue").
		Group("brands.name").
		Order("total_revenue DESC, brands.name").
		Scan(&rows).Error
	return rows, err
}

func (r *reportRepository) GetStatusSummary(ctx context.Context) ([]models.StatusTotals, error) {
	var rows []models.StatusTotals
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(total_amount), 0) AS total_amount").
		Group("status").
		Order("status").
		Scan(&rows).Error
	return rows, err
}

func (r *reportRepository) committedItems(ctx context.Context, statuses []models.OrderStatus) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("order_items").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Joins("JOIN products ON products.id = order_items.product_id").
		Where("orders.status IN ?", models.StatusStrings(statuses))
}
