package memory

import (
	"context"
	"sort"
	"time"

	"webstore/internal/models"

	"github.com/shopspring/decimal"
)

type reportRepository struct{ *Store }

func (r *reportRepository) GetOrdersBetween(ctx context.Context, start, end time.Time, statuses []models.OrderStatus) ([]models.Order, error) {
	defer r.lock()()
	orders := r.ordersBetween(start, end, statuses)
	for i := range orders {
		if c, ok := r.data.clients[orders[i].ClientID]; ok {
			orders[i].Client = &c
		}
	}
	return orders, nil
}

func (r *reportRepository) GetEarningsBetween(ctx context.Context, start, end time.Time, statuses []models.OrderStatus) (models.EarningsTotals, error) {
	defer r.lock()()

	totals := models.EarningsTotals{TotalEarnings: decimal.Zero}
	for _, o := range r.ordersBetween(start, end, statuses) {
		totals.TotalEarnings = totals.TotalEarnings.Add(o.TotalAmount)
		totals.TotalOrders++
	}
	return totals, nil
}

func (r *reportRepository) GetTopSellingProducts(ctx context.Context, statuses []models.OrderStatus, limit int) ([]models.ProductSales, error) {
	defer r.lock()()

	byProduct := map[uint]*models.ProductSales{}
	r.eachItem(statuses, func(item models.OrderItem, p models.Product) {
		row, ok := byProduct[p.ID]
		if !ok {
			row = &models.ProductSales{ProductID: p.ID, ProductName: p.Name, TotalRevenue: decimal.Zero}
			byProduct[p.ID] = row
		}
		row.TotalSold += int64(item.Quantity)
		row.TotalRevenue = row.TotalRevenue.Add(item.Subtotal())
	})

	rows := make([]models.ProductSales, 0, len(byProduct))
	for _, row := range byProduct {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TotalSold != rows[j].TotalSold {
			return rows[i].TotalSold > rows[j].TotalSold
		}
		return rows[i].ProductID < rows[j].ProductID
	})
	if limit >= 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (r *reportRepository) GetSalesByCategory(ctx context.Context, statuses []models.OrderStatus) ([]models.DimensionSales, error) {
	defer r.lock()()
	return r.salesBy(statuses, func(p models.Product) (string, bool) {
		c, ok := r.data.categories[p.CategoryID]
		return c.Name, ok
	}), nil
}

func (r *reportRepository) GetSalesByBrand(ctx context.Context, statuses []models.OrderStatus) ([]models.DimensionSales, error) {
	defer r.lock()()
	return r.salesBy(statuses, func(p models.Product) (string, bool) {
		b, ok := r.data.brands[p.BrandID]
		return b.Name, ok
	}), nil
}

func (r *reportRepository) GetStatusSummary(ctx context.Context) ([]models.StatusTotals, error) {
	defer r.lock()()

	byStatus := map[models.OrderStatus]*models.StatusTotals{}
	for _, o := range r.data.orders {
		row, ok := byStatus[o.Status]
		if !ok {
			row = &models.StatusTotals{Status: o.Status, TotalAmount: decimal.Zero}
			byStatus[o.Status] = row
		}
		row.Count++
		row.TotalAmount = row.TotalAmount.Add(o.TotalAmount)
	}
	rows := make([]models.StatusTotals, 0, len(byStatus))
	for _, row := range byStatus {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Status < rows[j].Status })
	return rows, nil
}

func (r *reportRepository) ordersBetween(start, end time.Time, statuses []models.OrderStatus) []models.Order {
	orders := []models.Order{}
	for _, o := range r.data.orders {
		if o.CreatedAt.Before(start) || o.CreatedAt.After(end) || !statusIn(o.Status, statuses) {
			continue
		}
		orders = append(orders, o)
	}
	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].CreatedAt.Before(orders[j].CreatedAt)
		}
		return orders[i].ID < orders[j].ID
	})
	return orders
}

func (r *reportRepository) eachItem(statuses []models.OrderStatus, fn func(models.OrderItem, models.Product)) {
	for _, id := range sortedKeys(r.data.items) {
		item := r.data.items[id]
		order, ok := r.data.orders[item.OrderID]
		if !ok || !statusIn(order.Status, statuses) {
			continue
		}
		if p, ok := r.data.products[item.ProductID]; ok {
			fn(item, p)
		}
	}
}

func (r *reportRepository) salesBy(statuses []models.OrderStatus, dimension func(models.Product) (string, bool)) []models.DimensionSales {
	byName := map[string]*models.DimensionSales{}
	r.eachItem(statuses, func(item models.OrderItem, p models.Product) {
		name, ok := dimension(p)
		if !ok {
			return
		}
		row, ok := byName[name]
		if !ok {
			row = &models.DimensionSales{Name: name, TotalRevenue: decimal.Zero}
			byName[name] = row
		}
		row.TotalQuantity += int64(item.Quantity)
		row.TotalRevenue = row.TotalRevenue.Add(item.Subtotal())
	})

	rows := make([]models.DimensionSales, 0, len(byName))
	for _, row := range byName {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].TotalRevenue.Equal(rows[j].TotalRevenue) {
			return rows[i].TotalRevenue.GreaterThan(rows[j].TotalRevenue)
		}
		return rows[i].Name < rows[j].Name
	})
	return rows
}
