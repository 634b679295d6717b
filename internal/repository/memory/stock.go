package memory

import (
	"context"

	"webstore/internal/models"
)

type stockRepository struct{ *Store }

func (r *stockRepository) Levels(ctx context.Context, statuses []models.OrderStatus, productIDs []uint) ([]models.StockLevel, error) {
	defer r.lock()()

	sold := r.soldByProduct(statuses)

	ids := productIDs
	if len(ids) == 0 {
		ids = sortedKeys(r.data.products)
	}
	want := make(map[uint]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}

	levels := []models.StockLevel{}
	for _, id := range sortedKeys(r.data.products) {
		if !want[id] {
			continue
		}
		p := r.data.products[id]
		level := models.StockLevel{
			ProductID:       p.ID,
			Name:            p.Name,
			InitialQuantity: p.InitialQuantity,
			SoldQuantity:    sold[p.ID],
		}
		level.Derive()
		levels = append(levels, level)
	}
	return levels, nil
}

func (s *Store) soldByProduct(statuses []models.OrderStatus) map[uint]int {
	sold := map[uint]int{}
	for _, item := range s.data.items {
		order, ok := s.data.orders[item.OrderID]
		if ok && statusIn(order.Status, statuses) {
			sold[item.ProductID] += item.Quantity
		}
	}
	return sold
}
