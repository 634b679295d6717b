package memory

import (
	"context"
	"sort"

	"webstore/internal/models"
	"webstore/internal/repository"
)

type orderRepository struct{ *Store }

func (r *orderRepository) Create(ctx context.Context, order *models.Order) error {
	defer r.lock()()

	if _, ok := r.data.clients[order.ClientID]; !ok {
		return repository.ErrNotFound
	}
	for _, item := range order.Items {
		if _, ok := r.data.products[item.ProductID]; !ok {
			return repository.ErrNotFound
		}
	}
	for _, existing := range r.data.orders {
		if existing.OrderNumber == order.OrderNumber {
			return repository.ErrDuplicate
		}
	}

	if order.CreatedAt.IsZero() {
		order.CreatedAt = r.now()
	}
	order.UpdatedAt = order.CreatedAt
	if order.Status == "" {
		order.Status = models.OrderPending
	}
	order.ID = r.data.next("orders")

	stored := *order
	stored.Client = nil
	stored.Items = nil
	r.data.orders[order.ID] = stored

	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID
		item.ID = r.data.next("order_items")
		row := *item
		row.Product = nil
		r.data.items[item.ID] = row
	}
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id uint) (*models.Order, error) {
	defer r.lock()()

	order, ok := r.data.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	order = r.detailed(order)
	return &order, nil
}

func (r *orderRepository) LockByID(ctx context.Context, id uint) (*models.Order, error) {
	defer r.lock()()
	return lookup(r.data.orders, id)
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id uint, status models.OrderStatus) error {
	defer r.lock()()

	order, ok := r.data.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	order.Status = status
	order.UpdatedAt = r.now()
	r.data.orders[id] = order
	return nil
}

func (r *orderRepository) Delete(ctx context.Context, id uint) error {
	defer r.lock()()

	if _, ok := r.data.orders[id]; !ok {
		return repository.ErrNotFound
	}
	for itemID, item := range r.data.items {
		if item.OrderID == id {
			delete(r.data.items, itemID)
		}
	}
	delete(r.data.orders, id)
	return nil
}

func (r *orderRepository) GetAll(ctx context.Context) ([]models.Order, error) {
	defer r.lock()()
	return r.newestFirst(func(models.Order) bool { return true }), nil
}

func (r *orderRepository) GetByClientID(ctx context.Context, clientID uint) ([]models.Order, error) {
	defer r.lock()()
	return r.newestFirst(func(o models.Order) bool { return o.ClientID == clientID }), nil
}

func (r *orderRepository) newestFirst(keep func(models.Order) bool) []models.Order {
	orders := []models.Order{}
	for _, order := range r.data.orders {
		if keep(order) {
			orders = append(orders, r.detailed(order))
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].CreatedAt.After(orders[j].CreatedAt)
		}
		return orders[i].ID > orders[j].ID
	})
	return orders
}

func (r *orderRepository) detailed(order models.Order) models.Order {
	if c, ok := r.data.clients[order.ClientID]; ok {
		order.Client = &c
	}
	order.Items = r.itemsOf(order.ID, true)
	return order
}

func (s *Store) itemsOf(orderID uint, withProduct bool) []models.OrderItem {
	items := []models.OrderItem{}
	for _, id := range sortedKeys(s.data.items) {
		item := s.data.items[id]
		if item.OrderID != orderID {
			continue
		}
		if withProduct {
			if p, ok := s.data.products[item.ProductID]; ok {
				p.Category, p.Brand = nil, nil
				item.Product = &p
			}
		}
		items = append(items, item)
	}
	return items
}
