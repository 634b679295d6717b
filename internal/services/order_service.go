package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"webstore/internal/models"
	"webstore/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var fieldValidator = validator.New()

type ClientInfo struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type OrderLine struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

type CreateOrderRequest struct {
	Client ClientInfo  `json:"client"`
	Items  []OrderLine `json:"items"`
}

func (r CreateOrderRequest) validate() error {
	if strings.TrimSpace(r.Client.Name) == "" || strings.TrimSpace(r.Client.Email) == "" {
		return invalidArgument("client name and email are required")
	}
	if err := fieldValidator.Var(strings.TrimSpace(r.Client.Email), "email"); err != nil {
		return invalidArgument("invalid client email %q", r.Client.Email)
	}
	if len(r.Items) == 0 {
		return invalidArgument("order must contain at least one item")
	}
	for _, line := range r.Items {
		if line.ProductID == 0 {
			return invalidArgument("product_id is required")
		}
		if line.Quantity <= 0 {
			return invalidArgument("quantity for product %d must be positive", line.ProductID)
		}
	}
	return nil
}

type OrderService interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*models.Order, error)
	SetOrderStatus(ctx context.Context, id uint, status string) (*models.Order, error)
	DeleteOrder(ctx context.Context, id uint) error
	GetOrderByID(ctx context.Context, id uint) (*models.Order, error)
	GetAllOrders(ctx context.Context) ([]models.Order, error)
	GetClientOrders(ctx context.Context, email string) (*models.Client, []models.Order, error)
}

type orderService struct {
	store  repository.Store
	cache  ReportCache
	events EventPublisher
	logger *zap.Logger
	now    func() time.Time
}

func NewOrderService(store repository.Store, cache ReportCache, events EventPublisher, logger *zap.Logger) OrderService {
	if cache == nil {
		cache = NoopCache()
	}
	if events == nil {
		events = NoopPublisher()
	}
	return &orderService{
		store:  store,
		cache:  cache,
		events: events,
		logger: logger.Named("orders"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// CreateOrder validates the cart against stock and commits the client, the
// order and its items in one transaction. Product rows are locked so that
// concurrent orders for the same units are decided one at a time.
func (s *orderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (order *models.Order, err error) {
	ctx, span := tracer.Start(ctx, "order.create")
	defer func() { endSpan(span, err) }()

	if err := req.validate(); err != nil {
		return nil, err
	}

	// Cart order is kept for error reporting; locks are taken in id order.
	var cartOrder []uint
	requested := map[uint]int{}
	for _, line := range req.Items {
		if _, seen := requested[line.ProductID]; !seen {
			cartOrder = append(cartOrder, line.ProductID)
		}
		if line.Quantity > math.MaxInt-requested[line.ProductID] {
			return nil, invalidArgument("total quantity for product %d is too large", line.ProductID)
		}
		requested[line.ProductID] += line.Quantity
	}
	ids := append([]uint(nil), cartOrder...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	span.SetAttributes(attribute.Int("order.lines", len(req.Items)), attribute.Int("order.products", len(ids)))

	err = s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		client, err := tx.Clients().FirstOrCreate(ctx, &models.Client{
			Name:    strings.TrimSpace(req.Client.Name),
			Email:   strings.TrimSpace(req.Client.Email),
			Phone:   req.Client.Phone,
			Address: req.Client.Address,
		})
		if err != nil {
			return fmt.Errorf("failed to resolve client: %w", err)
		}

		locked, err := tx.Products().LockByIDs(ctx, ids)
		if err != nil {
			return fmt.Errorf("failed to lock products: %w", err)
		}
		products := make(map[uint]models.Product, len(locked))
		for _, p := range locked {
			products[p.ID] = p
		}
		for _, id := range cartOrder {
			if _, ok := products[id]; !ok {
				return notFound(repository.ErrNotFound, "Product %d not found", id)
			}
		}

		levels, err := tx.Stock().Levels(ctx, models.OutstandingStatuses, ids)
		if err != nil {
			return fmt.Errorf("failed to read stock: %w", err)
		}
		available := make(map[uint]int, len(levels))
		for _, l := range levels {
			available[l.ProductID] = l.CurrentQuantity
		}
		for _, id := range cartOrder {
			if requested[id] > available[id] {
				return &InsufficientStockError{
					ProductID:   id,
					ProductName: products[id].Name,
					Available:   max(available[id], 0),
					Requested:   requested[id],
				}
			}
		}

		o := &models.Order{
			OrderNumber: s.newOrderNumber(),
			ClientID:    client.ID,
			Status:      models.OrderPending,
			TotalAmount: decimal.Zero,
		}
		for _, line := range req.Items {
			product := products[line.ProductID]
			item := models.OrderItem{
				ProductID:       product.ID,
				Quantity:        line.Quantity,
				PriceAtPurchase: product.DiscountedPrice(),
			}
			o.TotalAmount = o.TotalAmount.Add(item.Subtotal())
			o.Items = append(o.Items, item)
		}
		if err := tx.Orders().Create(ctx, o); err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		o.Client = client
		for i := range o.Items {
			product := products[o.Items[i].ProductID]
			o.Items[i].Product = &product
		}
		order = o
		return nil
	})
	if err != nil {
		var stockErr *InsufficientStockError
		if errors.As(err, &stockErr) {
			s.logger.Info("order rejected",
				zap.Uint("product_id", stockErr.ProductID),
				zap.Int("available", stockErr.Available),
				zap.Int("requested", stockErr.Requested))
		}
		return nil, err
	}

	span.SetAttributes(attribute.Int("order.id", int(order.ID)), attribute.String("order.number", order.OrderNumber))
	s.logger.Info("order created",
		zap.Uint("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.String("total_amount", order.TotalAmount.StringFixed(2)))

	s.afterWrite(ctx, OrderEvent{
		Type:        EventOrderCreated,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		ClientEmail: order.Client.Email,
		Status:      order.Status,
		TotalAmount: order.TotalAmount.StringFixed(2),
	})
	return order, nil
}

// SetOrderStatus moves an order along the lifecycle. Setting the status an
// order already has changes nothing.
func (s *orderService) SetOrderStatus(ctx context.Context, id uint, status string) (order *models.Order, err error) {
	ctx, span := tracer.Start(ctx, "order.set_status")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.Int("order.id", int(id)), attribute.String("order.status", status))

	next, ok := models.ParseOrderStatus(status)
	if !ok {
		return nil, invalidArgument("Invalid status %q", status)
	}

	var previous models.OrderStatus
	err = s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		current, err := tx.Orders().LockByID(ctx, id)
		if err != nil {
			return notFound(err, "Order not found")
		}
		previous = current.Status
		if current.Status == next {
			return nil
		}
		if !current.Status.CanTransitionTo(next) {
			return fmt.Errorf("%w: cannot change order from %s to %s", ErrInvalidTransition, current.Status, next)
		}
		return tx.Orders().UpdateStatus(ctx, id, next)
	})
	if err != nil {
		return nil, err
	}

	order, err = s.store.Orders().GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Order not found")
	}
	if previous == next {
		return order, nil
	}

	s.logger.Info("order status changed",
		zap.Uint("order_id", id),
		zap.String("from", string(previous)),
		zap.String("to", string(next)))
	s.afterWrite(ctx, OrderEvent{
		Type:           EventOrderStatusChanged,
		OrderID:        order.ID,
		OrderNumber:    order.OrderNumber,
		Status:         next,
		PreviousStatus: previous,
		TotalAmount:    order.TotalAmount.StringFixed(2),
	})
	return order, nil
}

// DeleteOrder removes an order and its items. Stock is derived, so nothing
// on the products changes.
func (s *orderService) DeleteOrder(ctx context.Context, id uint) (err error) {
	ctx, span := tracer.Start(ctx, "order.delete")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.Int("order.id", int(id)))

	var deleted *models.Order
	err = s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		order, err := tx.Orders().LockByID(ctx, id)
		if err != nil {
			return notFound(err, "Order not found")
		}
		if err := tx.Orders().Delete(ctx, id); err != nil {
			return notFound(err, "Order not found")
		}
		deleted = order
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("order deleted", zap.Uint("order_id", id))
	s.afterWrite(ctx, OrderEvent{
		Type:        EventOrderDeleted,
		OrderID:     deleted.ID,
		OrderNumber: deleted.OrderNumber,
		Status:      deleted.Status,
		TotalAmount: deleted.TotalAmount.StringFixed(2),
	})
	return nil
}

func (s *orderService) GetOrderByID(ctx context.Context, id uint) (*models.Order, error) {
	order, err := s.store.Orders().GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Order not found")
	}
	return order, nil
}

func (s *orderService) GetAllOrders(ctx context.Context) ([]models.Order, error) {
	return s.store.Orders().GetAll(ctx)
}

func (s *orderService) GetClientOrders(ctx context.Context, email string) (*models.Client, []models.Order, error) {
	client, err := s.store.Clients().GetByEmail(ctx, email)
	if err != nil {
		return nil, nil, notFound(err, "Client not found")
	}
	orders, err := s.store.Orders().GetByClientID(ctx, client.ID)
	if err != nil {
		return nil, nil, err
	}
	return client, orders, nil
}

// afterWrite runs the side effects of a committed order change. Failures are
// logged; the change itself is already durable.
func (s *orderService) afterWrite(ctx context.Context, event OrderEvent) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("failed to invalidate report cache", zap.Error(err))
	}
	event.OccurredAt = s.now()
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish order event",
			zap.String("type", string(event.Type)),
			zap.Uint("order_id", event.OrderID),
			zap.Error(err))
	}
}

func (s *orderService) newOrderNumber() string {
	return fmt.Sprintf("ORD-%s-%s", s.now().Format("20060102"), strings.ToUpper(uuid.NewString()[:8]))
}
