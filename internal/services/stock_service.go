package services

import (
	"context"

	"webstore/internal/models"
	"webstore/internal/repository"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const instrumentationName = "webstore/internal/services"

var tracer = otel.Tracer(instrumentationName)

type StockService interface {
	// GetCurrentQuantity derives the committed stock position of one product.
	GetCurrentQuantity(ctx context.Context, productID uint) (*models.StockLevel, error)
	// GetStockLevels derives the committed stock of the given products, or of
	// every product when ids is empty.
	GetStockLevels(ctx context.Context, ids []uint) (map[uint]models.StockLevel, error)
}

type stockService struct {
	store repository.Store
}

func NewStockService(store repository.Store) StockService {
	return &stockService{store: store}
}

func (s *stockService) GetCurrentQuantity(ctx context.Context, productID uint) (level *models.StockLevel, err error) {
	ctx, span := tracer.Start(ctx, "stock.current_quantity")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.Int("product.id", int(productID)))

	levels, err := s.store.Stock().Levels(ctx, models.CommittedStatuses, []uint{productID})
	if err != nil {
		return nil, err
	}
	if len(levels) == 0 {
		return nil, notFound(repository.ErrNotFound, "Product %d not found", productID)
	}
	span.SetAttributes(attribute.Int("stock.current_quantity", levels[0].CurrentQuantity))
	return &levels[0], nil
}

func (s *stockService) GetStockLevels(ctx context.Context, ids []uint) (map[uint]models.StockLevel, error) {
	levels, err := s.store.Stock().Levels(ctx, models.CommittedStatuses, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[uint]models.StockLevel, len(levels))
	for _, l := range levels {
		out[l.ProductID] = l
	}
	return out, nil
}
