package services

import (
	"context"
	"errors"
	"strings"

	"webstore/internal/models"
	"webstore/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	AvailabilityInStock    = "in_stock"
	AvailabilityOutOfStock = "out_of_stock"
)

var maxDiscount = decimal.NewFromInt(100)

type ProductInput struct {
	Name               string          `json:"name"`
	Description        string          `json:"description"`
	Price              decimal.Decimal `json:"price"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	Gender             string          `json:"gender"`
	InitialQuantity    *int            `json:"initial_quantity"`
	CategoryID         uint            `json:"category_id"`
	BrandID            uint            `json:"brand_id"`
	SizeIDs            []uint          `json:"size_ids"`
	ColorIDs           []uint          `json:"color_ids"`
}

// ProductUpdate is a partial update. Nil fields are left unchanged.
// InitialQuantity is accepted only to reject a change to it.
type ProductUpdate struct {
	Name               *string          `json:"name"`
	Description        *string          `json:"description"`
	Price              *decimal.Decimal `json:"price"`
	DiscountPercentage *decimal.Decimal `json:"discount_percentage"`
	Gender             *string          `json:"gender"`
	InitialQuantity    *int             `json:"initial_quantity"`
	CategoryID         *uint            `json:"category_id"`
	BrandID            *uint            `json:"brand_id"`
	SizeIDs            []uint           `json:"size_ids"`
	ColorIDs           []uint           `json:"color_ids"`
}

type ProductSearch struct {
	repository.ProductFilter
	Availability string
}

type CatalogService interface {
	CreateProduct(ctx context.Context, input ProductInput) (*models.ProductView, error)
	UpdateProduct(ctx context.Context, id uint, update ProductUpdate) (*models.ProductView, error)
	ApplyDiscount(ctx context.Context, id uint, discount decimal.Decimal) (*models.ProductView, error)
	DeleteProduct(ctx context.Context, id uint) error
	GetProduct(ctx context.Context, id uint) (*models.ProductView, error)
	GetAllProducts(ctx context.Context) ([]models.ProductView, error)
	SearchProducts(ctx context.Context, search ProductSearch) ([]models.ProductView, error)

	CreateCategory(ctx context.Context, category *models.Category) error
	GetCategories(ctx context.Context) ([]models.Category, error)
	CreateBrand(ctx context.Context, brand *models.Brand) error
	GetBrands(ctx context.Context) ([]models.Brand, error)
	CreateSize(ctx context.Context, size *models.Size) error
	GetSizes(ctx context.Context) ([]models.Size, error)
	CreateColor(ctx context.Context, color *models.Color) error
	GetColors(ctx context.Context) ([]models.Color, error)
}

type catalogService struct {
	store  repository.Store
	stock  StockService
	cache  ReportCache
	logger *zap.Logger
}

func NewCatalogService(store repository.Store, stock StockService, cache ReportCache, logger *zap.Logger) CatalogService {
	if cache == nil {
		cache = NoopCache()
	}
	return &catalogService{store: store, stock: stock, cache: cache, logger: logger.Named("catalog")}
}

func (s *catalogService) CreateProduct(ctx context.Context, input ProductInput) (*models.ProductView, error) {
	if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.Gender) == "" ||
		input.InitialQuantity == nil || input.CategoryID == 0 || input.BrandID == 0 {
		return nil, invalidArgument("Missing required fields")
	}
	if *input.InitialQuantity < 0 {
		return nil, invalidArgument("initial_quantity must not be negative")
	}
	if err := validatePricing(input.Price, input.DiscountPercentage); err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:               strings.TrimSpace(input.Name),
		Description:        input.Description,
		Price:              input.Price,
		DiscountPercentage: input.DiscountPercentage,
		Gender:             strings.TrimSpace(input.Gender),
		InitialQuantity:    *input.InitialQuantity,
		CategoryID:         input.CategoryID,
		BrandID:            input.BrandID,
	}
	err := s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		if err := s.resolveAssociations(ctx, tx, product, input.SizeIDs, input.ColorIDs); err != nil {
			return err
		}
		return tx.Products().Create(ctx, product)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("product created", zap.Uint("product_id", product.ID), zap.Int("initial_quantity", product.InitialQuantity))
	return s.GetProduct(ctx, product.ID)
}

func (s *catalogService) UpdateProduct(ctx context.Context, id uint, update ProductUpdate) (*models.ProductView, error) {
	err := s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		product, err := tx.Products().GetByID(ctx, id)
		if err != nil {
			return notFound(err, "Product not found")
		}
		if update.InitialQuantity != nil && *update.InitialQuantity != product.InitialQuantity {
			return invalidArgument("initial_quantity cannot be changed after creation")
		}

		if update.Name != nil {
			if strings.TrimSpace(*update.Name) == "" {
				return invalidArgument("name must not be empty")
			}
			product.Name = strings.TrimSpace(*update.Name)
		}
		if update.Description != nil {
			product.Description = *update.Description
		}
		if update.Price != nil {
			product.Price = *update.Price
		}
		if update.DiscountPercentage != nil {
			product.DiscountPercentage = *update.DiscountPercentage
		}
		if update.Gender != nil {
			product.Gender = *update.Gender
		}
		if update.CategoryID != nil {
			product.CategoryID = *update.CategoryID
		}
		if update.BrandID != nil {
			product.BrandID = *update.BrandID
		}
		if err := validatePricing(product.Price, product.DiscountPercentage); err != nil {
			return err
		}

		product.Sizes, product.Colors = nil, nil
		if err := s.resolveAssociations(ctx, tx, product, update.SizeIDs, update.ColorIDs); err != nil {
			return err
		}
		return notFound(tx.Products().Update(ctx, product), "Product not found")
	})
	if err != nil {
		return nil, err
	}

	s.invalidateReports(ctx)
	return s.GetProduct(ctx, id)
}

func (s *catalogService) ApplyDiscount(ctx context.Context, id uint, discount decimal.Decimal) (*models.ProductView, error) {
	if discount.IsNegative() || discount.GreaterThan(maxDiscount) {
		return nil, invalidArgument("discount_percentage must be between 0 and 100")
	}
	if err := s.store.Products().UpdateDiscount(ctx, id, discount); err != nil {
		return nil, notFound(err, "Product not found")
	}
	s.logger.Info("discount applied", zap.Uint("product_id", id), zap.String("discount", discount.String()))
	return s.GetProduct(ctx, id)
}

// DeleteProduct removes a product that no order refers to. Products with
// order history are kept so past orders and reports stay intact.
func (s *catalogService) DeleteProduct(ctx context.Context, id uint) error {
	err := s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		if _, err := tx.Products().LockByIDs(ctx, []uint{id}); err != nil {
			return err
		}
		levels, err := tx.Stock().Levels(ctx, models.AllOrderStatuses, []uint{id})
		if err != nil {
			return err
		}
		if len(levels) == 0 {
			return notFound(repository.ErrNotFound, "Product not found")
		}
		if levels[0].SoldQuantity > 0 {
			return fmtConflict("Product %d has orders and cannot be deleted", id)
		}
		err = tx.Products().Delete(ctx, id)
		if errors.Is(err, repository.ErrInUse) {
			return fmtConflict("Product %d has orders and cannot be deleted", id)
		}
		return notFound(err, "Product not found")
	})
	if err != nil {
		return err
	}
	s.logger.Info("product deleted", zap.Uint("product_id", id))
	return nil
}

func (s *catalogService) GetProduct(ctx context.Context, id uint) (*models.ProductView, error) {
	product, err := s.store.Products().GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Product not found")
	}
	levels, err := s.stock.GetStockLevels(ctx, []uint{id})
	if err != nil {
		return nil, err
	}
	view := newProductView(*product, levels)
	return &view, nil
}

func (s *catalogService) GetAllProducts(ctx context.Context) ([]models.ProductView, error) {
	return s.SearchProducts(ctx, ProductSearch{})
}

// SearchProducts filters the catalog. Availability is evaluated against the
// derived stock, not a stored flag.
func (s *catalogService) SearchProducts(ctx context.Context, search ProductSearch) ([]models.ProductView, error) {
	switch search.Availability {
	case "", AvailabilityInStock, AvailabilityOutOfStock:
	default:
		return nil, invalidArgument("availability must be %s or %s", AvailabilityInStock, AvailabilityOutOfStock)
	}
	if search.PriceMin != nil && search.PriceMax != nil && search.PriceMin.GreaterThan(*search.PriceMax) {
		return nil, invalidArgument("price_min must not exceed price_max")
	}

	products, err := s.store.Products().Search(ctx, search.ProductFilter)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	levels := map[uint]models.StockLevel{}
	if len(ids) > 0 {
		if levels, err = s.stock.GetStockLevels(ctx, ids); err != nil {
			return nil, err
		}
	}

	views := make([]models.ProductView, 0, len(products))
	for _, p := range products {
		view := newProductView(p, levels)
		switch search.Availability {
		case AvailabilityInStock:
			if !*view.InStock {
				continue
			}
		case AvailabilityOutOfStock:
			if *view.InStock {
				continue
			}
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *catalogService) CreateCategory(ctx context.Context, category *models.Category) error {
	if strings.TrimSpace(category.Name) == "" {
		return invalidArgument("Missing name")
	}
	return conflict(s.store.Catalog().CreateCategory(ctx, category), "category %q", category.Name)
}

func (s *catalogService) GetCategories(ctx context.Context) ([]models.Category, error) {
	return s.store.Catalog().GetCategories(ctx)
}

func (s *catalogService) CreateBrand(ctx context.Context, brand *models.Brand) error {
	if strings.TrimSpace(brand.Name) == "" {
		return invalidArgument("Missing name")
	}
	return conflict(s.store.Catalog().CreateBrand(ctx, brand), "brand %q", brand.Name)
}

func (s *catalogService) GetBrands(ctx context.Context) ([]models.Brand, error) {
	return s.store.Catalog().GetBrands(ctx)
}

func (s *catalogService) CreateSize(ctx context.Context, size *models.Size) error {
	if strings.TrimSpace(size.Name) == "" {
		return invalidArgument("Missing name")
	}
	return conflict(s.store.Catalog().CreateSize(ctx, size), "size %q", size.Name)
}

func (s *catalogService) GetSizes(ctx context.Context) ([]models.Size, error) {
	return s.store.Catalog().GetSizes(ctx)
}

func (s *catalogService) CreateColor(ctx context.Context, color *models.Color) error {
	if strings.TrimSpace(color.Name) == "" {
		return invalidArgument("Missing name")
	}
	return conflict(s.store.Catalog().CreateColor(ctx, color), "color %q", color.Name)
}

func (s *catalogService) GetColors(ctx context.Context) ([]models.Color, error) {
	return s.store.Catalog().GetColors(ctx)
}

// resolveAssociations checks the category and brand and loads the sizes and
// colors named by id. Nil id slices leave the product's slices nil.
func (s *catalogService) resolveAssociations(ctx context.Context, tx repository.Store, product *models.Product, sizeIDs, colorIDs []uint) error {
	if _, err := tx.Catalog().GetCategoryByID(ctx, product.CategoryID); err != nil {
		return notFound(err, "Category %d not found", product.CategoryID)
	}
	if _, err := tx.Catalog().GetBrandByID(ctx, product.BrandID); err != nil {
		return notFound(err, "Brand %d not found", product.BrandID)
	}
	if sizeIDs != nil {
		sizes, err := tx.Catalog().GetSizesByIDs(ctx, sizeIDs)
		if err != nil {
			return err
		}
		if len(sizes) != len(unique(sizeIDs)) {
			return notFound(repository.ErrNotFound, "one or more sizes not found")
		}
		product.Sizes = sizes
	}
	if colorIDs != nil {
		colors, err := tx.Catalog().GetColorsByIDs(ctx, colorIDs)
		if err != nil {
			return err
		}
		if len(colors) != len(unique(colorIDs)) {
			return notFound(repository.ErrNotFound, "one or more colors not found")
		}
		product.Colors = colors
	}
	return nil
}

func (s *catalogService) invalidateReports(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("failed to invalidate report cache", zap.Error(err))
	}
}

func validatePricing(price, discount decimal.Decimal) error {
	if price.IsNegative() {
		return invalidArgument("price must not be negative")
	}
	if discount.IsNegative() || discount.GreaterThan(maxDiscount) {
		return invalidArgument("discount_percentage must be between 0 and 100")
	}
	return nil
}

func newProductView(p models.Product, levels map[uint]models.StockLevel) models.ProductView {
	level, ok := levels[p.ID]
	if !ok {
		level = models.StockLevel{ProductID: p.ID, InitialQuantity: p.InitialQuantity}
		level.Derive()
	}
	current, inStock := level.CurrentQuantity, level.InStock
	return models.ProductView{
		Product:         p,
		DiscountedPrice: p.DiscountedPrice(),
		CurrentQuantity: &current,
		InStock:         &inStock,
	}
}

func unique(ids []uint) map[uint]struct{} {
	set := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
