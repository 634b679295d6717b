package repository

import (
	"context"
	"time"

	"webstore/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductFilter narrows a product search. Empty fields do not filter. Text
// fields match case-insensitively on a substring.
type ProductFilter struct {
	Gender   string
	Category string
	Brand    string
	Size     string
	Color    string
	PriceMin *decimal.Decimal
	PriceMax *decimal.Decimal
}

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id uint) (*models.Product, error)
	// LockByIDs reads the given products with FOR UPDATE in ascending id order.
	LockByIDs(ctx context.Context, ids []uint) ([]models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	UpdateDiscount(ctx context.Context, id uint, discount decimal.Decimal) error
	Search(ctx context.Context, filter ProductFilter) ([]models.Product, error)
	Delete(ctx context.Context, id uint) error
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Omit("Category", "Brand").Create(product).Error
}

func (r *productRepository) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	err := r.withDetails(ctx).First(&product, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &product, nil
}

func (r *productRepository) LockByIDs(ctx context.Context, ids []uint) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id").
		Find(&products).Error
	return products, err
}

// Update writes the descriptive fields and price. initial_quantity is never
// touched. Sizes and colors are replaced when the slices are non-nil.
func (r *productRepository) Update(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Product{}).
			Where("id = ?", product.ID).
			Updates(map[string]interface{}{
				"name":                product.Name,
				"description":         product.Description,
				"price":               product.Price,
				"discount_percentage": product.DiscountPercentage,
				"gender":              product.Gender,
				"category_id":         product.CategoryID,
				"brand_id":            product.BrandID,
				"updated_at":          time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if product.Sizes != nil {
			if err := tx.Model(product).Association("Sizes").Replace(product.Sizes); err != nil {
				return err
			}
		}
		if product.Colors != nil {
			if err := tx.Model(product).Association("Colors").Replace(product.Colors); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *productRepository) UpdateDiscount(ctx context.Context, id uint, discount decimal.Decimal) error {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"discount_percentage": discount, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *productRepository) Search(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	query := r.withDetails(ctx)

	if filter.Gender != "" {
		query = query.Where("products.gender ILIKE ?", like(filter.Gender))
	}
	if filter.Category != "" {
		query = query.Where("products.category_id IN (?)",
			r.db.Model(&models.Category{}).Select("id").Where("name ILIKE ?", like(filter.Category)))
	}
	if filter.Brand != "" {
		query = query.Where("products.brand_id IN (?)",
			r.db.Model(&models.Brand{}).Select("id").Where("name ILIKE ?", like(filter.Brand)))
	}
	if filter.Size != "" {
		query = query.Where("products.id IN (?)",
			r.db.Table("product_sizes").
				Select("product_sizes.product_id").
				Joins("JOIN sizes ON sizes.id = product_sizes.size_id").
				Where("sizes.name ILIKE ?", like(filter.Size)))
	}
	if filter.Color != "" {
		query = query.Where("products.id IN (?)",
			r.db.Table("product_colors").
				Select("product_colors.product_id").
				Joins("JOIN colors ON colors.id = product_colors.color_id").
				Where("colors.name ILIKE ?", like(filter.Color)))
	}
	if filter.PriceMin != nil {
		query = query.Where("products.price >= ?", *filter.PriceMin)
	}
	if filter.PriceMax != nil {
		query = query.Where("products.price <= ?", *filter.PriceMax)
	}

	var products []models.Product
	err := query.Order("products.id").Find(&products).Error
	return products, err
}

// Delete removes the product and its size and color links. Products that
// order items still reference are protected by the foreign key.
func (r *productRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Select("Sizes", "Colors").Delete(&models.Product{ID: id})
	if res.Error != nil {
		return inUse(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *productRepository) withDetails(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Category").
		Preload("Brand").
		Preload("Sizes", func(db *gorm.DB) *gorm.DB { return db.Order("sizes.id") }).
		Preload("Colors", func(db *gorm.DB) *gorm.DB { return db.Order("colors.id") })
}

func like(s string) string {
	return "%" + s + "%"
}
