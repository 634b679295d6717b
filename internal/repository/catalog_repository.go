package repository

import (
	"context"

	"webstore/internal/models"

	"gorm.io/gorm"
)

type CatalogRepository interface {
	CreateCategory(ctx context.Context, category *models.Category) error
	GetCategories(ctx context.Context) ([]models.Category, error)
	GetCategoryByID(ctx context.Context, id uint) (*models.Category, error)
	CreateBrand(ctx context.Context, brand *models.Brand) error
	GetBrands(ctx context.Context) ([]models.Brand, error)
	GetBrandByID(ctx context.Context, id uint) (*models.Brand, error)
	CreateSize(ctx context.Context, size *models.Size) error
	GetSizes(ctx context.Context) ([]models.Size, error)
	GetSizesByIDs(ctx context.Context, ids []uint) ([]models.Size, error)
	CreateColor(ctx context.Context, color *models.Color) error
	GetColors(ctx context.Context) ([]models.Color, error)
	GetColorsByIDs(ctx context.Context, ids []uint) ([]models.Color, error)
}

type catalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) CreateCategory(ctx context.Context, category *models.Category) error {
	return duplicate(r.db.WithContext(ctx).Create(category).Error)
}

func (r *catalogRepository) GetCategories(ctx context.Context) ([]models.Category, error) {
	return findAll[models.Category](ctx, r.db)
}

func (r *catalogRepository) GetCategoryByID(ctx context.Context, id uint) (*models.Category, error) {
	return findByID[models.Category](ctx, r.db, id)
}

func (r *catalogRepository) CreateBrand(ctx context.Context, brand *models.Brand) error {
	return duplicate(r.db.WithContext(ctx).Create(brand).Error)
}

func (r *catalogRepository) GetBrands(ctx context.Context) ([]models.Brand, error) {
	return findAll[models.Brand](ctx, r.db)
}

func (r *catalogRepository) GetBrandByID(ctx context.Context, id uint) (*models.Brand, error) {
	return findByID[models.Brand](ctx, r.db, id)
}

func (r *catalogRepository) CreateSize(ctx context.Context, size *models.Size) error {
	return duplicate(r.db.WithContext(ctx).Create(size).Error)
}

func (r *catalogRepository) GetSizes(ctx context.Context) ([]models.Size, error) {
	return findAll[models.Size](ctx, r.db)
}

func (r *catalogRepository) GetSizesByIDs(ctx context.Context, ids []uint) ([]models.Size, error) {
	return findByIDs[models.Size](ctx, r.db, ids)
}

func (r *catalogRepository) CreateColor(ctx context.Context, color *models.Color) error {
	return duplicate(r.db.WithContext(ctx).Create(color).Error)
}

func (r *catalogRepository) GetColors(ctx context.Context) ([]models.Color, error) {
	return findAll[models.Color](ctx, r.db)
}

func (r *catalogRepository) GetColorsByIDs(ctx context.Context, ids []uint) ([]models.Color, error) {
	return findByIDs[models.Color](ctx, r.db, ids)
}

func findAll[T any](ctx context.Context, db *gorm.DB) ([]T, error) {
	var rows []T
	err := db.WithContext(ctx).Order("id").Find(&rows).Error
	return rows, err
}

func findByID[T any](ctx context.Context, db *gorm.DB, id uint) (*T, error) {
	var row T
	if err := db.WithContext(ctx).First(&row, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &row, nil
}

func findByIDs[T any](ctx context.Context, db *gorm.DB, ids []uint) ([]T, error) {
	rows := []T{}
	if len(ids) == 0 {
		return rows, nil
	}
	err := db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&rows).Error
	return rows, err
}
