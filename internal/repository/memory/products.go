package memory

import (
	"context"
	"strings"

	"webstore/internal/models"
	"webstore/internal/repository"

	"github.com/shopspring/decimal"
)

type productRepository struct{ *Store }

func (r *productRepository) Create(ctx context.Context, product *models.Product) error {
	defer r.lock()()

	if product.CreatedAt.IsZero() {
		product.CreatedAt = r.now()
	}
	product.UpdatedAt = product.CreatedAt
	product.ID = r.data.next("products")
	r.data.products[product.ID] = r.stored(*product)
	return nil
}

func (r *productRepository) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	defer r.lock()()

	product, ok := r.data.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	product = r.detailed(product)
	return &product, nil
}

func (r *productRepository) LockByIDs(ctx context.Context, ids []uint) ([]models.Product, error) {
	defer r.lock()()

	want := make(map[uint]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	products := []models.Product{}
	for _, id := range sortedKeys(r.data.products) {
		if want[id] {
			products = append(products, r.detailed(r.data.products[id]))
		}
	}
	return products, nil
}

func (r *productRepository) Update(ctx context.Context, product *models.Product) error {
	defer r.lock()()

	current, ok := r.data.products[product.ID]
	if !ok {
		return repository.ErrNotFound
	}
	current.Name = product.Name
	current.Description = product.Description
	current.Price = product.Price
	current.DiscountPercentage = product.DiscountPercentage
	current.Gender = product.Gender
	current.CategoryID = product.CategoryID
	current.BrandID = product.BrandID
	if product.Sizes != nil {
		current.Sizes = product.Sizes
	}
	if product.Colors != nil {
		current.Colors = product.Colors
	}
	current.UpdatedAt = r.now()
	r.data.products[product.ID] = r.stored(current)
	return nil
}

func (r *productRepository) UpdateDiscount(ctx context.Context, id uint, discount decimal.Decimal) error {
	defer r.lock()()

	product, ok := r.data.products[id]
	if !ok {
		return repository.ErrNotFound
	}
	product.DiscountPercentage = discount
	product.UpdatedAt = r.now()
	r.data.products[id] = product
	return nil
}

func (r *productRepository) Search(ctx context.Context, filter repository.ProductFilter) ([]models.Product, error) {
	defer r.lock()()

	products := []models.Product{}
	for _, id := range sortedKeys(r.data.products) {
		product := r.detailed(r.data.products[id])
		if matches(product, filter) {
			products = append(products, product)
		}
	}
	return products, nil
}

func (r *productRepository) Delete(ctx context.Context, id uint) error {
	defer r.lock()()

	if _, ok := r.data.products[id]; !ok {
		return repository.ErrNotFound
	}
	for _, item := range r.data.items {
		if item.ProductID == id {
			return repository.ErrInUse
		}
	}
	delete(r.data.products, id)
	return nil
}

func matches(p models.Product, f repository.ProductFilter) bool {
	if f.Gender != "" && !contains(p.Gender, f.Gender) {
		return false
	}
	if f.Category != "" && (p.Category == nil || !contains(p.Category.Name, f.Category)) {
		return false
	}
	if f.Brand != "" && (p.Brand == nil || !contains(p.Brand.Name, f.Brand)) {
		return false
	}
	if f.Size != "" && !anyName(p.Sizes, func(s models.Size) string { return s.Name }, f.Size) {
		return false
	}
	if f.Color != "" && !anyName(p.Colors, func(c models.Color) string { return c.Name }, f.Color) {
		return false
	}
	if f.PriceMin != nil && p.Price.LessThan(*f.PriceMin) {
		return false
	}
	if f.PriceMax != nil && p.Price.GreaterThan(*f.PriceMax) {
		return false
	}
	return true
}

func anyName[T any](values []T, name func(T) string, needle string) bool {
	for _, v := range values {
		if contains(name(v), needle) {
			return true
		}
	}
	return false
}

func contains(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// stored strips associations that live in their own tables.
func (r *productRepository) stored(p models.Product) models.Product {
	p.Category = nil
	p.Brand = nil
	p.Sizes = append([]models.Size(nil), p.Sizes...)
	p.Colors = append([]models.Color(nil), p.Colors...)
	return p
}

func (r *productRepository) detailed(p models.Product) models.Product {
	if c, ok := r.data.categories[p.CategoryID]; ok {
		p.Category = &c
	}
	if b, ok := r.data.brands[p.BrandID]; ok {
		p.Brand = &b
	}
	sizes := make([]models.Size, 0, len(p.Sizes))
	for _, s := range p.Sizes {
		if full, ok := r.data.sizes[s.ID]; ok {
			s = full
		}
		sizes = append(sizes, s)
	}
	colors := make([]models.Color, 0, len(p.Colors))
	for _, c := range p.Colors {
		if full, ok := r.data.colors[c.ID]; ok {
			c = full
		}
		colors = append(colors, c)
	}
	p.Sizes = sizes
	p.Colors = colors
	return p
}
