package memory

import (
	"context"
	"strings"

	"webstore/internal/models"
	"webstore/internal/repository"
)

type catalogRepository struct{ *Store }

func (r *catalogRepository) CreateCategory(ctx context.Context, category *models.Category) error {
	defer r.lock()()
	return insertNamed(r.data, "categories", r.data.categories, category, func(c *models.Category) (*uint, string) { return &c.ID, c.Name })
}

func (r *catalogRepository) GetCategories(ctx context.Context) ([]models.Category, error) {
	defer r.lock()()
	return values(r.data.categories), nil
}

func (r *catalogRepository) GetCategoryByID(ctx context.Context, id uint) (*models.Category, error) {
	defer r.lock()()
	return lookup(r.data.categories, id)
}

func (r *catalogRepository) CreateBrand(ctx context.Context, brand *models.Brand) error {
	defer r.lock()()
	return insertNamed(r.data, "brands", r.data.brands, brand, func(b *models.Brand) (*uint, string) { return &b.ID, b.Name })
}

func (r *catalogRepository) GetBrands(ctx context.Context) ([]models.Brand, error) {
	defer r.lock()()
	return values(r.data.brands), nil
}

func (r *catalogRepository) GetBrandByID(ctx context.Context, id uint) (*models.Brand, error) {
	defer r.lock()()
	return lookup(r.data.brands, id)
}

func (r *catalogRepository) CreateSize(ctx context.Context, size *models.Size) error {
	defer r.lock()()
	return insertNamed(r.data, "sizes", r.data.sizes, size, func(s *models.Size) (*uint, string) { return &s.ID, s.Name })
}

func (r *catalogRepository) GetSizes(ctx context.Context) ([]models.Size, error) {
	defer r.lock()()
	return values(r.data.sizes), nil
}

func (r *catalogRepository) GetSizesByIDs(ctx context.Context, ids []uint) ([]models.Size, error) {
	defer r.lock()()
	return subset(r.data.sizes, ids), nil
}

func (r *catalogRepository) CreateColor(ctx context.Context, color *models.Color) error {
	defer r.lock()()
	return insertNamed(r.data, "colors", r.data.colors, color, func(c *models.Color) (*uint, string) { return &c.ID, c.Name })
}

func (r *catalogRepository) GetColors(ctx context.Context) ([]models.Color, error) {
	defer r.lock()()
	return values(r.data.colors), nil
}

func (r *catalogRepository) GetColorsByIDs(ctx context.Context, ids []uint) ([]models.Color, error) {
	defer r.lock()()
	return subset(r.data.colors, ids), nil
}

// insertNamed assigns the next id and stores row, rejecting a name that is
// already taken in the table.
func insertNamed[T any](data *state, table string, rows map[uint]T, row *T, key func(*T) (*uint, string)) error {
	id, name := key(row)
	for _, existing := range rows {
		existing := existing
		if _, other := key(&existing); strings.EqualFold(other, name) {
			return repository.ErrDuplicate
		}
	}
	*id = data.next(table)
	rows[*id] = *row
	return nil
}

func values[T any](rows map[uint]T) []T {
	out := make([]T, 0, len(rows))
	for _, id := range sortedKeys(rows) {
		out = append(out, rows[id])
	}
	return out
}

func lookup[T any](rows map[uint]T, id uint) (*T, error) {
	row, ok := rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &row, nil
}

func subset[T any](rows map[uint]T, ids []uint) []T {
	want := make(map[uint]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := []T{}
	for _, id := range sortedKeys(rows) {
		if want[id] {
			out = append(out, rows[id])
		}
	}
	return out
}
