package migrations

import (
	"context"
	"errors"

	"webstore/internal/models"
	"webstore/internal/services"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// tables in dependency order; DropTable walks it backwards.
var tables = []interface{}{
	&models.User{},
	&models.Category{},
	&models.Brand{},
	&models.Size{},
	&models.Color{},
	&models.Product{},
	&models.Client{},
	&models.Order{},
	&models.OrderItem{},
}

// RunMigrations creates or updates every table, including the product_sizes
// and product_colors join tables.
func RunMigrations(db *gorm.DB, logger *zap.Logger) error {
	logger.Info("running database migrations")
	if err := db.AutoMigrate(tables...); err != nil {
		return err
	}
	logger.Info("database migrations completed")
	return nil
}

// Reset drops every table and migrates from scratch.
func Reset(db *gorm.DB, logger *zap.Logger) error {
	logger.Warn("dropping existing tables")
	dropped := make([]interface{}, 0, len(tables)+2)
	dropped = append(dropped, "product_sizes", "product_colors")
	for i := len(tables) - 1; i >= 0; i-- {
		dropped = append(dropped, tables[i])
	}
	if err := db.Migrator().DropTable(dropped...); err != nil {
		return err
	}
	return RunMigrations(db, logger)
}

type DefaultUser struct {
	Username string
	Email    string
	Password string
	Role     models.UserRole
}

var DefaultUsers = []DefaultUser{
	{"admin", "admin@webstore.local", "admin123", models.Admin},
	{"manager", "manager@webstore.local", "manager123", models.AdvancedUser},
	{"clerk", "clerk@webstore.local", "clerk123", models.SimpleUser},
}

type sampleProduct struct {
	name, description, gender, category, brand string
	price, discount                            string
	quantity                                   int
	sizes, colors                              []string
}

var (
	defaultCategories = []string{"Shoes", "Shirts", "Pants", "Jackets", "Accessories"}
	defaultBrands     = []string{"Nike", "Adidas", "Puma", "Levi's", "Zara"}
	defaultSizes      = []string{"XS", "S", "M", "L", "XL", "38", "40", "42", "44"}
	defaultColors     = []string{"Black", "White", "Red", "Blue", "Green"}

	sampleProducts = []sampleProduct{
		{"Air Runner", "Lightweight running shoe", "unisex", "Shoes", "Nike", "120.00", "10", 25, []string{"40", "42", "44"}, []string{"Black", "White"}},
		{"Classic Tee", "Cotton crew neck", "men", "Shirts", "Adidas", "25.00", "0", 100, []string{"S", "M", "L", "XL"}, []string{"White", "Blue"}},
		{"Slim Jeans", "Stretch denim", "women", "Pants", "Levi's", "79.90", "15", 40, []string{"XS", "S", "M"}, []string{"Blue"}},
		{"Rain Shell", "Packable waterproof jacket", "unisex", "Jackets", "Puma", "149.00", "0", 12, []string{"M", "L"}, []string{"Red", "Green"}},
		{"Canvas Tote", "Everyday bag", "unisex", "Accessories", "Zara", "19.99", "5", 0, nil, []string{"Black"}},
	}
)

// SeedDefaults creates the staff accounts, catalog dimensions and sample
// products. Rows that already exist are left alone, so seeding twice is
// harmless.
func SeedDefaults(ctx context.Context, users services.UserService, catalog services.CatalogService, logger *zap.Logger) error {
	for _, u := range DefaultUsers {
		user := &models.User{Username: u.Username, Email: u.Email, Role: string(u.Role)}
		err := users.CreateUser(ctx, user, u.Password)
		switch {
		case errors.Is(err, services.ErrConflict):
			logger.Debug("user already exists", zap.String("username", u.Username))
		case err != nil:
			return err
		default:
			logger.Info("default user created", zap.String("username", u.Username), zap.String("role", user.Role))
		}
	}

	categories, err := seedNamed(ctx, defaultCategories, catalog.GetCategories, func(name string) error {
		c := &models.Category{Name: name}
		return ignoreConflict(catalog.CreateCategory(ctx, c))
	}, func(c models.Category) (string, uint) { return c.Name, c.ID })
	if err != nil {
		return err
	}
	brands, err := seedNamed(ctx, defaultBrands, catalog.GetBrands, func(name string) error {
		b := &models.Brand{Name: name}
		return ignoreConflict(catalog.CreateBrand(ctx, b))
	}, func(b models.Brand) (string, uint) { return b.Name, b.ID })
	if err != nil {
		return err
	}
	sizes, err := seedNamed(ctx, defaultSizes, catalog.GetSizes, func(name string) error {
		s := &models.Size{Name: name}
		return ignoreConflict(catalog.CreateSize(ctx, s))
	}, func(s models.Size) (string, uint) { return s.Name, s.ID })
	if err != nil {
		return err
	}
	colors, err := seedNamed(ctx, defaultColors, catalog.GetColors, func(name string) error {
		c := &models.Color{Name: name}
		return ignoreConflict(catalog.CreateColor(ctx, c))
	}, func(c models.Color) (string, uint) { return c.Name, c.ID })
	if err != nil {
		return err
	}

	existing, err := catalog.GetAllProducts(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		logger.Info("catalog already seeded", zap.Int("products", len(existing)))
		return nil
	}
	for _, p := range sampleProducts {
		quantity := p.quantity
		_, err := catalog.CreateProduct(ctx, services.ProductInput{
			Name:               p.name,
			Description:        p.description,
			Price:              decimal.RequireFromString(p.price),
			DiscountPercentage: decimal.RequireFromString(p.discount),
			Gender:             p.gender,
			InitialQuantity:    &quantity,
			CategoryID:         categories[p.category],
			BrandID:            brands[p.brand],
			SizeIDs:            idsOf(sizes, p.sizes),
			ColorIDs:           idsOf(colors, p.colors),
		})
		if err != nil {
			return err
		}
	}
	logger.Info("sample products created", zap.Int("products", len(sampleProducts)))
	return nil
}

// seedNamed creates the named rows and returns a name to id index of
// everything in the table afterwards.
func seedNamed[T any](ctx context.Context, names []string, list func(context.Context) ([]T, error), create func(string) error, key func(T) (string, uint)) (map[string]uint, error) {
	for _, name := range names {
		if err := create(name); err != nil {
			return nil, err
		}
	}
	rows, err := list(ctx)
	if err != nil {
		return nil, err
	}
	index := make(map[string]uint, len(rows))
	for _, row := range rows {
		name, id := key(row)
		index[name] = id
	}
	return index, nil
}

func ignoreConflict(err error) error {
	if errors.Is(err, services.ErrConflict) {
		return nil
	}
	return err
}

func idsOf(index map[string]uint, names []string) []uint {
	if names == nil {
		return nil
	}
	ids := make([]uint, 0, len(names))
	for _, name := range names {
		ids = append(ids, index[name])
	}
	return ids
}
