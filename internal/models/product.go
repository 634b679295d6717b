package models

import (
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type Product struct {
	ID                 uint            `json:"id" gorm:"primaryKey"`
	Name               string          `json:"name" gorm:"size:100;not null"`
	Description        string          `json:"description" gorm:"type:text"`
	Price              decimal.Decimal `json:"price" gorm:"type:numeric(12,2);not null"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage" gorm:"type:numeric(5,2);not null;default:0"`
	Gender             string          `json:"gender" gorm:"size:20;not null"`
	InitialQuantity    int             `json:"initial_quantity" gorm:"not null;default:0;check:chk_products_initial_quantity,initial_quantity >= 0"`
	CategoryID         uint            `json:"category_id" gorm:"not null;index"`
	Category           *Category       `json:"category,omitempty"`
	BrandID            uint            `json:"brand_id" gorm:"not null;index"`
	Brand              *Brand          `json:"brand,omitempty"`
	Sizes              []Size          `json:"sizes" gorm:"many2many:product_sizes;"`
	Colors             []Color         `json:"colors" gorm:"many2many:product_colors;"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// DiscountedPrice returns price × (1 − discount/100) rounded to cents.
func (p Product) DiscountedPrice() decimal.Decimal {
	if !p.DiscountPercentage.IsPositive() {
		return p.Price
	}
	factor := decimal.NewFromInt(1).Sub(p.DiscountPercentage.Div(hundred))
	return p.Price.Mul(factor).Round(2)
}

// StockLevel is the derived inventory position of one product.
type StockLevel struct {
	ProductID       uint   `json:"product_id" gorm:"column:product_id"`
	Name            string `json:"name" gorm:"column:product_name"`
	InitialQuantity int    `json:"initial_quantity" gorm:"column:initial_quantity"`
	SoldQuantity    int    `json:"sold_quantity" gorm:"column:sold_quantity"`
	CurrentQuantity int    `json:"current_quantity" gorm:"-"`
	InStock         bool   `json:"in_stock" gorm:"-"`
}

// Derive fills CurrentQuantity and InStock from the initial and sold quantities.
func (l *StockLevel) Derive() {
	l.CurrentQuantity = l.InitialQuantity - l.SoldQuantity
	l.InStock = l.CurrentQuantity > 0
}

// ProductView is a product as presented to callers, with its derived fields.
type ProductView struct {
	Product
	DiscountedPrice decimal.Decimal `json:"discounted_price"`
	CurrentQuantity *int            `json:"current_quantity,omitempty"`
	InStock         *bool           `json:"in_stock,omitempty"`
}
