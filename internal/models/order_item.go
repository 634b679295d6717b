package models

import (
	"github.com/shopspring/decimal"
)

type OrderItem struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	OrderID         uint            `json:"order_id" gorm:"not null;index"`
	ProductID       uint            `json:"product_id" gorm:"not null;index"`
	Product         *Product        `json:"product,omitempty" gorm:"constraint:OnDelete:RESTRICT"`
	Quantity        int             `json:"quantity" gorm:"not null;check:chk_order_items_quantity,quantity > 0"`
	PriceAtPurchase decimal.Decimal `json:"price_at_purchase" gorm:"type:numeric(12,2);not null"`
}

// Subtotal is the line value frozen at purchase time.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.PriceAtPurchase.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
