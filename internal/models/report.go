package models

import "github.com/shopspring/decimal"

// ProductSales is one row of the top-selling products report.
type ProductSales struct {
	ProductID    uint            `json:"product_id" gorm:"column:product_id"`
	ProductName  string          `json:"product_name" gorm:"column:product_name"`
	TotalSold    int64           `json:"total_sold" gorm:"column:total_sold"`
	TotalRevenue decimal.Decimal `json:"total_revenue" gorm:"column:total_revenue"`
}

// DimensionSales aggregates committed sales under a category or brand name.
type DimensionSales struct {
	Name          string          `json:"name" gorm:"column:name"`
	TotalQuantity int64           `json:"total_quantity_sold" gorm:"column:total_quantity"`
	TotalRevenue  decimal.Decimal `json:"total_revenue" gorm:"column:total_revenue"`
}

// StatusTotals is the order count and amount for one status.
type StatusTotals struct {
	Status      OrderStatus     `json:"-" gorm:"column:status"`
	Count       int64           `json:"count" gorm:"column:count"`
	TotalAmount decimal.Decimal `json:"total_amount" gorm:"column:total_amount"`
}

// EarningsTotals is the summed amount and order count over a period.
type EarningsTotals struct {
	TotalEarnings decimal.Decimal `gorm:"column:total_earnings"`
	TotalOrders   int64           `gorm:"column:total_orders"`
}
