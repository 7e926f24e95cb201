package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is the stock-relevant projection of a catalog row.
type Product struct {
	ProductID     string          `db:"product_id"`
	Name          string          `db:"name"`
	StockQuantity int             `db:"stock_quantity"`
	UnitPrice     decimal.Decimal `db:"unit_price"`
	UpdatedAt     time.Time       `db:"updated_at"`
}

// StockMovement is a row of the stock history.
type StockMovement struct {
	MovementID  string    `db:"movement_id"`
	ProductID   string    `db:"product_id"`
	Delta       int       `db:"delta"`
	StockBefore int       `db:"stock_before"`
	StockAfter  int       `db:"stock_after"`
	Reason      string    `db:"reason"`
	Reference   string    `db:"reference"`
	Notes       string    `db:"notes"`
	CreatedAt   time.Time `db:"created_at"`
	CreatedBy   string    `db:"created_by"`
}

// Customer is the projection of the customer directory this service reads.
type Customer struct {
	CustomerID string          `db:"customer_id"`
	Name       string          `db:"name"`
	TotalSpent decimal.Decimal `db:"total_spent"`
}

// Order is the projection of the order record this service reads.
type Order struct {
	OrderID       string          `db:"order_id"`
	OrderNumber   string          `db:"order_number"`
	CustomerID    string          `db:"customer_id"`
	Total         decimal.Decimal `db:"total"`
	Status        string          `db:"status"`
	PaymentStatus string          `db:"payment_status"`
}
