package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is the slice of the catalog this service reads and whose stock it owns.
type Product struct {
	ProductID     string          `json:"productID"`
	Name          string          `json:"name"`
	StockQuantity int             `json:"stockQuantity"` // Never negative
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// Customer is the customer directory record; only TotalSpent is ever written.
type Customer struct {
	CustomerID string          `json:"customerID"`
	Name       string          `json:"name"`
	TotalSpent decimal.Decimal `json:"totalSpent"`
}

// OrderStatus is the fulfilment status of an order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

// OrderPaymentStatus is the settlement status of an order.
type OrderPaymentStatus string

const (
	OrderUnpaid   OrderPaymentStatus = "unpaid"
	OrderOnCredit OrderPaymentStatus = "credit"
	OrderPaid     OrderPaymentStatus = "paid"
)

// Order is the storefront order record a credit account may originate from.
type Order struct {
	OrderID       string             `json:"orderID"`
	OrderNumber   string             `json:"orderNumber"`
	CustomerID    string             `json:"customerID"`
	Total         decimal.Decimal    `json:"total"`
	Status        OrderStatus        `json:"status"`
	PaymentStatus OrderPaymentStatus `json:"paymentStatus"`
}
