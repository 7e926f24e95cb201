package repositories

import (
	"context"

	"github.com/SscSPs/crediario_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// OrderRepository is the narrow view of the storefront's order records.
type OrderRepository interface {
	// FindOrderByID retrieves an order by its ID.
	FindOrderByID(ctx context.Context, orderID string) (*domain.Order, error)

	// UpdateOrderStatus sets the fulfilment and payment status of an order.
	UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus, paymentStatus domain.OrderPaymentStatus) error
}

// CustomerRepository is the narrow view of the customer directory.
type CustomerRepository interface {
	// FindCustomerByID retrieves a customer by its ID.
	FindCustomerByID(ctx context.Context, customerID string) (*domain.Customer, error)

	// IncrementTotalSpent adds amount to the customer's lifetime spend.
	IncrementTotalSpent(ctx context.Context, customerID string, amount decimal.Decimal) error
}
