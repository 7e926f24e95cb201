package repositories

import (
	"context"

	"github.com/SscSPs/crediario_backend/internal/core/domain"
)

// CreditAccountFilter narrows a credit account listing. Nil fields are ignored.
type CreditAccountFilter struct {
	Status     *domain.CreditAccountStatus
	CustomerID *string
	Limit      int
	Offset     int
}

// CreditAccountReader defines read operations for credit accounts
type CreditAccountReader interface {
	// FindCreditAccountByID retrieves an account (without items) by its ID.
	FindCreditAccountByID(ctx context.Context, accountID string) (*domain.CreditAccount, error)

	// FindCreditAccountByIDForUpdate retrieves an account and locks its row until the surrounding transaction ends.
	FindCreditAccountByIDForUpdate(ctx context.Context, accountID string) (*domain.CreditAccount, error)

	// FindCreditAccountByNumber retrieves an account by its human-readable number.
	FindCreditAccountByNumber(ctx context.Context, accountNumber string) (*domain.CreditAccount, error)

	// FindOpenCreditAccountByCustomer retrieves the customer's newest active account not tied to an order.
	FindOpenCreditAccountByCustomer(ctx context.Context, customerID string) (*domain.CreditAccount, error)

	// FindOpenCreditAccountByOrder retrieves the customer's active account that originated from the order.
	FindOpenCreditAccountByOrder(ctx context.Context, customerID string, orderID string) (*domain.CreditAccount, error)

	// ListCreditAccounts retrieves accounts matching the filter, newest first.
	ListCreditAccounts(ctx context.Context, filter CreditAccountFilter) ([]domain.CreditAccount, error)

	// FindItemsByCreditAccountID retrieves the line items of an account, oldest first.
	FindItemsByCreditAccountID(ctx context.Context, accountID string) ([]domain.CreditAccountItem, error)
}

// CreditAccountWriter defines write operations for credit accounts
type CreditAccountWriter interface {
	// SaveCreditAccount persists a new account together with its line items.
	SaveCreditAccount(ctx context.Context, account domain.CreditAccount) error

	// SaveCreditAccountItems appends line items to an existing account.
	SaveCreditAccountItems(ctx context.Context, items []domain.CreditAccountItem) error

	// UpdateCreditAccountTotals persists totals, status, schedule dates and closure of an account.
	UpdateCreditAccountTotals(ctx context.Context, account domain.CreditAccount) error
}

// CreditAccountRepositoryFacade combines all credit account repository interfaces
type CreditAccountRepositoryFacade interface {
	CreditAccountReader
	CreditAccountWriter
}
