package services

import (
	"context"

	"github.com/SscSPs/crediario_backend/internal/core/domain"
	"github.com/SscSPs/crediario_backend/internal/dto"
)

// CreditAccountReaderSvc defines read operations for credit accounts
type CreditAccountReaderSvc interface {
	// GetCreditAccount retrieves an account together with its line items.
	GetCreditAccount(ctx context.Context, accountID string) (*domain.CreditAccount, error)

	// GetAccountBalance retrieves the running totals of an account.
	GetAccountBalance(ctx context.Context, accountID string) (*domain.AccountBalance, error)

	// GetInstallmentSchedule splits an account into its installments.
	GetInstallmentSchedule(ctx context.Context, accountID string) ([]domain.Installment, error)

	// ListCreditAccounts retrieves accounts matching the filter.
	ListCreditAccounts(ctx context.Context, params dto.ListCreditAccountsParams) ([]domain.CreditAccount, error)
}

// CreditAccountWriterSvc defines write operations for credit accounts
type CreditAccountWriterSvc interface {
	// OpenCreditAccount opens an account whose total is the sum of its line items.
	OpenCreditAccount(ctx context.Context, req dto.OpenCreditAccountRequest, userID string) (*domain.CreditAccount, error)

	// FindOrCreateForOrder returns the open account that originated from the order,
	// opening one seeded with the order total when none exists. The boolean reports creation.
	FindOrCreateForOrder(ctx context.Context, req dto.CreditFromOrderRequest, userID string) (*domain.CreditAccount, bool, error)

	// AddLineItems grows an active account by new line items.
	AddLineItems(ctx context.Context, accountID string, req dto.AddLineItemsRequest, userID string) (*domain.CreditAccount, error)

	// AddToCustomerAccount charges one line item to the customer's open account,
	// opening a new account with terms when the customer has none.
	AddToCustomerAccount(ctx context.Context, customerID string, item domain.LineItemDraft, terms domain.InstallmentTerms, userID string) (*domain.CreditAccount, error)

	// SuspendCreditAccount freezes an active account.
	SuspendCreditAccount(ctx context.Context, accountID string, userID string) (*domain.CreditAccount, error)

	// ReactivateCreditAccount returns a suspended account to active.
	ReactivateCreditAccount(ctx context.Context, accountID string, userID string) (*domain.CreditAccount, error)
}

// CreditAccountIntegritySvc defines the repair path for inconsistent totals
type CreditAccountIntegritySvc interface {
	// RecomputeTotals repairs remaining amount and status from total and paid.
	// The boolean reports whether a repair was needed.
	RecomputeTotals(ctx context.Context, accountID string, userID string) (*domain.CreditAccount, bool, error)
}

// CreditAccountSvcFacade combines all credit account service interfaces
type CreditAccountSvcFacade interface {
	CreditAccountReaderSvc
	CreditAccountWriterSvc
	CreditAccountIntegritySvc
}
