package handlers_test

import (
	"context"

	"github.com/SscSPs/crediario_backend/internal/core/domain"
	portssvc "github.com/SscSPs/crediario_backend/internal/core/ports/services"
	"github.com/SscSPs/crediario_backend/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Mock ReservationService ---
type MockReservationService struct {
	mock.Mock
}

func (m *MockReservationService) GetReservation(ctx context.Context, reservationID string) (*domain.Reservation, error) {
	args := m.Called(ctx, reservationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}
func (m *MockReservationService) ListReservations(ctx context.Context, params dto.ListReservationsParams) ([]domain.Reservation, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Reservation), args.Error(1)
}
func (m *MockReservationService) CreateReservation(ctx context.Context, req dto.CreateReservationRequest, userID string) (*domain.Reservation, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}
func (m *MockReservationService) ConvertToCreditAccount(ctx context.Context, reservationID string, req dto.ConvertReservationRequest, userID string) (*domain.CreditAccount, error) {
	args := m.Called(ctx, reservationID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CreditAccount), args.Error(1)
}
func (m *MockReservationService) CancelReservation(ctx context.Context, reservationID string, userID string) (*domain.Reservation, error) {
	args := m.Called(ctx, reservationID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}
func (m *MockReservationService) ReturnReservation(ctx context.Context, reservationID string, userID string) (*domain.Reservation, error) {
	args := m.Called(ctx, reservationID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.ReservationSvcFacade = (*MockReservationService)(nil)

// --- Mock CreditAccountService ---
type MockCreditAccountService struct {
	mock.Mock
}

func (m *MockCreditAccountService) GetCreditAccount(ctx context.Context, accountID string) (*domain.CreditAccount, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CreditAccount), args.Error(1)
}
func (m *MockCreditAccountService) GetAccountBalance(ctx context.Context, accountID string) (*domain.AccountBalance, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountBalance), args.Error(1)
}
func (m *MockCreditAccountService) GetInstallmentSchedule(ctx context.Context, accountID string) ([]domain.Installment, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Installment), args.Error(1)
}
func (m *MockCreditAccountService) ListCreditAccounts(ctx context.Context, params dto.ListCreditAccountsParams) ([]domain.CreditAccount, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CreditAccount), args.Error(1)
}
func (m *MockCreditAccountService) OpenCreditAccount(ctx context.Context, req dto.OpenCreditAccountRequest, userID string) (*domain.CreditAccount, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CreditAccount), args.Error(1)
}
func (m *MockCreditAccountService) FindOrCreateForOrder(ctx context.Context, req dto.CreditFromOrderRequest, userID string) (*domain.CreditAccount, bool, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, false, args.Error(2)
	}
	return args.Get(0).(*domain.CreditAccount), args.Bool(1), args.Error(2)
}
func (m *MockCreditAccountService) AddLineItems(ctx context.Context, accountID string, req dto.AddLineItemsRequest, userID string) (*domain.CreditAccount, error) {
	args := m.Called(ctx, accountID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CreditAccount), args.Error(1)
}
func (m *MockCreditAccountService) AddToCustomerAccount(ctx context.Context, customerID string, item domain.LineItemDraft, terms domain.InstallmentTerms, userID string) (*domain.CreditAccount, error) {
	args := m.Called(ctx, customerID, item, terms, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CreditAccount), args.Error(1)
}
func (m *MockCreditAccountService) SuspendCreditAccount(ctx context.Context, accountID string, userID string) (*domain.CreditAccount, error) {
	args := m.Called(ctx, accountID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CreditAccount), args.Error(1)
}
func (m *MockCreditAccountService) ReactivateCreditAccount(ctx context.Context, accountID string, userID string) (*domain.CreditAccount, error) {
	args := m.Called(ctx, accountID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CreditAccount), args.Error(1)
}
func (m *MockCreditAccountService) RecomputeTotals(ctx context.Context, accountID string, userID string) (*domain.CreditAccount, bool, error) {
	args := m.Called(ctx, accountID, userID)
	if args.Get(0) == nil {
		return nil, false, args.Error(2)
	}
	return args.Get(0).(*domain.CreditAccount), args.Bool(1), args.Error(2)
}

// Ensure mock implements the interface
var _ portssvc.CreditAccountSvcFacade = (*MockCreditAccountService)(nil)

// --- Mock ReconciliationService ---
type MockReconciliationService struct {
	mock.Mock
}

func (m *MockReconciliationService) PreviewPayment(ctx context.Context, accountID string, amount decimal.Decimal) (*domain.PaymentPreview, error) {
	args := m.Called(ctx, accountID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentPreview), args.Error(1)
}
func (m *MockReconciliationService) ListPayments(ctx context.Context, accountID string) ([]domain.Payment, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Payment), args.Error(1)
}
func (m *MockReconciliationService) ApplyPayment(ctx context.Context, accountID string, req dto.ApplyPaymentRequest, userID string) (*domain.PaymentOutcome, error) {
	args := m.Called(ctx, accountID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentOutcome), args.Error(1)
}
func (m *MockReconciliationService) RetryPendingSideEffects(ctx context.Context) (*domain.RetryReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RetryReport), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.ReconciliationSvcFacade = (*MockReconciliationService)(nil)

// --- Mock StockLedgerService ---
type MockStockLedgerService struct {
	mock.Mock
}

func (m *MockStockLedgerService) GetStock(ctx context.Context, productID string) (*domain.Product, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}
func (m *MockStockLedgerService) ListStockHistory(ctx context.Context, productID string, limit int, offset int) ([]domain.StockMovement, error) {
	args := m.Called(ctx, productID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StockMovement), args.Error(1)
}
func (m *MockStockLedgerService) Reserve(ctx context.Context, productID string, qty int, reference string, userID string) (int, error) {
	args := m.Called(ctx, productID, qty, reference, userID)
	return args.Int(0), args.Error(1)
}
func (m *MockStockLedgerService) Release(ctx context.Context, productID string, qty int, reference string, userID string) (int, error) {
	args := m.Called(ctx, productID, qty, reference, userID)
	return args.Int(0), args.Error(1)
}
func (m *MockStockLedgerService) Adjust(ctx context.Context, productID string, delta int, reason domain.StockMovementReason, notes string, userID string) (int, error) {
	args := m.Called(ctx, productID, delta, reason, notes, userID)
	return args.Int(0), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.StockLedgerSvcFacade = (*MockStockLedgerService)(nil)
