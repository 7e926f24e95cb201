package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/crediario_backend/internal/apperrors"
	"github.com/SscSPs/crediario_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/crediario_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/crediario_backend/internal/core/ports/services"
	"github.com/SscSPs/crediario_backend/internal/dto"
	"github.com/SscSPs/crediario_backend/internal/platform/metrics"
	"github.com/SscSPs/crediario_backend/internal/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	accountNumberSuffixLen  = 6
	accountNumberMaxRetries = 5
)

// creditAccountService opens and grows credit accounts. Payments never pass
// through here; they belong to the reconciliation service.
type creditAccountService struct {
	BaseService
	txManager    portsrepo.TransactionManager
	creditRepo   portsrepo.CreditAccountRepositoryFacade
	customerRepo portsrepo.CustomerRepository
	orderRepo    portsrepo.OrderRepository
	productRepo  portsrepo.ProductReader
}

// NewCreditAccountService creates a new credit account service with the provided options
func NewCreditAccountService(
	txManager portsrepo.TransactionManager,
	creditRepo portsrepo.CreditAccountRepositoryFacade,
	customerRepo portsrepo.CustomerRepository,
	orderRepo portsrepo.OrderRepository,
	productRepo portsrepo.ProductReader,
	options ...ServiceOption,
) portssvc.CreditAccountSvcFacade {
	return &creditAccountService{
		BaseService:  newBaseService(options),
		txManager:    txManager,
		creditRepo:   creditRepo,
		customerRepo: customerRepo,
		orderRepo:    orderRepo,
		productRepo:  productRepo,
	}
}

var _ portssvc.CreditAccountSvcFacade = (*creditAccountService)(nil)

func (s *creditAccountService) GetCreditAccount(ctx context.Context, accountID string) (*domain.CreditAccount, error) {
	account, err := s.findAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if err := s.attachItems(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// GetAccountBalance repairs the stored totals before reporting them when they disagree.
func (s *creditAccountService) GetAccountBalance(ctx context.Context, accountID string) (*domain.AccountBalance, error) {
	account, err := s.findAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !account.IsConsistent() {
		account, _, err = s.RecomputeTotals(ctx, accountID, systemUserID)
		if err != nil {
			return nil, err
		}
	}
	balance := account.Balance()
	return &balance, nil
}

func (s *creditAccountService) GetInstallmentSchedule(ctx context.Context, accountID string) ([]domain.Installment, error) {
	account, err := s.findAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return account.Schedule(), nil
}

func (s *creditAccountService) ListCreditAccounts(ctx context.Context, params dto.ListCreditAccountsParams) ([]domain.CreditAccount, error) {
	accounts, err := s.creditRepo.ListCreditAccounts(ctx, portsrepo.CreditAccountFilter{
		Status:     params.Status,
		CustomerID: params.CustomerID,
		Limit:      params.Limit,
		Offset:     params.Offset,
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to list credit accounts")
		return nil, fmt.Errorf("failed to list credit accounts: %w", err)
	}
	if accounts == nil {
		return []domain.CreditAccount{}, nil
	}
	return accounts, nil
}

func (s *creditAccountService) OpenCreditAccount(ctx context.Context, req dto.OpenCreditAccountRequest, userID string) (*domain.CreditAccount, error) {
	if len(req.Items) == 0 {
		return nil, apperrors.ErrEmptyLineItems
	}
	if err := s.checkCustomer(ctx, req.CustomerID); err != nil {
		return nil, err
	}
	specs := dto.ToLineItemDrafts(req.Items)
	if err := s.checkProducts(ctx, specs); err != nil {
		return nil, err
	}

	ctx, release, err := s.lock(ctx, portssvc.LockCustomerPrefix+req.CustomerID)
	if err != nil {
		return nil, err
	}
	defer release()

	var account *domain.CreditAccount
	err = s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		account, err = s.openAccount(ctx, req.CustomerID, specs, req.ToInstallmentTerms(), userID, func(a *domain.CreditAccount) {
			a.Notes = req.Notes
		})
		return err
	})
	if err != nil {
		s.logRefusal(ctx, err, "Failed to open credit account", slog.String("customer_id", req.CustomerID))
		return nil, err
	}

	s.LogInfo(ctx, "Credit account opened",
		slog.String("credit_account_id", account.CreditAccountID),
		slog.String("account_number", account.AccountNumber),
		slog.String("total", utils.FormatMoney(account.TotalAmount)))
	return account, nil
}

func (s *creditAccountService) FindOrCreateForOrder(ctx context.Context, req dto.CreditFromOrderRequest, userID string) (*domain.CreditAccount, bool, error) {
	order, err := s.orderRepo.FindOrderByID(ctx, req.OrderID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find order", slog.String("order_id", req.OrderID))
		}
		return nil, false, err
	}
	if order.CustomerID != req.CustomerID {
		return nil, false, fmt.Errorf("%w: order %s belongs to another customer", apperrors.ErrValidation, order.OrderNumber)
	}
	if order.Status == domain.OrderCancelled {
		return nil, false, fmt.Errorf("%w: order %s is cancelled", apperrors.ErrValidation, order.OrderNumber)
	}
	if err := s.checkCustomer(ctx, req.CustomerID); err != nil {
		return nil, false, err
	}

	ctx, release, err := s.lock(ctx, portssvc.LockCustomerPrefix+req.CustomerID)
	if err != nil {
		return nil, false, err
	}
	defer release()

	var (
		account *domain.CreditAccount
		created bool
	)
	err = s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		existing, err := s.creditRepo.FindOpenCreditAccountByOrder(ctx, req.CustomerID, order.OrderID)
		if err == nil {
			account = existing
			return s.attachItems(ctx, account)
		}
		if !errors.Is(err, apperrors.ErrAccountNotFound) {
			return err
		}

		if order.PaymentStatus == domain.OrderPaid {
			return fmt.Errorf("%w: order %s is already paid", apperrors.ErrValidation, order.OrderNumber)
		}
		spec := domain.LineItemDraft{
			Name:      "Order " + order.OrderNumber,
			Quantity:  1,
			UnitPrice: order.Total,
		}
		account, err = s.openAccount(ctx, req.CustomerID, []domain.LineItemDraft{spec}, req.ToInstallmentTerms(), userID, func(a *domain.CreditAccount) {
			orderID, reference := order.OrderID, order.OrderNumber
			a.OrderID = &orderID
			a.OrderReference = &reference
		})
		if err != nil {
			return err
		}
		created = true
		return s.orderRepo.UpdateOrderStatus(ctx, order.OrderID, order.Status, domain.OrderOnCredit)
	})
	if err != nil {
		s.logRefusal(ctx, err, "Failed to convert order to credit", slog.String("order_id", req.OrderID))
		return nil, false, err
	}

	if created {
		s.LogInfo(ctx, "Credit account opened from order",
			slog.String("credit_account_id", account.CreditAccountID),
			slog.String("order_id", order.OrderID))
	}
	return account, created, nil
}

func (s *creditAccountService) AddLineItems(ctx context.Context, accountID string, req dto.AddLineItemsRequest, userID string) (*domain.CreditAccount, error) {
	if len(req.Items) == 0 {
		return nil, apperrors.ErrEmptyLineItems
	}
	specs := dto.ToLineItemDrafts(req.Items)
	if err := s.checkProducts(ctx, specs); err != nil {
		return nil, err
	}

	ctx, release, err := s.lock(ctx, portssvc.LockAccountPrefix+accountID)
	if err != nil {
		return nil, err
	}
	defer release()

	var account *domain.CreditAccount
	err = s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		account, err = s.creditRepo.FindCreditAccountByIDForUpdate(ctx, accountID)
		if err != nil {
			return err
		}
		if err := s.charge(ctx, account, specs, userID); err != nil {
			return err
		}
		return s.attachItems(ctx, account)
	})
	if err != nil {
		s.logRefusal(ctx, err, "Failed to add line items", slog.String("credit_account_id", accountID))
		return nil, err
	}

	s.LogInfo(ctx, "Line items added to credit account",
		slog.String("credit_account_id", accountID),
		slog.Int("items", len(specs)),
		slog.String("total", utils.FormatMoney(account.TotalAmount)))
	return account, nil
}

func (s *creditAccountService) AddToCustomerAccount(ctx context.Context, customerID string, item domain.LineItemDraft, terms domain.InstallmentTerms, userID string) (*domain.CreditAccount, error) {
	ctx, release, err := s.lock(ctx, portssvc.LockCustomerPrefix+customerID)
	if err != nil {
		return nil, err
	}
	defer release()

	var account *domain.CreditAccount
	err = s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		open, err := s.creditRepo.FindOpenCreditAccountByCustomer(ctx, customerID)
		if errors.Is(err, apperrors.ErrAccountNotFound) {
			account, err = s.openAccount(ctx, customerID, []domain.LineItemDraft{item}, terms, userID, nil)
			return err
		}
		if err != nil {
			return err
		}

		ctx, releaseAccount, err := s.lock(ctx, portssvc.LockAccountPrefix+open.CreditAccountID)
		if err != nil {
			return err
		}
		defer releaseAccount()

		account, err = s.creditRepo.FindCreditAccountByIDForUpdate(ctx, open.CreditAccountID)
		if err != nil {
			return err
		}
		if err := s.charge(ctx, account, []domain.LineItemDraft{item}, userID); err != nil {
			return err
		}
		return s.attachItems(ctx, account)
	})
	if err != nil {
		s.logRefusal(ctx, err, "Failed to charge customer account", slog.String("customer_id", customerID))
		return nil, err
	}
	return account, nil
}

func (s *creditAccountService) SuspendCreditAccount(ctx context.Context, accountID string, userID string) (*domain.CreditAccount, error) {
	return s.transition(ctx, accountID, "suspend", func(a *domain.CreditAccount) error {
		return a.Suspend(userID, s.Now())
	})
}

func (s *creditAccountService) ReactivateCreditAccount(ctx context.Context, accountID string, userID string) (*domain.CreditAccount, error) {
	return s.transition(ctx, accountID, "reactivate", func(a *domain.CreditAccount) error {
		return a.Reactivate(userID, s.Now())
	})
}

// RecomputeTotals is the integrity guard. A repair means some write bypassed
// the ledger, so every one is logged as a warning and counted.
func (s *creditAccountService) RecomputeTotals(ctx context.Context, accountID string, userID string) (*domain.CreditAccount, bool, error) {
	ctx, release, err := s.lock(ctx, portssvc.LockAccountPrefix+accountID)
	if err != nil {
		return nil, false, err
	}
	defer release()

	var (
		account  *domain.CreditAccount
		before   domain.AccountBalance
		repaired bool
	)
	err = s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		account, err = s.creditRepo.FindCreditAccountByIDForUpdate(ctx, accountID)
		if err != nil {
			return err
		}
		if err := s.attachItems(ctx, account); err != nil {
			return err
		}
		if itemsTotal := domain.SumLineTotals(account.Items); len(account.Items) > 0 && !itemsTotal.Equal(account.TotalAmount) {
			s.LogWarn(ctx, nil, "Credit account total differs from its line items",
				slog.String("credit_account_id", accountID),
				slog.String("total", utils.FormatMoney(account.TotalAmount)),
				slog.String("items_total", utils.FormatMoney(itemsTotal)))
		}

		before = account.Balance()
		repaired = account.Recompute(userID, s.Now())
		if !repaired {
			return nil
		}
		return s.creditRepo.UpdateCreditAccountTotals(ctx, *account)
	})
	if err != nil {
		s.logRefusal(ctx, err, "Failed to recompute credit account totals", slog.String("credit_account_id", accountID))
		return nil, false, err
	}

	if repaired {
		metrics.IntegrityRepairsTotal.Inc()
		s.LogWarn(ctx, apperrors.ErrIntegrityRepairTriggered, "Credit account totals repaired",
			slog.String("credit_account_id", accountID),
			slog.String("status_before", string(before.Status)),
			slog.String("remaining_before", utils.FormatMoney(before.RemainingAmount)),
			slog.String("status_after", string(account.Status)),
			slog.String("remaining_after", utils.FormatMoney(account.RemainingAmount)))
	}
	return account, repaired, nil
}

// openAccount builds and stores a new account. It must run inside a transaction.
func (s *creditAccountService) openAccount(ctx context.Context, customerID string, specs []domain.LineItemDraft, terms domain.InstallmentTerms, userID string, decorate func(*domain.CreditAccount)) (*domain.CreditAccount, error) {
	now := s.Now()
	accountID := uuid.NewString()

	items := make([]domain.CreditAccountItem, 0, len(specs))
	for _, spec := range specs {
		item, err := domain.NewCreditAccountItem(uuid.NewString(), accountID, spec, now)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	number, err := s.newAccountNumber(ctx, now)
	if err != nil {
		return nil, err
	}

	account, err := domain.NewCreditAccount(accountID, number, customerID, items, terms, userID, now)
	if err != nil {
		return nil, err
	}
	if decorate != nil {
		decorate(account)
	}
	if err := s.creditRepo.SaveCreditAccount(ctx, *account); err != nil {
		return nil, fmt.Errorf("failed to save credit account: %w", err)
	}
	return account, nil
}

// newAccountNumber draws numbers until one is free. The check runs before the
// insert because a failed insert would abort the surrounding transaction.
func (s *creditAccountService) newAccountNumber(ctx context.Context, now time.Time) (string, error) {
	for attempt := 0; attempt < accountNumberMaxRetries; attempt++ {
		number, err := utils.GenerateAccountNumber(now, accountNumberSuffixLen)
		if err != nil {
			return "", err
		}
		_, err = s.creditRepo.FindCreditAccountByNumber(ctx, number)
		if errors.Is(err, apperrors.ErrAccountNotFound) {
			return number, nil
		}
		if err != nil {
			return "", err
		}
		s.LogDebug(ctx, "Account number already taken, drawing another", slog.String("account_number", number))
	}
	return "", fmt.Errorf("%w: could not find a free account number", apperrors.ErrDuplicate)
}

// charge adds line items to a locked account and persists both.
func (s *creditAccountService) charge(ctx context.Context, account *domain.CreditAccount, specs []domain.LineItemDraft, userID string) error {
	now := s.Now()
	items := make([]domain.CreditAccountItem, 0, len(specs))
	for _, spec := range specs {
		item, err := domain.NewCreditAccountItem(uuid.NewString(), account.CreditAccountID, spec, now)
		if err != nil {
			return err
		}
		if err := account.AddCharge(item.LineTotal, userID, now); err != nil {
			return err
		}
		items = append(items, item)
	}
	if err := s.creditRepo.SaveCreditAccountItems(ctx, items); err != nil {
		return fmt.Errorf("failed to save line items: %w", err)
	}
	return s.creditRepo.UpdateCreditAccountTotals(ctx, *account)
}

func (s *creditAccountService) transition(ctx context.Context, accountID string, action string, apply func(*domain.CreditAccount) error) (*domain.CreditAccount, error) {
	ctx, release, err := s.lock(ctx, portssvc.LockAccountPrefix+accountID)
	if err != nil {
		return nil, err
	}
	defer release()

	var account *domain.CreditAccount
	err = s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		account, err = s.creditRepo.FindCreditAccountByIDForUpdate(ctx, accountID)
		if err != nil {
			return err
		}
		if err := apply(account); err != nil {
			return err
		}
		return s.creditRepo.UpdateCreditAccountTotals(ctx, *account)
	})
	if err != nil {
		s.logRefusal(ctx, err, "Failed to "+action+" credit account", slog.String("credit_account_id", accountID))
		return nil, err
	}

	s.LogInfo(ctx, "Credit account status changed",
		slog.String("credit_account_id", accountID),
		slog.String("status", string(account.Status)))
	return account, nil
}

func (s *creditAccountService) findAccount(ctx context.Context, accountID string) (*domain.CreditAccount, error) {
	account, err := s.creditRepo.FindCreditAccountByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrAccountNotFound) {
			s.LogError(ctx, err, "Failed to find credit account", slog.String("credit_account_id", accountID))
		}
		return nil, err
	}
	return account, nil
}

func (s *creditAccountService) attachItems(ctx context.Context, account *domain.CreditAccount) error {
	items, err := s.creditRepo.FindItemsByCreditAccountID(ctx, account.CreditAccountID)
	if err != nil {
		return fmt.Errorf("failed to load line items of %s: %w", account.CreditAccountID, err)
	}
	account.Items = items
	return nil
}

func (s *creditAccountService) checkCustomer(ctx context.Context, customerID string) error {
	if _, err := s.customerRepo.FindCustomerByID(ctx, customerID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: customer %s does not exist", apperrors.ErrValidation, customerID)
		}
		return err
	}
	return nil
}

// checkProducts verifies that every catalog product referenced by a line exists.
func (s *creditAccountService) checkProducts(ctx context.Context, specs []domain.LineItemDraft) error {
	total := decimal.Zero
	for _, spec := range specs {
		total = total.Add(spec.UnitPrice.Mul(decimal.NewFromInt(int64(spec.Quantity))))
		if spec.ProductID == nil || *spec.ProductID == "" {
			continue
		}
		if _, err := s.productRepo.FindProductByID(ctx, *spec.ProductID); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return fmt.Errorf("%w: product %s does not exist", apperrors.ErrValidation, *spec.ProductID)
			}
			return err
		}
	}
	if !total.IsPositive() {
		return fmt.Errorf("%w: line items add up to %s", apperrors.ErrInvalidAmount, utils.FormatMoney(total))
	}
	return nil
}
