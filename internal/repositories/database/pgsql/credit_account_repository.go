package pgsql

import (
	"context"
	"fmt"
	"strings"

	"github.com/SscSPs/crediario_backend/internal/apperrors"
	"github.com/SscSPs/crediario_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/crediario_backend/internal/core/ports/repositories"
	"github.com/SscSPs/crediario_backend/internal/models"
	"github.com/SscSPs/crediario_backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxCreditAccountRepository struct {
	BaseRepository
}

// newPgxCreditAccountRepository creates a new repository for credit accounts and their items.
func newPgxCreditAccountRepository(pool *pgxpool.Pool) portsrepo.CreditAccountRepositoryFacade {
	return &PgxCreditAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.CreditAccountRepositoryFacade = (*PgxCreditAccountRepository)(nil)

const fullCreditAccountSelectQuery = `
SELECT
	credit_account_id, customer_id, account_number, status, total_amount, paid_amount,
	remaining_amount, installments, installment_value, payment_frequency, first_payment_date,
	next_payment_date, order_id, order_reference, notes, closed_at,
	created_at, created_by, last_updated_at, last_updated_by
FROM credit_accounts
`

const insertCreditAccountItemQuery = `
INSERT INTO credit_account_items (
	item_id, credit_account_id, product_id, reservation_id, product_name_snapshot,
	quantity, unit_price_snapshot, line_total, created_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
`

func (r *PgxCreditAccountRepository) getCreditAccounts(ctx context.Context, filterQuery string, args ...any) ([]domain.CreditAccount, error) {
	rows, err := r.db(ctx).Query(ctx, fullCreditAccountSelectQuery+filterQuery, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query credit accounts", err)
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.CreditAccount])
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to collect credit account rows", err)
	}
	return mapping.ToDomainCreditAccountSlice(ms), nil
}

func (r *PgxCreditAccountRepository) getCreditAccount(ctx context.Context, filterQuery string, args ...any) (*domain.CreditAccount, error) {
	accounts, err := r.getCreditAccounts(ctx, filterQuery, args...)
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, apperrors.ErrAccountNotFound
	}
	return &accounts[0], nil
}

// SaveCreditAccount inserts an account and its items in one batch.
func (r *PgxCreditAccountRepository) SaveCreditAccount(ctx context.Context, account domain.CreditAccount) error {
	m := mapping.ToModelCreditAccount(account)
	query := `
		INSERT INTO credit_accounts (
			credit_account_id, customer_id, account_number, status, total_amount, paid_amount,
			remaining_amount, installments, installment_value, payment_frequency, first_payment_date,
			next_payment_date, order_id, order_reference, notes, closed_at,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20);
	`
	batch := &pgx.Batch{}
	batch.Queue(query,
		m.CreditAccountID, m.CustomerID, m.AccountNumber, m.Status, m.TotalAmount, m.PaidAmount,
		m.RemainingAmount, m.Installments, m.InstallmentValue, m.PaymentFrequency, m.FirstPaymentDate,
		m.NextPaymentDate, m.OrderID, m.OrderReference, m.Notes, m.ClosedAt,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	queueItems(batch, account.Items)
	return r.sendBatch(ctx, batch, "credit account "+m.AccountNumber)
}

// SaveCreditAccountItems appends items to an existing account.
func (r *PgxCreditAccountRepository) SaveCreditAccountItems(ctx context.Context, items []domain.CreditAccountItem) error {
	if len(items) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	queueItems(batch, items)
	return r.sendBatch(ctx, batch, "credit account items")
}

func queueItems(batch *pgx.Batch, items []domain.CreditAccountItem) {
	for _, it := range items {
		m := mapping.ToModelCreditAccountItem(it)
		batch.Queue(insertCreditAccountItemQuery,
			m.ItemID, m.CreditAccountID, m.ProductID, m.ReservationID, m.ProductNameSnapshot,
			m.Quantity, m.UnitPriceSnapshot, m.LineTotal, m.CreatedAt,
		)
	}
}

func (r *PgxCreditAccountRepository) sendBatch(ctx context.Context, batch *pgx.Batch, what string) error {
	br := r.db(ctx).SendBatch(ctx, batch)
	var batchErr error
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil && batchErr == nil {
			batchErr = mapWriteError(err, what)
		}
	}
	if err := br.Close(); err != nil && batchErr == nil {
		batchErr = mapWriteError(err, what)
	}
	return batchErr
}

// FindCreditAccountByID retrieves an account by its ID.
func (r *PgxCreditAccountRepository) FindCreditAccountByID(ctx context.Context, accountID string) (*domain.CreditAccount, error) {
	return r.getCreditAccount(ctx, "WHERE credit_account_id = $1", accountID)
}

// FindCreditAccountByIDForUpdate retrieves an account and locks its row.
func (r *PgxCreditAccountRepository) FindCreditAccountByIDForUpdate(ctx context.Context, accountID string) (*domain.CreditAccount, error) {
	return r.getCreditAccount(ctx, "WHERE credit_account_id = $1 FOR UPDATE", accountID)
}

// FindCreditAccountByNumber retrieves an account by its account number.
func (r *PgxCreditAccountRepository) FindCreditAccountByNumber(ctx context.Context, accountNumber string) (*domain.CreditAccount, error) {
	return r.getCreditAccount(ctx, "WHERE account_number = $1", accountNumber)
}

// FindOpenCreditAccountByCustomer retrieves the newest active account of the customer not tied to an order.
func (r *PgxCreditAccountRepository) FindOpenCreditAccountByCustomer(ctx context.Context, customerID string) (*domain.CreditAccount, error) {
	return r.getCreditAccount(ctx,
		"WHERE customer_id = $1 AND status = $2 AND order_id IS NULL ORDER BY created_at DESC LIMIT 1",
		customerID, string(domain.CreditAccountActive))
}

// FindOpenCreditAccountByOrder retrieves the active account the order was converted into.
func (r *PgxCreditAccountRepository) FindOpenCreditAccountByOrder(ctx context.Context, customerID string, orderID string) (*domain.CreditAccount, error) {
	return r.getCreditAccount(ctx,
		"WHERE customer_id = $1 AND order_id = $2 AND status = $3 ORDER BY created_at DESC LIMIT 1",
		customerID, orderID, string(domain.CreditAccountActive))
}

// ListCreditAccounts retrieves accounts matching the filter, newest first.
func (r *PgxCreditAccountRepository) ListCreditAccounts(ctx context.Context, filter portsrepo.CreditAccountFilter) ([]domain.CreditAccount, error) {
	var conds []string
	var args []any
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.CustomerID != nil {
		args = append(args, *filter.CustomerID)
		conds = append(conds, fmt.Sprintf("customer_id = $%d", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf("%s ORDER BY created_at DESC, credit_account_id DESC LIMIT $%d OFFSET $%d", where, len(args)-1, len(args))
	return r.getCreditAccounts(ctx, query, args...)
}

// FindItemsByCreditAccountID retrieves the line items of an account, oldest first.
func (r *PgxCreditAccountRepository) FindItemsByCreditAccountID(ctx context.Context, accountID string) ([]domain.CreditAccountItem, error) {
	query := `
		SELECT item_id, credit_account_id, product_id, reservation_id, product_name_snapshot,
			quantity, unit_price_snapshot, line_total, created_at
		FROM credit_account_items
		WHERE credit_account_id = $1
		ORDER BY created_at ASC, item_id ASC;
	`
	rows, err := r.db(ctx).Query(ctx, query, accountID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query credit account items", err)
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.CreditAccountItem])
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to collect credit account item rows", err)
	}
	return mapping.ToDomainCreditAccountItemSlice(ms), nil
}

// UpdateCreditAccountTotals persists totals, status and schedule fields of an account.
func (r *PgxCreditAccountRepository) UpdateCreditAccountTotals(ctx context.Context, account domain.CreditAccount) error {
	m := mapping.ToModelCreditAccount(account)
	query := `
		UPDATE credit_accounts
		SET status = $2, total_amount = $3, paid_amount = $4, remaining_amount = $5,
			installment_value = $6, next_payment_date = $7, closed_at = $8,
			last_updated_at = $9, last_updated_by = $10
		WHERE credit_account_id = $1;
	`
	ct, err := r.db(ctx).Exec(ctx, query,
		m.CreditAccountID, m.Status, m.TotalAmount, m.PaidAmount, m.RemainingAmount,
		m.InstallmentValue, m.NextPaymentDate, m.ClosedAt,
		m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return mapWriteError(err, "credit account "+m.AccountNumber)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.ErrAccountNotFound
	}
	return nil
}
