package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/crediario_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/crediario_backend/internal/core/ports/repositories"
	"github.com/SscSPs/crediario_backend/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

func TestWithinTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	s.PutProduct(domain.Product{ProductID: "p1", Name: "Blusa", StockQuantity: 10, UnitPrice: decimal.NewFromInt(50)})

	boom := errors.New("boom")
	err := s.WithinTx(ctx, func(ctx context.Context) error {
		require.NoError(t, s.UpdateProductStock(ctx, "p1", 4, now))
		require.NoError(t, s.SaveStockMovement(ctx, domain.StockMovement{
			MovementID: "m1", ProductID: "p1", Delta: -6, StockBefore: 10, StockAfter: 4,
			Reason: domain.StockReservation, Reference: "reservation:r1", CreatedAt: now,
		}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	p, err := s.FindProductByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 10, p.StockQuantity)

	history, err := s.ListStockMovementsByProduct(ctx, "p1", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestWithinTx_NestedJoinsOuter(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	s.PutProduct(domain.Product{ProductID: "p1", StockQuantity: 10})

	err := s.WithinTx(ctx, func(ctx context.Context) error {
		// a nested call must not try to take the transaction lock again
		return s.WithinTx(ctx, func(ctx context.Context) error {
			return s.UpdateProductStock(ctx, "p1", 7, now)
		})
	})
	require.NoError(t, err)

	p, _ := s.FindProductByID(ctx, "p1")
	assert.Equal(t, 7, p.StockQuantity)
}

func TestSumStockDeltaByReference(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	for i, d := range []int{-5, 2, 3, -1} {
		ref := "reservation:r1"
		if i == 3 {
			ref = "reservation:r2"
		}
		require.NoError(t, s.SaveStockMovement(ctx, domain.StockMovement{
			MovementID: string(rune('a' + i)), ProductID: "p1", Delta: d, Reference: ref, CreatedAt: now,
		}))
	}

	sum, err := s.SumStockDeltaByReference(ctx, "p1", "reservation:r1")
	require.NoError(t, err)
	assert.Equal(t, 0, sum)

	sum, err = s.SumStockDeltaByReference(ctx, "p1", "reservation:r2")
	require.NoError(t, err)
	assert.Equal(t, -1, sum)
}

func TestFindOpenCreditAccountByCustomer_IgnoresOrderAccounts(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	orderID := "order-1"
	s.PutCreditAccount(domain.CreditAccount{CreditAccountID: "a1", CustomerID: "c1", AccountNumber: "CR-1",
		Status: domain.CreditAccountActive, OrderID: &orderID, AuditFields: domain.AuditFields{CreatedAt: now}})
	s.PutCreditAccount(domain.CreditAccount{CreditAccountID: "a2", CustomerID: "c1", AccountNumber: "CR-2",
		Status: domain.CreditAccountPaidOff, AuditFields: domain.AuditFields{CreatedAt: now.Add(time.Hour)}})

	_, err := s.FindOpenCreditAccountByCustomer(ctx, "c1")
	require.Error(t, err)

	s.PutCreditAccount(domain.CreditAccount{CreditAccountID: "a3", CustomerID: "c1", AccountNumber: "CR-3",
		Status: domain.CreditAccountActive, AuditFields: domain.AuditFields{CreatedAt: now.Add(2 * time.Hour)}})
	acc, err := s.FindOpenCreditAccountByCustomer(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "a3", acc.CreditAccountID)

	acc, err = s.FindOpenCreditAccountByOrder(ctx, "c1", orderID)
	require.NoError(t, err)
	assert.Equal(t, "a1", acc.CreditAccountID)
}

func TestListReservations_Filter(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	acc := "a1"
	require.NoError(t, s.SaveReservation(ctx, domain.Reservation{ReservationID: "r1", ProductID: "p1",
		Status: domain.ReservationActive, CreditAccountID: &acc, AuditFields: domain.AuditFields{CreatedAt: now}}))
	require.NoError(t, s.SaveReservation(ctx, domain.Reservation{ReservationID: "r2", ProductID: "p1",
		Status: domain.ReservationActive, AuditFields: domain.AuditFields{CreatedAt: now.Add(time.Minute)}}))

	all, err := s.ListReservations(ctx, portsrepo.ReservationFilter{Limit: 10})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "r2", all[0].ReservationID, "newest first")

	linked, err := s.ListReservations(ctx, portsrepo.ReservationFilter{CreditAccountID: &acc, Limit: 10})
	require.NoError(t, err)
	require.Len(t, linked, 1)
	assert.Equal(t, "r1", linked[0].ReservationID)

	n, err := s.MarkReservationsSold(ctx, acc, "clerk", now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	r1, _ := s.FindReservationByID(ctx, "r1")
	assert.Equal(t, domain.ReservationSold, r1.Status)
	require.NotNil(t, r1.CompletedAt)
}
