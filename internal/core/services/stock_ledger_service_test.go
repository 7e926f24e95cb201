package services_test

import (
	"context"
	"sync"
	"testing"

	"github.com/SscSPs/crediario_backend/internal/apperrors"
	"github.com/SscSPs/crediario_backend/internal/core/domain"
	"github.com/SscSPs/crediario_backend/internal/dto"
	"github.com/stretchr/testify/suite"
)

type StockLedgerTestSuite struct {
	suite.Suite
	f   *ledgerFixture
	ctx context.Context
}

func (suite *StockLedgerTestSuite) SetupTest() {
	suite.f = newLedgerFixture()
	suite.ctx = context.Background()
}

func (suite *StockLedgerTestSuite) reserve(productID string, qty int) (*domain.Reservation, error) {
	return suite.f.svc.Reservation.CreateReservation(suite.ctx, dto.CreateReservationRequest{
		ProductID:           productID,
		CustomerName:        "Walk-in",
		Quantity:            qty,
		PromisedPaymentDate: testNow.AddDate(0, 0, 7),
	}, clerk)
}

func (suite *StockLedgerTestSuite) TestReserveMoreThanAvailable_LeavesStockUntouched() {
	r, err := suite.reserve("prod-sofa", 5)

	suite.ErrorIs(err, apperrors.ErrInsufficientStock)
	suite.Nil(r)
	suite.Equal(3, suite.f.stock("prod-sofa"))

	history, err := suite.f.svc.Stock.ListStockHistory(suite.ctx, "prod-sofa", 0, 0)
	suite.Require().NoError(err)
	suite.Empty(history)

	reservations, err := suite.f.svc.Reservation.ListReservations(suite.ctx, dto.ListReservationsParams{Limit: 20})
	suite.Require().NoError(err)
	suite.Empty(reservations)
}

func (suite *StockLedgerTestSuite) TestReserveThenCancel_HistoryNetsToZero() {
	r, err := suite.reserve("prod-drill", 5)
	suite.Require().NoError(err)
	suite.Equal(15, suite.f.stock("prod-drill"))

	cancelled, err := suite.f.svc.Reservation.CancelReservation(suite.ctx, r.ReservationID, clerk)
	suite.Require().NoError(err)
	suite.Equal(domain.ReservationCancelled, cancelled.Status)
	suite.Require().NotNil(cancelled.CompletedAt)
	suite.Equal(20, suite.f.stock("prod-drill"))

	history, err := suite.f.svc.Stock.ListStockHistory(suite.ctx, "prod-drill", 0, 0)
	suite.Require().NoError(err)
	suite.Require().Len(history, 2)
	suite.Equal(-5, history[0].Delta)
	suite.Equal(domain.StockReservation, history[0].Reason)
	suite.Equal(5, history[1].Delta)
	suite.Equal(domain.StockReservationRelease, history[1].Reason)
	suite.Equal(history[0].Reference, history[1].Reference)
	suite.Equal(0, history[0].Delta+history[1].Delta)
	suite.Equal(20, history[1].StockAfter)
}

func (suite *StockLedgerTestSuite) TestReserveAndCancel_AreInverses() {
	for _, start := range []int{3, 4, 10, 57} {
		suite.f.store.PutProduct(domain.Product{ProductID: "prod-x", Name: "Chair", StockQuantity: start, UnitPrice: dec("45.00")})

		r, err := suite.reserve("prod-x", 3)
		suite.Require().NoError(err, "start=%d", start)
		suite.Equal(start-3, suite.f.stock("prod-x"))

		_, err = suite.f.svc.Reservation.ReturnReservation(suite.ctx, r.ReservationID, clerk)
		suite.Require().NoError(err, "start=%d", start)
		suite.Equal(start, suite.f.stock("prod-x"), "start=%d", start)
	}
}

func (suite *StockLedgerTestSuite) TestCancelTwice_DoesNotCreditStockTwice() {
	r, err := suite.reserve("prod-drill", 2)
	suite.Require().NoError(err)

	_, err = suite.f.svc.Reservation.CancelReservation(suite.ctx, r.ReservationID, clerk)
	suite.Require().NoError(err)

	_, err = suite.f.svc.Reservation.CancelReservation(suite.ctx, r.ReservationID, clerk)
	suite.ErrorIs(err, apperrors.ErrReservationNotActive)
	_, err = suite.f.svc.Reservation.ReturnReservation(suite.ctx, r.ReservationID, clerk)
	suite.ErrorIs(err, apperrors.ErrReservationNotActive)

	suite.Equal(20, suite.f.stock("prod-drill"))
}

func (suite *StockLedgerTestSuite) TestRelease_RefusesMoreThanReserved() {
	stock := suite.f.svc.Stock

	level, err := stock.Reserve(suite.ctx, "prod-drill", 2, "hold:counter", clerk)
	suite.Require().NoError(err)
	suite.Equal(18, level)

	_, err = stock.Release(suite.ctx, "prod-drill", 3, "hold:counter", clerk)
	suite.ErrorIs(err, apperrors.ErrOverRelease)

	level, err = stock.Release(suite.ctx, "prod-drill", 2, "hold:counter", clerk)
	suite.Require().NoError(err)
	suite.Equal(20, level)

	_, err = stock.Release(suite.ctx, "prod-drill", 1, "hold:counter", clerk)
	suite.ErrorIs(err, apperrors.ErrOverRelease)

	_, err = stock.Release(suite.ctx, "prod-drill", 1, "", clerk)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Equal(20, suite.f.stock("prod-drill"))
}

func (suite *StockLedgerTestSuite) TestAdjust() {
	stock := suite.f.svc.Stock

	level, err := stock.Adjust(suite.ctx, "prod-sofa", 4, "", "delivery", clerk)
	suite.Require().NoError(err)
	suite.Equal(7, level)

	level, err = stock.Adjust(suite.ctx, "prod-sofa", -2, domain.StockSale, "counter sale", clerk)
	suite.Require().NoError(err)
	suite.Equal(5, level)

	_, err = stock.Adjust(suite.ctx, "prod-sofa", -6, domain.StockAdjustment, "", clerk)
	suite.ErrorIs(err, apperrors.ErrInsufficientStock)

	_, err = stock.Adjust(suite.ctx, "prod-sofa", 0, domain.StockAdjustment, "", clerk)
	suite.ErrorIs(err, apperrors.ErrInvalidQuantity)

	_, err = stock.Adjust(suite.ctx, "prod-sofa", 1, domain.StockReservation, "", clerk)
	suite.ErrorIs(err, apperrors.ErrValidation)

	_, err = stock.Adjust(suite.ctx, "prod-missing", 1, domain.StockAdjustment, "", clerk)
	suite.ErrorIs(err, apperrors.ErrNotFound)

	suite.Equal(5, suite.f.stock("prod-sofa"))
	history, err := stock.ListStockHistory(suite.ctx, "prod-sofa", 0, 0)
	suite.Require().NoError(err)
	suite.Len(history, 2)
	suite.Equal("delivery", history[0].Notes)
}

func (suite *StockLedgerTestSuite) TestConcurrentReservations_NeverOversell() {
	suite.f.store.PutProduct(domain.Product{ProductID: "prod-hot", Name: "Air fryer", StockQuantity: 10, UnitPrice: dec("399.00")})

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		refused   int
	)
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := suite.reserve("prod-hot", 1)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case suite.ErrorIs(err, apperrors.ErrInsufficientStock):
				refused++
			}
		}()
	}
	wg.Wait()

	suite.Equal(10, succeeded)
	suite.Equal(15, refused)
	suite.Equal(0, suite.f.stock("prod-hot"))
}

func TestStockLedgerTestSuite(t *testing.T) {
	suite.Run(t, new(StockLedgerTestSuite))
}
