package services_test

import (
	"context"
	"testing"

	"github.com/SscSPs/crediario_backend/internal/apperrors"
	"github.com/SscSPs/crediario_backend/internal/core/domain"
	"github.com/SscSPs/crediario_backend/internal/dto"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type ReservationServiceTestSuite struct {
	suite.Suite
	f   *ledgerFixture
	ctx context.Context
}

func (suite *ReservationServiceTestSuite) SetupTest() {
	suite.f = newLedgerFixture()
	suite.ctx = context.Background()
}

func (suite *ReservationServiceTestSuite) create(productID string, qty int, customerID *string) *domain.Reservation {
	r, err := suite.f.svc.Reservation.CreateReservation(suite.ctx, dto.CreateReservationRequest{
		ProductID:           productID,
		CustomerID:          customerID,
		Quantity:            qty,
		PromisedPaymentDate: testNow.AddDate(0, 0, 10),
	}, clerk)
	suite.Require().NoError(err)
	return r
}

func convertRequest(customerID string) dto.ConvertReservationRequest {
	return dto.ConvertReservationRequest{
		CustomerID:       customerID,
		FirstPaymentDate: testNow.AddDate(0, 1, 0),
		Installments:     3,
		PaymentFrequency: domain.FrequencyMonthly,
	}
}

func (suite *ReservationServiceTestSuite) TestCreateReservation_Success() {
	maria := "cust-maria"
	r := suite.create("prod-drill", 3, &maria)

	suite.NotEmpty(r.ReservationID)
	suite.Equal(domain.ReservationActive, r.Status)
	suite.Equal("Maria Souza", r.CustomerName, "name is taken from the customer directory")
	suite.True(dec("100.00").Equal(r.UnitPriceSnapshot))
	suite.True(dec("300.00").Equal(r.Value()))
	suite.Equal(clerk, r.CreatedBy)
	suite.Equal(testNow, r.CreatedAt)
	suite.Nil(r.CompletedAt)
	suite.Equal(17, suite.f.stock("prod-drill"))

	suite.f.publisher.AssertCalled(suite.T(), "Publish", mock.Anything, mock.MatchedBy(func(e domain.LedgerEvent) bool {
		return e.Type == domain.EventReservationCreated && e.Key == r.ReservationID
	}))
}

func (suite *ReservationServiceTestSuite) TestCreateReservation_PriceSnapshotSurvivesPriceChange() {
	r := suite.create("prod-drill", 2, nil)

	suite.f.store.PutProduct(domain.Product{ProductID: "prod-drill", Name: "Cordless drill", StockQuantity: 18, UnitPrice: dec("150.00")})

	stored, err := suite.f.svc.Reservation.GetReservation(suite.ctx, r.ReservationID)
	suite.Require().NoError(err)
	suite.True(dec("200.00").Equal(stored.Value()))
}

func (suite *ReservationServiceTestSuite) TestCreateReservation_Rejections() {
	unknown := "cust-ghost"
	tests := []struct {
		name    string
		req     dto.CreateReservationRequest
		wantErr error
	}{
		{
			name:    "zero quantity",
			req:     dto.CreateReservationRequest{ProductID: "prod-drill", CustomerName: "Ana", Quantity: 0, PromisedPaymentDate: testNow},
			wantErr: apperrors.ErrInvalidQuantity,
		},
		{
			name:    "negative quantity",
			req:     dto.CreateReservationRequest{ProductID: "prod-drill", CustomerName: "Ana", Quantity: -2, PromisedPaymentDate: testNow},
			wantErr: apperrors.ErrInvalidQuantity,
		},
		{
			name:    "unknown customer",
			req:     dto.CreateReservationRequest{ProductID: "prod-drill", CustomerID: &unknown, Quantity: 1, PromisedPaymentDate: testNow},
			wantErr: apperrors.ErrValidation,
		},
		{
			name:    "no customer at all",
			req:     dto.CreateReservationRequest{ProductID: "prod-drill", Quantity: 1, PromisedPaymentDate: testNow},
			wantErr: apperrors.ErrValidation,
		},
		{
			name:    "unknown product",
			req:     dto.CreateReservationRequest{ProductID: "prod-missing", CustomerName: "Ana", Quantity: 1, PromisedPaymentDate: testNow},
			wantErr: apperrors.ErrNotFound,
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			r, err := suite.f.svc.Reservation.CreateReservation(suite.ctx, tt.req, clerk)
			suite.ErrorIs(err, tt.wantErr)
			suite.Nil(r)
			suite.Equal(20, suite.f.stock("prod-drill"))
		})
	}
}

func (suite *ReservationServiceTestSuite) TestConvert_LinksAndKeepsReservationActive() {
	r := suite.create("prod-drill", 2, nil)

	acc, err := suite.f.svc.Reservation.ConvertToCreditAccount(suite.ctx, r.ReservationID, convertRequest("cust-maria"), clerk)
	suite.Require().NoError(err)
	suite.Equal("cust-maria", acc.CustomerID)
	suite.Equal(domain.CreditAccountActive, acc.Status)
	suite.True(dec("200.00").Equal(acc.TotalAmount))
	suite.True(dec("200.00").Equal(acc.RemainingAmount))
	suite.Require().Len(acc.Items, 1)
	suite.Equal("Cordless drill", acc.Items[0].ProductNameSnapshot)
	suite.Require().NotNil(acc.Items[0].ReservationID)
	suite.Equal(r.ReservationID, *acc.Items[0].ReservationID)

	stored, err := suite.f.svc.Reservation.GetReservation(suite.ctx, r.ReservationID)
	suite.Require().NoError(err)
	suite.Equal(domain.ReservationActive, stored.Status)
	suite.Require().NotNil(stored.CreditAccountID)
	suite.Equal(acc.CreditAccountID, *stored.CreditAccountID)
	suite.Require().NotNil(stored.CustomerID)
	suite.Equal("cust-maria", *stored.CustomerID)

	// stock was taken at reservation time only
	suite.Equal(18, suite.f.stock("prod-drill"))
}

func (suite *ReservationServiceTestSuite) TestConvert_ReusesCustomersOpenAccount() {
	first := suite.create("prod-drill", 1, nil)
	second := suite.create("prod-sofa", 1, nil)

	acc1, err := suite.f.svc.Reservation.ConvertToCreditAccount(suite.ctx, first.ReservationID, convertRequest("cust-maria"), clerk)
	suite.Require().NoError(err)
	acc2, err := suite.f.svc.Reservation.ConvertToCreditAccount(suite.ctx, second.ReservationID, convertRequest("cust-maria"), clerk)
	suite.Require().NoError(err)

	suite.Equal(acc1.CreditAccountID, acc2.CreditAccountID)
	suite.True(dec("1399.90").Equal(acc2.TotalAmount))
	suite.Len(acc2.Items, 2)
	suite.True(domain.SumLineTotals(acc2.Items).Equal(acc2.TotalAmount))

	linked, err := suite.f.svc.Reservation.ListReservations(suite.ctx, dto.ListReservationsParams{CreditAccountID: &acc1.CreditAccountID, Limit: 20})
	suite.Require().NoError(err)
	suite.Len(linked, 2)
}

func (suite *ReservationServiceTestSuite) TestConvert_Rejections() {
	r := suite.create("prod-drill", 1, nil)
	_, err := suite.f.svc.Reservation.ConvertToCreditAccount(suite.ctx, r.ReservationID, convertRequest("cust-maria"), clerk)
	suite.Require().NoError(err)

	_, err = suite.f.svc.Reservation.ConvertToCreditAccount(suite.ctx, r.ReservationID, convertRequest("cust-maria"), clerk)
	suite.ErrorIs(err, apperrors.ErrReservationLinked)

	cancelled := suite.create("prod-drill", 1, nil)
	_, err = suite.f.svc.Reservation.CancelReservation(suite.ctx, cancelled.ReservationID, clerk)
	suite.Require().NoError(err)
	_, err = suite.f.svc.Reservation.ConvertToCreditAccount(suite.ctx, cancelled.ReservationID, convertRequest("cust-maria"), clerk)
	suite.ErrorIs(err, apperrors.ErrReservationNotActive)

	joao := "cust-joao"
	owned := suite.create("prod-drill", 1, &joao)
	_, err = suite.f.svc.Reservation.ConvertToCreditAccount(suite.ctx, owned.ReservationID, convertRequest("cust-maria"), clerk)
	suite.ErrorIs(err, apperrors.ErrValidation)

	fresh := suite.create("prod-drill", 1, nil)
	bad := convertRequest("cust-maria")
	bad.Installments = 0
	_, err = suite.f.svc.Reservation.ConvertToCreditAccount(suite.ctx, fresh.ReservationID, bad, clerk)
	suite.ErrorIs(err, apperrors.ErrValidation)

	_, err = suite.f.svc.Reservation.ConvertToCreditAccount(suite.ctx, "res-missing", convertRequest("cust-maria"), clerk)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *ReservationServiceTestSuite) TestCloseLinkedReservation_Refused() {
	r := suite.create("prod-sofa", 2, nil)
	acc, err := suite.f.svc.Reservation.ConvertToCreditAccount(suite.ctx, r.ReservationID, convertRequest("cust-maria"), clerk)
	suite.Require().NoError(err)
	suite.Equal(1, suite.f.stock("prod-sofa"))

	_, err = suite.f.svc.Reservation.ReturnReservation(suite.ctx, r.ReservationID, clerk)
	suite.ErrorIs(err, apperrors.ErrReservationLinked)
	_, err = suite.f.svc.Reservation.CancelReservation(suite.ctx, r.ReservationID, clerk)
	suite.ErrorIs(err, apperrors.ErrReservationLinked)

	// nothing moved: the stock stays out and the account still bills the sofas
	suite.Equal(1, suite.f.stock("prod-sofa"))
	stored, err := suite.f.svc.Reservation.GetReservation(suite.ctx, r.ReservationID)
	suite.Require().NoError(err)
	suite.Equal(domain.ReservationActive, stored.Status)
	suite.Nil(stored.CompletedAt)

	account, err := suite.f.svc.CreditAccount.GetCreditAccount(suite.ctx, acc.CreditAccountID)
	suite.Require().NoError(err)
	suite.True(dec("2599.80").Equal(account.TotalAmount))
}

func TestReservationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReservationServiceTestSuite))
}
