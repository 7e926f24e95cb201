package services_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/SscSPs/crediario_backend/internal/apperrors"
	"github.com/SscSPs/crediario_backend/internal/core/domain"
	"github.com/SscSPs/crediario_backend/internal/dto"
	"github.com/stretchr/testify/suite"
)

var accountNumberPattern = regexp.MustCompile(`^CR-202603-[23456789ABCDEFGHJKLMNPQRSTUVWXYZ]{6}$`)

type CreditAccountServiceTestSuite struct {
	suite.Suite
	f   *ledgerFixture
	ctx context.Context
}

func (suite *CreditAccountServiceTestSuite) SetupTest() {
	suite.f = newLedgerFixture()
	suite.ctx = context.Background()
	suite.f.store.PutOrder(domain.Order{
		OrderID:       "ord-1",
		OrderNumber:   "PED-0001",
		CustomerID:    "cust-maria",
		Total:         dec("480.00"),
		Status:        domain.OrderPending,
		PaymentStatus: domain.OrderUnpaid,
	})
}

func (suite *CreditAccountServiceTestSuite) order(orderID string) domain.Order {
	o, err := suite.f.store.FindOrderByID(suite.ctx, orderID)
	suite.Require().NoError(err)
	return *o
}

func (suite *CreditAccountServiceTestSuite) TestOpenCreditAccount_Success() {
	drill := "prod-drill"
	acc, err := suite.f.svc.CreditAccount.OpenCreditAccount(suite.ctx, dto.OpenCreditAccountRequest{
		CustomerID: "cust-maria",
		Items: []dto.LineItemRequest{
			{ProductID: &drill, Name: "Cordless drill", Quantity: 2, UnitPrice: dec("100.00")},
			{Name: "Extension cord", Quantity: 1, UnitPrice: dec("35.50")},
		},
		InstallmentTermsRequest: monthlyTerms(5),
		Notes:                   "store pickup",
	}, clerk)
	suite.Require().NoError(err)

	suite.Regexp(accountNumberPattern, acc.AccountNumber)
	suite.Equal(domain.CreditAccountActive, acc.Status)
	suite.True(dec("235.50").Equal(acc.TotalAmount))
	suite.True(acc.PaidAmount.IsZero())
	suite.True(dec("235.50").Equal(acc.RemainingAmount))
	suite.True(dec("47.10").Equal(acc.InstallmentValue))
	suite.Require().NotNil(acc.NextPaymentDate)
	suite.Equal(testNow.AddDate(0, 1, 0), *acc.NextPaymentDate)
	suite.Equal("store pickup", acc.Notes)
	suite.Len(acc.Items, 2)

	stored, err := suite.f.svc.CreditAccount.GetCreditAccount(suite.ctx, acc.CreditAccountID)
	suite.Require().NoError(err)
	suite.Len(stored.Items, 2)
	suite.True(domain.SumLineTotals(stored.Items).Equal(stored.TotalAmount))

	// opening an account does not touch stock
	suite.Equal(20, suite.f.stock("prod-drill"))
}

func (suite *CreditAccountServiceTestSuite) TestOpenCreditAccount_Rejections() {
	ghost := "prod-ghost"
	tests := []struct {
		name    string
		req     dto.OpenCreditAccountRequest
		wantErr error
	}{
		{
			name:    "no items",
			req:     dto.OpenCreditAccountRequest{CustomerID: "cust-maria", InstallmentTermsRequest: monthlyTerms(2)},
			wantErr: apperrors.ErrEmptyLineItems,
		},
		{
			name: "unknown customer",
			req: dto.OpenCreditAccountRequest{
				CustomerID:              "cust-ghost",
				Items:                   []dto.LineItemRequest{{Name: "Chair", Quantity: 1, UnitPrice: dec("80.00")}},
				InstallmentTermsRequest: monthlyTerms(2),
			},
			wantErr: apperrors.ErrValidation,
		},
		{
			name: "unknown product",
			req: dto.OpenCreditAccountRequest{
				CustomerID:              "cust-maria",
				Items:                   []dto.LineItemRequest{{ProductID: &ghost, Name: "Ghost", Quantity: 1, UnitPrice: dec("80.00")}},
				InstallmentTermsRequest: monthlyTerms(2),
			},
			wantErr: apperrors.ErrValidation,
		},
		{
			name: "zero total",
			req: dto.OpenCreditAccountRequest{
				CustomerID:              "cust-maria",
				Items:                   []dto.LineItemRequest{{Name: "Gift", Quantity: 1, UnitPrice: dec("0")}},
				InstallmentTermsRequest: monthlyTerms(2),
			},
			wantErr: apperrors.ErrInvalidAmount,
		},
		{
			name: "zero installments",
			req: dto.OpenCreditAccountRequest{
				CustomerID:              "cust-maria",
				Items:                   []dto.LineItemRequest{{Name: "Chair", Quantity: 1, UnitPrice: dec("80.00")}},
				InstallmentTermsRequest: monthlyTerms(0),
			},
			wantErr: apperrors.ErrValidation,
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			acc, err := suite.f.svc.CreditAccount.OpenCreditAccount(suite.ctx, tt.req, clerk)
			suite.ErrorIs(err, tt.wantErr)
			suite.Nil(acc)
		})
	}
}

func (suite *CreditAccountServiceTestSuite) TestInstallmentSchedule_LastInstallmentAbsorbsRemainder() {
	acc, err := suite.f.svc.CreditAccount.OpenCreditAccount(suite.ctx, dto.OpenCreditAccountRequest{
		CustomerID:              "cust-maria",
		Items:                   []dto.LineItemRequest{{Name: "Rug", Quantity: 1, UnitPrice: dec("100.00")}},
		InstallmentTermsRequest: monthlyTerms(3),
	}, clerk)
	suite.Require().NoError(err)

	schedule, err := suite.f.svc.CreditAccount.GetInstallmentSchedule(suite.ctx, acc.CreditAccountID)
	suite.Require().NoError(err)
	suite.Require().Len(schedule, 3)

	want := []string{"33.33", "33.33", "33.34"}
	for i, inst := range schedule {
		suite.Equal(i+1, inst.Number)
		suite.True(dec(want[i]).Equal(inst.Amount), "installment %d is %s", inst.Number, inst.Amount)
		suite.Equal(domain.InstallmentOpen, inst.Status)
		suite.Equal(testNow.AddDate(0, i+1, 0), inst.DueDate)
	}

	_, err = suite.f.svc.Reconciliation.ApplyPayment(suite.ctx, acc.CreditAccountID, pay("40.00"), clerk)
	suite.Require().NoError(err)

	schedule, err = suite.f.svc.CreditAccount.GetInstallmentSchedule(suite.ctx, acc.CreditAccountID)
	suite.Require().NoError(err)
	suite.Equal(domain.InstallmentPaid, schedule[0].Status)
	suite.Equal(domain.InstallmentPartial, schedule[1].Status)
	suite.True(dec("6.67").Equal(schedule[1].PaidAmount))
	suite.Equal(domain.InstallmentOpen, schedule[2].Status)

	balance, err := suite.f.svc.CreditAccount.GetAccountBalance(suite.ctx, acc.CreditAccountID)
	suite.Require().NoError(err)
	suite.Require().NotNil(balance.NextPaymentDate)
	suite.Equal(testNow.AddDate(0, 2, 0), *balance.NextPaymentDate)
}

func (suite *CreditAccountServiceTestSuite) TestFindOrCreateForOrder_CreatesThenReuses() {
	req := dto.CreditFromOrderRequest{CustomerID: "cust-maria", OrderID: "ord-1", InstallmentTermsRequest: monthlyTerms(4)}

	acc, created, err := suite.f.svc.CreditAccount.FindOrCreateForOrder(suite.ctx, req, clerk)
	suite.Require().NoError(err)
	suite.True(created)
	suite.True(dec("480.00").Equal(acc.TotalAmount))
	suite.True(dec("120.00").Equal(acc.InstallmentValue))
	suite.Require().NotNil(acc.OrderID)
	suite.Equal("ord-1", *acc.OrderID)
	suite.Require().NotNil(acc.OrderReference)
	suite.Equal("PED-0001", *acc.OrderReference)
	suite.Require().Len(acc.Items, 1)
	suite.Equal("Order PED-0001", acc.Items[0].ProductNameSnapshot)

	o := suite.order("ord-1")
	suite.Equal(domain.OrderOnCredit, o.PaymentStatus)
	suite.Equal(domain.OrderPending, o.Status)

	again, created, err := suite.f.svc.CreditAccount.FindOrCreateForOrder(suite.ctx, req, clerk)
	suite.Require().NoError(err)
	suite.False(created)
	suite.Equal(acc.CreditAccountID, again.CreditAccountID)
	suite.Len(again.Items, 1)

	// order accounts are kept apart from the customer's running account
	_, err = suite.f.store.FindOpenCreditAccountByCustomer(suite.ctx, "cust-maria")
	suite.ErrorIs(err, apperrors.ErrAccountNotFound)
}

func (suite *CreditAccountServiceTestSuite) TestFindOrCreateForOrder_Rejections() {
	suite.f.store.PutOrder(domain.Order{OrderID: "ord-paid", OrderNumber: "PED-0002", CustomerID: "cust-maria",
		Total: dec("50.00"), Status: domain.OrderCompleted, PaymentStatus: domain.OrderPaid})
	suite.f.store.PutOrder(domain.Order{OrderID: "ord-void", OrderNumber: "PED-0003", CustomerID: "cust-maria",
		Total: dec("50.00"), Status: domain.OrderCancelled, PaymentStatus: domain.OrderUnpaid})

	tests := []struct {
		name       string
		customerID string
		orderID    string
		wantErr    error
	}{
		{name: "another customer's order", customerID: "cust-joao", orderID: "ord-1", wantErr: apperrors.ErrValidation},
		{name: "paid order", customerID: "cust-maria", orderID: "ord-paid", wantErr: apperrors.ErrValidation},
		{name: "cancelled order", customerID: "cust-maria", orderID: "ord-void", wantErr: apperrors.ErrValidation},
		{name: "unknown order", customerID: "cust-maria", orderID: "ord-ghost", wantErr: apperrors.ErrNotFound},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			acc, created, err := suite.f.svc.CreditAccount.FindOrCreateForOrder(suite.ctx, dto.CreditFromOrderRequest{
				CustomerID:              tt.customerID,
				OrderID:                 tt.orderID,
				InstallmentTermsRequest: monthlyTerms(2),
			}, clerk)
			suite.ErrorIs(err, tt.wantErr)
			suite.Nil(acc)
			suite.False(created)
		})
	}
}

func (suite *CreditAccountServiceTestSuite) TestAddLineItems() {
	acc := suite.f.openAccount("100.00")
	_, err := suite.f.svc.Reconciliation.ApplyPayment(suite.ctx, acc.CreditAccountID, pay("30.00"), clerk)
	suite.Require().NoError(err)

	updated, err := suite.f.svc.CreditAccount.AddLineItems(suite.ctx, acc.CreditAccountID, dto.AddLineItemsRequest{
		Items: []dto.LineItemRequest{{Name: "Lamp", Quantity: 2, UnitPrice: dec("25.00")}},
	}, clerk)
	suite.Require().NoError(err)
	suite.True(dec("150.00").Equal(updated.TotalAmount))
	suite.True(dec("30.00").Equal(updated.PaidAmount))
	suite.True(dec("120.00").Equal(updated.RemainingAmount))
	suite.True(dec("37.50").Equal(updated.InstallmentValue))
	suite.Len(updated.Items, 2)
	suite.True(domain.SumLineTotals(updated.Items).Equal(updated.TotalAmount))

	_, err = suite.f.svc.CreditAccount.AddLineItems(suite.ctx, acc.CreditAccountID, dto.AddLineItemsRequest{}, clerk)
	suite.ErrorIs(err, apperrors.ErrEmptyLineItems)

	_, err = suite.f.svc.CreditAccount.AddLineItems(suite.ctx, "acc-ghost", dto.AddLineItemsRequest{
		Items: []dto.LineItemRequest{{Name: "Lamp", Quantity: 1, UnitPrice: dec("25.00")}},
	}, clerk)
	suite.ErrorIs(err, apperrors.ErrAccountNotFound)
}

func (suite *CreditAccountServiceTestSuite) TestAddLineItems_PaidOffAccountRefused() {
	acc := suite.f.openAccount("60.00")
	_, err := suite.f.svc.Reconciliation.ApplyPayment(suite.ctx, acc.CreditAccountID, pay("60.00"), clerk)
	suite.Require().NoError(err)

	_, err = suite.f.svc.CreditAccount.AddLineItems(suite.ctx, acc.CreditAccountID, dto.AddLineItemsRequest{
		Items: []dto.LineItemRequest{{Name: "Lamp", Quantity: 1, UnitPrice: dec("25.00")}},
	}, clerk)
	suite.ErrorIs(err, apperrors.ErrAccountNotActive)

	stored, err := suite.f.svc.CreditAccount.GetCreditAccount(suite.ctx, acc.CreditAccountID)
	suite.Require().NoError(err)
	suite.True(dec("60.00").Equal(stored.TotalAmount))
	suite.Len(stored.Items, 1)
}

func (suite *CreditAccountServiceTestSuite) TestRecomputeTotals_RepairsOnceThenIsIdempotent() {
	acc := suite.f.openAccount("100.00")

	corrupted, err := suite.f.store.FindCreditAccountByID(suite.ctx, acc.CreditAccountID)
	suite.Require().NoError(err)
	corrupted.RemainingAmount = dec("10.00")
	suite.f.store.PutCreditAccount(*corrupted)

	repairedAcc, repaired, err := suite.f.svc.CreditAccount.RecomputeTotals(suite.ctx, acc.CreditAccountID, clerk)
	suite.Require().NoError(err)
	suite.True(repaired)
	suite.True(dec("100.00").Equal(repairedAcc.RemainingAmount))
	suite.Equal(domain.CreditAccountActive, repairedAcc.Status)

	again, repaired, err := suite.f.svc.CreditAccount.RecomputeTotals(suite.ctx, acc.CreditAccountID, clerk)
	suite.Require().NoError(err)
	suite.False(repaired)
	suite.True(repairedAcc.RemainingAmount.Equal(again.RemainingAmount))
	suite.Equal(repairedAcc.Status, again.Status)
}

func (suite *CreditAccountServiceTestSuite) TestGetAccountBalance_RepairsInconsistentStatus() {
	acc := suite.f.openAccount("100.00")

	corrupted, err := suite.f.store.FindCreditAccountByID(suite.ctx, acc.CreditAccountID)
	suite.Require().NoError(err)
	corrupted.PaidAmount = dec("100.00")
	suite.f.store.PutCreditAccount(*corrupted)

	balance, err := suite.f.svc.CreditAccount.GetAccountBalance(suite.ctx, acc.CreditAccountID)
	suite.Require().NoError(err)
	suite.Equal(domain.CreditAccountPaidOff, balance.Status)
	suite.True(balance.RemainingAmount.IsZero())

	stored, err := suite.f.store.FindCreditAccountByID(suite.ctx, acc.CreditAccountID)
	suite.Require().NoError(err)
	suite.True(stored.IsConsistent())
	suite.NotNil(stored.ClosedAt)
}

func (suite *CreditAccountServiceTestSuite) TestSuspendAndReactivate() {
	acc := suite.f.openAccount("100.00")

	suspended, err := suite.f.svc.CreditAccount.SuspendCreditAccount(suite.ctx, acc.CreditAccountID, clerk)
	suite.Require().NoError(err)
	suite.Equal(domain.CreditAccountSuspended, suspended.Status)

	_, err = suite.f.svc.CreditAccount.SuspendCreditAccount(suite.ctx, acc.CreditAccountID, clerk)
	suite.ErrorIs(err, apperrors.ErrAccountNotActive)

	_, err = suite.f.svc.CreditAccount.AddLineItems(suite.ctx, acc.CreditAccountID, dto.AddLineItemsRequest{
		Items: []dto.LineItemRequest{{Name: "Lamp", Quantity: 1, UnitPrice: dec("25.00")}},
	}, clerk)
	suite.ErrorIs(err, apperrors.ErrAccountNotActive)

	reactivated, err := suite.f.svc.CreditAccount.ReactivateCreditAccount(suite.ctx, acc.CreditAccountID, clerk)
	suite.Require().NoError(err)
	suite.Equal(domain.CreditAccountActive, reactivated.Status)

	_, err = suite.f.svc.CreditAccount.ReactivateCreditAccount(suite.ctx, acc.CreditAccountID, clerk)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *CreditAccountServiceTestSuite) TestListCreditAccounts_FiltersByStatus() {
	first := suite.f.openAccount("100.00")
	suite.f.openAccount("50.00")
	_, err := suite.f.svc.Reconciliation.ApplyPayment(suite.ctx, first.CreditAccountID, pay("100.00"), clerk)
	suite.Require().NoError(err)

	paidOff := domain.CreditAccountPaidOff
	accounts, err := suite.f.svc.CreditAccount.ListCreditAccounts(suite.ctx, dto.ListCreditAccountsParams{Status: &paidOff, Limit: 20})
	suite.Require().NoError(err)
	suite.Require().Len(accounts, 1)
	suite.Equal(first.CreditAccountID, accounts[0].CreditAccountID)

	maria := "cust-maria"
	accounts, err = suite.f.svc.CreditAccount.ListCreditAccounts(suite.ctx, dto.ListCreditAccountsParams{CustomerID: &maria, Limit: 20})
	suite.Require().NoError(err)
	suite.Len(accounts, 2)
}

func TestCreditAccountServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CreditAccountServiceTestSuite))
}
