package dto

import (
	"time"

	"github.com/SscSPs/crediario_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// LineItemRequest is one purchased line on a credit account.
type LineItemRequest struct {
	ProductID *string         `json:"productID"` // Optional, free-text lines have no product
	Name      string          `json:"name" binding:"required"`
	Quantity  int             `json:"quantity" binding:"required,min=1"`
	UnitPrice decimal.Decimal `json:"unitPrice" binding:"gte=0"`
}

// InstallmentTermsRequest carries how the balance is split over time.
type InstallmentTermsRequest struct {
	Installments     int                     `json:"installments" binding:"required,min=1"`
	PaymentFrequency domain.PaymentFrequency `json:"paymentFrequency" binding:"required,oneof=weekly monthly"`
	FirstPaymentDate time.Time               `json:"firstPaymentDate" binding:"required"`
}

// OpenCreditAccountRequest defines the data needed to open a credit account.
type OpenCreditAccountRequest struct {
	CustomerID string            `json:"customerID" binding:"required"`
	Items      []LineItemRequest `json:"items" binding:"dive"`
	InstallmentTermsRequest
	Notes string `json:"notes"`
}

// CreditFromOrderRequest converts an existing order into installment credit.
type CreditFromOrderRequest struct {
	CustomerID string `json:"customerID" binding:"required"`
	OrderID    string `json:"orderID" binding:"required"`
	InstallmentTermsRequest
}

// AddLineItemsRequest appends purchased lines to an open account.
type AddLineItemsRequest struct {
	Items []LineItemRequest `json:"items" binding:"dive"`
}

// ListCreditAccountsParams defines query parameters for listing credit accounts.
type ListCreditAccountsParams struct {
	Status     *domain.CreditAccountStatus `form:"status" binding:"omitempty,oneof=active paid_off suspended"`
	CustomerID *string                     `form:"customerID"`
	Limit      int                         `form:"limit,default=20" binding:"min=1,max=200"`
	Offset     int                         `form:"offset,default=0" binding:"min=0"`
}

// ToLineItemDrafts converts request lines into domain drafts.
func ToLineItemDrafts(items []LineItemRequest) []domain.LineItemDraft {
	specs := make([]domain.LineItemDraft, len(items))
	for i, it := range items {
		specs[i] = domain.LineItemDraft{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		}
	}
	return specs
}

// ToInstallmentTerms converts the request terms into domain terms.
func (r InstallmentTermsRequest) ToInstallmentTerms() domain.InstallmentTerms {
	return domain.InstallmentTerms{
		Installments:     r.Installments,
		Frequency:        r.PaymentFrequency,
		FirstPaymentDate: r.FirstPaymentDate,
	}
}

// CreditAccountItemResponse defines the data returned for a line item.
type CreditAccountItemResponse struct {
	ItemID              string          `json:"itemID"`
	ProductID           *string         `json:"productID,omitempty"`
	ReservationID       *string         `json:"reservationID,omitempty"`
	ProductNameSnapshot string          `json:"productName"`
	Quantity            int             `json:"quantity"`
	UnitPriceSnapshot   decimal.Decimal `json:"unitPrice"`
	LineTotal           decimal.Decimal `json:"lineTotal"`
	CreatedAt           time.Time       `json:"createdAt"`
}

// CreditAccountResponse defines the data returned for a credit account.
type CreditAccountResponse struct {
	CreditAccountID  string                      `json:"creditAccountID"`
	CustomerID       string                      `json:"customerID"`
	AccountNumber    string                      `json:"accountNumber"`
	Status           domain.CreditAccountStatus  `json:"status"`
	TotalAmount      decimal.Decimal             `json:"totalAmount"`
	PaidAmount       decimal.Decimal             `json:"paidAmount"`
	RemainingAmount  decimal.Decimal             `json:"remainingAmount"`
	Installments     int                         `json:"installments"`
	InstallmentValue decimal.Decimal             `json:"installmentValue"`
	PaymentFrequency domain.PaymentFrequency     `json:"paymentFrequency"`
	NextPaymentDate  *time.Time                  `json:"nextPaymentDate,omitempty"`
	OrderID          *string                     `json:"orderID,omitempty"`
	OrderReference   *string                     `json:"orderReference,omitempty"`
	Notes            string                      `json:"notes"`
	CreatedAt        time.Time                   `json:"createdAt"`
	CreatedBy        string                      `json:"createdBy"`
	ClosedAt         *time.Time                  `json:"closedAt,omitempty"`
	Items            []CreditAccountItemResponse `json:"items,omitempty"`
}

// ListCreditAccountsResponse wraps the list of credit accounts.
type ListCreditAccountsResponse struct {
	CreditAccounts []CreditAccountResponse `json:"creditAccounts"`
}

// AccountBalanceResponse defines the data returned for a balance lookup.
type AccountBalanceResponse struct {
	domain.AccountBalance
}

// InstallmentScheduleResponse lists an account's installments.
type InstallmentScheduleResponse struct {
	CreditAccountID string               `json:"creditAccountID"`
	Installments    []domain.Installment `json:"installments"`
}

// RecomputeResponse reports the outcome of an integrity check.
type RecomputeResponse struct {
	Repaired bool                  `json:"repaired"`
	Account  CreditAccountResponse `json:"account"`
}

// ToCreditAccountResponse converts a domain.CreditAccount to CreditAccountResponse DTO
func ToCreditAccountResponse(a *domain.CreditAccount) CreditAccountResponse {
	res := CreditAccountResponse{
		CreditAccountID:  a.CreditAccountID,
		CustomerID:       a.CustomerID,
		AccountNumber:    a.AccountNumber,
		Status:           a.Status,
		TotalAmount:      a.TotalAmount,
		PaidAmount:       a.PaidAmount,
		RemainingAmount:  a.RemainingAmount,
		Installments:     a.Installments,
		InstallmentValue: a.InstallmentValue,
		PaymentFrequency: a.PaymentFrequency,
		NextPaymentDate:  a.NextPaymentDate,
		OrderID:          a.OrderID,
		OrderReference:   a.OrderReference,
		Notes:            a.Notes,
		CreatedAt:        a.CreatedAt,
		CreatedBy:        a.CreatedBy,
		ClosedAt:         a.ClosedAt,
	}
	if len(a.Items) > 0 {
		res.Items = make([]CreditAccountItemResponse, len(a.Items))
		for i, it := range a.Items {
			res.Items[i] = CreditAccountItemResponse{
				ItemID:              it.ItemID,
				ProductID:           it.ProductID,
				ReservationID:       it.ReservationID,
				ProductNameSnapshot: it.ProductNameSnapshot,
				Quantity:            it.Quantity,
				UnitPriceSnapshot:   it.UnitPriceSnapshot,
				LineTotal:           it.LineTotal,
				CreatedAt:           it.CreatedAt,
			}
		}
	}
	return res
}

// ToListCreditAccountsResponse converts a slice of domain.CreditAccount to the list response
func ToListCreditAccountsResponse(accounts []domain.CreditAccount) ListCreditAccountsResponse {
	res := make([]CreditAccountResponse, len(accounts))
	for i := range accounts {
		res[i] = ToCreditAccountResponse(&accounts[i])
	}
	return ListCreditAccountsResponse{CreditAccounts: res}
}
