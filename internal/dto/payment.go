package dto

import (
	"time"

	"github.com/SscSPs/crediario_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ApplyPaymentRequest defines the data needed to apply a payment to an account.
type ApplyPaymentRequest struct {
	Amount decimal.Decimal      `json:"amount" binding:"gt=0"`
	Method domain.PaymentMethod `json:"method" binding:"required,oneof=cash pix debit_card credit_card bank_transfer other"`
	Notes  string               `json:"notes"`
}

// PreviewPaymentRequest asks what a payment would do without applying it.
type PreviewPaymentRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"gt=0"`
}

// PaymentResponse defines the data returned for a payment.
type PaymentResponse struct {
	PaymentID       string               `json:"paymentID"`
	CreditAccountID string               `json:"creditAccountID"`
	Amount          decimal.Decimal      `json:"amount"`
	Method          domain.PaymentMethod `json:"method"`
	Notes           string               `json:"notes"`
	PaidAfter       decimal.Decimal      `json:"paidAfter"`
	RemainingAfter  decimal.Decimal      `json:"remainingAfter"`
	CreatedAt       time.Time            `json:"createdAt"`
	CreatedBy       string               `json:"createdBy"`
}

// ApplyPaymentResponse reports the committed payment and the resulting account.
type ApplyPaymentResponse struct {
	Payment       PaymentResponse       `json:"payment"`
	Account       CreditAccountResponse `json:"account"`
	WillBePaidOff bool                  `json:"willBePaidOff"`
	PaidOff       bool                  `json:"paidOff"`
	Warnings      []string              `json:"warnings,omitempty"`
}

// ListPaymentsResponse wraps the payments of an account.
type ListPaymentsResponse struct {
	Payments []PaymentResponse `json:"payments"`
}

// ToPaymentResponse converts a domain.Payment to PaymentResponse DTO
func ToPaymentResponse(p *domain.Payment) PaymentResponse {
	return PaymentResponse{
		PaymentID:       p.PaymentID,
		CreditAccountID: p.CreditAccountID,
		Amount:          p.Amount,
		Method:          p.Method,
		Notes:           p.Notes,
		PaidAfter:       p.PaidAfter,
		RemainingAfter:  p.RemainingAfter,
		CreatedAt:       p.CreatedAt,
		CreatedBy:       p.CreatedBy,
	}
}

// ToApplyPaymentResponse converts a domain.PaymentOutcome to ApplyPaymentResponse DTO
func ToApplyPaymentResponse(o *domain.PaymentOutcome) ApplyPaymentResponse {
	return ApplyPaymentResponse{
		Payment:       ToPaymentResponse(&o.Payment),
		Account:       ToCreditAccountResponse(&o.Account),
		WillBePaidOff: o.WillBePaidOff,
		PaidOff:       o.PaidOff,
		Warnings:      o.Warnings,
	}
}

// ToListPaymentsResponse converts a slice of domain.Payment to the list response
func ToListPaymentsResponse(payments []domain.Payment) ListPaymentsResponse {
	res := make([]PaymentResponse, len(payments))
	for i := range payments {
		res[i] = ToPaymentResponse(&payments[i])
	}
	return ListPaymentsResponse{Payments: res}
}
