package mapping

import (
	"github.com/SscSPs/crediario_backend/internal/core/domain"
	"github.com/SscSPs/crediario_backend/internal/models"
)

// ToModelCreditAccount converts a domain CreditAccount to a model CreditAccount. Items are mapped separately.
func ToModelCreditAccount(d domain.CreditAccount) models.CreditAccount {
	return models.CreditAccount{
		CreditAccountID:  d.CreditAccountID,
		CustomerID:       d.CustomerID,
		AccountNumber:    d.AccountNumber,
		Status:           string(d.Status),
		TotalAmount:      d.TotalAmount,
		PaidAmount:       d.PaidAmount,
		RemainingAmount:  d.RemainingAmount,
		Installments:     d.Installments,
		InstallmentValue: d.InstallmentValue,
		PaymentFrequency: string(d.PaymentFrequency),
		FirstPaymentDate: d.FirstPaymentDate,
		NextPaymentDate:  d.NextPaymentDate,
		OrderID:          d.OrderID,
		OrderReference:   d.OrderReference,
		Notes:            d.Notes,
		ClosedAt:         d.ClosedAt,
		AuditFields:      ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainCreditAccount converts a model CreditAccount to a domain CreditAccount
func ToDomainCreditAccount(m models.CreditAccount) domain.CreditAccount {
	return domain.CreditAccount{
		CreditAccountID:  m.CreditAccountID,
		CustomerID:       m.CustomerID,
		AccountNumber:    m.AccountNumber,
		Status:           domain.CreditAccountStatus(m.Status),
		TotalAmount:      m.TotalAmount,
		PaidAmount:       m.PaidAmount,
		RemainingAmount:  m.RemainingAmount,
		Installments:     m.Installments,
		InstallmentValue: m.InstallmentValue,
		PaymentFrequency: domain.PaymentFrequency(m.PaymentFrequency),
		FirstPaymentDate: m.FirstPaymentDate,
		NextPaymentDate:  m.NextPaymentDate,
		OrderID:          m.OrderID,
		OrderReference:   m.OrderReference,
		Notes:            m.Notes,
		ClosedAt:         m.ClosedAt,
		AuditFields:      ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainCreditAccountSlice converts a slice of model CreditAccounts to domain CreditAccounts
func ToDomainCreditAccountSlice(ms []models.CreditAccount) []domain.CreditAccount {
	ds := make([]domain.CreditAccount, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainCreditAccount(m)
	}
	return ds
}

// ToModelCreditAccountItem converts a domain CreditAccountItem to a model CreditAccountItem
func ToModelCreditAccountItem(d domain.CreditAccountItem) models.CreditAccountItem {
	return models.CreditAccountItem{
		ItemID:              d.ItemID,
		CreditAccountID:     d.CreditAccountID,
		ProductID:           d.ProductID,
		ReservationID:       d.ReservationID,
		ProductNameSnapshot: d.ProductNameSnapshot,
		Quantity:            d.Quantity,
		UnitPriceSnapshot:   d.UnitPriceSnapshot,
		LineTotal:           d.LineTotal,
		CreatedAt:           d.CreatedAt,
	}
}

// ToDomainCreditAccountItemSlice converts a slice of model items to domain items
func ToDomainCreditAccountItemSlice(ms []models.CreditAccountItem) []domain.CreditAccountItem {
	ds := make([]domain.CreditAccountItem, len(ms))
	for i, m := range ms {
		ds[i] = domain.CreditAccountItem{
			ItemID:              m.ItemID,
			CreditAccountID:     m.CreditAccountID,
			ProductID:           m.ProductID,
			ReservationID:       m.ReservationID,
			ProductNameSnapshot: m.ProductNameSnapshot,
			Quantity:            m.Quantity,
			UnitPriceSnapshot:   m.UnitPriceSnapshot,
			LineTotal:           m.LineTotal,
			CreatedAt:           m.CreatedAt,
		}
	}
	return ds
}

// ToModelCreditPayment converts a domain Payment to a model CreditPayment
func ToModelCreditPayment(d domain.Payment) models.CreditPayment {
	return models.CreditPayment{
		PaymentID:       d.PaymentID,
		CreditAccountID: d.CreditAccountID,
		Amount:          d.Amount,
		Method:          string(d.Method),
		Notes:           d.Notes,
		PaidAfter:       d.PaidAfter,
		RemainingAfter:  d.RemainingAfter,
		CreatedAt:       d.CreatedAt,
		CreatedBy:       d.CreatedBy,
	}
}

// ToDomainPaymentSlice converts a slice of model CreditPayments to domain Payments
func ToDomainPaymentSlice(ms []models.CreditPayment) []domain.Payment {
	ds := make([]domain.Payment, len(ms))
	for i, m := range ms {
		ds[i] = domain.Payment{
			PaymentID:       m.PaymentID,
			CreditAccountID: m.CreditAccountID,
			Amount:          m.Amount,
			Method:          domain.PaymentMethod(m.Method),
			Notes:           m.Notes,
			PaidAfter:       m.PaidAfter,
			RemainingAfter:  m.RemainingAfter,
			CreatedAt:       m.CreatedAt,
			CreatedBy:       m.CreatedBy,
		}
	}
	return ds
}

// ToModelSideEffect converts a domain SideEffect to a model SideEffect
func ToModelSideEffect(d domain.SideEffect) models.SideEffect {
	return models.SideEffect{
		SideEffectID:    d.SideEffectID,
		CreditAccountID: d.CreditAccountID,
		PaymentID:       d.PaymentID,
		Kind:            string(d.Kind),
		Status:          string(d.Status),
		Amount:          d.Amount,
		TargetID:        d.TargetID,
		Attempts:        d.Attempts,
		LastError:       d.LastError,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

// ToDomainSideEffect converts a model SideEffect to a domain SideEffect
func ToDomainSideEffect(m models.SideEffect) domain.SideEffect {
	return domain.SideEffect{
		SideEffectID:    m.SideEffectID,
		CreditAccountID: m.CreditAccountID,
		PaymentID:       m.PaymentID,
		Kind:            domain.SideEffectKind(m.Kind),
		Status:          domain.SideEffectStatus(m.Status),
		Amount:          m.Amount,
		TargetID:        m.TargetID,
		Attempts:        m.Attempts,
		LastError:       m.LastError,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

// ToDomainSideEffectSlice converts a slice of model SideEffects to domain SideEffects
func ToDomainSideEffectSlice(ms []models.SideEffect) []domain.SideEffect {
	ds := make([]domain.SideEffect, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainSideEffect(m)
	}
	return ds
}
