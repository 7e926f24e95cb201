package mapping

import (
	"github.com/SscSPs/crediario_backend/internal/core/domain"
	"github.com/SscSPs/crediario_backend/internal/models"
)

// ToModelReservation converts a domain Reservation to a model Reservation
func ToModelReservation(d domain.Reservation) models.Reservation {
	return models.Reservation{
		ReservationID:       d.ReservationID,
		ProductID:           d.ProductID,
		CustomerName:        d.CustomerName,
		CustomerID:          d.CustomerID,
		Quantity:            d.Quantity,
		UnitPriceSnapshot:   d.UnitPriceSnapshot,
		PromisedPaymentDate: d.PromisedPaymentDate,
		Status:              string(d.Status),
		CreditAccountID:     d.CreditAccountID,
		Notes:               d.Notes,
		CompletedAt:         d.CompletedAt,
		AuditFields:         ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainReservation converts a model Reservation to a domain Reservation
func ToDomainReservation(m models.Reservation) domain.Reservation {
	return domain.Reservation{
		ReservationID:       m.ReservationID,
		ProductID:           m.ProductID,
		CustomerName:        m.CustomerName,
		CustomerID:          m.CustomerID,
		Quantity:            m.Quantity,
		UnitPriceSnapshot:   m.UnitPriceSnapshot,
		PromisedPaymentDate: m.PromisedPaymentDate,
		Status:              domain.ReservationStatus(m.Status),
		CreditAccountID:     m.CreditAccountID,
		Notes:               m.Notes,
		CompletedAt:         m.CompletedAt,
		AuditFields:         ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainReservationSlice converts a slice of model Reservations to domain Reservations
func ToDomainReservationSlice(ms []models.Reservation) []domain.Reservation {
	ds := make([]domain.Reservation, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainReservation(m)
	}
	return ds
}
