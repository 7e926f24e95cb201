package domain_test

import (
	"testing"

	"github.com/SscSPs/crediario_backend/internal/apperrors"
	"github.com/SscSPs/crediario_backend/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activeReservation() domain.Reservation {
	return domain.Reservation{
		ReservationID:     "res-1",
		ProductID:         "prod-1",
		CustomerName:      "Maria",
		Quantity:          3,
		UnitPriceSnapshot: dec("19.90"),
		Status:            domain.ReservationActive,
	}
}

func TestReservation_Value(t *testing.T) {
	r := activeReservation()
	assert.True(t, dec("59.70").Equal(r.Value()))
}

func TestReservation_Complete(t *testing.T) {
	tests := []struct {
		name    string
		target  domain.ReservationStatus
		wantErr error
	}{
		{name: "sold", target: domain.ReservationSold},
		{name: "cancelled", target: domain.ReservationCancelled},
		{name: "returned", target: domain.ReservationReturned},
		{name: "active is not terminal", target: domain.ReservationActive, wantErr: apperrors.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := activeReservation()
			err := r.Complete(tt.target, "clerk", testNow)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, domain.ReservationActive, r.Status)
				assert.Nil(t, r.CompletedAt)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.target, r.Status)
			require.NotNil(t, r.CompletedAt)
			assert.Equal(t, testNow, *r.CompletedAt)

			// terminal states are final
			err = r.Complete(domain.ReservationCancelled, "clerk", testNow)
			assert.ErrorIs(t, err, apperrors.ErrReservationNotActive)
			assert.Equal(t, tt.target, r.Status)
		})
	}
}

func TestReservation_LinkCreditAccount(t *testing.T) {
	r := activeReservation()
	require.NoError(t, r.LinkCreditAccount("acc-1", "clerk", testNow))
	assert.True(t, r.IsLinked())
	assert.Equal(t, domain.ReservationActive, r.Status, "conversion keeps the reservation active")

	assert.ErrorIs(t, r.LinkCreditAccount("acc-2", "clerk", testNow), apperrors.ErrReservationLinked)

	done := activeReservation()
	require.NoError(t, done.Complete(domain.ReservationCancelled, "clerk", testNow))
	assert.ErrorIs(t, done.LinkCreditAccount("acc-1", "clerk", testNow), apperrors.ErrReservationNotActive)
}
