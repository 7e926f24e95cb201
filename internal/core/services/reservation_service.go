package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/crediario_backend/internal/apperrors"
	"github.com/SscSPs/crediario_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/crediario_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/crediario_backend/internal/core/ports/services"
	"github.com/SscSPs/crediario_backend/internal/dto"
	"github.com/SscSPs/crediario_backend/internal/platform/metrics"
	"github.com/google/uuid"
)

// reservationService drives the reservation state machine. Stock moves only
// through the stock ledger and credit only through the credit account service.
type reservationService struct {
	BaseService
	txManager       portsrepo.TransactionManager
	reservationRepo portsrepo.ReservationRepositoryFacade
	productRepo     portsrepo.ProductReader
	customerRepo    portsrepo.CustomerRepository
	stockLedger     portssvc.StockLedgerWriterSvc
	creditAccounts  portssvc.CreditAccountWriterSvc
}

// NewReservationService creates a new reservation service with the provided options
func NewReservationService(
	txManager portsrepo.TransactionManager,
	reservationRepo portsrepo.ReservationRepositoryFacade,
	productRepo portsrepo.ProductReader,
	customerRepo portsrepo.CustomerRepository,
	stockLedger portssvc.StockLedgerWriterSvc,
	creditAccounts portssvc.CreditAccountWriterSvc,
	options ...ServiceOption,
) portssvc.ReservationSvcFacade {
	return &reservationService{
		BaseService:     newBaseService(options),
		txManager:       txManager,
		reservationRepo: reservationRepo,
		productRepo:     productRepo,
		customerRepo:    customerRepo,
		stockLedger:     stockLedger,
		creditAccounts:  creditAccounts,
	}
}

var _ portssvc.ReservationSvcFacade = (*reservationService)(nil)

func (s *reservationService) GetReservation(ctx context.Context, reservationID string) (*domain.Reservation, error) {
	r, err := s.reservationRepo.FindReservationByID(ctx, reservationID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find reservation", slog.String("reservation_id", reservationID))
		}
		return nil, err
	}
	return r, nil
}

func (s *reservationService) ListReservations(ctx context.Context, params dto.ListReservationsParams) ([]domain.Reservation, error) {
	reservations, err := s.reservationRepo.ListReservations(ctx, portsrepo.ReservationFilter{
		Status:          params.Status,
		ProductID:       params.ProductID,
		CustomerID:      params.CustomerID,
		CreditAccountID: params.CreditAccountID,
		Limit:           params.Limit,
		Offset:          params.Offset,
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to list reservations")
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	if reservations == nil {
		return []domain.Reservation{}, nil
	}
	return reservations, nil
}

func (s *reservationService) CreateReservation(ctx context.Context, req dto.CreateReservationRequest, userID string) (*domain.Reservation, error) {
	if req.Quantity < 1 {
		return nil, fmt.Errorf("%w: got %d", apperrors.ErrInvalidQuantity, req.Quantity)
	}
	if req.PromisedPaymentDate.IsZero() {
		return nil, fmt.Errorf("%w: promised payment date is required", apperrors.ErrValidation)
	}

	customerName := req.CustomerName
	if req.CustomerID != nil && *req.CustomerID != "" {
		customer, err := s.findCustomer(ctx, *req.CustomerID)
		if err != nil {
			return nil, err
		}
		if customerName == "" {
			customerName = customer.Name
		}
	}
	if customerName == "" {
		return nil, fmt.Errorf("%w: a customer name or a registered customer is required", apperrors.ErrValidation)
	}

	ctx, release, err := s.lock(ctx, portssvc.LockProductPrefix+req.ProductID)
	if err != nil {
		return nil, err
	}
	defer release()

	var reservation domain.Reservation
	err = s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		product, err := s.productRepo.FindProductByID(ctx, req.ProductID)
		if err != nil {
			return err
		}

		now := s.Now()
		reservation = domain.Reservation{
			ReservationID:       uuid.NewString(),
			ProductID:           product.ProductID,
			CustomerName:        customerName,
			CustomerID:          req.CustomerID,
			Quantity:            req.Quantity,
			UnitPriceSnapshot:   domain.Money(product.UnitPrice),
			PromisedPaymentDate: req.PromisedPaymentDate,
			Status:              domain.ReservationActive,
			Notes:               req.Notes,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     userID,
				LastUpdatedAt: now,
				LastUpdatedBy: userID,
			},
		}

		if _, err := s.stockLedger.Reserve(ctx, product.ProductID, req.Quantity,
			domain.ReservationReference(reservation.ReservationID), userID); err != nil {
			return err
		}
		return s.reservationRepo.SaveReservation(ctx, reservation)
	})
	if err != nil {
		s.logRefusal(ctx, err, "Failed to create reservation", slog.String("product_id", req.ProductID))
		return nil, err
	}

	metrics.ReservationTransitionsTotal.WithLabelValues(string(domain.ReservationActive)).Inc()
	s.publish(ctx, domain.EventReservationCreated, reservation.ReservationID, reservation)
	s.LogInfo(ctx, "Reservation created",
		slog.String("reservation_id", reservation.ReservationID),
		slog.String("product_id", reservation.ProductID),
		slog.Int("quantity", reservation.Quantity))
	return &reservation, nil
}

func (s *reservationService) ConvertToCreditAccount(ctx context.Context, reservationID string, req dto.ConvertReservationRequest, userID string) (*domain.CreditAccount, error) {
	terms := domain.InstallmentTerms{
		Installments:     req.Installments,
		Frequency:        req.PaymentFrequency,
		FirstPaymentDate: req.FirstPaymentDate,
	}
	if err := terms.Validate(); err != nil {
		return nil, err
	}

	ctx, release, err := s.lock(ctx,
		portssvc.LockReservationPrefix+reservationID,
		portssvc.LockCustomerPrefix+req.CustomerID)
	if err != nil {
		return nil, err
	}
	defer release()

	var account *domain.CreditAccount
	err = s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		r, err := s.reservationRepo.FindReservationByIDForUpdate(ctx, reservationID)
		if err != nil {
			return err
		}
		if r.Status != domain.ReservationActive {
			return fmt.Errorf("%w: reservation %s is %s", apperrors.ErrReservationNotActive, r.ReservationID, r.Status)
		}
		if r.IsLinked() {
			return fmt.Errorf("%w: reservation %s -> account %s", apperrors.ErrReservationLinked, r.ReservationID, *r.CreditAccountID)
		}
		if r.CustomerID != nil && *r.CustomerID != "" && *r.CustomerID != req.CustomerID {
			return fmt.Errorf("%w: reservation %s belongs to customer %s", apperrors.ErrValidation, r.ReservationID, *r.CustomerID)
		}
		if _, err := s.findCustomer(ctx, req.CustomerID); err != nil {
			return err
		}

		name := "Reserved product " + r.ProductID
		if product, err := s.productRepo.FindProductByID(ctx, r.ProductID); err == nil {
			name = product.Name
		} else if !errors.Is(err, apperrors.ErrNotFound) {
			return err
		}

		productID, resID := r.ProductID, r.ReservationID
		account, err = s.creditAccounts.AddToCustomerAccount(ctx, req.CustomerID, domain.LineItemDraft{
			ProductID:     &productID,
			ReservationID: &resID,
			Name:          name,
			Quantity:      r.Quantity,
			UnitPrice:     r.UnitPriceSnapshot,
		}, terms, userID)
		if err != nil {
			return err
		}

		if err := r.LinkCreditAccount(account.CreditAccountID, userID, s.Now()); err != nil {
			return err
		}
		if r.CustomerID == nil {
			customerID := req.CustomerID
			r.CustomerID = &customerID
		}
		return s.reservationRepo.UpdateReservation(ctx, *r)
	})
	if err != nil {
		s.logRefusal(ctx, err, "Failed to convert reservation", slog.String("reservation_id", reservationID))
		return nil, err
	}

	s.LogInfo(ctx, "Reservation converted to credit",
		slog.String("reservation_id", reservationID),
		slog.String("credit_account_id", account.CreditAccountID))
	return account, nil
}

func (s *reservationService) CancelReservation(ctx context.Context, reservationID string, userID string) (*domain.Reservation, error) {
	return s.finish(ctx, reservationID, domain.ReservationCancelled, userID)
}

func (s *reservationService) ReturnReservation(ctx context.Context, reservationID string, userID string) (*domain.Reservation, error) {
	return s.finish(ctx, reservationID, domain.ReservationReturned, userID)
}

// finish puts the reserved units back on the shelf and closes the reservation.
// The status check runs under the lock, so a second call fails instead of
// releasing the stock twice. Reservations converted to credit are refused.
func (s *reservationService) finish(ctx context.Context, reservationID string, status domain.ReservationStatus, userID string) (*domain.Reservation, error) {
	current, err := s.GetReservation(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	ctx, release, err := s.lock(ctx,
		portssvc.LockReservationPrefix+reservationID,
		portssvc.LockProductPrefix+current.ProductID)
	if err != nil {
		return nil, err
	}
	defer release()

	var r *domain.Reservation
	err = s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		found, err := s.reservationRepo.FindReservationByIDForUpdate(ctx, reservationID)
		if err != nil {
			return err
		}
		r = found
		// A converted reservation is owed on its account; it closes only as sold, on payoff.
		if r.Status == domain.ReservationActive && r.IsLinked() {
			return fmt.Errorf("%w: reservation %s is billed on account %s and cannot be %s",
				apperrors.ErrReservationLinked, r.ReservationID, *r.CreditAccountID, status)
		}
		if err := r.Complete(status, userID, s.Now()); err != nil {
			return err
		}
		if _, err := s.stockLedger.Release(ctx, r.ProductID, r.Quantity,
			domain.ReservationReference(r.ReservationID), userID); err != nil {
			return err
		}
		return s.reservationRepo.UpdateReservation(ctx, *r)
	})
	if err != nil {
		s.logRefusal(ctx, err, "Failed to close reservation",
			slog.String("reservation_id", reservationID),
			slog.String("status", string(status)))
		return nil, err
	}

	metrics.ReservationTransitionsTotal.WithLabelValues(string(status)).Inc()
	s.publish(ctx, domain.EventReservationReleased, r.ReservationID, r)
	s.LogInfo(ctx, "Reservation closed",
		slog.String("reservation_id", r.ReservationID),
		slog.String("status", string(r.Status)))
	return r, nil
}

func (s *reservationService) findCustomer(ctx context.Context, customerID string) (*domain.Customer, error) {
	customer, err := s.customerRepo.FindCustomerByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: customer %s does not exist", apperrors.ErrValidation, customerID)
		}
		return nil, err
	}
	return customer, nil
}
