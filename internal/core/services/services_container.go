package services

import (
	portsrepo "github.com/SscSPs/crediario_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/crediario_backend/internal/core/ports/services"
	"github.com/SscSPs/crediario_backend/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, options ...ServiceOption) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Stock and credit accounts come first since reservations drive both
	container.Stock = NewStockLedgerService(repos.TxManager, repos.StockRepo, options...)

	container.CreditAccount = NewCreditAccountService(
		repos.TxManager,
		repos.CreditRepo,
		repos.CustomerRepo,
		repos.OrderRepo,
		repos.StockRepo,
		options...,
	)

	container.Reservation = NewReservationService(
		repos.TxManager,
		repos.ReservationRepo,
		repos.StockRepo,
		repos.CustomerRepo,
		container.Stock,
		container.CreditAccount,
		options...,
	)

	container.Reconciliation = NewReconciliationService(repos,
		WithReconciliationBase(options...),
		WithSideEffectMaxAttempts(cfg.SideEffectMaxAttempts),
	)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.StockLedgerSvcFacade    = (*stockLedgerService)(nil)
	_ portssvc.ReservationSvcFacade    = (*reservationService)(nil)
	_ portssvc.CreditAccountSvcFacade  = (*creditAccountService)(nil)
	_ portssvc.ReconciliationSvcFacade = (*reconciliationService)(nil)
)
