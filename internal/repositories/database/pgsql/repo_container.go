package pgsql

import (
	portsrepo "github.com/SscSPs/crediario_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	paymentRepo := newPgxPaymentRepository(dbPool)
	collaboratorRepo := newPgxCollaboratorRepository(dbPool)

	return portsrepo.RepositoryProvider{
		TxManager:       newPgxTransactionManager(dbPool),
		StockRepo:       newPgxStockRepository(dbPool),
		ReservationRepo: newPgxReservationRepository(dbPool),
		CreditRepo:      newPgxCreditAccountRepository(dbPool),
		PaymentRepo:     paymentRepo,
		SideEffectRepo:  paymentRepo,
		OrderRepo:       collaboratorRepo,
		CustomerRepo:    collaboratorRepo,
	}
}
