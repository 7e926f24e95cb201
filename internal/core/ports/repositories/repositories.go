package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	TxManager       TransactionManager
	StockRepo       StockRepositoryFacade
	ReservationRepo ReservationRepositoryFacade
	CreditRepo      CreditAccountRepositoryFacade
	PaymentRepo     PaymentRepository
	SideEffectRepo  SideEffectRepository
	OrderRepo       OrderRepository
	CustomerRepo    CustomerRepository
}
