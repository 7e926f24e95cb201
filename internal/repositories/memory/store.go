// Package memory is an in-process implementation of the repository ports,
// used by the memory store driver and by service scenario tests.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/SscSPs/crediario_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/crediario_backend/internal/core/ports/repositories"
)

type txCtxKey struct{}

// Store keeps every table in maps guarded by mu. Transactions are serialized by
// txMu and rolled back by restoring a snapshot taken when they began.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex

	products     map[string]domain.Product
	customers    map[string]domain.Customer
	orders       map[string]domain.Order
	reservations map[string]domain.Reservation
	accounts     map[string]domain.CreditAccount
	items        map[string][]domain.CreditAccountItem // by credit account
	payments     map[string][]domain.Payment           // by credit account
	movements    []domain.StockMovement
	sideEffects  map[string]domain.SideEffect
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		products:     make(map[string]domain.Product),
		customers:    make(map[string]domain.Customer),
		orders:       make(map[string]domain.Order),
		reservations: make(map[string]domain.Reservation),
		accounts:     make(map[string]domain.CreditAccount),
		items:        make(map[string][]domain.CreditAccountItem),
		payments:     make(map[string][]domain.Payment),
		sideEffects:  make(map[string]domain.SideEffect),
	}
}

// NewRepositoryProvider exposes a single store through every repository port.
func NewRepositoryProvider(s *Store) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		TxManager:       s,
		StockRepo:       s,
		ReservationRepo: s,
		CreditRepo:      s,
		PaymentRepo:     s,
		SideEffectRepo:  s,
		OrderRepo:       s,
		CustomerRepo:    s,
	}
}

var (
	_ portsrepo.TransactionManager            = (*Store)(nil)
	_ portsrepo.StockRepositoryFacade         = (*Store)(nil)
	_ portsrepo.ReservationRepositoryFacade   = (*Store)(nil)
	_ portsrepo.CreditAccountRepositoryFacade = (*Store)(nil)
	_ portsrepo.PaymentRepository             = (*Store)(nil)
	_ portsrepo.SideEffectRepository          = (*Store)(nil)
	_ portsrepo.OrderRepository               = (*Store)(nil)
	_ portsrepo.CustomerRepository            = (*Store)(nil)
)

type snapshot struct {
	products     map[string]domain.Product
	customers    map[string]domain.Customer
	orders       map[string]domain.Order
	reservations map[string]domain.Reservation
	accounts     map[string]domain.CreditAccount
	items        map[string][]domain.CreditAccountItem
	payments     map[string][]domain.Payment
	movements    []domain.StockMovement
	sideEffects  map[string]domain.SideEffect
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make(map[string][]domain.CreditAccountItem, len(s.items))
	for k, v := range s.items {
		items[k] = slices.Clone(v)
	}
	payments := make(map[string][]domain.Payment, len(s.payments))
	for k, v := range s.payments {
		payments[k] = slices.Clone(v)
	}
	return snapshot{
		products:     maps.Clone(s.products),
		customers:    maps.Clone(s.customers),
		orders:       maps.Clone(s.orders),
		reservations: maps.Clone(s.reservations),
		accounts:     maps.Clone(s.accounts),
		items:        items,
		payments:     payments,
		movements:    slices.Clone(s.movements),
		sideEffects:  maps.Clone(s.sideEffects),
	}
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.products = snap.products
	s.customers = snap.customers
	s.orders = snap.orders
	s.reservations = snap.reservations
	s.accounts = snap.accounts
	s.items = snap.items
	s.payments = snap.payments
	s.movements = snap.movements
	s.sideEffects = snap.sideEffects
}

func inTx(ctx context.Context) bool {
	_, ok := ctx.Value(txCtxKey{}).(bool)
	return ok
}

// WithinTx runs fn with exclusive write access, undoing its writes if it fails.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, txCtxKey{}, true)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// write applies f under the data lock. Outside a transaction it also waits for
// any running transaction so a rollback cannot discard the write.
func (s *Store) write(ctx context.Context, f func() error) error {
	if !inTx(ctx) {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return f()
}

// PutProduct inserts or replaces a catalog product.
func (s *Store) PutProduct(p domain.Product) {
	_ = s.write(context.Background(), func() error {
		s.products[p.ProductID] = p
		return nil
	})
}

// PutCustomer inserts or replaces a customer.
func (s *Store) PutCustomer(c domain.Customer) {
	_ = s.write(context.Background(), func() error {
		s.customers[c.CustomerID] = c
		return nil
	})
}

// PutOrder inserts or replaces an order.
func (s *Store) PutOrder(o domain.Order) {
	_ = s.write(context.Background(), func() error {
		s.orders[o.OrderID] = o
		return nil
	})
}

// PutCreditAccount stores an account as-is, bypassing domain checks. Used to
// load legacy rows whose totals may disagree.
func (s *Store) PutCreditAccount(a domain.CreditAccount) {
	_ = s.write(context.Background(), func() error {
		items := a.Items
		a.Items = nil
		s.accounts[a.CreditAccountID] = a
		if len(items) > 0 {
			s.items[a.CreditAccountID] = slices.Clone(items)
		}
		return nil
	})
}

func page[T any](in []T, limit, offset int) []T {
	if offset >= len(in) {
		return []T{}
	}
	in = in[offset:]
	if limit > 0 && limit < len(in) {
		in = in[:limit]
	}
	return in
}
