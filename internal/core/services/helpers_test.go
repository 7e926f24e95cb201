package services_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/SscSPs/crediario_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/crediario_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/crediario_backend/internal/core/ports/services"
	"github.com/SscSPs/crediario_backend/internal/core/services"
	"github.com/SscSPs/crediario_backend/internal/dto"
	"github.com/SscSPs/crediario_backend/internal/platform/config"
	"github.com/SscSPs/crediario_backend/internal/platform/locker"
	"github.com/SscSPs/crediario_backend/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

const clerk = "clerk-1"

var testNow = time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// testClock is a settable clock shared by the services under test.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// --- Mock EventPublisher ---
type MockEventPublisher struct {
	mock.Mock
}

var _ portssvc.EventPublisher = (*MockEventPublisher)(nil)

func (m *MockEventPublisher) Publish(ctx context.Context, event domain.LedgerEvent) {
	m.Called(ctx, event)
}

// published returns the types of every event received, in order.
func (m *MockEventPublisher) published() []domain.LedgerEventType {
	var out []domain.LedgerEventType
	for _, call := range m.Calls {
		if call.Method == "Publish" {
			out = append(out, call.Arguments.Get(1).(domain.LedgerEvent).Type)
		}
	}
	return out
}

// --- Mock CustomerRepository ---
type MockCustomerRepository struct {
	mock.Mock
}

var _ portsrepo.CustomerRepository = (*MockCustomerRepository)(nil)

func (m *MockCustomerRepository) FindCustomerByID(ctx context.Context, customerID string) (*domain.Customer, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *MockCustomerRepository) IncrementTotalSpent(ctx context.Context, customerID string, amount decimal.Decimal) error {
	args := m.Called(ctx, customerID, amount)
	return args.Error(0)
}

// slowCustomerRepository fails the first failures increments, then applies the
// rest to the wrapped repository after delay.
type slowCustomerRepository struct {
	portsrepo.CustomerRepository
	failures atomic.Int32
	delay    time.Duration
}

func (r *slowCustomerRepository) IncrementTotalSpent(ctx context.Context, customerID string, amount decimal.Decimal) error {
	if r.failures.Add(-1) >= 0 {
		return errors.New("customer directory unavailable")
	}
	time.Sleep(r.delay)
	return r.CustomerRepository.IncrementTotalSpent(ctx, customerID, amount)
}

// ledgerFixture wires every service over one in-memory store.
type ledgerFixture struct {
	store     *memory.Store
	repos     portsrepo.RepositoryProvider
	svc       *portssvc.ServiceContainer
	publisher *MockEventPublisher
	clock     *testClock
}

func newLedgerFixture() *ledgerFixture {
	f := &ledgerFixture{
		store:     memory.NewStore(),
		publisher: new(MockEventPublisher),
		clock:     &testClock{now: testNow},
	}
	f.publisher.On("Publish", mock.Anything, mock.Anything).Maybe()
	f.repos = memory.NewRepositoryProvider(f.store)
	f.svc = services.NewServiceContainer(&config.Config{SideEffectMaxAttempts: 5}, f.repos,
		services.WithLocker(locker.NewLocal(5 * time.Second)),
		services.WithPublisher(f.publisher),
		services.WithClock(f.clock.Now),
	)

	f.store.PutProduct(domain.Product{ProductID: "prod-drill", Name: "Cordless drill", StockQuantity: 20, UnitPrice: dec("100.00")})
	f.store.PutProduct(domain.Product{ProductID: "prod-sofa", Name: "Sofa", StockQuantity: 3, UnitPrice: dec("1299.90")})
	f.store.PutCustomer(domain.Customer{CustomerID: "cust-maria", Name: "Maria Souza", TotalSpent: decimal.Zero})
	f.store.PutCustomer(domain.Customer{CustomerID: "cust-joao", Name: "João Lima", TotalSpent: dec("10.00")})
	return f
}

func (f *ledgerFixture) stock(productID string) int {
	p, err := f.store.FindProductByID(context.Background(), productID)
	if err != nil {
		panic(err)
	}
	return p.StockQuantity
}

func (f *ledgerFixture) customer(customerID string) domain.Customer {
	c, err := f.store.FindCustomerByID(context.Background(), customerID)
	if err != nil {
		panic(err)
	}
	return *c
}

func monthlyTerms(installments int) dto.InstallmentTermsRequest {
	return dto.InstallmentTermsRequest{
		Installments:     installments,
		PaymentFrequency: domain.FrequencyMonthly,
		FirstPaymentDate: testNow.AddDate(0, 1, 0),
	}
}

// openAccount opens an account for Maria with one free-text line of the given total.
func (f *ledgerFixture) openAccount(total string) *domain.CreditAccount {
	acc, err := f.svc.CreditAccount.OpenCreditAccount(context.Background(), dto.OpenCreditAccountRequest{
		CustomerID:              "cust-maria",
		Items:                   []dto.LineItemRequest{{Name: "Assorted goods", Quantity: 1, UnitPrice: dec(total)}},
		InstallmentTermsRequest: monthlyTerms(4),
	}, clerk)
	if err != nil {
		panic(err)
	}
	return acc
}

func pay(amount string) dto.ApplyPaymentRequest {
	return dto.ApplyPaymentRequest{Amount: dec(amount), Method: domain.PaymentPix}
}
