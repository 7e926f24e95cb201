package domain

import (
	"fmt"
	"time"

	"github.com/SscSPs/crediario_backend/internal/apperrors"
	"github.com/shopspring/decimal"
)

// CreditAccountStatus is the state of an installment-credit account.
type CreditAccountStatus string

const (
	CreditAccountActive    CreditAccountStatus = "active"
	CreditAccountPaidOff   CreditAccountStatus = "paid_off"
	CreditAccountSuspended CreditAccountStatus = "suspended"
)

// PaymentFrequency is how often an installment falls due.
type PaymentFrequency string

const (
	FrequencyWeekly  PaymentFrequency = "weekly"
	FrequencyMonthly PaymentFrequency = "monthly"
)

// IsValid reports whether f is a supported frequency.
func (f PaymentFrequency) IsValid() bool {
	return f == FrequencyWeekly || f == FrequencyMonthly
}

// Advance returns the date n periods after t.
func (f PaymentFrequency) Advance(t time.Time, n int) time.Time {
	if f == FrequencyWeekly {
		return t.AddDate(0, 0, 7*n)
	}
	return t.AddDate(0, n, 0)
}

// InstallmentTerms describes how an account's balance is split over time.
type InstallmentTerms struct {
	Installments     int
	Frequency        PaymentFrequency
	FirstPaymentDate time.Time
}

// Validate checks the terms before an account is opened with them.
func (t InstallmentTerms) Validate() error {
	if t.Installments < 1 {
		return fmt.Errorf("%w: installments must be at least 1", apperrors.ErrValidation)
	}
	if !t.Frequency.IsValid() {
		return fmt.Errorf("%w: unsupported payment frequency %q", apperrors.ErrValidation, t.Frequency)
	}
	if t.FirstPaymentDate.IsZero() {
		return fmt.Errorf("%w: first payment date is required", apperrors.ErrValidation)
	}
	return nil
}

// CreditAccount is a customer's running installment balance.
//
// Invariants, held after every mutation made through the methods below:
// RemainingAmount == max(0, TotalAmount-PaidAmount), PaidAmount never decreases,
// Status == paid_off exactly when RemainingAmount is zero, and ClosedAt is set
// on the transition into paid_off.
type CreditAccount struct {
	CreditAccountID  string              `json:"creditAccountID"`
	CustomerID       string              `json:"customerID"`
	AccountNumber    string              `json:"accountNumber"`
	Status           CreditAccountStatus `json:"status"`
	TotalAmount      decimal.Decimal     `json:"totalAmount"`
	PaidAmount       decimal.Decimal     `json:"paidAmount"`
	RemainingAmount  decimal.Decimal     `json:"remainingAmount"`
	Installments     int                 `json:"installments"`
	InstallmentValue decimal.Decimal     `json:"installmentValue"`
	PaymentFrequency PaymentFrequency    `json:"paymentFrequency"`
	FirstPaymentDate time.Time           `json:"firstPaymentDate"`
	NextPaymentDate  *time.Time          `json:"nextPaymentDate,omitempty"`
	OrderID          *string             `json:"orderID,omitempty"`
	OrderReference   *string             `json:"orderReference,omitempty"`
	Notes            string              `json:"notes"`
	ClosedAt         *time.Time          `json:"closedAt,omitempty"`
	AuditFields
	Items []CreditAccountItem `json:"items,omitempty"`
}

// CreditAccountItem is an immutable purchased line on a credit account.
type CreditAccountItem struct {
	ItemID              string          `json:"itemID"`
	CreditAccountID     string          `json:"creditAccountID"`
	ProductID           *string         `json:"productID,omitempty"`
	ReservationID       *string         `json:"reservationID,omitempty"`
	ProductNameSnapshot string          `json:"productNameSnapshot"`
	Quantity            int             `json:"quantity"`
	UnitPriceSnapshot   decimal.Decimal `json:"unitPriceSnapshot"`
	LineTotal           decimal.Decimal `json:"lineTotal"`
	CreatedAt           time.Time       `json:"createdAt"`
}

// LineItemDraft is the input for a new line item.
type LineItemDraft struct {
	ProductID     *string
	ReservationID *string
	Name          string
	Quantity      int
	UnitPrice     decimal.Decimal
}

// NewCreditAccountItem builds a line item, computing its total from quantity and unit price.
func NewCreditAccountItem(itemID, accountID string, spec LineItemDraft, now time.Time) (CreditAccountItem, error) {
	if spec.Quantity < 1 {
		return CreditAccountItem{}, fmt.Errorf("%w: line item %q has quantity %d", apperrors.ErrInvalidQuantity, spec.Name, spec.Quantity)
	}
	if spec.UnitPrice.IsNegative() {
		return CreditAccountItem{}, fmt.Errorf("%w: line item %q has a negative unit price", apperrors.ErrInvalidAmount, spec.Name)
	}
	unitPrice := Money(spec.UnitPrice)
	return CreditAccountItem{
		ItemID:              itemID,
		CreditAccountID:     accountID,
		ProductID:           spec.ProductID,
		ReservationID:       spec.ReservationID,
		ProductNameSnapshot: spec.Name,
		Quantity:            spec.Quantity,
		UnitPriceSnapshot:   unitPrice,
		LineTotal:           Money(unitPrice.Mul(decimal.NewFromInt(int64(spec.Quantity)))),
		CreatedAt:           now,
	}, nil
}

// SumLineTotals adds up the totals of the given items.
func SumLineTotals(items []CreditAccountItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal)
	}
	return total
}

// NewCreditAccount opens an account whose total is the sum of its items.
func NewCreditAccount(accountID, accountNumber, customerID string, items []CreditAccountItem, terms InstallmentTerms, userID string, now time.Time) (*CreditAccount, error) {
	if len(items) == 0 {
		return nil, apperrors.ErrEmptyLineItems
	}
	if customerID == "" {
		return nil, fmt.Errorf("%w: customer is required", apperrors.ErrValidation)
	}
	if err := terms.Validate(); err != nil {
		return nil, err
	}
	total := SumLineTotals(items)
	if !total.IsPositive() {
		return nil, fmt.Errorf("%w: account total must be positive, got %s", apperrors.ErrInvalidAmount, total.StringFixed(MoneyScale))
	}

	first := terms.FirstPaymentDate
	acc := &CreditAccount{
		CreditAccountID:  accountID,
		CustomerID:       customerID,
		AccountNumber:    accountNumber,
		Status:           CreditAccountActive,
		TotalAmount:      total,
		PaidAmount:       decimal.Zero,
		RemainingAmount:  total,
		Installments:     terms.Installments,
		InstallmentValue: InstallmentValue(total, terms.Installments),
		PaymentFrequency: terms.Frequency,
		FirstPaymentDate: first,
		NextPaymentDate:  &first,
		AuditFields: AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	for i := range items {
		items[i].CreditAccountID = accountID
	}
	acc.Items = items
	return acc, nil
}

// InstallmentValue splits total into n installments truncated to the minor unit.
// The final installment absorbs the remainder (see Schedule).
func InstallmentValue(total decimal.Decimal, n int) decimal.Decimal {
	if n < 1 {
		n = 1
	}
	return total.Div(decimal.NewFromInt(int64(n))).Truncate(MoneyScale)
}

// CurrentRemaining is total minus paid, clamped at zero.
func (a *CreditAccount) CurrentRemaining() decimal.Decimal {
	return maxZero(a.TotalAmount.Sub(a.PaidAmount))
}

// IsConsistent reports whether the stored totals and status agree with each other.
func (a *CreditAccount) IsConsistent() bool {
	remaining := a.CurrentRemaining()
	if !a.RemainingAmount.Equal(remaining) {
		return false
	}
	return (a.Status == CreditAccountPaidOff) == remaining.IsZero()
}

// CheckPayment validates amount against the account without changing it and
// reports whether applying it would pay the account off.
func (a *CreditAccount) CheckPayment(amount decimal.Decimal) (bool, error) {
	if !amount.IsPositive() {
		return false, apperrors.ErrInvalidAmount
	}
	if !amount.Equal(Money(amount)) {
		return false, fmt.Errorf("%w: %s has more precision than the currency allows", apperrors.ErrInvalidAmount, amount.String())
	}
	remaining := a.CurrentRemaining()
	if amount.GreaterThan(remaining) {
		return false, fmt.Errorf("%w: amount %s, remaining %s", apperrors.ErrAmountExceedsBalance,
			amount.StringFixed(MoneyScale), remaining.StringFixed(MoneyScale))
	}
	return amount.Equal(remaining), nil
}

// ApplyPayment is the only place a payment changes an account's totals.
// It returns true when the payment paid the account off.
func (a *CreditAccount) ApplyPayment(amount decimal.Decimal, userID string, now time.Time) (bool, error) {
	if _, err := a.CheckPayment(amount); err != nil {
		return false, err
	}
	remaining := a.CurrentRemaining()

	a.PaidAmount = a.PaidAmount.Add(amount)
	a.RemainingAmount = maxZero(remaining.Sub(amount))
	a.LastUpdatedAt = now
	a.LastUpdatedBy = userID

	if a.RemainingAmount.IsZero() {
		a.markPaidOff(now)
		return true, nil
	}
	a.advanceNextPaymentDate()
	return false, nil
}

// AddCharge grows the account by the total of a newly added line item.
func (a *CreditAccount) AddCharge(lineTotal decimal.Decimal, userID string, now time.Time) error {
	if a.Status != CreditAccountActive {
		return fmt.Errorf("%w: account %s is %s", apperrors.ErrAccountNotActive, a.AccountNumber, a.Status)
	}
	if !lineTotal.IsPositive() {
		return fmt.Errorf("%w: line total must be positive", apperrors.ErrInvalidAmount)
	}
	a.TotalAmount = a.TotalAmount.Add(lineTotal)
	a.RemainingAmount = a.CurrentRemaining()
	a.InstallmentValue = InstallmentValue(a.TotalAmount, a.Installments)
	a.LastUpdatedAt = now
	a.LastUpdatedBy = userID
	a.advanceNextPaymentDate()
	return nil
}

// Recompute repairs RemainingAmount and Status from TotalAmount and PaidAmount.
// It returns true when anything had to change. Calling it twice is the same as once.
func (a *CreditAccount) Recompute(userID string, now time.Time) bool {
	if a.IsConsistent() {
		return false
	}
	a.RemainingAmount = a.CurrentRemaining()
	switch {
	case a.RemainingAmount.IsZero() && a.Status != CreditAccountPaidOff:
		a.markPaidOff(now)
	case !a.RemainingAmount.IsZero() && a.Status == CreditAccountPaidOff:
		a.Status = CreditAccountActive
		a.ClosedAt = nil
		a.advanceNextPaymentDate()
	}
	a.LastUpdatedAt = now
	a.LastUpdatedBy = userID
	return true
}

// Suspend freezes an active account. Payments are still accepted.
func (a *CreditAccount) Suspend(userID string, now time.Time) error {
	if a.Status != CreditAccountActive {
		return fmt.Errorf("%w: account %s is %s", apperrors.ErrAccountNotActive, a.AccountNumber, a.Status)
	}
	a.Status = CreditAccountSuspended
	a.LastUpdatedAt = now
	a.LastUpdatedBy = userID
	return nil
}

// Reactivate returns a suspended account to active.
func (a *CreditAccount) Reactivate(userID string, now time.Time) error {
	if a.Status != CreditAccountSuspended {
		return fmt.Errorf("%w: account %s is %s, not suspended", apperrors.ErrValidation, a.AccountNumber, a.Status)
	}
	a.Status = CreditAccountActive
	a.LastUpdatedAt = now
	a.LastUpdatedBy = userID
	return nil
}

func (a *CreditAccount) markPaidOff(now time.Time) {
	a.Status = CreditAccountPaidOff
	a.ClosedAt = &now
	a.NextPaymentDate = nil
}

func (a *CreditAccount) advanceNextPaymentDate() {
	covered := 0
	for _, inst := range a.Schedule() {
		if inst.Status != InstallmentPaid {
			break
		}
		covered++
	}
	next := a.PaymentFrequency.Advance(a.FirstPaymentDate, covered)
	a.NextPaymentDate = &next
}

// InstallmentStatus is the settlement state of one scheduled installment.
type InstallmentStatus string

const (
	InstallmentOpen    InstallmentStatus = "open"
	InstallmentPartial InstallmentStatus = "partial"
	InstallmentPaid    InstallmentStatus = "paid"
)

// Installment is one row of an account's payment schedule.
type Installment struct {
	Number     int               `json:"number"`
	DueDate    time.Time         `json:"dueDate"`
	Amount     decimal.Decimal   `json:"amount"`
	PaidAmount decimal.Decimal   `json:"paidAmount"`
	Status     InstallmentStatus `json:"status"`
}

// Schedule splits the account total into its installments and allocates the
// amount paid so far to them in due-date order.
func (a *CreditAccount) Schedule() []Installment {
	n := a.Installments
	if n < 1 {
		n = 1
	}
	value := InstallmentValue(a.TotalAmount, n)
	last := a.TotalAmount.Sub(value.Mul(decimal.NewFromInt(int64(n - 1))))

	unallocated := a.PaidAmount
	out := make([]Installment, n)
	for i := 0; i < n; i++ {
		amount := value
		if i == n-1 {
			amount = last
		}
		paid := decimal.Min(amount, maxZero(unallocated))
		unallocated = unallocated.Sub(paid)

		status := InstallmentOpen
		switch {
		case paid.Equal(amount):
			status = InstallmentPaid
		case paid.IsPositive():
			status = InstallmentPartial
		}
		out[i] = Installment{
			Number:     i + 1,
			DueDate:    a.PaymentFrequency.Advance(a.FirstPaymentDate, i),
			Amount:     amount,
			PaidAmount: paid,
			Status:     status,
		}
	}
	return out
}

// AccountBalance is the read-only summary returned by balance lookups.
type AccountBalance struct {
	CreditAccountID  string              `json:"creditAccountID"`
	AccountNumber    string              `json:"accountNumber"`
	Status           CreditAccountStatus `json:"status"`
	TotalAmount      decimal.Decimal     `json:"totalAmount"`
	PaidAmount       decimal.Decimal     `json:"paidAmount"`
	RemainingAmount  decimal.Decimal     `json:"remainingAmount"`
	InstallmentValue decimal.Decimal     `json:"installmentValue"`
	NextPaymentDate  *time.Time          `json:"nextPaymentDate,omitempty"`
}

// Balance summarizes the account's running totals.
func (a *CreditAccount) Balance() AccountBalance {
	return AccountBalance{
		CreditAccountID:  a.CreditAccountID,
		AccountNumber:    a.AccountNumber,
		Status:           a.Status,
		TotalAmount:      a.TotalAmount,
		PaidAmount:       a.PaidAmount,
		RemainingAmount:  a.RemainingAmount,
		InstallmentValue: a.InstallmentValue,
		NextPaymentDate:  a.NextPaymentDate,
	}
}
