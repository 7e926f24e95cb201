package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AuditFields holds standard audit information for domain entities.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"` // Clerk user ID
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"`
}

// MoneyScale is the number of decimal places of the currency's minor unit.
const MoneyScale = 2

// Money normalizes an amount to the currency's minor unit using banker's rounding.
func Money(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(MoneyScale)
}

// maxZero clamps negative values to zero.
func maxZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
