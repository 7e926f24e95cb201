package utils

import (
	"github.com/SscSPs/crediario_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// FormatMoney renders an amount with the currency's minor-unit precision.
// Example: 12.3 returns "12.30"
func FormatMoney(amount decimal.Decimal) string {
	return amount.StringFixed(domain.MoneyScale)
}
