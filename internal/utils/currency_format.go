package utils

import (
	"github.com/finbackoffice/fxrates_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// FormatWithCurrencyPrecision rounds an amount to the display precision of a
// currency. The conversion facade itself never rounds; this is presentation
// only.
// Example: 12.3456 with USD (precision 2) returns "12.35"
// Example: 12.3456 with JPY (precision 0) returns "12"
func FormatWithCurrencyPrecision(amount decimal.Decimal, currency domain.Currency) string {
	return amount.Round(int32(currency.Precision)).String()
}

// FormatWithPrecision rounds an amount to the given number of decimal places.
func FormatWithPrecision(amount decimal.Decimal, precision int) string {
	return amount.Round(int32(precision)).String()
}
