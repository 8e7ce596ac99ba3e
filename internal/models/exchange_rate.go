package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate mirrors the exchange_rates table: one row per currency pair,
// keyed on (base_currency_code, target_currency_code).
// Note: Rate uses github.com/shopspring/decimal to avoid float drift.
type ExchangeRate struct {
	BaseCurrencyCode   string          `json:"baseCurrencyCode"`
	TargetCurrencyCode string          `json:"targetCurrencyCode"`
	Rate               decimal.Decimal `json:"rate"`
	LastUpdated        time.Time       `json:"lastUpdated"`
	IsManual           bool            `json:"isManual"`
	ManualUpdatedAt    *time.Time      `json:"manualUpdatedAt,omitempty"`
	ManualUpdatedBy    *string         `json:"manualUpdatedBy,omitempty"`
}

// ExchangeRateHistory mirrors the exchange_rate_history table. Append-only;
// no uniqueness constraint beyond the primary key.
type ExchangeRateHistory struct {
	HistoryID          string          `json:"historyID"` // Primary Key (UUID)
	BaseCurrencyCode   string          `json:"baseCurrencyCode"`
	TargetCurrencyCode string          `json:"targetCurrencyCode"`
	OldRate            decimal.Decimal `json:"oldRate"`
	NewRate            decimal.Decimal `json:"newRate"`
	ChangeType         string          `json:"changeType"` // "api_update" | "manual_update"
	UpdatedBy          string          `json:"updatedBy"`
	Notes              string          `json:"notes"`
	CreatedAt          time.Time       `json:"createdAt"`
}
