package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate stores the conversion rate for a currency pair: 1 unit of the
// base currency equals Rate units of the target currency. At most one row
// exists per (base, target) pair.
type ExchangeRate struct {
	BaseCurrencyCode   string          `json:"baseCurrencyCode"`
	TargetCurrencyCode string          `json:"targetCurrencyCode"`
	Rate               decimal.Decimal `json:"rate"` // positive, units of target per 1 base
	LastUpdated        time.Time       `json:"lastUpdated"`
	IsManual           bool            `json:"isManual"`
	ManualUpdatedAt    *time.Time      `json:"manualUpdatedAt,omitempty"`
	ManualUpdatedBy    string          `json:"manualUpdatedBy,omitempty"`
}

// ManualOverrideActive reports whether the row holds a human-set rate that is
// still within the override window relative to now. An automatic update must
// not overwrite such a row.
func (r *ExchangeRate) ManualOverrideActive(now time.Time, window time.Duration) bool {
	if !r.IsManual || r.ManualUpdatedAt == nil {
		return false
	}
	return now.Sub(*r.ManualUpdatedAt) < window
}

// ChangeType labels the origin of a history entry.
type ChangeType string

const (
	ChangeTypeAPIUpdate    ChangeType = "api_update"
	ChangeTypeManualUpdate ChangeType = "manual_update"
)

// ExchangeRateHistory is an immutable record of a rate change, kept for
// audit and trend display. Entries are only ever appended, never mutated.
type ExchangeRateHistory struct {
	HistoryID          string          `json:"historyID"`
	BaseCurrencyCode   string          `json:"baseCurrencyCode"`
	TargetCurrencyCode string          `json:"targetCurrencyCode"`
	OldRate            decimal.Decimal `json:"oldRate"`
	NewRate            decimal.Decimal `json:"newRate"`
	ChangeType         ChangeType      `json:"changeType"`
	UpdatedBy          string          `json:"updatedBy"`
	Notes              string          `json:"notes"`
	CreatedAt          time.Time       `json:"createdAt"`
}
