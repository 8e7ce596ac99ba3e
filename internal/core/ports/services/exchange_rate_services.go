package services

import (
	"context"

	"github.com/finbackoffice/fxrates_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ExchangeRateReaderSvc defines read operations for stored exchange rate data
type ExchangeRateReaderSvc interface {
	// GetRate retrieves the stored rate row for a pair. Strict: returns
	// apperrors.ErrNotFound when the pair is absent, unlike the converter's
	// fallback-returning Rate.
	GetRate(ctx context.Context, baseCode, targetCode string) (*domain.ExchangeRate, error)

	// ListRates retrieves all stored rate rows.
	ListRates(ctx context.Context) ([]domain.ExchangeRate, error)

	// ListHistory retrieves recent change history for a pair, newest first.
	ListHistory(ctx context.Context, baseCode, targetCode string, limit int) ([]domain.ExchangeRateHistory, error)
}

// RateReconcilerSvc merges externally-sourced rates into the store under the
// manual-override rule and owns the manual-update path.
type RateReconcilerSvc interface {
	// RunReconciliation applies the override rule to each candidate
	// independently and reports the per-pair outcome. A pair's storage
	// failure is recorded, not retried, and does not stop other pairs.
	RunReconciliation(ctx context.Context, candidates []domain.RateCandidate, sourceLabel string) (*domain.ReconciliationReport, error)

	// SetManualRate unconditionally overwrites the pair's rate, marks it
	// manual, and appends history for every actual value change.
	SetManualRate(ctx context.Context, baseCode, targetCode string, rate decimal.Decimal, updatedBy string) (*domain.ExchangeRate, error)
}

// RateConverterSvc answers conversion queries against the current rate set.
type RateConverterSvc interface {
	// Rate returns the factor converting 1 unit of from into to: identity,
	// direct row, inverse of the reverse row, or the documented fallback of
	// 1 when no path exists. Never returns ErrNotFound.
	Rate(ctx context.Context, fromCode, toCode string) (decimal.Decimal, error)

	// Convert returns amount * Rate(from, to). No rounding is applied.
	Convert(ctx context.Context, amount decimal.Decimal, fromCode, toCode string) (decimal.Decimal, error)

	// HasRate reports whether a direct or reverse row exists for the pair.
	// Callers needing strict behavior use this instead of Rate's fallback.
	HasRate(ctx context.Context, fromCode, toCode string) (bool, error)
}

// ExchangeRateSvcFacade combines all exchange rate-related service interfaces
type ExchangeRateSvcFacade interface {
	ExchangeRateReaderSvc
	RateReconcilerSvc
	RateConverterSvc
}
