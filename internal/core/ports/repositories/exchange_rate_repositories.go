package repositories

import (
	"context"

	"github.com/finbackoffice/fxrates_app/internal/core/domain"
)

// ExchangeRateReader defines read operations for exchange rate data
type ExchangeRateReader interface {
	// FindRate retrieves the stored rate row for a currency pair.
	// Returns apperrors.ErrNotFound when the pair has never been seen.
	FindRate(ctx context.Context, baseCode, targetCode string) (*domain.ExchangeRate, error)

	// ListRates retrieves every stored rate row. Order is unspecified;
	// consumers must not depend on it.
	ListRates(ctx context.Context) ([]domain.ExchangeRate, error)

	// ListHistory retrieves the most recent history entries for a pair,
	// newest first, capped at limit.
	ListHistory(ctx context.Context, baseCode, targetCode string, limit int) ([]domain.ExchangeRateHistory, error)
}

// ExchangeRateWriter defines write operations for exchange rate data
type ExchangeRateWriter interface {
	// UpsertRate inserts the row if absent, else overwrites all fields of
	// the matching row. Must be atomic per row so concurrent reconciliation
	// passes cannot interleave a read and write into a lost update.
	UpsertRate(ctx context.Context, rate domain.ExchangeRate) error

	// AppendHistory persists a history entry. Pure insert; history carries
	// no uniqueness constraint.
	AppendHistory(ctx context.Context, entry domain.ExchangeRateHistory) error
}

// ExchangeRateRepositoryFacade combines all exchange rate-related repository interfaces
// This is a facade for clients that need access to all operations
type ExchangeRateRepositoryFacade interface {
	ExchangeRateReader
	ExchangeRateWriter
}

// ExchangeRateRepositoryWithTx extends ExchangeRateRepositoryFacade with transaction capabilities
type ExchangeRateRepositoryWithTx interface {
	ExchangeRateRepositoryFacade
	TransactionManager
}
