package pgsql

import (
	"context"
	"errors"
	"strings"

	"github.com/finbackoffice/fxrates_app/internal/apperrors"
	"github.com/finbackoffice/fxrates_app/internal/core/domain"
	portsrepo "github.com/finbackoffice/fxrates_app/internal/core/ports/repositories"
	"github.com/finbackoffice/fxrates_app/internal/models"
	"github.com/finbackoffice/fxrates_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxExchangeRateRepository implements the exchange rate repository ports
// using pgxpool.
type PgxExchangeRateRepository struct {
	BaseRepository
}

// newPgxExchangeRateRepository creates a new repository for rate data.
func newPgxExchangeRateRepository(pool *pgxpool.Pool) portsrepo.ExchangeRateRepositoryWithTx {
	return &PgxExchangeRateRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure implementation matches interface
var _ portsrepo.ExchangeRateRepositoryWithTx = (*PgxExchangeRateRepository)(nil)

// UpsertRate inserts the row if absent, else overwrites all fields of the
// matching row. A single statement keeps the write atomic per row, so two
// overlapping reconciliation passes cannot interleave into a lost update.
func (r *PgxExchangeRateRepository) UpsertRate(ctx context.Context, rate domain.ExchangeRate) error {
	baseCode := strings.ToUpper(rate.BaseCurrencyCode)
	targetCode := strings.ToUpper(rate.TargetCurrencyCode)

	if baseCode == targetCode {
		return apperrors.NewValidationError("base and target currencies cannot be the same")
	}

	modelRate := mapping.ToModelExchangeRate(rate)
	modelRate.BaseCurrencyCode = baseCode
	modelRate.TargetCurrencyCode = targetCode

	query := `
		INSERT INTO exchange_rates (
			base_currency_code, target_currency_code, rate, last_updated,
			is_manual, manual_updated_at, manual_updated_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (base_currency_code, target_currency_code) DO UPDATE SET
			rate = EXCLUDED.rate,
			last_updated = EXCLUDED.last_updated,
			is_manual = EXCLUDED.is_manual,
			manual_updated_at = EXCLUDED.manual_updated_at,
			manual_updated_by = EXCLUDED.manual_updated_by;
	`

	_, err := r.Pool.Exec(ctx, query,
		modelRate.BaseCurrencyCode,
		modelRate.TargetCurrencyCode,
		modelRate.Rate,
		modelRate.LastUpdated,
		modelRate.IsManual,
		modelRate.ManualUpdatedAt,
		modelRate.ManualUpdatedBy,
	)
	if err != nil {
		return apperrors.NewStorageError("failed to upsert exchange rate", err)
	}
	return nil
}

// FindRate retrieves the stored rate row for a currency pair.
func (r *PgxExchangeRateRepository) FindRate(ctx context.Context, baseCode, targetCode string) (*domain.ExchangeRate, error) {
	query := `
		SELECT
			base_currency_code, target_currency_code, rate, last_updated,
			is_manual, manual_updated_at, manual_updated_by
		FROM exchange_rates
		WHERE base_currency_code = $1 AND target_currency_code = $2;
	`

	var modelRate models.ExchangeRate
	err := r.Pool.QueryRow(ctx, query, strings.ToUpper(baseCode), strings.ToUpper(targetCode)).Scan(
		&modelRate.BaseCurrencyCode,
		&modelRate.TargetCurrencyCode,
		&modelRate.Rate,
		&modelRate.LastUpdated,
		&modelRate.IsManual,
		&modelRate.ManualUpdatedAt,
		&modelRate.ManualUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("exchange rate not found for pair " + baseCode + " to " + targetCode)
		}
		return nil, apperrors.NewStorageError("failed to find exchange rate", err)
	}

	domainRate := mapping.ToDomainExchangeRate(modelRate)
	return &domainRate, nil
}

// ListRates retrieves every stored rate row. Order is unspecified.
func (r *PgxExchangeRateRepository) ListRates(ctx context.Context) ([]domain.ExchangeRate, error) {
	query := `
		SELECT
			base_currency_code, target_currency_code, rate, last_updated,
			is_manual, manual_updated_at, manual_updated_by
		FROM exchange_rates;
	`

	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to list exchange rates", err)
	}
	defer rows.Close()

	var rates []domain.ExchangeRate
	for rows.Next() {
		var modelRate models.ExchangeRate
		err := rows.Scan(
			&modelRate.BaseCurrencyCode,
			&modelRate.TargetCurrencyCode,
			&modelRate.Rate,
			&modelRate.LastUpdated,
			&modelRate.IsManual,
			&modelRate.ManualUpdatedAt,
			&modelRate.ManualUpdatedBy,
		)
		if err != nil {
			return nil, apperrors.NewStorageError("failed to scan exchange rate", err)
		}
		rates = append(rates, mapping.ToDomainExchangeRate(modelRate))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("error iterating exchange rates", err)
	}

	return rates, nil
}

// AppendHistory persists a history entry. Pure insert; there is no
// uniqueness constraint on history, so duplicates never fail.
func (r *PgxExchangeRateRepository) AppendHistory(ctx context.Context, entry domain.ExchangeRateHistory) error {
	modelEntry := mapping.ToModelExchangeRateHistory(entry)

	query := `
		INSERT INTO exchange_rate_history (
			history_id, base_currency_code, target_currency_code,
			old_rate, new_rate, change_type, updated_by, notes, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`

	_, err := r.Pool.Exec(ctx, query,
		modelEntry.HistoryID,
		strings.ToUpper(modelEntry.BaseCurrencyCode),
		strings.ToUpper(modelEntry.TargetCurrencyCode),
		modelEntry.OldRate,
		modelEntry.NewRate,
		modelEntry.ChangeType,
		modelEntry.UpdatedBy,
		modelEntry.Notes,
		modelEntry.CreatedAt,
	)
	if err != nil {
		return apperrors.NewStorageError("failed to append exchange rate history", err)
	}
	return nil
}

// ListHistory retrieves the most recent history entries for a pair, newest first.
func (r *PgxExchangeRateRepository) ListHistory(ctx context.Context, baseCode, targetCode string, limit int) ([]domain.ExchangeRateHistory, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT
			history_id, base_currency_code, target_currency_code,
			old_rate, new_rate, change_type, updated_by, notes, created_at
		FROM exchange_rate_history
		WHERE base_currency_code = $1 AND target_currency_code = $2
		ORDER BY created_at DESC
		LIMIT $3;
	`

	rows, err := r.Pool.Query(ctx, query, strings.ToUpper(baseCode), strings.ToUpper(targetCode), limit)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to list exchange rate history", err)
	}
	defer rows.Close()

	var entries []domain.ExchangeRateHistory
	for rows.Next() {
		var modelEntry models.ExchangeRateHistory
		err := rows.Scan(
			&modelEntry.HistoryID,
			&modelEntry.BaseCurrencyCode,
			&modelEntry.TargetCurrencyCode,
			&modelEntry.OldRate,
			&modelEntry.NewRate,
			&modelEntry.ChangeType,
			&modelEntry.UpdatedBy,
			&modelEntry.Notes,
			&modelEntry.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.NewStorageError("failed to scan exchange rate history", err)
		}
		entries = append(entries, mapping.ToDomainExchangeRateHistory(modelEntry))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("error iterating exchange rate history", err)
	}

	return entries, nil
}
