package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/finbackoffice/fxrates_app/internal/apperrors"
	"github.com/finbackoffice/fxrates_app/internal/core/domain"
	portsrepo "github.com/finbackoffice/fxrates_app/internal/core/ports/repositories"
	portssvc "github.com/finbackoffice/fxrates_app/internal/core/ports/services"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	defaultOverrideWindow = 24 * time.Hour
	defaultSnapshotTTL    = time.Minute
	defaultHistoryLimit   = 50
)

// defaultHistoryThresholdPercent gates history entries on automatic updates:
// changes at or below this percentage update the stored rate silently.
var defaultHistoryThresholdPercent = decimal.NewFromFloat(0.1)

// ExchangeRateService provides reconciliation, manual updates and conversion
// over the rate store. It is the single implementation behind the
// ExchangeRateSvcFacade port.
type ExchangeRateService struct {
	rateRepo         portsrepo.ExchangeRateRepositoryFacade
	overrideWindow   time.Duration
	historyThreshold decimal.Decimal
	now              func() time.Time

	// conversion snapshot; consistency with the store is eventual, bounded
	// by snapshotTTL and invalidated on every write path.
	snapshotTTL time.Duration
	mu          sync.RWMutex
	snapshot    map[string]decimal.Decimal
	snapshotAt  time.Time
}

// ExchangeRateServiceOption configures an ExchangeRateService.
type ExchangeRateServiceOption func(*ExchangeRateService)

// WithOverrideWindow sets how long a manual rate suppresses automatic updates.
func WithOverrideWindow(window time.Duration) ExchangeRateServiceOption {
	return func(s *ExchangeRateService) {
		if window > 0 {
			s.overrideWindow = window
		}
	}
}

// WithHistoryThresholdPercent sets the minimum percentage change that makes
// an automatic update produce a history entry.
func WithHistoryThresholdPercent(threshold decimal.Decimal) ExchangeRateServiceOption {
	return func(s *ExchangeRateService) {
		if threshold.IsPositive() || threshold.IsZero() {
			s.historyThreshold = threshold
		}
	}
}

// WithSnapshotTTL sets the refresh interval of the in-memory conversion snapshot.
func WithSnapshotTTL(ttl time.Duration) ExchangeRateServiceOption {
	return func(s *ExchangeRateService) {
		if ttl > 0 {
			s.snapshotTTL = ttl
		}
	}
}

// WithClock overrides the time source, used by tests.
func WithClock(now func() time.Time) ExchangeRateServiceOption {
	return func(s *ExchangeRateService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewExchangeRateService creates a new ExchangeRateService.
func NewExchangeRateService(rateRepo portsrepo.ExchangeRateRepositoryFacade, opts ...ExchangeRateServiceOption) *ExchangeRateService {
	s := &ExchangeRateService{
		rateRepo:         rateRepo,
		overrideWindow:   defaultOverrideWindow,
		historyThreshold: defaultHistoryThresholdPercent,
		snapshotTTL:      defaultSnapshotTTL,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ensure implementation matches the facade port
var _ portssvc.ExchangeRateSvcFacade = (*ExchangeRateService)(nil)

// --- Reader ---

// GetRate retrieves the stored rate row for a pair. Strict lookup: absent
// pairs surface apperrors.ErrNotFound.
func (s *ExchangeRateService) GetRate(ctx context.Context, baseCode, targetCode string) (*domain.ExchangeRate, error) {
	baseCode, targetCode, err := normalizePair(baseCode, targetCode)
	if err != nil {
		return nil, err
	}
	rate, err := s.rateRepo.FindRate(ctx, baseCode, targetCode)
	if err != nil {
		return nil, fmt.Errorf("failed to get exchange rate in service: %w", err)
	}
	return rate, nil
}

// ListRates retrieves all stored rate rows.
func (s *ExchangeRateService) ListRates(ctx context.Context) ([]domain.ExchangeRate, error) {
	rates, err := s.rateRepo.ListRates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list exchange rates in service: %w", err)
	}
	if rates == nil {
		return []domain.ExchangeRate{}, nil
	}
	return rates, nil
}

// ListHistory retrieves recent change history for a pair, newest first.
func (s *ExchangeRateService) ListHistory(ctx context.Context, baseCode, targetCode string, limit int) ([]domain.ExchangeRateHistory, error) {
	baseCode, targetCode, err := normalizePair(baseCode, targetCode)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	entries, err := s.rateRepo.ListHistory(ctx, baseCode, targetCode, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list exchange rate history in service: %w", err)
	}
	if entries == nil {
		return []domain.ExchangeRateHistory{}, nil
	}
	return entries, nil
}

// --- Reconciliation ---

// RunReconciliation applies the manual-override rule to each candidate
// independently: a candidate overwrites the stored rate unless a manual rate
// was set within the override window. One pair's failure or override does not
// block another pair's update.
func (s *ExchangeRateService) RunReconciliation(ctx context.Context, candidates []domain.RateCandidate, sourceLabel string) (*domain.ReconciliationReport, error) {
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no candidates to reconcile", apperrors.ErrValidation)
	}
	if sourceLabel == "" {
		sourceLabel = "external-feed"
	}

	report := &domain.ReconciliationReport{
		SourceLabel: sourceLabel,
		Results:     make([]domain.PairResult, 0, len(candidates)),
	}

	for _, candidate := range candidates {
		report.Results = append(report.Results, s.reconcileOne(ctx, candidate, sourceLabel))
	}

	s.invalidateSnapshot()
	return report, nil
}

func (s *ExchangeRateService) reconcileOne(ctx context.Context, candidate domain.RateCandidate, sourceLabel string) domain.PairResult {
	result := domain.PairResult{
		BaseCurrencyCode:   strings.ToUpper(candidate.BaseCurrencyCode),
		TargetCurrencyCode: strings.ToUpper(candidate.TargetCurrencyCode),
	}
	fail := func(err error) domain.PairResult {
		result.Outcome = domain.OutcomeFailed
		result.Error = err.Error()
		return result
	}

	if _, _, err := normalizePair(candidate.BaseCurrencyCode, candidate.TargetCurrencyCode); err != nil {
		return fail(err)
	}
	if candidate.Rate.LessThanOrEqual(decimal.Zero) {
		return fail(fmt.Errorf("%w: candidate rate must be positive", apperrors.ErrValidation))
	}

	existing, err := s.rateRepo.FindRate(ctx, result.BaseCurrencyCode, result.TargetCurrencyCode)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return fail(err)
	}

	now := s.now()

	// First sight of the pair: always applied as a fresh automatic insert.
	if existing == nil {
		row := domain.ExchangeRate{
			BaseCurrencyCode:   result.BaseCurrencyCode,
			TargetCurrencyCode: result.TargetCurrencyCode,
			Rate:               candidate.Rate,
			LastUpdated:        now,
			IsManual:           false,
		}
		if err := s.rateRepo.UpsertRate(ctx, row); err != nil {
			return fail(err)
		}
		result.Outcome = domain.OutcomeInserted
		return result
	}

	// A recent manual override wins; the stored row stays untouched.
	if existing.ManualOverrideActive(now, s.overrideWindow) {
		result.Outcome = domain.OutcomeSkipped
		return result
	}

	if existing.Rate.LessThanOrEqual(decimal.Zero) {
		return fail(apperrors.NewDataIntegrityError(
			"stored rate for " + result.BaseCurrencyCode + "/" + result.TargetCurrencyCode + " is not positive"))
	}

	// Accept the candidate: overwrite the rate and clear manual metadata.
	row := domain.ExchangeRate{
		BaseCurrencyCode:   result.BaseCurrencyCode,
		TargetCurrencyCode: result.TargetCurrencyCode,
		Rate:               candidate.Rate,
		LastUpdated:        now,
		IsManual:           false,
	}
	if err := s.rateRepo.UpsertRate(ctx, row); err != nil {
		return fail(err)
	}

	changePercent := candidate.Rate.Sub(existing.Rate).Abs().
		Div(existing.Rate).
		Mul(decimal.NewFromInt(100))
	if changePercent.GreaterThan(s.historyThreshold) {
		entry := domain.ExchangeRateHistory{
			HistoryID:          uuid.NewString(),
			BaseCurrencyCode:   result.BaseCurrencyCode,
			TargetCurrencyCode: result.TargetCurrencyCode,
			OldRate:            existing.Rate,
			NewRate:            candidate.Rate,
			ChangeType:         domain.ChangeTypeAPIUpdate,
			UpdatedBy:          sourceLabel,
			Notes:              fmt.Sprintf("rate changed by %s%% via %s", changePercent.StringFixed(2), sourceLabel),
			CreatedAt:          now,
		}
		if err := s.rateRepo.AppendHistory(ctx, entry); err != nil {
			return fail(err)
		}
	}

	result.Outcome = domain.OutcomeUpdated
	return result
}

// SetManualRate unconditionally overwrites the pair's rate and marks it as a
// manual override. Every actual value change appends history, with no
// threshold gate: an explicit human action is inherently notable.
func (s *ExchangeRateService) SetManualRate(ctx context.Context, baseCode, targetCode string, rate decimal.Decimal, updatedBy string) (*domain.ExchangeRate, error) {
	baseCode, targetCode, err := normalizePair(baseCode, targetCode)
	if err != nil {
		return nil, err
	}
	if rate.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: exchange rate must be positive", apperrors.ErrValidation)
	}
	if updatedBy == "" {
		return nil, fmt.Errorf("%w: updatedBy is required for manual updates", apperrors.ErrValidation)
	}

	existing, err := s.rateRepo.FindRate(ctx, baseCode, targetCode)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to read existing rate in service: %w", err)
	}

	now := s.now()
	row := domain.ExchangeRate{
		BaseCurrencyCode:   baseCode,
		TargetCurrencyCode: targetCode,
		Rate:               rate,
		LastUpdated:        now,
		IsManual:           true,
		ManualUpdatedAt:    &now,
		ManualUpdatedBy:    updatedBy,
	}
	if err := s.rateRepo.UpsertRate(ctx, row); err != nil {
		return nil, fmt.Errorf("failed to set manual rate in service: %w", err)
	}

	if existing != nil && !existing.Rate.Equal(rate) {
		entry := domain.ExchangeRateHistory{
			HistoryID:          uuid.NewString(),
			BaseCurrencyCode:   baseCode,
			TargetCurrencyCode: targetCode,
			OldRate:            existing.Rate,
			NewRate:            rate,
			ChangeType:         domain.ChangeTypeManualUpdate,
			UpdatedBy:          updatedBy,
			Notes:              "manual rate update",
			CreatedAt:          now,
		}
		if err := s.rateRepo.AppendHistory(ctx, entry); err != nil {
			return nil, fmt.Errorf("failed to append manual update history: %w", err)
		}
	}

	s.invalidateSnapshot()
	return &row, nil
}

// --- Conversion ---

// Rate returns the factor converting 1 unit of fromCode into toCode.
// Lookup order: identity, direct row, inverse of the reverse row, then a
// fallback of 1 so interactive conversions do not fail outright. Callers
// needing strict behavior should use HasRate.
func (s *ExchangeRateService) Rate(ctx context.Context, fromCode, toCode string) (decimal.Decimal, error) {
	fromCode, toCode, err := normalizePair2(fromCode, toCode)
	if err != nil {
		return decimal.Zero, err
	}
	if fromCode == toCode {
		return decimal.NewFromInt(1), nil
	}

	rates, err := s.loadSnapshot(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	if direct, ok := rates[pairKey(fromCode, toCode)]; ok {
		return direct, nil
	}
	if reverse, ok := rates[pairKey(toCode, fromCode)]; ok {
		// The store's positivity invariant should make this unreachable;
		// a stored zero must surface, never become Infinity.
		if reverse.IsZero() {
			return decimal.Zero, apperrors.NewDataIntegrityError(
				"stored rate for " + toCode + "/" + fromCode + " is zero")
		}
		return decimal.NewFromInt(1).Div(reverse), nil
	}

	return decimal.NewFromInt(1), nil
}

// Convert returns amount * Rate(from, to). No rounding is applied;
// presentation rounding belongs to the caller.
func (s *ExchangeRateService) Convert(ctx context.Context, amount decimal.Decimal, fromCode, toCode string) (decimal.Decimal, error) {
	rate, err := s.Rate(ctx, fromCode, toCode)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Mul(rate), nil
}

// HasRate reports whether a direct or reverse row exists for the pair.
func (s *ExchangeRateService) HasRate(ctx context.Context, fromCode, toCode string) (bool, error) {
	fromCode, toCode, err := normalizePair2(fromCode, toCode)
	if err != nil {
		return false, err
	}
	if fromCode == toCode {
		return true, nil
	}
	rates, err := s.loadSnapshot(ctx)
	if err != nil {
		return false, err
	}
	_, direct := rates[pairKey(fromCode, toCode)]
	_, reverse := rates[pairKey(toCode, fromCode)]
	return direct || reverse, nil
}

// --- snapshot cache ---

func pairKey(baseCode, targetCode string) string {
	return baseCode + "/" + targetCode
}

func (s *ExchangeRateService) loadSnapshot(ctx context.Context) (map[string]decimal.Decimal, error) {
	s.mu.RLock()
	if s.snapshot != nil && s.now().Sub(s.snapshotAt) < s.snapshotTTL {
		snap := s.snapshot
		s.mu.RUnlock()
		return snap, nil
	}
	s.mu.RUnlock()

	rates, err := s.rateRepo.ListRates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load rate snapshot: %w", err)
	}

	snap := make(map[string]decimal.Decimal, len(rates))
	for _, r := range rates {
		snap[pairKey(r.BaseCurrencyCode, r.TargetCurrencyCode)] = r.Rate
	}

	s.mu.Lock()
	s.snapshot = snap
	s.snapshotAt = s.now()
	s.mu.Unlock()
	return snap, nil
}

func (s *ExchangeRateService) invalidateSnapshot() {
	s.mu.Lock()
	s.snapshot = nil
	s.mu.Unlock()
}

// --- helpers ---

// normalizePair uppercases and validates a base/target pair for write paths,
// where base == target is rejected.
func normalizePair(baseCode, targetCode string) (string, string, error) {
	baseCode, targetCode, err := normalizePair2(baseCode, targetCode)
	if err != nil {
		return "", "", err
	}
	if baseCode == targetCode {
		return "", "", fmt.Errorf("%w: base and target currency codes cannot be the same", apperrors.ErrValidation)
	}
	return baseCode, targetCode, nil
}

// normalizePair2 uppercases and validates code format only; identity pairs
// are allowed (conversion treats them as exactly 1).
func normalizePair2(fromCode, toCode string) (string, string, error) {
	fromCode = strings.ToUpper(strings.TrimSpace(fromCode))
	toCode = strings.ToUpper(strings.TrimSpace(toCode))
	if len(fromCode) != 3 || len(toCode) != 3 {
		return "", "", fmt.Errorf("%w: currency codes must be 3 letters", apperrors.ErrValidation)
	}
	return fromCode, toCode, nil
}
