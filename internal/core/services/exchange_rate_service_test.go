package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/finbackoffice/fxrates_app/internal/apperrors"
	"github.com/finbackoffice/fxrates_app/internal/core/domain"
	"github.com/finbackoffice/fxrates_app/internal/core/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock ExchangeRateRepository ---
type MockExchangeRateRepository struct {
	mock.Mock
}

func (m *MockExchangeRateRepository) FindRate(ctx context.Context, baseCode, targetCode string) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, baseCode, targetCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Error(1)
}

func (m *MockExchangeRateRepository) ListRates(ctx context.Context) ([]domain.ExchangeRate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExchangeRate), args.Error(1)
}

func (m *MockExchangeRateRepository) ListHistory(ctx context.Context, baseCode, targetCode string, limit int) ([]domain.ExchangeRateHistory, error) {
	args := m.Called(ctx, baseCode, targetCode, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExchangeRateHistory), args.Error(1)
}

func (m *MockExchangeRateRepository) UpsertRate(ctx context.Context, rate domain.ExchangeRate) error {
	args := m.Called(ctx, rate)
	return args.Error(0)
}

func (m *MockExchangeRateRepository) AppendHistory(ctx context.Context, entry domain.ExchangeRateHistory) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// --- Test Suite ---
type ExchangeRateServiceTestSuite struct {
	suite.Suite
	mockRateRepo *MockExchangeRateRepository
	service      *services.ExchangeRateService
	now          time.Time
}

func (suite *ExchangeRateServiceTestSuite) SetupTest() {
	suite.mockRateRepo = new(MockExchangeRateRepository)
	suite.now = time.Date(2025, 4, 25, 12, 0, 0, 0, time.UTC)
	suite.service = services.NewExchangeRateService(
		suite.mockRateRepo,
		services.WithClock(func() time.Time { return suite.now }),
	)
}

func (suite *ExchangeRateServiceTestSuite) storedRate(base, target, rate string) *domain.ExchangeRate {
	return &domain.ExchangeRate{
		BaseCurrencyCode:   base,
		TargetCurrencyCode: target,
		Rate:               decimal.RequireFromString(rate),
		LastUpdated:        suite.now.Add(-48 * time.Hour),
	}
}

// --- Reconciliation ---

func (suite *ExchangeRateServiceTestSuite) TestRunReconciliation_InsertsUnknownPair() {
	ctx := context.Background()
	candidate := domain.RateCandidate{
		BaseCurrencyCode:   "USD",
		TargetCurrencyCode: "EUR",
		Rate:               decimal.RequireFromString("0.85"),
	}

	suite.mockRateRepo.On("FindRate", ctx, "USD", "EUR").
		Return(nil, apperrors.NewNotFoundError("not found")).Once()
	suite.mockRateRepo.On("UpsertRate", ctx, mock.MatchedBy(func(r domain.ExchangeRate) bool {
		return r.BaseCurrencyCode == "USD" &&
			r.TargetCurrencyCode == "EUR" &&
			r.Rate.Equal(candidate.Rate) &&
			!r.IsManual &&
			r.ManualUpdatedAt == nil
	})).Return(nil).Once()

	report, err := suite.service.RunReconciliation(ctx, []domain.RateCandidate{candidate}, "test-feed")

	suite.Require().NoError(err)
	suite.Equal(1, report.Inserted())
	suite.Equal(domain.OutcomeInserted, report.Results[0].Outcome)
	suite.mockRateRepo.AssertExpectations(suite.T())
	suite.mockRateRepo.AssertNotCalled(suite.T(), "AppendHistory", mock.Anything, mock.Anything)
}

func (suite *ExchangeRateServiceTestSuite) TestRunReconciliation_SkipsRecentManualOverride() {
	ctx := context.Background()
	manualAt := suite.now.Add(-1 * time.Hour)
	existing := suite.storedRate("USD", "EUR", "0.90")
	existing.IsManual = true
	existing.ManualUpdatedAt = &manualAt
	existing.ManualUpdatedBy = "alice"

	suite.mockRateRepo.On("FindRate", ctx, "USD", "EUR").Return(existing, nil).Once()

	candidate := domain.RateCandidate{
		BaseCurrencyCode:   "USD",
		TargetCurrencyCode: "EUR",
		Rate:               decimal.RequireFromString("0.85"),
	}
	report, err := suite.service.RunReconciliation(ctx, []domain.RateCandidate{candidate}, "test-feed")

	suite.Require().NoError(err)
	suite.Equal(1, report.Skipped())
	suite.Equal(domain.OutcomeSkipped, report.Results[0].Outcome)
	suite.mockRateRepo.AssertNotCalled(suite.T(), "UpsertRate", mock.Anything, mock.Anything)
}

func (suite *ExchangeRateServiceTestSuite) TestRunReconciliation_SkipsManualOverrideJustInsideWindow() {
	ctx := context.Background()
	manualAt := suite.now.Add(-23 * time.Hour)
	existing := suite.storedRate("USD", "EUR", "0.90")
	existing.IsManual = true
	existing.ManualUpdatedAt = &manualAt

	suite.mockRateRepo.On("FindRate", ctx, "USD", "EUR").Return(existing, nil).Once()

	candidate := domain.RateCandidate{
		BaseCurrencyCode:   "USD",
		TargetCurrencyCode: "EUR",
		Rate:               decimal.RequireFromString("0.85"),
	}
	report, err := suite.service.RunReconciliation(ctx, []domain.RateCandidate{candidate}, "test-feed")

	suite.Require().NoError(err)
	suite.Equal(1, report.Skipped())
	suite.mockRateRepo.AssertNotCalled(suite.T(), "UpsertRate", mock.Anything, mock.Anything)
}

func (suite *ExchangeRateServiceTestSuite) TestRunReconciliation_AppliesAfterWindowExpiresAndClearsManualFlags() {
	ctx := context.Background()
	manualAt := suite.now.Add(-25 * time.Hour)
	existing := suite.storedRate("USD", "EUR", "0.90")
	existing.IsManual = true
	existing.ManualUpdatedAt = &manualAt
	existing.ManualUpdatedBy = "alice"

	suite.mockRateRepo.On("FindRate", ctx, "USD", "EUR").Return(existing, nil).Once()
	suite.mockRateRepo.On("UpsertRate", ctx, mock.MatchedBy(func(r domain.ExchangeRate) bool {
		return r.Rate.Equal(decimal.RequireFromString("0.85")) &&
			!r.IsManual &&
			r.ManualUpdatedAt == nil &&
			r.ManualUpdatedBy == ""
	})).Return(nil).Once()
	// 0.90 -> 0.85 is a 5.56% change, well above the history threshold.
	suite.mockRateRepo.On("AppendHistory", ctx, mock.MatchedBy(func(e domain.ExchangeRateHistory) bool {
		return e.ChangeType == domain.ChangeTypeAPIUpdate &&
			e.OldRate.Equal(decimal.RequireFromString("0.90")) &&
			e.NewRate.Equal(decimal.RequireFromString("0.85")) &&
			e.UpdatedBy == "test-feed"
	})).Return(nil).Once()

	candidate := domain.RateCandidate{
		BaseCurrencyCode:   "USD",
		TargetCurrencyCode: "EUR",
		Rate:               decimal.RequireFromString("0.85"),
	}
	report, err := suite.service.RunReconciliation(ctx, []domain.RateCandidate{candidate}, "test-feed")

	suite.Require().NoError(err)
	suite.Equal(1, report.Updated())
	suite.mockRateRepo.AssertExpectations(suite.T())
}

func (suite *ExchangeRateServiceTestSuite) TestRunReconciliation_SmallChangeProducesNoHistory() {
	ctx := context.Background()
	existing := suite.storedRate("USD", "EUR", "1.0000")

	suite.mockRateRepo.On("FindRate", ctx, "USD", "EUR").Return(existing, nil).Once()
	suite.mockRateRepo.On("UpsertRate", ctx, mock.AnythingOfType("domain.ExchangeRate")).Return(nil).Once()

	// 0.05% change, at most half the threshold
	candidate := domain.RateCandidate{
		BaseCurrencyCode:   "USD",
		TargetCurrencyCode: "EUR",
		Rate:               decimal.RequireFromString("1.0005"),
	}
	report, err := suite.service.RunReconciliation(ctx, []domain.RateCandidate{candidate}, "test-feed")

	suite.Require().NoError(err)
	suite.Equal(1, report.Updated())
	suite.mockRateRepo.AssertNotCalled(suite.T(), "AppendHistory", mock.Anything, mock.Anything)
}

func (suite *ExchangeRateServiceTestSuite) TestRunReconciliation_ChangeAboveThresholdProducesHistory() {
	ctx := context.Background()
	existing := suite.storedRate("USD", "EUR", "1.0000")

	suite.mockRateRepo.On("FindRate", ctx, "USD", "EUR").Return(existing, nil).Once()
	suite.mockRateRepo.On("UpsertRate", ctx, mock.AnythingOfType("domain.ExchangeRate")).Return(nil).Once()
	suite.mockRateRepo.On("AppendHistory", ctx, mock.MatchedBy(func(e domain.ExchangeRateHistory) bool {
		return e.ChangeType == domain.ChangeTypeAPIUpdate &&
			e.Notes == "rate changed by 0.11% via test-feed" &&
			e.CreatedAt.Equal(suite.now)
	})).Return(nil).Once()

	// 0.11% change, just above the 0.1% threshold
	candidate := domain.RateCandidate{
		BaseCurrencyCode:   "USD",
		TargetCurrencyCode: "EUR",
		Rate:               decimal.RequireFromString("1.0011"),
	}
	report, err := suite.service.RunReconciliation(ctx, []domain.RateCandidate{candidate}, "test-feed")

	suite.Require().NoError(err)
	suite.Equal(1, report.Updated())
	suite.mockRateRepo.AssertExpectations(suite.T())
}

func (suite *ExchangeRateServiceTestSuite) TestRunReconciliation_InvalidCandidateFailsWithoutBlockingOthers() {
	ctx := context.Background()

	suite.mockRateRepo.On("FindRate", ctx, "USD", "EUR").
		Return(nil, apperrors.NewNotFoundError("not found")).Once()
	suite.mockRateRepo.On("UpsertRate", ctx, mock.AnythingOfType("domain.ExchangeRate")).Return(nil).Once()

	candidates := []domain.RateCandidate{
		{BaseCurrencyCode: "USD", TargetCurrencyCode: "USD", Rate: decimal.RequireFromString("1.0")},
		{BaseCurrencyCode: "USD", TargetCurrencyCode: "EUR", Rate: decimal.RequireFromString("0.85")},
	}
	report, err := suite.service.RunReconciliation(ctx, candidates, "test-feed")

	suite.Require().NoError(err)
	suite.Equal(1, report.Failed())
	suite.Equal(1, report.Inserted())
	suite.Equal(domain.OutcomeFailed, report.Results[0].Outcome)
	suite.NotEmpty(report.Results[0].Error)
}

func (suite *ExchangeRateServiceTestSuite) TestRunReconciliation_NonPositiveCandidateFails() {
	ctx := context.Background()

	candidates := []domain.RateCandidate{
		{BaseCurrencyCode: "USD", TargetCurrencyCode: "EUR", Rate: decimal.Zero},
	}
	report, err := suite.service.RunReconciliation(ctx, candidates, "test-feed")

	suite.Require().NoError(err)
	suite.Equal(1, report.Failed())
	suite.mockRateRepo.AssertNotCalled(suite.T(), "UpsertRate", mock.Anything, mock.Anything)
}

func (suite *ExchangeRateServiceTestSuite) TestRunReconciliation_EmptyCandidatesReturnsValidationError() {
	ctx := context.Background()

	report, err := suite.service.RunReconciliation(ctx, nil, "test-feed")

	suite.Require().Error(err)
	suite.Nil(report)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

// --- Manual updates ---

func (suite *ExchangeRateServiceTestSuite) TestSetManualRate_OverwritesAndRecordsHistory() {
	ctx := context.Background()
	existing := suite.storedRate("USD", "EUR", "0.85")

	suite.mockRateRepo.On("FindRate", ctx, "USD", "EUR").Return(existing, nil).Once()
	suite.mockRateRepo.On("UpsertRate", ctx, mock.MatchedBy(func(r domain.ExchangeRate) bool {
		return r.Rate.Equal(decimal.RequireFromString("0.90")) &&
			r.IsManual &&
			r.ManualUpdatedAt != nil &&
			r.ManualUpdatedAt.Equal(suite.now) &&
			r.ManualUpdatedBy == "alice"
	})).Return(nil).Once()
	suite.mockRateRepo.On("AppendHistory", ctx, mock.MatchedBy(func(e domain.ExchangeRateHistory) bool {
		return e.ChangeType == domain.ChangeTypeManualUpdate &&
			e.OldRate.Equal(decimal.RequireFromString("0.85")) &&
			e.NewRate.Equal(decimal.RequireFromString("0.90")) &&
			e.UpdatedBy == "alice"
	})).Return(nil).Once()

	updated, err := suite.service.SetManualRate(ctx, "USD", "EUR", decimal.RequireFromString("0.90"), "alice")

	suite.Require().NoError(err)
	suite.Require().NotNil(updated)
	suite.True(updated.IsManual)
	suite.Equal("alice", updated.ManualUpdatedBy)
	suite.mockRateRepo.AssertExpectations(suite.T())
}

func (suite *ExchangeRateServiceTestSuite) TestSetManualRate_UnchangedValueProducesNoHistory() {
	ctx := context.Background()
	existing := suite.storedRate("USD", "EUR", "0.85")

	suite.mockRateRepo.On("FindRate", ctx, "USD", "EUR").Return(existing, nil).Once()
	suite.mockRateRepo.On("UpsertRate", ctx, mock.AnythingOfType("domain.ExchangeRate")).Return(nil).Once()

	_, err := suite.service.SetManualRate(ctx, "USD", "EUR", decimal.RequireFromString("0.85"), "alice")

	suite.Require().NoError(err)
	suite.mockRateRepo.AssertNotCalled(suite.T(), "AppendHistory", mock.Anything, mock.Anything)
}

func (suite *ExchangeRateServiceTestSuite) TestSetManualRate_UnknownPairInsertsWithoutHistory() {
	ctx := context.Background()

	suite.mockRateRepo.On("FindRate", ctx, "USD", "EUR").
		Return(nil, apperrors.NewNotFoundError("not found")).Once()
	suite.mockRateRepo.On("UpsertRate", ctx, mock.AnythingOfType("domain.ExchangeRate")).Return(nil).Once()

	updated, err := suite.service.SetManualRate(ctx, "USD", "EUR", decimal.RequireFromString("0.90"), "alice")

	suite.Require().NoError(err)
	suite.True(updated.IsManual)
	suite.mockRateRepo.AssertNotCalled(suite.T(), "AppendHistory", mock.Anything, mock.Anything)
}

func (suite *ExchangeRateServiceTestSuite) TestSetManualRate_RejectsInvalidInput() {
	ctx := context.Background()

	_, err := suite.service.SetManualRate(ctx, "USD", "EUR", decimal.Zero, "alice")
	suite.ErrorIs(err, apperrors.ErrValidation)

	_, err = suite.service.SetManualRate(ctx, "USD", "USD", decimal.RequireFromString("1.0"), "alice")
	suite.ErrorIs(err, apperrors.ErrValidation)

	_, err = suite.service.SetManualRate(ctx, "USD", "EUR", decimal.RequireFromString("0.9"), "")
	suite.ErrorIs(err, apperrors.ErrValidation)

	suite.mockRateRepo.AssertNotCalled(suite.T(), "UpsertRate", mock.Anything, mock.Anything)
}

// --- Conversion ---

func (suite *ExchangeRateServiceTestSuite) TestRate_IdentityIsOneWithoutLookup() {
	ctx := context.Background()

	rate, err := suite.service.Rate(ctx, "USD", "USD")

	suite.Require().NoError(err)
	suite.True(rate.Equal(decimal.NewFromInt(1)))
	suite.mockRateRepo.AssertNotCalled(suite.T(), "ListRates", mock.Anything)
}

func (suite *ExchangeRateServiceTestSuite) TestRate_UsesDirectRate() {
	ctx := context.Background()
	suite.mockRateRepo.On("ListRates", ctx).Return([]domain.ExchangeRate{
		*suite.storedRate("USD", "EUR", "0.85"),
	}, nil).Once()

	rate, err := suite.service.Rate(ctx, "USD", "EUR")

	suite.Require().NoError(err)
	suite.True(rate.Equal(decimal.RequireFromString("0.85")))
}

func (suite *ExchangeRateServiceTestSuite) TestRate_InvertsReverseRate() {
	ctx := context.Background()
	suite.mockRateRepo.On("ListRates", ctx).Return([]domain.ExchangeRate{
		*suite.storedRate("USD", "EUR", "0.85"),
	}, nil).Once()

	rate, err := suite.service.Rate(ctx, "EUR", "USD")

	suite.Require().NoError(err)
	expected := decimal.NewFromInt(1).Div(decimal.RequireFromString("0.85"))
	suite.True(rate.Equal(expected))
}

func (suite *ExchangeRateServiceTestSuite) TestRate_FallsBackToOneWhenNoPathExists() {
	ctx := context.Background()
	suite.mockRateRepo.On("ListRates", ctx).Return([]domain.ExchangeRate{}, nil).Once()

	rate, err := suite.service.Rate(ctx, "GBP", "JPY")

	suite.Require().NoError(err)
	suite.True(rate.Equal(decimal.NewFromInt(1)))
}

func (suite *ExchangeRateServiceTestSuite) TestRate_ZeroReverseRateIsDataIntegrityError() {
	ctx := context.Background()
	corrupted := suite.storedRate("USD", "EUR", "0.85")
	corrupted.Rate = decimal.Zero
	suite.mockRateRepo.On("ListRates", ctx).Return([]domain.ExchangeRate{*corrupted}, nil).Once()

	_, err := suite.service.Rate(ctx, "EUR", "USD")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrDataIntegrity)
}

func (suite *ExchangeRateServiceTestSuite) TestConvert_RoundTripThroughInverseRestoresAmount() {
	ctx := context.Background()
	suite.mockRateRepo.On("ListRates", ctx).Return([]domain.ExchangeRate{
		*suite.storedRate("USD", "EUR", "0.85"),
	}, nil)

	amount := decimal.NewFromInt(100)
	inEur, err := suite.service.Convert(ctx, amount, "USD", "EUR")
	suite.Require().NoError(err)

	backInUsd, err := suite.service.Convert(ctx, inEur, "EUR", "USD")
	suite.Require().NoError(err)

	diff := backInUsd.Sub(amount).Abs()
	suite.True(diff.LessThan(decimal.RequireFromString("0.0000001")),
		"expected round-trip close to 100, got %s", backInUsd.String())
}

func (suite *ExchangeRateServiceTestSuite) TestHasRate_ReportsDirectReverseAndMissingPairs() {
	ctx := context.Background()
	suite.mockRateRepo.On("ListRates", ctx).Return([]domain.ExchangeRate{
		*suite.storedRate("USD", "EUR", "0.85"),
	}, nil)

	direct, err := suite.service.HasRate(ctx, "USD", "EUR")
	suite.Require().NoError(err)
	suite.True(direct)

	reverse, err := suite.service.HasRate(ctx, "EUR", "USD")
	suite.Require().NoError(err)
	suite.True(reverse)

	missing, err := suite.service.HasRate(ctx, "GBP", "JPY")
	suite.Require().NoError(err)
	suite.False(missing)

	identity, err := suite.service.HasRate(ctx, "GBP", "GBP")
	suite.Require().NoError(err)
	suite.True(identity)
}

func (suite *ExchangeRateServiceTestSuite) TestGetRate_AbsentPairReturnsNotFound() {
	ctx := context.Background()
	suite.mockRateRepo.On("FindRate", ctx, "USD", "EUR").
		Return(nil, apperrors.NewNotFoundError("not found")).Once()

	_, err := suite.service.GetRate(ctx, "USD", "EUR")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *ExchangeRateServiceTestSuite) TestGetRate_LowercaseCodesAreNormalized() {
	ctx := context.Background()
	existing := suite.storedRate("USD", "EUR", "0.85")
	suite.mockRateRepo.On("FindRate", ctx, "USD", "EUR").Return(existing, nil).Once()

	rate, err := suite.service.GetRate(ctx, "usd", "eur")

	suite.Require().NoError(err)
	suite.Equal("USD", rate.BaseCurrencyCode)
}

// --- Run Suite ---

func TestExchangeRateServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ExchangeRateServiceTestSuite))
}
