package jobs_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/finbackoffice/fxrates_app/internal/core/domain"
	"github.com/finbackoffice/fxrates_app/internal/jobs"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRatesProvider struct {
	mock.Mock
}

func (m *MockRatesProvider) GetRates(ctx context.Context, base string, symbols []string) (map[string]float64, error) {
	args := m.Called(ctx, base, symbols)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]float64), args.Error(1)
}

type MockReconciler struct {
	mock.Mock
	done chan struct{}
}

func (m *MockReconciler) RunReconciliation(ctx context.Context, candidates []domain.RateCandidate, sourceLabel string) (*domain.ReconciliationReport, error) {
	args := m.Called(ctx, candidates, sourceLabel)
	if m.done != nil {
		close(m.done)
		m.done = nil
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReconciliationReport), args.Error(1)
}

func (m *MockReconciler) SetManualRate(ctx context.Context, baseCode, targetCode string, rate decimal.Decimal, updatedBy string) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, baseCode, targetCode, rate, updatedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Error(1)
}

type MockCurrencyReader struct {
	mock.Mock
}

func (m *MockCurrencyReader) GetCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error) {
	args := m.Called(ctx, currencyCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}

func (m *MockCurrencyReader) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Currency), args.Error(1)
}

func TestRateFeedPuller_PullsOnceImmediatelyAndReconciles(t *testing.T) {
	provider := new(MockRatesProvider)
	reconciler := &MockReconciler{done: make(chan struct{})}
	done := reconciler.done
	currencies := new(MockCurrencyReader)

	currencies.On("ListCurrencies", mock.Anything).Return([]domain.Currency{
		{CurrencyCode: "USD"},
		{CurrencyCode: "EUR"},
		{CurrencyCode: "GBP"},
	}, nil).Once()
	provider.On("GetRates", mock.Anything, "USD", []string{"EUR", "GBP"}).
		Return(map[string]float64{"EUR": 0.93, "GBP": 0.80}, nil).Once()
	reconciler.On("RunReconciliation", mock.Anything,
		mock.MatchedBy(func(candidates []domain.RateCandidate) bool {
			return len(candidates) == 2
		}), "rate-feed").
		Return(&domain.ReconciliationReport{SourceLabel: "rate-feed"}, nil).Once()

	puller := jobs.NewRateFeedPuller(provider, reconciler, currencies, "USD", time.Hour, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	go puller.Run(ctx)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		require.FailNow(t, "reconciliation was not triggered by the first tick")
	}
	cancel()

	provider.AssertExpectations(t)
	reconciler.AssertExpectations(t)
	currencies.AssertExpectations(t)
}

func TestRateFeedPuller_NoTargetCurrenciesSkipsProvider(t *testing.T) {
	provider := new(MockRatesProvider)
	reconciler := &MockReconciler{}
	currencies := new(MockCurrencyReader)

	listed := make(chan struct{})
	currencies.On("ListCurrencies", mock.Anything).Return([]domain.Currency{
		{CurrencyCode: "USD"},
	}, nil).Run(func(args mock.Arguments) {
		close(listed)
	}).Once()

	puller := jobs.NewRateFeedPuller(provider, reconciler, currencies, "USD", time.Hour, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	go puller.Run(ctx)

	select {
	case <-listed:
	case <-time.After(2 * time.Second):
		require.FailNow(t, "tracked currencies were never listed")
	}
	cancel()

	assert.Eventually(t, func() bool {
		return len(provider.Calls) == 0
	}, time.Second, 10*time.Millisecond)
	provider.AssertNotCalled(t, "GetRates", mock.Anything, mock.Anything, mock.Anything)
}
