package domain_test

import (
	"testing"
	"time"

	"github.com/finbackoffice/fxrates_app/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestExchangeRate_ManualOverrideActive(t *testing.T) {
	now := time.Date(2025, 4, 25, 12, 0, 0, 0, time.UTC)
	window := 24 * time.Hour

	tests := []struct {
		name string
		rate domain.ExchangeRate
		want bool
	}{
		{
			name: "automatic rate is never an active override",
			rate: domain.ExchangeRate{
				IsManual: false,
			},
			want: false,
		},
		{
			name: "manual flag without timestamp",
			rate: domain.ExchangeRate{
				IsManual: true,
			},
			want: false,
		},
		{
			name: "manual rate one hour old",
			rate: domain.ExchangeRate{
				IsManual:        true,
				ManualUpdatedAt: timePtr(now.Add(-1 * time.Hour)),
			},
			want: true,
		},
		{
			name: "manual rate just inside the window",
			rate: domain.ExchangeRate{
				IsManual:        true,
				ManualUpdatedAt: timePtr(now.Add(-23 * time.Hour)),
			},
			want: true,
		},
		{
			name: "manual rate exactly at the window boundary",
			rate: domain.ExchangeRate{
				IsManual:        true,
				ManualUpdatedAt: timePtr(now.Add(-24 * time.Hour)),
			},
			want: false,
		},
		{
			name: "manual rate past the window",
			rate: domain.ExchangeRate{
				IsManual:        true,
				ManualUpdatedAt: timePtr(now.Add(-25 * time.Hour)),
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.rate.ManualOverrideActive(now, window)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReconciliationReport_OutcomeCounts(t *testing.T) {
	report := domain.ReconciliationReport{
		SourceLabel: "feed",
		Results: []domain.PairResult{
			{BaseCurrencyCode: "USD", TargetCurrencyCode: "EUR", Outcome: domain.OutcomeUpdated},
			{BaseCurrencyCode: "USD", TargetCurrencyCode: "GBP", Outcome: domain.OutcomeUpdated},
			{BaseCurrencyCode: "USD", TargetCurrencyCode: "JPY", Outcome: domain.OutcomeInserted},
			{BaseCurrencyCode: "USD", TargetCurrencyCode: "CHF", Outcome: domain.OutcomeSkipped},
			{BaseCurrencyCode: "USD", TargetCurrencyCode: "XXX", Outcome: domain.OutcomeFailed, Error: "boom"},
		},
	}

	assert.Equal(t, 2, report.Updated())
	assert.Equal(t, 1, report.Inserted())
	assert.Equal(t, 1, report.Skipped())
	assert.Equal(t, 1, report.Failed())
}

func TestReconciliationReport_EmptyReportCountsZero(t *testing.T) {
	report := domain.ReconciliationReport{SourceLabel: "feed"}

	assert.Equal(t, 0, report.Updated())
	assert.Equal(t, 0, report.Inserted())
	assert.Equal(t, 0, report.Skipped())
	assert.Equal(t, 0, report.Failed())
}

func TestRateCandidate_DecimalPrecisionSurvivesConstruction(t *testing.T) {
	candidate := domain.RateCandidate{
		BaseCurrencyCode:   "USD",
		TargetCurrencyCode: "EUR",
		Rate:               decimal.RequireFromString("0.123456789"),
	}
	assert.Equal(t, "0.123456789", candidate.Rate.String())
}

func timePtr(t time.Time) *time.Time {
	return &t
}
