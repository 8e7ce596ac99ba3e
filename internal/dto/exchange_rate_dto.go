package dto

import (
	"time"

	"github.com/finbackoffice/fxrates_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ExchangeRateResponse defines the structure for API responses containing a
// stored rate row, including its manual-override metadata.
type ExchangeRateResponse struct {
	BaseCurrencyCode   string          `json:"baseCurrencyCode"`
	TargetCurrencyCode string          `json:"targetCurrencyCode"`
	Rate               decimal.Decimal `json:"rate"`
	LastUpdated        time.Time       `json:"lastUpdated"`
	IsManual           bool            `json:"isManual"`
	ManualUpdatedAt    *time.Time      `json:"manualUpdatedAt,omitempty"`
	ManualUpdatedBy    string          `json:"manualUpdatedBy,omitempty"`
}

// ToExchangeRateResponse converts a domain.ExchangeRate to its response DTO
func ToExchangeRateResponse(rate *domain.ExchangeRate) ExchangeRateResponse {
	return ExchangeRateResponse{
		BaseCurrencyCode:   rate.BaseCurrencyCode,
		TargetCurrencyCode: rate.TargetCurrencyCode,
		Rate:               rate.Rate,
		LastUpdated:        rate.LastUpdated,
		IsManual:           rate.IsManual,
		ManualUpdatedAt:    rate.ManualUpdatedAt,
		ManualUpdatedBy:    rate.ManualUpdatedBy,
	}
}

// ToListExchangeRateResponse converts a slice of domain.ExchangeRate to response DTOs.
func ToListExchangeRateResponse(rates []domain.ExchangeRate) []ExchangeRateResponse {
	responses := make([]ExchangeRateResponse, len(rates))
	for i := range rates {
		responses[i] = ToExchangeRateResponse(&rates[i])
	}
	return responses
}

// SetManualRateRequest defines the body of a manual rate update.
type SetManualRateRequest struct {
	Rate      decimal.Decimal `json:"rate" binding:"required"`
	UpdatedBy string          `json:"updatedBy" binding:"required"`
}

// RateCandidateRequest is one externally-sourced rate submitted for reconciliation.
type RateCandidateRequest struct {
	BaseCurrencyCode   string          `json:"baseCurrencyCode" binding:"required,currencycode"`
	TargetCurrencyCode string          `json:"targetCurrencyCode" binding:"required,currencycode"`
	Rate               decimal.Decimal `json:"rate" binding:"required"`
}

// RunReconciliationRequest defines the body of a reconciliation trigger.
type RunReconciliationRequest struct {
	SourceLabel string                 `json:"sourceLabel" binding:"required"`
	Candidates  []RateCandidateRequest `json:"candidates" binding:"required,min=1,dive"`
}

// ToRateCandidates converts request candidates to their domain form.
func (r *RunReconciliationRequest) ToRateCandidates() []domain.RateCandidate {
	candidates := make([]domain.RateCandidate, len(r.Candidates))
	for i, c := range r.Candidates {
		candidates[i] = domain.RateCandidate{
			BaseCurrencyCode:   c.BaseCurrencyCode,
			TargetCurrencyCode: c.TargetCurrencyCode,
			Rate:               c.Rate,
		}
	}
	return candidates
}

// ReconciliationReportResponse summarises one reconciliation pass.
type ReconciliationReportResponse struct {
	SourceLabel string              `json:"sourceLabel"`
	Updated     int                 `json:"updated"`
	Inserted    int                 `json:"inserted"`
	Skipped     int                 `json:"skipped"`
	Failed      int                 `json:"failed"`
	Results     []domain.PairResult `json:"results"`
}

// ToReconciliationReportResponse converts a domain report to its response DTO.
func ToReconciliationReportResponse(report *domain.ReconciliationReport) ReconciliationReportResponse {
	return ReconciliationReportResponse{
		SourceLabel: report.SourceLabel,
		Updated:     report.Updated(),
		Inserted:    report.Inserted(),
		Skipped:     report.Skipped(),
		Failed:      report.Failed(),
		Results:     report.Results,
	}
}

// ConvertResponse defines the result of a conversion query. Converted carries
// the exact unrounded value; ConvertedDisplay is rounded to the target
// currency's precision.
type ConvertResponse struct {
	Amount           decimal.Decimal `json:"amount"`
	FromCurrencyCode string          `json:"fromCurrencyCode"`
	ToCurrencyCode   string          `json:"toCurrencyCode"`
	Rate             decimal.Decimal `json:"rate"`
	Converted        decimal.Decimal `json:"converted"`
	ConvertedDisplay string          `json:"convertedDisplay"`
}

// ExchangeRateHistoryResponse defines one history entry in API responses.
type ExchangeRateHistoryResponse struct {
	HistoryID          string          `json:"historyID"`
	BaseCurrencyCode   string          `json:"baseCurrencyCode"`
	TargetCurrencyCode string          `json:"targetCurrencyCode"`
	OldRate            decimal.Decimal `json:"oldRate"`
	NewRate            decimal.Decimal `json:"newRate"`
	ChangeType         string          `json:"changeType"`
	UpdatedBy          string          `json:"updatedBy"`
	Notes              string          `json:"notes"`
	CreatedAt          time.Time       `json:"createdAt"`
}

// ToListExchangeRateHistoryResponse converts domain history entries to response DTOs.
func ToListExchangeRateHistoryResponse(entries []domain.ExchangeRateHistory) []ExchangeRateHistoryResponse {
	responses := make([]ExchangeRateHistoryResponse, len(entries))
	for i, e := range entries {
		responses[i] = ExchangeRateHistoryResponse{
			HistoryID:          e.HistoryID,
			BaseCurrencyCode:   e.BaseCurrencyCode,
			TargetCurrencyCode: e.TargetCurrencyCode,
			OldRate:            e.OldRate,
			NewRate:            e.NewRate,
			ChangeType:         string(e.ChangeType),
			UpdatedBy:          e.UpdatedBy,
			Notes:              e.Notes,
			CreatedAt:          e.CreatedAt,
		}
	}
	return responses
}
