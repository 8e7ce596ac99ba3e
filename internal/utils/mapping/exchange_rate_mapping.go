package mapping

import (
	"github.com/finbackoffice/fxrates_app/internal/core/domain"
	"github.com/finbackoffice/fxrates_app/internal/models"
)

// ToModelExchangeRate converts a domain ExchangeRate to a model ExchangeRate
func ToModelExchangeRate(d domain.ExchangeRate) models.ExchangeRate {
	m := models.ExchangeRate{
		BaseCurrencyCode:   d.BaseCurrencyCode,
		TargetCurrencyCode: d.TargetCurrencyCode,
		Rate:               d.Rate,
		LastUpdated:        d.LastUpdated,
		IsManual:           d.IsManual,
		ManualUpdatedAt:    d.ManualUpdatedAt,
	}
	if d.IsManual {
		by := d.ManualUpdatedBy
		m.ManualUpdatedBy = &by
	}
	return m
}

// ToDomainExchangeRate converts a model ExchangeRate to a domain ExchangeRate
func ToDomainExchangeRate(m models.ExchangeRate) domain.ExchangeRate {
	d := domain.ExchangeRate{
		BaseCurrencyCode:   m.BaseCurrencyCode,
		TargetCurrencyCode: m.TargetCurrencyCode,
		Rate:               m.Rate,
		LastUpdated:        m.LastUpdated,
		IsManual:           m.IsManual,
		ManualUpdatedAt:    m.ManualUpdatedAt,
	}
	if m.ManualUpdatedBy != nil {
		d.ManualUpdatedBy = *m.ManualUpdatedBy
	}
	return d
}

// ToModelExchangeRateHistory converts a domain history entry to its model
func ToModelExchangeRateHistory(d domain.ExchangeRateHistory) models.ExchangeRateHistory {
	return models.ExchangeRateHistory{
		HistoryID:          d.HistoryID,
		BaseCurrencyCode:   d.BaseCurrencyCode,
		TargetCurrencyCode: d.TargetCurrencyCode,
		OldRate:            d.OldRate,
		NewRate:            d.NewRate,
		ChangeType:         string(d.ChangeType),
		UpdatedBy:          d.UpdatedBy,
		Notes:              d.Notes,
		CreatedAt:          d.CreatedAt,
	}
}

// ToDomainExchangeRateHistory converts a model history entry to its domain form
func ToDomainExchangeRateHistory(m models.ExchangeRateHistory) domain.ExchangeRateHistory {
	return domain.ExchangeRateHistory{
		HistoryID:          m.HistoryID,
		BaseCurrencyCode:   m.BaseCurrencyCode,
		TargetCurrencyCode: m.TargetCurrencyCode,
		OldRate:            m.OldRate,
		NewRate:            m.NewRate,
		ChangeType:         domain.ChangeType(m.ChangeType),
		UpdatedBy:          m.UpdatedBy,
		Notes:              m.Notes,
		CreatedAt:          m.CreatedAt,
	}
}
