package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/finbackoffice/fxrates_app/internal/apperrors"
	"github.com/finbackoffice/fxrates_app/internal/core/domain"
	portsrepo "github.com/finbackoffice/fxrates_app/internal/core/ports/repositories"
	portssvc "github.com/finbackoffice/fxrates_app/internal/core/ports/services"
	"github.com/finbackoffice/fxrates_app/internal/dto"
)

// CurrencyService manages the tracked currency list.
type CurrencyService struct {
	currencyRepo portsrepo.CurrencyRepositoryFacade
}

func NewCurrencyService(currencyRepo portsrepo.CurrencyRepositoryFacade) *CurrencyService {
	return &CurrencyService{currencyRepo: currencyRepo}
}

var _ portssvc.CurrencySvcFacade = (*CurrencyService)(nil)
var _ portssvc.StaticDataService = (*CurrencyService)(nil)

func (s *CurrencyService) CreateCurrency(ctx context.Context, req dto.CreateCurrencyRequest, creatorUserID string) (*domain.Currency, error) {
	// Basic validation already handled by DTO binding (required, len=3, uppercase)
	now := time.Now()

	currency := domain.Currency{
		CurrencyCode: req.CurrencyCode,
		Symbol:       req.Symbol,
		Name:         req.Name,
		Precision:    req.Precision,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	err := s.currencyRepo.SaveCurrency(ctx, currency)
	if err != nil {
		return nil, fmt.Errorf("failed to create currency in service: %w", err)
	}

	return &currency, nil
}

func (s *CurrencyService) GetCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error) {
	currency, err := s.currencyRepo.FindCurrencyByCode(ctx, currencyCode)
	if err != nil {
		return nil, fmt.Errorf("failed to get currency by code in service: %w", err)
	}
	return currency, nil
}

func (s *CurrencyService) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	currencies, err := s.currencyRepo.ListCurrencies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list currencies in service: %w", err)
	}
	// Return empty slice if no currencies found, not nil
	if currencies == nil {
		return []domain.Currency{}, nil
	}
	return currencies, nil
}

// InitializeStaticData seeds the tracked currency list on first startup so
// the rate feed has pairs to quote against.
func (s *CurrencyService) InitializeStaticData(ctx context.Context) error {
	seed := []domain.Currency{
		{CurrencyCode: "USD", Symbol: "$", Name: "US Dollar", Precision: 2},
		{CurrencyCode: "EUR", Symbol: "€", Name: "Euro", Precision: 2},
		{CurrencyCode: "GBP", Symbol: "£", Name: "British Pound", Precision: 2},
		{CurrencyCode: "JPY", Symbol: "¥", Name: "Japanese Yen", Precision: 0},
	}

	now := time.Now()
	for _, currency := range seed {
		_, err := s.currencyRepo.FindCurrencyByCode(ctx, currency.CurrencyCode)
		if err == nil {
			continue
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("failed to check currency %s during seeding: %w", currency.CurrencyCode, err)
		}
		currency.AuditFields = domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     "system",
			LastUpdatedAt: now,
			LastUpdatedBy: "system",
		}
		if err := s.currencyRepo.SaveCurrency(ctx, currency); err != nil {
			return fmt.Errorf("failed to seed currency %s: %w", currency.CurrencyCode, err)
		}
	}
	return nil
}
