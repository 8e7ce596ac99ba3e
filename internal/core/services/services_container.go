package services

import (
	portsrepo "github.com/finbackoffice/fxrates_app/internal/core/ports/repositories"
	portssvc "github.com/finbackoffice/fxrates_app/internal/core/ports/services"
	"github.com/finbackoffice/fxrates_app/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Currency = NewCurrencyService(repos.CurrencyRepo)
	container.ExchangeRate = NewExchangeRateService(
		repos.ExchangeRateRepo,
		WithOverrideWindow(cfg.OverrideWindow),
		WithHistoryThresholdPercent(cfg.HistoryThresholdPercent),
		WithSnapshotTTL(cfg.SnapshotRefreshInterval),
	)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.CurrencySvcFacade     = (*CurrencyService)(nil)
	_ portssvc.ExchangeRateSvcFacade = (*ExchangeRateService)(nil)
)
