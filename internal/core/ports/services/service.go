package services

import "context"

// ServiceContainer holds instances of all the application services.
// This is the main entry point for accessing service functionality and
// is used throughout the application, particularly in the handlers.
type ServiceContainer struct {
	Currency     CurrencySvcFacade
	ExchangeRate ExchangeRateSvcFacade
}

// StaticDataService defines the interface for seeding static data like the
// tracked currency list on startup.
type StaticDataService interface {
	InitializeStaticData(ctx context.Context) error
}
