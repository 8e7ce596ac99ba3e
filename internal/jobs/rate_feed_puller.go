package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/finbackoffice/fxrates_app/internal/core/domain"
	portssvc "github.com/finbackoffice/fxrates_app/internal/core/ports/services"
	"github.com/finbackoffice/fxrates_app/internal/platform/metrics"
	"github.com/finbackoffice/fxrates_app/internal/platform/ratefeed"
	"github.com/shopspring/decimal"
)

// RateFeedPuller periodically fetches externally-sourced rates and feeds them
// through the reconciliation engine. It is the in-process stand-in for a
// cron-style invoker: one pass per interval, no retries within a pass.
type RateFeedPuller struct {
	provider     ratefeed.RatesProvider
	reconciler   portssvc.RateReconcilerSvc
	currencies   portssvc.CurrencyReaderSvc
	baseCurrency string
	interval     time.Duration
	sourceLabel  string
	logger       *slog.Logger
}

// NewRateFeedPuller creates a puller quoting every tracked currency against
// baseCurrency.
func NewRateFeedPuller(
	provider ratefeed.RatesProvider,
	reconciler portssvc.RateReconcilerSvc,
	currencies portssvc.CurrencyReaderSvc,
	baseCurrency string,
	interval time.Duration,
	logger *slog.Logger,
) *RateFeedPuller {
	return &RateFeedPuller{
		provider:     provider,
		reconciler:   reconciler,
		currencies:   currencies,
		baseCurrency: baseCurrency,
		interval:     interval,
		sourceLabel:  "rate-feed",
		logger:       logger,
	}
}

// Run blocks, pulling once immediately and then once per interval, until ctx
// is cancelled.
func (p *RateFeedPuller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// fake first tick to pull rates immediately
	firstTick := make(chan struct{}, 1)
	firstTick <- struct{}{}

	p.logger.Info("Rate feed puller started",
		slog.String("base_currency", p.baseCurrency),
		slog.Duration("interval", p.interval),
	)
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Rate feed puller stopped")
			return
		case <-firstTick:
			p.pullOnce(ctx)
		case <-ticker.C:
			p.pullOnce(ctx)
		}
	}
}

func (p *RateFeedPuller) pullOnce(ctx context.Context) {
	start := time.Now()

	symbols, err := p.targetSymbols(ctx)
	if err != nil {
		p.logger.Error("Failed to list tracked currencies", slog.String("error", err.Error()))
		metrics.ObserveFeedPullError()
		return
	}
	if len(symbols) == 0 {
		p.logger.Warn("No tracked currencies besides the base, nothing to pull")
		return
	}

	pulled, err := p.provider.GetRates(ctx, p.baseCurrency, symbols)
	if err != nil {
		p.logger.Error("Failed to fetch rates from feed", slog.String("error", err.Error()))
		metrics.ObserveFeedPullError()
		return
	}

	candidates := make([]domain.RateCandidate, 0, len(pulled))
	for symbol, rate := range pulled {
		candidates = append(candidates, domain.RateCandidate{
			BaseCurrencyCode:   p.baseCurrency,
			TargetCurrencyCode: symbol,
			Rate:               decimal.NewFromFloat(rate),
		})
	}
	if len(candidates) == 0 {
		p.logger.Warn("Rate feed returned no rates")
		return
	}

	report, err := p.reconciler.RunReconciliation(ctx, candidates, p.sourceLabel)
	if err != nil {
		p.logger.Error("Reconciliation pass failed", slog.String("error", err.Error()))
		metrics.ObserveFeedPullError()
		return
	}

	metrics.ObserveReconciliation(report)
	metrics.ObserveFeedPull(time.Since(start))
	p.logger.Info("Reconciliation pass completed",
		slog.Int("updated", report.Updated()),
		slog.Int("inserted", report.Inserted()),
		slog.Int("skipped", report.Skipped()),
		slog.Int("failed", report.Failed()),
	)
}

// targetSymbols returns every tracked currency code except the base.
func (p *RateFeedPuller) targetSymbols(ctx context.Context) ([]string, error) {
	currencies, err := p.currencies.ListCurrencies(ctx)
	if err != nil {
		return nil, err
	}
	var symbols []string
	for _, currency := range currencies {
		if currency.CurrencyCode != p.baseCurrency {
			symbols = append(symbols, currency.CurrencyCode)
		}
	}
	return symbols, nil
}
