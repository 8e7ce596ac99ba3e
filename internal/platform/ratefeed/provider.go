package ratefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// RatesProvider defines an interface for fetching exchange rates from an
// external source.
type RatesProvider interface {
	// GetRates returns the current rates for base against each requested
	// symbol, as units of symbol per 1 unit of base.
	GetRates(ctx context.Context, base string, symbols []string) (map[string]float64, error)
}

// HTTPProvider fetches rates from a fixer-style JSON endpoint:
//
//	{"success": true, "base": "USD", "timestamp": 1714060800,
//	 "rates": {"EUR": 0.93, "GBP": 0.80}}
type HTTPProvider struct {
	endpoint string
	client   *http.Client
}

// NewHTTPProvider creates a provider for the given endpoint URL.
func NewHTTPProvider(endpoint string) *HTTPProvider {
	return &HTTPProvider{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

var _ RatesProvider = (*HTTPProvider)(nil)

type ratesResponse struct {
	Success   bool               `json:"success"`
	Base      string             `json:"base"`
	Timestamp int64              `json:"timestamp"`
	Rates     map[string]float64 `json:"rates"`
}

// GetRates fetches current rates. Errors are surfaced to the caller and not
// retried here; retry policy belongs to the invoking job's schedule.
func (p *HTTPProvider) GetRates(ctx context.Context, base string, symbols []string) (map[string]float64, error) {
	reqURL, err := url.Parse(p.endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid rate feed URL: %w", err)
	}
	query := reqURL.Query()
	query.Set("base", base)
	query.Set("symbols", strings.Join(symbols, ","))
	reqURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build rate feed request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rate feed request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rate feed returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read rate feed response: %w", err)
	}

	var parsed ratesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode rate feed response: %w", err)
	}
	if !parsed.Success {
		return nil, fmt.Errorf("rate feed reported failure for base %s", base)
	}

	return parsed.Rates, nil
}
