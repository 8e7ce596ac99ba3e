package ratefeed_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/finbackoffice/fxrates_app/internal/platform/ratefeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPProvider_GetRates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "USD", r.URL.Query().Get("base"))
		assert.Equal(t, "EUR,GBP", r.URL.Query().Get("symbols"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success": true, "base": "USD", "timestamp": 1714060800, "rates": {"EUR": 0.93, "GBP": 0.80}}`))
	}))
	defer server.Close()

	provider := ratefeed.NewHTTPProvider(server.URL)
	rates, err := provider.GetRates(context.Background(), "USD", []string{"EUR", "GBP"})

	require.NoError(t, err)
	assert.Equal(t, 0.93, rates["EUR"])
	assert.Equal(t, 0.80, rates["GBP"])
}

func TestHTTPProvider_GetRates_FeedReportsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success": false}`))
	}))
	defer server.Close()

	provider := ratefeed.NewHTTPProvider(server.URL)
	_, err := provider.GetRates(context.Background(), "USD", []string{"EUR"})

	require.Error(t, err)
}

func TestHTTPProvider_GetRates_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	provider := ratefeed.NewHTTPProvider(server.URL)
	_, err := provider.GetRates(context.Background(), "USD", []string{"EUR"})

	require.Error(t, err)
}
