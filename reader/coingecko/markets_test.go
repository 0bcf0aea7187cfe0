package coingecko

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ericmaniraguh/crypto-price-tracker/config"
)

const marketsPayload = `[
  {
    "id": "bitcoin",
    "symbol": "btc",
    "name": "Bitcoin",
    "image": "https://assets.coingecko.com/coins/images/1/large/bitcoin.png",
    "current_price": 64250.12,
    "market_cap": 1265000000000,
    "market_cap_rank": 1,
    "total_volume": 31200000000,
    "price_change_percentage_24h": 2.41,
    "ath": 73737,
    "last_updated": "2025-05-02T10:15:00.000Z"
  },
  {
    "id": "stale-coin",
    "symbol": "stl",
    "name": "Stale Coin",
    "image": "",
    "current_price": null,
    "market_cap": null,
    "market_cap_rank": null,
    "total_volume": null,
    "price_change_percentage_24h": null,
    "ath": null,
    "last_updated": ""
  }
]`

func testConfig(url string) *config.Config {
	return &config.Config{
		Source: config.SourceConfig{
			Coingecko: config.CoingeckoConfig{
				URL:        url,
				VsCurrency: "usd",
				Order:      "market_cap_desc",
				PerPage:    250,
				Page:       1,
				Timeout: config.Duration(5 * time.Second),
				// No courtesy interval in tests.
				MinRequestInterval: 0,
			},
		},
	}
}

func TestFetchMarkets(t *testing.T) {
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(marketsPayload))
	}))
	defer srv.Close()

	reader := NewReader(testConfig(srv.URL))
	coins, err := reader.FetchMarkets(context.Background())
	if err != nil {
		t.Fatalf("fetch markets: %v", err)
	}

	if len(coins) != 2 {
		t.Fatalf("expected 2 coins, got %d", len(coins))
	}
	if coins[0].ID != "bitcoin" || coins[1].ID != "stale-coin" {
		t.Fatalf("order not preserved: %q, %q", coins[0].ID, coins[1].ID)
	}
	if coins[0].CurrentPrice == nil || *coins[0].CurrentPrice != 64250.12 {
		t.Fatalf("unexpected bitcoin price: %v", coins[0].CurrentPrice)
	}
	if coins[0].MarketCapRank == nil || *coins[0].MarketCapRank != 1 {
		t.Fatalf("unexpected bitcoin rank: %v", coins[0].MarketCapRank)
	}
	if coins[1].CurrentPrice != nil || coins[1].MarketCapRank != nil {
		t.Fatalf("null fields should decode to nil pointers")
	}

	for _, param := range []string{"vs_currency", "order", "per_page", "page", "sparkline", "price_change_percentage"} {
		if _, ok := gotQuery[param]; !ok {
			t.Fatalf("missing query parameter %q", param)
		}
	}
	if gotQuery["per_page"][0] != "250" {
		t.Fatalf("unexpected per_page: %v", gotQuery["per_page"])
	}
	if gotQuery["price_change_percentage"][0] != "24h" {
		t.Fatalf("unexpected price_change_percentage: %v", gotQuery["price_change_percentage"])
	}
}

func TestFetchMarketsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	reader := NewReader(testConfig(srv.URL))
	if _, err := reader.FetchMarkets(context.Background()); err == nil {
		t.Fatalf("expected error on non-200 response")
	}
}

func TestFetchMarketsBadPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not":"an array"}`))
	}))
	defer srv.Close()

	reader := NewReader(testConfig(srv.URL))
	if _, err := reader.FetchMarkets(context.Background()); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestFetchMarketsContextCancelled(t *testing.T) {
	cfg := testConfig("https://api.coingecko.com/api/v3/coins/markets")
	cfg.Source.Coingecko.MinRequestInterval = config.Duration(time.Hour)

	reader := NewReader(cfg)
	// First token is available immediately, drain it so Wait must block.
	reader.limiter.Allow()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := reader.FetchMarkets(ctx); err == nil {
		t.Fatalf("expected error when context is cancelled")
	}
}
