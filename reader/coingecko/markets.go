package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/ericmaniraguh/crypto-price-tracker/config"
	"github.com/ericmaniraguh/crypto-price-tracker/logger"
	"github.com/ericmaniraguh/crypto-price-tracker/models"
)

// Reader fetches one page of market records from the CoinGecko
// /coins/markets endpoint. A rate limiter enforces the courtesy interval of
// the free API tier before every request.
type Reader struct {
	config  *config.Config
	client  *http.Client
	limiter *rate.Limiter
	log     *logger.Log
}

// NewReader creates a Reader using the coingecko source configuration.
func NewReader(cfg *config.Config) *Reader {
	log := logger.GetLogger()
	src := cfg.Source.Coingecko

	limiter := rate.NewLimiter(rate.Inf, 1)
	if src.MinRequestInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(src.MinRequestInterval.Std()), 1)
	}

	reader := &Reader{
		config:  cfg,
		client:  &http.Client{Timeout: src.Timeout.Std()},
		limiter: limiter,
		log:     log,
	}

	log.WithComponent("coingecko_reader").WithFields(logger.Fields{
		"url":                  src.URL,
		"vs_currency":          src.VsCurrency,
		"per_page":             src.PerPage,
		"timeout":              src.Timeout,
		"min_request_interval": src.MinRequestInterval,
	}).Info("coingecko reader initialized")

	return reader
}

// FetchMarkets retrieves the configured market snapshot. The returned slice
// preserves the API ordering and may contain records with null fields; no
// normalization happens here.
func (r *Reader) FetchMarkets(ctx context.Context) ([]models.RawCoin, error) {
	src := r.config.Source.Coingecko
	log := r.log.WithComponent("coingecko_reader").WithFields(logger.Fields{
		"operation": "fetch_markets",
		"page":      src.Page,
	})

	log.Info("waiting for rate limiter")
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	reqURL, err := r.buildURL()
	if err != nil {
		return nil, fmt.Errorf("build request url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch markets: %w", err)
	}
	defer resp.Body.Close()
	duration := time.Since(start)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("unexpected status %d from coingecko: %s", resp.StatusCode, string(body))
	}

	var coins []models.RawCoin
	if err := json.NewDecoder(resp.Body).Decode(&coins); err != nil {
		return nil, fmt.Errorf("decode markets response: %w", err)
	}

	logger.LogPerformanceEntry(log, "coingecko_reader", "api_request", duration, logger.Fields{
		"coins": len(coins),
	})
	logger.LogDataFlowEntry(log, "coingecko_api", "pipeline", len(coins), "raw_coins")

	log.WithFields(logger.Fields{"coins": len(coins)}).Info("market snapshot fetched")
	return coins, nil
}

func (r *Reader) buildURL() (string, error) {
	src := r.config.Source.Coingecko

	parsed, err := url.Parse(src.URL)
	if err != nil {
		return "", err
	}

	q := parsed.Query()
	q.Set("vs_currency", src.VsCurrency)
	q.Set("order", src.Order)
	q.Set("per_page", strconv.Itoa(src.PerPage))
	q.Set("page", strconv.Itoa(src.Page))
	q.Set("sparkline", "false")
	q.Set("price_change_percentage", "24h")
	parsed.RawQuery = q.Encode()

	return parsed.String(), nil
}
