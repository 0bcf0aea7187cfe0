package display

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ericmaniraguh/crypto-price-tracker/models"
)

func displayCoin(id, name, symbol string, change float64) models.NormalizedCoin {
	price := 100.0
	rank := 1
	sym := models.ChangeDown
	if change > 0 {
		sym = models.ChangeUp
	}
	return models.NormalizedCoin{
		ID:             id,
		Rank:           &rank,
		Name:           name,
		Symbol:         symbol,
		CurrentPrice:   &price,
		PriceChange24h: change,
		ChangeSymbol:   sym,
		Number:         1,
	}
}

func TestMarketCapLeaders(t *testing.T) {
	var buf bytes.Buffer
	coins := []models.NormalizedCoin{
		displayCoin("bitcoin", "Bitcoin", "BTC", 2.41),
		displayCoin("ethereum", "Ethereum", "ETH", -1.2),
	}

	MarketCapLeaders(&buf, coins, 1)
	out := buf.String()
	if !strings.Contains(out, "Bitcoin") {
		t.Fatalf("expected Bitcoin in output:\n%s", out)
	}
	if strings.Contains(out, "Ethereum") {
		t.Fatalf("limit 1 should cut Ethereum:\n%s", out)
	}
	if !strings.Contains(out, "+2.41% UP") {
		t.Fatalf("expected formatted change in output:\n%s", out)
	}
}

func TestMarketCapLeadersMissingFields(t *testing.T) {
	var buf bytes.Buffer
	coin := displayCoin("stale-coin", "Stale Coin", "STL", 0)
	coin.Rank = nil
	coin.CurrentPrice = nil
	coin.MarketCap = nil

	MarketCapLeaders(&buf, []models.NormalizedCoin{coin}, 5)
	if !strings.Contains(buf.String(), "N/A") {
		t.Fatalf("expected N/A for missing fields:\n%s", buf.String())
	}
}

func TestTopGainersEmpty(t *testing.T) {
	var buf bytes.Buffer
	TopGainers(&buf, nil)
	if !strings.Contains(buf.String(), "(none)") {
		t.Fatalf("expected placeholder for empty subset:\n%s", buf.String())
	}
}

func TestSummary(t *testing.T) {
	var buf bytes.Buffer
	gainer := displayCoin("bitcoin", "Bitcoin", "BTC", 2.41)
	loser := displayCoin("ethereum", "Ethereum", "ETH", -1.2)
	Summary(&buf, &models.MarketSummary{
		TotalCoins:        2,
		GainersCount:      1,
		LosersCount:       1,
		GainersPercentage: 50,
		LosersPercentage:  50,
		TopGainer:         &gainer,
		TopLoser:          &loser,
	})

	out := buf.String()
	for _, want := range []string{"Total coins", "50.00%", "Bitcoin", "Ethereum"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestSummaryNil(t *testing.T) {
	var buf bytes.Buffer
	Summary(&buf, nil)
	if !strings.Contains(buf.String(), "(no data)") {
		t.Fatalf("expected no-data placeholder:\n%s", buf.String())
	}
}
