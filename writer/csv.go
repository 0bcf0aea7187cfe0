package writer

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/ericmaniraguh/crypto-price-tracker/models"
)

var enhancedHeader = []string{
	"id", "symbol", "name", "current_price", "market_cap", "market_cap_rank",
	"total_volume", "price_change_24h", "change_symbol", "ath", "image",
	"date", "last_updated",
}

var normalizedHeader = []string{
	"number", "rank", "id", "name", "symbol", "current_price",
	"price_change_24h", "change_symbol", "market_cap", "volume_24h", "ath",
	"image", "date", "last_updated",
}

func writeCSVFile(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return nil
}

func writeEnhancedCSV(path string, coins []models.EnhancedCoin) error {
	rows := make([][]string, 0, len(coins))
	for _, c := range coins {
		rows = append(rows, []string{
			c.ID,
			c.Symbol,
			c.Name,
			formatFloatPtr(c.CurrentPrice),
			formatFloatPtr(c.MarketCap),
			formatIntPtr(c.MarketCapRank),
			formatFloatPtr(c.TotalVolume),
			formatFloat(c.PriceChange24h),
			string(c.ChangeSymbol),
			formatFloatPtr(c.ATH),
			c.Image,
			c.Date,
			c.LastUpdated,
		})
	}
	return writeCSVFile(path, enhancedHeader, rows)
}

func writeNormalizedCSV(path string, coins []models.NormalizedCoin) error {
	rows := make([][]string, 0, len(coins))
	for _, c := range coins {
		rows = append(rows, normalizedRow(c))
	}
	return writeCSVFile(path, normalizedHeader, rows)
}

// writeRankedCSV writes a normalized-shaped CSV with an extra leading rank
// column, used for the gainer and loser subsets.
func writeRankedCSV(path, rankHeader string, coins []models.RankedCoin, rankOf func(models.RankedCoin) int) error {
	header := append([]string{rankHeader}, normalizedHeader...)
	rows := make([][]string, 0, len(coins))
	for _, c := range coins {
		rows = append(rows, append([]string{strconv.Itoa(rankOf(c))}, normalizedRow(c.NormalizedCoin)...))
	}
	return writeCSVFile(path, header, rows)
}

func normalizedRow(c models.NormalizedCoin) []string {
	return []string{
		strconv.Itoa(c.Number),
		formatIntPtr(c.Rank),
		c.ID,
		c.Name,
		c.Symbol,
		formatFloatPtr(c.CurrentPrice),
		formatFloat(c.PriceChange24h),
		string(c.ChangeSymbol),
		formatFloatPtr(c.MarketCap),
		formatFloatPtr(c.Volume24h),
		formatFloatPtr(c.ATH),
		c.Image,
		c.Date,
		c.LastUpdated,
	}
}

// Missing values render as empty cells rather than a sentinel.
func formatFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func formatIntPtr(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
