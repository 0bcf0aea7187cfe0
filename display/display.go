package display

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/ericmaniraguh/crypto-price-tracker/models"
)

// Console tables for the daily snapshot. Missing numeric fields render as
// N/A instead of a misleading zero.

// MarketCapLeaders prints the first limit records of the normalized snapshot.
func MarketCapLeaders(w io.Writer, coins []models.NormalizedCoin, limit int) {
	if limit < 0 {
		limit = 0
	}
	if limit > len(coins) {
		limit = len(coins)
	}

	fmt.Fprintf(w, "\nTop %d Cryptocurrencies by Market Cap\n", limit)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tRANK\tNAME\tSYMBOL\tPRICE\t24H CHANGE\tMARKET CAP")
	for _, c := range coins[:limit] {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			c.Number,
			formatRank(c.Rank),
			c.Name,
			c.Symbol,
			formatMoney(c.CurrentPrice),
			formatChange(c.PriceChange24h, c.ChangeSymbol),
			formatMoney(c.MarketCap),
		)
	}
	tw.Flush()
}

// TopGainers prints the ranked gainer subset.
func TopGainers(w io.Writer, coins []models.RankedCoin) {
	printRanked(w, "Top Gainers (24h)", coins, func(c models.RankedCoin) int { return c.GainerRank })
}

// TopLosers prints the ranked loser subset.
func TopLosers(w io.Writer, coins []models.RankedCoin) {
	printRanked(w, "Top Losers (24h)", coins, func(c models.RankedCoin) int { return c.LoserRank })
}

func printRanked(w io.Writer, title string, coins []models.RankedCoin, rankOf func(models.RankedCoin) int) {
	fmt.Fprintf(w, "\n%s\n", title)
	if len(coins) == 0 {
		fmt.Fprintln(w, "  (none)")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tNAME\tSYMBOL\tPRICE\t24H CHANGE")
	for _, c := range coins {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			rankOf(c),
			c.Name,
			c.Symbol,
			formatMoney(c.CurrentPrice),
			formatChange(c.PriceChange24h, c.ChangeSymbol),
		)
	}
	tw.Flush()
}

// Summary prints market-level counts and the extreme performers.
func Summary(w io.Writer, summary *models.MarketSummary) {
	fmt.Fprintf(w, "\nMarket Summary\n")
	if summary == nil {
		fmt.Fprintln(w, "  (no data)")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Total coins\t%d\n", summary.TotalCoins)
	fmt.Fprintf(tw, "Gainers\t%d (%.2f%%)\n", summary.GainersCount, summary.GainersPercentage)
	fmt.Fprintf(tw, "Losers\t%d (%.2f%%)\n", summary.LosersCount, summary.LosersPercentage)
	fmt.Fprintf(tw, "Neutral\t%d\n", summary.NeutralCount)
	if summary.TopGainer != nil {
		fmt.Fprintf(tw, "Top gainer\t%s (%+.2f%%)\n", summary.TopGainer.Name, summary.TopGainer.PriceChange24h)
	}
	if summary.TopLoser != nil {
		fmt.Fprintf(tw, "Top loser\t%s (%+.2f%%)\n", summary.TopLoser.Name, summary.TopLoser.PriceChange24h)
	}
	tw.Flush()
}

func formatMoney(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("$%.2f", *v)
}

func formatRank(v *int) string {
	if v == nil {
		return "N/A"
	}
	return strconv.Itoa(*v)
}

func formatChange(change float64, symbol models.ChangeSymbol) string {
	return fmt.Sprintf("%+.2f%% %s", change, symbol)
}
