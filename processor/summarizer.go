package processor

import (
	"github.com/ericmaniraguh/crypto-price-tracker/logger"
	"github.com/ericmaniraguh/crypto-price-tracker/models"
)

// Summarizer aggregates a normalized snapshot into market-level counts and
// the single best and worst performers.
type Summarizer struct {
	log *logger.Log
}

func NewSummarizer() *Summarizer {
	return &Summarizer{log: logger.GetLogger()}
}

// Summarize walks the snapshot once, partitioning records into gainers,
// losers and neutrals and tracking the extreme performers. Ties keep the
// first record seen. An empty snapshot yields no summary.
func (s *Summarizer) Summarize(coins []models.NormalizedCoin) *models.MarketSummary {
	log := s.log.WithComponent("summarizer").WithFields(logger.Fields{"operation": "summarize"})

	if len(coins) == 0 {
		log.Warn("no records to summarize")
		return nil
	}

	summary := &models.MarketSummary{TotalCoins: len(coins)}
	topGainer := coins[0]
	topLoser := coins[0]

	for _, coin := range coins {
		switch {
		case coin.PriceChange24h > 0:
			summary.GainersCount++
		case coin.PriceChange24h < 0:
			summary.LosersCount++
		default:
			summary.NeutralCount++
		}

		if coin.PriceChange24h > topGainer.PriceChange24h {
			topGainer = coin
		}
		if coin.PriceChange24h < topLoser.PriceChange24h {
			topLoser = coin
		}
	}

	if summary.TotalCoins > 0 {
		summary.GainersPercentage = float64(summary.GainersCount) / float64(summary.TotalCoins) * 100
		summary.LosersPercentage = float64(summary.LosersCount) / float64(summary.TotalCoins) * 100
	}

	gainer, loser := topGainer, topLoser
	summary.TopGainer = &gainer
	summary.TopLoser = &loser

	log.WithFields(logger.Fields{
		"total":   summary.TotalCoins,
		"gainers": summary.GainersCount,
		"losers":  summary.LosersCount,
		"neutral": summary.NeutralCount,
	}).Info("market summarized")
	return summary
}
