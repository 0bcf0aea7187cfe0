package processor

import (
	"sort"

	"github.com/ericmaniraguh/crypto-price-tracker/logger"
	"github.com/ericmaniraguh/crypto-price-tracker/models"
)

// Ranker derives the top gainers and top losers subsets from a normalized
// snapshot. Neutral records (exactly zero change) appear in neither subset.
type Ranker struct {
	limit int
	log   *logger.Log
}

// NewRanker creates a Ranker returning at most limit records per subset.
// A negative limit behaves like zero.
func NewRanker(limit int) *Ranker {
	if limit < 0 {
		limit = 0
	}
	return &Ranker{limit: limit, log: logger.GetLogger()}
}

// TopGainers returns the records with strictly positive 24h change, sorted by
// change descending, truncated to the configured limit and numbered from 1.
// Ties keep the normalized order.
func (r *Ranker) TopGainers(coins []models.NormalizedCoin) []models.RankedCoin {
	gainers := filterByChange(coins, func(change float64) bool { return change > 0 })
	sort.SliceStable(gainers, func(i, j int) bool {
		return gainers[i].PriceChange24h > gainers[j].PriceChange24h
	})
	ranked := r.assign(gainers, func(c *models.RankedCoin, pos int) { c.GainerRank = pos })

	r.log.WithComponent("ranker").WithFields(logger.Fields{
		"operation": "top_gainers",
		"input":     len(coins),
		"ranked":    len(ranked),
		"limit":     r.limit,
	}).Info("gainers ranked")
	return ranked
}

// TopLosers returns the records with strictly negative 24h change, sorted by
// change ascending (worst first), truncated to the configured limit and
// numbered from 1. Ties keep the normalized order.
func (r *Ranker) TopLosers(coins []models.NormalizedCoin) []models.RankedCoin {
	losers := filterByChange(coins, func(change float64) bool { return change < 0 })
	sort.SliceStable(losers, func(i, j int) bool {
		return losers[i].PriceChange24h < losers[j].PriceChange24h
	})
	ranked := r.assign(losers, func(c *models.RankedCoin, pos int) { c.LoserRank = pos })

	r.log.WithComponent("ranker").WithFields(logger.Fields{
		"operation": "top_losers",
		"input":     len(coins),
		"ranked":    len(ranked),
		"limit":     r.limit,
	}).Info("losers ranked")
	return ranked
}

func filterByChange(coins []models.NormalizedCoin, keep func(float64) bool) []models.NormalizedCoin {
	filtered := make([]models.NormalizedCoin, 0, len(coins))
	for _, coin := range coins {
		if keep(coin.PriceChange24h) {
			filtered = append(filtered, coin)
		}
	}
	return filtered
}

func (r *Ranker) assign(coins []models.NormalizedCoin, setRank func(*models.RankedCoin, int)) []models.RankedCoin {
	if len(coins) > r.limit {
		coins = coins[:r.limit]
	}
	ranked := make([]models.RankedCoin, 0, len(coins))
	for i, coin := range coins {
		rc := models.RankedCoin{NormalizedCoin: coin}
		setRank(&rc, i+1)
		ranked = append(ranked, rc)
	}
	return ranked
}
