package processor

import (
	"sort"
	"strings"

	"github.com/ericmaniraguh/crypto-price-tracker/logger"
	"github.com/ericmaniraguh/crypto-price-tracker/models"
)

// Normalizer projects enhanced records into the fixed output shape, sorts
// them by market cap rank and assigns the dense sequence number.
type Normalizer struct {
	log *logger.Log
}

func NewNormalizer() *Normalizer {
	return &Normalizer{log: logger.GetLogger()}
}

// Normalize builds a fresh slice of normalized records. Missing fields take
// their documented defaults, the symbol is uppercased and records end up
// sorted by rank ascending with null ranks last. Ties keep input order.
func (n *Normalizer) Normalize(coins []models.EnhancedCoin) []models.NormalizedCoin {
	log := n.log.WithComponent("normalizer").WithFields(logger.Fields{"operation": "normalize"})

	normalized := make([]models.NormalizedCoin, 0, len(coins))
	for _, coin := range coins {
		symbol := coin.ChangeSymbol
		if symbol == "" {
			symbol = models.ChangeDown
		}

		normalized = append(normalized, models.NormalizedCoin{
			ID:             coin.ID,
			Rank:           copyIntPtr(coin.MarketCapRank),
			Name:           coin.Name,
			Symbol:         strings.ToUpper(coin.Symbol),
			CurrentPrice:   copyFloatPtr(coin.CurrentPrice),
			PriceChange24h: coin.PriceChange24h,
			ChangeSymbol:   symbol,
			MarketCap:      copyFloatPtr(coin.MarketCap),
			Volume24h:      copyFloatPtr(coin.TotalVolume),
			ATH:            copyFloatPtr(coin.ATH),
			Image:          coin.Image,
			Date:           coin.Date,
			LastUpdated:    coin.LastUpdated,
		})
	}

	sort.SliceStable(normalized, func(i, j int) bool {
		return rankLess(normalized[i].Rank, normalized[j].Rank)
	})

	for i := range normalized {
		normalized[i].Number = i + 1
	}

	log.WithFields(logger.Fields{"coins": len(normalized)}).Info("records normalized")
	return normalized
}

// rankLess orders ranks ascending with nil ranks after every concrete rank.
func rankLess(a, b *int) bool {
	if a == nil {
		return false
	}
	if b == nil {
		return true
	}
	return *a < *b
}

// Pointer fields are copied so downstream consumers never alias the
// supplier's records.
func copyIntPtr(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func copyFloatPtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
