package processor

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/ericmaniraguh/crypto-price-tracker/logger"
	"github.com/ericmaniraguh/crypto-price-tracker/models"
)

const fieldPriceChangePercentage = "price_change_percentage_24h"

// Enhancer stamps raw market records with the capture date and derives the
// signed 24h change plus its direction symbol.
type Enhancer struct {
	log *logger.Log
}

func NewEnhancer() *Enhancer {
	return &Enhancer{log: logger.GetLogger()}
}

// Enhance returns one enhanced record per input record, in input order.
// A missing or null percentage defaults to zero with a DOWN symbol; a value
// that is present but not numeric aborts the whole batch with a
// DataFormatError naming the record and field.
func (e *Enhancer) Enhance(coins []models.RawCoin, captureDate string) ([]models.EnhancedCoin, error) {
	log := e.log.WithComponent("enhancer").WithFields(logger.Fields{
		"operation":    "enhance",
		"capture_date": captureDate,
	})

	enhanced := make([]models.EnhancedCoin, 0, len(coins))
	for _, coin := range coins {
		change, err := parseChangePercentage(coin)
		if err != nil {
			log.WithError(err).WithFields(logger.Fields{"coin_id": coin.ID}).Error("malformed percentage field")
			return nil, err
		}

		// Zero maps to DOWN. The symbol is fixed here and never re-derived.
		symbol := models.ChangeDown
		if change > 0 {
			symbol = models.ChangeUp
		}

		enhanced = append(enhanced, models.EnhancedCoin{
			RawCoin:        coin,
			Date:           captureDate,
			PriceChange24h: change,
			ChangeSymbol:   symbol,
		})
	}

	log.WithFields(logger.Fields{"coins": len(enhanced)}).Info("records enhanced")
	return enhanced, nil
}

// parseChangePercentage reads the raw 24h percentage field. Absent and null
// both default to zero; a quoted numeric string is coerced the same way as a
// JSON number. Anything else is a data format error.
func parseChangePercentage(coin models.RawCoin) (float64, error) {
	raw := coin.PriceChangePercentage24h
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return 0, nil
	}

	var numeric float64
	if err := json.Unmarshal(raw, &numeric); err == nil {
		return numeric, nil
	}

	var quoted string
	if err := json.Unmarshal(raw, &quoted); err == nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(quoted), 64); err == nil {
			return v, nil
		}
		return 0, &models.DataFormatError{ID: coin.ID, Field: fieldPriceChangePercentage, Value: quoted}
	}

	return 0, &models.DataFormatError{ID: coin.ID, Field: fieldPriceChangePercentage, Value: trimmed}
}
