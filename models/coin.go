package models

import (
	"encoding/json"
	"fmt"
)

// ChangeSymbol marks the direction of a coin's 24h price movement.
type ChangeSymbol string

const (
	ChangeUp   ChangeSymbol = "UP"
	ChangeDown ChangeSymbol = "DOWN"
)

// RawCoin represents a single market record as returned by the CoinGecko
// /coins/markets endpoint. Any numeric field may arrive as JSON null, so
// those fields are pointers. The 24h percentage is kept as a raw message
// because some responses carry it as a quoted string; parsing is deferred
// to the enhancer so a malformed value can be reported with the record id.
type RawCoin struct {
	ID                       string          `json:"id"`
	Symbol                   string          `json:"symbol"`
	Name                     string          `json:"name"`
	Image                    string          `json:"image"`
	CurrentPrice             *float64        `json:"current_price"`
	MarketCap                *float64        `json:"market_cap"`
	MarketCapRank            *int            `json:"market_cap_rank"`
	TotalVolume              *float64        `json:"total_volume"`
	PriceChangePercentage24h json.RawMessage `json:"price_change_percentage_24h,omitempty"`
	ATH                      *float64        `json:"ath"`
	LastUpdated              string          `json:"last_updated"`
}

// EnhancedCoin is a RawCoin stamped with the capture date and the derived
// 24h change fields. ChangeSymbol is fixed at derivation time and is never
// re-derived downstream.
type EnhancedCoin struct {
	RawCoin
	Date           string       `json:"date"`
	PriceChange24h float64      `json:"price_change_24h"`
	ChangeSymbol   ChangeSymbol `json:"change_symbol"`
}

// NormalizedCoin is the fixed-shape projection used by the ranker, the
// summarizer and every sink. Number is the dense 1-based position after
// sorting by rank ascending with null ranks last.
type NormalizedCoin struct {
	ID             string       `json:"id"`
	Rank           *int         `json:"rank"`
	Name           string       `json:"name"`
	Symbol         string       `json:"symbol"`
	CurrentPrice   *float64     `json:"current_price"`
	PriceChange24h float64      `json:"price_change_24h"`
	ChangeSymbol   ChangeSymbol `json:"change_symbol"`
	MarketCap      *float64     `json:"market_cap"`
	Volume24h      *float64     `json:"volume_24h"`
	ATH            *float64     `json:"ath"`
	Image          string       `json:"image"`
	Date           string       `json:"date"`
	LastUpdated    string       `json:"last_updated"`
	Number         int          `json:"number"`
}

// RankedCoin is a NormalizedCoin carrying its 1-based position within the
// gainers or losers subset. Exactly one of the two rank fields is set.
type RankedCoin struct {
	NormalizedCoin
	GainerRank int `json:"gainer_rank,omitempty"`
	LoserRank  int `json:"loser_rank,omitempty"`
}

// MarketSummary aggregates a single normalized batch. TopGainer and
// TopLoser hold copies of the first-seen extreme records.
type MarketSummary struct {
	TotalCoins        int             `json:"total_coins"`
	GainersCount      int             `json:"gainers_count"`
	LosersCount       int             `json:"losers_count"`
	NeutralCount      int             `json:"neutral_count"`
	GainersPercentage float64         `json:"gainers_percentage"`
	LosersPercentage  float64         `json:"losers_percentage"`
	TopGainer         *NormalizedCoin `json:"top_gainer"`
	TopLoser          *NormalizedCoin `json:"top_loser"`
}

// DataFormatError reports a present-but-unparseable field on a market
// record. Missing or null fields never produce this error; they default.
type DataFormatError struct {
	ID    string
	Field string
	Value string
}

func (e *DataFormatError) Error() string {
	id := e.ID
	if id == "" {
		id = "<unknown>"
	}
	return fmt.Sprintf("record %q: field %q has malformed value %q", id, e.Field, e.Value)
}
