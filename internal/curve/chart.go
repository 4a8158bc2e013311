package curve

import (
	"math/big"
	"time"

	"github.com/bundsx-labs/bundsx-node/pkg/weiconv"
)

// TradeKind mirrors the classifier's transaction types for the subset the
// chart cares about.
type TradeKind string

const (
	TradeBuy           TradeKind = "buy"
	TradeSell          TradeKind = "sell"
	TradeMarketCreated TradeKind = "market_created"
	tradeStart         TradeKind = "start"
)

// TradeEvent is one classified transaction reduced to what the chart
// replay needs.
type TradeEvent struct {
	Timestamp int64
	Kind      TradeKind
}

// PricePoint is a synthetic point for the market activity chart.
type PricePoint struct {
	Timestamp   int64     `json:"timestamp"`
	Price       string    `json:"price"`
	TokenNumber uint64    `json:"tokenNumber"`
	Type        TradeKind `json:"type"`
}

var (
	// chartFloor is the price a market starts at when created; the replay
	// never goes below it once set.
	chartFloor = new(big.Int).Set(priceScale)
	chartStep  = new(big.Int).Div(priceScale, big.NewInt(2))
)

// SynthesizeChart replays events in chronological order against a simple
// incremental price model: market creation sets the floor, each buy steps
// the price up, each sell steps it down but never below the floor. The
// result is an illustrative approximation for rendering only, not a
// reconstruction of true curve state. Events must already be sorted by
// ascending timestamp.
func SynthesizeChart(events []TradeEvent, now time.Time) []PricePoint {
	if len(events) == 0 {
		return placeholderChart(now)
	}

	price := new(big.Int)
	floorSet := false
	tokenNumber := uint64(0)

	points := make([]PricePoint, 0, len(events))
	for _, ev := range events {
		switch ev.Kind {
		case TradeMarketCreated:
			price.Set(chartFloor)
			floorSet = true
		case TradeBuy:
			price.Add(price, chartStep)
			tokenNumber++
		case TradeSell:
			price.Sub(price, chartStep)
			if floorSet && price.Cmp(chartFloor) < 0 {
				price.Set(chartFloor)
			}
			if price.Sign() < 0 {
				price.SetInt64(0)
			}
			if tokenNumber > 0 {
				tokenNumber--
			}
		default:
			continue
		}

		points = append(points, PricePoint{
			Timestamp:   ev.Timestamp,
			Price:       weiconv.ToEthString(price, 6),
			TokenNumber: tokenNumber,
			Type:        ev.Kind,
		})
	}

	if len(points) == 0 {
		return placeholderChart(now)
	}
	return points
}

// placeholderChart keeps the chart from rendering empty before any
// transactions exist: a zero start, the market creation floor, and one
// synthetic trade.
func placeholderChart(now time.Time) []PricePoint {
	afterCreate := new(big.Int).Add(chartFloor, chartStep)
	return []PricePoint{
		{
			Timestamp: now.Add(-2 * time.Hour).Unix(),
			Price:     weiconv.ToEthString(nil, 6),
			Type:      tradeStart,
		},
		{
			Timestamp: now.Add(-time.Hour).Unix(),
			Price:     weiconv.ToEthString(chartFloor, 6),
			Type:      TradeMarketCreated,
		},
		{
			Timestamp:   now.Unix(),
			Price:       weiconv.ToEthString(afterCreate, 6),
			TokenNumber: 1,
			Type:        TradeBuy,
		},
	}
}
