package handlers

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/bundsx-labs/bundsx-node/internal/amm"
	"github.com/bundsx-labs/bundsx-node/internal/curve"
	"github.com/bundsx-labs/bundsx-node/internal/ledger"
	"go.uber.org/zap"
)

// QuoteService prices trade previews.
type QuoteService interface {
	QuoteTrade(ctx context.Context, bondID uint64, side amm.QuoteSide, amount int64) (*amm.Quote, error)
}

// ChartSource replays a bond's stored transactions oldest-first.
type ChartSource interface {
	GetByBondAscending(ctx context.Context, bondID uint64) ([]ledger.ClassifiedTransaction, error)
}

// MarketDeps is everything the market endpoints touch.
type MarketDeps struct {
	Reader amm.Reader
	Quotes QuoteService
	Charts ChartSource
}

type MarketResponse struct {
	Market *amm.CurveMarket  `json:"market"`
	Bond   *amm.BondInfo     `json:"bond"`
	Meta   *amm.BondMetadata `json:"metadata"`
}

type ChartResponse struct {
	BondID uint64             `json:"bondId"`
	Points []curve.PricePoint `json:"points"`
}

// MarketsGetHandler dispatches /api/v1/markets/{bondId}[/quote|/chart].
func MarketsGetHandler(r *http.Request, deps MarketDeps) (any, error) {
	parts := PathParts(r)
	if len(parts) < 4 || parts[3] == "" {
		return nil, BadRequest("bond id is required")
	}
	bondID, err := strconv.ParseUint(parts[3], 10, 64)
	if err != nil {
		return nil, BadRequest("bond id must be a non-negative integer")
	}

	if len(parts) > 4 {
		switch parts[4] {
		case "quote":
			return MarketQuoteGetHandler(r, deps.Quotes, bondID)
		case "chart":
			return MarketChartGetHandler(r, deps.Charts, bondID)
		default:
			return nil, NotFound("unknown market resource " + parts[4])
		}
	}

	return MarketDetailGetHandler(r, deps.Reader, bondID)
}

// MarketDetailGetHandler returns the live market snapshot plus the
// factory-side bond records. The three reads are independent; bond and
// metadata failures leave nulls, only the market read itself is fatal.
func MarketDetailGetHandler(r *http.Request, reader amm.Reader, bondID uint64) (any, error) {
	ctx := r.Context()
	resp := MarketResponse{}

	var wg sync.WaitGroup
	var marketErr error
	wg.Add(3)
	go func() {
		defer wg.Done()
		resp.Market, marketErr = reader.GetMarketInfo(ctx, bondID)
	}()
	go func() {
		defer wg.Done()
		bond, err := reader.GetBondInfo(ctx, bondID)
		if err != nil {
			zap.L().Warn("bond info read failed", zap.Uint64("bondId", bondID), zap.Error(err))
			return
		}
		resp.Bond = bond
	}()
	go func() {
		defer wg.Done()
		meta, err := reader.GetBondMetadata(ctx, bondID)
		if err != nil {
			zap.L().Warn("bond metadata read failed", zap.Uint64("bondId", bondID), zap.Error(err))
			return
		}
		resp.Meta = meta
	}()
	wg.Wait()

	if marketErr != nil {
		return nil, Internal("failed to read market", marketErr)
	}
	return resp, nil
}

// MarketQuoteGetHandler serves ?side=buy|sell&amount=K.
func MarketQuoteGetHandler(r *http.Request, quotes QuoteService, bondID uint64) (any, error) {
	side := amm.QuoteSide(r.URL.Query().Get("side"))
	if side != amm.QuoteBuy && side != amm.QuoteSell {
		return nil, BadRequest("side must be buy or sell")
	}
	amount, err := strconv.ParseInt(r.URL.Query().Get("amount"), 10, 64)
	if err != nil || amount <= 0 {
		return nil, BadRequest("amount must be a positive integer")
	}

	quote, err := quotes.QuoteTrade(r.Context(), bondID, side, amount)
	if err != nil {
		return nil, Internal("failed to quote trade", err)
	}
	return quote, nil
}

// MarketChartGetHandler replays the bond's stored trades into a price
// series.
func MarketChartGetHandler(r *http.Request, charts ChartSource, bondID uint64) (any, error) {
	txs, err := charts.GetByBondAscending(r.Context(), bondID)
	if err != nil {
		return nil, Internal("failed to load bond transactions", err)
	}

	events := make([]curve.TradeEvent, 0, len(txs))
	for _, tx := range txs {
		var kind curve.TradeKind
		switch tx.TransactionType {
		case ledger.TypeBuy:
			kind = curve.TradeBuy
		case ledger.TypeSell:
			kind = curve.TradeSell
		case ledger.TypeMarketCreated:
			kind = curve.TradeMarketCreated
		default:
			continue
		}
		events = append(events, curve.TradeEvent{Timestamp: tx.Timestamp, Kind: kind})
	}

	return ChartResponse{
		BondID: bondID,
		Points: curve.SynthesizeChart(events, time.Now()),
	}, nil
}

// StatsGetHandler serves the bond factory's global counters.
func StatsGetHandler(r *http.Request, reader amm.Reader) (any, error) {
	stats, err := reader.GetStats(r.Context())
	if err != nil {
		return nil, Internal("failed to read factory stats", err)
	}
	return stats, nil
}
