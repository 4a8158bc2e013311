package amm

import (
	"context"
	"fmt"
	"math/big"

	"github.com/bundsx-labs/bundsx-node/internal/curve"
	"github.com/bundsx-labs/bundsx-node/pkg/weiconv"
	"go.uber.org/zap"
)

type QuoteSide string

const (
	QuoteBuy  QuoteSide = "buy"
	QuoteSell QuoteSide = "sell"
)

// Quote is a priced trade preview. Simulated tells the caller whether the
// number came from the contract's own preview function or from the local
// curve approximation; the UI must surface that distinction.
type Quote struct {
	BondID    uint64    `json:"bondId"`
	Side      QuoteSide `json:"side"`
	Amount    int64     `json:"amount"`
	CostWei   *big.Int  `json:"costWei"`
	Cost      string    `json:"cost"`
	Simulated bool      `json:"simulated"`
}

// PricingService prefers the contract's preview values and falls back to
// the offline simulator only when the live call fails. The precedence
// lives here, not in the simulator.
type PricingService struct {
	reader Reader
	sim    *curve.Curve
}

func NewPricingService(reader Reader, sim *curve.Curve) *PricingService {
	return &PricingService{reader: reader, sim: sim}
}

// QuoteTrade prices buying or selling amount tokens of one bond's market.
// Zero or negative amounts and trades beyond the market's bounds are
// rejected here; the simulator itself never enforces them.
func (s *PricingService) QuoteTrade(ctx context.Context, bondID uint64, side QuoteSide, amount int64) (*Quote, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("trade amount must be positive, got %d", amount)
	}

	market, err := s.reader.GetMarketInfo(ctx, bondID)
	if err != nil {
		return nil, err
	}

	switch side {
	case QuoteBuy:
		if market.TokensAvailable().Cmp(big.NewInt(amount)) < 0 {
			return nil, fmt.Errorf("buying %d exceeds the %s tokens available", amount, market.TokensAvailable())
		}
	case QuoteSell:
		if market.TokensSold.Cmp(big.NewInt(amount)) < 0 {
			return nil, fmt.Errorf("selling %d exceeds the %s tokens sold", amount, market.TokensSold)
		}
	default:
		return nil, fmt.Errorf("unknown quote side %q", side)
	}

	quote := &Quote{BondID: bondID, Side: side, Amount: amount}

	quote.CostWei, err = s.preview(ctx, bondID, side, amount)
	if err != nil {
		// The simulator replays token ordinals as uint64; a tokensSold
		// beyond that would truncate and misprice the fallback.
		if !market.TokensSold.IsUint64() {
			return nil, fmt.Errorf("preview failed and tokensSold %s is too large to simulate: %w", market.TokensSold, err)
		}
		zap.L().Warn("contract preview unavailable, falling back to simulation",
			zap.Uint64("bondId", bondID),
			zap.String("side", string(side)),
			zap.Error(err))
		quote.CostWei = s.simulate(side, amount, market.TokensSold.Uint64())
		quote.Simulated = true
	}

	quote.Cost = weiconv.ToEthString(quote.CostWei, 6)
	return quote, nil
}

func (s *PricingService) preview(ctx context.Context, bondID uint64, side QuoteSide, amount int64) (*big.Int, error) {
	if side == QuoteBuy {
		return s.reader.PreviewBuyCost(ctx, bondID, amount)
	}
	return s.reader.PreviewSellRefund(ctx, bondID, amount)
}

func (s *PricingService) simulate(side QuoteSide, amount int64, tokensSold uint64) *big.Int {
	if side == QuoteBuy {
		return s.sim.BuyCost(amount, tokensSold)
	}
	return s.sim.SellRefund(amount, tokensSold)
}
