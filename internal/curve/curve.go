package curve

import (
	"fmt"
	"math/big"
)

// Shape selects the price formula mirrored from the deployed CurveAMM
// contract. The contract changed shape over its lifetime, so the simulator
// takes it as a parameter instead of hard-coding one.
type Shape string

const (
	Quadratic Shape = "quadratic"
	Linear    Shape = "linear"
)

var (
	// priceScale is 10^15 wei, i.e. 0.001 ETH at n=1 scale.
	priceScale     = big.NewInt(1_000_000_000_000_000)
	curveSteepness = big.NewInt(1000)
)

// Curve is an offline approximation of the AMM's marginal price function.
// It exists as a fallback for the contract's own preview functions and as
// the generator for synthetic chart data; whenever a live preview value is
// obtainable, callers must prefer it over this simulation.
type Curve struct {
	shape Shape
}

func New(shape Shape) (*Curve, error) {
	switch shape {
	case Quadratic, Linear:
		return &Curve{shape: shape}, nil
	default:
		return nil, fmt.Errorf("unknown curve shape %q", shape)
	}
}

func (c *Curve) Shape() Shape {
	return c.shape
}

// TokenPrice returns the price of the nth token unit in wei. Tokens are
// 1-indexed; the 0th token is defined to cost zero. The result depends on
// the ordinal position alone.
func (c *Curve) TokenPrice(n uint64) *big.Int {
	if n == 0 {
		return new(big.Int)
	}

	ordinal := new(big.Int).SetUint64(n)
	price := new(big.Int)

	switch c.shape {
	case Linear:
		price.Mul(ordinal, priceScale)
	default:
		// price = (n^2 * PRICE_SCALE) / CURVE_STEEPNESS
		price.Mul(ordinal, ordinal)
		price.Mul(price, priceScale)
		price.Div(price, curveSteepness)
	}

	return price
}

// BuyCost returns the total wei cost of buying amount tokens when
// tokensSold tokens have already been sold. Zero or negative amounts cost
// zero. The per-term summation is kept deliberately: it is bit-exact
// against the contract's integer arithmetic, and amount is a user-entered
// trade size, not the full supply.
func (c *Curve) BuyCost(amount int64, tokensSold uint64) *big.Int {
	total := new(big.Int)
	if amount <= 0 {
		return total
	}

	for i := int64(0); i < amount; i++ {
		total.Add(total, c.TokenPrice(tokensSold+uint64(i)+1))
	}
	return total
}

// SellRefund returns the total wei refunded for selling amount tokens when
// tokensSold tokens have been sold. Ordinals at or below zero contribute
// nothing, so selling past the origin silently clamps to zero; rejecting
// oversized sells against the market's real bounds is the caller's job.
func (c *Curve) SellRefund(amount int64, tokensSold uint64) *big.Int {
	total := new(big.Int)
	if amount <= 0 {
		return total
	}

	for i := int64(0); i < amount; i++ {
		if uint64(i) >= tokensSold {
			break
		}
		total.Add(total, c.TokenPrice(tokensSold-uint64(i)))
	}
	return total
}
