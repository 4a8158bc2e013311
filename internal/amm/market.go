package amm

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// CurveMarket is a read-mostly snapshot of one fractionalized bond market,
// as reported by the CurveAMM contract. Created once by an external
// createMarket transaction and mutated only by external trades; a market
// whose tokensSold returns to zero may be closed (inactive) but is never
// deleted.
type CurveMarket struct {
	BondID        uint64         `json:"bondId"`
	TotalSupply   *big.Int       `json:"totalSupply"`
	TokensForSale *big.Int       `json:"tokensForSale"`
	TokensSold    *big.Int       `json:"tokensSold"`
	EthReserve    *big.Int       `json:"ethReserve"`
	CurrentPrice  *big.Int       `json:"currentPrice"`
	IsActive      bool           `json:"isActive"`
	Creator       common.Address `json:"creator"`
	CreatedAt     int64          `json:"createdAt"`
	TokenContract common.Address `json:"tokenContract"`
}

// TokensAvailable is the remaining curve inventory:
// tokensForSale - tokensSold.
func (m *CurveMarket) TokensAvailable() *big.Int {
	return new(big.Int).Sub(m.TokensForSale, m.TokensSold)
}

// Validate enforces the snapshot invariant
// tokensSold <= tokensForSale <= totalSupply. A violation means the read
// was corrupt or the contract is not the one we think it is.
func (m *CurveMarket) Validate() error {
	if m.TokensSold.Cmp(m.TokensForSale) > 0 {
		return fmt.Errorf("market %d: tokensSold %s exceeds tokensForSale %s",
			m.BondID, m.TokensSold, m.TokensForSale)
	}
	if m.TokensForSale.Cmp(m.TotalSupply) > 0 {
		return fmt.Errorf("market %d: tokensForSale %s exceeds totalSupply %s",
			m.BondID, m.TokensForSale, m.TotalSupply)
	}
	return nil
}

// BondInfo is the factory-side record of a bond escrow.
type BondInfo struct {
	BondID          uint64         `json:"bondId"`
	Creator         common.Address `json:"creator"`
	BondNFTContract common.Address `json:"bondNFTContract"`
	IsRedeemed      bool           `json:"isRedeemed"`
	CreatedAt       int64          `json:"createdAt"`
	AssetCount      uint64         `json:"assetCount"`
}

type BondMetadata struct {
	BondName    string `json:"bondName"`
	Description string `json:"description"`
	BondNumber  string `json:"bondNumber"`
	TotalAssets uint64 `json:"totalAssets"`
}

type FactoryStats struct {
	TotalBondsCreated  uint64 `json:"totalBondsCreated"`
	TotalNFTsLocked    uint64 `json:"totalNFTsLocked"`
	TotalBondsRedeemed uint64 `json:"totalBondsRedeemed"`
	NextBondID         uint64 `json:"nextBondId"`
}
