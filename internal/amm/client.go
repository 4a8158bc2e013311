package amm

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

// EthCaller is the slice of the Ethereum client the reader needs.
type EthCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	Close()
}

// Reader is the read-only boundary to the CurveAMM and BondFactory
// contracts. Writes (buyTokens, sellTokens, createMarket,
// defragmentalizeBond, redeemBond) go through the user's wallet, never
// through this node.
type Reader interface {
	GetMarketInfo(ctx context.Context, bondID uint64) (*CurveMarket, error)
	GetBondTokenContract(ctx context.Context, bondID uint64) (common.Address, error)
	GetTokenBalance(ctx context.Context, bondID uint64, user common.Address) (*big.Int, error)
	PreviewBuyCost(ctx context.Context, bondID uint64, amount int64) (*big.Int, error)
	PreviewSellRefund(ctx context.Context, bondID uint64, amount int64) (*big.Int, error)
	GetBondInfo(ctx context.Context, bondID uint64) (*BondInfo, error)
	GetBondMetadata(ctx context.Context, bondID uint64) (*BondMetadata, error)
	GetStats(ctx context.Context) (*FactoryStats, error)
}

type ContractReader struct {
	caller      EthCaller
	curveAMM    common.Address
	bondFactory common.Address
}

func NewContractReader(nodeURL string, curveAMM, bondFactory common.Address) (*ContractReader, error) {
	if nodeURL == "" {
		return nil, errors.New("failed to configure Ethereum client - node URL is not set")
	}
	client, err := ethclient.Dial(nodeURL)
	if err != nil {
		return nil, fmt.Errorf("failed to configure Ethereum client - %w", err)
	}
	return NewContractReaderWithCaller(client, curveAMM, bondFactory), nil
}

func NewContractReaderWithCaller(caller EthCaller, curveAMM, bondFactory common.Address) *ContractReader {
	return &ContractReader{
		caller:      caller,
		curveAMM:    curveAMM,
		bondFactory: bondFactory,
	}
}

func (r *ContractReader) Close() {
	r.caller.Close()
}

func (r *ContractReader) call(ctx context.Context, to common.Address, contractAbi abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	data, err := contractAbi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("packing %s call: %w", method, err)
	}

	output, err := r.caller.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("calling %s: %w", method, err)
	}

	values, err := contractAbi.Unpack(method, output)
	if err != nil {
		return nil, fmt.Errorf("unpacking %s result: %w", method, err)
	}
	return values, nil
}

func (r *ContractReader) GetMarketInfo(ctx context.Context, bondID uint64) (*CurveMarket, error) {
	values, err := r.call(ctx, r.curveAMM, curveAmmAbi, "getMarketInfo", new(big.Int).SetUint64(bondID))
	if err != nil {
		return nil, err
	}
	if len(values) != 8 {
		return nil, fmt.Errorf("getMarketInfo: expected 8 outputs, got %d", len(values))
	}

	market := &CurveMarket{
		BondID:        bondID,
		TotalSupply:   values[0].(*big.Int),
		TokensForSale: values[1].(*big.Int),
		TokensSold:    values[2].(*big.Int),
		EthReserve:    values[3].(*big.Int),
		CurrentPrice:  values[4].(*big.Int),
		IsActive:      values[5].(bool),
		Creator:       values[6].(common.Address),
		CreatedAt:     values[7].(*big.Int).Int64(),
	}
	if err := market.Validate(); err != nil {
		return nil, err
	}

	tokenContract, err := r.GetBondTokenContract(ctx, bondID)
	if err != nil {
		return nil, err
	}
	market.TokenContract = tokenContract
	return market, nil
}

func (r *ContractReader) GetBondTokenContract(ctx context.Context, bondID uint64) (common.Address, error) {
	values, err := r.call(ctx, r.curveAMM, curveAmmAbi, "getBondTokenContract", new(big.Int).SetUint64(bondID))
	if err != nil {
		return common.Address{}, err
	}
	return values[0].(common.Address), nil
}

func (r *ContractReader) GetTokenBalance(ctx context.Context, bondID uint64, user common.Address) (*big.Int, error) {
	values, err := r.call(ctx, r.curveAMM, curveAmmAbi, "getTokenBalance", new(big.Int).SetUint64(bondID), user)
	if err != nil {
		return nil, err
	}
	return values[0].(*big.Int), nil
}

func (r *ContractReader) PreviewBuyCost(ctx context.Context, bondID uint64, amount int64) (*big.Int, error) {
	values, err := r.call(ctx, r.curveAMM, curveAmmAbi, "previewBuyCost",
		new(big.Int).SetUint64(bondID), big.NewInt(amount))
	if err != nil {
		return nil, err
	}
	return values[0].(*big.Int), nil
}

func (r *ContractReader) PreviewSellRefund(ctx context.Context, bondID uint64, amount int64) (*big.Int, error) {
	values, err := r.call(ctx, r.curveAMM, curveAmmAbi, "previewSellRefund",
		new(big.Int).SetUint64(bondID), big.NewInt(amount))
	if err != nil {
		return nil, err
	}
	return values[0].(*big.Int), nil
}

func (r *ContractReader) GetBondInfo(ctx context.Context, bondID uint64) (*BondInfo, error) {
	values, err := r.call(ctx, r.bondFactory, bondFactoryAbi, "getBondInfo", new(big.Int).SetUint64(bondID))
	if err != nil {
		return nil, err
	}
	if len(values) != 5 {
		return nil, fmt.Errorf("getBondInfo: expected 5 outputs, got %d", len(values))
	}
	return &BondInfo{
		BondID:          bondID,
		Creator:         values[0].(common.Address),
		BondNFTContract: values[1].(common.Address),
		IsRedeemed:      values[2].(bool),
		CreatedAt:       values[3].(*big.Int).Int64(),
		AssetCount:      values[4].(*big.Int).Uint64(),
	}, nil
}

func (r *ContractReader) GetBondMetadata(ctx context.Context, bondID uint64) (*BondMetadata, error) {
	values, err := r.call(ctx, r.bondFactory, bondFactoryAbi, "getBondMetadata", new(big.Int).SetUint64(bondID))
	if err != nil {
		return nil, err
	}
	if len(values) != 4 {
		return nil, fmt.Errorf("getBondMetadata: expected 4 outputs, got %d", len(values))
	}
	return &BondMetadata{
		BondName:    values[0].(string),
		Description: values[1].(string),
		BondNumber:  values[2].(string),
		TotalAssets: values[3].(*big.Int).Uint64(),
	}, nil
}

func (r *ContractReader) GetStats(ctx context.Context) (*FactoryStats, error) {
	values, err := r.call(ctx, r.bondFactory, bondFactoryAbi, "getStats")
	if err != nil {
		return nil, err
	}
	if len(values) != 4 {
		return nil, fmt.Errorf("getStats: expected 4 outputs, got %d", len(values))
	}
	return &FactoryStats{
		TotalBondsCreated:  values[0].(*big.Int).Uint64(),
		TotalNFTsLocked:    values[1].(*big.Int).Uint64(),
		TotalBondsRedeemed: values[2].(*big.Int).Uint64(),
		NextBondID:         values[3].(*big.Int).Uint64(),
	}, nil
}
