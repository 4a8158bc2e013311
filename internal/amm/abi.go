package amm

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

var curveAmmAbi abi.ABI
var bondFactoryAbi abi.ABI

func init() {
	parsed, err := abi.JSON(strings.NewReader(`[
  {
    "type": "function",
    "name": "getMarketInfo",
    "stateMutability": "view",
    "inputs": [{ "name": "bondId", "type": "uint256" }],
    "outputs": [
      { "name": "totalSupply", "type": "uint256" },
      { "name": "tokensForSale", "type": "uint256" },
      { "name": "tokensSold", "type": "uint256" },
      { "name": "ethReserve", "type": "uint256" },
      { "name": "currentPrice", "type": "uint256" },
      { "name": "isActive", "type": "bool" },
      { "name": "creator", "type": "address" },
      { "name": "createdAt", "type": "uint256" }
    ]
  },
  {
    "type": "function",
    "name": "getBondTokenContract",
    "stateMutability": "view",
    "inputs": [{ "name": "bondId", "type": "uint256" }],
    "outputs": [{ "name": "", "type": "address" }]
  },
  {
    "type": "function",
    "name": "getTokenBalance",
    "stateMutability": "view",
    "inputs": [
      { "name": "bondId", "type": "uint256" },
      { "name": "user", "type": "address" }
    ],
    "outputs": [{ "name": "", "type": "uint256" }]
  },
  {
    "type": "function",
    "name": "previewBuyCost",
    "stateMutability": "view",
    "inputs": [
      { "name": "bondId", "type": "uint256" },
      { "name": "amount", "type": "uint256" }
    ],
    "outputs": [{ "name": "", "type": "uint256" }]
  },
  {
    "type": "function",
    "name": "previewSellRefund",
    "stateMutability": "view",
    "inputs": [
      { "name": "bondId", "type": "uint256" },
      { "name": "amount", "type": "uint256" }
    ],
    "outputs": [{ "name": "", "type": "uint256" }]
  }
]`))
	if err != nil {
		panic("failed to parse CurveAMM ABI: " + err.Error())
	}
	curveAmmAbi = parsed

	parsed, err = abi.JSON(strings.NewReader(`[
  {
    "type": "function",
    "name": "getBondInfo",
    "stateMutability": "view",
    "inputs": [{ "name": "bondId", "type": "uint256" }],
    "outputs": [
      { "name": "creator", "type": "address" },
      { "name": "bondNFTContract", "type": "address" },
      { "name": "isRedeemed", "type": "bool" },
      { "name": "createdAt", "type": "uint256" },
      { "name": "assetCount", "type": "uint256" }
    ]
  },
  {
    "type": "function",
    "name": "getBondMetadata",
    "stateMutability": "view",
    "inputs": [{ "name": "bondId", "type": "uint256" }],
    "outputs": [
      { "name": "bondName", "type": "string" },
      { "name": "description", "type": "string" },
      { "name": "bondNumber", "type": "string" },
      { "name": "totalAssets", "type": "uint256" }
    ]
  },
  {
    "type": "function",
    "name": "getStats",
    "stateMutability": "view",
    "inputs": [],
    "outputs": [
      { "name": "_totalBondsCreated", "type": "uint256" },
      { "name": "_totalNFTsLocked", "type": "uint256" },
      { "name": "_totalBondsRedeemed", "type": "uint256" },
      { "name": "_nextBondId", "type": "uint256" }
    ]
  }
]`))
	if err != nil {
		panic("failed to parse BondFactory ABI: " + err.Error())
	}
	bondFactoryAbi = parsed
}
