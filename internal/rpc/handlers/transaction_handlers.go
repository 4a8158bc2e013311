package handlers

import (
	"context"
	"net/http"

	"github.com/bundsx-labs/bundsx-node/internal/ledger"
)

// TransactionHistoryService is the classifier behind the activity-feed
// endpoint.
type TransactionHistoryService interface {
	HistoryForContract(ctx context.Context, req ledger.HistoryRequest) ([]ledger.ClassifiedTransaction, error)
}

// RequestParams echoes the effective query back to the caller.
type RequestParams struct {
	ChainID       int64   `json:"chainId"`
	Limit         int     `json:"limit"`
	Offset        int     `json:"offset"`
	FromTimestamp int64   `json:"fromTimestamp,omitempty"`
	ToTimestamp   int64   `json:"toTimestamp,omitempty"`
	BondID        *uint64 `json:"bondId,omitempty"`
}

type TransactionsHistoryResponse struct {
	Transactions    []ledger.ClassifiedTransaction `json:"transactions"`
	Processed       bool                           `json:"processed"`
	ContractAddress string                         `json:"contractAddress"`
	ChainID         int64                          `json:"chainId"`
	TotalCount      int                            `json:"totalCount"`
	RequestParams   RequestParams                  `json:"requestParams"`
}

// TransactionsHistoryGetHandler serves
// GET /api/v1/transactions/history/{contractAddress}.
func TransactionsHistoryGetHandler(r *http.Request, svc TransactionHistoryService) (any, error) {
	parts := PathParts(r)
	if len(parts) < 5 || parts[4] == "" {
		return nil, BadRequest("contract address is required")
	}
	contract := parts[4]

	chainID := ExtractInt64(r, "chainId")
	if chainID == 0 {
		chainID = 1
	}
	limit, offset := ExtractLimitOffset(r, 100)

	req := ledger.HistoryRequest{
		ContractAddress: contract,
		ChainID:         chainID,
		Limit:           limit,
		Offset:          offset,
		FromTimestamp:   ExtractInt64(r, "fromTimestamp"),
		ToTimestamp:     ExtractInt64(r, "toTimestamp"),
		BondID:          ExtractOptionalUint64(r, "bondId"),
	}

	transactions, err := svc.HistoryForContract(r.Context(), req)
	if err != nil {
		return nil, Internal("failed to fetch transaction history", err)
	}
	if transactions == nil {
		transactions = []ledger.ClassifiedTransaction{}
	}

	return TransactionsHistoryResponse{
		Transactions:    transactions,
		Processed:       true,
		ContractAddress: contract,
		ChainID:         chainID,
		TotalCount:      len(transactions),
		RequestParams: RequestParams{
			ChainID:       chainID,
			Limit:         limit,
			Offset:        offset,
			FromTimestamp: req.FromTimestamp,
			ToTimestamp:   req.ToTimestamp,
			BondID:        req.BondID,
		},
	}, nil
}
