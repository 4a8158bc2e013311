package ledger

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// TransactionStore persists classified transactions for later reads
// (activity feed pages, chart synthesis). Implemented by ledgerdb.
type TransactionStore interface {
	SaveTransactions(ctx context.Context, contract string, chainID int64, txs []ClassifiedTransaction) error
	GetPageForContract(ctx context.Context, contract string, limit, offset int) ([]ClassifiedTransaction, error)
}

// HistoryRequest is one activity-feed query for a market contract.
type HistoryRequest struct {
	ContractAddress string
	ChainID         int64
	Limit           int
	Offset          int
	FromTimestamp   int64
	ToTimestamp     int64
	BondID          *uint64
}

// Service fetches raw history from the indexer, classifies it, and
// writes the result through to the store. Each call is stateless and
// idempotent for the same inputs.
type Service struct {
	fetcher HistoryFetcher
	store   TransactionStore
}

func NewService(fetcher HistoryFetcher, store TransactionStore) *Service {
	return &Service{fetcher: fetcher, store: store}
}

// HistoryForContract returns the classified, newest-first activity feed for
// one contract. When the indexer is unreachable, previously stored pages
// are served instead; only an empty store makes the failure fatal.
// Malformed individual records are silently dropped by the classifier.
func (s *Service) HistoryForContract(ctx context.Context, req HistoryRequest) ([]ClassifiedTransaction, error) {
	if req.Limit < 0 || req.Offset < 0 {
		return nil, fmt.Errorf("limit and offset must be non-negative (limit=%d offset=%d)", req.Limit, req.Offset)
	}

	events, err := s.fetcher.FetchEvents(ctx, req.ContractAddress, HistoryQuery{
		ChainID:       req.ChainID,
		Limit:         req.Limit,
		Offset:        req.Offset,
		FromTimestamp: req.FromTimestamp,
		ToTimestamp:   req.ToTimestamp,
	})
	if err != nil {
		if stored, ok := s.storedPage(ctx, req, err); ok {
			return stored, nil
		}
		return nil, err
	}

	transactions := Classify(events, req.ContractAddress, req.BondID)

	if s.store != nil && len(transactions) > 0 {
		if err := s.store.SaveTransactions(ctx, req.ContractAddress, req.ChainID, transactions); err != nil {
			// The store is a read-side cache; a write failure must not fail
			// the feed itself.
			zap.L().Warn("failed to persist classified transactions",
				zap.String("contract", req.ContractAddress),
				zap.Error(err))
		}
	}

	return transactions, nil
}

// storedPage reads the write-through store when the indexer is down. The
// stored rows predate the failure, so timestamp bounds from the request
// are not reapplied; the bond filter is. Pages with no stored rows report
// no fallback so the caller surfaces the fetch error.
func (s *Service) storedPage(ctx context.Context, req HistoryRequest, cause error) ([]ClassifiedTransaction, bool) {
	if s.store == nil {
		return nil, false
	}

	txs, err := s.store.GetPageForContract(ctx, req.ContractAddress, req.Limit, req.Offset)
	if err != nil {
		zap.L().Warn("stored transaction fallback failed",
			zap.String("contract", req.ContractAddress),
			zap.Error(err))
		return nil, false
	}
	if req.BondID != nil {
		txs = FilterByBond(txs, *req.BondID)
	}
	if len(txs) == 0 {
		return nil, false
	}

	zap.L().Warn("indexer unavailable, serving stored transactions",
		zap.String("contract", req.ContractAddress),
		zap.Int("count", len(txs)),
		zap.Error(cause))
	return txs, true
}
