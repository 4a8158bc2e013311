package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type stubFetcher struct {
	events []RawLedgerEvent
	err    error
	gotQ   HistoryQuery
}

func (f *stubFetcher) FetchEvents(_ context.Context, _ string, q HistoryQuery) ([]RawLedgerEvent, error) {
	f.gotQ = q
	return f.events, f.err
}

type stubStore struct {
	saved     []ClassifiedTransaction
	err       error
	page      []ClassifiedTransaction
	pageErr   error
	gotLimit  int
	gotOffset int
}

func (s *stubStore) SaveTransactions(_ context.Context, _ string, _ int64, txs []ClassifiedTransaction) error {
	s.saved = append(s.saved, txs...)
	return s.err
}

func (s *stubStore) GetPageForContract(_ context.Context, _ string, limit, offset int) ([]ClassifiedTransaction, error) {
	s.gotLimit = limit
	s.gotOffset = offset
	return s.page, s.pageErr
}

func TestService_HistoryForContract(t *testing.T) {
	t.Run("Fetch, classify, persist", func(t *testing.T) {
		fetcher := &stubFetcher{events: []RawLedgerEvent{
			buyEvent("0x1", 1000, "1"),
			{Details: EventDetails{TxHash: ""}}, // dropped
		}}
		store := &stubStore{}
		svc := NewService(fetcher, store)

		txs, err := svc.HistoryForContract(context.Background(), HistoryRequest{
			ContractAddress: testContract,
			ChainID:         8453,
			Limit:           50,
		})
		require.NoError(t, err)
		require.Len(t, txs, 1)
		assert.Len(t, store.saved, 1)
		assert.Equal(t, int64(8453), fetcher.gotQ.ChainID)
	})

	t.Run("Negative bounds rejected", func(t *testing.T) {
		svc := NewService(&stubFetcher{}, nil)

		_, err := svc.HistoryForContract(context.Background(), HistoryRequest{Limit: -1})
		require.Error(t, err)
		_, err = svc.HistoryForContract(context.Background(), HistoryRequest{Offset: -1})
		require.Error(t, err)
	})

	t.Run("Fetch failure with empty store aborts", func(t *testing.T) {
		fetcher := &stubFetcher{err: errors.New("indexer down")}
		store := &stubStore{}
		svc := NewService(fetcher, store)

		txs, err := svc.HistoryForContract(context.Background(), HistoryRequest{ContractAddress: testContract})
		require.Error(t, err)
		assert.Nil(t, txs)
		assert.Empty(t, store.saved)
	})

	t.Run("Fetch failure serves stored page", func(t *testing.T) {
		fetcher := &stubFetcher{err: errors.New("indexer down")}
		store := &stubStore{page: []ClassifiedTransaction{
			{Hash: "0x2", TransactionType: TypeBuy, BondID: uintPtr(1)},
			{Hash: "0x1", TransactionType: TypeBuy, BondID: uintPtr(1)},
		}}
		svc := NewService(fetcher, store)

		txs, err := svc.HistoryForContract(context.Background(), HistoryRequest{
			ContractAddress: testContract,
			Limit:           50,
			Offset:          10,
		})
		require.NoError(t, err)
		require.Len(t, txs, 2)
		assert.Equal(t, "0x2", txs[0].Hash)
		assert.Equal(t, 50, store.gotLimit)
		assert.Equal(t, 10, store.gotOffset)
	})

	t.Run("Stored fallback honors the bond filter", func(t *testing.T) {
		fetcher := &stubFetcher{err: errors.New("indexer down")}
		store := &stubStore{page: []ClassifiedTransaction{
			{Hash: "0x2", BondID: uintPtr(2)},
			{Hash: "0x1", BondID: uintPtr(1)},
		}}
		svc := NewService(fetcher, store)

		txs, err := svc.HistoryForContract(context.Background(), HistoryRequest{
			ContractAddress: testContract,
			BondID:          uintPtr(1),
		})
		require.NoError(t, err)
		require.Len(t, txs, 1)
		assert.Equal(t, "0x1", txs[0].Hash)

		// A filter matching nothing stored keeps the fetch error.
		_, err = svc.HistoryForContract(context.Background(), HistoryRequest{
			ContractAddress: testContract,
			BondID:          uintPtr(9),
		})
		require.ErrorContains(t, err, "indexer down")
	})

	t.Run("Stored read failure keeps the fetch error", func(t *testing.T) {
		fetcher := &stubFetcher{err: errors.New("indexer down")}
		store := &stubStore{pageErr: errors.New("disk error")}
		svc := NewService(fetcher, store)

		_, err := svc.HistoryForContract(context.Background(), HistoryRequest{ContractAddress: testContract})
		require.ErrorContains(t, err, "indexer down")
	})

	t.Run("Store failure does not fail the feed", func(t *testing.T) {
		oldLogger := zap.L()
		core, recorded := observer.New(zap.WarnLevel)
		zap.ReplaceGlobals(zap.New(core))
		defer zap.ReplaceGlobals(oldLogger)

		fetcher := &stubFetcher{events: []RawLedgerEvent{buyEvent("0x1", 1000, "1")}}
		store := &stubStore{err: errors.New("disk full")}
		svc := NewService(fetcher, store)

		txs, err := svc.HistoryForContract(context.Background(), HistoryRequest{ContractAddress: testContract})
		require.NoError(t, err)
		assert.Len(t, txs, 1)
		require.Equal(t, 1, recorded.Len())
		assert.Equal(t, "failed to persist classified transactions", recorded.All()[0].Message)
	})
}
