package handlers

import (
	"context"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bundsx-labs/bundsx-node/internal/amm"
	"github.com/bundsx-labs/bundsx-node/internal/ledger"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubReader struct {
	market    *amm.CurveMarket
	marketErr error
	bond      *amm.BondInfo
	bondErr   error
	meta      *amm.BondMetadata
	metaErr   error
	stats     *amm.FactoryStats
	statsErr  error
}

func (s *stubReader) GetMarketInfo(ctx context.Context, bondID uint64) (*amm.CurveMarket, error) {
	return s.market, s.marketErr
}

func (s *stubReader) GetBondTokenContract(ctx context.Context, bondID uint64) (common.Address, error) {
	return common.Address{}, nil
}

func (s *stubReader) GetTokenBalance(ctx context.Context, bondID uint64, user common.Address) (*big.Int, error) {
	return big.NewInt(0), nil
}

func (s *stubReader) PreviewBuyCost(ctx context.Context, bondID uint64, amount int64) (*big.Int, error) {
	return nil, errors.New("not used")
}

func (s *stubReader) PreviewSellRefund(ctx context.Context, bondID uint64, amount int64) (*big.Int, error) {
	return nil, errors.New("not used")
}

func (s *stubReader) GetBondInfo(ctx context.Context, bondID uint64) (*amm.BondInfo, error) {
	return s.bond, s.bondErr
}

func (s *stubReader) GetBondMetadata(ctx context.Context, bondID uint64) (*amm.BondMetadata, error) {
	return s.meta, s.metaErr
}

func (s *stubReader) GetStats(ctx context.Context) (*amm.FactoryStats, error) {
	return s.stats, s.statsErr
}

type stubQuoteService struct {
	quote *amm.Quote
	err   error
}

func (s *stubQuoteService) QuoteTrade(ctx context.Context, bondID uint64, side amm.QuoteSide, amount int64) (*amm.Quote, error) {
	return s.quote, s.err
}

type stubChartSource struct {
	txs []ledger.ClassifiedTransaction
	err error
}

func (s *stubChartSource) GetByBondAscending(ctx context.Context, bondID uint64) ([]ledger.ClassifiedTransaction, error) {
	return s.txs, s.err
}

func marketsRequest(path string) *http.Request {
	return httptest.NewRequest(http.MethodGet, path, nil)
}

func TestMarketsGetHandler_Detail(t *testing.T) {
	reader := &stubReader{
		market: &amm.CurveMarket{BondID: 7, TokensForSale: big.NewInt(100), TokensSold: big.NewInt(5)},
		bond:   &amm.BondInfo{BondID: 7, AssetCount: 3},
		meta:   &amm.BondMetadata{BondName: "Bond #7"},
	}
	deps := MarketDeps{Reader: reader}

	resp, err := MarketsGetHandler(marketsRequest("/api/v1/markets/7"), deps)
	require.NoError(t, err)

	out := resp.(MarketResponse)
	require.NotNil(t, out.Market)
	assert.Equal(t, uint64(7), out.Market.BondID)
	require.NotNil(t, out.Bond)
	assert.Equal(t, uint64(3), out.Bond.AssetCount)
	require.NotNil(t, out.Meta)
	assert.Equal(t, "Bond #7", out.Meta.BondName)
}

func TestMarketsGetHandler_DetailToleratesFactoryFailures(t *testing.T) {
	reader := &stubReader{
		market:  &amm.CurveMarket{BondID: 7, TokensForSale: big.NewInt(100), TokensSold: big.NewInt(5)},
		bondErr: errors.New("factory unreachable"),
		metaErr: errors.New("factory unreachable"),
	}

	resp, err := MarketsGetHandler(marketsRequest("/api/v1/markets/7"), MarketDeps{Reader: reader})
	require.NoError(t, err)

	out := resp.(MarketResponse)
	require.NotNil(t, out.Market)
	assert.Nil(t, out.Bond)
	assert.Nil(t, out.Meta)
}

func TestMarketsGetHandler_DetailMarketFailureIsFatal(t *testing.T) {
	reader := &stubReader{marketErr: errors.New("node down")}

	_, err := MarketsGetHandler(marketsRequest("/api/v1/markets/7"), MarketDeps{Reader: reader})
	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, "failed to read market", httpErr.Message)
}

func TestMarketsGetHandler_BadBondID(t *testing.T) {
	for _, path := range []string{"/api/v1/markets/", "/api/v1/markets/abc", "/api/v1/markets/-1"} {
		_, err := MarketsGetHandler(marketsRequest(path), MarketDeps{})
		var httpErr *HTTPError
		require.ErrorAs(t, err, &httpErr, path)
		assert.Equal(t, http.StatusBadRequest, httpErr.Status, path)
	}
}

func TestMarketsGetHandler_UnknownResource(t *testing.T) {
	_, err := MarketsGetHandler(marketsRequest("/api/v1/markets/7/orders"), MarketDeps{})
	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.Status)
}

func TestMarketQuoteHandler(t *testing.T) {
	quote := &amm.Quote{BondID: 7, Side: amm.QuoteBuy, Amount: 2, Cost: "0.000005", Simulated: true}
	deps := MarketDeps{Quotes: &stubQuoteService{quote: quote}}

	resp, err := MarketsGetHandler(marketsRequest("/api/v1/markets/7/quote?side=buy&amount=2"), deps)
	require.NoError(t, err)
	assert.Equal(t, quote, resp)
}

func TestMarketQuoteHandler_Validation(t *testing.T) {
	deps := MarketDeps{Quotes: &stubQuoteService{}}

	tests := []string{
		"/api/v1/markets/7/quote",
		"/api/v1/markets/7/quote?side=hold&amount=1",
		"/api/v1/markets/7/quote?side=buy",
		"/api/v1/markets/7/quote?side=buy&amount=0",
		"/api/v1/markets/7/quote?side=sell&amount=-3",
	}
	for _, path := range tests {
		_, err := MarketsGetHandler(marketsRequest(path), deps)
		var httpErr *HTTPError
		require.ErrorAs(t, err, &httpErr, path)
		assert.Equal(t, http.StatusBadRequest, httpErr.Status, path)
	}
}

func TestMarketChartHandler(t *testing.T) {
	charts := &stubChartSource{txs: []ledger.ClassifiedTransaction{
		{Timestamp: 100, TransactionType: ledger.TypeMarketCreated},
		{Timestamp: 200, TransactionType: ledger.TypeBuy},
		{Timestamp: 300, TransactionType: ledger.TypeUnknown},
		{Timestamp: 400, TransactionType: ledger.TypeSell},
	}}

	resp, err := MarketsGetHandler(marketsRequest("/api/v1/markets/7/chart"), MarketDeps{Charts: charts})
	require.NoError(t, err)

	out := resp.(ChartResponse)
	assert.Equal(t, uint64(7), out.BondID)
	// market_created + buy + sell; the unknown record contributes nothing
	require.Len(t, out.Points, 3)
	assert.Equal(t, int64(100), out.Points[0].Timestamp)
	assert.Equal(t, int64(400), out.Points[2].Timestamp)
}

func TestStatsGetHandler(t *testing.T) {
	reader := &stubReader{stats: &amm.FactoryStats{TotalBondsCreated: 12, NextBondID: 13}}

	resp, err := StatsGetHandler(marketsRequest("/api/v1/stats"), reader)
	require.NoError(t, err)
	assert.Equal(t, reader.stats, resp)
}
