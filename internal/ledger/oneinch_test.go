package ledger

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bundsx-labs/bundsx-node/pkg/upstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOneInchHistoryClient_FetchEvents(t *testing.T) {
	t.Run("Happy path", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/history/v2.0/history/0xcontract/events", r.URL.Path)
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
			assert.Equal(t, "8453", r.URL.Query().Get("chainId"))
			assert.Equal(t, "100", r.URL.Query().Get("limit"))
			assert.Equal(t, "1700000000000", r.URL.Query().Get("fromTimestampMs"))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"items":[
				{"timeMs":1700000001000,"details":{"txHash":"0xabc","blockNumber":7,"status":"success"}},
				{"timeMs":1700000002000,"details":{"txHash":"0xdef","blockNumber":8,"status":"success"}}
			]}`))
		}))
		defer server.Close()

		client := NewOneInchHistoryClient(server.URL, "test-key")
		events, err := client.FetchEvents(context.Background(), "0xcontract", HistoryQuery{
			ChainID:       8453,
			Limit:         100,
			FromTimestamp: 1_700_000_000,
		})
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, "0xabc", events[0].Details.TxHash)
		assert.Equal(t, int64(1_700_000_001), events[0].Timestamp())
	})

	t.Run("Non-2xx surfaces status and body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"rate limited"}`))
		}))
		defer server.Close()

		client := NewOneInchHistoryClient(server.URL, "test-key")
		_, err := client.FetchEvents(context.Background(), "0xcontract", HistoryQuery{ChainID: 1})
		require.Error(t, err)

		var upErr *upstream.Error
		require.True(t, errors.As(err, &upErr))
		assert.Equal(t, http.StatusTooManyRequests, upErr.Status)
		assert.Contains(t, upErr.Body, "rate limited")
	})

	t.Run("Malformed body fails", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		}))
		defer server.Close()

		client := NewOneInchHistoryClient(server.URL, "test-key")
		_, err := client.FetchEvents(context.Background(), "0xcontract", HistoryQuery{ChainID: 1})
		require.Error(t, err)
	})

	t.Run("Context cancellation aborts", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"items":[]}`))
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		client := NewOneInchHistoryClient(server.URL, "test-key")
		_, err := client.FetchEvents(ctx, "0xcontract", HistoryQuery{ChainID: 1})
		require.Error(t, err)
	})
}
