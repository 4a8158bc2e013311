package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/bundsx-labs/bundsx-node/pkg/upstream"
)

const oneInchProvider = "1inch history"

// HistoryQuery bounds one page of the indexer's event history. Timestamps
// are in seconds; zero means unbounded. Chain id validity is the caller's
// problem - the provider errors on ids it does not know.
type HistoryQuery struct {
	ChainID       int64
	Limit         int
	Offset        int
	FromTimestamp int64
	ToTimestamp   int64
}

// HistoryFetcher is the external history indexer boundary.
type HistoryFetcher interface {
	FetchEvents(ctx context.Context, contract string, q HistoryQuery) ([]RawLedgerEvent, error)
}

type OneInchHistoryClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewOneInchHistoryClient(baseURL, apiKey string) *OneInchHistoryClient {
	return &OneInchHistoryClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// FetchEvents returns one page of raw events for the contract. Any
// transport failure or non-2xx status aborts with an upstream.Error
// carrying the provider's status and body; there are no partial results.
func (c *OneInchHistoryClient) FetchEvents(ctx context.Context, contract string, q HistoryQuery) ([]RawLedgerEvent, error) {
	endpoint := fmt.Sprintf("%s/history/v2.0/history/%s/events", c.baseURL, contract)

	params := url.Values{}
	params.Set("chainId", strconv.FormatInt(q.ChainID, 10))
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		params.Set("offset", strconv.Itoa(q.Offset))
	}
	if q.FromTimestamp > 0 {
		params.Set("fromTimestampMs", strconv.FormatInt(q.FromTimestamp*1000, 10))
	}
	if q.ToTimestamp > 0 {
		params.Set("toTimestampMs", strconv.FormatInt(q.ToTimestamp*1000, 10))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build history request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &upstream.Error{Provider: oneInchProvider, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &upstream.Error{Provider: oneInchProvider, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &upstream.Error{
			Provider: oneInchProvider,
			Status:   resp.StatusCode,
			Body:     string(body),
		}
	}

	var parsed historyResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &upstream.Error{Provider: oneInchProvider, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return parsed.Items, nil
}
