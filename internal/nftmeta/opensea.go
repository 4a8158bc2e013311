package nftmeta

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/bundsx-labs/bundsx-node/pkg/upstream"
	"github.com/bundsx-labs/bundsx-node/pkg/weiconv"
)

const openSeaProvider = "opensea"

// BestOffer is the top collection offer applicable to one token. MaxOffer
// is ETH formatted to 5 decimal places; both fields are nil when no offer
// exists or the bidder could not be resolved.
type BestOffer struct {
	MaxOffer       *string `json:"maxOffer"`
	MaxOfferBidder *string `json:"maxOfferBidder"`
}

// OfferFetcher is the OpenSea boundary the service depends on.
type OfferFetcher interface {
	AccountNFTs(ctx context.Context, address string) ([]AccountNFT, error)
	FetchBestOffer(ctx context.Context, slug, tokenID string) (BestOffer, error)
	CollectionInfo(ctx context.Context, contractAddress string) (json.RawMessage, error)
}

// AccountNFT is the slice of OpenSea's account-NFT record we need: the
// contract address and the collection slug it maps to.
type AccountNFT struct {
	Identifier string `json:"identifier"`
	Collection string `json:"collection"`
	Contract   string `json:"contract"`
	Name       string `json:"name"`
	ImageURL   string `json:"image_url"`
}

type accountNFTsResponse struct {
	NFTs []AccountNFT `json:"nfts"`
}

// bestOfferResponse is OpenSea's offer schema. The price moved under
// "current" in a later API revision; both spellings are still served.
type bestOfferResponse struct {
	OrderHash string `json:"order_hash"`
	Price     struct {
		Value   string `json:"value"`
		Current struct {
			Value string `json:"value"`
		} `json:"current"`
	} `json:"price"`
}

type orderResponse struct {
	Order struct {
		Maker struct {
			Address string `json:"address"`
		} `json:"maker"`
	} `json:"order"`
}

type OpenSeaClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewOpenSeaClient(baseURL, apiKey string) *OpenSeaClient {
	return &OpenSeaClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *OpenSeaClient) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build opensea request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &upstream.Error{Provider: openSeaProvider, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, &upstream.Error{Provider: openSeaProvider, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &upstream.Error{
			Provider: openSeaProvider,
			Status:   resp.StatusCode,
			Body:     string(body),
		}
	}
	return body, nil
}

// AccountNFTs lists the wallet's NFTs as OpenSea indexes them. Used to
// map contract addresses to collection slugs, which the offers API keys
// on.
func (c *OpenSeaClient) AccountNFTs(ctx context.Context, address string) ([]AccountNFT, error) {
	body, err := c.get(ctx, fmt.Sprintf("/api/v2/chain/ethereum/account/%s/nfts?limit=50", address))
	if err != nil {
		return nil, err
	}

	var parsed accountNFTsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &upstream.Error{Provider: openSeaProvider, Err: fmt.Errorf("decoding account nfts: %w", err)}
	}
	return parsed.NFTs, nil
}

// FetchBestOffer resolves the best collection offer for one token. A
// missing offer is not an error: the zero BestOffer comes back. The
// bidder lookup is best-effort; its failure leaves MaxOfferBidder nil.
func (c *OpenSeaClient) FetchBestOffer(ctx context.Context, slug, tokenID string) (BestOffer, error) {
	body, err := c.get(ctx, fmt.Sprintf("/api/v2/offers/collection/%s/nfts/%s/best", slug, tokenID))
	if err != nil {
		return BestOffer{}, err
	}

	var parsed bestOfferResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return BestOffer{}, &upstream.Error{Provider: openSeaProvider, Err: fmt.Errorf("decoding best offer: %w", err)}
	}

	var offer BestOffer
	value := parsed.Price.Current.Value
	if value == "" {
		value = parsed.Price.Value
	}
	if value != "" {
		wei, ok := new(big.Int).SetString(value, 10)
		if !ok {
			return BestOffer{}, &upstream.Error{Provider: openSeaProvider, Err: fmt.Errorf("offer value %q is not a wei amount", value)}
		}
		formatted := weiconv.ToEthString(wei, 5)
		offer.MaxOffer = &formatted
	}

	if parsed.OrderHash != "" {
		if maker, err := c.orderMaker(ctx, parsed.OrderHash); err == nil && maker != "" {
			offer.MaxOfferBidder = &maker
		}
	}
	return offer, nil
}

func (c *OpenSeaClient) orderMaker(ctx context.Context, orderHash string) (string, error) {
	body, err := c.get(ctx, "/api/v2/orders/ethereum/seaport/"+orderHash)
	if err != nil {
		return "", err
	}

	var parsed orderResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &upstream.Error{Provider: openSeaProvider, Err: fmt.Errorf("decoding order: %w", err)}
	}
	return parsed.Order.Maker.Address, nil
}

// CollectionInfo proxies OpenSea's collection record untouched. The
// frontend consumes whatever fields OpenSea serves; reshaping here would
// only lag their schema.
func (c *OpenSeaClient) CollectionInfo(ctx context.Context, contractAddress string) (json.RawMessage, error) {
	body, err := c.get(ctx, "/api/v2/collections/ethereum/"+strings.ToLower(contractAddress))
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, &upstream.Error{Provider: openSeaProvider, Err: fmt.Errorf("collection response is not json")}
	}
	return json.RawMessage(body), nil
}
