package nftmeta

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

const oneInchNFTProvider = "1inch nft"

// oneInchNFTResponse is the 1inch NFT API schema, and only that schema.
// Other providers' shapes get their own parser.
type oneInchNFTResponse struct {
	Assets []oneInchAsset `json:"assets"`
}

type oneInchAsset struct {
	ID       json.Number `json:"id"`
	TokenID  json.Number `json:"token_id"`
	Name     string      `json:"name"`
	ImageURL string      `json:"image_url"`
	ChainID  int64       `json:"chain_id"`
	Provider string      `json:"provider"`
	Priority int         `json:"priority"`

	AssetContract struct {
		Address string `json:"address"`
		Name    string `json:"name"`
	} `json:"asset_contract"`

	Collection struct {
		Name string `json:"name"`
	} `json:"collection"`
}

// normalizeOneInchAsset maps one 1inch record onto the canonical asset.
// A record without a contract address or token id cannot identify an
// NFT and is rejected.
func normalizeOneInchAsset(raw oneInchAsset, chainID int64) (NFTAsset, error) {
	if raw.AssetContract.Address == "" {
		return NFTAsset{}, fmt.Errorf("1inch asset %q has no contract address", raw.ID)
	}
	if raw.TokenID.String() == "" {
		return NFTAsset{}, fmt.Errorf("1inch asset %q has no token id", raw.ID)
	}

	collectionName := raw.Collection.Name
	if collectionName == "" {
		collectionName = raw.AssetContract.Name
	}

	return NFTAsset{
		ID:              raw.ID.String(),
		Name:            raw.Name,
		ImageURL:        raw.ImageURL,
		CollectionName:  collectionName,
		TokenID:         raw.TokenID.String(),
		ContractAddress: raw.AssetContract.Address,
		ChainID:         chainID,
	}, nil
}

// NFTFetcher is the wallet-inventory boundary.
type NFTFetcher interface {
	FetchNFTs(ctx context.Context, address string, chainID int64, limit, offset int) ([]NFTAsset, error)
}

type OneInchNFTClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewOneInchNFTClient(baseURL, apiKey string) *OneInchNFTClient {
	return &OneInchNFTClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// FetchNFTs returns one page of the wallet's NFTs, already normalized.
// Records the normalizer rejects are dropped; transport failures and
// non-2xx statuses abort with an upstream.Error.
func (c *OneInchNFTClient) FetchNFTs(ctx context.Context, address string, chainID int64, limit, offset int) ([]NFTAsset, error) {
	params := url.Values{}
	params.Set("chainIds", strconv.FormatInt(chainID, 10))
	params.Set("address", address)
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		params.Set("offset", strconv.Itoa(offset))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/nft/v2/byaddress?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build nft request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &upstream.Error{Provider: oneInchNFTProvider, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, &upstream.Error{Provider: oneInchNFTProvider, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &upstream.Error{
			Provider: oneInchNFTProvider,
			Status:   resp.StatusCode,
			Body:     string(body),
		}
	}

	var parsed oneInchNFTResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &upstream.Error{Provider: oneInchNFTProvider, Err: fmt.Errorf("decoding response: %w", err)}
	}

	assets := make([]NFTAsset, 0, len(parsed.Assets))
	for _, raw := range parsed.Assets {
		asset, err := normalizeOneInchAsset(raw, chainID)
		if err != nil {
			continue
		}
		assets = append(assets, asset)
	}
	return assets, nil
}
