package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/bundsx-labs/bundsx-node/internal/nftmeta"
)

// NFTMetadataService is the proxy behind the NFT endpoints.
type NFTMetadataService interface {
	TokensForAddress(ctx context.Context, address string, chainID int64, limit, offset int) ([]nftmeta.NFTAsset, error)
	BestOffer(ctx context.Context, slug, tokenID string) (nftmeta.BestOffer, error)
	CollectionInfo(ctx context.Context, contractAddress string) (json.RawMessage, error)
	BestOffersForMany(ctx context.Context, requests []nftmeta.OfferRequest) []nftmeta.OfferResult
}

type NFTTokensResponse struct {
	Assets []nftmeta.NFTAsset `json:"assets"`
}

// NFTTokensGetHandler serves GET /api/v1/nft/tokens/{address}.
func NFTTokensGetHandler(r *http.Request, svc NFTMetadataService) (any, error) {
	parts := PathParts(r)
	if len(parts) < 5 || parts[4] == "" {
		return nil, BadRequest("wallet address is required")
	}
	address := parts[4]

	chainID := ExtractInt64(r, "chainId")
	if chainID == 0 {
		chainID = 1
	}
	limit, offset := ExtractLimitOffset(r, 50)

	assets, err := svc.TokensForAddress(r.Context(), address, chainID, limit, offset)
	if err != nil {
		return nil, Internal("failed to fetch NFTs", err)
	}
	if assets == nil {
		assets = []nftmeta.NFTAsset{}
	}
	return NFTTokensResponse{Assets: assets}, nil
}

// BestOfferGetHandler serves GET /api/v1/opensea/best-offer/{slug}/{tokenId}.
func BestOfferGetHandler(r *http.Request, svc NFTMetadataService) (any, error) {
	parts := PathParts(r)
	if len(parts) < 6 || parts[4] == "" || parts[5] == "" {
		return nil, BadRequest("collection slug and token id are required")
	}

	offer, err := svc.BestOffer(r.Context(), parts[4], parts[5])
	if err != nil {
		return nil, Internal("failed to fetch best offer", err)
	}
	return offer, nil
}

// CollectionGetHandler serves GET /api/v1/opensea/collection/{contractAddress}.
func CollectionGetHandler(r *http.Request, svc NFTMetadataService) (any, error) {
	parts := PathParts(r)
	if len(parts) < 5 || parts[4] == "" {
		return nil, BadRequest("contract address is required")
	}

	info, err := svc.CollectionInfo(r.Context(), parts[4])
	if err != nil {
		return nil, Internal("failed to fetch collection", err)
	}
	return info, nil
}

type BestOffersRequest struct {
	NFTs []nftmeta.OfferRequest `json:"nfts"`
}

type BestOffersResponse struct {
	Results []nftmeta.OfferResult `json:"results"`
}

// BestOffersPostHandler serves POST /api/v1/opensea/best-offers.
func BestOffersPostHandler(r *http.Request, svc NFTMetadataService) (any, error) {
	var req BestOffersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, BadRequest("request body must be JSON with an nfts array")
	}
	if req.NFTs == nil {
		return nil, BadRequest("nfts must be an array")
	}

	results := svc.BestOffersForMany(r.Context(), req.NFTs)
	if results == nil {
		results = []nftmeta.OfferResult{}
	}
	return BestOffersResponse{Results: results}, nil
}
