package nftmeta

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/bundsx-labs/bundsx-node/internal/scheduler"
	"go.uber.org/zap"
)

// enrichLimit caps how many assets per page get a best-offer lookup.
// OpenSea throttles hard; the rest of the page ships without offers.
const enrichLimit = 10

// OfferRequest identifies one token in the batch best-offer endpoint.
type OfferRequest struct {
	Slug    string `json:"slug"`
	TokenID string `json:"tokenId"`
}

// OfferResult is one batch entry. Error is a message, not a status: a
// failed lookup never fails the batch.
type OfferResult struct {
	Slug           string  `json:"slug"`
	TokenID        string  `json:"tokenId"`
	MaxOffer       *string `json:"maxOffer"`
	MaxOfferBidder *string `json:"maxOfferBidder"`
	Error          string  `json:"error,omitempty"`
}

// Service is the NFT metadata proxy: wallet inventory from 1inch,
// offers and collection data from OpenSea, with offer lookups cached
// and rate-limited.
type Service struct {
	nfts    NFTFetcher
	opensea OfferFetcher
	cache   *OfferCache
	batcher *scheduler.Batcher
}

func NewService(nfts NFTFetcher, opensea OfferFetcher, cache *OfferCache, batcher *scheduler.Batcher) *Service {
	return &Service{
		nfts:    nfts,
		opensea: opensea,
		cache:   cache,
		batcher: batcher,
	}
}

// TokensForAddress returns the wallet's NFTs, enriched with collection
// slugs and best offers for the first few, and filtered down to usable
// collections. A wallet inventory failure aborts; enrichment failures
// only leave offers empty.
func (s *Service) TokensForAddress(ctx context.Context, address string, chainID int64, limit, offset int) ([]NFTAsset, error) {
	assets, err := s.nfts.FetchNFTs(ctx, address, chainID, limit, offset)
	if err != nil {
		return nil, err
	}

	s.enrich(ctx, address, assets)
	return FilterUsableCollections(assets), nil
}

// enrich attaches collection slugs and best offers in place. The slug
// map comes from OpenSea's view of the same wallet; contracts OpenSea
// does not index simply stay un-enriched.
func (s *Service) enrich(ctx context.Context, address string, assets []NFTAsset) {
	if len(assets) == 0 {
		return
	}

	accountNFTs, err := s.opensea.AccountNFTs(ctx, address)
	if err != nil {
		zap.L().Warn("skipping offer enrichment, account lookup failed",
			zap.String("address", address), zap.Error(err))
		return
	}

	contractToSlug := make(map[string]string, len(accountNFTs))
	for _, nft := range accountNFTs {
		if nft.Contract != "" && nft.Collection != "" {
			contractToSlug[strings.ToLower(nft.Contract)] = nft.Collection
		}
	}

	type lookup struct {
		index   int
		slug    string
		tokenID string
	}
	var lookups []lookup
	for i := range assets {
		if i >= enrichLimit {
			break
		}
		slug, ok := contractToSlug[strings.ToLower(assets[i].ContractAddress)]
		if !ok || assets[i].TokenID == "" {
			continue
		}
		assets[i].CollectionSlug = slug
		lookups = append(lookups, lookup{index: i, slug: slug, tokenID: assets[i].TokenID})
	}

	results := scheduler.Run(ctx, s.batcher, lookups, 0, func(ctx context.Context, l lookup) (BestOffer, error) {
		return s.bestOffer(ctx, l.slug, l.tokenID)
	})
	for j, r := range results {
		if r.Err != nil {
			zap.L().Debug("best offer lookup failed",
				zap.String("slug", lookups[j].slug),
				zap.String("tokenId", lookups[j].tokenID),
				zap.Error(r.Err))
			continue
		}
		assets[lookups[j].index].MaxOffer = r.Value.MaxOffer
		assets[lookups[j].index].MaxOfferBidder = r.Value.MaxOfferBidder
	}
}

// BestOffer resolves one token's best offer through the cache.
func (s *Service) BestOffer(ctx context.Context, slug, tokenID string) (BestOffer, error) {
	return s.bestOffer(ctx, slug, tokenID)
}

func (s *Service) bestOffer(ctx context.Context, slug, tokenID string) (BestOffer, error) {
	if s.cache != nil {
		if offer, ok, err := s.cache.Get(slug, tokenID); err == nil && ok {
			return offer, nil
		} else if err != nil {
			zap.L().Warn("offer cache read failed", zap.Error(err))
		}
	}

	offer, err := s.opensea.FetchBestOffer(ctx, slug, tokenID)
	if err != nil {
		return BestOffer{}, err
	}

	if s.cache != nil {
		if err := s.cache.Put(slug, tokenID, offer); err != nil {
			zap.L().Warn("offer cache write failed", zap.Error(err))
		}
	}
	return offer, nil
}

// CollectionInfo proxies OpenSea's collection record for a contract.
func (s *Service) CollectionInfo(ctx context.Context, contractAddress string) (json.RawMessage, error) {
	return s.opensea.CollectionInfo(ctx, contractAddress)
}

// BestOffersForMany resolves offers for up to enrichLimit tokens in one
// call. Requests missing a slug or token id and lookups that fail are
// reported per entry.
func (s *Service) BestOffersForMany(ctx context.Context, requests []OfferRequest) []OfferResult {
	if len(requests) > enrichLimit {
		requests = requests[:enrichLimit]
	}

	results := make([]OfferResult, len(requests))
	var lookups []int
	for i, rq := range requests {
		results[i] = OfferResult{Slug: rq.Slug, TokenID: rq.TokenID}
		if rq.Slug == "" || rq.TokenID == "" {
			results[i].Error = "missing slug or tokenId"
			continue
		}
		lookups = append(lookups, i)
	}

	fetched := scheduler.Run(ctx, s.batcher, lookups, 0, func(ctx context.Context, i int) (BestOffer, error) {
		return s.bestOffer(ctx, requests[i].Slug, requests[i].TokenID)
	})
	for j, r := range fetched {
		i := lookups[j]
		if r.Err != nil {
			results[i].Error = r.Err.Error()
			continue
		}
		results[i].MaxOffer = r.Value.MaxOffer
		results[i].MaxOfferBidder = r.Value.MaxOfferBidder
	}
	return results
}
