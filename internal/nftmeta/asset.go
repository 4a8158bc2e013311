// Package nftmeta proxies third-party NFT metadata providers (1inch,
// OpenSea) and reshapes their responses into one canonical asset record.
// Each provider gets its own response schema and its own normalizer; a
// record that does not match its provider's schema is rejected, never
// patched together from whatever fields happen to exist.
package nftmeta

import "strings"

// NFTAsset is the canonical UI-facing asset record. An asset is unique
// per (contractAddress, tokenId) on a chain; everything else is
// display metadata.
type NFTAsset struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	ImageURL        string  `json:"image_url"`
	CollectionName  string  `json:"collection_name"`
	CollectionSlug  string  `json:"collection_slug,omitempty"`
	TokenID         string  `json:"token_id"`
	ContractAddress string  `json:"contract_address"`
	ChainID         int64   `json:"chain_id"`
	MaxOffer        *string `json:"max_offer"`
	MaxOfferBidder  *string `json:"max_offer_bidder"`
}

// hasUsableCollection reports whether an asset belongs to a collection
// worth showing. Providers label unindexed collections "Unknown",
// "Unnamed" or "Untitled"; those render as clutter in a bundle picker.
func hasUsableCollection(a NFTAsset) bool {
	name := strings.TrimSpace(a.CollectionName)
	if name == "" {
		return false
	}
	lower := strings.ToLower(name)
	for _, marker := range []string{"unknown", "unnamed", "untitled"} {
		if strings.Contains(lower, marker) {
			return false
		}
	}
	return true
}

// FilterUsableCollections drops assets whose collection name marks them
// as unindexed. Order is preserved.
func FilterUsableCollections(assets []NFTAsset) []NFTAsset {
	filtered := make([]NFTAsset, 0, len(assets))
	for _, a := range assets {
		if hasUsableCollection(a) {
			filtered = append(filtered, a)
		}
	}
	return filtered
}
