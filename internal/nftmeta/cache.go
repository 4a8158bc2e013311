package nftmeta

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// OfferCache keeps recently fetched best offers in badger with a TTL.
// Offers go stale within minutes, so entries expire rather than being
// invalidated; a cache miss just means another provider round-trip.
type OfferCache struct {
	db  *badger.DB
	ttl time.Duration
}

func NewOfferCache(db *badger.DB, ttl time.Duration) *OfferCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &OfferCache{db: db, ttl: ttl}
}

func offerKey(slug, tokenID string) []byte {
	return []byte(fmt.Sprintf("bestoffer:%s:%s", slug, tokenID))
}

// Get returns the cached offer and whether it was present.
func (c *OfferCache) Get(slug, tokenID string) (BestOffer, bool, error) {
	var offer BestOffer
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(offerKey(slug, tokenID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &offer)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return BestOffer{}, false, nil
	}
	if err != nil {
		return BestOffer{}, false, fmt.Errorf("reading cached offer: %w", err)
	}
	return offer, true, nil
}

func (c *OfferCache) Put(slug, tokenID string, offer BestOffer) error {
	data, err := json.Marshal(offer)
	if err != nil {
		return fmt.Errorf("encoding offer: %w", err)
	}
	err = c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(offerKey(slug, tokenID), data).WithTTL(c.ttl)
		return txn.SetEntry(entry)
	})
	if err != nil {
		return fmt.Errorf("writing cached offer: %w", err)
	}
	return nil
}
