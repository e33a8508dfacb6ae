package review

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/allegro/bigcache/v3"
)

type (
	// RatingCache keeps computed ratings in memory until they expire or
	// the product gets a new (or loses a) review.
	RatingCache struct {
		cache *bigcache.BigCache
	}
)

// DefaultRatingTTL bounds how long a cached rating may lag behind the store.
const DefaultRatingTTL = 30 * time.Second

func NewRatingCache(ctx context.Context, ttl time.Duration) (*RatingCache, error) {
	if ttl <= 0 {
		ttl = DefaultRatingTTL
	}
	cfg := bigcache.DefaultConfig(ttl)
	cfg.CleanWindow = ttl
	cfg.Verbose = false
	cache, err := bigcache.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to create rating cache, cause %w", err)
	}
	return &RatingCache{cache: cache}, nil
}

func (m *RatingCache) Save(r Rating) error {
	var buf [16]byte
	binary.BigEndian.PutUint64(buf[:8], uint64(r.Count))
	binary.BigEndian.PutUint64(buf[8:], math.Float64bits(r.Average))
	return m.cache.Set(r.ProductID, buf[:])
}

func (m *RatingCache) Lookup(productID string) (Rating, bool, error) {
	buf, err := m.cache.Get(productID)
	if errors.Is(err, bigcache.ErrEntryNotFound) {
		return Rating{}, false, nil
	} else if err != nil {
		return Rating{}, false, err
	}
	if len(buf) != 16 {
		return Rating{}, false, nil
	}
	return Rating{
		ProductID: productID,
		Count:     int(binary.BigEndian.Uint64(buf[:8])),
		Average:   math.Float64frombits(binary.BigEndian.Uint64(buf[8:])),
	}, true, nil
}

func (m *RatingCache) Forget(productID string) error {
	err := m.cache.Delete(productID)
	if errors.Is(err, bigcache.ErrEntryNotFound) {
		return nil
	}
	return err
}

func (m *RatingCache) Close() error {
	return m.cache.Close()
}
