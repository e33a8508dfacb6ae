package review

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/andrebq/reviewbox/store"
	"github.com/google/uuid"
)

const (
	MinRating = 1
	MaxRating = 5
)

type (
	Review = store.Review

	CreateReview struct {
		Name        string `json:"name"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Rating      int    `json:"rating"`
		ProductID   string `json:"productId"`
	}

	Rating struct {
		ProductID string  `json:"productId"`
		Count     int     `json:"count"`
		Average   float64 `json:"average"`
	}

	Store interface {
		Insert(ctx context.Context, rv Review) error
		DeleteByID(ctx context.Context, id string) (Review, bool, error)
		ListByProduct(ctx context.Context, productID string) ([]Review, error)
		RatingByProduct(ctx context.Context, productID string) (int, float64, error)
	}

	Service struct {
		reviews Store
		ratings *RatingCache
		now     func() time.Time

		// generation of each product, bumped on every write so a rating
		// read before the write is never cached after it
		mu          sync.Mutex
		generations map[string]uint64
	}
)

// NewService returns a review service, ratings may be nil to disable caching.
func NewService(reviews Store, ratings *RatingCache) *Service {
	return &Service{
		reviews:     reviews,
		ratings:     ratings,
		now:         time.Now,
		generations: make(map[string]uint64),
	}
}

func (c CreateReview) validate() error {
	for _, f := range []struct {
		name  string
		value string
	}{
		{"name", c.Name},
		{"title", c.Title},
		{"description", c.Description},
		{"productId", c.ProductID},
	} {
		if strings.TrimSpace(f.value) == "" {
			return InvalidReview{Field: f.name, Reason: "must not be empty"}
		}
	}
	if c.Rating < MinRating {
		return InvalidReview{Field: "rating", Reason: "must be at least 1"}
	} else if c.Rating > MaxRating {
		return InvalidReview{Field: "rating", Reason: "must be at most 5"}
	}
	return nil
}

func (s *Service) Create(ctx context.Context, in CreateReview) (Review, error) {
	if err := in.validate(); err != nil {
		return Review{}, err
	}
	rv := Review{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Title:       in.Title,
		Description: in.Description,
		Rating:      in.Rating,
		ProductID:   in.ProductID,
		CreatedAt:   s.now().UTC().Truncate(time.Millisecond),
	}
	if err := s.reviews.Insert(ctx, rv); err != nil {
		return Review{}, err
	}
	s.forget(rv.ProductID)
	return rv, nil
}

func (s *Service) Delete(ctx context.Context, id string) (Review, error) {
	rv, found, err := s.reviews.DeleteByID(ctx, id)
	if err != nil {
		return Review{}, err
	} else if !found {
		return Review{}, NotFound{ID: id}
	}
	s.forget(rv.ProductID)
	return rv, nil
}

func (s *Service) ByProduct(ctx context.Context, productID string) ([]Review, error) {
	return s.reviews.ListByProduct(ctx, productID)
}

// Rating returns the number of reviews of productID and their average.
func (s *Service) Rating(ctx context.Context, productID string) (Rating, error) {
	if s.ratings != nil {
		if r, found, err := s.ratings.Lookup(productID); err == nil && found {
			return r, nil
		}
	}
	gen := s.generation(productID)
	count, avg, err := s.reviews.RatingByProduct(ctx, productID)
	if err != nil {
		return Rating{}, err
	}
	r := Rating{ProductID: productID, Count: count, Average: avg}
	s.save(gen, r)
	return r, nil
}

func (s *Service) generation(productID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generations[productID]
}

// save caches r unless productID was written after gen was taken.
func (s *Service) save(gen uint64, r Rating) {
	if s.ratings == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generations[r.ProductID] != gen {
		return
	}
	// a failed Save only costs a recomputation later
	_ = s.ratings.Save(r)
}

func (s *Service) forget(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generations[productID]++
	if s.ratings != nil {
		_ = s.ratings.Forget(productID)
	}
}
