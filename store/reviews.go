package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type (
	Review struct {
		ID          string    `json:"_id"`
		Name        string    `json:"name"`
		Title       string    `json:"title"`
		Description string    `json:"description"`
		Rating      int       `json:"rating"`
		ProductID   string    `json:"productId"`
		CreatedAt   time.Time `json:"createdAt"`
	}

	Reviews struct {
		db *sql.DB
	}
)

const reviewColumns = `review_id, name, title, description, rating, product_id, created_at`

func NewReviews(db *sql.DB) *Reviews {
	return &Reviews{db: db}
}

func (r *Reviews) Insert(ctx context.Context, rv Review) error {
	_, err := r.db.ExecContext(ctx, `insert into reviews(`+reviewColumns+`) values (?, ?, ?, ?, ?, ?, ?)`,
		rv.ID, rv.Name, rv.Title, rv.Description, rv.Rating, rv.ProductID, rv.CreatedAt.UnixMilli())
	if isUniqueViolation(err) {
		return DuplicateKey{Table: "reviews", Key: rv.ID}
	} else if err != nil {
		return fmt.Errorf("unable to store review %v, cause %w", rv.ID, err)
	}
	return nil
}

func (r *Reviews) DeleteByID(ctx context.Context, id string) (Review, bool, error) {
	row := r.db.QueryRowContext(ctx, `delete from reviews where review_id = ? returning `+reviewColumns, id)
	rv, err := scanReview(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Review{}, false, nil
	} else if err != nil {
		return Review{}, false, fmt.Errorf("unable to delete review %v, cause %w", id, err)
	}
	return rv, true, nil
}

func (r *Reviews) ListByProduct(ctx context.Context, productID string) ([]Review, error) {
	rows, err := r.db.QueryContext(ctx, `select `+reviewColumns+` from reviews
	where product_id = ? order by created_at asc, review_id asc`, productID)
	if err != nil {
		return nil, fmt.Errorf("unable to list reviews of %v, cause %w", productID, err)
	}
	defer rows.Close()
	out := []Review{}
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("unable to scan review, cause %w", err)
		}
		out = append(out, rv)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("unable to list reviews of %v, cause %w", productID, err)
	}
	return out, nil
}

// RatingByProduct returns how many reviews the product has and their average rating.
func (r *Reviews) RatingByProduct(ctx context.Context, productID string) (int, float64, error) {
	var count int
	var avg float64
	err := r.db.QueryRowContext(ctx, `select count(*), coalesce(avg(rating), 0) from reviews where product_id = ?`, productID).Scan(&count, &avg)
	if err != nil {
		return 0, 0, fmt.Errorf("unable to compute rating of %v, cause %w", productID, err)
	}
	return count, avg, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanReview(s scanner) (Review, error) {
	var rv Review
	var created int64
	err := s.Scan(&rv.ID, &rv.Name, &rv.Title, &rv.Description, &rv.Rating, &rv.ProductID, &created)
	if err != nil {
		return Review{}, err
	}
	rv.CreatedAt = fromMillis(created)
	return rv, nil
}
