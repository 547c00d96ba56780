package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/foodcritic-dev/foodcritic/internal/cli/endpoint"
)

func reviewsPath(restaurantID string) string {
	return "/restaurants/" + url.PathEscape(restaurantID) + "/reviews"
}

// ListReviews returns the reviews of a restaurant
func (c *Client) ListReviews(ctx context.Context, restaurantID string) ([]Review, error) {
	var reviews []Review
	if err := c.doJSON(ctx, endpoint.Neutral, http.MethodGet, reviewsPath(restaurantID), nil, nil, &reviews); err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

// MyReview returns the signed-in user's review of a restaurant, or
// ErrReviewNotFound when there is none yet
func (c *Client) MyReview(ctx context.Context, restaurantID string) (*Review, error) {
	var review Review
	if err := c.doJSON(ctx, endpoint.Neutral, http.MethodGet, reviewsPath(restaurantID)+"/my-review", nil, nil, &review); err != nil {
		if errors.Is(err, ErrReviewNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	return &review, nil
}

// CreateReview posts a new review
func (c *Client) CreateReview(ctx context.Context, restaurantID string, req ReviewRequest) (*Review, error) {
	if err := c.validateRequest(req); err != nil {
		return nil, err
	}

	var review Review
	if err := c.doJSON(ctx, endpoint.UserSpecific, http.MethodPost, reviewsPath(restaurantID), nil, req, &review); err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}
	return &review, nil
}

// UpdateReview edits an existing review
func (c *Client) UpdateReview(ctx context.Context, restaurantID string, reviewID int64, req ReviewRequest) (*Review, error) {
	if err := c.validateRequest(req); err != nil {
		return nil, err
	}

	var review Review
	path := reviewsPath(restaurantID) + "/" + strconv.FormatInt(reviewID, 10)
	if err := c.doJSON(ctx, endpoint.UserSpecific, http.MethodPut, path, nil, req, &review); err != nil {
		return nil, fmt.Errorf("failed to update review: %w", err)
	}
	return &review, nil
}

// DeleteReview removes a review
func (c *Client) DeleteReview(ctx context.Context, restaurantID string, reviewID int64) error {
	path := reviewsPath(restaurantID) + "/" + strconv.FormatInt(reviewID, 10)
	if err := c.doJSON(ctx, endpoint.UserSpecific, http.MethodDelete, path, nil, nil, nil); err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	return nil
}

// RecentReviews returns the newest reviews across all restaurants.
// A limit of zero leaves the page size to the backend.
func (c *Client) RecentReviews(ctx context.Context, limit int) ([]Review, error) {
	var query url.Values
	if limit > 0 {
		query = url.Values{"limit": {strconv.Itoa(limit)}}
	}

	var reviews []Review
	if err := c.doJSON(ctx, endpoint.Public, http.MethodGet, "/reviews/recent", query, nil, &reviews); err != nil {
		return nil, fmt.Errorf("failed to list recent reviews: %w", err)
	}
	return reviews, nil
}
