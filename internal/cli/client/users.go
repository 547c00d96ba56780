package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/foodcritic-dev/foodcritic/internal/cli/endpoint"
	"github.com/foodcritic-dev/foodcritic/internal/cli/session"
)

// Profile returns the signed-in user's profile. It satisfies
// session.ProfileValidator.
func (c *Client) Profile(ctx context.Context) (*session.UserProfile, error) {
	var profile session.UserProfile
	if err := c.doJSON(ctx, endpoint.UserSpecific, http.MethodGet, "/users/profile", nil, nil, &profile); err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &profile, nil
}

// MyReviews returns every review written by the signed-in user
func (c *Client) MyReviews(ctx context.Context) ([]Review, error) {
	var reviews []Review
	if err := c.doJSON(ctx, endpoint.UserSpecific, http.MethodGet, "/users/my-reviews", nil, nil, &reviews); err != nil {
		return nil, fmt.Errorf("failed to list your reviews: %w", err)
	}
	return reviews, nil
}

// UpdateProfilePhoto points the profile photo at photoURL
func (c *Client) UpdateProfilePhoto(ctx context.Context, photoURL string) (*session.UserProfile, error) {
	body := map[string]string{"photoUrl": photoURL}

	var profile session.UserProfile
	if err := c.doJSON(ctx, endpoint.UserSpecific, http.MethodPut, "/users/profile/photo", nil, body, &profile); err != nil {
		return nil, fmt.Errorf("failed to update profile photo: %w", err)
	}
	return &profile, nil
}
