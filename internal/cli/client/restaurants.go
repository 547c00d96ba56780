package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/foodcritic-dev/foodcritic/internal/cli/endpoint"
)

// ListRestaurants returns every restaurant known to the backend
func (c *Client) ListRestaurants(ctx context.Context) ([]Restaurant, error) {
	var restaurants []Restaurant
	if err := c.doJSON(ctx, endpoint.Public, http.MethodGet, "/restaurants", nil, nil, &restaurants); err != nil {
		return nil, fmt.Errorf("failed to list restaurants: %w", err)
	}
	return restaurants, nil
}

// GetRestaurant returns one restaurant by ID
func (c *Client) GetRestaurant(ctx context.Context, id string) (*Restaurant, error) {
	var restaurant Restaurant
	if err := c.doJSON(ctx, endpoint.Public, http.MethodGet, "/restaurants/"+url.PathEscape(id), nil, nil, &restaurant); err != nil {
		return nil, fmt.Errorf("failed to get restaurant: %w", err)
	}
	return &restaurant, nil
}
