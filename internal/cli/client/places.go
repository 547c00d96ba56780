package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/foodcritic-dev/foodcritic/internal/cli/endpoint"
)

// DefaultPhotoWidth is the photo width asked for when none is given
const DefaultPhotoWidth = 400

// SearchPlaces runs a places search. The response's Err reports provider
// failures; transport and HTTP failures are returned directly.
func (c *Client) SearchPlaces(ctx context.Context, req PlacesSearchRequest) (*PlacesSearchResponse, error) {
	if err := c.validateRequest(req); err != nil {
		return nil, err
	}

	var resp PlacesSearchResponse
	if err := c.doJSON(ctx, endpoint.Neutral, http.MethodPost, "/google-places/search", nil, req, &resp); err != nil {
		return nil, fmt.Errorf("failed to search restaurants: %w", err)
	}
	return &resp, nil
}

// PlaceDetails returns the full record of a place
func (c *Client) PlaceDetails(ctx context.Context, placeID string) (*PlaceDetailsResponse, error) {
	var resp PlaceDetailsResponse
	if err := c.doJSON(ctx, endpoint.Neutral, http.MethodGet, "/google-places/details/"+url.PathEscape(placeID), nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to get restaurant details: %w", err)
	}
	return &resp, nil
}

// PlacePhotoURL resolves a photo reference to a URL
func (c *Client) PlacePhotoURL(ctx context.Context, photoReference string, maxWidth int) (string, error) {
	if maxWidth <= 0 {
		maxWidth = DefaultPhotoWidth
	}
	query := url.Values{
		"photoReference": {photoReference},
		"maxWidth":       {strconv.Itoa(maxWidth)},
	}

	var photoURL string
	if err := c.doJSON(ctx, endpoint.Neutral, http.MethodGet, "/google-places/photo", query, nil, &photoURL); err != nil {
		return "", fmt.Errorf("failed to get photo: %w", err)
	}
	return photoURL, nil
}

// PlaceSuggestions returns autocomplete predictions for partial input
func (c *Client) PlaceSuggestions(ctx context.Context, req PlaceSuggestionsRequest) (*PlaceSuggestionsResponse, error) {
	if err := c.validateRequest(req); err != nil {
		return nil, err
	}

	var resp PlaceSuggestionsResponse
	if err := c.doJSON(ctx, endpoint.Neutral, http.MethodPost, "/google-places/suggestions", nil, req, &resp); err != nil {
		return nil, fmt.Errorf("failed to get suggestions: %w", err)
	}
	return &resp, nil
}
