package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/foodcritic-dev/foodcritic/internal/cli/endpoint"
)

// Login authenticates the user and returns a JWT token
func (c *Client) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if err := c.validateRequest(req); err != nil {
		return nil, err
	}

	var resp AuthResponse
	if err := c.doJSON(ctx, endpoint.Public, http.MethodPost, "/auth/login", nil, req, &resp); err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	return &resp, nil
}

// Register creates an account and returns a JWT token for it
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	if err := c.validateRequest(req); err != nil {
		return nil, err
	}

	var resp AuthResponse
	if err := c.doJSON(ctx, endpoint.Public, http.MethodPost, "/auth/register", nil, req, &resp); err != nil {
		return nil, fmt.Errorf("registration failed: %w", err)
	}
	return &resp, nil
}
