package client

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/foodcritic-dev/foodcritic/internal/cli/endpoint"
)

const maxErrorBody = 64 << 10

// responseInterceptor signals session expiry when a user-specific request
// made with a token comes back 401/403. It never changes the response and
// never touches the session itself.
type responseInterceptor struct {
	next   http.RoundTripper
	tokens TokenSource
	expiry ExpirySignaler
	log    zerolog.Logger
}

func (t *responseInterceptor) RoundTrip(req *http.Request) (*http.Response, error) {
	hadToken := currentToken(t.tokens) != ""

	resp, err := t.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if isAuthStatus(resp.StatusCode) && hadToken && t.expiry != nil && endpoint.Resolve(req) == endpoint.UserSpecific {
		t.log.Warn().
			Str("method", req.Method).
			Str("path", req.URL.Path).
			Int("status", resp.StatusCode).
			Msg("Authentication expired, signalling session expiry")
		t.expiry.SignalExpired()
	}

	return resp, nil
}

// checkResponse maps a non-2xx response to an error. A 404 from the
// my-review lookup is the expected "no review yet" answer.
func checkResponse(req *http.Request, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	if resp.StatusCode == http.StatusNotFound && endpoint.IsReviewLookup(req.URL.Path) {
		_, _ = io.Copy(io.Discard, resp.Body)
		return ErrReviewNotFound
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &APIError{
		StatusCode: resp.StatusCode,
		Method:     req.Method,
		Path:       req.URL.Path,
		Message:    errorMessage(body),
	}
}

func isAuthStatus(status int) bool {
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}

// errorMessage pulls a human readable message out of an error body
func errorMessage(body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return strings.TrimSpace(string(body))
}
