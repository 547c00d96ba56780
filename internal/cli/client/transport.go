package client

import (
	"net/http"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/foodcritic-dev/foodcritic/internal/cli/endpoint"
)

const (
	authorizationHeader = "Authorization"
	requestIDHeader     = "X-Request-ID"
	bearerPrefix        = "Bearer "
)

// NewTransport wraps base with the credential interceptor and the
// session-expiry interceptor. A nil base means http.DefaultTransport; nil
// tokens or expiry disable the respective behaviour.
func NewTransport(base http.RoundTripper, tokens TokenSource, expiry ExpirySignaler, userAgent string, log zerolog.Logger) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &responseInterceptor{
		next: &requestInterceptor{
			next:      base,
			tokens:    tokens,
			userAgent: userAgent,
		},
		tokens: tokens,
		expiry: expiry,
		log:    log,
	}
}

// requestInterceptor attaches the bearer credential to outgoing requests
type requestInterceptor struct {
	next      http.RoundTripper
	tokens    TokenSource
	userAgent string
}

func (t *requestInterceptor) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())

	if out.Header.Get(requestIDHeader) == "" {
		out.Header.Set(requestIDHeader, ulid.Make().String())
	}
	if t.userAgent != "" && out.Header.Get("User-Agent") == "" {
		out.Header.Set("User-Agent", t.userAgent)
	}

	authorize(out, endpoint.Resolve(req), currentToken(t.tokens))

	return t.next.RoundTrip(out)
}

// authorize sets the bearer header when there is a token, the route is not
// public, and the caller has not set one already.
func authorize(req *http.Request, class endpoint.Classification, token string) {
	if token == "" || !class.AttachesCredential() {
		return
	}
	if req.Header.Get(authorizationHeader) != "" {
		return
	}
	req.Header.Set(authorizationHeader, bearerPrefix+token)
}

func currentToken(tokens TokenSource) string {
	if tokens == nil {
		return ""
	}
	return tokens.Token()
}
