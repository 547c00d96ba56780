// Package endpoint decides, per outgoing request, whether the backend route is
// public, user-specific or neutral.
//
// Public routes never carry the bearer credential. User-specific routes carry it,
// and a 401/403 from them means the local session is no longer valid. Neutral
// routes carry the credential when one exists but an auth failure on them leaves
// the session alone.
//
// API calls declare their classification with WithClassification. Requests built
// without a declaration fall back to Classify, which infers it from the URL path
// and method.
package endpoint

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// Classification is the credential policy of a single request
type Classification int

const (
	Neutral Classification = iota
	Public
	UserSpecific
)

func (c Classification) String() string {
	switch c {
	case Public:
		return "public"
	case UserSpecific:
		return "user-specific"
	default:
		return "neutral"
	}
}

// AttachesCredential reports whether a bearer token may be sent for this class
func (c Classification) AttachesCredential() bool {
	return c != Public
}

// Classify infers the classification from the request URL and method.
// The query string is ignored and an empty method counts as GET.
func Classify(rawURL, method string) Classification {
	segs := segments(rawURL)
	isGet := normalizeMethod(method) == http.MethodGet

	switch {
	case followedByAny(segs, "auth"):
		return Public
	case contains(segs, "restaurants") && isGet && !contains(segs, "reviews"):
		return Public
	case containsSeq(segs, "reviews", "recent"):
		return Public
	case followedByAny(segs, "users"), followedByAny(segs, "upload"):
		return UserSpecific
	case contains(segs, "reviews") && !isGet:
		return UserSpecific
	default:
		return Neutral
	}
}

// IsReviewLookup reports whether the URL is the current user's review lookup
// for a single restaurant. A 404 there means "no review yet".
func IsReviewLookup(rawURL string) bool {
	segs := segments(rawURL)
	n := len(segs)
	return n >= 2 && segs[n-2] == "reviews" && segs[n-1] == "my-review"
}

type classificationKey struct{}

// WithClassification declares the classification for requests built with ctx
func WithClassification(ctx context.Context, c Classification) context.Context {
	return context.WithValue(ctx, classificationKey{}, c)
}

// FromContext returns the declared classification, if any
func FromContext(ctx context.Context) (Classification, bool) {
	c, ok := ctx.Value(classificationKey{}).(Classification)
	return c, ok
}

type baseKey struct{}

// WithBase records the API base URL that requests built with ctx are
// relative to. Inference then ignores the segments of the base path.
func WithBase(ctx context.Context, baseURL string) context.Context {
	return context.WithValue(ctx, baseKey{}, baseURL)
}

// Relative returns the path of u below the path of baseURL. A path outside
// the base is returned unchanged.
func Relative(u *url.URL, baseURL string) string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return u.Path
	}
	prefix := strings.TrimRight(base.Path, "/")
	if prefix == "" {
		return u.Path
	}
	rest, ok := strings.CutPrefix(u.Path, prefix)
	if !ok || (rest != "" && rest[0] != '/') {
		return u.Path
	}
	return rest
}

// Resolve returns the declared classification of req, or infers one from
// its path relative to the base recorded with WithBase
func Resolve(req *http.Request) Classification {
	ctx := req.Context()
	if c, ok := FromContext(ctx); ok {
		return c
	}
	path := req.URL.Path
	if base, ok := ctx.Value(baseKey{}).(string); ok {
		path = Relative(req.URL, base)
	}
	return Classify(path, req.Method)
}

func normalizeMethod(method string) string {
	if method == "" {
		return http.MethodGet
	}
	return strings.ToUpper(method)
}

func segments(rawURL string) []string {
	path := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		path = u.Path
	} else if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}

	var segs []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}

func contains(segs []string, name string) bool {
	for _, s := range segs {
		if s == name {
			return true
		}
	}
	return false
}

func containsSeq(segs []string, first, second string) bool {
	for i := 0; i+1 < len(segs); i++ {
		if segs[i] == first && segs[i+1] == second {
			return true
		}
	}
	return false
}

// followedByAny reports whether name appears with at least one segment after it
func followedByAny(segs []string, name string) bool {
	for i := 0; i+1 < len(segs); i++ {
		if segs[i] == name {
			return true
		}
	}
	return false
}
