// Package places pages and sorts restaurant search results from the places
// proxy the way the browsing view presents them.
package places

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/foodcritic-dev/foodcritic/internal/cli/client"
)

const (
	// PageSize is how many results each page reveals
	PageSize = 12
	// DefaultRadius is the search radius in metres when none is given
	DefaultRadius = 25000
	// RestaurantType restricts provider searches to restaurants
	RestaurantType = "restaurant"
)

// ErrNoMoreResults is returned by LoadMore when everything has been shown
var ErrNoMoreResults = errors.New("no more results")

// SortMode orders the visible results
type SortMode string

const (
	SortRelevance SortMode = "relevance"
	SortDistance  SortMode = "distance"
	SortRating    SortMode = "rating"
)

// ParseSortMode accepts relevance, distance, rating or "" (relevance)
func ParseSortMode(s string) (SortMode, error) {
	switch SortMode(s) {
	case "", SortRelevance:
		return SortRelevance, nil
	case SortDistance, SortRating:
		return SortMode(s), nil
	default:
		return "", fmt.Errorf("unknown sort mode %q (valid: relevance, distance, rating)", s)
	}
}

// Searcher runs one provider search
type Searcher interface {
	SearchPlaces(ctx context.Context, req client.PlacesSearchRequest) (*client.PlacesSearchResponse, error)
}

// Feed accumulates search results across provider pages and reveals them
// PageSize at a time.
type Feed struct {
	request   client.PlacesSearchRequest
	origin    Location
	fromUser  bool
	sortMode  SortMode
	results   []client.PlaceResult
	nextToken string
	page      int
}

// NewFeed prepares a search around origin. fromUser marks origin as the
// user's own position; distance sorting is ignored otherwise.
func NewFeed(req client.PlacesSearchRequest, origin Location, fromUser bool, mode SortMode) *Feed {
	req.Latitude = origin.Latitude
	req.Longitude = origin.Longitude
	req.PageToken = ""
	if req.Radius == 0 {
		req.Radius = DefaultRadius
	}
	if req.Type == "" {
		req.Type = RestaurantType
	}
	if mode == "" {
		mode = SortRelevance
	}
	return &Feed{
		request:  req,
		origin:   origin,
		fromUser: fromUser,
		sortMode: mode,
	}
}

// Search runs a fresh search, replacing anything loaded before
func (f *Feed) Search(ctx context.Context, s Searcher) error {
	resp, err := f.fetch(ctx, s, "")
	if err != nil {
		return err
	}
	f.results = append([]client.PlaceResult(nil), resp.Results...)
	f.nextToken = resp.NextPageToken
	f.page = 1
	return nil
}

// LoadMore reveals the next page. Results already loaded are shown first;
// only when they run out is the next provider page fetched and appended.
func (f *Feed) LoadMore(ctx context.Context, s Searcher) error {
	if f.HasMoreLocal() {
		f.page++
		return nil
	}
	if f.nextToken == "" {
		return ErrNoMoreResults
	}

	resp, err := f.fetch(ctx, s, f.nextToken)
	if err != nil {
		return err
	}
	f.results = append(f.results, resp.Results...)
	f.nextToken = resp.NextPageToken
	f.page++
	return nil
}

func (f *Feed) fetch(ctx context.Context, s Searcher, pageToken string) (*client.PlacesSearchResponse, error) {
	req := f.request
	req.PageToken = pageToken

	resp, err := s.SearchPlaces(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return resp, nil
}

// SetSort changes the ordering of the visible results
func (f *Feed) SetSort(mode SortMode) {
	f.sortMode = mode
}

// Visible returns the sorted results revealed so far
func (f *Feed) Visible() []client.PlaceResult {
	sorted := f.sorted()
	limit := PageSize * f.page
	if limit < len(sorted) {
		sorted = sorted[:limit]
	}
	return sorted
}

// Loaded returns how many results have been fetched in total
func (f *Feed) Loaded() int {
	return len(f.results)
}

// Page returns the number of pages revealed
func (f *Feed) Page() int {
	return f.page
}

// HasMoreLocal reports whether loaded results remain hidden
func (f *Feed) HasMoreLocal() bool {
	return PageSize*f.page < len(f.results)
}

// CanLoadMore reports whether LoadMore has anything to show
func (f *Feed) CanLoadMore() bool {
	return f.nextToken != "" || f.HasMoreLocal()
}

// Origin returns the search centre and whether it is the user's position
func (f *Feed) Origin() (Location, bool) {
	return f.origin, f.fromUser
}

// DistanceTo formats the distance from the user's position to r. It is
// only known when the search centre is the user's position.
func (f *Feed) DistanceTo(r client.PlaceResult) (string, bool) {
	if !f.fromUser || r.Geometry == nil {
		return "", false
	}
	return FormatDistance(Distance(f.origin, placeLocation(r))), true
}

func (f *Feed) sorted() []client.PlaceResult {
	out := append([]client.PlaceResult(nil), f.results...)

	switch {
	case f.sortMode == SortDistance && f.fromUser:
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i], out[j]
			// results without a position go last
			switch {
			case a.Geometry == nil:
				return false
			case b.Geometry == nil:
				return true
			}
			return Distance(f.origin, placeLocation(a)) < Distance(f.origin, placeLocation(b))
		})
	case f.sortMode == SortRating:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Rating > out[j].Rating
		})
	}
	return out
}

func placeLocation(r client.PlaceResult) Location {
	return Location{Latitude: r.Geometry.Location.Lat, Longitude: r.Geometry.Location.Lng}
}
