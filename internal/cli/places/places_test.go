package places

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodcritic-dev/foodcritic/internal/cli/client"
)

// fakeSearcher serves pre-built pages keyed by page token ("" is the first page)
type fakeSearcher struct {
	pages    map[string]*client.PlacesSearchResponse
	requests []client.PlacesSearchRequest
	err      error
}

func (f *fakeSearcher) SearchPlaces(ctx context.Context, req client.PlacesSearchRequest) (*client.PlacesSearchResponse, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	resp, ok := f.pages[req.PageToken]
	if !ok {
		return nil, fmt.Errorf("unexpected page token %q", req.PageToken)
	}
	return resp, nil
}

func results(prefix string, n int) []client.PlaceResult {
	out := make([]client.PlaceResult, n)
	for i := range out {
		out[i] = client.PlaceResult{PlaceID: fmt.Sprintf("%s%d", prefix, i), Name: fmt.Sprintf("%s %d", prefix, i)}
	}
	return out
}

func ids(rs []client.PlaceResult) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.PlaceID
	}
	return out
}

func TestDistance(t *testing.T) {
	assert.InDelta(t, 0, Distance(DefaultLocation, DefaultLocation), 1e-9)

	// San Francisco to Los Angeles is roughly 559 km
	la := Location{Latitude: 34.0522, Longitude: -118.2437}
	assert.InDelta(t, 559, Distance(DefaultLocation, la), 2)
}

func TestFormatDistance(t *testing.T) {
	assert.Equal(t, "250m", FormatDistance(0.25))
	assert.Equal(t, "999m", FormatDistance(0.999))
	assert.Equal(t, "1.0km", FormatDistance(1))
	assert.Equal(t, "12.3km", FormatDistance(12.34))
}

func TestResolve(t *testing.T) {
	here := Location{Latitude: 40.7128, Longitude: -74.0060}

	loc, fromUser := Resolve(t.Context(), &StaticLocator{Position: &here}, DefaultLocation, zerolog.Nop())
	assert.Equal(t, here, loc)
	assert.True(t, fromUser)

	loc, fromUser = Resolve(t.Context(), &StaticLocator{}, DefaultLocation, zerolog.Nop())
	assert.Equal(t, DefaultLocation, loc)
	assert.False(t, fromUser)

	loc, fromUser = Resolve(t.Context(), nil, DefaultLocation, zerolog.Nop())
	assert.Equal(t, DefaultLocation, loc)
	assert.False(t, fromUser)
}

func TestParseSortMode(t *testing.T) {
	mode, err := ParseSortMode("")
	require.NoError(t, err)
	assert.Equal(t, SortRelevance, mode)

	mode, err = ParseSortMode("rating")
	require.NoError(t, err)
	assert.Equal(t, SortRating, mode)

	_, err = ParseSortMode("price")
	assert.Error(t, err)
}

func TestFeed_SearchFillsDefaults(t *testing.T) {
	s := &fakeSearcher{pages: map[string]*client.PlacesSearchResponse{
		"": {Status: "OK", Results: results("a", 3)},
	}}

	feed := NewFeed(client.PlacesSearchRequest{Query: "sushi"}, DefaultLocation, false, "")
	require.NoError(t, feed.Search(t.Context(), s))

	require.Len(t, s.requests, 1)
	req := s.requests[0]
	assert.Equal(t, DefaultLocation.Latitude, req.Latitude)
	assert.Equal(t, DefaultLocation.Longitude, req.Longitude)
	assert.Equal(t, DefaultRadius, req.Radius)
	assert.Equal(t, RestaurantType, req.Type)
	assert.Equal(t, "sushi", req.Query)
	assert.Empty(t, req.PageToken)

	assert.Len(t, feed.Visible(), 3)
	assert.False(t, feed.CanLoadMore())
}

func TestFeed_LoadMoreRevealsLocalResultsBeforeFetching(t *testing.T) {
	s := &fakeSearcher{pages: map[string]*client.PlacesSearchResponse{
		"":   {Status: "OK", Results: results("a", 20), NextPageToken: "p2"},
		"p2": {Status: "OK", Results: results("b", 20)},
	}}

	feed := NewFeed(client.PlacesSearchRequest{}, DefaultLocation, false, SortRelevance)
	require.NoError(t, feed.Search(t.Context(), s))
	assert.Len(t, feed.Visible(), 12)
	assert.True(t, feed.HasMoreLocal())
	assert.True(t, feed.CanLoadMore())

	// 20 loaded, 12 shown: no fetch yet
	require.NoError(t, feed.LoadMore(t.Context(), s))
	assert.Len(t, s.requests, 1)
	assert.Len(t, feed.Visible(), 20)
	assert.False(t, feed.HasMoreLocal())
	assert.True(t, feed.CanLoadMore())

	// local results exhausted: fetch with the page token and append
	require.NoError(t, feed.LoadMore(t.Context(), s))
	require.Len(t, s.requests, 2)
	assert.Equal(t, "p2", s.requests[1].PageToken)
	assert.Equal(t, 40, feed.Loaded())
	assert.Len(t, feed.Visible(), 36)
	assert.Equal(t, "a0", feed.Visible()[0].PlaceID)
	assert.Equal(t, "b0", feed.Visible()[20].PlaceID)

	require.NoError(t, feed.LoadMore(t.Context(), s))
	assert.Len(t, feed.Visible(), 40)
	assert.False(t, feed.CanLoadMore())
	assert.ErrorIs(t, feed.LoadMore(t.Context(), s), ErrNoMoreResults)
}

func TestFeed_ZeroResultsIsEmpty(t *testing.T) {
	s := &fakeSearcher{pages: map[string]*client.PlacesSearchResponse{
		"": {Status: "ZERO_RESULTS"},
	}}

	feed := NewFeed(client.PlacesSearchRequest{}, DefaultLocation, false, "")
	require.NoError(t, feed.Search(t.Context(), s))
	assert.Empty(t, feed.Visible())
	assert.False(t, feed.CanLoadMore())
}

func TestFeed_ProviderFailure(t *testing.T) {
	s := &fakeSearcher{pages: map[string]*client.PlacesSearchResponse{
		"": {Status: "OVER_QUERY_LIMIT", ErrorMessage: "quota exceeded"},
	}}

	feed := NewFeed(client.PlacesSearchRequest{}, DefaultLocation, false, "")
	err := feed.Search(t.Context(), s)
	require.Error(t, err)

	var statusErr *client.PlacesStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, "OVER_QUERY_LIMIT", statusErr.Status)
	assert.EqualError(t, err, "quota exceeded")
}

func TestFeed_FailedPageKeepsLoadedResults(t *testing.T) {
	s := &fakeSearcher{pages: map[string]*client.PlacesSearchResponse{
		"": {Status: "OK", Results: results("a", 5), NextPageToken: "p2"},
	}}

	feed := NewFeed(client.PlacesSearchRequest{}, DefaultLocation, false, "")
	require.NoError(t, feed.Search(t.Context(), s))

	s.err = errors.New("connection refused")
	require.Error(t, feed.LoadMore(t.Context(), s))
	assert.Len(t, feed.Visible(), 5)
	assert.True(t, feed.CanLoadMore())
}

func TestFeed_SortByRating(t *testing.T) {
	s := &fakeSearcher{pages: map[string]*client.PlacesSearchResponse{
		"": {Status: "OK", Results: []client.PlaceResult{
			{PlaceID: "low", Rating: 3.1},
			{PlaceID: "none"},
			{PlaceID: "high", Rating: 4.8},
			{PlaceID: "mid", Rating: 4.0},
		}},
	}}

	feed := NewFeed(client.PlacesSearchRequest{}, DefaultLocation, false, SortRating)
	require.NoError(t, feed.Search(t.Context(), s))
	assert.Equal(t, []string{"high", "mid", "low", "none"}, ids(feed.Visible()))

	feed.SetSort(SortRelevance)
	assert.Equal(t, []string{"low", "none", "high", "mid"}, ids(feed.Visible()))
}

func at(id string, lat, lng float64) client.PlaceResult {
	return client.PlaceResult{PlaceID: id, Geometry: &client.Geometry{Location: client.LatLng{Lat: lat, Lng: lng}}}
}

func TestFeed_SortByDistanceNeedsUserPosition(t *testing.T) {
	page := &client.PlacesSearchResponse{Status: "OK", Results: []client.PlaceResult{
		at("far", 37.80, -122.27),
		at("near", 37.775, -122.419),
		at("mid", 37.76, -122.45),
	}}
	s := &fakeSearcher{pages: map[string]*client.PlacesSearchResponse{"": page}}

	feed := NewFeed(client.PlacesSearchRequest{}, DefaultLocation, true, SortDistance)
	require.NoError(t, feed.Search(t.Context(), s))
	assert.Equal(t, []string{"near", "mid", "far"}, ids(feed.Visible()))

	d, ok := feed.DistanceTo(feed.Visible()[0])
	assert.True(t, ok)
	assert.Equal(t, "37m", d)

	fallback := NewFeed(client.PlacesSearchRequest{}, DefaultLocation, false, SortDistance)
	require.NoError(t, fallback.Search(t.Context(), s))
	assert.Equal(t, []string{"far", "near", "mid"}, ids(fallback.Visible()))

	_, ok = fallback.DistanceTo(fallback.Visible()[0])
	assert.False(t, ok)
}

func TestFeed_SortByDistancePutsUnlocatedLast(t *testing.T) {
	page := &client.PlacesSearchResponse{Status: "OK", Results: []client.PlaceResult{
		{PlaceID: "nowhere-1"},
		at("far", 37.80, -122.27),
		{PlaceID: "nowhere-2"},
		at("near", 37.775, -122.419),
		{PlaceID: "nowhere-3"},
		at("mid", 37.76, -122.45),
	}}
	s := &fakeSearcher{pages: map[string]*client.PlacesSearchResponse{"": page}}

	feed := NewFeed(client.PlacesSearchRequest{}, DefaultLocation, true, SortDistance)
	require.NoError(t, feed.Search(t.Context(), s))
	assert.Equal(t, []string{"near", "mid", "far", "nowhere-1", "nowhere-2", "nowhere-3"}, ids(feed.Visible()))
}
