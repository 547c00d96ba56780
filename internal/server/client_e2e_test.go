package server

import (
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodcritic-dev/foodcritic/internal/cli/client"
	"github.com/foodcritic-dev/foodcritic/internal/cli/places"
	"github.com/foodcritic-dev/foodcritic/internal/cli/session"
	"github.com/foodcritic-dev/foodcritic/internal/models"
)

type recorder struct {
	mu       sync.Mutex
	messages []string
	paths    []string
}

func (r *recorder) Notify(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
}

func (r *recorder) Navigate(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
}

// The CLI client against the real backend: sign up, review, then lose the
// account server side and watch the session end.
func TestClientAgainstBackend(t *testing.T) {
	srv, ts := newTestServer(t)
	ctx := t.Context()

	store := session.NewStore(session.NewMemoryStorage())
	rec := &recorder{}
	listener := session.Listen(store, rec, rec)
	t.Cleanup(listener.Close)

	api := client.New(ts.URL+"/api", client.WithSession(store), client.WithExpirySignal(store))

	registered, err := api.Register(ctx, client.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	store.Login(registered.Token, registered.Profile())

	profile, err := api.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.Username)
	assert.Equal(t, session.RoleUser, profile.Role)
	assert.NotEmpty(t, profile.CreatedAt)

	restaurants, err := api.ListRestaurants(ctx)
	require.NoError(t, err)
	require.Len(t, restaurants, len(models.SeedRestaurants))
	restaurantID := restaurants[0].ID

	_, err = api.MyReview(ctx, restaurantID)
	assert.ErrorIs(t, err, client.ErrReviewNotFound)

	review, err := api.CreateReview(ctx, restaurantID, client.ReviewRequest{Rating: 4, Comment: "Lovely"})
	require.NoError(t, err)
	assert.Equal(t, "alice", review.User.Username)
	assert.Equal(t, restaurantID, review.RestaurantID)

	mine, err := api.MyReview(ctx, restaurantID)
	require.NoError(t, err)
	assert.Equal(t, review.ID, mine.ID)

	recent, err := api.RecentReviews(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recent, 1)

	// Search runs through the feed exactly as the search command does
	feed := places.NewFeed(client.PlacesSearchRequest{}, places.Location{Latitude: originLat, Longitude: originLng}, true, places.SortDistance)
	require.NoError(t, feed.Search(ctx, api))
	assert.Len(t, feed.Visible(), places.PageSize)
	assert.Equal(t, len(models.SeedRestaurants), feed.Loaded())
	require.NoError(t, feed.LoadMore(ctx, api))
	assert.Len(t, feed.Visible(), len(models.SeedRestaurants))
	assert.False(t, feed.CanLoadMore())
	assert.True(t, errors.Is(feed.LoadMore(ctx, api), places.ErrNoMoreResults))

	require.Empty(t, rec.messages)

	// The account disappears server side, so the token stops working
	require.NoError(t, srv.GetDB().Delete(&models.User{}, registered.ID).Error)

	_, err = api.UpdateReview(ctx, restaurantID, review.ID, client.ReviewRequest{Rating: 5})
	require.Error(t, err)
	assert.True(t, client.IsStatus(err, http.StatusUnauthorized))

	assert.False(t, store.Authenticated())
	assert.Equal(t, []string{session.ExpiredMessage}, rec.messages)
	assert.Equal(t, []string{session.LandingPath}, rec.paths)

	// Anonymous again: public routes still work and nothing else is signalled
	_, err = api.ListRestaurants(ctx)
	require.NoError(t, err)
	assert.Len(t, rec.messages, 1)
}

func TestClientLoginFailureKeepsSessionAlone(t *testing.T) {
	_, ts := newTestServer(t)

	store := session.NewStore(session.NewMemoryStorage())
	rec := &recorder{}
	listener := session.Listen(store, rec, rec)
	t.Cleanup(listener.Close)

	api := client.New(ts.URL+"/api", client.WithSession(store), client.WithExpirySignal(store))

	_, err := api.Login(t.Context(), client.LoginRequest{Username: "nobody", Password: "wrong"})
	require.Error(t, err)
	assert.True(t, client.IsStatus(err, http.StatusUnauthorized))
	assert.Empty(t, rec.messages)
}
