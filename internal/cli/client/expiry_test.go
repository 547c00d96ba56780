package client

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodcritic-dev/foodcritic/internal/cli/session"
)

type expiryRecorder struct {
	mu       sync.Mutex
	messages []string
	paths    []string
}

func (r *expiryRecorder) Notify(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
}

func (r *expiryRecorder) Navigate(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
}

func newSessionClient(t *testing.T, handler http.Handler) (*Client, *session.Store, *session.MemoryStorage, *expiryRecorder) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	storage := session.NewMemoryStorage()
	store := session.NewStore(storage)
	rec := &expiryRecorder{}
	listener := session.Listen(store, rec, rec)
	t.Cleanup(listener.Close)

	c := New(srv.URL+"/api", WithSession(store), WithExpirySignal(store))
	return c, store, storage, rec
}

func TestExpiredTokenOnReviewUpdateEndsSession(t *testing.T) {
	var gotAuth string
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /api/restaurants/42/reviews/7", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		writeJSON(w, http.StatusForbidden, map[string]string{"message": "Token expired"})
	})

	c, store, storage, rec := newSessionClient(t, mux)
	store.Login("abc", session.UserProfile{ID: 1, Username: "alice", Role: session.RoleUser})

	_, err := c.UpdateReview(t.Context(), "42", 7, ReviewRequest{Rating: 4})
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusForbidden))

	assert.Equal(t, "Bearer abc", gotAuth)
	assert.False(t, store.Authenticated())
	assert.Nil(t, store.User())

	_, ok, _ := storage.Get(session.TokenKey)
	assert.False(t, ok)
	_, ok, _ = storage.Get(session.UserKey)
	assert.False(t, ok)

	assert.Equal(t, []string{session.ExpiredMessage}, rec.messages)
	assert.Equal(t, []string{session.LandingPath}, rec.paths)
}

func TestConcurrentRejectionsRedirectOnce(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/users/profile", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("GET /api/users/my-reviews", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	c, store, _, rec := newSessionClient(t, mux)
	store.Login("abc", session.UserProfile{ID: 1, Username: "alice"})

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = c.Profile(t.Context())
		}()
		go func() {
			defer wg.Done()
			_, _ = c.MyReviews(t.Context())
		}()
	}
	wg.Wait()

	assert.False(t, store.Authenticated())
	assert.Len(t, rec.messages, 1)
	assert.Len(t, rec.paths, 1)
}

func TestNeutralRejectionKeepsSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/restaurants/42/reviews", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	c, store, _, rec := newSessionClient(t, mux)
	store.Login("abc", session.UserProfile{ID: 1, Username: "alice"})

	_, err := c.ListReviews(t.Context(), "42")
	require.Error(t, err)

	assert.True(t, store.Authenticated())
	assert.Empty(t, rec.paths)
}

func TestHydrateWithRejectedTokenEndsSessionOnce(t *testing.T) {
	// The startup probe goes through the client, so a 401 there both fails
	// validation and signals expiry. The session must end exactly once.
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/users/profile", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	storage := session.NewMemoryStorage()
	require.NoError(t, storage.Set(session.TokenKey, "abc"))
	require.NoError(t, storage.Set(session.UserKey, `{"id":1,"username":"alice","email":"a@x.io","role":"USER","createdAt":""}`))

	store := session.NewStore(storage)
	rec := &expiryRecorder{}
	listener := session.Listen(store, rec, rec)
	t.Cleanup(listener.Close)

	c := New(srv.URL+"/api", WithSession(store), WithExpirySignal(store))
	store.Hydrate(t.Context(), c)
	require.NoError(t, store.Wait(t.Context()))

	assert.False(t, store.Authenticated())
	assert.Len(t, rec.paths, 1)
}
