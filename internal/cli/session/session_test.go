package session

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// statusError mimics an API error that knows whether it is a 401/403
type statusError struct {
	status int
}

func (e *statusError) Error() string     { return fmt.Sprintf("request failed (status %d)", e.status) }
func (e *statusError) AuthFailure() bool { return e.status == 401 || e.status == 403 }

// stubValidator returns a fixed profile or error and counts calls
type stubValidator struct {
	profile *UserProfile
	err     error
	calls   int
	block   chan struct{}
}

func (v *stubValidator) Profile(ctx context.Context) (*UserProfile, error) {
	v.calls++
	if v.block != nil {
		<-v.block
	}
	return v.profile, v.err
}

// brokenStorage fails every write
type brokenStorage struct {
	*MemoryStorage
}

func (b brokenStorage) Set(key, value string) error { return errors.New("disk full") }

func testUser() UserProfile {
	return UserProfile{
		ID:        1,
		Username:  "alice",
		Email:     "alice@example.com",
		Role:      RoleUser,
		CreatedAt: "2024-05-01T10:00:00",
	}
}

func waitReady(t *testing.T, store *Store) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, store.Wait(ctx))
}

func TestStore_LoginThenHydrateRestoresSession(t *testing.T) {
	storage := NewMemoryStorage()
	store := NewStore(storage)
	store.Login("abc", testUser())

	reloaded := NewStore(storage)
	reloaded.Hydrate(context.Background(), nil)

	snap := reloaded.Snapshot()
	require.True(t, snap.Authenticated())
	assert.Equal(t, "abc", snap.Token)
	assert.Equal(t, testUser(), *snap.User)
	assert.False(t, reloaded.Loading())
}

func TestStore_LogoutClearsMemoryAndStorage(t *testing.T) {
	storage := NewMemoryStorage()
	store := NewStore(storage)
	store.Login("abc", testUser())

	store.Logout()

	assert.Empty(t, store.Token())
	assert.Nil(t, store.User())
	_, ok, _ := storage.Get(TokenKey)
	assert.False(t, ok)
	_, ok, _ = storage.Get(UserKey)
	assert.False(t, ok)

	reloaded := NewStore(storage)
	reloaded.Hydrate(context.Background(), &stubValidator{})
	assert.False(t, reloaded.Authenticated())
	assert.False(t, reloaded.Loading())
}

func TestStore_LogoutIsIdempotent(t *testing.T) {
	store := NewStore(NewMemoryStorage())
	store.Logout()
	store.Logout()
	assert.False(t, store.Authenticated())
	assert.False(t, store.Clear())
}

func TestStore_LoginOverwritesPreviousSession(t *testing.T) {
	store := NewStore(NewMemoryStorage())
	store.Login("first", testUser())

	bob := testUser()
	bob.ID = 2
	bob.Username = "bob"
	store.Login("second", bob)

	assert.Equal(t, "second", store.Token())
	assert.Equal(t, "bob", store.User().Username)
}

func TestStore_LoginWithoutTokenIsIgnored(t *testing.T) {
	storage := NewMemoryStorage()
	store := NewStore(storage)

	store.Login("", testUser())

	assert.Empty(t, store.Token())
	assert.Nil(t, store.User())
	_, ok, _ := storage.Get(UserKey)
	assert.False(t, ok)

	store.Login("abc", testUser())
	store.Login("", testUser())

	snap := store.Snapshot()
	require.True(t, snap.Authenticated())
	assert.Equal(t, "abc", snap.Token)
}

func TestStore_UpdateUserReplacesProfileKeepsToken(t *testing.T) {
	storage := NewMemoryStorage()
	store := NewStore(storage)
	store.Login("abc", testUser())

	updated := testUser()
	updated.ProfilePhoto = "http://localhost:8080/uploads/me.png"
	store.UpdateUser(updated)

	assert.Equal(t, "abc", store.Token())
	assert.Equal(t, updated, *store.User())

	reloaded := NewStore(storage)
	reloaded.Hydrate(context.Background(), nil)
	assert.Equal(t, updated.ProfilePhoto, reloaded.User().ProfilePhoto)
}

func TestStore_UpdateUserWithoutSessionIsIgnored(t *testing.T) {
	storage := NewMemoryStorage()
	store := NewStore(storage)

	store.UpdateUser(testUser())

	assert.False(t, store.Authenticated())
	_, ok, _ := storage.Get(UserKey)
	assert.False(t, ok)
}

func TestStore_UserReturnsCopy(t *testing.T) {
	store := NewStore(NewMemoryStorage())
	store.Login("abc", testUser())

	u := store.User()
	u.Username = "mallory"

	assert.Equal(t, "alice", store.User().Username)
}

func TestStore_PersistenceFailuresAreNotFatal(t *testing.T) {
	store := NewStore(brokenStorage{NewMemoryStorage()})

	store.Login("abc", testUser())

	assert.Equal(t, "abc", store.Token())
	assert.True(t, store.Authenticated())
}

func TestStore_HydrateWithoutSessionIsReadyImmediately(t *testing.T) {
	validator := &stubValidator{}
	store := NewStore(NewMemoryStorage())

	store.Hydrate(context.Background(), validator)

	assert.False(t, store.Loading())
	waitReady(t, store)
	assert.Equal(t, 0, validator.calls)
}

func TestStore_HydrateDiscardsIncompleteSession(t *testing.T) {
	storage := NewMemoryStorage()
	require.NoError(t, storage.Set(TokenKey, "abc"))

	store := NewStore(storage)
	store.Hydrate(context.Background(), nil)

	assert.False(t, store.Authenticated())
	_, ok, _ := storage.Get(TokenKey)
	assert.False(t, ok)
}

func TestStore_HydrateDiscardsUnreadableUser(t *testing.T) {
	storage := NewMemoryStorage()
	require.NoError(t, storage.Set(TokenKey, "abc"))
	require.NoError(t, storage.Set(UserKey, "{not json"))

	store := NewStore(storage)
	store.Hydrate(context.Background(), nil)

	assert.False(t, store.Authenticated())
}

func TestStore_HydrateExposesSessionWhileValidating(t *testing.T) {
	storage := NewMemoryStorage()
	NewStore(storage).Login("abc", testUser())

	validator := &stubValidator{profile: ptr(testUser()), block: make(chan struct{})}
	store := NewStore(storage)
	store.Hydrate(context.Background(), validator)

	assert.True(t, store.Loading())
	assert.Equal(t, "abc", store.Token())

	close(validator.block)
	waitReady(t, store)
	assert.False(t, store.Loading())
}

func TestStore_HydrateRefreshesProfile(t *testing.T) {
	storage := NewMemoryStorage()
	NewStore(storage).Login("abc", testUser())

	fresh := testUser()
	fresh.Role = RoleAdmin
	store := NewStore(storage)
	store.Hydrate(context.Background(), &stubValidator{profile: &fresh})
	waitReady(t, store)

	assert.Equal(t, RoleAdmin, store.User().Role)
	raw, _, _ := storage.Get(UserKey)
	assert.Contains(t, raw, `"role":"ADMIN"`)
}

func TestStore_HydrateAuthFailureClearsSession(t *testing.T) {
	for _, status := range []int{401, 403} {
		t.Run(fmt.Sprint(status), func(t *testing.T) {
			storage := NewMemoryStorage()
			NewStore(storage).Login("abc", testUser())

			store := NewStore(storage)
			store.Hydrate(context.Background(), &stubValidator{err: fmt.Errorf("failed to fetch profile: %w", &statusError{status: status})})
			waitReady(t, store)

			assert.False(t, store.Authenticated())
			_, ok, _ := storage.Get(TokenKey)
			assert.False(t, ok)
		})
	}
}

func TestStore_HydrateTransientFailureKeepsSession(t *testing.T) {
	for name, err := range map[string]error{
		"network": errors.New("dial tcp 127.0.0.1:8080: connect: connection refused"),
		"server":  &statusError{status: 500},
	} {
		t.Run(name, func(t *testing.T) {
			storage := NewMemoryStorage()
			NewStore(storage).Login("abc", testUser())

			store := NewStore(storage)
			validator := &stubValidator{err: err}
			store.Hydrate(context.Background(), validator)
			waitReady(t, store)

			assert.Equal(t, 1, validator.calls)
			assert.Equal(t, "abc", store.Token())
			assert.Equal(t, testUser(), *store.User())
		})
	}
}

func TestStore_HydrateFailureDoesNotEvictNewerLogin(t *testing.T) {
	storage := NewMemoryStorage()
	NewStore(storage).Login("old", testUser())

	validator := &stubValidator{err: &statusError{status: 401}, block: make(chan struct{})}
	store := NewStore(storage)
	store.Hydrate(context.Background(), validator)

	store.Login("new", testUser())
	close(validator.block)
	waitReady(t, store)

	assert.Equal(t, "new", store.Token())
}

func TestStore_WaitHonoursContext(t *testing.T) {
	storage := NewMemoryStorage()
	NewStore(storage).Login("abc", testUser())

	validator := &stubValidator{block: make(chan struct{})}
	defer close(validator.block)

	store := NewStore(storage)
	store.Hydrate(context.Background(), validator)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, store.Wait(ctx), context.DeadlineExceeded)
}

func TestStore_SubscribeAndSignal(t *testing.T) {
	store := NewStore(NewMemoryStorage())

	var a, b int
	unsubA := store.Subscribe(func() { a++ })
	store.Subscribe(func() { b++ })

	store.SignalExpired()
	unsubA()
	unsubA()
	store.SignalExpired()

	assert.Equal(t, 1, a)
	assert.Equal(t, 2, b)
}

func TestIsAuthFailure(t *testing.T) {
	assert.True(t, IsAuthFailure(fmt.Errorf("wrapped: %w", &statusError{status: 401})))
	assert.False(t, IsAuthFailure(&statusError{status: 404}))
	assert.False(t, IsAuthFailure(errors.New("boom")))
	assert.False(t, IsAuthFailure(nil))
}

func ptr[T any](v T) *T {
	return &v
}
