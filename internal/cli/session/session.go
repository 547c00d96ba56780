// Package session owns the client-side authentication state: the bearer token
// and the profile of the signed-in user, their persistence, and the
// session-expired signal raised when the backend rejects the token.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

// Role of a user account
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// UserProfile is the signed-in user as returned by the backend
type UserProfile struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	Role         Role   `json:"role"`
	ProfilePhoto string `json:"profilePhoto,omitempty"`
	CreatedAt    string `json:"createdAt"`
}

// Session is a point-in-time copy of the store's state.
// Token is non-empty exactly when User is non-nil.
type Session struct {
	Token string
	User  *UserProfile
}

// Authenticated reports whether the snapshot holds a session
func (s Session) Authenticated() bool {
	return s.Token != "" && s.User != nil
}

// ProfileValidator re-fetches the current profile with the stored token
type ProfileValidator interface {
	Profile(ctx context.Context) (*UserProfile, error)
}

// authFailure is implemented by errors that represent a 401/403 from the backend
type authFailure interface {
	AuthFailure() bool
}

// IsAuthFailure reports whether err says the credential was rejected
func IsAuthFailure(err error) bool {
	var af authFailure
	return errors.As(err, &af) && af.AuthFailure()
}

type subscriber struct {
	id int
	fn func()
}

// Store holds the session in memory and mirrors it to Storage
type Store struct {
	storage Storage
	log     zerolog.Logger

	mu      sync.RWMutex
	token   string
	user    *UserProfile
	loading bool
	ready   chan struct{}

	subMu  sync.Mutex
	subs   []subscriber
	nextID int
}

// Option configures a Store
type Option func(*Store)

// WithLogger sets the logger used for persistence and validation warnings
func WithLogger(log zerolog.Logger) Option {
	return func(s *Store) {
		s.log = log
	}
}

// NewStore creates an anonymous store backed by storage
func NewStore(storage Storage, opts ...Option) *Store {
	s := &Store{
		storage: storage,
		log:     zerolog.Nop(),
		ready:   closedChan(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Hydrate restores the persisted session and, when there is one, validates it
// in the background by fetching the profile once. The restored session is
// visible immediately; Loading stays true until validation settles.
//
// An auth failure during validation clears the session. Any other failure keeps
// it, since the token may still be good.
func (s *Store) Hydrate(ctx context.Context, validator ProfileValidator) {
	token, user, ok := s.readPersisted()

	s.mu.Lock()
	if !ok {
		s.token = ""
		s.user = nil
		s.loading = false
		s.ready = closedChan()
		s.mu.Unlock()
		return
	}

	ready := make(chan struct{})
	s.token = token
	s.user = user
	s.loading = true
	s.ready = ready
	s.mu.Unlock()

	if validator == nil {
		s.settle(ready)
		return
	}

	go s.validate(ctx, validator, token, ready)
}

func (s *Store) validate(ctx context.Context, validator ProfileValidator, token string, ready chan struct{}) {
	defer s.settle(ready)

	profile, err := validator.Profile(ctx)
	if err != nil {
		if IsAuthFailure(err) {
			s.log.Warn().Err(err).Msg("Token validation failed, logging out user")
			s.clearToken(token)
			return
		}
		s.log.Warn().Err(err).Msg("Error during token validation, keeping user logged in")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token != token || profile == nil {
		return
	}
	s.setUserLocked(*profile)
}

func (s *Store) settle(ready chan struct{}) {
	s.mu.Lock()
	if s.ready == ready {
		s.loading = false
	}
	s.mu.Unlock()
	close(ready)
}

// Login replaces any current session with token and user. An empty
// token leaves the store unchanged.
func (s *Store) Login(token string, user UserProfile) {
	if token == "" {
		s.log.Warn().Str("username", user.Username).Msg("Ignoring login without a token")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
	s.persist(TokenKey, token)
	s.setUserLocked(user)
}

// Logout clears the session. Calling it without a session is a no-op.
func (s *Store) Logout() {
	s.Clear()
}

// Clear removes the session and reports whether one was present
func (s *Store) Clear() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clearLocked()
}

// clearToken clears the session only if it still holds token
func (s *Store) clearToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == token {
		s.clearLocked()
	}
}

func (s *Store) clearLocked() bool {
	had := s.token != "" || s.user != nil
	s.token = ""
	s.user = nil
	s.remove(TokenKey)
	s.remove(UserKey)
	return had
}

// UpdateUser replaces the profile of the current session. Without a session
// the call is ignored.
func (s *Store) UpdateUser(user UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token == "" {
		s.log.Warn().Str("username", user.Username).Msg("Ignoring profile update without a session")
		return
	}
	s.setUserLocked(user)
}

func (s *Store) setUserLocked(user UserProfile) {
	s.user = &user

	data, err := json.Marshal(user)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to encode user profile")
		return
	}
	s.persist(UserKey, string(data))
}

// Token returns the bearer token, or "" when anonymous
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the current profile, or nil when anonymous
func (s *Store) User() *UserProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Snapshot returns a copy of the whole session
func (s *Store) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Session{Token: s.token}
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	return snap
}

// Authenticated reports whether a session is present
func (s *Store) Authenticated() bool {
	return s.Snapshot().Authenticated()
}

// Loading reports whether startup validation is still in flight
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Ready returns a channel closed once startup validation has settled
func (s *Store) Ready() <-chan struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Wait blocks until startup validation has settled or ctx is done
func (s *Store) Wait(ctx context.Context) error {
	select {
	case <-s.Ready():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe registers fn for the session-expired signal. The returned func
// removes the subscription and is safe to call more than once.
func (s *Store) Subscribe(fn func()) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			defer s.subMu.Unlock()
			for i, sub := range s.subs {
				if sub.id == id {
					s.subs = append(s.subs[:i], s.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// SignalExpired notifies every subscriber that the backend rejected the token.
// Subscribers run synchronously on the calling goroutine.
func (s *Store) SignalExpired() {
	s.subMu.Lock()
	subs := make([]subscriber, len(s.subs))
	copy(subs, s.subs)
	s.subMu.Unlock()

	for _, sub := range subs {
		sub.fn()
	}
}

func (s *Store) readPersisted() (string, *UserProfile, bool) {
	token, hasToken, err := s.storage.Get(TokenKey)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to read stored token")
		return "", nil, false
	}
	rawUser, hasUser, err := s.storage.Get(UserKey)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to read stored user")
		return "", nil, false
	}

	if !hasToken || !hasUser || token == "" {
		if hasToken || hasUser {
			s.log.Debug().Msg("Discarding incomplete stored session")
			s.remove(TokenKey)
			s.remove(UserKey)
		}
		return "", nil, false
	}

	var user UserProfile
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		s.log.Warn().Err(err).Msg("Discarding unreadable stored user")
		s.remove(TokenKey)
		s.remove(UserKey)
		return "", nil, false
	}

	return token, &user, true
}

func (s *Store) persist(key, value string) {
	if err := s.storage.Set(key, value); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Failed to persist session")
	}
}

func (s *Store) remove(key string) {
	if err := s.storage.Delete(key); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Failed to remove persisted session")
	}
}

func closedChan() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
