package session

import (
	"sync"

	"github.com/rs/zerolog"
)

// ExpiredMessage is shown to the user when the backend rejects the session
const ExpiredMessage = "Your session has expired. Please log in again."

// LandingPath is where the user is sent after the session expires
const LandingPath = "/"

// Notifier surfaces a message to the user
type Notifier interface {
	Notify(message string)
}

// NotifierFunc adapts a func to Notifier
type NotifierFunc func(message string)

func (f NotifierFunc) Notify(message string) { f(message) }

// Navigator moves the user to another place in the application
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a func to Navigator
type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) { f(path) }

// Listener reacts to the session-expired signal by clearing the session,
// telling the user, and sending them to the landing page.
type Listener struct {
	store     *Store
	notifier  Notifier
	navigator Navigator
	log       zerolog.Logger

	unsubscribe func()
	closeOnce   sync.Once
}

// ListenerOption configures a Listener
type ListenerOption func(*Listener)

// WithListenerLogger sets the listener's logger
func WithListenerLogger(log zerolog.Logger) ListenerOption {
	return func(l *Listener) {
		l.log = log
	}
}

// Listen subscribes a Listener to store. Call Close at teardown.
func Listen(store *Store, notifier Notifier, navigator Navigator, opts ...ListenerOption) *Listener {
	l := &Listener{
		store:     store,
		notifier:  notifier,
		navigator: navigator,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.unsubscribe = store.Subscribe(l.handleExpired)
	return l
}

// handleExpired only notifies and navigates when it was the call that cleared
// an authenticated session, so a burst of signals yields a single redirect.
func (l *Listener) handleExpired() {
	if !l.store.Clear() {
		l.log.Debug().Msg("Session already cleared, ignoring expiry signal")
		return
	}

	l.log.Warn().Msg("Authentication expired, session cleared")

	if l.notifier != nil {
		l.notifier.Notify(ExpiredMessage)
	}
	if l.navigator != nil {
		l.navigator.Navigate(LandingPath)
	}
}

// Close removes the subscription
func (l *Listener) Close() {
	l.closeOnce.Do(l.unsubscribe)
}
