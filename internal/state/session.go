// internal/state/session.go
package state

import (
	"context"
	"sync"

	"github.com/healthy-eats/storefront/internal/domain/user"
	"github.com/sirupsen/logrus"
)

// Session is a point-in-time view of the session store
type Session struct {
	CurrentUser *user.User
	Loading     bool
}

// Authenticated reports whether a user is present
func (s Session) Authenticated() bool {
	return s.CurrentUser != nil
}

// SessionStore holds the current user. Loading is true until the first
// identity check resolves and is never set back to true.
type SessionStore struct {
	api    SessionAPI
	logger logrus.FieldLogger

	mu      sync.RWMutex
	current *user.User
	loading bool
	version uint64

	restoreOnce sync.Once
	ready       chan struct{}

	listeners listeners[Session]
}

// NewSessionStore creates a store in the loading state
func NewSessionStore(api SessionAPI, logger logrus.FieldLogger) *SessionStore {
	return &SessionStore{
		api:     api,
		logger:  logger,
		loading: true,
		ready:   make(chan struct{}),
	}
}

// Restore asks the backend who is logged in. Any failure means nobody is.
// It only ever runs once; later calls are no-ops.
func (s *SessionStore) Restore(ctx context.Context) {
	s.restoreOnce.Do(func() {
		s.mu.RLock()
		startVersion := s.version
		s.mu.RUnlock()

		current, err := s.api.Me(ctx)
		if err != nil {
			s.logger.WithError(err).Debug("Session restore failed, continuing anonymously")
			current = nil
		}

		s.mu.Lock()
		// a login or logout that finished first is newer than this answer
		if s.version == startVersion {
			s.current = current
			s.version++
		}
		s.loading = false
		snapshot := s.snapshotLocked()
		s.mu.Unlock()

		close(s.ready)
		s.listeners.notify(snapshot)
	})
}

// Ready is closed once Restore has finished
func (s *SessionStore) Ready() <-chan struct{} {
	return s.ready
}

// Login authenticates and replaces the current user. On failure the store is
// left unchanged and the error is returned.
func (s *SessionStore) Login(ctx context.Context, email, password string) error {
	u, err := s.api.Login(ctx, email, password)
	if err != nil {
		return err
	}
	s.set(u)
	return nil
}

// Register creates an account and logs it in, with the same contract as Login.
// Password confirmation is the caller's job.
func (s *SessionStore) Register(ctx context.Context, email, password string) error {
	u, err := s.api.Register(ctx, email, password)
	if err != nil {
		return err
	}
	s.set(u)
	return nil
}

// Logout ends the backend session. The local user is cleared only when the
// call succeeds; a failed call keeps the user and returns the error.
func (s *SessionStore) Logout(ctx context.Context) error {
	if err := s.api.Logout(ctx); err != nil {
		return err
	}
	s.set(nil)
	return nil
}

// Snapshot returns the current state
func (s *SessionStore) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// CurrentUser returns the logged in user or nil
func (s *SessionStore) CurrentUser() *user.User {
	return s.Snapshot().CurrentUser
}

// Loading reports whether the session is still being restored
func (s *SessionStore) Loading() bool {
	return s.Snapshot().Loading
}

// Subscribe registers fn for every state change and returns an unsubscribe func
func (s *SessionStore) Subscribe(fn func(Session)) func() {
	return s.listeners.subscribe(fn)
}

func (s *SessionStore) set(u *user.User) {
	s.mu.Lock()
	s.current = u
	s.version++
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.listeners.notify(snapshot)
}

func (s *SessionStore) snapshotLocked() Session {
	var current *user.User
	if s.current != nil {
		copied := *s.current
		current = &copied
	}
	return Session{CurrentUser: current, Loading: s.loading}
}
