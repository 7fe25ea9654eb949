// Package session holds the authenticated user and token for one browser
// session. The manager is dependency-injected; there is no package-level
// session state.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"github.com/clothex/storefront/backend"
)

// RoleAdmin gates the admin console routes.
const RoleAdmin = "admin"

// ErrProfileUnavailable is returned when the profile behind a persisted
// token cannot be resolved after the bounded retries; the session is
// fully cleared in that case, token included.
var ErrProfileUnavailable = errors.New("session: could not resolve profile")

// ProfileService resolves the user behind the session's current token.
type ProfileService interface {
	GetProfile(ctx context.Context) (*backend.User, error)
}

// Session is the per-browser authentication state. A token without a
// resolved user is a transient "resolving" state and never counts as
// authenticated.
type Session struct {
	mu    sync.Mutex
	id    string
	token string
	user  *backend.User
}

// New creates an anonymous session.
func New(id string) *Session {
	return &Session{id: id}
}

// ID returns the session identifier (the session cookie value).
func (s *Session) ID() string {
	return s.id
}

// Token implements backend.TokenSource.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// User returns the resolved user, or nil.
func (s *Session) User() *backend.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Authenticated reports whether the session holds both a token and a
// resolved user.
func (s *Session) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != "" && s.user != nil
}

// Resolving reports the token-present, user-absent state. Callers must
// not act on a resolving session as if it were authenticated.
func (s *Session) Resolving() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != "" && s.user == nil
}

// Role returns the resolved user's role, or "".
func (s *Session) Role() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return ""
	}
	return s.user.Role
}

// Hydrate installs token and resolves the profile behind it, retrying up
// to retries extra times. A token whose profile cannot be resolved is
// dropped entirely: the session ends fully cleared rather than
// half-authenticated.
func (s *Session) Hydrate(ctx context.Context, token string, profiles ProfileService, retries int) error {
	if TokenExpired(token) {
		s.Clear()
		return ErrProfileUnavailable
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	var user *backend.User
	var err error
	for attempt := 0; attempt <= retries; attempt++ {
		user, err = profiles.GetProfile(ctx)
		if err == nil {
			break
		}
		if backend.IsAuthError(err) {
			break
		}
	}
	if err != nil {
		s.Clear()
		return errors.Wrap(ErrProfileUnavailable, err.Error())
	}

	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
	return nil
}

// Clear drops token and user together.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = nil
}

// TokenExpired peeks at the token's exp claim without verifying the
// signature; verification stays server-side. Unparseable tokens are
// treated as expired.
func TokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}

// Manager hands out sessions keyed by session ID.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates an empty Manager.
func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// Get returns the session for id, creating it when absent.
func (m *Manager) Get(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		s = New(id)
		m.sessions[id] = s
	}
	return s
}

// Drop removes the session for id.
func (m *Manager) Drop(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}
