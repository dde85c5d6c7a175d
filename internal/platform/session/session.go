// Package session holds the authenticated doctor's user/token pair. The
// portal does not issue tokens; it stores the one the backend returned and
// inspects its expiry claim to decide whether push registration may proceed.
package session

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// User identifies the logged-in doctor.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Store is the process-wide session holder. Watchers are notified whenever
// the user/token pair changes (login and logout).
type Store struct {
	mu       sync.RWMutex
	user     *User
	token    string
	watchers []chan struct{}
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{}
}

// Set stores the authenticated user/token pair and notifies watchers.
func (s *Store) Set(user *User, token string) {
	s.mu.Lock()
	s.user = user
	s.token = token
	s.mu.Unlock()
	s.notify()
}

// Clear removes the session and notifies watchers.
func (s *Store) Clear() {
	s.mu.Lock()
	s.user = nil
	s.token = ""
	s.mu.Unlock()
	s.notify()
}

// Credentials returns the current user/token pair.
func (s *Store) Credentials() (*User, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user, s.token
}

// Authenticated reports whether a user/token pair is present and the token
// is not past its expiry claim.
func (s *Store) Authenticated() bool {
	s.mu.RLock()
	user, token := s.user, s.token
	s.mu.RUnlock()
	if user == nil || token == "" {
		return false
	}
	return !tokenExpired(token)
}

// Watch returns a channel that receives a signal on every session change.
// The channel has a buffer of one; coalesced signals are fine since
// consumers re-read the session state on each wakeup.
func (s *Store) Watch() <-chan struct{} {
	ch := make(chan struct{}, 1)
	s.mu.Lock()
	s.watchers = append(s.watchers, ch)
	s.mu.Unlock()
	return ch
}

func (s *Store) notify() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// tokenExpired inspects the token's exp claim without verifying the
// signature; the portal is a client of the backend, not the issuer.
// Opaque tokens and tokens without an expiry are treated as live.
func tokenExpired(token string) bool {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
