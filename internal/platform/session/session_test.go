package session

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"testing"
	"time"
)

// buildToken assembles an unsigned JWT with the given claims; the store only
// inspects claims and never verifies signatures.
func buildToken(t *testing.T, claims map[string]interface{}) string {
	t.Helper()
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none","typ":"JWT"}`))
	payload, err := json.Marshal(claims)
	if err != nil {
		t.Fatalf("marshaling claims: %v", err)
	}
	return fmt.Sprintf("%s.%s.", header, base64.RawURLEncoding.EncodeToString(payload))
}

func TestStore_EmptySessionNotAuthenticated(t *testing.T) {
	s := NewStore()
	if s.Authenticated() {
		t.Error("empty store must not be authenticated")
	}
}

func TestStore_SetAndClear(t *testing.T) {
	s := NewStore()
	s.Set(&User{ID: 1, Name: "Dr. Smith"}, "opaque-token")

	if !s.Authenticated() {
		t.Error("expected authenticated session after Set")
	}
	user, token := s.Credentials()
	if user == nil || user.ID != 1 || token != "opaque-token" {
		t.Errorf("unexpected credentials: %+v %q", user, token)
	}

	s.Clear()
	if s.Authenticated() {
		t.Error("expected unauthenticated session after Clear")
	}
}

func TestStore_ExpiredTokenNotAuthenticated(t *testing.T) {
	s := NewStore()
	expired := buildToken(t, map[string]interface{}{
		"sub": "1",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	s.Set(&User{ID: 1}, expired)

	if s.Authenticated() {
		t.Error("expired token must not count as authenticated")
	}
}

func TestStore_LiveTokenAuthenticated(t *testing.T) {
	s := NewStore()
	live := buildToken(t, map[string]interface{}{
		"sub": "1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	s.Set(&User{ID: 1}, live)

	if !s.Authenticated() {
		t.Error("live token must count as authenticated")
	}
}

func TestStore_TokenWithoutExpiryIsLive(t *testing.T) {
	s := NewStore()
	s.Set(&User{ID: 1}, buildToken(t, map[string]interface{}{"sub": "1"}))

	if !s.Authenticated() {
		t.Error("token without exp claim must count as authenticated")
	}
}

func TestStore_WatchSignalsOnChange(t *testing.T) {
	s := NewStore()
	ch := s.Watch()

	s.Set(&User{ID: 1}, "token")
	select {
	case <-ch:
	default:
		t.Fatal("expected watch signal after Set")
	}

	s.Clear()
	select {
	case <-ch:
	default:
		t.Fatal("expected watch signal after Clear")
	}
}

func TestStore_WatchCoalesces(t *testing.T) {
	s := NewStore()
	ch := s.Watch()

	// Two rapid changes collapse into one pending signal; watchers re-read
	// the state, so nothing is lost.
	s.Set(&User{ID: 1}, "a")
	s.Set(&User{ID: 2}, "b")

	<-ch
	select {
	case <-ch:
		t.Error("expected coalesced signal, got a second one")
	default:
	}
}
