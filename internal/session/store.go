package session

import (
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// Backend persists the raw token. Implementations decide where: a response
// cookie for browser requests, memory for tests and embedders.
type Backend interface {
	Get() (string, bool)
	Set(value string, maxAge time.Duration)
	Clear()
}

// Store is the single writer of the credential.
type Store struct {
	backend Backend
	now     func() time.Time
}

// NewStore wraps a backend.
func NewStore(backend Backend) *Store {
	return &Store{backend: backend, now: time.Now}
}

// Persist writes the credential with its expiry as the storage max age.
func (s *Store) Persist(cred Credential) error {
	if !wellFormed(cred.Token) {
		return ErrMalformedCredential
	}
	maxAge := cred.ExpiresIn
	if maxAge <= 0 && !cred.ExpiresAt.IsZero() {
		maxAge = cred.ExpiresAt.Sub(s.now())
	}
	s.backend.Set(cred.Token, maxAge)
	return nil
}

// Clear removes the credential.
func (s *Store) Clear() {
	s.backend.Clear()
}

// Current returns the stored credential when it is present and structurally
// sound. Expiry is not checked here; the store API rejects stale tokens.
func (s *Store) Current() (Credential, bool) {
	token, ok := s.backend.Get()
	if !ok || !wellFormed(token) {
		return Credential{}, false
	}

	cred := Credential{Token: token}
	if looksLikeJWT(token) {
		exp, ok := peekExpiry(token)
		if !ok {
			return Credential{}, false
		}
		cred.ExpiresAt = exp
		if !exp.IsZero() {
			cred.ExpiresIn = exp.Sub(s.now())
		}
	}
	return cred, true
}

// Present reports whether any token is stored, well formed or not.
func (s *Store) Present() bool {
	token, ok := s.backend.Get()
	return ok && token != ""
}

func wellFormed(token string) bool {
	if token == "" {
		return false
	}
	for _, r := range token {
		if r <= ' ' || r == 0x7f || strings.ContainsRune(`;,"\`, r) {
			return false
		}
	}
	return true
}

func looksLikeJWT(token string) bool {
	return strings.Count(token, ".") == 2
}

// peekExpiry decodes the exp claim without verifying the signature.
func peekExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, false
	}
	if exp == nil {
		return time.Time{}, true
	}
	return exp.Time, true
}
