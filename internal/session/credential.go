// Package session owns the bearer credential that identifies a signed-in
// dashboard user and the pluggable storage it lives in.
package session

import (
	"errors"
	"time"
)

// DefaultCookieName is the cookie holding the bearer token.
const DefaultCookieName = "authtoken"

// ErrMalformedCredential is returned when a token cannot be stored or used as
// a bearer credential.
var ErrMalformedCredential = errors.New("session: malformed credential")

// Credential is the bearer token issued by the store API plus its expiry.
type Credential struct {
	Token     string
	ExpiresIn time.Duration
	ExpiresAt time.Time
}

// BearerHeader renders the Authorization header value.
func (c Credential) BearerHeader() string {
	return "Bearer " + c.Token
}

// Phase classifies startup authentication progress. It is derived from the
// controller state and never persisted.
type Phase int

const (
	PhaseResolving Phase = iota
	PhaseAuthenticated
	PhaseAnonymous
)

func (p Phase) String() string {
	switch p {
	case PhaseResolving:
		return "resolving"
	case PhaseAuthenticated:
		return "authenticated"
	case PhaseAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}
