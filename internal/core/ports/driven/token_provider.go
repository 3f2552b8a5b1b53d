package driven

import (
	"context"
	"time"
)

// Token is an upstream bearer credential.
type Token struct {
	// AccessToken is the bearer value sent on upstream requests.
	AccessToken string

	// Expiry is when the token stops being usable. Zero means unknown.
	Expiry time.Time
}

// Valid reports whether the token can still be used. A small skew margin
// forces re-acquisition shortly before actual expiry so a window never
// straddles a dead token.
func (t *Token) Valid() bool {
	if t == nil || t.AccessToken == "" {
		return false
	}
	if t.Expiry.IsZero() {
		return true
	}
	return time.Now().Add(30 * time.Second).Before(t.Expiry)
}

// TokenProvider exchanges configured credentials for a bearer token against
// the upstream token endpoint.
type TokenProvider interface {
	// Acquire performs the credential exchange. Fails fast with
	// domain.ErrConfigMissing when credentials are unset.
	Acquire(ctx context.Context) (*Token, error)
}
