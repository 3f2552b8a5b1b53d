package nris

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/regsync/internal/core/domain"
	"github.com/custodia-labs/regsync/internal/core/ports/driven"
)

// TokenTimeout bounds the token exchange. Kept short: a slow token endpoint
// should fail the run quickly rather than stall it.
const TokenTimeout = 10 * time.Second

// tokenProvider exchanges the configured resource-owner credentials for a
// bearer token against the NRIS token endpoint.
type tokenProvider struct {
	cfg Config
}

var _ driven.TokenProvider = (*tokenProvider)(nil)

// NewTokenProvider creates a token provider for the NRIS source.
func NewTokenProvider(cfg Config) driven.TokenProvider {
	return &tokenProvider{cfg: cfg}
}

// Acquire performs the password-grant exchange. Unset credentials fail fast
// with domain.ErrConfigMissing; no retry, this is not a transient condition.
func (p *tokenProvider) Acquire(ctx context.Context) (*driven.Token, error) {
	if p.cfg.Username == "" || p.cfg.Password == "" {
		return nil, fmt.Errorf("nris credentials: %w", domain.ErrConfigMissing)
	}

	conf := &oauth2.Config{
		ClientID: p.cfg.ClientID,
		Endpoint: oauth2.Endpoint{TokenURL: p.cfg.TokenURL},
	}

	httpClient := &http.Client{Timeout: TokenTimeout}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)

	tok, err := conf.PasswordCredentialsToken(ctx, p.cfg.Username, p.cfg.Password)
	if err != nil {
		return nil, fmt.Errorf("token exchange: %w", err)
	}
	if tok.AccessToken == "" {
		return nil, domain.ErrAuthFailed
	}

	return &driven.Token{AccessToken: tok.AccessToken, Expiry: tok.Expiry}, nil
}
