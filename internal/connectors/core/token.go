package core

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/custodia-labs/regsync/internal/core/domain"
	"github.com/custodia-labs/regsync/internal/core/ports/driven"
)

// TokenTimeout bounds the token exchange.
const TokenTimeout = 10 * time.Second

// tokenProvider exchanges the configured client credentials for a bearer
// token against the CORE token endpoint.
type tokenProvider struct {
	cfg Config
}

var _ driven.TokenProvider = (*tokenProvider)(nil)

// NewTokenProvider creates a token provider for the CORE source.
func NewTokenProvider(cfg Config) driven.TokenProvider {
	return &tokenProvider{cfg: cfg}
}

// Acquire performs the client-credentials exchange. Unset credentials fail
// fast with domain.ErrConfigMissing.
func (p *tokenProvider) Acquire(ctx context.Context) (*driven.Token, error) {
	if p.cfg.ClientID == "" || p.cfg.ClientSecret == "" {
		return nil, fmt.Errorf("core credentials: %w", domain.ErrConfigMissing)
	}

	conf := &clientcredentials.Config{
		ClientID:     p.cfg.ClientID,
		ClientSecret: p.cfg.ClientSecret,
		TokenURL:     p.cfg.TokenURL,
	}

	httpClient := &http.Client{Timeout: TokenTimeout}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)

	tok, err := conf.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("token exchange: %w", err)
	}
	if tok.AccessToken == "" {
		return nil, domain.ErrAuthFailed
	}

	return &driven.Token{AccessToken: tok.AccessToken, Expiry: tok.Expiry}, nil
}
