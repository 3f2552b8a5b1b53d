package core

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/regsync/internal/core/domain"
)

func TestAcquireMissingCredentialsFailsFast(t *testing.T) {
	for _, cfg := range []Config{
		{ClientSecret: "secret"},
		{ClientID: "regsync"},
		{},
	} {
		provider := NewTokenProvider(cfg)
		_, err := provider.Acquire(context.Background())
		assert.ErrorIs(t, err, domain.ErrConfigMissing)
	}
}

func TestAcquireExchangesClientCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.Form.Get("grant_type"))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"access_token": "tok-core", "token_type": "bearer", "expires_in": 3600}`)
	}))
	defer server.Close()

	provider := NewTokenProvider(Config{
		TokenURL:     server.URL + "/token",
		ClientID:     "regsync",
		ClientSecret: "secret",
	})

	token, err := provider.Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-core", token.AccessToken)
	assert.True(t, token.Valid())
}
