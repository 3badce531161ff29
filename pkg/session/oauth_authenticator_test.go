package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/boredapes/ctaplanner/internal/config"
	"github.com/boredapes/ctaplanner/internal/test_utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTokenServer(t *testing.T) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		w.Header().Set("Content-Type", "application/json")
		if r.Form.Get("grant_type") != "password" || r.Form.Get("username") != test_utils.TestUserEmail ||
			r.Form.Get("password") != test_utils.TestUserPassword {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Invalid user credentials"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"at","token_type":"bearer","expires_in":3600}`))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestOAuthAuthenticator_Authenticate(t *testing.T) {
	t.Run("should accept credentials the token endpoint grants", func(t *testing.T) {
		// given
		server := newTokenServer(t)
		auth := NewOAuthAuthenticator(config.OAuth{TokenUrl: server.URL, ClientId: "cta"}, server.Client())

		// when
		identity, err := auth.Authenticate(context.Background(), test_utils.TestUserEmail, test_utils.TestUserPassword)

		// then
		require.NoError(t, err)
		assert.Equal(t, test_utils.TestUserEmail, identity)
	})

	t.Run("should map a rejected grant to invalid credentials", func(t *testing.T) {
		// given
		server := newTokenServer(t)
		auth := NewOAuthAuthenticator(config.OAuth{TokenUrl: server.URL, ClientId: "cta"}, server.Client())

		// when
		_, err := auth.Authenticate(context.Background(), test_utils.TestUserEmail, "wrong")

		// then
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.Contains(t, err.Error(), "Invalid user credentials")
	})

	t.Run("should report an unavailable token endpoint", func(t *testing.T) {
		// given
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()
		auth := NewOAuthAuthenticator(config.OAuth{TokenUrl: server.URL, ClientId: "cta"}, server.Client())

		// when
		_, err := auth.Authenticate(context.Background(), test_utils.TestUserEmail, test_utils.TestUserPassword)

		// then
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrInvalidCredentials)
	})
}
