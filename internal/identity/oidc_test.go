package identity

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfmateapp/shelfmate/internal/logger"
)

// newFakeIssuer serves discovery and a token endpoint that accepts one password.
func newFakeIssuer(t *testing.T, clientID string) *httptest.Server {
	t.Helper()

	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/openid-configuration", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"issuer":                 srv.URL,
			"authorization_endpoint": srv.URL + "/authorize",
			"token_endpoint":         srv.URL + "/token",
			"jwks_uri":               srv.URL + "/jwks",
			"id_token_signing_alg_values_supported": []string{"RS256"},
		})
	})
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "password", r.PostForm.Get("grant_type"))

		w.Header().Set("Content-Type", "application/json")
		if r.PostForm.Get("password") != "hunter2" {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error":             "invalid_grant",
				"error_description": "Invalid user credentials",
			})
			return
		}

		claims, _ := json.Marshal(map[string]any{
			"iss": srv.URL,
			"sub": "oidc-subject-7",
			"aud": clientID,
			"exp": time.Now().Add(time.Hour).Unix(),
			"iat": time.Now().Unix(),
		})
		enc := base64.RawURLEncoding
		idToken := enc.EncodeToString([]byte(`{"alg":"RS256","typ":"JWT"}`)) + "." +
			enc.EncodeToString(claims) + "." + enc.EncodeToString([]byte("sig"))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "at",
			"token_type":   "Bearer",
			"expires_in":   3600,
			"id_token":     idToken,
		})
	})

	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestOIDC_Authenticate(t *testing.T) {
	srv := newFakeIssuer(t, "shelfmate")

	o := NewOIDC(srv.URL, "shelfmate", "secret", srv.Client(), logger.Discard().Logger)
	o.insecureSkipSignature = true

	sub, err := o.Authenticate(context.Background(), "a@b.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "oidc-subject-7", sub)

	_, err = o.Authenticate(context.Background(), "a@b.com", "nope")
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestOIDC_UnverifiableTokenIsInvalidCredential(t *testing.T) {
	srv := newFakeIssuer(t, "shelfmate")

	o := NewOIDC(srv.URL, "other-client", "secret", srv.Client(), logger.Discard().Logger)
	o.insecureSkipSignature = true

	_, err := o.Authenticate(context.Background(), "a@b.com", "hunter2")
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestOIDC_DiscoveryFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	o := NewOIDC(srv.URL, "shelfmate", "", srv.Client(), logger.Discard().Logger)
	_, err := o.Authenticate(context.Background(), "a@b.com", "pw")
	assert.ErrorIs(t, err, ErrUnspecified)
}

func TestOIDC_RegisterUnsupported(t *testing.T) {
	o := NewOIDC("https://issuer.invalid", "c", "", nil, logger.Discard().Logger)
	_, err := o.Register(context.Background(), "a@b.com", "pw")
	assert.ErrorIs(t, err, ErrUnsupported)
}
