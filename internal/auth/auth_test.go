package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var testConfig = Config{Secret: "test-secret", Issuer: "dashtok.identity"}

func signToken(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	if _, ok := claims["iss"]; !ok {
		claims["iss"] = testConfig.Issuer
	}
	if _, ok := claims["exp"]; !ok {
		claims["exp"] = time.Now().Add(time.Hour).Unix()
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestParseValidToken(t *testing.T) {
	token := signToken(t, jwt.MapClaims{
		"sub":    "user-1",
		"tz":     "America/New_York",
		"scopes": []interface{}{ScopeRead, ScopeWrite},
	}, testConfig.Secret)

	claims, err := Parse(token, testConfig)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.Subject)
	require.Equal(t, "America/New_York", claims.Timezone.String())
	require.True(t, claims.HasScope(ScopeRead))
	require.True(t, claims.HasScope(ScopeWrite))
	require.False(t, claims.HasScope("other:scope"))
}

func TestParseTimezoneFallsBackToUTC(t *testing.T) {
	for _, tz := range []string{"", "Not/AZone"} {
		claims := jwt.MapClaims{"sub": "user-1"}
		if tz != "" {
			claims["tz"] = tz
		}
		parsed, err := Parse(signToken(t, claims, testConfig.Secret), testConfig)
		require.NoError(t, err)
		require.Equal(t, time.UTC, parsed.Timezone)
	}
}

func TestParseScopeFormats(t *testing.T) {
	// Space-delimited scope strings are accepted alongside arrays.
	token := signToken(t, jwt.MapClaims{
		"sub":    "user-1",
		"scopes": ScopeRead + " " + ScopeWrite,
	}, testConfig.Secret)

	claims, err := Parse(token, testConfig)
	require.NoError(t, err)
	require.True(t, claims.HasScope(ScopeRead))
	require.True(t, claims.HasScope(ScopeWrite))
}

func TestParseRejectsBadTokens(t *testing.T) {
	_, err := Parse("", testConfig)
	require.ErrorIs(t, err, ErrMissingToken)

	_, err = Parse("not-a-jwt", testConfig)
	require.ErrorIs(t, err, ErrInvalidToken)

	wrongKey := signToken(t, jwt.MapClaims{"sub": "user-1"}, "other-secret")
	_, err = Parse(wrongKey, testConfig)
	require.ErrorIs(t, err, ErrInvalidToken)

	expired := signToken(t, jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(-time.Hour).Unix(),
	}, testConfig.Secret)
	_, err = Parse(expired, testConfig)
	require.ErrorIs(t, err, ErrInvalidToken)

	wrongIssuer := signToken(t, jwt.MapClaims{"sub": "user-1", "iss": "someone.else"}, testConfig.Secret)
	_, err = Parse(wrongIssuer, testConfig)
	require.ErrorIs(t, err, ErrInvalidToken)

	noSubject := signToken(t, jwt.MapClaims{"iss": testConfig.Issuer}, testConfig.Secret)
	_, err = Parse(noSubject, testConfig)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestMiddlewareWrap(t *testing.T) {
	mw := NewMiddleware(testConfig, func(r *http.Request) bool {
		return r.URL.Path == "/healthz"
	})

	var got *Claims
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("missing header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/streak", nil))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/streak", nil)
		req.Header.Set("Authorization", "Basic abc123")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token reaches handler with claims", func(t *testing.T) {
		token := signToken(t, jwt.MapClaims{"sub": "user-1", "scopes": ScopeRead}, testConfig.Secret)
		req := httptest.NewRequest(http.MethodGet, "/v1/streak", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, got)
		require.Equal(t, "user-1", got.Subject)
	})

	t.Run("skipper bypasses auth", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	})
}
