package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"slidebot/slidebot/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func sign(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func protected() http.Handler {
	return AuthMiddleware(config.Config{JWTSecret: secret})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(r.Context().Value(OperatorKey).(string)))
	}))
}

func TestAuthMiddleware(t *testing.T) {
	valid := sign(t, jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{
		"sub": "ops", "exp": time.Now().Add(time.Hour).Unix(),
	})
	expired := sign(t, jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{
		"sub": "ops", "exp": time.Now().Add(-time.Hour).Unix(),
	})
	wrongKey := sign(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{"sub": "ops"})
	noSubject := sign(t, jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{"role": "ops"})

	tests := []struct {
		name   string
		header string
		query  string
		code   int
	}{
		{"valid header", "Bearer " + valid, "", http.StatusOK},
		{"valid query", "", valid, http.StatusOK},
		{"missing", "", "", http.StatusUnauthorized},
		{"bad scheme", "Basic " + valid, "", http.StatusUnauthorized},
		{"expired", "Bearer " + expired, "", http.StatusUnauthorized},
		{"wrong key", "Bearer " + wrongKey, "", http.StatusUnauthorized},
		{"no subject", "Bearer " + noSubject, "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := "/"
			if tt.query != "" {
				target += "?token=" + tt.query
			}
			req := httptest.NewRequest(http.MethodGet, target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			protected().ServeHTTP(rr, req)
			assert.Equal(t, tt.code, rr.Code)
			if tt.code == http.StatusOK {
				assert.Equal(t, "ops", rr.Body.String())
			}
		})
	}
}

func TestAuthMiddlewareWithoutSecret(t *testing.T) {
	h := AuthMiddleware(config.Config{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	token := sign(t, jwt.SigningMethodHS256, []byte("anything"), jwt.MapClaims{"sub": "ops"})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
