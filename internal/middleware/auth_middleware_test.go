package middleware

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/poofware/rental-service/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

func sign(t *testing.T, key *rsa.PrivateKey, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	return tok
}

func validClaims(sub uuid.UUID) jwt.MapClaims {
	now := time.Now().Unix()
	return jwt.MapClaims{"iss": "Poof", "sub": sub.String(), "iat": now, "exp": now + 900}
}

// echoUser writes the caller's id so tests can see what reached the handler.
var echoUser = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	id, _ := UserIDFromContext(r.Context())
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"user_id": id.String(), "admin": IsAdmin(r.Context())})
})

func serve(h http.Handler, mutate func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/", nil)
	mutate(req)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func errCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body utils.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body.Code
}

func TestAuthMiddleware(t *testing.T) {
	key := newKey(t)
	h := AuthMiddleware(&key.PublicKey)(echoUser)
	userID := uuid.New()

	t.Run("Should accept a bearer token", func(t *testing.T) {
		tok := sign(t, key, validClaims(userID))
		rr := serve(h, func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+tok) })

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), userID.String())
	})

	t.Run("Should accept the access-token cookie", func(t *testing.T) {
		tok := sign(t, key, validClaims(userID))
		rr := serve(h, func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: AccessTokenCookieName, Value: tok})
		})
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("Should reject a missing token", func(t *testing.T) {
		rr := serve(h, func(*http.Request) {})
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, utils.ErrCodeUnauthorized, errCode(t, rr))
	})

	t.Run("Should flag an expired token", func(t *testing.T) {
		claims := validClaims(userID)
		claims["exp"] = time.Now().Add(-time.Minute).Unix()
		tok := sign(t, key, claims)
		rr := serve(h, func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+tok) })

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, utils.ErrCodeTokenExpired, errCode(t, rr))
	})

	t.Run("Should reject a foreign issuer", func(t *testing.T) {
		claims := validClaims(userID)
		claims["iss"] = "someone-else"
		tok := sign(t, key, claims)
		rr := serve(h, func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+tok) })
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("Should reject a token signed by another key", func(t *testing.T) {
		tok := sign(t, newKey(t), validClaims(userID))
		rr := serve(h, func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+tok) })
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("Should reject a non-uuid subject", func(t *testing.T) {
		claims := validClaims(userID)
		claims["sub"] = "42"
		tok := sign(t, key, claims)
		rr := serve(h, func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+tok) })
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestAdminAuthMiddleware(t *testing.T) {
	key := newKey(t)
	h := AdminAuthMiddleware(&key.PublicKey)(echoUser)

	t.Run("Should forbid a regular user", func(t *testing.T) {
		tok := sign(t, key, validClaims(uuid.New()))
		rr := serve(h, func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+tok) })
		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.Equal(t, utils.ErrCodeForbidden, errCode(t, rr))
	})

	t.Run("Should admit an admin", func(t *testing.T) {
		claims := validClaims(uuid.New())
		claims["role"] = "admin"
		tok := sign(t, key, claims)
		rr := serve(h, func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+tok) })
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"admin":true`)
	})
}

func TestRecoverPanic(t *testing.T) {
	h := RecoverPanic(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("kaboom") }))
	rr := serve(h, func(*http.Request) {})
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, utils.ErrCodeInternal, errCode(t, rr))
}

func TestSecureHeadersAndLogger(t *testing.T) {
	h := RequestLogger(SecureHeaders(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})))
	rr := serve(h, func(*http.Request) {})
	assert.Equal(t, http.StatusTeapot, rr.Code)
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "deny", rr.Header().Get("X-Frame-Options"))
}

func TestOptionalAuthMiddleware(t *testing.T) {
	key := newKey(t)
	h := OptionalAuthMiddleware(&key.PublicKey)(echoUser)

	t.Run("Should pass anonymous requests through", func(t *testing.T) {
		rr := serve(h, func(*http.Request) {})
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), uuid.Nil.String())
	})

	t.Run("Should attach the caller when a token is sent", func(t *testing.T) {
		userID := uuid.New()
		tok := sign(t, key, validClaims(userID))
		rr := serve(h, func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+tok) })
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), userID.String())
	})

	t.Run("Should still reject a bad token", func(t *testing.T) {
		rr := serve(h, func(r *http.Request) { r.Header.Set("Authorization", "Bearer garbage") })
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}
