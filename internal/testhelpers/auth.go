package testhelpers

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// CreateJWT signs a short-lived access token for userID.
func (h *TestHelper) CreateJWT(userID uuid.UUID) string {
	return h.sign(userID, "")
}

// CreateAdminJWT signs a token carrying the admin role claim.
func (h *TestHelper) CreateAdminJWT(userID uuid.UUID) string {
	return h.sign(userID, "admin")
}

func (h *TestHelper) sign(userID uuid.UUID, role string) string {
	now := time.Now().Unix()
	claims := jwt.MapClaims{
		"iss": "Poof",
		"sub": userID.String(),
		"iat": now,
		"exp": now + 15*60,
	}
	if role != "" {
		claims["role"] = role
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(h.PrivateKey)
	require.NoError(h.T, err, "Failed to sign test JWT")
	return signed
}
