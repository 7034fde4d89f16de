package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"chainmeet/backend/internal/identity"
)

const sessionTokenTTL = 12 * time.Hour

// SessionClaims ties a session token to one chain identity. The gateway
// never holds keys: possession of the token only scopes reads and marks
// which account the wallet collaborator should sign for.
type SessionClaims struct {
	PublicKey string `json:"pk"`
	IsAdmin   bool   `json:"admin,omitempty"`
	jwt.RegisteredClaims
}

// Identity parses the claim's public key back into its canonical form.
func (c *SessionClaims) Identity() (identity.Identity, error) {
	return identity.Parse(c.PublicKey)
}

// SignSessionToken signs a session token for the given identity.
func SignSessionToken(secret string, id identity.Identity, isAdmin bool) (string, error) {
	claims := SessionClaims{
		PublicKey: id.Hex(),
		IsAdmin:   isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(sessionTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   "session",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseSessionToken parses and verifies a session token.
func ParseSessionToken(secret string, tokenString string) (*SessionClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*SessionClaims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
