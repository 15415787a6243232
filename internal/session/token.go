// =============================================================================
// FILE: internal/session/token.go
// =============================================================================
// Signed cookie values.
//
// The session id never travels bare. The cookie carries an HS256 token whose
// "sid" claim is the id and whose expiry matches the session's, so a forged
// or tampered cookie fails before the store is consulted.
// =============================================================================

package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "casino-api"

var ErrInvalidToken = errors.New("invalid or expired session token")

type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// TokenSigner signs and verifies session cookie values.
type TokenSigner struct {
	secret []byte
}

// NewTokenSigner creates a signer.
//
// Parameters:
//   - secret: HMAC key; keep it out of source control
func NewTokenSigner(secret string) *TokenSigner {
	return &TokenSigner{secret: []byte(secret)}
}

// Sign wraps a session id in a token that expires with the session.
func (t *TokenSigner) Sign(sessionID string, expires time.Time) (string, error) {
	claims := sessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    tokenIssuer,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Verify checks the signature and expiry and returns the session id.
func (t *TokenSigner) Verify(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &sessionClaims{}, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return t.secret, nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return "", ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid || claims.SessionID == "" {
		return "", ErrInvalidToken
	}
	return claims.SessionID, nil
}
