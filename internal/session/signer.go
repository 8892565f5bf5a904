package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrBadSignature means the cookie value was not issued by this server.
var ErrBadSignature = errors.New("session: invalid cookie signature")

// Signer wraps a session id in an HS256 token so a forged or altered
// cookie is rejected before the store is queried. The token holds the id
// and issue time only; expiry is decided server-side.
type Signer struct {
	secret []byte
	now    func() time.Time
}

func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret), now: time.Now}
}

func (s *Signer) Sign(sessionID string) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:       sessionID,
		IssuedAt: jwt.NewNumericDate(s.now()),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session cookie: %w", err)
	}
	return token, nil
}

// Verify returns the session id carried by a cookie value.
func (s *Signer) Verify(value string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(value, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	if claims.ID == "" {
		return "", ErrBadSignature
	}
	return claims.ID, nil
}
