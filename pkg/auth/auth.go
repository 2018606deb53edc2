// Package auth verifies bearer tokens and resolves them to user ids.
package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNotAuthenticated is returned when a request carries no usable identity.
var ErrNotAuthenticated = errors.New("not authenticated")

// Verifier validates signed session tokens.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret []byte) *Verifier {
	return &Verifier{secret: secret}
}

// UserID parses and validates the token and returns the subject claim. Any
// parse, signature, or expiry failure maps to ErrNotAuthenticated; the
// underlying cause is wrapped for logging.
func (v *Verifier) UserID(tokenString string) (string, error) {
	if tokenString == "" {
		return "", ErrNotAuthenticated
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotAuthenticated, err)
	}

	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", fmt.Errorf("%w: token has no subject", ErrNotAuthenticated)
	}
	return subject, nil
}
