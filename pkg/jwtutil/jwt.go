package jwtutil

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

var signingKey []byte

// SessionClaims represents the claims issued by the external identity
// provider. The user id travels in the registered Subject claim.
type SessionClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Init sets the verification key for session tokens
func Init(key string) {
	signingKey = []byte(key)
}

// ValidateToken validates and parses a session token
func ValidateToken(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return signingKey, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*SessionClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid session token")
}
