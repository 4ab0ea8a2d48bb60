package jwtutil_test

import (
	"testing"
	"time"

	"tipmap-service/pkg/jwtutil"

	"github.com/golang-jwt/jwt/v5"
)

func signToken(t *testing.T, key string, claims jwtutil.SessionClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(key))
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return signed
}

func TestValidateTokenRoundTrip(t *testing.T) {
	jwtutil.Init("test-signing-key")

	signed := signToken(t, "test-signing-key", jwtutil.SessionClaims{
		Email: "user@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-123",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	claims, err := jwtutil.ValidateToken(signed)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.Subject != "user-123" {
		t.Errorf("Expected subject user-123, got %s", claims.Subject)
	}
	if claims.Email != "user@example.com" {
		t.Errorf("Expected email to round-trip, got %s", claims.Email)
	}
}

func TestValidateTokenRejectsWrongKey(t *testing.T) {
	jwtutil.Init("test-signing-key")

	signed := signToken(t, "some-other-key", jwtutil.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-123",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	if _, err := jwtutil.ValidateToken(signed); err == nil {
		t.Error("Expected validation to fail for a token signed with another key")
	}
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	jwtutil.Init("test-signing-key")

	signed := signToken(t, "test-signing-key", jwtutil.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-123",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})

	if _, err := jwtutil.ValidateToken(signed); err == nil {
		t.Error("Expected validation to fail for an expired token")
	}
}
