package auth

import (
	"strings"
	"testing"
)

const testSecret = "test-secret"

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken(testSecret, "u1", "ana@example.com", "Ana")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := ValidateToken(testSecret, token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != "u1" {
		t.Errorf("expected user id u1, got %q", claims.UserID)
	}
	if claims.Email != "ana@example.com" {
		t.Errorf("expected email, got %q", claims.Email)
	}
	if claims.DisplayName != "Ana" {
		t.Errorf("expected display name, got %q", claims.DisplayName)
	}
	if claims.ID == "" {
		t.Error("expected non-empty JTI")
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, _ := GenerateToken(testSecret, "u1", "ana@example.com", "Ana")

	if _, err := ValidateToken("other-secret", token); err == nil {
		t.Error("expected validation to fail with wrong secret")
	}
}

func TestValidateTamperedToken(t *testing.T) {
	token, _ := GenerateToken(testSecret, "u1", "ana@example.com", "Ana")

	parts := strings.Split(token, ".")
	tampered := parts[0] + ".eyJ1c2VyX2lkIjoidTIifQ." + parts[2]
	if _, err := ValidateToken(testSecret, tampered); err == nil {
		t.Error("expected validation to fail for tampered token")
	}
}

func TestUniqueJTI(t *testing.T) {
	a, _ := GenerateToken(testSecret, "u1", "ana@example.com", "Ana")
	b, _ := GenerateToken(testSecret, "u1", "ana@example.com", "Ana")

	ca, _ := ValidateToken(testSecret, a)
	cb, _ := ValidateToken(testSecret, b)
	if ca.ID == cb.ID {
		t.Error("expected distinct JTIs for separate tokens")
	}
}
