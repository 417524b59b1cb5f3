package utils

import (
	"strings"
	"testing"
)

func TestIsValidEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		email string
		want  bool
	}{
		{"user@example.com", true},
		{"a@b.co", true},
		{"user+tag@sub.example.com", true},
		{"", false},
		{"plainaddress", false},
		{"@example.com", false},
		{"user@", false},
		{"user@nodot", false},
		{"user@.com", false},
		{"user name@example.com", false},
	}
	for _, tt := range tests {
		if got := IsValidEmail(tt.email); got != tt.want {
			t.Errorf("IsValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
		}
	}
}

func TestIsValidPassword(t *testing.T) {
	t.Parallel()

	if IsValidPassword(strings.Repeat("x", MinPasswordLength-1)) {
		t.Error("short password accepted")
	}
	if !IsValidPassword(strings.Repeat("x", MinPasswordLength)) {
		t.Error("minimum-length password rejected")
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("correct horse battery")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "correct horse battery" {
		t.Fatal("password stored in the clear")
	}
	if !CheckPassword(hash, "correct horse battery") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hash, "wrong password") {
		t.Error("wrong password accepted")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("user-1", "user@example.com")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != "user-1" || claims.Email != "user@example.com" {
		t.Errorf("claims = %s/%s", claims.UserID, claims.Email)
	}
	if claims.Type != "access" {
		t.Errorf("type = %q, want access", claims.Type)
	}
}

func TestRefreshTokenType(t *testing.T) {
	token, err := GenerateRefreshToken("user-1", "user@example.com")
	if err != nil {
		t.Fatalf("GenerateRefreshToken: %v", err)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.Type != "refresh" {
		t.Errorf("type = %q, want refresh", claims.Type)
	}
}

func TestSetJWTSecretInvalidatesOldTokens(t *testing.T) {
	SetJWTSecret("first-secret")
	token, err := GenerateToken("user-1", "user@example.com")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := ValidateToken(token); err != nil {
		t.Fatalf("ValidateToken under issuing secret: %v", err)
	}

	SetJWTSecret("second-secret")
	if _, err := ValidateToken(token); err == nil {
		t.Error("token minted under the old secret still accepted")
	}

	token, err = GenerateToken("user-1", "user@example.com")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := ValidateToken(token); err != nil {
		t.Errorf("ValidateToken under the new secret: %v", err)
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	if _, err := ValidateToken("not.a.token"); err == nil {
		t.Error("garbage token accepted")
	}

	token, err := GenerateToken("user-1", "user@example.com")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := ValidateToken(token + "x"); err == nil {
		t.Error("tampered token accepted")
	}
}
