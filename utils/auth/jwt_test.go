package auth

import (
	"testing"
	"time"
)

func testManager() *JWTManager {
	return NewJWTManager(JWTConfig{
		Secret:        "test-secret-for-unit-tests",
		Expiry:        time.Hour,
		RefreshExpiry: 24 * time.Hour,
		Issuer:        "uact-test",
	})
}

func TestAccessTokenRoundTrip(t *testing.T) {
	m := testManager()

	token, jti, err := m.GenerateAccessToken(42, "student@test.local", "student", 3)
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}
	if jti == "" {
		t.Fatal("expected a non-empty JTI")
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}

	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if claims.Email != "student@test.local" {
		t.Errorf("Email = %q, want student@test.local", claims.Email)
	}
	if claims.Role != "student" {
		t.Errorf("Role = %q, want student", claims.Role)
	}
	if claims.TokenType != "access" {
		t.Errorf("TokenType = %q, want access", claims.TokenType)
	}
	if claims.TokenVersion != 3 {
		t.Errorf("TokenVersion = %d, want 3", claims.TokenVersion)
	}
	if claims.ID != jti {
		t.Errorf("claims ID = %q, want the issued JTI %q", claims.ID, jti)
	}
}

func TestRefreshTokenType(t *testing.T) {
	m := testManager()

	token, _, err := m.GenerateRefreshToken(7, "user@test.local", "student", 0)
	if err != nil {
		t.Fatalf("GenerateRefreshToken failed: %v", err)
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.TokenType != "refresh" {
		t.Errorf("TokenType = %q, want refresh", claims.TokenType)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	m := testManager()
	other := NewJWTManager(JWTConfig{
		Secret: "a-different-secret",
		Expiry: time.Hour,
		Issuer: "uact-test",
	})

	token, _, err := m.GenerateAccessToken(1, "user@test.local", "student", 0)
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	if _, err := other.ValidateToken(token); err == nil {
		t.Error("token signed with another secret should not validate")
	}
}

func TestValidateTokenGarbage(t *testing.T) {
	m := testManager()
	if _, err := m.ValidateToken("not.a.token"); err == nil {
		t.Error("garbage token should not validate")
	}
}

func TestRefreshAccessToken(t *testing.T) {
	m := testManager()

	refresh, _, err := m.GenerateRefreshToken(9, "user@test.local", "student", 2)
	if err != nil {
		t.Fatalf("GenerateRefreshToken failed: %v", err)
	}

	access, _, err := m.RefreshAccessToken(refresh, 2)
	if err != nil {
		t.Fatalf("RefreshAccessToken failed: %v", err)
	}

	claims, err := m.ValidateToken(access)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.TokenType != "access" {
		t.Errorf("TokenType = %q, want access", claims.TokenType)
	}
	if claims.UserID != 9 {
		t.Errorf("UserID = %d, want 9", claims.UserID)
	}
}

func TestRefreshAccessTokenRejectsAccessToken(t *testing.T) {
	m := testManager()

	access, _, err := m.GenerateAccessToken(9, "user@test.local", "student", 0)
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	if _, _, err := m.RefreshAccessToken(access, 0); err == nil {
		t.Error("an access token should not be usable as a refresh token")
	}
}

func TestRefreshAccessTokenStaleVersion(t *testing.T) {
	m := testManager()

	refresh, _, err := m.GenerateRefreshToken(9, "user@test.local", "student", 1)
	if err != nil {
		t.Fatalf("GenerateRefreshToken failed: %v", err)
	}

	if _, _, err := m.RefreshAccessToken(refresh, 2); err == nil {
		t.Error("a refresh token from an older token version should be rejected")
	}
}
