package auth

import (
	"errors"
	"testing"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct-horse-battery")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "correct-horse-battery" {
		t.Fatal("hash should not equal the plaintext password")
	}

	if err := VerifyPassword(hash, "correct-horse-battery"); err != nil {
		t.Errorf("correct password should verify, got %v", err)
	}

	if err := VerifyPassword(hash, "wrong-password-here"); !errors.Is(err, ErrPasswordMismatch) {
		t.Errorf("wrong password should fail with ErrPasswordMismatch, got %v", err)
	}
}

func TestHashPasswordTooShort(t *testing.T) {
	if _, err := HashPassword("short"); !errors.Is(err, ErrPasswordTooShort) {
		t.Errorf("short password should fail with ErrPasswordTooShort, got %v", err)
	}
}

func TestIsPasswordValid(t *testing.T) {
	if IsPasswordValid("1234567") {
		t.Error("7 characters should be invalid")
	}
	if !IsPasswordValid("12345678") {
		t.Error("8 characters should be valid")
	}
}
