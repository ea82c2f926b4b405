package auth

import (
	"testing"
	"time"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "s3cret" {
		t.Fatalf("hash should not equal the plaintext")
	}
	if !CheckPassword(hash, "s3cret") {
		t.Fatalf("expected password to verify")
	}
	if CheckPassword(hash, "wrong") {
		t.Fatalf("expected wrong password to fail")
	}
}

func TestSignAndParseJWT(t *testing.T) {
	token, err := SignJWT(42, "Jane Moyo", "student", "test-secret", time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	claims, err := ParseJWT(token, "test-secret")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != 42 || claims.Name != "Jane Moyo" || claims.Role != "student" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestParseJWT_WrongSecret(t *testing.T) {
	token, err := SignJWT(42, "Jane Moyo", "student", "test-secret", time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ParseJWT(token, "other-secret"); err == nil {
		t.Fatalf("expected verification failure with wrong secret")
	}
}

func TestParseJWT_Expired(t *testing.T) {
	token, err := SignJWT(42, "Jane Moyo", "student", "test-secret", -time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ParseJWT(token, "test-secret"); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}
