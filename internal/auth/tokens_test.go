package auth

import (
	"errors"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager(testSecret, time.Hour)

	token, err := m.AccessToken("ada@example.com")
	if err != nil {
		t.Fatalf("AccessToken: %v", err)
	}

	email, err := m.Verify(token, PurposeAccess)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if email != "ada@example.com" {
		t.Errorf("subject = %q, want ada@example.com", email)
	}
}

func TestTokenPurposeEnforced(t *testing.T) {
	m := NewTokenManager(testSecret, time.Hour)

	verify, err := m.VerificationToken("ada@example.com")
	if err != nil {
		t.Fatalf("VerificationToken: %v", err)
	}

	// A verification token must not grant API access.
	if _, err := m.Verify(verify, PurposeAccess); !errors.Is(err, ErrWrongPurpose) {
		t.Errorf("cross-purpose verify: got %v, want ErrWrongPurpose", err)
	}
	if _, err := m.Verify(verify, PurposeEmailVerify); err != nil {
		t.Errorf("same-purpose verify: %v", err)
	}
}

func TestTokenExpiry(t *testing.T) {
	m := NewTokenManager(testSecret, -time.Minute)

	token, err := m.AccessToken("ada@example.com")
	if err != nil {
		t.Fatalf("AccessToken: %v", err)
	}
	if _, err := m.Verify(token, PurposeAccess); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired token: got %v, want ErrInvalidToken", err)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	m := NewTokenManager(testSecret, time.Hour)
	other := NewTokenManager("another-secret-another-secret!!", time.Hour)

	token, err := m.AccessToken("ada@example.com")
	if err != nil {
		t.Fatalf("AccessToken: %v", err)
	}
	if _, err := other.Verify(token, PurposeAccess); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("foreign signature: got %v, want ErrInvalidToken", err)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !CheckPassword("secret1", hash) {
		t.Error("correct password rejected")
	}
	if CheckPassword("wrong", hash) {
		t.Error("wrong password accepted")
	}
}
