package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token purposes. A token minted for one purpose is never accepted for another.
const (
	PurposeAccess        = "access"
	PurposeEmailVerify   = "email_verify"
	PurposePasswordReset = "password_reset"
)

const (
	verifyTokenTTL = 24 * time.Hour
	resetTokenTTL  = time.Hour
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrWrongPurpose = errors.New("token purpose mismatch")
)

// Claims carries the subject email and the purpose the token was minted for.
type Claims struct {
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// TokenManager mints and verifies HS256-signed tokens.
type TokenManager struct {
	secret    []byte
	accessTTL time.Duration
}

func NewTokenManager(secret string, accessTTL time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), accessTTL: accessTTL}
}

// AccessToken mints a bearer token for an authenticated session.
func (m *TokenManager) AccessToken(email string) (string, error) {
	return m.mint(email, PurposeAccess, m.accessTTL)
}

// VerificationToken mints the token embedded in email verification links.
func (m *TokenManager) VerificationToken(email string) (string, error) {
	return m.mint(email, PurposeEmailVerify, verifyTokenTTL)
}

// ResetToken mints the token embedded in password reset links.
func (m *TokenManager) ResetToken(email string) (string, error) {
	return m.mint(email, PurposePasswordReset, resetTokenTTL)
}

func (m *TokenManager) mint(email, purpose string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses the token, checks the signature and expiry, and enforces the
// expected purpose. It returns the subject email on success.
func (m *TokenManager) Verify(tokenString, purpose string) (string, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return m.secret, nil
	})
	if err != nil {
		return "", ErrInvalidToken
	}
	if claims.Purpose != purpose {
		return "", ErrWrongPurpose
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
