// Package auth guards the admin surface. Staff exchange the shared passkey
// for a short-lived token; the submissions endpoints require it.
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidPasskey indicates the submitted passkey does not match.
	ErrInvalidPasskey = errors.New("invalid passkey")

	// ErrInvalidToken indicates the bearer token failed verification.
	ErrInvalidToken = errors.New("invalid token")
)

const (
	// Issuer identifies tokens minted by this service.
	Issuer = "intake-api"

	// TokenTTL bounds an admin session.
	TokenTTL = 8 * time.Hour

	// RoleAdmin is the only role the admin surface knows.
	RoleAdmin = "admin"
)

type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// Authenticator verifies the admin passkey and mints/verifies session tokens.
type Authenticator struct {
	passkey string
	secret  []byte
	nowFunc func() time.Time
}

func NewAuthenticator(passkey string, secret []byte) *Authenticator {
	return &Authenticator{passkey: passkey, secret: secret, nowFunc: time.Now}
}

// Login exchanges the passkey for a signed token. The comparison is constant
// time so response latency reveals nothing about the passkey.
func (a *Authenticator) Login(passkey string) (string, time.Time, error) {
	if a.passkey == "" {
		return "", time.Time{}, fmt.Errorf("%w: admin access is not configured", ErrInvalidPasskey)
	}
	if subtle.ConstantTimeCompare([]byte(passkey), []byte(a.passkey)) != 1 {
		return "", time.Time{}, ErrInvalidPasskey
	}

	now := a.nowFunc()
	expires := now.Add(TokenTTL)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		Role: RoleAdmin,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return token, expires, nil
}

// Verify parses and validates a session token.
func (a *Authenticator) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	},
		jwt.WithIssuer(Issuer),
		jwt.WithTimeFunc(a.nowFunc),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Role != RoleAdmin {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
