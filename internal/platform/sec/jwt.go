// Copyright (c) 2026 Atsumira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides cryptographic primitives and session token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing) from
// the domain logic. It acts as an Infrastructure service injected into the
// Application layer behind small interfaces — concrete types are only
// referenced from wiring code.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token verification failures.
//
// Both surface to clients as a generic 401 so the exact failure mode is not
// leaked, but they stay distinct internally for logging and tests.
var (
	// ErrTokenMalformed covers unparseable tokens and invalid signatures.
	ErrTokenMalformed = errors.New("sec: token malformed or signature invalid")

	// ErrTokenExpired covers structurally valid tokens past their expiry.
	ErrTokenExpired = errors.New("sec: token expired")
)

// Claims represents the payload embedded inside a signed session token.
//
// # Wire Format
//
// The claim keys (user_id, role, exp) are part of the public token contract;
// existing consumers depend on them. The role claim is a snapshot taken at
// issuance and is deliberately NOT trusted for authorization — the identity
// resolver re-fetches the current stored role on every request.
type Claims struct {
	jwt.RegisteredClaims

	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// TokenService signs and verifies session tokens using HS256.
//
// # Secret Lifecycle
//
// The signing secret is process-wide state with an explicit lifecycle:
// loaded once at boot, injected here, never rotated at runtime. Rotating it
// invalidates every outstanding token.
type TokenService struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewTokenService creates a TokenService with the given signing secret.
//
// An empty secret is a fatal misconfiguration and is rejected here so the
// process fails at startup rather than on the first login.
func NewTokenService(secret, issuer string) (*TokenService, error) {
	if secret == "" {
		return nil, fmt.Errorf("sec: signing secret must not be empty")
	}

	return &TokenService{
		secret: []byte(secret),
		issuer: issuer,
		now:    time.Now,
	}, nil
}

// Issue creates a signed session token for a user.
//
// The claims carry the user's role as of issuance; the bounded timeToLive
// caps how stale that snapshot can get before a re-login is forced.
func (service *TokenService) Issue(userID, role string, timeToLive time.Duration) (string, time.Time, error) {
	currentTime := service.now()
	expiresAt := currentTime.Add(timeToLive)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID: userID,
		Role:   role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(service.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, expiresAt, nil
}

// Verify checks the signature and validity window of a token string.
//
// Verification is a pure function of (token, signing key, clock): no I/O,
// no side effects. It returns [ErrTokenExpired] for structurally valid but
// stale tokens, and [ErrTokenMalformed] for everything else.
func (service *TokenService) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return service.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return service.now() }))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenMalformed
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenMalformed
	}

	return claims, nil
}
