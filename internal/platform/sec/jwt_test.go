// Copyright (c) 2026 Atsumira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newFrozenService returns a TokenService whose clock is pinned to epoch,
// plus a helper to advance the clock in tests.
func newFrozenService(t *testing.T) (*TokenService, *time.Time) {
	t.Helper()

	service, err := NewTokenService("test-secret-key", "atsumira.app")
	require.NoError(t, err)

	frozen := time.Unix(1_700_000_000, 0)
	service.now = func() time.Time { return frozen }

	return service, &frozen
}

/*
TestTokenService_EmptySecret verifies that a missing signing secret is a
fatal construction error, not a deferred runtime failure.
*/
func TestTokenService_EmptySecret(t *testing.T) {
	_, err := NewTokenService("", "atsumira.app")
	assert.Error(t, err)
}

/*
TestTokenService_IssueVerify checks the issue/verify roundtrip: claims come
back intact and the expiry matches now + ttl.
*/
func TestTokenService_IssueVerify(t *testing.T) {
	service, frozen := newFrozenService(t)

	token, expiresAt, err := service.Issue("user-123", "user", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, frozen.Add(time.Hour), expiresAt)

	claims, err := service.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "user", claims.Role)
	assert.Equal(t, "atsumira.app", claims.Issuer)
	assert.Equal(t, expiresAt.Unix(), claims.ExpiresAt.Unix())
}

/*
TestTokenService_ExpiryBoundary pins the validity window: a token with a
3600s ttl verifies at t0+3599 and fails with ErrTokenExpired at t0+3601.
*/
func TestTokenService_ExpiryBoundary(t *testing.T) {
	service, frozen := newFrozenService(t)
	issuedAt := *frozen

	token, _, err := service.Issue("user-123", "user", 3600*time.Second)
	require.NoError(t, err)

	// 1. Just inside the window
	*frozen = issuedAt.Add(3599 * time.Second)
	_, err = service.Verify(token)
	assert.NoError(t, err)

	// 2. Just past the window
	*frozen = issuedAt.Add(3601 * time.Second)
	_, err = service.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

/*
TestTokenService_Malformed covers the failure modes that must all collapse
into ErrTokenMalformed: garbage input, a tampered payload, and a token
signed with a different secret.
*/
func TestTokenService_Malformed(t *testing.T) {
	service, _ := newFrozenService(t)

	otherService, err := NewTokenService("a-different-secret", "atsumira.app")
	require.NoError(t, err)

	validToken, _, err := service.Issue("user-123", "user", time.Hour)
	require.NoError(t, err)

	foreignToken, _, err := otherService.Issue("user-123", "admin", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"empty", ""},
		{"tampered_payload", validToken[:len(validToken)-4] + "AAAA"},
		{"wrong_secret", foreignToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Verify(tt.token)
			assert.ErrorIs(t, err, ErrTokenMalformed)
		})
	}
}

/*
TestUserRole_Valid checks the closed global role set.
*/
func TestUserRole_Valid(t *testing.T) {
	assert.True(t, RoleAdmin.Valid())
	assert.True(t, RoleUser.Valid())
	assert.False(t, UserRole("organizer").Valid())

	assert.True(t, RoleAdmin.IsAdmin())
	assert.False(t, RoleUser.IsAdmin())
}
