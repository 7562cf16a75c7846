// Copyright (c) 2026 Atsumira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/atsumira/internal/platform/apperr"
	"github.com/taibuivan/atsumira/internal/platform/sec"
	"github.com/taibuivan/atsumira/internal/users/auth"
)

// fakeUserRepository is an in-memory [auth.UserRepository].
type fakeUserRepository struct {
	users map[string]*auth.User // keyed by ID
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{users: make(map[string]*auth.User)}
}

func (f *fakeUserRepository) FindByID(_ context.Context, id string) (*auth.User, error) {
	if user, ok := f.users[id]; ok {
		return user, nil
	}
	return nil, apperr.NotFound("User not found")
}

func (f *fakeUserRepository) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, apperr.NotFound("User not found with this email")
}

func (f *fakeUserRepository) FindByNickname(_ context.Context, nickname string) (*auth.User, error) {
	for _, user := range f.users {
		if user.Nickname == nickname {
			return user, nil
		}
	}
	return nil, apperr.NotFound("User not found with this nickname")
}

func (f *fakeUserRepository) Create(_ context.Context, user *auth.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepository) Update(_ context.Context, user *auth.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepository) UpdatePassword(_ context.Context, userID, newHash string) error {
	user, ok := f.users[userID]
	if !ok {
		return apperr.NotFound("User not found")
	}
	user.PasswordHash = newHash
	return nil
}

func (f *fakeUserRepository) SoftDelete(_ context.Context, id string) error {
	delete(f.users, id)
	return nil
}

// fakeResetTokenRepository is an in-memory [auth.ResetTokenRepository].
type fakeResetTokenRepository struct {
	tokens map[string]string // tokenHash -> userID
}

func newFakeResetTokenRepository() *fakeResetTokenRepository {
	return &fakeResetTokenRepository{tokens: make(map[string]string)}
}

func (f *fakeResetTokenRepository) Set(_ context.Context, tokenHash, userID string, _ time.Duration) error {
	f.tokens[tokenHash] = userID
	return nil
}

func (f *fakeResetTokenRepository) Get(_ context.Context, tokenHash string) (string, error) {
	if userID, ok := f.tokens[tokenHash]; ok {
		return userID, nil
	}
	return "", apperr.NotFound("Reset token is invalid or expired")
}

func (f *fakeResetTokenRepository) Delete(_ context.Context, tokenHash string) error {
	delete(f.tokens, tokenHash)
	return nil
}

// fakeIssuer records the last issuance instead of signing real tokens.
type fakeIssuer struct {
	lastUserID string
	lastRole   string
}

func (f *fakeIssuer) Issue(userID, role string, timeToLive time.Duration) (string, time.Time, error) {
	f.lastUserID = userID
	f.lastRole = role
	return "token-" + userID, time.Now().Add(timeToLive), nil
}

func newService(t *testing.T) (*auth.Service, *fakeUserRepository, *fakeResetTokenRepository, *fakeIssuer) {
	t.Helper()
	users := newFakeUserRepository()
	resets := newFakeResetTokenRepository()
	issuer := &fakeIssuer{}
	return auth.NewService(users, resets, issuer), users, resets, issuer
}

func register(t *testing.T, service *auth.Service, nickname, email, password string) *auth.User {
	t.Helper()
	user, err := service.Register(context.Background(), auth.RegisterInput{
		Nickname: nickname,
		Email:    email,
		Password: password,
	})
	require.NoError(t, err)
	return user
}

func TestService_Register(t *testing.T) {
	service, _, _, _ := newService(t)
	ctx := context.Background()

	user := register(t, service, "akira", "akira@example.com", "hunter2hunter2")
	assert.Equal(t, sec.RoleUser, user.Role)
	assert.NotEqual(t, "hunter2hunter2", user.PasswordHash)

	t.Run("duplicate email conflicts", func(t *testing.T) {
		_, err := service.Register(ctx, auth.RegisterInput{
			Nickname: "akira2", Email: "akira@example.com", Password: "hunter2hunter2",
		})
		require.Error(t, err)
		assert.Equal(t, "CONFLICT", apperr.As(err).Code)
	})

	t.Run("duplicate nickname conflicts", func(t *testing.T) {
		_, err := service.Register(ctx, auth.RegisterInput{
			Nickname: "akira", Email: "other@example.com", Password: "hunter2hunter2",
		})
		require.Error(t, err)
		assert.Equal(t, "CONFLICT", apperr.As(err).Code)
	})
}

func TestService_Login(t *testing.T) {
	service, _, _, issuer := newService(t)
	ctx := context.Background()
	user := register(t, service, "akira", "akira@example.com", "hunter2hunter2")

	t.Run("by email", func(t *testing.T) {
		result, err := service.Login(ctx, auth.LoginInput{Login: "akira@example.com", Password: "hunter2hunter2"})
		require.NoError(t, err)
		assert.Equal(t, "token-"+user.ID, result.AccessToken)
		assert.Equal(t, string(sec.RoleUser), issuer.lastRole)
	})

	t.Run("by nickname", func(t *testing.T) {
		_, err := service.Login(ctx, auth.LoginInput{Login: "akira", Password: "hunter2hunter2"})
		require.NoError(t, err)
	})

	t.Run("wrong password is a generic unauthorized", func(t *testing.T) {
		_, err := service.Login(ctx, auth.LoginInput{Login: "akira", Password: "wrong-password"})
		require.Error(t, err)
		assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)
		assert.Equal(t, "Invalid login credentials", apperr.As(err).Message)
	})

	t.Run("unknown account is the same generic unauthorized", func(t *testing.T) {
		_, err := service.Login(ctx, auth.LoginInput{Login: "nobody", Password: "hunter2hunter2"})
		require.Error(t, err)
		assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)
		assert.Equal(t, "Invalid login credentials", apperr.As(err).Message)
	})
}

func TestService_Resolve(t *testing.T) {
	service, users, _, _ := newService(t)
	ctx := context.Background()
	user := register(t, service, "akira", "akira@example.com", "hunter2hunter2")

	t.Run("carries the current stored role, not the token snapshot", func(t *testing.T) {
		users.users[user.ID].Role = sec.RoleAdmin

		identity, err := service.Resolve(ctx, &sec.Claims{UserID: user.ID, Role: string(sec.RoleUser)})
		require.NoError(t, err)
		assert.Equal(t, sec.RoleAdmin, identity.Role)
	})

	t.Run("deleted subject resolves to not found", func(t *testing.T) {
		require.NoError(t, users.SoftDelete(ctx, user.ID))

		_, err := service.Resolve(ctx, &sec.Claims{UserID: user.ID})
		require.Error(t, err)
		assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
	})
}

func TestService_PasswordReset(t *testing.T) {
	service, _, resets, _ := newService(t)
	ctx := context.Background()
	register(t, service, "akira", "akira@example.com", "hunter2hunter2")

	t.Run("unknown email stays silent", func(t *testing.T) {
		token, err := service.RequestPasswordReset(ctx, "ghost@example.com")
		require.NoError(t, err)
		assert.Empty(t, token)
		assert.Empty(t, resets.tokens)
	})

	t.Run("full round trip stores only the hash", func(t *testing.T) {
		token, err := service.RequestPasswordReset(ctx, "akira@example.com")
		require.NoError(t, err)
		require.NotEmpty(t, token)

		_, rawStored := resets.tokens[token]
		assert.False(t, rawStored)
		_, hashStored := resets.tokens[sec.HashToken(token)]
		assert.True(t, hashStored)

		require.NoError(t, service.ResetPassword(ctx, token, "brand-new-pass"))
		assert.Empty(t, resets.tokens)

		_, err = service.Login(ctx, auth.LoginInput{Login: "akira", Password: "brand-new-pass"})
		require.NoError(t, err)
	})

	t.Run("used token cannot be replayed", func(t *testing.T) {
		token, err := service.RequestPasswordReset(ctx, "akira@example.com")
		require.NoError(t, err)
		require.NoError(t, service.ResetPassword(ctx, token, "another-new-pass"))

		err = service.ResetPassword(ctx, token, "yet-another-pass")
		require.Error(t, err)
		assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
	})
}

func TestService_ChangePassword(t *testing.T) {
	service, _, _, _ := newService(t)
	ctx := context.Background()
	user := register(t, service, "akira", "akira@example.com", "hunter2hunter2")

	t.Run("wrong current password rejected", func(t *testing.T) {
		err := service.ChangePassword(ctx, user.ID, "wrong-password", "new-password-1")
		require.Error(t, err)
		assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)
	})

	t.Run("valid change takes effect", func(t *testing.T) {
		require.NoError(t, service.ChangePassword(ctx, user.ID, "hunter2hunter2", "new-password-1"))

		_, err := service.Login(ctx, auth.LoginInput{Login: "akira", Password: "new-password-1"})
		require.NoError(t, err)
	})
}
