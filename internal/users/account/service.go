// Copyright (c) 2026 Atsumira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"log/slog"

	"github.com/taibuivan/atsumira/internal/authz"
	"github.com/taibuivan/atsumira/internal/platform/validate"
	"github.com/taibuivan/atsumira/internal/users/auth"
)

// # Service Layer

// Service orchestrates business logic for user accounts and profile access.
//
// Profile visibility follows a strict self-access policy: only the owner sees
// the private projection (email and all), everyone else gets [PublicProfile].
// The policy engine is the single place where that rule is decided.
type Service struct {
	accountRepository AccountRepository
	engine            *authz.Engine
	logger            *slog.Logger
}

// NewService constructs a new [Service] with its repository dependencies.
func NewService(
	accountRepo AccountRepository,
	engine *authz.Engine,
	logger *slog.Logger,
) *Service {
	return &Service{
		accountRepository: accountRepo,
		engine:            engine,
		logger:            logger,
	}
}

// # Profile Browsing

/*
ListProfiles retrieves a paginated directory of member profiles.

Description: Always returns the public projection, regardless of caller.

Parameters:
  - context: context.Context
  - filter: Filter
  - limit, offset: int

Returns:
  - []*PublicProfile: Page of profiles
  - int: Total matching count
  - error: Retrieval failures
*/
func (service *Service) ListProfiles(context context.Context, filter Filter, limit, offset int) ([]*PublicProfile, int, error) {
	users, total, err := service.accountRepository.List(context, filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	profiles := make([]*PublicProfile, 0, len(users))
	for _, user := range users {
		profiles = append(profiles, PublicView(user))
	}

	return profiles, total, nil
}

/*
GetProfile retrieves a single user profile with visibility scoping.

Description: Fetch-before-authorize. The full private projection is returned
only when the policy engine allows the self-view action; every other caller,
admins included, receives the public projection.

Parameters:
  - context: context.Context
  - identity: *authz.Identity (nil for anonymous callers)
  - userID: string

Returns:
  - any: *auth.User (owner) or *PublicProfile (everyone else)
  - error: Not found or execution failures
*/
func (service *Service) GetProfile(context context.Context, identity *authz.Identity, userID string) (any, error) {
	user, err := service.accountRepository.FindByID(context, userID)
	if err != nil {
		return nil, err
	}

	decision, err := service.engine.Authorize(context, identity, authz.Request{
		Action:       authz.ActionSelfView,
		Kind:         authz.KindUser,
		ResourceID:   userID,
		TargetUserID: userID,
	})
	if err != nil {
		return nil, err
	}

	if decision.Allowed {
		return user, nil
	}

	return PublicView(user), nil
}

// # Profile Management

// UpdateProfileInput defines the mutable subset of user profile fields.
type UpdateProfileInput struct {
	Nickname  *string
	Name      *string
	Surname   *string
	Bio       *string
	AvatarURL *string
}

/*
UpdateProfile applies a partial set of changes to a user's account metadata.

Description: Fetches the existing user state, authorizes the mutation against
the policy engine (owner or admin), overrides provided fields, and synchronizes
the change to persistent storage.

Parameters:
  - context: context.Context
  - identity: *authz.Identity
  - userID: string
  - input: UpdateProfileInput

Returns:
  - *auth.User: The updated user profile
  - error: Authorization, validation, or storage failures
*/
func (service *Service) UpdateProfile(context context.Context, identity *authz.Identity, userID string, input UpdateProfileInput) (*auth.User, error) {
	user, err := service.accountRepository.FindByID(context, userID)
	if err != nil {
		return nil, err
	}

	decision, err := service.engine.Authorize(context, identity, authz.Request{
		Action:       authz.ActionUpdateResource,
		Kind:         authz.KindUser,
		ResourceID:   userID,
		TargetUserID: userID,
	})
	if err != nil {
		return nil, err
	}
	if err := decision.Err(); err != nil {
		return nil, err
	}

	// Apply delta updates
	if input.Nickname != nil {
		user.Nickname = *input.Nickname
	}
	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Surname != nil {
		user.Surname = *input.Surname
	}
	if input.Bio != nil {
		user.Bio = *input.Bio
	}
	if input.AvatarURL != nil {
		user.AvatarURL = *input.AvatarURL
	}

	validator := &validate.Validator{}
	validator.Required(auth.FieldNickname, user.Nickname).
		MinLen(auth.FieldNickname, user.Nickname, 3).
		MaxLen(auth.FieldName, user.Name, 100).
		MaxLen(auth.FieldSurname, user.Surname, 100).
		MaxLen("bio", user.Bio, 1000)

	if err := validator.Err(); err != nil {
		return nil, err
	}

	// Persist changes
	if err := service.accountRepository.Update(context, user); err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "user_profile_updated", slog.String("user_id", userID))

	return user, nil
}

/*
DeleteAccount performs an idempotent soft-deletion of a user account.

Description: Authorizes the deletion (owner or admin) and flags the account as
deleted. Outstanding access tokens die at the identity resolver, which
re-fetches the account on every request.

Parameters:
  - context: context.Context
  - identity: *authz.Identity
  - userID: string

Returns:
  - error: Authorization or execution failures
*/
func (service *Service) DeleteAccount(context context.Context, identity *authz.Identity, userID string) error {
	if _, err := service.accountRepository.FindByID(context, userID); err != nil {
		return err
	}

	decision, err := service.engine.Authorize(context, identity, authz.Request{
		Action:       authz.ActionDeleteResource,
		Kind:         authz.KindUser,
		ResourceID:   userID,
		TargetUserID: userID,
	})
	if err != nil {
		return err
	}
	if err := decision.Err(); err != nil {
		return err
	}

	if err := service.accountRepository.SoftDelete(context, userID); err != nil {
		return err
	}

	service.logger.WarnContext(context, "user_account_deleted", slog.String("user_id", userID))

	return nil
}
