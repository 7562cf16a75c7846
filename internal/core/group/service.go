// Copyright (c) 2026 Atsumira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package group

import (
	"context"
	"log/slog"

	"github.com/taibuivan/atsumira/internal/authz"
	"github.com/taibuivan/atsumira/internal/platform/validate"
	"github.com/taibuivan/atsumira/pkg/slug"
	"github.com/taibuivan/atsumira/pkg/uuid"
)

// # Service Layer

// Service orchestrates business rules for groups and memberships.
//
// Every mutation is gated by the policy engine before it touches storage.
// Reads stay public, matching the engine's read rule.
type Service struct {
	repo   Repository
	engine *authz.Engine
	logger *slog.Logger
}

// NewService constructs a new group [Service].
func NewService(repo Repository, engine *authz.Engine, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		engine: engine,
		logger: logger,
	}
}

// # Group Management

/*
ListGroups retrieves a paginated and filtered list of groups.

Parameters:
  - context: context.Context
  - filter: Filter
  - limit, offset: int

Returns:
  - []*Group: List of groups
  - int: Total matching count
  - error: Retrieval errors
*/
func (service *Service) ListGroups(context context.Context, filter Filter, limit, offset int) ([]*Group, int, error) {
	return service.repo.List(context, filter, limit, offset)
}

/*
GetGroup retrieves a group by its UUID or Slug identifier.

Parameters:
  - context: context.Context
  - identifier: string

Returns:
  - *Group: Hydrated group entity
  - error: ErrNotFound if missing
*/
func (service *Service) GetGroup(context context.Context, identifier string) (*Group, error) {

	// Discriminator: ID vs Slug
	// UUIDs have a fixed length of 36 characters in standard hyphenated format.
	if len(identifier) == 36 {
		return service.repo.FindByID(context, identifier)
	}

	return service.repo.FindBySlug(context, identifier)
}

/*
CreateGroup initialises a new community and assigns the creator as organizer.

Description: The organizer role is fixed here and can never be granted again
through role updates. The membership cache is invalidated so the creator's
new role is visible immediately.

Parameters:
  - context: context.Context
  - identity: *authz.Identity (The user creating the group)
  - group: *Group

Returns:
  - error: Authorization, validation, or persistence failures
*/
func (service *Service) CreateGroup(context context.Context, identity *authz.Identity, group *Group) error {
	if identity == nil {
		return authz.Deny(authz.ReasonUnauthenticated).Err()
	}

	validator := &validate.Validator{}
	validator.Required(FieldName, group.Name).MaxLen(FieldName, group.Name, 200)

	if err := validator.Err(); err != nil {
		return err
	}

	group.ID = uuid.New()
	group.Slug = slug.From(group.Name)

	if err := service.repo.Create(context, group); err != nil {
		return err
	}

	if err := service.repo.AddMember(context, &Member{
		GroupID: group.ID,
		UserID:  identity.UserID,
		Role:    authz.RoleOrganizer,
	}); err != nil {
		return err
	}
	service.engine.InvalidateMembership(context, identity.UserID, authz.KindGroup, group.ID)

	service.logger.InfoContext(context, "group_created",
		slog.String("group_id", group.ID),
		slog.String("creator_id", identity.UserID),
	)

	return nil
}

/*
UpdateGroup modifies the metadata of an existing group.

Description: The target is fetched before authorization, so a missing group
is a 404 regardless of the caller's permissions. Only organizers,
co-organizers, or admins may update.

Parameters:
  - context: context.Context
  - identity: *authz.Identity
  - group: *Group (Partial update payload with ID set)

Returns:
  - *Group: The updated entity
  - error: Authorization, validation, or persistence failures
*/
func (service *Service) UpdateGroup(context context.Context, identity *authz.Identity, group *Group) (*Group, error) {
	existing, err := service.repo.FindByID(context, group.ID)
	if err != nil {
		return nil, err
	}

	decision, err := service.engine.Authorize(context, identity, authz.Request{
		Action: authz.ActionUpdateResource, Kind: authz.KindGroup, ResourceID: group.ID,
	})
	if err != nil {
		return nil, err
	}
	if err := decision.Err(); err != nil {
		return nil, err
	}

	validator := &validate.Validator{}
	if group.Name != "" {
		validator.MaxLen(FieldName, group.Name, 200)
		existing.Name = group.Name
	}
	if group.Description != nil {
		existing.Description = group.Description
	}
	if group.AvatarURL != nil {
		existing.AvatarURL = group.AvatarURL
	}

	if err := validator.Err(); err != nil {
		return nil, err
	}

	if err := service.repo.Update(context, existing); err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "group_updated", slog.String("group_id", existing.ID))

	return existing, nil
}

/*
DeleteGroup removes a community entirely.

Description: Reserved for the organizer (top role) or a global admin.

Parameters:
  - context: context.Context
  - identity: *authz.Identity
  - groupID: string

Returns:
  - error: Authorization or persistence failures
*/
func (service *Service) DeleteGroup(context context.Context, identity *authz.Identity, groupID string) error {
	if _, err := service.repo.FindByID(context, groupID); err != nil {
		return err
	}

	decision, err := service.engine.Authorize(context, identity, authz.Request{
		Action: authz.ActionDeleteResource, Kind: authz.KindGroup, ResourceID: groupID,
	})
	if err != nil {
		return err
	}
	if err := decision.Err(); err != nil {
		return err
	}

	if err := service.repo.Delete(context, groupID); err != nil {
		return err
	}

	service.logger.InfoContext(context, "group_deleted",
		slog.String("group_id", groupID),
		slog.String("actor_id", identity.UserID),
	)

	return nil
}

// # Membership Controls

/*
ListMembers returns the roster for a specific group.

Parameters:
  - context: context.Context
  - groupID: string

Returns:
  - []*Member: List of affiliated users
  - error: Retrieval failures
*/
func (service *Service) ListMembers(context context.Context, groupID string) ([]*Member, error) {
	if _, err := service.repo.FindByID(context, groupID); err != nil {
		return nil, err
	}
	return service.repo.ListMembers(context, groupID)
}

/*
AddMember joins a user to the group roster.

Description: An empty UserID means the caller joins themselves. Joining as a
plain member is self-service; granting co-organizer requires a managing role;
the organizer role is never grantable here.

Parameters:
  - context: context.Context
  - identity: *authz.Identity
  - member: *Member (GroupID set; UserID/Role optional)

Returns:
  - error: Authorization, conflict, or storage failures
*/
func (service *Service) AddMember(context context.Context, identity *authz.Identity, member *Member) error {
	if _, err := service.repo.FindByID(context, member.GroupID); err != nil {
		return err
	}

	if member.UserID == "" && identity != nil {
		member.UserID = identity.UserID
	}
	if member.Role == authz.RoleNone {
		member.Role = authz.RoleMember
	}

	decision, err := service.engine.Authorize(context, identity, authz.Request{
		Action:       authz.ActionCreateChild,
		Kind:         authz.KindGroup,
		ResourceID:   member.GroupID,
		TargetUserID: member.UserID,
		NewRole:      member.Role,
	})
	if err != nil {
		return err
	}
	if err := decision.Err(); err != nil {
		return err
	}

	if err := service.repo.AddMember(context, member); err != nil {
		return err
	}
	service.engine.InvalidateMembership(context, member.UserID, authz.KindGroup, member.GroupID)

	service.logger.InfoContext(context, "group_member_added",
		slog.String("group_id", member.GroupID),
		slog.String("user_id", member.UserID),
		slog.String("role", string(member.Role)),
	)

	return nil
}

/*
UpdateMemberRole changes a member's authority level within a group.

Description: Requires a co-organizer or organizer caller. Granting the
organizer role is always denied; unknown roles are unprocessable.

Parameters:
  - context: context.Context
  - identity: *authz.Identity
  - groupID, userID: string
  - role: authz.Role

Returns:
  - error: Authorization or persistence failures
*/
func (service *Service) UpdateMemberRole(context context.Context, identity *authz.Identity, groupID, userID string, role authz.Role) error {
	if _, err := service.repo.FindByID(context, groupID); err != nil {
		return err
	}

	decision, err := service.engine.Authorize(context, identity, authz.Request{
		Action:       authz.ActionUpdateRole,
		Kind:         authz.KindGroup,
		ResourceID:   groupID,
		TargetUserID: userID,
		NewRole:      role,
	})
	if err != nil {
		return err
	}
	if err := decision.Err(); err != nil {
		return err
	}

	if err := service.repo.UpdateMemberRole(context, groupID, userID, role); err != nil {
		return err
	}
	service.engine.InvalidateMembership(context, userID, authz.KindGroup, groupID)

	service.logger.InfoContext(context, "group_member_role_updated",
		slog.String("group_id", groupID),
		slog.String("user_id", userID),
		slog.String("role", string(role)),
	)

	return nil
}

/*
RemoveMember removes an affiliation between a user and a group.

Description: Members may always remove themselves; removing others requires
a co-organizer, organizer, or admin caller.

Parameters:
  - context: context.Context
  - identity: *authz.Identity
  - groupID, userID: string

Returns:
  - error: Authorization or storage failures
*/
func (service *Service) RemoveMember(context context.Context, identity *authz.Identity, groupID, userID string) error {
	if _, err := service.repo.FindByID(context, groupID); err != nil {
		return err
	}

	decision, err := service.engine.Authorize(context, identity, authz.Request{
		Action:       authz.ActionDeleteMembership,
		Kind:         authz.KindGroup,
		ResourceID:   groupID,
		TargetUserID: userID,
	})
	if err != nil {
		return err
	}
	if err := decision.Err(); err != nil {
		return err
	}

	if err := service.repo.RemoveMember(context, groupID, userID); err != nil {
		return err
	}
	service.engine.InvalidateMembership(context, userID, authz.KindGroup, groupID)

	service.logger.InfoContext(context, "group_member_removed",
		slog.String("group_id", groupID),
		slog.String("user_id", userID),
	)

	return nil
}
