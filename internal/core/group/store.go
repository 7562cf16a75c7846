// Copyright (c) 2026 Atsumira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package group

import (
	"context"

	"github.com/taibuivan/atsumira/internal/authz"
)

// # Group Data Access

// Repository defines the data access contract for groups and memberships.
type Repository interface {

	/*
		List returns a filtered, paginated slice of groups and the total count.

		Parameters:
		  - context: context.Context
		  - filter: Filter (Search query, sort order)
		  - limit: int
		  - offset: int

		Returns:
		  - []*Group: Slice of matching groups
		  - int: Total record count
		  - error: Database retrieval failures
	*/
	List(context context.Context, filter Filter, limit, offset int) ([]*Group, int, error)

	/*
		FindByID retrieves a group by its UUID.

		Parameters:
		  - context: context.Context
		  - id: string (UUIDv7)

		Returns:
		  - *Group: Hydrated entity
		  - error: ErrNotFound if missing
	*/
	FindByID(context context.Context, id string) (*Group, error)

	/*
		FindBySlug retrieves a group by its human-readable identifier.

		Parameters:
		  - context: context.Context
		  - slug: string

		Returns:
		  - *Group: Hydrated entity
		  - error: ErrNotFound if missing
	*/
	FindBySlug(context context.Context, slug string) (*Group, error)

	/*
		Create persists a new group to the store.

		Parameters:
		  - context: context.Context
		  - group: *Group

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, group *Group) error

	/*
		Update modifies an existing group's metadata.

		Parameters:
		  - context: context.Context
		  - group: *Group

		Returns:
		  - error: Persistence failures
	*/
	Update(context context.Context, group *Group) error

	/*
		Delete removes a group and all dependent membership rows.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: Persistence failures
	*/
	Delete(context context.Context, id string) error

	// # Membership Management

	/*
		ListMembers returns all users affiliated with a group.

		Parameters:
		  - context: context.Context
		  - groupID: string

		Returns:
		  - []*Member: List of affiliated users
		  - error: Retrieval failures
	*/
	ListMembers(context context.Context, groupID string) ([]*Member, error)

	/*
		AddMember links a user to a group with a specified role and bumps
		the denormalized member counter atomically.

		Parameters:
		  - context: context.Context
		  - member: *Member

		Returns:
		  - error: Conflict if the user already belongs to the group
	*/
	AddMember(context context.Context, member *Member) error

	/*
		UpdateMemberRole changes a user's authority level within a group.

		Parameters:
		  - context: context.Context
		  - groupID: string
		  - userID: string
		  - role: authz.Role

		Returns:
		  - error: ErrNotFound if no membership exists
	*/
	UpdateMemberRole(context context.Context, groupID, userID string, role authz.Role) error

	/*
		RemoveMember terminates a user's affiliation and decrements the
		member counter atomically.

		Parameters:
		  - context: context.Context
		  - groupID: string
		  - userID: string

		Returns:
		  - error: ErrNotFound if no membership exists
	*/
	RemoveMember(context context.Context, groupID, userID string) error
}
