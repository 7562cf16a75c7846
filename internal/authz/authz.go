// Copyright (c) 2026 Atsumira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package authz implements the central authorization policy engine.

Every mutating request in the platform is decided here: the caller's global
role, their membership role within the target event or group, and the kind of
action are combined into a single Allow/Deny decision.

# Architecture

  - Identity: The resolved caller (user id + current global role).
  - Roles: Closed, ordered role sets per resource kind (never free strings).
  - Engine: A pure decision function over an injected membership lookup.

Historically each handler re-implemented its own role checks with small
inconsistencies. Collapsing them into one engine makes the precedence rules
(admin override, self-access, escalation guard) testable in exactly one place.
*/
package authz

import (
	"github.com/taibuivan/atsumira/internal/platform/apperr"
	"github.com/taibuivan/atsumira/internal/platform/sec"
)

// # Caller Identity

// Identity is the resolved caller of a request.
//
// It is derived per request from a verified session token plus a fresh user
// lookup, lives only for the duration of request handling, and is never
// persisted. A nil *Identity means the caller is anonymous.
type Identity struct {
	UserID string
	Role   sec.UserRole
}

// IsAdmin reports whether the caller holds the global admin role.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role.IsAdmin()
}

// # Resource Kinds

// ResourceKind identifies which role domain applies to a decision.
type ResourceKind string

const (
	KindEvent ResourceKind = "event"
	KindGroup ResourceKind = "group"
	KindUser  ResourceKind = "user"
)

// # Membership Roles

// Role is a membership role binding a user to an event or group.
//
// The zero value (RoleNone) means the user holds no membership on the
// resource. Role strings are unique across kinds, so a Role alone is enough
// to derive its tier.
type Role string

const (
	RoleNone Role = ""

	// Event roles, ordered attendee < co-host < host
	RoleAttendee Role = "attendee"
	RoleCoHost   Role = "co-host"
	RoleHost     Role = "host"

	// Group roles, ordered member < co-organizer < organizer
	RoleMember      Role = "member"
	RoleCoOrganizer Role = "co-organizer"
	RoleOrganizer   Role = "organizer"
)

// Tier is the privilege level of a membership role, comparable across kinds.
type Tier int

const (
	// No membership on the resource
	TierNone Tier = iota

	// attendee / member
	TierBase

	// co-host / co-organizer: may manage lower-tier members
	TierMid

	// host / organizer: fixed at resource creation, never re-assignable
	TierTop
)

// Tier maps a role to its privilege level.
func (r Role) Tier() Tier {
	switch r {
	case RoleHost, RoleOrganizer:
		return TierTop
	case RoleCoHost, RoleCoOrganizer:
		return TierMid
	case RoleAttendee, RoleMember:
		return TierBase
	default:
		return TierNone
	}
}

// ValidFor reports whether the role belongs to the kind's closed role set.
func (r Role) ValidFor(kind ResourceKind) bool {
	for _, role := range RolesFor(kind) {
		if r == role {
			return true
		}
	}
	return false
}

// RolesFor returns the closed role set of a resource kind, lowest tier first.
func RolesFor(kind ResourceKind) []Role {
	switch kind {
	case KindEvent:
		return []Role{RoleAttendee, RoleCoHost, RoleHost}
	case KindGroup:
		return []Role{RoleMember, RoleCoOrganizer, RoleOrganizer}
	default:
		return nil
	}
}

// TopRole returns the highest-privilege role of a resource kind.
func TopRole(kind ResourceKind) Role {
	switch kind {
	case KindEvent:
		return RoleHost
	case KindGroup:
		return RoleOrganizer
	default:
		return RoleNone
	}
}

// BaseRole returns the default self-service join role of a resource kind.
func BaseRole(kind ResourceKind) Role {
	switch kind {
	case KindEvent:
		return RoleAttendee
	case KindGroup:
		return RoleMember
	default:
		return RoleNone
	}
}

// # Actions

// Action classifies what the caller is trying to do to the target resource.
type Action string

const (
	// Read a resource or collection (never membership-gated)
	ActionRead Action = "read"

	// Create a child row under the resource (join, membership grant)
	ActionCreateChild Action = "create_child"

	// Change another membership's role
	ActionUpdateRole Action = "update_role"

	// Modify the resource itself (also gates managed content like photos/tags)
	ActionUpdateResource Action = "update_resource"

	// Remove a membership row (another member's, or the caller's own)
	ActionDeleteMembership Action = "delete_membership"

	// Delete the resource itself
	ActionDeleteResource Action = "delete_resource"

	// View a user profile (strict self-access)
	ActionSelfView Action = "self_view"
)

// Request describes one authorization question put to the [Engine].
//
// ResourceID always names the parent event/group the membership lookup is
// keyed by, even when the action targets a sub-resource row within it.
type Request struct {
	Action     Action
	Kind       ResourceKind
	ResourceID string

	// TargetUserID is the owner of the target membership or user resource,
	// when the action is aimed at a specific user's row.
	TargetUserID string

	// NewRole is the requested role for update_role and create_child.
	NewRole Role
}

// # Decisions

// Reason is the machine-checkable cause of a denial.
type Reason string

const (
	ReasonUnauthenticated Reason = "unauthenticated"
	ReasonForbidden       Reason = "forbidden"
	ReasonUnprocessable   Reason = "unprocessable"
)

// Decision is the outcome of an authorization question.
//
// A denial always carries a reason; the engine never swallows one silently.
type Decision struct {
	Allowed bool
	Reason  Reason
}

// Allow returns a positive decision.
func Allow() Decision {
	return Decision{Allowed: true}
}

// Deny returns a negative decision with the given reason.
func Deny(reason Reason) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Err maps the decision to the API error taxonomy.
//
// It returns nil for Allow, so services can gate with a single
// `if err := decision.Err(); err != nil` check.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}

	switch d.Reason {
	case ReasonUnauthenticated:
		return apperr.Unauthorized("Authentication required")
	case ReasonUnprocessable:
		return apperr.Unprocessable("Requested role is not permitted")
	default:
		return apperr.Forbidden("Insufficient permissions")
	}
}
