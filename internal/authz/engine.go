// Copyright (c) 2026 Atsumira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package authz

import (
	"context"
	"log/slog"
)

// # Collaborators

// MembershipSource resolves the caller's membership role on a resource.
//
// Implementations return [RoleNone] (not an error) when no membership row
// exists — a non-member is a normal input to the engine, never a failure.
type MembershipSource interface {

	/*
		MembershipRole returns the role a user holds within a resource.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - kind: ResourceKind (event or group)
		  - resourceID: string (the parent resource id)

		Returns:
		  - Role: The membership role, or RoleNone if no row exists
		  - error: Lookup/storage failures only
	*/
	MembershipRole(context context.Context, userID string, kind ResourceKind, resourceID string) (Role, error)
}

// MembershipInvalidator is implemented by caching sources that need to be
// told when a membership row changed.
type MembershipInvalidator interface {
	InvalidateMembership(context context.Context, userID string, kind ResourceKind, resourceID string)
}

// # Engine

// Engine is the platform-wide authorization decision function.
//
// # Purity
//
// Authorize performs at most one membership read and no writes. It holds no
// mutable state, so concurrent evaluations need no synchronization and an
// abandoned evaluation leaves nothing to roll back.
type Engine struct {
	memberships MembershipSource
	logger      *slog.Logger
}

// NewEngine constructs the policy engine over a membership source.
func NewEngine(memberships MembershipSource, logger *slog.Logger) *Engine {
	return &Engine{
		memberships: memberships,
		logger:      logger,
	}
}

/*
Authorize decides whether the identified caller may perform the requested action.

Description: Applies the platform's precedence rules — admin override,
self-access, tier gates, self-removal, and the role-escalation guard — in a
fixed order where the first matching rule wins. Missing target resources are
the caller's concern (fetch-before-authorize): the engine only ever answers
Allow or Deny(reason).

Parameters:
  - context: context.Context
  - identity: *Identity (nil for anonymous callers)
  - request: Request

Returns:
  - Decision: Allow, or Deny with a machine-checkable reason
  - error: Membership lookup failures only (the decision is then a Deny)
*/
func (engine *Engine) Authorize(context context.Context, identity *Identity, request Request) (Decision, error) {

	// ── 1. Global admin override ──────────────────────────────────────────
	// Admins bypass every membership check, including the escalation guard.
	// The single exception is viewing another user's profile, which stays
	// strictly self-gated and falls through to the self-access rule.
	if identity.IsAdmin() {
		if request.Action != ActionSelfView || request.TargetUserID == identity.UserID {
			return Allow(), nil
		}
	}

	// ── 2. Public reads ───────────────────────────────────────────────────
	if request.Action == ActionRead {
		return Allow(), nil
	}

	// ── 3. Anonymous callers ──────────────────────────────────────────────
	// Every remaining action requires a membership role or self-identity.
	if identity == nil {
		return engine.deny(context, identity, request, ReasonUnauthenticated), nil
	}

	// ── 4. Self-access on user resources ──────────────────────────────────
	// Profile view/update/delete is gated on identity, never on memberships.
	if request.Kind == KindUser {
		switch request.Action {
		case ActionSelfView, ActionUpdateResource, ActionDeleteResource:
			if identity.UserID == request.TargetUserID {
				return Allow(), nil
			}
		}
		return engine.deny(context, identity, request, ReasonForbidden), nil
	}

	// ── 5. Membership-gated actions ───────────────────────────────────────
	// One lookup, keyed by the parent event/group id. The two reads the
	// engine ever performs (user-by-id during resolution, membership here)
	// are independent; no ordering between them is assumed.
	callerRole, err := engine.memberships.MembershipRole(context, identity.UserID, request.Kind, request.ResourceID)
	if err != nil {
		return Deny(ReasonForbidden), err
	}
	callerTier := callerRole.Tier()

	switch request.Action {

	case ActionDeleteResource:
		// Deletion is reserved strictly to the top role.
		if callerTier == TierTop {
			return Allow(), nil
		}

	case ActionUpdateResource:
		// Mid-tier roles may manage the resource and its content.
		if callerTier >= TierMid {
			return Allow(), nil
		}

	case ActionUpdateRole:
		if callerTier < TierMid {
			return engine.deny(context, identity, request, ReasonForbidden), nil
		}
		if !request.NewRole.ValidFor(request.Kind) {
			return engine.deny(context, identity, request, ReasonUnprocessable), nil
		}
		// Escalation guard: the top role is fixed at resource creation and
		// can never be granted through a role update.
		if request.NewRole == TopRole(request.Kind) {
			return engine.deny(context, identity, request, ReasonForbidden), nil
		}
		return Allow(), nil

	case ActionDeleteMembership:
		// Self-removal: any member may remove themselves, regardless of tier.
		if request.TargetUserID == identity.UserID {
			return Allow(), nil
		}
		if callerTier >= TierMid {
			return Allow(), nil
		}

	case ActionCreateChild:
		// Role validity comes first so a cross-kind role is Unprocessable
		// even when its tier would qualify for the self-service path below.
		if request.NewRole != RoleNone && !request.NewRole.ValidFor(request.Kind) {
			return engine.deny(context, identity, request, ReasonUnprocessable), nil
		}
		// Joining at the base tier is self-service for any authenticated user.
		if request.NewRole == RoleNone || request.NewRole.Tier() == TierBase {
			return Allow(), nil
		}
		// The escalation guard applies symmetrically at creation: the top
		// role is never grantable, and mid-tier grants require a manager.
		if request.NewRole == TopRole(request.Kind) {
			return engine.deny(context, identity, request, ReasonForbidden), nil
		}
		if callerTier >= TierMid {
			return Allow(), nil
		}
	}

	// ── 6. Default deny ───────────────────────────────────────────────────
	return engine.deny(context, identity, request, ReasonForbidden), nil
}

// InvalidateMembership drops any cached role for (user, resource) after a
// membership mutation. It is a no-op when the source does not cache.
func (engine *Engine) InvalidateMembership(context context.Context, userID string, kind ResourceKind, resourceID string) {
	if invalidator, ok := engine.memberships.(MembershipInvalidator); ok {
		invalidator.InvalidateMembership(context, userID, kind, resourceID)
	}
}

// deny logs the denial with its reason and returns it.
func (engine *Engine) deny(context context.Context, identity *Identity, request Request, reason Reason) Decision {
	userID := ""
	if identity != nil {
		userID = identity.UserID
	}

	engine.logger.DebugContext(context, "authorization_denied",
		slog.String("user_id", userID),
		slog.String("action", string(request.Action)),
		slog.String("kind", string(request.Kind)),
		slog.String("resource_id", request.ResourceID),
		slog.String("reason", string(reason)),
	)

	return Deny(reason)
}
