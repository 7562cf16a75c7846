// Copyright (c) 2026 Atsumira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package authz_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/atsumira/internal/authz"
	"github.com/taibuivan/atsumira/internal/platform/apperr"
	"github.com/taibuivan/atsumira/internal/platform/sec"
)

// fakeMemberships is an in-memory MembershipSource keyed by
// kind/resourceID/userID.
type fakeMemberships struct {
	roles map[string]authz.Role
}

func (f *fakeMemberships) MembershipRole(_ context.Context, userID string, kind authz.ResourceKind, resourceID string) (authz.Role, error) {
	return f.roles[string(kind)+"/"+resourceID+"/"+userID], nil
}

func newEngine(roles map[string]authz.Role) *authz.Engine {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return authz.NewEngine(&fakeMemberships{roles: roles}, logger)
}

func identity(userID string, role sec.UserRole) *authz.Identity {
	return &authz.Identity{UserID: userID, Role: role}
}

/*
TestEngine_EventScenario walks the concrete host/outsider scenario: H holds
host on event E, A holds nothing. Deletion, role grants, and the escalation
guard must all line up.
*/
func TestEngine_EventScenario(t *testing.T) {
	engine := newEngine(map[string]authz.Role{
		"event/E/H": authz.RoleHost,
	})
	ctx := context.Background()

	host := identity("H", sec.RoleUser)
	outsider := identity("A", sec.RoleUser)

	// 1. Outsider cannot delete the event
	decision, err := engine.Authorize(ctx, outsider, authz.Request{
		Action: authz.ActionDeleteResource, Kind: authz.KindEvent, ResourceID: "E",
	})
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, authz.ReasonForbidden, decision.Reason)

	// 2. Host can delete the event
	decision, err = engine.Authorize(ctx, host, authz.Request{
		Action: authz.ActionDeleteResource, Kind: authz.KindEvent, ResourceID: "E",
	})
	require.NoError(t, err)
	assert.True(t, decision.Allowed)

	// 3. Host can promote A to co-host
	decision, err = engine.Authorize(ctx, host, authz.Request{
		Action: authz.ActionUpdateRole, Kind: authz.KindEvent, ResourceID: "E",
		TargetUserID: "A", NewRole: authz.RoleCoHost,
	})
	require.NoError(t, err)
	assert.True(t, decision.Allowed)

	// 4. Host can NOT promote A to host (escalation guard)
	decision, err = engine.Authorize(ctx, host, authz.Request{
		Action: authz.ActionUpdateRole, Kind: authz.KindEvent, ResourceID: "E",
		TargetUserID: "A", NewRole: authz.RoleHost,
	})
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
}

/*
TestEngine_TierGates runs the tier precedence table for both role domains:
deletion is top-only, updates and member management are mid-or-top.
*/
func TestEngine_TierGates(t *testing.T) {
	engine := newEngine(map[string]authz.Role{
		"event/E/host":     authz.RoleHost,
		"event/E/cohost":   authz.RoleCoHost,
		"event/E/attendee": authz.RoleAttendee,
		"group/G/org":      authz.RoleOrganizer,
		"group/G/coorg":    authz.RoleCoOrganizer,
		"group/G/member":   authz.RoleMember,
	})
	ctx := context.Background()

	tests := []struct {
		name    string
		userID  string
		action  authz.Action
		kind    authz.ResourceKind
		id      string
		allowed bool
	}{
		{"host_deletes_event", "host", authz.ActionDeleteResource, authz.KindEvent, "E", true},
		{"cohost_deletes_event", "cohost", authz.ActionDeleteResource, authz.KindEvent, "E", false},
		{"attendee_deletes_event", "attendee", authz.ActionDeleteResource, authz.KindEvent, "E", false},
		{"cohost_updates_event", "cohost", authz.ActionUpdateResource, authz.KindEvent, "E", true},
		{"attendee_updates_event", "attendee", authz.ActionUpdateResource, authz.KindEvent, "E", false},

		{"organizer_deletes_group", "org", authz.ActionDeleteResource, authz.KindGroup, "G", true},
		{"coorganizer_deletes_group", "coorg", authz.ActionDeleteResource, authz.KindGroup, "G", false},
		{"coorganizer_updates_group", "coorg", authz.ActionUpdateResource, authz.KindGroup, "G", true},
		{"member_updates_group", "member", authz.ActionUpdateResource, authz.KindGroup, "G", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision, err := engine.Authorize(ctx, identity(tt.userID, sec.RoleUser), authz.Request{
				Action: tt.action, Kind: tt.kind, ResourceID: tt.id,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.allowed, decision.Allowed)
		})
	}
}

/*
TestEngine_NonMemberManagement verifies that a user with no membership can
never manage someone else's membership, unless they are a global admin.
*/
func TestEngine_NonMemberManagement(t *testing.T) {
	engine := newEngine(map[string]authz.Role{
		"event/E/victim": authz.RoleAttendee,
	})
	ctx := context.Background()

	request := authz.Request{
		Action: authz.ActionDeleteMembership, Kind: authz.KindEvent,
		ResourceID: "E", TargetUserID: "victim",
	}

	// 1. Plain outsider is denied
	decision, err := engine.Authorize(ctx, identity("outsider", sec.RoleUser), request)
	require.NoError(t, err)
	assert.False(t, decision.Allowed)

	// 2. Admin override still applies
	decision, err = engine.Authorize(ctx, identity("root", sec.RoleAdmin), request)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

/*
TestEngine_SelfRemoval checks that any member may remove their own
membership row regardless of tier, while removing others stays gated.
*/
func TestEngine_SelfRemoval(t *testing.T) {
	engine := newEngine(map[string]authz.Role{
		"group/G/plain": authz.RoleMember,
		"group/G/boss":  authz.RoleOrganizer,
	})
	ctx := context.Background()

	// 1. Base-tier member removes themselves
	decision, err := engine.Authorize(ctx, identity("plain", sec.RoleUser), authz.Request{
		Action: authz.ActionDeleteMembership, Kind: authz.KindGroup,
		ResourceID: "G", TargetUserID: "plain",
	})
	require.NoError(t, err)
	assert.True(t, decision.Allowed)

	// 2. Base-tier member cannot remove the organizer
	decision, err = engine.Authorize(ctx, identity("plain", sec.RoleUser), authz.Request{
		Action: authz.ActionDeleteMembership, Kind: authz.KindGroup,
		ResourceID: "G", TargetUserID: "boss",
	})
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
}

/*
TestEngine_EscalationGuard exercises the update_role matrix for a mid-tier
caller: granting mid is fine, granting top is always denied, and a role
outside the closed set is Unprocessable rather than Forbidden.
*/
func TestEngine_EscalationGuard(t *testing.T) {
	engine := newEngine(map[string]authz.Role{
		"group/G/coorg": authz.RoleCoOrganizer,
	})
	ctx := context.Background()
	caller := identity("coorg", sec.RoleUser)

	tests := []struct {
		name    string
		newRole authz.Role
		allowed bool
		reason  authz.Reason
	}{
		{"grant_mid_tier", authz.RoleCoOrganizer, true, ""},
		{"grant_base_tier", authz.RoleMember, true, ""},
		{"grant_top_tier", authz.RoleOrganizer, false, authz.ReasonForbidden},
		{"grant_unknown_role", authz.Role("emperor"), false, authz.ReasonUnprocessable},
		{"grant_wrong_domain_role", authz.RoleCoHost, false, authz.ReasonUnprocessable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision, err := engine.Authorize(ctx, caller, authz.Request{
				Action: authz.ActionUpdateRole, Kind: authz.KindGroup,
				ResourceID: "G", TargetUserID: "someone", NewRole: tt.newRole,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.allowed, decision.Allowed)
			if !tt.allowed {
				assert.Equal(t, tt.reason, decision.Reason)
			}
		})
	}
}

/*
TestEngine_CreateChild verifies the join rules: base-tier joins are
self-service, top-tier grants are blocked symmetrically at creation, and
mid-tier grants require a managing caller.
*/
func TestEngine_CreateChild(t *testing.T) {
	engine := newEngine(map[string]authz.Role{
		"event/E/host": authz.RoleHost,
	})
	ctx := context.Background()

	// 1. Anonymous callers may never create child rows
	decision, err := engine.Authorize(ctx, nil, authz.Request{
		Action: authz.ActionCreateChild, Kind: authz.KindEvent, ResourceID: "E",
	})
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, authz.ReasonUnauthenticated, decision.Reason)

	// 2. Any authenticated user joins at the base tier
	decision, err = engine.Authorize(ctx, identity("newcomer", sec.RoleUser), authz.Request{
		Action: authz.ActionCreateChild, Kind: authz.KindEvent,
		ResourceID: "E", NewRole: authz.RoleAttendee,
	})
	require.NoError(t, err)
	assert.True(t, decision.Allowed)

	// 3. A newcomer cannot grant themselves co-host on the way in
	decision, err = engine.Authorize(ctx, identity("newcomer", sec.RoleUser), authz.Request{
		Action: authz.ActionCreateChild, Kind: authz.KindEvent,
		ResourceID: "E", NewRole: authz.RoleCoHost,
	})
	require.NoError(t, err)
	assert.False(t, decision.Allowed)

	// 4. The host can add a co-host directly
	decision, err = engine.Authorize(ctx, identity("host", sec.RoleUser), authz.Request{
		Action: authz.ActionCreateChild, Kind: authz.KindEvent,
		ResourceID: "E", TargetUserID: "newcomer", NewRole: authz.RoleCoHost,
	})
	require.NoError(t, err)
	assert.True(t, decision.Allowed)

	// 5. Nobody, not even the host, can mint a second host
	decision, err = engine.Authorize(ctx, identity("host", sec.RoleUser), authz.Request{
		Action: authz.ActionCreateChild, Kind: authz.KindEvent,
		ResourceID: "E", TargetUserID: "newcomer", NewRole: authz.RoleHost,
	})
	require.NoError(t, err)
	assert.False(t, decision.Allowed)

	// 6. A role from the other domain is Unprocessable even though its tier
	// would qualify for the self-service join path
	decision, err = engine.Authorize(ctx, identity("newcomer", sec.RoleUser), authz.Request{
		Action: authz.ActionCreateChild, Kind: authz.KindEvent,
		ResourceID: "E", NewRole: authz.RoleMember,
	})
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, authz.ReasonUnprocessable, decision.Reason)

	// 7. A role outside the closed set is Unprocessable too
	decision, err = engine.Authorize(ctx, identity("host", sec.RoleUser), authz.Request{
		Action: authz.ActionCreateChild, Kind: authz.KindEvent,
		ResourceID: "E", TargetUserID: "newcomer", NewRole: authz.Role("emperor"),
	})
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, authz.ReasonUnprocessable, decision.Reason)
}

/*
TestEngine_AdminOverride sweeps every gated action for an admin with zero
memberships: all allowed, except viewing another user's profile which stays
strictly self-gated.
*/
func TestEngine_AdminOverride(t *testing.T) {
	engine := newEngine(nil)
	ctx := context.Background()
	admin := identity("root", sec.RoleAdmin)

	actions := []authz.Action{
		authz.ActionRead,
		authz.ActionCreateChild,
		authz.ActionUpdateRole,
		authz.ActionUpdateResource,
		authz.ActionDeleteMembership,
		authz.ActionDeleteResource,
	}

	for _, action := range actions {
		decision, err := engine.Authorize(ctx, admin, authz.Request{
			Action: action, Kind: authz.KindEvent, ResourceID: "E",
			TargetUserID: "someone", NewRole: authz.RoleCoHost,
		})
		require.NoError(t, err)
		assert.True(t, decision.Allowed, "action %s should be allowed for admin", action)
	}

	// Admin escalation to top role is allowed: the override precedes the guard.
	decision, err := engine.Authorize(ctx, admin, authz.Request{
		Action: authz.ActionUpdateRole, Kind: authz.KindGroup,
		ResourceID: "G", TargetUserID: "someone", NewRole: authz.RoleOrganizer,
	})
	require.NoError(t, err)
	assert.True(t, decision.Allowed)

	// Viewing another user's profile remains self-only, even for admins.
	decision, err = engine.Authorize(ctx, admin, authz.Request{
		Action: authz.ActionSelfView, Kind: authz.KindUser, TargetUserID: "someone",
	})
	require.NoError(t, err)
	assert.False(t, decision.Allowed)

	// Admin viewing their own profile is plain self-access.
	decision, err = engine.Authorize(ctx, admin, authz.Request{
		Action: authz.ActionSelfView, Kind: authz.KindUser, TargetUserID: "root",
	})
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

/*
TestEngine_SelfAccess covers profile actions on user resources: allowed for
the owner, denied for everyone else, admin override for update/delete.
*/
func TestEngine_SelfAccess(t *testing.T) {
	engine := newEngine(nil)
	ctx := context.Background()

	tests := []struct {
		name    string
		caller  *authz.Identity
		action  authz.Action
		target  string
		allowed bool
	}{
		{"owner_views_self", identity("u1", sec.RoleUser), authz.ActionSelfView, "u1", true},
		{"other_views_profile", identity("u2", sec.RoleUser), authz.ActionSelfView, "u1", false},
		{"owner_updates_self", identity("u1", sec.RoleUser), authz.ActionUpdateResource, "u1", true},
		{"other_updates_profile", identity("u2", sec.RoleUser), authz.ActionUpdateResource, "u1", false},
		{"owner_deletes_self", identity("u1", sec.RoleUser), authz.ActionDeleteResource, "u1", true},
		{"admin_updates_any_profile", identity("root", sec.RoleAdmin), authz.ActionUpdateResource, "u1", true},
		{"admin_deletes_any_profile", identity("root", sec.RoleAdmin), authz.ActionDeleteResource, "u1", true},
		{"anonymous_views_profile", nil, authz.ActionSelfView, "u1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision, err := engine.Authorize(ctx, tt.caller, authz.Request{
				Action: tt.action, Kind: authz.KindUser, TargetUserID: tt.target,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.allowed, decision.Allowed)
		})
	}
}

/*
TestEngine_EmptyResource confirms that a resource with zero memberships
denies all membership-gated actions until a membership exists.
*/
func TestEngine_EmptyResource(t *testing.T) {
	engine := newEngine(nil)
	ctx := context.Background()
	caller := identity("u1", sec.RoleUser)

	for _, action := range []authz.Action{
		authz.ActionUpdateResource,
		authz.ActionDeleteResource,
		authz.ActionUpdateRole,
	} {
		decision, err := engine.Authorize(ctx, caller, authz.Request{
			Action: action, Kind: authz.KindEvent, ResourceID: "fresh-event",
			NewRole: authz.RoleCoHost,
		})
		require.NoError(t, err)
		assert.False(t, decision.Allowed, "action %s must be denied on an empty resource", action)
	}
}

/*
TestDecision_Err checks the mapping from denial reasons to the API error
taxonomy.
*/
func TestDecision_Err(t *testing.T) {
	assert.NoError(t, authz.Allow().Err())

	tests := []struct {
		reason authz.Reason
		code   string
	}{
		{authz.ReasonUnauthenticated, "UNAUTHORIZED"},
		{authz.ReasonForbidden, "FORBIDDEN"},
		{authz.ReasonUnprocessable, "UNPROCESSABLE"},
	}

	for _, tt := range tests {
		err := authz.Deny(tt.reason).Err()
		require.Error(t, err)
		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, tt.code, ae.Code)
	}
}

/*
TestRole_Tiers pins the role ordering for both domains.
*/
func TestRole_Tiers(t *testing.T) {
	assert.Equal(t, authz.TierTop, authz.RoleHost.Tier())
	assert.Equal(t, authz.TierMid, authz.RoleCoHost.Tier())
	assert.Equal(t, authz.TierBase, authz.RoleAttendee.Tier())
	assert.Equal(t, authz.TierTop, authz.RoleOrganizer.Tier())
	assert.Equal(t, authz.TierMid, authz.RoleCoOrganizer.Tier())
	assert.Equal(t, authz.TierBase, authz.RoleMember.Tier())
	assert.Equal(t, authz.TierNone, authz.RoleNone.Tier())

	assert.Equal(t, authz.RoleHost, authz.TopRole(authz.KindEvent))
	assert.Equal(t, authz.RoleOrganizer, authz.TopRole(authz.KindGroup))
	assert.Equal(t, authz.RoleAttendee, authz.BaseRole(authz.KindEvent))
	assert.Equal(t, authz.RoleMember, authz.BaseRole(authz.KindGroup))

	assert.True(t, authz.RoleCoHost.ValidFor(authz.KindEvent))
	assert.False(t, authz.RoleCoHost.ValidFor(authz.KindGroup))
}
