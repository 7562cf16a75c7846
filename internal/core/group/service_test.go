// Copyright (c) 2026 Atsumira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package group_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/atsumira/internal/authz"
	"github.com/taibuivan/atsumira/internal/core/group"
	"github.com/taibuivan/atsumira/internal/platform/apperr"
	"github.com/taibuivan/atsumira/internal/platform/dberr"
	"github.com/taibuivan/atsumira/internal/platform/sec"
)

// fakeRepository is an in-memory [group.Repository]. Membership rows double
// as the engine's membership source, so authorization decisions see every
// mutation immediately, exactly like the real read-through cache after an
// invalidation.
type fakeRepository struct {
	groups  map[string]*group.Group
	members map[string]*group.Member // keyed groupID/userID
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		groups:  make(map[string]*group.Group),
		members: make(map[string]*group.Member),
	}
}

func memberKey(groupID, userID string) string { return groupID + "/" + userID }

func (f *fakeRepository) List(_ context.Context, _ group.Filter, _, _ int) ([]*group.Group, int, error) {
	out := make([]*group.Group, 0, len(f.groups))
	for _, g := range f.groups {
		out = append(out, g)
	}
	return out, len(out), nil
}

func (f *fakeRepository) FindByID(_ context.Context, id string) (*group.Group, error) {
	g, ok := f.groups[id]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	clone := *g
	return &clone, nil
}

func (f *fakeRepository) FindBySlug(_ context.Context, slug string) (*group.Group, error) {
	for _, g := range f.groups {
		if g.Slug == slug {
			clone := *g
			return &clone, nil
		}
	}
	return nil, dberr.ErrNotFound
}

func (f *fakeRepository) Create(_ context.Context, g *group.Group) error {
	f.groups[g.ID] = g
	return nil
}

func (f *fakeRepository) Update(_ context.Context, g *group.Group) error {
	if _, ok := f.groups[g.ID]; !ok {
		return dberr.ErrNotFound
	}
	f.groups[g.ID] = g
	return nil
}

func (f *fakeRepository) Delete(_ context.Context, id string) error {
	if _, ok := f.groups[id]; !ok {
		return dberr.ErrNotFound
	}
	delete(f.groups, id)
	return nil
}

func (f *fakeRepository) ListMembers(_ context.Context, groupID string) ([]*group.Member, error) {
	var out []*group.Member
	for _, m := range f.members {
		if m.GroupID == groupID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeRepository) AddMember(_ context.Context, m *group.Member) error {
	key := memberKey(m.GroupID, m.UserID)
	if _, ok := f.members[key]; ok {
		return apperr.Conflict("Resource already exists")
	}
	f.members[key] = m
	return nil
}

func (f *fakeRepository) UpdateMemberRole(_ context.Context, groupID, userID string, role authz.Role) error {
	m, ok := f.members[memberKey(groupID, userID)]
	if !ok {
		return dberr.ErrNotFound
	}
	m.Role = role
	return nil
}

func (f *fakeRepository) RemoveMember(_ context.Context, groupID, userID string) error {
	key := memberKey(groupID, userID)
	if _, ok := f.members[key]; !ok {
		return dberr.ErrNotFound
	}
	delete(f.members, key)
	return nil
}

// MembershipRole lets the fake repository stand in for the engine's
// membership source.
func (f *fakeRepository) MembershipRole(_ context.Context, userID string, _ authz.ResourceKind, resourceID string) (authz.Role, error) {
	if m, ok := f.members[memberKey(resourceID, userID)]; ok {
		return m.Role, nil
	}
	return authz.RoleNone, nil
}

func newService(t *testing.T) (*group.Service, *fakeRepository) {
	t.Helper()
	repo := newFakeRepository()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	engine := authz.NewEngine(repo, logger)
	return group.NewService(repo, engine, logger), repo
}

func user(id string) *authz.Identity {
	return &authz.Identity{UserID: id, Role: sec.RoleUser}
}

func admin(id string) *authz.Identity {
	return &authz.Identity{UserID: id, Role: sec.RoleAdmin}
}

func seedGroup(t *testing.T, service *group.Service, creator *authz.Identity, name string) *group.Group {
	t.Helper()
	g := &group.Group{Name: name}
	require.NoError(t, service.CreateGroup(context.Background(), creator, g))
	return g
}

func TestService_CreateGroup(t *testing.T) {
	service, repo := newService(t)
	ctx := context.Background()

	t.Run("creator becomes organizer", func(t *testing.T) {
		g := seedGroup(t, service, user("alice"), "Tokyo Hikers")

		assert.NotEmpty(t, g.ID)
		assert.Equal(t, "tokyo-hikers", g.Slug)

		role, err := repo.MembershipRole(ctx, "alice", authz.KindGroup, g.ID)
		require.NoError(t, err)
		assert.Equal(t, authz.RoleOrganizer, role)
	})

	t.Run("anonymous denied", func(t *testing.T) {
		err := service.CreateGroup(ctx, nil, &group.Group{Name: "Ghost Group"})
		require.Error(t, err)
		assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)
	})

	t.Run("empty name rejected", func(t *testing.T) {
		err := service.CreateGroup(ctx, user("alice"), &group.Group{})
		require.Error(t, err)
		assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
	})
}

func TestService_AddMember(t *testing.T) {
	service, repo := newService(t)
	ctx := context.Background()
	g := seedGroup(t, service, user("alice"), "Board Gamers")

	t.Run("self-join defaults to member", func(t *testing.T) {
		member := &group.Member{GroupID: g.ID}
		require.NoError(t, service.AddMember(ctx, user("bob"), member))

		assert.Equal(t, "bob", member.UserID)
		role, _ := repo.MembershipRole(ctx, "bob", authz.KindGroup, g.ID)
		assert.Equal(t, authz.RoleMember, role)
	})

	t.Run("member cannot grant co-organizer", func(t *testing.T) {
		err := service.AddMember(ctx, user("bob"), &group.Member{
			GroupID: g.ID, UserID: "carol", Role: authz.RoleCoOrganizer,
		})
		require.Error(t, err)
		assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
	})

	t.Run("organizer grants co-organizer", func(t *testing.T) {
		require.NoError(t, service.AddMember(ctx, user("alice"), &group.Member{
			GroupID: g.ID, UserID: "carol", Role: authz.RoleCoOrganizer,
		}))

		role, _ := repo.MembershipRole(ctx, "carol", authz.KindGroup, g.ID)
		assert.Equal(t, authz.RoleCoOrganizer, role)
	})

	t.Run("organizer role is never grantable", func(t *testing.T) {
		err := service.AddMember(ctx, user("alice"), &group.Member{
			GroupID: g.ID, UserID: "dave", Role: authz.RoleOrganizer,
		})
		require.Error(t, err)
		assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
	})

	t.Run("duplicate join conflicts", func(t *testing.T) {
		err := service.AddMember(ctx, user("bob"), &group.Member{GroupID: g.ID})
		require.Error(t, err)
		assert.Equal(t, "CONFLICT", apperr.As(err).Code)
	})

	t.Run("missing group is not found", func(t *testing.T) {
		err := service.AddMember(ctx, user("bob"), &group.Member{GroupID: "missing"})
		require.Error(t, err)
		assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
	})
}

func TestService_UpdateMemberRole(t *testing.T) {
	service, repo := newService(t)
	ctx := context.Background()
	g := seedGroup(t, service, user("alice"), "Climbers")
	require.NoError(t, service.AddMember(ctx, user("bob"), &group.Member{GroupID: g.ID}))

	t.Run("member cannot manage roles", func(t *testing.T) {
		err := service.UpdateMemberRole(ctx, user("bob"), g.ID, "bob", authz.RoleCoOrganizer)
		require.Error(t, err)
		assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
	})

	t.Run("organizer promotes to co-organizer", func(t *testing.T) {
		require.NoError(t, service.UpdateMemberRole(ctx, user("alice"), g.ID, "bob", authz.RoleCoOrganizer))

		role, _ := repo.MembershipRole(ctx, "bob", authz.KindGroup, g.ID)
		assert.Equal(t, authz.RoleCoOrganizer, role)
	})

	t.Run("organizer role cannot be granted", func(t *testing.T) {
		err := service.UpdateMemberRole(ctx, user("alice"), g.ID, "bob", authz.RoleOrganizer)
		require.Error(t, err)
		assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
	})

	t.Run("event role in group domain is unprocessable", func(t *testing.T) {
		err := service.UpdateMemberRole(ctx, user("alice"), g.ID, "bob", authz.RoleCoHost)
		require.Error(t, err)
		assert.Equal(t, "UNPROCESSABLE", apperr.As(err).Code)
	})
}

func TestService_RemoveMember(t *testing.T) {
	service, repo := newService(t)
	ctx := context.Background()
	g := seedGroup(t, service, user("alice"), "Runners")
	require.NoError(t, service.AddMember(ctx, user("bob"), &group.Member{GroupID: g.ID}))
	require.NoError(t, service.AddMember(ctx, user("carol"), &group.Member{GroupID: g.ID}))

	t.Run("member cannot remove another member", func(t *testing.T) {
		err := service.RemoveMember(ctx, user("bob"), g.ID, "carol")
		require.Error(t, err)
		assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
	})

	t.Run("self-removal always allowed", func(t *testing.T) {
		require.NoError(t, service.RemoveMember(ctx, user("carol"), g.ID, "carol"))

		role, _ := repo.MembershipRole(ctx, "carol", authz.KindGroup, g.ID)
		assert.Equal(t, authz.RoleNone, role)
	})

	t.Run("organizer removes member", func(t *testing.T) {
		require.NoError(t, service.RemoveMember(ctx, user("alice"), g.ID, "bob"))
	})
}

func TestService_UpdateGroup(t *testing.T) {
	service, _ := newService(t)
	ctx := context.Background()
	g := seedGroup(t, service, user("alice"), "Photographers")
	require.NoError(t, service.AddMember(ctx, user("bob"), &group.Member{GroupID: g.ID}))

	t.Run("plain member forbidden", func(t *testing.T) {
		_, err := service.UpdateGroup(ctx, user("bob"), &group.Group{ID: g.ID, Name: "Renamed"})
		require.Error(t, err)
		assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
	})

	t.Run("organizer updates metadata", func(t *testing.T) {
		updated, err := service.UpdateGroup(ctx, user("alice"), &group.Group{ID: g.ID, Name: "Shutterbugs"})
		require.NoError(t, err)
		assert.Equal(t, "Shutterbugs", updated.Name)
	})

	t.Run("missing group is not found before authorization", func(t *testing.T) {
		_, err := service.UpdateGroup(ctx, user("nobody"), &group.Group{ID: "missing", Name: "X"})
		require.Error(t, err)
		assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
	})
}

func TestService_DeleteGroup(t *testing.T) {
	service, _ := newService(t)
	ctx := context.Background()
	g := seedGroup(t, service, user("alice"), "Divers")
	require.NoError(t, service.AddMember(ctx, user("alice"), &group.Member{
		GroupID: g.ID, UserID: "bob", Role: authz.RoleCoOrganizer,
	}))

	t.Run("co-organizer cannot delete", func(t *testing.T) {
		err := service.DeleteGroup(ctx, user("bob"), g.ID)
		require.Error(t, err)
		assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
	})

	t.Run("admin deletes without membership", func(t *testing.T) {
		require.NoError(t, service.DeleteGroup(ctx, admin("root"), g.ID))
	})
}
