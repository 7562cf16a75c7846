// Copyright (c) 2026 Atsumira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package event_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/atsumira/internal/authz"
	"github.com/taibuivan/atsumira/internal/core/event"
	"github.com/taibuivan/atsumira/internal/platform/apperr"
	"github.com/taibuivan/atsumira/internal/platform/dberr"
	"github.com/taibuivan/atsumira/internal/platform/sec"
	"github.com/taibuivan/atsumira/pkg/pointer"
)

// fakeRepository is an in-memory [event.Repository] that also serves as the
// engine's membership source. Group memberships are seeded directly so
// nested-creation checks can be exercised without the group package.
type fakeRepository struct {
	events     map[string]*event.Event
	attendees  map[string]*event.Attendee // keyed eventID/userID
	groupRoles map[string]authz.Role      // keyed groupID/userID
	tags       map[string][]string        // eventID -> tagIDs
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		events:     make(map[string]*event.Event),
		attendees:  make(map[string]*event.Attendee),
		groupRoles: make(map[string]authz.Role),
		tags:       make(map[string][]string),
	}
}

func key(resourceID, userID string) string { return resourceID + "/" + userID }

func (f *fakeRepository) List(_ context.Context, filter event.Filter, _, _ int) ([]*event.Event, int, error) {
	var out []*event.Event
	for _, e := range f.events {
		if filter.GroupID != nil && (e.GroupID == nil || *e.GroupID != *filter.GroupID) {
			continue
		}
		out = append(out, e)
	}
	return out, len(out), nil
}

func (f *fakeRepository) FindByID(_ context.Context, id string) (*event.Event, error) {
	e, ok := f.events[id]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	clone := *e
	return &clone, nil
}

func (f *fakeRepository) Create(_ context.Context, e *event.Event) error {
	f.events[e.ID] = e
	return nil
}

func (f *fakeRepository) Update(_ context.Context, e *event.Event) error {
	if _, ok := f.events[e.ID]; !ok {
		return dberr.ErrNotFound
	}
	f.events[e.ID] = e
	return nil
}

func (f *fakeRepository) Delete(_ context.Context, id string) error {
	if _, ok := f.events[id]; !ok {
		return dberr.ErrNotFound
	}
	delete(f.events, id)
	return nil
}

func (f *fakeRepository) ListAttendees(_ context.Context, eventID string) ([]*event.Attendee, error) {
	var out []*event.Attendee
	for _, a := range f.attendees {
		if a.EventID == eventID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeRepository) AddAttendee(_ context.Context, a *event.Attendee) error {
	k := key(a.EventID, a.UserID)
	if _, ok := f.attendees[k]; ok {
		return apperr.Conflict("Resource already exists")
	}
	f.attendees[k] = a
	return nil
}

func (f *fakeRepository) UpdateAttendeeRole(_ context.Context, eventID, userID string, role authz.Role) error {
	a, ok := f.attendees[key(eventID, userID)]
	if !ok {
		return dberr.ErrNotFound
	}
	a.Role = role
	return nil
}

func (f *fakeRepository) RemoveAttendee(_ context.Context, eventID, userID string) error {
	k := key(eventID, userID)
	if _, ok := f.attendees[k]; !ok {
		return dberr.ErrNotFound
	}
	delete(f.attendees, k)
	return nil
}

func (f *fakeRepository) ListTags(_ context.Context, eventID string) ([]*event.TagRef, error) {
	var out []*event.TagRef
	for _, id := range f.tags[eventID] {
		out = append(out, &event.TagRef{ID: id})
	}
	return out, nil
}

func (f *fakeRepository) AttachTag(_ context.Context, eventID, tagID string) error {
	f.tags[eventID] = append(f.tags[eventID], tagID)
	return nil
}

func (f *fakeRepository) DetachTag(_ context.Context, eventID, tagID string) error {
	ids := f.tags[eventID]
	for i, id := range ids {
		if id == tagID {
			f.tags[eventID] = append(ids[:i], ids[i+1:]...)
			return nil
		}
	}
	return dberr.ErrNotFound
}

func (f *fakeRepository) MembershipRole(_ context.Context, userID string, kind authz.ResourceKind, resourceID string) (authz.Role, error) {
	if kind == authz.KindGroup {
		return f.groupRoles[key(resourceID, userID)], nil
	}
	if a, ok := f.attendees[key(resourceID, userID)]; ok {
		return a.Role, nil
	}
	return authz.RoleNone, nil
}

func newService(t *testing.T) (*event.Service, *fakeRepository) {
	t.Helper()
	repo := newFakeRepository()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	engine := authz.NewEngine(repo, logger)
	return event.NewService(repo, engine, logger), repo
}

func user(id string) *authz.Identity {
	return &authz.Identity{UserID: id, Role: sec.RoleUser}
}

func validEvent(name string) *event.Event {
	start := time.Date(2026, 10, 3, 18, 0, 0, 0, time.UTC)
	return &event.Event{
		Name:      name,
		StartDate: start,
		EndDate:   start.Add(3 * time.Hour),
	}
}

func seedEvent(t *testing.T, service *event.Service, creator *authz.Identity, name string) *event.Event {
	t.Helper()
	e := validEvent(name)
	require.NoError(t, service.CreateEvent(context.Background(), creator, e))
	return e
}

func TestService_CreateEvent(t *testing.T) {
	service, repo := newService(t)
	ctx := context.Background()

	t.Run("creator becomes host with planned status", func(t *testing.T) {
		e := seedEvent(t, service, user("alice"), "Autumn Picnic")

		assert.Equal(t, event.StatusPlanned, e.Status)
		role, _ := repo.MembershipRole(ctx, "alice", authz.KindEvent, e.ID)
		assert.Equal(t, authz.RoleHost, role)
	})

	t.Run("anonymous denied", func(t *testing.T) {
		err := service.CreateEvent(ctx, nil, validEvent("Ghost Event"))
		require.Error(t, err)
		assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)
	})

	t.Run("end before start rejected", func(t *testing.T) {
		e := validEvent("Backwards")
		e.EndDate = e.StartDate.Add(-time.Hour)
		err := service.CreateEvent(ctx, user("alice"), e)
		require.Error(t, err)
		assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		e := validEvent("Badly Labelled")
		e.Status = "cancelled"
		err := service.CreateEvent(ctx, user("alice"), e)
		require.Error(t, err)
		assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
	})
}

func TestService_CreateGroupEvent(t *testing.T) {
	service, repo := newService(t)
	ctx := context.Background()
	repo.groupRoles[key("G1", "alice")] = authz.RoleOrganizer
	repo.groupRoles[key("G1", "bob")] = authz.RoleMember

	t.Run("organizer creates inside group", func(t *testing.T) {
		e := validEvent("Monthly Meetup")
		e.GroupID = pointer.To("G1")
		require.NoError(t, service.CreateEvent(ctx, user("alice"), e))
	})

	t.Run("plain member cannot create inside group", func(t *testing.T) {
		e := validEvent("Unsanctioned Meetup")
		e.GroupID = pointer.To("G1")
		err := service.CreateEvent(ctx, user("bob"), e)
		require.Error(t, err)
		assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
	})
}

func TestService_Attendees(t *testing.T) {
	service, repo := newService(t)
	ctx := context.Background()
	e := seedEvent(t, service, user("alice"), "Game Night")

	t.Run("self-join defaults to attendee", func(t *testing.T) {
		attendee := &event.Attendee{EventID: e.ID}
		require.NoError(t, service.AddAttendee(ctx, user("bob"), attendee))

		role, _ := repo.MembershipRole(ctx, "bob", authz.KindEvent, e.ID)
		assert.Equal(t, authz.RoleAttendee, role)
	})

	t.Run("host promotes to co-host", func(t *testing.T) {
		require.NoError(t, service.UpdateAttendeeRole(ctx, user("alice"), e.ID, "bob", authz.RoleCoHost))

		role, _ := repo.MembershipRole(ctx, "bob", authz.KindEvent, e.ID)
		assert.Equal(t, authz.RoleCoHost, role)
	})

	t.Run("group-domain role never lands on an event roster", func(t *testing.T) {
		err := service.AddAttendee(ctx, user("mallory"), &event.Attendee{EventID: e.ID, Role: authz.RoleMember})
		require.Error(t, err)
		assert.Equal(t, "UNPROCESSABLE", apperr.As(err).Code)

		role, _ := repo.MembershipRole(ctx, "mallory", authz.KindEvent, e.ID)
		assert.Equal(t, authz.RoleNone, role)
	})

	t.Run("host role is never grantable", func(t *testing.T) {
		err := service.UpdateAttendeeRole(ctx, user("alice"), e.ID, "bob", authz.RoleHost)
		require.Error(t, err)
		assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
	})

	t.Run("attendee cannot remove another attendee", func(t *testing.T) {
		require.NoError(t, service.AddAttendee(ctx, user("carol"), &event.Attendee{EventID: e.ID}))

		err := service.RemoveAttendee(ctx, user("carol"), e.ID, "bob")
		require.Error(t, err)
		assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
	})

	t.Run("self-removal always allowed", func(t *testing.T) {
		require.NoError(t, service.RemoveAttendee(ctx, user("carol"), e.ID, "carol"))
	})
}

func TestService_UpdateEvent(t *testing.T) {
	service, _ := newService(t)
	ctx := context.Background()
	e := seedEvent(t, service, user("alice"), "Workshop")
	require.NoError(t, service.AddAttendee(ctx, user("bob"), &event.Attendee{EventID: e.ID}))

	t.Run("attendee forbidden", func(t *testing.T) {
		_, err := service.UpdateEvent(ctx, user("bob"), &event.Event{ID: e.ID, Name: "Hijacked"})
		require.Error(t, err)
		assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
	})

	t.Run("host updates status", func(t *testing.T) {
		updated, err := service.UpdateEvent(ctx, user("alice"), &event.Event{ID: e.ID, Status: event.StatusInProgress})
		require.NoError(t, err)
		assert.Equal(t, event.StatusInProgress, updated.Status)
		assert.Equal(t, "Workshop", updated.Name)
	})
}

func TestService_DeleteEvent(t *testing.T) {
	service, _ := newService(t)
	ctx := context.Background()
	e := seedEvent(t, service, user("alice"), "Retro")
	require.NoError(t, service.AddAttendee(ctx, user("alice"), &event.Attendee{
		EventID: e.ID, UserID: "bob", Role: authz.RoleCoHost,
	}))

	t.Run("co-host cannot delete", func(t *testing.T) {
		err := service.DeleteEvent(ctx, user("bob"), e.ID)
		require.Error(t, err)
		assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
	})

	t.Run("host deletes", func(t *testing.T) {
		require.NoError(t, service.DeleteEvent(ctx, user("alice"), e.ID))
	})
}

func TestService_Tags(t *testing.T) {
	service, _ := newService(t)
	ctx := context.Background()
	e := seedEvent(t, service, user("alice"), "Conference")
	require.NoError(t, service.AddAttendee(ctx, user("bob"), &event.Attendee{EventID: e.ID}))

	t.Run("attendee cannot attach tags", func(t *testing.T) {
		err := service.AttachTag(ctx, user("bob"), e.ID, "T1")
		require.Error(t, err)
		assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
	})

	t.Run("host attaches and detaches", func(t *testing.T) {
		require.NoError(t, service.AttachTag(ctx, user("alice"), e.ID, "T1"))

		tags, err := service.ListEventTags(ctx, e.ID)
		require.NoError(t, err)
		assert.Len(t, tags, 1)

		require.NoError(t, service.DetachTag(ctx, user("alice"), e.ID, "T1"))
	})
}
