// Copyright (c) 2026 Atsumira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package event

import (
	"context"
	"log/slog"

	"github.com/taibuivan/atsumira/internal/authz"
	"github.com/taibuivan/atsumira/internal/platform/validate"
	"github.com/taibuivan/atsumira/pkg/uuid"
)

// # Service Layer

// Service orchestrates business rules for events, attendance, and tag curation.
type Service struct {
	repo   Repository
	engine *authz.Engine
	logger *slog.Logger
}

// NewService constructs a new event [Service].
func NewService(repo Repository, engine *authz.Engine, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		engine: engine,
		logger: logger,
	}
}

// # Event Management

/*
ListEvents retrieves a paginated and filtered list of events.

Parameters:
  - context: context.Context
  - filter: Filter
  - limit, offset: int

Returns:
  - []*Event: List of events
  - int: Total matching count
  - error: Retrieval errors
*/
func (service *Service) ListEvents(context context.Context, filter Filter, limit, offset int) ([]*Event, int, error) {
	return service.repo.List(context, filter, limit, offset)
}

/*
GetEvent retrieves a single event by its UUID.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Event: Hydrated event entity
  - error: ErrNotFound if missing
*/
func (service *Service) GetEvent(context context.Context, id string) (*Event, error) {
	return service.repo.FindByID(context, id)
}

/*
CreateEvent schedules a new event and assigns the creator as host.

Description: When the event is nested under a group, the caller must hold a
managing role (organizer or co-organizer) in that group; standalone events
only require authentication. The host role is fixed here and can never be
granted again through role updates.

Parameters:
  - context: context.Context
  - identity: *authz.Identity (The user creating the event)
  - event: *Event

Returns:
  - error: Authorization, validation, or persistence failures
*/
func (service *Service) CreateEvent(context context.Context, identity *authz.Identity, event *Event) error {
	if identity == nil {
		return authz.Deny(authz.ReasonUnauthenticated).Err()
	}

	// Nested creation is gated on the parent group's managing tier.
	if event.GroupID != nil {
		decision, err := service.engine.Authorize(context, identity, authz.Request{
			Action: authz.ActionUpdateResource, Kind: authz.KindGroup, ResourceID: *event.GroupID,
		})
		if err != nil {
			return err
		}
		if err := decision.Err(); err != nil {
			return err
		}
	}

	if event.Status == "" {
		event.Status = StatusPlanned
	}

	if err := service.validateEvent(event); err != nil {
		return err
	}

	event.ID = uuid.New()

	if err := service.repo.Create(context, event); err != nil {
		return err
	}

	if err := service.repo.AddAttendee(context, &Attendee{
		EventID: event.ID,
		UserID:  identity.UserID,
		Role:    authz.RoleHost,
	}); err != nil {
		return err
	}
	service.engine.InvalidateMembership(context, identity.UserID, authz.KindEvent, event.ID)

	service.logger.InfoContext(context, "event_created",
		slog.String("event_id", event.ID),
		slog.String("creator_id", identity.UserID),
	)

	return nil
}

/*
UpdateEvent modifies the metadata and schedule of an existing event.

Description: The target is fetched before authorization, so a missing event
is a 404 regardless of permissions. Only hosts, co-hosts, or admins may update.

Parameters:
  - context: context.Context
  - identity: *authz.Identity
  - event: *Event (Partial update payload with ID set)

Returns:
  - *Event: The updated entity
  - error: Authorization, validation, or persistence failures
*/
func (service *Service) UpdateEvent(context context.Context, identity *authz.Identity, event *Event) (*Event, error) {
	existing, err := service.repo.FindByID(context, event.ID)
	if err != nil {
		return nil, err
	}

	decision, err := service.engine.Authorize(context, identity, authz.Request{
		Action: authz.ActionUpdateResource, Kind: authz.KindEvent, ResourceID: event.ID,
	})
	if err != nil {
		return nil, err
	}
	if err := decision.Err(); err != nil {
		return nil, err
	}

	if event.Name != "" {
		existing.Name = event.Name
	}
	if event.Description != nil {
		existing.Description = event.Description
	}
	if event.Location != nil {
		existing.Location = event.Location
	}
	if event.Status != "" {
		existing.Status = event.Status
	}
	if !event.StartDate.IsZero() {
		existing.StartDate = event.StartDate
	}
	if !event.EndDate.IsZero() {
		existing.EndDate = event.EndDate
	}

	if err := service.validateEvent(existing); err != nil {
		return nil, err
	}

	if err := service.repo.Update(context, existing); err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "event_updated", slog.String("event_id", existing.ID))

	return existing, nil
}

/*
DeleteEvent removes an event entirely.

Description: Reserved for the host (top role) or a global admin.

Parameters:
  - context: context.Context
  - identity: *authz.Identity
  - eventID: string

Returns:
  - error: Authorization or persistence failures
*/
func (service *Service) DeleteEvent(context context.Context, identity *authz.Identity, eventID string) error {
	if _, err := service.repo.FindByID(context, eventID); err != nil {
		return err
	}

	decision, err := service.engine.Authorize(context, identity, authz.Request{
		Action: authz.ActionDeleteResource, Kind: authz.KindEvent, ResourceID: eventID,
	})
	if err != nil {
		return err
	}
	if err := decision.Err(); err != nil {
		return err
	}

	if err := service.repo.Delete(context, eventID); err != nil {
		return err
	}

	service.logger.InfoContext(context, "event_deleted",
		slog.String("event_id", eventID),
		slog.String("actor_id", identity.UserID),
	)

	return nil
}

// validateEvent applies the shared entity rules for create and update paths.
func (service *Service) validateEvent(event *Event) error {
	validator := &validate.Validator{}
	validator.Required(FieldName, event.Name).MaxLen(FieldName, event.Name, 200)
	validator.Custom(FieldStatus, !event.Status.Valid(), "Must be one of: planned, in progress, finished")
	validator.Custom(FieldStartDate, event.StartDate.IsZero(), "This field is required")
	validator.Custom(FieldEndDate, event.EndDate.IsZero(), "This field is required")

	if !event.StartDate.IsZero() && !event.EndDate.IsZero() {
		validator.NotBefore(FieldEndDate, event.EndDate, event.StartDate)
	}

	return validator.Err()
}

// # Attendance Controls

/*
ListAttendees returns the participant roster for a specific event.

Parameters:
  - context: context.Context
  - eventID: string

Returns:
  - []*Attendee: List of participants
  - error: Retrieval failures
*/
func (service *Service) ListAttendees(context context.Context, eventID string) ([]*Attendee, error) {
	if _, err := service.repo.FindByID(context, eventID); err != nil {
		return nil, err
	}
	return service.repo.ListAttendees(context, eventID)
}

/*
AddAttendee joins a user to the event roster.

Description: An empty UserID means the caller joins themselves. Joining as a
plain attendee is self-service; granting co-host requires a managing role;
the host role is never grantable here.

Parameters:
  - context: context.Context
  - identity: *authz.Identity
  - attendee: *Attendee (EventID set; UserID/Role optional)

Returns:
  - error: Authorization, conflict, or storage failures
*/
func (service *Service) AddAttendee(context context.Context, identity *authz.Identity, attendee *Attendee) error {
	if _, err := service.repo.FindByID(context, attendee.EventID); err != nil {
		return err
	}

	if attendee.UserID == "" && identity != nil {
		attendee.UserID = identity.UserID
	}
	if attendee.Role == authz.RoleNone {
		attendee.Role = authz.RoleAttendee
	}

	decision, err := service.engine.Authorize(context, identity, authz.Request{
		Action:       authz.ActionCreateChild,
		Kind:         authz.KindEvent,
		ResourceID:   attendee.EventID,
		TargetUserID: attendee.UserID,
		NewRole:      attendee.Role,
	})
	if err != nil {
		return err
	}
	if err := decision.Err(); err != nil {
		return err
	}

	if err := service.repo.AddAttendee(context, attendee); err != nil {
		return err
	}
	service.engine.InvalidateMembership(context, attendee.UserID, authz.KindEvent, attendee.EventID)

	service.logger.InfoContext(context, "event_attendee_added",
		slog.String("event_id", attendee.EventID),
		slog.String("user_id", attendee.UserID),
		slog.String("role", string(attendee.Role)),
	)

	return nil
}

/*
UpdateAttendeeRole changes a participant's authority level within an event.

Description: Requires a co-host or host caller. Granting the host role is
always denied; unknown roles are unprocessable.

Parameters:
  - context: context.Context
  - identity: *authz.Identity
  - eventID, userID: string
  - role: authz.Role

Returns:
  - error: Authorization or persistence failures
*/
func (service *Service) UpdateAttendeeRole(context context.Context, identity *authz.Identity, eventID, userID string, role authz.Role) error {
	if _, err := service.repo.FindByID(context, eventID); err != nil {
		return err
	}

	decision, err := service.engine.Authorize(context, identity, authz.Request{
		Action:       authz.ActionUpdateRole,
		Kind:         authz.KindEvent,
		ResourceID:   eventID,
		TargetUserID: userID,
		NewRole:      role,
	})
	if err != nil {
		return err
	}
	if err := decision.Err(); err != nil {
		return err
	}

	if err := service.repo.UpdateAttendeeRole(context, eventID, userID, role); err != nil {
		return err
	}
	service.engine.InvalidateMembership(context, userID, authz.KindEvent, eventID)

	service.logger.InfoContext(context, "event_attendee_role_updated",
		slog.String("event_id", eventID),
		slog.String("user_id", userID),
		slog.String("role", string(role)),
	)

	return nil
}

/*
RemoveAttendee removes a participant from an event.

Description: Attendees may always remove themselves; removing others requires
a co-host, host, or admin caller.

Parameters:
  - context: context.Context
  - identity: *authz.Identity
  - eventID, userID: string

Returns:
  - error: Authorization or storage failures
*/
func (service *Service) RemoveAttendee(context context.Context, identity *authz.Identity, eventID, userID string) error {
	if _, err := service.repo.FindByID(context, eventID); err != nil {
		return err
	}

	decision, err := service.engine.Authorize(context, identity, authz.Request{
		Action:       authz.ActionDeleteMembership,
		Kind:         authz.KindEvent,
		ResourceID:   eventID,
		TargetUserID: userID,
	})
	if err != nil {
		return err
	}
	if err := decision.Err(); err != nil {
		return err
	}

	if err := service.repo.RemoveAttendee(context, eventID, userID); err != nil {
		return err
	}
	service.engine.InvalidateMembership(context, userID, authz.KindEvent, eventID)

	service.logger.InfoContext(context, "event_attendee_removed",
		slog.String("event_id", eventID),
		slog.String("user_id", userID),
	)

	return nil
}

// # Tag Curation

/*
ListEventTags returns the catalog tags attached to an event.

Parameters:
  - context: context.Context
  - eventID: string

Returns:
  - []*TagRef: Attached tags
  - error: Retrieval failures
*/
func (service *Service) ListEventTags(context context.Context, eventID string) ([]*TagRef, error) {
	if _, err := service.repo.FindByID(context, eventID); err != nil {
		return nil, err
	}
	return service.repo.ListTags(context, eventID)
}

/*
AttachTag links a catalog tag to an event.

Description: Tag curation is managed content, gated on the event's managing
tier (host or co-host) like any other event update.

Parameters:
  - context: context.Context
  - identity: *authz.Identity
  - eventID, tagID: string

Returns:
  - error: Authorization, conflict, or storage failures
*/
func (service *Service) AttachTag(context context.Context, identity *authz.Identity, eventID, tagID string) error {
	if _, err := service.repo.FindByID(context, eventID); err != nil {
		return err
	}

	decision, err := service.engine.Authorize(context, identity, authz.Request{
		Action: authz.ActionUpdateResource, Kind: authz.KindEvent, ResourceID: eventID,
	})
	if err != nil {
		return err
	}
	if err := decision.Err(); err != nil {
		return err
	}

	if err := service.repo.AttachTag(context, eventID, tagID); err != nil {
		return err
	}

	service.logger.InfoContext(context, "event_tag_attached",
		slog.String("event_id", eventID),
		slog.String("tag_id", tagID),
	)

	return nil
}

/*
DetachTag removes a catalog tag from an event.

Parameters:
  - context: context.Context
  - identity: *authz.Identity
  - eventID, tagID: string

Returns:
  - error: Authorization or storage failures
*/
func (service *Service) DetachTag(context context.Context, identity *authz.Identity, eventID, tagID string) error {
	if _, err := service.repo.FindByID(context, eventID); err != nil {
		return err
	}

	decision, err := service.engine.Authorize(context, identity, authz.Request{
		Action: authz.ActionUpdateResource, Kind: authz.KindEvent, ResourceID: eventID,
	})
	if err != nil {
		return err
	}
	if err := decision.Err(); err != nil {
		return err
	}

	if err := service.repo.DetachTag(context, eventID, tagID); err != nil {
		return err
	}

	service.logger.InfoContext(context, "event_tag_detached",
		slog.String("event_id", eventID),
		slog.String("tag_id", tagID),
	)

	return nil
}
