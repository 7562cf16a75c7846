// Copyright (c) 2026 Atsumira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package event

import (
	"context"

	"github.com/taibuivan/atsumira/internal/authz"
)

// # Event Data Access

// Repository defines the data access contract for events, attendees, and tags.
type Repository interface {

	/*
		List returns a filtered, paginated slice of events and the total count.

		Parameters:
		  - context: context.Context
		  - filter: Filter (Search query, status, parent group)
		  - limit: int
		  - offset: int

		Returns:
		  - []*Event: Slice of matching events
		  - int: Total record count
		  - error: Database retrieval failures
	*/
	List(context context.Context, filter Filter, limit, offset int) ([]*Event, int, error)

	/*
		FindByID retrieves an event by its UUID.

		Parameters:
		  - context: context.Context
		  - id: string (UUIDv7)

		Returns:
		  - *Event: Hydrated entity
		  - error: ErrNotFound if missing
	*/
	FindByID(context context.Context, id string) (*Event, error)

	/*
		Create persists a new event to the store.

		Parameters:
		  - context: context.Context
		  - event: *Event

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, event *Event) error

	/*
		Update modifies an existing event's metadata and schedule.

		Parameters:
		  - context: context.Context
		  - event: *Event

		Returns:
		  - error: Persistence failures
	*/
	Update(context context.Context, event *Event) error

	/*
		Delete removes an event and all dependent attendee and tag rows.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: ErrNotFound if no row matched
	*/
	Delete(context context.Context, id string) error

	// # Attendance Management

	/*
		ListAttendees returns all users participating in an event.

		Parameters:
		  - context: context.Context
		  - eventID: string

		Returns:
		  - []*Attendee: List of participants
		  - error: Retrieval failures
	*/
	ListAttendees(context context.Context, eventID string) ([]*Attendee, error)

	/*
		AddAttendee links a user to an event with a specified role and bumps
		the denormalized attendee counter atomically.

		Parameters:
		  - context: context.Context
		  - attendee: *Attendee

		Returns:
		  - error: Conflict if the user already attends the event
	*/
	AddAttendee(context context.Context, attendee *Attendee) error

	/*
		UpdateAttendeeRole changes a user's authority level within an event.

		Parameters:
		  - context: context.Context
		  - eventID: string
		  - userID: string
		  - role: authz.Role

		Returns:
		  - error: ErrNotFound if no attendance exists
	*/
	UpdateAttendeeRole(context context.Context, eventID, userID string, role authz.Role) error

	/*
		RemoveAttendee terminates a user's participation and decrements the
		attendee counter atomically.

		Parameters:
		  - context: context.Context
		  - eventID: string
		  - userID: string

		Returns:
		  - error: ErrNotFound if no attendance exists
	*/
	RemoveAttendee(context context.Context, eventID, userID string) error

	// # Tag Curation

	/*
		ListTags returns the catalog tags attached to an event.

		Parameters:
		  - context: context.Context
		  - eventID: string

		Returns:
		  - []*TagRef: Attached tags
		  - error: Retrieval failures
	*/
	ListTags(context context.Context, eventID string) ([]*TagRef, error)

	/*
		AttachTag links a catalog tag to an event.

		Parameters:
		  - context: context.Context
		  - eventID: string
		  - tagID: string

		Returns:
		  - error: Conflict if already attached, NotFound if the tag is unknown
	*/
	AttachTag(context context.Context, eventID, tagID string) error

	/*
		DetachTag removes a catalog tag from an event.

		Parameters:
		  - context: context.Context
		  - eventID: string
		  - tagID: string

		Returns:
		  - error: ErrNotFound if the link does not exist
	*/
	DetachTag(context context.Context, eventID, tagID string) error
}
