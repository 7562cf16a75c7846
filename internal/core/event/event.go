// Copyright (c) 2026 Atsumira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package event manages events, their attendees, and attached tags.

Events are the primary unit of activity on the platform. They can stand alone
or be nested under a group, in which case creating one requires a managing
role in the parent group.

# Core Responsibility

  - Scheduling: Defines the [Event] entity with its status lifecycle and dates.
  - Attendance: Manages [Attendee] associations and hierarchical roles.
  - Curation: Attaches and detaches catalog tags per event.

Every mutation is decided by the policy engine; reads remain public.
*/
package event

import (
	"time"

	"github.com/taibuivan/atsumira/internal/authz"
)

// # Event Enums

// Status describes where an event sits in its lifecycle.
type Status string

const (
	StatusPlanned    Status = "planned"
	StatusInProgress Status = "in progress"
	StatusFinished   Status = "finished"
)

// Valid reports whether the status is one of the closed lifecycle values.
func (s Status) Valid() bool {
	switch s {
	case StatusPlanned, StatusInProgress, StatusFinished:
		return true
	default:
		return false
	}
}

// # Core Entities

// Event represents a scheduled gathering, optionally nested under a group.
type Event struct {
	ID            string    `json:"id"` // UUIDv7
	GroupID       *string   `json:"group_id,omitempty"`
	Name          string    `json:"name"`
	Description   *string   `json:"description,omitempty"`
	Location      *string   `json:"location,omitempty"`
	Status        Status    `json:"status"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	AttendeeCount int       `json:"attendee_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Attendee represents a user's participation and role within a specific event.
type Attendee struct {
	EventID   string     `json:"event_id"`
	UserID    string     `json:"user_id"`
	Nickname  string     `json:"nickname"`             // Denormalized for detail views
	AvatarURL *string    `json:"avatar_url,omitempty"` // Denormalized for detail views
	Role      authz.Role `json:"role"`
	JoinedAt  time.Time  `json:"joined_at"`
}

// TagRef is a lightweight tag projection attached to an event.
type TagRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// # Search & Filtering

// Filter holds parameters for searching and listing events.
type Filter struct {
	Query   string  `json:"q"`
	Status  Status  `json:"status"`
	GroupID *string `json:"group_id"`
	Sort    string  `json:"sort"` // startdate, createdat, name
}

// # Field Identifiers

const (
	FieldName        = "name"
	FieldDescription = "description"
	FieldLocation    = "location"
	FieldStatus      = "status"
	FieldStartDate   = "start_date"
	FieldEndDate     = "end_date"
	FieldRole        = "role"
	FieldUserID      = "user_id"
	FieldTagID       = "tag_id"
	FieldMessage     = "message"
)
