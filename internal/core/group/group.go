// Copyright (c) 2026 Atsumira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package group manages social groups and their memberships.

It handles the lifecycle of communities, from discovery and joining to
internal role management.

# Core Responsibility

  - Community: Defines the [Group] entity and its metadata.
  - Membership: Manages [Member] associations and hierarchical roles.
  - Authorization: Delegates every mutation decision to the policy engine.

This package provides the organizational context for events nested under a group.
*/
package group

import (
	"time"

	"github.com/taibuivan/atsumira/internal/authz"
)

// # Core Entities

// Group represents a community that organizes recurring events.
type Group struct {
	ID          string    `json:"id"` // UUIDv7
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description *string   `json:"description,omitempty"`
	AvatarURL   *string   `json:"avatar_url,omitempty"`
	MemberCount int       `json:"member_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Member represents a user's affiliation and role within a specific group.
type Member struct {
	GroupID   string     `json:"group_id"`
	UserID    string     `json:"user_id"`
	Nickname  string     `json:"nickname"`             // Denormalized for detail views
	AvatarURL *string    `json:"avatar_url,omitempty"` // Denormalized for detail views
	Role      authz.Role `json:"role"`
	JoinedAt  time.Time  `json:"joined_at"`
}

// # Search & Filtering

// Filter holds parameters for searching and listing groups.
type Filter struct {
	Query string `json:"q"`
	Sort  string `json:"sort"` // name, membercount, createdat
}

// # Field Identifiers

const (
	FieldName        = "name"
	FieldDescription = "description"
	FieldAvatarURL   = "avatar_url"
	FieldSlug        = "slug"
	FieldRole        = "role"
	FieldUserID      = "user_id"
	FieldMessage     = "message"
)
