// Copyright (c) 2026 Atsumira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package authz

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresMembershipSource implements [MembershipSource] using pgx.
//
// It reads the attendee and member join tables directly; it never mutates
// them — membership writes belong to the event and group domains.
type PostgresMembershipSource struct {
	db *pgxpool.Pool
}

// NewPostgresMembershipSource constructs a PostgreSQL backed membership lookup.
func NewPostgresMembershipSource(db *pgxpool.Pool) *PostgresMembershipSource {
	return &PostgresMembershipSource{db: db}
}

/*
MembershipRole returns the role a user holds within an event or group.

Description: A missing row is a normal outcome (RoleNone), never an error.

Parameters:
  - context: context.Context
  - userID: string
  - kind: ResourceKind
  - resourceID: string

Returns:
  - Role: Membership role or RoleNone
  - error: Query failures or an unknown resource kind
*/
func (source *PostgresMembershipSource) MembershipRole(context context.Context, userID string, kind ResourceKind, resourceID string) (Role, error) {
	var query string

	switch kind {
	case KindEvent:
		query = `SELECT role FROM core.attendee WHERE userid = $1 AND eventid = $2`
	case KindGroup:
		query = `SELECT role FROM core.member WHERE userid = $1 AND groupid = $2`
	default:
		return RoleNone, fmt.Errorf("authz: no membership table for resource kind %q", kind)
	}

	var role string
	err := source.db.QueryRow(context, query, userID, resourceID).Scan(&role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return RoleNone, nil
		}
		return RoleNone, fmt.Errorf("authz: membership lookup failed: %w", err)
	}

	return Role(role), nil
}
