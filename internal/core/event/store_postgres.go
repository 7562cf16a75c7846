// Copyright (c) 2026 Atsumira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package event

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/atsumira/internal/authz"
	"github.com/taibuivan/atsumira/internal/platform/dberr"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgreSQL backed event store.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// # Event Retrieval

/*
List returns a filtered and paginated list of events.

Description: Uses ILIKE for name search and COUNT(*) OVER() for total metadata.

Parameters:
  - context: context.Context
  - filter: Filter
  - limit: int
  - offset: int

Returns:
  - []*Event: Slice of matching events
  - int: Total record count
  - error: Database retrieval failures
*/
func (repository *PostgresRepository) List(context context.Context, filter Filter, limit, offset int) ([]*Event, int, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
		SELECT
			id, groupid, name, description, location, status,
			startdate, enddate, attendeecount, createdat, updatedat,
			COUNT(*) OVER() as total
		FROM core.event
		WHERE TRUE
	`)

	args := []any{}
	argID := 1

	if filter.Query != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND name ILIKE $%d", argID))
		args = append(args, "%"+filter.Query+"%")
		argID++
	}

	if filter.Status != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND status = $%d", argID))
		args = append(args, filter.Status)
		argID++
	}

	if filter.GroupID != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND groupid = $%d", argID))
		args = append(args, *filter.GroupID)
		argID++
	}

	orderBy := "startdate ASC"
	switch filter.Sort {
	case "createdat":
		orderBy = "createdat DESC"
	case "name":
		orderBy = "name ASC"
	}

	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY %s LIMIT $%d OFFSET $%d", orderBy, argID, argID+1))
	args = append(args, limit, offset)

	rows, err := repository.db.Query(context, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_events")
	}
	defer rows.Close()

	var events []*Event
	var total int
	for rows.Next() {
		event := &Event{}
		err := rows.Scan(
			&event.ID, &event.GroupID, &event.Name, &event.Description, &event.Location, &event.Status,
			&event.StartDate, &event.EndDate, &event.AttendeeCount, &event.CreatedAt, &event.UpdatedAt, &total,
		)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_event")
		}
		events = append(events, event)
	}

	return events, total, nil
}

/*
FindByID retrieves a single event record by its primary key.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Event: Hydrated entity
  - error: Database retrieval failures
*/
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Event, error) {
	const query = `
		SELECT id, groupid, name, description, location, status,
			startdate, enddate, attendeecount, createdat, updatedat
		FROM core.event
		WHERE id = $1
	`
	event := &Event{}
	err := repository.db.QueryRow(context, query, id).Scan(
		&event.ID, &event.GroupID, &event.Name, &event.Description, &event.Location, &event.Status,
		&event.StartDate, &event.EndDate, &event.AttendeeCount, &event.CreatedAt, &event.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "get_event_by_id")
	}
	return event, nil
}

// # Event Mutation

/*
Create inserts a new event record.

Parameters:
  - context: context.Context
  - event: *Event

Returns:
  - error: Persistence failures
*/
func (repository *PostgresRepository) Create(context context.Context, event *Event) error {
	const query = `
		INSERT INTO core.event (
			id, groupid, name, description, location, status,
			startdate, enddate, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING createdat, updatedat
	`
	err := repository.db.QueryRow(context, query,
		event.ID, event.GroupID, event.Name, event.Description, event.Location, event.Status,
		event.StartDate, event.EndDate,
	).Scan(&event.CreatedAt, &event.UpdatedAt)

	return dberr.Wrap(err, "create_event")
}

/*
Update modifies event metadata and schedule fields.

Parameters:
  - context: context.Context
  - event: *Event

Returns:
  - error: Persistence failures
*/
func (repository *PostgresRepository) Update(context context.Context, event *Event) error {
	const query = `
		UPDATE core.event
		SET name = $2, description = $3, location = $4, status = $5,
			startdate = $6, enddate = $7, updatedat = NOW()
		WHERE id = $1
		RETURNING updatedat
	`
	err := repository.db.QueryRow(context, query,
		event.ID, event.Name, event.Description, event.Location, event.Status,
		event.StartDate, event.EndDate,
	).Scan(&event.UpdatedAt)
	return dberr.Wrap(err, "update_event")
}

/*
Delete removes an event row; attendee and tag rows cascade at the schema level.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: ErrNotFound if no row matched
*/
func (repository *PostgresRepository) Delete(context context.Context, id string) error {
	const query = `DELETE FROM core.event WHERE id = $1`
	result, err := repository.db.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_event")
	}
	if result.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

// # Attendance Implementation

/*
ListAttendees retrieves all participants and their roles.

Parameters:
  - context: context.Context
  - eventID: string

Returns:
  - []*Attendee: List of participants
  - error: Retrieval failures
*/
func (repository *PostgresRepository) ListAttendees(context context.Context, eventID string) ([]*Attendee, error) {
	const query = `
		SELECT a.eventid, a.userid, u.nickname, u.avatarurl, a.role, a.joinedat
		FROM core.attendee a
		JOIN users.account u ON a.userid = u.id
		WHERE a.eventid = $1
		ORDER BY a.joinedat ASC
	`
	rows, err := repository.db.Query(context, query, eventID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_event_attendees")
	}
	defer rows.Close()

	var attendees []*Attendee
	for rows.Next() {
		attendee := &Attendee{}
		if err := rows.Scan(&attendee.EventID, &attendee.UserID, &attendee.Nickname, &attendee.AvatarURL, &attendee.Role, &attendee.JoinedAt); err != nil {
			return nil, dberr.Wrap(err, "scan_attendee")
		}
		attendees = append(attendees, attendee)
	}

	return attendees, nil
}

/*
AddAttendee inserts a new attendance record and bumps the attendee counter.

Description: Executes within an ACID transaction to guarantee atomicity.
1. Inserts a new row into core.attendee (unique on eventid, userid).
2. Atomically increments the event's attendeecount.
Rolls back completely if any stage fails to prevent counter drift.

Parameters:
  - context: context.Context
  - attendee: *Attendee

Returns:
  - error: Conflict on duplicate attendance, or transactional failures
*/
func (repository *PostgresRepository) AddAttendee(context context.Context, attendee *Attendee) error {

	// Establish Transactional Boundary
	transaction, err := repository.db.Begin(context)
	if err != nil {
		return dberr.Wrap(err, "begin_add_attendee_tx")
	}
	defer transaction.Rollback(context)

	// Step 1: Persist Attendance Relation
	const attendQuery = `
		INSERT INTO core.attendee (eventid, userid, role, joinedat)
		VALUES ($1, $2, $3, NOW())
		RETURNING joinedat
	`
	err = transaction.QueryRow(context, attendQuery, attendee.EventID, attendee.UserID, attendee.Role).Scan(&attendee.JoinedAt)
	if err != nil {
		return dberr.Wrap(err, "insert_attendee")
	}

	// Step 2: Atomic Counter Bump
	const countQuery = `
		UPDATE core.event
		SET attendeecount = attendeecount + 1
		WHERE id = $1
	`
	_, err = transaction.Exec(context, countQuery, attendee.EventID)
	if err != nil {
		return dberr.Wrap(err, "increment_attendee_count")
	}

	// Persist Atomic Changeset
	return transaction.Commit(context)
}

/*
UpdateAttendeeRole modifies a participant's role.

Parameters:
  - context: context.Context
  - eventID: string
  - userID: string
  - role: authz.Role

Returns:
  - error: ErrNotFound if no attendance row matched
*/
func (repository *PostgresRepository) UpdateAttendeeRole(context context.Context, eventID, userID string, role authz.Role) error {
	const query = `UPDATE core.attendee SET role = $3 WHERE eventid = $1 AND userid = $2`
	result, err := repository.db.Exec(context, query, eventID, userID, role)
	if err != nil {
		return dberr.Wrap(err, "update_attendee_role")
	}
	if result.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

/*
RemoveAttendee deletes an attendance link and decrements the counter accurately.

Description: Wraps removal and counter decrement in a transaction.
Only decrements if a record was actually removed to prevent negative drift
during concurrent or duplicate requests.

Parameters:
  - context: context.Context
  - eventID: string
  - userID: string

Returns:
  - error: ErrNotFound if no attendance existed, or transactional errors
*/
func (repository *PostgresRepository) RemoveAttendee(context context.Context, eventID, userID string) error {

	// Transactional State Setup
	transaction, err := repository.db.Begin(context)
	if err != nil {
		return dberr.Wrap(err, "begin_remove_attendee_tx")
	}
	defer transaction.Rollback(context)

	// Step 1: Remove Relationship
	const delQuery = `
		DELETE FROM core.attendee
		WHERE eventid = $1 AND userid = $2
	`
	result, err := transaction.Exec(context, delQuery, eventID, userID)
	if err != nil {
		return dberr.Wrap(err, "delete_attendee")
	}
	if result.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}

	// Step 2: Validated Counter Decrement
	// Prevents counter from dropping below zero using GREATEST(0, x)
	const decQuery = `
		UPDATE core.event
		SET attendeecount = GREATEST(0, attendeecount - 1)
		WHERE id = $1
	`
	_, err = transaction.Exec(context, decQuery, eventID)
	if err != nil {
		return dberr.Wrap(err, "decrement_attendee_count")
	}

	return transaction.Commit(context)
}

// # Tag Curation Implementation

/*
ListTags retrieves the catalog tags attached to an event.

Parameters:
  - context: context.Context
  - eventID: string

Returns:
  - []*TagRef: Attached tags
  - error: Retrieval failures
*/
func (repository *PostgresRepository) ListTags(context context.Context, eventID string) ([]*TagRef, error) {
	const query = `
		SELECT t.id, t.name
		FROM core.eventtag et
		JOIN core.tag t ON et.tagid = t.id
		WHERE et.eventid = $1
		ORDER BY t.name ASC
	`
	rows, err := repository.db.Query(context, query, eventID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_event_tags")
	}
	defer rows.Close()

	var tags []*TagRef
	for rows.Next() {
		tag := &TagRef{}
		if err := rows.Scan(&tag.ID, &tag.Name); err != nil {
			return nil, dberr.Wrap(err, "scan_event_tag")
		}
		tags = append(tags, tag)
	}

	return tags, nil
}

/*
AttachTag links a catalog tag to an event.

Parameters:
  - context: context.Context
  - eventID: string
  - tagID: string

Returns:
  - error: Conflict if already attached, or persistence failures
*/
func (repository *PostgresRepository) AttachTag(context context.Context, eventID, tagID string) error {
	const query = `
		INSERT INTO core.eventtag (eventid, tagid, createdat)
		VALUES ($1, $2, NOW())
	`
	_, err := repository.db.Exec(context, query, eventID, tagID)
	return dberr.Wrap(err, "attach_event_tag")
}

/*
DetachTag removes a catalog tag from an event.

Parameters:
  - context: context.Context
  - eventID: string
  - tagID: string

Returns:
  - error: ErrNotFound if the link does not exist
*/
func (repository *PostgresRepository) DetachTag(context context.Context, eventID, tagID string) error {
	const query = `DELETE FROM core.eventtag WHERE eventid = $1 AND tagid = $2`
	result, err := repository.db.Exec(context, query, eventID, tagID)
	if err != nil {
		return dberr.Wrap(err, "detach_event_tag")
	}
	if result.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}
