// Copyright (c) 2026 Atsumira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package group

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

// NewPostgresRepository constructs a PostgreSQL backed group store.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// # Group Retrieval

/*
List returns a filtered and paginated list of groups.

Description: Uses ILIKE for name search and COUNT(*) OVER() for total metadata.

Parameters:
  - context: context.Context
  - filter: Filter
  - limit: int
  - offset: int

Returns:
  - []*Group: Slice of matching groups
  - int: Total record count
  - error: Database retrieval failures
*/
func (repository *PostgresRepository) List(context context.Context, filter Filter, limit, offset int) ([]*Group, int, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
		SELECT
			id, name, slug, description, avatarurl, membercount,
			createdat, updatedat,
			COUNT(*) OVER() as total
		FROM core.socialgroup
		WHERE TRUE
	`)

	args := []any{}
	argID := 1

	if filter.Query != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND name ILIKE $%d", argID))
		args = append(args, "%"+filter.Query+"%")
		argID++
	}

	orderBy := "name ASC"
	switch filter.Sort {
	case "membercount":
		orderBy = "membercount DESC"
	case "createdat":
		orderBy = "createdat DESC"
	}

	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY %s LIMIT $%d OFFSET $%d", orderBy, argID, argID+1))
	args = append(args, limit, offset)

	rows, err := repository.db.Query(context, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_groups")
	}
	defer rows.Close()

	var groups []*Group
	var total int
	for rows.Next() {
		group := &Group{}
		err := rows.Scan(
			&group.ID, &group.Name, &group.Slug, &group.Description, &group.AvatarURL, &group.MemberCount,
			&group.CreatedAt, &group.UpdatedAt, &total,
		)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_group")
		}
		groups = append(groups, group)
	}

	return groups, total, nil
}

/*
FindByID retrieves a single group record by its primary key.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Group: Hydrated entity
  - error: Database retrieval failures
*/
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Group, error) {
	const query = `
		SELECT id, name, slug, description, avatarurl, membercount, createdat, updatedat
		FROM core.socialgroup
		WHERE id = $1
	`
	group := &Group{}
	err := repository.db.QueryRow(context, query, id).Scan(
		&group.ID, &group.Name, &group.Slug, &group.Description, &group.AvatarURL,
		&group.MemberCount, &group.CreatedAt, &group.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "get_group_by_id")
	}
	return group, nil
}

/*
FindBySlug retrieves a group by its unique URL slug.

Parameters:
  - context: context.Context
  - slug: string

Returns:
  - *Group: Hydrated entity
  - error: Database retrieval failures
*/
func (repository *PostgresRepository) FindBySlug(context context.Context, slug string) (*Group, error) {
	const query = `
		SELECT id, name, slug, description, avatarurl, membercount, createdat, updatedat
		FROM core.socialgroup
		WHERE slug = $1
	`
	group := &Group{}
	err := repository.db.QueryRow(context, query, slug).Scan(
		&group.ID, &group.Name, &group.Slug, &group.Description, &group.AvatarURL,
		&group.MemberCount, &group.CreatedAt, &group.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "get_group_by_slug")
	}
	return group, nil
}

// # Group Mutation

/*
Create inserts a new group record.

Parameters:
  - context: context.Context
  - group: *Group

Returns:
  - error: Persistence failures
*/
func (repository *PostgresRepository) Create(context context.Context, group *Group) error {
	const query = `
		INSERT INTO core.socialgroup (
			id, name, slug, description, avatarurl, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING createdat, updatedat
	`
	err := repository.db.QueryRow(context, query,
		group.ID, group.Name, group.Slug, group.Description, group.AvatarURL,
	).Scan(&group.CreatedAt, &group.UpdatedAt)

	return dberr.Wrap(err, "create_group")
}

/*
Update modifies group metadata fields.

Parameters:
  - context: context.Context
  - group: *Group

Returns:
  - error: Persistence failures
*/
func (repository *PostgresRepository) Update(context context.Context, group *Group) error {
	const query = `
		UPDATE core.socialgroup
		SET name = $2, description = $3, avatarurl = $4, updatedat = NOW()
		WHERE id = $1
		RETURNING updatedat
	`
	err := repository.db.QueryRow(context, query,
		group.ID, group.Name, group.Description, group.AvatarURL,
	).Scan(&group.UpdatedAt)
	return dberr.Wrap(err, "update_group")
}

/*
Delete removes a group row; membership rows cascade at the schema level.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: Persistence failures
*/
func (repository *PostgresRepository) Delete(context context.Context, id string) error {
	const query = `DELETE FROM core.socialgroup WHERE id = $1`
	result, err := repository.db.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_group")
	}
	if result.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

// # Membership Implementation

/*
ListMembers retrieves all affiliated users and their roles.

Parameters:
  - context: context.Context
  - groupID: string

Returns:
  - []*Member: List of affiliated users
  - error: Retrieval failures
*/
func (repository *PostgresRepository) ListMembers(context context.Context, groupID string) ([]*Member, error) {
	const query = `
		SELECT m.groupid, m.userid, u.nickname, u.avatarurl, m.role, m.joinedat
		FROM core.member m
		JOIN users.account u ON m.userid = u.id
		WHERE m.groupid = $1
		ORDER BY m.joinedat ASC
	`
	rows, err := repository.db.Query(context, query, groupID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_group_members")
	}
	defer rows.Close()

	var members []*Member
	for rows.Next() {
		member := &Member{}
		if err := rows.Scan(&member.GroupID, &member.UserID, &member.Nickname, &member.AvatarURL, &member.Role, &member.JoinedAt); err != nil {
			return nil, dberr.Wrap(err, "scan_member")
		}
		members = append(members, member)
	}

	return members, nil
}

/*
AddMember inserts a new membership record and bumps the member counter.

Description: Executes within an ACID transaction to guarantee atomicity.
1. Inserts a new row into core.member (unique on groupid, userid).
2. Atomically increments the group's membercount.
Rolls back completely if any stage fails to prevent counter drift.

Parameters:
  - context: context.Context
  - member: *Member

Returns:
  - error: Conflict on duplicate membership, or transactional failures
*/
func (repository *PostgresRepository) AddMember(context context.Context, member *Member) error {

	// Establish Transactional Boundary
	transaction, err := repository.db.Begin(context)
	if err != nil {
		return dberr.Wrap(err, "begin_add_member_tx")
	}
	defer transaction.Rollback(context)

	// Step 1: Persist Membership Relation
	const memberQuery = `
		INSERT INTO core.member (groupid, userid, role, joinedat)
		VALUES ($1, $2, $3, NOW())
		RETURNING joinedat
	`
	err = transaction.QueryRow(context, memberQuery, member.GroupID, member.UserID, member.Role).Scan(&member.JoinedAt)
	if err != nil {
		return dberr.Wrap(err, "insert_member")
	}

	// Step 2: Atomic Counter Bump
	const countQuery = `
		UPDATE core.socialgroup
		SET membercount = membercount + 1
		WHERE id = $1
	`
	_, err = transaction.Exec(context, countQuery, member.GroupID)
	if err != nil {
		return dberr.Wrap(err, "increment_member_count")
	}

	// Persist Atomic Changeset
	return transaction.Commit(context)
}

/*
UpdateMemberRole modifies a user's role.

Parameters:
  - context: context.Context
  - groupID: string
  - userID: string
  - role: authz.Role

Returns:
  - error: ErrNotFound if no membership row matched
*/
func (repository *PostgresRepository) UpdateMemberRole(context context.Context, groupID, userID string, role authz.Role) error {
	const query = `UPDATE core.member SET role = $3 WHERE groupid = $1 AND userid = $2`
	result, err := repository.db.Exec(context, query, groupID, userID, role)
	if err != nil {
		return dberr.Wrap(err, "update_member_role")
	}
	if result.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

/*
RemoveMember deletes a membership link and decrements the counter accurately.

Description: Wraps removal and counter decrement in a transaction.
Only decrements if a record was actually removed to prevent negative drift
during concurrent or duplicate requests.

Parameters:
  - context: context.Context
  - groupID: string
  - userID: string

Returns:
  - error: ErrNotFound if no membership existed, or transactional errors
*/
func (repository *PostgresRepository) RemoveMember(context context.Context, groupID, userID string) error {

	// Transactional State Setup
	transaction, err := repository.db.Begin(context)
	if err != nil {
		return dberr.Wrap(err, "begin_remove_member_tx")
	}
	defer transaction.Rollback(context)

	// Step 1: Remove Relationship
	const delQuery = `
		DELETE FROM core.member
		WHERE groupid = $1 AND userid = $2
	`
	result, err := transaction.Exec(context, delQuery, groupID, userID)
	if err != nil {
		return dberr.Wrap(err, "delete_member")
	}
	if result.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}

	// Step 2: Validated Counter Decrement
	// Prevents counter from dropping below zero using GREATEST(0, x)
	const decQuery = `
		UPDATE core.socialgroup
		SET membercount = GREATEST(0, membercount - 1)
		WHERE id = $1
	`
	_, err = transaction.Exec(context, decQuery, groupID)
	if err != nil {
		return dberr.Wrap(err, "decrement_member_count")
	}

	return transaction.Commit(context)
}
