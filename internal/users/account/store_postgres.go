// Copyright (c) 2026 Atsumira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account (Postgres) implements the storage layer for user meta-data.

It provides PostgreSQL implementations for browsing and managing user
profiles.

# Schema Table Mapping
  - users.account: Master identity and profile data.
*/
package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/atsumira/internal/platform/apperr"
	"github.com/taibuivan/atsumira/internal/platform/dberr"
	"github.com/taibuivan/atsumira/internal/users/auth"
)

// # Repository Implementations

// PostgresAccountRepository implements [AccountRepository] using pgx.
type PostgresAccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new Postgres implementation for profile management.
func NewAccountRepository(pool *pgxpool.Pool) *PostgresAccountRepository {
	return &PostgresAccountRepository{pool: pool}
}

// # AccountRepository Methods

/*
List returns a page of accounts with the total row count in one round trip.

Description: Uses COUNT(*) OVER() so the page and the total come from the
same snapshot. The optional query filter matches nickname, name, or surname.

Parameters:
  - context: context.Context
  - filter: Filter
  - limit, offset: int

Returns:
  - []*auth.User: Page of accounts
  - int: Total matching rows
  - error: Retrieval failures
*/
func (repository *PostgresAccountRepository) List(context context.Context, filter Filter, limit, offset int) ([]*auth.User, int, error) {
	const query = `
		SELECT id, nickname, email, passwordhash, name, surname, bio, avatarurl, role, createdat, updatedat,
		       COUNT(*) OVER() AS total
		FROM users.account
		WHERE deletedat IS NULL
		  AND ($1 = '' OR nickname ILIKE '%' || $1 || '%' OR name ILIKE '%' || $1 || '%' OR surname ILIKE '%' || $1 || '%')
		ORDER BY nickname ASC
		LIMIT $2 OFFSET $3`

	rows, err := repository.pool.Query(context, query, filter.Query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_account_repo_list_failed: %w", err)
	}
	defer rows.Close()

	var users []*auth.User
	var total int
	for rows.Next() {
		user := &auth.User{}
		if err := rows.Scan(
			&user.ID,
			&user.Nickname,
			&user.Email,
			&user.PasswordHash,
			&user.Name,
			&user.Surname,
			&user.Bio,
			&user.AvatarURL,
			&user.Role,
			&user.CreatedAt,
			&user.UpdatedAt,
			&total,
		); err != nil {
			return nil, 0, fmt.Errorf("postgres_account_repo_scan_failed: %w", err)
		}
		users = append(users, user)
	}

	return users, total, nil
}

/*
FindByID retrieves a user record from the users.account table.

Parameters:
  - context: context.Context
  - id: string (UUID)

Returns:
  - *auth.User: Hydrated identity entity
  - error: apperr.NotFound or database execution failure
*/
func (repository *PostgresAccountRepository) FindByID(context context.Context, id string) (*auth.User, error) {
	const query = `
		SELECT id, nickname, email, passwordhash, name, surname, bio, avatarurl, role, createdat, updatedat
		FROM users.account
		WHERE id = $1 AND deletedat IS NULL`

	user := &auth.User{}
	err := repository.pool.QueryRow(context, query, id).Scan(
		&user.ID,
		&user.Nickname,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&user.Surname,
		&user.Bio,
		&user.AvatarURL,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, fmt.Errorf("postgres_account_repo_find_by_id_failed: %w", err)
	}

	return user, nil
}

/*
Update modifies the mutable profile metadata of a user.

Description: Syncs the nickname, name, surname, bio, and avatar fields while
refreshing the updatedat timestamp.

Parameters:
  - context: context.Context
  - user: *auth.User

Returns:
  - error: apperr.Conflict on duplicate nickname, or execution failures
*/
func (repository *PostgresAccountRepository) Update(context context.Context, user *auth.User) error {
	const query = `
		UPDATE users.account
		SET nickname = $2, name = $3, surname = $4, bio = $5, avatarurl = $6, updatedat = $7
		WHERE id = $1 AND deletedat IS NULL`

	user.UpdatedAt = time.Now()
	result, err := repository.pool.Exec(context, query,
		user.ID,
		user.Nickname,
		user.Name,
		user.Surname,
		user.Bio,
		user.AvatarURL,
		user.UpdatedAt,
	)

	if err != nil {
		return dberr.Wrap(err, "update_account")
	}
	if result.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}

	return nil
}

/*
SoftDelete flags a user account as logically deleted.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: Execution failures
*/
func (repository *PostgresAccountRepository) SoftDelete(context context.Context, id string) error {
	const query = "UPDATE users.account SET deletedat = $2 WHERE id = $1 AND deletedat IS NULL"

	result, err := repository.pool.Exec(context, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_account_repo_soft_delete_failed: %w", err)
	}
	if result.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}

	return nil
}
