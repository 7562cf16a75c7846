package tag

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/atsumira/internal/platform/dberr"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (repository *PostgresRepository) List(context context.Context) ([]*Tag, error) {
	const query = `SELECT id, name, slug, createdat FROM core.tag ORDER BY name ASC`
	rows, err := repository.db.Query(context, query)
	if err != nil {
		return nil, dberr.Wrap(err, "list_tags")
	}
	defer rows.Close()

	var tags []*Tag
	for rows.Next() {
		tag := &Tag{}
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.Slug, &tag.CreatedAt); err != nil {
			return nil, dberr.Wrap(err, "scan_tag")
		}
		tags = append(tags, tag)
	}

	return tags, nil
}

func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Tag, error) {
	const query = `SELECT id, name, slug, createdat FROM core.tag WHERE id = $1`
	tag := &Tag{}
	err := repository.db.QueryRow(context, query, id).Scan(&tag.ID, &tag.Name, &tag.Slug, &tag.CreatedAt)
	if err != nil {
		return nil, dberr.Wrap(err, "get_tag_by_id")
	}
	return tag, nil
}

func (repository *PostgresRepository) Create(context context.Context, tag *Tag) error {
	const query = `
		INSERT INTO core.tag (id, name, slug, createdat)
		VALUES ($1, $2, $3, NOW())
		RETURNING createdat
	`
	err := repository.db.QueryRow(context, query, tag.ID, tag.Name, tag.Slug).Scan(&tag.CreatedAt)
	return dberr.Wrap(err, "create_tag")
}

func (repository *PostgresRepository) Update(context context.Context, tag *Tag) error {
	const query = `UPDATE core.tag SET name = $2, slug = $3 WHERE id = $1`
	result, err := repository.db.Exec(context, query, tag.ID, tag.Name, tag.Slug)
	if err != nil {
		return dberr.Wrap(err, "update_tag")
	}
	if result.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (repository *PostgresRepository) Delete(context context.Context, id string) error {
	const query = `DELETE FROM core.tag WHERE id = $1`
	result, err := repository.db.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_tag")
	}
	if result.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}
