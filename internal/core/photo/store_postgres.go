package photo

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

func (repository *PostgresRepository) ListByEvent(context context.Context, eventID string) ([]*Photo, error) {
	const query = `
		SELECT id, eventid, url, caption, uploadedby, createdat
		FROM core.photo
		WHERE eventid = $1
		ORDER BY createdat DESC
	`
	rows, err := repository.db.Query(context, query, eventID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_event_photos")
	}
	defer rows.Close()

	var photos []*Photo
	for rows.Next() {
		photo := &Photo{}
		if err := rows.Scan(&photo.ID, &photo.EventID, &photo.URL, &photo.Caption, &photo.UploadedBy, &photo.CreatedAt); err != nil {
			return nil, dberr.Wrap(err, "scan_photo")
		}
		photos = append(photos, photo)
	}

	return photos, nil
}

func (repository *PostgresRepository) Create(context context.Context, photo *Photo) error {
	const query = `
		INSERT INTO core.photo (id, eventid, url, caption, uploadedby, createdat)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING createdat
	`
	err := repository.db.QueryRow(context, query,
		photo.ID, photo.EventID, photo.URL, photo.Caption, photo.UploadedBy,
	).Scan(&photo.CreatedAt)
	return dberr.Wrap(err, "create_photo")
}

func (repository *PostgresRepository) Delete(context context.Context, eventID, photoID string) error {
	const query = `DELETE FROM core.photo WHERE id = $1 AND eventid = $2`
	result, err := repository.db.Exec(context, query, photoID, eventID)
	if err != nil {
		return dberr.Wrap(err, "delete_photo")
	}
	if result.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (repository *PostgresRepository) EventExists(context context.Context, eventID string) error {
	const query = `SELECT 1 FROM core.event WHERE id = $1`
	var one int
	if err := repository.db.QueryRow(context, query, eventID).Scan(&one); err != nil {
		return dberr.Wrap(err, "check_event_exists")
	}
	return nil
}
