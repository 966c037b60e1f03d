package postgres

import (
	"context"
	"database/sql"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/domain"
)

// Directory answers existence lookups against the users and categories tables.
type Directory struct {
	db *sql.DB
}

func NewDirectory(db *sql.DB) *Directory { return &Directory{db: db} }

func (d *Directory) UserExists(ctx context.Context, id string) (bool, error) {
	return d.exists(ctx, userExistsSQL, id, "user exists")
}

func (d *Directory) CategoryExists(ctx context.Context, id string) (bool, error) {
	return d.exists(ctx, categoryExistsSQL, id, "category exists")
}

func (d *Directory) exists(ctx context.Context, query, id, op string) (bool, error) {
	var ok bool
	err := d.db.QueryRowContext(ctx, query, id).Scan(&ok)
	if err != nil {
		err = mapErr(err, op)
		// a malformed id cannot exist
		if domain.CodeOf(err) == domain.CodeNotFound {
			return false, nil
		}
		return false, err
	}
	return ok, nil
}
