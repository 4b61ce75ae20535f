package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/kngrck/mern-project/internal/model"
)

// PlaceRepo provides CRUD operations for places.  Creation and deletion
// come in Tx variants: each of those operations is one half of a
// dual-entity write (the place row plus the owner's user_places row) and
// must run inside a transaction owned by the handler.  All timestamp
// fields are stored in UTC.
type PlaceRepo struct {
	db *sql.DB
}

// NewPlaceRepo returns a new PlaceRepo bound to the given database.
func NewPlaceRepo(db *sql.DB) *PlaceRepo { return &PlaceRepo{db: db} }

// DB exposes the underlying handle so handlers can begin transactions
// spanning this repository and UserRepo.
func (r *PlaceRepo) DB() *sql.DB { return r.db }

const placeColumns = "id, title, description, address, lat, lng, image, creator_id, created_at, updated_at"

func scanPlace(row interface{ Scan(...any) error }, p *model.Place) error {
	return row.Scan(&p.ID, &p.Title, &p.Description, &p.Address, &p.Lat, &p.Lng,
		&p.Image, &p.CreatorID, &p.CreatedAt, &p.UpdatedAt)
}

// GetByID returns a single place, mapping a missing row to
// ErrPlaceNotFound.  Reads are public so there is no owner filter here;
// ownership is checked by the handler only for mutations.
func (r *PlaceRepo) GetByID(ctx context.Context, id uint64) (model.Place, error) {
	var p model.Place
	err := scanPlace(r.db.QueryRowContext(ctx,
		"SELECT "+placeColumns+" FROM places WHERE id=? LIMIT 1", id), &p)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Place{}, ErrPlaceNotFound
	}
	return p, err
}

// ListByUser returns the places in a user's owned-place set.  It reads
// through user_places rather than filtering on creator_id so the answer
// reflects exactly the set maintained by the transactional paths.
func (r *PlaceRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Place, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT p.id, p.title, p.description, p.address, p.lat, p.lng, p.image, p.creator_id, p.created_at, p.updated_at "+
			"FROM places p JOIN user_places up ON up.place_id = p.id WHERE up.user_id=? ORDER BY p.id",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var places []model.Place
	for rows.Next() {
		var p model.Place
		if err := scanPlace(rows, &p); err != nil {
			return nil, err
		}
		places = append(places, p)
	}
	return places, rows.Err()
}

// CreateTx inserts a new place within the scope of an existing
// transaction.  It populates the generated ID and timestamps on the
// provided record by querying the row back.  The caller must commit or
// rollback the transaction after also updating the owner's place set.
func (r *PlaceRepo) CreateTx(ctx context.Context, tx *sql.Tx, p *model.Place) error {
	const q = `INSERT INTO places (title, description, address, lat, lng, image, creator_id) VALUES (?, ?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q, p.Title, p.Description, p.Address, p.Lat, p.Lng, p.Image, p.CreatorID)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	// Query back the full row to populate timestamps and defaults
	return scanPlace(tx.QueryRowContext(ctx,
		"SELECT "+placeColumns+" FROM places WHERE id=?", p.ID), p)
}

// Update changes the mutable scalar fields of a place.  There is no
// second entity involved so no transaction is needed; ownership must
// already have been verified by the caller.  A missing row maps to
// ErrPlaceNotFound.
func (r *PlaceRepo) Update(ctx context.Context, id uint64, title, description string) (model.Place, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE places SET title=?, description=? WHERE id=?", title, description, id)
	if err != nil {
		return model.Place{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Zero rows can also mean a no-op rewrite of identical values, so
		// confirm existence with a read before reporting not found.
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return model.Place{}, getErr
		}
	}
	return r.GetByID(ctx, id)
}

// DeleteTx removes a place row within the scope of an existing
// transaction.  A missing row maps to ErrPlaceNotFound so callers racing
// on the same id observe a clean not-found rather than a silent no-op.
func (r *PlaceRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	res, err := tx.ExecContext(ctx, "DELETE FROM places WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPlaceNotFound
	}
	return nil
}
