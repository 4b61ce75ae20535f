package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/kngrck/mern-project/internal/model"
	"github.com/kngrck/mern-project/internal/utils"
)

// UserRepo provides persistence for user accounts and for the set of
// places each user owns.  The owned-place set lives in the `user_places`
// table; the methods that touch it come in Tx variants because they are
// only ever valid as one half of a dual-entity transaction driven by the
// place handlers.
type UserRepo struct{ db *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

// DB exposes the underlying handle so handlers can begin transactions
// spanning this repository and PlaceRepo.
func (r *UserRepo) DB() *sql.DB { return r.db }

// Create inserts a user with a freshly hashed password and returns its ID.
// Duplicate emails map to ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, name, email, password, image string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO users (name, email, password_hash, image) VALUES (?,?,?,?)",
		name, email, hash, image)
	if err != nil {
		// 1062 = MySQL duplicate key; the unique index lives on users.email
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.  sql.ErrNoRows is passed
// through so the login handler can collapse it with a bad password into a
// single "invalid credentials" answer.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u model.User
	err := r.db.QueryRowContext(ctx,
		"SELECT id,name,email,password_hash,image,created_at,updated_at FROM users WHERE email=? LIMIT 1",
		email).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Image, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// GetByID fetches a user by id, mapping a missing row to ErrUserNotFound.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	err := r.db.QueryRowContext(ctx,
		"SELECT id,name,email,password_hash,image,created_at,updated_at FROM users WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Image, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrUserNotFound
	}
	return u, err
}

// ListAll returns every user.  Password hashes are loaded into the model
// but handlers must never serialize them; the response DTO omits the field.
func (r *UserRepo) ListAll(ctx context.Context) ([]model.User, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id,name,email,password_hash,image,created_at,updated_at FROM users ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Image, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// PlaceIDs returns the identifiers in the user's owned-place set.  Order
// is not meaningful; the set semantics live in the composite primary key
// of user_places.
func (r *UserRepo) PlaceIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT place_id FROM user_places WHERE user_id=?", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// AddPlaceTx appends a place to the user's owned-place set within the
// scope of an existing transaction.  The caller must commit or rollback;
// this write is never valid on its own because it would break the mirror
// with places.creator_id.
func (r *UserRepo) AddPlaceTx(ctx context.Context, tx *sql.Tx, userID, placeID uint64) error {
	_, err := tx.ExecContext(ctx,
		"INSERT INTO user_places (user_id, place_id) VALUES (?,?)", userID, placeID)
	return err
}

// RemovePlaceTx removes a place from the user's owned-place set within
// the scope of an existing transaction.
func (r *UserRepo) RemovePlaceTx(ctx context.Context, tx *sql.Tx, userID, placeID uint64) error {
	_, err := tx.ExecContext(ctx,
		"DELETE FROM user_places WHERE user_id=? AND place_id=?", userID, placeID)
	return err
}
