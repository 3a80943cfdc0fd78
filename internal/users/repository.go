package users

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, u *User) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO users (username, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`,
		u.Username, u.Email, u.PasswordHash,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return r.get(ctx, "id", id)
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.get(ctx, "email", email)
}

func (r *Repository) get(ctx context.Context, column string, value interface{}) (*User, error) {
	u := &User{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, username, email, password_hash, avatar_url, bio, created_at, updated_at
		FROM users WHERE `+column+`=$1`, value,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.AvatarURL, &u.Bio,
		&u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *Repository) UpdateProfile(ctx context.Context, u *User) error {
	return r.db.QueryRowContext(ctx, `
		UPDATE users SET username=$2, avatar_url=$3, bio=$4, updated_at=NOW()
		WHERE id=$1
		RETURNING updated_at`,
		u.ID, u.Username, u.AvatarURL, u.Bio,
	).Scan(&u.UpdatedAt)
}
