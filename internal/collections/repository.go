package collections

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/renqii/watchnest/internal/provider"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Upsert attaches or updates the user's watch-state for a canonical title.
// The unique constraint on (user_id, media_id) makes this safe under
// concurrent requests from the same user: at most one row survives, with
// the latest status.
func (r *Repository) Upsert(ctx context.Context, userID, mediaID uuid.UUID, status Status) (*Collection, error) {
	c := &Collection{UserID: userID, MediaID: mediaID, Status: status}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO collections (user_id, media_id, status)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, media_id) DO UPDATE SET
		    status = EXCLUDED.status,
		    updated_at = NOW()
		RETURNING id, created_at, updated_at`,
		userID, mediaID, status,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateStatus changes the status of a row the acting user owns. A row
// owned by someone else counts as absent.
func (r *Repository) UpdateStatus(ctx context.Context, id, userID uuid.UUID, status Status) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE collections SET status=$3, updated_at=NOW()
		WHERE id=$1 AND user_id=$2`,
		id, userID, status)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *Repository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM collections WHERE id=$1 AND user_id=$2", id, userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// StatusBySource reports whether the user has collected the title behind a
// provider-local identity, resolving through media_sources.
func (r *Repository) StatusBySource(ctx context.Context, userID uuid.UUID, src provider.Source, sourceID string) (*Collection, error) {
	c := &Collection{}
	err := r.db.QueryRowContext(ctx, `
		SELECT c.id, c.user_id, c.media_id, c.status, c.created_at, c.updated_at
		FROM collections c
		JOIN media_sources ms ON ms.media_id = c.media_id
		WHERE c.user_id=$1 AND ms.source_type=$2 AND ms.source_id=$3`,
		userID, src, sourceID,
	).Scan(&c.ID, &c.UserID, &c.MediaID, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListByUser returns the user's rows newest-first, optionally filtered by
// status.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, status *Status) ([]Collection, error) {
	query := `
		SELECT id, user_id, media_id, status, created_at, updated_at
		FROM collections WHERE user_id=$1`
	args := []interface{}{userID}
	if status != nil {
		query += " AND status=$2"
		args = append(args, *status)
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Collection
	for rows.Next() {
		var c Collection
		if err := rows.Scan(&c.ID, &c.UserID, &c.MediaID, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
