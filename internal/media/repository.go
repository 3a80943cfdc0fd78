package media

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/renqii/watchnest/internal/provider"
)

// uniqueViolation is the Postgres error code for constraint conflicts on
// media_sources(source_type, source_id).
const uniqueViolation = "23505"

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const mediaColumns = `
	id, media_type, title_zh, title_original, release_date, duration, year,
	poster_url, summary, staff_info, staff_actors, staff_directors,
	directors, actors, networks, rating, rating_douban, rating_imdb,
	rating_bangumi, rating_maoyan, created_at, updated_at`

func scanMedia(row interface{ Scan(...interface{}) error }) (*Media, error) {
	m := &Media{}
	var (
		staffInfo      *string
		staffActors    []string
		staffDirectors []string
		networksJSON   []byte
	)
	err := row.Scan(
		&m.ID, &m.MediaKind, &m.TitleZh, &m.TitleOriginal, &m.ReleaseDate,
		&m.Duration, &m.Year, &m.PosterURL, &m.Summary,
		&staffInfo, pq.Array(&staffActors), pq.Array(&staffDirectors),
		pq.Array(&m.Directors), pq.Array(&m.Actors), &networksJSON,
		&m.Rating, &m.RatingDouban, &m.RatingIMDB, &m.RatingBangumi,
		&m.RatingMaoyan, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if staffInfo != nil || len(staffActors) > 0 || len(staffDirectors) > 0 {
		info := ""
		if staffInfo != nil {
			info = *staffInfo
		}
		m.Staff = &Staff{Info: info, Actors: staffActors, Directors: staffDirectors}
	}
	if len(networksJSON) > 0 {
		if err := json.Unmarshal(networksJSON, &m.Networks); err != nil {
			return nil, fmt.Errorf("media %s: decode networks: %w", m.ID, err)
		}
	}
	return m, nil
}

func (r *Repository) MediaByID(ctx context.Context, id uuid.UUID) (*Media, error) {
	row := r.db.QueryRowContext(ctx, `SELECT`+mediaColumns+` FROM media WHERE id=$1`, id)
	m, err := scanMedia(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return m, err
}

// SourceByProviderID is the exact-identity lookup: has this provider-local
// id been catalogued before?
func (r *Repository) SourceByProviderID(ctx context.Context, src provider.Source, sourceID string) (*MediaSource, error) {
	ms := &MediaSource{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, media_id, source_type, source_id, source_url
		FROM media_sources WHERE source_type=$1 AND source_id=$2`,
		src, sourceID,
	).Scan(&ms.ID, &ms.MediaID, &ms.SourceType, &ms.SourceID, &ms.SourceURL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return ms, nil
}

// MediaByTitle is the fuzzy-dedup index lookup on (kind, title_zh).
func (r *Repository) MediaByTitle(ctx context.Context, kind provider.MediaKind, titleZh string) (*Media, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT`+mediaColumns+` FROM media WHERE media_type=$1 AND title_zh=$2 LIMIT 1`,
		kind, titleZh)
	m, err := scanMedia(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return m, err
}

func (r *Repository) MediaByOriginalTitle(ctx context.Context, kind provider.MediaKind, titleOriginal string) (*Media, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT`+mediaColumns+` FROM media WHERE media_type=$1 AND title_original=$2 LIMIT 1`,
		kind, titleOriginal)
	m, err := scanMedia(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return m, err
}

// AttachSource adds a provider mapping to an existing canonical row.
// A concurrent identical insert surfaces as ErrSourceExists.
func (r *Repository) AttachSource(ctx context.Context, mediaID uuid.UUID, src provider.Source, sourceID, sourceURL string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO media_sources (media_id, source_type, source_id, source_url)
		VALUES ($1, $2, $3, $4)`,
		mediaID, src, sourceID, sourceURL)
	if isUniqueViolation(err) {
		return ErrSourceExists
	}
	return err
}

// UpdateStaff overwrites the staff record of an existing row. Used only
// for anime staff enrichment flowing in after initial creation.
func (r *Repository) UpdateStaff(ctx context.Context, mediaID uuid.UUID, staff Staff) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE media SET staff_info=$2, staff_actors=$3, staff_directors=$4, updated_at=NOW()
		WHERE id=$1`,
		mediaID, staff.Info, pq.Array(staff.Actors), pq.Array(staff.Directors))
	return err
}

// CreateWithSource inserts the canonical row and its first provider mapping
// in one transaction, so a Media is never visible without a source for
// longer than the transaction itself. A racing creation of the same
// provider identity rolls back as ErrSourceExists.
func (r *Repository) CreateWithSource(ctx context.Context, m *Media, src provider.Source, sourceID, sourceURL string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var staffInfo *string
	var staffActors, staffDirectors []string
	if m.Staff != nil {
		staffInfo = &m.Staff.Info
		staffActors = m.Staff.Actors
		staffDirectors = m.Staff.Directors
	}
	networksJSON, err := json.Marshal(m.Networks)
	if err != nil {
		return fmt.Errorf("marshal networks: %w", err)
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO media (media_type, title_zh, title_original, release_date, duration,
		       year, poster_url, summary, staff_info, staff_actors, staff_directors,
		       directors, actors, networks, rating, rating_douban, rating_imdb,
		       rating_bangumi, rating_maoyan)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
		RETURNING id, created_at, updated_at`,
		m.MediaKind, m.TitleZh, m.TitleOriginal, m.ReleaseDate, m.Duration,
		m.Year, m.PosterURL, m.Summary, staffInfo, pq.Array(staffActors),
		pq.Array(staffDirectors), pq.Array(m.Directors), pq.Array(m.Actors),
		networksJSON, m.Rating, m.RatingDouban, m.RatingIMDB,
		m.RatingBangumi, m.RatingMaoyan,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO media_sources (media_id, source_type, source_id, source_url)
		VALUES ($1, $2, $3, $4)`,
		m.ID, src, sourceID, sourceURL)
	if isUniqueViolation(err) {
		return ErrSourceExists
	}
	if err != nil {
		return err
	}
	return tx.Commit()
}

// SourcesForMedia lists the provider mappings of a set of canonical rows,
// for the enriched collection listing.
func (r *Repository) SourcesForMedia(ctx context.Context, mediaIDs []uuid.UUID) (map[uuid.UUID][]MediaSource, error) {
	if len(mediaIDs) == 0 {
		return map[uuid.UUID][]MediaSource{}, nil
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, media_id, source_type, source_id, source_url
		FROM media_sources WHERE media_id = ANY($1)`,
		pq.Array(mediaIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[uuid.UUID][]MediaSource, len(mediaIDs))
	for rows.Next() {
		var ms MediaSource
		if err := rows.Scan(&ms.ID, &ms.MediaID, &ms.SourceType, &ms.SourceID, &ms.SourceURL); err != nil {
			return nil, err
		}
		out[ms.MediaID] = append(out[ms.MediaID], ms)
	}
	return out, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation
}
