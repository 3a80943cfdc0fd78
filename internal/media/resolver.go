package media

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/renqii/watchnest/internal/provider"
)

// Catalog is the narrow persistence surface the resolver works through.
// *Repository implements it; tests substitute an in-memory one.
type Catalog interface {
	SourceByProviderID(ctx context.Context, src provider.Source, sourceID string) (*MediaSource, error)
	MediaByTitle(ctx context.Context, kind provider.MediaKind, titleZh string) (*Media, error)
	MediaByOriginalTitle(ctx context.Context, kind provider.MediaKind, titleOriginal string) (*Media, error)
	AttachSource(ctx context.Context, mediaID uuid.UUID, src provider.Source, sourceID, sourceURL string) error
	UpdateStaff(ctx context.Context, mediaID uuid.UUID, staff Staff) error
	CreateWithSource(ctx context.Context, m *Media, src provider.Source, sourceID, sourceURL string) error
}

// Resolver maps an externally-sourced item onto its canonical Media row,
// creating one when no compatible row exists. It holds no state between
// calls; global non-duplication rests on the catalog's uniqueness
// guarantee for (source_type, source_id).
type Resolver struct {
	catalog Catalog
}

func NewResolver(catalog Catalog) *Resolver {
	return &Resolver{catalog: catalog}
}

// Item is the fully-populated external record being collected, as accepted
// at the API boundary.
type Item struct {
	SourceType    provider.Source
	SourceID      string
	SourceURL     string
	MediaKind     provider.MediaKind
	TitleZh       string
	TitleOriginal string
	ReleaseDate   string
	Duration      string
	Year          string
	PosterURL     string
	Summary       string
	Staff         *Staff
	Directors     []string
	Actors        []string
	Networks      []Network
	RatingDouban  float64
	RatingIMDB    float64
	RatingBangumi float64
	RatingMaoyan  float64
}

// Resolve returns the canonical Media id for item.
//
//  1. Exact lookup by (source_type, source_id) — already catalogued.
//  2. Fuzzy lookup by (kind, title_zh), then (kind, title_original).
//  3. A fuzzy candidate must be year-compatible (±1 when both known).
//  4. Compatible: attach a source mapping, plus anime staff enrichment.
//  5. Otherwise: create Media + first source in one transaction.
//
// Two racers on the same new provider identity are serialized by the
// unique constraint: the loser re-resolves onto the winner's row.
func (r *Resolver) Resolve(ctx context.Context, item *Item) (uuid.UUID, error) {
	if item.TitleZh == "" {
		return uuid.Nil, fmt.Errorf("title_zh is required")
	}
	if item.SourceID == "" {
		return uuid.Nil, fmt.Errorf("source_id is required")
	}

	existing, err := r.catalog.SourceByProviderID(ctx, item.SourceType, item.SourceID)
	if err == nil {
		return existing.MediaID, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return uuid.Nil, fmt.Errorf("source lookup: %w", err)
	}

	candidate, err := r.findCandidate(ctx, item)
	if err != nil {
		return uuid.Nil, err
	}

	if candidate != nil && yearCompatible(item.Year, candidate.Year) {
		return r.attach(ctx, candidate, item)
	}
	return r.create(ctx, item)
}

func (r *Resolver) findCandidate(ctx context.Context, item *Item) (*Media, error) {
	candidate, err := r.catalog.MediaByTitle(ctx, item.MediaKind, item.TitleZh)
	if err == nil {
		return candidate, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("title lookup: %w", err)
	}
	if item.TitleOriginal == "" {
		return nil, nil
	}
	candidate, err = r.catalog.MediaByOriginalTitle(ctx, item.MediaKind, item.TitleOriginal)
	if err == nil {
		return candidate, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("original title lookup: %w", err)
	}
	return nil, nil
}

func (r *Resolver) attach(ctx context.Context, candidate *Media, item *Item) (uuid.UUID, error) {
	err := r.catalog.AttachSource(ctx, candidate.ID, item.SourceType, item.SourceID, item.SourceURL)
	if errors.Is(err, ErrSourceExists) {
		return r.resolveExisting(ctx, item)
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("attach source: %w", err)
	}

	// Staff enrichment may flow in after creation, but only from the
	// anime specialist for anime rows — it is the authoritative source.
	if item.SourceType == provider.SourceBangumi && item.MediaKind == provider.KindAnime &&
		item.Staff != nil && item.Staff.Info != "" {
		if err := r.catalog.UpdateStaff(ctx, candidate.ID, *item.Staff); err != nil {
			return uuid.Nil, fmt.Errorf("staff enrichment: %w", err)
		}
	}
	return candidate.ID, nil
}

func (r *Resolver) create(ctx context.Context, item *Item) (uuid.UUID, error) {
	m := &Media{
		MediaKind:     item.MediaKind,
		TitleZh:       item.TitleZh,
		TitleOriginal: optional(item.TitleOriginal),
		ReleaseDate:   optional(item.ReleaseDate),
		Duration:      optional(item.Duration),
		Year:          optional(item.Year),
		PosterURL:     optional(item.PosterURL),
		Summary:       optional(item.Summary),
		Staff:         item.Staff,
		Directors:     item.Directors,
		Actors:        item.Actors,
		Networks:      item.Networks,
		Rating:        aggregateRating(item),
		RatingDouban:  item.RatingDouban,
		RatingIMDB:    item.RatingIMDB,
		RatingBangumi: item.RatingBangumi,
		RatingMaoyan:  item.RatingMaoyan,
	}

	err := r.catalog.CreateWithSource(ctx, m, item.SourceType, item.SourceID, item.SourceURL)
	if errors.Is(err, ErrSourceExists) {
		return r.resolveExisting(ctx, item)
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("create media: %w", err)
	}
	return m.ID, nil
}

// resolveExisting handles the lost race: the constraint fired, so the
// winning mapping must now be readable.
func (r *Resolver) resolveExisting(ctx context.Context, item *Item) (uuid.UUID, error) {
	existing, err := r.catalog.SourceByProviderID(ctx, item.SourceType, item.SourceID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("post-conflict lookup: %w", err)
	}
	return existing.MediaID, nil
}

// aggregateRating picks the first positive provider rating in fixed
// priority order; a title nobody rated lands at 0.
func aggregateRating(item *Item) float64 {
	for _, r := range []float64{item.RatingDouban, item.RatingIMDB, item.RatingBangumi, item.RatingMaoyan} {
		if r > 0 {
			return r
		}
	}
	return 0
}

// yearCompatible is deliberately more lenient than search-time matching:
// providers disagree by a year on festival releases and regional premieres,
// and a false split here creates a permanent duplicate row.
func yearCompatible(a string, b *string) bool {
	ya, okA := parseYear(a)
	if !okA || b == nil {
		return true
	}
	yb, okB := parseYear(*b)
	if !okB {
		return true
	}
	diff := ya - yb
	if diff < 0 {
		diff = -diff
	}
	return diff <= 1
}

func parseYear(s string) (int, bool) {
	if len(s) < 4 {
		return 0, false
	}
	y, err := strconv.Atoi(s[:4])
	if err != nil {
		return 0, false
	}
	return y, true
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
