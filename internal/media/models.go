package media

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/renqii/watchnest/internal/provider"
)

var (
	// ErrNotFound covers both a genuinely missing row and a lookup miss.
	ErrNotFound = errors.New("media not found")
	// ErrSourceExists signals a unique-constraint hit on
	// (source_type, source_id): another writer got there first.
	ErrSourceExists = errors.New("media source already mapped")
)

// Network is a broadcaster/streamer attached to a title.
type Network struct {
	Name    string `json:"name"`
	LogoURL string `json:"logo_url"`
}

// Staff is the structured production-credit record.
type Staff struct {
	Info      string   `json:"info,omitempty"`
	Actors    []string `json:"actors,omitempty"`
	Directors []string `json:"directors,omitempty"`
}

// Media is the canonical, deduplicated representation of one real-world
// title. Created once by the resolver and mutated only through it (staff
// enrichment); never deleted here.
type Media struct {
	ID            uuid.UUID          `json:"id"`
	MediaKind     provider.MediaKind `json:"media_type"`
	TitleZh       string             `json:"title_zh"`
	TitleOriginal *string            `json:"title_original,omitempty"`
	ReleaseDate   *string            `json:"release_date,omitempty"`
	Duration      *string            `json:"duration,omitempty"`
	Year          *string            `json:"year,omitempty"`
	PosterURL     *string            `json:"poster_url,omitempty"`
	Summary       *string            `json:"summary,omitempty"`
	Staff         *Staff             `json:"staff,omitempty"`
	Directors     []string           `json:"directors"`
	Actors        []string           `json:"actors"`
	Networks      []Network          `json:"networks,omitempty"`
	Rating        float64            `json:"rating"`
	RatingDouban  float64            `json:"rating_douban,omitempty"`
	RatingIMDB    float64            `json:"rating_imdb,omitempty"`
	RatingBangumi float64            `json:"rating_bangumi,omitempty"`
	RatingMaoyan  float64            `json:"rating_maoyan,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// MediaSource maps one provider-local identity onto a canonical Media row.
// (SourceType, SourceID) is globally unique; a Media accumulates sources
// over time as different providers' items resolve onto it.
type MediaSource struct {
	ID         uuid.UUID       `json:"id"`
	MediaID    uuid.UUID       `json:"media_id"`
	SourceType provider.Source `json:"source_type"`
	SourceID   string          `json:"source_id"`
	SourceURL  string          `json:"source_url"`
}
