package collections

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/renqii/watchnest/internal/media"
	"github.com/renqii/watchnest/internal/provider"
)

// ErrNotFound is returned both for a missing row and for a row owned by
// someone else: ownership failures are indistinguishable from
// non-existence so ids cannot be probed.
var ErrNotFound = errors.New("collection not found")

// Status is a user's watch state for one canonical title.
type Status string

const (
	StatusWish     Status = "wish"
	StatusWatching Status = "watching"
	StatusWatched  Status = "watched"
	StatusOnHold   Status = "on_hold"
	StatusDropped  Status = "dropped"
)

// ParseStatus validates against the fixed enum. Invalid input is a
// rejected request, never silently clamped.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusWish, StatusWatching, StatusWatched, StatusOnHold, StatusDropped:
		return Status(s), nil
	}
	return "", fmt.Errorf("invalid status %q: must be one of wish, watching, watched, on_hold, dropped", s)
}

// Collection is one user's watch-state against one canonical Media row.
// Unique per (user_id, media_id); upsert semantics.
type Collection struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	MediaID   uuid.UUID `json:"media_id"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Entry is a collection row enriched with its canonical Media and the
// preferred provider source for display.
type Entry struct {
	media.Media
	CollectionID uuid.UUID       `json:"collection_id"`
	Status       Status          `json:"status"`
	CollectedAt  time.Time       `json:"collected_at"`
	SourceType   provider.Source `json:"source_type,omitempty"`
	SourceID     string          `json:"source_id,omitempty"`
	SourceURL    string          `json:"source_url,omitempty"`
}
