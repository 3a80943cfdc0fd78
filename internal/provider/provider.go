package provider

import "context"

// Source identifies one external metadata provider.
type Source string

const (
	SourceTMDB    Source = "tmdb"
	SourceBangumi Source = "bgm"
	SourceDouban  Source = "douban"
	SourceMaoyan  Source = "maoyan"
)

// MediaKind is the kind of title a candidate describes.
type MediaKind string

const (
	KindMovie MediaKind = "movie"
	KindTV    MediaKind = "tv"
	KindAnime MediaKind = "anime"
)

// Placeholder values emitted by adapters when a provider did not supply
// a field. Downstream merge and scoring logic treats these as "missing".
const (
	UnknownTitle    = "未知标题"
	UnknownDate     = "未知日期"
	UnknownDuration = "未知"
	UnknownYear     = "----"
	NoSummary       = "暂无简介"
	NoStaff         = "暂无制作信息"
)

// ParseSource validates a provider name from an API payload.
func ParseSource(s string) (Source, bool) {
	switch Source(s) {
	case SourceTMDB, SourceBangumi, SourceDouban, SourceMaoyan:
		return Source(s), true
	}
	return "", false
}

// ParseMediaKind validates a media kind from an API payload.
func ParseMediaKind(s string) (MediaKind, bool) {
	switch MediaKind(s) {
	case KindMovie, KindTV, KindAnime:
		return MediaKind(s), true
	}
	return "", false
}

// MaxResultsPerSource caps each adapter's raw contribution before detail
// enrichment, bounding the number of follow-up requests per search.
const MaxResultsPerSource = 8

// CandidateItem is one provider hit for a query, normalized to the shared
// shape every adapter must emit. It lives only for the duration of a single
// search call; persistence goes through the media package.
type CandidateItem struct {
	SourceType    Source    `json:"source_type"`
	SourceID      string    `json:"source_id"`
	SourceURL     string    `json:"source_url"`
	MediaKind     MediaKind `json:"media_type"`
	TitleZh       string    `json:"title_zh"`
	TitleOriginal string    `json:"title_original,omitempty"`
	ReleaseDate   string    `json:"release_date"`
	Duration      string    `json:"duration"`
	Year          string    `json:"year"`
	PosterURL     string    `json:"poster_url"`
	Summary       string    `json:"summary"`
	Staff         string    `json:"staff"`
	Directors     []string  `json:"directors"`
	Actors        []string  `json:"actors"`
	Rating        float64   `json:"rating"`
	RatingDouban  float64   `json:"rating_douban"`
	RatingIMDB    float64   `json:"rating_imdb"`
	RatingBangumi float64   `json:"rating_bangumi"`
	RatingMaoyan  float64   `json:"rating_maoyan"`
	MatchCount    int       `json:"match_count"`
}

// Adapter is the contract every provider implements. Search returns zero or
// more normalized candidates; transport, headers, rate limiting and raw
// response parsing are the adapter's own business.
type Adapter interface {
	Name() Source
	Search(ctx context.Context, query string) ([]CandidateItem, error)
}
