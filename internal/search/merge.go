package search

import (
	"strings"

	"github.com/renqii/watchnest/internal/provider"
)

// merge folds secondary into primary, where primary is the higher-scored
// side of an equivalence pair. Primary's identity and fields win; secondary
// only backfills holes — except for the anime override below.
func merge(primary, secondary provider.CandidateItem) provider.CandidateItem {
	merged := primary
	merged.MatchCount = countOf(primary) + countOf(secondary)

	if merged.RatingIMDB == 0 {
		merged.RatingIMDB = secondary.RatingIMDB
	}
	if merged.RatingDouban == 0 {
		merged.RatingDouban = secondary.RatingDouban
	}
	if merged.RatingBangumi == 0 {
		merged.RatingBangumi = secondary.RatingBangumi
	}
	if merged.RatingMaoyan == 0 {
		merged.RatingMaoyan = secondary.RatingMaoyan
	}

	if merged.PosterURL == "" {
		merged.PosterURL = secondary.PosterURL
	}
	if merged.Summary == "" || merged.Summary == provider.NoSummary {
		merged.Summary = secondary.Summary
	}
	if merged.Year == provider.UnknownYear {
		merged.Year = secondary.Year
	}

	// Anime override: bgm is authoritative for anime identity, staff and
	// episode data, which the generic movie database handles poorly. TMDB
	// keeps the cast, which bgm barely tracks.
	bgmItem := bySource(primary, secondary, provider.SourceBangumi)
	tmdbItem := bySource(primary, secondary, provider.SourceTMDB)

	if bgmItem != nil && bgmItem.MediaKind == provider.KindAnime {
		merged.SourceType = bgmItem.SourceType
		merged.SourceID = bgmItem.SourceID
		merged.SourceURL = bgmItem.SourceURL

		if bgmItem.PosterURL != "" {
			merged.PosterURL = bgmItem.PosterURL
		}
		if bgmItem.Duration != "" && bgmItem.Duration != provider.UnknownDuration {
			merged.Duration = bgmItem.Duration
		}
		merged.Staff = bgmItem.Staff

		first, _, _ := strings.Cut(bgmItem.Staff, "/")
		if first = strings.TrimSpace(first); first != "" {
			merged.Directors = []string{first}
		} else {
			merged.Directors = nil
		}

		if tmdbItem != nil && len(tmdbItem.Actors) > 0 {
			merged.Actors = tmdbItem.Actors
		} else {
			merged.Actors = nil
		}
	}

	return merged
}

func countOf(item provider.CandidateItem) int {
	if item.MatchCount < 1 {
		return 1
	}
	return item.MatchCount
}

func bySource(a, b provider.CandidateItem, src provider.Source) *provider.CandidateItem {
	if a.SourceType == src {
		return &a
	}
	if b.SourceType == src {
		return &b
	}
	return nil
}
