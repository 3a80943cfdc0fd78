package search

import "github.com/renqii/watchnest/internal/provider"

// Completeness weights. These rank data richness before clustering and are
// tunable; nothing downstream depends on the exact values, only on the
// ordering they induce.
const (
	weightPoster      = 20
	weightSummary     = 15
	weightIMDBRating  = 10
	weightDouban      = 10
	weightBangumi     = 10
	weightMaoyan      = 8
	weightDirectors   = 8
	weightPrimarySrc  = 10
	minSummaryRuneLen = 10
)

// completenessScore rates how much usable data a candidate carries. Pure
// function; the score orders candidates for merging and is never persisted.
func completenessScore(item provider.CandidateItem) int {
	score := 0
	if item.PosterURL != "" {
		score += weightPoster
	}
	if item.Summary != "" && item.Summary != provider.NoSummary && len([]rune(item.Summary)) > minSummaryRuneLen {
		score += weightSummary
	}
	if item.RatingIMDB > 0 {
		score += weightIMDBRating
	}
	if item.RatingDouban > 0 {
		score += weightDouban
	}
	if item.RatingBangumi > 0 {
		score += weightBangumi
	}
	if item.RatingMaoyan > 0 {
		score += weightMaoyan
	}
	if len(item.Directors) > 0 {
		score += weightDirectors
	}
	if item.SourceType == provider.SourceTMDB {
		score += weightPrimarySrc
	}
	return score
}
