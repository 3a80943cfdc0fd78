package search

import (
	"testing"

	"github.com/renqii/watchnest/internal/provider"
)

func TestCompletenessScore(t *testing.T) {
	tests := []struct {
		name string
		item provider.CandidateItem
		want int
	}{
		{"empty", provider.CandidateItem{SourceType: provider.SourceDouban}, 0},
		{
			"poster only",
			provider.CandidateItem{SourceType: provider.SourceDouban, PosterURL: "https://img/p.jpg"},
			weightPoster,
		},
		{
			"short summary ignored",
			provider.CandidateItem{SourceType: provider.SourceDouban, Summary: "太短了"},
			0,
		},
		{
			"sentinel summary ignored",
			provider.CandidateItem{SourceType: provider.SourceDouban, Summary: provider.NoSummary},
			0,
		},
		{
			"real summary",
			provider.CandidateItem{SourceType: provider.SourceDouban, Summary: "一个关于梦境与现实边界的故事。"},
			weightSummary,
		},
		{
			"primary source bonus",
			provider.CandidateItem{SourceType: provider.SourceTMDB},
			weightPrimarySrc,
		},
		{
			"fully populated",
			provider.CandidateItem{
				SourceType:    provider.SourceTMDB,
				PosterURL:     "https://img/p.jpg",
				Summary:       "一个关于梦境与现实边界的故事。",
				RatingIMDB:    8.8,
				RatingDouban:  9.3,
				RatingBangumi: 8.0,
				RatingMaoyan:  9.1,
				Directors:     []string{"克里斯托弗·诺兰"},
			},
			weightPoster + weightSummary + weightIMDBRating + weightDouban +
				weightBangumi + weightMaoyan + weightDirectors + weightPrimarySrc,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := completenessScore(tt.item); got != tt.want {
				t.Fatalf("completenessScore = %d, want %d", got, tt.want)
			}
		})
	}
}
