package search

import (
	"reflect"
	"testing"

	"github.com/renqii/watchnest/internal/provider"
)

func TestMergeBackfill(t *testing.T) {
	primary := provider.CandidateItem{
		SourceType:   provider.SourceDouban,
		SourceID:     "3541415",
		TitleZh:      "盗梦空间",
		Year:         provider.UnknownYear,
		Summary:      provider.NoSummary,
		RatingDouban: 9.3,
	}
	secondary := provider.CandidateItem{
		SourceType: provider.SourceMaoyan,
		SourceID:   "78525",
		TitleZh:    "盗梦空间",
		Year:       "2010",
		PosterURL:  "https://img/p.jpg",
		Summary:    "一个关于梦境与现实边界的故事。",
		RatingMaoyan: 9.1,
	}

	got := merge(primary, secondary)

	if got.SourceType != provider.SourceDouban || got.SourceID != "3541415" {
		t.Fatalf("primary identity must win, got %s/%s", got.SourceType, got.SourceID)
	}
	if got.MatchCount != 2 {
		t.Fatalf("MatchCount = %d, want 2", got.MatchCount)
	}
	if got.RatingDouban != 9.3 || got.RatingMaoyan != 9.1 {
		t.Fatalf("ratings not combined: douban=%v maoyan=%v", got.RatingDouban, got.RatingMaoyan)
	}
	if got.PosterURL != "https://img/p.jpg" {
		t.Fatalf("empty poster not backfilled: %q", got.PosterURL)
	}
	if got.Summary != "一个关于梦境与现实边界的故事。" {
		t.Fatalf("sentinel summary not backfilled: %q", got.Summary)
	}
	if got.Year != "2010" {
		t.Fatalf("sentinel year not backfilled: %q", got.Year)
	}
}

func TestMergePrimaryFieldsWin(t *testing.T) {
	primary := provider.CandidateItem{
		SourceType: provider.SourceTMDB,
		SourceID:   "27205",
		TitleZh:    "盗梦空间",
		Year:       "2010",
		PosterURL:  "https://tmdb/p.jpg",
		RatingIMDB: 8.8,
	}
	secondary := provider.CandidateItem{
		SourceType: provider.SourceDouban,
		SourceID:   "3541415",
		TitleZh:    "盗梦空间",
		Year:       "2011",
		PosterURL:  "https://douban/p.jpg",
		RatingIMDB: 8.7,
	}

	got := merge(primary, secondary)

	if got.Year != "2010" {
		t.Fatalf("known year must not be overwritten, got %q", got.Year)
	}
	if got.PosterURL != "https://tmdb/p.jpg" {
		t.Fatalf("populated poster must not be overwritten, got %q", got.PosterURL)
	}
	if got.RatingIMDB != 8.8 {
		t.Fatalf("populated rating must not be overwritten, got %v", got.RatingIMDB)
	}
}

func TestMergeMatchCountAccumulates(t *testing.T) {
	a := provider.CandidateItem{SourceType: provider.SourceTMDB, SourceID: "1", MatchCount: 2}
	b := provider.CandidateItem{SourceType: provider.SourceDouban, SourceID: "2"}
	if got := merge(a, b).MatchCount; got != 3 {
		t.Fatalf("MatchCount = %d, want 3", got)
	}
}

func TestMergeAnimeOverride(t *testing.T) {
	tmdbItem := provider.CandidateItem{
		SourceType: provider.SourceTMDB,
		SourceID:   "1429",
		SourceURL:  "https://www.themoviedb.org/tv/1429",
		MediaKind:  provider.KindTV,
		TitleZh:    "进击的巨人",
		Year:       "2013",
		PosterURL:  "https://tmdb/p.jpg",
		Duration:   "25分钟/集",
		Actors:     []string{"梶裕贵", "石川由依"},
		RatingIMDB: 8.9,
	}
	bgmItem := provider.CandidateItem{
		SourceType:    provider.SourceBangumi,
		SourceID:      "49387",
		SourceURL:     "https://bgm.tv/subject/49387",
		MediaKind:     provider.KindAnime,
		TitleZh:       "进击的巨人",
		Year:          "2013",
		PosterURL:     "https://bgm/p.jpg",
		Duration:      "共25话",
		Staff:         "荒木哲郎 / 濑古浩司 / 浅野恭司",
		RatingBangumi: 8.2,
	}

	got := merge(tmdbItem, bgmItem)

	if got.SourceType != provider.SourceBangumi || got.SourceID != "49387" {
		t.Fatalf("anime identity must come from bangumi, got %s/%s", got.SourceType, got.SourceID)
	}
	if got.SourceURL != "https://bgm.tv/subject/49387" {
		t.Fatalf("SourceURL = %q", got.SourceURL)
	}
	if got.PosterURL != "https://bgm/p.jpg" {
		t.Fatalf("anime poster must come from bangumi, got %q", got.PosterURL)
	}
	if got.Duration != "共25话" {
		t.Fatalf("anime duration must come from bangumi, got %q", got.Duration)
	}
	if got.Staff != "荒木哲郎 / 濑古浩司 / 浅野恭司" {
		t.Fatalf("Staff = %q", got.Staff)
	}
	if !reflect.DeepEqual(got.Directors, []string{"荒木哲郎"}) {
		t.Fatalf("Directors = %v, want first staff segment", got.Directors)
	}
	if !reflect.DeepEqual(got.Actors, []string{"梶裕贵", "石川由依"}) {
		t.Fatalf("Actors = %v, want tmdb cast", got.Actors)
	}
	// Ratings from both sides survive the override.
	if got.RatingIMDB != 8.9 || got.RatingBangumi != 8.2 {
		t.Fatalf("ratings lost: imdb=%v bangumi=%v", got.RatingIMDB, got.RatingBangumi)
	}
}

func TestMergeAnimeOverrideWithoutTMDBClearsActors(t *testing.T) {
	bgmItem := provider.CandidateItem{
		SourceType: provider.SourceBangumi,
		SourceID:   "49387",
		MediaKind:  provider.KindAnime,
		TitleZh:    "进击的巨人",
		Staff:      "荒木哲郎 / 濑古浩司",
	}
	doubanItem := provider.CandidateItem{
		SourceType: provider.SourceDouban,
		SourceID:   "20398642",
		TitleZh:    "进击的巨人",
		Actors:     []string{"某演员"},
	}

	got := merge(doubanItem, bgmItem)

	if got.SourceType != provider.SourceBangumi {
		t.Fatalf("identity must flip to bangumi for anime, got %s", got.SourceType)
	}
	if got.Actors != nil {
		t.Fatalf("actors must be cleared without a tmdb side, got %v", got.Actors)
	}
}

func TestMergeAnimeOverrideOrderIndependent(t *testing.T) {
	tmdbItem := provider.CandidateItem{
		SourceType: provider.SourceTMDB, SourceID: "1429", MediaKind: provider.KindTV,
		TitleZh: "进击的巨人", Actors: []string{"梶裕贵"},
	}
	bgmItem := provider.CandidateItem{
		SourceType: provider.SourceBangumi, SourceID: "49387", MediaKind: provider.KindAnime,
		TitleZh: "进击的巨人", Staff: "荒木哲郎",
	}

	ab := merge(tmdbItem, bgmItem)
	ba := merge(bgmItem, tmdbItem)

	if ab.SourceID != ba.SourceID || ab.Staff != ba.Staff {
		t.Fatalf("override must not depend on argument order: %v vs %v", ab, ba)
	}
	if !reflect.DeepEqual(ab.Actors, ba.Actors) {
		t.Fatalf("actors differ by order: %v vs %v", ab.Actors, ba.Actors)
	}
}

func TestClusterThreeWayMergeInputOrderIndependent(t *testing.T) {
	// Three equivalent candidates at distinct completeness tiers, each the
	// sole holder of some backfillable field.
	rich := provider.CandidateItem{
		SourceType: provider.SourceTMDB,
		SourceID:   "27205",
		TitleZh:    "盗梦空间",
		Year:       provider.UnknownYear,
		PosterURL:  "https://tmdb/p.jpg",
		RatingIMDB: 8.8,
	}
	mid := provider.CandidateItem{
		SourceType:   provider.SourceDouban,
		SourceID:     "3541415",
		TitleZh:      "盗梦空间",
		Year:         "2010",
		Summary:      "一个关于梦境与现实边界的故事。",
		RatingDouban: 9.3,
	}
	poor := provider.CandidateItem{
		SourceType:   provider.SourceMaoyan,
		SourceID:     "78525",
		TitleZh:      "盗梦空间",
		Year:         "2010",
		RatingMaoyan: 9.1,
	}

	want := merge(merge(rich, mid), poor)

	perms := [][]provider.CandidateItem{
		{rich, mid, poor},
		{poor, mid, rich},
		{mid, poor, rich},
	}
	for _, perm := range perms {
		got := cluster(perm)
		if len(got) != 1 {
			t.Fatalf("cluster(%d items) returned %d results", len(perm), len(got))
		}
		if !reflect.DeepEqual(got[0], want) {
			t.Fatalf("input order changed merge outcome:\ngot  %+v\nwant %+v", got[0], want)
		}
	}

	if want.SourceType != provider.SourceTMDB || want.SourceID != "27205" {
		t.Fatalf("identity must come from the richest candidate, got %s/%s", want.SourceType, want.SourceID)
	}
	if want.PosterURL != "https://tmdb/p.jpg" || want.Summary != "一个关于梦境与现实边界的故事。" || want.Year != "2010" {
		t.Fatalf("backfill incomplete: poster=%q summary=%q year=%q", want.PosterURL, want.Summary, want.Year)
	}
	if want.RatingIMDB != 8.8 || want.RatingDouban != 9.3 || want.RatingMaoyan != 9.1 {
		t.Fatalf("ratings not combined: imdb=%v douban=%v maoyan=%v", want.RatingIMDB, want.RatingDouban, want.RatingMaoyan)
	}
	if want.MatchCount != 3 {
		t.Fatalf("MatchCount = %d, want 3", want.MatchCount)
	}
}
