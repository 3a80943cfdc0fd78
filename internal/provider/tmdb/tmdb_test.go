package tmdb

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/renqii/watchnest/internal/provider"
)

const movieDetail = `{
  "id": 27205,
  "title": "盗梦空间",
  "original_title": "Inception",
  "overview": "道姆·柯布是一名经验老到的窃贼。",
  "poster_path": "/inception.jpg",
  "release_date": "2010-09-01",
  "vote_average": 8.8,
  "runtime": 148,
  "genres": [{"id": 28}, {"id": 878}],
  "credits": {
    "cast": [
      {"name": "莱昂纳多·迪卡普里奥"}, {"name": "约瑟夫·高登-莱维特"}, {"name": "艾伦·佩吉"},
      {"name": "汤姆·哈迪"}, {"name": "渡边谦"}, {"name": "第六位演员"}
    ],
    "crew": [
      {"name": "艾玛·托马斯", "job": "Producer"},
      {"name": "克里斯托弗·诺兰", "job": "Director"}
    ]
  }
}`

func TestToItemMovie(t *testing.T) {
	var title tmdbTitle
	if err := json.Unmarshal([]byte(movieDetail), &title); err != nil {
		t.Fatalf("fixture decode: %v", err)
	}

	got := toItem(title, "movie")

	if got.SourceType != provider.SourceTMDB || got.SourceID != "27205" {
		t.Fatalf("identity = %s/%s", got.SourceType, got.SourceID)
	}
	if got.MediaKind != provider.KindMovie {
		t.Fatalf("MediaKind = %q", got.MediaKind)
	}
	if got.TitleZh != "盗梦空间" || got.TitleOriginal != "Inception" {
		t.Fatalf("titles = %q / %q", got.TitleZh, got.TitleOriginal)
	}
	if got.Year != "2010" || got.ReleaseDate != "2010-09-01" {
		t.Fatalf("year/date = %q / %q", got.Year, got.ReleaseDate)
	}
	if got.Duration != "148分钟" {
		t.Fatalf("Duration = %q", got.Duration)
	}
	if got.PosterURL != imageBase+"/inception.jpg" {
		t.Fatalf("PosterURL = %q", got.PosterURL)
	}
	if got.RatingIMDB != 8.8 {
		t.Fatalf("RatingIMDB = %v", got.RatingIMDB)
	}
	if !reflect.DeepEqual(got.Directors, []string{"克里斯托弗·诺兰"}) {
		t.Fatalf("Directors = %v, want crew filtered by job", got.Directors)
	}
	if len(got.Actors) != 5 {
		t.Fatalf("cast not capped at 5: %v", got.Actors)
	}
}

func TestToItemAnimatedSeries(t *testing.T) {
	title := tmdbTitle{
		ID:           1429,
		Name:         "进击的巨人",
		OriginalName: "進撃の巨人",
		FirstAirDate: "2013-04-07",
		EpisodeCount: 25,
		GenreIDs:     []int{16},
	}

	got := toItem(title, "tv")

	if got.MediaKind != provider.KindAnime {
		t.Fatalf("MediaKind = %q, want animated tv flagged as anime", got.MediaKind)
	}
	if got.Duration != "共25话" {
		t.Fatalf("Duration = %q", got.Duration)
	}
}

func TestToItemPlainSeries(t *testing.T) {
	title := tmdbTitle{
		ID:           1396,
		Name:         "绝命毒师",
		FirstAirDate: "2008-01-20",
		EpisodeCount: 62,
	}

	got := toItem(title, "tv")

	if got.MediaKind != provider.KindTV {
		t.Fatalf("MediaKind = %q", got.MediaKind)
	}
	if got.Duration != "共62集" {
		t.Fatalf("Duration = %q", got.Duration)
	}
}

func TestToItemFallbacks(t *testing.T) {
	got := toItem(tmdbTitle{ID: 7, GenreIDs: []int{18}}, "tv")

	if got.TitleZh != provider.UnknownTitle {
		t.Fatalf("TitleZh = %q", got.TitleZh)
	}
	if got.ReleaseDate != provider.UnknownDate || got.Year != provider.UnknownYear {
		t.Fatalf("date/year = %q / %q", got.ReleaseDate, got.Year)
	}
	if got.Duration != provider.UnknownDuration {
		t.Fatalf("Duration = %q", got.Duration)
	}
	if got.Summary != provider.NoSummary {
		t.Fatalf("Summary = %q", got.Summary)
	}
	if got.PosterURL != "" {
		t.Fatalf("PosterURL = %q", got.PosterURL)
	}
}

func TestDurationOfEpisodeRuntimeFallback(t *testing.T) {
	title := tmdbTitle{EpisodeRunes: []int{45}}
	if got := durationOf(title, false); got != "45分钟/集" {
		t.Fatalf("durationOf = %q", got)
	}
}
