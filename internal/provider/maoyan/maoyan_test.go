package maoyan

import (
	"reflect"
	"testing"

	"github.com/renqii/watchnest/internal/provider"
)

// Scores and ids arrive as strings or numbers depending on the endpoint
// version; the fixture mixes both on purpose.
const searchResponse = `{
  "movies": {
    "list": [
      {
        "id": 78525,
        "nm": "盗梦空间",
        "enm": "Inception",
        "sc": "9.1",
        "img": "https://p0.meituan.net/w.h/movie/abc123.jpg",
        "rt": "2010-09-01",
        "dir": "克里斯托弗·诺兰",
        "star": "莱昂纳多·迪卡普里奥,约瑟夫·高登-莱维特",
        "dur": 148
      },
      {
        "id": "1203084",
        "nm": "未定名影片",
        "sc": 0,
        "img": "",
        "rt": "",
        "pubDesc": "2024年待定",
        "dur": "0"
      },
      {
        "id": 0,
        "nm": "无效条目"
      }
    ]
  }
}`

func TestParseSearchResponse(t *testing.T) {
	items, err := parseSearchResponse([]byte(searchResponse))
	if err != nil {
		t.Fatalf("parseSearchResponse: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2 (zero id dropped)", len(items))
	}

	got := items[0]
	if got.SourceType != provider.SourceMaoyan || got.SourceID != "78525" {
		t.Fatalf("identity = %s/%s", got.SourceType, got.SourceID)
	}
	if got.TitleZh != "盗梦空间" || got.TitleOriginal != "Inception" {
		t.Fatalf("titles = %q / %q", got.TitleZh, got.TitleOriginal)
	}
	if got.RatingMaoyan != 9.1 {
		t.Fatalf("string score not coerced: %v", got.RatingMaoyan)
	}
	if got.PosterURL != "https://p0.meituan.net/movie/abc123.jpg" {
		t.Fatalf("sizing segment not stripped: %q", got.PosterURL)
	}
	if got.Year != "2010" || got.ReleaseDate != "2010-09-01" {
		t.Fatalf("year/date = %q / %q", got.Year, got.ReleaseDate)
	}
	if got.Duration != "148分钟" {
		t.Fatalf("Duration = %q", got.Duration)
	}
	if got.Staff != "导演: 克里斯托弗·诺兰 主演: 莱昂纳多·迪卡普里奥,约瑟夫·高登-莱维特" {
		t.Fatalf("Staff = %q", got.Staff)
	}
	if !reflect.DeepEqual(got.Actors, []string{"莱昂纳多·迪卡普里奥", "约瑟夫·高登-莱维特"}) {
		t.Fatalf("Actors = %v", got.Actors)
	}

	second := items[1]
	if second.SourceID != "1203084" {
		t.Fatalf("string id not coerced: %q", second.SourceID)
	}
	if second.Year != "2024" {
		t.Fatalf("year not recovered from pubDesc: %q", second.Year)
	}
	if second.Duration != provider.UnknownDuration {
		t.Fatalf("Duration = %q, want unknown for zero dur", second.Duration)
	}
	if second.Staff != provider.NoStaff {
		t.Fatalf("Staff = %q, want placeholder", second.Staff)
	}
}

func TestParseSearchResponseMalformed(t *testing.T) {
	if _, err := parseSearchResponse([]byte("<html>rate limited</html>")); err == nil {
		t.Fatal("non-JSON body must surface an error")
	}
}

const detailResponse = `{
  "detailMovie": {
    "dir": "克里斯托弗·诺兰 / 艾玛·托马斯",
    "star": "莱昂纳多·迪卡普里奥",
    "dra": "<p>道姆·柯布是一名经验老到的窃贼。</p>"
  }
}`

func TestApplyDetail(t *testing.T) {
	item := provider.CandidateItem{
		SourceID:  "78525",
		Directors: []string{"克里斯托弗"},
		Summary:   provider.NoSummary,
	}
	applyDetail(&item, []byte(detailResponse))

	if !reflect.DeepEqual(item.Directors, []string{"克里斯托弗·诺兰", "艾玛·托马斯"}) {
		t.Fatalf("Directors = %v", item.Directors)
	}
	if item.Summary != "道姆·柯布是一名经验老到的窃贼。" {
		t.Fatalf("HTML tags not stripped from summary: %q", item.Summary)
	}
	if item.Staff != "导演: 克里斯托弗·诺兰 / 艾玛·托马斯 主演: 莱昂纳多·迪卡普里奥" {
		t.Fatalf("Staff = %q", item.Staff)
	}
}

func TestApplyDetailKeepsExistingSummary(t *testing.T) {
	item := provider.CandidateItem{Summary: "已有简介。"}
	applyDetail(&item, []byte(detailResponse))
	if item.Summary != "已有简介。" {
		t.Fatalf("populated summary overwritten: %q", item.Summary)
	}
}
