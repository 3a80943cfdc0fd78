package maoyan

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/cast"
	"golang.org/x/sync/errgroup"

	"github.com/renqii/watchnest/internal/provider"
)

const apiBase = "https://m.maoyan.com"

var (
	htmlTagPattern = regexp.MustCompile(`<[^>]*>`)
	dirSepPattern  = regexp.MustCompile(`[/\s,]+`)
	yearPattern    = regexp.MustCompile(`\d{4}`)
)

// Adapter queries the Maoyan mobile search API. The payload is loosely
// typed — scores and ids arrive as strings or numbers depending on the
// endpoint version — so numeric fields go through cast.
type Adapter struct {
	client *provider.Client
}

func New(timeout time.Duration) *Adapter {
	headers := map[string]string{
		"User-Agent": "Mozilla/5.0 (iPhone; CPU iPhone OS 13_2_3 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/13.0.3 Mobile/15E148 Safari/604.1",
	}
	return &Adapter{
		client: provider.NewClient("maoyan", timeout, 2, headers),
	}
}

func (a *Adapter) Name() provider.Source { return provider.SourceMaoyan }

type maoyanMovie struct {
	ID      any    `json:"id"`
	Nm      string `json:"nm"`
	Enm     string `json:"enm"`
	Sc      any    `json:"sc"`
	Img     string `json:"img"`
	Rt      string `json:"rt"`
	PubDesc string `json:"pubDesc"`
	Dir     string `json:"dir"`
	Star    string `json:"star"`
	Dur     any    `json:"dur"`
}

func (a *Adapter) Search(ctx context.Context, query string) ([]provider.CandidateItem, error) {
	searchURL := fmt.Sprintf("%s/ajax/search?kw=%s&cityId=1&stype=-1", apiBase, url.QueryEscape(query))
	body, err := a.client.Get(ctx, searchURL)
	if err != nil {
		return nil, err
	}

	items, err := parseSearchResponse(body)
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := range items {
		g.Go(func() error {
			a.fetchDetails(gctx, &items[i])
			return nil
		})
	}
	g.Wait()
	return items, nil
}

func parseSearchResponse(body []byte) ([]provider.CandidateItem, error) {
	var result struct {
		Movies struct {
			List []maoyanMovie `json:"list"`
		} `json:"movies"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("maoyan search decode: %w", err)
	}

	var items []provider.CandidateItem
	for _, m := range result.Movies.List {
		item, ok := toItem(m)
		if !ok {
			continue
		}
		items = append(items, item)
		if len(items) == provider.MaxResultsPerSource {
			break
		}
	}
	return items, nil
}

func toItem(m maoyanMovie) (provider.CandidateItem, bool) {
	id := cast.ToString(m.ID)
	if id == "" || id == "0" {
		return provider.CandidateItem{}, false
	}

	title := m.Nm
	if title == "" {
		title = provider.UnknownTitle
	}
	score := cast.ToFloat64(m.Sc)

	// The CDN URL embeds a /w.h/ sizing segment; stripping it yields the
	// full-resolution poster.
	poster := strings.Replace(m.Img, "/w.h/", "/", 1)

	year := provider.UnknownYear
	if len(m.Rt) >= 4 {
		year = m.Rt[:4]
	} else if m := yearPattern.FindString(m.PubDesc); m != "" {
		year = m
	}

	duration := provider.UnknownDuration
	if dur := cast.ToInt(m.Dur); dur > 0 {
		duration = fmt.Sprintf("%d分钟", dur)
	}

	staff := buildStaff(m.Dir, m.Star)

	var directors []string
	if m.Dir != "" {
		directors = []string{m.Dir}
	}
	var actors []string
	for _, s := range strings.Split(m.Star, ",") {
		if s = strings.TrimSpace(s); s != "" {
			actors = append(actors, s)
		}
	}

	return provider.CandidateItem{
		SourceType:    provider.SourceMaoyan,
		SourceID:      id,
		SourceURL:     fmt.Sprintf("%s/movie/%s", apiBase, id),
		MediaKind:     provider.KindMovie,
		TitleZh:       title,
		TitleOriginal: m.Enm,
		ReleaseDate:   m.Rt,
		Duration:      duration,
		Year:          year,
		PosterURL:     poster,
		Summary:       provider.NoSummary,
		Staff:         staff,
		Directors:     directors,
		Actors:        actors,
		Rating:        score,
		RatingMaoyan:  score,
		MatchCount:    1,
	}, true
}

// fetchDetails refines directors, staff and summary from the detail
// endpoint. The search list's "dir" field is often a single truncated name.
func (a *Adapter) fetchDetails(ctx context.Context, item *provider.CandidateItem) {
	detailURL := fmt.Sprintf("%s/ajax/detailmovie?movieId=%s", apiBase, item.SourceID)
	body, err := a.client.Get(ctx, detailURL)
	if err != nil {
		return
	}
	applyDetail(item, body)
}

func applyDetail(item *provider.CandidateItem, body []byte) {
	var result struct {
		DetailMovie struct {
			Dir  string `json:"dir"`
			Star string `json:"star"`
			Dra  string `json:"dra"`
		} `json:"detailMovie"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return
	}
	detail := result.DetailMovie

	if detail.Dir != "" {
		var directors []string
		for _, d := range dirSepPattern.Split(detail.Dir, -1) {
			if d = strings.TrimSpace(d); d != "" {
				directors = append(directors, d)
			}
		}
		item.Directors = directors
		if staff := buildStaff(detail.Dir, detail.Star); staff != provider.NoStaff {
			item.Staff = staff
		}
	}
	if detail.Dra != "" && (item.Summary == "" || item.Summary == provider.NoSummary) {
		item.Summary = htmlTagPattern.ReplaceAllString(detail.Dra, "")
	}
}

func buildStaff(dir, star string) string {
	var b strings.Builder
	if dir != "" {
		fmt.Fprintf(&b, "导演: %s ", dir)
	}
	if star != "" {
		fmt.Fprintf(&b, "主演: %s", star)
	}
	if b.Len() == 0 {
		return provider.NoStaff
	}
	return strings.TrimSpace(b.String())
}
