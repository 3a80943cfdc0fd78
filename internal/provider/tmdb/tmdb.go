package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/renqii/watchnest/internal/provider"
)

const (
	apiBase    = "https://api.themoviedb.org/3"
	imageBase  = "https://image.tmdb.org/t/p/w500"
	siteBase   = "https://www.themoviedb.org"
	animeGenre = 16 // TMDB "Animation"
)

// Adapter searches The Movie Database. It is the primary authoritative
// provider: cast lists and cross-language titles come from here.
type Adapter struct {
	client *provider.Client
}

func New(accessToken string, timeout time.Duration) *Adapter {
	headers := map[string]string{
		"Authorization": "Bearer " + accessToken,
		"Content-Type":  "application/json",
	}
	return &Adapter{
		client: provider.NewClient("tmdb", timeout, 4, headers),
	}
}

func (a *Adapter) Name() provider.Source { return provider.SourceTMDB }

type tmdbTitle struct {
	ID            int     `json:"id"`
	MediaType     string  `json:"media_type"`
	Title         string  `json:"title"`
	Name          string  `json:"name"`
	OriginalTitle string  `json:"original_title"`
	OriginalName  string  `json:"original_name"`
	Overview      string  `json:"overview"`
	PosterPath    string  `json:"poster_path"`
	ReleaseDate   string  `json:"release_date"`
	FirstAirDate  string  `json:"first_air_date"`
	VoteAverage   float64 `json:"vote_average"`
	Runtime       int     `json:"runtime"`
	EpisodeCount  int     `json:"number_of_episodes"`
	EpisodeRunes  []int   `json:"episode_run_time"`
	GenreIDs      []int   `json:"genre_ids"`
	Genres        []struct {
		ID int `json:"id"`
	} `json:"genres"`
	Credits *struct {
		Cast []struct {
			Name string `json:"name"`
		} `json:"cast"`
		Crew []struct {
			Name string `json:"name"`
			Job  string `json:"job"`
		} `json:"crew"`
	} `json:"credits"`
}

func (a *Adapter) Search(ctx context.Context, query string) ([]provider.CandidateItem, error) {
	searchURL := fmt.Sprintf("%s/search/multi?query=%s&language=zh-CN&include_adult=false",
		apiBase, url.QueryEscape(query))
	body, err := a.client.Get(ctx, searchURL)
	if err != nil {
		return nil, err
	}

	var result struct {
		Results []tmdbTitle `json:"results"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("tmdb search decode: %w", err)
	}

	var hits []tmdbTitle
	for _, r := range result.Results {
		if r.MediaType != "movie" && r.MediaType != "tv" {
			continue
		}
		hits = append(hits, r)
		if len(hits) == provider.MaxResultsPerSource {
			break
		}
	}

	items := make([]provider.CandidateItem, len(hits))
	g, gctx := errgroup.WithContext(ctx)
	for i, hit := range hits {
		g.Go(func() error {
			items[i] = a.fetchDetails(gctx, hit)
			return nil
		})
	}
	g.Wait()
	return items, nil
}

// fetchDetails pulls the full record including credits. A failed detail
// request degrades to the search hit's fields rather than losing the item.
func (a *Adapter) fetchDetails(ctx context.Context, hit tmdbTitle) provider.CandidateItem {
	detailURL := fmt.Sprintf("%s/%s/%d?language=zh-CN&append_to_response=credits",
		apiBase, hit.MediaType, hit.ID)
	body, err := a.client.Get(ctx, detailURL)
	if err != nil {
		return toItem(hit, hit.MediaType)
	}
	var detail tmdbTitle
	if err := json.Unmarshal(body, &detail); err != nil {
		return toItem(hit, hit.MediaType)
	}
	detail.ID = hit.ID
	return toItem(detail, hit.MediaType)
}

func toItem(t tmdbTitle, mediaType string) provider.CandidateItem {
	isMovie := mediaType == "movie"

	title := t.Name
	original := t.OriginalName
	releaseDate := t.FirstAirDate
	if isMovie {
		title = t.Title
		original = t.OriginalTitle
		releaseDate = t.ReleaseDate
	}
	if title == "" {
		title = provider.UnknownTitle
	}
	if releaseDate == "" {
		releaseDate = provider.UnknownDate
	}

	year := provider.UnknownYear
	if len(releaseDate) >= 4 && releaseDate != provider.UnknownDate {
		year = releaseDate[:4]
	}

	posterURL := ""
	if t.PosterPath != "" {
		posterURL = imageBase + t.PosterPath
	}

	kind := provider.MediaKind(mediaType)
	if !isMovie && isAnimation(t) {
		kind = provider.KindAnime
	}

	item := provider.CandidateItem{
		SourceType:    provider.SourceTMDB,
		SourceID:      fmt.Sprintf("%d", t.ID),
		SourceURL:     fmt.Sprintf("%s/%s/%d", siteBase, mediaType, t.ID),
		MediaKind:     kind,
		TitleZh:       title,
		TitleOriginal: original,
		ReleaseDate:   releaseDate,
		Duration:      durationOf(t, isMovie),
		Year:          year,
		PosterURL:     posterURL,
		Summary:       t.Overview,
		Rating:        t.VoteAverage,
		RatingIMDB:    t.VoteAverage,
		MatchCount:    1,
	}
	if item.Summary == "" {
		item.Summary = provider.NoSummary
	}

	if t.Credits != nil {
		for _, m := range t.Credits.Crew {
			if m.Job == "Director" && len(item.Directors) < 3 {
				item.Directors = append(item.Directors, m.Name)
			}
		}
		for _, m := range t.Credits.Cast {
			if len(item.Actors) == 5 {
				break
			}
			item.Actors = append(item.Actors, m.Name)
		}
	}
	return item
}

// durationOf prefers total episode count for TV ("共12集", or "共12话" for
// animation), falling back to per-episode runtime.
func durationOf(t tmdbTitle, isMovie bool) string {
	if isMovie {
		if t.Runtime > 0 {
			return fmt.Sprintf("%d分钟", t.Runtime)
		}
		return provider.UnknownDuration
	}
	if t.EpisodeCount > 0 {
		if isAnimation(t) {
			return fmt.Sprintf("共%d话", t.EpisodeCount)
		}
		return fmt.Sprintf("共%d集", t.EpisodeCount)
	}
	if len(t.EpisodeRunes) > 0 {
		return fmt.Sprintf("%d分钟/集", t.EpisodeRunes[0])
	}
	return provider.UnknownDuration
}

func isAnimation(t tmdbTitle) bool {
	for _, id := range t.GenreIDs {
		if id == animeGenre {
			return true
		}
	}
	for _, g := range t.Genres {
		if g.ID == animeGenre {
			return true
		}
	}
	return false
}
