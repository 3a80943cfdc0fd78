package douban

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/renqii/watchnest/internal/provider"
)

var (
	sidPattern  = regexp.MustCompile(`sid:\s*(\d+)`)
	yearPattern = regexp.MustCompile(`\d{4}`)
)

// Adapter scrapes the Douban site-wide movie search. Douban blocks its
// detail pages aggressively, so only the listing is used: ratings and the
// cast line come straight from the result snippet.
type Adapter struct {
	client *provider.Client
}

func New(timeout time.Duration) *Adapter {
	headers := map[string]string{
		"User-Agent": "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	}
	return &Adapter{
		client: provider.NewClient("douban", timeout, 1, headers),
	}
}

func (a *Adapter) Name() provider.Source { return provider.SourceDouban }

func (a *Adapter) Search(ctx context.Context, query string) ([]provider.CandidateItem, error) {
	searchURL := fmt.Sprintf("https://www.douban.com/search?cat=1002&q=%s", url.QueryEscape(query))
	body, err := a.client.Get(ctx, searchURL)
	if err != nil {
		return nil, err
	}
	return parseSearchPage(body)
}

func parseSearchPage(html []byte) ([]provider.CandidateItem, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("douban search parse: %w", err)
	}

	var items []provider.CandidateItem
	doc.Find(".result-list .result").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if item, ok := parseResult(s); ok {
			items = append(items, item)
		}
		return len(items) < provider.MaxResultsPerSource
	})
	return items, nil
}

func parseResult(s *goquery.Selection) (provider.CandidateItem, bool) {
	link := s.Find("h3 a").First()
	onclick, _ := link.Attr("onclick")
	m := sidPattern.FindStringSubmatch(onclick)
	if m == nil {
		return provider.CandidateItem{}, false
	}
	sourceID := m[1]

	title := strings.TrimSpace(link.Text())
	if title == "" {
		title = provider.UnknownTitle
	}

	rating := parseFloat(s.Find(".rating_nums").Text())
	cast := strings.TrimSpace(s.Find(".subject-cast").Text())

	year := provider.UnknownYear
	if y := yearPattern.FindString(cast); y != "" {
		year = y
	}

	return provider.CandidateItem{
		SourceType:   provider.SourceDouban,
		SourceID:     sourceID,
		SourceURL:    fmt.Sprintf("https://movie.douban.com/subject/%s", sourceID),
		MediaKind:    provider.KindMovie,
		TitleZh:      title,
		ReleaseDate:  provider.UnknownDate,
		Duration:     provider.UnknownDuration,
		Year:         year,
		Summary:      provider.NoSummary,
		Staff:        cast,
		Directors:    []string{},
		Actors:       []string{},
		Rating:       rating,
		RatingDouban: rating,
		MatchCount:   1,
	}, true
}

func parseFloat(s string) float64 {
	var f float64
	fmt.Sscanf(strings.TrimSpace(s), "%f", &f)
	return f
}
