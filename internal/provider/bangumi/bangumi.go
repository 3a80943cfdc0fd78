package bangumi

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	"github.com/renqii/watchnest/internal/provider"
)

const siteBase = "https://bgm.tv"

var (
	yearPattern     = regexp.MustCompile(`(\d{4})年`)
	leadYearPattern = regexp.MustCompile(`^\d{4}年`)
	episodePattern  = regexp.MustCompile(`^\d+话$`)
	episodesPattern = regexp.MustCompile(`共\d+话`)
	runtimePattern  = regexp.MustCompile(`\d+小时|\d+分钟`)
	castSepPattern  = regexp.MustCompile(`、|/|,|，| `)
)

// infobox roles worth carrying into the staff string, in display order.
var staffRoles = []string{"导演", "脚本", "人物设定", "音乐", "动画制作", "原画", "原作"}

// Adapter scrapes bgm.tv, the anime-specialist provider. Its staff and
// episode data is authoritative for anime; cast data is thin by design
// (the site keeps voice actors on a separate character page).
type Adapter struct {
	client *provider.Client
}

func New(timeout time.Duration) *Adapter {
	headers := map[string]string{
		"User-Agent": "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		"Cookie":     "chii_searchDateLine=0",
	}
	return &Adapter{
		client: provider.NewClient("bgm", timeout, 2, headers),
	}
}

func (a *Adapter) Name() provider.Source { return provider.SourceBangumi }

func (a *Adapter) Search(ctx context.Context, query string) ([]provider.CandidateItem, error) {
	searchURL := fmt.Sprintf("%s/subject_search/%s?cat=2", siteBase, url.PathEscape(query))
	body, err := a.client.Get(ctx, searchURL)
	if err != nil {
		return nil, err
	}

	items, err := parseSearchPage(body)
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

// parseSearchPage extracts up to MaxResultsPerSource candidates from
// the subject search listing. Pure function of the HTML.
func parseSearchPage(html []byte) ([]provider.CandidateItem, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("bgm search parse: %w", err)
	}

	var items []provider.CandidateItem
	doc.Find("#browserItemList > li").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if item, ok := parseListEntry(s); ok {
			items = append(items, item)
		}
		return len(items) < provider.MaxResultsPerSource
	})
	return items, nil
}

func parseListEntry(s *goquery.Selection) (provider.CandidateItem, bool) {
	title := s.Find("h3 > a.l").First()
	if title.Length() == 0 {
		return provider.CandidateItem{}, false
	}
	href, _ := title.Attr("href")
	parts := strings.Split(href, "/")
	sourceID := parts[len(parts)-1]
	if sourceID == "" {
		return provider.CandidateItem{}, false
	}

	posterURL := ""
	if src, ok := s.Find(".subjectCover img").First().Attr("src"); ok && src != "" {
		posterURL = "https:" + strings.NewReplacer("/s/", "/l/", "/m/", "/l/").Replace(src)
	}

	infoText := strings.TrimSpace(s.Find(".info.tip").Text())
	rating := parseFloat(s.Find(".rateInfo small.fade").Text())

	year := provider.UnknownYear
	if m := yearPattern.FindStringSubmatch(infoText); m != nil {
		year = m[1]
	}
	releaseDate := provider.UnknownDate
	if year != provider.UnknownYear {
		releaseDate = year + "-01-01"
	}

	staff := cleanStaff(infoText)
	var directors []string
	if first := firstSegment(staff); first != "" {
		directors = []string{first}
	}

	return provider.CandidateItem{
		SourceType:    provider.SourceBangumi,
		SourceID:      sourceID,
		SourceURL:     fmt.Sprintf("%s/subject/%s", siteBase, sourceID),
		MediaKind:     provider.KindAnime,
		TitleZh:       strings.TrimSpace(title.Text()),
		TitleOriginal: strings.TrimSpace(s.Find("h3 > small.grey").Text()),
		ReleaseDate:   releaseDate,
		Duration:      parseDuration(infoText),
		Year:          year,
		PosterURL:     posterURL,
		Summary:       provider.NoSummary, // filled by the detail fetch
		Staff:         staff,
		Directors:     directors,
		Actors:        []string{},
		Rating:        rating,
		RatingBangumi: rating,
		MatchCount:    1,
	}, true
}

// fetchDetails loads the subject page and refines summary, staff, cast,
// episode count and air date from the infobox. Failures leave the listing
// fields in place.
func (a *Adapter) fetchDetails(ctx context.Context, item *provider.CandidateItem) {
	body, err := a.client.Get(ctx, item.SourceURL)
	if err != nil {
		return
	}
	applyDetailPage(item, body)
}

func applyDetailPage(item *provider.CandidateItem, html []byte) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return
	}

	if summary := strings.TrimSpace(doc.Find("#subject_summary").Text()); summary != "" {
		item.Summary = summary
	}

	info := map[string]string{}
	doc.Find("#infobox li").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		key, value, found := strings.Cut(text, ":")
		if !found {
			key, value, found = strings.Cut(text, "：")
		}
		if found {
			info[strings.TrimSpace(key)] = strings.TrimSpace(value)
		}
	})
	if len(info) == 0 {
		return
	}

	if dir := info["导演"]; dir != "" {
		item.Directors = []string{dir}
	}

	// The listing's staff string is truncated; rebuild it from the infobox
	// when the roles are present.
	var staffParts []string
	for _, role := range staffRoles {
		if v := info[role]; v != "" {
			staffParts = append(staffParts, role+": "+v)
		}
	}
	if len(staffParts) > 0 {
		item.Staff = strings.Join(staffParts, " / ")
	}

	if cast := info["演出"]; cast != "" {
		var actors []string
		for _, name := range castSepPattern.Split(cast, -1) {
			if name = strings.TrimSpace(name); name != "" {
				actors = append(actors, name)
			}
		}
		item.Actors = actors
	}

	if eps := info["话数"]; eps != "" && eps != "*" {
		item.Duration = fmt.Sprintf("共%s话", eps)
	}

	if zh := info["中文名"]; zh != "" && (item.TitleZh == "" || item.TitleZh == item.TitleOriginal) {
		item.TitleZh = zh
	}

	if aired := info["放送开始"]; aired != "" {
		item.ReleaseDate = strings.NewReplacer("年", "-", "月", "-", "日", "").Replace(aired)
		if len(aired) >= 4 {
			if y := aired[:4]; yearDigits(y) {
				item.Year = y
			}
		}
	}
}

// cleanStaff drops the broadcast-date and episode/runtime segments from
// the listing's info line, leaving the staff credits.
func cleanStaff(infoText string) string {
	var kept []string
	for _, part := range strings.Split(infoText, " / ") {
		p := strings.TrimSpace(part)
		if leadYearPattern.MatchString(p) || episodePattern.MatchString(p) ||
			episodesPattern.MatchString(p) || runtimePattern.MatchString(p) {
			continue
		}
		kept = append(kept, part)
	}
	return strings.Join(kept, " / ")
}

func parseDuration(infoText string) string {
	for _, part := range strings.Split(infoText, " / ") {
		part = strings.TrimSpace(part)
		if episodePattern.MatchString(part) || episodesPattern.MatchString(part) || runtimePattern.MatchString(part) {
			return part
		}
	}
	return provider.UnknownDuration
}

func firstSegment(staff string) string {
	first, _, _ := strings.Cut(staff, "/")
	return strings.TrimSpace(first)
}

func parseFloat(s string) float64 {
	var f float64
	fmt.Sscanf(strings.TrimSpace(s), "%f", &f)
	return f
}

func yearDigits(s string) bool {
	if len(s) != 4 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
