package search

import (
	"context"
	"log"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/renqii/watchnest/internal/provider"
)

// Kind is the search-time filter over adapter subsets.
type Kind string

const (
	KindMovie Kind = "movie"
	KindAnime Kind = "anime"
	KindAll   Kind = "all"
)

func ParseKind(s string) (Kind, bool) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindMovie:
		return KindMovie, true
	case KindAnime:
		return KindAnime, true
	case KindAll, "":
		return KindAll, true
	}
	return "", false
}

// Aggregator fans a query out to the selected adapters, isolates their
// failures, and folds duplicate hits into one record per real-world title.
type Aggregator struct {
	movie []provider.Adapter
	anime []provider.Adapter
	cache *Cache
}

// NewAggregator wires the movie-capable and anime-capable adapter subsets.
// cache may be nil.
func NewAggregator(movie, anime []provider.Adapter, cache *Cache) *Aggregator {
	return &Aggregator{movie: movie, anime: anime, cache: cache}
}

// Search runs every selected adapter concurrently, waits for all of them,
// and returns the merged list ordered by descending completeness score.
// Adapter failures degrade to empty contributions; the caller never sees
// them. An empty query yields an empty list.
func (a *Aggregator) Search(ctx context.Context, query string, kind Kind) []provider.CandidateItem {
	query = strings.TrimSpace(query)
	if query == "" {
		return []provider.CandidateItem{}
	}

	if a.cache != nil {
		if cached, ok := a.cache.Get(ctx, query, kind); ok {
			return cached
		}
	}

	adapters := a.selectAdapters(kind)

	// Each adapter writes its own slot; flattening after the join keeps
	// discovery order fixed by adapter registration, not by which
	// goroutine finished first. Clustering tie-breaks depend on it.
	results := make([][]provider.CandidateItem, len(adapters))
	g, gctx := errgroup.WithContext(ctx)
	for i, adapter := range adapters {
		g.Go(func() error {
			items, err := adapter.Search(gctx, query)
			if err != nil {
				// Fault isolation: one provider's outage must not cost the
				// caller the other providers' results.
				log.Printf("search: adapter %s failed for %q: %v", adapter.Name(), query, err)
				return nil
			}
			results[i] = items
			return nil
		})
	}
	g.Wait()

	var collected []provider.CandidateItem
	for _, items := range results {
		collected = append(collected, items...)
	}

	merged := cluster(collected)

	if a.cache != nil {
		a.cache.Set(ctx, query, kind, merged)
	}
	return merged
}

// selectAdapters dedupes by name: an adapter registered for both movie
// and anime still gets queried once under KindAll.
func (a *Aggregator) selectAdapters(kind Kind) []provider.Adapter {
	var out []provider.Adapter
	seen := make(map[provider.Source]bool)
	add := func(adapters []provider.Adapter) {
		for _, ad := range adapters {
			if !seen[ad.Name()] {
				seen[ad.Name()] = true
				out = append(out, ad)
			}
		}
	}
	if kind == KindMovie || kind == KindAll {
		add(a.movie)
	}
	if kind == KindAnime || kind == KindAll {
		add(a.anime)
	}
	return out
}

// cluster scores, orders, and merges candidates. Sorting is stable so that
// equal scores keep discovery order, which makes the surviving
// representative of a tie deterministic. Clustering itself is sequential:
// each candidate is compared against merged representatives only, first
// match wins.
func cluster(items []provider.CandidateItem) []provider.CandidateItem {
	if len(items) == 0 {
		return []provider.CandidateItem{}
	}

	scores := make([]int, len(items))
	order := make([]int, len(items))
	for i, item := range items {
		scores[i] = completenessScore(item)
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return scores[order[i]] > scores[order[j]]
	})

	merged := make([]provider.CandidateItem, 0, len(items))
	for _, idx := range order {
		item := items[idx]
		found := false
		for i := range merged {
			if sameMedia(merged[i], item) {
				merged[i] = merge(merged[i], item)
				found = true
				break
			}
		}
		if !found {
			merged = append(merged, item)
		}
	}
	return merged
}
