// Package relevance scores aggregated items against an ad-hoc query. It is
// pure: no I/O, deterministic given its inputs.
package relevance

import (
	"math"
	"sort"
	"strings"
	"time"

	"BlackGlass/internal/domain"
)

// Weighting factors for the final relevance score. Each factor is clamped
// independently before summing; the sum is scaled to [0,100].
const (
	keywordWeight  = 0.5
	locationBoost  = 0.2
	highCredBoost  = 0.15
	medCredBoost   = 0.10
	recencyWeight  = 0.15
	recencyWindow  = 7.0 // days
	recencyUnknown = 0.5 // publish date missing or unparseable
)

// Source allowlists for the credibility boost. These are fixed scoring
// inputs, distinct from the Tagger's credibility tiers.
var highCredibilitySources = []string{"reuters", "bbc", "economist", "stratfor", "foreignpolicy", "janes"}

var mediumCredibilitySources = []string{"aljazeera", "cnn"}

// Score evaluates one item against a query. The second return value is false
// when the item is excluded: no keyword matched, or a non-redundant location
// filter did not match. Scoring copies the item; the input is never mutated.
func Score(item domain.Item, query domain.Query, now time.Time) (domain.ScoredItem, bool) {
	text := strings.ToLower(item.Title + " " + item.Summary)

	var matched []string
	total := 0
	for _, kw := range query.Keywords {
		if kw == "" {
			continue
		}
		total++
		if strings.Contains(text, strings.ToLower(kw)) {
			matched = append(matched, kw)
		}
	}
	if len(matched) == 0 {
		return domain.ScoredItem{}, false
	}

	locationMatched := false
	if query.Location != "" {
		locationMatched = strings.Contains(text, strings.ToLower(query.Location))

		// Location acts as a hard filter only when it is not already part of
		// the free-text query; when redundant it degrades to a boost.
		if !locationMatched && !locationInKeywords(query) {
			return domain.ScoredItem{}, false
		}
	}

	keywordScore := float64(len(matched)) / float64(total)

	locBoost := 0.0
	if locationMatched {
		locBoost = locationBoost
	}

	sourceBoost := 0.0
	sourceLower := strings.ToLower(item.SourceName)
	switch {
	case containsAny(sourceLower, highCredibilitySources):
		sourceBoost = highCredBoost
	case containsAny(sourceLower, mediumCredibilitySources):
		sourceBoost = medCredBoost
	}

	recency := recencyUnknown
	if !item.PublishedAt.IsZero() {
		daysOld := float64(int(now.Sub(item.PublishedAt).Hours() / 24))
		recency = math.Max(0, 1-daysOld/recencyWindow)
	}

	score := int(math.Round((keywordScore*keywordWeight + locBoost + sourceBoost + recency*recencyWeight) * 100))
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	return domain.ScoredItem{
		Item:            item,
		MatchedKeywords: matched,
		LocationMatched: locationMatched,
		RelevanceScore:  score,
	}, true
}

// Rank scores every item, drops exclusions, and sorts descending by score.
// Ties keep pool order, which follows concurrent fetch completion and is not
// guaranteed stable across runs.
func Rank(items []domain.Item, query domain.Query, limit int, now time.Time) []domain.ScoredItem {
	scored := make([]domain.ScoredItem, 0, len(items))
	for _, item := range items {
		if s, ok := Score(item, query, now); ok {
			scored = append(scored, s)
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].RelevanceScore > scored[j].RelevanceScore
	})

	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

func locationInKeywords(query domain.Query) bool {
	joined := strings.ToLower(strings.Join(query.Keywords, " "))
	return strings.Contains(joined, strings.ToLower(query.Location))
}

func containsAny(s string, candidates []string) bool {
	for _, candidate := range candidates {
		if strings.Contains(s, candidate) {
			return true
		}
	}
	return false
}
