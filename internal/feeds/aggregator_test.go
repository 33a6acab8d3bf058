package feeds

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"BlackGlass/internal/domain"
	"BlackGlass/internal/tagger"
)

// stubFetcher serves canned items per URL and can simulate a failed source.
type stubFetcher struct {
	items map[string][]domain.Item
	fail  map[string]bool
}

func (s *stubFetcher) Fetch(_ context.Context, sourceName, url string, _ bool) ([]domain.Item, error) {
	if s.fail[url] {
		return []domain.Item{}, errors.New("boom")
	}
	items := make([]domain.Item, len(s.items[url]))
	copy(items, s.items[url])
	for i := range items {
		if items[i].SourceName == "" {
			items[i].SourceName = sourceName
		}
	}
	return items, nil
}

func item(id, title, summary string, published time.Time) domain.Item {
	return domain.Item{
		ID:          id,
		Title:       title,
		Summary:     summary,
		URL:         "http://example.org/" + id,
		PublishedAt: published,
		SourceType:  domain.SourceFeed,
	}
}

func TestFetchAllBestEffort(t *testing.T) {
	t.Parallel()

	now := time.Now()
	fetcher := &stubFetcher{
		items: map[string][]domain.Item{
			"http://a": {item("a1", "alpha", "text", now)},
			"http://b": {item("b1", "beta", "text", now)},
		},
		fail: map[string]bool{"http://c": true},
	}
	sources := map[string]string{"a": "http://a", "b": "http://b", "c": "http://c"}

	agg := NewAggregator(fetcher, sources, nil, tagger.New(), 3, nil)

	results := agg.FetchAll(context.Background(), sources)
	if len(results) != 3 {
		t.Fatalf("every source must be represented, got %d", len(results))
	}
	if len(results["a"]) != 1 || len(results["b"]) != 1 {
		t.Fatal("healthy sources should return their items")
	}
	if len(results["c"]) != 0 {
		t.Fatal("failed source should contribute an empty result, not poison the rest")
	}
}

func TestFetchAllTagsItems(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{
		items: map[string][]domain.Item{
			"http://a": {item("a1", "Cyber attack on pipeline in Germany", "Ransomware hit by hackers near Berlin, Germany.", time.Now())},
		},
	}
	sources := map[string]string{"reuters": "http://a"}
	agg := NewAggregator(fetcher, sources, nil, tagger.New(), 2, nil)

	results := agg.FetchAll(context.Background(), sources)
	tags := results["reuters"][0].Tags

	if len(tags.Categories) == 0 {
		t.Fatal("expected categories from the tagger")
	}
	if tags.Credibility != domain.CredibilityHigh {
		t.Fatalf("reuters should tag as high credibility, got %s", tags.Credibility)
	}
	found := false
	for _, loc := range tags.Locations {
		if loc == "germany" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected germany in locations, got %v", tags.Locations)
	}
}

func TestFetchAlertsEnrichment(t *testing.T) {
	t.Parallel()

	longSummary := strings.Repeat("significant detail ", 10) // >100 chars
	fetcher := &stubFetcher{
		items: map[string][]domain.Item{
			"http://alert": {
				item("al1", "Acme Corp breach update - Reuters", longSummary, time.Now()),
				item("al2", "Short note", "tiny", time.Now()),
			},
		},
	}
	agg := NewAggregator(fetcher, nil, map[string]string{"acme": "http://alert"}, tagger.New(), 2, nil)

	results := agg.FetchAlerts(context.Background())
	items := results["acme"]
	if len(items) != 2 {
		t.Fatalf("expected 2 alert items, got %d", len(items))
	}

	first := items[0]
	if first.SourceType != domain.SourceAlert {
		t.Fatal("alert items must carry the alert source type")
	}
	if first.Alert == nil {
		t.Fatal("alert metadata missing")
	}
	if first.Alert.Publisher != "Reuters" {
		t.Fatalf("publisher should be the last ' - ' segment, got %q", first.Alert.Publisher)
	}
	if first.Title != "Acme Corp breach update" {
		t.Fatalf("title should drop the publisher suffix, got %q", first.Title)
	}
	if first.Alert.OriginalTitle != "Acme Corp breach update - Reuters" {
		t.Fatalf("original title should be retained, got %q", first.Alert.OriginalTitle)
	}
	if first.SourceName != "alert_acme" {
		t.Fatalf("unexpected alert source name: %s", first.SourceName)
	}

	// base 70 + 15 (alert name "acme" in title) + 10 (high credibility publisher).
	if first.Alert.Confidence != 95 {
		t.Fatalf("expected confidence 95, got %d", first.Alert.Confidence)
	}

	// base 70, no title match, no publisher, -5 for a short summary.
	second := items[1]
	if second.Alert.Confidence != 65 {
		t.Fatalf("expected confidence 65, got %d", second.Alert.Confidence)
	}
}

func TestSearchAllFiltersAndScores(t *testing.T) {
	t.Parallel()

	now := time.Now()
	fetcher := &stubFetcher{
		items: map[string][]domain.Item{
			"http://a": {
				item("1", "Data breach at utility", "attackers broke in", now),
				item("2", "breach follow-up", "details of the breach", now),
				item("3", "Sunny weather", "no incidents", now),
			},
		},
	}
	agg := NewAggregator(fetcher, map[string]string{"wire": "http://a"}, nil, tagger.New(), 2, nil)

	results, err := agg.SearchAll(context.Background(), domain.Query{Keywords: []string{"breach"}}, 10, false)
	if err != nil {
		t.Fatalf("SearchAll error: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected exactly the 2 matching items, got %d", len(results))
	}
	for _, r := range results {
		if len(r.MatchedKeywords) != 1 || r.MatchedKeywords[0] != "breach" {
			t.Fatalf("unexpected matched keywords: %v", r.MatchedKeywords)
		}
		if r.RelevanceScore < 0 || r.RelevanceScore > 100 {
			t.Fatalf("score out of range: %d", r.RelevanceScore)
		}
	}
}

func TestLatestSortsByPublishTime(t *testing.T) {
	t.Parallel()

	base := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	fetcher := &stubFetcher{
		items: map[string][]domain.Item{
			"http://a": {item("old", "old", "", base), item("new", "new", "", base.Add(48 * time.Hour))},
			"http://b": {item("mid", "mid", "", base.Add(24 * time.Hour))},
		},
	}
	agg := NewAggregator(fetcher, map[string]string{"a": "http://a", "b": "http://b"}, nil, tagger.New(), 2, nil)

	items := agg.Latest(context.Background(), false)
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if items[0].ID != "new" || items[1].ID != "mid" || items[2].ID != "old" {
		t.Fatalf("items not sorted most recent first: %s %s %s", items[0].ID, items[1].ID, items[2].ID)
	}
}
