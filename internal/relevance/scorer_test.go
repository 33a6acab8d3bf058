package relevance

import (
	"testing"
	"time"

	"BlackGlass/internal/domain"
)

var testNow = time.Date(2025, time.May, 10, 12, 0, 0, 0, time.UTC)

func fixtureItem(title, summary, source string, published time.Time) domain.Item {
	return domain.Item{
		ID:          "fixture",
		Title:       title,
		Summary:     summary,
		SourceName:  source,
		PublishedAt: published,
	}
}

func TestScoreExcludesWithoutKeywordMatch(t *testing.T) {
	t.Parallel()

	item := fixtureItem("Sunny weather", "calm day everywhere", "wire", testNow)
	if _, ok := Score(item, domain.Query{Keywords: []string{"breach"}}, testNow); ok {
		t.Fatal("item without any keyword match must be excluded")
	}
}

func TestScoreKeywordCoverage(t *testing.T) {
	t.Parallel()

	item := fixtureItem("breach of the power grid", "attack confirmed", "wire", testNow)

	scored, ok := Score(item, domain.Query{Keywords: []string{"breach", "grid", "submarine", "cartel"}}, testNow)
	if !ok {
		t.Fatal("expected item to match")
	}
	if len(scored.MatchedKeywords) != 2 {
		t.Fatalf("expected 2 matched keywords, got %v", scored.MatchedKeywords)
	}

	// coverage 2/4 * 0.5 + recency 1.0 * 0.15 = 0.40
	if scored.RelevanceScore != 40 {
		t.Fatalf("expected score 40, got %d", scored.RelevanceScore)
	}
}

func TestLocationActsAsHardFilter(t *testing.T) {
	t.Parallel()

	item := fixtureItem("breach reported", "no geography mentioned", "wire", testNow)
	query := domain.Query{Keywords: []string{"breach"}, Location: "ukraine"}

	if _, ok := Score(item, query, testNow); ok {
		t.Fatal("non-matching location must exclude the item when not redundant with keywords")
	}

	matching := fixtureItem("breach reported in Ukraine", "details pending", "wire", testNow)
	scored, ok := Score(matching, query, testNow)
	if !ok {
		t.Fatal("matching location should pass the filter")
	}
	if !scored.LocationMatched {
		t.Fatal("location match flag should be set")
	}
}

func TestLocationRedundantWithKeywordsBecomesBoost(t *testing.T) {
	t.Parallel()

	// Location is already part of the free-text query, so a missing location
	// in the item text must not exclude it.
	item := fixtureItem("breach reported", "no geography mentioned", "wire", testNow)
	query := domain.Query{Keywords: []string{"breach", "ukraine"}, Location: "ukraine"}

	scored, ok := Score(item, query, testNow)
	if !ok {
		t.Fatal("redundant location must degrade to a boost, not exclude")
	}
	if scored.LocationMatched {
		t.Fatal("location did not actually match the text")
	}
}

func TestScoreSourceCredibilityBoost(t *testing.T) {
	t.Parallel()

	query := domain.Query{Keywords: []string{"breach"}}

	high, _ := Score(fixtureItem("breach", "x", "Reuters World", testNow), query, testNow)
	medium, _ := Score(fixtureItem("breach", "x", "CNN World", testNow), query, testNow)
	standard, _ := Score(fixtureItem("breach", "x", "someblog", testNow), query, testNow)

	if high.RelevanceScore != 80 { // 0.5 + 0.15 + 0.15
		t.Fatalf("expected 80 for high-credibility source, got %d", high.RelevanceScore)
	}
	if medium.RelevanceScore != 75 { // 0.5 + 0.10 + 0.15
		t.Fatalf("expected 75 for medium-credibility source, got %d", medium.RelevanceScore)
	}
	if standard.RelevanceScore != 65 { // 0.5 + 0.15
		t.Fatalf("expected 65 for standard source, got %d", standard.RelevanceScore)
	}
}

func TestScoreRecency(t *testing.T) {
	t.Parallel()

	query := domain.Query{Keywords: []string{"breach"}}

	old, _ := Score(fixtureItem("breach", "x", "wire", testNow.Add(-14*24*time.Hour)), query, testNow)
	if old.RelevanceScore != 50 { // recency clamps at 0
		t.Fatalf("expected 50 for a two-week-old item, got %d", old.RelevanceScore)
	}

	unknown, _ := Score(fixtureItem("breach", "x", "wire", time.Time{}), query, testNow)
	if unknown.RelevanceScore != 58 { // 0.5 + 0.5*0.15 = 0.575, rounded
		t.Fatalf("expected 58 for an unknown publish date, got %d", unknown.RelevanceScore)
	}
}

func TestScoreAlwaysWithinBounds(t *testing.T) {
	t.Parallel()

	item := fixtureItem("breach in Ukraine", "breach breach", "Reuters", testNow)
	query := domain.Query{Keywords: []string{"breach"}, Location: "ukraine"}

	scored, ok := Score(item, query, testNow)
	if !ok {
		t.Fatal("expected match")
	}
	if scored.RelevanceScore < 0 || scored.RelevanceScore > 100 {
		t.Fatalf("score out of [0,100]: %d", scored.RelevanceScore)
	}
}

func TestRankOrdersByScoreDescending(t *testing.T) {
	t.Parallel()

	items := []domain.Item{
		fixtureItem("breach", "x", "someblog", testNow),      // 65
		fixtureItem("breach", "x", "Reuters World", testNow), // 80
		fixtureItem("no match", "x", "wire", testNow),        // excluded
	}

	ranked := Rank(items, domain.Query{Keywords: []string{"breach"}}, 10, testNow)
	if len(ranked) != 2 {
		t.Fatalf("expected 2 ranked items, got %d", len(ranked))
	}
	if ranked[0].RelevanceScore < ranked[1].RelevanceScore {
		t.Fatal("ranking must be descending by score")
	}
}

func TestRankRespectsLimit(t *testing.T) {
	t.Parallel()

	var items []domain.Item
	for i := 0; i < 10; i++ {
		items = append(items, fixtureItem("breach", "x", "wire", testNow))
	}

	ranked := Rank(items, domain.Query{Keywords: []string{"breach"}}, 3, testNow)
	if len(ranked) != 3 {
		t.Fatalf("expected limit of 3, got %d", len(ranked))
	}
}

func TestScoreIgnoresEmptyKeywords(t *testing.T) {
	t.Parallel()

	item := fixtureItem("breach", "x", "wire", testNow)

	scored, ok := Score(item, domain.Query{Keywords: []string{"breach", ""}}, testNow)
	if !ok {
		t.Fatal("expected match")
	}

	// Coverage is 1/1, not 1/2; empty entries do not dilute the denominator.
	if scored.RelevanceScore != 65 {
		t.Fatalf("expected 65, got %d", scored.RelevanceScore)
	}
}

func TestBuildQueryTokenizesMultiWordKeywords(t *testing.T) {
	t.Parallel()

	query := BuildQuery([]string{"Data Breach"}, "", domain.AssetAny)
	if len(query.Keywords) != 2 || query.Keywords[0] != "data" || query.Keywords[1] != "breach" {
		t.Fatalf("expected per-word tokens, got %v", query.Keywords)
	}

	// The words match independently even when the text never contains the
	// contiguous phrase.
	item := fixtureItem("Breach exposes customer data", "details pending", "wire", testNow)
	scored, ok := Score(item, query, testNow)
	if !ok {
		t.Fatal("expected both tokens to match")
	}
	if len(scored.MatchedKeywords) != 2 {
		t.Fatalf("expected 2 matched tokens, got %v", scored.MatchedKeywords)
	}
}

func TestBuildQueryExpandsAssetClass(t *testing.T) {
	t.Parallel()

	query := BuildQuery([]string{"breach"}, "", domain.AssetDigital)

	want := []string{"breach", "server", "database", "cloud", "software", "application", "system"}
	if len(query.Keywords) != len(want) {
		t.Fatalf("expected %v, got %v", want, query.Keywords)
	}
	for i, tok := range want {
		if query.Keywords[i] != tok {
			t.Fatalf("token %d: expected %q, got %q", i, tok, query.Keywords[i])
		}
	}
}

func TestBuildQueryKeepsLocationAsFilter(t *testing.T) {
	t.Parallel()

	item := fixtureItem("breach reported", "no geography mentioned", "wire", testNow)

	direct := BuildQuery([]string{"breach"}, "ukraine", domain.AssetAny)
	if _, ok := Score(item, direct, testNow); ok {
		t.Fatal("direct query must keep the location as a hard filter")
	}

	viaReport := BuildReportQuery([]string{"breach"}, "ukraine", domain.AssetAny)
	if _, ok := Score(item, viaReport, testNow); !ok {
		t.Fatal("report query folds the location into the free text")
	}
}

func TestBuildReportQueryExpansion(t *testing.T) {
	t.Parallel()

	query := BuildReportQuery([]string{"Data Breach"}, "Eastern Europe", domain.AssetDigital)

	wantTokens := []string{"data", "breach", "eastern", "europe", "server", "database", "cloud", "software", "application", "system"}
	if len(query.Keywords) != len(wantTokens) {
		t.Fatalf("expected %d tokens, got %v", len(wantTokens), query.Keywords)
	}
	for i, tok := range wantTokens {
		if query.Keywords[i] != tok {
			t.Fatalf("token %d: expected %q, got %q", i, tok, query.Keywords[i])
		}
	}
	if query.Location != "Eastern Europe" {
		t.Fatalf("location should be preserved, got %q", query.Location)
	}
}

func TestBuildReportQueryAnyAssetClass(t *testing.T) {
	t.Parallel()

	query := BuildReportQuery([]string{"breach"}, "", domain.AssetAny)
	if len(query.Keywords) != 1 || query.Keywords[0] != "breach" {
		t.Fatalf("any asset class must not expand keywords, got %v", query.Keywords)
	}
}
