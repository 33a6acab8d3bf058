package feeds

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"BlackGlass/internal/domain"
	"BlackGlass/internal/ports"
	"BlackGlass/internal/relevance"
)

const (
	defaultMaxParallel = 5
	latestLimit        = 50

	alertBaseConfidence = 70
)

// itemFetcher is the fetch surface the aggregator drives (interface for
// testing, real implementation is *Fetcher).
type itemFetcher interface {
	Fetch(ctx context.Context, sourceName, url string, useCache bool) ([]domain.Item, error)
}

// Aggregator fans out fetches across all configured feed and alert sources,
// merges the results best-effort, and tags every item. A single source
// failing never prevents the others from being returned.
type Aggregator struct {
	fetcher     itemFetcher
	feeds       map[string]string
	alerts      map[string]string
	tagger      ports.Tagger
	maxParallel int
	logger      *slog.Logger
}

// NewAggregator wires the fetcher with the configured source maps.
func NewAggregator(fetcher itemFetcher, feeds, alerts map[string]string, tagger ports.Tagger, maxParallel int, logger *slog.Logger) *Aggregator {
	if maxParallel <= 0 {
		maxParallel = defaultMaxParallel
	}
	return &Aggregator{
		fetcher:     fetcher,
		feeds:       feeds,
		alerts:      alerts,
		tagger:      tagger,
		maxParallel: maxParallel,
		logger:      logger,
	}
}

// FetchAll fetches every configured feed in parallel and returns results
// keyed by source name. Failed sources contribute whatever the fetcher could
// salvage (stale cache or nothing), never an aggregate failure.
func (a *Aggregator) FetchAll(ctx context.Context, sources map[string]string) map[string][]domain.Item {
	results := make(map[string][]domain.Item, len(sources))
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(a.maxParallel)

	for name, url := range sources {
		name, url := name, url
		g.Go(func() error {
			items, err := a.fetcher.Fetch(ctx, name, url, true)
			if err != nil {
				a.warn("source fetch degraded", "source", name, "error", err)
			}
			for i := range items {
				a.tagItem(&items[i])
			}

			mu.Lock()
			results[name] = items
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// FetchAlerts fetches the configured alert feeds and enriches each item with
// alert-specific metadata: extracted publisher, cleaned title, and a
// confidence score.
func (a *Aggregator) FetchAlerts(ctx context.Context) map[string][]domain.Item {
	results := a.FetchAll(ctx, a.alerts)

	for name, items := range results {
		for i := range items {
			a.enrichAlertItem(&items[i], name)
		}
		results[name] = items
	}

	return results
}

func (a *Aggregator) tagItem(item *domain.Item) {
	if a.tagger == nil {
		return
	}
	combined := item.Title + " " + item.Summary
	item.Tags = domain.Tags{
		Locations:     a.tagger.ExtractLocations(item.Summary),
		Organizations: a.tagger.ExtractOrganizations(combined),
		Categories:    a.tagger.Classify(combined),
		Credibility:   a.tagger.CredibilityOf(item.SourceName),
	}
}

func (a *Aggregator) enrichAlertItem(item *domain.Item, alertName string) {
	item.SourceType = domain.SourceAlert

	meta := &domain.AlertMeta{
		AlertName:   alertName,
		ProcessedAt: time.Now().UTC(),
	}

	// Alert titles routinely carry the publisher as a " - " suffix.
	if strings.Contains(item.Title, " - ") {
		parts := strings.Split(item.Title, " - ")
		meta.Publisher = parts[len(parts)-1]
		meta.OriginalTitle = item.Title
		item.Title = strings.Join(parts[:len(parts)-1], " - ")
	}

	if a.tagger != nil && meta.Publisher != "" {
		item.Tags.Credibility = a.tagger.CredibilityOf(meta.Publisher)
	}

	meta.Confidence = alertConfidence(item, meta, alertName)
	item.Alert = meta
	item.SourceName = "alert_" + alertName
}

// alertConfidence applies the fixed confidence rule: base 70, +15 when the
// alert name appears in the title, +10/+5 for high/medium publisher
// credibility, -5 for thin summaries, clamped to [0,100].
func alertConfidence(item *domain.Item, meta *domain.AlertMeta, alertName string) int {
	score := alertBaseConfidence

	if strings.Contains(strings.ToLower(item.Title), strings.ToLower(alertName)) {
		score += 15
	}

	switch item.Tags.Credibility {
	case domain.CredibilityHigh:
		score += 10
	case domain.CredibilityMedium:
		score += 5
	}

	if len(item.Summary) < 100 {
		score -= 5
	}

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score
}

// SearchAll merges all feeds (and optionally alerts) into one pool, then
// delegates filtering and ranking to the relevance scorer, truncated to the
// caller's limit.
func (a *Aggregator) SearchAll(ctx context.Context, query domain.Query, limit int, includeAlerts bool) ([]domain.ScoredItem, error) {
	pool := a.collect(ctx, includeAlerts)
	return relevance.Rank(pool, query, limit, time.Now()), nil
}

// Latest returns the 50 most recently published items across all sources.
func (a *Aggregator) Latest(ctx context.Context, includeAlerts bool) []domain.Item {
	pool := a.collect(ctx, includeAlerts)

	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].PublishedAt.After(pool[j].PublishedAt)
	})

	if len(pool) > latestLimit {
		pool = pool[:latestLimit]
	}
	return pool
}

func (a *Aggregator) collect(ctx context.Context, includeAlerts bool) []domain.Item {
	var pool []domain.Item
	for _, items := range a.FetchAll(ctx, a.feeds) {
		pool = append(pool, items...)
	}
	if includeAlerts {
		for _, items := range a.FetchAlerts(ctx) {
			pool = append(pool, items...)
		}
	}
	return pool
}

func (a *Aggregator) warn(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Warn(msg, args...)
	}
}
