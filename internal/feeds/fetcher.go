package feeds

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"golang.org/x/time/rate"

	"BlackGlass/internal/domain"
)

const (
	defaultFetchTimeout = 10 * time.Second
	defaultMaxEntries   = 20
)

// Fetcher retrieves and parses one feed source into normalized items,
// consulting the cache before touching the network and falling back to stale
// cached data when the network attempt fails.
type Fetcher struct {
	client     *http.Client
	parser     *gofeed.Parser
	cache      *Cache
	limiter    *rate.Limiter
	maxEntries int
	logger     *slog.Logger
}

// FetcherOptions tunes outbound request behavior.
type FetcherOptions struct {
	Timeout           time.Duration
	RequestsPerMinute int
	MaxEntries        int
}

// NewFetcher wires an HTTP client, feed parser, and cache.
func NewFetcher(cache *Cache, opts FetcherOptions, logger *slog.Logger) *Fetcher {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = defaultFetchTimeout
	}
	maxEntries := opts.MaxEntries
	if maxEntries == 0 {
		maxEntries = defaultMaxEntries
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(opts.RequestsPerMinute)/60.0), opts.RequestsPerMinute)
	}

	return &Fetcher{
		client:     &http.Client{Timeout: timeout},
		parser:     gofeed.NewParser(),
		cache:      cache,
		limiter:    limiter,
		maxEntries: maxEntries,
		logger:     logger,
	}
}

// Fetch returns normalized items for the feed at url. A cache hit within TTL
// short-circuits the network entirely. On a failed refetch the previous
// (stale) entry is returned alongside the error; with no prior entry the
// result is empty. The returned error is diagnostic only: callers always get
// a usable item list.
func (f *Fetcher) Fetch(ctx context.Context, sourceName, url string, useCache bool) ([]domain.Item, error) {
	if useCache && f.cache.IsFresh(url) {
		items, _ := f.cache.Get(url)
		return items, nil
	}

	body, err := f.download(ctx, url)
	if err != nil {
		if stale, ok := f.cache.Get(url); ok {
			f.debug("serving stale cache after fetch failure", "url", url, "error", err)
			return stale, fmt.Errorf("fetch %s: %w", url, err)
		}
		return []domain.Item{}, fmt.Errorf("fetch %s: %w", url, err)
	}

	feed, err := f.parser.ParseString(body)
	if err != nil {
		if stale, ok := f.cache.Get(url); ok {
			f.debug("serving stale cache after parse failure", "url", url, "error", err)
			return stale, fmt.Errorf("parse %s: %w", url, err)
		}
		return []domain.Item{}, fmt.Errorf("parse %s: %w", url, err)
	}

	items := f.normalize(feed, sourceName, url)
	f.cache.Put(url, items)
	return items, nil
}

func (f *Fetcher) download(ctx context.Context, url string) (string, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "BlackGlass/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("feed returned %s", resp.Status)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(raw), nil
}

// normalize converts parsed entries into Items, keeping the 20 (configurable)
// most recently published.
func (f *Fetcher) normalize(feed *gofeed.Feed, sourceName, url string) []domain.Item {
	now := time.Now()

	source := sourceName
	if source == "" {
		source = strings.TrimSpace(feed.Title)
	}
	if source == "" {
		source = url
	}

	entries := make([]*gofeed.Item, len(feed.Items))
	copy(entries, feed.Items)
	sort.SliceStable(entries, func(i, j int) bool {
		return entryTime(entries[i], now).After(entryTime(entries[j], now))
	})
	if len(entries) > f.maxEntries {
		entries = entries[:f.maxEntries]
	}

	items := make([]domain.Item, 0, len(entries))
	for _, entry := range entries {
		id := entry.GUID
		if id == "" {
			id = entry.Link
		}

		title := strings.TrimSpace(entry.Title)
		if title == "" {
			title = "No title"
		}

		summary := entry.Description
		if summary == "" {
			summary = entry.Content
		}

		items = append(items, domain.Item{
			ID:          id,
			Title:       title,
			Summary:     stripHTML(summary),
			URL:         entry.Link,
			PublishedAt: entryTime(entry, now),
			SourceName:  source,
			FeedURL:     url,
			SourceType:  domain.SourceFeed,
		})
	}

	return items
}

// entryTime resolves a publish timestamp, defaulting to fetch time when the
// source omits one.
func entryTime(entry *gofeed.Item, fallback time.Time) time.Time {
	if entry.PublishedParsed != nil {
		return *entry.PublishedParsed
	}
	if entry.UpdatedParsed != nil {
		return *entry.UpdatedParsed
	}
	return fallback
}

// stripHTML reduces a feed summary to plain text. Feed descriptions routinely
// embed markup; scoring and tagging want bare words.
func stripHTML(s string) string {
	if s == "" {
		return ""
	}
	if !strings.Contains(s, "<") {
		return strings.TrimSpace(s)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

func (f *Fetcher) debug(msg string, args ...any) {
	if f.logger != nil {
		f.logger.Debug(msg, args...)
	}
}
