package domain

import "time"

// SourceType distinguishes regular feeds from curated alert feeds.
type SourceType string

const (
	SourceFeed  SourceType = "feed"
	SourceAlert SourceType = "alert"
)

// CredibilityTier buckets a publisher for analysis purposes.
type CredibilityTier string

const (
	CredibilityHigh     CredibilityTier = "high"
	CredibilityMedium   CredibilityTier = "medium"
	CredibilityStandard CredibilityTier = "standard"
)

// Tags carries classifier output attached to an item during aggregation.
type Tags struct {
	Locations     []string        `json:"locations,omitempty"`
	Organizations []string        `json:"organizations,omitempty"`
	Categories    []string        `json:"categories,omitempty"`
	Credibility   CredibilityTier `json:"credibility,omitempty"`
}

// AlertMeta holds alert-feed specific enrichment.
type AlertMeta struct {
	AlertName     string    `json:"alert_name"`
	Publisher     string    `json:"publisher,omitempty"`
	OriginalTitle string    `json:"original_title,omitempty"`
	Confidence    int       `json:"confidence"`
	ProcessedAt   time.Time `json:"processed_at"`
}

// Item is one normalized intelligence unit produced from a feed or alert
// entry. Immutable once the aggregator hands it out.
type Item struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Summary     string     `json:"summary"`
	URL         string     `json:"url"`
	PublishedAt time.Time  `json:"published_at"`
	SourceName  string     `json:"source_name"`
	FeedURL     string     `json:"feed_url"`
	SourceType  SourceType `json:"source_type"`
	Tags        Tags       `json:"tags"`
	Alert       *AlertMeta `json:"alert,omitempty"`
}

// ScoredItem is an Item plus query-specific scoring fields. Scoring copies
// the item rather than mutating it so cached items never carry scores.
type ScoredItem struct {
	Item
	MatchedKeywords []string `json:"matched_keywords"`
	LocationMatched bool     `json:"location_matched"`
	RelevanceScore  int      `json:"relevance_score"`
}

// AssetClass is a coarse subject-type hint used to expand query keywords.
type AssetClass string

const (
	AssetPerson         AssetClass = "person"
	AssetOrganization   AssetClass = "organization"
	AssetInfrastructure AssetClass = "infrastructure"
	AssetDigital        AssetClass = "digital_asset"
	AssetPhysical       AssetClass = "physical_asset"
	AssetAny            AssetClass = "any"
)

// Query describes one relevance search. Constructed once per request and
// never modified afterwards.
type Query struct {
	Keywords   []string
	Location   string
	AssetClass AssetClass
}
