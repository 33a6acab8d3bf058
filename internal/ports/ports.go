package ports

import (
	"context"
	"time"

	"BlackGlass/internal/domain"
)

// Tagger classifies item text. Implementations may return empty sets; the
// pipeline tolerates that. The default is keyword-list based and can be
// replaced by an NLP-backed service without touching the pipeline.
type Tagger interface {
	Classify(text string) []string
	ExtractLocations(text string) []string
	ExtractOrganizations(text string) []string
	CredibilityOf(sourceName string) domain.CredibilityTier
}

// Sink persists a finished report document and returns its location. Called
// exactly once per report, in the final stage of a successful run.
type Sink interface {
	Persist(ctx context.Context, reportID string, doc *domain.ReportDocument) (string, error)
}

// Searcher is the aggregation surface consumed by the report engine.
type Searcher interface {
	SearchAll(ctx context.Context, query domain.Query, limit int, includeAlerts bool) ([]domain.ScoredItem, error)
}

// Scheduler controls recurring background jobs such as cache warming.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
