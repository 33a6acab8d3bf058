package domain

import "time"

// ReportStatus enumerates the report state machine. Transitions only along
// QUEUED -> PROCESSING -> {COMPLETED, FAILED}; the terminal states absorb.
type ReportStatus string

const (
	ReportQueued     ReportStatus = "queued"
	ReportProcessing ReportStatus = "processing"
	ReportCompleted  ReportStatus = "completed"
	ReportFailed     ReportStatus = "failed"
)

// ThreatLevel is the aggregate assessment attached to a finished report.
type ThreatLevel string

const (
	ThreatLow      ThreatLevel = "LOW"
	ThreatMedium   ThreatLevel = "MEDIUM"
	ThreatHigh     ThreatLevel = "HIGH"
	ThreatCritical ThreatLevel = "CRITICAL"
)

// CategoryAssessment summarizes one intelligence category inside a report.
type CategoryAssessment struct {
	Count       int          `json:"count"`
	TopArticles []ScoredItem `json:"top_articles"`
}

// ReportSummary is the header block of a finished report document.
type ReportSummary struct {
	Keywords                []string   `json:"keywords"`
	LocationFocus           string     `json:"location_focus,omitempty"`
	AssetClass              AssetClass `json:"asset_class"`
	TotalSources            int        `json:"total_sources"`
	HighCredibilitySources  int        `json:"high_credibility_sources"`
	MediumCredibilitySource int        `json:"medium_credibility_sources"`
	IntelligenceCategories  []string   `json:"intelligence_categories"`
	IdentifiedLocations     []string   `json:"identified_locations"`
	IdentifiedOrganizations []string   `json:"identified_organizations"`
}

// ThreatAssessment groups the overall level with per-category breakdowns.
type ThreatAssessment struct {
	OverallThreatLevel ThreatLevel                   `json:"overall_threat_level"`
	Categories         map[string]CategoryAssessment `json:"categories"`
}

// SourceGroups buckets scored items by publisher credibility tier.
type SourceGroups struct {
	HighCredibility     []ScoredItem `json:"high_credibility"`
	MediumCredibility   []ScoredItem `json:"medium_credibility"`
	StandardCredibility []ScoredItem `json:"standard_credibility"`
}

// ReportDocument is the structured result of a completed report job.
// Serialization to a presentation format happens outside the core.
type ReportDocument struct {
	Summary          ReportSummary    `json:"summary"`
	ThreatAssessment ThreatAssessment `json:"threat_assessment"`
	Sources          SourceGroups     `json:"sources"`
	GeneratedAt      time.Time        `json:"generated_at"`
}

// Report is the stateful record tracking one generation job. Mutated only by
// the single job goroutine driving it; read concurrently by status pollers
// through snapshot copies.
type Report struct {
	ID                   string          `json:"id"`
	Status               ReportStatus    `json:"status"`
	Query                Query           `json:"-"`
	Keywords             []string        `json:"keywords"`
	Location             string          `json:"location,omitempty"`
	AssetClass           AssetClass      `json:"asset_class"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
	CompletionPercentage int             `json:"completion_percentage"`
	EstimatedCompletion  *time.Time      `json:"estimated_completion_time,omitempty"`
	SourcesProcessed     []string        `json:"sources_processed"`
	Document             *ReportDocument `json:"-"`
	OutputLocation       string          `json:"output_location,omitempty"`
	FailureReason        string          `json:"failure_reason,omitempty"`
}
