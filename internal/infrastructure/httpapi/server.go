// Package httpapi is the thin transport adapter: it parses requests, calls
// into the core pipeline, and serializes results to JSON. No aggregation or
// report logic lives here.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"BlackGlass/internal/domain"
	"BlackGlass/internal/relevance"
	"BlackGlass/internal/report"
)

const defaultLimit = 200

// Aggregation is the feed surface the API exposes.
type Aggregation interface {
	SearchAll(ctx context.Context, query domain.Query, limit int, includeAlerts bool) ([]domain.ScoredItem, error)
	Latest(ctx context.Context, includeAlerts bool) []domain.Item
}

// Reports is the report-engine surface the API exposes.
type Reports interface {
	StartReport(keywords []string, location string, class domain.AssetClass) (string, error)
	GetStatus(id string) (domain.Report, error)
	GetDownloadLocation(id string) (string, error)
}

// DocumentSource resolves a persisted report location to its raw bytes.
type DocumentSource interface {
	Read(ctx context.Context, reportID, location string) ([]byte, error)
}

// Server wires the gin router over the core components.
type Server struct {
	aggregation Aggregation
	reports     Reports
	documents   DocumentSource
	logger      *slog.Logger
}

// New builds the transport adapter.
func New(aggregation Aggregation, reports Reports, documents DocumentSource, logger *slog.Logger) *Server {
	return &Server{
		aggregation: aggregation,
		reports:     reports,
		documents:   documents,
		logger:      logger,
	}
}

// Router assembles the route table.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	api := router.Group("/api")
	{
		api.GET("/news/rss", s.latestNews)
		api.POST("/rss/search", s.searchFeeds)
		api.POST("/blackglass/generate-report", s.generateReport)
		api.GET("/blackglass/report/:id", s.reportStatus)
		api.GET("/blackglass/download/:id", s.downloadReport)
	}

	return router
}

// Run serves the API until the listener fails.
func (s *Server) Run(addr string) error {
	if err := s.Router().Run(addr); err != nil {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

type searchRequest struct {
	Keywords      []string `json:"keywords"`
	Location      string   `json:"location"`
	AssetClass    string   `json:"asset_class"`
	Limit         int      `json:"limit"`
	IncludeAlerts *bool    `json:"include_google_alerts"`
}

type reportRequest struct {
	Keywords   []string `json:"keywords"`
	Location   string   `json:"location"`
	AssetClass string   `json:"asset_class"`
}

func (s *Server) latestNews(c *gin.Context) {
	limit := intQuery(c, "limit", defaultLimit)
	includeAlerts := boolQuery(c, "include_google_alerts", true)

	items := s.aggregation.Latest(c.Request.Context(), includeAlerts)
	if len(items) > limit {
		items = items[:limit]
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"count":  len(items),
		"data":   items,
	})
}

func (s *Server) searchFeeds(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "detail": err.Error()})
		return
	}
	if len(req.Keywords) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "detail": "at least one keyword is required"})
		return
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	includeAlerts := true
	if req.IncludeAlerts != nil {
		includeAlerts = *req.IncludeAlerts
	}

	// Tokenize the raw keywords and expand the asset class; the location is
	// passed through separately so it keeps acting as a filter.
	query := relevance.BuildQuery(req.Keywords, req.Location, assetClass(req.AssetClass))

	results, err := s.aggregation.SearchAll(c.Request.Context(), query, limit, includeAlerts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"query": gin.H{
			"keywords":    req.Keywords,
			"location":    req.Location,
			"asset_class": query.AssetClass,
		},
		"count":        len(results),
		"data":         results,
		"generated_at": time.Now().UTC(),
	})
}

func (s *Server) generateReport(c *gin.Context) {
	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "detail": err.Error()})
		return
	}

	id, err := s.reports.StartReport(req.Keywords, req.Location, assetClass(req.AssetClass))
	if err != nil {
		if errors.Is(err, report.ErrNoKeywords) {
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "detail": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "success",
		"message":   "Report generation started",
		"report_id": id,
	})
}

func (s *Server) reportStatus(c *gin.Context) {
	id := c.Param("id")

	r, err := s.reports.GetStatus(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "detail": fmt.Sprintf("report with ID %s not found", id)})
		return
	}

	payload := gin.H{
		"id":                    r.ID,
		"status":                r.Status,
		"completion_percentage": r.CompletionPercentage,
		"created_at":            r.CreatedAt,
		"updated_at":            r.UpdatedAt,
		"sources_processed":     r.SourcesProcessed,
	}
	if r.Status == domain.ReportProcessing && r.EstimatedCompletion != nil {
		payload["estimated_completion_time"] = r.EstimatedCompletion
	}
	if r.Status == domain.ReportCompleted {
		payload["download_url"] = "/api/blackglass/download/" + r.ID
	}
	if r.Status == domain.ReportFailed {
		payload["failure_reason"] = r.FailureReason
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "report": payload})
}

func (s *Server) downloadReport(c *gin.Context) {
	id := c.Param("id")

	location, err := s.reports.GetDownloadLocation(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "detail": fmt.Sprintf("report file for ID %s not found", id)})
		return
	}

	data, err := s.documents.Read(c.Request.Context(), id, location)
	if err != nil {
		s.warn("report document read failed", "report_id", id, "location", location, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "detail": fmt.Sprintf("report file for ID %s not found", id)})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=blackglass_report_%s.json", id))
	c.Data(http.StatusOK, "application/json", data)
}

func assetClass(v string) domain.AssetClass {
	switch domain.AssetClass(v) {
	case domain.AssetPerson, domain.AssetOrganization, domain.AssetInfrastructure,
		domain.AssetDigital, domain.AssetPhysical:
		return domain.AssetClass(v)
	default:
		return domain.AssetAny
	}
}

func intQuery(c *gin.Context, name string, fallback int) int {
	var v int
	if _, err := fmt.Sscanf(c.Query(name), "%d", &v); err != nil || v <= 0 {
		return fallback
	}
	return v
}

func boolQuery(c *gin.Context, name string, fallback bool) bool {
	switch c.Query(name) {
	case "true", "1":
		return true
	case "false", "0":
		return false
	default:
		return fallback
	}
}

func (s *Server) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
