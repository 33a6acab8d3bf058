// Package report owns the asynchronous threat-report lifecycle: a tracked
// state machine per report, driven by one background job from QUEUED through
// PROCESSING to COMPLETED or FAILED.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"BlackGlass/internal/domain"
	"BlackGlass/internal/ports"
	"BlackGlass/internal/relevance"
)

const searchLimit = 100

// Engine orchestrates aggregation and scoring into report-generation jobs.
// Jobs run independently of each other; once started, a job runs to a
// terminal state and is never retried.
type Engine struct {
	searcher ports.Searcher
	sink     ports.Sink
	store    *Store
	logger   *slog.Logger
	newID    func() string
}

// NewEngine wires the aggregation surface and persistence sink to a report
// registry.
func NewEngine(searcher ports.Searcher, sink ports.Sink, store *Store, logger *slog.Logger) *Engine {
	return &Engine{
		searcher: searcher,
		sink:     sink,
		store:    store,
		logger:   logger,
		newID:    func() string { return uuid.NewString() },
	}
}

// StartReport validates the query, allocates a QUEUED report record, and
// schedules its generation job. Returns the report ID without blocking on
// generation. This is the only creation path for a report.
func (e *Engine) StartReport(keywords []string, location string, class domain.AssetClass) (string, error) {
	if len(keywords) == 0 {
		return "", ErrNoKeywords
	}
	if class == "" {
		class = domain.AssetAny
	}

	id := e.newID()
	now := time.Now().UTC()

	e.store.Create(&domain.Report{
		ID:               id,
		Status:           domain.ReportQueued,
		Keywords:         append([]string(nil), keywords...),
		Location:         location,
		AssetClass:       class,
		CreatedAt:        now,
		UpdatedAt:        now,
		SourcesProcessed: []string{},
	})

	go e.generate(id, keywords, location, class)

	e.info("report queued", "report_id", id, "keywords", keywords)
	return id, nil
}

// GetStatus returns a snapshot of the report record.
func (e *Engine) GetStatus(id string) (domain.Report, error) {
	r, ok := e.store.Get(id)
	if !ok {
		return domain.Report{}, ErrNotFound
	}
	return r, nil
}

// GetDownloadLocation returns the persisted document location. Any
// non-completed report, including a failed one, is rejected as not ready.
func (e *Engine) GetDownloadLocation(id string) (string, error) {
	r, ok := e.store.Get(id)
	if !ok {
		return "", ErrNotFound
	}
	if r.Status != domain.ReportCompleted {
		return "", ErrNotReady
	}
	return r.OutputLocation, nil
}

// Wait blocks until the report reaches a terminal state. Used by tests and
// graceful shutdown; status polling does not need it.
func (e *Engine) Wait(id string) error {
	ch, ok := e.store.Done(id)
	if !ok {
		return ErrNotFound
	}
	<-ch
	return nil
}

// generate drives one report from PROCESSING to a terminal state. It is the
// sole writer for its report record. Any stage error, including a panic,
// lands in FAILED with the reason captured; there is no automatic retry.
func (e *Engine) generate(id string, keywords []string, location string, class domain.AssetClass) {
	defer e.store.markDone(id)
	defer func() {
		if r := recover(); r != nil {
			e.fail(id, fmt.Errorf("report job panicked: %v", r))
		}
	}()

	ctx := context.Background()

	e.progress(id, 10)

	query := relevance.BuildReportQuery(keywords, location, class)
	e.progressStage(id, 20, "Searching RSS feeds")

	results, err := e.searcher.SearchAll(ctx, query, searchLimit, true)
	if err != nil {
		e.fail(id, fmt.Errorf("search feeds: %w", err))
		return
	}
	e.progressStage(id, 40, "RSS feeds processed")

	e.progressStage(id, 60, "Analyzing collected data")
	doc := buildDocument(results, query, keywords, time.Now().UTC())
	e.progressStage(id, 80, "Data analysis completed")

	e.progressStage(id, 90, "Generating report document")
	outputLocation, err := e.sink.Persist(ctx, id, doc)
	if err != nil {
		e.fail(id, fmt.Errorf("persist report: %w", err))
		return
	}

	e.store.Update(id, func(r *domain.Report) {
		r.Status = domain.ReportCompleted
		r.CompletionPercentage = 100
		r.SourcesProcessed = append(r.SourcesProcessed, "Report generation completed")
		r.Document = doc
		r.OutputLocation = outputLocation
		r.EstimatedCompletion = nil
	})
	e.info("report completed", "report_id", id, "items", len(results), "location", outputLocation)
}

// progress moves the report to PROCESSING at the given percentage.
// Percentages only ever increase while the job is healthy.
func (e *Engine) progress(id string, pct int) {
	e.store.Update(id, func(r *domain.Report) {
		r.Status = domain.ReportProcessing
		if pct > r.CompletionPercentage {
			r.CompletionPercentage = pct
		}
		r.EstimatedCompletion = estimateCompletion(r)
	})
}

func (e *Engine) progressStage(id string, pct int, stage string) {
	e.store.Update(id, func(r *domain.Report) {
		r.Status = domain.ReportProcessing
		if pct > r.CompletionPercentage {
			r.CompletionPercentage = pct
		}
		r.SourcesProcessed = append(r.SourcesProcessed, stage)
		r.EstimatedCompletion = estimateCompletion(r)
	})
}

func (e *Engine) fail(id string, err error) {
	e.store.Update(id, func(r *domain.Report) {
		r.Status = domain.ReportFailed
		r.CompletionPercentage = 0
		r.FailureReason = err.Error()
		r.EstimatedCompletion = nil
	})
	e.warn("report failed", "report_id", id, "error", err)
}

// estimateCompletion extrapolates linearly from elapsed time and current
// percentage. Rough, but good enough for a status poller.
func estimateCompletion(r *domain.Report) *time.Time {
	pct := r.CompletionPercentage
	if pct <= 0 {
		pct = 1
	}
	elapsed := time.Now().UTC().Sub(r.CreatedAt)
	remaining := time.Duration(float64(elapsed) * float64(100-pct) / float64(pct))
	eta := time.Now().UTC().Add(remaining)
	return &eta
}

func (e *Engine) info(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Info(msg, args...)
	}
}

func (e *Engine) warn(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Warn(msg, args...)
	}
}
