package report

import (
	"errors"
	"sync"
	"time"

	"BlackGlass/internal/domain"
)

var (
	// ErrNotFound is returned for report IDs that were never created.
	ErrNotFound = errors.New("report not found")

	// ErrNotReady is returned when a download is requested for a report
	// that has not completed.
	ErrNotReady = errors.New("report not ready for download")

	// ErrNoKeywords rejects report requests with an empty keyword set.
	ErrNoKeywords = errors.New("at least one keyword is required")
)

// Store is the in-memory report registry. One goroutine (the generation job)
// writes a given report; any number of status pollers read it. All access
// goes through the store's lock and reads return snapshot copies, so a
// poller can never observe a torn record.
type Store struct {
	mu      sync.RWMutex
	reports map[string]*domain.Report
	done    map[string]chan struct{}
}

// NewStore builds an empty registry.
func NewStore() *Store {
	return &Store{
		reports: make(map[string]*domain.Report),
		done:    make(map[string]chan struct{}),
	}
}

// Create registers a new report record.
func (s *Store) Create(r *domain.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[r.ID] = r
	s.done[r.ID] = make(chan struct{})
}

// Update applies fn to the stored record under the lock.
func (s *Store) Update(id string, fn func(*domain.Report)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.reports[id]; ok {
		fn(r)
		r.UpdatedAt = time.Now().UTC()
	}
}

// Get returns a snapshot copy of a report.
func (s *Store) Get(id string) (domain.Report, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.reports[id]
	if !ok {
		return domain.Report{}, false
	}
	return snapshot(r), true
}

// markDone closes the report's completion channel. Called exactly once by
// the generation job when it reaches a terminal state.
func (s *Store) markDone(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ch, ok := s.done[id]; ok {
		select {
		case <-ch:
		default:
			close(ch)
		}
	}
}

// Done returns a channel closed when the report reaches a terminal state.
// Lets tests and shutdown paths await job completion deterministically.
func (s *Store) Done(id string) (<-chan struct{}, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ch, ok := s.done[id]
	return ch, ok
}

func snapshot(r *domain.Report) domain.Report {
	out := *r
	out.Keywords = append([]string(nil), r.Keywords...)
	out.SourcesProcessed = append([]string(nil), r.SourcesProcessed...)
	if r.EstimatedCompletion != nil {
		t := *r.EstimatedCompletion
		out.EstimatedCompletion = &t
	}
	return out
}
