// Package sink provides persistence adapters for finished report documents.
package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"BlackGlass/internal/domain"
	"BlackGlass/internal/ports"
)

// Filesystem writes report documents as indented JSON files under a
// directory, one file per report ID.
type Filesystem struct {
	dir string
}

var _ ports.Sink = (*Filesystem)(nil)

// NewFilesystem builds a sink rooted at dir.
func NewFilesystem(dir string) *Filesystem {
	return &Filesystem{dir: dir}
}

// Persist serializes the document to <dir>/<reportID>.json and returns the
// file path.
func (f *Filesystem) Persist(_ context.Context, reportID string, doc *domain.ReportDocument) (string, error) {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return "", fmt.Errorf("create reports dir: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}

	path := filepath.Join(f.dir, reportID+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}

	return path, nil
}

// Read loads a persisted document back by its location.
func (f *Filesystem) Read(_ context.Context, _ string, location string) ([]byte, error) {
	data, err := os.ReadFile(location)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	return data, nil
}
