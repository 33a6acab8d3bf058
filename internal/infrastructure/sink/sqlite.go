package sink

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"BlackGlass/internal/domain"
	"BlackGlass/internal/ports"
)

// SQLite archives report documents in a local sqlite database, one row per
// report. The location handed back to the engine is a sqlite: URI the
// transport layer resolves through Load.
type SQLite struct {
	db *sql.DB
}

var _ ports.Sink = (*SQLite)(nil)

// OpenSQLite opens (creating if needed) the archive database at path.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	schema := `CREATE TABLE IF NOT EXISTS reports (
		report_id TEXT PRIMARY KEY,
		document TEXT NOT NULL,
		threat_level TEXT NOT NULL,
		generated_at TIMESTAMP NOT NULL,
		archived_at TIMESTAMP NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Persist upserts the serialized document keyed by report ID.
func (s *SQLite) Persist(ctx context.Context, reportID string, doc *domain.ReportDocument) (string, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}

	query, args, err := sq.Insert("reports").
		Columns("report_id", "document", "threat_level", "generated_at", "archived_at").
		Values(reportID, string(data), string(doc.ThreatAssessment.OverallThreatLevel), doc.GeneratedAt, time.Now().UTC()).
		Suffix("ON CONFLICT (report_id) DO UPDATE SET document = excluded.document, archived_at = excluded.archived_at").
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build insert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return "", fmt.Errorf("insert report: %w", err)
	}

	return "sqlite:" + reportID, nil
}

// Load retrieves the serialized document for a report ID.
func (s *SQLite) Load(ctx context.Context, reportID string) ([]byte, error) {
	query, args, err := sq.Select("document").
		From("reports").
		Where(sq.Eq{"report_id": reportID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var document string
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&document); err != nil {
		return nil, fmt.Errorf("load report %s: %w", reportID, err)
	}
	return []byte(document), nil
}

// Read implements the transport adapter's document source over the archive.
func (s *SQLite) Read(ctx context.Context, reportID, _ string) ([]byte, error) {
	return s.Load(ctx, reportID)
}

// Close releases the database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}
