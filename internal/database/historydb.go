package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/lucsmac/lighthouse-audit-dashboard/internal/model"
)

// HistoryDB provides SQLite-based storage for generated audit reports.
// Every batch run can persist its aggregate report here, building up a
// history that the compare and filter commands read back.
//
// Design decision: We store the full report as JSON in a single table
// rather than normalizing sites and issues into relational rows. Reports
// are written once and read whole; the JSON column keeps the stored shape
// identical to the file format, so both load paths share one schema.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB at the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, "lhaudit.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating new
	// files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer; a single connection avoids
	// SQLITE_BUSY under concurrent access.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HistoryDB) createTables() error {
	schema := `
	-- Reports store complete aggregate reports as JSON, with the summary
	-- columns denormalized for history listings.
	CREATE TABLE IF NOT EXISTS reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		generated_at DATETIME NOT NULL,
		saved_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		total_sites INTEGER NOT NULL,
		successful_audits INTEGER NOT NULL,
		version TEXT NOT NULL,
		avg_performance REAL NOT NULL,
		avg_seo REAL NOT NULL,
		issue_summary TEXT,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reports_generated_at ON reports(generated_at);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// ReportMetadata contains summary information about a stored report.
// This is used for displaying report history without loading the full report.
type ReportMetadata struct {
	// ID is the unique identifier of the report in the database.
	ID int64

	// GeneratedAt is when the report was generated.
	GeneratedAt time.Time

	// TotalSites is the number of sites in the report's corpus.
	TotalSites int

	// SuccessfulAudits is the number of non-error sites.
	SuccessfulAudits int

	// Version is the report schema version.
	Version string

	// AvgPerformance is the corpus performance average.
	AvgPerformance float64

	// AvgSEO is the corpus SEO average.
	AvgSEO float64

	// IssueSummary contains issue counts per frequency bucket.
	IssueSummary map[string]int
}

// SaveReport persists an aggregate report and returns its database ID.
func (hdb *HistoryDB) SaveReport(ctx context.Context, report *model.AggregateReport) (int64, error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}

	issueSummary := map[string]int{
		model.BucketCritical.String():   len(report.CommonIssues.Critical),
		model.BucketFrequent.String():   len(report.CommonIssues.Frequent),
		model.BucketOccasional.String(): len(report.CommonIssues.Occasional),
	}
	summaryJSON, _ := json.Marshal(issueSummary) //nolint:errcheck,errchkjson // issueSummary is a simple map; Marshal won't fail

	query := `
	INSERT INTO reports (generated_at, total_sites, successful_audits, version, avg_performance, avg_seo, issue_summary, report_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := hdb.db.ExecContext(ctx, query,
		report.Metadata.GeneratedAt.UTC().Format("2006-01-02 15:04:05"),
		report.Metadata.TotalSites,
		report.Metadata.SuccessfulAudits,
		report.Metadata.Version,
		report.Summary.AvgPerformance,
		report.Summary.AvgSEO,
		string(summaryJSON),
		string(reportJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save report: %w", err)
	}

	return result.LastInsertId()
}

// GetLatestReport retrieves the most recently generated report.
// Returns nil without error when the history is empty.
func (hdb *HistoryDB) GetLatestReport(ctx context.Context) (*model.AggregateReport, error) {
	query := `
	SELECT report_json FROM reports
	ORDER BY generated_at DESC, id DESC
	LIMIT 1
	`

	var reportJSON string
	err := hdb.db.QueryRowContext(ctx, query).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	return unmarshalReport(reportJSON)
}

// GetReportByID retrieves a report by its database ID.
// Returns nil without error when no report has that ID.
func (hdb *HistoryDB) GetReportByID(ctx context.Context, id int64) (*model.AggregateReport, error) {
	query := `
	SELECT report_json FROM reports
	WHERE id = ?
	`

	var reportJSON string
	err := hdb.db.QueryRowContext(ctx, query, id).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	return unmarshalReport(reportJSON)
}

// ListReports retrieves metadata for all stored reports, newest first.
// This is more efficient than loading full reports when only the history
// listing is needed.
func (hdb *HistoryDB) ListReports(ctx context.Context) ([]ReportMetadata, error) {
	query := `
	SELECT id, generated_at, total_sites, successful_audits, version, avg_performance, avg_seo, issue_summary
	FROM reports
	ORDER BY generated_at DESC, id DESC
	`

	rows, err := hdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var results []ReportMetadata
	for rows.Next() {
		var meta ReportMetadata
		var generatedAt string
		var summaryJSON sql.NullString

		if err := rows.Scan(
			&meta.ID,
			&generatedAt,
			&meta.TotalSites,
			&meta.SuccessfulAudits,
			&meta.Version,
			&meta.AvgPerformance,
			&meta.AvgSEO,
			&summaryJSON,
		); err != nil {
			return nil, fmt.Errorf("failed to scan report metadata: %w", err)
		}

		meta.GeneratedAt = parseTimestamp(generatedAt)

		if summaryJSON.Valid && summaryJSON.String != "" {
			if err := json.Unmarshal([]byte(summaryJSON.String), &meta.IssueSummary); err != nil {
				meta.IssueSummary = make(map[string]int)
			}
		} else {
			meta.IssueSummary = make(map[string]int)
		}

		results = append(results, meta)
	}

	return results, rows.Err()
}

// unmarshalReport decodes a stored report JSON string.
func unmarshalReport(reportJSON string) (*model.AggregateReport, error) {
	var report model.AggregateReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &report, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
