package database

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lucsmac/lighthouse-audit-dashboard/internal/model"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *HistoryDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return db
}

// testReport builds a minimal report generated at the given time.
func testReport(generatedAt time.Time, totalSites int) *model.AggregateReport {
	return &model.AggregateReport{
		Metadata: model.Metadata{
			GeneratedAt:      generatedAt,
			TotalSites:       totalSites,
			SuccessfulAudits: totalSites,
			Version:          model.ReportVersion,
		},
		Summary: model.Summary{
			AvgPerformance: 72.5,
			AvgSEO:         88.0,
			CoreWebVitals:  map[string]model.MetricStat{},
		},
		CommonIssues: model.CommonIssues{
			Critical: []model.ClassifiedIssue{
				{
					IssueDefinition: model.IssueDefinition{ID: "render-blocking-resources", Title: "Eliminate render-blocking resources"},
					Count:           totalSites,
					Percentage:      100,
				},
			},
			Frequent:   []model.ClassifiedIssue{},
			Occasional: []model.ClassifiedIssue{},
		},
		BySite: []model.SiteAuditResult{},
		ByTag:  map[string]model.TagSummary{},
		Tags:   []string{},
	}
}

// TestOpen tests database opening and creation.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		dbPath := filepath.Join(dbDir, "lhaudit.db")
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
	})

	t.Run("CreateIfNotExists=false returns error when database does not exist", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "nonexistent-db")
		opts := Options{
			CreateIfNotExists: false,
			EnableWAL:         true,
		}

		_, err := Open(dbDir, opts)
		if err == nil {
			t.Fatal("expected error when CreateIfNotExists=false and database does not exist")
		}
		if !strings.Contains(err.Error(), "database not found") {
			t.Errorf("expected error to mention missing database, got %q", err.Error())
		}
	})

	t.Run("CreateIfNotExists=false opens existing database", func(t *testing.T) {
		t.Parallel()

		dbDir := t.TempDir()

		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		_ = db.Close()

		db, err = Open(dbDir, Options{CreateIfNotExists: false, EnableWAL: true})
		if err != nil {
			t.Fatalf("failed to reopen existing database: %v", err)
		}
		_ = db.Close()
	})
}

// TestSaveAndGetReport tests report persistence round-trips.
func TestSaveAndGetReport(t *testing.T) {
	t.Parallel()

	t.Run("saves and retrieves by ID", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()

		original := testReport(time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC), 5)
		id, err := db.SaveReport(ctx, original)
		if err != nil {
			t.Fatalf("failed to save report: %v", err)
		}
		if id == 0 {
			t.Error("expected non-zero report ID")
		}

		loaded, err := db.GetReportByID(ctx, id)
		if err != nil {
			t.Fatalf("failed to load report: %v", err)
		}
		if loaded == nil {
			t.Fatal("expected report, got nil")
		}
		if loaded.Metadata.TotalSites != 5 {
			t.Errorf("expected 5 total sites, got %d", loaded.Metadata.TotalSites)
		}
		if len(loaded.CommonIssues.Critical) != 1 {
			t.Errorf("expected 1 critical issue, got %d", len(loaded.CommonIssues.Critical))
		}
	})

	t.Run("returns nil for unknown ID", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)

		report, err := db.GetReportByID(context.Background(), 999)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report != nil {
			t.Error("expected nil for unknown ID")
		}
	})
}

// TestGetLatestReport tests latest-report retrieval ordering.
func TestGetLatestReport(t *testing.T) {
	t.Parallel()

	t.Run("returns most recently generated report", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()

		older := testReport(time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC), 3)
		newer := testReport(time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC), 7)

		if _, err := db.SaveReport(ctx, newer); err != nil {
			t.Fatalf("failed to save report: %v", err)
		}
		if _, err := db.SaveReport(ctx, older); err != nil {
			t.Fatalf("failed to save report: %v", err)
		}

		latest, err := db.GetLatestReport(ctx)
		if err != nil {
			t.Fatalf("failed to get latest report: %v", err)
		}
		if latest == nil {
			t.Fatal("expected report, got nil")
		}
		if latest.Metadata.TotalSites != 7 {
			t.Errorf("expected the newer report (7 sites), got %d sites", latest.Metadata.TotalSites)
		}
	})

	t.Run("returns nil when history is empty", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)

		latest, err := db.GetLatestReport(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if latest != nil {
			t.Error("expected nil for empty history")
		}
	})
}

// TestListReports tests the history listing.
func TestListReports(t *testing.T) {
	t.Parallel()

	t.Run("lists newest first with metadata", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()

		first := testReport(time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC), 3)
		second := testReport(time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC), 7)

		if _, err := db.SaveReport(ctx, first); err != nil {
			t.Fatalf("failed to save report: %v", err)
		}
		if _, err := db.SaveReport(ctx, second); err != nil {
			t.Fatalf("failed to save report: %v", err)
		}

		list, err := db.ListReports(ctx)
		if err != nil {
			t.Fatalf("failed to list reports: %v", err)
		}
		if len(list) != 2 {
			t.Fatalf("expected 2 reports, got %d", len(list))
		}

		if list[0].TotalSites != 7 {
			t.Errorf("expected newest report first, got %d sites", list[0].TotalSites)
		}
		if list[0].AvgPerformance != 72.5 {
			t.Errorf("expected avg performance 72.5, got %v", list[0].AvgPerformance)
		}
		if list[0].IssueSummary["critical"] != 1 {
			t.Errorf("expected 1 critical issue in summary, got %d", list[0].IssueSummary["critical"])
		}
		if list[0].GeneratedAt.IsZero() {
			t.Error("expected parsed generation timestamp")
		}
	})

	t.Run("empty history yields empty list", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)

		list, err := db.ListReports(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(list) != 0 {
			t.Errorf("expected empty list, got %d entries", len(list))
		}
	})
}
