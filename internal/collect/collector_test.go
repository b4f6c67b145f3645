package collect

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/lucsmac/lighthouse-audit-dashboard/internal/config"
	"github.com/lucsmac/lighthouse-audit-dashboard/internal/model"
)

// stubResponse wraps a minimal Lighthouse result the way the PageSpeed
// API does.
const stubResponse = `{
	"lighthouseResult": {
		"categories": {
			"performance": {"score": 0.5, "auditRefs": [{"id": "render-blocking-resources"}]},
			"seo": {"score": 0.8}
		},
		"audits": {
			"largest-contentful-paint": {"score": 0.4, "numericValue": 3100},
			"render-blocking-resources": {"score": 0.2, "title": "Eliminate render-blocking resources", "description": "Blocking."}
		}
	}
}`

// newTestCollector points a Collector at a stub server with no retries
// and no pacing delay.
func newTestCollector(t *testing.T, handler http.Handler) *Collector {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.NewConfig()
	cfg.APIEndpoint = server.URL
	cfg.APIKey = "test-key"
	cfg.RequestDelay = 0
	cfg.Concurrency = 2
	cfg.Timeout = 5 * time.Second

	client := retryablehttp.NewClient()
	client.RetryMax = 0
	client.Logger = nil
	client.HTTPClient.Timeout = cfg.Timeout

	return New(cfg, WithHTTPClient(client))
}

func TestCollectorRun(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "test-key" {
			http.Error(w, "missing key", http.StatusForbidden)
			return
		}
		if r.URL.Query().Get("url") == "https://broken.example.com" {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(stubResponse))
	})

	collector := newTestCollector(t, handler)
	sites := []model.Site{
		{ID: "a", Name: "Alpha", Domain: "alpha.example.com", Tags: []string{"fashion"}},
		{ID: "b", Name: "Broken", Domain: "broken.example.com"},
		{ID: "c", Name: "Gamma", Domain: "gamma.example.com"},
	}

	results, reg, err := collector.Run(context.Background(), sites)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if len(results) != 3 {
		t.Fatalf("results = %d, want 3", len(results))
	}

	// Input order preserved.
	for i, site := range sites {
		if results[i].ID != site.ID {
			t.Errorf("results[%d].ID = %s, want %s", i, results[i].ID, site.ID)
		}
	}

	if results[0].Error {
		t.Error("alpha should succeed")
	}
	if results[0].Scores == nil || *results[0].Scores.Performance != 50 {
		t.Errorf("alpha performance = %v, want 50", results[0].Scores)
	}
	if !results[0].HasIssue("render-blocking-resources") {
		t.Error("alpha should carry the extracted issue")
	}

	// The failing site becomes an errored record, not a batch failure.
	if !results[1].Error {
		t.Error("broken site must be marked errored")
	}
	if results[1].Scores != nil {
		t.Error("errored site must have nil scores")
	}

	if _, ok := reg.Get("render-blocking-resources"); !ok {
		t.Error("merged registry missing extracted definition")
	}
}

func TestCollectorRunPartialOnCancel(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	var served int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		served++
		if served > 1 {
			<-release // block every request after the first
		}
		_, _ = w.Write([]byte(stubResponse))
	})

	server := httptest.NewServer(handler)
	t.Cleanup(func() {
		close(release)
		server.Close()
	})

	cfg := config.NewConfig()
	cfg.APIEndpoint = server.URL
	cfg.APIKey = "test-key"
	cfg.RequestDelay = 0
	cfg.Concurrency = 1
	cfg.Timeout = 5 * time.Second

	client := retryablehttp.NewClient()
	client.RetryMax = 0
	client.Logger = nil

	collector := New(cfg, WithHTTPClient(client))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	sites := []model.Site{
		{ID: "a", Domain: "a.example.com"},
		{ID: "b", Domain: "b.example.com"},
		{ID: "c", Domain: "c.example.com"},
	}

	results, _, err := collector.Run(ctx, sites)

	if err == nil {
		t.Error("expected a context error after cancellation")
	}
	// The completed prefix is still usable by the aggregation pipeline.
	if len(results) == len(sites) {
		t.Error("expected fewer results than sites after cancellation")
	}
	for _, r := range results {
		if r.ID == "" {
			t.Error("returned results must be fully populated")
		}
	}
}

func TestCollectorBadPayloads(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{name: "missing lighthouseResult", body: `{"error": {"message": "quota"}}`},
		{name: "unusable lighthouseResult", body: `{"lighthouseResult": {"audits": {}}}`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			collector := newTestCollector(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))

			results, _, err := collector.Run(context.Background(), []model.Site{{ID: "a", Domain: "a.example.com"}})
			if err != nil {
				t.Fatalf("Run() error: %v", err)
			}
			if len(results) != 1 || !results[0].Error {
				t.Errorf("expected one errored result, got %+v", results)
			}
		})
	}
}

func TestNormalizeURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{in: "example.com", want: "https://example.com"},
		{in: "  example.com ", want: "https://example.com"},
		{in: "http://example.com", want: "http://example.com"},
		{in: "https://example.com/path", want: "https://example.com/path"},
	}

	for _, tt := range tests {
		if got := NormalizeURL(tt.in); got != tt.want {
			t.Errorf("NormalizeURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
