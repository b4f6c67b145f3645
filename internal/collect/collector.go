package collect

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"

	"github.com/lucsmac/lighthouse-audit-dashboard/internal/audit"
	"github.com/lucsmac/lighthouse-audit-dashboard/internal/config"
	"github.com/lucsmac/lighthouse-audit-dashboard/internal/model"
)

// maxResponseBody caps how much of an API response is read. Lighthouse
// payloads for heavy pages run a few MB; 32MB is far above any legitimate
// response while still bounding memory.
const maxResponseBody = 32 * 1024 * 1024

// ErrNoPayload is returned when the API response carries no
// lighthouseResult object.
var ErrNoPayload = errors.New("response has no lighthouseResult")

// Collector fetches audit payloads from the PageSpeed Insights API and
// normalizes them into SiteAuditResult records.
type Collector struct {
	client      *retryablehttp.Client
	endpoint    string
	apiKey      string
	strategy    string
	categories  []string
	delay       time.Duration
	concurrency int
	logger      *slog.Logger
}

// Option configures a Collector.
type Option func(*Collector)

// WithLogger sets a custom logger for collection progress.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Collector) {
		c.logger = logger
	}
}

// WithHTTPClient replaces the underlying retryable HTTP client.
// Used by tests to point at a stub server with no retries.
func WithHTTPClient(client *retryablehttp.Client) Option {
	return func(c *Collector) {
		c.client = client
	}
}

// New creates a Collector from the run configuration.
func New(cfg *config.Config, opts ...Option) *Collector {
	c := &Collector{
		endpoint:    cfg.APIEndpoint,
		apiKey:      cfg.APIKey,
		strategy:    cfg.Strategy,
		categories:  config.Categories(),
		delay:       cfg.RequestDelay,
		concurrency: cfg.Concurrency,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.concurrency < 1 {
		c.concurrency = 1
	}
	if c.client == nil {
		client := retryablehttp.NewClient()
		client.RetryMax = config.DefaultRetryMax
		client.HTTPClient.Timeout = cfg.Timeout
		client.Logger = nil // request URLs contain the API key
		c.client = client
	}

	return c
}

// siteOutcome carries one worker's result plus its locally built issue
// registry. Registries are merged single-threaded after the batch so the
// shared registry never sees concurrent writes.
type siteOutcome struct {
	result   model.SiteAuditResult
	registry *model.IssueRegistry
}

// Run audits all sites and returns their normalized results together with
// the merged issue registry.
//
// Results keep the input order. When the context is cancelled mid-batch
// only the completed sites are returned, together with the context error;
// the caller can still aggregate the partial corpus. Individual site
// failures are recorded as errored results and do not surface as errors.
func (c *Collector) Run(ctx context.Context, sites []model.Site) ([]model.SiteAuditResult, *model.IssueRegistry, error) {
	c.logger.Info("starting audit collection",
		"total_sites", len(sites),
		"concurrency", c.concurrency,
		"delay", c.delay,
	)

	startTime := time.Now()
	outcomes := make([]*siteOutcome, len(sites))

	// The pacing goroutine feeds one token per delay interval. Workers
	// take a token before each request, which keeps the aggregate request
	// rate at 1/delay regardless of concurrency.
	gate := make(chan struct{})
	gateCtx, stopGate := context.WithCancel(ctx)
	defer stopGate()
	go func() {
		for {
			select {
			case <-gateCtx.Done():
				return
			case gate <- struct{}{}:
			}
			if c.delay > 0 {
				select {
				case <-gateCtx.Done():
					return
				case <-time.After(c.delay):
				}
			}
		}
	}()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for i, site := range sites {
		i, site := i, site
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-gate:
			}

			c.logger.Info("auditing site",
				"domain", site.Domain,
				"index", i+1,
				"total", len(sites),
			)

			reg := model.NewIssueRegistry()
			outcome := &siteOutcome{registry: reg}

			payload, err := c.fetch(ctx, site)
			if err != nil {
				c.logger.Warn("audit failed",
					"domain", site.Domain,
					"error", err,
				)
				outcome.result = model.NewErrorResult(site)
			} else {
				outcome.result = audit.Normalize(site, payload, reg)
			}

			// Slot writes are disjoint per index, no mutex needed.
			outcomes[i] = outcome

			if ctx.Err() != nil {
				return ctx.Err()
			}
			return nil
		})
	}

	err := g.Wait()

	results := make([]model.SiteAuditResult, 0, len(sites))
	merged := model.NewIssueRegistry()
	for _, outcome := range outcomes {
		if outcome == nil {
			continue // not reached before cancellation
		}
		results = append(results, outcome.result)
		merged.Merge(outcome.registry)
	}

	c.logger.Info("audit collection complete",
		"completed", len(results),
		"total_sites", len(sites),
		"elapsed", time.Since(startTime),
	)

	return results, merged, err
}

// fetch requests one site's audit and returns the raw lighthouseResult
// JSON. All HTTP retries happen inside the retryable client.
func (c *Collector) fetch(ctx context.Context, site model.Site) ([]byte, error) {
	query := url.Values{}
	query.Set("url", NormalizeURL(site.Domain))
	query.Set("key", c.apiKey)
	query.Set("strategy", c.strategy)
	for _, category := range c.categories {
		query.Add("category", category)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close on read path

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from audit API", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, err
	}

	payload := gjson.GetBytes(body, "lighthouseResult")
	if !payload.Exists() {
		return nil, ErrNoPayload
	}

	return []byte(payload.Raw), nil
}

// NormalizeURL turns a bare domain into a full URL, defaulting to HTTPS.
func NormalizeURL(domain string) string {
	domain = strings.TrimSpace(domain)
	if strings.HasPrefix(domain, "http://") || strings.HasPrefix(domain, "https://") {
		return domain
	}
	return "https://" + domain
}
