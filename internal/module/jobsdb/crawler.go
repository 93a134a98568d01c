package jobsdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/project-tktt/dream-jobs/internal/common/cleaner"
	"github.com/project-tktt/dream-jobs/internal/common/fetcher"
	"github.com/project-tktt/dream-jobs/internal/domain"
	"github.com/project-tktt/dream-jobs/internal/monitoring"
	"go.uber.org/zap"
)

const (
	BaseURL = "https://hk.jobsdb.com"
	// DefaultMaxListings bounds the detail pages fetched per search
	DefaultMaxListings = 3
)

var errNoJobPage = errors.New("listing has no job page")

// Crawler runs the two-phase JobsDB search: one results page, then one
// detail page per listing, strictly in sequence
type Crawler struct {
	fetcher fetcher.Fetcher
	cleaner *cleaner.Cleaner
	config  Config
	metrics *monitoring.Metrics
	logger  *zap.Logger
}

// Config holds JobsDB-specific configuration
type Config struct {
	BaseURL        string
	MaxListings    int
	ListingTimeout time.Duration
	DetailTimeout  time.Duration
}

// NewCrawler creates a new JobsDB crawler. metrics may be nil.
func NewCrawler(f fetcher.Fetcher, cfg Config, logger *zap.Logger, metrics *monitoring.Metrics) *Crawler {
	if cfg.BaseURL == "" {
		cfg.BaseURL = BaseURL
	}
	if cfg.MaxListings <= 0 {
		cfg.MaxListings = DefaultMaxListings
	}
	if cfg.ListingTimeout <= 0 {
		cfg.ListingTimeout = 15 * time.Second
	}
	if cfg.DetailTimeout <= 0 {
		cfg.DetailTimeout = 8 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Crawler{
		fetcher: f,
		cleaner: cleaner.NewCleaner(),
		config:  cfg,
		metrics: metrics,
		logger:  logger.With(zap.String("source", string(domain.SourceJobsDB))),
	}
}

// Enrich returns between 1 and MaxListings enriched jobs for filters
func (c *Crawler) Enrich(ctx context.Context, filters domain.SearchFilters) []domain.EnrichedJob {
	return c.Search(ctx, filters).Jobs
}

// Search runs the pipeline and reports how the jobs were produced
func (c *Crawler) Search(ctx context.Context, filters domain.SearchFilters) domain.SearchResult {
	stage := c.fetchListings(ctx, filters)
	if fallback, ok := resolveListing(filters, stage); !ok {
		c.logger.Warn("using fallback listing",
			zap.String("url", stage.searchURL),
			zap.String("reason", fallback.Reason))
		c.metrics.IncSearch(string(fallback.Outcome))
		return fallback
	}

	c.logger.Info("fetching job details", zap.Int("listings", len(stage.summaries)))

	jobs := make([]domain.EnrichedJob, 0, len(stage.summaries))
	failures := 0
	for _, summary := range stage.summaries {
		detail := c.fetchDetail(ctx, summary)
		if detail.err != nil {
			failures++
			c.metrics.IncDetailFailure()
			c.logger.Warn("job detail failed",
				zap.String("url", summary.Link),
				zap.Error(detail.err))
		}
		jobs = append(jobs, resolveDetail(detail))
	}

	result := resolveOutcome(stage.searchURL, jobs, failures)
	c.metrics.IncSearch(string(result.Outcome))
	c.logger.Info("search complete",
		zap.Int("jobs", len(result.Jobs)),
		zap.String("outcome", string(result.Outcome)))
	return result
}

// Source returns the source identifier
func (c *Crawler) Source() domain.JobSource {
	return domain.SourceJobsDB
}

func (c *Crawler) fetchListings(ctx context.Context, filters domain.SearchFilters) (stage listingStage) {
	stage.searchURL = BuildSearchURL(c.config.BaseURL, filters)
	defer func() {
		if r := recover(); r != nil {
			stage.summaries = nil
			stage.err = fmt.Errorf("extract listings: panic: %v", r)
		}
	}()

	c.logger.Info("scraping search results", zap.String("url", stage.searchURL))

	html, err := c.fetcher.Fetch(ctx, stage.searchURL, c.config.ListingTimeout)
	c.metrics.IncFetch("listing", err)
	if err != nil {
		stage.err = fmt.Errorf("fetch listing page: %w", err)
		return stage
	}

	stage.summaries = ExtractListings(html, filters.Location, c.config.BaseURL, c.config.MaxListings)
	return stage
}

// fetchDetail loads one job page. A panic while parsing counts as a
// failure of this listing only.
func (c *Crawler) fetchDetail(ctx context.Context, summary domain.JobSummary) (stage detailStage) {
	stage.summary = summary
	defer func() {
		if r := recover(); r != nil {
			stage.err = fmt.Errorf("extract detail: panic: %v", r)
		}
	}()

	if !isFetchable(summary.Link) {
		stage.err = errNoJobPage
		return stage
	}

	html, err := c.fetcher.Fetch(ctx, summary.Link, c.config.DetailTimeout)
	c.metrics.IncFetch("detail", err)
	if err != nil {
		stage.err = fmt.Errorf("fetch detail page: %w", err)
		return stage
	}

	stage.detail = ExtractDetail(html, summary.Link, c.cleaner)
	return stage
}
