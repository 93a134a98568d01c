package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/project-tktt/dream-jobs/internal/advisor"
	"github.com/project-tktt/dream-jobs/internal/assistant"
	"github.com/project-tktt/dream-jobs/internal/common/fetcher"
	"github.com/project-tktt/dream-jobs/internal/config"
	"github.com/project-tktt/dream-jobs/internal/domain"
	"github.com/project-tktt/dream-jobs/internal/module/jobsdb"
	"github.com/project-tktt/dream-jobs/internal/queue"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	var (
		location = flag.String("location", "", "override the location filter")
		industry = flag.String("industry", "", "override the industry filter")
		salary   = flag.String("salary", "", "override the salary range filter, e.g. 20000-30000")
		raw      = flag.Bool("raw", false, "skip the analyzer and advisor, search the query as keyword")
		enqueue  = flag.Bool("enqueue", false, "submit to the worker queue and wait for the answer")
		wait     = flag.Duration("wait", 2*time.Minute, "how long -enqueue waits for the answer")
	)
	flag.Parse()

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	query := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if query == "" {
		fmt.Fprintln(os.Stderr, "usage: search [flags] <what you are looking for>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	req := domain.SearchRequest{ID: uuid.NewString(), Query: query, SubmittedAt: time.Now().UTC()}

	if *enqueue {
		resp, err := submit(ctx, cfg, req, *wait)
		if err != nil {
			logger.Fatal("queued search failed", zap.Error(err))
		}
		printJSON(resp)
		return
	}

	f := fetcher.New(fetcher.Config{
		UserAgent:    cfg.Crawler.UserAgent,
		Referer:      cfg.Crawler.BaseURL + "/",
		ProxyURL:     cfg.Crawler.ProxyURL,
		RequestDelay: cfg.Crawler.RequestDelay,
	})
	crawler := jobsdb.NewCrawler(f, jobsdb.Config{
		BaseURL:        cfg.Crawler.BaseURL,
		MaxListings:    cfg.Crawler.MaxListings,
		ListingTimeout: cfg.Crawler.ListingTimeout,
		DetailTimeout:  cfg.Crawler.DetailTimeout,
	}, logger, nil)

	overrides := domain.SearchFilters{Location: *location, Industry: *industry, SalaryRange: *salary}

	if *raw {
		filters := overrides
		filters.Keyword = query
		printJSON(crawler.Search(ctx, filters))
		return
	}

	model, err := advisor.NewOpenAIModel(cfg.AI)
	if err != nil {
		logger.Warn("AI model unavailable, using basic filters and static advice", zap.Error(err))
	}

	a := assistant.New(
		overrideAnalyzer{advisor.NewAnalyzer(model, logger), overrides},
		crawler,
		advisor.NewAdvisor(model, logger),
		logger,
	)
	printJSON(a.Handle(ctx, req))
}

// overrideAnalyzer lets command-line filters win over the analyzed ones
type overrideAnalyzer struct {
	inner     assistant.Analyzer
	overrides domain.SearchFilters
}

func (o overrideAnalyzer) Analyze(ctx context.Context, query string) domain.SearchFilters {
	f := o.inner.Analyze(ctx, query)
	if o.overrides.Location != "" {
		f.Location = o.overrides.Location
	}
	if o.overrides.Industry != "" {
		f.Industry = o.overrides.Industry
	}
	if o.overrides.SalaryRange != "" {
		f.SalaryRange = o.overrides.SalaryRange
	}
	return f
}

// submit hands the request to a running worker and waits on the
// request's own response list
func submit(ctx context.Context, cfg *config.Config, req domain.SearchRequest, wait time.Duration) (*domain.SearchResponse, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	pub := queue.NewPublisher(rdb, cfg.Redis.RequestQueue, cfg.Redis.ResponseQueue, cfg.Redis.ResponseTTL)
	if err := pub.Submit(ctx, &req); err != nil {
		return nil, err
	}

	resp, err := queue.Receive(ctx, rdb, cfg.Redis.ResponseQueue, req.ID, wait)
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("no response for %s within %s", req.ID, wait)
	}
	return resp, err
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
