package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/project-tktt/dream-jobs/internal/advisor"
	"github.com/project-tktt/dream-jobs/internal/assistant"
	"github.com/project-tktt/dream-jobs/internal/common/archive"
	"github.com/project-tktt/dream-jobs/internal/common/dedup"
	"github.com/project-tktt/dream-jobs/internal/common/fetcher"
	"github.com/project-tktt/dream-jobs/internal/config"
	"github.com/project-tktt/dream-jobs/internal/module/jobsdb"
	"github.com/project-tktt/dream-jobs/internal/module/worker"
	"github.com/project-tktt/dream-jobs/internal/monitoring"
	"github.com/project-tktt/dream-jobs/internal/queue"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()
	logger.Info("starting job search worker")

	cfg := config.Load()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Fatal("redis connection failed", zap.Error(err))
	}
	logger.Info("redis connected", zap.String("addr", cfg.Redis.Addr))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := monitoring.NewMetrics(reg)

	checks := map[string]monitoring.HealthCheck{
		"redis": func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
	}

	var archives archive.Multi
	if cfg.Postgres.ConnectionString != "" {
		pg, err := archive.NewPostgresArchiver(cfg.Postgres.ConnectionString, cfg.Postgres.TableName)
		if err != nil {
			logger.Fatal("postgres connection failed", zap.Error(err))
		}
		defer pg.Close()
		archives = append(archives, pg)
		logger.Info("postgres archive enabled", zap.String("table", cfg.Postgres.TableName))
	}
	if len(cfg.Elasticsearch.Addresses) > 0 {
		es, err := archive.NewElasticsearchArchiver(cfg.Elasticsearch.Addresses, cfg.Elasticsearch.Index, logger)
		if err != nil {
			logger.Fatal("elasticsearch connection failed", zap.Error(err))
		}
		if err := es.EnsureIndex(ctx); err != nil {
			logger.Warn("ensure index failed", zap.Error(err))
		}
		archives = append(archives, es)
		logger.Info("elasticsearch archive enabled", zap.String("index", cfg.Elasticsearch.Index))
	}

	model, err := advisor.NewOpenAIModel(cfg.AI)
	if err != nil {
		logger.Warn("AI model unavailable, using basic filters and static advice", zap.Error(err))
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
	}, logger, metrics)

	handler := assistant.New(advisor.NewAnalyzer(model, logger), crawler, advisor.NewAdvisor(model, logger), logger)
	consumer := queue.NewConsumer(rdb, cfg.Redis.RequestQueue, cfg.Worker.PopTimeout)
	publisher := queue.NewPublisher(rdb, cfg.Redis.RequestQueue, cfg.Redis.ResponseQueue, cfg.Redis.ResponseTTL)
	monitoring.RegisterQueueDepth(reg, publisher.QueueLength)

	var archiver archive.Archiver
	if len(archives) > 0 {
		archiver = archives
	}

	srv := &http.Server{
		Addr:              cfg.Worker.MetricsAddr,
		Handler:           monitoring.NewRouter(reg, checks),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()
	logger.Info("metrics server started", zap.String("addr", cfg.Worker.MetricsAddr))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	var wg sync.WaitGroup

	// queue -> analyze -> crawl -> advise -> publish
	wg.Add(1)
	go func() {
		defer wg.Done()
		w := worker.NewWorker(consumer, handler, publisher, archiver, worker.Config{
			Concurrency: cfg.Worker.Concurrency,
			Claimer:     dedup.NewDeduplicator(rdb, cfg.Redis.RequestQueue+":claimed", time.Hour),
		}, logger, metrics)
		if err := w.Run(ctx); !worker.IsShutdown(err) {
			logger.Error("worker error", zap.Error(err))
		}
	}()

	<-sigChan
	logger.Info("shutdown signal received, stopping")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("metrics server shutdown", zap.Error(err))
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("graceful shutdown complete")
	case <-time.After(30 * time.Second):
		logger.Warn("shutdown timeout, forcing exit")
	}
}
